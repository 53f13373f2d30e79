// Package asimonim reads DTCG design token files with the asimonim parser
// and exposes them as custom property declarations.
package asimonim

import (
	"encoding/json"
	"fmt"

	asimonimParser "bennypowers.dev/asimonim/parser"
	"bennypowers.dev/varmotion/internal/parser/common"
	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"
)

// Options controls how token names map to custom properties
type Options struct {
	// Prefix is prepended to every property, e.g. ds → --ds-color-brand
	Prefix string

	// GroupMarkers name tokens that also act as groups
	GroupMarkers []string
}

// Parse reads token data in JSON (comments allowed) or, when isYAML is set,
// YAML. It returns custom property name → value, with {token.path} aliases
// rewritten to var() references so they resolve like any other property.
func Parse(data []byte, isYAML bool, opts Options) (map[string]string, error) {
	if isYAML {
		converted, err := yamlToJSON(data)
		if err != nil {
			return nil, err
		}
		data = converted
	} else {
		data = jsonc.ToJSON(data)
	}

	parser := asimonimParser.NewJSONParser()
	tokens, err := parser.Parse(data, asimonimParser.Options{
		Prefix:       opts.Prefix,
		GroupMarkers: opts.GroupMarkers,
	})
	if err != nil {
		return nil, err
	}

	props := make(map[string]string, len(tokens))
	for _, token := range tokens {
		props[token.CSSVariableName()] = common.AliasesToVar(token.Value, opts.Prefix)
	}
	return props, nil
}

func yamlToJSON(data []byte) ([]byte, error) {
	var doc map[string]any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if doc == nil {
		doc = map[string]any{}
	}
	out, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to convert YAML tokens: %w", err)
	}
	return out, nil
}
