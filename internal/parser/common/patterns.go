// Package common holds the design-token syntax shared by the token readers.
package common

import (
	"regexp"
	"strings"
)

// designTokensSchemaPrefix is the required prefix for Design Tokens schema URLs
const designTokensSchemaPrefix = "https://www.designtokens.org/schemas/"

// CurlyBraceReferenceRegexp matches curly brace token aliases: {token.reference.path}
var CurlyBraceReferenceRegexp = regexp.MustCompile(`\{([^}]+)\}`)

// SchemaFieldRegexp matches the $schema field with its value in JSON and YAML.
// Anchored to line start to match only top-level $schema declarations.
// JSON: "$schema": "https://..."
// YAML: $schema: "https://..." or $schema: 'https://...'
var SchemaFieldRegexp = regexp.MustCompile(`(?m)^\s*"?\$schema"?\s*:\s*["']([^"']+)["']`)

// PropertyName converts a dotted token path to its custom property name,
// e.g. color.brand with prefix ds → --ds-color-brand
func PropertyName(path, prefix string) string {
	name := strings.ReplaceAll(strings.TrimSpace(path), ".", "-")
	if prefix != "" {
		return "--" + prefix + "-" + name
	}
	return "--" + name
}

// AliasesToVar rewrites every {token.path} alias in value as a var()
// reference to the aliased token's custom property
func AliasesToVar(value, prefix string) string {
	return CurlyBraceReferenceRegexp.ReplaceAllStringFunc(value, func(alias string) string {
		path := CurlyBraceReferenceRegexp.FindStringSubmatch(alias)[1]
		return "var(" + PropertyName(path, prefix) + ")"
	})
}

// IsDesignTokensSchema reports whether content declares a top-level $schema
// pointing at a Design Tokens schema (https://www.designtokens.org/schemas/**/*.json)
func IsDesignTokensSchema(content string) bool {
	matches := SchemaFieldRegexp.FindStringSubmatch(content)
	if len(matches) < 2 {
		return false
	}
	url := matches[1]
	return strings.HasPrefix(url, designTokensSchemaPrefix) && strings.HasSuffix(url, ".json")
}
