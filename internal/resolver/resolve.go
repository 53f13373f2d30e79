// Package resolver turns var() references into concrete values by consulting
// a style.Source and, when a property is unset, its fallback chain.
package resolver

import (
	"fmt"
	"strings"

	"bennypowers.dev/varmotion/internal/parser/varref"
	"bennypowers.dev/varmotion/internal/style"
)

// DefaultMaxDepth bounds how many references one fallback chain may visit
const DefaultMaxDepth = 32

// Resolution describes how a reference was resolved
type Resolution struct {
	// Value is the concrete value
	Value string

	// Chain lists the custom properties consulted, in order
	Chain []string

	// FromFallback is true when Value is a literal fallback rather than a
	// property value read from the source
	FromFallback bool
}

// Resolver resolves references with a bounded fallback depth.
// The zero value uses DefaultMaxDepth.
type Resolver struct {
	MaxDepth int
}

// Resolve resolves ref against source using DefaultMaxDepth
func Resolve(ref *varref.Reference, source style.Source) (string, error) {
	return Resolver{}.Resolve(ref, source)
}

// ResolveValue resolves raw if it is a var() expression and returns it
// trimmed otherwise
func ResolveValue(raw string, source style.Source) (string, error) {
	return Resolver{}.ResolveValue(raw, source)
}

// Resolve returns the concrete value for ref.
//
// A property value found in source is returned verbatim and never re-parsed.
// On a miss the fallback is used: a fallback that is itself a reference is
// resolved against the same source, anything else is returned as a literal.
func (r Resolver) Resolve(ref *varref.Reference, source style.Source) (string, error) {
	res, err := r.Trace(ref, source)
	if err != nil {
		return "", err
	}
	return res.Value, nil
}

// ResolveValue resolves raw if it is a var() expression and returns it
// trimmed otherwise
func (r Resolver) ResolveValue(raw string, source style.Source) (string, error) {
	ref := varref.Parse(raw)
	if ref == nil {
		return strings.TrimSpace(raw), nil
	}
	return r.Resolve(ref, source)
}

// Trace resolves ref and reports the chain of properties consulted
func (r Resolver) Trace(ref *varref.Reference, source style.Source) (*Resolution, error) {
	if ref == nil {
		return nil, fmt.Errorf("cannot resolve nil reference")
	}
	if source == nil {
		return nil, fmt.Errorf("cannot resolve %s without a style source", ref.Name)
	}

	limit := r.MaxDepth
	if limit <= 0 {
		limit = DefaultMaxDepth
	}

	var chain []string
	for {
		chain = append(chain, ref.Name)
		if len(chain) > limit {
			return nil, NewDepthExceededError(limit, chain)
		}

		if value := strings.TrimSpace(source.PropertyValue(ref.Name)); value != "" {
			return &Resolution{Value: value, Chain: chain}, nil
		}

		if ref.Fallback == nil {
			return nil, NewUnresolvedVariableError(chain[0], chain)
		}

		nested := varref.Parse(*ref.Fallback)
		if nested == nil {
			return &Resolution{Value: *ref.Fallback, Chain: chain, FromFallback: true}, nil
		}
		ref = nested
	}
}
