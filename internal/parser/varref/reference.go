// Package varref parses CSS custom property references of the form
// var(<name>) and var(<name>, <fallback>).
//
// Fallbacks are kept as raw text. A fallback that is itself a var() expression
// is only parsed when the resolver needs it.
package varref

import (
	"regexp"
	"strings"
)

// CustomPropertyRegexp matches a custom property identifier such as --color-primary
var CustomPropertyRegexp = regexp.MustCompile(`^--[A-Za-z0-9_-]+$`)

const functionName = "var("

// Reference is a parsed var() expression
type Reference struct {
	// Name is the custom property identifier, e.g. "--from"
	Name string

	// Fallback is the raw text after the first top-level comma, or nil when
	// the expression has no comma
	Fallback *string
}

// HasFallback reports whether the reference carries a fallback
func (r *Reference) HasFallback() bool {
	return r.Fallback != nil
}

// String serialises the reference back to var() syntax
func (r *Reference) String() string {
	if r.Fallback == nil {
		return functionName + r.Name + ")"
	}
	return functionName + r.Name + ", " + *r.Fallback + ")"
}

// Parse parses input as a var() expression.
// Returns nil if the input is not a well-formed reference.
func Parse(input string) *Reference {
	ref, err := ParseStrict(input)
	if err != nil {
		return nil
	}
	return ref
}

// IsReference reports whether input is a well-formed var() expression
func IsReference(input string) bool {
	return Parse(input) != nil
}

// ParseStrict parses input as a var() expression and reports why it is not one.
// The returned error always wraps ErrMalformedReference.
func ParseStrict(input string) (*Reference, error) {
	s := strings.TrimSpace(input)

	if len(s) < len(functionName) || !strings.EqualFold(s[:len(functionName)], functionName) {
		return nil, NewMalformedReferenceError(input, "missing var( wrapper")
	}

	comma, closing, reason := scanArguments(s)
	if reason != "" {
		return nil, NewMalformedReferenceError(input, reason)
	}
	if closing != len(s)-1 {
		return nil, NewMalformedReferenceError(input, "unexpected content after closing parenthesis")
	}

	start := len(functionName)
	ref := &Reference{}
	if comma < 0 {
		ref.Name = strings.TrimSpace(s[start:closing])
	} else {
		ref.Name = strings.TrimSpace(s[start:comma])
		fallback := strings.TrimSpace(s[comma+1 : closing])
		ref.Fallback = &fallback
	}

	if ref.Name == "" {
		return nil, NewMalformedReferenceError(input, "empty custom property name")
	}
	if !CustomPropertyRegexp.MatchString(ref.Name) {
		return nil, NewMalformedReferenceError(input, "invalid custom property name "+ref.Name)
	}

	return ref, nil
}

// scanArguments walks s, which starts with "var(", and returns the index of the
// first comma at argument depth and the index of the parenthesis closing var(.
// Nested parentheses and quoted strings are skipped, so the comma inside
// var(--a, var(--b, c)) that belongs to the inner call is not reported.
// A non-empty reason means the parentheses never balance.
func scanArguments(s string) (comma, closing int, reason string) {
	comma = -1
	depth := 0
	var quote byte

	for i := len(functionName) - 1; i < len(s); i++ {
		c := s[i]

		if quote != 0 {
			switch c {
			case '\\':
				i++
			case quote:
				quote = 0
			}
			continue
		}

		switch c {
		case '"', '\'':
			quote = c
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return comma, i, ""
			}
		case ',':
			if depth == 1 && comma < 0 {
				comma = i
			}
		}
	}

	if quote != 0 {
		return -1, -1, "unterminated string"
	}
	return -1, -1, "unbalanced parentheses"
}
