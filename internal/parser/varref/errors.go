package varref

import (
	"errors"
	"fmt"
)

// ErrMalformedReference indicates a value is not a well-formed var() expression.
// It is not fatal: callers treat such values as literals.
var ErrMalformedReference = errors.New("malformed variable reference")

// MalformedReferenceError describes why an input is not a var() expression
type MalformedReferenceError struct {
	Input  string
	Reason string
}

func (e *MalformedReferenceError) Error() string {
	return fmt.Sprintf("malformed variable reference %q: %s", e.Input, e.Reason)
}

func (e *MalformedReferenceError) Unwrap() error {
	return ErrMalformedReference
}

// NewMalformedReferenceError creates a new malformed reference error
func NewMalformedReferenceError(input, reason string) error {
	return &MalformedReferenceError{
		Input:  input,
		Reason: reason,
	}
}
