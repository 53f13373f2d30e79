package resolver

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for error type checking
var (
	// ErrUnresolvedVariable indicates a fallback chain ended without a value
	ErrUnresolvedVariable = errors.New("unresolved variable")

	// ErrMaxDepthExceeded indicates a fallback chain nested deeper than the resolver allows
	ErrMaxDepthExceeded = errors.New("maximum reference depth exceeded")

	// ErrCircularReference indicates custom property declarations depend on each other
	ErrCircularReference = errors.New("circular reference detected")
)

// UnresolvedVariableError reports the chain of names that were all unset
type UnresolvedVariableError struct {
	Name  string
	Chain []string
}

func (e *UnresolvedVariableError) Error() string {
	if len(e.Chain) > 1 {
		return fmt.Sprintf("variable %s is not set and has no usable fallback (tried %s)", e.Name, strings.Join(e.Chain, " -> "))
	}
	return fmt.Sprintf("variable %s is not set and has no fallback", e.Name)
}

func (e *UnresolvedVariableError) Unwrap() error {
	return ErrUnresolvedVariable
}

// NewUnresolvedVariableError creates a new unresolved variable error
func NewUnresolvedVariableError(name string, chain []string) error {
	return &UnresolvedVariableError{
		Name:  name,
		Chain: append([]string(nil), chain...),
	}
}

// DepthExceededError reports a fallback chain that hit the depth limit
type DepthExceededError struct {
	Limit int
	Chain []string
}

func (e *DepthExceededError) Error() string {
	return fmt.Sprintf("reference chain exceeds maximum depth %d: %s", e.Limit, strings.Join(e.Chain, " -> "))
}

func (e *DepthExceededError) Unwrap() error {
	return ErrMaxDepthExceeded
}

// NewDepthExceededError creates a new depth exceeded error
func NewDepthExceededError(limit int, chain []string) error {
	return &DepthExceededError{
		Limit: limit,
		Chain: append([]string(nil), chain...),
	}
}

// CircularReferenceError reports custom properties that reference each other
type CircularReferenceError struct {
	Cycle []string
}

func (e *CircularReferenceError) Error() string {
	return fmt.Sprintf("circular reference detected: %s", strings.Join(e.Cycle, " -> "))
}

func (e *CircularReferenceError) Unwrap() error {
	return ErrCircularReference
}

// NewCircularReferenceError creates a new circular reference error
func NewCircularReferenceError(cycle []string) error {
	return &CircularReferenceError{
		Cycle: append([]string(nil), cycle...),
	}
}
