package value

import (
	"errors"
	"fmt"
)

// Sentinel errors for error type checking
var (
	// ErrInvalidValue indicates a string is not a usable CSS value
	ErrInvalidValue = errors.New("invalid value")

	// ErrKindMismatch indicates two values of different kinds were interpolated.
	// This is a configuration error and should fail loudly.
	ErrKindMismatch = errors.New("value kind mismatch")

	// ErrNotInterpolable indicates values of a kind that cannot be blended
	ErrNotInterpolable = errors.New("value not interpolable")
)

// KindMismatchError reports the two values that could not be interpolated
type KindMismatchError struct {
	From Value
	To   Value
}

func (e *KindMismatchError) Error() string {
	if e.From.Kind == e.To.Kind {
		return fmt.Sprintf("cannot interpolate %s %q to %q: units %q and %q differ",
			e.From.Kind, e.From.String(), e.To.String(), e.From.Unit, e.To.Unit)
	}
	return fmt.Sprintf("cannot interpolate %s %q to %s %q",
		e.From.Kind, e.From.String(), e.To.Kind, e.To.String())
}

func (e *KindMismatchError) Unwrap() error {
	return ErrKindMismatch
}

// NewKindMismatchError creates a new kind mismatch error
func NewKindMismatchError(from, to Value) error {
	return &KindMismatchError{From: from, To: to}
}

// InvalidValueError reports a string that could not be parsed
type InvalidValueError struct {
	Input  string
	Reason string
}

func (e *InvalidValueError) Error() string {
	return fmt.Sprintf("invalid value %q: %s", e.Input, e.Reason)
}

func (e *InvalidValueError) Unwrap() error {
	return ErrInvalidValue
}

// NewInvalidValueError creates a new invalid value error
func NewInvalidValueError(input, reason string) error {
	return &InvalidValueError{Input: input, Reason: reason}
}

// NotInterpolableError reports two distinct keywords
type NotInterpolableError struct {
	From Value
	To   Value
}

func (e *NotInterpolableError) Error() string {
	return fmt.Sprintf("cannot interpolate %s %q to %q", e.From.Kind, e.From.String(), e.To.String())
}

func (e *NotInterpolableError) Unwrap() error {
	return ErrNotInterpolable
}
