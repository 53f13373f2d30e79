package animation

import (
	"errors"
	"fmt"

	"bennypowers.dev/varmotion/internal/value"
)

// Sentinel errors for error type checking
var (
	// ErrInvalidTransition indicates a transition that cannot be run
	ErrInvalidTransition = errors.New("invalid transition")

	// ErrAlreadyStarted indicates Start was called on a run that is not idle
	ErrAlreadyStarted = errors.New("animation already started")

	// ErrNotStarted indicates Tick was called before Start
	ErrNotStarted = errors.New("animation not started")

	// ErrNoProperties indicates a run with nothing to animate
	ErrNoProperties = errors.New("no properties to animate")
)

// FrameError reports why one property could not be sampled on a frame
type FrameError struct {
	Property string
	Err      error
}

func (e *FrameError) Error() string {
	return fmt.Sprintf("property %s: %v", e.Property, e.Err)
}

func (e *FrameError) Unwrap() error {
	return e.Err
}

// NewFrameError creates a new frame error
func NewFrameError(property string, err error) error {
	return &FrameError{Property: property, Err: err}
}

// IsFatal reports whether err means the animation is misconfigured rather
// than momentarily unresolvable. Fatal errors cancel the run.
func IsFatal(err error) bool {
	return errors.Is(err, value.ErrKindMismatch) || errors.Is(err, value.ErrNotInterpolable)
}
