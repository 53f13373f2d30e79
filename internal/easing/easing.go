// Package easing maps linear time progress onto eased progress.
package easing

import (
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/fogleman/ease"
)

// Sentinel errors for error type checking
var (
	// ErrUnknownEasing indicates an easing name that is not registered
	ErrUnknownEasing = errors.New("unknown easing")

	// ErrInvalidEasing indicates a malformed easing function definition
	ErrInvalidEasing = errors.New("invalid easing")
)

// Func maps linear progress in [0, 1] to eased progress. Results may leave
// [0, 1] for curves that overshoot, but Func(0) == 0 and Func(1) == 1.
type Func func(t float64) float64

// Linear is the identity easing
var Linear Func = pinned(ease.Linear)

var named = map[string]Func{
	"linear":     Linear,
	"easeIn":     pinned(ease.InCubic),
	"easeOut":    pinned(ease.OutCubic),
	"easeInOut":  pinned(ease.InOutCubic),
	"quadIn":     pinned(ease.InQuad),
	"quadOut":    pinned(ease.OutQuad),
	"quadInOut":  pinned(ease.InOutQuad),
	"sineIn":     pinned(ease.InSine),
	"sineOut":    pinned(ease.OutSine),
	"sineInOut":  pinned(ease.InOutSine),
	"expoIn":     pinned(ease.InExpo),
	"expoOut":    pinned(ease.OutExpo),
	"expoInOut":  pinned(ease.InOutExpo),
	"circIn":     pinned(ease.InCirc),
	"circOut":    pinned(ease.OutCirc),
	"circInOut":  pinned(ease.InOutCirc),
	"backIn":     pinned(ease.InBack),
	"backOut":    pinned(ease.OutBack),
	"backInOut":  pinned(ease.InOutBack),
	"elasticOut": pinned(ease.OutElastic),
	"bounceOut":  pinned(ease.OutBounce),
	"anticipate": pinned(anticipate),

	// CSS keywords
	"ease":        mustCubicBezier(0.25, 0.1, 0.25, 1),
	"ease-in":     mustCubicBezier(0.42, 0, 1, 1),
	"ease-out":    mustCubicBezier(0, 0, 0.58, 1),
	"ease-in-out": mustCubicBezier(0.42, 0, 0.58, 1),
}

var (
	cubicBezierPattern = regexp.MustCompile(`^cubic-bezier\(\s*([^,]+),\s*([^,]+),\s*([^,]+),\s*([^,)]+)\s*\)$`)
	stepsPattern       = regexp.MustCompile(`^steps\(\s*(\d+)\s*(?:,\s*([a-z-]+)\s*)?\)$`)
)

// Names returns the registered easing names in sorted order
func Names() []string {
	names := make([]string, 0, len(named))
	for name := range named {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Lookup returns the named easing
func Lookup(name string) (Func, error) {
	if f, ok := named[name]; ok {
		return f, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownEasing, name)
}

// Parse accepts a registered name, cubic-bezier(x1, y1, x2, y2) or
// steps(n[, jump-start|jump-end|start|end]). An empty definition is linear.
func Parse(def string) (Func, error) {
	s := strings.TrimSpace(def)
	if s == "" {
		return Linear, nil
	}

	if m := cubicBezierPattern.FindStringSubmatch(s); m != nil {
		var points [4]float64
		for i := range points {
			n, err := strconv.ParseFloat(strings.TrimSpace(m[i+1]), 64)
			if err != nil {
				return nil, fmt.Errorf("%w: %s: %v", ErrInvalidEasing, s, err)
			}
			points[i] = n
		}
		return CubicBezier(points[0], points[1], points[2], points[3])
	}

	if m := stepsPattern.FindStringSubmatch(s); m != nil {
		n, err := strconv.Atoi(m[1])
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrInvalidEasing, s, err)
		}
		switch m[2] {
		case "", "end", "jump-end":
			return Steps(n, false)
		case "start", "jump-start":
			return Steps(n, true)
		default:
			return nil, fmt.Errorf("%w: unknown step position %q", ErrInvalidEasing, m[2])
		}
	}

	if strings.HasPrefix(s, "cubic-bezier(") || strings.HasPrefix(s, "steps(") {
		return nil, fmt.Errorf("%w: %s", ErrInvalidEasing, s)
	}

	return Lookup(s)
}

// Steps divides progress into n equal jumps. With start set the first jump
// happens immediately, otherwise at the end of each interval.
func Steps(n int, start bool) (Func, error) {
	if n < 1 {
		return nil, fmt.Errorf("%w: steps(%d) needs at least one step", ErrInvalidEasing, n)
	}
	count := float64(n)
	return pinned(func(t float64) float64 {
		step := float64(int(t * count))
		if start {
			step++
		}
		return min(step/count, 1)
	}), nil
}

// pinned makes f exact at both ends regardless of floating point drift in
// the underlying curve
func pinned(f func(float64) float64) Func {
	return func(t float64) float64 {
		switch {
		case t <= 0:
			return 0
		case t >= 1:
			return 1
		default:
			return f(t)
		}
	}
}

// anticipate pulls back like backIn for the first half, then shoots to the
// end on an exponential curve
func anticipate(t float64) float64 {
	t *= 2
	if t < 1 {
		return 0.5 * ease.InBack(t)
	}
	return 0.5 * (2 - ease.InExpo(2-t))
}
