package easing

import (
	"fmt"
	"math"
)

const (
	bezierEpsilon    = 1e-7
	newtonIterations = 8
)

// CubicBezier returns the CSS cubic-bezier timing function with control
// points (x1, y1) and (x2, y2). x1 and x2 must lie in [0, 1] so that x is
// monotonic in the curve parameter.
func CubicBezier(x1, y1, x2, y2 float64) (Func, error) {
	if x1 < 0 || x1 > 1 || x2 < 0 || x2 > 1 {
		return nil, fmt.Errorf("%w: cubic-bezier x values must be within [0, 1], got %v and %v",
			ErrInvalidEasing, x1, x2)
	}

	if x1 == y1 && x2 == y2 {
		return Linear, nil
	}

	c := newBezier(x1, y1, x2, y2)
	return pinned(func(t float64) float64 {
		return c.sampleY(c.solveX(t))
	}), nil
}

func mustCubicBezier(x1, y1, x2, y2 float64) Func {
	f, err := CubicBezier(x1, y1, x2, y2)
	if err != nil {
		panic(err)
	}
	return f
}

// bezier holds polynomial coefficients for a curve through (0,0) and (1,1)
type bezier struct {
	ax, bx, cx float64
	ay, by, cy float64
}

func newBezier(x1, y1, x2, y2 float64) bezier {
	var b bezier
	b.cx = 3 * x1
	b.bx = 3*(x2-x1) - b.cx
	b.ax = 1 - b.cx - b.bx
	b.cy = 3 * y1
	b.by = 3*(y2-y1) - b.cy
	b.ay = 1 - b.cy - b.by
	return b
}

func (b bezier) sampleX(s float64) float64 {
	return ((b.ax*s+b.bx)*s + b.cx) * s
}

func (b bezier) sampleY(s float64) float64 {
	return ((b.ay*s+b.by)*s + b.cy) * s
}

func (b bezier) slopeX(s float64) float64 {
	return (3*b.ax*s+2*b.bx)*s + b.cx
}

// solveX finds the curve parameter whose x equals x. Newton's method
// converges in a few iterations for most curves; bisection covers flat
// slopes.
func (b bezier) solveX(x float64) float64 {
	s := x
	for range newtonIterations {
		dx := b.sampleX(s) - x
		if math.Abs(dx) < bezierEpsilon {
			return s
		}
		slope := b.slopeX(s)
		if math.Abs(slope) < 1e-6 {
			break
		}
		s -= dx / slope
	}

	lo, hi := 0.0, 1.0
	s = x
	for lo < hi {
		v := b.sampleX(s)
		if math.Abs(v-x) < bezierEpsilon {
			return s
		}
		if x > v {
			lo = s
		} else {
			hi = s
		}
		next := (lo + hi) / 2
		if next == s {
			break
		}
		s = next
	}
	return s
}
