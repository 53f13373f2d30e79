package value

// Options control interpolation
type Options struct {
	ColorSpace ColorSpace
}

// Option configures Interpolate
type Option func(*Options)

// WithColorSpace selects the space colors are blended in
func WithColorSpace(space ColorSpace) Option {
	return func(o *Options) {
		o.ColorSpace = space
	}
}

// Interpolate blends from and to at progress t.
//
// t == 0 returns from and t == 1 returns to, unchanged, so the first and last
// frames carry the endpoint text exactly. Numbers and lengths extrapolate
// when an overshooting easing pushes t outside [0, 1]. Colors clamp, and any
// color sample other than t == 0 or t == 1 differs from both endpoints when
// the endpoints differ. Values of different kinds, or
// lengths with different units, fail with a *KindMismatchError. A unitless
// zero is accepted in place of any length or percentage.
func Interpolate(from, to Value, t float64, opts ...Option) (Value, error) {
	o := Options{ColorSpace: DefaultColorSpace}
	for _, opt := range opts {
		opt(&o)
	}

	from, to = promoteZero(from, to)

	if from.Kind != to.Kind {
		return Value{}, NewKindMismatchError(from, to)
	}
	if (from.Kind == KindLength || from.Kind == KindPercentage) && from.Unit != to.Unit {
		return Value{}, NewKindMismatchError(from, to)
	}

	if from.Kind == KindKeyword {
		if !from.Equal(to) {
			return Value{}, &NotInterpolableError{From: from, To: to}
		}
		if t >= 1 {
			return to, nil
		}
		return from, nil
	}

	if t == 0 {
		return from, nil
	}
	if t == 1 {
		return to, nil
	}

	if from.Kind == KindColor {
		t = max(0, min(1, t))
		return Value{Kind: KindColor, Color: interpolateColor(from.Color, to.Color, t, o.ColorSpace)}, nil
	}

	return Value{
		Kind:   from.Kind,
		Number: from.Number + t*(to.Number-from.Number),
		Unit:   from.Unit,
	}, nil
}

// promoteZero lets a bare 0 stand in for a zero length, as CSS does
func promoteZero(from, to Value) (Value, Value) {
	if isBareZero(from) && (to.Kind == KindLength || to.Kind == KindPercentage) {
		from.Kind, from.Unit = to.Kind, to.Unit
	}
	if isBareZero(to) && (from.Kind == KindLength || from.Kind == KindPercentage) {
		to.Kind, to.Unit = from.Kind, from.Unit
	}
	return from, to
}

func isBareZero(v Value) bool {
	return v.Kind == KindNumber && v.Number == 0
}
