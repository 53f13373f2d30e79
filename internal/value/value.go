// Package value classifies concrete CSS values and interpolates between them.
package value

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/mazznoer/csscolorparser"
)

// Kind is the semantic type of a value. Only values of the same kind
// can be interpolated.
type Kind int

const (
	// KindNumber is a unitless number such as 0.5
	KindNumber Kind = iota
	// KindLength is a number with a unit such as 8px, 2rem, 90deg or 300ms
	KindLength
	// KindPercentage is a number followed by %
	KindPercentage
	// KindColor is anything csscolorparser understands: hex, rgb(), hsl(), hwb(), named colors
	KindColor
	// KindKeyword is any other identifier, e.g. auto or none
	KindKeyword
)

func (k Kind) String() string {
	switch k {
	case KindNumber:
		return "number"
	case KindLength:
		return "length"
	case KindPercentage:
		return "percentage"
	case KindColor:
		return "color"
	case KindKeyword:
		return "keyword"
	default:
		return "unknown"
	}
}

var numberPattern = regexp.MustCompile(`^([+-]?(?:\d+\.?\d*|\.\d+)(?:[eE][+-]?\d+)?)([a-zA-Z]+|%)?$`)

// Color is a straight-alpha sRGB color with components in [0, 1]
type Color struct {
	R, G, B, A float64
}

// Value is a resolved, concrete value
type Value struct {
	Kind Kind

	// Number holds the magnitude for number, length and percentage kinds
	Number float64

	// Unit is the lower-cased unit for lengths and "%" for percentages
	Unit string

	// Color holds the components for the color kind
	Color Color

	// Keyword holds the identifier for the keyword kind
	Keyword string

	// raw is the text the value was parsed from; empty for computed values
	raw string
}

// Parse classifies a concrete CSS value string.
// Values that still contain var() must be resolved first.
func Parse(input string) (Value, error) {
	s := strings.TrimSpace(input)
	if s == "" {
		return Value{}, NewInvalidValueError(input, "empty value")
	}
	if strings.Contains(strings.ToLower(s), "var(") {
		return Value{}, NewInvalidValueError(input, "unresolved var() reference")
	}

	if m := numberPattern.FindStringSubmatch(s); m != nil {
		n, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			return Value{}, NewInvalidValueError(input, err.Error())
		}
		switch unit := strings.ToLower(m[2]); unit {
		case "":
			return Value{Kind: KindNumber, Number: n, raw: s}, nil
		case "%":
			return Value{Kind: KindPercentage, Number: n, Unit: unit, raw: s}, nil
		default:
			return Value{Kind: KindLength, Number: n, Unit: unit, raw: s}, nil
		}
	}

	if c, err := csscolorparser.Parse(s); err == nil {
		return Value{Kind: KindColor, Color: Color{R: c.R, G: c.G, B: c.B, A: c.A}, raw: s}, nil
	}

	if strings.ContainsAny(s, " \t\n(),") {
		return Value{}, NewInvalidValueError(input, "unsupported value syntax")
	}

	return Value{Kind: KindKeyword, Keyword: s, raw: s}, nil
}

// MustParse is like Parse but panics on error. Intended for tests and constants.
func MustParse(input string) Value {
	v, err := Parse(input)
	if err != nil {
		panic(err)
	}
	return v
}

// Number creates a unitless number value
func Number(n float64) Value {
	return Value{Kind: KindNumber, Number: n}
}

// Length creates a length value with the given unit
func Length(n float64, unit string) Value {
	if unit == "%" {
		return Value{Kind: KindPercentage, Number: n, Unit: unit}
	}
	return Value{Kind: KindLength, Number: n, Unit: strings.ToLower(unit)}
}

// RGBA creates a color value from components in [0, 1]
func RGBA(r, g, b, a float64) Value {
	return Value{Kind: KindColor, Color: Color{R: r, G: g, B: b, A: a}}
}

// String returns CSS text for the value. Parsed values keep their original
// text exactly; computed values use a canonical form.
func (v Value) String() string {
	if v.raw != "" {
		return v.raw
	}

	switch v.Kind {
	case KindNumber:
		return formatNumber(v.Number)
	case KindLength, KindPercentage:
		return formatNumber(v.Number) + v.Unit
	case KindColor:
		return formatColor(v.Color)
	case KindKeyword:
		return v.Keyword
	default:
		return ""
	}
}

// Equal reports whether two values denote the same thing, ignoring how they
// were written (so #F00 equals rgb(255, 0, 0))
func (v Value) Equal(other Value) bool {
	if v.Kind != other.Kind {
		return false
	}
	switch v.Kind {
	case KindColor:
		return quantize(v.Color) == quantize(other.Color)
	case KindKeyword:
		return strings.EqualFold(v.Keyword, other.Keyword)
	default:
		return v.Number == other.Number && v.Unit == other.Unit
	}
}

func formatNumber(n float64) string {
	if n == 0 {
		// avoid printing -0
		n = 0
	}
	return strconv.FormatFloat(n, 'f', -1, 64)
}
