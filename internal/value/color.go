package value

import (
	"fmt"
	"math"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// ColorSpace selects how two colors are blended
type ColorSpace string

const (
	// SpaceRGB blends gamma-encoded sRGB components directly
	SpaceRGB ColorSpace = "rgb"
	// SpaceLinearRGB blends in linear light, which avoids the muddy midpoint of SpaceRGB
	SpaceLinearRGB ColorSpace = "linear-rgb"
	// SpaceLab blends in CIE L*a*b*
	SpaceLab ColorSpace = "lab"
	// SpaceLuv blends in CIE L*u*v*
	SpaceLuv ColorSpace = "luv"
	// SpaceHCL blends in polar L*a*b*, taking the short way round the hue circle
	SpaceHCL ColorSpace = "hcl"
	// SpaceHSV blends in HSV
	SpaceHSV ColorSpace = "hsv"
)

// DefaultColorSpace is used when no space is configured
const DefaultColorSpace = SpaceLinearRGB

// ParseColorSpace validates a color space name from configuration
func ParseColorSpace(name string) (ColorSpace, error) {
	switch space := ColorSpace(strings.ToLower(strings.TrimSpace(name))); space {
	case "":
		return DefaultColorSpace, nil
	case SpaceRGB, SpaceLinearRGB, SpaceLab, SpaceLuv, SpaceHCL, SpaceHSV:
		return space, nil
	default:
		return "", fmt.Errorf("unknown color space %q", name)
	}
}

func (s ColorSpace) blend(a, b colorful.Color, t float64) colorful.Color {
	switch s {
	case SpaceRGB:
		return a.BlendRgb(b, t)
	case SpaceLab:
		return a.BlendLab(b, t)
	case SpaceLuv:
		return a.BlendLuv(b, t)
	case SpaceHCL:
		return a.BlendHcl(b, t)
	case SpaceHSV:
		return a.BlendHsv(b, t)
	default:
		r1, g1, b1 := a.LinearRgb()
		r2, g2, b2 := b.LinearRgb()
		return colorful.LinearRgb(
			r1+t*(r2-r1),
			g1+t*(g2-g1),
			b1+t*(b2-b1),
		)
	}
}

// components is a color in written units: 0-255 channels and 0-1 alpha
type components [4]float64

// channelSteps is the smallest change written out for each component
var channelSteps = components{1, 1, 1, 0.001}

// quantize rounds to the precision used when writing colors out. Half steps
// survive so that adjacent endpoints can still be told apart from an
// interior sample.
func quantize(c Color) components {
	return components{
		roundTo(clamp01(c.R)*255, 2),
		roundTo(clamp01(c.G)*255, 2),
		roundTo(clamp01(c.B)*255, 2),
		roundTo(clamp01(c.A), 2000),
	}
}

// snap rounds to whole steps
func snap(c Color) components {
	return components{
		math.Round(clamp01(c.R) * 255),
		math.Round(clamp01(c.G) * 255),
		math.Round(clamp01(c.B) * 255),
		roundTo(clamp01(c.A), 1000),
	}
}

func (q components) color() Color {
	return Color{R: q[0] / 255, G: q[1] / 255, B: q[2] / 255, A: q[3]}
}

func roundTo(v, scale float64) float64 {
	return math.Round(v*scale) / scale
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

func formatColor(c Color) string {
	q := quantize(c)
	return fmt.Sprintf("rgba(%s, %s, %s, %s)",
		formatNumber(q[0]), formatNumber(q[1]), formatNumber(q[2]), formatNumber(q[3]))
}

func interpolateColor(from, to Color, t float64, space ColorSpace) Color {
	a := colorful.Color{R: from.R, G: from.G, B: from.B}
	b := colorful.Color{R: to.R, G: to.G, B: to.B}
	mixed := space.blend(a, b, t).Clamped()

	out := Color{
		R: mixed.R,
		G: mixed.G,
		B: mixed.B,
		A: from.A + t*(to.A-from.A),
	}

	return distinct(snap(out), quantize(from), quantize(to)).color()
}

// distinct keeps an interior sample from collapsing onto either endpoint
// after rounding. The first component on which the endpoints differ moves
// one step toward the other endpoint, or half a step when they are adjacent.
func distinct(q, from, to components) components {
	if from == to {
		return q
	}

	switch q {
	case from:
		return nudge(q, to)
	case to:
		return nudge(q, from)
	default:
		return q
	}
}

func nudge(q, toward components) components {
	for i := range q {
		gap := toward[i] - q[i]
		if gap == 0 {
			continue
		}
		step := math.Min(channelSteps[i], math.Abs(gap)/2)
		q[i] += math.Copysign(step, gap)
		return q
	}
	return q
}
