package easing

import (
	"fmt"
	"math"
	"time"

	"github.com/charmbracelet/harmonica"
)

const (
	springFPS         = 120
	maxSpringDuration = 10 * time.Second
)

// SpringConfig describes a damped harmonic oscillator pulled from 0 toward 1
type SpringConfig struct {
	Stiffness float64 `yaml:"stiffness" json:"stiffness"`
	Damping   float64 `yaml:"damping" json:"damping"`
	Mass      float64 `yaml:"mass" json:"mass"`

	// RestDelta is how close to the target the spring must be to settle
	RestDelta float64 `yaml:"restDelta" json:"restDelta"`

	// RestSpeed is the speed below which the spring may settle
	RestSpeed float64 `yaml:"restSpeed" json:"restSpeed"`
}

// DefaultSpringConfig returns a lightly underdamped spring
func DefaultSpringConfig() SpringConfig {
	return SpringConfig{
		Stiffness: 100,
		Damping:   10,
		Mass:      1,
		RestDelta: 0.01,
		RestSpeed: 0.01,
	}
}

// Spring is a precomputed spring trajectory. It settles after Duration and
// Ease maps normalised time over that duration onto the spring's position.
type Spring struct {
	duration  time.Duration
	positions []float64
}

// NewSpring simulates the spring until it comes to rest. Zero fields in
// cfg take their defaults.
func NewSpring(cfg SpringConfig) (*Spring, error) {
	def := DefaultSpringConfig()
	if cfg.Stiffness == 0 {
		cfg.Stiffness = def.Stiffness
	}
	if cfg.Damping == 0 {
		cfg.Damping = def.Damping
	}
	if cfg.Mass == 0 {
		cfg.Mass = def.Mass
	}
	if cfg.RestDelta == 0 {
		cfg.RestDelta = def.RestDelta
	}
	if cfg.RestSpeed == 0 {
		cfg.RestSpeed = def.RestSpeed
	}
	if cfg.Stiffness < 0 || cfg.Mass < 0 || cfg.Damping < 0 {
		return nil, fmt.Errorf("%w: spring stiffness, damping and mass must not be negative", ErrInvalidEasing)
	}

	angularFrequency := math.Sqrt(cfg.Stiffness / cfg.Mass)
	dampingRatio := cfg.Damping / (2 * math.Sqrt(cfg.Stiffness*cfg.Mass))
	spring := harmonica.NewSpring(harmonica.FPS(springFPS), angularFrequency, dampingRatio)

	maxFrames := int(maxSpringDuration.Seconds() * springFPS)
	positions := []float64{0}
	pos, vel := 0.0, 0.0
	settled := false
	for range maxFrames {
		pos, vel = spring.Update(pos, vel, 1)
		positions = append(positions, pos)
		if math.Abs(1-pos) < cfg.RestDelta && math.Abs(vel) < cfg.RestSpeed {
			settled = true
			break
		}
	}
	if !settled {
		return nil, fmt.Errorf("%w: spring does not settle within %v", ErrInvalidEasing, maxSpringDuration)
	}
	positions[len(positions)-1] = 1

	frames := len(positions) - 1
	return &Spring{
		duration:  time.Duration(frames) * time.Second / springFPS,
		positions: positions,
	}, nil
}

// Duration is the simulated time the spring takes to settle
func (s *Spring) Duration() time.Duration {
	return s.duration
}

// Ease returns the spring position at normalised time t. Underdamped
// springs overshoot past 1 before settling.
func (s *Spring) Ease() Func {
	last := len(s.positions) - 1
	return pinned(func(t float64) float64 {
		x := t * float64(last)
		i := int(x)
		if i >= last {
			return s.positions[last]
		}
		frac := x - float64(i)
		return s.positions[i] + frac*(s.positions[i+1]-s.positions[i])
	})
}
