package animation

import (
	"fmt"
	"time"

	"bennypowers.dev/varmotion/internal/easing"
	"bennypowers.dev/varmotion/internal/value"
)

// Type selects how progress advances over time
type Type string

const (
	// TypeTween follows an easing curve over a fixed duration
	TypeTween Type = "tween"
	// TypeSpring follows a damped spring until it settles
	TypeSpring Type = "spring"
)

// RepeatType selects how repeated iterations play
type RepeatType string

const (
	// RepeatLoop restarts each iteration from the start
	RepeatLoop RepeatType = "loop"
	// RepeatReverse alternates direction on each iteration
	RepeatReverse RepeatType = "reverse"
)

// Infinite repeats forever
const Infinite = -1

// DefaultDuration is the tween duration used by DefaultTransition
const DefaultDuration = 300 * time.Millisecond

// Transition describes how a run moves from its start to its end values
type Transition struct {
	Type     Type          `yaml:"type" json:"type"`
	Duration time.Duration `yaml:"duration" json:"duration"`
	Delay    time.Duration `yaml:"delay" json:"delay"`

	// Ease is a named easing, cubic-bezier(...) or steps(...). Tweens only.
	Ease string `yaml:"ease" json:"ease"`

	// Spring parameters. Zero values take the spring defaults.
	Stiffness float64 `yaml:"stiffness" json:"stiffness"`
	Damping   float64 `yaml:"damping" json:"damping"`
	Mass      float64 `yaml:"mass" json:"mass"`

	// Repeat is the number of extra iterations, or Infinite
	Repeat     int        `yaml:"repeat" json:"repeat"`
	RepeatType RepeatType `yaml:"repeatType" json:"repeatType"`

	// ColorSpace is the space colors blend in; empty means linear-rgb
	ColorSpace string `yaml:"colorSpace" json:"colorSpace"`
}

// DefaultTransition returns a short ease-out tween
func DefaultTransition() Transition {
	return Transition{
		Type:     TypeTween,
		Duration: DefaultDuration,
		Ease:     "easeOut",
	}
}

// timeline is a validated transition
type timeline struct {
	ease       easing.Func
	duration   time.Duration
	delay      time.Duration
	iterations int
	reverse    bool
	colorSpace value.ColorSpace
}

func (t Transition) compile() (timeline, error) {
	tl := timeline{
		delay:      t.Delay,
		iterations: t.Repeat + 1,
		reverse:    t.RepeatType == RepeatReverse,
	}

	if t.Delay < 0 {
		return tl, fmt.Errorf("%w: negative delay %v", ErrInvalidTransition, t.Delay)
	}
	if t.Repeat < Infinite {
		return tl, fmt.Errorf("%w: repeat must be %d or more, got %d", ErrInvalidTransition, Infinite, t.Repeat)
	}
	switch t.RepeatType {
	case "", RepeatLoop, RepeatReverse:
	default:
		return tl, fmt.Errorf("%w: unknown repeat type %q", ErrInvalidTransition, t.RepeatType)
	}

	space, err := value.ParseColorSpace(t.ColorSpace)
	if err != nil {
		return tl, fmt.Errorf("%w: %v", ErrInvalidTransition, err)
	}
	tl.colorSpace = space

	switch t.Type {
	case "", TypeTween:
		if t.Duration <= 0 {
			return tl, fmt.Errorf("%w: tween duration must be positive, got %v", ErrInvalidTransition, t.Duration)
		}
		ease, err := easing.Parse(t.Ease)
		if err != nil {
			return tl, fmt.Errorf("%w: %v", ErrInvalidTransition, err)
		}
		tl.ease = ease
		tl.duration = t.Duration

	case TypeSpring:
		spring, err := easing.NewSpring(easing.SpringConfig{
			Stiffness: t.Stiffness,
			Damping:   t.Damping,
			Mass:      t.Mass,
		})
		if err != nil {
			return tl, fmt.Errorf("%w: %v", ErrInvalidTransition, err)
		}
		tl.ease = spring.Ease()
		tl.duration = spring.Duration()

	default:
		return tl, fmt.Errorf("%w: unknown type %q", ErrInvalidTransition, t.Type)
	}

	if tl.duration <= 0 {
		tl.duration = time.Millisecond
	}
	return tl, nil
}

// point is where a timeline stands at some elapsed time
type point struct {
	progress  float64
	t         float64
	iteration int
	reversed  bool
	done      bool
}

// position maps time since the baseline frame to run progress and the eased
// interpolation parameter. Before the delay has elapsed ok is false. A
// finished run reports every iteration as completed.
func (tl timeline) position(elapsed time.Duration) (p point, ok bool) {
	active := elapsed - tl.delay
	if active < 0 {
		return p, false
	}

	iteration := int(active / tl.duration)
	local := float64(active%tl.duration) / float64(tl.duration)

	if tl.iterations > 0 && iteration >= tl.iterations {
		iteration = tl.iterations - 1
		local = 1
		p.done = true
	}

	if tl.iterations > 0 {
		total := float64(tl.iterations) * float64(tl.duration)
		p.progress = min(1, float64(active)/total)
		if p.done {
			p.progress = 1
		}
	} else {
		p.progress = local
	}

	direction := local
	if tl.reverse && iteration%2 == 1 {
		direction = 1 - local
		p.reversed = true
	}
	p.t = tl.ease(direction)

	p.iteration = iteration
	if p.done {
		p.iteration = tl.iterations
	}
	return p, true
}
