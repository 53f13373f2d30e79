// Package animation drives transitions between CSS values that may be var()
// references. Every frame re-resolves references against a live style
// source, interpolates at the eased progress and hands the result to the
// caller.
package animation

import (
	"fmt"
	"maps"
	"slices"
	"time"

	"bennypowers.dev/varmotion/internal/log"
	"bennypowers.dev/varmotion/internal/resolver"
	"bennypowers.dev/varmotion/internal/style"
	"bennypowers.dev/varmotion/internal/value"
)

// Source supplies the current value of custom properties.
// An empty string means the property is not set.
type Source = style.Source

// State is the lifecycle state of a Run
type State int

const (
	// Idle runs have been created but not started
	Idle State = iota
	// Running runs accept ticks
	Running
	// Completed runs delivered their final frame
	Completed
	// Cancelled runs were stopped before completing
	Cancelled
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Running:
		return "running"
	case Completed:
		return "completed"
	case Cancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Target is the start and end of one animated property.
// Either side may be a literal or a var() expression.
type Target struct {
	From string `yaml:"from" json:"from"`
	To   string `yaml:"to" json:"to"`
}

// Sample is one frame of concrete values
type Sample struct {
	// Progress is the fraction of the run elapsed, in [0, 1]. For runs that
	// repeat forever it is the fraction of the current iteration.
	Progress float64 `json:"progress"`

	// Iteration counts completed iterations. The final frame of a finite
	// run reports all of them.
	Iteration int `json:"iteration"`

	// Values maps each property to its CSS text for this frame
	Values map[string]string `json:"values"`
}

// Completion is delivered once when a run finishes
type Completion struct {
	// Values are the concrete values of the final frame
	Values map[string]string `json:"values"`

	// Symbolic holds the unresolved end expressions when RestoreSymbolic is
	// set, so callers can leave var() references in place as terminal state
	Symbolic map[string]string `json:"symbolic,omitempty"`
}

// FailurePolicy decides what a frame does when a property fails to resolve
type FailurePolicy int

const (
	// SkipFrame delivers no update for the frame
	SkipFrame FailurePolicy = iota
	// HoldLast reuses the property's last good value
	HoldLast
)

type options struct {
	onUpdate        func(Sample)
	onComplete      func(Completion)
	onError         func(error)
	policy          FailurePolicy
	maxDepth        int
	restoreSymbolic bool
}

// Option configures a Run
type Option func(*options)

// OnUpdate sets the callback that receives each frame
func OnUpdate(fn func(Sample)) Option {
	return func(o *options) { o.onUpdate = fn }
}

// OnComplete sets the callback invoked once when the run finishes
func OnComplete(fn func(Completion)) Option {
	return func(o *options) { o.onComplete = fn }
}

// OnError sets the callback that receives frame failures
func OnError(fn func(error)) Option {
	return func(o *options) { o.onError = fn }
}

// WithFailurePolicy sets how unresolvable properties are handled
func WithFailurePolicy(policy FailurePolicy) Option {
	return func(o *options) { o.policy = policy }
}

// WithMaxDepth bounds the fallback chain length of each reference
func WithMaxDepth(depth int) Option {
	return func(o *options) { o.maxDepth = depth }
}

// RestoreSymbolic reports the symbolic end values on completion
func RestoreSymbolic() Option {
	return func(o *options) { o.restoreSymbolic = true }
}

// Run animates a set of properties. A Run is not safe for concurrent use;
// Loop confines runs to a single goroutine.
type Run struct {
	source   Source
	names    []string
	targets  map[string]Target
	timeline timeline
	opts     options
	resolver resolver.Resolver

	state     State
	baselined bool
	startedAt time.Time
	elapsed   time.Duration
	progress  float64
	reversed  bool

	// last good value per property, for HoldLast and failed final frames
	last map[string]string
}

// New creates an idle run
func New(source Source, props map[string]Target, transition Transition, opts ...Option) (*Run, error) {
	if source == nil {
		return nil, fmt.Errorf("%w: nil style source", ErrInvalidTransition)
	}
	if len(props) == 0 {
		return nil, ErrNoProperties
	}

	tl, err := transition.compile()
	if err != nil {
		return nil, err
	}

	r := &Run{
		source:   source,
		names:    slices.Sorted(maps.Keys(props)),
		targets:  maps.Clone(props),
		timeline: tl,
		last:     make(map[string]string, len(props)),
	}
	for _, opt := range opts {
		opt(&r.opts)
	}
	r.resolver = resolver.Resolver{MaxDepth: r.opts.maxDepth}
	return r, nil
}

// State returns the lifecycle state
func (r *Run) State() State {
	return r.state
}

// Done reports whether the run will accept no further ticks
func (r *Run) Done() bool {
	return r.state == Completed || r.state == Cancelled
}

// Progress returns the progress of the last delivered frame
func (r *Run) Progress() float64 {
	return r.progress
}

// Properties returns the animated property names, sorted
func (r *Run) Properties() []string {
	return slices.Clone(r.names)
}

// Start moves an idle run to Running. The first Tick after Start becomes the
// baseline frame.
func (r *Run) Start() error {
	if r.state != Idle {
		return fmt.Errorf("%w: run is %s", ErrAlreadyStarted, r.state)
	}
	r.state = Running
	log.Debug("Starting animation of %v", r.names)
	return nil
}

// Cancel stops the run. No callbacks are invoked after Cancel returns.
func (r *Run) Cancel() {
	if r.Done() {
		return
	}
	r.state = Cancelled
	log.Debug("Cancelled animation of %v", r.names)
}

// Tick advances the run to now and delivers a frame.
//
// The first tick establishes the baseline and delivers the starting values at
// progress 0. Ticks during the transition delay deliver nothing, and so do
// ticks whose time does not move past the last one, so delivered progress
// strictly increases until the run repeats. Ticks on a finished run are
// ignored.
//
// Tick returns an error only when the run cannot continue, in which case the
// run is Cancelled.
func (r *Run) Tick(now time.Time) error {
	switch r.state {
	case Idle:
		return ErrNotStarted
	case Completed, Cancelled:
		return nil
	}

	if !r.baselined {
		r.baselined = true
		r.startedAt = now
		return r.frame(0, 0, 0, false)
	}

	elapsed := now.Sub(r.startedAt)
	if elapsed <= r.elapsed {
		return nil
	}
	r.elapsed = elapsed

	p, ok := r.timeline.position(r.elapsed)
	if !ok {
		return nil
	}
	if r.timeline.iterations > 0 && !p.done && p.progress <= r.progress {
		return nil
	}
	r.reversed = p.reversed
	return r.frame(p.progress, p.t, p.iteration, p.done)
}

func (r *Run) frame(progress, t float64, iteration int, done bool) error {
	values, err := r.sample(t)
	if err != nil {
		r.state = Cancelled
		log.Error("Animation of %v cancelled: %v", r.names, err)
		return err
	}

	if r.state != Running {
		return nil
	}

	r.progress = progress
	if values != nil && r.opts.onUpdate != nil {
		r.opts.onUpdate(Sample{Progress: progress, Iteration: iteration, Values: values})
	}

	if done && r.state == Running {
		r.complete(values)
	}
	return nil
}

// sample computes every property at eased t. It returns nil values when the
// frame must be skipped and an error when the run must stop.
func (r *Run) sample(t float64) (map[string]string, error) {
	values := make(map[string]string, len(r.names))
	skip := false

	for _, name := range r.names {
		v, err := r.interpolate(r.targets[name], t)
		if err == nil {
			values[name] = v
			continue
		}

		frameErr := NewFrameError(name, err)
		if IsFatal(err) {
			r.report(frameErr)
			return nil, frameErr
		}
		r.report(frameErr)

		if held, ok := r.last[name]; ok && r.opts.policy == HoldLast {
			values[name] = held
			continue
		}
		skip = true
	}

	if skip {
		log.Debug("Skipping frame at t=%g", t)
		return nil, nil
	}
	maps.Copy(r.last, values)
	return values, nil
}

func (r *Run) interpolate(target Target, t float64) (string, error) {
	from, err := r.resolve(target.From)
	if err != nil {
		return "", err
	}
	to, err := r.resolve(target.To)
	if err != nil {
		return "", err
	}
	v, err := value.Interpolate(from, to, t, value.WithColorSpace(r.timeline.colorSpace))
	if err != nil {
		return "", err
	}
	return v.String(), nil
}

func (r *Run) resolve(expr string) (value.Value, error) {
	concrete, err := r.resolver.ResolveValue(expr, r.source)
	if err != nil {
		return value.Value{}, err
	}
	return value.Parse(concrete)
}

func (r *Run) report(err error) {
	if r.state != Running {
		return
	}
	log.Debug("Frame failed: %v", err)
	if r.opts.onError != nil {
		r.opts.onError(err)
	}
}

func (r *Run) complete(values map[string]string) {
	r.state = Completed

	completion := Completion{Values: values}
	if completion.Values == nil {
		completion.Values = maps.Clone(r.last)
	}
	if r.opts.restoreSymbolic {
		completion.Symbolic = make(map[string]string, len(r.names))
		for _, name := range r.names {
			target := r.targets[name]
			if r.reversed {
				completion.Symbolic[name] = target.From
			} else {
				completion.Symbolic[name] = target.To
			}
		}
	}

	log.Debug("Completed animation of %v", r.names)
	if r.opts.onComplete != nil {
		r.opts.onComplete(completion)
	}
}
