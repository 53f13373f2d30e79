package animation_test

import (
	"errors"
	"math"
	"testing"
	"time"

	"bennypowers.dev/varmotion/animation"
	"bennypowers.dev/varmotion/internal/resolver"
	"bennypowers.dev/varmotion/internal/style"
	"bennypowers.dev/varmotion/internal/value"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func at(ms int) time.Time {
	return epoch.Add(time.Duration(ms) * time.Millisecond)
}

// recorder collects every callback a run makes, in order
type recorder struct {
	events      []string
	samples     []animation.Sample
	completions []animation.Completion
	errors      []error
}

func (r *recorder) options() []animation.Option {
	return []animation.Option{
		animation.OnUpdate(func(s animation.Sample) {
			r.events = append(r.events, "update")
			r.samples = append(r.samples, s)
		}),
		animation.OnComplete(func(c animation.Completion) {
			r.events = append(r.events, "complete")
			r.completions = append(r.completions, c)
		}),
		animation.OnError(func(err error) {
			r.events = append(r.events, "error")
			r.errors = append(r.errors, err)
		}),
	}
}

func (r *recorder) last() animation.Sample {
	return r.samples[len(r.samples)-1]
}

func linear(d time.Duration) animation.Transition {
	return animation.Transition{Type: animation.TypeTween, Duration: d, Ease: "linear"}
}

func start(t *testing.T, source animation.Source, props map[string]animation.Target, tr animation.Transition, opts ...animation.Option) *animation.Run {
	t.Helper()
	run, err := animation.New(source, props, tr, opts...)
	require.NoError(t, err)
	require.NoError(t, run.Start())
	return run
}

func TestRunColorBetweenReferences(t *testing.T) {
	source := style.NewMapSource(map[string]string{
		"--from": "#09F",
		"--to":   "#F00",
	})
	rec := &recorder{}
	run := start(t, source,
		map[string]animation.Target{"color": {From: "var(--from)", To: "var(--to)"}},
		linear(300*time.Millisecond),
		rec.options()...)

	require.NoError(t, run.Tick(at(0)))
	require.Len(t, rec.samples, 1)
	assert.Equal(t, 0.0, rec.samples[0].Progress)
	assert.Equal(t, "#09F", rec.samples[0].Values["color"], "baseline frame delivers the start value")

	require.NoError(t, run.Tick(at(16)))
	require.Len(t, rec.samples, 2)

	second := rec.samples[1].Values["color"]
	for _, endpoint := range []string{"#09F", "#F00", "var(--from)", "var(--to)"} {
		assert.NotEqual(t, endpoint, second)
	}
	got, err := value.Parse(second)
	require.NoError(t, err)
	assert.Equal(t, value.KindColor, got.Kind)
	assert.False(t, got.Equal(value.MustParse("#09F")), "second frame %s equals start", second)
	assert.False(t, got.Equal(value.MustParse("#F00")), "second frame %s equals end", second)
	assert.Greater(t, rec.samples[1].Progress, 0.0)
	assert.Empty(t, rec.errors)
}

func TestRunCompletion(t *testing.T) {
	props := map[string]animation.Target{"color": {From: "var(--from)", To: "var(--to)"}}
	source := style.NewMapSource(map[string]string{"--from": "#09F", "--to": "#F00"})

	t.Run("final update precedes a single completion", func(t *testing.T) {
		rec := &recorder{}
		run := start(t, source, props, linear(300*time.Millisecond),
			append(rec.options(), animation.RestoreSymbolic())...)

		for _, ms := range []int{0, 150, 300, 316, 400} {
			require.NoError(t, run.Tick(at(ms)))
		}

		assert.Equal(t, []string{"update", "update", "update", "complete"}, rec.events)
		assert.Equal(t, 1.0, rec.last().Progress)
		assert.Equal(t, "#F00", rec.last().Values["color"])

		require.Len(t, rec.completions, 1)
		assert.Equal(t, map[string]string{"color": "#F00"}, rec.completions[0].Values)
		assert.Equal(t, map[string]string{"color": "var(--to)"}, rec.completions[0].Symbolic)
		assert.Equal(t, animation.Completed, run.State())
		assert.True(t, run.Done())
	})

	t.Run("symbolic values are opt in", func(t *testing.T) {
		rec := &recorder{}
		run := start(t, source, props, linear(100*time.Millisecond), rec.options()...)

		require.NoError(t, run.Tick(at(0)))
		require.NoError(t, run.Tick(at(500)))

		require.Len(t, rec.completions, 1)
		assert.Nil(t, rec.completions[0].Symbolic)
	})

	t.Run("overshooting tick lands exactly on the end value", func(t *testing.T) {
		rec := &recorder{}
		run := start(t, source, props, animation.Transition{
			Duration: 100 * time.Millisecond,
			Ease:     "backOut",
		}, rec.options()...)

		require.NoError(t, run.Tick(at(0)))
		require.NoError(t, run.Tick(at(10_000)))

		assert.Equal(t, "#F00", rec.last().Values["color"])
		assert.Len(t, rec.completions, 1)
	})
}

func TestRunLifecycle(t *testing.T) {
	source := style.NewMapSource(map[string]string{"--size": "100px"})
	props := map[string]animation.Target{"width": {From: "0px", To: "var(--size)"}}

	t.Run("tick before start", func(t *testing.T) {
		run, err := animation.New(source, props, linear(time.Second))
		require.NoError(t, err)
		assert.Equal(t, animation.Idle, run.State())
		assert.ErrorIs(t, run.Tick(at(0)), animation.ErrNotStarted)
	})

	t.Run("start twice", func(t *testing.T) {
		run := start(t, source, props, linear(time.Second))
		assert.Equal(t, animation.Running, run.State())
		assert.ErrorIs(t, run.Start(), animation.ErrAlreadyStarted)
	})

	t.Run("cancel stops callbacks", func(t *testing.T) {
		rec := &recorder{}
		run := start(t, source, props, linear(100*time.Millisecond), rec.options()...)

		require.NoError(t, run.Tick(at(0)))
		run.Cancel()
		run.Cancel()

		require.NoError(t, run.Tick(at(50)))
		require.NoError(t, run.Tick(at(200)))

		assert.Equal(t, []string{"update"}, rec.events)
		assert.Equal(t, animation.Cancelled, run.State())
		assert.ErrorIs(t, run.Start(), animation.ErrAlreadyStarted)
	})

	t.Run("cancel during the final update suppresses completion", func(t *testing.T) {
		var run *animation.Run
		completed := false
		run = start(t, source, props, linear(100*time.Millisecond),
			animation.OnUpdate(func(s animation.Sample) {
				if s.Progress == 1 {
					run.Cancel()
				}
			}),
			animation.OnComplete(func(animation.Completion) { completed = true }))

		require.NoError(t, run.Tick(at(0)))
		require.NoError(t, run.Tick(at(100)))
		assert.False(t, completed)
		assert.Equal(t, animation.Cancelled, run.State())
	})

	t.Run("state names", func(t *testing.T) {
		assert.Equal(t, "idle", animation.Idle.String())
		assert.Equal(t, "running", animation.Running.String())
		assert.Equal(t, "completed", animation.Completed.String())
		assert.Equal(t, "cancelled", animation.Cancelled.String())
		assert.Equal(t, "unknown", animation.State(42).String())
	})

	t.Run("properties are sorted", func(t *testing.T) {
		run, err := animation.New(source, map[string]animation.Target{
			"width":  {From: "0px", To: "1px"},
			"height": {From: "0px", To: "1px"},
		}, linear(time.Second))
		require.NoError(t, err)
		assert.Equal(t, []string{"height", "width"}, run.Properties())
	})
}

func TestRunReresolvesEveryFrame(t *testing.T) {
	source := style.NewMapSource(map[string]string{"--size": "100px"})
	rec := &recorder{}
	run := start(t, source,
		map[string]animation.Target{"width": {From: "0px", To: "var(--size)"}},
		linear(100*time.Millisecond),
		rec.options()...)

	require.NoError(t, run.Tick(at(0)))
	require.NoError(t, run.Tick(at(50)))
	assert.Equal(t, "50px", rec.last().Values["width"])

	source.Set("--size", "200px")
	require.NoError(t, run.Tick(at(75)))
	assert.Equal(t, "150px", rec.last().Values["width"])

	require.NoError(t, run.Tick(at(100)))
	assert.Equal(t, "200px", rec.last().Values["width"])
}

func TestRunFailurePolicy(t *testing.T) {
	props := map[string]animation.Target{"width": {From: "0px", To: "var(--size)"}}

	t.Run("skip frame", func(t *testing.T) {
		source := style.NewMapSource(map[string]string{"--size": "100px"})
		rec := &recorder{}
		run := start(t, source, props, linear(100*time.Millisecond), rec.options()...)

		require.NoError(t, run.Tick(at(0)))
		require.NoError(t, run.Tick(at(50)))

		source.Delete("--size")
		require.NoError(t, run.Tick(at(75)))

		assert.Equal(t, []string{"update", "update", "error"}, rec.events)
		require.Len(t, rec.errors, 1)

		var frameErr *animation.FrameError
		require.ErrorAs(t, rec.errors[0], &frameErr)
		assert.Equal(t, "width", frameErr.Property)
		assert.ErrorIs(t, rec.errors[0], resolver.ErrUnresolvedVariable)
		assert.Equal(t, animation.Running, run.State())

		source.Set("--size", "100px")
		require.NoError(t, run.Tick(at(90)))
		assert.Equal(t, "90px", rec.last().Values["width"])
	})

	t.Run("hold last", func(t *testing.T) {
		source := style.NewMapSource(map[string]string{"--size": "100px"})
		rec := &recorder{}
		run := start(t, source, props, linear(100*time.Millisecond),
			append(rec.options(), animation.WithFailurePolicy(animation.HoldLast))...)

		require.NoError(t, run.Tick(at(0)))
		require.NoError(t, run.Tick(at(50)))

		source.Delete("--size")
		require.NoError(t, run.Tick(at(75)))

		assert.Equal(t, []string{"update", "update", "error", "update"}, rec.events)
		assert.Equal(t, "50px", rec.last().Values["width"])
		assert.Equal(t, 0.75, rec.last().Progress)
	})

	t.Run("hold last without a good value skips", func(t *testing.T) {
		source := style.NewMapSource(nil)
		rec := &recorder{}
		run := start(t, source, props, linear(100*time.Millisecond),
			append(rec.options(), animation.WithFailurePolicy(animation.HoldLast))...)

		require.NoError(t, run.Tick(at(0)))
		assert.Equal(t, []string{"error"}, rec.events)
	})

	t.Run("failed final frame completes with last good values", func(t *testing.T) {
		source := style.NewMapSource(map[string]string{"--size": "100px"})
		rec := &recorder{}
		run := start(t, source, props, linear(100*time.Millisecond), rec.options()...)

		require.NoError(t, run.Tick(at(0)))
		require.NoError(t, run.Tick(at(50)))
		source.Delete("--size")
		require.NoError(t, run.Tick(at(100)))

		require.Len(t, rec.completions, 1)
		assert.Equal(t, map[string]string{"width": "50px"}, rec.completions[0].Values)
	})

	t.Run("depth limit is recoverable", func(t *testing.T) {
		source := style.NewMapSource(nil)
		rec := &recorder{}
		run := start(t, source,
			map[string]animation.Target{"width": {From: "0px", To: "var(--a, var(--b, var(--c, 1px)))"}},
			linear(100*time.Millisecond),
			append(rec.options(), animation.WithMaxDepth(2))...)

		require.NoError(t, run.Tick(at(0)))
		require.Len(t, rec.errors, 1)
		assert.ErrorIs(t, rec.errors[0], resolver.ErrMaxDepthExceeded)
		assert.Equal(t, animation.Running, run.State())
	})
}

func TestRunKindMismatchCancels(t *testing.T) {
	source := style.NewMapSource(map[string]string{"--to": "#F00"})
	rec := &recorder{}
	run := start(t, source,
		map[string]animation.Target{"width": {From: "10px", To: "var(--to)"}},
		linear(100*time.Millisecond),
		rec.options()...)

	err := run.Tick(at(0))
	require.Error(t, err)
	assert.ErrorIs(t, err, value.ErrKindMismatch)
	assert.True(t, animation.IsFatal(err))
	assert.Equal(t, animation.Cancelled, run.State())
	assert.Equal(t, []string{"error"}, rec.events)

	require.NoError(t, run.Tick(at(50)))
	assert.Len(t, rec.events, 1)
}

func TestRunTiming(t *testing.T) {
	source := style.NewMapSource(nil)
	props := map[string]animation.Target{"width": {From: "0px", To: "100px"}}

	t.Run("delay", func(t *testing.T) {
		rec := &recorder{}
		tr := linear(100 * time.Millisecond)
		tr.Delay = 100 * time.Millisecond
		run := start(t, source, props, tr, rec.options()...)

		require.NoError(t, run.Tick(at(0)))
		require.NoError(t, run.Tick(at(50)))
		assert.Len(t, rec.samples, 1, "no frames during the delay")

		require.NoError(t, run.Tick(at(150)))
		require.Len(t, rec.samples, 2)
		assert.Equal(t, "50px", rec.last().Values["width"])
		assert.Equal(t, 0.5, rec.last().Progress)
	})

	t.Run("progress strictly increases", func(t *testing.T) {
		rec := &recorder{}
		run := start(t, source, props, linear(100*time.Millisecond), rec.options()...)

		for _, ms := range []int{0, 60, 30, 60, 70, 10, 100} {
			require.NoError(t, run.Tick(at(ms)))
		}
		require.Len(t, rec.samples, 4, "stale ticks deliver nothing")
		for i := 1; i < len(rec.samples); i++ {
			assert.Greater(t, rec.samples[i].Progress, rec.samples[i-1].Progress)
		}
		assert.Len(t, rec.completions, 1)
	})

	t.Run("repeated timestamp delivers one frame", func(t *testing.T) {
		source := style.NewMapSource(map[string]string{"--from": "#09F", "--to": "#F00"})
		rec := &recorder{}
		run := start(t, source,
			map[string]animation.Target{"background": {From: "var(--from)", To: "var(--to)"}},
			linear(300*time.Millisecond), rec.options()...)

		require.NoError(t, run.Tick(at(0)))
		require.NoError(t, run.Tick(at(0)))
		require.Len(t, rec.samples, 1)

		require.NoError(t, run.Tick(at(16)))
		require.NoError(t, run.Tick(at(16)))
		require.Len(t, rec.samples, 2)
		assert.Greater(t, rec.samples[1].Progress, 0.0)
		assert.NotEqual(t, "#09F", rec.samples[1].Values["background"])
	})

	t.Run("repeat loop", func(t *testing.T) {
		rec := &recorder{}
		tr := linear(100 * time.Millisecond)
		tr.Repeat = 1
		run := start(t, source, props, tr, rec.options()...)

		require.NoError(t, run.Tick(at(0)))
		require.NoError(t, run.Tick(at(150)))
		assert.Equal(t, "50px", rec.last().Values["width"])
		assert.Equal(t, 1, rec.last().Iteration)
		assert.Equal(t, 0.75, rec.last().Progress)
		assert.Empty(t, rec.completions)

		require.NoError(t, run.Tick(at(200)))
		assert.Equal(t, "100px", rec.last().Values["width"])
		assert.Equal(t, 2, rec.last().Iteration, "final frame counts every iteration")
		assert.Len(t, rec.completions, 1)
	})

	t.Run("repeat reverse ends at the start", func(t *testing.T) {
		rec := &recorder{}
		tr := linear(100 * time.Millisecond)
		tr.Repeat = 1
		tr.RepeatType = animation.RepeatReverse
		run := start(t, source,
			map[string]animation.Target{"width": {From: "0px", To: "var(--size, 100px)"}},
			tr, append(rec.options(), animation.RestoreSymbolic())...)

		require.NoError(t, run.Tick(at(0)))
		require.NoError(t, run.Tick(at(50)))
		assert.Equal(t, "50px", rec.last().Values["width"])
		require.NoError(t, run.Tick(at(175)))
		assert.Equal(t, "25px", rec.last().Values["width"])
		require.NoError(t, run.Tick(at(200)))
		assert.Equal(t, "0px", rec.last().Values["width"])

		require.Len(t, rec.completions, 1)
		assert.Equal(t, map[string]string{"width": "0px"}, rec.completions[0].Symbolic)
	})

	t.Run("infinite repeat never completes", func(t *testing.T) {
		rec := &recorder{}
		tr := linear(100 * time.Millisecond)
		tr.Repeat = animation.Infinite
		run := start(t, source, props, tr, rec.options()...)

		for ms := 0; ms <= 10_000; ms += 16 {
			require.NoError(t, run.Tick(at(ms)))
		}
		assert.Empty(t, rec.completions)
		assert.Equal(t, animation.Running, run.State())
		assert.Greater(t, rec.last().Iteration, 90)
	})

	t.Run("spring without parameters uses the default spring", func(t *testing.T) {
		rec := &recorder{}
		run := start(t, source, props, animation.Transition{Type: animation.TypeSpring}, rec.options()...)

		for ms := 0; ms <= 3_000 && !run.Done(); ms += 16 {
			require.NoError(t, run.Tick(at(ms)))
		}
		require.Len(t, rec.completions, 1, "default spring settles well inside 3s")
		for i := 1; i < len(rec.samples); i++ {
			jump := value.MustParse(rec.samples[i].Values["width"]).Number - value.MustParse(rec.samples[i-1].Values["width"]).Number
			assert.Less(t, math.Abs(jump), 50.0, "frame %d jumps %gpx", i, jump)
		}
	})

	t.Run("spring settles on the end value", func(t *testing.T) {
		rec := &recorder{}
		run := start(t, source, props, animation.Transition{
			Type:      animation.TypeSpring,
			Stiffness: 200,
			Damping:   10,
		}, rec.options()...)

		for ms := 0; ms <= 12_000 && !run.Done(); ms += 16 {
			require.NoError(t, run.Tick(at(ms)))
		}
		require.Len(t, rec.completions, 1)
		assert.Equal(t, "100px", rec.last().Values["width"])
		assert.Greater(t, len(rec.samples), 2)
	})
}

func TestNewValidation(t *testing.T) {
	source := style.NewMapSource(nil)
	props := map[string]animation.Target{"width": {From: "0px", To: "1px"}}

	tests := []struct {
		name       string
		transition animation.Transition
	}{
		{"zero duration tween", animation.Transition{Type: animation.TypeTween}},
		{"negative delay", animation.Transition{Duration: time.Second, Delay: -time.Second}},
		{"unknown ease", animation.Transition{Duration: time.Second, Ease: "wobble"}},
		{"malformed bezier", animation.Transition{Duration: time.Second, Ease: "cubic-bezier(2, 0, 1)"}},
		{"unknown type", animation.Transition{Type: "keyframes", Duration: time.Second}},
		{"unknown repeat type", animation.Transition{Duration: time.Second, RepeatType: "pingpong"}},
		{"bad repeat", animation.Transition{Duration: time.Second, Repeat: -2}},
		{"unknown color space", animation.Transition{Duration: time.Second, ColorSpace: "cmyk"}},
		{"negative stiffness", animation.Transition{Type: animation.TypeSpring, Stiffness: -1}},
		{"spring that never settles", animation.Transition{Type: animation.TypeSpring, Damping: 0.01}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := animation.New(source, props, tt.transition)
			assert.ErrorIs(t, err, animation.ErrInvalidTransition)
		})
	}

	t.Run("nil source", func(t *testing.T) {
		_, err := animation.New(nil, props, animation.DefaultTransition())
		assert.ErrorIs(t, err, animation.ErrInvalidTransition)
	})

	t.Run("no properties", func(t *testing.T) {
		_, err := animation.New(source, nil, animation.DefaultTransition())
		assert.ErrorIs(t, err, animation.ErrNoProperties)
	})

	t.Run("default transition is valid", func(t *testing.T) {
		_, err := animation.New(source, props, animation.DefaultTransition())
		assert.NoError(t, err)
	})
}

func TestFrameError(t *testing.T) {
	err := animation.NewFrameError("color", resolver.ErrUnresolvedVariable)
	assert.Equal(t, "property color: unresolved variable", err.Error())
	assert.True(t, errors.Is(err, resolver.ErrUnresolvedVariable))
	assert.False(t, animation.IsFatal(err))
}
