package animation

import (
	"context"
	"slices"
	"sync"
	"time"

	"bennypowers.dev/varmotion/internal/log"
)

// DefaultFPS is the frame rate used when NewLoop is given zero
const DefaultFPS = 60

// Loop ticks many runs from one goroutine at a fixed frame rate.
// Runs handed to a loop must not be touched by other goroutines; use
// Loop.Cancel to stop one early.
type Loop struct {
	interval time.Duration
	runs     []*Run

	mu      sync.Mutex
	adds    []*Run
	cancels []*Run
	wake    chan struct{}
}

// NewLoop creates a loop that ticks fps times per second
func NewLoop(fps int) *Loop {
	if fps <= 0 {
		fps = DefaultFPS
	}
	return &Loop{
		interval: time.Second / time.Duration(fps),
		wake:     make(chan struct{}, 1),
	}
}

// Interval returns the time between frames
func (l *Loop) Interval() time.Duration {
	return l.interval
}

// Add queues run for the loop. Idle runs are started when the loop picks
// them up. Add never blocks and may be called before the loop runs.
func (l *Loop) Add(run *Run) {
	l.mu.Lock()
	l.adds = append(l.adds, run)
	l.mu.Unlock()
	l.notify()
}

// Cancel stops run from the loop goroutine before the next frame is ticked.
// Cancelling a run that already finished has no effect.
func (l *Loop) Cancel(run *Run) {
	l.mu.Lock()
	l.cancels = append(l.cancels, run)
	l.mu.Unlock()
	l.notify()
}

func (l *Loop) notify() {
	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// Run ticks runs until ctx is done
func (l *Loop) Run(ctx context.Context) error {
	return l.run(ctx, false)
}

// RunUntilDone ticks runs until every added run has finished or ctx is done
func (l *Loop) RunUntilDone(ctx context.Context) error {
	return l.run(ctx, true)
}

func (l *Loop) run(ctx context.Context, untilDone bool) error {
	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			l.drain()
			for _, run := range l.runs {
				run.Cancel()
			}
			l.runs = nil
			return ctx.Err()

		case <-l.wake:
			l.drain()

		case now := <-ticker.C:
			l.drain()
			l.cycle(now)
			if untilDone && len(l.runs) == 0 && !l.pending() {
				return nil
			}
		}
	}
}

// drain applies queued adds, then queued cancels
func (l *Loop) drain() {
	l.mu.Lock()
	adds, cancels := l.adds, l.cancels
	l.adds, l.cancels = nil, nil
	l.mu.Unlock()

	for _, run := range adds {
		l.accept(run)
	}
	if len(cancels) == 0 {
		return
	}
	for _, run := range cancels {
		if run != nil {
			run.Cancel()
		}
	}
	l.runs = slices.DeleteFunc(l.runs, (*Run).Done)
}

func (l *Loop) pending() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.adds) > 0 || len(l.cancels) > 0
}

func (l *Loop) accept(run *Run) {
	if run == nil || run.Done() {
		return
	}
	if run.State() == Idle {
		if err := run.Start(); err != nil {
			log.Warn("Failed to start animation: %v", err)
			return
		}
	}
	l.runs = append(l.runs, run)
}

func (l *Loop) cycle(now time.Time) {
	active := l.runs[:0]
	for _, run := range l.runs {
		if err := run.Tick(now); err != nil {
			log.Debug("Dropping animation of %v: %v", run.names, err)
		}
		if !run.Done() {
			active = append(active, run)
		}
	}
	clear(l.runs[len(active):])
	l.runs = active
}
