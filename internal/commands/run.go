package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"slices"
	"strings"

	"bennypowers.dev/varmotion/animation"
	"bennypowers.dev/varmotion/internal/config"
	"bennypowers.dev/varmotion/internal/documents"
	"bennypowers.dev/varmotion/internal/log"
	"github.com/pivotal-cf/jhanda"
)

type Run struct {
	output io.Writer

	Options struct {
		Root       string   `short:"r" long:"root"      default:"." description:"project root"`
		Config     string   `short:"c" long:"config"                description:"path to configuration file"`
		Animations []string `short:"a" long:"animation"             description:"animation to play (defaults to all)"`
		FPS        int      `short:"f" long:"fps"                   description:"frames per second (overrides configuration)"`
		Watch      bool     `short:"w" long:"watch"                 description:"reload style files while animations play"`
	}
}

func NewRun(output io.Writer) Run {
	return Run{output: output}
}

// frameRecord is one JSON line of run output
type frameRecord struct {
	Animation string            `json:"animation"`
	Progress  float64           `json:"progress"`
	Iteration int               `json:"iteration"`
	Values    map[string]string `json:"values"`
}

// completionRecord is the JSON line written when an animation finishes
type completionRecord struct {
	Animation string            `json:"animation"`
	Complete  bool              `json:"complete"`
	Values    map[string]string `json:"values"`
	Symbolic  map[string]string `json:"symbolic,omitempty"`
}

func (r Run) Execute(args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return r.ExecuteContext(ctx, args)
}

// ExecuteContext plays the selected animations until they finish or ctx is
// done, writing one JSON line per frame
func (r Run) ExecuteContext(ctx context.Context, args []string) error {
	if _, err := jhanda.Parse(&r.Options, args); err != nil {
		return err
	}

	ws, err := loadWorkspace(r.Options.Root, r.Options.Config, nil)
	if err != nil {
		return err
	}

	selected, err := r.selectAnimations(ws.config)
	if err != nil {
		return err
	}

	fps := ws.config.FPS
	if r.Options.FPS > 0 {
		fps = r.Options.FPS
	}
	loop := animation.NewLoop(fps)

	var failed []string
	encoder := json.NewEncoder(r.output)

	for _, a := range selected {
		run, err := r.newRun(ws, a, encoder, func(err error) {
			failed = append(failed, fmt.Sprintf("%s: %v", a.Name, err))
		})
		if err != nil {
			return fmt.Errorf("animation %s: %w", a.Name, err)
		}
		loop.Add(run)
	}

	if r.Options.Watch {
		stopWatching, err := watch(ctx, ws.manager)
		if err != nil {
			return err
		}
		defer stopWatching()
	}

	if err := loop.RunUntilDone(ctx); err != nil {
		return err
	}

	if len(failed) > 0 {
		return fmt.Errorf("%d animation(s) failed: %v", len(failed), failed)
	}
	return nil
}

func (r Run) selectAnimations(cfg *config.Config) ([]config.Animation, error) {
	if len(cfg.Animations) == 0 {
		return nil, fmt.Errorf("%w: no animations configured", config.ErrInvalidConfig)
	}
	if len(r.Options.Animations) == 0 {
		return cfg.Animations, nil
	}

	var selected []config.Animation
	for _, name := range r.Options.Animations {
		a, ok := cfg.Animation(name)
		if !ok {
			return nil, fmt.Errorf("unknown animation %q, configured: %s", name, strings.Join(animationNames(cfg), ", "))
		}
		selected = append(selected, a)
	}
	return selected, nil
}

func (r Run) newRun(ws *workspace, a config.Animation, encoder *json.Encoder, fail func(error)) (*animation.Run, error) {
	policy, err := ws.config.Policy()
	if err != nil {
		return nil, err
	}

	opts := []animation.Option{
		animation.WithFailurePolicy(policy),
		animation.WithMaxDepth(ws.config.MaxDepth),
		animation.OnUpdate(func(s animation.Sample) {
			r.emit(encoder, frameRecord{
				Animation: a.Name,
				Progress:  s.Progress,
				Iteration: s.Iteration,
				Values:    s.Values,
			})
		}),
		animation.OnComplete(func(c animation.Completion) {
			r.emit(encoder, completionRecord{
				Animation: a.Name,
				Complete:  true,
				Values:    c.Values,
				Symbolic:  c.Symbolic,
			})
		}),
		animation.OnError(func(err error) {
			if animation.IsFatal(err) {
				fail(err)
				return
			}
			log.Warn("%s: %v", a.Name, err)
		}),
	}
	if ws.config.RestoreSymbolic {
		opts = append(opts, animation.RestoreSymbolic())
	}

	return animation.New(ws.source, a.Properties, a.Transition, opts...)
}

func (r Run) emit(encoder *json.Encoder, record any) {
	if err := encoder.Encode(record); err != nil {
		log.Error("Failed to write frame: %v", err)
	}
}

// watch reloads the manager's files as they change until the returned stop
// function is called
func watch(ctx context.Context, manager *documents.Manager) (func(), error) {
	watcher, err := documents.NewWatcher(manager, documents.DefaultDebounce)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := watcher.Run(ctx); err != nil && ctx.Err() == nil {
			log.Error("File watcher stopped: %v", err)
		}
	}()

	return func() {
		cancel()
		<-done
	}, nil
}

func (r Run) Usage() jhanda.Usage {
	return jhanda.Usage{
		Description:      "This command plays configured animations against the project's style files and prints one JSON line per frame.",
		ShortDescription: "plays animations and prints frames as JSON lines",
		Flags:            r.Options,
	}
}

// animationNames lists configured animations for error messages
func animationNames(cfg *config.Config) []string {
	var names []string
	for _, a := range cfg.Animations {
		names = append(names, a.Name)
	}
	slices.Sort(names)
	return names
}
