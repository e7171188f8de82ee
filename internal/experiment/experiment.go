package experiment

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/san-kum/mapstory/internal/automation"
	"github.com/san-kum/mapstory/internal/config"
	"github.com/san-kum/mapstory/internal/engine"
	"github.com/san-kum/mapstory/internal/metrics"
	"github.com/san-kum/mapstory/internal/nav"
	"github.com/san-kum/mapstory/internal/storage"
	"github.com/san-kum/mapstory/internal/story"
	"github.com/san-kum/mapstory/internal/trace"
)

var ErrNotSetup = errors.New("experiment not setup")

// tail keeps a headless run going after the last scripted action so the
// resulting waits and reveals land in the trace.
const tail = 5 * time.Second

type Config struct {
	Story    *story.File
	Settings *config.Config
	Scenario *automation.Scenario
	Preset   string
	// Duration bounds the run; zero runs until playback finishes and the
	// scenario is done.
	Duration time.Duration
}

// Experiment is one engine, its recorder and the metrics computed over the
// trace. Interactive front ends use Setup and drive the clock themselves;
// Run drives it headless.
type Experiment struct {
	cfg      Config
	eng      *engine.Engine
	rec      *trace.Recorder
	metrics  []metrics.Metric
	finished bool
	pending  int
}

func New(cfg Config) *Experiment {
	if cfg.Settings == nil {
		cfg.Settings = config.DefaultConfig()
	}
	if cfg.Story == nil {
		cfg.Story = story.Builtin()
	}
	return &Experiment{cfg: cfg, metrics: metrics.Default()}
}

// Setup builds the engine. hooks see every notification after the recorder
// has stamped it.
func (e *Experiment) Setup(hooks engine.Hooks, logger *log.Logger) error {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	reg, err := e.cfg.Story.Registry()
	if err != nil {
		return fmt.Errorf("story %q: %w", e.cfg.Story.Title, err)
	}

	onFinished := hooks.OnFinished
	hooks.OnFinished = func() {
		e.finished = true
		if onFinished != nil {
			onFinished()
		}
	}

	ecfg := e.cfg.Settings.Engine(nav.Page(e.cfg.Story.TimelinePage))
	ecfg.View = e.cfg.Story.InitialView()

	e.rec = trace.NewRecorder(nil, 0)
	eng, err := engine.New(engine.Options{
		Registry: reg,
		Config:   ecfg,
		Hooks:    e.rec.Hooks(hooks),
		Logger:   logger,
	})
	if err != nil {
		return err
	}
	e.rec.Bind(eng)
	eng.AddFrameObserver(e.rec)
	e.eng = eng
	return nil
}

func (e *Experiment) Engine() *engine.Engine    { return e.eng }
func (e *Experiment) Recorder() *trace.Recorder { return e.rec }
func (e *Experiment) Finished() bool            { return e.finished }

// Begin starts the engine, applies autoplay and queues the scenario.
func (e *Experiment) Begin() error {
	if e.eng == nil {
		return ErrNotSetup
	}
	e.eng.Start()
	if e.cfg.Settings.Autoplay {
		e.eng.Play()
	}
	if s := e.cfg.Scenario; s != nil {
		e.pending = len(s.Steps)
		automation.Schedule(e.eng, s, e.report)
	}
	return nil
}

func (e *Experiment) report(o automation.Outcome) {
	e.pending--
	detail := o.Action.String()
	if o.Err != nil {
		detail += ": " + o.Err.Error()
	} else if !o.Accepted {
		detail += ": refused"
	}
	main, content := e.eng.Position()
	e.rec.Record(trace.Event{At: e.eng.Now(), Kind: trace.KindAction, Main: main, Content: content, Detail: detail})
}

// Done reports whether a headless run has nothing left to show.
func (e *Experiment) Done() bool {
	return e.finished && e.pending <= 0 && !e.eng.Waiting()
}

// Run plays the story headless, frame by frame on the virtual clock, and
// returns the finished trace ready for storage.
func (e *Experiment) Run(ctx context.Context) (*storage.Run, error) {
	if e.eng == nil {
		return nil, ErrNotSetup
	}
	if err := e.Begin(); err != nil {
		return nil, err
	}
	defer e.eng.Close()

	limit := e.cfg.Duration
	if limit <= 0 {
		limit = e.budget()
	}
	frame := e.cfg.Settings.Frame()

	for e.eng.Now() < limit {
		select {
		case <-ctx.Done():
			return e.result(), ctx.Err()
		default:
		}
		e.eng.Tick(frame)
		if e.cfg.Duration <= 0 && e.Done() {
			break
		}
	}
	return e.result(), nil
}

// budget is the longest an unbounded run may take: every beat played in
// full, the script, and a margin for waits.
func (e *Experiment) budget() time.Duration {
	var total time.Duration
	for _, s := range e.eng.Steps() {
		for i := 0; i < s.Len(); i++ {
			total += s.Content(i).Duration
		}
		total += time.Duration(s.Len()) * e.cfg.Settings.Engine("").Settle
	}
	if s := e.cfg.Scenario; s != nil && s.Length() > total {
		total = s.Length()
	}
	return total + tail
}

func (e *Experiment) result() *storage.Run {
	events := e.rec.Events()
	run := &storage.Run{
		Story:     e.cfg.Story.Title,
		Preset:    e.cfg.Preset,
		Duration:  e.eng.Now(),
		FrameRate: e.cfg.Settings.FrameRate,
		Steps:     len(e.eng.Steps()),
		Events:    events,
		Samples:   e.rec.Samples(),
		Metrics:   metrics.Compute(events, e.metrics...),
	}
	if e.cfg.Scenario != nil {
		run.Scenario = e.cfg.Scenario.Name
	}
	return run
}
