package engine

import (
	"errors"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/san-kum/mapstory/internal/camera"
	"github.com/san-kum/mapstory/internal/layer"
	"github.com/san-kum/mapstory/internal/loop"
	"github.com/san-kum/mapstory/internal/nav"
	"github.com/san-kum/mapstory/internal/registry"
	"github.com/san-kum/mapstory/internal/scheduler"
	"github.com/san-kum/mapstory/internal/timeline"
)

var (
	ErrNoRegistry      = errors.New("engine: registry is required")
	ErrUnknownPage     = errors.New("engine: unknown page")
	ErrForeignScene    = errors.New("engine: scene is not on the current page")
	ErrUnknownSubScene = errors.New("engine: unknown sub-scene")
	ErrContentIndex    = errors.New("engine: content index out of range")
	ErrClosed          = errors.New("engine: closed")
)

type Config struct {
	Settle         time.Duration
	SubSceneSettle time.Duration
	Debounce       time.Duration
	LockRelease    time.Duration
	// DefaultContent times the beats of scenes without a scene descriptor.
	DefaultContent time.Duration
	RotationStep   float64
	// Page is the page the timeline walks; empty selects the catalog's last
	// page.
	Page nav.Page
	View camera.View
}

func DefaultConfig() Config {
	return Config{
		Settle:         scheduler.DefaultSettle,
		SubSceneSettle: scheduler.DefaultSubSceneSettle,
		Debounce:       timeline.DefaultDebounce,
		LockRelease:    timeline.DefaultLockRelease,
		DefaultContent: 5 * time.Second,
		RotationStep:   camera.DefaultRotationStep,
	}
}

// Hooks are the engine's outbound notifications. Every member is optional.
type Hooks struct {
	OnTimelineStepChanged    func(main, content int)
	OnWaitNextSceneStart     func()
	OnWaitNextSceneEnd       func()
	OnLayerVisibilityChanged func(id string, visible bool)
	OnOverlay                func(caption string, shown bool)
	OnFinished               func()
}

type Options struct {
	Registry *registry.Registry
	Config   Config
	Hooks    Hooks
	Logger   *log.Logger
	// Constructors adds or overrides layer kinds.
	Constructors map[registry.Kind]layer.Constructor
}

// Engine wires the store, the timeline and the scheduler onto one loop. It
// is not safe for concurrent use; one goroutine drives it.
type Engine struct {
	cfg     Config
	hooks   Hooks
	log     *log.Logger
	reg     *registry.Registry
	loop    *loop.Loop
	store   *nav.Store
	factory *layer.Factory
	layers  map[string]layer.Layer
	steps   []timeline.Step
	tl      *timeline.Timeline
	sched   *scheduler.Scheduler
	page    nav.Page

	unsubscribe []func()
	applying    bool
	overlay     string
	overlayOn   bool
	started     bool
	closed      bool
}

func New(opts Options) (*Engine, error) {
	if opts.Registry == nil {
		return nil, ErrNoRegistry
	}
	cfg := opts.Config
	if cfg == (Config{}) {
		cfg = DefaultConfig()
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}

	catalog := opts.Registry.Catalog()
	page := cfg.Page
	if page == "" {
		page = catalog.Pages[len(catalog.Pages)-1].Page
	}
	if !catalog.HasPage(page) {
		return nil, fmt.Errorf("%w %q", ErrUnknownPage, page)
	}

	e := &Engine{
		cfg:   cfg,
		hooks: opts.Hooks,
		log:   logger,
		reg:   opts.Registry,
		loop:  loop.New(),
		store: nav.NewStore(catalog),
		page:  page,
	}

	e.factory = layer.NewFactory(e.loop)
	e.factory.SetRotationStep(cfg.RotationStep)
	e.factory.SetView(cfg.View)
	for kind, ctor := range opts.Constructors {
		e.factory.Register(kind, ctor)
	}
	e.layers = e.factory.BuildAll(e.reg.Layers())

	e.steps = e.reg.Steps(page, cfg.DefaultContent)
	e.tl = timeline.New(e.loop, e.steps, timeline.Options{
		Debounce:    cfg.Debounce,
		LockRelease: cfg.LockRelease,
		OnChange:    e.onTimelineChange,
		OnFinished:  e.onFinished,
	})

	e.sched = scheduler.New(e.loop, e.reg, e.layers, e.store.State, scheduler.Config{
		Settle:         cfg.Settle,
		SubSceneSettle: cfg.SubSceneSettle,
	}, scheduler.Hooks{
		OnWaitStart:       e.onWaitStart,
		OnWaitEnd:         e.onWaitEnd,
		OnLayerVisibility: e.onLayerVisibility,
		OnCommit:          e.onCommit,
	})

	e.unsubscribe = append(e.unsubscribe,
		e.store.AddObserver(e.sched),
		e.store.AddObserver(nav.ObserverFunc(e.onNavigation)),
	)

	return e, nil
}

// Start reveals the initial layer set. Nothing is shown before Start.
func (e *Engine) Start() {
	if e.started || e.closed {
		return
	}
	e.started = true
	e.log.Printf("engine: start at %s, %d steps on page %s", e.store.State(), len(e.steps), e.page)
	e.sched.Start()
	e.syncTimeline()
	e.updateOverlay()
}

func (e *Engine) SetPage(p nav.Page) error {
	if err := e.usable(); err != nil {
		return err
	}
	if !e.store.Catalog().HasPage(p) {
		return fmt.Errorf("%w %q", ErrUnknownPage, p)
	}
	e.store.SetPage(p)
	return nil
}

func (e *Engine) SetScene(s nav.Scene) error {
	if err := e.usable(); err != nil {
		return err
	}
	if page, ok := e.store.Catalog().PageOf(s); !ok || page != e.store.State().Page {
		return fmt.Errorf("%w: %q", ErrForeignScene, s)
	}
	e.store.SetScene(s)
	return nil
}

func (e *Engine) SetSubScene(s nav.SubScene) error {
	if err := e.usable(); err != nil {
		return err
	}
	if !e.store.Catalog().HasSubScene(s) {
		return fmt.Errorf("%w %q", ErrUnknownSubScene, s)
	}
	e.store.SetSubScene(s)
	return nil
}

func (e *Engine) SetContentIndex(n int) error {
	if err := e.usable(); err != nil {
		return err
	}
	scene := e.store.State().Scene
	if n < 0 || n >= e.beats(scene) {
		return fmt.Errorf("%w: %d in %q", ErrContentIndex, n, scene)
	}
	e.store.SetContentIndex(n)
	return nil
}

// beats is the number of content steps scene s has, counted the way the
// timeline of its page would count them.
func (e *Engine) beats(s nav.Scene) int {
	steps := e.steps
	if page, ok := e.store.Catalog().PageOf(s); ok && page != e.page {
		steps = e.reg.Steps(page, e.cfg.DefaultContent)
	}
	for _, st := range steps {
		if st.Scene == s {
			return st.Len()
		}
	}
	return 1
}

func (e *Engine) Play() {
	if e.closed {
		return
	}
	e.sched.SetPlaying(true)
	e.enterTimeline()
	e.tl.Play()
}

func (e *Engine) Pause() {
	if e.closed {
		return
	}
	e.tl.Pause()
	e.sched.SetPlaying(false)
}

func (e *Engine) Toggle() {
	if e.tl.Playing() {
		e.Pause()
		return
	}
	e.Play()
}

// GoToStep jumps the timeline; it reports false when the jump was refused.
func (e *Engine) GoToStep(main, content int) bool {
	if e.closed {
		return false
	}
	return e.tl.GoTo(main, content)
}

func (e *Engine) Next() bool {
	if e.closed {
		return false
	}
	return e.tl.Next()
}

func (e *Engine) Previous() bool {
	if e.closed {
		return false
	}
	return e.tl.Previous()
}

// Tick advances one frame: due timers first, then layer animation.
func (e *Engine) Tick(dt time.Duration) { e.loop.Tick(dt) }

// Advance moves the clock without rendering a frame.
func (e *Engine) Advance(d time.Duration) { e.loop.Advance(d) }

// Close cancels every timer and detaches from the store. The engine cannot
// be used afterwards.
func (e *Engine) Close() {
	if e.closed {
		return
	}
	e.closed = true
	e.tl.Stop()
	e.sched.Stop()
	for _, fn := range e.unsubscribe {
		fn()
	}
	e.loop.Drain()
	e.log.Printf("engine: closed at %v", e.loop.Now())
}

func (e *Engine) usable() error {
	if e.closed {
		return ErrClosed
	}
	return nil
}

func (e *Engine) onTimelineChange(main, content int) {
	step := e.steps[main]
	e.log.Printf("engine: step (%d,%d) %s", main, content, step.Name)
	if e.hooks.OnTimelineStepChanged != nil {
		e.hooks.OnTimelineStepChanged(main, content)
	}

	e.applying = true
	if e.store.State().Page != e.page {
		e.store.SetPage(e.page)
	}
	if e.store.State().Scene != step.Scene {
		e.store.SetScene(step.Scene)
	}
	if e.store.State().ContentIndex != content {
		e.store.SetContentIndex(content)
	}
	e.applying = false

	e.syncTimeline()
	e.updateOverlay()
}

// enterTimeline moves the store onto the timeline's current beat when
// playback starts from a position the timeline does not cover, so the first
// beat played is the one shown.
func (e *Engine) enterTimeline() {
	if _, _, ok := e.position(e.store.State()); ok {
		return
	}
	m, c := e.tl.Position()
	e.onTimelineChange(m, c)
}

func (e *Engine) onNavigation(prev, next nav.State) {
	if e.applying {
		return
	}
	e.log.Printf("engine: navigation %s -> %s", prev, next)
	e.syncTimeline()
	e.updateOverlay()
}

// syncTimeline feeds the store position back to the timeline. Positions off
// the timeline's page are ignored.
func (e *Engine) syncTimeline() {
	m, c, ok := e.position(e.store.State())
	if !ok {
		return
	}
	e.tl.Sync(m, c)
}

func (e *Engine) position(st nav.State) (int, int, bool) {
	if st.Page != e.page {
		return 0, 0, false
	}
	for i, step := range e.steps {
		if step.Scene == st.Scene {
			if st.ContentIndex >= step.Len() {
				return 0, 0, false
			}
			return i, st.ContentIndex, true
		}
	}
	return 0, 0, false
}

func (e *Engine) updateOverlay() {
	caption, shown := "", false
	if m, c, ok := e.position(e.store.State()); ok {
		content := e.steps[m].Content(c)
		caption, shown = content.Caption, content.Primary
	}
	if caption == e.overlay && shown == e.overlayOn {
		return
	}
	e.overlay, e.overlayOn = caption, shown
	if e.hooks.OnOverlay != nil {
		e.hooks.OnOverlay(caption, shown)
	}
}

func (e *Engine) onFinished() {
	e.log.Printf("engine: finished at %v", e.loop.Now())
	if e.hooks.OnFinished != nil {
		e.hooks.OnFinished()
	}
}

func (e *Engine) onWaitStart(w time.Duration) {
	e.log.Printf("engine: waiting %v for the next scene", w)
	if e.hooks.OnWaitNextSceneStart != nil {
		e.hooks.OnWaitNextSceneStart()
	}
}

func (e *Engine) onWaitEnd() {
	if e.hooks.OnWaitNextSceneEnd != nil {
		e.hooks.OnWaitNextSceneEnd()
	}
}

func (e *Engine) onLayerVisibility(id string, visible bool) {
	if e.hooks.OnLayerVisibilityChanged != nil {
		e.hooks.OnLayerVisibilityChanged(id, visible)
	}
}

func (e *Engine) onCommit(st nav.State, active []string) {
	e.log.Printf("engine: committed %s with %d layers", st, len(active))
}
