package scheduler

import (
	"time"

	"github.com/san-kum/mapstory/internal/layer"
	"github.com/san-kum/mapstory/internal/loop"
	"github.com/san-kum/mapstory/internal/nav"
	"github.com/san-kum/mapstory/internal/registry"
)

const (
	DefaultSettle         = 1000 * time.Millisecond
	DefaultSubSceneSettle = 500 * time.Millisecond
)

type Visibility int

const (
	Hidden Visibility = iota
	Visible
	// InTransition marks a layer that persists across a pending change and
	// must not replay its entrance.
	InTransition
)

func (v Visibility) String() string {
	switch v {
	case Visible:
		return "visible"
	case InTransition:
		return "in-transition"
	default:
		return "hidden"
	}
}

type Entry struct {
	Descriptor registry.LayerDescriptor
	Visibility Visibility
}

type Config struct {
	Settle         time.Duration
	SubSceneSettle time.Duration
}

func DefaultConfig() Config {
	return Config{Settle: DefaultSettle, SubSceneSettle: DefaultSubSceneSettle}
}

// Hooks are optional; nil members are skipped.
type Hooks struct {
	OnWaitStart       func(wait time.Duration)
	OnWaitEnd         func()
	OnLayerVisibility func(id string, visible bool)
	OnCommit          func(state nav.State, active []string)
}

type change int

const (
	changeNone change = iota
	changeScene
	changeContent
	changeSubScene
)

// Scheduler owns the active layer set. It hides what is leaving, waits for
// the longest declared exit, then reveals the new set in one pass.
type Scheduler struct {
	loop   *loop.Loop
	reg    *registry.Registry
	layers map[string]layer.Layer
	state  func() nav.State
	cfg    Config
	hooks  Hooks

	entries    []Entry
	signaled   map[string]bool
	timer      *loop.Timer
	started    bool
	waiting    bool
	playing    bool
	suppressed bool
}

// New wires a scheduler. state is read at commit time, never captured, so a
// commit always applies to the navigation state of that moment.
func New(l *loop.Loop, reg *registry.Registry, layers map[string]layer.Layer, state func() nav.State, cfg Config, hooks Hooks) *Scheduler {
	if cfg.Settle < 0 {
		cfg.Settle = 0
	}
	if cfg.SubSceneSettle < 0 {
		cfg.SubSceneSettle = 0
	}
	return &Scheduler{
		loop:     l,
		reg:      reg,
		layers:   layers,
		state:    state,
		cfg:      cfg,
		hooks:    hooks,
		signaled: make(map[string]bool, len(layers)),
	}
}

// Start reveals the layers of the current state without waiting. Changes
// before Start are not tracked.
func (s *Scheduler) Start() {
	s.started = true
	s.commit()
}

func (s *Scheduler) Playing() bool { return s.playing }

// Waiting reports whether a commit is scheduled or held back by pause.
func (s *Scheduler) Waiting() bool { return s.waiting }

// Suppressed reports whether a commit is held until playback resumes.
func (s *Scheduler) Suppressed() bool { return s.suppressed }

// Snapshot returns a copy of the active set.
func (s *Scheduler) Snapshot() []Entry {
	out := make([]Entry, len(s.entries))
	copy(out, s.entries)
	return out
}

// Due reports when the scheduled commit fires, if one is.
func (s *Scheduler) Due() (time.Duration, bool) {
	if !s.timer.Active() {
		return 0, false
	}
	return s.timer.Due(), true
}

// OnNavigationChanged implements nav.Observer.
func (s *Scheduler) OnNavigationChanged(prev, next nav.State) {
	if !s.started {
		return
	}
	switch classify(prev, next) {
	case changeScene, changeContent:
		s.beginWait(s.markForScene(next), s.cfg.Settle)
	case changeSubScene:
		s.beginWait(s.markForSubScene(next), s.cfg.SubSceneSettle)
	}
}

// SetPlaying pauses or resumes. Pausing cancels a scheduled commit and holds
// it; resuming applies a held commit at once. Exit animations already under
// way are left alone.
func (s *Scheduler) SetPlaying(playing bool) {
	if playing == s.playing {
		return
	}
	s.playing = playing

	if !playing {
		if s.timer.Active() {
			s.timer.Stop()
			s.timer = nil
			s.suppressed = true
		}
		return
	}

	if s.suppressed {
		s.commit()
	}
}

// Stop cancels the pending commit.
func (s *Scheduler) Stop() {
	s.timer.Stop()
	s.timer = nil
	s.suppressed = false
	s.waiting = false
}

func classify(prev, next nav.State) change {
	switch {
	case prev.Page != next.Page || prev.Scene != next.Scene:
		return changeScene
	case prev.ContentIndex != next.ContentIndex:
		return changeContent
	case prev.SubScene != next.SubScene:
		return changeSubScene
	default:
		return changeNone
	}
}

// markForScene flags persisting layers in transition and hides the rest. It
// returns the longest declared exit over the current set.
func (s *Scheduler) markForScene(next nav.State) time.Duration {
	var longest time.Duration
	for i := range s.entries {
		e := &s.entries[i]
		if d := s.exitOf(e.Descriptor); d > longest {
			longest = d
		}
		if e.Visibility != Hidden && e.Descriptor.Matches(next) {
			e.Visibility = InTransition
			s.setInTransition(e.Descriptor.ID, true)
			continue
		}
		s.hide(e)
	}
	return longest
}

// markForSubScene hides the sub-scene-restricted layers that do not belong
// to the new sub-scene.
func (s *Scheduler) markForSubScene(next nav.State) time.Duration {
	var longest time.Duration
	for i := range s.entries {
		e := &s.entries[i]
		d := e.Descriptor
		if !d.SubSceneRestricted() || d.InSubScene(next.SubScene) {
			continue
		}
		wait := d.DelayForNextSubScene
		if wait <= 0 {
			wait = s.exitOf(d)
		}
		if wait > longest {
			longest = wait
		}
		s.hide(e)
	}
	return longest
}

// beginWait replaces any scheduled commit. The replacement never fires
// earlier than the one it supersedes.
func (s *Scheduler) beginWait(longest, settle time.Duration) {
	wait := longest + settle
	if s.timer.Active() {
		if left := s.timer.Due() - s.loop.Now(); left > wait {
			wait = left
		}
	}
	s.timer.Stop()
	s.timer = nil

	if !s.waiting {
		s.waiting = true
		if s.hooks.OnWaitStart != nil {
			w := time.Duration(0)
			if s.playing {
				w = wait
			}
			s.hooks.OnWaitStart(w)
		}
	}

	if !s.playing {
		s.suppressed = true
		return
	}
	s.suppressed = false
	s.timer = s.loop.AfterFunc(wait, s.commit)
}

// commit rebuilds the active set from the live state. Leavers still shown
// are hidden first, then every newcomer is shown in the same pass.
func (s *Scheduler) commit() {
	s.timer.Stop()
	s.timer = nil
	s.suppressed = false

	st := s.state()
	descs := s.reg.Active(st)

	keep := make(map[string]bool, len(descs))
	for _, d := range descs {
		keep[d.ID] = true
	}
	for i := range s.entries {
		if !keep[s.entries[i].Descriptor.ID] {
			s.hide(&s.entries[i])
		}
	}

	entries := make([]Entry, 0, len(descs))
	ids := make([]string, 0, len(descs))
	for _, d := range descs {
		if s.signaled[d.ID] {
			s.setInTransition(d.ID, false)
		} else if d.SkipsAnimationAt(st.ContentIndex) {
			s.setInTransition(d.ID, true)
			s.signal(d.ID, true)
			s.setInTransition(d.ID, false)
		} else {
			s.signal(d.ID, true)
		}
		entries = append(entries, Entry{Descriptor: d, Visibility: Visible})
		ids = append(ids, d.ID)
	}
	s.entries = entries

	wasWaiting := s.waiting
	s.waiting = false
	if s.hooks.OnCommit != nil {
		s.hooks.OnCommit(st, ids)
	}
	if wasWaiting && s.hooks.OnWaitEnd != nil {
		s.hooks.OnWaitEnd()
	}
}

func (s *Scheduler) hide(e *Entry) {
	e.Visibility = Hidden
	s.setInTransition(e.Descriptor.ID, false)
	s.signal(e.Descriptor.ID, false)
}

// signal forwards a visibility change to the layer and the hook. Repeats of
// the last value sent are dropped.
func (s *Scheduler) signal(id string, visible bool) {
	if s.signaled[id] == visible {
		return
	}
	s.signaled[id] = visible
	if l, ok := s.layers[id]; ok {
		l.SetVisible(visible)
	}
	if s.hooks.OnLayerVisibility != nil {
		s.hooks.OnLayerVisibility(id, visible)
	}
}

func (s *Scheduler) setInTransition(id string, in bool) {
	if ta, ok := s.layers[id].(layer.TransitionAware); ok {
		ta.SetInTransition(in)
	}
}

// exitOf prefers the runtime layer's declared exit, falling back to the
// descriptor.
func (s *Scheduler) exitOf(d registry.LayerDescriptor) time.Duration {
	if l, ok := s.layers[d.ID]; ok {
		return l.ExitDuration()
	}
	return d.ExitDuration()
}
