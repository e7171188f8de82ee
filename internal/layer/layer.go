package layer

import (
	"time"

	"github.com/san-kum/mapstory/internal/loop"
)

// Layer is what the scheduler drives. It only ever sets a boolean and reads
// the declared durations; how the layer animates is its own business.
type Layer interface {
	ID() string
	SetVisible(visible bool)
	EnterDuration() time.Duration
	ExitDuration() time.Duration
}

// TransitionAware layers can be told that they persist across a scene
// change and must not replay their entrance.
type TransitionAware interface {
	SetInTransition(in bool)
}

type Phase int

const (
	PhaseHidden Phase = iota
	PhaseEntering
	PhaseShown
	PhaseExiting
)

func (p Phase) String() string {
	switch p {
	case PhaseEntering:
		return "entering"
	case PhaseShown:
		return "shown"
	case PhaseExiting:
		return "exiting"
	default:
		return "hidden"
	}
}

// Curves selects the easing for each half of the animation. MinScale is the
// scale a hidden layer collapses to; zero leaves the scale at 1.
type Curves struct {
	EnterOpacity Curve
	EnterScale   Curve
	ExitOpacity  Curve
	ExitScale    Curve
	MinScale     float64
}

var DefaultCurves = Curves{
	EnterOpacity: EaseOutCubic,
	EnterScale:   EaseOutCubic,
	ExitOpacity:  EaseInCubic,
	ExitScale:    EaseOutCubic,
	MinScale:     1,
}

// Fader is the stock implementation of the animation contract: opacity and
// scale driven from the loop's frames over the declared durations.
type Fader struct {
	loop   *loop.Loop
	id     string
	enter  time.Duration
	exit   time.Duration
	curves Curves

	visible      bool
	inTransition bool
	phase        Phase
	startedAt    time.Duration
	fromOpacity  float64
	fromScale    float64
	opacity      float64
	scale        float64
}

func NewFader(l *loop.Loop, id string, enter, exit time.Duration, curves Curves) *Fader {
	if curves.EnterOpacity == nil {
		curves.EnterOpacity = DefaultCurves.EnterOpacity
	}
	if curves.EnterScale == nil {
		curves.EnterScale = DefaultCurves.EnterScale
	}
	if curves.ExitOpacity == nil {
		curves.ExitOpacity = DefaultCurves.ExitOpacity
	}
	if curves.ExitScale == nil {
		curves.ExitScale = DefaultCurves.ExitScale
	}
	if curves.MinScale <= 0 || curves.MinScale > 1 {
		curves.MinScale = 1
	}
	return &Fader{
		loop:   l,
		id:     id,
		enter:  enter,
		exit:   exit,
		curves: curves,
		scale:  curves.MinScale,
	}
}

func (f *Fader) ID() string                   { return f.id }
func (f *Fader) EnterDuration() time.Duration { return f.enter }

func (f *Fader) ExitDuration() time.Duration {
	if f.exit > 0 {
		return f.exit
	}
	return f.enter
}

func (f *Fader) Visible() bool      { return f.visible }
func (f *Fader) Phase() Phase       { return f.phase }
func (f *Fader) Opacity() float64   { return f.opacity }
func (f *Fader) Scale() float64     { return f.scale }
func (f *Fader) InTransition() bool { return f.inTransition }

// Rendered reports whether the layer is still in the renderable set; an
// exiting layer stays rendered until its opacity reaches zero.
func (f *Fader) Rendered() bool { return f.phase != PhaseHidden }

func (f *Fader) SetInTransition(in bool) { f.inTransition = in }

func (f *Fader) SetVisible(visible bool) {
	if visible == f.visible {
		if visible && f.inTransition && f.phase != PhaseShown {
			f.finishEnter()
		}
		return
	}
	f.visible = visible
	f.startedAt = f.loop.Now()
	f.fromOpacity = f.opacity
	f.fromScale = f.scale

	switch {
	case visible && f.inTransition:
		f.finishEnter()
	case visible:
		f.phase = PhaseEntering
		if f.enter <= 0 {
			f.finishEnter()
		}
	default:
		f.phase = PhaseExiting
		if f.ExitDuration() <= 0 {
			f.finishExit()
		}
	}
}

// OnFrame advances the running animation to now.
func (f *Fader) OnFrame(now, _ time.Duration) {
	switch f.phase {
	case PhaseEntering:
		t := progress(now-f.startedAt, f.enter)
		f.opacity = Lerp(f.fromOpacity, 1, f.curves.EnterOpacity(t))
		f.scale = Lerp(f.fromScale, 1, f.curves.EnterScale(t))
		if t >= 1 {
			f.finishEnter()
		}
	case PhaseExiting:
		t := progress(now-f.startedAt, f.ExitDuration())
		f.opacity = Lerp(f.fromOpacity, 0, f.curves.ExitOpacity(t))
		f.scale = Lerp(f.fromScale, f.curves.MinScale, f.curves.ExitScale(t))
		if t >= 1 {
			f.finishExit()
		}
	}
}

func (f *Fader) finishEnter() {
	f.phase = PhaseShown
	f.opacity = 1
	f.scale = 1
}

func (f *Fader) finishExit() {
	f.phase = PhaseHidden
	f.opacity = 0
	f.scale = f.curves.MinScale
}

func progress(elapsed, total time.Duration) float64 {
	if total <= 0 {
		return 1
	}
	return clamp01(float64(elapsed) / float64(total))
}
