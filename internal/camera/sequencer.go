package camera

import (
	"math"
	"time"

	"github.com/san-kum/mapstory/internal/loop"
)

// DefaultRotationStep is the bearing increment, in degrees, applied on each
// frame once a rotating shot has landed.
const DefaultRotationStep = 0.1

type Phase int

const (
	PhaseIdle Phase = iota
	PhaseWaiting
	PhaseFlying
	PhaseRotating
)

func (p Phase) String() string {
	switch p {
	case PhaseWaiting:
		return "waiting"
	case PhaseFlying:
		return "flying"
	case PhaseRotating:
		return "rotating"
	default:
		return "idle"
	}
}

// Sequencer is a camera layer. Showing it flies the shared view to the shot
// target; hiding it freezes the view where it is.
type Sequencer struct {
	loop *loop.Loop
	id   string
	shot Shot
	step float64

	view    *View
	visible bool
	phase   Phase
	from    View
	startAt time.Duration
	delay   *loop.Timer
}

// NewSequencer drives view, which is normally shared by every camera layer of
// a story. A non-positive step selects DefaultRotationStep.
func NewSequencer(l *loop.Loop, id string, shot Shot, view *View, step float64) *Sequencer {
	if step <= 0 {
		step = DefaultRotationStep
	}
	if view == nil {
		view = &View{}
	}
	return &Sequencer{loop: l, id: id, shot: shot, view: view, step: step}
}

func (s *Sequencer) ID() string { return s.id }

// EnterDuration covers the delay and the flight; rotation is open-ended.
func (s *Sequencer) EnterDuration() time.Duration { return s.shot.Delay + s.shot.Duration }

// ExitDuration is zero: hiding a camera halts it on the spot.
func (s *Sequencer) ExitDuration() time.Duration { return 0 }

func (s *Sequencer) Phase() Phase  { return s.phase }
func (s *Sequencer) Visible() bool { return s.visible }
func (s *Sequencer) View() View    { return *s.view }
func (s *Sequencer) Shot() Shot    { return s.shot }

func (s *Sequencer) SetVisible(visible bool) {
	if visible == s.visible {
		return
	}
	s.visible = visible
	s.delay.Stop()
	s.delay = nil

	if !visible {
		s.phase = PhaseIdle
		return
	}

	s.phase = PhaseWaiting
	if s.shot.Delay <= 0 {
		s.takeOff()
		return
	}
	s.delay = s.loop.AfterFunc(s.shot.Delay, s.takeOff)
}

func (s *Sequencer) takeOff() {
	s.delay = nil
	if !s.visible {
		return
	}
	s.from = *s.view
	s.startAt = s.loop.Now()
	s.phase = PhaseFlying
	if s.shot.Duration <= 0 {
		s.land()
	}
}

func (s *Sequencer) land() {
	*s.view = s.shot.Target
	if s.shot.Rotate {
		s.phase = PhaseRotating
		return
	}
	s.phase = PhaseIdle
}

// OnFrame moves the view one frame along the flight or the orbit.
func (s *Sequencer) OnFrame(now, _ time.Duration) {
	switch s.phase {
	case PhaseFlying:
		t := float64(now-s.startAt) / float64(s.shot.Duration)
		if t >= 1 {
			s.land()
			return
		}
		*s.view = Interpolate(s.from, s.shot.Target, easeInOutCubic(t))
	case PhaseRotating:
		s.view.Bearing = normalizeBearing(s.view.Bearing + s.step)
	}
}

func easeInOutCubic(t float64) float64 {
	if t <= 0 {
		return 0
	}
	if t >= 1 {
		return 1
	}
	if t < 0.5 {
		return 4 * t * t * t
	}
	return 1 - math.Pow(-2*t+2, 3)/2
}
