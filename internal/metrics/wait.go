package metrics

import (
	"math"
	"time"

	"github.com/san-kum/mapstory/internal/trace"
)

// Wait is the mean time, in seconds, between a transition starting and the
// next scene being revealed.
type Wait struct {
	name    string
	started time.Duration
	open    bool
	total   time.Duration
	waits   int
}

func NewWait() *Wait {
	return &Wait{name: "mean_wait_s"}
}

func (w *Wait) Name() string { return w.name }

func (w *Wait) Observe(e trace.Event) {
	switch e.Kind {
	case trace.KindWaitStart:
		w.started = e.At
		w.open = true
	case trace.KindWaitEnd:
		if !w.open {
			return
		}
		w.total += e.At - w.started
		w.waits++
		w.open = false
	}
}

func (w *Wait) Value() float64 {
	if w.waits == 0 {
		return 0
	}
	return (w.total / time.Duration(w.waits)).Seconds()
}

func (w *Wait) Reset() {
	w.open = false
	w.total = 0
	w.waits = 0
}

type MaxWait struct {
	name    string
	started time.Duration
	open    bool
	max     time.Duration
}

func NewMaxWait() *MaxWait {
	return &MaxWait{name: "max_wait_s"}
}

func (m *MaxWait) Name() string { return m.name }

func (m *MaxWait) Observe(e trace.Event) {
	switch e.Kind {
	case trace.KindWaitStart:
		m.started = e.At
		m.open = true
	case trace.KindWaitEnd:
		if m.open {
			m.max = time.Duration(math.Max(float64(m.max), float64(e.At-m.started)))
			m.open = false
		}
	}
}

func (m *MaxWait) Value() float64 { return m.max.Seconds() }

func (m *MaxWait) Reset() {
	m.open = false
	m.max = 0
}

// Flicker counts layers shown again within window of being hidden, the
// visible symptom of a persisting layer replaying its entrance.
type Flicker struct {
	name   string
	window time.Duration
	hidden map[string]time.Duration
	count  int
}

func NewFlicker(window time.Duration) *Flicker {
	return &Flicker{name: "flickers", window: window, hidden: make(map[string]time.Duration)}
}

func (f *Flicker) Name() string { return f.name }

func (f *Flicker) Observe(e trace.Event) {
	switch e.Kind {
	case trace.KindHide:
		f.hidden[e.Layer] = e.At
	case trace.KindShow:
		at, ok := f.hidden[e.Layer]
		if ok && e.At-at < f.window {
			f.count++
		}
		delete(f.hidden, e.Layer)
	}
}

func (f *Flicker) Value() float64 { return float64(f.count) }

func (f *Flicker) Reset() {
	f.hidden = make(map[string]time.Duration)
	f.count = 0
}
