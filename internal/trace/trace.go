package trace

import (
	"fmt"
	"time"

	"github.com/san-kum/mapstory/internal/engine"
)

type Kind string

const (
	KindStep      Kind = "step"
	KindWaitStart Kind = "wait_start"
	KindWaitEnd   Kind = "wait_end"
	KindShow      Kind = "show"
	KindHide      Kind = "hide"
	KindOverlay   Kind = "overlay"
	KindFinished  Kind = "finished"
	KindAction    Kind = "action"
)

// Event is one thing the engine told its host, stamped with loop time.
type Event struct {
	At      time.Duration `json:"at"`
	Kind    Kind          `json:"kind"`
	Layer   string        `json:"layer,omitempty"`
	Main    int           `json:"main"`
	Content int           `json:"content"`
	Detail  string        `json:"detail,omitempty"`
}

func (e Event) String() string {
	at := fmt.Sprintf("%8.3fs", e.At.Seconds())
	switch e.Kind {
	case KindStep:
		return fmt.Sprintf("%s  step      (%d,%d)", at, e.Main, e.Content)
	case KindShow, KindHide:
		return fmt.Sprintf("%s  %-9s %s", at, e.Kind, e.Layer)
	case KindOverlay, KindAction:
		return fmt.Sprintf("%s  %-9s %s", at, e.Kind, e.Detail)
	default:
		return fmt.Sprintf("%s  %s", at, e.Kind)
	}
}

// Sample is the scrub-bar position at a point in time.
type Sample struct {
	At       time.Duration `json:"at"`
	Progress float64       `json:"progress"`
}

// Source is what the recorder reads on each frame.
type Source interface {
	Now() time.Duration
	Progress() float64
	Position() (main, content int)
}

const DefaultSampleEvery = 250 * time.Millisecond

// Recorder keeps every engine event plus periodic progress samples. It runs
// on the engine's goroutine.
type Recorder struct {
	src         Source
	sampleEvery time.Duration
	lastSample  time.Duration
	sampled     bool
	events      []Event
	samples     []Sample
	sinks       []func(Event)
}

// NewRecorder may be given a nil source when the engine it watches is built
// from the recorder's hooks; Bind it before the engine starts.
func NewRecorder(src Source, sampleEvery time.Duration) *Recorder {
	if sampleEvery <= 0 {
		sampleEvery = DefaultSampleEvery
	}
	return &Recorder{
		src:         src,
		sampleEvery: sampleEvery,
		events:      make([]Event, 0, 64),
		samples:     make([]Sample, 0, 64),
	}
}

func (r *Recorder) Bind(src Source) { r.src = src }

// Subscribe adds a sink that sees each event as it is recorded.
func (r *Recorder) Subscribe(fn func(Event)) { r.sinks = append(r.sinks, fn) }

func (r *Recorder) Record(e Event) {
	r.events = append(r.events, e)
	for _, fn := range r.sinks {
		fn(e)
	}
}

func (r *Recorder) Events() []Event   { return r.events }
func (r *Recorder) Samples() []Sample { return r.samples }

// OnFrame samples progress at the configured interval.
func (r *Recorder) OnFrame(now, _ time.Duration) {
	if r.sampled && now-r.lastSample < r.sampleEvery {
		return
	}
	r.sampled = true
	r.lastSample = now
	r.samples = append(r.samples, Sample{At: now, Progress: r.src.Progress()})
}

// Hooks records every engine notification and then forwards it to next.
func (r *Recorder) Hooks(next engine.Hooks) engine.Hooks {
	stamp := func(e Event) {
		e.At = r.src.Now()
		e.Main, e.Content = r.src.Position()
		r.Record(e)
	}

	return engine.Hooks{
		OnTimelineStepChanged: func(m, c int) {
			stamp(Event{Kind: KindStep})
			if next.OnTimelineStepChanged != nil {
				next.OnTimelineStepChanged(m, c)
			}
		},
		OnWaitNextSceneStart: func() {
			stamp(Event{Kind: KindWaitStart})
			if next.OnWaitNextSceneStart != nil {
				next.OnWaitNextSceneStart()
			}
		},
		OnWaitNextSceneEnd: func() {
			stamp(Event{Kind: KindWaitEnd})
			if next.OnWaitNextSceneEnd != nil {
				next.OnWaitNextSceneEnd()
			}
		},
		OnLayerVisibilityChanged: func(id string, visible bool) {
			kind := KindHide
			if visible {
				kind = KindShow
			}
			stamp(Event{Kind: kind, Layer: id})
			if next.OnLayerVisibilityChanged != nil {
				next.OnLayerVisibilityChanged(id, visible)
			}
		},
		OnOverlay: func(caption string, shown bool) {
			if !shown {
				caption = ""
			}
			stamp(Event{Kind: KindOverlay, Detail: caption})
			if next.OnOverlay != nil {
				next.OnOverlay(caption, shown)
			}
		},
		OnFinished: func() {
			stamp(Event{Kind: KindFinished})
			if next.OnFinished != nil {
				next.OnFinished()
			}
		},
	}
}

// Span is one continuous stretch during which a layer was signalled visible.
type Span struct {
	Layer string
	From  time.Duration
	To    time.Duration
	Open  bool // still visible at the end of the trace
}

// Spans folds show/hide events into per-layer visibility intervals, in
// order of first appearance. end closes spans still open.
func Spans(events []Event, end time.Duration) []Span {
	open := make(map[string]int)
	spans := make([]Span, 0)
	for _, e := range events {
		switch e.Kind {
		case KindShow:
			if _, ok := open[e.Layer]; ok {
				continue
			}
			open[e.Layer] = len(spans)
			spans = append(spans, Span{Layer: e.Layer, From: e.At, To: end, Open: true})
		case KindHide:
			i, ok := open[e.Layer]
			if !ok {
				continue
			}
			spans[i].To = e.At
			spans[i].Open = false
			delete(open, e.Layer)
		}
	}
	return spans
}

// End is the time of the last event or sample.
func End(events []Event, samples []Sample) time.Duration {
	var end time.Duration
	if n := len(events); n > 0 && events[n-1].At > end {
		end = events[n-1].At
	}
	if n := len(samples); n > 0 && samples[n-1].At > end {
		end = samples[n-1].At
	}
	return end
}
