package metrics

import (
	"time"

	"github.com/san-kum/mapstory/internal/trace"
)

// Metric folds a stream of trace events into one number.
type Metric interface {
	Name() string
	Observe(e trace.Event)
	Value() float64
	Reset()
}

// Default is the set the run command stores with each trace.
func Default() []Metric {
	return []Metric{
		NewCount("steps", trace.KindStep),
		NewCount("transitions", trace.KindWaitStart),
		NewCount("reveals", trace.KindShow),
		NewWait(),
		NewMaxWait(),
		NewFlicker(time.Second),
		NewPeakLayers(),
	}
}

// Compute runs every metric over events from a clean state.
func Compute(events []trace.Event, ms ...Metric) map[string]float64 {
	if len(ms) == 0 {
		ms = Default()
	}
	out := make(map[string]float64, len(ms))
	for _, m := range ms {
		m.Reset()
		for _, e := range events {
			m.Observe(e)
		}
		out[m.Name()] = m.Value()
	}
	return out
}
