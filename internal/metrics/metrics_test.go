package metrics

import (
	"math"
	"testing"
	"time"

	"github.com/san-kum/mapstory/internal/trace"
)

func sampleTrace() []trace.Event {
	s := time.Second
	return []trace.Event{
		{At: 0, Kind: trace.KindShow, Layer: "terrain"},
		{At: 0, Kind: trace.KindShow, Layer: "rivers"},
		{At: 5 * s, Kind: trace.KindStep, Main: 1},
		{At: 5 * s, Kind: trace.KindHide, Layer: "terrain"},
		{At: 5 * s, Kind: trace.KindHide, Layer: "rivers"},
		{At: 5 * s, Kind: trace.KindWaitStart},
		{At: 8 * s, Kind: trace.KindShow, Layer: "wind"},
		{At: 8 * s, Kind: trace.KindWaitEnd},
		{At: 10 * s, Kind: trace.KindStep, Main: 1, Content: 1},
		{At: 10 * s, Kind: trace.KindHide, Layer: "wind"},
		{At: 10 * s, Kind: trace.KindWaitStart},
		{At: 11 * s, Kind: trace.KindShow, Layer: "wind"},
		{At: 11 * s, Kind: trace.KindWaitEnd},
	}
}

func TestCompute(t *testing.T) {
	got := Compute(sampleTrace())

	want := map[string]float64{
		"steps":       2,
		"transitions": 2,
		"reveals":     4,
		"mean_wait_s": 2,
		"max_wait_s":  3,
		"flickers":    0,
		"peak_layers": 2,
	}
	for name, v := range want {
		if math.Abs(got[name]-v) > 1e-9 {
			t.Errorf("%s = %v, want %v", name, got[name], v)
		}
	}
}

func TestFlickerWindow(t *testing.T) {
	f := NewFlicker(2 * time.Second)
	for _, e := range sampleTrace() {
		f.Observe(e)
	}
	if f.Value() != 1 {
		t.Errorf("flickers = %v, want 1", f.Value())
	}

	f.Reset()
	if f.Value() != 0 {
		t.Error("Reset did not clear the count")
	}
}

func TestWaitWithoutEnd(t *testing.T) {
	w := NewWait()
	w.Observe(trace.Event{At: time.Second, Kind: trace.KindWaitStart})
	if w.Value() != 0 {
		t.Errorf("open wait counted: %v", w.Value())
	}
	w.Observe(trace.Event{At: time.Second, Kind: trace.KindWaitEnd})
	w.Observe(trace.Event{At: 2 * time.Second, Kind: trace.KindWaitEnd})
	if w.Value() != 0 {
		t.Errorf("unmatched end counted: %v", w.Value())
	}
}
