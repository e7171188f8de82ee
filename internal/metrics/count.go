package metrics

import "github.com/san-kum/mapstory/internal/trace"

type Count struct {
	name string
	kind trace.Kind
	n    int
}

func NewCount(name string, kind trace.Kind) *Count {
	return &Count{name: name, kind: kind}
}

func (c *Count) Name() string { return c.name }

func (c *Count) Observe(e trace.Event) {
	if e.Kind == c.kind {
		c.n++
	}
}

func (c *Count) Value() float64 { return float64(c.n) }
func (c *Count) Reset()         { c.n = 0 }

// PeakLayers is the largest number of layers signalled visible at once.
type PeakLayers struct {
	name    string
	visible map[string]bool
	peak    int
}

func NewPeakLayers() *PeakLayers {
	return &PeakLayers{name: "peak_layers", visible: make(map[string]bool)}
}

func (p *PeakLayers) Name() string { return p.name }

func (p *PeakLayers) Observe(e trace.Event) {
	switch e.Kind {
	case trace.KindShow:
		p.visible[e.Layer] = true
	case trace.KindHide:
		delete(p.visible, e.Layer)
	default:
		return
	}
	if len(p.visible) > p.peak {
		p.peak = len(p.visible)
	}
}

func (p *PeakLayers) Value() float64 { return float64(p.peak) }

func (p *PeakLayers) Reset() {
	p.visible = make(map[string]bool)
	p.peak = 0
}
