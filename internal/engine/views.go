package engine

import (
	"time"

	"github.com/san-kum/mapstory/internal/camera"
	"github.com/san-kum/mapstory/internal/layer"
	"github.com/san-kum/mapstory/internal/loop"
	"github.com/san-kum/mapstory/internal/nav"
	"github.com/san-kum/mapstory/internal/registry"
	"github.com/san-kum/mapstory/internal/scheduler"
	"github.com/san-kum/mapstory/internal/timeline"
)

func (e *Engine) State() nav.State              { return e.store.State() }
func (e *Engine) Position() (main, content int) { return e.tl.Position() }
func (e *Engine) Progress() float64             { return e.tl.Progress() }
func (e *Engine) Playing() bool                 { return e.tl.Playing() }
func (e *Engine) Locked() bool                  { return e.tl.Locked() }
func (e *Engine) Waiting() bool                 { return e.sched.Waiting() }
func (e *Engine) Now() time.Duration            { return e.loop.Now() }
func (e *Engine) Steps() []timeline.Step        { return e.steps }
func (e *Engine) Page() nav.Page                { return e.page }
func (e *Engine) Registry() *registry.Registry  { return e.reg }
func (e *Engine) Current() timeline.ContentStep { return e.tl.Current() }
func (e *Engine) Active() []scheduler.Entry     { return e.sched.Snapshot() }
func (e *Engine) View() camera.View             { return e.factory.View() }

func (e *Engine) Overlay() (caption string, shown bool) { return e.overlay, e.overlayOn }

// ActiveIDs lists the ids of the active set in registry order.
func (e *Engine) ActiveIDs() []string {
	entries := e.sched.Snapshot()
	ids := make([]string, 0, len(entries))
	for _, en := range entries {
		ids = append(ids, en.Descriptor.ID)
	}
	return ids
}

func (e *Engine) Layer(id string) (layer.Layer, bool) {
	l, ok := e.layers[id]
	return l, ok
}

// Fader returns the layer as a stock fader, for hosts that render opacity
// and scale themselves.
func (e *Engine) Fader(id string) (*layer.Fader, bool) {
	f, ok := e.layers[id].(*layer.Fader)
	return f, ok
}

// AfterFunc schedules fn on the engine's clock, for scripted host actions.
func (e *Engine) AfterFunc(d time.Duration, fn func()) *loop.Timer {
	return e.loop.AfterFunc(d, fn)
}

// AddFrameObserver lets a host sample the engine once per frame.
func (e *Engine) AddFrameObserver(o loop.FrameObserver) { e.loop.AddFrameObserver(o) }
