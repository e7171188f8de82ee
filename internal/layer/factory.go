package layer

import (
	"github.com/san-kum/mapstory/internal/camera"
	"github.com/san-kum/mapstory/internal/loop"
	"github.com/san-kum/mapstory/internal/registry"
)

// Constructor builds the runtime layer for a registry entry.
type Constructor func(l *loop.Loop, d registry.LayerDescriptor) Layer

// Factory maps descriptor kinds to constructors. Built layers that animate
// per frame are attached to the loop. Camera layers all drive the factory's
// single shared view.
type Factory struct {
	loop  *loop.Loop
	kinds map[registry.Kind]Constructor
	view  camera.View
	step  float64
}

func NewFactory(l *loop.Loop) *Factory {
	f := &Factory{
		loop:  l,
		kinds: make(map[registry.Kind]Constructor),
	}

	f.kinds[registry.KindTerrain] = faderWith(Curves{
		EnterOpacity: EaseOutCubic,
		ExitOpacity:  EaseInCubic,
	})
	f.kinds[registry.KindParticles] = faderWith(Curves{
		EnterOpacity: EaseOutCubic,
		EnterScale:   EaseOutCubic,
		ExitOpacity:  EaseOutQuad,
		ExitScale:    EaseInCubic,
		MinScale:     0.6,
	})
	f.kinds[registry.KindPolygon] = faderWith(Curves{
		EnterOpacity: EaseOutQuad,
		ExitOpacity:  EaseInCubic,
	})
	f.kinds[registry.KindMarker] = faderWith(Curves{
		EnterOpacity: EaseOutCubic,
		EnterScale:   EaseOutQuad,
		ExitOpacity:  EaseInCubic,
		ExitScale:    EaseInCubic,
		MinScale:     0.2,
	})
	f.kinds[registry.KindCamera] = func(l *loop.Loop, d registry.LayerDescriptor) Layer {
		shot := camera.Shot{}
		if d.Shot != nil {
			shot = *d.Shot
		}
		return camera.NewSequencer(l, d.ID, shot, &f.view, f.step)
	}

	return f
}

// SetView places the shared camera, normally before the first frame.
func (f *Factory) SetView(v camera.View) { f.view = v }

func (f *Factory) View() camera.View { return f.view }

// SetRotationStep changes the orbit speed of camera layers built afterwards.
func (f *Factory) SetRotationStep(deg float64) { f.step = deg }

func faderWith(c Curves) Constructor {
	return func(l *loop.Loop, d registry.LayerDescriptor) Layer {
		return NewFader(l, d.ID, d.Enter, d.Exit, c)
	}
}

// Register installs or replaces the constructor for a kind.
func (f *Factory) Register(kind registry.Kind, ctor Constructor) {
	f.kinds[kind] = ctor
}

// Build creates the layer for d, falling back to a default fader for kinds
// nobody registered.
func (f *Factory) Build(d registry.LayerDescriptor) Layer {
	ctor, ok := f.kinds[d.Kind]
	if !ok {
		ctor = faderWith(DefaultCurves)
	}
	l := ctor(f.loop, d)
	if fo, ok := l.(loop.FrameObserver); ok {
		f.loop.AddFrameObserver(fo)
	}
	return l
}

// BuildAll builds every descriptor, keyed by id.
func (f *Factory) BuildAll(descs []registry.LayerDescriptor) map[string]Layer {
	out := make(map[string]Layer, len(descs))
	for _, d := range descs {
		out[d.ID] = f.Build(d)
	}
	return out
}
