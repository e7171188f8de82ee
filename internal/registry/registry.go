package registry

import (
	"fmt"
	"slices"
	"time"

	"github.com/san-kum/mapstory/internal/camera"
	"github.com/san-kum/mapstory/internal/nav"
	"github.com/san-kum/mapstory/internal/timeline"
)

type Kind string

const (
	KindTerrain   Kind = "terrain"
	KindParticles Kind = "particles"
	KindPolygon   Kind = "polygon"
	KindMarker    Kind = "marker"
	KindCamera    Kind = "camera"
)

// LayerDescriptor is one static registry entry.
type LayerDescriptor struct {
	ID        string
	Kind      Kind
	Scenes    []nav.Scene
	SubScenes []nav.SubScene // empty: every sub-scene

	// ContentIndices gates the layer to some content steps; empty means all.
	ContentIndices []int
	// SkipAnimationAt lists content steps where the layer is shown without
	// replaying its entrance.
	SkipAnimationAt []int

	Enter time.Duration
	Exit  time.Duration // zero: same as Enter

	DelayForNextSubScene time.Duration
	Pickable             bool

	Shot *camera.Shot // camera layers only
}

func (d LayerDescriptor) EnterDuration() time.Duration { return d.Enter }

func (d LayerDescriptor) ExitDuration() time.Duration {
	if d.Exit > 0 {
		return d.Exit
	}
	return d.Enter
}

func (d LayerDescriptor) InScene(s nav.Scene) bool { return slices.Contains(d.Scenes, s) }

func (d LayerDescriptor) InSubScene(s nav.SubScene) bool {
	return len(d.SubScenes) == 0 || slices.Contains(d.SubScenes, s)
}

// SubSceneRestricted reports whether the layer only shows in some sub-scenes.
func (d LayerDescriptor) SubSceneRestricted() bool { return len(d.SubScenes) > 0 }

func (d LayerDescriptor) AtContent(i int) bool {
	return len(d.ContentIndices) == 0 || slices.Contains(d.ContentIndices, i) || d.SkipsAnimationAt(i)
}

func (d LayerDescriptor) SkipsAnimationAt(i int) bool { return slices.Contains(d.SkipAnimationAt, i) }

// Matches reports whether the layer belongs to the active set for state.
func (d LayerDescriptor) Matches(state nav.State) bool {
	return d.InScene(state.Scene) && d.InSubScene(state.SubScene) && d.AtContent(state.ContentIndex)
}

// ContentDescriptor is one timed beat of a scene.
type ContentDescriptor struct {
	Duration time.Duration
	Primary  bool
	Caption  string
}

// SceneDescriptor carries the timing of a scene's beats.
type SceneDescriptor struct {
	Scene    nav.Scene
	Name     string
	Contents []ContentDescriptor
}

// Registry is the validated, read-only story table.
type Registry struct {
	catalog nav.Catalog
	scenes  map[nav.Scene]SceneDescriptor
	layers  []LayerDescriptor
	byID    map[string]int
}

func New(catalog nav.Catalog, scenes []SceneDescriptor, layers []LayerDescriptor) (*Registry, error) {
	if err := catalog.Validate(); err != nil {
		return nil, err
	}

	r := &Registry{
		catalog: catalog,
		scenes:  make(map[nav.Scene]SceneDescriptor, len(scenes)),
		layers:  make([]LayerDescriptor, 0, len(layers)),
		byID:    make(map[string]int, len(layers)),
	}

	for _, sd := range scenes {
		if !catalog.HasScene(sd.Scene) {
			return nil, &DescriptorError{ID: string(sd.Scene), Wrapped: ErrUnknownScene}
		}
		if _, dup := r.scenes[sd.Scene]; dup {
			return nil, &DescriptorError{ID: string(sd.Scene), Wrapped: ErrDuplicateScene}
		}
		for _, c := range sd.Contents {
			if c.Duration < 0 {
				return nil, &DescriptorError{ID: string(sd.Scene), Wrapped: ErrNegativeDuration}
			}
		}
		r.scenes[sd.Scene] = sd
	}

	for _, d := range layers {
		if err := validateLayer(catalog, d); err != nil {
			return nil, err
		}
		if _, dup := r.byID[d.ID]; dup {
			return nil, &DescriptorError{ID: d.ID, Wrapped: ErrDuplicateID}
		}
		r.byID[d.ID] = len(r.layers)
		r.layers = append(r.layers, d)
	}

	return r, nil
}

// MustNew is New for static tables compiled into the binary.
func MustNew(catalog nav.Catalog, scenes []SceneDescriptor, layers []LayerDescriptor) *Registry {
	r, err := New(catalog, scenes, layers)
	if err != nil {
		panic(err)
	}
	return r
}

func validateLayer(catalog nav.Catalog, d LayerDescriptor) error {
	if d.ID == "" {
		return ErrEmptyID
	}
	wrap := func(err error) error { return &DescriptorError{ID: d.ID, Wrapped: err} }

	if len(d.Scenes) == 0 {
		return wrap(ErrNoScenes)
	}
	for _, s := range d.Scenes {
		if !catalog.HasScene(s) {
			return wrap(fmt.Errorf("%w %q", ErrUnknownScene, s))
		}
	}
	for _, s := range d.SubScenes {
		if !catalog.HasSubScene(s) {
			return wrap(fmt.Errorf("%w %q", ErrUnknownSubScene, s))
		}
	}
	if d.Enter < 0 || d.Exit < 0 || d.DelayForNextSubScene < 0 {
		return wrap(ErrNegativeDuration)
	}
	for _, i := range append(slices.Clone(d.ContentIndices), d.SkipAnimationAt...) {
		if i < 0 {
			return wrap(ErrNegativeIndex)
		}
	}
	if d.Kind == KindCamera {
		if d.Shot == nil {
			return wrap(ErrMissingShot)
		}
		if d.Shot.Delay < 0 || d.Shot.Duration < 0 {
			return wrap(ErrNegativeDuration)
		}
		if d.Enter != 0 || d.Exit != 0 {
			return wrap(ErrCameraTiming)
		}
	}
	return nil
}

func (r *Registry) Catalog() nav.Catalog { return r.catalog }

// Layers returns every descriptor in registration order.
func (r *Registry) Layers() []LayerDescriptor { return slices.Clone(r.layers) }

func (r *Registry) Lookup(id string) (LayerDescriptor, bool) {
	i, ok := r.byID[id]
	if !ok {
		return LayerDescriptor{}, false
	}
	return r.layers[i], true
}

// Active filters the registry down to the layers relevant to state, keeping
// registration order.
func (r *Registry) Active(state nav.State) []LayerDescriptor {
	out := make([]LayerDescriptor, 0)
	for _, d := range r.layers {
		if d.Matches(state) {
			out = append(out, d)
		}
	}
	return out
}

func (r *Registry) Scene(s nav.Scene) (SceneDescriptor, bool) {
	sd, ok := r.scenes[s]
	return sd, ok
}

// Steps derives the timeline for a page: one main step per scene. A scene's
// beats come from its descriptor when it has one, otherwise from the distinct
// content indices its layers are gated to.
func (r *Registry) Steps(page nav.Page, defaultDuration time.Duration) []timeline.Step {
	scenes := r.catalog.ScenesOf(page)
	steps := make([]timeline.Step, 0, len(scenes))

	for _, s := range scenes {
		step := timeline.Step{Scene: s, Name: string(s)}
		if sd, ok := r.scenes[s]; ok && len(sd.Contents) > 0 {
			if sd.Name != "" {
				step.Name = sd.Name
			}
			for _, c := range sd.Contents {
				step.Contents = append(step.Contents, timeline.ContentStep{
					Duration: c.Duration,
					Primary:  c.Primary,
					Caption:  c.Caption,
				})
			}
			steps = append(steps, step)
			continue
		}
		if sd, ok := r.scenes[s]; ok && sd.Name != "" {
			step.Name = sd.Name
		}

		for i := 0; i < r.contentCount(s); i++ {
			step.Contents = append(step.Contents, timeline.ContentStep{Duration: defaultDuration})
		}
		steps = append(steps, step)
	}
	return steps
}

// contentCount is the number of beats implied by layer gating: one past the
// highest gated index.
func (r *Registry) contentCount(s nav.Scene) int {
	n := 0
	for _, d := range r.layers {
		if !d.InScene(s) {
			continue
		}
		for _, i := range append(slices.Clone(d.ContentIndices), d.SkipAnimationAt...) {
			if i+1 > n {
				n = i + 1
			}
		}
	}
	return n
}
