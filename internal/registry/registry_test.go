package registry

import (
	"errors"
	"slices"
	"testing"
	"time"

	"github.com/san-kum/mapstory/internal/camera"
	"github.com/san-kum/mapstory/internal/nav"
)

var testCatalog = nav.Catalog{
	Pages: []nav.PageDef{
		{Page: "intro", Scenes: []nav.Scene{"cover"}},
		{Page: "main", Scenes: []nav.Scene{"ice", "melt", "sea"}},
	},
	SubScenes: []nav.SubScene{"arctic", "antarctic"},
}

func terrain(id string, scenes ...nav.Scene) LayerDescriptor {
	return LayerDescriptor{ID: id, Kind: KindTerrain, Scenes: scenes, Enter: time.Second}
}

func TestNewRejectsInconsistentTables(t *testing.T) {
	shot := &camera.Shot{Duration: time.Second}

	tests := []struct {
		name   string
		scenes []SceneDescriptor
		layers []LayerDescriptor
		want   error
	}{
		{
			name:   "empty id",
			layers: []LayerDescriptor{terrain("", "ice")},
			want:   ErrEmptyID,
		},
		{
			name:   "no scenes",
			layers: []LayerDescriptor{terrain("base")},
			want:   ErrNoScenes,
		},
		{
			name:   "unknown scene",
			layers: []LayerDescriptor{terrain("base", "desert")},
			want:   ErrUnknownScene,
		},
		{
			name: "unknown sub-scene",
			layers: []LayerDescriptor{{
				ID: "base", Kind: KindTerrain, Scenes: []nav.Scene{"ice"}, SubScenes: []nav.SubScene{"tropics"},
			}},
			want: ErrUnknownSubScene,
		},
		{
			name:   "negative exit",
			layers: []LayerDescriptor{{ID: "base", Kind: KindTerrain, Scenes: []nav.Scene{"ice"}, Exit: -time.Second}},
			want:   ErrNegativeDuration,
		},
		{
			name: "negative sub-scene delay",
			layers: []LayerDescriptor{{
				ID: "base", Kind: KindTerrain, Scenes: []nav.Scene{"ice"}, DelayForNextSubScene: -1,
			}},
			want: ErrNegativeDuration,
		},
		{
			name:   "negative content index",
			layers: []LayerDescriptor{{ID: "base", Kind: KindTerrain, Scenes: []nav.Scene{"ice"}, ContentIndices: []int{0, -1}}},
			want:   ErrNegativeIndex,
		},
		{
			name:   "negative skip index",
			layers: []LayerDescriptor{{ID: "base", Kind: KindTerrain, Scenes: []nav.Scene{"ice"}, SkipAnimationAt: []int{-2}}},
			want:   ErrNegativeIndex,
		},
		{
			name:   "duplicate id",
			layers: []LayerDescriptor{terrain("base", "ice"), terrain("base", "melt")},
			want:   ErrDuplicateID,
		},
		{
			name:   "camera without shot",
			layers: []LayerDescriptor{{ID: "cam", Kind: KindCamera, Scenes: []nav.Scene{"ice"}}},
			want:   ErrMissingShot,
		},
		{
			name: "camera with a negative delay",
			layers: []LayerDescriptor{{
				ID: "cam", Kind: KindCamera, Scenes: []nav.Scene{"ice"}, Shot: &camera.Shot{Delay: -1},
			}},
			want: ErrNegativeDuration,
		},
		{
			name:   "camera with its own exit",
			layers: []LayerDescriptor{{ID: "cam", Kind: KindCamera, Scenes: []nav.Scene{"ice"}, Shot: shot, Exit: time.Second}},
			want:   ErrCameraTiming,
		},
		{
			name:   "scene descriptor for an unknown scene",
			scenes: []SceneDescriptor{{Scene: "desert"}},
			want:   ErrUnknownScene,
		},
		{
			name:   "scene described twice",
			scenes: []SceneDescriptor{{Scene: "ice"}, {Scene: "ice"}},
			want:   ErrDuplicateScene,
		},
		{
			name:   "negative beat",
			scenes: []SceneDescriptor{{Scene: "ice", Contents: []ContentDescriptor{{Duration: -time.Second}}}},
			want:   ErrNegativeDuration,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := New(testCatalog, tt.scenes, tt.layers)
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
			if r != nil {
				t.Error("a registry was returned alongside the error")
			}
		})
	}
}

func TestNewNamesTheEntry(t *testing.T) {
	_, err := New(testCatalog, nil, []LayerDescriptor{terrain("glacier", "desert")})
	var de *DescriptorError
	if !errors.As(err, &de) || de.ID != "glacier" {
		t.Fatalf("expected a DescriptorError for glacier, got %v", err)
	}
}

func TestNewRejectsInvalidCatalog(t *testing.T) {
	if _, err := New(nav.Catalog{}, nil, nil); !errors.Is(err, nav.ErrNoPages) {
		t.Errorf("expected nav.ErrNoPages, got %v", err)
	}
}

func TestMustNewPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("MustNew accepted an inconsistent table")
		}
	}()
	MustNew(testCatalog, nil, []LayerDescriptor{terrain("base")})
}

func TestActive(t *testing.T) {
	r := MustNew(testCatalog, nil, []LayerDescriptor{
		terrain("base", "ice", "melt"),
		{ID: "rivers", Kind: KindPolygon, Scenes: []nav.Scene{"ice"}, ContentIndices: []int{1}},
		{ID: "labels", Kind: KindMarker, Scenes: []nav.Scene{"ice"}, ContentIndices: []int{2}, SkipAnimationAt: []int{1}},
		{ID: "north", Kind: KindMarker, Scenes: []nav.Scene{"ice"}, SubScenes: []nav.SubScene{"arctic"}},
	})

	tests := []struct {
		name  string
		state nav.State
		want  []string
	}{
		{"first beat", nav.State{Page: "main", Scene: "ice", SubScene: "arctic"}, []string{"base", "north"}},
		{"gated beat", nav.State{Page: "main", Scene: "ice", SubScene: "antarctic", ContentIndex: 1}, []string{"base", "rivers", "labels"}},
		{"gated beat without skip", nav.State{Page: "main", Scene: "ice", SubScene: "antarctic", ContentIndex: 2}, []string{"base", "labels"}},
		{"other scene", nav.State{Page: "main", Scene: "melt", SubScene: "arctic"}, []string{"base"}},
		{"empty scene", nav.State{Page: "main", Scene: "sea", SubScene: "arctic"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got []string
			for _, d := range r.Active(tt.state) {
				got = append(got, d.ID)
			}
			if !slices.Equal(got, tt.want) {
				t.Errorf("Active = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLookup(t *testing.T) {
	r := MustNew(testCatalog, nil, []LayerDescriptor{terrain("base", "ice")})
	if d, ok := r.Lookup("base"); !ok || d.Kind != KindTerrain {
		t.Errorf("Lookup(base) = %+v, %v", d, ok)
	}
	if _, ok := r.Lookup("missing"); ok {
		t.Error("Lookup found an unregistered layer")
	}
}

func TestExitFallsBackToEnter(t *testing.T) {
	d := LayerDescriptor{Enter: 700 * time.Millisecond}
	if d.ExitDuration() != 700*time.Millisecond {
		t.Errorf("ExitDuration = %v", d.ExitDuration())
	}
	d.Exit = 200 * time.Millisecond
	if d.ExitDuration() != 200*time.Millisecond {
		t.Errorf("ExitDuration = %v", d.ExitDuration())
	}
}

func TestSteps(t *testing.T) {
	r := MustNew(testCatalog,
		[]SceneDescriptor{
			{Scene: "ice", Name: "Ice sheets", Contents: []ContentDescriptor{
				{Duration: 4 * time.Second},
				{Duration: 6 * time.Second, Primary: true, Caption: "thinning"},
			}},
			{Scene: "melt", Name: "Melt season"},
		},
		[]LayerDescriptor{
			terrain("base", "ice", "melt"),
			{ID: "days", Kind: KindParticles, Scenes: []nav.Scene{"melt"}, ContentIndices: []int{0, 2}},
			{ID: "stations", Kind: KindMarker, Scenes: []nav.Scene{"melt"}, SkipAnimationAt: []int{3}},
		},
	)

	steps := r.Steps("main", 5*time.Second)
	if len(steps) != 3 {
		t.Fatalf("expected one step per scene of the page, got %d", len(steps))
	}

	t.Run("scene descriptor", func(t *testing.T) {
		s := steps[0]
		if s.Name != "Ice sheets" || s.Scene != "ice" || len(s.Contents) != 2 {
			t.Fatalf("step = %+v", s)
		}
		if s.Contents[1].Duration != 6*time.Second || !s.Contents[1].Primary || s.Contents[1].Caption != "thinning" {
			t.Errorf("beat = %+v", s.Contents[1])
		}
	})

	t.Run("layer gating", func(t *testing.T) {
		s := steps[1]
		if s.Name != "Melt season" {
			t.Errorf("name = %q, want the descriptor name", s.Name)
		}
		if len(s.Contents) != 4 {
			t.Fatalf("expected beats up to the highest gated index, got %d", len(s.Contents))
		}
		for i, c := range s.Contents {
			if c.Duration != 5*time.Second {
				t.Errorf("beat %d duration = %v, want the default", i, c.Duration)
			}
		}
	})

	t.Run("implicit beat", func(t *testing.T) {
		s := steps[2]
		if s.Name != "sea" {
			t.Errorf("name = %q, want the scene id", s.Name)
		}
		if len(s.Contents) != 0 || s.Len() != 1 || s.Content(0).Duration != 0 {
			t.Errorf("expected one implicit zero-length beat, got %+v", s)
		}
	})

	if other := r.Steps("intro", time.Second); len(other) != 1 || other[0].Scene != "cover" {
		t.Errorf("intro steps = %+v", other)
	}
}
