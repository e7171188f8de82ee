package story

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/mapstory/internal/camera"
	"github.com/san-kum/mapstory/internal/nav"
	"github.com/san-kum/mapstory/internal/registry"
)

var ErrEmptyFile = errors.New("story: empty file")

// File is the on-disk form of a story. Durations are whole milliseconds.
type File struct {
	Title        string       `yaml:"title" json:"title"`
	TimelinePage string       `yaml:"timeline_page,omitempty" json:"timeline_page,omitempty"`
	View         *camera.View `yaml:"view,omitempty" json:"view,omitempty"`
	Pages        []PageFile   `yaml:"pages" json:"pages"`
	SubScenes    []string     `yaml:"sub_scenes" json:"sub_scenes"`
	Layers       []LayerFile  `yaml:"layers" json:"layers"`
}

type PageFile struct {
	ID           string      `yaml:"id" json:"id"`
	DefaultScene string      `yaml:"default_scene,omitempty" json:"default_scene,omitempty"`
	Scenes       []SceneFile `yaml:"scenes" json:"scenes"`
}

type SceneFile struct {
	ID       string        `yaml:"id" json:"id"`
	Name     string        `yaml:"name,omitempty" json:"name,omitempty"`
	Contents []ContentFile `yaml:"contents,omitempty" json:"contents,omitempty"`
}

type ContentFile struct {
	DurationMS int    `yaml:"duration_ms" json:"duration_ms"`
	Primary    bool   `yaml:"primary,omitempty" json:"primary,omitempty"`
	Caption    string `yaml:"caption,omitempty" json:"caption,omitempty"`
}

type LayerFile struct {
	ID              string      `yaml:"id" json:"id"`
	Kind            string      `yaml:"kind" json:"kind"`
	Scenes          []string    `yaml:"scenes" json:"scenes"`
	SubScenes       []string    `yaml:"sub_scenes,omitempty" json:"sub_scenes,omitempty"`
	Content         []int       `yaml:"content,omitempty" json:"content,omitempty"`
	SkipAnimationAt []int       `yaml:"skip_animation_at,omitempty" json:"skip_animation_at,omitempty"`
	EnterMS         int         `yaml:"enter_ms,omitempty" json:"enter_ms,omitempty"`
	ExitMS          int         `yaml:"exit_ms,omitempty" json:"exit_ms,omitempty"`
	SubSceneDelayMS int         `yaml:"sub_scene_delay_ms,omitempty" json:"sub_scene_delay_ms,omitempty"`
	Pickable        bool        `yaml:"pickable,omitempty" json:"pickable,omitempty"`
	Camera          *CameraFile `yaml:"camera,omitempty" json:"camera,omitempty"`
}

type CameraFile struct {
	Target     camera.View `yaml:"target" json:"target"`
	DelayMS    int         `yaml:"delay_ms,omitempty" json:"delay_ms,omitempty"`
	DurationMS int         `yaml:"duration_ms,omitempty" json:"duration_ms,omitempty"`
	Rotate     bool        `yaml:"rotate,omitempty" json:"rotate,omitempty"`
}

// Load reads, validates and decodes a story file.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	f, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

// Parse checks data against the story schema before decoding it.
func Parse(data []byte) (*File, error) {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse story: %w", err)
	}
	if doc == nil {
		return nil, ErrEmptyFile
	}
	if err := Validate(doc); err != nil {
		return nil, err
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode story: %w", err)
	}
	return &f, nil
}

func (f *File) Save(path string) error {
	data, err := yaml.Marshal(f)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Registry builds the validated registry the engine runs on.
func (f *File) Registry() (*registry.Registry, error) {
	catalog := nav.Catalog{}
	var scenes []registry.SceneDescriptor

	for _, p := range f.Pages {
		def := nav.PageDef{Page: nav.Page(p.ID), DefaultScene: nav.Scene(p.DefaultScene)}
		for _, s := range p.Scenes {
			def.Scenes = append(def.Scenes, nav.Scene(s.ID))
			if len(s.Contents) == 0 && s.Name == "" {
				continue
			}
			sd := registry.SceneDescriptor{Scene: nav.Scene(s.ID), Name: s.Name}
			for _, c := range s.Contents {
				sd.Contents = append(sd.Contents, registry.ContentDescriptor{
					Duration: ms(c.DurationMS),
					Primary:  c.Primary,
					Caption:  c.Caption,
				})
			}
			scenes = append(scenes, sd)
		}
		if def.DefaultScene == "" && len(def.Scenes) > 0 {
			def.DefaultScene = def.Scenes[0]
		}
		catalog.Pages = append(catalog.Pages, def)
	}
	for _, s := range f.SubScenes {
		catalog.SubScenes = append(catalog.SubScenes, nav.SubScene(s))
	}

	layers := make([]registry.LayerDescriptor, 0, len(f.Layers))
	for _, l := range f.Layers {
		layers = append(layers, l.descriptor())
	}
	return registry.New(catalog, scenes, layers)
}

func (l LayerFile) descriptor() registry.LayerDescriptor {
	d := registry.LayerDescriptor{
		ID:                   l.ID,
		Kind:                 registry.Kind(l.Kind),
		ContentIndices:       l.Content,
		SkipAnimationAt:      l.SkipAnimationAt,
		Enter:                ms(l.EnterMS),
		Exit:                 ms(l.ExitMS),
		DelayForNextSubScene: ms(l.SubSceneDelayMS),
		Pickable:             l.Pickable,
	}
	for _, s := range l.Scenes {
		d.Scenes = append(d.Scenes, nav.Scene(s))
	}
	for _, s := range l.SubScenes {
		d.SubScenes = append(d.SubScenes, nav.SubScene(s))
	}
	if l.Camera != nil {
		d.Shot = &camera.Shot{
			Target:   l.Camera.Target,
			Delay:    ms(l.Camera.DelayMS),
			Duration: ms(l.Camera.DurationMS),
			Rotate:   l.Camera.Rotate,
		}
	}
	return d
}

// InitialView is the camera position before any camera layer runs.
func (f *File) InitialView() camera.View {
	if f.View == nil {
		return camera.View{}
	}
	return *f.View
}

func ms(n int) time.Duration { return time.Duration(n) * time.Millisecond }
