package nav

import (
	"errors"
	"fmt"
)

type (
	Page     string
	Scene    string
	SubScene string
)

// State is the navigation position every other component diffs against.
type State struct {
	Page         Page
	Scene        Scene
	SubScene     SubScene
	ContentIndex int
}

func (s State) String() string {
	return fmt.Sprintf("%s/%s[%s]#%d", s.Page, s.Scene, s.SubScene, s.ContentIndex)
}

var (
	ErrNoPages        = errors.New("nav: catalog has no pages")
	ErrEmptyPage      = errors.New("nav: page has no scenes")
	ErrDuplicateScene = errors.New("nav: scene listed twice")
	ErrDefaultScene   = errors.New("nav: default scene not on its page")
	ErrNoSubScenes    = errors.New("nav: catalog has no sub-scenes")
)

// PageDef lists the scenes that belong to one page, in narrative order.
type PageDef struct {
	Page         Page
	Scenes       []Scene
	DefaultScene Scene
}

// Catalog is the fixed set of pages, scenes and sub-scenes a story is built
// from. The first page and first sub-scene are the process defaults.
type Catalog struct {
	Pages     []PageDef
	SubScenes []SubScene
}

func (c Catalog) Validate() error {
	if len(c.Pages) == 0 {
		return ErrNoPages
	}
	if len(c.SubScenes) == 0 {
		return ErrNoSubScenes
	}
	seen := make(map[Scene]Page)
	for _, p := range c.Pages {
		if len(p.Scenes) == 0 {
			return fmt.Errorf("%w: %s", ErrEmptyPage, p.Page)
		}
		for _, s := range p.Scenes {
			if owner, ok := seen[s]; ok {
				return fmt.Errorf("%w: %s (pages %s and %s)", ErrDuplicateScene, s, owner, p.Page)
			}
			seen[s] = p.Page
		}
		if p.DefaultScene != "" && seen[p.DefaultScene] != p.Page {
			return fmt.Errorf("%w: %s on %s", ErrDefaultScene, p.DefaultScene, p.Page)
		}
	}
	return nil
}

func (c Catalog) page(p Page) (PageDef, bool) {
	for _, def := range c.Pages {
		if def.Page == p {
			return def, true
		}
	}
	return PageDef{}, false
}

// ScenesOf returns the ordered scenes of a page, or nil for an unknown page.
func (c Catalog) ScenesOf(p Page) []Scene {
	def, ok := c.page(p)
	if !ok {
		return nil
	}
	return def.Scenes
}

// DefaultScene returns the scene a page opens on.
func (c Catalog) DefaultScene(p Page) Scene {
	def, ok := c.page(p)
	if !ok {
		return ""
	}
	if def.DefaultScene != "" {
		return def.DefaultScene
	}
	return def.Scenes[0]
}

// PageOf returns the page a scene belongs to.
func (c Catalog) PageOf(s Scene) (Page, bool) {
	for _, def := range c.Pages {
		for _, cur := range def.Scenes {
			if cur == s {
				return def.Page, true
			}
		}
	}
	return "", false
}

func (c Catalog) HasPage(p Page) bool {
	_, ok := c.page(p)
	return ok
}

func (c Catalog) HasScene(s Scene) bool {
	_, ok := c.PageOf(s)
	return ok
}

func (c Catalog) HasSubScene(s SubScene) bool {
	for _, cur := range c.SubScenes {
		if cur == s {
			return true
		}
	}
	return false
}

// Initial is the state a store starts in.
func (c Catalog) Initial() State {
	first := c.Pages[0].Page
	return State{
		Page:     first,
		Scene:    c.DefaultScene(first),
		SubScene: c.SubScenes[0],
	}
}
