package nav

import "fmt"

// Observer receives every committed navigation change.
type Observer interface {
	OnNavigationChanged(prev, next State)
}

// ObserverFunc adapts a plain function to Observer.
type ObserverFunc func(prev, next State)

func (f ObserverFunc) OnNavigationChanged(prev, next State) { f(prev, next) }

// Store is the single source of truth for the navigation position. It is
// mutated only through its four setters; observers are called synchronously,
// in registration order, before the setter returns.
type Store struct {
	catalog   Catalog
	state     State
	observers []*subscription
}

type subscription struct {
	o Observer
}

// NewStore panics on an invalid catalog; catalogs are static tables and a bad
// one is a build error, not a runtime condition.
func NewStore(catalog Catalog) *Store {
	if err := catalog.Validate(); err != nil {
		panic(err)
	}
	return &Store{
		catalog:   catalog,
		state:     catalog.Initial(),
		observers: make([]*subscription, 0),
	}
}

func (s *Store) State() State     { return s.state }
func (s *Store) Catalog() Catalog { return s.catalog }

// AddObserver registers o and returns a function that removes it.
func (s *Store) AddObserver(o Observer) (remove func()) {
	sub := &subscription{o: o}
	s.observers = append(s.observers, sub)
	return func() {
		for i, cur := range s.observers {
			if cur == sub {
				s.observers = append(s.observers[:i], s.observers[i+1:]...)
				return
			}
		}
	}
}

// SetPage switches page, resetting scene to the page default and content to 0.
func (s *Store) SetPage(p Page) {
	if !s.catalog.HasPage(p) {
		panic(fmt.Sprintf("nav: unknown page %q", p))
	}
	next := s.state
	next.Page = p
	next.Scene = s.catalog.DefaultScene(p)
	next.ContentIndex = 0
	s.commit(next)
}

// SetScene moves to another scene of the current page and rewinds content to
// 0. A scene from another page is a programming error.
func (s *Store) SetScene(scene Scene) {
	page, ok := s.catalog.PageOf(scene)
	if !ok || page != s.state.Page {
		panic(fmt.Sprintf("nav: scene %q does not belong to page %q", scene, s.state.Page))
	}
	if scene == s.state.Scene {
		return
	}
	next := s.state
	next.Scene = scene
	next.ContentIndex = 0
	s.commit(next)
}

func (s *Store) SetSubScene(sub SubScene) {
	if !s.catalog.HasSubScene(sub) {
		panic(fmt.Sprintf("nav: unknown sub-scene %q", sub))
	}
	next := s.state
	next.SubScene = sub
	s.commit(next)
}

func (s *Store) SetContentIndex(n int) {
	if n < 0 {
		panic(fmt.Sprintf("nav: negative content index %d", n))
	}
	next := s.state
	next.ContentIndex = n
	s.commit(next)
}

func (s *Store) commit(next State) {
	if next == s.state {
		return
	}
	prev := s.state
	s.state = next
	// Snapshot so observers may unsubscribe while being notified.
	subs := make([]*subscription, len(s.observers))
	copy(subs, s.observers)
	for _, sub := range subs {
		sub.o.OnNavigationChanged(prev, next)
	}
}
