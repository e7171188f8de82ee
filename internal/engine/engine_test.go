package engine_test

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/mapstory/internal/engine"
	"github.com/san-kum/mapstory/internal/nav"
	"github.com/san-kum/mapstory/internal/registry"
)

const ms = time.Millisecond

var catalog = nav.Catalog{
	Pages: []nav.PageDef{
		{Page: "intro", Scenes: []nav.Scene{"cover"}, DefaultScene: "cover"},
		{Page: "main", Scenes: []nav.Scene{"scene1", "scene2", "scene3"}, DefaultScene: "scene1"},
	},
	SubScenes: []nav.SubScene{"north", "south"},
}

func beats(n int, d time.Duration) []registry.ContentDescriptor {
	out := make([]registry.ContentDescriptor, n)
	for i := range out {
		out[i] = registry.ContentDescriptor{Duration: d}
	}
	return out
}

func newRegistry() *registry.Registry {
	scene1 := beats(3, 5*time.Second)
	scene1[1] = registry.ContentDescriptor{Duration: 5 * time.Second, Primary: true, Caption: "rivers"}

	return registry.MustNew(catalog,
		[]registry.SceneDescriptor{
			{Scene: "scene1", Name: "Scene 1", Contents: scene1},
			{Scene: "scene2", Name: "Scene 2", Contents: beats(2, 5*time.Second)},
			{Scene: "scene3", Contents: beats(1, 5*time.Second)},
		},
		[]registry.LayerDescriptor{
			{ID: "cover-title", Kind: registry.KindPolygon, Scenes: []nav.Scene{"cover"}, Enter: 300 * ms},
			{ID: "terrain", Kind: registry.KindTerrain, Scenes: []nav.Scene{"scene1"}, Enter: 500 * ms, Exit: 2000 * ms},
			{ID: "rivers", Kind: registry.KindPolygon, Scenes: []nav.Scene{"scene1"}, ContentIndices: []int{1}, Enter: 300 * ms},
			{ID: "wind", Kind: registry.KindParticles, Scenes: []nav.Scene{"scene2"}, Enter: 800 * ms},
			{ID: "towns", Kind: registry.KindMarker, Scenes: []nav.Scene{"scene3"}, Enter: 200 * ms},
		},
	)
}

type recorder struct {
	steps      [][2]int
	visibility []string
	waits      int
	waitEnds   int
	overlays   []string
	finished   int
}

func (r *recorder) hooks() engine.Hooks {
	return engine.Hooks{
		OnTimelineStepChanged: func(m, c int) { r.steps = append(r.steps, [2]int{m, c}) },
		OnWaitNextSceneStart:  func() { r.waits++ },
		OnWaitNextSceneEnd:    func() { r.waitEnds++ },
		OnLayerVisibilityChanged: func(id string, v bool) {
			if v {
				r.visibility = append(r.visibility, "+"+id)
				return
			}
			r.visibility = append(r.visibility, "-"+id)
		},
		OnOverlay: func(caption string, shown bool) {
			if shown {
				r.overlays = append(r.overlays, caption)
				return
			}
			r.overlays = append(r.overlays, "")
		},
		OnFinished: func() { r.finished++ },
	}
}

var _ = Describe("Engine", func() {
	var (
		eng *engine.Engine
		rec *recorder
	)

	BeforeEach(func() {
		rec = &recorder{}
		var err error
		eng, err = engine.New(engine.Options{Registry: newRegistry(), Hooks: rec.hooks()})
		Expect(err).NotTo(HaveOccurred())
		Expect(eng.SetPage("main")).To(Succeed())
		eng.Start()
	})

	AfterEach(func() {
		eng.Close()
	})

	It("starts on the default scene of the page with its layers shown", func() {
		Expect(eng.State()).To(Equal(nav.State{Page: "main", Scene: "scene1", SubScene: "north"}))
		Expect(eng.ActiveIDs()).To(ConsistOf("terrain"))
		Expect(rec.visibility).To(Equal([]string{"+terrain"}))
		Expect(eng.Steps()).To(HaveLen(3))
	})

	It("auto-advances across a main step and reports the change once", func() {
		Expect(eng.SetContentIndex(2)).To(Succeed())
		m, c := eng.Position()
		Expect([]int{m, c}).To(Equal([]int{0, 2}))

		eng.Play()
		eng.Advance(4999 * ms)
		Expect(rec.steps).To(BeEmpty())

		eng.Advance(1 * ms)
		Expect(rec.steps).To(Equal([][2]int{{1, 0}}))
		Expect(eng.State().Scene).To(Equal(nav.Scene("scene2")))
		Expect(eng.State().ContentIndex).To(BeZero())
	})

	It("holds the next scene back until the outgoing exit and the settle buffer have passed", func() {
		eng.Play()
		Expect(eng.SetScene("scene2")).To(Succeed())
		Expect(rec.visibility).To(Equal([]string{"+terrain", "-terrain"}))
		Expect(rec.waits).To(Equal(1))

		eng.Advance(2999 * ms)
		Expect(rec.visibility).NotTo(ContainElement("+wind"))

		eng.Advance(1 * ms)
		Expect(rec.visibility).To(ContainElement("+wind"))
		Expect(rec.waitEnds).To(Equal(1))
	})

	It("reveals a scene chosen while paused as soon as playback resumes", func() {
		eng.Pause()
		Expect(eng.SetScene("scene3")).To(Succeed())
		eng.Advance(10 * time.Second)
		Expect(rec.visibility).NotTo(ContainElement("+towns"))

		eng.Play()
		Expect(rec.visibility).To(ContainElement("+towns"))
	})

	It("adopts host navigation without reporting a timeline change", func() {
		Expect(eng.SetScene("scene3")).To(Succeed())
		m, c := eng.Position()
		Expect([]int{m, c}).To(Equal([]int{2, 0}))
		Expect(rec.steps).To(BeEmpty())
	})

	It("steps manually with debounce and releases the lock on confirmation", func() {
		Expect(eng.Next()).To(BeTrue())
		Expect(eng.Next()).To(BeFalse())
		Expect(eng.State().ContentIndex).To(Equal(1))
		Expect(eng.Locked()).To(BeFalse())

		eng.Advance(100 * ms)
		Expect(eng.Next()).To(BeTrue())
		Expect(eng.State().ContentIndex).To(Equal(2))

		eng.Advance(100 * ms)
		Expect(eng.Previous()).To(BeTrue())
		Expect(rec.steps).To(Equal([][2]int{{0, 1}, {0, 2}, {0, 1}}))
	})

	It("moves scenes when a manual step crosses a main step", func() {
		Expect(eng.GoToStep(0, 2)).To(BeTrue())
		eng.Advance(100 * ms)
		Expect(eng.Next()).To(BeTrue())
		Expect(eng.State().Scene).To(Equal(nav.Scene("scene2")))

		eng.Advance(100 * ms)
		Expect(eng.Previous()).To(BeTrue())
		Expect(eng.State().Scene).To(Equal(nav.Scene("scene1")))
		Expect(eng.State().ContentIndex).To(Equal(2))
		m, c := eng.Position()
		Expect([]int{m, c}).To(Equal([]int{0, 2}))
	})

	It("adopts host navigation right after a manual step once the debounce window closes", func() {
		Expect(eng.Next()).To(BeTrue())
		Expect(eng.SetScene("scene3")).To(Succeed())
		m, _ := eng.Position()
		Expect(m).To(Equal(0))

		eng.Advance(100 * ms)
		m, c := eng.Position()
		Expect([]int{m, c}).To(Equal([]int{2, 0}))
		Expect(rec.steps).To(Equal([][2]int{{0, 1}}))
	})

	It("shows the overlay on primary content steps", func() {
		Expect(eng.Next()).To(BeTrue())
		Expect(rec.overlays).To(Equal([]string{"rivers"}))

		eng.Advance(100 * ms)
		Expect(eng.Next()).To(BeTrue())
		Expect(rec.overlays).To(Equal([]string{"rivers", ""}))
	})

	It("reports the end of the story", func() {
		Expect(eng.SetScene("scene3")).To(Succeed())
		eng.Play()
		eng.Advance(6 * time.Second)
		Expect(rec.finished).To(Equal(1))
		Expect(eng.Progress()).To(BeNumerically("==", 1))
	})

	It("rejects navigation the catalog does not allow", func() {
		Expect(eng.SetScene("cover")).To(MatchError(engine.ErrForeignScene))
		Expect(eng.SetPage("epilogue")).To(MatchError(engine.ErrUnknownPage))
		Expect(eng.SetSubScene("east")).To(MatchError(engine.ErrUnknownSubScene))
		Expect(eng.SetContentIndex(-1)).To(MatchError(engine.ErrContentIndex))
		Expect(eng.SetContentIndex(3)).To(MatchError(engine.ErrContentIndex))
		Expect(eng.State().ContentIndex).To(BeZero())
	})

	It("refuses work after Close", func() {
		eng.Play()
		Expect(eng.SetScene("scene2")).To(Succeed())
		eng.Close()

		Expect(eng.SetScene("scene1")).To(MatchError(engine.ErrClosed))
		Expect(eng.Next()).To(BeFalse())
		eng.Advance(time.Minute)
		Expect(rec.visibility).NotTo(ContainElement("+wind"))
	})

	It("animates layers on frames", func() {
		eng.Tick(250 * ms)
		f, ok := eng.Fader("terrain")
		Expect(ok).To(BeTrue())
		Expect(f.Opacity()).To(BeNumerically(">", 0))
		Expect(f.Opacity()).To(BeNumerically("<", 1))

		eng.Tick(250 * ms)
		Expect(f.Opacity()).To(BeNumerically("==", 1))
	})
})

var _ = Describe("Engine starting off the timeline page", func() {
	var (
		eng *engine.Engine
		rec *recorder
	)

	BeforeEach(func() {
		rec = &recorder{}
		var err error
		eng, err = engine.New(engine.Options{Registry: newRegistry(), Hooks: rec.hooks()})
		Expect(err).NotTo(HaveOccurred())
		eng.Start()
	})

	AfterEach(func() {
		eng.Close()
	})

	It("shows the cover until playback starts", func() {
		Expect(eng.State().Page).To(Equal(nav.Page("intro")))
		Expect(eng.ActiveIDs()).To(ConsistOf("cover-title"))
		Expect(rec.steps).To(BeEmpty())
	})

	It("plays the first beat of the timeline page", func() {
		eng.Play()
		Expect(rec.steps).To(Equal([][2]int{{0, 0}}))
		Expect(eng.State()).To(Equal(nav.State{Page: "main", Scene: "scene1", SubScene: "north"}))
		Expect(rec.visibility).To(Equal([]string{"+cover-title", "-cover-title"}))

		eng.Advance(1300 * ms)
		Expect(rec.visibility).To(ContainElement("+terrain"))

		eng.Advance(3700 * ms)
		Expect(rec.steps).To(Equal([][2]int{{0, 0}, {0, 1}}))
		Expect(eng.State().ContentIndex).To(Equal(1))
	})

	It("bounds content indices by the beats of the scene shown", func() {
		Expect(eng.SetContentIndex(1)).To(MatchError(engine.ErrContentIndex))
		Expect(eng.SetContentIndex(0)).To(Succeed())
	})
})

var _ = Describe("Engine construction", func() {
	It("requires a registry", func() {
		_, err := engine.New(engine.Options{})
		Expect(err).To(MatchError(engine.ErrNoRegistry))
	})

	It("rejects a timeline page the catalog lacks", func() {
		cfg := engine.DefaultConfig()
		cfg.Page = "appendix"
		_, err := engine.New(engine.Options{Registry: newRegistry(), Config: cfg})
		Expect(err).To(MatchError(engine.ErrUnknownPage))
	})
})
