package scheduler_test

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/mapstory/internal/layer"
	"github.com/san-kum/mapstory/internal/loop"
	"github.com/san-kum/mapstory/internal/nav"
	"github.com/san-kum/mapstory/internal/registry"
	"github.com/san-kum/mapstory/internal/scheduler"
)

const ms = time.Millisecond

type call struct {
	at           time.Duration
	visible      bool
	inTransition bool
}

type fakeLayer struct {
	loop         *loop.Loop
	id           string
	enter, exit  time.Duration
	inTransition bool
	calls        []call
}

func (f *fakeLayer) ID() string                   { return f.id }
func (f *fakeLayer) EnterDuration() time.Duration { return f.enter }

func (f *fakeLayer) ExitDuration() time.Duration {
	if f.exit > 0 {
		return f.exit
	}
	return f.enter
}

func (f *fakeLayer) SetVisible(v bool) {
	f.calls = append(f.calls, call{at: f.loop.Now(), visible: v, inTransition: f.inTransition})
}

func (f *fakeLayer) SetInTransition(in bool) { f.inTransition = in }

func (f *fakeLayer) visible() bool {
	return len(f.calls) > 0 && f.calls[len(f.calls)-1].visible
}

var catalog = nav.Catalog{
	Pages: []nav.PageDef{
		{Page: "main", Scenes: []nav.Scene{"s1", "s2", "s3"}, DefaultScene: "s1"},
	},
	SubScenes: []nav.SubScene{"north", "south"},
}

var descriptors = []registry.LayerDescriptor{
	{ID: "a", Scenes: []nav.Scene{"s1"}, Enter: 500 * ms, Exit: 2000 * ms},
	{ID: "b", Scenes: []nav.Scene{"s1"}, Enter: 300 * ms},
	{ID: "gated", Scenes: []nav.Scene{"s1"}, ContentIndices: []int{0, 1}, Enter: 100 * ms},
	{ID: "only2", Scenes: []nav.Scene{"s1"}, ContentIndices: []int{2}, Enter: 100 * ms},
	{ID: "skip", Scenes: []nav.Scene{"s1"}, ContentIndices: []int{2}, SkipAnimationAt: []int{1}, Enter: 100 * ms},
	{ID: "north", Scenes: []nav.Scene{"s1"}, SubScenes: []nav.SubScene{"north"}, Enter: 200 * ms, DelayForNextSubScene: 800 * ms},
	{ID: "south", Scenes: []nav.Scene{"s1"}, SubScenes: []nav.SubScene{"south"}, Enter: 200 * ms},
	{ID: "c", Scenes: []nav.Scene{"s2"}, Enter: 400 * ms},
	{ID: "d", Scenes: []nav.Scene{"s3"}, Enter: 400 * ms},
}

var _ = Describe("Scheduler", func() {
	var (
		l         *loop.Loop
		store     *nav.Store
		fakes     map[string]*fakeLayer
		sched     *scheduler.Scheduler
		waitStart []time.Duration
		waitEnds  int
	)

	BeforeEach(func() {
		l = loop.New()
		store = nav.NewStore(catalog)
		reg := registry.MustNew(catalog, nil, descriptors)

		fakes = make(map[string]*fakeLayer)
		layers := make(map[string]layer.Layer)
		for _, d := range descriptors {
			f := &fakeLayer{loop: l, id: d.ID, enter: d.Enter, exit: d.Exit}
			fakes[d.ID] = f
			layers[d.ID] = f
		}

		waitStart = nil
		waitEnds = 0
		sched = scheduler.New(l, reg, layers, store.State, scheduler.DefaultConfig(), scheduler.Hooks{
			OnWaitStart: func(w time.Duration) { waitStart = append(waitStart, w) },
			OnWaitEnd:   func() { waitEnds++ },
		})
		store.AddObserver(sched)
		sched.Start()
	})

	It("reveals the initial state at once", func() {
		for _, id := range []string{"a", "b", "gated", "north"} {
			Expect(fakes[id].visible()).To(BeTrue(), id)
		}
		for _, id := range []string{"only2", "skip", "south", "c", "d"} {
			Expect(fakes[id].calls).To(BeEmpty(), id)
		}
		Expect(sched.Snapshot()).To(HaveLen(4))
	})

	Context("while playing", func() {
		BeforeEach(func() {
			sched.SetPlaying(true)
		})

		It("hides the outgoing scene and waits for the longest exit plus the settle buffer", func() {
			store.SetScene("s2")

			for _, id := range []string{"a", "b", "gated", "north"} {
				Expect(fakes[id].calls).To(HaveLen(2), id)
				Expect(fakes[id].calls[1]).To(Equal(call{at: 0, visible: false}), id)
			}
			Expect(sched.Waiting()).To(BeTrue())
			Expect(waitStart).To(Equal([]time.Duration{3000 * ms}))

			l.Advance(2999 * ms)
			Expect(fakes["c"].calls).To(BeEmpty())

			l.Advance(1 * ms)
			Expect(fakes["c"].calls).To(Equal([]call{{at: 3000 * ms, visible: true}}))
			Expect(sched.Waiting()).To(BeFalse())
			Expect(waitEnds).To(Equal(1))
		})

		It("never toggles a layer gated to both content steps", func() {
			store.SetContentIndex(1)

			Expect(fakes["gated"].inTransition).To(BeTrue())
			l.Advance(5 * time.Second)

			Expect(fakes["gated"].calls).To(HaveLen(1))
			Expect(fakes["gated"].visible()).To(BeTrue())
			Expect(fakes["gated"].inTransition).To(BeFalse())
			Expect(fakes["a"].calls).To(HaveLen(1))
		})

		It("shows skip-animation layers snapped", func() {
			store.SetContentIndex(1)
			l.Advance(3 * time.Second)

			calls := fakes["skip"].calls
			Expect(calls).To(HaveLen(1))
			Expect(calls[0].visible).To(BeTrue())
			Expect(calls[0].inTransition).To(BeTrue())
			Expect(fakes["skip"].inTransition).To(BeFalse())
		})

		It("hides a gated layer once its content step is left", func() {
			store.SetContentIndex(2)
			Expect(fakes["gated"].visible()).To(BeFalse())

			l.Advance(3 * time.Second)
			Expect(fakes["only2"].visible()).To(BeTrue())
			Expect(fakes["a"].calls).To(HaveLen(1))
		})

		It("restarts from the live state when a second change arrives mid-wait", func() {
			store.SetScene("s2")
			l.Advance(time.Second)
			store.SetScene("s3")

			l.Advance(2999 * ms)
			Expect(fakes["d"].calls).To(BeEmpty())

			l.Advance(1 * ms)
			Expect(fakes["d"].calls).To(Equal([]call{{at: 4000 * ms, visible: true}}))
			Expect(fakes["c"].calls).To(BeEmpty())
			Expect(waitStart).To(HaveLen(1))
			Expect(waitEnds).To(Equal(1))
		})

		It("never lets a quicker change overtake a pending commit", func() {
			store.SetScene("s2")
			store.SetSubScene("south")

			l.Advance(2999 * ms)
			Expect(fakes["c"].calls).To(BeEmpty())
			l.Advance(1 * ms)
			Expect(fakes["c"].visible()).To(BeTrue())
		})

		It("swaps sub-scene layers after the sub-scene delay", func() {
			store.SetSubScene("south")

			Expect(fakes["north"].visible()).To(BeFalse())
			Expect(fakes["a"].calls).To(HaveLen(1))
			Expect(waitStart).To(Equal([]time.Duration{1300 * ms}))

			l.Advance(1299 * ms)
			Expect(fakes["south"].calls).To(BeEmpty())

			l.Advance(1 * ms)
			Expect(fakes["south"].visible()).To(BeTrue())
			Expect(fakes["a"].calls).To(HaveLen(1))
		})

		It("holds the reveal across a pause and applies it with no wait on resume", func() {
			store.SetScene("s2")
			l.Advance(time.Second)

			sched.SetPlaying(false)
			Expect(sched.Suppressed()).To(BeTrue())

			l.Advance(10 * time.Second)
			Expect(fakes["c"].calls).To(BeEmpty())

			sched.SetPlaying(true)
			Expect(fakes["c"].calls).To(Equal([]call{{at: 11 * time.Second, visible: true}}))
			Expect(sched.Suppressed()).To(BeFalse())
		})

		It("cancels its timer on Stop", func() {
			store.SetScene("s2")
			sched.Stop()

			Expect(l.Pending()).To(BeZero())
			l.Advance(time.Minute)
			Expect(fakes["c"].calls).To(BeEmpty())
		})
	})

	Context("while paused", func() {
		It("hides at once and reveals as soon as playback resumes", func() {
			store.SetScene("s3")
			Expect(fakes["a"].visible()).To(BeFalse())
			Expect(waitStart).To(Equal([]time.Duration{0}))

			l.Advance(5 * time.Second)
			Expect(fakes["d"].calls).To(BeEmpty())

			sched.SetPlaying(true)
			Expect(fakes["d"].calls).To(Equal([]call{{at: 5 * time.Second, visible: true}}))
			Expect(waitEnds).To(Equal(1))
		})

		It("ignores no-op changes", func() {
			store.SetScene("s1")
			Expect(sched.Waiting()).To(BeFalse())
			Expect(waitStart).To(BeEmpty())
		})
	})
})
