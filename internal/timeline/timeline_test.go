package timeline

import (
	"testing"
	"time"

	"github.com/san-kum/mapstory/internal/loop"
)

func beats(n int, d time.Duration) []ContentStep {
	out := make([]ContentStep, n)
	for i := range out {
		out[i] = ContentStep{Duration: d}
	}
	return out
}

func twoScenes() []Step {
	return []Step{
		{Name: "one", Scene: "s1", Contents: beats(3, 5*time.Second)},
		{Name: "two", Scene: "s2", Contents: beats(2, 5*time.Second)},
	}
}

type changes struct {
	calls [][2]int
}

func (c *changes) record(m, n int) { c.calls = append(c.calls, [2]int{m, n}) }

func newTimeline(l *loop.Loop, steps []Step, ch *changes) *Timeline {
	return New(l, steps, Options{OnChange: ch.record})
}

func TestAutoAdvanceCrossesMainStep(t *testing.T) {
	l := loop.New()
	ch := &changes{}
	tl := newTimeline(l, twoScenes(), ch)

	tl.Sync(0, 2)
	if len(ch.calls) != 0 {
		t.Fatalf("Sync emitted %v", ch.calls)
	}

	tl.Play()
	l.Advance(4999 * time.Millisecond)
	if len(ch.calls) != 0 {
		t.Fatalf("advanced early: %v", ch.calls)
	}

	l.Advance(time.Millisecond)
	if len(ch.calls) != 1 || ch.calls[0] != [2]int{1, 0} {
		t.Fatalf("expected exactly one change to (1,0), got %v", ch.calls)
	}
	if m, c := tl.Position(); m != 1 || c != 0 {
		t.Errorf("position = (%d,%d), want (1,0)", m, c)
	}
}

func TestAutoAdvanceStopsAtEnd(t *testing.T) {
	l := loop.New()
	ch := &changes{}
	finished := 0
	tl := New(l, twoScenes(), Options{OnChange: ch.record, OnFinished: func() { finished++ }})

	tl.Sync(1, 1)
	tl.Play()
	l.Advance(6 * time.Second)

	if len(ch.calls) != 0 {
		t.Errorf("expected no change past the end, got %v", ch.calls)
	}
	if finished != 1 {
		t.Errorf("expected OnFinished once, got %d", finished)
	}
	if m, c := tl.Position(); m != 1 || c != 1 {
		t.Errorf("position moved to (%d,%d)", m, c)
	}
}

func TestPauseStopsAutoAdvance(t *testing.T) {
	l := loop.New()
	ch := &changes{}
	tl := newTimeline(l, twoScenes(), ch)

	tl.Play()
	l.Advance(3 * time.Second)
	tl.Pause()
	l.Advance(10 * time.Second)
	if len(ch.calls) != 0 {
		t.Fatalf("paused timeline advanced: %v", ch.calls)
	}

	tl.Toggle()
	if !tl.Playing() {
		t.Fatal("Toggle did not resume")
	}
	l.Advance(5 * time.Second)
	if len(ch.calls) != 1 || ch.calls[0] != [2]int{0, 1} {
		t.Errorf("expected (0,1) after resume, got %v", ch.calls)
	}
}

func TestNextDebounce(t *testing.T) {
	l := loop.New()
	ch := &changes{}
	tl := newTimeline(l, twoScenes(), ch)

	if !tl.Next() {
		t.Fatal("first Next refused")
	}
	l.Advance(50 * time.Millisecond)
	if tl.Next() {
		t.Error("second Next within 100ms accepted")
	}
	if m, c := tl.Position(); m != 0 || c != 1 {
		t.Errorf("expected one step to (0,1), got (%d,%d)", m, c)
	}

	l.Advance(50 * time.Millisecond)
	if !tl.Next() {
		t.Error("Next after the debounce window refused")
	}
	if len(ch.calls) != 2 {
		t.Errorf("expected 2 changes, got %v", ch.calls)
	}
}

func TestDebounceHoldsAfterRelease(t *testing.T) {
	l := loop.New()
	tl := New(l, twoScenes(), Options{})

	tl.Next()
	tl.Sync(0, 1) // confirmation releases the lock
	if tl.Locked() {
		t.Fatal("confirmation did not release the lock")
	}
	if tl.Next() {
		t.Error("release must not shorten the debounce window")
	}
}

func TestLockAutoReleases(t *testing.T) {
	l := loop.New()
	tl := New(l, twoScenes(), Options{})

	tl.Next()
	if !tl.Locked() {
		t.Fatal("Next did not lock")
	}
	l.Advance(499 * time.Millisecond)
	if !tl.Locked() {
		t.Fatal("lock released early")
	}
	l.Advance(time.Millisecond)
	if tl.Locked() {
		t.Error("lock not released after 500ms")
	}
}

func TestPreviousAcrossMainStep(t *testing.T) {
	l := loop.New()
	ch := &changes{}
	tl := newTimeline(l, twoScenes(), ch)

	tl.Sync(1, 0)
	if !tl.Previous() {
		t.Fatal("Previous refused")
	}
	if m, c := tl.Position(); m != 0 || c != 2 {
		t.Errorf("position = (%d,%d), want (0,2)", m, c)
	}

	l.Advance(time.Second)
	tl.Sync(0, 0)
	if tl.Previous() {
		t.Error("Previous at the first beat reported true")
	}
}

func TestSyncWhileLockedIsDeferred(t *testing.T) {
	l := loop.New()
	ch := &changes{}
	tl := newTimeline(l, twoScenes(), ch)

	tl.Next()
	tl.Sync(1, 1)
	if m, c := tl.Position(); m != 0 || c != 1 {
		t.Fatalf("sync applied while locked: (%d,%d)", m, c)
	}

	l.Advance(500 * time.Millisecond)
	if m, c := tl.Position(); m != 1 || c != 1 {
		t.Errorf("pending sync not adopted on unlock: (%d,%d)", m, c)
	}
	if len(ch.calls) != 1 {
		t.Errorf("sync must not emit, got %v", ch.calls)
	}
}

func TestSyncInsideDebounceWindowIsDeferred(t *testing.T) {
	l := loop.New()
	ch := &changes{}
	tl := newTimeline(l, twoScenes(), ch)

	tl.Next()
	tl.Sync(0, 1) // confirmation
	tl.Sync(1, 0)
	if m, c := tl.Position(); m != 0 || c != 1 {
		t.Fatalf("sync inside the debounce window applied at once: (%d,%d)", m, c)
	}

	l.Advance(99 * time.Millisecond)
	if m, _ := tl.Position(); m != 0 {
		t.Fatal("sync adopted before the window closed")
	}
	l.Advance(time.Millisecond)
	if m, c := tl.Position(); m != 1 || c != 0 {
		t.Errorf("deferred sync not adopted: (%d,%d)", m, c)
	}
	if len(ch.calls) != 1 {
		t.Errorf("sync must not emit, got %v", ch.calls)
	}
}

func TestConfirmationDropsPendingSync(t *testing.T) {
	l := loop.New()
	tl := New(l, twoScenes(), Options{})

	tl.Sync(1, 0)
	l.Advance(time.Second)
	tl.Previous() // to (0,2)
	tl.Sync(0, 0) // intermediate store update
	tl.Sync(0, 2) // confirmation
	l.Advance(time.Second)

	if m, c := tl.Position(); m != 0 || c != 2 {
		t.Errorf("intermediate sync leaked: (%d,%d)", m, c)
	}
}

func TestGoTo(t *testing.T) {
	l := loop.New()
	ch := &changes{}
	tl := newTimeline(l, twoScenes(), ch)

	if tl.GoTo(5, 0) {
		t.Error("GoTo accepted an invalid main index")
	}
	if !tl.GoTo(1, 1) {
		t.Fatal("GoTo refused a valid position")
	}
	if len(ch.calls) != 1 || ch.calls[0] != [2]int{1, 1} {
		t.Errorf("expected change (1,1), got %v", ch.calls)
	}
}

func TestProgress(t *testing.T) {
	l := loop.New()
	tl := New(l, twoScenes(), Options{})

	if p := tl.Progress(); p != 0 {
		t.Errorf("initial progress = %v, want 0", p)
	}

	tl.Play()
	// (0 + (0+1)/3) / 2
	if p := tl.Progress(); abs(p-1.0/6) > 1e-9 {
		t.Errorf("playing progress = %v, want 1/6", p)
	}

	tl.Sync(1, 1)
	if p := tl.Progress(); p != 1 {
		t.Errorf("progress at the last beat = %v, want 1", p)
	}

	tl.Pause()
	if p := tl.Progress(); p != 0.75 {
		t.Errorf("paused progress = %v, want 0.75", p)
	}
}

func TestProgressMonotonicWhilePlaying(t *testing.T) {
	l := loop.New()
	tl := New(l, twoScenes(), Options{})
	tl.Play()

	last := tl.Progress()
	for i := 0; i < 30; i++ {
		l.Advance(time.Second)
		p := tl.Progress()
		if p < last {
			t.Fatalf("progress went from %v to %v at %v", last, p, l.Now())
		}
		last = p
	}
}

func TestEmptyStepCountsAsOneBeat(t *testing.T) {
	l := loop.New()
	ch := &changes{}
	steps := []Step{{Scene: "empty"}, {Scene: "s2", Contents: beats(1, time.Second)}}
	tl := newTimeline(l, steps, ch)

	tl.Play()
	l.Advance(0)
	if len(ch.calls) != 1 || ch.calls[0] != [2]int{1, 0} {
		t.Errorf("zero-duration step did not advance: %v", ch.calls)
	}
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
