package timeline

import (
	"time"

	"github.com/san-kum/mapstory/internal/loop"
	"github.com/san-kum/mapstory/internal/nav"
)

// ContentStep is one timed beat inside a main step.
type ContentStep struct {
	Duration time.Duration
	Primary  bool // shows the description overlay
	Caption  string
}

// Step is a main step: one scene and its ordered beats.
type Step struct {
	Name     string
	Scene    nav.Scene
	Contents []ContentStep
}

// Len is the number of beats; a step without beats counts as one.
func (s Step) Len() int {
	if len(s.Contents) == 0 {
		return 1
	}
	return len(s.Contents)
}

func (s Step) Content(i int) ContentStep {
	if i < 0 || i >= len(s.Contents) {
		return ContentStep{}
	}
	return s.Contents[i]
}

type Options struct {
	Debounce    time.Duration
	LockRelease time.Duration
	OnChange    func(main, content int)
	OnFinished  func()
}

type position struct{ main, content int }

// Timeline walks the two-level step hierarchy, either on its own timer while
// playing or one beat at a time on request.
type Timeline struct {
	loop       *loop.Loop
	steps      []Step
	main       int
	content    int
	playing    bool
	startedAt  time.Duration
	guard      *Guard
	advance    *loop.Timer
	pending    *position
	adopt      *loop.Timer
	onChange   func(main, content int)
	onFinished func()
}

func New(l *loop.Loop, steps []Step, opts Options) *Timeline {
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if opts.LockRelease <= 0 {
		opts.LockRelease = DefaultLockRelease
	}
	t := &Timeline{
		loop:       l,
		steps:      steps,
		guard:      NewGuard(l, opts.Debounce, opts.LockRelease),
		onChange:   opts.OnChange,
		onFinished: opts.OnFinished,
	}
	t.guard.onUnlock = t.adoptPending
	return t
}

func (t *Timeline) Steps() []Step                 { return t.steps }
func (t *Timeline) Position() (main, content int) { return t.main, t.content }
func (t *Timeline) Playing() bool                 { return t.playing }
func (t *Timeline) Locked() bool                  { return t.guard.Locked() }

// Current returns the beat at the current position.
func (t *Timeline) Current() ContentStep {
	if len(t.steps) == 0 {
		return ContentStep{}
	}
	return t.steps[t.main].Content(t.content)
}

// Elapsed is how long the current beat has been running.
func (t *Timeline) Elapsed() time.Duration { return t.loop.Now() - t.startedAt }

func (t *Timeline) Play() {
	if t.playing {
		return
	}
	t.playing = true
	t.startedAt = t.loop.Now()
	t.schedule()
}

func (t *Timeline) Pause() {
	t.playing = false
	t.advance.Stop()
	t.advance = nil
}

func (t *Timeline) Toggle() {
	if t.playing {
		t.Pause()
		return
	}
	t.Play()
}

// Next steps forward one beat. It reports false when the debounce refused the
// call or the timeline is already at its last beat.
func (t *Timeline) Next() bool {
	if !t.guard.TryAdvance() {
		return false
	}
	m, c, ok := t.successor()
	if !ok {
		t.guard.Release()
		return false
	}
	t.commit(m, c, true)
	return true
}

func (t *Timeline) Previous() bool {
	if !t.guard.TryAdvance() {
		return false
	}
	m, c, ok := t.predecessor()
	if !ok {
		t.guard.Release()
		return false
	}
	t.commit(m, c, true)
	return true
}

// GoTo jumps to an explicit position on behalf of the host, under the same
// debounce as Next and Previous.
func (t *Timeline) GoTo(main, content int) bool {
	if !t.valid(main, content) {
		return false
	}
	if !t.guard.TryAdvance() {
		return false
	}
	if main == t.main && content == t.content {
		t.guard.Release()
		return false
	}
	t.commit(main, content, true)
	return true
}

// Sync adopts a position that changed outside the timeline without emitting
// OnChange. A position equal to the current one is taken as the confirmation
// of a manual step and releases the lock. Other positions wait for the lock
// to clear and for the debounce window of the last manual step to close.
func (t *Timeline) Sync(main, content int) {
	if !t.valid(main, content) {
		return
	}
	if main == t.main && content == t.content {
		t.dropPending()
		t.guard.Release()
		return
	}
	if t.guard.Locked() {
		t.pending = &position{main, content}
		return
	}
	if wait := t.guard.Settled() - t.loop.Now(); wait > 0 {
		t.pending = &position{main, content}
		t.adopt.Stop()
		t.adopt = t.loop.AfterFunc(wait, t.adoptPending)
		return
	}
	t.dropPending()
	t.commit(main, content, false)
}

// Progress is the scrub-bar fraction. While playing and unlocked it counts
// the current beat as already done so the bar leads into the next tick.
func (t *Timeline) Progress() float64 {
	total := len(t.steps)
	if total == 0 {
		return 0
	}
	look := 0
	if t.playing && !t.guard.Locked() {
		look = 1
	}
	n := t.steps[t.main].Len()
	p := (float64(t.main) + float64(t.content+look)/float64(n)) / float64(total)
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}

// Stop cancels every timer the timeline owns.
func (t *Timeline) Stop() {
	t.advance.Stop()
	t.advance = nil
	t.guard.Stop()
	t.dropPending()
}

func (t *Timeline) commit(main, content int, emit bool) {
	t.main, t.content = main, content
	t.startedAt = t.loop.Now()
	if t.playing {
		t.schedule()
	}
	if emit && t.onChange != nil {
		t.onChange(main, content)
	}
}

func (t *Timeline) schedule() {
	t.advance.Stop()
	t.advance = nil
	if len(t.steps) == 0 {
		return
	}
	d := t.Current().Duration
	t.advance = t.loop.AfterFunc(d, t.autoAdvance)
}

func (t *Timeline) autoAdvance() {
	t.advance = nil
	if !t.playing {
		return
	}
	m, c, ok := t.successor()
	if !ok {
		if t.onFinished != nil {
			t.onFinished()
		}
		return
	}
	t.commit(m, c, true)
}

func (t *Timeline) dropPending() {
	t.pending = nil
	t.adopt.Stop()
	t.adopt = nil
}

func (t *Timeline) adoptPending() {
	t.adopt.Stop()
	t.adopt = nil
	if t.pending == nil {
		return
	}
	p := *t.pending
	t.pending = nil
	if p.main != t.main || p.content != t.content {
		t.commit(p.main, p.content, false)
	}
}

func (t *Timeline) successor() (int, int, bool) {
	if len(t.steps) == 0 {
		return 0, 0, false
	}
	if t.content+1 < t.steps[t.main].Len() {
		return t.main, t.content + 1, true
	}
	if t.main+1 < len(t.steps) {
		return t.main + 1, 0, true
	}
	return 0, 0, false
}

func (t *Timeline) predecessor() (int, int, bool) {
	if len(t.steps) == 0 {
		return 0, 0, false
	}
	if t.content > 0 {
		return t.main, t.content - 1, true
	}
	if t.main > 0 {
		return t.main - 1, t.steps[t.main-1].Len() - 1, true
	}
	return 0, 0, false
}

func (t *Timeline) valid(main, content int) bool {
	return main >= 0 && main < len(t.steps) && content >= 0 && content < t.steps[main].Len()
}
