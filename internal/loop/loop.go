package loop

import (
	"container/heap"
	"context"
	"fmt"
	"time"
)

// FrameObserver is notified once per animation frame, after the frame's due
// timers have fired.
type FrameObserver interface {
	OnFrame(now, dt time.Duration)
}

// FrameFunc adapts a plain function to FrameObserver.
type FrameFunc func(now, dt time.Duration)

func (f FrameFunc) OnFrame(now, dt time.Duration) { f(now, dt) }

type Config struct {
	Frame    time.Duration
	Duration time.Duration
}

// Loop is a cooperative timer loop running on virtual time. It never starts
// goroutines: time only moves when the owner calls Advance, Tick or Run, and
// every callback runs on the caller's goroutine.
type Loop struct {
	now       time.Duration
	seq       uint64
	queue     timerQueue
	observers []FrameObserver
}

func New() *Loop {
	return &Loop{
		queue:     make(timerQueue, 0, 16),
		observers: make([]FrameObserver, 0),
	}
}

func (l *Loop) Now() time.Duration { return l.now }

// Pending reports how many timers are scheduled and not yet fired or stopped.
func (l *Loop) Pending() int { return len(l.queue) }

func (l *Loop) AddFrameObserver(o FrameObserver) { l.observers = append(l.observers, o) }

func (l *Loop) RemoveFrameObserver(o FrameObserver) {
	for i, cur := range l.observers {
		if cur == o {
			l.observers = append(l.observers[:i], l.observers[i+1:]...)
			return
		}
	}
}

// AfterFunc schedules fn to run once d has elapsed on the loop clock. A
// non-positive d is never run synchronously; it fires during the next pass
// over due timers.
func (l *Loop) AfterFunc(d time.Duration, fn func()) *Timer {
	if d < 0 {
		d = 0
	}
	l.seq++
	t := &Timer{loop: l, at: l.now + d, seq: l.seq, fn: fn, index: -1}
	heap.Push(&l.queue, t)
	return t
}

// Advance moves the clock forward by d, firing every timer that falls due on
// the way. While a timer runs, Now reports its due time.
func (l *Loop) Advance(d time.Duration) {
	if d < 0 {
		d = 0
	}
	target := l.now + d
	for len(l.queue) > 0 && l.queue[0].at <= target {
		t := heap.Pop(&l.queue).(*Timer)
		if t.at > l.now {
			l.now = t.at
		}
		t.fired = true
		t.fn()
	}
	l.now = target
}

// Tick advances one frame and then notifies frame observers.
func (l *Loop) Tick(dt time.Duration) {
	l.Advance(dt)
	for _, o := range l.observers {
		o.OnFrame(l.now, dt)
	}
}

// Run ticks at cfg.Frame until cfg.Duration of loop time has passed.
func (l *Loop) Run(ctx context.Context, cfg Config) error {
	if err := validateConfig(cfg); err != nil {
		return err
	}
	end := l.now + cfg.Duration
	for l.now < end {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		dt := cfg.Frame
		if l.now+dt > end {
			dt = end - l.now
		}
		l.Tick(dt)
	}
	return nil
}

// Drain stops every pending timer. Used on teardown so nothing fires after
// the owner is gone.
func (l *Loop) Drain() {
	for _, t := range l.queue {
		t.index = -1
		t.stopped = true
	}
	l.queue = l.queue[:0]
}

func validateConfig(cfg Config) error {
	if cfg.Frame <= 0 {
		return fmt.Errorf("frame must be positive, got %v", cfg.Frame)
	}
	if cfg.Duration < 0 {
		return fmt.Errorf("duration must not be negative, got %v", cfg.Duration)
	}
	return nil
}

// Timer is a handle to a scheduled callback.
type Timer struct {
	loop    *Loop
	at      time.Duration
	seq     uint64
	fn      func()
	index   int
	fired   bool
	stopped bool
}

// Stop cancels the timer. It reports whether the call prevented the timer
// from firing.
func (t *Timer) Stop() bool {
	if t == nil || t.fired || t.stopped {
		return false
	}
	t.stopped = true
	if t.index >= 0 {
		heap.Remove(&t.loop.queue, t.index)
	}
	return true
}

// Due reports the loop time the timer fires at.
func (t *Timer) Due() time.Duration { return t.at }

// Active reports whether the timer is still waiting to fire.
func (t *Timer) Active() bool { return t != nil && !t.fired && !t.stopped }

type timerQueue []*Timer

func (q timerQueue) Len() int { return len(q) }

func (q timerQueue) Less(i, j int) bool {
	if q[i].at == q[j].at {
		return q[i].seq < q[j].seq
	}
	return q[i].at < q[j].at
}

func (q timerQueue) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
	q[i].index = i
	q[j].index = j
}

func (q *timerQueue) Push(x any) {
	t := x.(*Timer)
	t.index = len(*q)
	*q = append(*q, t)
}

func (q *timerQueue) Pop() any {
	old := *q
	n := len(old)
	t := old[n-1]
	old[n-1] = nil
	t.index = -1
	*q = old[:n-1]
	return t
}
