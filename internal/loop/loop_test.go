package loop

import (
	"context"
	"testing"
	"time"
)

func TestAdvanceFiresInOrder(t *testing.T) {
	l := New()
	var got []string
	var at []time.Duration

	l.AfterFunc(300*time.Millisecond, func() { got = append(got, "c"); at = append(at, l.Now()) })
	l.AfterFunc(100*time.Millisecond, func() { got = append(got, "a"); at = append(at, l.Now()) })
	l.AfterFunc(100*time.Millisecond, func() { got = append(got, "b"); at = append(at, l.Now()) })

	l.Advance(250 * time.Millisecond)
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Fatalf("expected [a b], got %v", got)
	}
	if at[0] != 100*time.Millisecond {
		t.Errorf("timer observed now=%v, want 100ms", at[0])
	}
	if l.Now() != 250*time.Millisecond {
		t.Errorf("expected clock at 250ms, got %v", l.Now())
	}

	l.Advance(50 * time.Millisecond)
	if len(got) != 3 || got[2] != "c" {
		t.Fatalf("expected c to fire at 300ms, got %v", got)
	}
}

func TestTimerStop(t *testing.T) {
	l := New()
	fired := false
	tm := l.AfterFunc(time.Second, func() { fired = true })

	if !tm.Active() {
		t.Error("new timer should be active")
	}
	if !tm.Stop() {
		t.Error("first Stop should report true")
	}
	if tm.Stop() {
		t.Error("second Stop should report false")
	}

	l.Advance(2 * time.Second)
	if fired {
		t.Error("stopped timer fired")
	}
	if l.Pending() != 0 {
		t.Errorf("expected no pending timers, got %d", l.Pending())
	}
}

func TestZeroDelayIsNotSynchronous(t *testing.T) {
	l := New()
	fired := false
	l.AfterFunc(0, func() { fired = true })
	if fired {
		t.Fatal("zero delay timer ran synchronously")
	}
	l.Advance(0)
	if !fired {
		t.Error("zero delay timer did not fire on Advance(0)")
	}
}

func TestRescheduleFromCallback(t *testing.T) {
	l := New()
	count := 0
	var tick func()
	tick = func() {
		count++
		l.AfterFunc(100*time.Millisecond, tick)
	}
	l.AfterFunc(100*time.Millisecond, tick)

	l.Advance(time.Second)
	if count != 10 {
		t.Errorf("expected 10 firings, got %d", count)
	}
}

type frameCounter struct {
	frames int
	last   time.Duration
}

func (f *frameCounter) OnFrame(now, dt time.Duration) {
	f.frames++
	f.last = now
}

func TestRun(t *testing.T) {
	l := New()
	fc := &frameCounter{}
	l.AddFrameObserver(fc)

	err := l.Run(context.Background(), Config{Frame: 16 * time.Millisecond, Duration: 160 * time.Millisecond})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if fc.frames != 10 {
		t.Errorf("expected 10 frames, got %d", fc.frames)
	}
	if fc.last != 160*time.Millisecond {
		t.Errorf("expected last frame at 160ms, got %v", fc.last)
	}

	l.RemoveFrameObserver(fc)
	l.Tick(time.Millisecond)
	if fc.frames != 10 {
		t.Error("removed observer still notified")
	}
}

func TestRunInvalidConfig(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{"zero frame", Config{Frame: 0, Duration: time.Second}},
		{"negative frame", Config{Frame: -time.Millisecond, Duration: time.Second}},
		{"negative duration", Config{Frame: time.Millisecond, Duration: -time.Second}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := New().Run(context.Background(), tt.cfg); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestRunCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := New().Run(ctx, Config{Frame: time.Millisecond, Duration: time.Second})
	if err != context.Canceled {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestDrain(t *testing.T) {
	l := New()
	fired := 0
	a := l.AfterFunc(time.Millisecond, func() { fired++ })
	l.AfterFunc(2*time.Millisecond, func() { fired++ })

	l.Drain()
	l.Advance(time.Second)

	if fired != 0 {
		t.Errorf("drained timers fired %d times", fired)
	}
	if a.Active() {
		t.Error("drained timer still active")
	}
}
