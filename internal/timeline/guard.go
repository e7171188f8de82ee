package timeline

import (
	"time"

	"github.com/san-kum/mapstory/internal/loop"
)

const (
	DefaultDebounce    = 100 * time.Millisecond
	DefaultLockRelease = 500 * time.Millisecond
)

// Guard is the re-entrancy lock around manual steps. An accepted step locks
// the guard; the lock is cleared by Release (the matching navigation update
// arrived) or automatically after the release window. Independently of the
// lock, a second step inside the debounce window is refused.
type Guard struct {
	loop     *loop.Loop
	window   time.Duration
	release  time.Duration
	lastAt   time.Duration
	used     bool
	locked   bool
	timer    *loop.Timer
	onUnlock func()
}

func NewGuard(l *loop.Loop, window, release time.Duration) *Guard {
	return &Guard{loop: l, window: window, release: release}
}

// TryAdvance reports whether a manual step may proceed, and locks if so.
func (g *Guard) TryAdvance() bool {
	now := g.loop.Now()
	if g.used && now-g.lastAt < g.window {
		return false
	}
	g.used = true
	g.lastAt = now
	g.locked = true
	g.timer.Stop()
	g.timer = g.loop.AfterFunc(g.release, g.unlock)
	return true
}

func (g *Guard) Locked() bool { return g.locked }

// Release clears the lock early; the debounce window still applies.
func (g *Guard) Release() {
	if !g.locked {
		return
	}
	g.timer.Stop()
	g.unlock()
}

// Settled reports when the debounce window of the last accepted step closes.
func (g *Guard) Settled() time.Duration {
	if !g.used {
		return 0
	}
	return g.lastAt + g.window
}

func (g *Guard) Stop() {
	g.timer.Stop()
	g.locked = false
}

func (g *Guard) unlock() {
	g.locked = false
	g.timer = nil
	if g.onUnlock != nil {
		g.onUnlock()
	}
}
