// Package loop provides the single cooperative event loop that every
// playback component schedules on.
//
// Time is virtual: it advances only when the owner calls [Loop.Advance],
// [Loop.Tick] or [Loop.Run]. The interactive player feeds it wall-clock
// frame deltas; headless runs and tests feed it fixed steps, which makes
// every transition reproducible.
//
// # Thread Safety
//
// A Loop is NOT thread-safe. Exactly one goroutine owns it; other goroutines
// hand work to that owner (see the server package).
package loop
