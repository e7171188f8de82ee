// Package scheduler decides which layers are visible. It watches the
// navigation store and runs every change as two phases: hide the outgoing
// layers and wait for the longest declared exit plus a settle buffer, then
// rebuild the active set and show it.
//
// Waits are predictions from declared durations, not synchronisation with
// the layers' real animations. Pausing holds the reveal until playback
// resumes, at which point it is applied with no further wait.
package scheduler
