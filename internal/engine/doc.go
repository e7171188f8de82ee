// Package engine is the playback engine a host embeds. It owns the loop,
// the navigation store, the timeline and the layer scheduler, and closes the
// loop between them: timeline steps become store mutations, and store
// changes drive the scheduler and flow back into the timeline.
//
// Hosts call the operations on Engine and hear back through Hooks. Time only
// moves when the host calls Tick or Advance.
package engine
