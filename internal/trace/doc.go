// Package trace records what the engine tells its host: step changes, waits,
// layer visibility and overlays, stamped with loop time, plus periodic
// samples of the scrub-bar progress. Traces feed the metrics, storage and
// export packages.
package trace
