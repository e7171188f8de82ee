// Package experiment runs a story headlessly in virtual time, optionally
// driven by a scripted scenario, and records a trace for storage and
// metrics. Ensembles run many such sessions in parallel.
package experiment
