// Package camera holds map viewpoints and the camera layer that animates
// them: a delayed, eased flight to a target view followed by an optional
// slow orbit.
package camera
