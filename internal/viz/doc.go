// Package viz is the terminal player: a Bubble Tea program that ticks the
// engine in real time and shows the narrative position, the overlay caption,
// the active layers with their animation state, a braille minimap of the
// camera and a progress graph.
//
// # Key Bindings
//
//	Space    - Play/Pause
//	→ / L    - Next beat
//	← / H    - Previous beat
//	1..9     - Jump to a main step
//	S        - Cycle sub-scenes
//	P        - Cycle pages
//	T        - Cycle color themes
//	?        - Show help overlay
//	Q        - Quit
package viz
