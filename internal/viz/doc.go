// Package viz renders runs in the terminal.
//
//   - [PotentialPlot], [WeightPlot], [SpectrumPlot]: asciigraph line charts
//   - [Raster]: braille spike raster built on [Canvas]
//   - [Summary]: lipgloss key/value report of a result
//   - [LiveModel]: Bubble Tea program that steps a network and redraws
//
// # Key Bindings
//
//	Space - Pause/Resume
//	+/-   - More/fewer steps per frame
//	T     - Cycle color themes
//	Q     - Quit
package viz
