// Package viz draws particle populations and rule matrices for the terminal.
//
//   - [Canvas]: braille raster, 2x4 sub-pixels per cell, with a per-cell color tag
//   - [DrawParticles]: projects a population through a camera onto a canvas
//   - [MatrixView]: lipgloss heat map of the interaction matrix
package viz
