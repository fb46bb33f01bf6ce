package viz

import (
	"github.com/charmbracelet/lipgloss"
	colorful "github.com/lucasb-eyer/go-colorful"
)

// Particles is the read side of a population drawn onto a canvas.
// *sim.Engine satisfies it.
type Particles interface {
	Len() int
	Position(i int) (x, y float64)
	ColorIndex(i int) int
}

// Projector maps world coordinates to canvas sub-pixels. *camera.Camera
// satisfies it once its screen size is set to the canvas SubSize.
type Projector interface {
	WorldToScreen(x, y float64) (sx, sy float64)
}

// DrawParticles plots every particle through proj and returns how many
// landed on the canvas.
func DrawParticles(c *Canvas, ps Particles, proj Projector) int {
	w, h := c.SubSize()
	drawn := 0
	for i, n := 0, ps.Len(); i < n; i++ {
		sx, sy := proj.WorldToScreen(ps.Position(i))
		x, y := int(sx), int(sy)
		if sx < 0 || sy < 0 || x >= w || y >= h {
			continue
		}
		c.SetInk(x, y, ps.ColorIndex(i))
		drawn++
	}
	return drawn
}

// TermPalette converts a particle palette to terminal colors.
func TermPalette(colors []colorful.Color) []lipgloss.Color {
	out := make([]lipgloss.Color, len(colors))
	for i, c := range colors {
		out[i] = lipgloss.Color(c.Hex())
	}
	return out
}
