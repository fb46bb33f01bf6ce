package viz

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	colorful "github.com/lucasb-eyer/go-colorful"
)

var (
	repelColor   = colorful.Color{R: 0.85, G: 0.2, B: 0.25}
	neutralColor = colorful.Color{R: 0.15, G: 0.15, B: 0.18}
	attractColor = colorful.Color{R: 0.2, G: 0.8, B: 0.4}
)

// RuleColor shades a coefficient in [-1, 1] from red through grey to green.
func RuleColor(v float64) colorful.Color {
	v = min(max(v, -1), 1)
	if v < 0 {
		return neutralColor.BlendLab(repelColor, -v).Clamped()
	}
	return neutralColor.BlendLab(attractColor, v).Clamped()
}

// MatrixView renders the interaction matrix as a heat map. Rows are the
// acting color, columns the color it reacts to; headers are palette swatches.
func MatrixView(rows [][]float64, palette []colorful.Color) string {
	swatch := func(c int) string {
		if c >= len(palette) {
			return "  ●  "
		}
		return lipgloss.NewStyle().Foreground(lipgloss.Color(palette[c].Hex())).Render("  ●  ")
	}

	var b strings.Builder
	b.WriteString("     ")
	for c := range rows {
		b.WriteString(swatch(c))
	}
	b.WriteByte('\n')

	for a, row := range rows {
		b.WriteString(swatch(a))
		for _, v := range row {
			cell := lipgloss.NewStyle().
				Background(lipgloss.Color(RuleColor(v).Hex())).
				Foreground(lipgloss.Color("#ffffff")).
				Render(fmt.Sprintf("%+.2f", v))
			b.WriteString(cell)
		}
		b.WriteByte('\n')
	}
	return b.String()
}
