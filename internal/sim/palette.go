package sim

import colorful "github.com/lucasb-eyer/go-colorful"

const (
	paletteSaturation = 0.75
	paletteLightness  = 0.6
)

// Palette returns n colors with evenly spaced hues.
func Palette(n int) []colorful.Color {
	colors := make([]colorful.Color, n)
	for c := range colors {
		hue := 360 * float64(c) / float64(n)
		colors[c] = colorful.Hsl(hue, paletteSaturation, paletteLightness).Clamped()
	}
	return colors
}
