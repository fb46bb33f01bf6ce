package export

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/san-kum/plife/internal/sim"
	"github.com/san-kum/plife/internal/viz"
)

type FrameOptions struct {
	// World size; the origin is drawn at the center of the image.
	WorldWidth, WorldHeight float64
	// Scale is pixels per world unit.
	Scale      float64
	Background string
}

// FrameToSVG writes one circle per particle in f.
func FrameToSVG(w io.Writer, f sim.Frame, opts FrameOptions) error {
	if opts.Scale <= 0 {
		opts.Scale = 1
	}
	if opts.Background == "" {
		opts.Background = "#05050a"
	}

	bw := bufio.NewWriter(w)
	width, height := opts.WorldWidth*opts.Scale, opts.WorldHeight*opts.Scale
	fmt.Fprintf(bw, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="%.1f %.1f %.1f %.1f">
<rect x="%.1f" y="%.1f" width="100%%" height="100%%" fill="%s"/>
<g>
`, width, height, -opts.WorldWidth/2, -opts.WorldHeight/2, opts.WorldWidth, opts.WorldHeight,
		-opts.WorldWidth/2, -opts.WorldHeight/2, opts.Background)

	for i := 0; i < f.Count; i++ {
		c := colorful.Color{
			R: float64(f.Colors[i*3]),
			G: float64(f.Colors[i*3+1]),
			B: float64(f.Colors[i*3+2]),
		}.Clamped()
		fmt.Fprintf(bw, `<circle cx="%.2f" cy="%.2f" r="%.2f" fill="%s"/>
`, f.Positions[i*2], f.Positions[i*2+1], f.Sizes[i]/2, c.Hex())
	}

	bw.WriteString("</g>\n</svg>\n")
	return bw.Flush()
}

// CanvasToSVG converts a Braille canvas to SVG format, coloring dots by the
// cell's ink when palette covers it.
func CanvasToSVG(canvas *viz.Canvas, scale float64, palette []colorful.Color) string {
	if canvas == nil {
		return ""
	}

	width := float64(canvas.Width) * scale * 2
	height := float64(canvas.Height) * scale * 4

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
<g fill="#00ff00">
`, width, height, width, height))

	pixelMap := [4][2]int{
		{0x01, 0x08},
		{0x02, 0x10},
		{0x04, 0x20},
		{0x40, 0x80},
	}

	dotRadius := scale * 0.4

	for row := 0; row < canvas.Height; row++ {
		for col := 0; col < canvas.Width; col++ {
			r := canvas.Grid[row][col]
			if r <= 0x2800 {
				continue
			}
			pattern := int(r - 0x2800)
			fill := ""
			if ink := canvas.Ink[row][col]; ink >= 0 && ink < len(palette) {
				fill = fmt.Sprintf(` fill="%s"`, palette[ink].Hex())
			}

			baseX := float64(col) * scale * 2
			baseY := float64(row) * scale * 4

			for dy := 0; dy < 4; dy++ {
				for dx := 0; dx < 2; dx++ {
					if pattern&pixelMap[dy][dx] != 0 {
						cx := baseX + float64(dx)*scale + scale/2
						cy := baseY + float64(dy)*scale + scale/2
						sb.WriteString(fmt.Sprintf(`<circle cx="%.1f" cy="%.1f" r="%.1f"%s/>
`, cx, cy, dotRadius, fill))
					}
				}
			}
		}
	}

	sb.WriteString("</g>\n</svg>")
	return sb.String()
}

// SeriesToSVG plots values against their index as a polyline.
func SeriesToSVG(values []float64, width, height int, strokeColor string) string {
	if len(values) < 2 {
		return ""
	}

	lo, hi := values[0], values[0]
	for _, v := range values {
		lo = min(lo, v)
		hi = max(hi, v)
	}
	span := hi - lo
	if span == 0 {
		span = 1
	}
	lo -= span * 0.1
	span *= 1.2

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
<path fill="none" stroke="%s" stroke-width="1.5" d="M`,
		width, height, width, height, strokeColor))

	last := float64(len(values) - 1)
	for i, v := range values {
		x := float64(i) / last * float64(width)
		y := float64(height) - (v-lo)/span*float64(height)
		if i == 0 {
			sb.WriteString(fmt.Sprintf("%.1f,%.1f", x, y))
		} else {
			sb.WriteString(fmt.Sprintf(" L%.1f,%.1f", x, y))
		}
	}

	sb.WriteString(`"/>
</svg>`)
	return sb.String()
}
