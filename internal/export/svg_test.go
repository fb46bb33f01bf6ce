package export

import (
	"bytes"
	"strings"
	"testing"

	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/san-kum/plife/internal/sim"
	"github.com/san-kum/plife/internal/viz"
)

func TestFrameToSVGOneCirclePerParticle(t *testing.T) {
	p := sim.DefaultParams()
	p.Particles = 123
	p.Seed = 5
	eng, err := sim.New(p)
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	err = FrameToSVG(&buf, eng.Frame(), FrameOptions{WorldWidth: p.Width, WorldHeight: p.Height})
	if err != nil {
		t.Fatalf("FrameToSVG failed: %v", err)
	}

	out := buf.String()
	if n := strings.Count(out, "<circle"); n != 123 {
		t.Errorf("got %d circles, want 123", n)
	}
	if !strings.Contains(out, `viewBox="-800.0 -500.0 1600.0 1000.0"`) {
		t.Error("viewBox is not centered on the origin")
	}
	if !strings.HasSuffix(out, "</svg>\n") {
		t.Error("document not closed")
	}
}

func TestFrameToSVGColors(t *testing.T) {
	f := sim.Frame{
		Positions: []float32{1, 2},
		Colors:    []float32{1, 0, 0},
		Sizes:     []float32{4},
		Count:     1,
	}
	var buf bytes.Buffer
	if err := FrameToSVG(&buf, f, FrameOptions{WorldWidth: 10, WorldHeight: 10, Scale: 2}); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.Contains(out, `<circle cx="1.00" cy="2.00" r="2.00" fill="#ff0000"/>`) {
		t.Errorf("unexpected circle in %s", out)
	}
	if !strings.Contains(out, `width="20" height="20"`) {
		t.Error("scale not applied to image size")
	}
}

func TestCanvasToSVG(t *testing.T) {
	c := viz.NewCanvas(2, 1)
	c.SetInk(0, 0, 0)
	c.Set(3, 3)

	out := CanvasToSVG(c, 2, []colorful.Color{{R: 0, G: 0, B: 1}})
	if n := strings.Count(out, "<circle"); n != 2 {
		t.Errorf("got %d dots, want 2", n)
	}
	if !strings.Contains(out, `fill="#0000ff"`) {
		t.Error("ink color not applied")
	}
	if CanvasToSVG(nil, 1, nil) != "" {
		t.Error("nil canvas should render empty")
	}
}

func TestSeriesToSVG(t *testing.T) {
	if SeriesToSVG([]float64{1}, 100, 50, "#fff") != "" {
		t.Error("single point should render empty")
	}
	out := SeriesToSVG([]float64{0, 1, 4, 2}, 300, 100, "#0ff")
	if n := strings.Count(out, " L"); n != 3 {
		t.Errorf("got %d segments, want 3", n)
	}
	if !strings.Contains(out, `d="M0.0,`) {
		t.Error("path does not start at x=0")
	}
}
