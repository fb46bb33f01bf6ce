// Package camera maps between world and screen coordinates for a 2D view that
// can be panned and zoomed about an arbitrary screen point.
//
// Screen coordinates are pixels with the origin at the top-left corner and y
// growing downward. The camera's focus is the world point drawn at the screen
// center:
//
//	screen = (world - focus) * zoom + screenSize/2
package camera

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/san-kum/plife/internal/dynamo"
)

const (
	DefaultMinZoom = 0.1
	DefaultMaxZoom = 10.0
)

// Bounds is an axis-aligned rectangle in world units.
type Bounds struct {
	MinX, MinY float64
	MaxX, MaxY float64
}

func (b Bounds) Width() float64  { return b.MaxX - b.MinX }
func (b Bounds) Height() float64 { return b.MaxY - b.MinY }

// State is a value snapshot of the camera.
type State struct {
	FocusX, FocusY float64
	Zoom           float64
	Width, Height  float64
}

func (s State) String() string {
	return fmt.Sprintf("focus=(%.1f, %.1f) zoom=%.2fx", s.FocusX, s.FocusY, s.Zoom)
}

type Camera struct {
	focusX, focusY   float64
	zoom             float64
	minZoom, maxZoom float64
	width, height    float64
}

func New(screenW, screenH float64) *Camera {
	return &Camera{
		zoom:    1,
		minZoom: DefaultMinZoom,
		maxZoom: DefaultMaxZoom,
		width:   screenW,
		height:  screenH,
	}
}

func (c *Camera) WorldToScreen(x, y float64) (sx, sy float64) {
	sx = (x-c.focusX)*c.zoom + c.width/2
	sy = (y-c.focusY)*c.zoom + c.height/2
	return sx, sy
}

func (c *Camera) ScreenToWorld(sx, sy float64) (x, y float64) {
	x = (sx-c.width/2)/c.zoom + c.focusX
	y = (sy-c.height/2)/c.zoom + c.focusY
	return x, y
}

// Pan moves the view by a screen-space delta, so content follows the pointer.
func (c *Camera) Pan(dx, dy float64) {
	c.focusX -= dx / c.zoom
	c.focusY -= dy / c.zoom
}

// ZoomAt multiplies the zoom by factor while keeping the world point under
// (sx, sy) fixed on screen. Non-positive or non-finite factors are ignored.
func (c *Camera) ZoomAt(sx, sy, factor float64) {
	if !(factor > 0) || math.IsInf(factor, 0) {
		return
	}
	wx, wy := c.ScreenToWorld(sx, sy)
	c.zoom = c.clamp(c.zoom * factor)
	c.focusX = wx - (sx-c.width/2)/c.zoom
	c.focusY = wy - (sy-c.height/2)/c.zoom
}

// SetZoom sets the zoom about the screen center, clamped to the constraints.
func (c *Camera) SetZoom(z float64) {
	if math.IsNaN(z) {
		return
	}
	c.zoom = c.clamp(z)
}

func (c *Camera) SetZoomConstraints(minZoom, maxZoom float64) error {
	if !(minZoom > 0) || !(maxZoom >= minZoom) || math.IsInf(maxZoom, 0) {
		return fmt.Errorf("%w: zoom constraints must satisfy 0 < min <= max, got [%g, %g]",
			dynamo.ErrInvalidConfig, minZoom, maxZoom)
	}
	c.minZoom, c.maxZoom = minZoom, maxZoom
	c.zoom = c.clamp(c.zoom)
	return nil
}

func (c *Camera) ZoomConstraints() (minZoom, maxZoom float64) {
	return c.minZoom, c.maxZoom
}

// Reset returns to the origin at zoom 1 (clamped). Constraints and screen
// size are kept.
func (c *Camera) Reset() {
	c.focusX, c.focusY = 0, 0
	c.zoom = c.clamp(1)
}

func (c *Camera) ViewportBounds() Bounds {
	minX, minY := c.ScreenToWorld(0, 0)
	maxX, maxY := c.ScreenToWorld(c.width, c.height)
	return Bounds{MinX: minX, MinY: minY, MaxX: maxX, MaxY: maxY}
}

// IsPointVisible reports whether (x, y) lies inside the viewport grown by
// margin world units on every side.
func (c *Camera) IsPointVisible(x, y, margin float64) bool {
	b := c.ViewportBounds()
	return x >= b.MinX-margin && x <= b.MaxX+margin &&
		y >= b.MinY-margin && y <= b.MaxY+margin
}

func (c *Camera) SetScreenSize(w, h float64) {
	c.width, c.height = w, h
}

func (c *Camera) ScreenSize() (w, h float64) { return c.width, c.height }

func (c *Camera) Focus() (x, y float64) { return c.focusX, c.focusY }

func (c *Camera) Zoom() float64 { return c.zoom }

// Uniforms returns the focus and zoom in the precision the shaders take.
func (c *Camera) Uniforms() (mgl32.Vec2, float32) {
	return mgl32.Vec2{float32(c.focusX), float32(c.focusY)}, float32(c.zoom)
}

func (c *Camera) State() State {
	return State{
		FocusX: c.focusX,
		FocusY: c.focusY,
		Zoom:   c.zoom,
		Width:  c.width,
		Height: c.height,
	}
}

func (c *Camera) clamp(z float64) float64 {
	return math.Min(math.Max(z, c.minZoom), c.maxZoom)
}
