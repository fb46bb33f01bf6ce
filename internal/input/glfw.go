package input

import "github.com/go-gl/glfw/v3.3/glfw"

// GLFWSource feeds a Handler from a glfw window. Cursor positions are
// converted from window coordinates to framebuffer pixels so they match the
// camera's screen size on high-density displays.
//
// glfw delivers button releases to the window that saw the press even when
// the cursor has left the client area, so a drag always ends.
type GLFWSource struct {
	win *glfw.Window
}

func NewGLFWSource(win *glfw.Window) *GLFWSource {
	return &GLFWSource{win: win}
}

func (s *GLFWSource) Subscribe(h Handler) func() {
	prevButton := s.win.SetMouseButtonCallback(func(w *glfw.Window, button glfw.MouseButton, action glfw.Action, _ glfw.ModifierKey) {
		// the secondary button is swallowed so no context menu gesture leaks through
		if button != glfw.MouseButtonLeft {
			return
		}
		switch action {
		case glfw.Press:
			x, y := s.cursor(w)
			h.PointerDown(x, y)
		case glfw.Release:
			h.PointerUp()
		}
	})
	prevCursor := s.win.SetCursorPosCallback(func(w *glfw.Window, x, y float64) {
		sx, sy := s.scale(w)
		h.PointerMove(x*sx, y*sy)
	})
	prevScroll := s.win.SetScrollCallback(func(w *glfw.Window, _, yoff float64) {
		x, y := s.cursor(w)
		h.Wheel(x, y, yoff)
	})

	return func() {
		s.win.SetMouseButtonCallback(prevButton)
		s.win.SetCursorPosCallback(prevCursor)
		s.win.SetScrollCallback(prevScroll)
	}
}

func (s *GLFWSource) cursor(w *glfw.Window) (x, y float64) {
	x, y = w.GetCursorPos()
	sx, sy := s.scale(w)
	return x * sx, y * sy
}

func (s *GLFWSource) scale(w *glfw.Window) (sx, sy float64) {
	ww, wh := w.GetSize()
	fw, fh := w.GetFramebufferSize()
	if ww == 0 || wh == 0 {
		return 1, 1
	}
	return float64(fw) / float64(ww), float64(fh) / float64(wh)
}
