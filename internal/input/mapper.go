// Package input turns pointer and wheel events into camera operations.
package input

// State is the pointer gesture state.
type State uint8

const (
	Idle State = iota
	Dragging
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Dragging:
		return "dragging"
	}
	return "unknown"
}

const (
	WheelZoomIn  = 1.1
	WheelZoomOut = 0.9
)

// Viewport is the part of the camera the mapper drives.
type Viewport interface {
	Pan(dx, dy float64)
	ZoomAt(sx, sy, factor float64)
}

// Handler receives pointer events in screen pixels.
type Handler interface {
	PointerDown(x, y float64)
	PointerMove(x, y float64)
	PointerUp()
	Wheel(x, y, dy float64)
}

// Source delivers events to one handler until the returned detach func is
// called.
type Source interface {
	Subscribe(h Handler) (detach func())
}

// Mapper is a two-state drag/zoom machine over a Viewport.
type Mapper struct {
	view   Viewport
	state  State
	lastX  float64
	lastY  float64
	detach func()
}

func NewMapper(view Viewport) *Mapper {
	return &Mapper{view: view}
}

func (m *Mapper) State() State { return m.state }

// Cursor is the last pointer position seen in any state.
func (m *Mapper) Cursor() (x, y float64) { return m.lastX, m.lastY }

func (m *Mapper) PointerDown(x, y float64) {
	m.state = Dragging
	m.lastX, m.lastY = x, y
}

func (m *Mapper) PointerMove(x, y float64) {
	if m.state == Dragging {
		m.view.Pan(x-m.lastX, y-m.lastY)
	}
	m.lastX, m.lastY = x, y
}

func (m *Mapper) PointerUp() {
	m.state = Idle
}

// Wheel zooms about (x, y). Positive dy zooms in.
func (m *Mapper) Wheel(x, y, dy float64) {
	switch {
	case dy > 0:
		m.view.ZoomAt(x, y, WheelZoomIn)
	case dy < 0:
		m.view.ZoomAt(x, y, WheelZoomOut)
	}
}

// Attach subscribes the mapper to src, detaching from any previous source.
func (m *Mapper) Attach(src Source) {
	m.Dispose()
	m.detach = src.Subscribe(m)
}

// Dispose detaches from the current source and drops any drag in progress.
// It is safe to call more than once.
func (m *Mapper) Dispose() {
	if m.detach != nil {
		m.detach()
		m.detach = nil
	}
	m.state = Idle
}

func (m *Mapper) Attached() bool { return m.detach != nil }
