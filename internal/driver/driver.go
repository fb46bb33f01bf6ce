// Package driver advances the simulation once per displayed frame and hands
// the result to a renderer under the current camera transform.
package driver

import (
	"fmt"
	"time"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/san-kum/plife/internal/camera"
	"github.com/san-kum/plife/internal/dynamo"
	"github.com/san-kum/plife/internal/input"
	"github.com/san-kum/plife/internal/metrics"
	"github.com/san-kum/plife/internal/sim"
)

const DefaultMaxFrameDelta = 100 * time.Millisecond

// Renderer is the draw side of a frame. *render.Renderer satisfies it.
type Renderer interface {
	Render(f sim.Frame, cam mgl32.Vec2, zoom float32) error
	Resize(width, height int)
}

type Options struct {
	// MaxFrameDelta caps the simulated time per frame so a stall does not
	// turn into one huge integration step.
	MaxFrameDelta time.Duration
}

func DefaultOptions() Options {
	return Options{MaxFrameDelta: DefaultMaxFrameDelta}
}

// Action is a discrete user command, usually bound to a key.
type Action uint8

const (
	ActionNone Action = iota
	ActionResetCamera
	ActionZoomIn
	ActionZoomOut
	ActionTogglePause
	ActionRandomizeRules
)

func (a Action) String() string {
	switch a {
	case ActionResetCamera:
		return "reset-camera"
	case ActionZoomIn:
		return "zoom-in"
	case ActionZoomOut:
		return "zoom-out"
	case ActionTogglePause:
		return "toggle-pause"
	case ActionRandomizeRules:
		return "randomize-rules"
	}
	return "none"
}

// Telemetry is what the host exposes about the running simulation.
type Telemetry struct {
	FPS       float64
	Frames    uint64
	Particles int
	Paused    bool
	Rules     [][]float64
	Camera    camera.State
	Metrics   map[string]float64
}

type Driver struct {
	opts     Options
	eng      *sim.Engine
	cam      *camera.Camera
	renderer Renderer

	last    time.Time
	frames  uint64
	paused  bool
	stopped bool

	fps     *metrics.FrameRate
	metrics metrics.Set
}

func New(opts Options, eng *sim.Engine, cam *camera.Camera, r Renderer) *Driver {
	if opts.MaxFrameDelta <= 0 {
		opts.MaxFrameDelta = DefaultMaxFrameDelta
	}
	return &Driver{
		opts:     opts,
		eng:      eng,
		cam:      cam,
		renderer: r,
		fps:      metrics.NewFrameRate(time.Second),
		metrics:  newMetrics(eng),
	}
}

func newMetrics(eng *sim.Engine) metrics.Set {
	return metrics.Set{
		metrics.NewKineticEnergy(),
		metrics.NewMeanSpeed(),
		metrics.NewSaturation(eng.Params().MaxSpeed * 0.99),
	}
}

// Step runs one frame at wall time now. The first frame renders without
// advancing the simulation. A render failure stops the driver; every later
// call returns dynamo.ErrStopped.
func (d *Driver) Step(now time.Time) error {
	if d.stopped {
		return dynamo.ErrStopped
	}

	dt := d.frameDelta(now)
	if !d.paused && dt > 0 {
		d.eng.Tick(dt.Seconds())
	}

	focus, zoom := d.cam.Uniforms()
	if err := d.renderer.Render(d.eng.Frame(), focus, zoom); err != nil {
		d.stopped = true
		return fmt.Errorf("render frame %d: %w", d.frames, err)
	}
	d.frames++

	if d.fps.Frame(now) {
		d.metrics.Observe(d.eng, float64(now.UnixNano())/1e9)
	}
	return nil
}

func (d *Driver) frameDelta(now time.Time) time.Duration {
	if d.last.IsZero() {
		d.last = now
		return 0
	}
	dt := now.Sub(d.last)
	d.last = now
	return min(max(dt, 0), d.opts.MaxFrameDelta)
}

// Resize propagates a framebuffer size change to the camera and renderer.
func (d *Driver) Resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	d.cam.SetScreenSize(float64(width), float64(height))
	d.renderer.Resize(width, height)
}

func (d *Driver) Apply(a Action) {
	w, h := d.cam.ScreenSize()
	switch a {
	case ActionResetCamera:
		d.cam.Reset()
	case ActionZoomIn:
		d.cam.ZoomAt(w/2, h/2, input.WheelZoomIn)
	case ActionZoomOut:
		d.cam.ZoomAt(w/2, h/2, input.WheelZoomOut)
	case ActionTogglePause:
		d.paused = !d.paused
	case ActionRandomizeRules:
		d.eng.RandomizeRules()
	}
}

// Rebuild replaces the engine with one built from p. The camera is kept. On
// error the running engine is left in place.
func (d *Driver) Rebuild(p sim.Params) error {
	eng, err := sim.New(p)
	if err != nil {
		return err
	}
	d.eng = eng
	d.metrics = newMetrics(eng)
	return nil
}

func (d *Driver) ApplyRules(rows [][]float64) error {
	return d.eng.SetRules(rows)
}

func (d *Driver) Engine() *sim.Engine { return d.eng }
func (d *Driver) Paused() bool        { return d.paused }
func (d *Driver) Stopped() bool       { return d.stopped }

func (d *Driver) Telemetry() Telemetry {
	return Telemetry{
		FPS:       d.fps.Value(),
		Frames:    d.frames,
		Particles: d.eng.Len(),
		Paused:    d.paused,
		Rules:     d.eng.Rules(),
		Camera:    d.cam.State(),
		Metrics:   d.metrics.Values(),
	}
}
