package driver

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/san-kum/plife/internal/camera"
	"github.com/san-kum/plife/internal/dynamo"
	"github.com/san-kum/plife/internal/sim"
)

type fakeRenderer struct {
	frames  int
	count   int
	focus   mgl32.Vec2
	zoom    float32
	resizes [][2]int
	err     error
}

func (r *fakeRenderer) Render(f sim.Frame, cam mgl32.Vec2, zoom float32) error {
	if r.err != nil {
		return r.err
	}
	r.frames++
	r.count = f.Count
	r.focus = cam
	r.zoom = zoom
	return nil
}

func (r *fakeRenderer) Resize(w, h int) {
	r.resizes = append(r.resizes, [2]int{w, h})
}

func testParams() sim.Params {
	p := sim.DefaultParams()
	p.Particles = 200
	p.Colors = 4
	p.Seed = 9
	return p
}

func newTestDriver(t *testing.T) (*Driver, *fakeRenderer, *camera.Camera) {
	t.Helper()
	eng, err := sim.New(testParams())
	if err != nil {
		t.Fatalf("sim.New failed: %v", err)
	}
	cam := camera.New(800, 600)
	r := &fakeRenderer{}
	return New(DefaultOptions(), eng, cam, r), r, cam
}

func positions(e *sim.Engine) []float64 {
	out := make([]float64, 0, e.Len()*2)
	for i := 0; i < e.Len(); i++ {
		x, y := e.Position(i)
		out = append(out, x, y)
	}
	return out
}

func sameState(a, b []float64) bool {
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestFirstStepDoesNotAdvance(t *testing.T) {
	d, r, _ := newTestDriver(t)
	before := positions(d.Engine())

	if err := d.Step(time.Unix(100, 0)); err != nil {
		t.Fatalf("Step failed: %v", err)
	}
	if !sameState(before, positions(d.Engine())) {
		t.Error("first frame advanced the simulation")
	}
	if r.frames != 1 || r.count != 200 {
		t.Errorf("renderer saw %d frames of %d particles", r.frames, r.count)
	}
}

func TestStepClampsDelta(t *testing.T) {
	t0 := time.Unix(100, 0)

	// a 5 second stall must advance exactly like a 100ms frame
	stalled, _, _ := newTestDriver(t)
	stalled.Step(t0)
	stalled.Step(t0.Add(5 * time.Second))

	eng, err := sim.New(testParams())
	if err != nil {
		t.Fatal(err)
	}
	eng.Tick(DefaultMaxFrameDelta.Seconds())

	if !sameState(positions(eng), positions(stalled.Engine())) {
		t.Error("stalled frame was not clamped to MaxFrameDelta")
	}
}

func TestStepIgnoresClockGoingBackwards(t *testing.T) {
	d, _, _ := newTestDriver(t)
	t0 := time.Unix(100, 0)
	d.Step(t0)
	before := positions(d.Engine())

	if err := d.Step(t0.Add(-time.Second)); err != nil {
		t.Fatal(err)
	}
	if !sameState(before, positions(d.Engine())) {
		t.Error("negative delta advanced the simulation")
	}
}

func TestPauseFreezesSimulationButKeepsRendering(t *testing.T) {
	d, r, _ := newTestDriver(t)
	t0 := time.Unix(100, 0)
	d.Step(t0)

	d.Apply(ActionTogglePause)
	before := positions(d.Engine())
	for i := 1; i <= 5; i++ {
		d.Step(t0.Add(time.Duration(i) * 16 * time.Millisecond))
	}
	if !sameState(before, positions(d.Engine())) {
		t.Error("paused driver advanced the simulation")
	}
	if r.frames != 6 {
		t.Errorf("rendered %d frames, want 6", r.frames)
	}
	if !d.Telemetry().Paused {
		t.Error("telemetry does not report pause")
	}

	d.Apply(ActionTogglePause)
	d.Step(t0.Add(200 * time.Millisecond))
	if sameState(before, positions(d.Engine())) {
		t.Error("resumed driver did not advance")
	}
}

func TestRenderErrorStopsDriver(t *testing.T) {
	d, r, _ := newTestDriver(t)
	r.err = dynamo.ErrContextLost

	err := d.Step(time.Unix(100, 0))
	if !errors.Is(err, dynamo.ErrContextLost) {
		t.Fatalf("Step err = %v, want ErrContextLost", err)
	}
	if !d.Stopped() {
		t.Fatal("driver not stopped after render error")
	}

	r.err = nil
	if err := d.Step(time.Unix(101, 0)); !errors.Is(err, dynamo.ErrStopped) {
		t.Errorf("Step after stop = %v, want ErrStopped", err)
	}
	if r.frames != 0 {
		t.Error("stopped driver kept rendering")
	}
}

func TestStepPassesCameraUniforms(t *testing.T) {
	d, r, cam := newTestDriver(t)
	cam.Pan(-40, 20)
	cam.SetZoom(2)

	d.Step(time.Unix(100, 0))
	if r.focus != (mgl32.Vec2{40, -20}) || r.zoom != 2 {
		t.Errorf("renderer got focus %v zoom %v", r.focus, r.zoom)
	}
}

func TestApplyCameraActions(t *testing.T) {
	d, _, cam := newTestDriver(t)
	cam.Pan(30, 30)

	d.Apply(ActionZoomIn)
	if got := cam.Zoom(); math.Abs(got-1.1) > 1e-12 {
		t.Errorf("zoom after ActionZoomIn = %v", got)
	}
	fx, fy := cam.Focus()
	if math.Abs(fx+30) > 1e-9 || math.Abs(fy+30) > 1e-9 {
		t.Errorf("zooming about the center moved the focus to (%v, %v)", fx, fy)
	}

	d.Apply(ActionZoomOut)
	d.Apply(ActionZoomOut)
	if got := cam.Zoom(); math.Abs(got-1.1*0.81) > 1e-12 {
		t.Errorf("zoom after two ActionZoomOut = %v", got)
	}

	d.Apply(ActionResetCamera)
	fx, fy = cam.Focus()
	if fx != 0 || fy != 0 || cam.Zoom() != 1 {
		t.Error("ActionResetCamera did not reset")
	}
}

func TestApplyRandomizeRules(t *testing.T) {
	d, _, _ := newTestDriver(t)
	before := d.Engine().Rules()
	d.Apply(ActionRandomizeRules)
	after := d.Engine().Rules()

	changed := false
	for a := range before {
		for b := range before[a] {
			if a == b && after[a][b] != sim.DefaultSelfRule {
				t.Errorf("diagonal rule[%d][%d] = %v", a, b, after[a][b])
			}
			if before[a][b] != after[a][b] {
				changed = true
			}
		}
	}
	if !changed {
		t.Error("randomize left every rule unchanged")
	}
}

func TestResize(t *testing.T) {
	d, r, cam := newTestDriver(t)
	d.Resize(1024, 768)
	d.Resize(0, 768)

	w, h := cam.ScreenSize()
	if w != 1024 || h != 768 {
		t.Errorf("camera screen size = %vx%v", w, h)
	}
	if len(r.resizes) != 1 || r.resizes[0] != [2]int{1024, 768} {
		t.Errorf("renderer resizes = %v", r.resizes)
	}
}

func TestRebuildKeepsCamera(t *testing.T) {
	d, r, cam := newTestDriver(t)
	cam.Pan(10, 10)
	cam.SetZoom(3)
	old := d.Engine()

	p := testParams()
	p.Particles = 50
	p.Colors = 2
	if err := d.Rebuild(p); err != nil {
		t.Fatalf("Rebuild failed: %v", err)
	}
	if d.Engine() == old || d.Engine().Len() != 50 || d.Engine().ColorCount() != 2 {
		t.Error("engine not replaced")
	}
	if cam.Zoom() != 3 {
		t.Error("rebuild touched the camera")
	}

	d.Step(time.Unix(100, 0))
	if r.count != 50 {
		t.Errorf("renderer saw %d particles after rebuild", r.count)
	}
}

func TestRebuildFailureKeepsEngine(t *testing.T) {
	d, _, _ := newTestDriver(t)
	old := d.Engine()

	p := testParams()
	p.Particles = 0
	if err := d.Rebuild(p); !errors.Is(err, dynamo.ErrInvalidConfig) {
		t.Fatalf("Rebuild err = %v, want ErrInvalidConfig", err)
	}
	if d.Engine() != old {
		t.Error("failed rebuild replaced the engine")
	}
}

func TestApplyRules(t *testing.T) {
	d, _, _ := newTestDriver(t)
	rows := [][]float64{
		{0, 1, 0, 0},
		{0, 0, 1, 0},
		{0, 0, 0, 1},
		{1, 0, 0, 0},
	}
	if err := d.ApplyRules(rows); err != nil {
		t.Fatal(err)
	}
	if got := d.Telemetry().Rules[3][0]; got != 1 {
		t.Errorf("rule[3][0] = %v", got)
	}
	if err := d.ApplyRules(rows[:2]); !errors.Is(err, dynamo.ErrInvalidConfig) {
		t.Errorf("short matrix err = %v", err)
	}
}

func TestTelemetryFPS(t *testing.T) {
	d, _, _ := newTestDriver(t)
	t0 := time.Unix(100, 0)
	for i := 0; i <= 30; i++ {
		if err := d.Step(t0.Add(time.Duration(i) * time.Second / 30)); err != nil {
			t.Fatal(err)
		}
	}

	tel := d.Telemetry()
	if math.Abs(tel.FPS-31) > 1e-9 {
		t.Errorf("FPS = %v, want 31", tel.FPS)
	}
	if tel.Frames != 31 || tel.Particles != 200 {
		t.Errorf("frames=%d particles=%d", tel.Frames, tel.Particles)
	}
	if _, ok := tel.Metrics["kinetic_energy"]; !ok {
		t.Error("metrics missing kinetic energy")
	}
	if tel.Camera.Width != 800 {
		t.Errorf("camera state width = %v", tel.Camera.Width)
	}
}

func TestActionString(t *testing.T) {
	if ActionZoomIn.String() != "zoom-in" || Action(200).String() != "none" {
		t.Error("unexpected action names")
	}
}
