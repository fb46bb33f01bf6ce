// Package gui hosts the simulation in a glfw window with an OpenGL 4.1 core
// context and drives it from the window's event loop.
package gui

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"

	"github.com/san-kum/plife/internal/camera"
	"github.com/san-kum/plife/internal/config"
	"github.com/san-kum/plife/internal/driver"
	"github.com/san-kum/plife/internal/dynamo"
	"github.com/san-kum/plife/internal/input"
	"github.com/san-kum/plife/internal/render"
)

func init() {
	// glfw and GL calls must stay on the main thread.
	runtime.LockOSThread()
}

type Options struct {
	Config *config.Config
	// ConfigPath is re-read on the reload key. Empty disables reloading.
	ConfigPath string
	Logger     *slog.Logger
}

type App struct {
	cfg        *config.Config
	configPath string
	log        *slog.Logger

	win      *glfw.Window
	cam      *camera.Camera
	renderer *render.Renderer
	mapper   *input.Mapper
	driver   *driver.Driver

	titleAt time.Time
}

// Run opens the window and blocks until it is closed, a quit key is pressed,
// ctx is cancelled or rendering fails.
func Run(ctx context.Context, opts Options) error {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}

	if err := glfw.Init(); err != nil {
		return fmt.Errorf("%w: glfw init: %v", dynamo.ErrNoContext, err)
	}
	defer glfw.Terminate()

	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	glfw.WindowHint(glfw.Resizable, glfw.True)

	win, err := glfw.CreateWindow(cfg.Window.Width, cfg.Window.Height, cfg.Window.Title, nil, nil)
	if err != nil {
		return fmt.Errorf("%w: create window: %v", dynamo.ErrNoContext, err)
	}
	defer win.Destroy()
	win.MakeContextCurrent()
	if cfg.Window.VSync {
		glfw.SwapInterval(1)
	} else {
		glfw.SwapInterval(0)
	}

	if err := gl.Init(); err != nil {
		return fmt.Errorf("%w: gl init: %v", dynamo.ErrNoContext, err)
	}
	log.Info("opengl ready",
		"version", gl.GoStr(gl.GetString(gl.VERSION)),
		"renderer", gl.GoStr(gl.GetString(gl.RENDERER)))

	fw, fh := win.GetFramebufferSize()
	ropts := render.DefaultOptions()
	ropts.PointScale = float32(cfg.Render.PointScale)
	r, err := render.New(fw, fh, ropts)
	if err != nil {
		return err
	}
	defer r.Dispose()

	eng, err := cfg.NewEngine()
	if err != nil {
		return err
	}
	log.Info("simulation ready",
		"particles", eng.Len(), "colors", eng.ColorCount(),
		"neighbors", eng.Params().Neighbors, "workers", eng.Params().Workers)

	cam := camera.New(float64(fw), float64(fh))
	if err := applyView(cfg, cam, r); err != nil {
		return err
	}

	mapper := input.NewMapper(cam)
	mapper.Attach(input.NewGLFWSource(win))
	defer mapper.Dispose()

	app := &App{
		cfg:        cfg,
		configPath: opts.ConfigPath,
		log:        log,
		win:        win,
		cam:        cam,
		renderer:   r,
		mapper:     mapper,
		driver:     driver.New(driver.Options{MaxFrameDelta: cfg.FrameDelta()}, eng, cam, r),
	}
	win.SetKeyCallback(app.onKey)
	win.SetFramebufferSizeCallback(app.onFramebufferSize)

	return app.loop(ctx)
}

func (a *App) loop(ctx context.Context) error {
	for !a.win.ShouldClose() {
		select {
		case <-ctx.Done():
			a.log.Info("stopping", "reason", ctx.Err())
			return nil
		default:
		}

		glfw.PollEvents()
		now := time.Now()
		if err := a.driver.Step(now); err != nil {
			a.log.Error("render stopped", "err", err)
			return err
		}
		a.win.SwapBuffers()
		a.updateTitle(now)
	}
	a.log.Info("window closed")
	return nil
}

func (a *App) updateTitle(now time.Time) {
	if now.Sub(a.titleAt) < time.Second {
		return
	}
	a.titleAt = now
	t := a.driver.Telemetry()
	a.win.SetTitle(windowTitle(a.cfg.Window.Title, t))
}

func windowTitle(base string, t driver.Telemetry) string {
	title := fmt.Sprintf("%s | %d particles | %.1f fps | zoom %.2fx", base, t.Particles, t.FPS, t.Camera.Zoom)
	if t.Paused {
		title += " | paused"
	}
	return title
}

func (a *App) onKey(w *glfw.Window, key glfw.Key, _ int, action glfw.Action, _ glfw.ModifierKey) {
	if action == glfw.Release {
		return
	}
	switch cmd := commandForKey(key); cmd {
	case cmdQuit:
		w.SetShouldClose(true)
	case cmdReload:
		if action == glfw.Press {
			a.reload()
		}
	case cmdAction:
		act := actionForKey(key)
		// only zoom auto-repeats
		if action == glfw.Repeat && act != driver.ActionZoomIn && act != driver.ActionZoomOut {
			return
		}
		a.driver.Apply(act)
		a.log.Debug("action", "action", act)
	}
}

func (a *App) onFramebufferSize(_ *glfw.Window, width, height int) {
	a.driver.Resize(width, height)
}

// reload re-reads the config file, rebuilds the engine and applies the zoom
// limits and point scale. Camera position and window settings are kept; a bad
// file leaves the running simulation alone.
func (a *App) reload() {
	if a.configPath == "" {
		a.log.Warn("reload ignored, no config file")
		return
	}
	cfg, err := config.Load(a.configPath)
	if err != nil {
		a.log.Error("reload failed", "path", a.configPath, "err", err)
		return
	}
	if err := a.driver.Rebuild(cfg.SimParams()); err != nil {
		a.log.Error("rebuild failed", "err", err)
		return
	}
	if err := applyView(cfg, a.cam, a.renderer); err != nil {
		a.log.Error("view settings rejected", "err", err)
	}
	if len(cfg.Rules) > 0 {
		if err := a.driver.ApplyRules(cfg.Rules); err != nil {
			a.log.Error("apply rules failed", "err", err)
		}
	}
	// the window outlives the engine; keep its settings
	cfg.Window = a.cfg.Window
	a.cfg = cfg
	a.log.Info("rebuilt", "particles", cfg.Particles, "colors", cfg.Colors)
}

type pointScaler interface {
	SetPointScale(s float32)
}

// applyView pushes the view settings of cfg onto a running camera and
// renderer. The camera keeps its focus; zoom is clamped into the new limits.
func applyView(cfg *config.Config, cam *camera.Camera, r pointScaler) error {
	if err := cam.SetZoomConstraints(cfg.Camera.MinZoom, cfg.Camera.MaxZoom); err != nil {
		return err
	}
	r.SetPointScale(float32(cfg.Render.PointScale))
	return nil
}
