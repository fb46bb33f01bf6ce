package tui

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/san-kum/plife/internal/camera"
	"github.com/san-kum/plife/internal/metrics"
	"github.com/san-kum/plife/internal/sim"
	"github.com/san-kum/plife/internal/viz"
)

const (
	historyCapacity = 120
	sampleEvery     = 6
	panStep         = 8.0
	sparkWidth      = 32
	// a particle counts as saturated within 5% of the speed cap
	saturationShare = 0.95
)

type Options struct {
	// Canvas size in terminal cells.
	Width, Height int
	FrameRate     int
}

func DefaultOptions() Options {
	return Options{Width: 72, Height: 24, FrameRate: 30}
}

type tickMsg time.Time

// Live runs the engine at a fixed step and draws it on a braille canvas
// through a camera fitted to the world.
type Live struct {
	opts    Options
	eng     *sim.Engine
	cam     *camera.Camera
	fit     float64
	canvas  *viz.Canvas
	colors  []colorful.Color
	palette []lipgloss.Color

	fps        *metrics.FrameRate
	energy     *metrics.KineticEnergy
	speed      *metrics.MeanSpeed
	saturation *metrics.Saturation
	history    []float64
	saturated  []float64

	running   bool
	showRules bool
	ticks     int
}

func NewLive(eng *sim.Engine, opts Options) Live {
	def := DefaultOptions()
	if opts.Width <= 0 {
		opts.Width = def.Width
	}
	if opts.Height <= 0 {
		opts.Height = def.Height
	}
	if opts.FrameRate <= 0 {
		opts.FrameRate = def.FrameRate
	}

	m := Live{
		opts:      opts,
		canvas:    viz.NewCanvas(opts.Width, opts.Height),
		fps:       metrics.NewFrameRate(time.Second),
		energy:    metrics.NewKineticEnergy(),
		speed:     metrics.NewMeanSpeed(),
		history:   make([]float64, 0, historyCapacity),
		saturated: make([]float64, 0, historyCapacity),
		running:   true,
	}
	m.setEngine(eng)
	return m
}

func (m *Live) setEngine(eng *sim.Engine) {
	m.eng = eng
	m.colors = sim.Palette(eng.ColorCount())
	m.palette = viz.TermPalette(m.colors)

	w, h := m.canvas.SubSize()
	p := eng.Params()
	m.cam, m.fit = fitCamera(float64(w), float64(h), min(float64(w)/p.Width, float64(h)/p.Height))

	m.energy.Reset()
	m.speed.Reset()
	m.saturation = metrics.NewSaturation(saturationShare * p.MaxSpeed)
	m.history = m.history[:0]
	m.saturated = m.saturated[:0]
}

func (m Live) Init() tea.Cmd {
	return m.tick()
}

func (m Live) tick() tea.Cmd {
	return tea.Tick(time.Second/time.Duration(m.opts.FrameRate), func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m Live) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		default:
			m.handleKey(msg.String())
		}
	case tickMsg:
		m.step(time.Time(msg))
		return m, m.tick()
	}
	return m, nil
}

func (m *Live) handleKey(key string) {
	w, h := m.cam.ScreenSize()
	switch key {
	case " ":
		m.running = !m.running
	case "n":
		m.eng.RandomizeRules()
	case "r":
		m.cam.Reset()
		m.cam.SetZoom(m.fit)
	case "+", "=":
		m.cam.ZoomAt(w/2, h/2, 1.25)
	case "-", "_":
		m.cam.ZoomAt(w/2, h/2, 0.8)
	case "left", "h":
		m.cam.Pan(panStep, 0)
	case "right", "l":
		m.cam.Pan(-panStep, 0)
	case "up", "k":
		m.cam.Pan(0, panStep)
	case "down", "j":
		m.cam.Pan(0, -panStep)
	case "m":
		m.showRules = !m.showRules
	}
}

func (m *Live) step(now time.Time) {
	m.fps.Frame(now)
	if !m.running {
		return
	}
	m.eng.Tick(1 / float64(m.opts.FrameRate))
	m.ticks++

	if m.ticks%sampleEvery == 0 {
		t := float64(m.ticks) / float64(m.opts.FrameRate)
		m.energy.Observe(m.eng, t)
		m.speed.Observe(m.eng, t)
		m.saturation.Observe(m.eng, t)
		m.history = pushCapped(m.history, m.energy.Value())
		m.saturated = pushCapped(m.saturated, m.saturation.Value())
	}
}

func pushCapped(values []float64, v float64) []float64 {
	if len(values) == historyCapacity {
		copy(values, values[1:])
		values = values[:historyCapacity-1]
	}
	return append(values, v)
}

// fitCamera builds a camera for a w x h raster at zoom fit. The fitted zoom is
// far below the window defaults on a terminal raster, so the limits follow
// it; a degenerate fit keeps the defaults and is clamped into them.
func fitCamera(w, h, fit float64) (*camera.Camera, float64) {
	cam := camera.New(w, h)
	if err := cam.SetZoomConstraints(fit/4, fit*40); err != nil {
		fit = min(max(fit, camera.DefaultMinZoom), camera.DefaultMaxZoom)
		if math.IsNaN(fit) {
			fit = 1
		}
	}
	cam.SetZoom(fit)
	return cam, cam.Zoom()
}

func (m Live) View() string {
	m.canvas.Clear()
	drawn := viz.DrawParticles(m.canvas, m.eng, m.cam)
	canvasView := viz.CanvasStyle.Render(strings.TrimSuffix(m.canvas.Render(m.palette), "\n"))

	var s strings.Builder
	s.WriteString(viz.HeaderStyle.Render("PARTICLE LIFE") + "\n")
	if m.running {
		s.WriteString(viz.StatusRunning.Render("RUNNING") + "\n\n")
	} else {
		s.WriteString(viz.StatusPaused.Render("PAUSED") + "\n\n")
	}

	stat := func(label, value string) {
		s.WriteString(viz.MetricLabel.Render(label) + viz.MetricValue.Render(value) + "\n")
	}
	stat("Particles", fmt.Sprintf("%d (%d visible)", m.eng.Len(), drawn))
	stat("Colors", fmt.Sprintf("%d", m.eng.ColorCount()))
	stat("Ticks", fmt.Sprintf("%d", m.ticks))
	stat("FPS", fmt.Sprintf("%.1f", m.fps.Value()))
	stat("Energy", fmt.Sprintf("%.2f (peak %.2f)", m.energy.Value(), m.energy.Peak()))
	stat("Speed", fmt.Sprintf("%.2f", m.speed.Value()))
	stat("At cap", viz.SparklineChart(m.saturated, sparkWidth))
	stat("Camera", m.cam.State().String())

	if len(m.history) > 1 {
		chart := asciigraph.Plot(m.history, asciigraph.Height(5), asciigraph.Width(32), asciigraph.Caption("kinetic energy"))
		s.WriteString(viz.GraphStyle.Render(chart) + "\n")
	}
	if m.showRules {
		s.WriteString("\n" + viz.MatrixView(m.eng.Rules(), m.colors))
	}
	s.WriteString("\n" + viz.KeyHint.Render("SP pause  N rules  M matrix\n+/- zoom  hjkl pan  R view  Q quit"))

	return lipgloss.JoinHorizontal(lipgloss.Top, canvasView, viz.PanelStyle.Render(s.String()))
}

// RunLive runs the live view until the user quits or ctx is cancelled.
func RunLive(ctx context.Context, eng *sim.Engine, opts Options) error {
	return run(ctx, NewLive(eng, opts))
}

func run(ctx context.Context, m tea.Model) error {
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
