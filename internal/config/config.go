package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/plife/internal/camera"
	"github.com/san-kum/plife/internal/dynamo"
	"github.com/san-kum/plife/internal/sim"
)

const (
	DefaultParticles     = 1500
	DefaultColors        = 6
	DefaultWorldWidth    = 1600.0
	DefaultWorldHeight   = 1000.0
	DefaultSensingRadius = 80.0
	DefaultMaxFrameDelta = 0.1
	DefaultWindowWidth   = 1280
	DefaultWindowHeight  = 800
	DefaultTitle         = "plife"
)

type Config struct {
	Particles     int          `yaml:"particles"`
	Colors        int          `yaml:"colors"`
	World         WorldConfig  `yaml:"world"`
	SensingRadius float64      `yaml:"sensing_radius"`
	ForceScale    float64      `yaml:"force_scale"`
	MaxSpeed      float64      `yaml:"max_speed"`
	Damping       float64      `yaml:"damping"`
	Beta          float64      `yaml:"beta"`
	SelfRule      float64      `yaml:"self_rule"`
	RuleSpread    float64      `yaml:"rule_spread"`
	ParticleSize  float64      `yaml:"particle_size"`
	Seed          int64        `yaml:"seed"`
	Neighbors     string       `yaml:"neighbors"`
	Workers       int          `yaml:"workers"`
	MaxFrameDelta float64      `yaml:"max_frame_delta"`
	Camera        CameraConfig `yaml:"camera"`
	Window        WindowConfig `yaml:"window"`
	Render        RenderConfig `yaml:"render"`
	Rules         [][]float64  `yaml:"rules,omitempty"`
}

type WorldConfig struct {
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
}

type CameraConfig struct {
	MinZoom float64 `yaml:"min_zoom"`
	MaxZoom float64 `yaml:"max_zoom"`
}

type WindowConfig struct {
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
	Title  string `yaml:"title"`
	VSync  bool   `yaml:"vsync"`
}

type RenderConfig struct {
	PointScale float64 `yaml:"point_scale"`
}

func DefaultConfig() *Config {
	return &Config{
		Particles:     DefaultParticles,
		Colors:        DefaultColors,
		World:         WorldConfig{Width: DefaultWorldWidth, Height: DefaultWorldHeight},
		SensingRadius: DefaultSensingRadius,
		ForceScale:    sim.DefaultForceScale,
		MaxSpeed:      sim.DefaultMaxSpeed,
		Damping:       sim.DefaultDamping,
		Beta:          sim.DefaultBeta,
		SelfRule:      sim.DefaultSelfRule,
		RuleSpread:    sim.DefaultRuleSpread,
		ParticleSize:  sim.DefaultParticleSize,
		Neighbors:     string(sim.NeighborsBrute),
		Workers:       1,
		MaxFrameDelta: DefaultMaxFrameDelta,
		Camera:        CameraConfig{MinZoom: camera.DefaultMinZoom, MaxZoom: camera.DefaultMaxZoom},
		Window: WindowConfig{
			Width:  DefaultWindowWidth,
			Height: DefaultWindowHeight,
			Title:  DefaultTitle,
			VSync:  true,
		},
		Render: RenderConfig{PointScale: 1},
	}
}

// Load overlays the YAML file at path onto DefaultConfig and validates the
// result. Keys absent from the file keep their defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: parse %s: %v", dynamo.ErrInvalidConfig, path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Validate() error {
	if err := c.SimParams().Validate(); err != nil {
		return err
	}
	switch {
	case !(c.MaxFrameDelta > 0):
		return fmt.Errorf("%w: max_frame_delta must be positive, got %g", dynamo.ErrInvalidConfig, c.MaxFrameDelta)
	case !(c.Camera.MinZoom > 0) || c.Camera.MaxZoom < c.Camera.MinZoom:
		return fmt.Errorf("%w: camera zoom range [%g, %g] is empty", dynamo.ErrInvalidConfig, c.Camera.MinZoom, c.Camera.MaxZoom)
	case c.Window.Width <= 0 || c.Window.Height <= 0:
		return fmt.Errorf("%w: window size must be positive, got %dx%d", dynamo.ErrInvalidConfig, c.Window.Width, c.Window.Height)
	case c.Render.PointScale < 0:
		return fmt.Errorf("%w: point_scale must be >= 0, got %g", dynamo.ErrInvalidConfig, c.Render.PointScale)
	}
	if len(c.Rules) > 0 {
		return checkRulesShape(c.Rules, c.Colors)
	}
	return nil
}

func (c *Config) SimParams() sim.Params {
	return sim.Params{
		Particles:     c.Particles,
		Colors:        c.Colors,
		Width:         c.World.Width,
		Height:        c.World.Height,
		SensingRadius: c.SensingRadius,
		ForceScale:    c.ForceScale,
		MaxSpeed:      c.MaxSpeed,
		Damping:       c.Damping,
		Beta:          c.Beta,
		SelfRule:      c.SelfRule,
		RuleSpread:    c.RuleSpread,
		ParticleSize:  c.ParticleSize,
		Seed:          c.Seed,
		Neighbors:     sim.Neighbors(c.Neighbors),
		Workers:       c.Workers,
	}
}

func (c *Config) FrameDelta() time.Duration {
	return time.Duration(c.MaxFrameDelta * float64(time.Second))
}

// NewEngine builds an engine from the config and applies the explicit rule
// matrix when one is present.
func (c *Config) NewEngine() (*sim.Engine, error) {
	eng, err := sim.New(c.SimParams())
	if err != nil {
		return nil, err
	}
	if len(c.Rules) > 0 {
		if err := eng.SetRules(c.Rules); err != nil {
			return nil, err
		}
	}
	return eng, nil
}

// Clone returns a deep copy.
func (c *Config) Clone() *Config {
	out := *c
	if c.Rules != nil {
		out.Rules = make([][]float64, len(c.Rules))
		for i, row := range c.Rules {
			out.Rules[i] = append([]float64(nil), row...)
		}
	}
	return &out
}
