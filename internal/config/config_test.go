package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/san-kum/plife/internal/dynamo"
	"github.com/san-kum/plife/internal/sim"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.Particles != DefaultParticles || cfg.Colors != DefaultColors {
		t.Errorf("unexpected counts %d/%d", cfg.Particles, cfg.Colors)
	}
	if cfg.FrameDelta() != 100*time.Millisecond {
		t.Errorf("FrameDelta() = %v", cfg.FrameDelta())
	}
}

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadOverlaysDefaults(t *testing.T) {
	path := writeFile(t, "plife.yaml", `
particles: 300
world:
  width: 900
neighbors: grid
camera:
  max_zoom: 4
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Particles != 300 {
		t.Errorf("particles = %d", cfg.Particles)
	}
	if cfg.World.Width != 900 || cfg.World.Height != DefaultWorldHeight {
		t.Errorf("world = %+v", cfg.World)
	}
	if cfg.Neighbors != "grid" || cfg.Camera.MaxZoom != 4 || cfg.Camera.MinZoom != 0.1 {
		t.Errorf("overlay lost fields: %+v %+v", cfg.Neighbors, cfg.Camera)
	}
	if cfg.Colors != DefaultColors || cfg.Damping != sim.DefaultDamping {
		t.Error("absent keys did not keep defaults")
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"zero particles", "particles: 0"},
		{"zero colors", "colors: 0"},
		{"damping above one", "damping: 1.5"},
		{"unknown strategy", "neighbors: octree"},
		{"attractive self rule", "self_rule: 0.4"},
		{"zero force scale", "force_scale: 0"},
		{"empty zoom range", "camera: {min_zoom: 2, max_zoom: 1}"},
		{"zero frame delta", "max_frame_delta: 0"},
		{"rules wrong shape", "colors: 2\nrules: [[0, 1]]"},
		{"not yaml", "particles: [1, 2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeFile(t, "bad.yaml", tt.body))
			if !errors.Is(err, dynamo.ErrInvalidConfig) {
				t.Errorf("Load err = %v, want ErrInvalidConfig", err)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Load err = %v, want ErrNotExist", err)
	}
}

func TestSaveLoadKeepsRules(t *testing.T) {
	cfg := GetPreset("cells")
	path := filepath.Join(t.TempDir(), "out.yaml")
	if err := Save(path, cfg); err != nil {
		t.Fatal(err)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(got.Rules) != 3 || got.Rules[2][0] != -0.6 {
		t.Errorf("rules not preserved: %v", got.Rules)
	}
}

func TestNewEngineAppliesRules(t *testing.T) {
	cfg := GetPreset("cells")
	cfg.Particles = 20
	cfg.Seed = 3

	eng, err := cfg.NewEngine()
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}
	if got := eng.ColorRule(1, 2); got != -0.4 {
		t.Errorf("rule[1][2] = %v, want -0.4", got)
	}
	if eng.Len() != 20 {
		t.Errorf("Len() = %d", eng.Len())
	}
}

func TestSimParams(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Workers = 3
	cfg.Neighbors = "grid"
	p := cfg.SimParams()

	if p.Width != DefaultWorldWidth || p.Workers != 3 || p.Neighbors != sim.NeighborsGrid {
		t.Errorf("SimParams() = %+v", p)
	}
}

func TestGetPreset(t *testing.T) {
	cfg := GetPreset("swarm")
	if cfg == nil {
		t.Fatal("expected preset, got nil")
	}
	if cfg.Neighbors != "grid" {
		t.Errorf("expected grid neighbors, got %s", cfg.Neighbors)
	}

	cfg.Particles = 1
	if Presets["swarm"].Particles == 1 {
		t.Error("GetPreset returned shared state")
	}

	chains := GetPreset("chains")
	chains.Rules[0][1] = 0
	if Presets["chains"].Rules[0][1] == 0 {
		t.Error("GetPreset shares the rule matrix")
	}
}

func TestGetPreset_NotFound(t *testing.T) {
	if cfg := GetPreset("nonexistent"); cfg != nil {
		t.Error("expected nil for nonexistent preset")
	}
}

func TestPresetsAreValid(t *testing.T) {
	names := ListPresets()
	if len(names) != len(Presets) {
		t.Fatalf("ListPresets() = %v", names)
	}
	for i := 1; i < len(names); i++ {
		if names[i-1] > names[i] {
			t.Errorf("presets not sorted: %v", names)
		}
	}
	for _, name := range names {
		if err := GetPreset(name).Validate(); err != nil {
			t.Errorf("preset %s invalid: %v", name, err)
		}
	}
}

func TestChainRules(t *testing.T) {
	rows := chainRules(4, 0.8, -0.2)
	for a := 0; a < 4; a++ {
		if rows[a][a] != sim.DefaultSelfRule {
			t.Errorf("diagonal %d = %v", a, rows[a][a])
		}
		if rows[a][(a+1)%4] != 0.8 {
			t.Errorf("row %d does not chase the next color", a)
		}
	}
}

func TestRulesFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	rows := [][]float64{{-0.5, 0.25}, {1, -0.5}}
	if err := SaveRules(path, rows); err != nil {
		t.Fatal(err)
	}

	got, err := LoadRules(path)
	if err != nil {
		t.Fatalf("LoadRules failed: %v", err)
	}
	if len(got) != 2 || got[0][1] != 0.25 || got[1][0] != 1 {
		t.Errorf("LoadRules() = %v", got)
	}
}

func TestLoadRulesRejectsRagged(t *testing.T) {
	path := writeFile(t, "rules.yaml", "rules:\n  - [0, 1]\n  - [0]\n")
	if _, err := LoadRules(path); !errors.Is(err, dynamo.ErrInvalidConfig) {
		t.Errorf("LoadRules err = %v, want ErrInvalidConfig", err)
	}

	path = writeFile(t, "empty.yaml", "colors: 0\n")
	if _, err := LoadRules(path); !errors.Is(err, dynamo.ErrInvalidConfig) {
		t.Errorf("empty rules err = %v, want ErrInvalidConfig", err)
	}
}

func TestPresetsRandomizeToRepulsiveDiagonal(t *testing.T) {
	for _, name := range ListPresets() {
		t.Run(name, func(t *testing.T) {
			cfg := GetPreset(name)
			cfg.Particles = 10
			cfg.Seed = 1
			eng, err := cfg.NewEngine()
			if err != nil {
				t.Fatalf("NewEngine failed: %v", err)
			}
			eng.RandomizeRules()
			for c := 0; c < eng.ColorCount(); c++ {
				if v := eng.ColorRule(c, c); v >= 0 {
					t.Errorf("rule[%d][%d] = %v after randomize, want repulsion", c, c, v)
				}
			}
		})
	}
}
