package config

import (
	"sort"

	"github.com/san-kum/plife/internal/sim"
)

func preset(edit func(c *Config)) *Config {
	c := DefaultConfig()
	edit(c)
	return c
}

var Presets = map[string]*Config{
	"default": DefaultConfig(),
	"sparse": preset(func(c *Config) {
		c.Particles = 400
		c.Colors = 4
		c.SensingRadius = 120
		c.Render.PointScale = 1.6
	}),
	"swarm": preset(func(c *Config) {
		c.Particles = 8000
		c.Colors = 8
		c.World = WorldConfig{Width: 3200, Height: 2000}
		c.SensingRadius = 60
		c.Neighbors = string(sim.NeighborsGrid)
		c.Workers = 4
		c.ParticleSize = 2
	}),
	"cells": preset(func(c *Config) {
		c.Particles = 2000
		c.Colors = 3
		c.Rules = [][]float64{
			{0.4, -0.3, 0.6},
			{0.5, 0.4, -0.4},
			{-0.6, 0.3, 0.4},
		}
	}),
	"chains": preset(func(c *Config) {
		c.Particles = 1800
		c.Colors = 5
		c.Damping = 0.95
		c.Rules = chainRules(5, 0.8, -0.2)
	}),
}

// chainRules makes each color chase the next one around a ring.
func chainRules(n int, chase, rest float64) [][]float64 {
	rows := make([][]float64, n)
	for a := range rows {
		rows[a] = make([]float64, n)
		for b := range rows[a] {
			switch b {
			case a:
				rows[a][b] = sim.DefaultSelfRule
			case (a + 1) % n:
				rows[a][b] = chase
			default:
				rows[a][b] = rest
			}
		}
	}
	return rows
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	return cfg.Clone()
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
