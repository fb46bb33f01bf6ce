package sim

import (
	"fmt"
	"math"

	"github.com/san-kum/plife/internal/dynamo"
)

// Neighbors selects how the force pass finds interacting pairs.
type Neighbors string

const (
	// NeighborsBrute evaluates every unordered pair.
	NeighborsBrute Neighbors = "brute"
	// NeighborsGrid buckets particles into cells no smaller than the sensing radius.
	NeighborsGrid Neighbors = "grid"
)

const (
	DefaultForceScale   = 150.0
	DefaultMaxSpeed     = 120.0
	DefaultDamping      = 0.98
	DefaultBeta         = 0.3
	DefaultSelfRule     = -0.5
	DefaultRuleSpread   = 1.0
	DefaultParticleSize = 3.0

	// MaxColors bounds the color count to what a uint8 index can address.
	MaxColors = 256
)

// Params configures an Engine. Zero values for the tuning scalars, ForceScale
// through ParticleSize, are replaced by their defaults in withDefaults; zero
// is not a valid setting for any of them. SelfRule must stay a repulsion.
type Params struct {
	Particles     int
	Colors        int
	Width, Height float64
	SensingRadius float64

	ForceScale float64
	MaxSpeed   float64
	Damping    float64
	Beta       float64

	SelfRule     float64
	RuleSpread   float64
	ParticleSize float64

	Seed      int64
	Neighbors Neighbors
	Workers   int
}

func DefaultParams() Params {
	return Params{
		Particles:     1500,
		Colors:        6,
		Width:         1600,
		Height:        1000,
		SensingRadius: 80,
		ForceScale:    DefaultForceScale,
		MaxSpeed:      DefaultMaxSpeed,
		Damping:       DefaultDamping,
		Beta:          DefaultBeta,
		SelfRule:      DefaultSelfRule,
		RuleSpread:    DefaultRuleSpread,
		ParticleSize:  DefaultParticleSize,
		Neighbors:     NeighborsBrute,
		Workers:       1,
	}
}

func (p Params) withDefaults() Params {
	if p.ForceScale == 0 {
		p.ForceScale = DefaultForceScale
	}
	if p.SelfRule == 0 {
		p.SelfRule = DefaultSelfRule
	}
	if p.RuleSpread == 0 {
		p.RuleSpread = DefaultRuleSpread
	}
	if p.MaxSpeed == 0 {
		p.MaxSpeed = DefaultMaxSpeed
	}
	if p.Damping == 0 {
		p.Damping = DefaultDamping
	}
	if p.Beta == 0 {
		p.Beta = DefaultBeta
	}
	if p.ParticleSize == 0 {
		p.ParticleSize = DefaultParticleSize
	}
	if p.Neighbors == "" {
		p.Neighbors = NeighborsBrute
	}
	if p.Workers < 1 {
		p.Workers = 1
	}
	return p
}

// Validate reports the first parameter outside its valid range.
func (p Params) Validate() error {
	switch {
	case p.Particles < 1:
		return fmt.Errorf("%w: particle count must be >= 1, got %d", dynamo.ErrInvalidConfig, p.Particles)
	case p.Colors < 1 || p.Colors > MaxColors:
		return fmt.Errorf("%w: color count must be in [1, %d], got %d", dynamo.ErrInvalidConfig, MaxColors, p.Colors)
	case !positive(p.Width) || !positive(p.Height):
		return fmt.Errorf("%w: world size must be positive, got %gx%g", dynamo.ErrInvalidConfig, p.Width, p.Height)
	case !positive(p.SensingRadius):
		return fmt.Errorf("%w: sensing radius must be positive, got %g", dynamo.ErrInvalidConfig, p.SensingRadius)
	case !positive(p.ForceScale):
		return fmt.Errorf("%w: force scale must be positive, got %g", dynamo.ErrInvalidConfig, p.ForceScale)
	case !positive(p.MaxSpeed):
		return fmt.Errorf("%w: max speed must be positive, got %g", dynamo.ErrInvalidConfig, p.MaxSpeed)
	case !(p.Damping > 0 && p.Damping <= 1):
		return fmt.Errorf("%w: damping must be in (0, 1], got %g", dynamo.ErrInvalidConfig, p.Damping)
	case !(p.Beta > 0 && p.Beta < 1):
		return fmt.Errorf("%w: beta must be in (0, 1), got %g", dynamo.ErrInvalidConfig, p.Beta)
	case !(p.SelfRule >= -1 && p.SelfRule < 0):
		return fmt.Errorf("%w: self rule must be a repulsion in [-1, 0), got %g", dynamo.ErrInvalidConfig, p.SelfRule)
	case !positive(p.RuleSpread):
		return fmt.Errorf("%w: rule spread must be positive, got %g", dynamo.ErrInvalidConfig, p.RuleSpread)
	case p.Neighbors != NeighborsBrute && p.Neighbors != NeighborsGrid:
		return fmt.Errorf("%w: unknown neighbor strategy %q", dynamo.ErrInvalidConfig, p.Neighbors)
	}
	return nil
}

func positive(v float64) bool {
	return v > 0 && !math.IsInf(v, 0)
}
