package sim

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/san-kum/plife/internal/dynamo"
)

// minParallelChunk keeps small populations on the calling goroutine.
const minParallelChunk = 64

// Engine owns the particle set and the interaction matrix and advances them
// one frame at a time. It is not safe for concurrent use.
type Engine struct {
	params    Params
	particles *Particles
	rules     *Matrix
	rng       *rand.Rand
	grid      grid
}

// New allocates the particle set, derives the palette, seeds the matrix and
// scatters particles uniformly over the world at rest.
func New(p Params) (*Engine, error) {
	p = p.withDefaults()
	if err := p.Validate(); err != nil {
		return nil, err
	}

	// Params reports the seed actually used so a run can be replayed.
	if p.Seed == 0 {
		p.Seed = time.Now().UnixNano()
	}

	e := &Engine{
		params:    p,
		particles: newParticles(p.Particles),
		rules:     NewMatrix(p.Colors),
		rng:       rand.New(rand.NewSource(p.Seed)),
	}
	e.rules.Seed(e.rng, p.SelfRule, p.RuleSpread)

	palette := Palette(p.Colors)
	ps := e.particles
	for i := 0; i < p.Particles; i++ {
		c := e.rng.Intn(p.Colors)
		ps.Color[i] = uint8(c)
		ps.RGB[i*3] = float32(palette[c].R)
		ps.RGB[i*3+1] = float32(palette[c].G)
		ps.RGB[i*3+2] = float32(palette[c].B)
		ps.Size[i] = float32(p.ParticleSize)
		ps.Pos[i*2] = (e.rng.Float64() - 0.5) * p.Width
		ps.Pos[i*2+1] = (e.rng.Float64() - 0.5) * p.Height
	}
	e.wrap()
	ps.syncPos32()

	return e, nil
}

func (e *Engine) Params() Params  { return e.params }
func (e *Engine) Len() int        { return e.particles.Len() }
func (e *Engine) ColorCount() int { return e.rules.Size() }

func (e *Engine) Position(i int) (x, y float64) {
	return e.particles.Pos[i*2], e.particles.Pos[i*2+1]
}

func (e *Engine) Velocity(i int) (vx, vy float64) {
	return e.particles.Vel[i*2], e.particles.Vel[i*2+1]
}

func (e *Engine) ColorIndex(i int) int { return int(e.particles.Color[i]) }

// SetColorRule writes rule[a][b] clamped to [-1, 1].
func (e *Engine) SetColorRule(a, b int, v float64) error {
	if !e.rules.Set(a, b, v) {
		return fmt.Errorf("%w: (%d, %d) with %d colors", dynamo.ErrRuleIndex, a, b, e.rules.Size())
	}
	return nil
}

// ColorRule returns rule[a][b], or 0 when either index is out of range.
func (e *Engine) ColorRule(a, b int) float64 {
	return e.rules.At(a, b)
}

// SetRules commits a whole matrix at once. The shape is checked before any
// cell is written, so a malformed batch leaves the rules untouched.
func (e *Engine) SetRules(rows [][]float64) error {
	n := e.rules.Size()
	if len(rows) != n {
		return fmt.Errorf("%w: rule matrix has %d rows, want %d", dynamo.ErrInvalidConfig, len(rows), n)
	}
	for a, row := range rows {
		if len(row) != n {
			return fmt.Errorf("%w: rule row %d has %d columns, want %d", dynamo.ErrInvalidConfig, a, len(row), n)
		}
	}
	for a, row := range rows {
		for b, v := range row {
			e.rules.Set(a, b, v)
		}
	}
	return nil
}

// Rules returns a copy of the live matrix.
func (e *Engine) Rules() [][]float64 { return e.rules.Rows() }

// RandomizeRules re-seeds off-diagonal entries; the diagonal returns to the
// self-repulsion constant.
func (e *Engine) RandomizeRules() {
	e.rules.Seed(e.rng, e.params.SelfRule, e.params.RuleSpread)
}

func (e *Engine) SetSensingRadius(r float64) error {
	if !positive(r) {
		return fmt.Errorf("%w: sensing radius must be positive, got %g", dynamo.ErrInvalidConfig, r)
	}
	e.params.SensingRadius = r
	return nil
}

// ResizeWorld changes the torus size. Positions are not rescaled; they are
// wrapped into the new bounds at the end of the next tick.
func (e *Engine) ResizeWorld(w, h float64) error {
	if !positive(w) || !positive(h) {
		return fmt.Errorf("%w: world size must be positive, got %gx%g", dynamo.ErrInvalidConfig, w, h)
	}
	e.params.Width, e.params.Height = w, h
	return nil
}

func (e *Engine) SetForceScale(s float64) error {
	if !positive(s) {
		return fmt.Errorf("%w: force scale must be positive, got %g", dynamo.ErrInvalidConfig, s)
	}
	e.params.ForceScale = s
	return nil
}

func (e *Engine) SetMaxSpeed(s float64) error {
	if !positive(s) {
		return fmt.Errorf("%w: max speed must be positive, got %g", dynamo.ErrInvalidConfig, s)
	}
	e.params.MaxSpeed = s
	return nil
}

func (e *Engine) SetDamping(d float64) error {
	if !(d > 0 && d <= 1) {
		return fmt.Errorf("%w: damping must be in (0, 1], got %g", dynamo.ErrInvalidConfig, d)
	}
	e.params.Damping = d
	return nil
}

// Tick advances the simulation by dt seconds: reset forces, accumulate pair
// forces, integrate, wrap. Non-positive dt is ignored.
func (e *Engine) Tick(dt float64) {
	if !(dt > 0) {
		return
	}

	clear(e.particles.Force)
	e.accumulate()
	e.integrate(dt)
	e.wrap()
	e.particles.syncPos32()
}

func (e *Engine) accumulate() {
	n := e.particles.Len()
	workers := e.params.Workers

	switch e.params.Neighbors {
	case NeighborsGrid:
		e.grid.rebuild(e.particles, e.params.Width, e.params.Height, e.params.SensingRadius)
		dynamo.ParallelFor(n, workers, minParallelChunk, func(start, end int) {
			e.gatherRange(start, end, e.grid.neighbors)
		})
	default:
		if workers <= 1 {
			e.forceBrute()
			return
		}
		dynamo.ParallelFor(n, workers, minParallelChunk, func(start, end int) {
			e.gatherRange(start, end, e.allParticles)
		})
	}
}

func (e *Engine) integrate(dt float64) {
	p := e.particles
	gain := dt * e.params.ForceScale
	damping := e.params.Damping
	maxSpeed := e.params.MaxSpeed

	for i, n := 0, p.Len(); i < n; i++ {
		vx := (p.Vel[i*2] + p.Force[i*2]*gain) * damping
		vy := (p.Vel[i*2+1] + p.Force[i*2+1]*gain) * damping

		if speed := math.Hypot(vx, vy); speed > maxSpeed {
			vx = vx / speed * maxSpeed
			vy = vy / speed * maxSpeed
		}

		p.Vel[i*2], p.Vel[i*2+1] = vx, vy
		p.Pos[i*2] += vx * dt
		p.Pos[i*2+1] += vy * dt
	}
}

func (e *Engine) wrap() {
	p := e.particles
	w, h := e.params.Width, e.params.Height
	for i, n := 0, p.Len(); i < n; i++ {
		p.Pos[i*2] = wrapAxis(p.Pos[i*2], w)
		p.Pos[i*2+1] = wrapAxis(p.Pos[i*2+1], h)
	}
}

// wrapAxis maps v onto [-size/2, size/2).
func wrapAxis(v, size float64) float64 {
	half := size / 2
	if v >= -half && v < half {
		return v
	}
	r := math.Mod(v+half, size)
	if r < 0 {
		r += size
	}
	if r >= size {
		r = 0
	}
	return r - half
}

// Frame exposes the particle arrays for upload. The view aliases engine
// memory and must not be modified.
func (e *Engine) Frame() Frame {
	p := e.particles
	return Frame{
		Positions: p.pos32,
		Colors:    p.RGB,
		Sizes:     p.Size,
		Count:     p.Len(),
	}
}
