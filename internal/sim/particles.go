package sim

// Particles is the structure-of-arrays particle store. Vector attributes are
// interleaved (x0, y0, x1, y1, ...) so each attribute is one contiguous slice.
type Particles struct {
	Pos   []float64
	Vel   []float64
	Force []float64
	Color []uint8
	RGB   []float32
	Size  []float32

	// pos32 mirrors Pos in GPU layout and is refreshed at the end of every tick.
	pos32 []float32
}

func newParticles(n int) *Particles {
	return &Particles{
		Pos:   make([]float64, n*2),
		Vel:   make([]float64, n*2),
		Force: make([]float64, n*2),
		Color: make([]uint8, n),
		RGB:   make([]float32, n*3),
		Size:  make([]float32, n),
		pos32: make([]float32, n*2),
	}
}

func (p *Particles) Len() int { return len(p.Color) }

func (p *Particles) syncPos32() {
	for i, v := range p.Pos {
		p.pos32[i] = float32(v)
	}
}

// Frame is a read-only view of the particle arrays in GPU layout. The slices
// alias engine memory and are valid until the next Tick.
type Frame struct {
	Positions []float32 // 2 per particle
	Colors    []float32 // 3 per particle
	Sizes     []float32 // 1 per particle
	Count     int
}
