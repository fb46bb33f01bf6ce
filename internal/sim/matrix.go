package sim

import (
	"math"
	"math/rand"
)

// Matrix holds the asymmetric color interaction coefficients, row-major.
// At(a, b) is how strongly color a is drawn toward color b.
type Matrix struct {
	n     int
	cells []float64
}

func NewMatrix(n int) *Matrix {
	return &Matrix{n: n, cells: make([]float64, n*n)}
}

func (m *Matrix) Size() int { return m.n }

func (m *Matrix) inRange(a, b int) bool {
	return a >= 0 && a < m.n && b >= 0 && b < m.n
}

// At returns 0 for out-of-range indices.
func (m *Matrix) At(a, b int) float64 {
	if !m.inRange(a, b) {
		return 0
	}
	return m.cells[a*m.n+b]
}

// Set clamps v to [-1, 1]. It reports false and leaves the matrix untouched
// when either index is out of range.
func (m *Matrix) Set(a, b int, v float64) bool {
	if !m.inRange(a, b) {
		return false
	}
	m.cells[a*m.n+b] = clampRule(v)
	return true
}

// Seed sets the diagonal to self and draws every off-diagonal entry
// uniformly from [-spread, spread].
func (m *Matrix) Seed(rng *rand.Rand, self, spread float64) {
	for a := 0; a < m.n; a++ {
		for b := 0; b < m.n; b++ {
			if a == b {
				m.cells[a*m.n+b] = clampRule(self)
				continue
			}
			m.cells[a*m.n+b] = clampRule((rng.Float64()*2 - 1) * spread)
		}
	}
}

// Rows returns a deep copy as a slice of rows.
func (m *Matrix) Rows() [][]float64 {
	rows := make([][]float64, m.n)
	for a := range rows {
		rows[a] = make([]float64, m.n)
		copy(rows[a], m.cells[a*m.n:(a+1)*m.n])
	}
	return rows
}

func clampRule(v float64) float64 {
	switch {
	case math.IsNaN(v):
		return 0
	case v > 1:
		return 1
	case v < -1:
		return -1
	}
	return v
}
