package sim

import "math"

// Force is the interaction magnitude at normalized distance r in [0, 1) for
// coefficient a. Inside beta the result is a repulsion independent of a;
// between beta and 1 it is a tent that follows the sign of a and peaks at
// (1+beta)/2. Positive values attract.
func Force(r, a, beta float64) float64 {
	switch {
	case r < beta:
		return repulsion(r, beta)
	case r < 1:
		return tent(r, a, beta)
	}
	return 0
}

func repulsion(r, beta float64) float64 {
	return r/beta - 1
}

func tent(r, a, beta float64) float64 {
	return a * (1 - math.Abs(2*r-1-beta)/(1-beta))
}

// forceBrute accumulates every unordered pair once, writing both sides.
func (e *Engine) forceBrute() {
	p := e.particles
	n := p.Len()
	radius := e.params.SensingRadius
	r2max := radius * radius
	invR := 1 / radius
	beta := e.params.Beta

	for i := 0; i < n; i++ {
		xi, yi := p.Pos[i*2], p.Pos[i*2+1]
		ci := int(p.Color[i])

		for j := i + 1; j < n; j++ {
			rx := p.Pos[j*2] - xi
			ry := p.Pos[j*2+1] - yi
			d2 := rx*rx + ry*ry
			if d2 >= r2max || d2 == 0 {
				continue
			}

			d := math.Sqrt(d2)
			ux, uy := rx/d, ry/d
			r := d * invR
			cj := int(p.Color[j])

			fij := Force(r, e.rules.At(ci, cj), beta)
			p.Force[i*2] += ux * fij
			p.Force[i*2+1] += uy * fij

			fji := Force(r, e.rules.At(cj, ci), beta)
			p.Force[j*2] -= ux * fji
			p.Force[j*2+1] -= uy * fji
		}
	}
}

// gatherRange computes the force on each particle in [start, end) from every
// candidate returned by neighbors. Each call writes only its own range.
func (e *Engine) gatherRange(start, end int, neighbors func(i int, visit func(j int))) {
	p := e.particles
	radius := e.params.SensingRadius
	r2max := radius * radius
	invR := 1 / radius
	beta := e.params.Beta

	for i := start; i < end; i++ {
		xi, yi := p.Pos[i*2], p.Pos[i*2+1]
		ci := int(p.Color[i])
		var fx, fy float64

		neighbors(i, func(j int) {
			if j == i {
				return
			}
			rx := p.Pos[j*2] - xi
			ry := p.Pos[j*2+1] - yi
			d2 := rx*rx + ry*ry
			if d2 >= r2max || d2 == 0 {
				return
			}
			d := math.Sqrt(d2)
			f := Force(d*invR, e.rules.At(ci, int(p.Color[j])), beta)
			fx += rx / d * f
			fy += ry / d * f
		})

		p.Force[i*2] = fx
		p.Force[i*2+1] = fy
	}
}

func (e *Engine) allParticles(_ int, visit func(j int)) {
	for j, n := 0, e.particles.Len(); j < n; j++ {
		visit(j)
	}
}
