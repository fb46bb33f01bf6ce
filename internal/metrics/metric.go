// Package metrics accumulates scalar observations of a particle population.
package metrics

// Sample is the read side of a population. *sim.Engine satisfies it.
type Sample interface {
	Len() int
	Velocity(i int) (vx, vy float64)
}

type Metric interface {
	Name() string
	Observe(s Sample, t float64)
	Value() float64
	Reset()
}

// Set observes several metrics together.
type Set []Metric

func (ms Set) Observe(s Sample, t float64) {
	for _, m := range ms {
		m.Observe(s, t)
	}
}

func (ms Set) Reset() {
	for _, m := range ms {
		m.Reset()
	}
}

// Values returns the current value of every metric by name.
func (ms Set) Values() map[string]float64 {
	out := make(map[string]float64, len(ms))
	for _, m := range ms {
		out[m.Name()] = m.Value()
	}
	return out
}
