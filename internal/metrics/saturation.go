package metrics

import "math"

// Saturation is the fraction of particles moving at or above threshold in the
// latest observation. With threshold set just under the speed cap it shows how
// much of the population the cap is holding back.
type Saturation struct {
	name      string
	threshold float64
	fraction  float64
}

func NewSaturation(threshold float64) *Saturation {
	return &Saturation{
		name:      "saturation",
		threshold: threshold,
	}
}

func (s *Saturation) Name() string {
	return s.name
}

func (s *Saturation) Observe(x Sample, t float64) {
	n := x.Len()
	if n == 0 {
		return
	}
	over := 0
	for i := 0; i < n; i++ {
		if math.Hypot(x.Velocity(i)) >= s.threshold {
			over++
		}
	}
	s.fraction = float64(over) / float64(n)
}

func (s *Saturation) Value() float64 {
	return s.fraction
}

func (s *Saturation) Reset() {
	s.fraction = 0
}
