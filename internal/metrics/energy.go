package metrics

import "math"

// KineticEnergy reports the mean per-particle kinetic energy (unit mass) of
// the latest observation.
type KineticEnergy struct {
	name   string
	latest float64
	peak   float64
}

func NewKineticEnergy() *KineticEnergy {
	return &KineticEnergy{name: "kinetic_energy"}
}

func (k *KineticEnergy) Name() string { return k.name }

func (k *KineticEnergy) Observe(s Sample, t float64) {
	n := s.Len()
	if n == 0 {
		return
	}
	var sum float64
	for i := 0; i < n; i++ {
		vx, vy := s.Velocity(i)
		sum += 0.5 * (vx*vx + vy*vy)
	}
	k.latest = sum / float64(n)
	k.peak = math.Max(k.peak, k.latest)
}

func (k *KineticEnergy) Value() float64 { return k.latest }

// Peak is the largest value seen since the last Reset.
func (k *KineticEnergy) Peak() float64 { return k.peak }

func (k *KineticEnergy) Reset() {
	k.latest = 0
	k.peak = 0
}
