package metrics

import "math"

// MeanSpeed averages particle speed over every observation since Reset.
type MeanSpeed struct {
	name    string
	sum     float64
	samples int
}

func NewMeanSpeed() *MeanSpeed {
	return &MeanSpeed{name: "mean_speed"}
}

func (m *MeanSpeed) Name() string { return m.name }

func (m *MeanSpeed) Observe(s Sample, t float64) {
	n := s.Len()
	if n == 0 {
		return
	}
	var total float64
	for i := 0; i < n; i++ {
		total += math.Hypot(s.Velocity(i))
	}
	m.sum += total / float64(n)
	m.samples++
}

func (m *MeanSpeed) Value() float64 {
	if m.samples == 0 {
		return 0
	}
	return m.sum / float64(m.samples)
}

func (m *MeanSpeed) Reset() {
	m.sum = 0
	m.samples = 0
}
