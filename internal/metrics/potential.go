package metrics

import (
	"math"

	"github.com/san-kum/spikesim/internal/dynamo"
)

// PeakPotential tracks the largest membrane potential seen after any step.
type PeakPotential struct {
	name    string
	peak    float64
	samples int
}

func NewPeakPotential() *PeakPotential {
	return &PeakPotential{name: "peak_potential", peak: math.Inf(-1)}
}

func (p *PeakPotential) Name() string { return p.name }

func (p *PeakPotential) Observe(x dynamo.State, u dynamo.Control, t float64) {
	for _, v := range x {
		p.peak = math.Max(p.peak, v)
	}
	p.samples++
}

func (p *PeakPotential) Value() float64 {
	if p.samples == 0 {
		return 0
	}
	return p.peak
}

func (p *PeakPotential) Reset() {
	p.peak = math.Inf(-1)
	p.samples = 0
}

// MeanPotential is the time average of the mean potential across neurons.
type MeanPotential struct {
	name    string
	sum     float64
	samples int
}

func NewMeanPotential() *MeanPotential {
	return &MeanPotential{name: "mean_potential"}
}

func (m *MeanPotential) Name() string { return m.name }

func (m *MeanPotential) Observe(x dynamo.State, u dynamo.Control, t float64) {
	if len(x) == 0 {
		return
	}
	s := 0.0
	for _, v := range x {
		s += v
	}
	m.sum += s / float64(len(x))
	m.samples++
}

func (m *MeanPotential) Value() float64 {
	if m.samples == 0 {
		return 0
	}
	return m.sum / float64(m.samples)
}

func (m *MeanPotential) Reset() {
	m.sum = 0
	m.samples = 0
}
