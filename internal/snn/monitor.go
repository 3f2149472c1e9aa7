package snn

import (
	"fmt"
	"math"
)

// SpikeMonitor records every spike of a source.
type SpikeMonitor struct {
	Name string
	I    []int
	T    []float64

	source Spiker
	steps  []int
	dt     float64
}

func NewSpikeMonitor(name string, source Spiker) *SpikeMonitor {
	return &SpikeMonitor{Name: name, source: source}
}

func (m *SpikeMonitor) record(step int, t, dt float64) {
	m.dt = dt
	for _, i := range m.source.Fired() {
		m.I = append(m.I, i)
		m.T = append(m.T, t)
		m.steps = append(m.steps, step)
	}
}

func (m *SpikeMonitor) Len() int { return len(m.T) }

// Count returns the number of recorded spikes per source neuron.
func (m *SpikeMonitor) Count() []int {
	c := make([]int, m.source.Size())
	for _, i := range m.I {
		c[i]++
	}
	return c
}

// TimesOf returns the spike times of neuron i.
func (m *SpikeMonitor) TimesOf(i int) []float64 {
	out := make([]float64, 0)
	for k, idx := range m.I {
		if idx == i {
			out = append(out, m.T[k])
		}
	}
	return out
}

// InWindow returns the distinct neurons that spiked in (t0, t1], in
// ascending order.
func (m *SpikeMonitor) InWindow(t0, t1 float64) []int {
	if m.dt == 0 || len(m.steps) == 0 {
		return nil
	}
	s0 := int(math.Round(t0 / m.dt))
	s1 := int(math.Round(t1 / m.dt))

	seen := make([]bool, m.source.Size())
	for k := len(m.steps) - 1; k >= 0 && m.steps[k] > s0; k-- {
		if m.steps[k] <= s1 {
			seen[m.I[k]] = true
		}
	}

	out := make([]int, 0)
	for i, ok := range seen {
		if ok {
			out = append(out, i)
		}
	}
	return out
}

// StateMonitor samples one variable at the start of every timestep.
type StateMonitor struct {
	Name    string
	Indices []int
	T       []float64
	Values  [][]float64

	read func() []float64
}

// MonitorPotential records v of the listed neurons of g.
func MonitorPotential(name string, g *NeuronGroup, indices ...int) (*StateMonitor, error) {
	return newStateMonitor(name, g.Size(), func() []float64 { return g.v }, indices)
}

// MonitorWeight records w of the listed synapses of s.
func MonitorWeight(name string, s *Synapses, indices ...int) (*StateMonitor, error) {
	return newStateMonitor(name, s.N(), func() []float64 { return s.w }, indices)
}

func newStateMonitor(name string, size int, read func() []float64, indices []int) (*StateMonitor, error) {
	for _, i := range indices {
		if i < 0 || i >= size {
			return nil, fmt.Errorf("%w: %s records index %d of %d", ErrIndexOutOfRange, name, i, size)
		}
	}
	return &StateMonitor{
		Name:    name,
		Indices: indices,
		Values:  make([][]float64, len(indices)),
		read:    read,
	}, nil
}

func (m *StateMonitor) record(t float64) {
	vals := m.read()
	m.T = append(m.T, t)
	for k, i := range m.Indices {
		m.Values[k] = append(m.Values[k], vals[i])
	}
}

// Trace returns the samples of the k-th recorded index.
func (m *StateMonitor) Trace(k int) []float64 {
	if k < 0 || k >= len(m.Values) {
		return nil
	}
	return m.Values[k]
}
