package wta_test

import (
	"fmt"
	"sort"
)

// fakeEnv is an engine with n outputs and one input, synapse k feeding
// output k.
type fakeEnv struct {
	v       []float64
	w       []float64
	preV    map[int]float64
	spiking []int

	gotT0, gotT1 float64
	resets       []int
}

func newFakeEnv(weights ...float64) *fakeEnv {
	return &fakeEnv{
		v:    make([]float64, len(weights)),
		w:    append([]float64(nil), weights...),
		preV: map[int]float64{},
	}
}

func (f *fakeEnv) spike(neuron int, preV float64) {
	f.spiking = append(f.spiking, neuron)
	sort.Ints(f.spiking)
	f.preV[neuron] = preV
}

func (f *fakeEnv) SpikedIn(t0, t1 float64) []int {
	f.gotT0, f.gotT1 = t0, t1
	return f.spiking
}

func (f *fakeEnv) PreSpikePotential(neuron int, t float64) (float64, bool) {
	v, ok := f.preV[neuron]
	return v, ok
}

func (f *fakeEnv) N() int { return len(f.v) }

func (f *fakeEnv) Reset(neuron int) {
	f.v[neuron] = 0
	f.resets = append(f.resets, neuron)
}

func (f *fakeEnv) Weights() []float64 { return f.w }

func (f *fakeEnv) SetWeight(k int, w float64) error {
	if k < 0 || k >= len(f.w) {
		return fmt.Errorf("synapse %d out of range", k)
	}
	f.w[k] = w
	return nil
}

func (f *fakeEnv) Incoming(neuron int) []int { return []int{neuron} }
