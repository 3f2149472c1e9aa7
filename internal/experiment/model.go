package experiment

import (
	"fmt"

	"github.com/san-kum/spikesim/internal/snn"
)

// SBC is the simple binary classifier: one input neuron feeding every LIF
// output through plastic synapses.
type SBC struct {
	Input     *snn.SpikeGenerator
	Output    *snn.NeuronGroup
	Syn       *snn.Synapses
	SpikesIn  *snn.SpikeMonitor
	SpikesOut *snn.SpikeMonitor
	VMon      *snn.StateMonitor
	WMon      *snn.StateMonitor
}

func NewSBC(outputs int, lif snn.LIFParams, stdp snn.STDPParams) (*SBC, error) {
	if outputs < 1 {
		return nil, fmt.Errorf("sbc: need at least one output, got %d", outputs)
	}
	if err := lif.Validate(); err != nil {
		return nil, fmt.Errorf("sbc neuron: %w", err)
	}
	if err := stdp.Validate(); err != nil {
		return nil, fmt.Errorf("sbc synapse: %w", err)
	}

	m := &SBC{
		Input:  snn.NewSpikeGenerator("input", 1),
		Output: snn.NewNeuronGroup("output", outputs, lif),
	}
	m.Syn = snn.NewSynapses("syn", m.Input, m.Output, stdp)
	m.SpikesIn = snn.NewSpikeMonitor("spikes_in", m.Input)
	m.SpikesOut = snn.NewSpikeMonitor("spikes_out", m.Output)

	var err error
	if m.VMon, err = snn.MonitorPotential("vmon", m.Output, 0); err != nil {
		return nil, err
	}
	if m.WMon, err = snn.MonitorWeight("wmon", m.Syn, 0); err != nil {
		return nil, err
	}
	return m, nil
}

// Objects lists the engine objects in the order a network must add them.
func (m *SBC) Objects() []any {
	return []any{m.Input, m.Output, m.Syn, m.SpikesIn, m.SpikesOut, m.VMon, m.WMon}
}

// Env adapts the model to the capabilities a WTA step consumes.
func (m *SBC) Env() *Env { return &Env{m: m} }

type Env struct {
	m *SBC
}

func (e *Env) SpikedIn(t0, t1 float64) []int { return e.m.SpikesOut.InWindow(t0, t1) }

func (e *Env) PreSpikePotential(neuron int, t float64) (float64, bool) {
	return e.m.Output.PreSpikePotential(neuron, t)
}

func (e *Env) N() int                           { return e.m.Output.Size() }
func (e *Env) Reset(neuron int)                 { e.m.Output.RestPotential(neuron) }
func (e *Env) Weights() []float64               { return e.m.Syn.Weights() }
func (e *Env) SetWeight(k int, w float64) error { return e.m.Syn.SetWeight(k, w) }
func (e *Env) Incoming(neuron int) []int        { return e.m.Syn.Incoming(neuron) }
