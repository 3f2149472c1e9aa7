package snn

import (
	"fmt"
	"math"
	"sort"

	"github.com/san-kum/spikesim/internal/dynamo"
)

// LIFParams describes dv/dt = -(v - Rest)/Tau with threshold v > Threshold
// and reset v = Reset.
type LIFParams struct {
	Tau       float64
	Threshold float64
	Reset     float64
	Rest      float64
}

func DefaultLIF() LIFParams {
	return LIFParams{Tau: 3.0, Threshold: 1.0, Reset: 0.0, Rest: 0.0}
}

func (p LIFParams) Validate() error {
	if p.Tau <= 0 {
		return fmt.Errorf("%w: tau=%v", dynamo.ErrParameterBounds, p.Tau)
	}
	if p.Reset >= p.Threshold {
		return fmt.Errorf("%w: reset %v not below threshold %v", dynamo.ErrParameterBounds, p.Reset, p.Threshold)
	}
	return nil
}

// NeuronGroup is a population of LIF neurons.
type NeuronGroup struct {
	Name   string
	Params LIFParams

	v     dynamo.State
	drive dynamo.Control
	fired []int

	// per neuron: times of every spike and the potential just before reset
	spikeT [][]float64
	preV   [][]float64

	decayDt     float64
	decayFactor float64
}

func NewNeuronGroup(name string, n int, p LIFParams) *NeuronGroup {
	g := &NeuronGroup{
		Name:   name,
		Params: p,
		v:      make(dynamo.State, n),
		drive:  make(dynamo.Control, n),
		spikeT: make([][]float64, n),
		preV:   make([][]float64, n),
	}
	for i := range g.v {
		g.v[i] = p.Rest
	}
	return g
}

func (g *NeuronGroup) Size() int    { return len(g.v) }
func (g *NeuronGroup) Fired() []int { return g.fired }

// V is a mutable view of the membrane potentials.
func (g *NeuronGroup) V() dynamo.State { return g.v }

func (g *NeuronGroup) SetV(i int, v float64) error {
	if i < 0 || i >= len(g.v) {
		return fmt.Errorf("%w: neuron %d of %s", ErrIndexOutOfRange, i, g.Name)
	}
	g.v[i] = v
	return nil
}

// RestPotential returns neuron i to its resting value.
func (g *NeuronGroup) RestPotential(i int) {
	g.v[i] = g.Params.Rest
}

// PreSpikePotential returns the potential neuron i had when it last crossed
// threshold at or before t. ok is false if it never spiked by then.
func (g *NeuronGroup) PreSpikePotential(i int, t float64) (v float64, ok bool) {
	if i < 0 || i >= len(g.v) {
		return 0, false
	}
	ts := g.spikeT[i]
	k := sort.Search(len(ts), func(k int) bool { return ts[k] > t })
	if k == 0 {
		return 0, false
	}
	return g.preV[i][k-1], true
}

// SpikeCount returns the number of spikes neuron i has emitted.
func (g *NeuronGroup) SpikeCount(i int) int { return len(g.spikeT[i]) }

func (g *NeuronGroup) Derive(x dynamo.State, u dynamo.Control, t float64) dynamo.State {
	dx := make(dynamo.State, len(x))
	for i := range x {
		dx[i] = (g.Params.Rest - x[i]) / g.Params.Tau
		if i < len(u) {
			dx[i] += u[i]
		}
	}
	return dx
}

func (g *NeuronGroup) StateDim() int   { return len(g.v) }
func (g *NeuronGroup) ControlDim() int { return 0 }

// Advance solves the leak exactly. External drive is not part of the closed
// form; synaptic input arrives as instantaneous jumps.
func (g *NeuronGroup) Advance(x dynamo.State, u dynamo.Control, t, dt float64) dynamo.State {
	if dt != g.decayDt {
		g.decayDt = dt
		g.decayFactor = math.Exp(-dt / g.Params.Tau)
	}
	out := make(dynamo.State, len(x))
	for i := range x {
		out[i] = g.Params.Rest + (x[i]-g.Params.Rest)*g.decayFactor
	}
	return out
}

func (g *NeuronGroup) GetParams() map[string]float64 {
	return map[string]float64{
		"tau":       g.Params.Tau,
		"threshold": g.Params.Threshold,
		"reset":     g.Params.Reset,
		"rest":      g.Params.Rest,
	}
}

func (g *NeuronGroup) SetParam(name string, value float64) error {
	p := g.Params
	switch name {
	case "tau":
		p.Tau = value
	case "threshold":
		p.Threshold = value
	case "reset":
		p.Reset = value
	case "rest":
		p.Rest = value
	default:
		return fmt.Errorf("%w: %s", dynamo.ErrUnknownParameter, name)
	}
	if err := p.Validate(); err != nil {
		return err
	}
	g.Params = p
	g.decayDt = 0
	return nil
}

func (g *NeuronGroup) update(integ dynamo.Integrator, t, dt float64) {
	for i := range g.drive {
		g.drive[i] = 0
	}
	copy(g.v, integ.Step(g, g.v, nil, t, dt))
}

func (g *NeuronGroup) detect(t float64) {
	g.fired = g.fired[:0]
	for i, v := range g.v {
		if v > g.Params.Threshold {
			g.fired = append(g.fired, i)
			g.spikeT[i] = append(g.spikeT[i], t)
			g.preV[i] = append(g.preV[i], v)
		}
	}
}

func (g *NeuronGroup) reset() {
	for _, i := range g.fired {
		g.v[i] = g.Params.Reset
	}
}

// receive applies an instantaneous synaptic jump to neuron j.
func (g *NeuronGroup) receive(j int, w float64) {
	g.v[j] += w
	g.drive[j] += w
}
