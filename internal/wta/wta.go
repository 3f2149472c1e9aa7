package wta

import (
	"errors"
	"fmt"
	"math"
)

// NoWinner marks a window in which no output neuron spiked.
const NoWinner = -1

var (
	ErrStateMismatch = errors.New("wta: baseline length does not match weight vector")
	ErrInvalidWindow = errors.New("wta: window must be positive")
)

// SpikeSource reports the distinct output neurons that spiked in (t0, t1],
// in ascending index order.
type SpikeSource interface {
	SpikedIn(t0, t1 float64) []int
}

// PotentialRecorder returns the potential the engine recorded at neuron's
// most recent spike at or before t.
type PotentialRecorder interface {
	PreSpikePotential(neuron int, t float64) (float64, bool)
}

// Potentials gives write access to the output membrane potentials. Reset
// returns a neuron to its resting potential.
type Potentials interface {
	N() int
	Reset(neuron int)
}

// WeightStore exposes the synaptic weights and which of them feed each
// output neuron.
type WeightStore interface {
	Weights() []float64
	SetWeight(k int, w float64) error
	Incoming(neuron int) []int
}

// Env is everything a Step needs from the engine.
type Env interface {
	SpikeSource
	PotentialRecorder
	Potentials
	WeightStore
}

// State is the rollback target carried from one window to the next.
type State struct {
	Previous []float64
}

// NewState starts from a copy of the given weights.
func NewState(weights []float64) State {
	return State{Previous: clone(weights)}
}

// Record is one entry of the training history.
type Record struct {
	Time    float64
	Weights []float64 // snapshot taken before any rollback
	Winner  int
}

func (r Record) HasWinner() bool { return r.Winner != NoWinner }

type Rule struct {
	Window float64
}

func (r Rule) Validate() error {
	if r.Window <= 0 || math.IsNaN(r.Window) {
		return fmt.Errorf("%w: %v", ErrInvalidWindow, r.Window)
	}
	return nil
}

// Step judges the window ending at now and applies the rollback policy.
func (r Rule) Step(s State, env Env, now float64) (State, Record, error) {
	curr := clone(env.Weights())
	if len(s.Previous) != len(curr) {
		return s, Record{}, fmt.Errorf("%w: %d vs %d", ErrStateMismatch, len(s.Previous), len(curr))
	}

	rec := Record{Time: now, Weights: curr, Winner: NoWinner}

	spiking := env.SpikedIn(now-r.Window, now)
	if len(spiking) == 0 {
		for i := 0; i < env.N(); i++ {
			env.Reset(i)
		}
		return State{Previous: clone(curr)}, rec, nil
	}

	winner := selectWinner(env, spiking, now)
	rec.Winner = winner

	for post := 0; post < env.N(); post++ {
		src := s.Previous
		if post == winner {
			src = curr
		}
		for _, k := range env.Incoming(post) {
			if err := env.SetWeight(k, src[k]); err != nil {
				return s, rec, err
			}
		}
		if post != winner {
			env.Reset(post)
		}
	}

	return State{Previous: clone(env.Weights())}, rec, nil
}

// selectWinner picks the spiking neuron with the lowest pre-spike potential.
// Ties go to the lowest index.
func selectWinner(rec PotentialRecorder, spiking []int, now float64) int {
	winner := spiking[0]
	best := math.Inf(1)
	for _, i := range spiking {
		v, ok := rec.PreSpikePotential(i, now)
		if !ok {
			continue
		}
		if v < best {
			best = v
			winner = i
		}
	}
	return winner
}

func clone(w []float64) []float64 {
	c := make([]float64, len(w))
	copy(c, w)
	return c
}
