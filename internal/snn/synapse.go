package snn

import (
	"fmt"
	"math"

	"github.com/san-kum/spikesim/internal/dynamo"
)

// STDPParams configures the pair-based trace rule:
//
//	on_pre:  v_post += w; apre += Apre;  w = clip(w + apost, WMin, WMax)
//	on_post: apost += Apost;             w = clip(w + apre,  WMin, WMax)
//
// Both traces decay exponentially and are only brought up to date when a
// pathway touches the synapse.
type STDPParams struct {
	TauPre  float64
	TauPost float64
	Apre    float64
	Apost   float64
	WMin    float64
	WMax    float64
	WInit   float64
}

func DefaultSTDP() STDPParams {
	return STDPParams{
		TauPre:  4.0,
		TauPost: 4.0,
		Apre:    0.01,
		Apost:   -0.01,
		WMin:    0.0,
		WMax:    1.0,
		WInit:   1.0,
	}
}

func (p STDPParams) Validate() error {
	if p.TauPre <= 0 || p.TauPost <= 0 {
		return fmt.Errorf("%w: trace time constants must be positive", dynamo.ErrParameterBounds)
	}
	if p.WMin > p.WMax {
		return fmt.Errorf("%w: w_min %v above w_max %v", dynamo.ErrParameterBounds, p.WMin, p.WMax)
	}
	return nil
}

// Synapses connects every source neuron to every target neuron. Synapse k
// runs from Source(k) to Target(k).
type Synapses struct {
	Name   string
	Params STDPParams

	source Spiker
	target *NeuronGroup

	i, j       []int
	w          []float64
	apre       []float64
	apost      []float64
	lastUpdate []float64

	outgoing [][]int
	incoming [][]int
}

func NewSynapses(name string, source Spiker, target *NeuronGroup, p STDPParams) *Synapses {
	ns, nt := source.Size(), target.Size()
	n := ns * nt
	s := &Synapses{
		Name:       name,
		Params:     p,
		source:     source,
		target:     target,
		i:          make([]int, 0, n),
		j:          make([]int, 0, n),
		w:          make([]float64, 0, n),
		apre:       make([]float64, n),
		apost:      make([]float64, n),
		lastUpdate: make([]float64, n),
		outgoing:   make([][]int, ns),
		incoming:   make([][]int, nt),
	}
	for pre := 0; pre < ns; pre++ {
		for post := 0; post < nt; post++ {
			k := len(s.i)
			s.i = append(s.i, pre)
			s.j = append(s.j, post)
			s.w = append(s.w, p.WInit)
			s.outgoing[pre] = append(s.outgoing[pre], k)
			s.incoming[post] = append(s.incoming[post], k)
		}
	}
	return s
}

func (s *Synapses) N() int { return len(s.w) }

func (s *Synapses) Source(k int) int { return s.i[k] }
func (s *Synapses) Target(k int) int { return s.j[k] }

// Weights is a mutable view of the weight vector.
func (s *Synapses) Weights() []float64 { return s.w }

func (s *Synapses) SetWeight(k int, w float64) error {
	if k < 0 || k >= len(s.w) {
		return fmt.Errorf("%w: synapse %d of %s", ErrIndexOutOfRange, k, s.Name)
	}
	s.w[k] = w
	return nil
}

// Incoming returns the indices of the synapses that target neuron j.
func (s *Synapses) Incoming(j int) []int { return s.incoming[j] }

// Traces returns the stored (not decayed) apre and apost of synapse k.
func (s *Synapses) Traces(k int) (apre, apost float64) { return s.apre[k], s.apost[k] }

func (s *Synapses) clip(w float64) float64 {
	return math.Max(s.Params.WMin, math.Min(s.Params.WMax, w))
}

func (s *Synapses) decay(k int, t float64) {
	elapsed := t - s.lastUpdate[k]
	if elapsed > 0 {
		s.apre[k] *= math.Exp(-elapsed / s.Params.TauPre)
		s.apost[k] *= math.Exp(-elapsed / s.Params.TauPost)
	}
	s.lastUpdate[k] = t
}

func (s *Synapses) onPre(t float64) {
	for _, pre := range s.source.Fired() {
		for _, k := range s.outgoing[pre] {
			s.decay(k, t)
			s.target.receive(s.j[k], s.w[k])
			s.apre[k] += s.Params.Apre
			s.w[k] = s.clip(s.w[k] + s.apost[k])
		}
	}
}

func (s *Synapses) onPost(t float64) {
	for _, post := range s.target.Fired() {
		for _, k := range s.incoming[post] {
			s.decay(k, t)
			s.apost[k] += s.Params.Apost
			s.w[k] = s.clip(s.w[k] + s.apre[k])
		}
	}
}
