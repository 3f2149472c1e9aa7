package snn

import (
	"fmt"
	"math"
	"sort"
)

// Spiker is anything whose spikes can drive synapses or be monitored.
type Spiker interface {
	Size() int
	// Fired returns the indices that spiked during the current timestep.
	Fired() []int
}

type scheduledSpike struct {
	index int
	time  float64
	step  int
}

// SpikeGenerator emits spikes at predefined times.
type SpikeGenerator struct {
	Name string

	n      int
	spikes []scheduledSpike
	cursor int
	dt     float64
	dirty  bool
	fired  []int
}

func NewSpikeGenerator(name string, n int) *SpikeGenerator {
	return &SpikeGenerator{Name: name, n: n}
}

func (g *SpikeGenerator) Size() int    { return g.n }
func (g *SpikeGenerator) Fired() []int { return g.fired }

// SetSpikes replaces the schedule. Times are in milliseconds and need not be
// sorted. Spikes whose timestep has already passed are never emitted.
func (g *SpikeGenerator) SetSpikes(indices []int, times []float64) error {
	if len(indices) != len(times) {
		return fmt.Errorf("%w: %d indices but %d times", ErrSpikeSchedule, len(indices), len(times))
	}

	spikes := make([]scheduledSpike, len(indices))
	for k, idx := range indices {
		if idx < 0 || idx >= g.n {
			return fmt.Errorf("%w: index %d outside [0, %d)", ErrSpikeSchedule, idx, g.n)
		}
		t := times[k]
		if math.IsNaN(t) || math.IsInf(t, 0) || t < 0 {
			return fmt.Errorf("%w: time %v for index %d", ErrSpikeSchedule, t, idx)
		}
		spikes[k] = scheduledSpike{index: idx, time: t}
	}

	sort.SliceStable(spikes, func(a, b int) bool {
		if spikes[a].time != spikes[b].time {
			return spikes[a].time < spikes[b].time
		}
		return spikes[a].index < spikes[b].index
	})

	g.spikes = spikes
	g.cursor = 0
	g.dirty = true
	return nil
}

// Spikes returns the schedule as parallel index/time slices in time order.
func (g *SpikeGenerator) Spikes() ([]int, []float64) {
	idx := make([]int, len(g.spikes))
	ts := make([]float64, len(g.spikes))
	for k, s := range g.spikes {
		idx[k] = s.index
		ts[k] = s.time
	}
	return idx, ts
}

// bind assigns timesteps to the schedule and positions the cursor at step.
func (g *SpikeGenerator) bind(dt float64, step int) error {
	seen := make(map[[2]int]struct{}, len(g.spikes))
	for k := range g.spikes {
		s := &g.spikes[k]
		s.step = int(math.Round(s.time / dt))
		key := [2]int{s.index, s.step}
		if _, dup := seen[key]; dup {
			return fmt.Errorf("%w: %s[%d] at t=%.4fms", ErrDuplicateSpike, g.Name, s.index, s.time)
		}
		seen[key] = struct{}{}
	}

	g.cursor = sort.Search(len(g.spikes), func(k int) bool { return g.spikes[k].step >= step })
	g.dt = dt
	g.dirty = false
	return nil
}

func (g *SpikeGenerator) emit(step int, dt float64) error {
	g.fired = g.fired[:0]
	if g.dirty || g.dt != dt {
		if err := g.bind(dt, step); err != nil {
			return err
		}
	}

	for g.cursor < len(g.spikes) && g.spikes[g.cursor].step == step {
		g.fired = append(g.fired, g.spikes[g.cursor].index)
		g.cursor++
	}
	return nil
}
