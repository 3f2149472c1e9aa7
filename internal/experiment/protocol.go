package experiment

import (
	"math"
	"math/rand"

	"github.com/san-kum/spikesim/internal/config"
	"github.com/san-kum/spikesim/internal/snn"
	"github.com/san-kum/spikesim/internal/wta"
)

// Protocol loads a stimulus into the model and says how long to run it.
type Protocol interface {
	Name() string
	Prepare(m *SBC, cfg *config.Config, rng *rand.Rand) (Plan, error)
}

type Plan struct {
	Duration float64
	Ops      []snn.Operation
	Trainer  *wta.Trainer
}

// Demo presents the configured input schedule once, with no learning rule.
type Demo struct{}

func (Demo) Name() string { return "demo" }

func (Demo) Prepare(m *SBC, cfg *config.Config, rng *rand.Rand) (Plan, error) {
	if err := m.Input.SetSpikes(cfg.Input.Indices, cfg.Input.Times); err != nil {
		return Plan{}, err
	}
	return Plan{Duration: cfg.Duration}, nil
}

// Training repeats every pattern for each epoch and applies the WTA rule
// at the end of every window.
type Training struct{}

func (Training) Name() string { return "training" }

func (Training) Prepare(m *SBC, cfg *config.Config, rng *rand.Rand) (Plan, error) {
	indices, times := PatternSchedule(cfg.Training, cfg.Dt, rng)
	if err := m.Input.SetSpikes(indices, times); err != nil {
		return Plan{}, err
	}

	trainer, err := wta.NewTrainer(wta.Rule{Window: cfg.Training.Window}, m.Env())
	if err != nil {
		return Plan{}, err
	}

	op := snn.Operation{
		Name:     "wta",
		Interval: cfg.Training.Window,
		When:     snn.WhenEnd,
		Fn:       trainer.Invoke,
	}
	return Plan{
		Duration: cfg.EpochDuration() * float64(cfg.Training.Epochs),
		Ops:      []snn.Operation{op},
		Trainer:  trainer,
	}, nil
}

// PatternSchedule lays the patterns end to end for every epoch. Offsets
// get gaussian jitter when configured; jittered times never go negative.
// A spike whose dt bin is already taken moves forward one bin at a time
// until it lands in a free one.
func PatternSchedule(tc config.TrainingConfig, dt float64, rng *rand.Rand) ([]int, []float64) {
	indices := make([]int, 0)
	times := make([]float64, 0)
	used := make(map[int]bool)
	start := 0.0
	for e := 0; e < tc.Epochs; e++ {
		for _, pat := range tc.Patterns {
			for _, offset := range pat {
				s := offset
				if tc.Jitter > 0 && rng != nil {
					s += rng.NormFloat64() * tc.Jitter
				}
				if s < 0 {
					s = 0
				}
				t := start + s
				bin := int(math.Round(t / dt))
				if used[bin] {
					for used[bin] {
						bin++
					}
					t = float64(bin) * dt
				}
				used[bin] = true
				indices = append(indices, 0)
				times = append(times, t)
			}
			start += tc.PatternDuration
		}
	}
	return indices, times
}
