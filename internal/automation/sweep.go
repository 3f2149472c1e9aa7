package automation

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"runtime"

	"github.com/san-kum/spikesim/internal/config"
	"github.com/san-kum/spikesim/internal/dynamo"
	"github.com/san-kum/spikesim/internal/experiment"
)

// ParameterSweep varies one parameter linearly over [Min, Max].
type ParameterSweep struct {
	Base     *config.Config
	Param    string
	Min      float64
	Max      float64
	NumSteps int
	Workers  int
}

type SweepResult struct {
	ParamValue   float64
	OutputSpikes int
	FinalWeights []float64
	WinRate      float64
	Metrics      map[string]float64
}

func (s *ParameterSweep) Values() []float64 {
	if s.NumSteps <= 1 {
		return []float64{s.Min}
	}
	step := (s.Max - s.Min) / float64(s.NumSteps-1)
	out := make([]float64, s.NumSteps)
	for i := range out {
		out[i] = s.Min + float64(i)*step
	}
	return out
}

// RunSweep runs every point concurrently and returns them in sweep order.
func RunSweep(ctx context.Context, sweep *ParameterSweep, registry *experiment.Registry) ([]SweepResult, error) {
	if sweep.Base == nil {
		return nil, fmt.Errorf("sweep needs a base config")
	}
	values := sweep.Values()

	ens := dynamo.NewEnsemble[SweepResult](len(values), workers(sweep.Workers), sweep.Base.Seed)
	return ens.Run(ctx, func(ctx context.Context, idx int, seed int64) (SweepResult, error) {
		cfg := sweep.Base.Clone()
		if err := cfg.SetParam(sweep.Param, values[idx]); err != nil {
			return SweepResult{}, err
		}

		res, err := runOnce(ctx, cfg, registry)
		if err != nil {
			return SweepResult{}, fmt.Errorf("%s=%.4f: %w", sweep.Param, values[idx], err)
		}
		return SweepResult{
			ParamValue:   values[idx],
			OutputSpikes: len(res.OutputTimes),
			FinalWeights: res.FinalWeights,
			WinRate:      winRate(res),
			Metrics:      res.Metrics,
		}, nil
	})
}

// MonteCarloConfig repeats a training run with independently jittered
// input schedules.
type MonteCarloConfig struct {
	Base      *config.Config
	Jitter    float64
	NumTrials int
	Workers   int
	Seed      int64
}

type MonteCarloResult struct {
	TrialID      int
	Seed         int64
	OutputSpikes int
	WinRate      float64
	FinalWeights []float64
	Consistent   bool // every judged window picked the same neuron
}

func RunMonteCarlo(ctx context.Context, cfg *MonteCarloConfig, registry *experiment.Registry) ([]MonteCarloResult, error) {
	if cfg.Base == nil {
		return nil, fmt.Errorf("monte carlo needs a base config")
	}

	seeds := rand.New(rand.NewSource(cfg.Seed))
	trialSeeds := make([]int64, cfg.NumTrials)
	for i := range trialSeeds {
		trialSeeds[i] = seeds.Int63()
	}

	ens := dynamo.NewEnsemble[MonteCarloResult](cfg.NumTrials, workers(cfg.Workers), cfg.Seed)
	return ens.Run(ctx, func(ctx context.Context, idx int, _ int64) (MonteCarloResult, error) {
		run := cfg.Base.Clone()
		run.Seed = trialSeeds[idx]
		run.Training.Jitter = cfg.Jitter

		res, err := runOnce(ctx, run, registry)
		if err != nil {
			return MonteCarloResult{}, fmt.Errorf("trial %d: %w", idx, err)
		}
		return MonteCarloResult{
			TrialID:      idx,
			Seed:         run.Seed,
			OutputSpikes: len(res.OutputTimes),
			WinRate:      winRate(res),
			FinalWeights: res.FinalWeights,
			Consistent:   consistent(res),
		}, nil
	})
}

// MonteCarloStats returns how many trials were consistent and the mean
// win rate across trials.
func MonteCarloStats(results []MonteCarloResult) (consistentCount int, meanWinRate float64) {
	if len(results) == 0 {
		return 0, 0
	}
	for _, r := range results {
		if r.Consistent {
			consistentCount++
		}
		meanWinRate += r.WinRate
	}
	return consistentCount, meanWinRate / float64(len(results))
}

func winRate(res *experiment.Result) float64 {
	if res.History == nil {
		return math.NaN()
	}
	return res.History.WinRate()
}

func consistent(res *experiment.Result) bool {
	if res.History == nil {
		return false
	}
	first := -1
	for _, w := range res.History.Winners() {
		if w < 0 {
			continue
		}
		if first < 0 {
			first = w
		} else if w != first {
			return false
		}
	}
	return first >= 0
}

func workers(n int) int {
	if n > 0 {
		return n
	}
	return runtime.NumCPU()
}
