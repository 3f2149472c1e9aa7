package dynamo

import (
	"context"

	"github.com/sourcegraph/conc/pool"
)

// Job runs one member of an ensemble. seed is derived from the ensemble's
// seed start and the member index.
type Job[R any] func(ctx context.Context, idx int, seed int64) (R, error)

type Ensemble[R any] struct {
	numRuns    int
	maxWorkers int
	seedStart  int64
}

func NewEnsemble[R any](numRuns, maxWorkers int, seedStart int64) *Ensemble[R] {
	if maxWorkers < 1 {
		maxWorkers = 1
	}
	return &Ensemble[R]{numRuns: numRuns, maxWorkers: maxWorkers, seedStart: seedStart}
}

// Run executes job for every member and returns the results in member order.
// The first error cancels the remaining members.
func (e *Ensemble[R]) Run(ctx context.Context, job Job[R]) ([]R, error) {
	results := make([]R, e.numRuns)

	p := pool.New().
		WithMaxGoroutines(e.maxWorkers).
		WithContext(ctx).
		WithCancelOnError()

	for i := 0; i < e.numRuns; i++ {
		idx := i
		p.Go(func(ctx context.Context) error {
			r, err := job(ctx, idx, e.seedStart+int64(idx))
			if err != nil {
				return err
			}
			results[idx] = r
			return nil
		})
	}

	if err := p.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
