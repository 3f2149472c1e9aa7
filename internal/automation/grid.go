package automation

import (
	"context"
	"fmt"
	"math"

	"github.com/san-kum/spikesim/internal/config"
	"github.com/san-kum/spikesim/internal/dynamo"
	"github.com/san-kum/spikesim/internal/experiment"
)

// Objective scores a finished run; lower is better.
type Objective func(*experiment.Result) float64

// MetricObjective minimizes a recorded metric.
func MetricObjective(name string) Objective {
	return func(r *experiment.Result) float64 {
		v, ok := r.Metrics[name]
		if !ok {
			return math.Inf(1)
		}
		return v
	}
}

type GridSearch struct {
	paramNames []string
	ranges     [][]float64
	workers    int
}

func NewGridSearch(params []string, ranges [][]float64, workers int) *GridSearch {
	return &GridSearch{paramNames: params, ranges: ranges, workers: workers}
}

// Points enumerates the cartesian product of the ranges.
func (g *GridSearch) Points() []map[string]float64 {
	points := []map[string]float64{{}}
	for d, name := range g.paramNames {
		next := make([]map[string]float64, 0, len(points)*len(g.ranges[d]))
		for _, p := range points {
			for _, v := range g.ranges[d] {
				q := make(map[string]float64, len(p)+1)
				for k, pv := range p {
					q[k] = pv
				}
				q[name] = v
				next = append(next, q)
			}
		}
		points = next
	}
	return points
}

// Search runs every grid point and returns the one with the lowest score.
// Points whose configuration is invalid score +Inf.
func (g *GridSearch) Search(ctx context.Context, base *config.Config, registry *experiment.Registry, objective Objective) (map[string]float64, float64, error) {
	if len(g.paramNames) != len(g.ranges) {
		return nil, 0, fmt.Errorf("grid: %d names for %d ranges", len(g.paramNames), len(g.ranges))
	}
	points := g.Points()

	ens := dynamo.NewEnsemble[float64](len(points), workers(g.workers), base.Seed)
	scores, err := ens.Run(ctx, func(ctx context.Context, idx int, _ int64) (float64, error) {
		cfg := base.Clone()
		for k, v := range points[idx] {
			if err := cfg.SetParam(k, v); err != nil {
				return 0, err
			}
		}
		if cfg.Validate() != nil {
			return math.Inf(1), nil
		}
		res, err := runOnce(ctx, cfg, registry)
		if err != nil {
			return math.Inf(1), nil
		}
		return objective(res), nil
	})
	if err != nil {
		return nil, 0, err
	}

	best := math.Inf(1)
	var bestParams map[string]float64
	for i, s := range scores {
		if s < best {
			best = s
			bestParams = points[i]
		}
	}
	return bestParams, best, nil
}
