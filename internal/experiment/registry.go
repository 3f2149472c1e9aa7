package experiment

import (
	"fmt"
	"sort"

	"github.com/san-kum/spikesim/internal/dynamo"
	"github.com/san-kum/spikesim/internal/integrators"
	"github.com/san-kum/spikesim/internal/metrics"
)

type Registry struct {
	integrators map[string]func() dynamo.Integrator
	protocols   map[string]func() Protocol
}

func NewRegistry() *Registry {
	r := &Registry{
		integrators: make(map[string]func() dynamo.Integrator),
		protocols:   make(map[string]func() Protocol),
	}

	r.integrators["exact"] = func() dynamo.Integrator { return integrators.NewExact() }
	r.integrators["euler"] = func() dynamo.Integrator { return integrators.NewEuler() }
	r.integrators["rk4"] = func() dynamo.Integrator { return integrators.NewRK4() }

	r.protocols["demo"] = func() Protocol { return Demo{} }
	r.protocols["training"] = func() Protocol { return Training{} }

	return r
}

func (r *Registry) GetIntegrator(name string) (dynamo.Integrator, error) {
	fn, ok := r.integrators[name]
	if !ok {
		return nil, fmt.Errorf("unknown integrator: %s", name)
	}
	return fn(), nil
}

func (r *Registry) GetProtocol(name string) (Protocol, error) {
	fn, ok := r.protocols[name]
	if !ok {
		return nil, fmt.Errorf("unknown protocol: %s", name)
	}
	return fn(), nil
}

func (r *Registry) ListIntegrators() []string { return sortedKeys(r.integrators) }
func (r *Registry) ListProtocols() []string   { return sortedKeys(r.protocols) }

func sortedKeys[V any](m map[string]V) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultMetrics returns a fresh metric set for a run.
func (r *Registry) DefaultMetrics(threshold float64) []dynamo.Metric {
	return []dynamo.Metric{
		metrics.NewPeakPotential(),
		metrics.NewMeanPotential(),
		metrics.NewQuiescence(threshold / 2),
		metrics.NewSynapticDrive(),
	}
}
