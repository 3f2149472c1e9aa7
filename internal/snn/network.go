package snn

import (
	"context"
	"fmt"
	"io"
	"log"

	"github.com/san-kum/spikesim/internal/dynamo"
)

// Network runs the fixed per-timestep schedule over its objects.
type Network struct {
	cfg        dynamo.Config
	integrator dynamo.Integrator

	generators []*SpikeGenerator
	groups     []*NeuronGroup
	synapses   []*Synapses
	spikeMons  []*SpikeMonitor
	stateMons  []*StateMonitor
	ops        []*scheduledOp

	metrics   []dynamo.Metric
	observers []dynamo.Observer

	step   int
	logger *log.Logger
}

func NewNetwork(cfg dynamo.Config, integrator dynamo.Integrator) *Network {
	return &Network{
		cfg:        cfg,
		integrator: integrator,
		metrics:    make([]dynamo.Metric, 0),
		observers:  make([]dynamo.Observer, 0),
		logger:     log.New(io.Discard, "", 0),
	}
}

func (n *Network) SetLogger(l *log.Logger) { n.logger = l }

func (n *Network) AddMetric(m dynamo.Metric)     { n.metrics = append(n.metrics, m) }
func (n *Network) AddObserver(o dynamo.Observer) { n.observers = append(n.observers, o) }

// Add registers engine objects. Synapses and monitors must be added after
// the groups they reference.
func (n *Network) Add(objects ...any) error {
	for _, obj := range objects {
		switch o := obj.(type) {
		case *SpikeGenerator:
			n.generators = append(n.generators, o)
		case *NeuronGroup:
			n.groups = append(n.groups, o)
		case *Synapses:
			if !n.hasSpiker(o.source) || !n.hasSpiker(o.target) {
				return fmt.Errorf("%w: synapses %s", ErrNotInNetwork, o.Name)
			}
			n.synapses = append(n.synapses, o)
		case *SpikeMonitor:
			if !n.hasSpiker(o.source) {
				return fmt.Errorf("%w: monitor %s", ErrNotInNetwork, o.Name)
			}
			n.spikeMons = append(n.spikeMons, o)
		case *StateMonitor:
			n.stateMons = append(n.stateMons, o)
		case Operation:
			if err := n.Schedule(o); err != nil {
				return err
			}
		default:
			return fmt.Errorf("%w: %T", ErrUnknownObject, obj)
		}
	}
	return nil
}

func (n *Network) hasSpiker(s Spiker) bool {
	for _, g := range n.generators {
		if Spiker(g) == s {
			return true
		}
	}
	for _, g := range n.groups {
		if Spiker(g) == s {
			return true
		}
	}
	return false
}

// Schedule adds an operation; its interval must be a whole number of steps.
func (n *Network) Schedule(op Operation) error {
	if n.cfg.Dt <= 0 {
		return dynamo.ErrInvalidTimestep
	}
	so, err := op.bind(n.cfg.Dt)
	if err != nil {
		return err
	}
	n.ops = append(n.ops, so)
	return nil
}

func (n *Network) Dt() float64          { return n.cfg.Dt }
func (n *Network) CurrentStep() int     { return n.step }
func (n *Network) Time() float64        { return float64(n.step) * n.cfg.Dt }
func (n *Network) timeOf(k int) float64 { return float64(k) * n.cfg.Dt }

// Run advances the network by duration milliseconds. Successive calls
// continue from where the previous one stopped.
func (n *Network) Run(ctx context.Context, duration float64) error {
	cfg := n.cfg
	cfg.Duration = duration
	if err := cfg.Validate(); err != nil {
		return err
	}

	steps := cfg.Steps(duration)
	n.logger.Printf("run: %d steps of %.4fms from t=%.4fms", steps, cfg.Dt, n.Time())

	if n.step == 0 {
		for _, m := range n.metrics {
			m.Reset()
		}
	}

	for i := 0; i < steps; i++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err := n.Step(); err != nil {
			return err
		}
	}

	n.logger.Printf("run: stopped at t=%.4fms", n.Time())
	return nil
}

// Step executes exactly one timestep.
func (n *Network) Step() error {
	k := n.step
	t := n.timeOf(k)
	dt := n.cfg.Dt

	if err := n.runOps(WhenStart, k, t); err != nil {
		return err
	}
	for _, m := range n.stateMons {
		m.record(t)
	}

	for _, g := range n.groups {
		g.update(n.integrator, t, dt)
		if n.cfg.ValidateState && !g.v.IsValid() {
			return &dynamo.SimulationError{Step: k, Time: t, State: g.v.Clone(), Wrapped: dynamo.ErrInvalidState}
		}
	}

	for _, g := range n.generators {
		if err := g.emit(k, dt); err != nil {
			return &dynamo.SimulationError{Step: k, Time: t, Wrapped: err}
		}
	}
	for _, g := range n.groups {
		g.detect(t)
	}
	for _, m := range n.spikeMons {
		m.record(k, t, dt)
	}

	for _, s := range n.synapses {
		s.onPre(t)
	}
	for _, s := range n.synapses {
		s.onPost(t)
	}

	for _, g := range n.groups {
		g.reset()
	}

	if err := n.runOps(WhenEnd, k, t); err != nil {
		return err
	}

	if len(n.metrics) > 0 || len(n.observers) > 0 {
		x, u := n.observed()
		for _, m := range n.metrics {
			m.Observe(x, u, t)
		}
		for _, o := range n.observers {
			o.OnStep(x, u, t)
		}
	}

	n.step++
	return nil
}

func (n *Network) runOps(when When, k int, t float64) error {
	for _, op := range n.ops {
		if op.When != when || !op.due(k) {
			continue
		}
		if err := op.Fn(t); err != nil {
			return &dynamo.SimulationError{Step: k, Time: t, Wrapped: fmt.Errorf("operation %s: %w", op.Name, err)}
		}
	}
	return nil
}

// observed concatenates the potentials and synaptic drive of every group.
func (n *Network) observed() (dynamo.State, dynamo.Control) {
	if len(n.groups) == 1 {
		return n.groups[0].v, n.groups[0].drive
	}
	x := make(dynamo.State, 0)
	u := make(dynamo.Control, 0)
	for _, g := range n.groups {
		x = append(x, g.v...)
		u = append(u, g.drive...)
	}
	return x, u
}
