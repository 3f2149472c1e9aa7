package experiment

import (
	"context"
	"fmt"
	"io"
	"log"
	"math/rand"

	"github.com/san-kum/spikesim/internal/config"
	"github.com/san-kum/spikesim/internal/dynamo"
	"github.com/san-kum/spikesim/internal/snn"
	"github.com/san-kum/spikesim/internal/wta"
)

type Experiment struct {
	cfg        *config.Config
	registry   *Registry
	model      *SBC
	network    *snn.Network
	plan       Plan
	metrics    []dynamo.Metric
	randSource *rand.Rand
	logger     *log.Logger
}

// Result is everything a finished run produced.
type Result struct {
	Protocol     string
	Integrator   string
	Dt           float64
	Duration     float64
	Threshold    float64
	InputIdx     []int
	InputTimes   []float64
	OutputIdx    []int
	OutputTimes  []float64
	Times        []float64
	Potential    []float64
	Weight       []float64
	FinalWeights []float64
	History      *wta.History
	Metrics      map[string]float64
	StepsTaken   int
}

func New(cfg *config.Config, registry *Registry) *Experiment {
	return &Experiment{
		cfg:        cfg,
		registry:   registry,
		randSource: rand.New(rand.NewSource(cfg.Seed)),
		logger:     log.New(io.Discard, "", 0),
	}
}

func (e *Experiment) SetLogger(l *log.Logger) { e.logger = l }

// Setup builds the model and network and loads the protocol.
func (e *Experiment) Setup(metrics []dynamo.Metric) error {
	if err := e.cfg.Validate(); err != nil {
		return err
	}
	integ, err := e.registry.GetIntegrator(e.cfg.Integrator)
	if err != nil {
		return err
	}
	proto, err := e.registry.GetProtocol(e.cfg.Protocol)
	if err != nil {
		return err
	}

	model, err := NewSBC(e.cfg.Outputs, lifParams(e.cfg.Neuron), stdpParams(e.cfg.Synapse))
	if err != nil {
		return err
	}

	net := snn.NewNetwork(dynamo.Config{
		Dt:            e.cfg.Dt,
		Seed:          e.cfg.Seed,
		ValidateState: true,
	}, integ)
	net.SetLogger(e.logger)
	if err := net.Add(model.Objects()...); err != nil {
		return err
	}

	plan, err := proto.Prepare(model, e.cfg, e.randSource)
	if err != nil {
		return fmt.Errorf("%s: %w", proto.Name(), err)
	}
	for _, op := range plan.Ops {
		if err := net.Schedule(op); err != nil {
			return fmt.Errorf("%s: %w", proto.Name(), err)
		}
	}
	for _, m := range metrics {
		net.AddMetric(m)
	}

	e.model = model
	e.network = net
	e.plan = plan
	e.metrics = metrics
	e.logger.Printf("setup: protocol=%s integrator=%s outputs=%d duration=%.2fms",
		proto.Name(), e.cfg.Integrator, e.cfg.Outputs, plan.Duration)
	return nil
}

func (e *Experiment) Run(ctx context.Context) (*Result, error) {
	if e.network == nil {
		return nil, fmt.Errorf("experiment not setup")
	}
	if err := e.network.Run(ctx, e.plan.Duration); err != nil {
		return nil, err
	}
	return e.result(), nil
}

func (e *Experiment) result() *Result {
	m := e.model
	res := &Result{
		Protocol:     e.cfg.Protocol,
		Integrator:   e.cfg.Integrator,
		Dt:           e.cfg.Dt,
		Duration:     e.plan.Duration,
		Threshold:    e.cfg.Neuron.Threshold,
		InputIdx:     append([]int(nil), m.SpikesIn.I...),
		InputTimes:   append([]float64(nil), m.SpikesIn.T...),
		OutputIdx:    append([]int(nil), m.SpikesOut.I...),
		OutputTimes:  append([]float64(nil), m.SpikesOut.T...),
		Times:        append([]float64(nil), m.VMon.T...),
		Potential:    append([]float64(nil), m.VMon.Trace(0)...),
		Weight:       append([]float64(nil), m.WMon.Trace(0)...),
		FinalWeights: append([]float64(nil), m.Syn.Weights()...),
		Metrics:      make(map[string]float64, len(e.metrics)),
		StepsTaken:   e.network.CurrentStep(),
	}
	if e.plan.Trainer != nil {
		res.History = e.plan.Trainer.History()
	}
	for _, mt := range e.metrics {
		res.Metrics[mt.Name()] = mt.Value()
	}
	return res
}

// Network returns the underlying engine for adding observers or stepping
// it directly.
func (e *Experiment) Network() *snn.Network  { return e.network }
func (e *Experiment) Model() *SBC            { return e.model }
func (e *Experiment) Duration() float64      { return e.plan.Duration }
func (e *Experiment) Config() *config.Config { return e.cfg }

// Trainer is nil unless the protocol installed a learning rule.
func (e *Experiment) Trainer() *wta.Trainer { return e.plan.Trainer }

// Snapshot builds a Result from the current engine state, for views that
// step the network themselves.
func (e *Experiment) Snapshot() *Result {
	if e.network == nil {
		return nil
	}
	return e.result()
}

func lifParams(c config.NeuronConfig) snn.LIFParams {
	return snn.LIFParams{Tau: c.Tau, Threshold: c.Threshold, Reset: c.Reset, Rest: c.Rest}
}

func stdpParams(c config.SynapseConfig) snn.STDPParams {
	return snn.STDPParams{
		TauPre:  c.TauPre,
		TauPost: c.TauPost,
		Apre:    c.Apre,
		Apost:   c.Apost,
		WMin:    c.WMin,
		WMax:    c.WMax,
		WInit:   c.WInit,
	}
}
