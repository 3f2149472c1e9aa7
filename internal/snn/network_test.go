package snn_test

import (
	"context"
	"errors"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/spikesim/internal/dynamo"
	"github.com/san-kum/spikesim/internal/integrators"
	"github.com/san-kum/spikesim/internal/snn"
)

type rig struct {
	net     *snn.Network
	input   *snn.SpikeGenerator
	output  *snn.NeuronGroup
	syn     *snn.Synapses
	inMon   *snn.SpikeMonitor
	outMon  *snn.SpikeMonitor
	vMon    *snn.StateMonitor
	outputs int
}

func newRig(outputs int, stdp snn.STDPParams) *rig {
	r := &rig{outputs: outputs}
	r.net = snn.NewNetwork(dynamo.DefaultConfig(), integrators.NewExact())
	r.input = snn.NewSpikeGenerator("input", 1)
	r.output = snn.NewNeuronGroup("output", outputs, snn.DefaultLIF())
	r.syn = snn.NewSynapses("syn", r.input, r.output, stdp)
	r.inMon = snn.NewSpikeMonitor("in", r.input)
	r.outMon = snn.NewSpikeMonitor("out", r.output)

	var err error
	r.vMon, err = snn.MonitorPotential("v", r.output, 0)
	Expect(err).NotTo(HaveOccurred())
	Expect(r.net.Add(r.input, r.output, r.syn, r.inMon, r.outMon, r.vMon)).To(Succeed())
	return r
}

var _ = Describe("Network", func() {
	ctx := context.Background()

	Context("with two input spikes at 0 and 5.5ms", func() {
		var r *rig

		BeforeEach(func() {
			r = newRig(1, snn.DefaultSTDP())
			Expect(r.input.SetSpikes([]int{0, 0}, []float64{0, 5.5})).To(Succeed())
		})

		It("fires the output exactly once", func() {
			Expect(r.net.Run(ctx, 50)).To(Succeed())

			Expect(r.inMon.T).To(HaveLen(2))
			Expect(r.inMon.T[0]).To(BeNumerically("~", 0.0, 1e-9))
			Expect(r.inMon.T[1]).To(BeNumerically("~", 5.5, 1e-9))

			Expect(r.outMon.T).To(HaveLen(1))
			Expect(r.outMon.T[0]).To(BeNumerically("~", 5.51, 1e-9))
		})

		It("keeps the weight inside the clipping bounds", func() {
			Expect(r.net.Run(ctx, 50)).To(Succeed())

			w := r.syn.Weights()[0]
			Expect(w).To(BeNumerically(">=", 0.0))
			Expect(w).To(BeNumerically("<=", 1.0))
		})

		It("records the suprathreshold potential before reset", func() {
			Expect(r.net.Run(ctx, 50)).To(Succeed())

			v, ok := r.output.PreSpikePotential(0, r.net.Time())
			Expect(ok).To(BeTrue())
			want := math.Exp(-5.5/3.0)*math.Exp(-0.01/3.0) + math.Exp(-0.01/3.0)
			Expect(v).To(BeNumerically("~", want, 1e-6))
			Expect(v).To(BeNumerically(">", 1.0))

			_, ok = r.output.PreSpikePotential(0, 5.0)
			Expect(ok).To(BeFalse())
		})

		It("samples the membrane potential at the start of every step", func() {
			Expect(r.net.Run(ctx, 50)).To(Succeed())

			Expect(r.vMon.T).To(HaveLen(5000))
			trace := r.vMon.Trace(0)
			Expect(trace[0]).To(Equal(0.0))
			Expect(trace[1]).To(BeNumerically("~", 1.0, 1e-12))
		})

		It("continues across successive runs", func() {
			Expect(r.net.Run(ctx, 25)).To(Succeed())
			Expect(r.net.Run(ctx, 25)).To(Succeed())
			Expect(r.net.CurrentStep()).To(Equal(5000))
			Expect(r.outMon.Len()).To(Equal(1))
		})
	})

	Context("with a weak synapse", func() {
		It("stays below threshold", func() {
			stdp := snn.DefaultSTDP()
			stdp.WInit = 0.6
			r := newRig(1, stdp)
			Expect(r.input.SetSpikes([]int{0, 0}, []float64{0, 5.5})).To(Succeed())
			Expect(r.net.Run(ctx, 50)).To(Succeed())

			Expect(r.outMon.Len()).To(BeZero())
			w := r.syn.Weights()[0]
			Expect(w).To(BeNumerically(">=", 0.0))
			Expect(w).To(BeNumerically("<=", 1.0))
		})
	})

	Context("operations", func() {
		It("fires every interval starting at t=0", func() {
			r := newRig(1, snn.DefaultSTDP())
			var seen []float64
			Expect(r.net.Schedule(snn.Operation{
				Name:     "tick",
				Interval: 20,
				When:     snn.WhenEnd,
				Fn: func(t float64) error {
					seen = append(seen, t)
					return nil
				},
			})).To(Succeed())

			Expect(r.net.Run(ctx, 100)).To(Succeed())
			Expect(seen).To(HaveLen(5))
			for i, t := range seen {
				Expect(t).To(BeNumerically("~", float64(i)*20, 1e-9))
			}
		})

		It("sees spikes of the current step in the end slot", func() {
			r := newRig(1, snn.DefaultSTDP())
			Expect(r.input.SetSpikes([]int{0, 0}, []float64{0, 5.5})).To(Succeed())

			var window []int
			Expect(r.net.Schedule(snn.Operation{
				Name:     "probe",
				Interval: 5.51,
				When:     snn.WhenEnd,
				Fn: func(t float64) error {
					if t > 0 {
						window = r.outMon.InWindow(t-5.51, t)
					}
					return nil
				},
			})).To(Succeed())

			Expect(r.net.Run(ctx, 5.52)).To(Succeed())
			Expect(window).To(Equal([]int{0}))
		})

		It("rejects intervals that are not a multiple of dt", func() {
			r := newRig(1, snn.DefaultSTDP())
			err := r.net.Schedule(snn.Operation{Name: "bad", Interval: 0.015, Fn: func(float64) error { return nil }})
			Expect(errors.Is(err, snn.ErrInvalidInterval)).To(BeTrue())
		})

		It("aborts the run when a callback fails", func() {
			r := newRig(1, snn.DefaultSTDP())
			boom := errors.New("boom")
			Expect(r.net.Schedule(snn.Operation{Name: "fail", Interval: 1, Fn: func(float64) error { return boom }})).To(Succeed())

			err := r.net.Run(ctx, 10)
			Expect(errors.Is(err, boom)).To(BeTrue())

			var simErr *dynamo.SimulationError
			Expect(errors.As(err, &simErr)).To(BeTrue())
			Expect(simErr.Step).To(Equal(0))
		})
	})

	Context("validation", func() {
		It("rejects non-positive durations", func() {
			r := newRig(1, snn.DefaultSTDP())
			Expect(errors.Is(r.net.Run(ctx, 0), dynamo.ErrInvalidDuration)).To(BeTrue())
		})

		It("stops when the context is cancelled", func() {
			r := newRig(1, snn.DefaultSTDP())
			cctx, cancel := context.WithCancel(ctx)
			cancel()
			Expect(r.net.Run(cctx, 10)).To(MatchError(context.Canceled))
		})

		It("rejects synapses whose endpoints are missing", func() {
			net := snn.NewNetwork(dynamo.DefaultConfig(), integrators.NewExact())
			in := snn.NewSpikeGenerator("in", 1)
			out := snn.NewNeuronGroup("out", 1, snn.DefaultLIF())
			err := net.Add(in, snn.NewSynapses("s", in, out, snn.DefaultSTDP()))
			Expect(errors.Is(err, snn.ErrNotInNetwork)).To(BeTrue())
		})

		It("schedules operations before a duration is known", func() {
			noop := snn.Operation{Name: "noop", Interval: 1, Fn: func(float64) error { return nil }}
			Expect(snn.NewNetwork(dynamo.Config{Dt: 0.01}, integrators.NewExact()).Schedule(noop)).To(Succeed())

			err := snn.NewNetwork(dynamo.Config{}, integrators.NewExact()).Schedule(noop)
			Expect(errors.Is(err, dynamo.ErrInvalidTimestep)).To(BeTrue())
		})

		It("rejects unknown objects", func() {
			net := snn.NewNetwork(dynamo.DefaultConfig(), integrators.NewExact())
			Expect(errors.Is(net.Add("nope"), snn.ErrUnknownObject)).To(BeTrue())
		})
	})
})
