package wta_test

import (
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/spikesim/internal/wta"
)

var _ = Describe("Rule", func() {
	var (
		rule     wta.Rule
		env      *fakeEnv
		baseline wta.State
	)

	BeforeEach(func() {
		rule = wta.Rule{Window: 20}
		baseline = wta.NewState([]float64{0.5, 0.5, 0.5})
		// plasticity during the window moved every weight
		env = newFakeEnv(0.7, 0.6, 0.9)
		env.v = []float64{0.3, 0.4, 0.2}
	})

	It("asks for the half-open window ending now", func() {
		_, _, err := rule.Step(baseline, env, 40)
		Expect(err).NotTo(HaveOccurred())
		Expect(env.gotT0).To(Equal(20.0))
		Expect(env.gotT1).To(Equal(40.0))
	})

	Context("when nobody spiked", func() {
		It("declares no winner and resets every potential", func() {
			next, rec, err := rule.Step(baseline, env, 20)
			Expect(err).NotTo(HaveOccurred())

			Expect(rec.Winner).To(Equal(wta.NoWinner))
			Expect(rec.HasWinner()).To(BeFalse())
			Expect(env.v).To(Equal([]float64{0, 0, 0}))

			Expect(env.w).To(Equal([]float64{0.7, 0.6, 0.9}))
			Expect(next.Previous).To(Equal([]float64{0.7, 0.6, 0.9}))
		})
	})

	Context("when several neurons spiked", func() {
		BeforeEach(func() {
			env.spike(0, 1.3)
			env.spike(2, 1.1)
		})

		It("picks the spiking neuron with the lowest pre-spike potential", func() {
			_, rec, err := rule.Step(baseline, env, 20)
			Expect(err).NotTo(HaveOccurred())
			Expect(rec.Winner).To(Equal(2))
			Expect(env.spiking).To(ContainElement(rec.Winner))
		})

		It("keeps the winner's weights and rolls back everyone else", func() {
			_, _, err := rule.Step(baseline, env, 20)
			Expect(err).NotTo(HaveOccurred())

			Expect(env.w[2]).To(Equal(0.9))
			Expect(env.w[0]).To(Equal(0.5))
			Expect(env.w[1]).To(Equal(0.5))
		})

		It("resets only the losers", func() {
			_, _, err := rule.Step(baseline, env, 20)
			Expect(err).NotTo(HaveOccurred())

			Expect(env.resets).To(ConsistOf(0, 1))
			Expect(env.v[2]).To(Equal(0.2))
		})

		It("records the snapshot taken before rollback", func() {
			next, rec, err := rule.Step(baseline, env, 20)
			Expect(err).NotTo(HaveOccurred())

			Expect(rec.Weights).To(Equal([]float64{0.7, 0.6, 0.9}))
			Expect(rec.Time).To(Equal(20.0))
			Expect(next.Previous).To(Equal([]float64{0.5, 0.5, 0.9}))

			env.w[0] = 42
			Expect(rec.Weights[0]).To(Equal(0.7))
			Expect(next.Previous[0]).To(Equal(0.5))
		})

		It("is idempotent for the winner", func() {
			_, first, err := rule.Step(baseline, env, 20)
			Expect(err).NotTo(HaveOccurred())
			after := env.w[2]

			_, second, err := rule.Step(baseline, env, 20)
			Expect(err).NotTo(HaveOccurred())
			Expect(second.Winner).To(Equal(first.Winner))
			Expect(env.w[2]).To(Equal(after))
		})
	})

	Context("when pre-spike potentials tie", func() {
		It("takes the lowest index", func() {
			env.spike(1, 1.2)
			env.spike(2, 1.2)

			_, rec, err := rule.Step(baseline, env, 20)
			Expect(err).NotTo(HaveOccurred())
			Expect(rec.Winner).To(Equal(1))
		})
	})

	It("rejects a baseline of the wrong size", func() {
		_, _, err := rule.Step(wta.NewState([]float64{1}), env, 20)
		Expect(errors.Is(err, wta.ErrStateMismatch)).To(BeTrue())
	})

	It("does not modify the caller's state", func() {
		env.spike(2, 1.0)
		next, _, err := rule.Step(baseline, env, 20)
		Expect(err).NotTo(HaveOccurred())

		next.Previous[0] = 99
		Expect(baseline.Previous[0]).To(Equal(0.5))
	})
})

var _ = Describe("Trainer", func() {
	It("threads the baseline and records every invocation", func() {
		env := newFakeEnv(1.0)
		tr, err := wta.NewTrainer(wta.Rule{Window: 20}, env)
		Expect(err).NotTo(HaveOccurred())

		Expect(tr.Invoke(0)).To(Succeed())

		env.w[0] = 0.8
		env.spike(0, 1.1)
		Expect(tr.Invoke(20)).To(Succeed())

		Expect(tr.History().Len()).To(Equal(2))
		Expect(tr.History().Winners()).To(Equal([]int{wta.NoWinner, 0}))
		Expect(tr.State().Previous).To(Equal([]float64{0.8}))
		Expect(tr.History().String()).To(Equal("[None, 0]"))
	})

	It("rejects a non-positive window", func() {
		_, err := wta.NewTrainer(wta.Rule{Window: 0}, newFakeEnv(1))
		Expect(errors.Is(err, wta.ErrInvalidWindow)).To(BeTrue())
	})
})
