package experiment

import (
	"context"
	"math"
	"math/rand"
	"strings"
	"testing"

	"github.com/san-kum/spikesim/internal/config"
	"github.com/san-kum/spikesim/internal/wta"
)

func runConfig(t *testing.T, cfg *config.Config) *Result {
	t.Helper()
	reg := NewRegistry()
	exp := New(cfg, reg)
	if err := exp.Setup(reg.DefaultMetrics(cfg.Neuron.Threshold)); err != nil {
		t.Fatalf("Setup() error: %v", err)
	}
	res, err := exp.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	return res
}

func TestDemoSingleOutputSpike(t *testing.T) {
	for _, integ := range []string{"exact", "euler", "rk4"} {
		t.Run(integ, func(t *testing.T) {
			cfg := config.DefaultConfig()
			cfg.Integrator = integ
			res := runConfig(t, cfg)

			if len(res.InputTimes) != 2 {
				t.Fatalf("expected 2 input spikes, got %v", res.InputTimes)
			}
			if len(res.OutputTimes) != 1 {
				t.Fatalf("expected exactly one output spike, got %v", res.OutputTimes)
			}
			if math.Abs(res.OutputTimes[0]-5.51) > 1e-9 {
				t.Errorf("expected output spike at 5.51ms, got %v", res.OutputTimes[0])
			}
			for _, w := range res.FinalWeights {
				if w < 0 || w > 1 {
					t.Errorf("weight %v outside [0, 1]", w)
				}
			}
			if res.History != nil {
				t.Error("demo should not carry a training history")
			}
			if res.StepsTaken != 5000 || len(res.Potential) != 5000 || len(res.Times) != 5000 {
				t.Errorf("expected 5000 samples, got steps=%d v=%d t=%d", res.StepsTaken, len(res.Potential), len(res.Times))
			}
		})
	}
}

func TestDemoWeakSynapse(t *testing.T) {
	res := runConfig(t, config.GetPreset("demo", "weak"))
	if len(res.OutputTimes) != 0 {
		t.Errorf("expected no output spikes, got %v", res.OutputTimes)
	}
	if res.Metrics["synaptic_drive"] <= 0 {
		t.Error("expected non-zero synaptic drive")
	}
}

func TestTrainingHistory(t *testing.T) {
	cfg := config.GetPreset("training", "default")
	res := runConfig(t, cfg)

	if res.History == nil {
		t.Fatal("expected a training history")
	}
	if res.History.Len() != 40 {
		t.Fatalf("expected 40 records, got %d", res.History.Len())
	}

	winners := res.History.Winners()
	if winners[0] != wta.NoWinner {
		t.Errorf("first window should have no winner, got %d", winners[0])
	}
	for i, w := range winners[1:] {
		if w != 0 {
			t.Errorf("record %d: expected winner 0, got %d", i+1, w)
		}
	}
	if !strings.HasPrefix(res.History.String(), "[None, 0, 0") {
		t.Errorf("unexpected history string %s", res.History.String())
	}

	if got := len(res.History.EpochWeights(cfg.WindowsPerEpoch())); got != 9 {
		t.Errorf("expected 9 epoch snapshots, got %d", got)
	}
	if len(res.OutputTimes) != 40 {
		t.Errorf("expected one output spike per pattern, got %d", len(res.OutputTimes))
	}
	for _, w := range res.FinalWeights {
		if w < 0 || w > 1 {
			t.Errorf("weight %v outside [0, 1]", w)
		}
	}
}

func TestTrainingRecordTimes(t *testing.T) {
	res := runConfig(t, config.GetPreset("training", "fast"))
	if res.History.Len() != 8 {
		t.Fatalf("expected 8 records, got %d", res.History.Len())
	}
	for i, r := range res.History.Records() {
		if math.Abs(r.Time-20*float64(i)) > 1e-9 {
			t.Errorf("record %d at %v, want %v", i, r.Time, 20*float64(i))
		}
	}
}

func TestNoWinnerRestoresRest(t *testing.T) {
	cfg := config.GetPreset("training", "fast")
	cfg.Neuron.Rest = 0.3

	reg := NewRegistry()
	exp := New(cfg, reg)
	if err := exp.Setup(nil); err != nil {
		t.Fatalf("Setup() error: %v", err)
	}
	if err := exp.Model().Output.SetV(0, 0.7); err != nil {
		t.Fatal(err)
	}
	if err := exp.Network().Step(); err != nil {
		t.Fatalf("Step() error: %v", err)
	}

	if w := exp.Trainer().History().Winners(); len(w) != 1 || w[0] != wta.NoWinner {
		t.Fatalf("expected a single no-winner record, got %v", w)
	}
	if v := exp.Model().Output.V()[0]; v != 0.3 {
		t.Errorf("potential after no-winner window = %v, want rest 0.3", v)
	}
}

func TestTrainingWide(t *testing.T) {
	cfg := config.GetPreset("training", "wide")
	res := runConfig(t, cfg)

	if len(res.FinalWeights) != 2 {
		t.Fatalf("expected 2 synapses, got %d", len(res.FinalWeights))
	}
	if res.History.Len() != 40 {
		t.Errorf("expected 40 records, got %d", res.History.Len())
	}
	for _, w := range res.History.Winners() {
		if w != wta.NoWinner && (w < 0 || w >= cfg.Outputs) {
			t.Errorf("winner %d out of range", w)
		}
	}
}

func TestPatternSchedule(t *testing.T) {
	tc := config.DefaultConfig().Training
	tc.Epochs = 2

	idx, times := PatternSchedule(tc, 0.01, nil)
	if len(idx) != 16 || len(times) != 16 {
		t.Fatalf("expected 16 spikes, got %d", len(times))
	}
	want := []float64{0.01, 5.5, 20.01, 28.7, 40.01, 45.6, 60.01, 68.4, 80.01}
	for i, w := range want {
		if math.Abs(times[i]-w) > 1e-9 {
			t.Errorf("spike %d at %v, want %v", i, times[i], w)
		}
	}

	tc.Jitter = 0.3
	_, a := PatternSchedule(tc, 0.01, rand.New(rand.NewSource(7)))
	_, b := PatternSchedule(tc, 0.01, rand.New(rand.NewSource(7)))
	for i := range a {
		if a[i] != b[i] {
			t.Fatal("jittered schedule should be reproducible for a seed")
		}
		if a[i] < 0 {
			t.Errorf("negative spike time %v", a[i])
		}
	}
}

func TestPatternScheduleWideJitter(t *testing.T) {
	const dt = 0.01
	tc := config.GetPreset("training", "jitter").Training
	tc.Jitter = 2

	for seed := int64(0); seed < 200; seed++ {
		_, times := PatternSchedule(tc, dt, rand.New(rand.NewSource(seed)))
		bins := make(map[int]bool, len(times))
		for _, ts := range times {
			if ts < 0 {
				t.Fatalf("seed %d: negative spike time %v", seed, ts)
			}
			b := int(math.Round(ts / dt))
			if bins[b] {
				t.Fatalf("seed %d: two spikes in bin %d", seed, b)
			}
			bins[b] = true
		}
	}

	for seed := int64(0); seed < 10; seed++ {
		cfg := config.GetPreset("training", "jitter")
		cfg.Training.Jitter = 2
		cfg.Training.Epochs = 2
		cfg.Seed = seed
		res := runConfig(t, cfg)
		if len(res.InputTimes) != 16 {
			t.Errorf("seed %d: expected 16 input spikes, got %d", seed, len(res.InputTimes))
		}
	}
}

func TestSetupErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{"unknown integrator", func(c *config.Config) { c.Integrator = "verlet" }},
		{"unknown protocol", func(c *config.Config) { c.Protocol = "replay" }},
		{"invalid config", func(c *config.Config) { c.Dt = -1 }},
		{"duplicate input spike", func(c *config.Config) {
			c.Input.Indices = []int{0, 0}
			c.Input.Times = []float64{1.0, 1.001}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.DefaultConfig()
			tt.mutate(cfg)
			reg := NewRegistry()
			exp := New(cfg, reg)
			err := exp.Setup(nil)
			if err == nil {
				_, err = exp.Run(context.Background())
			}
			if err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestRunWithoutSetup(t *testing.T) {
	exp := New(config.DefaultConfig(), NewRegistry())
	if _, err := exp.Run(context.Background()); err == nil {
		t.Error("expected error when running before setup")
	}
}

func TestRegistryLists(t *testing.T) {
	reg := NewRegistry()
	if got := strings.Join(reg.ListIntegrators(), ","); got != "euler,exact,rk4" {
		t.Errorf("ListIntegrators() = %s", got)
	}
	if got := strings.Join(reg.ListProtocols(), ","); got != "demo,training" {
		t.Errorf("ListProtocols() = %s", got)
	}
}
