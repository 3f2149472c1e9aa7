package snn

import (
	"errors"
	"testing"
)

func TestSetSpikesValidation(t *testing.T) {
	tests := []struct {
		name    string
		indices []int
		times   []float64
	}{
		{"length mismatch", []int{0, 0}, []float64{1}},
		{"negative index", []int{-1}, []float64{1}},
		{"index too large", []int{2}, []float64{1}},
		{"negative time", []int{0}, []float64{-0.5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewSpikeGenerator("in", 2)
			if err := g.SetSpikes(tt.indices, tt.times); !errors.Is(err, ErrSpikeSchedule) {
				t.Errorf("expected ErrSpikeSchedule, got %v", err)
			}
		})
	}
}

func TestSpikeGeneratorSortsAndEmits(t *testing.T) {
	g := NewSpikeGenerator("in", 2)
	if err := g.SetSpikes([]int{1, 0, 0}, []float64{0.03, 0.02, 0}); err != nil {
		t.Fatalf("SetSpikes: %v", err)
	}

	_, ts := g.Spikes()
	if ts[0] != 0 || ts[1] != 0.02 || ts[2] != 0.03 {
		t.Errorf("schedule not sorted: %v", ts)
	}

	var emitted [][]int
	for k := 0; k < 5; k++ {
		if err := g.emit(k, 0.01); err != nil {
			t.Fatalf("emit(%d): %v", k, err)
		}
		emitted = append(emitted, append([]int(nil), g.Fired()...))
	}

	want := [][]int{{0}, {}, {0}, {1}, {}}
	for k := range want {
		if len(emitted[k]) != len(want[k]) {
			t.Fatalf("step %d: got %v, want %v", k, emitted[k], want[k])
		}
		for i := range want[k] {
			if emitted[k][i] != want[k][i] {
				t.Errorf("step %d: got %v, want %v", k, emitted[k], want[k])
			}
		}
	}
}

func TestSpikeGeneratorDuplicateBin(t *testing.T) {
	g := NewSpikeGenerator("in", 1)
	if err := g.SetSpikes([]int{0, 0}, []float64{1.001, 1.002}); err != nil {
		t.Fatalf("SetSpikes: %v", err)
	}
	if err := g.emit(0, 0.01); !errors.Is(err, ErrDuplicateSpike) {
		t.Errorf("expected ErrDuplicateSpike, got %v", err)
	}
}

func TestSpikeGeneratorSkipsPastSpikes(t *testing.T) {
	g := NewSpikeGenerator("in", 1)
	if err := g.SetSpikes([]int{0, 0}, []float64{0.01, 0.05}); err != nil {
		t.Fatalf("SetSpikes: %v", err)
	}
	if err := g.emit(3, 0.01); err != nil {
		t.Fatalf("emit: %v", err)
	}
	if len(g.Fired()) != 0 {
		t.Errorf("unexpected spikes at step 3: %v", g.Fired())
	}
	if err := g.emit(5, 0.01); err != nil {
		t.Fatalf("emit: %v", err)
	}
	if len(g.Fired()) != 1 {
		t.Errorf("expected one spike at step 5, got %v", g.Fired())
	}
}
