package wta

import "testing"

func TestEpochWeights(t *testing.T) {
	h := NewHistory()
	for i := 0; i < 8; i++ {
		h.Append(Record{Time: float64(i) * 20, Weights: []float64{float64(i)}, Winner: i % 2})
	}

	got := h.EpochWeights(4)
	if len(got) != 1 {
		t.Fatalf("expected 1 complete epoch snapshot, got %d", len(got))
	}
	if got[0][0] != 4 {
		t.Errorf("expected snapshot from record 4, got %v", got[0])
	}

	if h.EpochWeights(0) != nil {
		t.Error("expected nil for perEpoch 0")
	}
}

func TestWinRate(t *testing.T) {
	h := NewHistory()
	if h.WinRate() != 0 {
		t.Error("empty history should have zero win rate")
	}
	h.Append(Record{Winner: NoWinner})
	h.Append(Record{Winner: 0})
	h.Append(Record{Winner: 1})
	h.Append(Record{Winner: NoWinner})

	if got := h.WinRate(); got != 0.5 {
		t.Errorf("WinRate() = %v, want 0.5", got)
	}
}
