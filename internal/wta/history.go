package wta

import (
	"strconv"
	"strings"
)

type History struct {
	records []Record
}

func NewHistory() *History {
	return &History{records: make([]Record, 0)}
}

func (h *History) Append(r Record)   { h.records = append(h.records, r) }
func (h *History) Len() int          { return len(h.records) }
func (h *History) Records() []Record { return h.records }
func (h *History) At(i int) Record   { return h.records[i] }

// Winners returns one entry per record, NoWinner where nobody spiked.
func (h *History) Winners() []int {
	out := make([]int, len(h.records))
	for i, r := range h.records {
		out[i] = r.Winner
	}
	return out
}

// EpochWeights returns, for every epoch that is followed by another
// invocation, the snapshot taken by the first invocation after it ended.
func (h *History) EpochWeights(perEpoch int) [][]float64 {
	if perEpoch < 1 {
		return nil
	}
	out := make([][]float64, 0)
	for idx := perEpoch; idx < len(h.records); idx += perEpoch {
		out = append(out, h.records[idx].Weights)
	}
	return out
}

// WinRate returns the fraction of records with a winner.
func (h *History) WinRate() float64 {
	if len(h.records) == 0 {
		return 0
	}
	n := 0
	for _, r := range h.records {
		if r.HasWinner() {
			n++
		}
	}
	return float64(n) / float64(len(h.records))
}

// String formats the winner sequence, e.g. "[None, 0, 0]".
func (h *History) String() string {
	parts := make([]string, len(h.records))
	for i, r := range h.records {
		if r.HasWinner() {
			parts[i] = strconv.Itoa(r.Winner)
		} else {
			parts[i] = "None"
		}
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
