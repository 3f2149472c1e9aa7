package analysis

import (
	"math"
	"sort"
)

// ISI returns the inter-spike intervals of an ascending spike train.
func ISI(times []float64) []float64 {
	if len(times) < 2 {
		return nil
	}
	out := make([]float64, len(times)-1)
	for i := 1; i < len(times); i++ {
		out[i-1] = times[i] - times[i-1]
	}
	return out
}

// FiringRate converts a spike count over duration ms into Hz.
func FiringRate(times []float64, duration float64) float64 {
	if duration <= 0 {
		return 0
	}
	return float64(len(times)) * 1000 / duration
}

// CV is the coefficient of variation of the intervals; 0 for a regular
// train, 1 for Poisson.
func CV(isi []float64) float64 {
	if len(isi) < 2 {
		return 0
	}
	mean, sd := meanStd(isi)
	if mean == 0 {
		return 0
	}
	return sd / mean
}

// Latencies pairs each output spike with the latest input spike at or
// before it. Output spikes with no preceding input are skipped.
func Latencies(inputs, outputs []float64) []float64 {
	in := append([]float64(nil), inputs...)
	sort.Float64s(in)

	out := make([]float64, 0, len(outputs))
	for _, t := range outputs {
		k := sort.Search(len(in), func(i int) bool { return in[i] > t })
		if k == 0 {
			continue
		}
		out = append(out, t-in[k-1])
	}
	return out
}

type TrainStats struct {
	InputSpikes  int
	OutputSpikes int
	InputRate    float64
	OutputRate   float64
	MeanISI      float64
	CV           float64
	MeanLatency  float64
	MinLatency   float64
	MaxLatency   float64
}

func Summarize(inputs, outputs []float64, duration float64) TrainStats {
	st := TrainStats{
		InputSpikes:  len(inputs),
		OutputSpikes: len(outputs),
		InputRate:    FiringRate(inputs, duration),
		OutputRate:   FiringRate(outputs, duration),
	}

	isi := ISI(outputs)
	if len(isi) > 0 {
		st.MeanISI, _ = meanStd(isi)
		st.CV = CV(isi)
	}

	lat := Latencies(inputs, outputs)
	if len(lat) > 0 {
		st.MeanLatency, _ = meanStd(lat)
		st.MinLatency, st.MaxLatency = math.Inf(1), math.Inf(-1)
		for _, l := range lat {
			st.MinLatency = math.Min(st.MinLatency, l)
			st.MaxLatency = math.Max(st.MaxLatency, l)
		}
	}
	return st
}

func meanStd(xs []float64) (mean, sd float64) {
	for _, x := range xs {
		mean += x
	}
	mean /= float64(len(xs))
	for _, x := range xs {
		sd += (x - mean) * (x - mean)
	}
	sd = math.Sqrt(sd / float64(len(xs)))
	return mean, sd
}
