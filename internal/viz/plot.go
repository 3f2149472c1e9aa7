package viz

import (
	"fmt"
	"math"

	"github.com/guptarohit/asciigraph"
)

// Downsample reduces values to at most width points, keeping the maximum of
// each bucket so spikes survive.
func Downsample(values []float64, width int) []float64 {
	if width < 1 || len(values) <= width {
		return values
	}
	out := make([]float64, width)
	for i := range out {
		lo := i * len(values) / width
		hi := (i + 1) * len(values) / width
		m := math.Inf(-1)
		for _, v := range values[lo:hi] {
			m = math.Max(m, v)
		}
		out[i] = m
	}
	return out
}

// PotentialPlot charts a membrane potential trace with the firing
// threshold as a second series.
func PotentialPlot(v []float64, threshold float64, width, height int, caption string) string {
	if len(v) == 0 {
		return ""
	}
	data := Downsample(v, width)
	thr := make([]float64, len(data))
	for i := range thr {
		thr[i] = threshold
	}
	return asciigraph.PlotMany([][]float64{data, thr},
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.LowerBound(0),
		asciigraph.UpperBound(threshold),
		asciigraph.Precision(2),
		asciigraph.SeriesColors(asciigraph.Cyan, asciigraph.Red),
		asciigraph.Caption(caption),
	)
}

func WeightPlot(w []float64, width, height int) string {
	if len(w) == 0 {
		return ""
	}
	return asciigraph.Plot(Downsample(w, width),
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Precision(4),
		asciigraph.Caption("synaptic weight w[0]"),
	)
}

// SpectrumPlot charts the lowest quarter of a power spectrum.
func SpectrumPlot(power []float64, maxFreq float64, width, height int) string {
	if len(power) < 4 {
		return ""
	}
	data := power[1 : len(power)/4]
	return asciigraph.Plot(data,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Caption(fmt.Sprintf("power spectrum of v[0], 0-%.0f Hz", maxFreq/4)),
	)
}
