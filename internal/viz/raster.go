package viz

import (
	"fmt"
	"strings"
)

// Raster draws one row of cells per neuron with a tick at every spike in
// [t0, t1). Rows are labelled with the neuron index.
func Raster(indices []int, times []float64, n int, t0, t1 float64, width int) string {
	if n < 1 || width < 1 || t1 <= t0 {
		return ""
	}
	c := NewCanvas(width, n)
	span := t1 - t0
	for k, t := range times {
		i := indices[k]
		if i < 0 || i >= n || t < t0 || t >= t1 {
			continue
		}
		x := int((t - t0) / span * float64(c.DotsX()))
		c.VLine(x, i*4, i*4+3)
	}

	rows := strings.Split(strings.TrimRight(c.String(), "\n"), "\n")
	var b strings.Builder
	for i, row := range rows {
		fmt.Fprintf(&b, "%3d %s\n", i, row)
	}
	fmt.Fprintf(&b, "    %-*s%s\n", width-len(fmtMs(t1)), fmtMs(t0), fmtMs(t1))
	return b.String()
}

func fmtMs(t float64) string { return fmt.Sprintf("%.0fms", t) }
