package export

import (
	"fmt"
	"strings"

	"github.com/san-kum/spikesim/internal/viz"
)

const svgHeader = `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`

// CanvasToSVG draws every lit braille dot as a circle.
func CanvasToSVG(canvas *viz.Canvas, scale float64) string {
	if canvas == nil {
		return ""
	}

	w := int(float64(canvas.DotsX()) * scale)
	h := int(float64(canvas.DotsY()) * scale)

	var sb strings.Builder
	fmt.Fprintf(&sb, svgHeader, w, h, w, h)
	sb.WriteString("<g fill=\"#00ff00\">\n")

	r := scale * 0.4
	for y := 0; y < canvas.DotsY(); y++ {
		for x := 0; x < canvas.DotsX(); x++ {
			if !canvas.IsSet(x, y) {
				continue
			}
			fmt.Fprintf(&sb, "<circle cx=\"%.1f\" cy=\"%.1f\" r=\"%.1f\"/>\n",
				float64(x)*scale+scale/2, float64(y)*scale+scale/2, r)
		}
	}

	sb.WriteString("</g>\n</svg>")
	return sb.String()
}

// PotentialSVG plots a membrane potential trace sampled every dt ms, with
// the firing threshold as a dashed line.
func PotentialSVG(v []float64, dt, threshold float64, width, height int) string {
	if len(v) < 2 {
		return ""
	}

	lo, hi := threshold, threshold
	for _, x := range v {
		lo = min(lo, x)
		hi = max(hi, x)
	}
	span := hi - lo
	if span == 0 {
		span = 1
	}
	lo -= span * 0.1
	hi += span * 0.1
	span = hi - lo

	tEnd := float64(len(v)-1) * dt
	px := func(t float64) float64 { return t / tEnd * float64(width) }
	py := func(x float64) float64 { return float64(height) - (x-lo)/span*float64(height) }

	var sb strings.Builder
	fmt.Fprintf(&sb, svgHeader, width, height, width, height)

	ty := py(threshold)
	fmt.Fprintf(&sb, "<line x1=\"0\" y1=\"%.1f\" x2=\"%d\" y2=\"%.1f\" stroke=\"#ff4444\" stroke-dasharray=\"6,4\"/>\n",
		ty, width, ty)

	sb.WriteString("<path fill=\"none\" stroke=\"#00ccff\" stroke-width=\"1.5\" d=\"M")
	for i, x := range v {
		if i > 0 {
			sb.WriteString(" L")
		}
		fmt.Fprintf(&sb, "%.1f,%.1f", px(float64(i)*dt), py(x))
	}
	sb.WriteString("\"/>\n</svg>")
	return sb.String()
}

// RasterSVG draws one tick per spike, neuron n-1 at the top row.
func RasterSVG(indices []int, times []float64, n int, duration float64, width, height int) string {
	if n <= 0 || duration <= 0 {
		return ""
	}

	row := float64(height) / float64(n)

	var sb strings.Builder
	fmt.Fprintf(&sb, svgHeader, width, height, width, height)
	sb.WriteString("<g stroke=\"#00ff00\" stroke-width=\"2\">\n")
	for k, i := range indices {
		if i < 0 || i >= n || times[k] < 0 || times[k] > duration {
			continue
		}
		x := times[k] / duration * float64(width)
		y0 := float64(n-1-i) * row
		fmt.Fprintf(&sb, "<line x1=\"%.1f\" y1=\"%.1f\" x2=\"%.1f\" y2=\"%.1f\"/>\n",
			x, y0+row*0.15, x, y0+row*0.85)
	}
	sb.WriteString("</g>\n</svg>")
	return sb.String()
}
