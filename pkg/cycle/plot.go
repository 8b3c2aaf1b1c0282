package cycle

import (
	"fmt"
	"io"
	"strings"
)

// WritePlotSVG renders the speed profile and its acceleration trace as a
// two-panel SVG chart, the lightweight stand-in for a plotting toolkit.
func WritePlotSVG(w io.Writer, ts TimeSeries) error {
	const (
		width   = 960
		panelH  = 300
		margin  = 50
		gap     = 40
		totalH  = panelH*2 + gap + margin*2
		plotW   = width - margin*2
	)

	if ts.Len() < 2 {
		return fmt.Errorf("need at least 2 samples to plot, got %d", ts.Len())
	}

	accel := Gradient(ts.Speed, meanStep(ts.Time))

	var b strings.Builder
	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" font-family="sans-serif" font-size="12">`+"\n", width, totalH)
	fmt.Fprintf(&b, `<rect width="%d" height="%d" fill="white"/>`+"\n", width, totalH)

	writePanel(&b, ts.Time, ts.Speed, margin, margin, plotW, panelH, "steelblue", "Speed (m/s)")
	writePanel(&b, ts.Time, accel, margin, margin+panelH+gap, plotW, panelH, "seagreen", "Acceleration (m/s²)")

	b.WriteString("</svg>\n")
	_, err := io.WriteString(w, b.String())
	return err
}

func writePanel(b *strings.Builder, xs, ys []float64, x0, y0, w, h int, color, label string) {
	xMin, xMax := minMax(xs)
	yMin, yMax := minMax(ys)
	if yMax == yMin {
		yMax = yMin + 1
	}

	fmt.Fprintf(b, `<rect x="%d" y="%d" width="%d" height="%d" fill="none" stroke="#ccc"/>`+"\n", x0, y0, w, h)
	fmt.Fprintf(b, `<text x="%d" y="%d">%s</text>`+"\n", x0, y0-8, label)

	var pts strings.Builder
	for i := range xs {
		px := float64(x0) + (xs[i]-xMin)/(xMax-xMin)*float64(w)
		py := float64(y0+h) - (ys[i]-yMin)/(yMax-yMin)*float64(h)
		fmt.Fprintf(&pts, "%.1f,%.1f ", px, py)
	}
	fmt.Fprintf(b, `<polyline points="%s" fill="none" stroke="%s" stroke-width="1.5"/>`+"\n",
		strings.TrimSpace(pts.String()), color)

	fmt.Fprintf(b, `<text x="%d" y="%d" text-anchor="end">%.1fs</text>`+"\n", x0+w, y0+h+16, xMax)
	fmt.Fprintf(b, `<text x="%d" y="%d">%.2f</text>`+"\n", x0+4, y0+14, yMax)
	fmt.Fprintf(b, `<text x="%d" y="%d">%.2f</text>`+"\n", x0+4, y0+h-4, yMin)
}

func minMax(vs []float64) (float64, float64) {
	lo, hi := vs[0], vs[0]
	for _, v := range vs {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	return lo, hi
}
