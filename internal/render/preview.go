package render

import (
	"strings"

	"github.com/guptarohit/asciigraph"

	"currentscape/internal/currents"
)

const (
	previewWidth  = 72
	previewHeight = 8
)

// Preview draws the voltage trace and both current sums as ASCII charts for
// the terminal.
func Preview(v currents.Series, agg *currents.Aggregate, unit string) string {
	if len(v) == 0 {
		return "no samples to preview"
	}

	var b strings.Builder
	b.WriteString(asciigraph.Plot(finiteCopy(v),
		asciigraph.Height(previewHeight),
		asciigraph.Width(previewWidth),
		asciigraph.Caption("membrane potential (mV)"),
	))
	b.WriteString("\n\n")
	b.WriteString(asciigraph.PlotMany([][]float64{finiteCopy(agg.TotalPos), finiteCopy(agg.TotalNeg)},
		asciigraph.Height(2*previewHeight),
		asciigraph.Width(previewWidth),
		asciigraph.Caption("total outward / inward current ("+unit+")"),
		asciigraph.SeriesColors(
			asciigraph.Blue,
			asciigraph.Red,
		),
	))
	return b.String()
}

func finiteCopy(s []float64) []float64 {
	out := make([]float64, len(s))
	for i, v := range s {
		out[i] = finite(v)
	}
	return out
}
