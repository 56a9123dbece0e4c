package render

import (
	"fmt"
	"math"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"currentscape/internal/currents"
)

// Panel heights, top to bottom.
const (
	voltageHeight  = 50
	posSumHeight   = 50
	negSumHeight   = 200
	shareHeight    = 400
	shareTickCount = 5
)

var (
	voltageColor = drawing.Color{R: 0, G: 0, B: 0, A: 255}
	posSumColor  = drawing.Color{R: 31, G: 119, B: 180, A: 255}
	negSumColor  = drawing.Color{R: 214, G: 39, B: 40, A: 255}
)

// Options carries the presentation settings of a currentscape.
type Options struct {
	CurrentUnit string
	Voltage     Range
	Palette     Palette
}

func timeRange(t currents.Series) Range {
	lo, hi, ok := extent(t)
	if !ok {
		return Range{Min: 0, Max: 1}
	}
	return Range{Min: lo, Max: hi}.widen()
}

// VoltagePanel draws the membrane potential over a fixed y domain. Samples
// outside the domain are clipped by the chart only.
func VoltagePanel(t, v currents.Series, opt Options) Panel {
	yr := opt.Voltage.widen()
	return Panel{
		Name:   "voltage",
		Height: voltageHeight,
		X:      t,
		XRange: timeRange(t),
		YRange: yr,
		YTitle: "Vm",
		YTicks: []chart.Tick{{Value: yr.Min, Label: formatTick(yr.Min)}, {Value: yr.Max, Label: formatTick(yr.Max)}},
		Lines:  []Line{{Y: v, Color: voltageColor, Width: 1}},
	}
}

// PositiveSumPanel draws the summed outward currents as an area from zero.
func PositiveSumPanel(t, total currents.Series, opt Options) Panel {
	yr, ticks := zeroAnchored(total, 1, 2)
	return sumPanel("positive sum", posSumHeight, t, total, yr, ticks, "[+"+opt.CurrentUnit+"]", posSumColor)
}

// NegativeSumPanel draws the summed inward currents as an area down from
// zero and carries the figure's time axis.
func NegativeSumPanel(t, total currents.Series, opt Options) Panel {
	yr, ticks := zeroAnchored(total, -1, 5)
	p := sumPanel("negative sum", negSumHeight, t, total, yr, ticks, "[-"+opt.CurrentUnit+"]", negSumColor)
	p.TimeAxis = true
	return p
}

func sumPanel(name string, height int, t, total currents.Series, yr Range, ticks []chart.Tick, title string, c drawing.Color) Panel {
	fill := c
	fill.A = 170
	return Panel{
		Name:   name,
		Height: height,
		X:      t,
		XRange: timeRange(t),
		YRange: yr,
		YTitle: title,
		YTicks: ticks,
		Lines:  []Line{{Y: total, Color: c, Width: 1}},
		Bands:  []Band{{Label: name, Lower: make([]float64, len(total)), Upper: total, Color: fill}},
	}
}

// PositiveSharePanel stacks the positive shares upward from zero.
func PositiveSharePanel(t currents.Series, shares currents.Table, opt Options) Panel {
	p := sharePanel("positive shares", t, shares, opt.Palette)
	p.YTitle = "share"
	return p
}

// NegativeSharePanel stacks the sign-flipped negative shares downward from zero.
func NegativeSharePanel(t currents.Series, display currents.Table, opt Options) Panel {
	return sharePanel("negative shares", t, display, opt.Palette)
}

func sharePanel(name string, t currents.Series, shares currents.Table, pal Palette) Panel {
	yr := Range{Min: -1, Max: 1}
	return Panel{
		Name:   name,
		Height: shareHeight,
		X:      t,
		XRange: timeRange(t),
		YRange: yr,
		YTicks: ticksWithin(niceTicks(yr.Min, yr.Max, shareTickCount), yr),
		Bands:  StackBands(shares, pal),
	}
}

// StackBands stacks each current of the table on top of the previous ones,
// in table order. Non-negative values stack upward from zero and negative
// values downward, so a table of one sign fills one side. Non-finite
// values (from a zero total) contribute nothing.
func StackBands(tbl currents.Table, pal Palette) []Band {
	n := tbl.Len()
	up := make([]float64, n)
	down := make([]float64, n)
	bands := make([]Band, 0, len(tbl.Labels))
	for i, row := range tbl.Values {
		lower := make([]float64, n)
		upper := make([]float64, n)
		for j, v := range row {
			v = finite(v)
			if v >= 0 {
				lower[j] = up[j]
				up[j] += v
				upper[j] = up[j]
			} else {
				upper[j] = down[j]
				down[j] += v
				lower[j] = down[j]
			}
		}
		bands = append(bands, Band{
			Label: tbl.Labels[i],
			Lower: lower,
			Upper: upper,
			Color: pal.Color(tbl.Labels[i], i),
		})
	}
	return bands
}

func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// Currentscape builds the fixed figure: voltage, positive sum, the overlaid
// share stacks and the negative sum, stacked with no spacing.
func Currentscape(t, v currents.Series, agg *currents.Aggregate, opt Options) (*Figure, error) {
	if len(v) != len(t) || len(agg.TotalPos) != len(t) || len(agg.TotalNeg) != len(t) {
		return nil, fmt.Errorf("%w: %d timestamps, %d voltage samples, %d/%d sums",
			ErrGeometry, len(t), len(v), len(agg.TotalPos), len(agg.TotalNeg))
	}
	// both stacks share one panel, so unknown labels are numbered across tables
	labels := make([]string, 0, len(agg.DisplayNeg.Labels)+len(agg.SharePos.Labels))
	labels = append(labels, agg.DisplayNeg.Labels...)
	labels = append(labels, agg.SharePos.Labels...)
	opt.Palette = opt.Palette.WithFallbacks(labels)

	shares, err := Overlay(
		NegativeSharePanel(t, agg.DisplayNeg, opt),
		PositiveSharePanel(t, agg.SharePos, opt),
	)
	if err != nil {
		return nil, err
	}
	return Compose(
		VoltagePanel(t, v, opt),
		PositiveSumPanel(t, agg.TotalPos, opt),
		shares,
		NegativeSumPanel(t, agg.TotalNeg, opt),
	)
}
