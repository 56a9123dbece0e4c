package render

import (
	"fmt"
	"math"
	"strings"

	chart "github.com/wcharczuk/go-chart/v2"
)

// Range is a closed data interval on one axis.
type Range struct {
	Min, Max float64
}

func (r Range) Span() float64 { return r.Max - r.Min }

// valid reports whether r can be projected onto pixels.
func (r Range) valid() bool {
	return !math.IsNaN(r.Min) && !math.IsNaN(r.Max) && !math.IsInf(r.Span(), 0) && r.Span() > 0
}

// widen returns a usable range for degenerate input such as a single timestamp.
func (r Range) widen() Range {
	if r.valid() {
		return r
	}
	if math.IsNaN(r.Min) || math.IsInf(r.Min, 0) {
		return Range{Min: 0, Max: 1}
	}
	return Range{Min: r.Min - 0.5, Max: r.Min + 0.5}
}

// Clamp limits v to r. Non-finite values are drawn at 0 (then clamped).
func (r Range) Clamp(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		v = 0
	}
	return math.Max(r.Min, math.Min(r.Max, v))
}

// extent returns the finite min and max of s, or false when there are none.
func extent(s []float64) (float64, float64, bool) {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	return lo, hi, !math.IsInf(lo, 1)
}

// niceStep picks a 1/2/2.5/5 x 10^k step giving roughly n ticks over span.
func niceStep(span float64, n int) float64 {
	if n < 2 {
		n = 2
	}
	mag := math.Pow(10, math.Floor(math.Log10(span/float64(n-1))))
	best, bestScore := mag, math.MaxFloat64
	for _, c := range []float64{1, 2, 2.5, 5, 10} {
		step := c * mag
		count := math.Ceil(span / step)
		if count < 2 {
			count = 2
		}
		if score := math.Abs(count - float64(n)); score < bestScore {
			best, bestScore = step, score
		}
	}
	return best
}

// niceTicks returns ticks at nice increments covering [min, max]; the first and
// last tick may fall outside the interval.
func niceTicks(min, max float64, n int) []chart.Tick {
	if math.IsNaN(min) || math.IsNaN(max) {
		return nil
	}
	if max <= min {
		max = min + 1
	}
	step := niceStep(max-min, n)
	start := math.Floor(min/step) * step
	end := math.Ceil(max/step) * step
	var ticks []chart.Tick
	for i := 0; ; i++ {
		v := start + float64(i)*step
		if v > end+step/2 || i > n+2 {
			break
		}
		// snap accumulated float error like 0.30000000000000004
		v = math.Round(v/step) * step
		ticks = append(ticks, chart.Tick{Value: v, Label: formatTick(v)})
	}
	return ticks
}

// ticksWithin keeps the ticks that lie inside r.
func ticksWithin(ticks []chart.Tick, r Range) []chart.Tick {
	tol := r.Span() * 1e-9
	out := ticks[:0:0]
	for _, t := range ticks {
		if t.Value >= r.Min-tol && t.Value <= r.Max+tol {
			out = append(out, t)
		}
	}
	return out
}

// zeroAnchored returns a range from 0 to a nice bound past the data extremum,
// on the side given by sign, with matching ticks.
func zeroAnchored(s []float64, sign float64, n int) (Range, []chart.Tick) {
	bound := 0.0
	if lo, hi, ok := extent(s); ok {
		if sign < 0 {
			bound = lo
		} else {
			bound = hi
		}
	}
	if bound*sign <= 0 {
		bound = sign
	}
	var ticks []chart.Tick
	if sign < 0 {
		ticks = niceTicks(bound, 0, n)
		return Range{Min: ticks[0].Value, Max: 0}, ticks
	}
	ticks = niceTicks(0, bound, n)
	return Range{Min: 0, Max: ticks[len(ticks)-1].Value}, ticks
}

func formatTick(v float64) string {
	if v == 0 {
		return "0"
	}
	av := math.Abs(v)
	switch {
	case av >= 100:
		return fmt.Sprintf("%.0f", v)
	case av >= 10:
		return trimZeros(fmt.Sprintf("%.1f", v))
	case av >= 1:
		return trimZeros(fmt.Sprintf("%.2f", v))
	default:
		return trimZeros(fmt.Sprintf("%.3g", v))
	}
}

func trimZeros(s string) string {
	if !strings.Contains(s, ".") || strings.ContainsAny(s, "eE") {
		return s
	}
	for len(s) > 1 && s[len(s)-1] == '0' {
		s = s[:len(s)-1]
	}
	if s[len(s)-1] == '.' {
		s = s[:len(s)-1]
	}
	return s
}
