package render

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/png"

	"github.com/vicanso/go-charts/v2"

	"currentscape/internal/currents"
)

const (
	summaryWidth  = 800
	summaryHeight = 600
)

var ErrNoShares = errors.New("render: no non-zero mean shares")

func pngOutput(opt *charts.ChartOption) {
	opt.Type = charts.ChartOutputPNG
}

// SharePie renders the time-averaged shares of one polarity as a pie chart.
// Zero shares are left out.
func SharePie(title string, shares []currents.MeanShare) ([]byte, error) {
	var values []float64
	var labels []string
	total := 0.0
	for _, s := range shares {
		v := s.Share
		if v < 0 {
			v = -v
		}
		if v == 0 {
			continue
		}
		values = append(values, v)
		labels = append(labels, s.Label)
		total += v
	}
	if len(values) == 0 {
		return nil, fmt.Errorf("%s: %w", title, ErrNoShares)
	}

	legend := make([]string, len(labels))
	for i, l := range labels {
		legend[i] = fmt.Sprintf("%s (%.1f%%)", l, values[i]/total*100)
	}

	p, err := charts.PieRender(
		values,
		charts.TitleTextOptionFunc(title),
		charts.LegendOptionFunc(charts.LegendOption{
			Data: legend,
			Top:  charts.PositionBottom,
		}),
		charts.ThemeOptionFunc(charts.ThemeLight),
		charts.WidthOptionFunc(summaryWidth),
		charts.HeightOptionFunc(summaryHeight),
		pngOutput,
	)
	if err != nil {
		return nil, err
	}
	return p.Bytes()
}

// Summary renders the mean positive and negative shares as two pies, one
// above the other.
func Summary(agg *currents.Aggregate) (*image.RGBA, error) {
	pies := []struct {
		title  string
		shares currents.Table
	}{
		{"Outward currents (mean share)", agg.SharePos},
		{"Inward currents (mean share)", agg.ShareNeg},
	}
	imgs := make([]image.Image, 0, len(pies))
	for _, p := range pies {
		buf, err := SharePie(p.title, currents.MeanShares(p.shares))
		if err != nil {
			return nil, err
		}
		img, err := png.Decode(bytes.NewReader(buf))
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", p.title, err)
		}
		imgs = append(imgs, img)
	}
	return stackImages(summaryWidth, imgs), nil
}
