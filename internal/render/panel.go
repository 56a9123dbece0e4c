package render

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"math"

	"github.com/golang/freetype/truetype"
	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// Every row of the figure shares this horizontal geometry so the time axes line up.
const (
	PlotWidth   = 1000
	gutterLeft  = 64
	gutterRight = 16
	FigureWidth = gutterLeft + PlotWidth + gutterRight

	// timeGutter is the space below a panel that shows the time axis.
	timeGutter = 40
)

var (
	axisColor     = drawing.Color{R: 80, G: 80, B: 80, A: 255}
	baselineColor = drawing.Color{R: 200, G: 200, B: 200, A: 255}
)

// Line is a polyline over the panel's time axis.
type Line struct {
	Y     []float64
	Color drawing.Color
	Width float64
}

// Band is the filled region between Lower and Upper along the time axis.
type Band struct {
	Label string
	Lower []float64
	Upper []float64
	Color drawing.Color
}

// Panel is one layer of the currentscape: a plot area PlotWidth wide and
// Height tall, with y tick labels in the left gutter.
type Panel struct {
	Name     string
	Height   int
	X        []float64
	XRange   Range
	YRange   Range
	YTitle   string
	YTicks   []chart.Tick
	TimeAxis bool
	Lines    []Line
	Bands    []Band
}

// PixelHeight is the panel height including the time axis gutter, if any.
func (p Panel) PixelHeight() int {
	if p.TimeAxis {
		return p.Height + timeGutter
	}
	return p.Height
}

func (p Panel) bottomGutter() int {
	if p.TimeAxis {
		return timeGutter
	}
	return 0
}

// projection maps data coordinates into the chart canvas box.
type projection struct {
	box  chart.Box
	x, y Range
}

func (pr projection) px(x float64) int {
	return pr.box.Left + int(math.Round((x-pr.x.Min)/pr.x.Span()*float64(pr.box.Width())))
}

func (pr projection) py(y float64) int {
	y = pr.y.Clamp(y)
	return pr.box.Bottom - int(math.Round((y-pr.y.Min)/pr.y.Span()*float64(pr.box.Height())))
}

func (p Panel) chart() chart.Chart {
	return chart.Chart{
		Width:  FigureWidth,
		Height: p.PixelHeight(),
		Background: chart.Style{
			Padding: chart.Box{Top: 0, Left: gutterLeft, Right: gutterRight, Bottom: p.bottomGutter(), IsSet: true},
		},
		XAxis:          chart.XAxis{Style: chart.Hidden(), Range: &chart.ContinuousRange{Min: p.XRange.Min, Max: p.XRange.Max}},
		YAxis:          chart.YAxis{Style: chart.Hidden(), Range: &chart.ContinuousRange{Min: p.YRange.Min, Max: p.YRange.Max}},
		YAxisSecondary: chart.YAxis{Style: chart.Hidden()},
		Series:         p.series(),
		Elements:       []chart.Renderable{p.drawBands, p.drawAxes},
	}
}

// series turns the panel lines into go-chart series. A panel made only of
// bands still gets a zero baseline so the chart has something to plot.
func (p Panel) series() []chart.Series {
	lines := p.Lines
	if len(lines) == 0 {
		lines = []Line{{Y: make([]float64, len(p.X)), Color: baselineColor, Width: 1}}
	}
	out := make([]chart.Series, 0, len(lines))
	for _, l := range lines {
		ys := make([]float64, len(l.Y))
		for i, v := range l.Y {
			ys[i] = p.YRange.Clamp(v)
		}
		out = append(out, chart.ContinuousSeries{
			XValues: p.X,
			YValues: ys,
			Style:   chart.Style{StrokeColor: l.Color, StrokeWidth: l.Width},
		})
	}
	return out
}

func (p Panel) drawBands(r chart.Renderer, box chart.Box, _ chart.Style) {
	pr := projection{box: box, x: p.XRange, y: p.YRange}
	n := len(p.X)
	if n == 0 {
		return
	}
	for _, b := range p.Bands {
		r.SetFillColor(b.Color)
		r.SetStrokeWidth(0)
		r.MoveTo(pr.px(p.X[0]), pr.py(b.Upper[0]))
		for i := 1; i < n; i++ {
			r.LineTo(pr.px(p.X[i]), pr.py(b.Upper[i]))
		}
		for i := n - 1; i >= 0; i-- {
			r.LineTo(pr.px(p.X[i]), pr.py(b.Lower[i]))
		}
		r.Close()
		r.Fill()
	}
}

func (p Panel) drawAxes(r chart.Renderer, box chart.Box, defaults chart.Style) {
	if f := axisFont(defaults); f != nil {
		r.SetFont(f)
	}
	r.SetFontSize(9)
	r.SetFontColor(axisColor)
	r.SetStrokeColor(axisColor)
	r.SetStrokeWidth(1)

	pr := projection{box: box, x: p.XRange, y: p.YRange}

	// left spine and y ticks
	r.MoveTo(box.Left, box.Top)
	r.LineTo(box.Left, box.Bottom)
	r.Stroke()
	for _, t := range p.YTicks {
		y := pr.py(t.Value)
		r.MoveTo(box.Left-3, y)
		r.LineTo(box.Left, y)
		r.Stroke()
		tb := r.MeasureText(t.Label)
		r.Text(t.Label, box.Left-5-tb.Width(), labelBaseline(box, y, tb.Height()))
	}

	if p.YTitle != "" {
		tb := r.MeasureText(p.YTitle)
		r.SetTextRotation(3 * math.Pi / 2)
		r.Text(p.YTitle, 12, box.Top+box.Height()/2+tb.Width()/2)
		r.ClearTextRotation()
	}

	if !p.TimeAxis {
		return
	}
	r.MoveTo(box.Left, box.Bottom)
	r.LineTo(box.Right, box.Bottom)
	r.Stroke()
	for _, t := range ticksWithin(niceTicks(p.XRange.Min, p.XRange.Max, 10), p.XRange) {
		x := pr.px(t.Value)
		r.MoveTo(x, box.Bottom)
		r.LineTo(x, box.Bottom+3)
		r.Stroke()
		tb := r.MeasureText(t.Label)
		r.Text(t.Label, x-tb.Width()/2, box.Bottom+6+tb.Height())
	}
	const title = "Time"
	tb := r.MeasureText(title)
	r.Text(title, box.Left+box.Width()/2-tb.Width()/2, box.Bottom+timeGutter-4)
}

// labelBaseline centers a text of height h on y, shifted so the whole text
// stays within the box vertically.
func labelBaseline(box chart.Box, y, h int) int {
	base := y + h/2
	if base < box.Top+h {
		base = box.Top + h
	}
	if base > box.Bottom {
		base = box.Bottom
	}
	return base
}

func axisFont(defaults chart.Style) *truetype.Font {
	if defaults.Font != nil {
		return defaults.Font
	}
	f, err := chart.GetDefaultFont()
	if err != nil {
		return nil
	}
	return f
}

// Image rasterizes the panel.
func (p Panel) Image() (image.Image, error) {
	if !p.XRange.valid() || !p.YRange.valid() {
		return nil, fmt.Errorf("%w: panel %s has an empty range", ErrGeometry, p.Name)
	}
	ch := p.chart()
	var buf bytes.Buffer
	if err := ch.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("render %s: %w", p.Name, err)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", p.Name, err)
	}
	return img, nil
}
