package render

import (
	"errors"
	"fmt"
	"image"
	"image/color"

	"golang.org/x/image/draw"
)

var ErrGeometry = errors.New("render: incompatible panel geometry")

// Overlay merges top onto base so both share one plot area. The panels must
// agree on height and both axis ranges. Bands of top are drawn after base.
func Overlay(base, top Panel) (Panel, error) {
	if base.Height != top.Height || base.XRange != top.XRange || base.YRange != top.YRange {
		return Panel{}, fmt.Errorf("%w: cannot overlay %s on %s", ErrGeometry, top.Name, base.Name)
	}
	if len(base.X) != len(top.X) {
		return Panel{}, fmt.Errorf("%w: %s has %d points, %s %d", ErrGeometry, base.Name, len(base.X), top.Name, len(top.X))
	}
	out := base
	out.Name = base.Name + "+" + top.Name
	out.Lines = append(append([]Line(nil), base.Lines...), top.Lines...)
	out.Bands = append(append([]Band(nil), base.Bands...), top.Bands...)
	if out.YTitle == "" {
		out.YTitle = top.YTitle
	}
	if len(out.YTicks) == 0 {
		out.YTicks = top.YTicks
	}
	out.TimeAxis = base.TimeAxis || top.TimeAxis
	return out, nil
}

// Figure is a vertical stack of panels with no spacing between rows.
type Figure struct {
	Width int
	Rows  []Panel
}

// Compose stacks rows top to bottom. All rows must plot the same time range.
func Compose(rows ...Panel) (*Figure, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: no panels", ErrGeometry)
	}
	for _, r := range rows[1:] {
		if r.XRange != rows[0].XRange {
			return nil, fmt.Errorf("%w: %s spans %v, %s spans %v", ErrGeometry, r.Name, r.XRange, rows[0].Name, rows[0].XRange)
		}
	}
	return &Figure{Width: FigureWidth, Rows: rows}, nil
}

// Height is the pixel height of the composed figure.
func (f *Figure) Height() int {
	h := 0
	for _, r := range f.Rows {
		h += r.PixelHeight()
	}
	return h
}

// Draw rasterizes every row and stacks them into a single image.
func (f *Figure) Draw() (*image.RGBA, error) {
	imgs := make([]image.Image, 0, len(f.Rows))
	for _, r := range f.Rows {
		img, err := r.Image()
		if err != nil {
			return nil, err
		}
		imgs = append(imgs, img)
	}
	return stackImages(f.Width, imgs), nil
}

// stackImages places imgs one under the other on a white canvas. Images
// whose width differs from width are rescaled to it.
func stackImages(width int, imgs []image.Image) *image.RGBA {
	height := 0
	for _, img := range imgs {
		height += scaledHeight(img.Bounds(), width)
	}
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)

	y := 0
	for _, img := range imgs {
		b := img.Bounds()
		h := scaledHeight(b, width)
		rect := image.Rect(0, y, width, y+h)
		if b.Dx() == width {
			draw.Draw(dst, rect, img, b.Min, draw.Over)
		} else {
			draw.ApproxBiLinear.Scale(dst, rect, img, b, draw.Over, nil)
		}
		y += h
	}
	return dst
}

func scaledHeight(b image.Rectangle, width int) int {
	if b.Dx() == width || b.Dx() == 0 {
		return b.Dy()
	}
	return b.Dy() * width / b.Dx()
}
