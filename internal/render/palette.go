package render

import (
	"fmt"
	"strconv"
	"strings"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// currentColors is the fixed color table for the usual membrane and synaptic currents.
var currentColors = map[string]string{
	"na":   "#d62728",
	"nap":  "#ff9896",
	"k":    "#1f77b4",
	"km":   "#aec7e8",
	"ca":   "#2ca02c",
	"h":    "#9467bd",
	"pas":  "#7f7f7f",
	"cap":  "#bcbd22",
	"ampa": "#ff7f0e",
	"nmda": "#e377c2",
	"gaba": "#17becf",
	"syn":  "#8c564b",
}

// Palette maps a current label to its band color. It is total: labels missing
// from the table get the renderer's default series color for their index.
type Palette struct {
	colors map[string]drawing.Color
}

// NewPalette builds the fixed table with overrides (label -> "#rrggbb") on top.
func NewPalette(overrides map[string]string) (Palette, error) {
	p := Palette{colors: make(map[string]drawing.Color, len(currentColors)+len(overrides))}
	for label, hex := range currentColors {
		c, err := parseHex(hex)
		if err != nil {
			return Palette{}, err
		}
		p.colors[label] = c
	}
	for label, hex := range overrides {
		c, err := parseHex(hex)
		if err != nil {
			return Palette{}, fmt.Errorf("color for %q: %w", label, err)
		}
		p.colors[normalizeLabel(label)] = c
	}
	return p, nil
}

// Color returns the band color for label, falling back to the default series
// color at index when the label is unknown.
func (p Palette) Color(label string, index int) drawing.Color {
	if c, ok := p.Lookup(label); ok {
		return c
	}
	return chart.GetDefaultColor(index)
}

// WithFallbacks returns a copy of p in which every label unknown to p gets
// its own default series color, numbered in order of first appearance
// across labels. The same label keeps one color.
func (p Palette) WithFallbacks(labels []string) Palette {
	out := Palette{colors: make(map[string]drawing.Color, len(p.colors)+len(labels))}
	for k, c := range p.colors {
		out.colors[k] = c
	}
	next := 0
	for _, label := range labels {
		if _, ok := out.Lookup(label); ok {
			continue
		}
		out.colors[normalizeLabel(label)] = chart.GetDefaultColor(next)
		next++
	}
	return out
}

// Lookup reports the table color for label without falling back.
func (p Palette) Lookup(label string) (drawing.Color, bool) {
	key := normalizeLabel(label)
	if c, ok := p.colors[key]; ok {
		return c, true
	}
	// NEURON names currents ina, ik, ica...; accept both spellings.
	if strings.HasPrefix(key, "i") {
		if c, ok := p.colors[key[1:]]; ok {
			return c, true
		}
	}
	return drawing.Color{}, false
}

func normalizeLabel(label string) string {
	return strings.ToLower(strings.TrimSpace(label))
}

func parseHex(hex string) (drawing.Color, error) {
	h := strings.TrimPrefix(strings.TrimSpace(hex), "#")
	if len(h) == 3 {
		h = string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]})
	}
	if len(h) != 6 {
		return drawing.Color{}, fmt.Errorf("invalid hex color %q", hex)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return drawing.Color{}, fmt.Errorf("invalid hex color %q", hex)
	}
	return drawing.Color{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 255}, nil
}
