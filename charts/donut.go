package charts

import (
	"image/color"
	"io"

	"github.com/pkg/errors"
	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

const dpi = 96

// Slice is one donut segment.
type Slice struct {
	Label string
	Value float64
	Color color.Color
}

// Donut is a ring chart of counts.
type Donut struct {
	Title  string
	Slices []Slice
}

// Total sums the slice values.
func (d *Donut) Total() float64 {
	total := 0.0
	for _, s := range d.Slices {
		total += s.Value
	}
	return total
}

func (c *Chart) writeDonut(w io.Writer, f Format) error {
	var values []chart.Value
	for _, s := range c.Donut.Slices {
		if s.Value <= 0 {
			continue
		}
		values = append(values, chart.Value{
			Label: s.Label,
			Value: s.Value,
			Style: chart.Style{
				FillColor:   toDrawing(s.Color),
				StrokeColor: drawing.ColorWhite,
				StrokeWidth: 1,
				FontSize:    c.Style.FontSize,
			},
		})
	}
	if len(values) == 0 {
		return errors.Errorf("chart %s: no counts to draw", c.Kind)
	}

	size := int(min(c.Style.Width, c.Style.Height*2) * dpi)
	dc := chart.DonutChart{
		Title:  c.title(),
		Width:  size,
		Height: size,
		Values: values,
	}
	provider := chart.SVG
	if f == FormatPNG {
		provider = chart.PNG
	}
	return errors.Wrap(dc.Render(provider, w), "rendering donut")
}

func toDrawing(c color.Color) drawing.Color {
	if c == nil {
		return drawing.ColorBlack
	}
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return drawing.Color{R: n.R, G: n.G, B: n.B, A: n.A}
}
