package charts

import (
	"image/color"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/wcharczuk/go-chart/v2/drawing"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotutil"

	"fqc_viz_go/transform"
)

// Legend positions.
var LegendPositions = []string{"top-right", "top-left", "bottom-right", "bottom-left", "none"}

// Series palettes.
var Palettes = []string{"default", "soft", "dark"}

// Heatmap color scales.
var Scales = []string{"blue-red", "kindlmann", "black-body"}

// Style is the bounded set of appearance overrides. Width and Height are in inches; Height
// applies per facet row.
type Style struct {
	Width     float64 `koanf:"width" json:"width"`
	Height    float64 `koanf:"height" json:"height"`
	Legend    string  `koanf:"legend" json:"legend"`
	FontSize  float64 `koanf:"font_size" json:"font_size"`
	LineWidth float64 `koanf:"line_width" json:"line_width"`
	BandAlpha float64 `koanf:"band_alpha" json:"band_alpha"`
	Palette   string  `koanf:"palette" json:"palette"`
	Grid      bool    `koanf:"grid" json:"grid"`
	Title     string  `koanf:"title" json:"title"`
}

// DefaultStyle matches the 10x4 inch figures of the FastQC mimic reports.
func DefaultStyle() Style {
	return Style{
		Width:     10,
		Height:    4,
		Legend:    "top-right",
		FontSize:  10,
		LineWidth: 1.5,
		BandAlpha: 0.25,
		Palette:   "default",
		Grid:      true,
	}
}

// Validate checks every field against its allowed values.
func (s Style) Validate() error {
	switch {
	case s.Width <= 0 || s.Height <= 0:
		return errors.Errorf("style: width and height must be positive, got %vx%v", s.Width, s.Height)
	case s.FontSize <= 0:
		return errors.Errorf("style: font_size must be positive, got %v", s.FontSize)
	case s.LineWidth < 0:
		return errors.Errorf("style: line_width must not be negative, got %v", s.LineWidth)
	case s.BandAlpha < 0 || s.BandAlpha > 1:
		return errors.Errorf("style: band_alpha must be within [0, 1], got %v", s.BandAlpha)
	}
	if err := transform.ValidateChoice("legend", s.Legend, LegendPositions...); err != nil {
		return err
	}
	return transform.ValidateChoice("palette", s.Palette, Palettes...)
}

// SeriesColor returns color i of the selected palette.
func (s Style) SeriesColor(i int) color.Color {
	colors := plotutil.DefaultColors
	switch s.Palette {
	case "soft":
		colors = plotutil.SoftColors
	case "dark":
		colors = plotutil.DarkColors
	}
	return colors[i%len(colors)]
}

// Colors is the color scheme: status verdict colors as "#rrggbb" and the heatmap scale.
type Colors struct {
	Pass    string `koanf:"pass" json:"pass"`
	Warn    string `koanf:"warn" json:"warn"`
	Fail    string `koanf:"fail" json:"fail"`
	Heatmap string `koanf:"heatmap" json:"heatmap"`
}

func DefaultColors() Colors {
	return Colors{Pass: "#009E73", Warn: "#E69F00", Fail: "#D55E00", Heatmap: "blue-red"}
}

// Validate parses every color once.
func (c Colors) Validate() error {
	for _, hex := range []string{c.Pass, c.Warn, c.Fail} {
		if _, err := ParseHex(hex); err != nil {
			return err
		}
	}
	if c.Heatmap == "" {
		return nil // NewColorScale falls back to blue-red
	}
	return transform.ValidateChoice("heatmap scale", c.Heatmap, Scales...)
}

// Verdict returns the color of a status verdict.
func (c Colors) Verdict(v transform.Verdict) color.Color {
	hex := c.Pass
	switch v {
	case transform.Warn:
		hex = c.Warn
	case transform.Fail:
		hex = c.Fail
	}
	col, err := ParseHex(hex)
	if err != nil {
		return color.Gray{Y: 128}
	}
	return col
}

// ParseHex parses "#rrggbb" or "rrggbb".
func ParseHex(hex string) (color.Color, error) {
	h := strings.TrimPrefix(strings.TrimSpace(hex), "#")
	if len(h) != 6 {
		return nil, errors.Errorf("invalid color %q: want #rrggbb", hex)
	}
	if _, err := strconv.ParseUint(h, 16, 32); err != nil {
		return nil, errors.Errorf("invalid color %q: want #rrggbb", hex)
	}
	return drawing.ColorFromHex(h), nil
}

// WithAlpha returns c with its alpha replaced, non-premultiplied.
func WithAlpha(c color.Color, alpha float64) color.Color {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	n.A = uint8(alpha*255 + 0.5)
	return n
}

// ColorScale maps values onto a continuous heatmap palette.
type ColorScale struct {
	cmap palette.ColorMap
}

// NewColorScale builds a named scale over [min, max].
func NewColorScale(name string, min, max float64) (*ColorScale, error) {
	var cmap palette.ColorMap
	switch name {
	case "blue-red", "":
		cmap = moreland.SmoothBlueRed()
	case "kindlmann":
		cmap = moreland.Kindlmann()
	case "black-body":
		cmap = moreland.BlackBody()
	default:
		return nil, &transform.InvalidOptionError{Option: "heatmap scale", Value: name, Allowed: Scales}
	}
	if !(min < max) {
		max = min + 1
	}
	cmap.SetMin(min)
	cmap.SetMax(max)
	return &ColorScale{cmap: cmap}, nil
}

func (s *ColorScale) Min() float64 { return s.cmap.Min() }
func (s *ColorScale) Max() float64 { return s.cmap.Max() }

// At returns the color of v, clamped to the scale range.
func (s *ColorScale) At(v float64) color.Color {
	v = max(s.cmap.Min(), min(s.cmap.Max(), v))
	c, err := s.cmap.At(v)
	if err != nil {
		return color.Gray{Y: 128}
	}
	return c
}

// Legend returns n evenly spaced swatches covering the scale, formatted with format.
func (s *ColorScale) Legend(n int, format func(float64) string) []LegendEntry {
	if n < 2 {
		n = 2
	}
	out := make([]LegendEntry, n)
	step := (s.Max() - s.Min()) / float64(n-1)
	for i := range out {
		v := s.Min() + float64(i)*step
		out[i] = LegendEntry{Label: format(v), Color: s.At(v)}
	}
	return out
}
