package charts

import (
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"fqc_viz_go/transform"
)

// Format is an output encoding.
type Format string

const (
	FormatSVG  Format = "svg"
	FormatPNG  Format = "png"
	FormatHTML Format = "html"
)

var formats = []string{string(FormatSVG), string(FormatPNG), string(FormatHTML)}

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	if err := transform.ValidateChoice("format", string(f), formats...); err != nil {
		return "", err
	}
	return f, nil
}

// FormatFor picks the format from a file extension.
func FormatFor(path string) (Format, error) {
	return ParseFormat(strings.TrimPrefix(filepath.Ext(path), "."))
}

// Chart is a rendered chart: one or more panels laid out on a grid, or a donut.
type Chart struct {
	Kind        string
	Title       string
	Panels      []*Scene
	Columns     int
	Donut       *Donut
	Interactive bool
	Placeholder bool
	Style       Style
	Colors      Colors
}

// New returns a chart with the default style and colors.
func New(kind, title string, panels ...*Scene) *Chart {
	return &Chart{
		Kind:   kind,
		Title:  title,
		Panels: panels,
		Style:  DefaultStyle(),
		Colors: DefaultColors(),
	}
}

// Render encodes the chart. SVG and PNG are static; HTML embeds the interactive figure when
// the chart is interactive and the SVG otherwise.
func (c *Chart) Render(w io.Writer, f Format) error {
	if err := c.Style.Validate(); err != nil {
		return err
	}
	if len(c.Panels) == 0 && c.Donut == nil {
		return errors.Errorf("chart %s has nothing to draw", c.Kind)
	}
	slog.Debug("rendering chart", "kind", c.Kind, "format", f, "panels", len(c.Panels), "interactive", c.Interactive)

	switch f {
	case FormatSVG:
		if c.Donut != nil {
			return c.writeDonut(w, f)
		}
		return c.writeSVG(w)
	case FormatPNG:
		if c.Donut != nil {
			return c.writeDonut(w, f)
		}
		return c.writePNG(w)
	case FormatHTML:
		return WriteHTMLReport(w, c.title(), []Section{{Chart: c}})
	}
	return &transform.InvalidOptionError{Option: "format", Value: string(f), Allowed: formats}
}

func (c *Chart) title() string {
	if c.Style.Title != "" {
		return c.Style.Title
	}
	return c.Title
}

// Placeholder is the chart returned when no report has the module.
func Placeholder(kind, module string) *Chart {
	c := New(kind, module, &Scene{
		Title:    module,
		X:        Axis{Min: 0, Max: 1, Fixed: true},
		Y:        Axis{Min: 0, Max: 1, Fixed: true},
		Labels:   []Label{{X: 0.5, Y: 0.5, Text: "module not detected"}},
		HideAxes: true,
	})
	c.Placeholder = true
	c.Style.Grid = false
	return c
}
