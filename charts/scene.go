// Package charts draws renderer-neutral scenes: gonum/plot for SVG and PNG, go-chart for
// the status donut and an embedded script for interactive HTML figures.
package charts

import (
	"image/color"

	"fqc_viz_go/transform"
)

// Axis describes one scene axis. When Categories is set the axis is nominal and category i
// sits at coordinate i. Min and Max are only applied when Fixed is set. Integer axes (base
// positions, lengths) only get whole-number ticks.
type Axis struct {
	Label      string
	Categories []string
	Min, Max   float64
	Fixed      bool
	Integer    bool
}

func (a Axis) Nominal() bool { return len(a.Categories) > 0 }

// Rect is a filled rectangle, a bar segment or heatmap tile.
type Rect struct {
	X0, X1 float64
	Y0, Y1 float64
	Color  color.Color
	Hover  string
}

// Point is one series observation.
type Point struct {
	X, Y  float64
	Hover string
}

// Mode selects how a series is drawn.
type Mode int

const (
	Lines Mode = iota
	Markers
	LinesMarkers
)

// Series is a named line or point set. A nil Color takes the next palette color.
type Series struct {
	Name     string
	Points   []Point
	Mode     Mode
	Color    color.Color
	Dashed   bool
	NoLegend bool
}

// Ribbon is a filled area between two curves sharing X.
type Ribbon struct {
	Name  string
	X     []float64
	Lo    []float64
	Hi    []float64
	Color color.Color
}

// Label is a text annotation in data coordinates.
type Label struct {
	X, Y float64
	Text string
}

// LegendEntry adds a legend row not tied to a series, e.g. a stacked bar category.
type LegendEntry struct {
	Label string
	Color color.Color
}

// Scene is one panel of a chart.
type Scene struct {
	Title    string
	X, Y     Axis
	Bands    []transform.Band
	Rects    []Rect
	Ribbons  []Ribbon
	Series   []Series
	Segments []transform.Segment
	Labels   []Label
	Legend   []LegendEntry
	HideAxes bool
}

// Empty reports whether the scene has nothing to draw.
func (s *Scene) Empty() bool {
	return len(s.Bands) == 0 && len(s.Rects) == 0 && len(s.Series) == 0 &&
		len(s.Ribbons) == 0 && len(s.Segments) == 0 && len(s.Labels) == 0
}
