package charts

import (
	"fmt"
	"image/color"

	"fqc_viz_go/transform"
)

// Trace roles. Band traces are background geometry.
const (
	RoleBand       = "band"
	RoleData       = "data"
	RoleDendrogram = "dendrogram"
	RoleLabel      = "label"
)

// Hover modes.
const (
	HoverText = "text"
	HoverSkip = "skip"
)

// Figure is the interactive representation of a chart, serialized as JSON for the
// embedded figure script.
type Figure struct {
	Title   string        `json:"title"`
	Width   int           `json:"width"`
	Height  int           `json:"height"`
	Columns int           `json:"columns"`
	Legend  string        `json:"legend"`
	Panels  []FigurePanel `json:"panels"`
}

type FigurePanel struct {
	Title  string      `json:"title,omitempty"`
	X      FigureAxis  `json:"x"`
	Y      FigureAxis  `json:"y"`
	Traces []Trace     `json:"traces"`
	Legend []LegendRow `json:"legend,omitempty"`
	Hidden bool        `json:"hidden,omitempty"`
}

type FigureAxis struct {
	Label      string   `json:"label,omitempty"`
	Categories []string `json:"categories,omitempty"`
	Min        *float64 `json:"min,omitempty"`
	Max        *float64 `json:"max,omitempty"`
}

type LegendRow struct {
	Label string `json:"label"`
	Color string `json:"color"`
}

// Trace is one drawable layer. Rect traces use Rects (x0, x1, y0, y1) with per-rect
// colors; the other types use X and Y.
type Trace struct {
	Type      string       `json:"type"`
	Role      string       `json:"role"`
	Name      string       `json:"name,omitempty"`
	X         []float64    `json:"x,omitempty"`
	Y         []float64    `json:"y,omitempty"`
	Rects     [][4]float64 `json:"rects,omitempty"`
	Colors    []string     `json:"colors,omitempty"`
	Color     string       `json:"color,omitempty"`
	Width     float64      `json:"width,omitempty"`
	Dash      bool         `json:"dash,omitempty"`
	Opacity   float64      `json:"opacity,omitempty"`
	Text      []string     `json:"text,omitempty"`
	HoverInfo string       `json:"hoverinfo"`
}

// BuildFigure converts every scene layer into traces. Every trace starts hoverable.
func (c *Chart) BuildFigure() *Figure {
	_, cols := c.grid()
	w, h := c.size()
	fig := &Figure{
		Title:   c.title(),
		Width:   int(w.Points() * dpi / 72),
		Height:  int(h.Points() * dpi / 72),
		Columns: cols,
		Legend:  c.Style.Legend,
	}
	for _, s := range c.Panels {
		fig.Panels = append(fig.Panels, c.figurePanel(s))
	}
	return fig
}

// Figure is BuildFigure followed by SuppressBandHover.
func (c *Chart) Figure() *Figure {
	fig := c.BuildFigure()
	SuppressBandHover(fig)
	return fig
}

// SuppressBandHover turns hover off on every band trace so tooltips only show data.
func SuppressBandHover(fig *Figure) {
	for p := range fig.Panels {
		for t := range fig.Panels[p].Traces {
			tr := &fig.Panels[p].Traces[t]
			if tr.Role == RoleBand {
				tr.HoverInfo = HoverSkip
				tr.Text = nil
			}
		}
	}
}

func (c *Chart) figurePanel(s *Scene) FigurePanel {
	fp := FigurePanel{
		Title:  s.Title,
		X:      figureAxis(s.X),
		Y:      figureAxis(s.Y),
		Hidden: s.HideAxes,
	}

	for _, b := range s.Bands {
		fp.Traces = append(fp.Traces, Trace{
			Type:      "rect",
			Role:      RoleBand,
			Name:      string(b.Verdict),
			Rects:     [][4]float64{{b.X0, b.X1, b.Y0, b.Y1}},
			Colors:    []string{cssColor(c.Colors.Verdict(b.Verdict))},
			Opacity:   c.Style.BandAlpha,
			Text:      []string{fmt.Sprintf("%s: %g to %g", b.Verdict, b.Y0, b.Y1)},
			HoverInfo: HoverText,
		})
	}

	if len(s.Rects) > 0 {
		tr := Trace{Type: "rect", Role: RoleData, Opacity: 1, HoverInfo: HoverText}
		for _, r := range s.Rects {
			tr.Rects = append(tr.Rects, [4]float64{r.X0, r.X1, r.Y0, r.Y1})
			tr.Colors = append(tr.Colors, cssColor(r.Color))
			tr.Text = append(tr.Text, r.Hover)
		}
		fp.Traces = append(fp.Traces, tr)
	}

	for i, rb := range s.Ribbons {
		col := rb.Color
		if col == nil {
			col = c.Style.SeriesColor(i)
		}
		tr := Trace{Type: "area", Role: RoleData, Name: rb.Name, Color: cssColor(col), Opacity: 0.3, HoverInfo: HoverSkip}
		for k := range rb.X {
			tr.X = append(tr.X, rb.X[k])
			tr.Y = append(tr.Y, rb.Hi[k])
		}
		for k := len(rb.X) - 1; k >= 0; k-- {
			tr.X = append(tr.X, rb.X[k])
			tr.Y = append(tr.Y, rb.Lo[k])
		}
		fp.Traces = append(fp.Traces, tr)
	}

	for i, sr := range s.Series {
		col := sr.Color
		if col == nil {
			col = c.Style.SeriesColor(i)
		}
		tr := Trace{
			Type:      seriesType(sr.Mode),
			Role:      RoleData,
			Name:      sr.Name,
			Color:     cssColor(col),
			Width:     c.Style.LineWidth,
			Dash:      sr.Dashed,
			Opacity:   1,
			HoverInfo: HoverText,
		}
		for _, pt := range sr.Points {
			tr.X = append(tr.X, pt.X)
			tr.Y = append(tr.Y, pt.Y)
			hover := pt.Hover
			if hover == "" {
				hover = fmt.Sprintf("%s: %g, %g", sr.Name, pt.X, pt.Y)
			}
			tr.Text = append(tr.Text, hover)
		}
		if sr.Name != "" && !sr.NoLegend {
			fp.Legend = append(fp.Legend, LegendRow{Label: sr.Name, Color: tr.Color})
		}
		fp.Traces = append(fp.Traces, tr)
	}

	if len(s.Segments) > 0 {
		fp.Traces = append(fp.Traces, segmentTrace(s.Segments))
	}

	if len(s.Labels) > 0 {
		tr := Trace{Type: "text", Role: RoleLabel, HoverInfo: HoverSkip, Opacity: 1}
		for _, lb := range s.Labels {
			tr.X = append(tr.X, lb.X)
			tr.Y = append(tr.Y, lb.Y)
			tr.Text = append(tr.Text, lb.Text)
		}
		fp.Traces = append(fp.Traces, tr)
	}

	for _, e := range s.Legend {
		fp.Legend = append(fp.Legend, LegendRow{Label: e.Label, Color: cssColor(e.Color)})
	}
	return fp
}

// segmentTrace packs every segment as a pair of points; the script draws them two at a time.
func segmentTrace(segs []transform.Segment) Trace {
	tr := Trace{Type: "segments", Role: RoleDendrogram, Color: "#000000", Width: 1, Opacity: 1, HoverInfo: HoverSkip}
	for _, s := range segs {
		tr.X = append(tr.X, s.X0, s.X1)
		tr.Y = append(tr.Y, s.Y0, s.Y1)
	}
	return tr
}

func seriesType(m Mode) string {
	switch m {
	case Markers:
		return "markers"
	case LinesMarkers:
		return "lines+markers"
	}
	return "lines"
}

func figureAxis(a Axis) FigureAxis {
	fa := FigureAxis{Label: a.Label, Categories: a.Categories}
	if a.Fixed {
		lo, hi := a.Min, a.Max
		fa.Min, fa.Max = &lo, &hi
	}
	return fa
}

func cssColor(c color.Color) string {
	if c == nil {
		return "#808080"
	}
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	if n.A == 255 {
		return fmt.Sprintf("#%02x%02x%02x", n.R, n.G, n.B)
	}
	return fmt.Sprintf("rgba(%d,%d,%d,%.3f)", n.R, n.G, n.B, float64(n.A)/255)
}
