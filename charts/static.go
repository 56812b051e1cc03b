package charts

import (
	"fmt"
	"image/color"
	"io"
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
	"gonum.org/v1/plot/vg/vgsvg"
)

// maxIntegerLabels bounds the ticks drawn on whole-number axes.
const maxIntegerLabels = 12

// IntegerTicks marks whole numbers only. When MaxLabels is set the step widens through
// 1, 2, 5, 10, 20, 50 ... until no more than MaxLabels ticks fit the range.
type IntegerTicks struct {
	MaxLabels int
}

func (t IntegerTicks) Ticks(min, max float64) []plot.Tick {
	lo, hi := int(math.Ceil(min)), int(math.Floor(max))
	if hi < lo {
		return nil
	}
	step := 1
	for t.MaxLabels > 0 && multiples(lo, hi, step) > t.MaxLabels {
		step = nextStep(step)
	}

	var ticks []plot.Tick
	for i := ceilMultiple(lo, step); i <= hi; i += step {
		ticks = append(ticks, plot.Tick{
			Value: float64(i),
			Label: fmt.Sprintf("%d", i),
		})
	}
	return ticks
}

func nextStep(step int) int {
	mag := 1
	for mag*10 <= step {
		mag *= 10
	}
	switch step / mag {
	case 1:
		return 2 * mag
	case 2:
		return 5 * mag
	}
	return 10 * mag
}

func ceilMultiple(n, step int) int {
	m := n / step * step
	if m < n {
		m += step
	}
	return m
}

func multiples(lo, hi, step int) int {
	first := ceilMultiple(lo, step)
	if first > hi {
		return 0
	}
	return (hi-first)/step + 1
}

// size returns the canvas size of the whole chart.
func (c *Chart) size() (vg.Length, vg.Length) {
	rows, _ := c.grid()
	return vg.Length(c.Style.Width) * vg.Inch, vg.Length(c.Style.Height*float64(rows)) * vg.Inch
}

func (c *Chart) grid() (rows, cols int) {
	n := len(c.Panels)
	if n == 0 {
		return 1, 1
	}
	cols = c.Columns
	if cols <= 0 || cols > n {
		cols = n
	}
	return (n + cols - 1) / cols, cols
}

// writeSVG draws the panels with gonum/plot into an SVG document.
func (c *Chart) writeSVG(w io.Writer) error {
	width, height := c.size()
	canvas := vgsvg.New(width, height)
	if err := c.drawPanels(canvas); err != nil {
		return err
	}
	_, err := canvas.WriteTo(w)
	return errors.Wrap(err, "writing svg")
}

func (c *Chart) writePNG(w io.Writer) error {
	width, height := c.size()
	canvas := vgimg.New(width, height)
	if err := c.drawPanels(canvas); err != nil {
		return err
	}
	_, err := vgimg.PngCanvas{Canvas: canvas}.WriteTo(w)
	return errors.Wrap(err, "writing png")
}

// drawPanels lays the facets out on an aligned grid so that axes line up across panels.
func (c *Chart) drawPanels(canvas vg.CanvasSizer) error {
	rows, cols := c.grid()
	plots := make([][]*plot.Plot, rows)
	for j := range plots {
		plots[j] = make([]*plot.Plot, cols)
	}
	for i, s := range c.Panels {
		p, err := c.buildPlot(s)
		if err != nil {
			return errors.Wrapf(err, "panel %d (%s)", i, s.Title)
		}
		plots[i/cols][i%cols] = p
	}
	for j := range plots {
		for i := range plots[j] {
			if plots[j][i] == nil {
				p := plot.New()
				p.HideAxes()
				plots[j][i] = p
			}
		}
	}

	dc := draw.New(canvas)
	if rows == 1 && cols == 1 {
		plots[0][0].Draw(dc)
		return nil
	}
	pad := vg.Millimeter * 3
	tiles := draw.Tiles{
		Rows: rows, Cols: cols,
		PadX: pad, PadY: pad,
		PadTop: pad, PadBottom: pad, PadLeft: pad, PadRight: pad,
	}
	canvases := plot.Align(plots, tiles, dc)
	for j := range plots {
		for i := range plots[j] {
			plots[j][i].Draw(canvases[j][i])
		}
	}
	return nil
}

func (c *Chart) buildPlot(s *Scene) (*plot.Plot, error) {
	st := c.Style
	p := plot.New()
	p.Title.Text = s.Title
	if len(c.Panels) == 1 && c.Title != "" && s.Title == "" {
		p.Title.Text = c.Title
	}
	if st.Title != "" && len(c.Panels) == 1 {
		p.Title.Text = st.Title
	}
	p.X.Label.Text = s.X.Label
	p.Y.Label.Text = s.Y.Label
	applyFont(p, st.FontSize)

	if st.Grid && !s.HideAxes {
		p.Add(plotter.NewGrid())
	}

	for _, b := range s.Bands {
		poly, err := rectPolygon(b.X0, b.X1, b.Y0, b.Y1)
		if err != nil {
			return nil, err
		}
		poly.Color = WithAlpha(c.Colors.Verdict(b.Verdict), st.BandAlpha)
		p.Add(poly)
	}

	for _, r := range s.Rects {
		poly, err := rectPolygon(r.X0, r.X1, r.Y0, r.Y1)
		if err != nil {
			return nil, err
		}
		poly.Color = r.Color
		p.Add(poly)
	}

	for i, rb := range s.Ribbons {
		poly, err := ribbonPolygon(rb)
		if err != nil {
			return nil, err
		}
		fill := rb.Color
		if fill == nil {
			fill = st.SeriesColor(i)
		}
		poly.Color = WithAlpha(fill, 0.3)
		p.Add(poly)
		if rb.Name != "" {
			p.Legend.Add(rb.Name, poly)
		}
	}

	legend := st.Legend != "none"
	for i, sr := range s.Series {
		thumb, err := c.addSeries(p, sr, i)
		if err != nil {
			return nil, errors.Wrapf(err, "series %q", sr.Name)
		}
		if legend && sr.Name != "" && !sr.NoLegend {
			p.Legend.Add(sr.Name, thumb...)
		}
	}

	for _, seg := range s.Segments {
		l, err := plotter.NewLine(plotter.XYs{{X: seg.X0, Y: seg.Y0}, {X: seg.X1, Y: seg.Y1}})
		if err != nil {
			return nil, err
		}
		l.LineStyle.Color = color.Black
		l.LineStyle.Width = vg.Points(1)
		p.Add(l)
	}

	if len(s.Labels) > 0 {
		xys := make(plotter.XYs, len(s.Labels))
		texts := make([]string, len(s.Labels))
		for i, lb := range s.Labels {
			xys[i] = plotter.XY{X: lb.X, Y: lb.Y}
			texts[i] = lb.Text
		}
		labels, err := plotter.NewLabels(plotter.XYLabels{XYs: xys, Labels: texts})
		if err != nil {
			return nil, err
		}
		for i := range labels.TextStyle {
			labels.TextStyle[i].XAlign = draw.XCenter
			labels.TextStyle[i].Font.Size = vg.Points(st.FontSize * 1.4)
		}
		p.Add(labels)
	}

	if legend {
		for _, e := range s.Legend {
			poly, err := rectPolygon(0, 1, 0, 1)
			if err != nil {
				return nil, err
			}
			poly.Color = e.Color
			p.Legend.Add(e.Label, poly)
		}
		placeLegend(p, st.Legend)
	}

	if s.X.Nominal() {
		p.NominalX(s.X.Categories...)
		if len(s.X.Categories) > 8 {
			p.X.Tick.Label.Rotation = math.Pi / 4
			p.X.Tick.Label.XAlign = draw.XRight
			p.X.Tick.Label.YAlign = draw.YCenter
		}
	}
	if s.X.Integer && !s.X.Nominal() {
		p.X.Tick.Marker = IntegerTicks{MaxLabels: maxIntegerLabels}
	}
	if s.Y.Nominal() {
		p.NominalY(s.Y.Categories...)
	}
	if s.X.Fixed {
		p.X.Min, p.X.Max = s.X.Min, s.X.Max
	}
	if s.Y.Fixed {
		p.Y.Min, p.Y.Max = s.Y.Min, s.Y.Max
	}
	if s.HideAxes {
		p.HideAxes()
	}
	return p, nil
}

func (c *Chart) addSeries(p *plot.Plot, sr Series, i int) ([]plot.Thumbnailer, error) {
	col := sr.Color
	if col == nil {
		col = c.Style.SeriesColor(i)
	}
	xys := make(plotter.XYs, len(sr.Points))
	for k, pt := range sr.Points {
		xys[k] = plotter.XY{X: pt.X, Y: pt.Y}
	}

	var thumbs []plot.Thumbnailer
	if sr.Mode == Lines || sr.Mode == LinesMarkers {
		l, err := plotter.NewLine(xys)
		if err != nil {
			return nil, err
		}
		l.LineStyle.Color = col
		l.LineStyle.Width = vg.Points(c.Style.LineWidth)
		if sr.Dashed {
			l.LineStyle.Dashes = []vg.Length{vg.Points(3), vg.Points(3)}
		}
		p.Add(l)
		thumbs = append(thumbs, l)
	}
	if sr.Mode == Markers || sr.Mode == LinesMarkers {
		sc, err := plotter.NewScatter(xys)
		if err != nil {
			return nil, err
		}
		sc.GlyphStyle.Color = col
		sc.GlyphStyle.Radius = vg.Points(2.5)
		sc.GlyphStyle.Shape = draw.CircleGlyph{}
		p.Add(sc)
		thumbs = append(thumbs, sc)
	}
	return thumbs, nil
}

func rectPolygon(x0, x1, y0, y1 float64) (*plotter.Polygon, error) {
	poly, err := plotter.NewPolygon(plotter.XYs{
		{X: x0, Y: y0}, {X: x1, Y: y0}, {X: x1, Y: y1}, {X: x0, Y: y1},
	})
	if err != nil {
		return nil, err
	}
	poly.LineStyle.Width = 0
	return poly, nil
}

// ribbonPolygon walks the upper curve forwards and the lower one back.
func ribbonPolygon(rb Ribbon) (*plotter.Polygon, error) {
	if len(rb.X) != len(rb.Lo) || len(rb.X) != len(rb.Hi) {
		return nil, errors.Errorf("ribbon %q: %d x values for %d/%d bounds", rb.Name, len(rb.X), len(rb.Lo), len(rb.Hi))
	}
	pts := make(plotter.XYs, 0, 2*len(rb.X))
	for i := range rb.X {
		pts = append(pts, plotter.XY{X: rb.X[i], Y: rb.Hi[i]})
	}
	for i := len(rb.X) - 1; i >= 0; i-- {
		pts = append(pts, plotter.XY{X: rb.X[i], Y: rb.Lo[i]})
	}
	poly, err := plotter.NewPolygon(pts)
	if err != nil {
		return nil, err
	}
	poly.LineStyle.Width = 0
	return poly, nil
}

func applyFont(p *plot.Plot, size float64) {
	base := vg.Points(size)
	p.Title.TextStyle.Font.Size = base * 1.2
	p.X.Label.TextStyle.Font.Size = base
	p.Y.Label.TextStyle.Font.Size = base
	p.X.Tick.Label.Font.Size = base * 0.9
	p.Y.Tick.Label.Font.Size = base * 0.9
	p.Legend.TextStyle.Font.Size = base * 0.9
}

func placeLegend(p *plot.Plot, pos string) {
	switch pos {
	case "top-left":
		p.Legend.Top, p.Legend.Left = true, true
	case "bottom-right":
		p.Legend.Top, p.Legend.Left = false, false
	case "bottom-left":
		p.Legend.Top, p.Legend.Left = false, true
	default:
		p.Legend.Top, p.Legend.Left = true, false
	}
	p.Legend.XOffs = -vg.Points(10)
}
