package plots

import (
	"fmt"
	"image/color"
	"math"
	"strconv"

	"github.com/pkg/errors"

	"fqc_viz_go/charts"
	fqc "fqc_viz_go/fastqc_report"
	"fqc_viz_go/transform"
)

// duplicationData is the duplication table reshaped to one vector per sample.
type duplicationData struct {
	field   string
	levels  []string
	samples []string
	vectors [][]float64
	tree    *transform.Dendrogram
}

// duplication collects every member's percentages per level, in display order, and runs
// the clustering when it was asked for.
func (b *build) duplication() (*duplicationData, error) {
	d := &duplicationData{field: transform.DuplicationField(b.table.Schema, b.dedup)}
	for _, f := range b.members() {
		rows, values, err := b.column(f, d.field)
		if err != nil {
			return nil, err
		}
		if d.levels == nil {
			for _, r := range rows {
				d.levels = append(d.levels, b.cell(r, "Duplication Level").Text)
			}
		}
		if len(values) != len(d.levels) {
			return nil, errors.Errorf("%s has %d duplication levels, want %d", f, len(values), len(d.levels))
		}
		d.samples = append(d.samples, f)
		d.vectors = append(d.vectors, values)
	}

	if b.opts.Cluster {
		tree, err := transform.Cluster(b.labelsOf(d.samples), d.vectors)
		if err != nil {
			return nil, err
		}
		d.tree = tree
		d.samples = transform.Reorder(d.samples, tree.Order)
		d.vectors = transform.Reorder(d.vectors, tree.Order)
	}
	return d, nil
}

func (d *duplicationData) axisLabel() string {
	if d.field == "Relative count" {
		return "Relative count"
	}
	return "% of " + transform.CategoryLabel(d.field, "Percentage of ", "")
}

func buildDuplicationLevels(b *build) (*charts.Chart, error) {
	d, err := b.duplication()
	if err != nil {
		return nil, err
	}
	scene := &charts.Scene{
		X: charts.Axis{Label: "Sequence duplication level", Categories: d.levels},
		Y: charts.Axis{Label: d.axisLabel(), Min: 0, Max: 100, Fixed: d.field != "Relative count"},
	}
	for i, f := range d.samples {
		label := b.label(f)
		s := charts.Series{Name: label, Mode: charts.LinesMarkers}
		for k, v := range d.vectors[i] {
			s.Points = append(s.Points, charts.Point{
				X:     float64(k),
				Y:     v,
				Hover: fmt.Sprintf("%s\nlevel %s: %.2f", label, d.levels[k], v),
			})
		}
		scene.Series = append(scene.Series, s)
	}
	return b.chart(scene), nil
}

// buildDuplicationHeatmap draws levels on x and samples on y. The dendrogram, when asked
// for, is drawn left of the first level with the root furthest out.
func buildDuplicationHeatmap(b *build) (*charts.Chart, error) {
	d, err := b.duplication()
	if err != nil {
		return nil, err
	}
	top := 100.0
	if d.field == "Relative count" {
		top = maxOf(d.vectors, 1)
	}
	scale, err := charts.NewColorScale(b.opts.Colors.Heatmap, 0, top)
	if err != nil {
		return nil, err
	}

	scene := &charts.Scene{
		X:      charts.Axis{Label: "Sequence duplication level", Categories: d.levels},
		Y:      charts.Axis{Categories: b.labelsOf(d.samples)},
		Legend: scale.Legend(5, func(v float64) string { return strconv.FormatFloat(v, 'f', 0, 64) }),
	}
	for i, f := range d.samples {
		label := b.label(f)
		for k, v := range d.vectors[i] {
			x, y := float64(k), float64(i)
			scene.Rects = append(scene.Rects, charts.Rect{
				X0: x - 0.5, X1: x + 0.5, Y0: y - 0.5, Y1: y + 0.5,
				Color: scale.At(v),
				Hover: fmt.Sprintf("%s\nlevel %s: %.2f", label, d.levels[k], v),
			})
		}
	}

	if b.opts.Dendrogram && d.tree != nil && d.tree.Height() > 0 {
		width := math.Max(1, 0.25*float64(len(d.levels)))
		h := d.tree.Height()
		for _, s := range d.tree.Segments {
			scene.Segments = append(scene.Segments, transform.Segment{
				X0: -0.5 - s.Y0/h*width, Y0: s.X0,
				X1: -0.5 - s.Y1/h*width, Y1: s.X1,
			})
		}
	}
	return b.chart(scene), nil
}

// buildDuplicationStacked stacks each sample's level percentages into one bar. The
// dendrogram, when asked for, sits above the bars.
func buildDuplicationStacked(b *build) (*charts.Chart, error) {
	d, err := b.duplication()
	if err != nil {
		return nil, err
	}
	scale, err := charts.NewColorScale(b.opts.Colors.Heatmap, 0, float64(max(len(d.levels)-1, 1)))
	if err != nil {
		return nil, err
	}

	scene := &charts.Scene{
		X: charts.Axis{Categories: b.labelsOf(d.samples)},
		Y: charts.Axis{Label: d.axisLabel()},
	}
	top := 0.0
	for i, f := range d.samples {
		label := b.label(f)
		intervals, err := transform.StackIntervals(label, d.levels, d.vectors[i])
		if err != nil {
			return nil, err
		}
		x := float64(i)
		for k, iv := range intervals {
			scene.Rects = append(scene.Rects, charts.Rect{
				X0: x - 0.4, X1: x + 0.4, Y0: iv.Start, Y1: iv.End,
				Color: scale.At(float64(k)),
				Hover: fmt.Sprintf("%s\nlevel %s: %.2f", label, iv.Category, iv.Value),
			})
		}
		if n := len(intervals); n > 0 {
			top = math.Max(top, intervals[n-1].End)
		}
	}
	for k, level := range d.levels {
		scene.Legend = append(scene.Legend, charts.LegendEntry{Label: level, Color: scale.At(float64(k))})
	}

	if b.opts.Dendrogram && d.tree != nil && d.tree.Height() > 0 {
		base, height := top*1.02, top*0.2
		h := d.tree.Height()
		for _, s := range d.tree.Segments {
			scene.Segments = append(scene.Segments, transform.Segment{
				X0: s.X0, Y0: base + s.Y0/h*height,
				X1: s.X1, Y1: base + s.Y1/h*height,
			})
		}
	}
	return b.chart(scene), nil
}

// buildBasicStatistics splits each sample's read count into unique and duplicate reads.
func buildBasicStatistics(b *build) (*charts.Chart, error) {
	unique := color.RGBA{R: 124, G: 181, B: 236, A: 255}
	dup := color.RGBA{R: 67, G: 67, B: 72, A: 255}

	members := b.members()
	scene := &charts.Scene{
		X: charts.Axis{Categories: b.labelsOf(members)},
		Y: charts.Axis{Label: "Number of reads"},
		Legend: []charts.LegendEntry{
			{Label: "Unique reads", Color: unique},
			{Label: "Duplicate reads", Color: dup},
		},
	}
	for i, f := range members {
		r, _ := b.coll.Get(f)
		text, ok := r.BasicStatistic("Total Sequences")
		if !ok {
			continue
		}
		total, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return nil, errors.Wrapf(err, "%s: Total Sequences", f)
		}
		dupPct, known := duplicatePercent(r)
		uniq := total * (100 - dupPct) / 100
		label := b.label(f)
		x := float64(i)
		hover := fmt.Sprintf("%s\n%.0f reads", label, total)
		if known {
			hover = fmt.Sprintf("%s\n%.0f unique, %.0f duplicate (%.2f%%)", label, uniq, total-uniq, dupPct)
		}
		scene.Rects = append(scene.Rects,
			charts.Rect{X0: x - 0.4, X1: x + 0.4, Y0: 0, Y1: uniq, Color: unique, Hover: hover},
			charts.Rect{X0: x - 0.4, X1: x + 0.4, Y0: uniq, Y1: total, Color: dup, Hover: hover},
		)
	}
	return b.chart(scene), nil
}

// duplicatePercent reads the duplication metadata of a report; false without one.
func duplicatePercent(r *fqc.Report) (float64, bool) {
	m, err := r.Module(fqc.ModDuplicationLevels)
	if err != nil || !m.Detected {
		return 0, false
	}
	v, ok, _ := transform.Metric(m, nil)
	return v, ok
}

func maxOf(vectors [][]float64, floor float64) float64 {
	out := floor
	for _, v := range vectors {
		for _, x := range v {
			out = math.Max(out, x)
		}
	}
	return out
}
