package plots

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"fqc_viz_go/charts"
	fqc "fqc_viz_go/fastqc_report"
	"fqc_viz_go/transform"
)

// buildAdapterContent draws one line per sample and adapter. Adapters that never rise above
// zero are left out unless one adapter was selected.
func buildAdapterContent(b *build) (*charts.Chart, error) {
	long, err := transform.PivotLonger(b.table.Table(), b.table.Schema)
	if err != nil {
		return nil, err
	}
	type key struct{ file, category string }
	series := map[key]*charts.Series{}
	peak := map[key]float64{}
	var order []key
	ext := transform.Extent{Min: math.Inf(1), Max: math.Inf(-1)}
	for _, r := range long {
		if b.opts.Adapter != "" && r.Category != b.opts.Adapter {
			continue
		}
		k := key{r.Filename, r.Category}
		s, ok := series[k]
		if !ok {
			s = &charts.Series{Name: b.label(r.Filename) + " - " + r.Category}
			series[k] = s
			order = append(order, k)
		}
		s.Points = append(s.Points, charts.Point{
			X:     r.Key.Mid(),
			Y:     r.Value,
			Hover: fmt.Sprintf("%s\n%s at %s: %.2f%%", b.label(r.Filename), r.Category, r.Key.Text, r.Value),
		})
		peak[k] = math.Max(peak[k], r.Value)
		ext.Min = math.Min(ext.Min, r.Key.Num)
		ext.Max = math.Max(ext.Max, r.Key.End)
	}

	rank := map[string]int{}
	for i, f := range b.members() {
		rank[f] = i
	}
	sort.SliceStable(order, func(i, j int) bool { return rank[order[i].file] < rank[order[j].file] })

	scene := &charts.Scene{
		X: charts.Axis{Label: "Position in read (bp)", Integer: true},
		Y: charts.Axis{Label: "% of sequences", Min: 0, Max: 100, Fixed: true},
	}
	for _, k := range order {
		if b.opts.Adapter == "" && peak[k] <= 0 {
			continue
		}
		scene.Series = append(scene.Series, *series[k])
	}
	span := bandExtent(ext)
	if len(scene.Series) == 0 {
		scene.Labels = []charts.Label{{X: (span.Min + span.Max) / 2, Y: 50, Text: "no adapter contamination"}}
	}
	bands, err := transform.StatusBands(b.opts.threshold(fqc.ModAdapterContent), transform.Extent{Min: 0, Max: 100}, span)
	if err != nil {
		return nil, err
	}
	scene.Bands = bands
	return b.chart(scene), nil
}

// buildKmerContent plots the strongest k-mers of each sample at their peak position.
func buildKmerContent(b *build) (*charts.Chart, error) {
	top := b.opts.Top
	if top == 0 {
		top = 10
	}
	scene := &charts.Scene{
		X: charts.Axis{Label: "Position of maximum enrichment (bp)", Integer: true},
		Y: charts.Axis{Label: "Obs/Exp max"},
	}
	for _, f := range b.members() {
		rows := append([]fqc.Row(nil), b.table.RowsOf(f)...)
		sort.SliceStable(rows, func(i, j int) bool {
			return b.cell(rows[i], "Obs/Exp Max").Num > b.cell(rows[j], "Obs/Exp Max").Num
		})
		if len(rows) > top {
			rows = rows[:top]
		}
		label := b.label(f)
		s := charts.Series{Name: label, Mode: charts.Markers}
		for _, r := range rows {
			pos := b.cell(r, "Max Obs/Exp Position")
			ratio := b.cell(r, "Obs/Exp Max").Num
			s.Points = append(s.Points, charts.Point{
				X:     pos.Mid(),
				Y:     ratio,
				Hover: fmt.Sprintf("%s\n%s (count %s) at %s: %.2f", label, b.cell(r, "Sequence").Text, b.cell(r, "Count").Text, pos.Text, ratio),
			})
		}
		scene.Series = append(scene.Series, s)
	}
	return b.chart(scene), nil
}

// buildOverrepresented draws one bar per sample with the summed share of its
// overrepresented sequences; the hover lists the top sequences.
func buildOverrepresented(b *build) (*charts.Chart, error) {
	top := b.opts.Top
	if top == 0 {
		top = 10
	}
	th := b.opts.threshold(fqc.ModOverrepresented)
	members := b.members()
	scene := &charts.Scene{
		X: charts.Axis{Categories: b.labelsOf(members)},
		Y: charts.Axis{Label: "% of reads"},
	}
	axisTop := math.Max(th.Fail, th.Warn) * 2
	for i, f := range members {
		rows, values, err := b.column(f, "Percentage")
		if err != nil {
			return nil, err
		}
		total := 0.0
		for _, v := range values {
			total += v
		}
		axisTop = math.Max(axisTop, total*1.1)

		label := b.label(f)
		lines := []string{fmt.Sprintf("%s: %.2f%% overrepresented", label, total)}
		for k, r := range rows {
			if k == top {
				lines = append(lines, fmt.Sprintf("... %d more", len(rows)-top))
				break
			}
			lines = append(lines, fmt.Sprintf("%.2f%% %s (%s)", values[k], b.cell(r, "Sequence").Text, b.cell(r, "Possible Source").Text))
		}
		x := float64(i)
		scene.Rects = append(scene.Rects, charts.Rect{
			X0: x - 0.4, X1: x + 0.4, Y0: 0, Y1: total,
			Color: b.opts.Colors.Verdict(transform.Classify(total, th)),
			Hover: strings.Join(lines, "\n"),
		})
	}
	scene.Y.Min, scene.Y.Max, scene.Y.Fixed = 0, axisTop, true

	bands, err := transform.StatusBands(th, transform.Extent{Min: 0, Max: axisTop}, nominalExtent(len(members)))
	if err != nil {
		return nil, err
	}
	scene.Bands = bands
	return b.chart(scene), nil
}
