package plots

import (
	"fmt"

	"fqc_viz_go/charts"
	"fqc_viz_go/transform"
)

// statusGrid computes the verdicts of every status module for every report.
func (b *build) statusGrid() ([]string, map[string][]transform.StatusRecord, error) {
	var modules []string
	records := map[string][]transform.StatusRecord{}
	for _, module := range transform.StatusModules() {
		recs, err := transform.Statuses(b.coll, module, b.opts.thresholds(module))
		if err != nil {
			return nil, nil, err
		}
		if len(recs) == 0 {
			continue
		}
		modules = append(modules, module)
		records[module] = recs
	}
	return modules, records, nil
}

func buildStatusHeatmap(b *build) (*charts.Chart, error) {
	modules, records, err := b.statusGrid()
	if err != nil {
		return nil, err
	}
	if len(modules) == 0 {
		return charts.Placeholder(string(b.entry.Kind), "status modules"), nil
	}
	samples := ordered(b.coll.Filenames(), b.opts.Ordering)
	row := map[string]int{}
	for i, f := range samples {
		row[f] = i
	}

	scene := &charts.Scene{
		X: charts.Axis{Categories: modules},
		Y: charts.Axis{Categories: b.labelsOf(samples)},
	}
	for _, v := range transform.Verdicts {
		scene.Legend = append(scene.Legend, charts.LegendEntry{Label: string(v), Color: b.opts.Colors.Verdict(v)})
	}
	for x, module := range modules {
		for _, r := range records[module] {
			y := float64(row[r.Filename])
			scene.Rects = append(scene.Rects, charts.Rect{
				X0: float64(x) - 0.5, X1: float64(x) + 0.5, Y0: y - 0.5, Y1: y + 0.5,
				Color: b.opts.Colors.Verdict(r.Verdict),
				Hover: fmt.Sprintf("%s\n%s: %s (%.2f), FastQC: %s", b.label(r.Filename), module, r.Verdict, r.Metric, r.Reported),
			})
		}
	}
	return b.chart(scene), nil
}

func buildStatusSummary(b *build) (*charts.Chart, error) {
	modules, records, err := b.statusGrid()
	if err != nil {
		return nil, err
	}
	counts := map[transform.Verdict]float64{}
	for _, module := range modules {
		for _, r := range records[module] {
			counts[r.Verdict]++
		}
	}
	if len(counts) == 0 {
		return charts.Placeholder(string(b.entry.Kind), "status modules"), nil
	}
	donut := &charts.Donut{}
	for _, v := range transform.Verdicts {
		donut.Slices = append(donut.Slices, charts.Slice{
			Label: fmt.Sprintf("%s (%.0f)", v, counts[v]),
			Value: counts[v],
			Color: b.opts.Colors.Verdict(v),
		})
	}
	c := b.chart()
	c.Donut = donut
	return c, nil
}
