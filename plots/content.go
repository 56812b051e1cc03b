package plots

import (
	"fmt"
	"image/color"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"fqc_viz_go/charts"
	fqc "fqc_viz_go/fastqc_report"
	"fqc_viz_go/transform"
)

var baseColors = map[string]color.Color{
	"A": color.RGBA{R: 255, A: 255},
	"C": color.RGBA{G: 200, A: 255},
	"G": color.RGBA{B: 255, A: 255},
	"T": color.RGBA{R: 255, G: 165, A: 255},
}

// buildPerBaseContent draws the four base shares of each sample in its own panel.
func buildPerBaseContent(b *build) (*charts.Chart, error) {
	long, err := transform.PivotLonger(b.table.Table(), b.table.Schema)
	if err != nil {
		return nil, err
	}
	bySample := map[string][]transform.LongRow{}
	for _, r := range long {
		bySample[r.Filename] = append(bySample[r.Filename], r)
	}

	var panels []*charts.Scene
	for _, f := range b.members() {
		label := b.label(f)
		scene := &charts.Scene{
			Title: label,
			X:     charts.Axis{Label: "Position in read (bp)", Integer: true},
			Y:     charts.Axis{Label: "% of bases", Min: 0, Max: 100, Fixed: true},
		}
		series := map[string]*charts.Series{}
		var order []string
		for _, r := range bySample[f] {
			s, ok := series[r.Category]
			if !ok {
				s = &charts.Series{Name: r.Category, Color: baseColors[r.Category]}
				series[r.Category] = s
				order = append(order, r.Category)
			}
			s.Points = append(s.Points, charts.Point{
				X:     r.Key.Mid(),
				Y:     r.Value,
				Hover: fmt.Sprintf("%s\nbase %s, %s: %.2f%%", label, r.Key.Text, r.Category, r.Value),
			})
		}
		for _, cat := range order {
			scene.Series = append(scene.Series, *series[cat])
		}
		panels = append(panels, scene)
	}
	return b.chart(panels...), nil
}

// buildPerSequenceGC plots each sample's GC distribution as a share of its reads. A single
// sample also gets the normal curve fitted to its distribution.
func buildPerSequenceGC(b *build) (*charts.Chart, error) {
	series, _, err := b.lineSeries("GC Content", "Count", percentOfTotal, charts.Lines)
	if err != nil {
		return nil, err
	}
	scene := &charts.Scene{
		X:      charts.Axis{Label: "Mean GC content (%)", Min: 0, Max: 100, Fixed: true, Integer: true},
		Y:      charts.Axis{Label: "% of reads"},
		Series: series,
	}

	if members := b.members(); len(members) == 1 {
		rows, counts, err := b.column(members[0], "Count")
		if err != nil {
			return nil, err
		}
		gc := make([]float64, len(rows))
		for i, r := range rows {
			gc[i] = b.cell(r, "GC Content").Num
		}
		if model, ok := normalModel(gc, counts); ok {
			scene.Series = append(scene.Series, model)
		}
	}
	return b.chart(scene), nil
}

// normalModel builds the expected distribution from the weighted mean and deviation.
func normalModel(gc, counts []float64) (charts.Series, bool) {
	total := 0.0
	for _, c := range counts {
		total += c
	}
	if total == 0 || len(gc) < 2 {
		return charts.Series{}, false
	}
	mean, sd := stat.MeanStdDev(gc, counts)
	if sd == 0 {
		return charts.Series{}, false
	}
	norm := distuv.Normal{Mu: mean, Sigma: sd}
	s := charts.Series{Name: "Theoretical distribution", Dashed: true, Color: color.RGBA{R: 255, G: 100, B: 100, A: 255}}
	for x := 0; x <= 100; x++ {
		s.Points = append(s.Points, charts.Point{X: float64(x), Y: norm.Prob(float64(x)) * 100})
	}
	return s, true
}

func buildPerBaseN(b *build) (*charts.Chart, error) {
	series, ext, err := b.lineSeries("Base", "N-Count", nil, charts.Lines)
	if err != nil {
		return nil, err
	}
	bands, err := transform.StatusBands(b.opts.threshold(fqc.ModPerBaseN), transform.Extent{Min: 0, Max: 100}, bandExtent(ext))
	if err != nil {
		return nil, err
	}
	return b.chart(&charts.Scene{
		X:      charts.Axis{Label: "Position in read (bp)", Integer: true},
		Y:      charts.Axis{Label: "% N", Min: 0, Max: 100, Fixed: true},
		Bands:  bands,
		Series: series,
	}), nil
}

func buildLengthDistribution(b *build) (*charts.Chart, error) {
	series, _, err := b.lineSeries("Length", "Count", nil, charts.LinesMarkers)
	if err != nil {
		return nil, err
	}
	return b.chart(&charts.Scene{
		X:      charts.Axis{Label: "Sequence length (bp)", Integer: true},
		Y:      charts.Axis{Label: "Read count"},
		Series: series,
	}), nil
}
