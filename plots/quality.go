package plots

import (
	"fmt"
	"math"
	"sort"
	"strconv"

	"fqc_viz_go/charts"
	"fqc_viz_go/transform"
)

const maxPhred = 41

func buildPerBaseQuality(b *build) (*charts.Chart, error) {
	series, ext, err := b.lineSeries("Base", "Mean", nil, charts.Lines)
	if err != nil {
		return nil, err
	}
	top := float64(maxPhred)
	for _, s := range series {
		for _, p := range s.Points {
			top = math.Max(top, math.Ceil(p.Y)+1)
		}
	}

	scene := &charts.Scene{
		X:      charts.Axis{Label: "Position in read (bp)", Integer: true},
		Y:      charts.Axis{Label: "Phred score", Min: 0, Max: top, Fixed: true},
		Series: series,
	}

	// a single sample also gets its quartiles and median, as FastQC draws them
	if members := b.members(); len(members) == 1 {
		rows, _, err := b.column(members[0], "Mean")
		if err != nil {
			return nil, err
		}
		rb := charts.Ribbon{Name: "Inter-quartile range"}
		median := charts.Series{Name: "Median", Dashed: true}
		for _, r := range rows {
			x := b.cell(r, "Base").Mid()
			rb.X = append(rb.X, x)
			rb.Lo = append(rb.Lo, b.cell(r, "Lower Quartile").Num)
			rb.Hi = append(rb.Hi, b.cell(r, "Upper Quartile").Num)
			median.Points = append(median.Points, charts.Point{X: x, Y: b.cell(r, "Median").Num})
		}
		scene.Ribbons = []charts.Ribbon{rb}
		scene.Series = append(scene.Series, median)
	}

	bands, err := transform.StatusBands(QualityBands, transform.Extent{Min: 0, Max: top}, bandExtent(ext))
	if err != nil {
		return nil, err
	}
	scene.Bands = bands
	return b.chart(scene), nil
}

// buildPerTileQuality draws one tile grid per sample. Values are deviations from the mean
// quality, so the color scale is symmetric around zero.
func buildPerTileQuality(b *build) (*charts.Chart, error) {
	members := b.members()
	limit := 1.0
	for _, f := range members {
		_, values, err := b.column(f, "Mean")
		if err != nil {
			return nil, err
		}
		for _, v := range values {
			limit = math.Max(limit, math.Abs(v))
		}
	}
	scale, err := charts.NewColorScale(b.opts.Colors.Heatmap, -limit, limit)
	if err != nil {
		return nil, err
	}

	var panels []*charts.Scene
	for _, f := range members {
		rows := b.table.RowsOf(f)
		var bases []string
		baseIdx := map[string]int{}
		tileSet := map[int]bool{}
		for _, r := range rows {
			base := b.cell(r, "Base").Text
			if _, ok := baseIdx[base]; !ok {
				baseIdx[base] = len(bases)
				bases = append(bases, base)
			}
			tileSet[int(b.cell(r, "Tile").Num)] = true
		}
		tiles := make([]int, 0, len(tileSet))
		for t := range tileSet {
			tiles = append(tiles, t)
		}
		sort.Ints(tiles)
		tileIdx := map[int]int{}
		tileNames := make([]string, len(tiles))
		for i, t := range tiles {
			tileIdx[t] = i
			tileNames[i] = strconv.Itoa(t)
		}

		label := b.label(f)
		scene := &charts.Scene{
			Title: label,
			X:     charts.Axis{Label: "Position in read (bp)", Categories: bases},
			Y:     charts.Axis{Label: "Tile", Categories: tileNames},
		}
		for _, r := range rows {
			x := float64(baseIdx[b.cell(r, "Base").Text])
			tile := int(b.cell(r, "Tile").Num)
			y := float64(tileIdx[tile])
			mean := b.cell(r, "Mean").Num
			scene.Rects = append(scene.Rects, charts.Rect{
				X0: x - 0.5, X1: x + 0.5, Y0: y - 0.5, Y1: y + 0.5,
				Color: scale.At(mean),
				Hover: fmt.Sprintf("%s\ntile %d, base %s: %+.2f", label, tile, b.cell(r, "Base").Text, mean),
			})
		}
		panels = append(panels, scene)
	}
	if len(panels) > 0 {
		panels[0].Legend = scale.Legend(5, func(v float64) string { return fmt.Sprintf("%+.1f", v) })
	}
	return b.chart(panels...), nil
}

func buildPerSequenceQuality(b *build) (*charts.Chart, error) {
	series, _, err := b.lineSeries("Quality", "Count", nil, charts.Lines)
	if err != nil {
		return nil, err
	}
	return b.chart(&charts.Scene{
		X:      charts.Axis{Label: "Mean sequence quality (Phred score)", Integer: true},
		Y:      charts.Axis{Label: "Count"},
		Series: series,
	}), nil
}
