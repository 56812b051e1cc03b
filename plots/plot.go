package plots

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/pkg/errors"

	"fqc_viz_go/charts"
	"fqc_viz_go/collection"
	fqc "fqc_viz_go/fastqc_report"
	"fqc_viz_go/transform"
)

// build carries what a builder needs for one chart.
type build struct {
	entry  Entry
	coll   *collection.Collection
	table  *collection.ModuleTable
	opts   Options
	dedup  transform.Deduplication
	labels map[string]string
}

type builder func(b *build) (*charts.Chart, error)

var builders map[Kind]builder

func init() {
	builders = map[Kind]builder{
		BasicStatistics:          buildBasicStatistics,
		PerBaseQuality:           buildPerBaseQuality,
		PerTileQuality:           buildPerTileQuality,
		PerSequenceQuality:       buildPerSequenceQuality,
		PerBaseContent:           buildPerBaseContent,
		PerSequenceGC:            buildPerSequenceGC,
		PerBaseNContent:          buildPerBaseN,
		LengthDistribution:       buildLengthDistribution,
		DuplicationLevels:        buildDuplicationLevels,
		DuplicationHeatmap:       buildDuplicationHeatmap,
		DuplicationStacked:       buildDuplicationStacked,
		AdapterContent:           buildAdapterContent,
		KmerContent:              buildKmerContent,
		OverrepresentedSequences: buildOverrepresented,
		StatusHeatmap:            buildStatusHeatmap,
		StatusSummary:            buildStatusSummary,
	}
}

// Plot builds one catalogue chart. Options are validated before the source is read, so an
// invalid option never yields a chart. A module no member has gives a placeholder chart.
func Plot(kind Kind, src Source, opts Options) (*charts.Chart, error) {
	entry, err := Lookup(kind)
	if err != nil {
		return nil, err
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	dedup, _ := transform.ValidateDeduplication(opts.Deduplication)

	coll, err := src.Resolve(opts.Workers)
	if err != nil {
		return nil, err
	}
	b := &build{
		entry:  entry,
		coll:   coll,
		opts:   opts,
		dedup:  dedup,
		labels: transform.LabelMap(coll.Filenames(), opts.Labels),
	}

	var chart *charts.Chart
	if entry.Module != "" {
		b.table = coll.Module(entry.Module)
		if len(b.table.Skipped) > 0 {
			slog.Debug("members left out", "kind", kind, "module", entry.Module, "skipped", b.table.Skipped)
		}
		if b.table.Empty() {
			slog.Debug("module not detected in any report", "kind", kind, "module", entry.Module)
			chart = charts.Placeholder(string(kind), entry.Module)
		}
	}
	if chart == nil {
		if chart, err = builders[kind](b); err != nil {
			return nil, errors.Wrapf(err, "building %s", kind)
		}
	}
	b.finish(chart)
	return chart, nil
}

func (b *build) finish(c *charts.Chart) {
	c.Kind = string(b.entry.Kind)
	if c.Title == "" || c.Placeholder {
		c.Title = b.entry.Title
	}
	c.Style = b.opts.Style
	if c.Placeholder {
		c.Style.Grid = false
	}
	c.Colors = b.opts.Colors
	c.Interactive = b.opts.Interactive
	if c.Columns == 0 {
		c.Columns = b.opts.Columns
	}
}

func (b *build) chart(panels ...*charts.Scene) *charts.Chart {
	return charts.New(string(b.entry.Kind), b.entry.Title, panels...)
}

func (b *build) label(filename string) string {
	if l, ok := b.labels[filename]; ok {
		return l
	}
	return filename
}

// members returns the contributing filenames in display order: the explicit ordering
// first, then everyone else in collection order.
func (b *build) members() []string {
	return ordered(b.table.Members, b.opts.Ordering)
}

func ordered(members, ordering []string) []string {
	if len(ordering) == 0 {
		return members
	}
	in := map[string]bool{}
	for _, m := range members {
		in[m] = true
	}
	used := map[string]bool{}
	out := make([]string, 0, len(members))
	for _, name := range ordering {
		if in[name] && !used[name] {
			out = append(out, name)
			used[name] = true
		}
	}
	for _, m := range members {
		if !used[m] {
			out = append(out, m)
		}
	}
	return out
}

func (b *build) labelsOf(filenames []string) []string {
	out := make([]string, len(filenames))
	for i, f := range filenames {
		out[i] = b.label(f)
	}
	return out
}

// column returns the field values of one member, in row order.
func (b *build) column(filename, field string) ([]fqc.Row, []float64, error) {
	t := b.table.Table()
	idx := t.Index(field)
	if idx < 0 {
		return nil, nil, errors.Errorf("%s has no %q column", b.table.Module, field)
	}
	rows := b.table.RowsOf(filename)
	values := make([]float64, len(rows))
	for i, r := range rows {
		values[i] = r.Cells[idx].Num
	}
	return rows, values, nil
}

func (b *build) cell(row fqc.Row, field string) fqc.Cell {
	idx := b.table.Table().Index(field)
	if idx < 0 {
		return fqc.Cell{}
	}
	return row.Cells[idx]
}

// lineSeries plots one numeric field against the key field of every member.
func (b *build) lineSeries(keyField, valueField string, scale func(values []float64) []float64, mode charts.Mode) ([]charts.Series, transform.Extent, error) {
	var (
		out []charts.Series
		ext = transform.Extent{Min: math.Inf(1), Max: math.Inf(-1)}
	)
	for _, f := range b.members() {
		rows, values, err := b.column(f, valueField)
		if err != nil {
			return nil, ext, err
		}
		if scale != nil {
			values = scale(values)
		}
		label := b.label(f)
		s := charts.Series{Name: label, Mode: mode}
		for i, r := range rows {
			key := b.cell(r, keyField)
			s.Points = append(s.Points, charts.Point{
				X:     key.Mid(),
				Y:     values[i],
				Hover: fmt.Sprintf("%s\n%s %s: %s", label, keyField, key.Text, formatValue(values[i])),
			})
			ext.Min = math.Min(ext.Min, key.Num)
			ext.Max = math.Max(ext.Max, key.End)
		}
		out = append(out, s)
	}
	return out, ext, nil
}

// bandExtent widens a key extent by half a position on each side.
func bandExtent(e transform.Extent) transform.Extent {
	if math.IsInf(e.Min, 0) || math.IsInf(e.Max, 0) {
		return transform.Extent{Min: 0, Max: 1}
	}
	return transform.Extent{Min: e.Min - 0.5, Max: e.Max + 0.5}
}

// nominalExtent spans n categories.
func nominalExtent(n int) transform.Extent {
	return transform.Extent{Min: -0.5, Max: float64(n) - 0.5}
}

func percentOfTotal(values []float64) []float64 {
	total := 0.0
	for _, v := range values {
		total += v
	}
	out := make([]float64, len(values))
	if total == 0 {
		return out
	}
	for i, v := range values {
		out[i] = v / total * 100
	}
	return out
}

func formatValue(v float64) string {
	if v == math.Trunc(v) && math.Abs(v) < 1e15 {
		return fmt.Sprintf("%.0f", v)
	}
	return fmt.Sprintf("%.2f", v)
}
