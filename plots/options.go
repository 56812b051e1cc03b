package plots

import (
	"sort"

	"github.com/pkg/errors"

	"fqc_viz_go/charts"
	fqc "fqc_viz_go/fastqc_report"
	"fqc_viz_go/transform"
)

// QualityBands are the background bands of the per-base quality chart.
var QualityBands = transform.Thresholds{Warn: 28, Fail: 20, Direction: transform.HigherIsBetter}

// Options are the caller's choices for one chart.
type Options struct {
	Interactive   bool
	Labels        map[string]string
	Colors        charts.Colors
	Style         charts.Style
	Deduplication string
	// Cluster reorders samples by hierarchical clustering; Dendrogram also draws the tree.
	Cluster    bool
	Dendrogram bool
	// Thresholds override DefaultThresholds per module name.
	Thresholds map[string]transform.Thresholds
	// Adapter limits the adapter chart to one adapter label, e.g. "Illumina Universal".
	Adapter string
	// Ordering lists filenames to show first, in this order.
	Ordering []string
	Columns  int
	Top      int
	Workers  int
}

// DefaultOptions returns static charts in the default style.
func DefaultOptions() Options {
	return Options{
		Colors:        charts.DefaultColors(),
		Style:         charts.DefaultStyle(),
		Deduplication: string(transform.DedupPre),
		Columns:       2,
		Top:           10,
		Workers:       1,
	}
}

// Validate checks every enumerated and numeric option. Plot calls it before reading any
// input.
func (o Options) Validate() error {
	if _, err := transform.ValidateDeduplication(o.Deduplication); err != nil {
		return err
	}
	if err := o.Style.Validate(); err != nil {
		return err
	}
	if err := o.Colors.Validate(); err != nil {
		return err
	}
	if o.Adapter != "" {
		if err := transform.ValidateChoice("adapter", o.Adapter, AdapterLabels()...); err != nil {
			return err
		}
	}
	if o.Dendrogram && !o.Cluster {
		return errors.New("dendrogram requires clustering")
	}
	if o.Cluster && len(o.Ordering) > 0 {
		return errors.New("an explicit ordering and clustering are exclusive")
	}
	if o.Columns < 0 || o.Top < 0 || o.Workers < 0 {
		return errors.New("columns, top and workers must not be negative")
	}
	names := make([]string, 0, len(o.Thresholds))
	for name := range o.Thresholds {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := o.Thresholds[name].Check(); err != nil {
			return errors.Wrapf(err, "%s", name)
		}
	}
	return nil
}

// thresholds returns the override for module, or nil for the defaults.
func (o Options) thresholds(module string) *transform.Thresholds {
	if th, ok := o.Thresholds[module]; ok {
		return &th
	}
	return nil
}

func (o Options) threshold(module string) transform.Thresholds {
	if th := o.thresholds(module); th != nil {
		return *th
	}
	return transform.DefaultThresholds[module]
}

// AdapterLabels lists the adapter display labels of every layout.
func AdapterLabels() []string {
	seen := map[string]bool{}
	var out []string
	for _, name := range fqc.SupportedLayouts() {
		layout, _ := fqc.LayoutFor(name)
		schema, ok := layout.Schema(fqc.ModAdapterContent)
		if !ok {
			continue
		}
		for _, label := range transform.Labels(schema) {
			if !seen[label] {
				seen[label] = true
				out = append(out, label)
			}
		}
	}
	return out
}
