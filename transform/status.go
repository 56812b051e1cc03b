package transform

import (
	"log/slog"
	"math"

	"github.com/pkg/errors"

	"fqc_viz_go/collection"
	fqc "fqc_viz_go/fastqc_report"
)

// ErrNoMetric is returned for modules without a status metric.
var ErrNoMetric = errors.New("module has no status metric")

// StatusRecord is the computed verdict of one module of one report, next to the status
// FastQC itself printed.
type StatusRecord struct {
	Filename   string     `json:"filename"`
	Module     string     `json:"module"`
	Verdict    Verdict    `json:"verdict"`
	Metric     float64    `json:"metric"`
	Thresholds Thresholds `json:"thresholds"`
	Reported   fqc.Status `json:"reported"`
}

// DefaultThresholds are the status cut-offs per module. Percentages are in percent; the
// base quality metric is the lowest lower quartile over all positions.
var DefaultThresholds = map[string]Thresholds{
	fqc.ModDuplicationLevels: {Warn: 20, Fail: 50},
	fqc.ModAdapterContent:    {Warn: 5, Fail: 10},
	fqc.ModPerBaseN:          {Warn: 5, Fail: 20},
	fqc.ModOverrepresented:   {Warn: 0.1, Fail: 1},
	fqc.ModPerBaseQuality:    {Warn: 10, Fail: 5, Direction: HigherIsBetter},
}

type metricFunc func(m *fqc.Module, schema *fqc.ModuleSchema) (float64, bool)

var metrics = map[string]metricFunc{
	fqc.ModDuplicationLevels: duplicationMetric,
	fqc.ModAdapterContent:    maxOfCategories,
	fqc.ModPerBaseN:          maxOfField("N-Count"),
	fqc.ModOverrepresented:   maxOfField("Percentage"),
	fqc.ModPerBaseQuality:    minOfField("Lower Quartile"),
}

// StatusModules lists the modules that have a status metric, in report order.
func StatusModules() []string {
	var out []string
	for _, name := range fqc.AllModuleNames() {
		if _, ok := metrics[name]; ok {
			out = append(out, name)
		}
	}
	return out
}

// Metric computes a module's status metric. ok is false when the module carries no value
// to compute it from.
func Metric(m *fqc.Module, schema *fqc.ModuleSchema) (float64, bool, error) {
	fn, found := metrics[m.Name]
	if !found {
		return 0, false, errors.Wrapf(ErrNoMetric, "%s", m.Name)
	}
	v, ok := fn(m, schema)
	return v, ok, nil
}

// Statuses computes one record per member that has the module, in collection order.
// A nil thresholds pointer selects DefaultThresholds.
func Statuses(c *collection.Collection, module string, thresholds *Thresholds) ([]StatusRecord, error) {
	if _, ok := metrics[module]; !ok {
		return nil, errors.Wrapf(ErrNoMetric, "%s", module)
	}
	th := DefaultThresholds[module]
	if thresholds != nil {
		th = *thresholds
	}
	if err := th.Check(); err != nil {
		return nil, err
	}

	var out []StatusRecord
	for _, r := range c.Reports() {
		m, err := r.Module(module)
		if err != nil || !m.Detected {
			continue
		}
		schema, _ := r.Layout.Schema(module)
		v, ok, err := Metric(m, schema)
		if err != nil {
			return nil, err
		}
		if !ok {
			slog.Debug("no status metric", "module", module, "file", r.Filename)
			continue
		}
		out = append(out, StatusRecord{
			Filename:   r.Filename,
			Module:     module,
			Verdict:    Classify(v, th),
			Metric:     v,
			Thresholds: th,
			Reported:   m.Status,
		})
	}
	return out, nil
}

// duplicationMetric is the percentage of duplicated reads.
func duplicationMetric(m *fqc.Module, _ *fqc.ModuleSchema) (float64, bool) {
	if v, ok := m.MetaFloat(fqc.MetaTotalDeduplicated); ok {
		return 100 - v, true
	}
	return m.MetaFloat(fqc.MetaTotalDuplicate)
}

func maxOfCategories(m *fqc.Module, schema *fqc.ModuleSchema) (float64, bool) {
	if schema == nil || len(schema.Categories) == 0 || m.Table.Empty() {
		return 0, false
	}
	best := math.Inf(-1)
	for _, c := range schema.Categories {
		for _, v := range m.Table.Column(c) {
			best = math.Max(best, v)
		}
	}
	return best, true
}

func maxOfField(field string) metricFunc {
	return func(m *fqc.Module, _ *fqc.ModuleSchema) (float64, bool) {
		if m.Table.Index(field) < 0 {
			return 0, false
		}
		// a detected module without rows reports nothing above zero
		best := 0.0
		for _, v := range m.Table.Column(field) {
			best = math.Max(best, v)
		}
		return best, true
	}
}

func minOfField(field string) metricFunc {
	return func(m *fqc.Module, _ *fqc.ModuleSchema) (float64, bool) {
		values := m.Table.Column(field)
		if len(values) == 0 {
			return 0, false
		}
		best := math.Inf(1)
		for _, v := range values {
			best = math.Min(best, v)
		}
		return best, true
	}
}
