// Package fastqc_report decodes FastQC fastqc_data.txt output (plain, gzipped or inside the
// *_fastqc.zip archive) into typed, per-module tables.
package fastqc_report

import "strconv"

// Kind is the column type a module schema assigns to a field.
type Kind int

const (
	KindString Kind = iota // categorical text, e.g. duplication level ">10"
	KindInt                // integer counts and positions
	KindFloat              // percentages, means, counts written with a decimal point
	KindRange              // base positions, either "7" or "10-14"
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindRange:
		return "range"
	}
	return "kind(" + strconv.Itoa(int(k)) + ")"
}

// Field is one column of a module table.
type Field struct {
	Name string
	Kind Kind
}

// Cell keeps the exact source text next to its parsed value. Range cells hold the first
// position in Num and the last one in End; for every other numeric kind End equals Num.
type Cell struct {
	Text string
	Num  float64
	End  float64
}

// Mid returns the centre of a range cell (the value itself for single positions).
func (c Cell) Mid() float64 {
	return (c.Num + c.End) / 2
}

// Row is one table record. Filename is the report the row was parsed from, so rows from
// many reports can be concatenated without losing provenance.
type Row struct {
	Filename string
	Cells    []Cell
}

// Table is a module's tabular body.
type Table struct {
	Fields []Field
	Rows   []Row
}

// Index returns the position of a field, or -1.
func (t *Table) Index(name string) int {
	for i, f := range t.Fields {
		if f.Name == name {
			return i
		}
	}
	return -1
}

func (t *Table) Len() int { return len(t.Rows) }

func (t *Table) Empty() bool { return len(t.Rows) == 0 }

// Cell returns the named cell of row i.
func (t *Table) Cell(i int, field string) (Cell, bool) {
	idx := t.Index(field)
	if idx < 0 || i < 0 || i >= len(t.Rows) {
		return Cell{}, false
	}
	return t.Rows[i].Cells[idx], true
}

// Float returns the numeric value of the named cell of row i.
func (t *Table) Float(i int, field string) (float64, bool) {
	c, ok := t.Cell(i, field)
	return c.Num, ok
}

// Text returns the source text of the named cell of row i.
func (t *Table) Text(i int, field string) (string, bool) {
	c, ok := t.Cell(i, field)
	return c.Text, ok
}

// Column collects the numeric values of a field, in row order.
func (t *Table) Column(field string) []float64 {
	idx := t.Index(field)
	if idx < 0 {
		return nil
	}
	out := make([]float64, len(t.Rows))
	for i, r := range t.Rows {
		out[i] = r.Cells[idx].Num
	}
	return out
}

// SameFields reports whether two field lists match name for name and kind for kind.
func SameFields(a, b []Field) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Status is the verdict FastQC printed next to a module header.
type Status string

const (
	StatusPass Status = "pass"
	StatusWarn Status = "warn"
	StatusFail Status = "fail"
)

func parseStatus(s string) (Status, bool) {
	switch Status(s) {
	case StatusPass, StatusWarn, StatusFail:
		return Status(s), true
	}
	return "", false
}

// MetaEntry is a "#Key\tValue" line found before a module's column header.
type MetaEntry struct {
	Key   string
	Value string
}

// Module is one ">>Title\tstatus ... >>END_MODULE" section. Modules the layout knows but
// the file does not contain have Detected == false and an empty table.
type Module struct {
	Name     string
	Title    string
	Status   Status
	Detected bool
	Meta     []MetaEntry
	Table    Table
}

// MetaValue looks a metadata key up.
func (m *Module) MetaValue(key string) (string, bool) {
	for _, e := range m.Meta {
		if e.Key == key {
			return e.Value, true
		}
	}
	return "", false
}

// MetaFloat looks a metadata key up and parses it as a number.
func (m *Module) MetaFloat(key string) (float64, bool) {
	v, ok := m.MetaValue(key)
	if !ok {
		return 0, false
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// Report is one parsed FastQC run. It is not modified after Parse returns; callers must
// treat the modules and tables it hands out as read-only.
type Report struct {
	Filename string
	Version  string
	Layout   *Layout

	modules []*Module
}

// Modules returns every module of the layout, detected or not, in layout order.
func (r *Report) Modules() []*Module {
	out := make([]*Module, len(r.modules))
	copy(out, r.modules)
	return out
}

// ModuleNames lists the canonical module names of the report's layout.
func (r *Report) ModuleNames() []string {
	names := make([]string, len(r.modules))
	for i, m := range r.modules {
		names[i] = m.Name
	}
	return names
}

// Module returns the named module. A name outside the report's layout is a
// *MissingModuleError; a known but absent module is returned empty.
func (r *Report) Module(name string) (*Module, error) {
	for _, m := range r.modules {
		if m.Name == name {
			return m, nil
		}
	}
	return nil, &MissingModuleError{Module: name, Filename: r.Filename, Version: r.Version}
}

// Has reports whether the module was present in the file.
func (r *Report) Has(name string) bool {
	m, err := r.Module(name)
	return err == nil && m.Detected
}

// BasicStatistic returns a "Basic Statistics" measure, e.g. "Total Sequences".
func (r *Report) BasicStatistic(measure string) (string, bool) {
	m, err := r.Module(ModBasicStatistics)
	if err != nil {
		return "", false
	}
	for i := range m.Table.Rows {
		if k, _ := m.Table.Text(i, "Measure"); k == measure {
			return m.Table.Text(i, "Value")
		}
	}
	return "", false
}
