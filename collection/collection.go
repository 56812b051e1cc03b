// Package collection groups parsed FastQC reports for side-by-side comparison.
package collection

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/multierr"

	fqc "fqc_viz_go/fastqc_report"
)

var ErrDuplicateReport = errors.New("duplicate report filename")

// Collection is an ordered set of reports, unique by filename. Add returns a new
// collection; an existing one never changes.
type Collection struct {
	reports []*fqc.Report
	index   map[string]int
}

// New builds a collection in the given order.
func New(reports ...*fqc.Report) (*Collection, error) {
	c := &Collection{index: map[string]int{}}
	for _, r := range reports {
		next, err := c.Add(r)
		if err != nil {
			return nil, err
		}
		c = next
	}
	return c, nil
}

// Add returns a copy of c with r appended.
func (c *Collection) Add(r *fqc.Report) (*Collection, error) {
	if r == nil {
		return nil, errors.New("nil report")
	}
	if _, dup := c.index[r.Filename]; dup {
		return nil, errors.Wrapf(ErrDuplicateReport, "%s", r.Filename)
	}
	next := &Collection{
		reports: make([]*fqc.Report, len(c.reports), len(c.reports)+1),
		index:   make(map[string]int, len(c.index)+1),
	}
	copy(next.reports, c.reports)
	for k, v := range c.index {
		next.index[k] = v
	}
	next.index[r.Filename] = len(next.reports)
	next.reports = append(next.reports, r)
	return next, nil
}

func (c *Collection) Len() int { return len(c.reports) }

// Reports returns the members in insertion order.
func (c *Collection) Reports() []*fqc.Report {
	out := make([]*fqc.Report, len(c.reports))
	copy(out, c.reports)
	return out
}

// Filenames returns the member filenames in insertion order.
func (c *Collection) Filenames() []string {
	names := make([]string, len(c.reports))
	for i, r := range c.reports {
		names[i] = r.Filename
	}
	return names
}

// Get looks a member up by filename.
func (c *Collection) Get(filename string) (*fqc.Report, bool) {
	i, ok := c.index[filename]
	if !ok {
		return nil, false
	}
	return c.reports[i], true
}

// ModuleTable is a module's rows concatenated across the collection. Skipped names the
// members left out because their layout has no such module or its columns differ from
// the first contributing member.
type ModuleTable struct {
	Module  string
	Schema  *fqc.ModuleSchema
	Fields  []fqc.Field
	Rows    []fqc.Row
	Members []string
	Skipped []string
}

// Empty reports whether no member contributed rows. Callers render a placeholder then.
func (t *ModuleTable) Empty() bool { return len(t.Rows) == 0 }

// Table views the concatenated rows as a single table.
func (t *ModuleTable) Table() *fqc.Table {
	return &fqc.Table{Fields: t.Fields, Rows: t.Rows}
}

// RowsOf returns the rows one member contributed, in source order.
func (t *ModuleTable) RowsOf(filename string) []fqc.Row {
	var out []fqc.Row
	for _, r := range t.Rows {
		if r.Filename == filename {
			out = append(out, r)
		}
	}
	return out
}

// Module concatenates the named module across members in insertion order. It never
// fails: a module nobody has yields an empty table.
func (c *Collection) Module(name string) *ModuleTable {
	out := &ModuleTable{Module: name}
	for _, r := range c.reports {
		m, err := r.Module(name)
		if err != nil {
			out.Skipped = append(out.Skipped, r.Filename)
			continue
		}
		if !m.Detected || m.Table.Empty() {
			continue
		}
		if out.Fields == nil {
			out.Fields = m.Table.Fields
			out.Schema, _ = r.Layout.Schema(name)
		} else if !fqc.SameFields(out.Fields, m.Table.Fields) {
			slog.Debug("skipping member with different columns", "module", name, "file", r.Filename, "version", r.Version)
			out.Skipped = append(out.Skipped, r.Filename)
			continue
		}
		out.Members = append(out.Members, r.Filename)
		out.Rows = append(out.Rows, m.Table.Rows...)
	}
	if out.Fields == nil {
		if s, ok := c.Schema(name); ok {
			out.Schema, out.Fields = s, s.Fields
		}
	}
	return out
}

// Schema returns the module schema of the first member whose layout has the module.
func (c *Collection) Schema(name string) (*fqc.ModuleSchema, bool) {
	for _, r := range c.reports {
		if s, ok := r.Layout.Schema(name); ok {
			return s, true
		}
	}
	return nil, false
}

// Compatibility lists every structural difference between members: module sets and field
// schemas are compared against the first member. A nil result means the collection is
// uniform.
func (c *Collection) Compatibility() error {
	if len(c.reports) < 2 {
		return nil
	}
	ref := c.reports[0]
	var errs error
	for _, r := range c.reports[1:] {
		if a, b := ref.ModuleNames(), r.ModuleNames(); strings.Join(a, ",") != strings.Join(b, ",") {
			errs = multierr.Append(errs, fmt.Errorf("%s (FastQC %s) and %s (FastQC %s) have different module sets",
				ref.Filename, ref.Version, r.Filename, r.Version))
			continue
		}
		for _, name := range ref.ModuleNames() {
			ma, _ := ref.Module(name)
			mb, _ := r.Module(name)
			if !fqc.SameFields(ma.Table.Fields, mb.Table.Fields) {
				errs = multierr.Append(errs, fmt.Errorf("%s: %s and %s have different columns", name, ref.Filename, r.Filename))
			}
		}
	}
	return errs
}
