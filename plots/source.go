// Package plots is the chart catalogue: one builder per chart kind, fed from a file path,
// a single report or a collection.
package plots

import (
	"github.com/pkg/errors"

	"fqc_viz_go/collection"
	fqc "fqc_viz_go/fastqc_report"
)

// SourceKind tags the variant a Source holds.
type SourceKind int

const (
	SourcePaths SourceKind = iota
	SourceReport
	SourceCollection
)

func (k SourceKind) String() string {
	switch k {
	case SourcePaths:
		return "paths"
	case SourceReport:
		return "report"
	case SourceCollection:
		return "collection"
	}
	return "unknown"
}

// Source is where chart data comes from. Build one with FromPath, FromReport or
// FromCollection; the zero value is invalid.
type Source struct {
	kind   SourceKind
	paths  []string
	report *fqc.Report
	coll   *collection.Collection
	valid  bool
}

// FromPath reads one or more FastQC results from disk.
func FromPath(paths ...string) Source {
	return Source{kind: SourcePaths, paths: append([]string(nil), paths...), valid: true}
}

func FromReport(r *fqc.Report) Source {
	return Source{kind: SourceReport, report: r, valid: true}
}

func FromCollection(c *collection.Collection) Source {
	return Source{kind: SourceCollection, coll: c, valid: true}
}

func (s Source) Kind() SourceKind { return s.kind }

// Resolve turns the source into a collection. Paths are parsed with up to workers
// goroutines.
func (s Source) Resolve(workers int) (*collection.Collection, error) {
	if !s.valid {
		return nil, errors.New("empty plot source")
	}
	switch s.kind {
	case SourcePaths:
		if len(s.paths) == 0 {
			return nil, errors.New("no input files")
		}
		reports, err := fqc.ParseFiles(s.paths, workers)
		if err != nil {
			return nil, err
		}
		return collection.New(reports...)
	case SourceReport:
		if s.report == nil {
			return nil, errors.New("nil report")
		}
		return collection.New(s.report)
	case SourceCollection:
		if s.coll == nil {
			return nil, errors.New("nil collection")
		}
		return s.coll, nil
	}
	return nil, errors.Errorf("unknown source kind %d", s.kind)
}
