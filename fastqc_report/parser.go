package fastqc_report

import (
	"archive/zip"
	"bufio"
	"io"
	"log/slog"
	"path"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	common "fqc_viz_go/utils"
)

// DataFileName is the text file FastQC writes inside its zip archive.
const DataFileName = "fastqc_data.txt"

const (
	versionMarker = "##FastQC"
	endModule     = ">>END_MODULE"
)

// ParseFile reads a FastQC result from disk. The file may be the *_fastqc.zip archive, a
// gzipped fastqc_data.txt or the plain text file; the report's Filename is the base name
// of path.
func ParseFile(file string) (*Report, error) {
	name := filepath.Base(file)

	isZip, err := common.IsZip(file)
	if err != nil {
		return nil, err
	}
	if isZip {
		return parseZip(file, name)
	}

	rc, err := common.OpenMaybeGzip(file)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	return Parse(rc, name)
}

func parseZip(file, name string) (*Report, error) {
	zr, err := zip.OpenReader(file)
	if err != nil {
		return nil, common.ReadFailure(err, "opening archive %s", file)
	}
	defer zr.Close()

	var entry *zip.File
	for _, zf := range zr.File {
		if path.Base(zf.Name) != DataFileName {
			continue
		}
		if entry != nil {
			return nil, malformed(name, "archive", 0, "more than one %s entry (%s, %s)", DataFileName, entry.Name, zf.Name)
		}
		entry = zf
	}
	if entry == nil {
		return nil, malformed(name, "archive", 0, "no %s entry", DataFileName)
	}

	rc, err := entry.Open()
	if err != nil {
		return nil, common.ReadFailure(err, "opening %s in %s", entry.Name, file)
	}
	defer rc.Close()

	return Parse(rc, name)
}

// section accumulates one module while it is being scanned.
type section struct {
	schema *ModuleSchema
	module *Module
	start  int
	hashes []hashLine
	header bool
}

type hashLine struct {
	line   int
	fields []string
}

// Parse decodes fastqc_data.txt content. filename is recorded on the report and on every
// row.
func Parse(r io.Reader, filename string) (*Report, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024) // overrepresented sequences can be long

	var (
		report *Report
		layout *Layout
		cur    *section
		parsed = map[string]*Module{}
		lineNo int
	)

	for scanner.Scan() {
		lineNo++
		text := strings.TrimRight(scanner.Text(), "\r")

		if report == nil {
			if !strings.HasPrefix(text, versionMarker) {
				return nil, malformed(filename, "header", lineNo, "expected %q version marker, got %q", versionMarker, text)
			}
			version := strings.TrimSpace(strings.TrimPrefix(text, versionMarker))
			l, ok := LayoutFor(version)
			if !ok {
				return nil, errors.WithStack(&UnsupportedVersionError{Filename: filename, Version: version})
			}
			layout = l
			report = &Report{Filename: filename, Version: version, Layout: layout}
			continue
		}

		if strings.TrimSpace(text) == "" {
			continue
		}

		switch {
		case strings.HasPrefix(text, endModule):
			if strings.TrimSpace(text) != endModule {
				return nil, malformed(filename, sectionName(cur), lineNo, "garbled end marker %q", text)
			}
			if cur == nil {
				return nil, malformed(filename, "", lineNo, "%s without an open module", endModule)
			}
			if err := cur.finish(filename); err != nil {
				return nil, err
			}
			parsed[cur.module.Name] = cur.module
			slog.Debug("parsed module", "file", filename, "module", cur.module.Name, "rows", cur.module.Table.Len())
			cur = nil

		case strings.HasPrefix(text, ">>"):
			if cur != nil {
				return nil, malformed(filename, cur.schema.Title, lineNo, "module not terminated before %q", text)
			}
			next, err := openSection(filename, layout, text, lineNo)
			if err != nil {
				return nil, err
			}
			if _, dup := parsed[next.module.Name]; dup {
				return nil, malformed(filename, next.schema.Title, lineNo, "duplicate module header")
			}
			cur = next

		case cur == nil:
			return nil, malformed(filename, "", lineNo, "content outside of a module: %q", text)

		case strings.HasPrefix(text, "#"):
			if cur.header {
				return nil, malformed(filename, cur.schema.Title, lineNo, "'#' line after table data")
			}
			cur.hashes = append(cur.hashes, hashLine{line: lineNo, fields: strings.Split(text[1:], "\t")})

		default:
			if !cur.header {
				if err := cur.resolveHeader(filename); err != nil {
					return nil, err
				}
			}
			if err := cur.addRow(filename, text, lineNo); err != nil {
				return nil, err
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, common.ReadFailure(err, "reading %s", filename)
	}

	if report == nil {
		return nil, malformed(filename, "header", 0, "empty input")
	}
	if cur != nil {
		return nil, malformed(filename, cur.schema.Title, cur.start, "module not terminated at end of input")
	}

	for i := range layout.Modules {
		schema := &layout.Modules[i]
		if m, ok := parsed[schema.Name]; ok {
			report.modules = append(report.modules, m)
			continue
		}
		if schema.Required {
			return nil, malformed(filename, schema.Title, 0, "required module missing")
		}
		report.modules = append(report.modules, &Module{
			Name:  schema.Name,
			Title: schema.Title,
			Table: Table{Fields: schema.Fields},
		})
	}

	return report, nil
}

func sectionName(s *section) string {
	if s == nil {
		return ""
	}
	return s.schema.Title
}

func openSection(filename string, layout *Layout, text string, lineNo int) (*section, error) {
	parts := strings.Split(strings.TrimPrefix(text, ">>"), "\t")
	if len(parts) != 2 {
		return nil, malformed(filename, parts[0], lineNo, "module header must be \"title<TAB>status\", got %q", text)
	}
	title := strings.TrimSpace(parts[0])
	schema, ok := layout.byTitle(title)
	if !ok {
		return nil, malformed(filename, title, lineNo, "unknown module for FastQC %s layout", layout.Name)
	}
	status, ok := parseStatus(strings.TrimSpace(parts[1]))
	if !ok {
		return nil, malformed(filename, title, lineNo, "unknown status %q", parts[1])
	}
	return &section{
		schema: schema,
		start:  lineNo,
		module: &Module{
			Name:     schema.Name,
			Title:    schema.Title,
			Status:   status,
			Detected: true,
			Table:    Table{Fields: schema.Fields},
		},
	}, nil
}

// resolveHeader is called on the first data line: the last '#' line is the column header,
// every earlier one is a key-value metadata entry.
func (s *section) resolveHeader(filename string) error {
	if len(s.hashes) == 0 {
		return malformed(filename, s.schema.Title, s.start, "table data without a column header")
	}
	last := s.hashes[len(s.hashes)-1]
	if !sameNames(last.fields, s.schema.HeaderNames()) {
		return malformed(filename, s.schema.Title, last.line, "column header %q does not match %q",
			strings.Join(last.fields, "\t"), strings.Join(s.schema.HeaderNames(), "\t"))
	}
	if err := s.addMeta(filename, s.hashes[:len(s.hashes)-1]); err != nil {
		return err
	}
	s.header = true
	return nil
}

// finish settles the '#' lines of a module that carried no table rows.
func (s *section) finish(filename string) error {
	if s.header {
		return nil
	}
	hashes := s.hashes
	if n := len(hashes); n > 0 && sameNames(hashes[n-1].fields, s.schema.HeaderNames()) {
		hashes = hashes[:n-1]
	}
	return s.addMeta(filename, hashes)
}

func (s *section) addMeta(filename string, lines []hashLine) error {
	for _, h := range lines {
		if len(h.fields) != 2 {
			return malformed(filename, s.schema.Title, h.line, "metadata line needs a key and a value, got %q", strings.Join(h.fields, "\t"))
		}
		s.module.Meta = append(s.module.Meta, MetaEntry{Key: strings.TrimSpace(h.fields[0]), Value: strings.TrimSpace(h.fields[1])})
	}
	return nil
}

func (s *section) addRow(filename, text string, lineNo int) error {
	parts := strings.Split(text, "\t")
	fields := s.schema.Fields
	if len(parts) != len(fields) {
		return malformed(filename, s.schema.Title, lineNo, "expected %d columns, got %d", len(fields), len(parts))
	}
	cells := make([]Cell, len(parts))
	for i, raw := range parts {
		c, err := parseCell(raw, fields[i].Kind)
		if err != nil {
			return malformed(filename, s.schema.Title, lineNo, "column %q: %v", fields[i].Name, err)
		}
		cells[i] = c
	}
	s.module.Table.Rows = append(s.module.Table.Rows, Row{Filename: filename, Cells: cells})
	return nil
}

func sameNames(got, want []string) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range got {
		if strings.TrimSpace(got[i]) != want[i] {
			return false
		}
	}
	return true
}

func parseCell(raw string, kind Kind) (Cell, error) {
	text := strings.TrimSpace(raw)
	switch kind {
	case KindString:
		return Cell{Text: text}, nil
	case KindInt:
		n, err := strconv.ParseInt(text, 10, 64)
		if err != nil {
			return Cell{}, errors.Errorf("not an integer: %q", text)
		}
		return Cell{Text: text, Num: float64(n), End: float64(n)}, nil
	case KindFloat:
		v, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return Cell{}, errors.Errorf("not a number: %q", text)
		}
		return Cell{Text: text, Num: v, End: v}, nil
	case KindRange:
		lo, hi, found := strings.Cut(text, "-")
		start, err := strconv.Atoi(lo)
		if err != nil {
			return Cell{}, errors.Errorf("not a position: %q", text)
		}
		end := start
		if found {
			if end, err = strconv.Atoi(hi); err != nil || end < start {
				return Cell{}, errors.Errorf("not a position range: %q", text)
			}
		}
		return Cell{Text: text, Num: float64(start), End: float64(end)}, nil
	}
	return Cell{}, errors.Errorf("unknown column kind %v", kind)
}
