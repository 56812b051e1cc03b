// Package export writes module tables and status verdicts as TSV, JSON or a SQLite
// database.
package export

import (
	"encoding/csv"
	"io"

	"github.com/pkg/errors"

	"fqc_viz_go/collection"
)

// WriteTSV writes the concatenated module table with the source filename as first column.
// Cells keep their source text.
func WriteTSV(w io.Writer, mt *collection.ModuleTable) error {
	writer := csv.NewWriter(w)
	writer.Comma = '\t'

	header := make([]string, 0, len(mt.Fields)+1)
	header = append(header, "Filename")
	for _, f := range mt.Fields {
		header = append(header, f.Name)
	}
	if err := writer.Write(header); err != nil {
		return errors.Wrap(err, "writing tsv header")
	}

	for _, r := range mt.Rows {
		record := make([]string, 0, len(r.Cells)+1)
		record = append(record, r.Filename)
		for _, c := range r.Cells {
			record = append(record, c.Text)
		}
		if err := writer.Write(record); err != nil {
			return errors.Wrap(err, "writing tsv row")
		}
	}
	writer.Flush()
	return errors.Wrap(writer.Error(), "writing tsv")
}
