package fastqc_report

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/pkg/errors"
)

// Write serializes a report in the fastqc_data.txt layout. Cells are written from their
// source text, so Parse(Write(r)) reproduces every value exactly. Modules that were not
// detected are left out.
func Write(w io.Writer, r *Report) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintf(bw, "%s\t%s\n", versionMarker, r.Version)
	for _, m := range r.modules {
		if !m.Detected {
			continue
		}
		fmt.Fprintf(bw, ">>%s\t%s\n", m.Title, m.Status)
		for _, e := range m.Meta {
			fmt.Fprintf(bw, "#%s\t%s\n", e.Key, e.Value)
		}
		if len(m.Table.Rows) > 0 || m.Name == ModBasicStatistics {
			names := make([]string, len(m.Table.Fields))
			for i, fld := range m.Table.Fields {
				names[i] = fld.Name
			}
			fmt.Fprintf(bw, "#%s\n", strings.Join(names, "\t"))
		}
		for _, row := range m.Table.Rows {
			texts := make([]string, len(row.Cells))
			for i, c := range row.Cells {
				texts[i] = c.Text
			}
			fmt.Fprintf(bw, "%s\n", strings.Join(texts, "\t"))
		}
		fmt.Fprintf(bw, "%s\n", endModule)
	}

	return errors.WithStack(bw.Flush())
}
