package export

import (
	"encoding/json"
	"io"

	"github.com/pkg/errors"

	"fqc_viz_go/collection"
	fqc "fqc_viz_go/fastqc_report"
	"fqc_viz_go/transform"
)

type jsonField struct {
	Name string `json:"name"`
	Kind string `json:"kind"`
}

type jsonRow struct {
	Filename string         `json:"filename"`
	Values   map[string]any `json:"values"`
}

type jsonTable struct {
	Module  string      `json:"module"`
	Fields  []jsonField `json:"fields"`
	Rows    []jsonRow   `json:"rows"`
	Skipped []string    `json:"skipped,omitempty"`
}

// WriteJSON writes a module table. Integer and float cells become numbers; string and
// range cells keep their source text.
func WriteJSON(w io.Writer, mt *collection.ModuleTable) error {
	out := jsonTable{Module: mt.Module, Skipped: mt.Skipped, Rows: []jsonRow{}}
	for _, f := range mt.Fields {
		out.Fields = append(out.Fields, jsonField{Name: f.Name, Kind: f.Kind.String()})
	}
	for _, r := range mt.Rows {
		row := jsonRow{Filename: r.Filename, Values: make(map[string]any, len(r.Cells))}
		for i, c := range r.Cells {
			row.Values[mt.Fields[i].Name] = cellValue(mt.Fields[i].Kind, c)
		}
		out.Rows = append(out.Rows, row)
	}
	return encode(w, out)
}

// WriteStatusJSON writes status records as a JSON array.
func WriteStatusJSON(w io.Writer, records []transform.StatusRecord) error {
	if records == nil {
		records = []transform.StatusRecord{}
	}
	return encode(w, records)
}

func encode(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return errors.Wrap(enc.Encode(v), "writing json")
}

func cellValue(kind fqc.Kind, c fqc.Cell) any {
	switch kind {
	case fqc.KindInt, fqc.KindFloat:
		return c.Num
	}
	return c.Text
}
