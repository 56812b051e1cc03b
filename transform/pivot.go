// Package transform reshapes module tables into chart-ready data. Every function is pure
// and keeps input order.
package transform

import (
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	fqc "fqc_viz_go/fastqc_report"
)

// LongRow is one (sample, key, category) observation of a wide module table.
type LongRow struct {
	Filename string
	Key      fqc.Cell
	Field    string
	Category string
	Value    float64
}

var titleCaser = cases.Title(language.English, cases.NoLower)

// CategoryLabel turns a category field name into a display label: the schema affixes are
// stripped and the remainder title-cased ("Percentage of total" -> "Total").
func CategoryLabel(field, prefix, suffix string) string {
	label := field
	if prefix != "" {
		label = strings.TrimPrefix(label, prefix)
	}
	if suffix != "" {
		label = strings.TrimSuffix(label, suffix)
	}
	return titleCaser.String(strings.TrimSpace(label))
}

// Labels returns the display labels of a schema's categories, in schema order.
func Labels(schema *fqc.ModuleSchema) []string {
	out := make([]string, len(schema.Categories))
	for i, c := range schema.Categories {
		out[i] = CategoryLabel(c, schema.CategoryPrefix, schema.CategorySuffix)
	}
	return out
}

// PivotLonger turns one row per (sample, key) with one column per category into one row
// per (sample, key, category). Categories come from the schema, never from the column names.
func PivotLonger(t *fqc.Table, schema *fqc.ModuleSchema) ([]LongRow, error) {
	if len(schema.Categories) == 0 {
		return nil, errors.Errorf("module %s has no percentage categories", schema.Name)
	}
	keyIdx := t.Index(schema.Key)
	if keyIdx < 0 {
		return nil, errors.Errorf("module %s: key field %q not in table", schema.Name, schema.Key)
	}
	catIdx := make([]int, len(schema.Categories))
	for i, c := range schema.Categories {
		if catIdx[i] = t.Index(c); catIdx[i] < 0 {
			return nil, errors.Errorf("module %s: category field %q not in table", schema.Name, c)
		}
	}
	labels := Labels(schema)

	out := make([]LongRow, 0, len(t.Rows)*len(catIdx))
	for _, row := range t.Rows {
		for i, idx := range catIdx {
			out = append(out, LongRow{
				Filename: row.Filename,
				Key:      row.Cells[keyIdx],
				Field:    schema.Categories[i],
				Category: labels[i],
				Value:    row.Cells[idx].Num,
			})
		}
	}
	return out, nil
}
