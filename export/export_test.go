package export

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"fqc_viz_go/collection"
	fqc "fqc_viz_go/fastqc_report"
	"fqc_viz_go/transform"
)

func loadCollection(t *testing.T, names ...string) *collection.Collection {
	t.Helper()
	var reports []*fqc.Report
	for _, n := range names {
		r, err := fqc.ParseFile(filepath.Join("..", "testdata", n))
		if err != nil {
			t.Fatalf("ParseFile(%s): %v", n, err)
		}
		reports = append(reports, r)
	}
	c, err := collection.New(reports...)
	if err != nil {
		t.Fatal(err)
	}
	return c
}

const (
	sampleA = "sampleA_fastqc_data.txt"
	sampleB = "sampleB_fastqc_data.txt"
)

func TestWriteTSV(t *testing.T) {
	c := loadCollection(t, sampleA, sampleB)
	mt := c.Module(fqc.ModPerBaseN)

	var buf bytes.Buffer
	if err := WriteTSV(&buf, mt); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if lines[0] != "Filename\tBase\tN-Count" {
		t.Errorf("unexpected header %q", lines[0])
	}
	if len(lines) != len(mt.Rows)+1 {
		t.Errorf("expected %d lines, got %d", len(mt.Rows)+1, len(lines))
	}
	if !strings.HasPrefix(lines[1], sampleA+"\t") {
		t.Errorf("first row should start with the filename, got %q", lines[1])
	}
}

func TestWriteJSON(t *testing.T) {
	c := loadCollection(t, sampleA)
	mt := c.Module(fqc.ModPerBaseN)

	var buf bytes.Buffer
	if err := WriteJSON(&buf, mt); err != nil {
		t.Fatal(err)
	}
	var got struct {
		Module string `json:"module"`
		Fields []struct {
			Name string `json:"name"`
			Kind string `json:"kind"`
		} `json:"fields"`
		Rows []struct {
			Filename string         `json:"filename"`
			Values   map[string]any `json:"values"`
		} `json:"rows"`
	}
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if got.Module != fqc.ModPerBaseN || len(got.Rows) != len(mt.Rows) {
		t.Fatalf("unexpected document: module %q, %d rows", got.Module, len(got.Rows))
	}
	if got.Fields[0].Kind != "range" || got.Fields[1].Kind != "float" {
		t.Errorf("unexpected field kinds %+v", got.Fields)
	}
	if _, ok := got.Rows[0].Values["Base"].(string); !ok {
		t.Errorf("range cells should be text, got %T", got.Rows[0].Values["Base"])
	}
	if _, ok := got.Rows[0].Values["N-Count"].(float64); !ok {
		t.Errorf("float cells should be numbers, got %T", got.Rows[0].Values["N-Count"])
	}
}

func TestWriteStatusJSONEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteStatusJSON(&buf, nil); err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(buf.String()) != "[]" {
		t.Errorf("expected an empty array, got %q", buf.String())
	}
}

func TestColumnName(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Illumina Small RNA 3' Adapter", "illumina_small_rna_3_adapter"},
		{"N-Count", "n_count"},
		{"Obs/Exp Max", "obs_exp_max"},
		{"Per_base_N_content", "per_base_n_content"},
		{"10th Percentile", "10th_percentile"},
	}
	for _, tt := range tests {
		if got := ColumnName(tt.in); got != tt.want {
			t.Errorf("ColumnName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestWriteSQLite(t *testing.T) {
	c := loadCollection(t, sampleA, sampleB)
	statuses, err := transform.Statuses(c, fqc.ModAdapterContent, nil)
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "fastqc.db")
	modules := []string{fqc.ModPerBaseN, fqc.ModAdapterContent, fqc.ModDuplicationLevels}
	if err := WriteSQLite(context.Background(), path, c, modules, statuses); err != nil {
		t.Fatal(err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	count := func(query string, args ...any) int {
		t.Helper()
		var n int
		if err := db.QueryRow(query, args...).Scan(&n); err != nil {
			t.Fatalf("%s: %v", query, err)
		}
		return n
	}

	if n := count(`SELECT COUNT(*) FROM reports`); n != 2 {
		t.Errorf("expected 2 reports, got %d", n)
	}
	if want, n := len(c.Module(fqc.ModPerBaseN).Rows), count(`SELECT COUNT(*) FROM per_base_n_content`); n != want {
		t.Errorf("expected %d N rows, got %d", want, n)
	}
	if n := count(`SELECT COUNT(*) FROM adapter_content WHERE filename = ?`, sampleA); n == 0 {
		t.Error("expected adapter rows for sampleA")
	}
	if n := count(`SELECT COUNT(*) FROM statuses WHERE module = ?`, fqc.ModAdapterContent); n != 2 {
		t.Errorf("expected 2 status rows, got %d", n)
	}

	var peak float64
	if err := db.QueryRow(`SELECT MAX(illumina_universal_adapter) FROM adapter_content WHERE filename = ?`, sampleA).Scan(&peak); err != nil {
		t.Fatal(err)
	}
	if peak != 6.5 {
		t.Errorf("expected adapter peak 6.5, got %v", peak)
	}

	// writing again replaces the tables
	if err := WriteSQLite(context.Background(), path, c, modules, statuses); err != nil {
		t.Fatal(err)
	}
	if n := count(`SELECT COUNT(*) FROM reports`); n != 2 {
		t.Errorf("expected 2 reports after rewrite, got %d", n)
	}
}
