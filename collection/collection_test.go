package collection

import (
	"errors"
	"path/filepath"
	"testing"

	"go.uber.org/multierr"

	fqc "fqc_viz_go/fastqc_report"
)

func load(t *testing.T, names ...string) []*fqc.Report {
	t.Helper()
	var out []*fqc.Report
	for _, n := range names {
		r, err := fqc.ParseFile(filepath.Join("..", "testdata", n))
		if err != nil {
			t.Fatalf("ParseFile(%s): %v", n, err)
		}
		out = append(out, r)
	}
	return out
}

const (
	sampleA   = "sampleA_fastqc_data.txt"
	sampleB   = "sampleB_fastqc_data.txt"
	sampleD   = "sampleD_noadapter_fastqc_data.txt"
	sampleOld = "sampleOld_0.10_fastqc_data.txt"
)

func TestAddIsPersistent(t *testing.T) {
	reports := load(t, sampleA, sampleB)

	c1, err := New(reports[0])
	if err != nil {
		t.Fatal(err)
	}
	c2, err := c1.Add(reports[1])
	if err != nil {
		t.Fatal(err)
	}
	if c1.Len() != 1 || c2.Len() != 2 {
		t.Errorf("expected lengths 1 and 2, got %d and %d", c1.Len(), c2.Len())
	}
	if _, ok := c1.Get(sampleB); ok {
		t.Error("adding to a collection must not change it")
	}

	_, err = c2.Add(reports[0])
	if !errors.Is(err, ErrDuplicateReport) {
		t.Errorf("expected ErrDuplicateReport, got %v", err)
	}
}

func TestModuleAbsentEverywhere(t *testing.T) {
	c, err := New(load(t, sampleA, sampleB)...)
	if err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{fqc.ModKmerContent, "Not_A_Module"} {
		mt := c.Module(name)
		if !mt.Empty() {
			t.Errorf("%s: expected empty table", name)
		}
	}
}

func TestModulePreservesInsertionOrder(t *testing.T) {
	c, err := New(load(t, sampleB, sampleA)...)
	if err != nil {
		t.Fatal(err)
	}
	mt := c.Module(fqc.ModPerBaseQuality)
	if len(mt.Members) != 2 || mt.Members[0] != sampleB || mt.Members[1] != sampleA {
		t.Fatalf("unexpected member order %v", mt.Members)
	}
	if len(mt.Rows) != 8 {
		t.Fatalf("expected 8 rows, got %d", len(mt.Rows))
	}
	for i, r := range mt.Rows {
		want := sampleB
		if i >= 4 {
			want = sampleA
		}
		if r.Filename != want {
			t.Errorf("row %d: expected %s, got %s", i, want, r.Filename)
		}
	}
	if got := len(mt.RowsOf(sampleA)); got != 4 {
		t.Errorf("expected 4 rows for %s, got %d", sampleA, got)
	}
}

func TestModuleMissingInOneMember(t *testing.T) {
	c, err := New(load(t, sampleA, sampleD, sampleB)...)
	if err != nil {
		t.Fatal(err)
	}
	mt := c.Module(fqc.ModAdapterContent)
	if mt.Empty() {
		t.Fatal("two members carry adapter content")
	}
	if len(mt.Members) != 2 || mt.Members[0] != sampleA || mt.Members[1] != sampleB {
		t.Errorf("unexpected members %v", mt.Members)
	}
	if len(mt.Skipped) != 0 {
		t.Errorf("a not-detected module is not a schema mismatch: %v", mt.Skipped)
	}
	for _, r := range mt.Rows {
		if r.Filename != sampleA && r.Filename != sampleB {
			t.Errorf("unexpected filename %q", r.Filename)
		}
	}
	if c.Compatibility() != nil {
		t.Errorf("same layout members should be compatible: %v", c.Compatibility())
	}
}

func TestModuleMixedVersions(t *testing.T) {
	c, err := New(load(t, sampleA, sampleOld)...)
	if err != nil {
		t.Fatal(err)
	}

	adapters := c.Module(fqc.ModAdapterContent)
	if len(adapters.Members) != 1 || len(adapters.Skipped) != 1 || adapters.Skipped[0] != sampleOld {
		t.Errorf("expected the 0.10 member to be skipped, got members %v skipped %v", adapters.Members, adapters.Skipped)
	}

	dup := c.Module(fqc.ModDuplicationLevels)
	if len(dup.Members) != 1 || dup.Members[0] != sampleA {
		t.Errorf("expected only the 0.11 member, got %v", dup.Members)
	}

	err = c.Compatibility()
	if err == nil {
		t.Fatal("mixed layouts should be reported")
	}
	if len(multierr.Errors(err)) != 1 {
		t.Errorf("expected a single module-set difference, got %v", err)
	}
}
