package fastqc_report

import (
	"archive/zip"
	"bytes"
	"compress/gzip"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/farcloser/primordium/fault"
	"go.uber.org/multierr"
)

const fixtureDir = "../testdata"

func fixture(name string) string {
	return filepath.Join(fixtureDir, name)
}

func mustParse(t *testing.T, name string) *Report {
	t.Helper()
	r, err := ParseFile(fixture(name))
	if err != nil {
		t.Fatalf("ParseFile(%s) failed: %v", name, err)
	}
	return r
}

func TestParseFileV11(t *testing.T) {
	r := mustParse(t, "sampleA_fastqc_data.txt")

	if r.Filename != "sampleA_fastqc_data.txt" {
		t.Errorf("unexpected filename %q", r.Filename)
	}
	if r.Version != "0.11.9" || r.Layout.Name != "0.11" {
		t.Errorf("unexpected version %q / layout %q", r.Version, r.Layout.Name)
	}
	if got := len(r.Modules()); got != 12 {
		t.Fatalf("expected 12 modules in the 0.11 layout, got %d", got)
	}

	total, ok := r.BasicStatistic("Total Sequences")
	if !ok || total != "1000" {
		t.Errorf("Total Sequences = %q, %v", total, ok)
	}

	pbq, err := r.Module(ModPerBaseQuality)
	if err != nil {
		t.Fatalf("Module failed: %v", err)
	}
	if !pbq.Detected || pbq.Status != StatusPass {
		t.Errorf("per base quality should be detected with pass, got %v %q", pbq.Detected, pbq.Status)
	}
	if pbq.Table.Len() != 4 {
		t.Fatalf("expected 4 rows, got %d", pbq.Table.Len())
	}
	base, _ := pbq.Table.Cell(2, "Base")
	if base.Text != "3-4" || base.Num != 3 || base.End != 4 || base.Mid() != 3.5 {
		t.Errorf("unexpected range cell %+v", base)
	}
	if mean, _ := pbq.Table.Float(1, "Mean"); mean != 31.25 {
		t.Errorf("expected mean 31.25, got %v", mean)
	}

	for _, m := range r.Modules() {
		for _, row := range m.Table.Rows {
			if row.Filename != r.Filename {
				t.Fatalf("row of %s carries filename %q", m.Name, row.Filename)
			}
		}
	}

	dup, _ := r.Module(ModDuplicationLevels)
	if v, ok := dup.MetaFloat(MetaTotalDeduplicated); !ok || v != 72.5 {
		t.Errorf("expected deduplicated 72.5, got %v %v", v, ok)
	}
	if dup.Table.Len() != 16 {
		t.Errorf("expected 16 duplication levels, got %d", dup.Table.Len())
	}
	if lvl, _ := dup.Table.Text(15, "Duplication Level"); lvl != ">10k+" {
		t.Errorf("unexpected last level %q", lvl)
	}

	kmer, err := r.Module(ModKmerContent)
	if err != nil {
		t.Fatalf("known but absent module should not fail: %v", err)
	}
	if kmer.Detected || !kmer.Table.Empty() {
		t.Errorf("kmer content should be an empty, undetected module")
	}
	if len(kmer.Table.Fields) == 0 {
		t.Errorf("empty module should still carry its schema fields")
	}
}

func TestParseLayouts(t *testing.T) {
	tests := []struct {
		name        string
		file        string
		layout      string
		missing     string
		field       string
		fieldModule string
	}{
		{
			name:        "0.10 has no adapter content",
			file:        "sampleOld_0.10_fastqc_data.txt",
			layout:      "0.10",
			missing:     ModAdapterContent,
			field:       "Obs/Exp Overall",
			fieldModule: ModKmerContent,
		},
		{
			name:        "0.11 before 0.11.8 has one small RNA adapter",
			file:        "sampleE_0.11.5_fastqc_data.txt",
			layout:      "0.11.0-7",
			field:       "Illumina Small RNA Adapter",
			fieldModule: ModAdapterContent,
		},
		{
			name:        "0.12 adapters carry polyG",
			file:        "sampleC_012_fastqc_data.txt",
			layout:      "0.12",
			field:       "PolyG",
			fieldModule: ModAdapterContent,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := mustParse(t, tt.file)
			if r.Layout.Name != tt.layout {
				t.Errorf("expected layout %s, got %s", tt.layout, r.Layout.Name)
			}
			if tt.missing != "" {
				_, err := r.Module(tt.missing)
				if !errors.Is(err, ErrMissingModule) {
					t.Errorf("expected ErrMissingModule for %s, got %v", tt.missing, err)
				}
				var mm *MissingModuleError
				if !errors.As(err, &mm) || mm.Module != tt.missing {
					t.Errorf("expected MissingModuleError naming %s, got %v", tt.missing, err)
				}
			}
			m, err := r.Module(tt.fieldModule)
			if err != nil {
				t.Fatalf("Module(%s) failed: %v", tt.fieldModule, err)
			}
			if m.Table.Index(tt.field) < 0 {
				t.Errorf("expected field %q in %s", tt.field, tt.fieldModule)
			}
		})
	}
}

func TestLayoutForPatchVersions(t *testing.T) {
	tests := []struct {
		version string
		want    string
	}{
		{"0.11.2", "0.11.0-7"},
		{"0.11.7", "0.11.0-7"},
		{"0.11.8", "0.11"},
		{"0.11.9", "0.11"},
		{"0.11", "0.11"},
		{"0.11.0-7", "0.11.0-7"},
		{"0.10.1", "0.10"},
		{"0.12.1", "0.12"},
	}
	for _, tt := range tests {
		l, ok := LayoutFor(tt.version)
		if !ok || l.Name != tt.want {
			t.Errorf("LayoutFor(%q): expected %s, got %v %v", tt.version, tt.want, l, ok)
		}
	}
}

func TestParseEarlyAdapterValues(t *testing.T) {
	r := mustParse(t, "sampleE_0.11.5_fastqc_data.txt")
	adapters, err := r.Module(ModAdapterContent)
	if err != nil {
		t.Fatalf("Module failed: %v", err)
	}
	if got := len(adapters.Table.Fields); got != 5 {
		t.Fatalf("expected 5 adapter columns, got %d", got)
	}
	if v, _ := adapters.Table.Float(2, "Illumina Universal Adapter"); v != 7.25 {
		t.Errorf("expected 7.25 at 3-4, got %v", v)
	}
	if adapters.Status != StatusWarn {
		t.Errorf("expected warn status, got %s", adapters.Status)
	}
}

func TestParseOldDuplicationMeta(t *testing.T) {
	r := mustParse(t, "sampleOld_0.10_fastqc_data.txt")
	dup, _ := r.Module(ModDuplicationLevels)
	if v, ok := dup.MetaFloat(MetaTotalDuplicate); !ok || v != 25.5 {
		t.Errorf("expected total duplicate 25.5, got %v %v", v, ok)
	}
	kmer, _ := r.Module(ModKmerContent)
	pos, _ := kmer.Table.Cell(0, "Max Obs/Exp Position")
	if pos.Num != 40 || pos.End != 44 {
		t.Errorf("unexpected k-mer position %+v", pos)
	}
}

func TestParseReadFailure(t *testing.T) {
	boom := errors.New("disk gone")
	_, err := Parse(iotest.ErrReader(boom), "gone.txt")
	if !errors.Is(err, fault.ErrReadFailure) || !errors.Is(err, boom) {
		t.Errorf("expected a read failure wrapping the reader error, got %v", err)
	}
	if errors.Is(err, ErrMalformed) {
		t.Errorf("a read failure is not a malformed report: %v", err)
	}
}

func TestParseUnsupportedVersion(t *testing.T) {
	_, err := Parse(strings.NewReader("##FastQC\t0.9.5\n"), "old.txt")
	if !errors.Is(err, ErrUnsupportedVersion) {
		t.Fatalf("expected ErrUnsupportedVersion, got %v", err)
	}
	var uv *UnsupportedVersionError
	if !errors.As(err, &uv) || uv.Version != "0.9.5" {
		t.Fatalf("expected version 0.9.5 in error, got %v", err)
	}
	if !strings.Contains(err.Error(), "0.9.5") {
		t.Errorf("message should name the version: %s", err)
	}
}

const minimalBasic = ">>Basic Statistics\tpass\n#Measure\tValue\nTotal Sequences\t10\n>>END_MODULE\n"

func TestParseMalformed(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		section string
		line    int
	}{
		{
			name:    "missing version marker",
			input:   minimalBasic,
			section: "header",
			line:    1,
		},
		{
			name:    "duplicate module header",
			input:   "##FastQC\t0.11.9\n" + minimalBasic + minimalBasic,
			section: "Basic Statistics",
			line:    6,
		},
		{
			name:    "unterminated module before next",
			input:   "##FastQC\t0.11.9\n>>Basic Statistics\tpass\n#Measure\tValue\n>>Per base N content\tpass\n",
			section: "Basic Statistics",
			line:    4,
		},
		{
			name:    "unterminated at end of input",
			input:   "##FastQC\t0.11.9\n>>Basic Statistics\tpass\n#Measure\tValue\nTotal Sequences\t10\n",
			section: "Basic Statistics",
			line:    2,
		},
		{
			name:  "stray end marker",
			input: "##FastQC\t0.11.9\n>>END_MODULE\n",
			line:  2,
		},
		{
			name:    "garbled end marker",
			input:   "##FastQC\t0.11.9\n>>Basic Statistics\tpass\n#Measure\tValue\n>>END_MODULEE\n",
			section: "Basic Statistics",
			line:    4,
		},
		{
			name:    "unknown status",
			input:   "##FastQC\t0.11.9\n>>Basic Statistics\tmaybe\n",
			section: "Basic Statistics",
			line:    2,
		},
		{
			name:    "unknown module",
			input:   "##FastQC\t0.11.9\n>>Per base everything\tpass\n",
			section: "Per base everything",
			line:    2,
		},
		{
			name:    "header mismatch",
			input:   "##FastQC\t0.11.9\n" + minimalBasic + ">>Per base N content\tpass\n#Base\tN-Percent\n1\t0.0\n>>END_MODULE\n",
			section: "Per base N content",
			line:    7,
		},
		{
			name:    "column count",
			input:   "##FastQC\t0.11.9\n" + minimalBasic + ">>Per base N content\tpass\n#Base\tN-Count\n1\t0.0\t9\n>>END_MODULE\n",
			section: "Per base N content",
			line:    8,
		},
		{
			name:    "non numeric cell",
			input:   "##FastQC\t0.11.9\n" + minimalBasic + ">>Per base N content\tpass\n#Base\tN-Count\n1\tlots\n>>END_MODULE\n",
			section: "Per base N content",
			line:    8,
		},
		{
			name:    "missing basic statistics",
			input:   "##FastQC\t0.11.9\n>>Per base N content\tpass\n#Base\tN-Count\n1\t0.0\n>>END_MODULE\n",
			section: "Basic Statistics",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.input), "bad.txt")
			if !errors.Is(err, ErrMalformed) {
				t.Fatalf("expected ErrMalformed, got %v", err)
			}
			var me *MalformedError
			if !errors.As(err, &me) {
				t.Fatalf("expected *MalformedError, got %T", err)
			}
			if me.Section != tt.section {
				t.Errorf("expected section %q, got %q (%v)", tt.section, me.Section, err)
			}
			if me.Line != tt.line {
				t.Errorf("expected line %d, got %d (%v)", tt.line, me.Line, err)
			}
		})
	}
}

func TestParseCompressedContainers(t *testing.T) {
	raw, err := os.ReadFile(fixture("sampleA_fastqc_data.txt"))
	if err != nil {
		t.Fatal(err)
	}
	tmpDir := t.TempDir()

	gzPath := filepath.Join(tmpDir, "sampleA_fastqc_data.txt.gz")
	var gzBuf bytes.Buffer
	gw := gzip.NewWriter(&gzBuf)
	if _, err := gw.Write(raw); err != nil {
		t.Fatal(err)
	}
	if err := gw.Close(); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(gzPath, gzBuf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}

	zipPath := filepath.Join(tmpDir, "sampleA_fastqc.zip")
	var zipBuf bytes.Buffer
	zw := zip.NewWriter(&zipBuf)
	for name, body := range map[string][]byte{
		"sampleA_fastqc/fastqc_report.html": []byte("<html></html>"),
		"sampleA_fastqc/fastqc_data.txt":    raw,
	} {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := w.Write(body); err != nil {
			t.Fatal(err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(zipPath, zipBuf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}

	for _, p := range []string{gzPath, zipPath} {
		r, err := ParseFile(p)
		if err != nil {
			t.Fatalf("ParseFile(%s) failed: %v", p, err)
		}
		if r.Filename != filepath.Base(p) {
			t.Errorf("expected filename %s, got %s", filepath.Base(p), r.Filename)
		}
		if !r.Has(ModAdapterContent) {
			t.Errorf("%s: adapter content should be detected", p)
		}
	}
}

func TestParseZipWithoutData(t *testing.T) {
	zipPath := filepath.Join(t.TempDir(), "empty_fastqc.zip")
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	if _, err := zw.Create("empty_fastqc/summary.txt"); err != nil {
		t.Fatal(err)
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(zipPath, buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := ParseFile(zipPath)
	var me *MalformedError
	if !errors.As(err, &me) || me.Section != "archive" {
		t.Fatalf("expected archive MalformedError, got %v", err)
	}
}

func TestWriteRoundTrip(t *testing.T) {
	for _, name := range []string{"sampleA_fastqc_data.txt", "sampleOld_0.10_fastqc_data.txt", "sampleC_012_fastqc_data.txt"} {
		t.Run(name, func(t *testing.T) {
			raw, err := os.ReadFile(fixture(name))
			if err != nil {
				t.Fatal(err)
			}
			first := mustParse(t, name)

			var buf bytes.Buffer
			if err := Write(&buf, first); err != nil {
				t.Fatalf("Write failed: %v", err)
			}
			if buf.String() != string(raw) {
				t.Errorf("serialized report differs from source")
			}

			second, err := Parse(&buf, first.Filename)
			if err != nil {
				t.Fatalf("re-parse failed: %v", err)
			}
			a, b := first.Modules(), second.Modules()
			for i := range a {
				if len(a[i].Table.Rows) != len(b[i].Table.Rows) {
					t.Fatalf("%s: row count changed", a[i].Name)
				}
				for j := range a[i].Table.Rows {
					for k, c := range a[i].Table.Rows[j].Cells {
						if c != b[i].Table.Rows[j].Cells[k] {
							t.Fatalf("%s row %d cell %d: %+v != %+v", a[i].Name, j, k, c, b[i].Table.Rows[j].Cells[k])
						}
					}
				}
			}
		})
	}
}

func TestParseFilesKeepsOrder(t *testing.T) {
	paths := []string{
		fixture("sampleB_fastqc_data.txt"),
		fixture("does_not_exist.txt"),
		fixture("sampleA_fastqc_data.txt"),
		fixture("sampleOld_0.10_fastqc_data.txt"),
	}
	reports, err := ParseFiles(paths, 3)
	if err == nil {
		t.Fatal("expected an error for the missing file")
	}
	if n := len(multierr.Errors(err)); n != 1 {
		t.Errorf("expected 1 combined error, got %d", n)
	}
	want := []string{"sampleB_fastqc_data.txt", "sampleA_fastqc_data.txt", "sampleOld_0.10_fastqc_data.txt"}
	if len(reports) != len(want) {
		t.Fatalf("expected %d reports, got %d", len(want), len(reports))
	}
	for i, r := range reports {
		if r.Filename != want[i] {
			t.Errorf("position %d: expected %s, got %s", i, want[i], r.Filename)
		}
	}
}
