package plots

import (
	"bytes"
	"errors"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"fqc_viz_go/charts"
	"fqc_viz_go/collection"
	fqc "fqc_viz_go/fastqc_report"
	"fqc_viz_go/transform"
)

const (
	sampleA   = "sampleA_fastqc_data.txt"
	sampleB   = "sampleB_fastqc_data.txt"
	sampleC   = "sampleC_012_fastqc_data.txt"
	sampleD   = "sampleD_noadapter_fastqc_data.txt"
	sampleOld = "sampleOld_0.10_fastqc_data.txt"
)

func fixture(name string) string { return filepath.Join("..", "testdata", name) }

func loadCollection(t *testing.T, names ...string) *collection.Collection {
	t.Helper()
	var reports []*fqc.Report
	for _, n := range names {
		r, err := fqc.ParseFile(fixture(n))
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

func TestSourceResolve(t *testing.T) {
	r, err := fqc.ParseFile(fixture(sampleA))
	if err != nil {
		t.Fatal(err)
	}
	c := loadCollection(t, sampleA, sampleB)

	tests := []struct {
		name  string
		src   Source
		kind  SourceKind
		files []string
	}{
		{"paths", FromPath(fixture(sampleA), fixture(sampleB)), SourcePaths, []string{sampleA, sampleB}},
		{"report", FromReport(r), SourceReport, []string{sampleA}},
		{"collection", FromCollection(c), SourceCollection, []string{sampleA, sampleB}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.src.Kind() != tt.kind {
				t.Errorf("kind = %s, want %s", tt.src.Kind(), tt.kind)
			}
			got, err := tt.src.Resolve(2)
			if err != nil {
				t.Fatal(err)
			}
			if !reflect.DeepEqual(got.Filenames(), tt.files) {
				t.Errorf("filenames = %v, want %v", got.Filenames(), tt.files)
			}
		})
	}

	if _, err := (Source{}).Resolve(1); err == nil {
		t.Error("zero source resolved")
	}
}

func TestPlotModuleMissingInOneMember(t *testing.T) {
	c := loadCollection(t, sampleA, sampleB, sampleD)

	mt := c.Module(fqc.ModAdapterContent)
	if !reflect.DeepEqual(mt.Members, []string{sampleA, sampleB}) {
		t.Fatalf("members = %v", mt.Members)
	}
	for _, r := range mt.Rows {
		if r.Filename != sampleA && r.Filename != sampleB {
			t.Fatalf("row from %q", r.Filename)
		}
	}

	chart, err := Plot(AdapterContent, FromCollection(c), DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	if chart.Placeholder {
		t.Fatal("placeholder rendered although two members have the module")
	}
	var names []string
	for _, s := range chart.Panels[0].Series {
		names = append(names, s.Name)
	}
	want := []string{"sampleA - Illumina Universal", "sampleB - Illumina Universal"}
	if !reflect.DeepEqual(names, want) {
		t.Errorf("series = %v, want %v", names, want)
	}
	if len(chart.Panels[0].Bands) != 3 {
		t.Errorf("got %d bands", len(chart.Panels[0].Bands))
	}
}

func TestPlotInvalidDeduplication(t *testing.T) {
	opts := DefaultOptions()
	opts.Deduplication = "both"

	// the path does not exist: validation has to fail before the source is read
	chart, err := Plot(DuplicationLevels, FromPath("does-not-exist.txt"), opts)
	if chart != nil {
		t.Fatal("chart returned for an invalid option")
	}
	var inv *transform.InvalidOptionError
	if !errors.As(err, &inv) {
		t.Fatalf("err = %v, want *InvalidOptionError", err)
	}
	if !strings.Contains(err.Error(), "pre, post") {
		t.Errorf("error does not list the allowed values: %v", err)
	}
}

func TestPlotPlaceholder(t *testing.T) {
	chart, err := Plot(KmerContent, FromPath(fixture(sampleA)), DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	if !chart.Placeholder || chart.Kind != string(KmerContent) {
		t.Fatalf("chart = %+v", chart)
	}
	var buf bytes.Buffer
	if err := chart.Render(&buf, charts.FormatSVG); err != nil {
		t.Fatal(err)
	}
}

func TestPlotUnknownKind(t *testing.T) {
	if _, err := Plot("pie", FromPath(fixture(sampleA)), DefaultOptions()); err == nil {
		t.Fatal("unknown kind accepted")
	}
}

func TestPlotOptionValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(o *Options)
	}{
		{"adapter", func(o *Options) { o.Adapter = "Nonexistent" }},
		{"dendrogram without cluster", func(o *Options) { o.Dendrogram = true }},
		{"cluster with ordering", func(o *Options) { o.Cluster, o.Ordering = true, []string{sampleA} }},
		{"thresholds", func(o *Options) {
			o.Thresholds = map[string]transform.Thresholds{fqc.ModDuplicationLevels: {Warn: 60, Fail: 50}}
		}},
		{"palette", func(o *Options) { o.Style.Palette = "neon" }},
		{"colors", func(o *Options) { o.Colors.Fail = "red" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := DefaultOptions()
			tt.mutate(&opts)
			if _, err := Plot(DuplicationLevels, FromPath(fixture(sampleA)), opts); err == nil {
				t.Fatal("expected a validation error")
			}
		})
	}
}

func TestPlotEveryKind(t *testing.T) {
	c := loadCollection(t, sampleA, sampleB, sampleC, sampleOld)
	for _, e := range Catalogue() {
		for _, interactive := range []bool{false, true} {
			opts := DefaultOptions()
			opts.Interactive = interactive
			chart, err := Plot(e.Kind, FromCollection(c), opts)
			if err != nil {
				t.Fatalf("%s: %v", e.Kind, err)
			}
			if chart.Placeholder {
				t.Errorf("%s: placeholder for a collection that has the module", e.Kind)
			}
			for _, f := range []charts.Format{charts.FormatSVG, charts.FormatHTML} {
				var buf bytes.Buffer
				if err := chart.Render(&buf, f); err != nil {
					t.Fatalf("%s as %s: %v", e.Kind, f, err)
				}
				if buf.Len() == 0 {
					t.Errorf("%s as %s: empty output", e.Kind, f)
				}
			}
		}
	}
}

func TestDuplicationHeatmapClustered(t *testing.T) {
	c := loadCollection(t, sampleA, sampleB, sampleC)
	opts := DefaultOptions()
	opts.Cluster, opts.Dendrogram = true, true
	opts.Labels = map[string]string{sampleA: "A"}

	chart, err := Plot(DuplicationHeatmap, FromCollection(c), opts)
	if err != nil {
		t.Fatal(err)
	}
	scene := chart.Panels[0]
	if len(scene.Y.Categories) != 3 {
		t.Fatalf("y categories = %v", scene.Y.Categories)
	}
	if len(scene.Rects) != 3*16 {
		t.Errorf("got %d tiles, want 48", len(scene.Rects))
	}
	if len(scene.Segments) != 3*2 {
		t.Errorf("got %d dendrogram segments, want 6", len(scene.Segments))
	}
	for _, s := range scene.Segments {
		if s.X0 > -0.5 || s.X1 > -0.5 {
			t.Fatalf("dendrogram segment overlaps the tiles: %+v", s)
		}
	}
	found := false
	for _, l := range scene.Y.Categories {
		found = found || l == "A"
	}
	if !found {
		t.Errorf("label override not applied: %v", scene.Y.Categories)
	}
}

func TestDuplicationLevelsKeepsOrder(t *testing.T) {
	c := loadCollection(t, sampleA, sampleB, sampleC)
	opts := DefaultOptions()
	opts.Ordering = []string{sampleC, "unknown"}
	chart, err := Plot(DuplicationLevels, FromCollection(c), opts)
	if err != nil {
		t.Fatal(err)
	}
	var names []string
	for _, s := range chart.Panels[0].Series {
		names = append(names, s.Name)
	}
	if want := []string{"sampleC_012", "sampleA", "sampleB"}; !reflect.DeepEqual(names, want) {
		t.Errorf("series = %v, want %v", names, want)
	}
}

func TestDuplicationStackedUsesDeduplicationField(t *testing.T) {
	c := loadCollection(t, sampleA)
	for _, tt := range []struct {
		mode  string
		first float64
	}{
		{"pre", 43.9},
		{"post", 60.5},
	} {
		opts := DefaultOptions()
		opts.Deduplication = tt.mode
		chart, err := Plot(DuplicationStacked, FromCollection(c), opts)
		if err != nil {
			t.Fatal(err)
		}
		r := chart.Panels[0].Rects[0]
		if r.Y0 != 0 || r.Y1 != tt.first {
			t.Errorf("%s: first segment = [%v, %v), want [0, %v)", tt.mode, r.Y0, r.Y1, tt.first)
		}
	}
}

func TestStatusSummary(t *testing.T) {
	chart, err := Plot(StatusSummary, FromPath(fixture(sampleA), fixture(sampleB)), DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	if chart.Donut == nil {
		t.Fatal("no donut")
	}
	// five status modules for two samples
	if got := chart.Donut.Total(); got != 10 {
		t.Errorf("total verdicts = %v, want 10", got)
	}
}

func TestAdapterLabels(t *testing.T) {
	labels := AdapterLabels()
	for _, want := range []string{"Illumina Universal", "SOLID Small RNA", "PolyA", "PolyG"} {
		found := false
		for _, l := range labels {
			found = found || l == want
		}
		if !found {
			t.Errorf("%q missing from %v", want, labels)
		}
	}
}
