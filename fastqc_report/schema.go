package fastqc_report

import (
	"sort"
	"strconv"
	"strings"
)

// Canonical module names. They are the FastQC section titles with spaces replaced by
// underscores.
const (
	ModBasicStatistics    = "Basic_Statistics"
	ModPerBaseQuality     = "Per_base_sequence_quality"
	ModPerTileQuality     = "Per_tile_sequence_quality"
	ModPerSequenceQuality = "Per_sequence_quality_scores"
	ModPerBaseContent     = "Per_base_sequence_content"
	ModPerSequenceGC      = "Per_sequence_GC_content"
	ModPerBaseN           = "Per_base_N_content"
	ModLengthDistribution = "Sequence_Length_Distribution"
	ModDuplicationLevels  = "Sequence_Duplication_Levels"
	ModOverrepresented    = "Overrepresented_sequences"
	ModAdapterContent     = "Adapter_Content"
	ModKmerContent        = "Kmer_Content"
)

// Duplication metadata keys, which changed name between 0.10 and 0.11.
const (
	MetaTotalDeduplicated = "Total Deduplicated Percentage"
	MetaTotalDuplicate    = "Total Duplicate Percentage"
)

// ModuleSchema fixes the columns of one module for one layout. Categories are the
// percentage-category fields (stacked or pivoted together); their display label is the field
// name without CategoryPrefix/CategorySuffix.
type ModuleSchema struct {
	Name           string
	Title          string
	Fields         []Field
	Key            string
	Categories     []string
	CategoryPrefix string
	CategorySuffix string
	Required       bool
}

// HeaderNames returns the field names as they appear in the "#" header line.
func (s *ModuleSchema) HeaderNames() []string {
	names := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		names[i] = f.Name
	}
	return names
}

// Layout is the module set of one FastQC version family.
type Layout struct {
	Name    string
	Modules []ModuleSchema
}

// Schema looks a module up by canonical name.
func (l *Layout) Schema(name string) (*ModuleSchema, bool) {
	for i := range l.Modules {
		if l.Modules[i].Name == name {
			return &l.Modules[i], true
		}
	}
	return nil, false
}

func (l *Layout) byTitle(title string) (*ModuleSchema, bool) {
	for i := range l.Modules {
		if l.Modules[i].Title == title {
			return &l.Modules[i], true
		}
	}
	return nil, false
}

// ModuleName turns a section title into its canonical name.
func ModuleName(title string) string {
	return strings.ReplaceAll(strings.TrimSpace(title), " ", "_")
}

func col(name string, kind Kind) Field { return Field{Name: name, Kind: kind} }

func mod(title string, key string, fields ...Field) ModuleSchema {
	return ModuleSchema{Name: ModuleName(title), Title: title, Key: key, Fields: fields}
}

func withCategories(s ModuleSchema, prefix, suffix string, cats ...string) ModuleSchema {
	s.Categories = cats
	s.CategoryPrefix = prefix
	s.CategorySuffix = suffix
	return s
}

func required(s ModuleSchema) ModuleSchema {
	s.Required = true
	return s
}

var (
	basicStatistics = required(mod("Basic Statistics", "Measure",
		col("Measure", KindString), col("Value", KindString)))

	perBaseQuality = mod("Per base sequence quality", "Base",
		col("Base", KindRange), col("Mean", KindFloat), col("Median", KindFloat),
		col("Lower Quartile", KindFloat), col("Upper Quartile", KindFloat),
		col("10th Percentile", KindFloat), col("90th Percentile", KindFloat))

	perTileQuality = mod("Per tile sequence quality", "Base",
		col("Tile", KindInt), col("Base", KindRange), col("Mean", KindFloat))

	perSequenceQuality = mod("Per sequence quality scores", "Quality",
		col("Quality", KindInt), col("Count", KindFloat))

	perBaseContent = withCategories(mod("Per base sequence content", "Base",
		col("Base", KindRange), col("G", KindFloat), col("A", KindFloat), col("T", KindFloat), col("C", KindFloat)),
		"", "", "G", "A", "T", "C")

	perSequenceGC = mod("Per sequence GC content", "GC Content",
		col("GC Content", KindInt), col("Count", KindFloat))

	perBaseN = mod("Per base N content", "Base",
		col("Base", KindRange), col("N-Count", KindFloat))

	lengthDistribution = mod("Sequence Length Distribution", "Length",
		col("Length", KindRange), col("Count", KindFloat))

	duplicationV10 = mod("Sequence Duplication Levels", "Duplication Level",
		col("Duplication Level", KindString), col("Relative count", KindFloat))

	duplicationV11 = withCategories(mod("Sequence Duplication Levels", "Duplication Level",
		col("Duplication Level", KindString), col("Percentage of deduplicated", KindFloat), col("Percentage of total", KindFloat)),
		"Percentage of ", "", "Percentage of deduplicated", "Percentage of total")

	overrepresented = mod("Overrepresented sequences", "Sequence",
		col("Sequence", KindString), col("Count", KindInt), col("Percentage", KindFloat), col("Possible Source", KindString))

	// FastQC before 0.11.8 reports a single Small RNA adapter.
	adapterV11Early = withCategories(mod("Adapter Content", "Position",
		col("Position", KindRange),
		col("Illumina Universal Adapter", KindFloat),
		col("Illumina Small RNA Adapter", KindFloat),
		col("Nextera Transposase Sequence", KindFloat),
		col("SOLID Small RNA Adapter", KindFloat)),
		"", " Adapter",
		"Illumina Universal Adapter", "Illumina Small RNA Adapter",
		"Nextera Transposase Sequence", "SOLID Small RNA Adapter")

	adapterV11 = withCategories(mod("Adapter Content", "Position",
		col("Position", KindRange),
		col("Illumina Universal Adapter", KindFloat),
		col("Illumina Small RNA 3' Adapter", KindFloat),
		col("Illumina Small RNA 5' Adapter", KindFloat),
		col("Nextera Transposase Sequence", KindFloat),
		col("SOLID Small RNA Adapter", KindFloat)),
		"", " Adapter",
		"Illumina Universal Adapter", "Illumina Small RNA 3' Adapter", "Illumina Small RNA 5' Adapter",
		"Nextera Transposase Sequence", "SOLID Small RNA Adapter")

	adapterV12 = withCategories(mod("Adapter Content", "Position",
		col("Position", KindRange),
		col("Illumina Universal Adapter", KindFloat),
		col("Illumina Small RNA 3' Adapter", KindFloat),
		col("Illumina Small RNA 5' Adapter", KindFloat),
		col("Nextera Transposase Sequence", KindFloat),
		col("PolyA", KindFloat),
		col("PolyG", KindFloat)),
		"", " Adapter",
		"Illumina Universal Adapter", "Illumina Small RNA 3' Adapter", "Illumina Small RNA 5' Adapter",
		"Nextera Transposase Sequence", "PolyA", "PolyG")

	kmerV10 = mod("Kmer Content", "Sequence",
		col("Sequence", KindString), col("Count", KindInt), col("Obs/Exp Overall", KindFloat),
		col("Obs/Exp Max", KindFloat), col("Max Obs/Exp Position", KindRange))

	kmerV11 = mod("Kmer Content", "Sequence",
		col("Sequence", KindString), col("Count", KindInt), col("PValue", KindFloat),
		col("Obs/Exp Max", KindFloat), col("Max Obs/Exp Position", KindRange))
)

// Layout names. The 0.11 family changed its adapter columns at 0.11.8.
const (
	layoutV10      = "0.10"
	layoutV11Early = "0.11.0-7"
	layoutV11      = "0.11"
	layoutV12      = "0.12"

	splitSmallRNAPatch = 8
)

var layouts = map[string]*Layout{
	layoutV10: {Name: layoutV10, Modules: []ModuleSchema{
		basicStatistics, perBaseQuality, perSequenceQuality, perBaseContent, perSequenceGC,
		perBaseN, lengthDistribution, duplicationV10, overrepresented, kmerV10,
	}},
	layoutV11Early: {Name: layoutV11Early, Modules: []ModuleSchema{
		basicStatistics, perBaseQuality, perTileQuality, perSequenceQuality, perBaseContent,
		perSequenceGC, perBaseN, lengthDistribution, duplicationV11, overrepresented,
		adapterV11Early, kmerV11,
	}},
	layoutV11: {Name: layoutV11, Modules: []ModuleSchema{
		basicStatistics, perBaseQuality, perTileQuality, perSequenceQuality, perBaseContent,
		perSequenceGC, perBaseN, lengthDistribution, duplicationV11, overrepresented,
		adapterV11, kmerV11,
	}},
	layoutV12: {Name: layoutV12, Modules: []ModuleSchema{
		basicStatistics, perBaseQuality, perTileQuality, perSequenceQuality, perBaseContent,
		perSequenceGC, perBaseN, lengthDistribution, duplicationV11, overrepresented,
		adapterV12, kmerV11,
	}},
}

// LayoutFor maps a "##FastQC" version string (e.g. "0.11.9") or a layout name to its
// layout.
func LayoutFor(version string) (*Layout, bool) {
	version = strings.TrimSpace(version)
	if l, ok := layouts[version]; ok {
		return l, true
	}
	parts := strings.SplitN(version, ".", 3)
	if len(parts) < 2 {
		return nil, false
	}
	name := parts[0] + "." + parts[1]
	if name == layoutV11 && len(parts) == 3 {
		if patch, ok := leadingInt(parts[2]); ok && patch < splitSmallRNAPatch {
			name = layoutV11Early
		}
	}
	l, ok := layouts[name]
	return l, ok
}

// leadingInt parses the digits a patch component starts with, so "5.devel" gives 5.
func leadingInt(s string) (int, bool) {
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	n, err := strconv.Atoi(s[:end])
	return n, err == nil
}

// SupportedLayouts lists the layout names, sorted.
func SupportedLayouts() []string {
	names := make([]string, 0, len(layouts))
	for name := range layouts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// AllModuleNames lists every canonical module name of every layout, in the 0.12 order with
// names only older layouts carry appended.
func AllModuleNames() []string {
	seen := map[string]bool{}
	var names []string
	for _, layout := range []string{layoutV12, layoutV11, layoutV11Early, layoutV10} {
		for _, s := range layouts[layout].Modules {
			if !seen[s.Name] {
				seen[s.Name] = true
				names = append(names, s.Name)
			}
		}
	}
	return names
}
