package plots

import (
	fqc "fqc_viz_go/fastqc_report"
	"fqc_viz_go/transform"
)

// Kind names a chart in the catalogue.
type Kind string

const (
	BasicStatistics          Kind = "basic_statistics"
	PerBaseQuality           Kind = "per_base_quality"
	PerTileQuality           Kind = "per_tile_quality"
	PerSequenceQuality       Kind = "per_sequence_quality"
	PerBaseContent           Kind = "per_base_content"
	PerSequenceGC            Kind = "per_sequence_gc"
	PerBaseNContent          Kind = "per_base_n_content"
	LengthDistribution       Kind = "length_distribution"
	DuplicationLevels        Kind = "duplication_levels"
	DuplicationHeatmap       Kind = "duplication_heatmap"
	DuplicationStacked       Kind = "duplication_stacked"
	AdapterContent           Kind = "adapter_content"
	KmerContent              Kind = "kmer_content"
	OverrepresentedSequences Kind = "overrepresented_sequences"
	StatusHeatmap            Kind = "status_heatmap"
	StatusSummary            Kind = "status_summary"
)

// Entry describes one catalogue chart. Module is empty for charts that combine modules.
type Entry struct {
	Kind        Kind
	Module      string
	Title       string
	Description string
}

var catalogue = []Entry{
	{BasicStatistics, fqc.ModBasicStatistics, "Sequence Counts", "unique and duplicate reads per sample"},
	{PerBaseQuality, fqc.ModPerBaseQuality, "Per Base Sequence Quality", "mean quality per position over status bands"},
	{PerTileQuality, fqc.ModPerTileQuality, "Per Tile Sequence Quality", "quality deviation per tile and position, one panel per sample"},
	{PerSequenceQuality, fqc.ModPerSequenceQuality, "Per Sequence Quality Scores", "reads per mean quality"},
	{PerBaseContent, fqc.ModPerBaseContent, "Per Base Sequence Content", "G/A/T/C share per position, one panel per sample"},
	{PerSequenceGC, fqc.ModPerSequenceGC, "Per Sequence GC Content", "share of reads per GC percentage"},
	{PerBaseNContent, fqc.ModPerBaseN, "Per Base N Content", "N calls per position over status bands"},
	{LengthDistribution, fqc.ModLengthDistribution, "Sequence Length Distribution", "reads per length"},
	{DuplicationLevels, fqc.ModDuplicationLevels, "Sequence Duplication Levels", "share of reads per duplication level"},
	{DuplicationHeatmap, fqc.ModDuplicationLevels, "Sequence Duplication Heatmap", "duplication levels as tiles, optionally clustered"},
	{DuplicationStacked, fqc.ModDuplicationLevels, "Sequence Duplication Stacked", "duplication levels as stacked bars, optionally clustered"},
	{AdapterContent, fqc.ModAdapterContent, "Adapter Content", "cumulative adapter share per position over status bands"},
	{KmerContent, fqc.ModKmerContent, "Kmer Content", "enriched k-mers by position"},
	{OverrepresentedSequences, fqc.ModOverrepresented, "Overrepresented Sequences", "share of reads from overrepresented sequences"},
	{StatusHeatmap, "", "Status Checks", "computed verdict per sample and module"},
	{StatusSummary, "", "Status Summary", "verdict counts over all samples and modules"},
}

// Catalogue lists every chart kind in display order.
func Catalogue() []Entry {
	return append([]Entry(nil), catalogue...)
}

// Kinds lists the kind names.
func Kinds() []string {
	out := make([]string, len(catalogue))
	for i, e := range catalogue {
		out[i] = string(e.Kind)
	}
	return out
}

// Lookup returns the catalogue entry of a kind.
func Lookup(kind Kind) (Entry, error) {
	for _, e := range catalogue {
		if e.Kind == kind {
			return e, nil
		}
	}
	return Entry{}, &transform.InvalidOptionError{Option: "chart kind", Value: string(kind), Allowed: Kinds()}
}
