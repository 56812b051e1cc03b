package fastqc_mimic

import (
	"sort"
	"strconv"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/stat"

	fqc "fqc_viz_go/fastqc_report"
)

// Quality encodings, told apart by the lowest quality character seen.
const (
	sangerOffset   = 33
	illuminaOffset = 64
)

// overrepresentedMin is the share of all reads, in percent, above which a sequence is
// listed as overrepresented.
const overrepresentedMin = 0.1

func buildModules(fastqName string, acc *accumulator, dups *duplicationTracker, kmers *kmerCounter) ([]*fqc.Module, error) {
	if acc.minQual < sangerOffset {
		return nil, errors.Wrapf(ErrMalformedFastq, "quality character %q below '!'", rune(acc.minQual))
	}
	offset, encoding := sangerOffset, "Sanger / Illumina 1.9"
	if acc.minQual >= illuminaOffset {
		offset, encoding = illuminaOffset, "Illumina 1.5"
	}

	modules := []*fqc.Module{
		basicStatistics(fastqName, encoding, acc),
		perBaseQuality(acc, offset),
		perSequenceQuality(acc, offset),
		perBaseContent(acc),
		perSequenceGC(acc),
		perBaseN(acc),
		lengthDistribution(acc),
		duplicationLevels(dups),
		overrepresented(dups, acc.reads),
		adapterContent(acc),
		kmerContent(kmers),
	}
	if err := setStatuses(modules); err != nil {
		return nil, err
	}
	return modules, nil
}

// newModule starts a detected module with the 0.11 columns of name.
func newModule(name string) *fqc.Module {
	layout, _ := fqc.LayoutFor(Version)
	schema, _ := layout.Schema(name)
	return &fqc.Module{
		Name:     schema.Name,
		Title:    schema.Title,
		Detected: true,
		Table:    fqc.Table{Fields: schema.Fields},
	}
}

func addRow(m *fqc.Module, cells ...fqc.Cell) {
	m.Table.Rows = append(m.Table.Rows, fqc.Row{Cells: cells})
}

func text(s string) fqc.Cell { return fqc.Cell{Text: s} }

func integer(n int) fqc.Cell {
	return fqc.Cell{Text: strconv.Itoa(n), Num: float64(n), End: float64(n)}
}

// decimal is written with the shortest text that parses back to v.
func decimal(v float64) fqc.Cell {
	return fqc.Cell{Text: strconv.FormatFloat(v, 'f', -1, 64), Num: v, End: v}
}

// count is written with one decimal, the way FastQC prints counts.
func count(n int) fqc.Cell {
	return fqc.Cell{Text: strconv.FormatFloat(float64(n), 'f', 1, 64), Num: float64(n), End: float64(n)}
}

func position(p int) fqc.Cell { return integer(p) }

func basicStatistics(fastqName, encoding string, acc *accumulator) *fqc.Module {
	m := newModule(fqc.ModBasicStatistics)
	length := strconv.Itoa(acc.maxLen)
	if acc.minLen != acc.maxLen {
		length = strconv.Itoa(acc.minLen) + "-" + length
	}
	addRow(m, text("Filename"), text(fastqName))
	addRow(m, text("File type"), text("Conventional base calls"))
	addRow(m, text("Encoding"), text(encoding))
	addRow(m, text("Total Sequences"), text(strconv.Itoa(acc.reads)))
	addRow(m, text("Sequences flagged as poor quality"), text("0"))
	addRow(m, text("Sequence length"), text(length))
	addRow(m, text("%GC"), text(strconv.Itoa(int(percent(acc.gc, acc.gc+acc.at)))))
	return m
}

// perBaseQuality summarizes the quality distribution of every position with weighted
// empirical quantiles.
func perBaseQuality(acc *accumulator, offset int) *fqc.Module {
	m := newModule(fqc.ModPerBaseQuality)
	for i, hist := range acc.quality {
		var x, w []float64
		for q, c := range hist {
			if c > 0 {
				x = append(x, float64(q-offset))
				w = append(w, float64(c))
			}
		}
		if len(x) == 0 {
			continue
		}
		quantile := func(p float64) fqc.Cell { return decimal(stat.Quantile(p, stat.Empirical, x, w)) }
		addRow(m, position(i+1), decimal(stat.Mean(x, w)), quantile(0.5),
			quantile(0.25), quantile(0.75), quantile(0.1), quantile(0.9))
	}
	return m
}

func perSequenceQuality(acc *accumulator, offset int) *fqc.Module {
	m := newModule(fqc.ModPerSequenceQuality)
	for _, q := range sortedKeys(acc.meanQual) {
		addRow(m, integer(q-offset), count(acc.meanQual[q]))
	}
	return m
}

// perBaseContent gives the G, A, T and C share of the called bases of every position.
func perBaseContent(acc *accumulator) *fqc.Module {
	m := newModule(fqc.ModPerBaseContent)
	for i, c := range acc.content {
		called := c[baseG] + c[baseA] + c[baseT] + c[baseC]
		addRow(m, position(i+1),
			decimal(percent(c[baseG], called)), decimal(percent(c[baseA], called)),
			decimal(percent(c[baseT], called)), decimal(percent(c[baseC], called)))
	}
	return m
}

func perSequenceGC(acc *accumulator) *fqc.Module {
	m := newModule(fqc.ModPerSequenceGC)
	for gc, n := range acc.gcPerRead {
		addRow(m, integer(gc), count(n))
	}
	return m
}

func perBaseN(acc *accumulator) *fqc.Module {
	m := newModule(fqc.ModPerBaseN)
	for i, c := range acc.content {
		covered := 0
		for _, n := range c {
			covered += n
		}
		addRow(m, position(i+1), decimal(percent(c[baseN], covered)))
	}
	return m
}

func lengthDistribution(acc *accumulator) *fqc.Module {
	m := newModule(fqc.ModLengthDistribution)
	for _, l := range sortedKeys(acc.lengths) {
		addRow(m, position(l), count(acc.lengths[l]))
	}
	return m
}

// dupBuckets are the FastQC duplication level labels with the lowest copy number each
// covers.
var dupBuckets = []struct {
	label string
	from  int
}{
	{"1", 1}, {"2", 2}, {"3", 3}, {"4", 4}, {"5", 5}, {"6", 6}, {"7", 7}, {"8", 8}, {"9", 9},
	{">10", 10}, {">50", 50}, {">100", 100}, {">500", 500}, {">1k", 1000}, {">5k", 5000},
	{">10k+", 10000},
}

func dupBucket(copies int) int {
	b := 0
	for i, bucket := range dupBuckets {
		if copies >= bucket.from {
			b = i
		}
	}
	return b
}

func duplicationLevels(dups *duplicationTracker) *fqc.Module {
	m := newModule(fqc.ModDuplicationLevels)

	distinct := make([]int, len(dupBuckets))
	total := make([]int, len(dupBuckets))
	for _, seq := range dups.order {
		copies := dups.counts[seq]
		b := dupBucket(copies)
		distinct[b]++
		total[b] += copies
	}

	m.Meta = append(m.Meta, fqc.MetaEntry{
		Key:   fqc.MetaTotalDeduplicated,
		Value: strconv.FormatFloat(percent(len(dups.order), dups.counted), 'f', -1, 64),
	})
	for i, bucket := range dupBuckets {
		addRow(m, text(bucket.label), decimal(percent(distinct[i], len(dups.order))), decimal(percent(total[i], dups.counted)))
	}
	return m
}

func overrepresented(dups *duplicationTracker, reads int) *fqc.Module {
	m := newModule(fqc.ModOverrepresented)

	var hits []string
	for _, seq := range dups.order {
		if percent(dups.counts[seq], reads) > overrepresentedMin {
			hits = append(hits, seq)
		}
	}
	sort.SliceStable(hits, func(i, j int) bool { return dups.counts[hits[i]] > dups.counts[hits[j]] })

	for _, seq := range hits {
		addRow(m, text(seq), integer(dups.counts[seq]), decimal(percent(dups.counts[seq], reads)), text("No Hit"))
	}
	return m
}

// adapterContent reports, per position, the share of reads in which an adapter starts at or
// before it.
func adapterContent(acc *accumulator) *fqc.Module {
	m := newModule(fqc.ModAdapterContent)
	var cumulative adapterHits
	for i, hits := range acc.adapters {
		cells := []fqc.Cell{position(i + 1)}
		for j := range adapters {
			cumulative[j] += hits[j]
			cells = append(cells, decimal(percent(cumulative[j], acc.reads)))
		}
		addRow(m, cells...)
	}
	return m
}

func sortedKeys(m map[int]int) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}
