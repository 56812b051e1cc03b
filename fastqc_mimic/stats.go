package fastqc_mimic

import (
	"math"
	"strings"
)

// adapter is a sequence searched for in every read. The names match the 0.11 Adapter
// Content columns.
type adapter struct {
	Name     string
	Sequence string
}

var adapters = [...]adapter{
	{"Illumina Universal Adapter", "AGATCGGAAGAG"},
	{"Illumina Small RNA 3' Adapter", "TGGAATTCTCGG"},
	{"Illumina Small RNA 5' Adapter", "GATCGTCGGACT"},
	{"Nextera Transposase Sequence", "CTGTCTCTTATA"},
	{"SOLID Small RNA Adapter", "CGCCTTGGCCGT"},
}

type adapterHits [len(adapters)]int

// Base order of the per-position content counts; anything else counts as N.
const (
	baseG = iota
	baseA
	baseT
	baseC
	baseN
)

// accumulator holds the additive counts of a batch of reads. Workers fill one each and the
// results are merged, so the outcome does not depend on scheduling.
type accumulator struct {
	reads          int
	minLen, maxLen int
	gc, at, n      int
	minQual        byte

	quality  [][256]int    // raw quality characters per position
	content  [][5]int      // G, A, T, C, N per position
	adapters []adapterHits // reads whose first adapter hit starts at the position

	lengths   map[int]int
	meanQual  map[int]int // rounded per-read mean of the raw quality characters
	gcPerRead [101]int
}

func newAccumulator() *accumulator {
	return &accumulator{
		minLen:   math.MaxInt,
		minQual:  math.MaxUint8,
		lengths:  map[int]int{},
		meanQual: map[int]int{},
	}
}

func (a *accumulator) grow(length int) {
	for len(a.quality) < length {
		a.quality = append(a.quality, [256]int{})
		a.content = append(a.content, [5]int{})
		a.adapters = append(a.adapters, adapterHits{})
	}
}

func (a *accumulator) add(rec FastqRecord) {
	seq, qual := rec.Sequence, rec.Quality
	length := len(seq)

	a.reads++
	a.lengths[length]++
	a.minLen = min(a.minLen, length)
	a.maxLen = max(a.maxLen, length)
	a.grow(length)

	gc, at, sumQual := 0, 0, 0
	for i := 0; i < length; i++ {
		switch seq[i] {
		case 'G':
			a.content[i][baseG]++
			gc++
		case 'A':
			a.content[i][baseA]++
			at++
		case 'T':
			a.content[i][baseT]++
			at++
		case 'C':
			a.content[i][baseC]++
			gc++
		default:
			a.content[i][baseN]++
			a.n++
		}
		q := qual[i]
		a.quality[i][q]++
		a.minQual = min(a.minQual, q)
		sumQual += int(q)
	}
	a.gc += gc
	a.at += at

	if length > 0 {
		a.meanQual[int(math.Round(float64(sumQual)/float64(length)))]++
	}
	if gc+at > 0 {
		a.gcPerRead[int(math.Round(float64(gc)*100/float64(gc+at)))]++
	}

	for j, ad := range adapters {
		if idx := strings.Index(seq, ad.Sequence); idx >= 0 {
			a.adapters[idx][j]++
		}
	}
}

func (a *accumulator) merge(o *accumulator) {
	a.reads += o.reads
	a.minLen = min(a.minLen, o.minLen)
	a.maxLen = max(a.maxLen, o.maxLen)
	a.gc += o.gc
	a.at += o.at
	a.n += o.n
	a.minQual = min(a.minQual, o.minQual)

	a.grow(len(o.quality))
	for i := range o.quality {
		for q, c := range o.quality[i] {
			a.quality[i][q] += c
		}
		for b, c := range o.content[i] {
			a.content[i][b] += c
		}
		for j, c := range o.adapters[i] {
			a.adapters[i][j] += c
		}
	}
	for k, v := range o.lengths {
		a.lengths[k] += v
	}
	for k, v := range o.meanQual {
		a.meanQual[k] += v
	}
	for i, v := range o.gcPerRead {
		a.gcPerRead[i] += v
	}
}

// FastQC only tracks this many distinct sequences; later new sequences are not counted.
const dupTrackLimit = 100000

// duplicationTracker counts sequences in input order. Reads longer than 75 bases are
// truncated to 50 before counting.
type duplicationTracker struct {
	counts  map[string]int
	order   []string
	counted int
}

func newDuplicationTracker() *duplicationTracker {
	return &duplicationTracker{counts: map[string]int{}}
}

func (d *duplicationTracker) observe(seq string) {
	if len(seq) > 75 {
		seq = seq[:50]
	}
	if _, seen := d.counts[seq]; !seen {
		if len(d.counts) >= dupTrackLimit {
			return
		}
		d.order = append(d.order, seq)
	}
	d.counts[seq]++
	d.counted++
}

func percent(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(part) / float64(total) * 100
}
