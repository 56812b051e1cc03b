package fastqc_mimic

import (
	"sort"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/stat/distuv"

	fqc "fqc_viz_go/fastqc_report"
)

const (
	kmerSize      = 5
	kmerReadLimit = 100000 // only the first reads are scanned
	kmerMinCount  = 10
	kmerMaxPValue = 0.01
	kmerMinObsExp = 5
	kmerListed    = 20
)

// kmerCounter slides a window over the reads and counts every k-mer per start position.
// K-mers containing N are skipped.
type kmerCounter struct {
	reads     int
	counts    map[string][]int
	positions []int // k-mer windows seen per start position
}

func newKmerCounter() *kmerCounter {
	return &kmerCounter{counts: map[string][]int{}}
}

func (k *kmerCounter) observe(seq string) {
	if k.reads >= kmerReadLimit {
		return
	}
	k.reads++
	for i := 0; i+kmerSize <= len(seq); i++ {
		if i >= len(k.positions) {
			k.positions = append(k.positions, 0)
		}
		k.positions[i]++

		kmer := seq[i : i+kmerSize]
		if strings.Contains(kmer, "N") {
			continue
		}
		c := k.counts[kmer]
		for len(c) <= i {
			c = append(c, 0)
		}
		c[i]++
		k.counts[kmer] = c
	}
}

type kmerHit struct {
	kmer     string
	count    int
	pValue   float64
	obsExp   float64
	position int
}

// enriched finds k-mers whose count at one position is well above what an even spread
// over the covered positions gives. Each position is tested with a one-sided binomial test.
func (k *kmerCounter) enriched() []kmerHit {
	windows := 0
	for _, n := range k.positions {
		windows += n
	}
	if windows == 0 {
		return nil
	}

	var hits []kmerHit
	for kmer, perPos := range k.counts {
		total := 0
		for _, c := range perPos {
			total += c
		}
		if total < kmerMinCount {
			continue
		}

		best := kmerHit{kmer: kmer, count: total, pValue: 1}
		for i, c := range perPos {
			if c == 0 {
				continue
			}
			p := float64(k.positions[i]) / float64(windows)
			expected := float64(total) * p
			ratio := float64(c) / expected
			if ratio <= best.obsExp {
				continue
			}
			binom := distuv.Binomial{N: float64(total), P: p}
			best.obsExp = ratio
			best.position = i + 1
			best.pValue = binom.Survival(float64(c - 1))
		}
		if best.pValue < kmerMaxPValue && best.obsExp >= kmerMinObsExp {
			hits = append(hits, best)
		}
	}

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].obsExp != hits[j].obsExp {
			return hits[i].obsExp > hits[j].obsExp
		}
		return hits[i].kmer < hits[j].kmer
	})
	if len(hits) > kmerListed {
		hits = hits[:kmerListed]
	}
	return hits
}

func kmerContent(k *kmerCounter) *fqc.Module {
	m := newModule(fqc.ModKmerContent)
	for _, h := range k.enriched() {
		addRow(m, text(h.kmer), integer(h.count), decimal(h.pValue), decimal(h.obsExp),
			fqc.Cell{Text: strconv.Itoa(h.position), Num: float64(h.position), End: float64(h.position)})
	}
	return m
}
