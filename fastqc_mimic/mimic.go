package fastqc_mimic

import (
	"io"
	"log/slog"
	"path/filepath"
	"runtime"
	"sync"

	"github.com/pkg/errors"

	fqc "fqc_viz_go/fastqc_report"
	"fqc_viz_go/transform"
	common "fqc_viz_go/utils"
)

// Version is the FastQC version the generated reports claim.
const Version = "0.11.9"

var ErrNoReads = errors.New("FASTQ input has no reads")

// Mimic analyses a plain or gzipped FASTQ file with up to workers goroutines (all CPUs for
// workers < 1). The report is named "<sample>_fastqc_data.txt".
func Mimic(file string, workers int) (*fqc.Report, error) {
	rc, err := common.OpenMaybeGzip(file)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	return Analyze(rc, filepath.Base(file), workers)
}

// Analyze computes the report of a FASTQ stream; fastqName is what Basic Statistics lists
// as the input file.
func Analyze(r io.Reader, fastqName string, workers int) (*fqc.Report, error) {
	if workers < 1 {
		workers = runtime.NumCPU()
	}

	recordChan := make(chan FastqRecord, workers*2)
	partial := make([]*accumulator, workers)

	var wg sync.WaitGroup
	for i := range workers {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			acc := newAccumulator()
			for rec := range recordChan {
				acc.add(rec)
			}
			partial[i] = acc
		}(i)
	}

	dups := newDuplicationTracker()
	kmers := newKmerCounter()
	err := ReadFastq(r, func(rec FastqRecord) error {
		dups.observe(rec.Sequence)
		kmers.observe(rec.Sequence)
		recordChan <- rec
		return nil
	})
	close(recordChan)
	wg.Wait()
	if err != nil {
		return nil, errors.Wrapf(err, "%s", fastqName)
	}

	acc := newAccumulator()
	for _, p := range partial {
		acc.merge(p)
	}
	if acc.reads == 0 {
		return nil, errors.Wrapf(ErrNoReads, "%s", fastqName)
	}

	modules, err := buildModules(fastqName, acc, dups, kmers)
	if err != nil {
		return nil, errors.Wrapf(err, "%s", fastqName)
	}
	slog.Debug("analysed FASTQ", "file", fastqName, "reads", acc.reads, "workers", workers)

	return fqc.NewReport(common.SampleName(fastqName)+"_fastqc_data.txt", Version, modules)
}

// setStatuses grades every module that has a status metric with the default thresholds.
// The others pass.
func setStatuses(modules []*fqc.Module) error {
	layout, _ := fqc.LayoutFor(Version)
	for _, m := range modules {
		m.Status = fqc.StatusPass
		th, ok := transform.DefaultThresholds[m.Name]
		if !ok {
			continue
		}
		schema, _ := layout.Schema(m.Name)
		v, ok, err := transform.Metric(m, schema)
		if err != nil {
			return err
		}
		if !ok {
			continue
		}
		switch transform.Classify(v, th) {
		case transform.Warn:
			m.Status = fqc.StatusWarn
		case transform.Fail:
			m.Status = fqc.StatusFail
		}
	}
	return nil
}
