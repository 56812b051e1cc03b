// Common package contains commonly used functions that benefit multiple tools
// Exporting these functions from the Common package reduces redundant code
package common

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/farcloser/primordium/fault"
	"github.com/pkg/errors"
)

// ReadFailure tags an I/O error with fault.ErrReadFailure; err stays in the chain.
func ReadFailure(err error, format string, args ...any) error {
	return errors.WithStack(fmt.Errorf("%w: %s: %w", fault.ErrReadFailure, fmt.Sprintf(format, args...), err))
}

// readCloser closes the decompressor and then the file underneath it.
type readCloser struct {
	io.Reader
	closers []io.Closer
}

func (rc *readCloser) Close() error {
	var first error
	for _, c := range rc.closers {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// OpenMaybeGzip opens a file and transparently decompresses it when it starts with the
// gzip magic bytes, whatever its extension.
func OpenMaybeGzip(file string) (io.ReadCloser, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, ReadFailure(err, "failed to open file")
	}

	br := bufio.NewReader(f)
	magic, _ := br.Peek(2) // short files simply fail the check
	if len(magic) == 2 && magic[0] == 0x1f && magic[1] == 0x8b {
		gr, err := gzip.NewReader(br)
		if err != nil {
			f.Close()
			return nil, ReadFailure(err, "failed to open gzip reader")
		}
		return &readCloser{Reader: gr, closers: []io.Closer{gr, f}}, nil
	}
	return &readCloser{Reader: br, closers: []io.Closer{f}}, nil
}

// IsZip reports whether a file starts with the zip local-file signature.
func IsZip(file string) (bool, error) {
	f, err := os.Open(file)
	if err != nil {
		return false, ReadFailure(err, "failed to open file")
	}
	defer f.Close()

	buf := make([]byte, 4)
	n, _ := io.ReadFull(f, buf)
	return n == 4 && buf[0] == 'P' && buf[1] == 'K' && buf[2] == 0x03 && buf[3] == 0x04, nil
}

// strippedSuffixes are removed, repeatedly and case-insensitively, to turn a FastQC
// filename into a sample name: "S1_R1.fastq_fastqc.zip" -> "S1_R1".
var strippedSuffixes = []string{".zip", ".gz", ".txt", "_fastqc", "_fastqc_data", ".fastq", ".fq", ".bam", ".sam"}

// SampleName strips directories and FastQC/FASTQ extensions from a filename.
func SampleName(filename string) string {
	name := filepath.Base(filename)
	for {
		trimmed := name
		lower := strings.ToLower(trimmed)
		for _, suffix := range strippedSuffixes {
			if strings.HasSuffix(lower, suffix) && len(trimmed) > len(suffix) {
				trimmed = trimmed[:len(trimmed)-len(suffix)]
				break
			}
		}
		if trimmed == name {
			return name
		}
		name = trimmed
	}
}
