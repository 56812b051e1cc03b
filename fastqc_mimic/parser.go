// Package fastqc_mimic computes FastQC-style modules straight from a FASTQ file and returns
// them as a report in the 0.11 layout.
package fastqc_mimic

import (
	"bufio"
	"io"
	"strings"

	"github.com/pkg/errors"

	common "fqc_viz_go/utils"
)

var ErrMalformedFastq = errors.New("malformed FASTQ")

type FastqRecord struct {
	Header   string
	Sequence string
	Quality  string
}

// ReadFastq calls fn for every four-line record of r, in file order. It stops at the first
// error fn returns.
func ReadFastq(r io.Reader, fn func(FastqRecord) error) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024) // long reads

	var (
		lines [4]string
		n     int
		line  int
	)
	for scanner.Scan() {
		line++
		text := strings.TrimRight(scanner.Text(), "\r")
		if n == 0 && text == "" {
			continue
		}
		lines[n] = text
		n++
		if n < 4 {
			continue
		}
		n = 0

		rec, err := makeRecord(lines, line-3)
		if err != nil {
			return err
		}
		if err := fn(rec); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return common.ReadFailure(err, "reading FASTQ")
	}
	if n != 0 {
		return errors.Wrapf(ErrMalformedFastq, "truncated record at end of input (%d of 4 lines)", n)
	}
	return nil
}

func makeRecord(lines [4]string, start int) (FastqRecord, error) {
	if !strings.HasPrefix(lines[0], "@") {
		return FastqRecord{}, errors.Wrapf(ErrMalformedFastq, "line %d: header must start with '@', got %q", start, lines[0])
	}
	if !strings.HasPrefix(lines[2], "+") {
		return FastqRecord{}, errors.Wrapf(ErrMalformedFastq, "line %d: separator must start with '+', got %q", start+2, lines[2])
	}
	if len(lines[1]) != len(lines[3]) {
		return FastqRecord{}, errors.Wrapf(ErrMalformedFastq, "line %d: sequence has %d bases but quality has %d",
			start+3, len(lines[1]), len(lines[3]))
	}
	return FastqRecord{
		Header:   strings.TrimPrefix(lines[0], "@"),
		Sequence: strings.ToUpper(lines[1]),
		Quality:  lines[3],
	}, nil
}

// ParseFastq loads every record of r into memory.
func ParseFastq(r io.Reader) ([]FastqRecord, error) {
	var records []FastqRecord
	err := ReadFastq(r, func(rec FastqRecord) error {
		records = append(records, rec)
		return nil
	})
	return records, err
}
