package common

import (
	"archive/zip"
	"compress/gzip"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/farcloser/primordium/fault"
)

func TestSampleName(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"S1_R1.fastq_fastqc.zip", "S1_R1"},
		{"/runs/7/sampleA_fastqc_data.txt", "sampleA"},
		{"reads.fq.gz", "reads"},
		{"sample.BAM", "sample"},
		{"fastqc_data.txt", "fastqc_data"},
		{".zip", ".zip"},
	}
	for _, tt := range tests {
		if got := SampleName(tt.in); got != tt.want {
			t.Errorf("SampleName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestOpenMaybeGzip(t *testing.T) {
	dir := t.TempDir()
	plain := filepath.Join(dir, "plain.txt")
	if err := os.WriteFile(plain, []byte("hello"), 0o644); err != nil {
		t.Fatal(err)
	}

	// no .gz extension: detection goes by content
	packed := filepath.Join(dir, "packed.txt")
	f, err := os.Create(packed)
	if err != nil {
		t.Fatal(err)
	}
	zw := gzip.NewWriter(f)
	zw.Write([]byte("hello"))
	zw.Close()
	f.Close()

	for _, path := range []string{plain, packed} {
		rc, err := OpenMaybeGzip(path)
		if err != nil {
			t.Fatal(err)
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil || string(data) != "hello" {
			t.Errorf("%s: got %q, %v", filepath.Base(path), data, err)
		}
	}

	_, err = OpenMaybeGzip(filepath.Join(dir, "missing"))
	if !errors.Is(err, fault.ErrReadFailure) || !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected a read failure wrapping ErrNotExist, got %v", err)
	}

	broken := filepath.Join(dir, "broken.gz")
	if err := os.WriteFile(broken, []byte{0x1f, 0x8b}, 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := OpenMaybeGzip(broken); !errors.Is(err, fault.ErrReadFailure) {
		t.Errorf("expected a read failure for a cut gzip header, got %v", err)
	}
}

func TestIsZip(t *testing.T) {
	dir := t.TempDir()
	archive := filepath.Join(dir, "a_fastqc.zip")
	f, err := os.Create(archive)
	if err != nil {
		t.Fatal(err)
	}
	zw := zip.NewWriter(f)
	w, _ := zw.Create("a_fastqc/fastqc_data.txt")
	w.Write([]byte("##FastQC\t0.11.9\n"))
	zw.Close()
	f.Close()

	text := filepath.Join(dir, "short")
	os.WriteFile(text, []byte("PK"), 0o644)

	if ok, err := IsZip(archive); err != nil || !ok {
		t.Errorf("expected a zip archive, got %v %v", ok, err)
	}
	if ok, err := IsZip(text); err != nil || ok {
		t.Errorf("a two byte file is not an archive, got %v %v", ok, err)
	}
}

func TestReadLabels(t *testing.T) {
	path := filepath.Join(t.TempDir(), "labels.yaml")
	os.WriteFile(path, []byte("sampleA_fastqc.zip: Tumour\nsampleB_fastqc.zip: Normal\n"), 0o644)

	labels, err := ReadLabels(path)
	if err != nil {
		t.Fatal(err)
	}
	if labels["sampleA_fastqc.zip"] != "Tumour" || len(labels) != 2 {
		t.Errorf("unexpected labels %v", labels)
	}

	os.WriteFile(path, []byte("- not\n- a mapping\n"), 0o644)
	if _, err := ReadLabels(path); err == nil {
		t.Error("expected an error for a YAML list")
	}
}
