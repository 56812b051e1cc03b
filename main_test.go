package main

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/containerd/nerdctl/mod/tigron/expect"
	"github.com/containerd/nerdctl/mod/tigron/test"
	"github.com/containerd/nerdctl/mod/tigron/tig"
)

var (
	binary  string
	sampleA string
	sampleB string
)

// TestMain builds the binary once for every CLI test.
func TestMain(m *testing.M) {
	dir, err := os.MkdirTemp("", "fqcviz-cli")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	binary = filepath.Join(dir, "fqcviz")
	if out, err := exec.Command("go", "build", "-o", binary, ".").CombinedOutput(); err != nil {
		fmt.Fprintf(os.Stderr, "building fqcviz: %v\n%s", err, out)
		os.RemoveAll(dir)
		os.Exit(1)
	}
	sampleA, _ = filepath.Abs(filepath.Join("testdata", "sampleA_fastqc_data.txt"))
	sampleB, _ = filepath.Abs(filepath.Join("testdata", "sampleB_fastqc_data.txt"))

	code := m.Run()
	os.RemoveAll(dir)
	os.Exit(code)
}

func run(args ...string) test.Executor {
	return func(_ test.Data, helpers test.Helpers) test.TestableCommand {
		return helpers.Custom(binary, args...)
	}
}

func expectLines(min int) test.Comparator {
	return func(stdout string, t tig.T) {
		t.Helper()
		if n := len(strings.Split(strings.TrimSpace(stdout), "\n")); n < min {
			t.Log(fmt.Sprintf("expected at least %d lines, got %d:\n%s", min, n, stdout))
			t.Fail()
		}
	}
}

func TestCatalogue(t *testing.T) {
	testCase := &test.Case{
		Description: "catalogue lists every chart kind",
		Command:     run("catalogue"),
		Expected: test.Expects(expect.ExitCodeSuccess, nil, expect.All(
			expect.Contains("duplication_heatmap", "status_summary"),
			expectLines(17),
		)),
	}
	testCase.Run(t)
}

func TestPlot(t *testing.T) {
	testCase := &test.Case{
		Description: "plot",
		SubTests: []*test.Case{
			{
				Description: "svg to stdout",
				Command:     run("plot", "per_base_n_content", sampleA, sampleB),
				Expected:    test.Expects(expect.ExitCodeSuccess, nil, expect.Contains("<svg")),
			},
			{
				Description: "interactive html",
				Command:     run("plot", "--format", "html", "--interactive", "adapter_content", sampleA, sampleB),
				Expected:    test.Expects(expect.ExitCodeSuccess, nil, expect.Contains("<html", "Adapter Content")),
			},
			{
				Description: "clustered heatmap",
				Command:     run("plot", "--cluster", "--dendrogram", "duplication_heatmap", sampleA, sampleB),
				Expected:    test.Expects(expect.ExitCodeSuccess, nil, expect.Contains("<svg")),
			},
			{
				Description: "png file",
				Command: func(data test.Data, helpers test.Helpers) test.TestableCommand {
					return helpers.Custom(binary, "plot", "-o", data.Temp().Path("chart.png"), "status_summary", sampleA)
				},
				Expected: func(data test.Data, _ test.Helpers) *test.Expected {
					return &test.Expected{
						ExitCode: expect.ExitCodeSuccess,
						Output: func(_ string, t tig.T) {
							t.Helper()
							info, err := os.Stat(data.Temp().Path("chart.png"))
							if err != nil || info.Size() == 0 {
								t.Log(fmt.Sprintf("expected a png file: %v", err))
								t.Fail()
							}
						},
					}
				},
			},
			{
				Description: "unknown kind fails",
				Command:     run("plot", "bogus", sampleA),
				Expected: test.Expects(expect.ExitCodeGenericFail,
					[]error{errors.New("invalid chart kind")}, nil),
			},
			{
				Description: "invalid dedup fails before reading input",
				Command:     run("plot", "--dedup", "both", "duplication_stacked", "/does/not/exist"),
				Expected: test.Expects(expect.ExitCodeGenericFail,
					[]error{errors.New("pre, post")}, nil),
			},
			{
				Description: "unknown style key fails",
				Command:     run("--style", "colour=red", "plot", "per_base_quality", sampleA),
				Expected: test.Expects(expect.ExitCodeGenericFail,
					[]error{errors.New("unknown style key")}, nil),
			},
		},
	}
	testCase.Run(t)
}

func TestStatus(t *testing.T) {
	testCase := &test.Case{
		Description: "status",
		SubTests: []*test.Case{
			{
				Description: "tsv table",
				Command:     run("status", "--module", "Adapter_Content", sampleA, sampleB),
				Expected: test.Expects(expect.ExitCodeSuccess, nil, expect.All(
					expect.Contains("Filename\tSample\tModule", "sampleA\tAdapter_Content\tWARN"),
					expectLines(3),
				)),
			},
			{
				Description: "json records",
				Command:     run("status", "--format", "json", sampleA),
				Expected:    test.Expects(expect.ExitCodeSuccess, nil, expect.Contains(`"verdict"`, `"Per_base_N_content"`)),
			},
			{
				Description: "strict fails on a failed check",
				Command:     run("status", "--strict", "--module", "Overrepresented_sequences", sampleA),
				Expected: test.Expects(expect.ExitCodeGenericFail,
					[]error{errors.New("checks failed")}, nil),
			},
		},
	}
	testCase.Run(t)
}

func TestExport(t *testing.T) {
	testCase := &test.Case{
		Description: "export",
		SubTests: []*test.Case{
			{
				Description: "tsv",
				Command:     run("export", "--module", "Per_base_N_content", sampleA, sampleB),
				Expected:    test.Expects(expect.ExitCodeSuccess, nil, expect.Contains("Filename\tBase\tN-Count")),
			},
			{
				Description: "sqlite needs an output file",
				Command:     run("export", "--format", "sqlite", sampleA),
				Expected: test.Expects(expect.ExitCodeGenericFail,
					[]error{errors.New("needs --out")}, nil),
			},
			{
				Description: "sqlite",
				Command: func(data test.Data, helpers test.Helpers) test.TestableCommand {
					return helpers.Custom(binary, "export", "--format", "sqlite", "-o", data.Temp().Path("fqc.db"), sampleA, sampleB)
				},
				Expected: test.Expects(expect.ExitCodeSuccess, nil, nil),
			},
		},
	}
	testCase.Run(t)
}

func TestMimic(t *testing.T) {
	fastq := "@r1\nACGTACGTAC\n+\nIIIIIIIIII\n@r2\nGGGGCCCCAA\n+\nIIIII#####\n"

	testCase := &test.Case{
		Description: "mimic writes a parseable report",
		Setup: func(data test.Data, _ test.Helpers) {
			data.Labels().Set("fastq", data.Temp().Save(fastq, "reads.fastq"))
		},
		Command: func(data test.Data, helpers test.Helpers) test.TestableCommand {
			return helpers.Custom(binary, "mimic", data.Labels().Get("fastq"))
		},
		Expected: test.Expects(expect.ExitCodeSuccess, nil, expect.Contains(
			"##FastQC\t0.11.9", "Total Sequences\t2", ">>Sequence Duplication Levels",
		)),
	}
	testCase.Run(t)
}
