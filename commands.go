package main

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v3"
	"go.uber.org/multierr"

	"fqc_viz_go/charts"
	"fqc_viz_go/collection"
	"fqc_viz_go/export"
	"fqc_viz_go/fastqc_mimic"
	fqc "fqc_viz_go/fastqc_report"
	"fqc_viz_go/plots"
	"fqc_viz_go/transform"
)

var errNoInput = errors.New("no input files")

func outFlag(usage string) cli.Flag {
	return &cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: usage}
}

// writeOutput writes to path, or to stdout for "" and "-".
func writeOutput(path string, write func(io.Writer) error) error {
	if path == "" || path == "-" {
		return write(os.Stdout)
	}
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "creating %s", path)
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return errors.Wrapf(err, "closing %s", path)
	}
	slog.Info("wrote output", "file", path)
	return nil
}

func loadCollection(s *settings, files []string) (*collection.Collection, error) {
	if len(files) == 0 {
		return nil, errNoInput
	}
	c, err := plots.FromPath(files...).Resolve(s.cfg.Workers)
	if err != nil {
		return nil, err
	}
	for _, e := range multierr.Errors(c.Compatibility()) {
		slog.Warn("reports differ", "detail", e.Error())
	}
	return c, nil
}

// plotOptions starts from the configuration and the global label file.
func (s *settings) plotOptions() (plots.Options, error) {
	opts := plots.DefaultOptions()
	opts.Style = s.cfg.Style
	opts.Colors = s.cfg.Colors
	opts.Labels = s.labels
	opts.Workers = s.cfg.Workers
	th, err := s.cfg.StatusThresholds()
	if err != nil {
		return opts, err
	}
	opts.Thresholds = th
	return opts, nil
}

func chartFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{Name: "interactive", Aliases: []string{"i"}, Usage: "Interactive figure (HTML output)"},
		&cli.StringFlag{Name: "dedup", Usage: "Duplication values: pre (percentage of total) or post (percentage of deduplicated)", Value: string(transform.DedupPre)},
		&cli.BoolFlag{Name: "cluster", Usage: "Order samples by hierarchical clustering"},
		&cli.BoolFlag{Name: "dendrogram", Usage: "Draw the clustering tree (requires --cluster)"},
		&cli.StringFlag{Name: "adapter", Usage: "Only chart this adapter, e.g. \"Illumina Universal\""},
		&cli.StringSliceFlag{Name: "order", Usage: "Report filenames to show first, in order"},
		&cli.IntFlag{Name: "columns", Usage: "Facet columns", Value: 2},
		&cli.IntFlag{Name: "top", Usage: "Entries shown by ranking charts", Value: 10},
	}
}

func applyChartFlags(cmd *cli.Command, opts *plots.Options) {
	opts.Interactive = cmd.Bool("interactive")
	opts.Deduplication = cmd.String("dedup")
	opts.Cluster = cmd.Bool("cluster")
	opts.Dendrogram = cmd.Bool("dendrogram")
	opts.Adapter = cmd.String("adapter")
	opts.Ordering = cmd.StringSlice("order")
	opts.Columns = cmd.Int("columns")
	opts.Top = cmd.Int("top")
}

func plotCommand() *cli.Command {
	return &cli.Command{
		Name:      "plot",
		Usage:     "Render one catalogue chart",
		ArgsUsage: "<kind> <report>...",
		Flags: append(chartFlags(),
			outFlag("Output file (default stdout)"),
			&cli.StringFlag{Name: "format", Aliases: []string{"f"}, Usage: "svg, png or html (default from --out, else svg)"},
		),
		Action: timed(func(ctx context.Context, cmd *cli.Command) error {
			if cmd.NArg() < 2 {
				return errors.Errorf("expected a chart kind and at least one report, got %d arguments", cmd.NArg())
			}
			s := settingsFrom(ctx)
			opts, err := s.plotOptions()
			if err != nil {
				return err
			}
			applyChartFlags(cmd, &opts)

			format, err := outputFormat(cmd.String("format"), cmd.String("out"))
			if err != nil {
				return err
			}

			chart, err := plots.Plot(plots.Kind(cmd.Args().First()), plots.FromPath(cmd.Args().Tail()...), opts)
			if err != nil {
				return err
			}
			return writeOutput(cmd.String("out"), func(w io.Writer) error {
				return chart.Render(w, format)
			})
		}),
	}
}

func outputFormat(flag, out string) (charts.Format, error) {
	switch {
	case flag != "":
		return charts.ParseFormat(flag)
	case out != "" && out != "-":
		return charts.FormatFor(out)
	}
	return charts.FormatSVG, nil
}

func reportCommand() *cli.Command {
	return &cli.Command{
		Name:      "report",
		Usage:     "Write an HTML page with every catalogue chart",
		ArgsUsage: "<report>...",
		Flags: append(chartFlags(),
			outFlag("Output HTML file (default stdout)"),
			&cli.StringFlag{Name: "title", Usage: "Page title", Value: "FastQC comparison"},
		),
		Action: timed(func(ctx context.Context, cmd *cli.Command) error {
			s := settingsFrom(ctx)
			opts, err := s.plotOptions()
			if err != nil {
				return err
			}
			applyChartFlags(cmd, &opts)
			if err := opts.Validate(); err != nil {
				return err
			}

			c, err := loadCollection(s, cmd.Args().Slice())
			if err != nil {
				return err
			}
			src := plots.FromCollection(c)

			var sections []charts.Section
			for _, entry := range plots.Catalogue() {
				chart, err := plots.Plot(entry.Kind, src, opts)
				if err != nil {
					return err
				}
				sections = append(sections, charts.Section{Title: entry.Title, Note: entry.Description, Chart: chart})
			}
			return writeOutput(cmd.String("out"), func(w io.Writer) error {
				return charts.WriteHTMLReport(w, cmd.String("title"), sections)
			})
		}),
	}
}

func moduleFlag(usage string) cli.Flag {
	return &cli.StringSliceFlag{Name: "module", Aliases: []string{"m"}, Usage: usage}
}

func statusRecords(s *settings, c *collection.Collection, modules []string) ([]transform.StatusRecord, error) {
	th, err := s.cfg.StatusThresholds()
	if err != nil {
		return nil, err
	}
	if len(modules) == 0 {
		modules = transform.StatusModules()
	}
	var records []transform.StatusRecord
	for _, m := range modules {
		if err := transform.ValidateChoice("status module", m, transform.StatusModules()...); err != nil {
			return nil, err
		}
		var override *transform.Thresholds
		if t, ok := th[m]; ok {
			override = &t
		}
		recs, err := transform.Statuses(c, m, override)
		if err != nil {
			return nil, err
		}
		records = append(records, recs...)
	}
	return records, nil
}

func statusCommand() *cli.Command {
	return &cli.Command{
		Name:      "status",
		Usage:     "Grade every report with the configured thresholds",
		ArgsUsage: "<report>...",
		Flags: []cli.Flag{
			moduleFlag("Module to grade (default all graded modules)"),
			&cli.StringFlag{Name: "format", Aliases: []string{"f"}, Usage: "tsv or json", Value: "tsv"},
			&cli.BoolFlag{Name: "strict", Usage: "Exit non-zero when any check fails"},
			outFlag("Output file (default stdout)"),
		},
		Action: timed(func(ctx context.Context, cmd *cli.Command) error {
			s := settingsFrom(ctx)
			format := cmd.String("format")
			if err := transform.ValidateChoice("format", format, "tsv", "json"); err != nil {
				return err
			}
			c, err := loadCollection(s, cmd.Args().Slice())
			if err != nil {
				return err
			}
			records, err := statusRecords(s, c, cmd.StringSlice("module"))
			if err != nil {
				return err
			}

			err = writeOutput(cmd.String("out"), func(w io.Writer) error {
				if format == "json" {
					return export.WriteStatusJSON(w, records)
				}
				return writeStatusTSV(w, records, transform.LabelMap(c.Filenames(), s.labels))
			})
			if err != nil {
				return err
			}

			if cmd.Bool("strict") {
				failed := 0
				for _, r := range records {
					if r.Verdict == transform.Fail {
						failed++
					}
				}
				if failed > 0 {
					return errors.Errorf("%d of %d checks failed", failed, len(records))
				}
			}
			return nil
		}),
	}
}

func writeStatusTSV(w io.Writer, records []transform.StatusRecord, labels map[string]string) error {
	cw := csv.NewWriter(w)
	cw.Comma = '\t'
	cw.Write([]string{"Filename", "Sample", "Module", "Verdict", "Metric", "Warn", "Fail", "Direction", "Reported"})
	for _, r := range records {
		cw.Write([]string{
			r.Filename, labels[r.Filename], r.Module, string(r.Verdict),
			strconv.FormatFloat(r.Metric, 'f', -1, 64),
			strconv.FormatFloat(r.Thresholds.Warn, 'f', -1, 64),
			strconv.FormatFloat(r.Thresholds.Fail, 'f', -1, 64),
			r.Thresholds.Direction.String(), string(r.Reported),
		})
	}
	cw.Flush()
	return errors.Wrap(cw.Error(), "writing status table")
}

func exportCommand() *cli.Command {
	return &cli.Command{
		Name:      "export",
		Usage:     "Export module tables as TSV, JSON or a SQLite database",
		ArgsUsage: "<report>...",
		Flags: []cli.Flag{
			moduleFlag("Module to export; tsv and json take exactly one, sqlite defaults to all"),
			&cli.StringFlag{Name: "format", Aliases: []string{"f"}, Usage: "tsv, json or sqlite", Value: "tsv"},
			outFlag("Output file (default stdout; required for sqlite)"),
		},
		Action: timed(func(ctx context.Context, cmd *cli.Command) error {
			s := settingsFrom(ctx)
			format := cmd.String("format")
			if err := transform.ValidateChoice("format", format, "tsv", "json", "sqlite"); err != nil {
				return err
			}
			modules := cmd.StringSlice("module")
			for _, m := range modules {
				if err := transform.ValidateChoice("module", m, fqc.AllModuleNames()...); err != nil {
					return err
				}
			}

			c, err := loadCollection(s, cmd.Args().Slice())
			if err != nil {
				return err
			}

			if format == "sqlite" {
				out := cmd.String("out")
				if out == "" || out == "-" {
					return errors.New("sqlite export needs --out")
				}
				if len(modules) == 0 {
					modules = fqc.AllModuleNames()
				}
				records, err := statusRecords(s, c, nil)
				if err != nil {
					return err
				}
				if err := export.WriteSQLite(ctx, out, c, modules, records); err != nil {
					return err
				}
				slog.Info("wrote database", "file", out, "reports", c.Len(), "modules", len(modules))
				return nil
			}

			if len(modules) != 1 {
				return errors.Errorf("%s export takes exactly one --module, got %d", format, len(modules))
			}
			mt := c.Module(modules[0])
			return writeOutput(cmd.String("out"), func(w io.Writer) error {
				if format == "json" {
					return export.WriteJSON(w, mt)
				}
				return export.WriteTSV(w, mt)
			})
		}),
	}
}

func mimicCommand() *cli.Command {
	return &cli.Command{
		Name:      "mimic",
		Usage:     "Compute a FastQC-style fastqc_data.txt from a FASTQ file",
		ArgsUsage: "<fastq>",
		Flags: []cli.Flag{
			outFlag("Output fastqc_data.txt (default stdout)"),
		},
		Action: timed(func(ctx context.Context, cmd *cli.Command) error {
			if cmd.NArg() != 1 {
				return errors.Errorf("expected exactly one FASTQ file, got %d", cmd.NArg())
			}
			s := settingsFrom(ctx)
			report, err := fastqc_mimic.Mimic(cmd.Args().First(), s.cfg.Workers)
			if err != nil {
				return err
			}
			return writeOutput(cmd.String("out"), func(w io.Writer) error {
				return fqc.Write(w, report)
			})
		}),
	}
}

func catalogueCommand() *cli.Command {
	return &cli.Command{
		Name:  "catalogue",
		Usage: "List the chart kinds",
		Action: func(_ context.Context, _ *cli.Command) error {
			tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "KIND\tMODULE\tDESCRIPTION")
			for _, e := range plots.Catalogue() {
				module := e.Module
				if module == "" {
					module = "-"
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\n", e.Kind, module, e.Description)
			}
			return tw.Flush()
		},
	}
}
