package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/urfave/cli/v3"
	"go.uber.org/multierr"

	"fqc_viz_go/benchmark"
	"fqc_viz_go/config"
	common "fqc_viz_go/utils"
)

// settings are resolved once per invocation from the config file and the global flags.
type settings struct {
	cfg    *config.Config
	labels map[string]string
}

type settingsKey struct{}

func settingsFrom(ctx context.Context) *settings {
	if s, ok := ctx.Value(settingsKey{}).(*settings); ok {
		return s
	}
	return &settings{cfg: config.Default()}
}

func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:  "benchmark",
			Usage: "Log computational resource usage and pertinent operating system information",
		},
		&cli.StringFlag{
			Name:  "log-level",
			Usage: "Log level: debug, info, warn, error",
		},
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "JSON configuration file",
		},
		&cli.StringSliceFlag{
			Name:  "style",
			Usage: "Style override key=value (" + strings.Join(config.StyleKeys, ", ") + ")",
		},
		&cli.StringFlag{
			Name:  "labels",
			Usage: "YAML file mapping report filenames to display labels",
		},
		&cli.IntFlag{
			Name:  "workers",
			Usage: "Files parsed in parallel",
		},
	}
}

// setup loads the configuration, applies the global flags and installs the logger.
func setup(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	cfg, err := config.Load(cmd.String("config"))
	if err != nil {
		return ctx, err
	}
	if cmd.IsSet("log-level") {
		cfg.Log.Level = cmd.String("log-level")
	}
	level, err := cfg.LogLevel()
	if err != nil {
		return ctx, err
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	if err := config.ParseStyleOptions(cmd.StringSlice("style"), &cfg.Style); err != nil {
		return ctx, err
	}
	if cmd.IsSet("workers") {
		cfg.Workers = cmd.Int("workers")
	}

	s := &settings{cfg: cfg}
	if path := cmd.String("labels"); path != "" {
		if s.labels, err = common.ReadLabels(path); err != nil {
			return ctx, err
		}
	}
	return context.WithValue(ctx, settingsKey{}, s), nil
}

// timed runs action inside benchmark.Run when --benchmark is set.
func timed(action cli.ActionFunc) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		if !cmd.Bool("benchmark") {
			return action(ctx, cmd)
		}
		var err error
		label := fmt.Sprintf("fqcviz %s %s", cmd.Name, strings.Join(cmd.Args().Slice(), " "))
		benchmark.Run(label, func() { err = action(ctx, cmd) })
		return err
	}
}

func app() *cli.Command {
	return &cli.Command{
		Name:    "fqcviz",
		Usage:   "Parse, compare and chart FastQC reports",
		Version: config.Main_version,
		Flags:   globalFlags(),
		Before:  setup,
		Commands: []*cli.Command{
			plotCommand(),
			reportCommand(),
			statusCommand(),
			exportCommand(),
			mimicCommand(),
			catalogueCommand(),
		},
	}
}

// Main controller
func main() {
	if err := app().Run(context.Background(), os.Args); err != nil {
		for _, e := range multierr.Errors(err) {
			slog.Error("failed to run", "error", e)
		}
		os.Exit(1)
	}
}
