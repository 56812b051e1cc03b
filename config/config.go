// Package config loads the JSON configuration file and the --style key=value overrides.
package config

import (
	"log/slog"
	"sort"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/pkg/errors"

	"fqc_viz_go/charts"
	"fqc_viz_go/transform"
)

type LogConfig struct {
	Level string `koanf:"level"`
}

// ThresholdConfig is one module's status cut-offs as written in the file. Direction is
// "higher-is-worse" (the default) or "higher-is-better".
type ThresholdConfig struct {
	Warn      float64 `koanf:"warn"`
	Fail      float64 `koanf:"fail"`
	Direction string  `koanf:"direction"`
}

type Config struct {
	Log        LogConfig                  `koanf:"log"`
	Style      charts.Style               `koanf:"style"`
	Colors     charts.Colors              `koanf:"colors"`
	Thresholds map[string]ThresholdConfig `koanf:"thresholds"`
	Workers    int                        `koanf:"workers"`
}

// Default is the configuration used without a file.
func Default() *Config {
	return &Config{
		Log:     LogConfig{Level: "info"},
		Style:   charts.DefaultStyle(),
		Colors:  charts.DefaultColors(),
		Workers: 4,
	}
}

// Load reads a JSON file over the defaults. Keys the file leaves out keep their default;
// unknown style keys are rejected.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	k := koanf.New(".")
	if err := k.Load(file.Provider(path), json.Parser()); err != nil {
		return nil, errors.Wrapf(err, "loading config %s", path)
	}
	for _, key := range k.Keys() {
		if name, ok := strings.CutPrefix(key, "style."); ok && !isStyleKey(name) {
			return nil, unknownStyleKey(name)
		}
	}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, errors.WithStack(err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrapf(err, "config %s", path)
	}
	return cfg, nil
}

// Validate checks the log level, style, colors and thresholds.
func (c *Config) Validate() error {
	if _, err := c.LogLevel(); err != nil {
		return err
	}
	if err := c.Style.Validate(); err != nil {
		return err
	}
	if err := c.Colors.Validate(); err != nil {
		return err
	}
	if c.Workers < 1 {
		return errors.Errorf("workers must be at least 1, got %d", c.Workers)
	}
	_, err := c.StatusThresholds()
	return err
}

// LogLevel parses Log.Level ("debug", "info", "warn", "error").
func (c *Config) LogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return 0, &transform.InvalidOptionError{Option: "log level", Value: c.Log.Level, Allowed: []string{"debug", "info", "warn", "error"}}
	}
	return level, nil
}

// StatusThresholds converts the configured cut-offs, keyed by module name. Modules without a
// status metric are rejected.
func (c *Config) StatusThresholds() (map[string]transform.Thresholds, error) {
	out := make(map[string]transform.Thresholds, len(c.Thresholds))
	modules := transform.StatusModules()
	for name, tc := range c.Thresholds {
		if err := transform.ValidateChoice("threshold module", name, modules...); err != nil {
			return nil, err
		}
		t := transform.Thresholds{Warn: tc.Warn, Fail: tc.Fail}
		if err := t.Direction.UnmarshalText([]byte(tc.Direction)); err != nil {
			return nil, err
		}
		if err := t.Check(); err != nil {
			return nil, errors.Wrapf(err, "thresholds of %s", name)
		}
		out[name] = t
	}
	return out, nil
}

func isStyleKey(name string) bool {
	i := sort.SearchStrings(StyleKeys, name)
	return i < len(StyleKeys) && StyleKeys[i] == name
}
