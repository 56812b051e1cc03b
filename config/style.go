package config

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"fqc_viz_go/charts"
)

var ErrUnknownStyleKey = errors.New("unknown style key")

// StyleKeys are the keys a --style override may set, sorted.
var StyleKeys = []string{"band_alpha", "font_size", "grid", "height", "legend", "line_width", "palette", "title", "width"}

func unknownStyleKey(key string) error {
	return errors.Wrapf(ErrUnknownStyleKey, "%q (allowed: %s)", key, strings.Join(StyleKeys, ", "))
}

// ParseStyleOptions applies "key=value" overrides to s in order and validates the result.
func ParseStyleOptions(opts []string, s *charts.Style) error {
	for _, opt := range opts {
		kv := splitOption(opt)
		if err := setStyle(s, strings.TrimSpace(kv[0]), strings.TrimSpace(kv[1])); err != nil {
			return err
		}
	}
	return s.Validate()
}

func setStyle(s *charts.Style, key, value string) error {
	var err error
	switch key {
	case "width":
		s.Width, err = parseFloat(key, value)
	case "height":
		s.Height, err = parseFloat(key, value)
	case "font_size":
		s.FontSize, err = parseFloat(key, value)
	case "line_width":
		s.LineWidth, err = parseFloat(key, value)
	case "band_alpha":
		s.BandAlpha, err = parseFloat(key, value)
	case "legend":
		s.Legend = value
	case "palette":
		s.Palette = value
	case "title":
		s.Title = value
	case "grid":
		s.Grid, err = strconv.ParseBool(value)
		err = errors.Wrapf(err, "style %s", key)
	default:
		return unknownStyleKey(key)
	}
	return err
}

func parseFloat(key, value string) (float64, error) {
	v, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, errors.Errorf("style %s: not a number: %q", key, value)
	}
	return v, nil
}

// splitOption cuts "key=value" at the first '='; a bare key gets an empty value.
func splitOption(arg string) [2]string {
	var kv [2]string
	for i, ch := range arg {
		if ch == '=' {
			kv[0] = arg[:i]
			kv[1] = arg[i+1:]
			return kv
		}
	}
	kv[0] = arg
	kv[1] = ""
	return kv
}
