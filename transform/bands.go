package transform

import (
	"github.com/pkg/errors"
)

// ErrInvalidThresholds is returned for thresholds that do not split the axis in order.
var ErrInvalidThresholds = errors.New("invalid status thresholds")

// Verdict is a computed PASS/WARN/FAIL classification.
type Verdict string

const (
	Pass Verdict = "PASS"
	Warn Verdict = "WARN"
	Fail Verdict = "FAIL"
)

// Verdicts lists the verdicts in display order.
var Verdicts = []Verdict{Pass, Warn, Fail}

// Direction says which end of a metric is bad.
type Direction int

const (
	HigherIsWorse Direction = iota
	HigherIsBetter
)

func (d Direction) String() string {
	if d == HigherIsBetter {
		return "higher-is-better"
	}
	return "higher-is-worse"
}

func (d Direction) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Direction) UnmarshalText(text []byte) error {
	switch string(text) {
	case "higher-is-worse", "":
		*d = HigherIsWorse
	case "higher-is-better":
		*d = HigherIsBetter
	default:
		return &InvalidOptionError{Option: "direction", Value: string(text), Allowed: []string{"higher-is-worse", "higher-is-better"}}
	}
	return nil
}

// Thresholds are the warn and fail cut-offs of one metric.
type Thresholds struct {
	Warn      float64   `json:"warn"`
	Fail      float64   `json:"fail"`
	Direction Direction `json:"direction"`
}

// Extent is a closed numeric range.
type Extent struct {
	Min, Max float64
}

// Band is one background rectangle. X spans the category axis, Y the value axis.
type Band struct {
	Verdict Verdict
	X0, X1  float64
	Y0, Y1  float64
}

// Check verifies that warn and fail are ordered for the direction.
func (t Thresholds) Check() error {
	lo, hi := t.bounds()
	if !(lo < hi) {
		return errors.Wrapf(ErrInvalidThresholds, "warn=%v fail=%v (%s)", t.Warn, t.Fail, t.Direction)
	}
	return nil
}

// Validate checks the ordering and that both values lie inside axis.
func (t Thresholds) Validate(axis Extent) error {
	if err := t.Check(); err != nil {
		return err
	}
	if !(axis.Min < axis.Max) {
		return errors.Wrapf(ErrInvalidThresholds, "empty axis [%v, %v]", axis.Min, axis.Max)
	}
	lo, hi := t.bounds()
	if lo < axis.Min || hi > axis.Max {
		return errors.Wrapf(ErrInvalidThresholds, "warn=%v fail=%v outside axis [%v, %v]", t.Warn, t.Fail, axis.Min, axis.Max)
	}
	return nil
}

func (t Thresholds) bounds() (lo, hi float64) {
	if t.Direction == HigherIsBetter {
		return t.Fail, t.Warn
	}
	return t.Warn, t.Fail
}

// StatusBands returns three non-overlapping bands that cover axis, ordered from axis.Min
// upwards, each spanning the whole category extent.
func StatusBands(t Thresholds, axis, categories Extent) ([]Band, error) {
	if err := t.Validate(axis); err != nil {
		return nil, err
	}
	band := func(v Verdict, y0, y1 float64) Band {
		return Band{Verdict: v, X0: categories.Min, X1: categories.Max, Y0: y0, Y1: y1}
	}
	if t.Direction == HigherIsBetter {
		return []Band{
			band(Fail, axis.Min, t.Fail),
			band(Warn, t.Fail, t.Warn),
			band(Pass, t.Warn, axis.Max),
		}, nil
	}
	return []Band{
		band(Pass, axis.Min, t.Warn),
		band(Warn, t.Warn, t.Fail),
		band(Fail, t.Fail, axis.Max),
	}, nil
}

// Classify returns the verdict of a metric. For HigherIsWorse the warn and fail values
// themselves already count as WARN and FAIL; for HigherIsBetter they count as the better
// band.
func Classify(metric float64, t Thresholds) Verdict {
	if t.Direction == HigherIsBetter {
		switch {
		case metric < t.Fail:
			return Fail
		case metric < t.Warn:
			return Warn
		}
		return Pass
	}
	switch {
	case metric >= t.Fail:
		return Fail
	case metric >= t.Warn:
		return Warn
	}
	return Pass
}
