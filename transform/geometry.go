package transform

import (
	"math"

	"github.com/pkg/errors"
)

// Interval is one category's share of a stacked bar or tile row, on a shared axis.
type Interval struct {
	Filename string
	Category string
	Value    float64
	Start    float64
	End      float64
}

// Round2 rounds half away from zero to two decimals.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// StackIntervals converts per-category percentages of one sample into consecutive
// [start, end) intervals. Each value is rounded to two decimals first and the rounded
// values are then summed; the last End is that rounded cumulative sum.
func StackIntervals(filename string, categories []string, percents []float64) ([]Interval, error) {
	if len(categories) != len(percents) {
		return nil, errors.Errorf("%s: %d categories for %d values", filename, len(categories), len(percents))
	}
	out := make([]Interval, len(percents))
	cum := 0.0
	for i, p := range percents {
		if math.IsNaN(p) || p < 0 {
			return nil, errors.Errorf("%s: category %q has invalid percentage %v", filename, categories[i], p)
		}
		v := Round2(p)
		out[i] = Interval{Filename: filename, Category: categories[i], Value: v, Start: cum}
		cum += v
		out[i].End = cum
	}
	return out, nil
}

// StackLong stacks long rows sample by sample, samples in first-appearance order and
// categories in row order.
func StackLong(rows []LongRow) ([]Interval, error) {
	var (
		order  []string
		cats   = map[string][]string{}
		values = map[string][]float64{}
	)
	for _, r := range rows {
		if _, seen := cats[r.Filename]; !seen {
			order = append(order, r.Filename)
		}
		cats[r.Filename] = append(cats[r.Filename], r.Category)
		values[r.Filename] = append(values[r.Filename], r.Value)
	}

	var out []Interval
	for _, name := range order {
		iv, err := StackIntervals(name, cats[name], values[name])
		if err != nil {
			return nil, err
		}
		out = append(out, iv...)
	}
	return out, nil
}
