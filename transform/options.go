package transform

import (
	"fmt"
	"strings"

	fqc "fqc_viz_go/fastqc_report"
)

// InvalidOptionError is an enumerated option set to a value outside its allowed set.
type InvalidOptionError struct {
	Option  string
	Value   string
	Allowed []string
}

func (e *InvalidOptionError) Error() string {
	return fmt.Sprintf("invalid %s %q: must be one of %s", e.Option, e.Value, strings.Join(e.Allowed, ", "))
}

// Deduplication selects which duplication percentage is plotted: "pre" is the share of all
// reads, "post" the share of the reads left after deduplication.
type Deduplication string

const (
	DedupPre  Deduplication = "pre"
	DedupPost Deduplication = "post"
)

// ValidateDeduplication rejects anything but "pre" and "post". The empty string selects pre.
func ValidateDeduplication(mode string) (Deduplication, error) {
	switch Deduplication(mode) {
	case DedupPre, "":
		return DedupPre, nil
	case DedupPost:
		return DedupPost, nil
	}
	return "", &InvalidOptionError{Option: "deduplication", Value: mode, Allowed: []string{string(DedupPre), string(DedupPost)}}
}

// Field is the 0.11+ duplication column carrying the mode's percentages.
func (d Deduplication) Field() string {
	if d == DedupPost {
		return "Percentage of deduplicated"
	}
	return "Percentage of total"
}

// DuplicationField resolves the column to plot for a schema; 0.10 tables only have the
// relative count.
func DuplicationField(schema *fqc.ModuleSchema, d Deduplication) string {
	if schema != nil && len(schema.Categories) == 0 && len(schema.Fields) == 2 {
		return schema.Fields[1].Name
	}
	return d.Field()
}

// ValidateChoice is the generic form of ValidateDeduplication.
func ValidateChoice(option, value string, allowed ...string) error {
	for _, a := range allowed {
		if value == a {
			return nil
		}
	}
	return &InvalidOptionError{Option: option, Value: value, Allowed: allowed}
}
