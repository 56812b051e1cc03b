package fastqc_report

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	ErrMalformed          = errors.New("malformed report")
	ErrUnsupportedVersion = errors.New("unsupported FastQC version")
	ErrMissingModule      = errors.New("missing module")
)

// MalformedError names the section and line a report failed to parse at.
type MalformedError struct {
	Filename string
	Section  string
	Line     int
	Reason   string
}

func (e *MalformedError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s: %s: section %q, line %d: %s", e.Filename, ErrMalformed, e.Section, e.Line, e.Reason)
	}
	return fmt.Sprintf("%s: %s: section %q: %s", e.Filename, ErrMalformed, e.Section, e.Reason)
}

func (e *MalformedError) Unwrap() error { return ErrMalformed }

// UnsupportedVersionError is returned for a "##FastQC" marker no layout covers.
type UnsupportedVersionError struct {
	Filename string
	Version  string
}

func (e *UnsupportedVersionError) Error() string {
	return fmt.Sprintf("%s: %s %q (supported: %v)", e.Filename, ErrUnsupportedVersion, e.Version, SupportedLayouts())
}

func (e *UnsupportedVersionError) Unwrap() error { return ErrUnsupportedVersion }

// MissingModuleError is returned when a module name is not part of a report's layout.
type MissingModuleError struct {
	Module   string
	Filename string
	Version  string
}

func (e *MissingModuleError) Error() string {
	return fmt.Sprintf("%s: %s %q in FastQC %s", e.Filename, ErrMissingModule, e.Module, e.Version)
}

func (e *MissingModuleError) Unwrap() error { return ErrMissingModule }

func malformed(filename, section string, line int, format string, args ...any) error {
	return errors.WithStack(&MalformedError{
		Filename: filename,
		Section:  section,
		Line:     line,
		Reason:   fmt.Sprintf(format, args...),
	})
}
