package d3dbsp

import (
	"fmt"
)

// FormatError reports input that does not follow the BSP layout: a bad
// magic tag or version, or a lump that cannot be split into records.
type FormatError struct {
	Lump   string // Empty for header problems
	Reason string
}

func (e *FormatError) Error() string {
	if e.Lump == "" {
		return "bad bsp header: " + e.Reason
	}
	return fmt.Sprintf("bad %s lump: %s", e.Lump, e.Reason)
}

func formatErrorf(lump LumpType, format string, args ...any) *FormatError {
	return &FormatError{Lump: lump.String(), Reason: fmt.Sprintf(format, args...)}
}

// IOError wraps a failure to open, read or write a file.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

// UnsupportedFeatureError is returned for input the converter refuses to
// guess at, such as brushes written inline in the entity text.
type UnsupportedFeatureError struct {
	Feature string
	Line    int
}

func (e *UnsupportedFeatureError) Error() string {
	return fmt.Sprintf("unsupported %s at entity text line %d", e.Feature, e.Line)
}
