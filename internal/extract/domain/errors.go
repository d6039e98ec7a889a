package domain

import (
	"fmt"
	"strings"
)

// UnsupportedFormatError is returned when the declared format has no parser.
type UnsupportedFormatError struct {
	Format string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("unsupported_format: %q", e.Format)
}

// ExtractionError wraps a format-specific parse failure.
type ExtractionError struct {
	Format Format
	Err    error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extraction_failed (%s): %v", e.Format, e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// ParseFormat normalizes a file extension or format name.
func ParseFormat(raw string) (Format, error) {
	normalized := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(raw, ".")))
	switch Format(normalized) {
	case FormatPDF, FormatTXT, FormatDOCX, FormatRTF, FormatODT:
		return Format(normalized), nil
	default:
		return "", &UnsupportedFormatError{Format: raw}
	}
}
