package domain

import "fmt"

// UnsupportedExportError is returned when no renderer exists for a format.
type UnsupportedExportError struct {
	Format string
}

func (e *UnsupportedExportError) Error() string {
	return fmt.Sprintf("unsupported_export_format: %q", e.Format)
}
