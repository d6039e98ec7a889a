package domain

import "context"

// Format is a supported document format, keyed by file extension.
type Format string

const (
	FormatPDF  Format = "pdf"
	FormatTXT  Format = "txt"
	FormatDOCX Format = "docx"
	FormatRTF  Format = "rtf"
	FormatODT  Format = "odt"
)

// Result is the normalized extraction output.
//
// PageCount is exact for PDF and a word-count estimate elsewhere; consumers
// must not treat the estimate as real pagination. Degraded marks results
// recovered through the byte-level fallback path.
type Result struct {
	Text      string
	PageCount int
	Degraded  bool
}

// Extractor turns an uploaded file into normalized text plus a page count.
type Extractor interface {
	Extract(ctx context.Context, path string, format Format) (*Result, error)
	Supported() []Format
}
