package domain

import (
	summarydomain "github.com/docbrief/docbrief/internal/summary/domain"
)

// Options carries per-request rendering flags derived from the owner's plan.
type Options struct {
	Watermark bool
}

// Renderer produces one export format from a stored summary record.
type Renderer interface {
	Render(record *summarydomain.SummaryRecord, opts Options) ([]byte, string, error)
	Format() string
}

// Registry resolves renderers by format name.
type Registry interface {
	Lookup(format string) (Renderer, error)
	Formats() []string
}
