package service

import (
	"encoding/json"
	"fmt"

	exportdomain "github.com/docbrief/docbrief/internal/export/domain"
	summarizerdomain "github.com/docbrief/docbrief/internal/summarizer/domain"
	summarydomain "github.com/docbrief/docbrief/internal/summary/domain"
)

type jsonRenderer struct{}

func newJSONRenderer() exportdomain.Renderer {
	return &jsonRenderer{}
}

func (r *jsonRenderer) Format() string { return "json" }

type jsonExport struct {
	Filename    string                    `json:"filename"`
	DocFormat   string                    `json:"doc_format"`
	Tier        string                    `json:"tier"`
	PageCount   int                       `json:"page_count"`
	Degraded    bool                      `json:"degraded"`
	Watermarked bool                      `json:"watermarked"`
	CreatedAt   string                    `json:"created_at"`
	Summary     summarizerdomain.Summary  `json:"summary"`
}

func (r *jsonRenderer) Render(record *summarydomain.SummaryRecord, opts exportdomain.Options) ([]byte, string, error) {
	summary, err := decodeSummary(record)
	if err != nil {
		return nil, "", err
	}

	payload := jsonExport{
		Filename:    record.Filename,
		DocFormat:   record.DocFormat,
		Tier:        record.Tier,
		PageCount:   record.PageCount,
		Degraded:    record.Degraded,
		Watermarked: opts.Watermark,
		CreatedAt:   record.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
		Summary:     *summary,
	}
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return nil, "", fmt.Errorf("encode export: %w", err)
	}
	return data, "application/json", nil
}

func decodeSummary(record *summarydomain.SummaryRecord) (*summarizerdomain.Summary, error) {
	var summary summarizerdomain.Summary
	if err := json.Unmarshal(record.Content, &summary); err != nil {
		return nil, fmt.Errorf("decode stored summary: %w", err)
	}
	return &summary, nil
}
