package service

import (
	"strings"

	exportdomain "github.com/docbrief/docbrief/internal/export/domain"
	summarydomain "github.com/docbrief/docbrief/internal/summary/domain"
)

const watermarkNotice = "Generated by DocBrief (free plan)"

type txtRenderer struct{}

func newTXTRenderer() exportdomain.Renderer {
	return &txtRenderer{}
}

func (r *txtRenderer) Format() string { return "txt" }

func (r *txtRenderer) Render(record *summarydomain.SummaryRecord, opts exportdomain.Options) ([]byte, string, error) {
	summary, err := decodeSummary(record)
	if err != nil {
		return nil, "", err
	}

	var sb strings.Builder
	if opts.Watermark {
		sb.WriteString(watermarkNotice)
		sb.WriteString("\n\n")
	}

	sb.WriteString("Summary of ")
	sb.WriteString(record.Filename)
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 40))
	sb.WriteString("\n\n")
	sb.WriteString(summary.ExecutiveSummary)
	sb.WriteString("\n")

	writeSection := func(title string, items []string) {
		if len(items) == 0 {
			return
		}
		sb.WriteString("\n")
		sb.WriteString(title)
		sb.WriteString("\n")
		for _, item := range items {
			sb.WriteString("  - ")
			sb.WriteString(item)
			sb.WriteString("\n")
		}
	}
	writeSection("Key points", summary.KeyPoints)
	writeSection("Action items", summary.ActionItems)
	writeSection("Important dates", summary.ImportantDates)
	writeSection("Names", summary.RelevantNames)
	writeSection("Places", summary.Places)

	return []byte(sb.String()), "text/plain; charset=utf-8", nil
}
