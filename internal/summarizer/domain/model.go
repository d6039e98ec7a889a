package domain

import (
	"context"

	plandomain "github.com/docbrief/docbrief/internal/plan/domain"
)

// Summary is the structured output of one summarization call.
type Summary struct {
	ExecutiveSummary string   `json:"executive_summary"`
	KeyPoints        []string `json:"key_points"`
	ActionItems      []string `json:"action_items"`
	ImportantDates   []string `json:"important_dates"`
	RelevantNames    []string `json:"relevant_names"`
	Places           []string `json:"places"`
}

type Service interface {
	Summarize(ctx context.Context, text string, tier plandomain.Tier) (*Summary, error)
}
