package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	entitlementdomain "github.com/docbrief/docbrief/internal/entitlement/domain"
	extractdomain "github.com/docbrief/docbrief/internal/extract/domain"
	plandomain "github.com/docbrief/docbrief/internal/plan/domain"
	summarizerdomain "github.com/docbrief/docbrief/internal/summarizer/domain"
	usagedomain "github.com/docbrief/docbrief/internal/usage/domain"
)

// Request is one unit of processing work. It exists only for the duration
// of a single orchestration pass.
type Request struct {
	Auth          entitlementdomain.AuthContext
	Path          string
	Filename      string
	Format        extractdomain.Format
	RequestedTier plandomain.Tier
}

// Outcome is the successful result of a processing pass. RecordID and Usage
// are zero/nil on the guest path, which neither persists nor meters.
type Outcome struct {
	Summary       *summarizerdomain.Summary
	EffectiveTier plandomain.Tier
	PageCount     int
	Degraded      bool
	Watermarked   bool

	RecordID snowflake.ID
	Usage    *usagedomain.Snapshot
}

type Service interface {
	Process(ctx context.Context, req Request) (*Outcome, error)
}
