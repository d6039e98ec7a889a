package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	plandomain "github.com/docbrief/docbrief/internal/plan/domain"
)

// Ledger tracks per-user monthly consumption.
type Ledger interface {
	// GetCurrentUsage returns the counters for the current period. Absent
	// rows read as zeros; reads never create rows.
	GetCurrentUsage(ctx context.Context, userID snowflake.ID) (Snapshot, error)

	// IncrementUsage adds one document and the given pages to the current
	// period in a single atomic upsert.
	IncrementUsage(ctx context.Context, userID snowflake.ID, pages int64) (*UsageRecord, error)

	// HasExceededLimit compares current usage against the plan's caps.
	// The document cap is checked before the page cap.
	HasExceededLimit(ctx context.Context, userID snowflake.ID, p plandomain.Plan) (LimitCheck, error)

	// Limits reports the plan's monthly caps.
	Limits(p plandomain.Plan) PlanLimits

	// CurrentPeriod returns the active period key.
	CurrentPeriod() string
}
