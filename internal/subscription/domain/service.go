package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	plandomain "github.com/docbrief/docbrief/internal/plan/domain"
)

type Service interface {
	// ResolvePlan returns the effective plan for the user. Users without an
	// active subscription, or with a plan id no longer in the catalog, fall
	// back to the free plan.
	ResolvePlan(ctx context.Context, userID snowflake.ID) (plandomain.Plan, error)

	// GetActive returns the user's active subscription, or nil when the user
	// has none.
	GetActive(ctx context.Context, userID snowflake.ID) (*Subscription, error)
}
