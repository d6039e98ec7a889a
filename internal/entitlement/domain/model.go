package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	plandomain "github.com/docbrief/docbrief/internal/plan/domain"
)

// AuthContext identifies the caller of a processing request.
type AuthContext struct {
	UserID snowflake.ID
	Guest  bool
}

// DenialReason names why a request was not approved.
type DenialReason string

const (
	ReasonNone             DenialReason = ""
	ReasonDocumentLimit    DenialReason = "document_limit"
	ReasonPageLimit        DenialReason = "page_limit"
	ReasonDocumentTooLarge DenialReason = "document_too_large"
)

// Decision is the outcome of an entitlement evaluation. A denial is a value,
// not an error: Current and Limit carry the numbers the user-facing message
// must cite.
type Decision struct {
	Approved      bool
	EffectiveTier plandomain.Tier
	Plan          plandomain.Plan

	Reason  DenialReason
	Current int64
	Limit   int64
}

type Service interface {
	// Evaluate gates one processing request. Tier requests above the plan
	// ceiling are downgraded, never denied.
	Evaluate(ctx context.Context, auth AuthContext, pageCount int, requestedTier plandomain.Tier) (Decision, error)
}
