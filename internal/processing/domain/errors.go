package domain

import (
	"errors"
	"fmt"

	entitlementdomain "github.com/docbrief/docbrief/internal/entitlement/domain"
)

// ErrNoExtractableText means extraction produced only whitespace.
var ErrNoExtractableText = errors.New("no_extractable_text")

// DenialError carries the full entitlement decision so transports can build
// a message citing the exact quota and numbers.
type DenialError struct {
	Decision entitlementdomain.Decision
}

func (e *DenialError) Error() string {
	return fmt.Sprintf("entitlement_denied: %s (%d/%d)", e.Decision.Reason, e.Decision.Current, e.Decision.Limit)
}

// UpstreamError wraps a summarization provider failure, preserving the
// sub-reason for status mapping and operator triage.
type UpstreamError struct {
	Reason string
	Err    error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream_summarization_failed (%s): %v", e.Reason, e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }
