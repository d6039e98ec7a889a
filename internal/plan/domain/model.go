package domain

// ID identifies a subscription plan.
type ID string

const (
	PlanFree    ID = "free"
	PlanPremium ID = "premium"
	PlanPro     ID = "pro"
)

// Tier is the requested summary length.
type Tier string

const (
	TierShort  Tier = "short"
	TierMedium Tier = "medium"
	TierLong   Tier = "long"
)

// Rank orders tiers from shortest to longest. Unknown tiers rank lowest.
func (t Tier) Rank() int {
	switch t {
	case TierShort:
		return 0
	case TierMedium:
		return 1
	case TierLong:
		return 2
	default:
		return -1
	}
}

// Valid reports whether the tier is a known value.
func (t Tier) Valid() bool {
	return t.Rank() >= 0
}

// Unlimited marks a quota with no monthly cap.
const Unlimited int64 = -1

// Capability is a boolean plan entitlement.
type Capability string

const (
	CapabilityCleanExport Capability = "clean_export"
	CapabilityPDFExport   Capability = "pdf_export"
)

// Plan is the capability table for one subscription level.
type Plan struct {
	ID            ID
	DocumentLimit int64
	PageLimit     int64
	MaxTier       Tier
	Watermark     bool

	capabilities map[Capability]bool
}

// Has reports whether the plan grants the capability.
func (p Plan) Has(c Capability) bool {
	return p.capabilities[c]
}

// UnlimitedDocuments reports whether the plan has no monthly document cap.
func (p Plan) UnlimitedDocuments() bool {
	return p.DocumentLimit == Unlimited
}

// UnlimitedPages reports whether the plan has no monthly page cap.
func (p Plan) UnlimitedPages() bool {
	return p.PageLimit == Unlimited
}

// ClampTier returns the requested tier lowered to the plan ceiling. An
// unknown request falls back to the plan ceiling as well.
func (p Plan) ClampTier(requested Tier) Tier {
	if !requested.Valid() {
		return p.MaxTier
	}
	if requested.Rank() > p.MaxTier.Rank() {
		return p.MaxTier
	}
	return requested
}
