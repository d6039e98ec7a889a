package domain

var catalog = map[ID]Plan{
	PlanFree: {
		ID:            PlanFree,
		DocumentLimit: 5,
		PageLimit:     100,
		MaxTier:       TierMedium,
		Watermark:     true,
		capabilities: map[Capability]bool{
			CapabilityPDFExport: true,
		},
	},
	PlanPremium: {
		ID:            PlanPremium,
		DocumentLimit: 50,
		PageLimit:     1000,
		MaxTier:       TierLong,
		Watermark:     false,
		capabilities: map[Capability]bool{
			CapabilityCleanExport: true,
			CapabilityPDFExport:   true,
		},
	},
	PlanPro: {
		ID:            PlanPro,
		DocumentLimit: Unlimited,
		PageLimit:     Unlimited,
		MaxTier:       TierLong,
		Watermark:     false,
		capabilities: map[Capability]bool{
			CapabilityCleanExport: true,
			CapabilityPDFExport:   true,
		},
	},
}

// Resolve returns the plan for the given id.
func Resolve(id ID) (Plan, bool) {
	p, ok := catalog[id]
	return p, ok
}

// Default returns the plan applied when no active subscription exists.
func Default() Plan {
	return catalog[PlanFree]
}

// GuestPlan returns the plan applied to unauthenticated uploads. Guests get
// the lowest paid-feature surface regardless of any future catalog changes.
func GuestPlan() Plan {
	return catalog[PlanFree]
}
