package service

import (
	"context"

	"github.com/docbrief/docbrief/internal/config"
	entitlementdomain "github.com/docbrief/docbrief/internal/entitlement/domain"
	"github.com/docbrief/docbrief/internal/observability/metrics"
	plandomain "github.com/docbrief/docbrief/internal/plan/domain"
	subscriptiondomain "github.com/docbrief/docbrief/internal/subscription/domain"
	usagedomain "github.com/docbrief/docbrief/internal/usage/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Log     *zap.Logger
	SubSvc  subscriptiondomain.Service
	Ledger  usagedomain.Ledger
	Policy  *config.ExtractConfigHolder
	Metrics *metrics.Metrics `optional:"true"`
}

type service struct {
	log     *zap.Logger
	subSvc  subscriptiondomain.Service
	ledger  usagedomain.Ledger
	policy  *config.ExtractConfigHolder
	metrics *metrics.Metrics
}

func New(p Params) entitlementdomain.Service {
	return &service{
		log:     p.Log.Named("entitlement.service"),
		subSvc:  p.SubSvc,
		ledger:  p.Ledger,
		policy:  p.Policy,
		metrics: p.Metrics,
	}
}

func (s *service) Evaluate(ctx context.Context, auth entitlementdomain.AuthContext, pageCount int, requestedTier plandomain.Tier) (entitlementdomain.Decision, error) {
	if auth.Guest {
		return s.evaluateGuest(ctx, pageCount), nil
	}
	return s.evaluateUser(ctx, auth, requestedTier)
}

// evaluateGuest never consults the ledger. Guests are capped per document,
// not per period, and are always served the shortest tier.
func (s *service) evaluateGuest(ctx context.Context, pageCount int) entitlementdomain.Decision {
	guestPlan := plandomain.GuestPlan()
	maxPages := s.policy.Get().GuestMaxPages

	if pageCount > maxPages {
		s.metrics.RecordEntitlementDenied(ctx, string(entitlementdomain.ReasonDocumentTooLarge))
		return entitlementdomain.Decision{
			Approved:      false,
			EffectiveTier: plandomain.TierShort,
			Plan:          guestPlan,
			Reason:        entitlementdomain.ReasonDocumentTooLarge,
			Current:       int64(pageCount),
			Limit:         int64(maxPages),
		}
	}

	return entitlementdomain.Decision{
		Approved:      true,
		EffectiveTier: plandomain.TierShort,
		Plan:          guestPlan,
	}
}

func (s *service) evaluateUser(ctx context.Context, auth entitlementdomain.AuthContext, requestedTier plandomain.Tier) (entitlementdomain.Decision, error) {
	userPlan, err := s.subSvc.ResolvePlan(ctx, auth.UserID)
	if err != nil {
		return entitlementdomain.Decision{}, err
	}

	check, err := s.ledger.HasExceededLimit(ctx, auth.UserID, userPlan)
	if err != nil {
		return entitlementdomain.Decision{}, err
	}
	if check.Exceeded {
		reason := entitlementdomain.ReasonDocumentLimit
		if check.Reason == usagedomain.LimitReasonPageLimit {
			reason = entitlementdomain.ReasonPageLimit
		}
		s.metrics.RecordEntitlementDenied(ctx, string(reason))
		return entitlementdomain.Decision{
			Approved:      false,
			EffectiveTier: userPlan.MaxTier,
			Plan:          userPlan,
			Reason:        reason,
			Current:       check.Current,
			Limit:         check.Limit,
		}, nil
	}

	effective := userPlan.ClampTier(requestedTier)
	if effective != requestedTier {
		s.log.Debug("tier downgraded",
			zap.String("requested", string(requestedTier)),
			zap.String("effective", string(effective)),
			zap.String("plan", string(userPlan.ID)),
		)
	}

	return entitlementdomain.Decision{
		Approved:      true,
		EffectiveTier: effective,
		Plan:          userPlan,
	}, nil
}
