package service

import (
	"context"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/docbrief/docbrief/internal/config"
	entitlementdomain "github.com/docbrief/docbrief/internal/entitlement/domain"
	plandomain "github.com/docbrief/docbrief/internal/plan/domain"
	subscriptiondomain "github.com/docbrief/docbrief/internal/subscription/domain"
	usagedomain "github.com/docbrief/docbrief/internal/usage/domain"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type subscriptionStub struct {
	plan plandomain.Plan
}

func (s *subscriptionStub) ResolvePlan(ctx context.Context, userID snowflake.ID) (plandomain.Plan, error) {
	return s.plan, nil
}

func (s *subscriptionStub) GetActive(ctx context.Context, userID snowflake.ID) (*subscriptiondomain.Subscription, error) {
	return nil, nil
}

type ledgerStub struct {
	check     usagedomain.LimitCheck
	consulted bool
}

func (l *ledgerStub) GetCurrentUsage(ctx context.Context, userID snowflake.ID) (usagedomain.Snapshot, error) {
	l.consulted = true
	return usagedomain.Snapshot{}, nil
}

func (l *ledgerStub) IncrementUsage(ctx context.Context, userID snowflake.ID, pages int64) (*usagedomain.UsageRecord, error) {
	l.consulted = true
	return nil, nil
}

func (l *ledgerStub) HasExceededLimit(ctx context.Context, userID snowflake.ID, p plandomain.Plan) (usagedomain.LimitCheck, error) {
	l.consulted = true
	return l.check, nil
}

func (l *ledgerStub) Limits(p plandomain.Plan) usagedomain.PlanLimits {
	return usagedomain.PlanLimits{Documents: p.DocumentLimit, Pages: p.PageLimit}
}

func (l *ledgerStub) CurrentPeriod() string { return "2026-09" }

func newGate(t *testing.T, planID plandomain.ID, check usagedomain.LimitCheck) (entitlementdomain.Service, *ledgerStub) {
	t.Helper()
	p, ok := plandomain.Resolve(planID)
	require.True(t, ok)

	ledger := &ledgerStub{check: check}
	gate := New(Params{
		Log:    zap.NewNop(),
		SubSvc: &subscriptionStub{plan: p},
		Ledger: ledger,
		Policy: config.NewStaticExtractConfigHolder(config.ExtractConfig{
			WordsPerPage:  500,
			GuestMaxPages: 2,
		}),
	})
	return gate, ledger
}

func mustNode(t *testing.T) *snowflake.Node {
	t.Helper()
	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("new node: %v", err)
	}
	return node
}

func TestEvaluateDowngradesTierInsteadOfRejecting(t *testing.T) {
	gate, _ := newGate(t, plandomain.PlanFree, usagedomain.LimitCheck{Reason: usagedomain.LimitReasonNone})
	auth := entitlementdomain.AuthContext{UserID: mustNode(t).Generate()}

	decision, err := gate.Evaluate(context.Background(), auth, 3, plandomain.TierLong)
	require.NoError(t, err)
	require.True(t, decision.Approved)
	require.Equal(t, plandomain.TierMedium, decision.EffectiveTier)
	require.Equal(t, entitlementdomain.ReasonNone, decision.Reason)
}

func TestEvaluateKeepsAllowedTier(t *testing.T) {
	gate, _ := newGate(t, plandomain.PlanPremium, usagedomain.LimitCheck{Reason: usagedomain.LimitReasonNone})
	auth := entitlementdomain.AuthContext{UserID: mustNode(t).Generate()}

	decision, err := gate.Evaluate(context.Background(), auth, 3, plandomain.TierLong)
	require.NoError(t, err)
	require.True(t, decision.Approved)
	require.Equal(t, plandomain.TierLong, decision.EffectiveTier)
}

func TestEvaluateDeniesOnDocumentLimitWithNumbers(t *testing.T) {
	gate, _ := newGate(t, plandomain.PlanFree, usagedomain.LimitCheck{
		Exceeded: true,
		Reason:   usagedomain.LimitReasonDocumentLimit,
		Current:  5,
		Limit:    5,
	})
	auth := entitlementdomain.AuthContext{UserID: mustNode(t).Generate()}

	decision, err := gate.Evaluate(context.Background(), auth, 1, plandomain.TierShort)
	require.NoError(t, err)
	require.False(t, decision.Approved)
	require.Equal(t, entitlementdomain.ReasonDocumentLimit, decision.Reason)
	require.EqualValues(t, 5, decision.Current)
	require.EqualValues(t, 5, decision.Limit)
}

func TestEvaluateDeniesOnPageLimitWithNumbers(t *testing.T) {
	gate, _ := newGate(t, plandomain.PlanFree, usagedomain.LimitCheck{
		Exceeded: true,
		Reason:   usagedomain.LimitReasonPageLimit,
		Current:  104,
		Limit:    100,
	})
	auth := entitlementdomain.AuthContext{UserID: mustNode(t).Generate()}

	decision, err := gate.Evaluate(context.Background(), auth, 1, plandomain.TierShort)
	require.NoError(t, err)
	require.False(t, decision.Approved)
	require.Equal(t, entitlementdomain.ReasonPageLimit, decision.Reason)
	require.EqualValues(t, 104, decision.Current)
	require.EqualValues(t, 100, decision.Limit)
}

func TestEvaluateGuestWithinCeiling(t *testing.T) {
	gate, ledger := newGate(t, plandomain.PlanFree, usagedomain.LimitCheck{})

	decision, err := gate.Evaluate(context.Background(), entitlementdomain.AuthContext{Guest: true}, 2, plandomain.TierLong)
	require.NoError(t, err)
	require.True(t, decision.Approved)
	require.Equal(t, plandomain.TierShort, decision.EffectiveTier, "guests are always served the shortest tier")
	require.False(t, ledger.consulted, "guest path must never touch the ledger")
}

func TestEvaluateGuestOverCeiling(t *testing.T) {
	gate, ledger := newGate(t, plandomain.PlanFree, usagedomain.LimitCheck{})

	decision, err := gate.Evaluate(context.Background(), entitlementdomain.AuthContext{Guest: true}, 3, plandomain.TierShort)
	require.NoError(t, err)
	require.False(t, decision.Approved)
	require.Equal(t, entitlementdomain.ReasonDocumentTooLarge, decision.Reason)
	require.EqualValues(t, 3, decision.Current)
	require.EqualValues(t, 2, decision.Limit)
	require.False(t, ledger.consulted)
}
