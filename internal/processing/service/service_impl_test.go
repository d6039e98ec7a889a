package service

import (
	"context"
	"errors"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/docbrief/docbrief/internal/config"
	entitlementdomain "github.com/docbrief/docbrief/internal/entitlement/domain"
	extractdomain "github.com/docbrief/docbrief/internal/extract/domain"
	plandomain "github.com/docbrief/docbrief/internal/plan/domain"
	processingdomain "github.com/docbrief/docbrief/internal/processing/domain"
	"github.com/docbrief/docbrief/internal/storage"
	summarizerdomain "github.com/docbrief/docbrief/internal/summarizer/domain"
	summarydomain "github.com/docbrief/docbrief/internal/summary/domain"
	usagedomain "github.com/docbrief/docbrief/internal/usage/domain"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type extractorStub struct {
	result *extractdomain.Result
	err    error
}

func (e *extractorStub) Extract(ctx context.Context, path string, format extractdomain.Format) (*extractdomain.Result, error) {
	if e.err != nil {
		return nil, e.err
	}
	return e.result, nil
}

func (e *extractorStub) Supported() []extractdomain.Format { return nil }

type gateStub struct {
	decision entitlementdomain.Decision
	err      error
}

func (g *gateStub) Evaluate(ctx context.Context, auth entitlementdomain.AuthContext, pageCount int, tier plandomain.Tier) (entitlementdomain.Decision, error) {
	return g.decision, g.err
}

type summarizerStub struct {
	mu      sync.Mutex
	calls   int
	summary *summarizerdomain.Summary
	err     error
}

func (s *summarizerStub) Summarize(ctx context.Context, text string, tier plandomain.Tier) (*summarizerdomain.Summary, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	return s.summary, nil
}

type summarySvcStub struct {
	saved []*summarydomain.SummaryRecord
	err   error
}

func (s *summarySvcStub) Save(ctx context.Context, record *summarydomain.SummaryRecord) error {
	if s.err != nil {
		return s.err
	}
	s.saved = append(s.saved, record)
	return nil
}

func (s *summarySvcStub) Get(ctx context.Context, userID, id snowflake.ID) (*summarydomain.SummaryRecord, error) {
	return nil, summarydomain.ErrNotFound
}

func (s *summarySvcStub) List(ctx context.Context, userID snowflake.ID, req summarydomain.ListRequest) (summarydomain.ListResponse, error) {
	return summarydomain.ListResponse{}, nil
}

type ledgerStub struct {
	mu        sync.Mutex
	incCalls  int
	err       error
	documents int64
	pages     int64
}

func (l *ledgerStub) GetCurrentUsage(ctx context.Context, userID snowflake.ID) (usagedomain.Snapshot, error) {
	return usagedomain.Snapshot{Period: "2026-09", Documents: l.documents, Pages: l.pages}, nil
}

func (l *ledgerStub) IncrementUsage(ctx context.Context, userID snowflake.ID, pages int64) (*usagedomain.UsageRecord, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.err != nil {
		return nil, l.err
	}
	l.incCalls++
	l.documents++
	l.pages += pages
	return &usagedomain.UsageRecord{
		UserID:        userID,
		Period:        "2026-09",
		DocumentCount: l.documents,
		PageCount:     l.pages,
	}, nil
}

func (l *ledgerStub) HasExceededLimit(ctx context.Context, userID snowflake.ID, p plandomain.Plan) (usagedomain.LimitCheck, error) {
	return usagedomain.LimitCheck{}, nil
}

func (l *ledgerStub) Limits(p plandomain.Plan) usagedomain.PlanLimits {
	return usagedomain.PlanLimits{}
}

func (l *ledgerStub) CurrentPeriod() string { return "2026-09" }

func (l *ledgerStub) IncCalls() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.incCalls
}

type fixture struct {
	svc        processingdomain.Service
	store      *storage.UploadStore
	extractor  *extractorStub
	gate       *gateStub
	summarizer *summarizerStub
	summaries  *summarySvcStub
	ledger     *ledgerStub
}

func mustNode(t *testing.T) *snowflake.Node {
	t.Helper()
	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("new node: %v", err)
	}
	return node
}

func approvedDecision(tier plandomain.Tier, watermark bool) entitlementdomain.Decision {
	p, _ := plandomain.Resolve(plandomain.PlanFree)
	if !watermark {
		p, _ = plandomain.Resolve(plandomain.PlanPremium)
	}
	return entitlementdomain.Decision{
		Approved:      true,
		EffectiveTier: tier,
		Plan:          p,
	}
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	store, err := storage.New(storage.Params{
		Config: config.Config{UploadDir: t.TempDir()},
		Log:    zap.NewNop(),
	})
	require.NoError(t, err)

	f := &fixture{
		store: store,
		extractor: &extractorStub{result: &extractdomain.Result{
			Text:      "a short memo about deadlines",
			PageCount: 2,
		}},
		gate:       &gateStub{decision: approvedDecision(plandomain.TierMedium, true)},
		summarizer: &summarizerStub{summary: &summarizerdomain.Summary{ExecutiveSummary: "memo"}},
		summaries:  &summarySvcStub{},
		ledger:     &ledgerStub{},
	}
	f.svc = New(Params{
		Log:        zap.NewNop(),
		GenID:      mustNode(t),
		Extractor:  f.extractor,
		Gate:       f.gate,
		Summarizer: f.summarizer,
		SummarySvc: f.summaries,
		Ledger:     f.ledger,
		Store:      store,
	})
	return f
}

func (f *fixture) request(t *testing.T, auth entitlementdomain.AuthContext) processingdomain.Request {
	t.Helper()
	path, err := f.store.Save(strings.NewReader("file body"), "txt")
	require.NoError(t, err)
	return processingdomain.Request{
		Auth:          auth,
		Path:          path,
		Filename:      "memo.txt",
		Format:        extractdomain.FormatTXT,
		RequestedTier: plandomain.TierLong,
	}
}

func requireRemoved(t *testing.T, path string) {
	t.Helper()
	_, err := os.Stat(path)
	require.True(t, os.IsNotExist(err), "temp upload must be removed")
}

func TestProcessSuccessPersistsThenIncrements(t *testing.T) {
	f := newFixture(t)
	node := mustNode(t)
	req := f.request(t, entitlementdomain.AuthContext{UserID: node.Generate()})

	outcome, err := f.svc.Process(context.Background(), req)
	require.NoError(t, err)
	require.Equal(t, plandomain.TierMedium, outcome.EffectiveTier)
	require.True(t, outcome.Watermarked)
	require.NotZero(t, outcome.RecordID)
	require.Len(t, f.summaries.saved, 1)
	require.Equal(t, 1, f.ledger.IncCalls())
	require.NotNil(t, outcome.Usage)
	require.EqualValues(t, 1, outcome.Usage.Documents)
	require.EqualValues(t, 2, outcome.Usage.Pages)
	requireRemoved(t, req.Path)
}

func TestProcessDenialBurnsNoQuota(t *testing.T) {
	f := newFixture(t)
	f.gate.decision = entitlementdomain.Decision{
		Approved: false,
		Reason:   entitlementdomain.ReasonDocumentLimit,
		Current:  5,
		Limit:    5,
	}
	node := mustNode(t)
	req := f.request(t, entitlementdomain.AuthContext{UserID: node.Generate()})

	_, err := f.svc.Process(context.Background(), req)
	var denial *processingdomain.DenialError
	require.ErrorAs(t, err, &denial)
	require.Equal(t, entitlementdomain.ReasonDocumentLimit, denial.Decision.Reason)
	require.Zero(t, f.summarizer.calls, "denied requests must not reach the summarizer")
	require.Zero(t, f.ledger.IncCalls())
	require.Empty(t, f.summaries.saved)
	requireRemoved(t, req.Path)
}

func TestProcessUpstreamFailureBurnsNoQuota(t *testing.T) {
	cases := map[string]struct {
		err    error
		reason string
	}{
		"quota":      {summarizerdomain.ErrQuotaExceeded, "quota_exceeded"},
		"rate":       {summarizerdomain.ErrRateLimited, "rate_limited"},
		"credential": {summarizerdomain.ErrInvalidCredential, "invalid_credential"},
		"malformed":  {summarizerdomain.ErrMalformedInput, "malformed_input"},
		"timeout":    {summarizerdomain.ErrTimeout, "timeout"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			f := newFixture(t)
			f.summarizer.err = tc.err
			node := mustNode(t)
			req := f.request(t, entitlementdomain.AuthContext{UserID: node.Generate()})

			_, err := f.svc.Process(context.Background(), req)
			var upstream *processingdomain.UpstreamError
			require.ErrorAs(t, err, &upstream)
			require.Equal(t, tc.reason, upstream.Reason)
			require.ErrorIs(t, err, tc.err)
			require.Zero(t, f.ledger.IncCalls(), "failed summarization must not burn quota")
			require.Empty(t, f.summaries.saved)
			requireRemoved(t, req.Path)
		})
	}
}

func TestProcessEmptyTextRejectedBeforeGate(t *testing.T) {
	f := newFixture(t)
	f.extractor.result = &extractdomain.Result{Text: "   \n\t ", PageCount: 1}
	node := mustNode(t)
	req := f.request(t, entitlementdomain.AuthContext{UserID: node.Generate()})

	_, err := f.svc.Process(context.Background(), req)
	require.ErrorIs(t, err, processingdomain.ErrNoExtractableText)
	require.Zero(t, f.summarizer.calls)
	require.Zero(t, f.ledger.IncCalls())
	requireRemoved(t, req.Path)
}

func TestProcessExtractionFailureRemovesTempFile(t *testing.T) {
	f := newFixture(t)
	f.extractor.err = &extractdomain.ExtractionError{
		Format: extractdomain.FormatTXT,
		Err:    errors.New("corrupt"),
	}
	node := mustNode(t)
	req := f.request(t, entitlementdomain.AuthContext{UserID: node.Generate()})

	_, err := f.svc.Process(context.Background(), req)
	var extractionErr *extractdomain.ExtractionError
	require.ErrorAs(t, err, &extractionErr)
	requireRemoved(t, req.Path)
}

func TestProcessGuestNeverPersistsNorMeters(t *testing.T) {
	f := newFixture(t)
	f.gate.decision = entitlementdomain.Decision{
		Approved:      true,
		EffectiveTier: plandomain.TierShort,
		Plan:          plandomain.GuestPlan(),
	}
	req := f.request(t, entitlementdomain.AuthContext{Guest: true})

	outcome, err := f.svc.Process(context.Background(), req)
	require.NoError(t, err)
	require.Equal(t, plandomain.TierShort, outcome.EffectiveTier)
	require.Zero(t, outcome.RecordID)
	require.Nil(t, outcome.Usage)
	require.Empty(t, f.summaries.saved)
	require.Zero(t, f.ledger.IncCalls())
	requireRemoved(t, req.Path)
}

func TestProcessLedgerWriteFailureStillSucceeds(t *testing.T) {
	f := newFixture(t)
	f.ledger.err = errors.New("database gone")
	node := mustNode(t)
	req := f.request(t, entitlementdomain.AuthContext{UserID: node.Generate()})

	outcome, err := f.svc.Process(context.Background(), req)
	require.NoError(t, err, "a summary the user already has must not be reported as failure")
	require.NotZero(t, outcome.RecordID)
	require.Nil(t, outcome.Usage)
	require.Len(t, f.summaries.saved, 1)
	requireRemoved(t, req.Path)
}

func TestProcessPersistFailureDoesNotIncrement(t *testing.T) {
	f := newFixture(t)
	f.summaries.err = errors.New("insert failed")
	node := mustNode(t)
	req := f.request(t, entitlementdomain.AuthContext{UserID: node.Generate()})

	_, err := f.svc.Process(context.Background(), req)
	require.Error(t, err)
	require.Zero(t, f.ledger.IncCalls(), "increment must come after persist")
	requireRemoved(t, req.Path)
}
