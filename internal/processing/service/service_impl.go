package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/bwmarrin/snowflake"
	entitlementdomain "github.com/docbrief/docbrief/internal/entitlement/domain"
	extractdomain "github.com/docbrief/docbrief/internal/extract/domain"
	"github.com/docbrief/docbrief/internal/observability/metrics"
	plandomain "github.com/docbrief/docbrief/internal/plan/domain"
	processingdomain "github.com/docbrief/docbrief/internal/processing/domain"
	"github.com/docbrief/docbrief/internal/storage"
	summarizerdomain "github.com/docbrief/docbrief/internal/summarizer/domain"
	summarydomain "github.com/docbrief/docbrief/internal/summary/domain"
	usagedomain "github.com/docbrief/docbrief/internal/usage/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

type Params struct {
	fx.In

	Log        *zap.Logger
	GenID      *snowflake.Node
	Extractor  extractdomain.Extractor
	Gate       entitlementdomain.Service
	Summarizer summarizerdomain.Service
	SummarySvc summarydomain.Service
	Ledger     usagedomain.Ledger
	Store      *storage.UploadStore
	Metrics    *metrics.Metrics `optional:"true"`
}

type service struct {
	log        *zap.Logger
	genID      *snowflake.Node
	extractor  extractdomain.Extractor
	gate       entitlementdomain.Service
	summarizer summarizerdomain.Service
	summaries  summarydomain.Service
	ledger     usagedomain.Ledger
	store      *storage.UploadStore
	metrics    *metrics.Metrics
}

func New(p Params) processingdomain.Service {
	return &service{
		log:        p.Log.Named("processing.service"),
		genID:      p.GenID,
		extractor:  p.Extractor,
		gate:       p.Gate,
		summarizer: p.Summarizer,
		summaries:  p.SummarySvc,
		ledger:     p.Ledger,
		store:      p.Store,
		metrics:    p.Metrics,
	}
}

// Process runs extract, gate, summarize, persist, meter. The ledger is only
// touched after a summary has been persisted; every failure path leaves it
// untouched so failed requests never burn quota.
func (s *service) Process(ctx context.Context, req processingdomain.Request) (*processingdomain.Outcome, error) {
	defer s.store.Remove(req.Path)

	result, err := s.extractor.Extract(ctx, req.Path, req.Format)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(result.Text) == "" {
		return nil, processingdomain.ErrNoExtractableText
	}

	decision, err := s.gate.Evaluate(ctx, req.Auth, result.PageCount, req.RequestedTier)
	if err != nil {
		return nil, err
	}
	if !decision.Approved {
		return nil, &processingdomain.DenialError{Decision: decision}
	}

	summary, err := s.summarizer.Summarize(ctx, result.Text, decision.EffectiveTier)
	if err != nil {
		upstream := &processingdomain.UpstreamError{Reason: upstreamReason(err), Err: err}
		s.metrics.RecordUpstreamFailure(ctx, upstream.Reason)
		return nil, upstream
	}

	outcome := &processingdomain.Outcome{
		Summary:       summary,
		EffectiveTier: decision.EffectiveTier,
		PageCount:     result.PageCount,
		Degraded:      result.Degraded,
		Watermarked:   decision.Plan.Watermark,
	}

	if req.Auth.Guest {
		s.metrics.RecordDocumentProcessed(ctx, string(req.Format), string(decision.EffectiveTier))
		return outcome, nil
	}

	record, err := s.persist(ctx, req, result, decision.EffectiveTier, summary)
	if err != nil {
		return nil, err
	}
	outcome.RecordID = record.ID

	updated, err := s.ledger.IncrementUsage(ctx, req.Auth.UserID, int64(result.PageCount))
	if err != nil {
		// Under-counting is the accepted failure mode: the user already has
		// their summary, so log loudly and report success.
		s.log.Error("usage ledger write failed after successful summarization",
			zap.Int64("user_id", int64(req.Auth.UserID)),
			zap.Int64("record_id", int64(record.ID)),
			zap.Int("page_count", result.PageCount),
			zap.Error(err),
		)
		s.metrics.RecordLedgerWriteFailure(ctx)
	} else {
		outcome.Usage = &usagedomain.Snapshot{
			Period:    updated.Period,
			Documents: updated.DocumentCount,
			Pages:     updated.PageCount,
		}
	}

	s.metrics.RecordDocumentProcessed(ctx, string(req.Format), string(decision.EffectiveTier))
	return outcome, nil
}

func (s *service) persist(ctx context.Context, req processingdomain.Request, result *extractdomain.Result, tier plandomain.Tier, summary *summarizerdomain.Summary) (*summarydomain.SummaryRecord, error) {
	content, err := json.Marshal(summary)
	if err != nil {
		return nil, fmt.Errorf("encode summary: %w", err)
	}

	record := &summarydomain.SummaryRecord{
		ID:        s.genID.Generate(),
		UserID:    req.Auth.UserID,
		Filename:  req.Filename,
		DocFormat: string(req.Format),
		Tier:      string(tier),
		PageCount: result.PageCount,
		Degraded:  result.Degraded,
		Content:   datatypes.JSON(content),
	}
	if err := s.summaries.Save(ctx, record); err != nil {
		return nil, fmt.Errorf("persist summary: %w", err)
	}
	return record, nil
}

func upstreamReason(err error) string {
	switch {
	case errors.Is(err, summarizerdomain.ErrQuotaExceeded):
		return "quota_exceeded"
	case errors.Is(err, summarizerdomain.ErrRateLimited):
		return "rate_limited"
	case errors.Is(err, summarizerdomain.ErrInvalidCredential):
		return "invalid_credential"
	case errors.Is(err, summarizerdomain.ErrMalformedInput):
		return "malformed_input"
	case errors.Is(err, summarizerdomain.ErrTimeout):
		return "timeout"
	default:
		return "upstream_error"
	}
}
