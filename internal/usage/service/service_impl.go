package service

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/docbrief/docbrief/internal/clock"
	plandomain "github.com/docbrief/docbrief/internal/plan/domain"
	usagedomain "github.com/docbrief/docbrief/internal/usage/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
}

type ledger struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
}

func New(p Params) usagedomain.Ledger {
	return &ledger{
		db:    p.DB,
		log:   p.Log.Named("usage.service"),
		genID: p.GenID,
		clock: p.Clock,
	}
}

func (l *ledger) CurrentPeriod() string {
	return l.clock.Now().UTC().Format("2006-01")
}

func (l *ledger) GetCurrentUsage(ctx context.Context, userID snowflake.ID) (usagedomain.Snapshot, error) {
	period := l.CurrentPeriod()
	if userID == 0 {
		return usagedomain.Snapshot{}, usagedomain.ErrInvalidUser
	}

	var record usagedomain.UsageRecord
	err := l.db.WithContext(ctx).
		Where("user_id = ? AND period = ?", userID, period).
		First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return usagedomain.Snapshot{Period: period}, nil
		}
		return usagedomain.Snapshot{}, err
	}

	return usagedomain.Snapshot{
		Period:    period,
		Documents: record.DocumentCount,
		Pages:     record.PageCount,
	}, nil
}

// IncrementUsage performs the upsert-and-increment as one statement so that
// concurrent uploads never lose counts. The row is re-read afterwards because
// ON CONFLICT updates do not hydrate the model.
func (l *ledger) IncrementUsage(ctx context.Context, userID snowflake.ID, pages int64) (*usagedomain.UsageRecord, error) {
	if userID == 0 {
		return nil, usagedomain.ErrInvalidUser
	}
	if pages < 0 {
		return nil, usagedomain.ErrInvalidPages
	}

	period := l.CurrentPeriod()
	record := usagedomain.UsageRecord{
		ID:            l.genID.Generate(),
		UserID:        userID,
		Period:        period,
		DocumentCount: 1,
		PageCount:     pages,
	}

	err := l.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "period"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"document_count": gorm.Expr("usage_records.document_count + 1"),
			"page_count":     gorm.Expr("usage_records.page_count + ?", pages),
		}),
	}).Create(&record).Error
	if err != nil {
		return nil, err
	}

	var updated usagedomain.UsageRecord
	if err := l.db.WithContext(ctx).
		Where("user_id = ? AND period = ?", userID, period).
		First(&updated).Error; err != nil {
		return nil, err
	}
	return &updated, nil
}

func (l *ledger) HasExceededLimit(ctx context.Context, userID snowflake.ID, p plandomain.Plan) (usagedomain.LimitCheck, error) {
	snapshot, err := l.GetCurrentUsage(ctx, userID)
	if err != nil {
		return usagedomain.LimitCheck{}, err
	}

	limits := l.Limits(p)
	if limits.Documents >= 0 && snapshot.Documents >= limits.Documents {
		return usagedomain.LimitCheck{
			Exceeded: true,
			Reason:   usagedomain.LimitReasonDocumentLimit,
			Current:  snapshot.Documents,
			Limit:    limits.Documents,
		}, nil
	}
	if limits.Pages >= 0 && snapshot.Pages >= limits.Pages {
		return usagedomain.LimitCheck{
			Exceeded: true,
			Reason:   usagedomain.LimitReasonPageLimit,
			Current:  snapshot.Pages,
			Limit:    limits.Pages,
		}, nil
	}

	return usagedomain.LimitCheck{Reason: usagedomain.LimitReasonNone}, nil
}

func (l *ledger) Limits(p plandomain.Plan) usagedomain.PlanLimits {
	return usagedomain.PlanLimits{
		Documents: p.DocumentLimit,
		Pages:     p.PageLimit,
	}
}
