package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/docbrief/docbrief/internal/clock"
	plandomain "github.com/docbrief/docbrief/internal/plan/domain"
	usagedomain "github.com/docbrief/docbrief/internal/usage/domain"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func mustNode(t *testing.T) *snowflake.Node {
	t.Helper()
	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("new node: %v", err)
	}
	return node
}

func setupLedger(t *testing.T, fc *clock.FakeClock) (usagedomain.Ledger, *gorm.DB) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("db handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	_ = db.Exec("PRAGMA busy_timeout = 5000").Error

	if err := db.AutoMigrate(&usagedomain.UsageRecord{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	l := New(Params{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: mustNode(t),
		Clock: fc,
	})
	return l, db
}

func frozenClock(t *testing.T) *clock.FakeClock {
	t.Helper()
	return clock.NewFakeClock(time.Date(2026, time.September, 1, 10, 0, 0, 0, time.UTC))
}

func TestGetCurrentUsageZeroWhenAbsent(t *testing.T) {
	l, db := setupLedger(t, frozenClock(t))
	node := mustNode(t)

	snapshot, err := l.GetCurrentUsage(context.Background(), node.Generate())
	require.NoError(t, err)
	require.Equal(t, "2026-09", snapshot.Period)
	require.Zero(t, snapshot.Documents)
	require.Zero(t, snapshot.Pages)

	var count int64
	require.NoError(t, db.Model(&usagedomain.UsageRecord{}).Count(&count).Error)
	require.Zero(t, count, "reads must not create rows")
}

func TestIncrementUsageCreatesThenAccumulates(t *testing.T) {
	l, _ := setupLedger(t, frozenClock(t))
	node := mustNode(t)
	userID := node.Generate()
	ctx := context.Background()

	first, err := l.IncrementUsage(ctx, userID, 3)
	require.NoError(t, err)
	require.EqualValues(t, 1, first.DocumentCount)
	require.EqualValues(t, 3, first.PageCount)

	second, err := l.IncrementUsage(ctx, userID, 7)
	require.NoError(t, err)
	require.EqualValues(t, 2, second.DocumentCount)
	require.EqualValues(t, 10, second.PageCount)
	require.Equal(t, first.ID, second.ID, "same period row must be reused")
}

func TestIncrementUsageStartsFreshPeriodOnRollover(t *testing.T) {
	fc := frozenClock(t)
	l, _ := setupLedger(t, fc)
	node := mustNode(t)
	userID := node.Generate()
	ctx := context.Background()

	_, err := l.IncrementUsage(ctx, userID, 5)
	require.NoError(t, err)

	fc.Advance(31 * 24 * time.Hour)

	record, err := l.IncrementUsage(ctx, userID, 2)
	require.NoError(t, err)
	require.Equal(t, "2026-10", record.Period)
	require.EqualValues(t, 1, record.DocumentCount)
	require.EqualValues(t, 2, record.PageCount)

	snapshot, err := l.GetCurrentUsage(ctx, userID)
	require.NoError(t, err)
	require.Equal(t, "2026-10", snapshot.Period)
	require.EqualValues(t, 1, snapshot.Documents)
}

func TestHasExceededLimitChecksDocumentsFirst(t *testing.T) {
	l, _ := setupLedger(t, frozenClock(t))
	node := mustNode(t)
	userID := node.Generate()
	ctx := context.Background()
	free, _ := plandomain.Resolve(plandomain.PlanFree)

	// 5 documents at 25 pages each trips both caps; document wins.
	for i := 0; i < 5; i++ {
		_, err := l.IncrementUsage(ctx, userID, 25)
		require.NoError(t, err)
	}

	check, err := l.HasExceededLimit(ctx, userID, free)
	require.NoError(t, err)
	require.True(t, check.Exceeded)
	require.Equal(t, usagedomain.LimitReasonDocumentLimit, check.Reason)
	require.EqualValues(t, 5, check.Current)
	require.EqualValues(t, 5, check.Limit)
}

func TestHasExceededLimitPageCap(t *testing.T) {
	l, _ := setupLedger(t, frozenClock(t))
	node := mustNode(t)
	userID := node.Generate()
	ctx := context.Background()
	free, _ := plandomain.Resolve(plandomain.PlanFree)

	_, err := l.IncrementUsage(ctx, userID, 100)
	require.NoError(t, err)

	check, err := l.HasExceededLimit(ctx, userID, free)
	require.NoError(t, err)
	require.True(t, check.Exceeded)
	require.Equal(t, usagedomain.LimitReasonPageLimit, check.Reason)
	require.EqualValues(t, 100, check.Current)
	require.EqualValues(t, 100, check.Limit)
}

func TestHasExceededLimitIsReadOnly(t *testing.T) {
	l, db := setupLedger(t, frozenClock(t))
	node := mustNode(t)
	userID := node.Generate()
	ctx := context.Background()
	free, _ := plandomain.Resolve(plandomain.PlanFree)

	for i := 0; i < 5; i++ {
		_, err := l.IncrementUsage(ctx, userID, 1)
		require.NoError(t, err)
	}

	var before usagedomain.UsageRecord
	require.NoError(t, db.Where("user_id = ?", userID).First(&before).Error)

	for i := 0; i < 10; i++ {
		check, err := l.HasExceededLimit(ctx, userID, free)
		require.NoError(t, err)
		require.True(t, check.Exceeded)
	}

	var after usagedomain.UsageRecord
	require.NoError(t, db.Where("user_id = ?", userID).First(&after).Error)
	require.Equal(t, before.DocumentCount, after.DocumentCount)
	require.Equal(t, before.PageCount, after.PageCount)
}

func TestHasExceededLimitUnboundedPlan(t *testing.T) {
	l, _ := setupLedger(t, frozenClock(t))
	node := mustNode(t)
	userID := node.Generate()
	ctx := context.Background()
	pro, _ := plandomain.Resolve(plandomain.PlanPro)

	for i := 0; i < 60; i++ {
		_, err := l.IncrementUsage(ctx, userID, 50)
		require.NoError(t, err)
	}

	check, err := l.HasExceededLimit(ctx, userID, pro)
	require.NoError(t, err)
	require.False(t, check.Exceeded)
	require.Equal(t, usagedomain.LimitReasonNone, check.Reason)
}

func TestIncrementUsageConcurrent(t *testing.T) {
	l, _ := setupLedger(t, frozenClock(t))
	node := mustNode(t)
	userID := node.Generate()
	ctx := context.Background()

	const workers = 20
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := l.IncrementUsage(ctx, userID, 2)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	snapshot, err := l.GetCurrentUsage(ctx, userID)
	require.NoError(t, err)
	require.EqualValues(t, workers, snapshot.Documents)
	require.EqualValues(t, workers*2, snapshot.Pages)
}
