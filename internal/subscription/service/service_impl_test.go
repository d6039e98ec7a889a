package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	plandomain "github.com/docbrief/docbrief/internal/plan/domain"
	subscriptiondomain "github.com/docbrief/docbrief/internal/subscription/domain"
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

func setupService(t *testing.T) (subscriptiondomain.Service, *gorm.DB) {
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

	if err := db.AutoMigrate(&subscriptiondomain.Subscription{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	svc := New(Params{DB: db, Log: zap.NewNop()})
	return svc, db
}

func TestResolvePlanDefaultsToFree(t *testing.T) {
	svc, _ := setupService(t)
	node := mustNode(t)

	resolved, err := svc.ResolvePlan(context.Background(), node.Generate())
	require.NoError(t, err)
	require.Equal(t, plandomain.PlanFree, resolved.ID)
}

func TestResolvePlanReturnsActiveSubscription(t *testing.T) {
	svc, db := setupService(t)
	node := mustNode(t)
	userID := node.Generate()

	require.NoError(t, db.Create(&subscriptiondomain.Subscription{
		ID:     node.Generate(),
		UserID: userID,
		PlanID: string(plandomain.PlanPremium),
		Status: subscriptiondomain.StatusActive,
	}).Error)

	resolved, err := svc.ResolvePlan(context.Background(), userID)
	require.NoError(t, err)
	require.Equal(t, plandomain.PlanPremium, resolved.ID)
}

func TestResolvePlanIgnoresCanceledSubscription(t *testing.T) {
	svc, db := setupService(t)
	node := mustNode(t)
	userID := node.Generate()

	require.NoError(t, db.Create(&subscriptiondomain.Subscription{
		ID:     node.Generate(),
		UserID: userID,
		PlanID: string(plandomain.PlanPro),
		Status: subscriptiondomain.StatusCanceled,
	}).Error)

	resolved, err := svc.ResolvePlan(context.Background(), userID)
	require.NoError(t, err)
	require.Equal(t, plandomain.PlanFree, resolved.ID)
}

func TestResolvePlanUnknownPlanFallsBackToFree(t *testing.T) {
	svc, db := setupService(t)
	node := mustNode(t)
	userID := node.Generate()

	require.NoError(t, db.Create(&subscriptiondomain.Subscription{
		ID:     node.Generate(),
		UserID: userID,
		PlanID: "legacy_gold",
		Status: subscriptiondomain.StatusActive,
	}).Error)

	resolved, err := svc.ResolvePlan(context.Background(), userID)
	require.NoError(t, err)
	require.Equal(t, plandomain.PlanFree, resolved.ID)
}

func TestResolvePlanRejectsZeroUser(t *testing.T) {
	svc, _ := setupService(t)

	_, err := svc.ResolvePlan(context.Background(), 0)
	require.ErrorIs(t, err, subscriptiondomain.ErrInvalidUser)
}
