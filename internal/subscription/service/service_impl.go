package service

import (
	"context"

	"github.com/bwmarrin/snowflake"
	plandomain "github.com/docbrief/docbrief/internal/plan/domain"
	subscriptiondomain "github.com/docbrief/docbrief/internal/subscription/domain"
	"github.com/docbrief/docbrief/pkg/db/option"
	"github.com/docbrief/docbrief/pkg/repository"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB  *gorm.DB
	Log *zap.Logger
}

type service struct {
	repo repository.Repository[subscriptiondomain.Subscription]
	log  *zap.Logger
}

func New(p Params) subscriptiondomain.Service {
	return &service{
		repo: repository.ProvideStore[subscriptiondomain.Subscription](p.DB),
		log:  p.Log.Named("subscription.service"),
	}
}

func (s *service) GetActive(ctx context.Context, userID snowflake.ID) (*subscriptiondomain.Subscription, error) {
	if userID == 0 {
		return nil, subscriptiondomain.ErrInvalidUser
	}

	return s.repo.FindOne(ctx, &subscriptiondomain.Subscription{
		UserID: userID,
		Status: subscriptiondomain.StatusActive,
	}, option.WithOrderBy("started_at DESC"))
}

func (s *service) ResolvePlan(ctx context.Context, userID snowflake.ID) (plandomain.Plan, error) {
	sub, err := s.GetActive(ctx, userID)
	if err != nil {
		return plandomain.Plan{}, err
	}
	if sub == nil {
		return plandomain.Default(), nil
	}

	resolved, ok := plandomain.Resolve(plandomain.ID(sub.PlanID))
	if !ok {
		s.log.Warn("unknown plan id, falling back to free",
			zap.String("plan_id", sub.PlanID),
			zap.Int64("user_id", int64(userID)),
		)
		return plandomain.Default(), nil
	}
	return resolved, nil
}
