package service

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	summarydomain "github.com/docbrief/docbrief/internal/summary/domain"
	"github.com/docbrief/docbrief/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB         *gorm.DB
	Log        *zap.Logger
	Repository summarydomain.Repository
}

type service struct {
	db   *gorm.DB
	log  *zap.Logger
	repo summarydomain.Repository
}

func New(p Params) summarydomain.Service {
	return &service{
		db:   p.DB,
		log:  p.Log.Named("summary.service"),
		repo: p.Repository,
	}
}

func (s *service) Save(ctx context.Context, record *summarydomain.SummaryRecord) error {
	if record == nil {
		return gorm.ErrInvalidData
	}
	if record.UserID == 0 {
		return summarydomain.ErrInvalidUser
	}
	return s.repo.Create(ctx, s.db, record)
}

func (s *service) Get(ctx context.Context, userID, id snowflake.ID) (*summarydomain.SummaryRecord, error) {
	if userID == 0 {
		return nil, summarydomain.ErrInvalidUser
	}

	record, err := s.repo.FindByID(ctx, s.db, userID, id)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, summarydomain.ErrNotFound
	}
	return record, nil
}

func (s *service) List(ctx context.Context, userID snowflake.ID, req summarydomain.ListRequest) (summarydomain.ListResponse, error) {
	if userID == 0 {
		return summarydomain.ListResponse{}, summarydomain.ErrInvalidUser
	}

	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = 50
	}

	items, err := s.repo.List(ctx, s.db, userID, pagination.Pagination{
		PageToken: req.PageToken,
		PageSize:  pageSize,
	})
	if err != nil {
		return summarydomain.ListResponse{}, err
	}

	pageInfo := pagination.BuildCursorPageInfo(items, int32(pageSize), func(record *summarydomain.SummaryRecord) string {
		token, err := pagination.EncodeCursor(pagination.Cursor{
			ID:        record.ID.String(),
			CreatedAt: record.CreatedAt.Format(time.RFC3339),
		})
		if err != nil {
			return ""
		}
		return token
	})
	if pageInfo != nil && pageInfo.HasMore && len(items) > pageSize {
		items = items[:pageSize]
	}

	records := make([]summarydomain.SummaryRecord, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		records = append(records, *item)
	}

	resp := summarydomain.ListResponse{Records: records}
	if pageInfo != nil {
		resp.PageInfo = *pageInfo
	}
	return resp, nil
}
