package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/docbrief/docbrief/internal/summary/domain"
	"github.com/docbrief/docbrief/pkg/db/option"
	"github.com/docbrief/docbrief/pkg/db/pagination"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Create(ctx context.Context, db *gorm.DB, record *domain.SummaryRecord) error {
	return db.WithContext(ctx).Create(record).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, userID, id snowflake.ID) (*domain.SummaryRecord, error) {
	var record domain.SummaryRecord
	err := db.WithContext(ctx).
		Where("user_id = ? AND id = ?", userID, id).
		First(&record).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &record, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, userID snowflake.ID, page pagination.Pagination) ([]*domain.SummaryRecord, error) {
	var records []*domain.SummaryRecord
	stmt := db.WithContext(ctx).
		Model(&domain.SummaryRecord{}).
		Where("user_id = ?", userID)
	stmt = option.ApplyPagination(page).Apply(stmt)
	err := stmt.
		Order("created_at desc, id desc").
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}
