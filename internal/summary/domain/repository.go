package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/docbrief/docbrief/pkg/db/pagination"
	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, db *gorm.DB, record *SummaryRecord) error
	FindByID(ctx context.Context, db *gorm.DB, userID, id snowflake.ID) (*SummaryRecord, error)
	List(ctx context.Context, db *gorm.DB, userID snowflake.ID, page pagination.Pagination) ([]*SummaryRecord, error)
}
