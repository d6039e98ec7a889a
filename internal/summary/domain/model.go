package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/docbrief/docbrief/pkg/db/pagination"
	"gorm.io/datatypes"
)

// SummaryRecord is a persisted summarization outcome. Guest uploads are
// never stored, so every record belongs to a user.
type SummaryRecord struct {
	ID     snowflake.ID `gorm:"primaryKey"`
	UserID snowflake.ID `gorm:"column:user_id;not null;index"`

	Filename  string `gorm:"type:text;not null"`
	DocFormat string `gorm:"column:doc_format;type:text;not null"`
	Tier      string `gorm:"type:text;not null"`
	PageCount int    `gorm:"column:page_count;not null"`
	Degraded  bool   `gorm:"not null;default:false"`

	// Content is the structured summary payload as produced by the
	// summarizer.
	Content datatypes.JSON `gorm:"type:jsonb;not null"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (SummaryRecord) TableName() string { return "summary_records" }

type ListRequest struct {
	pagination.Pagination
}

type ListResponse struct {
	Records []SummaryRecord `json:"records"`
	pagination.PageInfo
}
