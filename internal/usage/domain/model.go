package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// UsageRecord is one user's metered consumption for one calendar month.
type UsageRecord struct {
	ID     snowflake.ID `gorm:"primaryKey"`
	UserID snowflake.ID `gorm:"column:user_id;not null;uniqueIndex:ux_usage_user_period,priority:1"`

	// Period is the UTC month key, e.g. "2026-09". String ordering matches
	// chronological ordering.
	Period string `gorm:"type:text;not null;uniqueIndex:ux_usage_user_period,priority:2"`

	DocumentCount int64 `gorm:"column:document_count;not null;default:0"`
	PageCount     int64 `gorm:"column:page_count;not null;default:0"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (UsageRecord) TableName() string { return "usage_records" }

// Snapshot is a read-only view of one period's counters.
type Snapshot struct {
	Period    string `json:"period"`
	Documents int64  `json:"documents"`
	Pages     int64  `json:"pages"`
}

// LimitReason names which quota a check tripped.
type LimitReason string

const (
	LimitReasonNone          LimitReason = "none"
	LimitReasonDocumentLimit LimitReason = "document_limit"
	LimitReasonPageLimit     LimitReason = "page_limit"
)

// LimitCheck is the outcome of comparing a snapshot against plan limits.
type LimitCheck struct {
	Exceeded bool
	Reason   LimitReason
	Current  int64
	Limit    int64
}

// PlanLimits is the pair of monthly caps for a plan. A negative value means
// no cap.
type PlanLimits struct {
	Documents int64
	Pages     int64
}
