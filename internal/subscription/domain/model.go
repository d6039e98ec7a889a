package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

type Status string

const (
	StatusActive   Status = "active"
	StatusCanceled Status = "canceled"
	StatusExpired  Status = "expired"
)

type Subscription struct {
	ID     snowflake.ID `gorm:"primaryKey"`
	UserID snowflake.ID `gorm:"column:user_id;not null;index"`

	PlanID string `gorm:"column:plan_id;type:text;not null"`
	Status Status `gorm:"type:text;not null;default:'active'"`

	StartedAt  time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP"`
	CanceledAt *time.Time `gorm:"column:canceled_at"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Subscription) TableName() string { return "subscriptions" }
