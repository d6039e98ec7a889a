package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

type User struct {
	ID    snowflake.ID `gorm:"primaryKey"`
	Email string       `gorm:"type:text;not null;uniqueIndex"`

	// SHA-256 hex digest of the bearer token. Raw tokens are never stored.
	TokenHash string `gorm:"column:token_hash;type:text;not null;index"`

	Active bool `gorm:"not null;default:true"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (User) TableName() string { return "users" }
