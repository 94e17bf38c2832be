package model

import (
	"time"

	"github.com/google/uuid"
)

// Thread rows are hard-deleted: the delete cascade must leave no rows behind,
// so no soft-delete column exists on any of the chat tables.
type Thread struct {
	Id        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	OwnerId   string    `gorm:"type:varchar(64);not null;index"`
	Title     string    `gorm:"type:text;not null"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (Thread) TableName() string {
	return "threads"
}
