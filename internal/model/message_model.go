package model

import (
	"time"

	"github.com/google/uuid"
)

type Message struct {
	Id         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	OwnerId    string    `gorm:"type:varchar(64);not null;index"`
	ThreadId   uuid.UUID `gorm:"type:uuid;not null;index"`
	Role       string    `gorm:"type:varchar(20);not null"`
	Content    string    `gorm:"type:text;not null"`
	Relevant   bool      `gorm:"not null;default:false"`
	AnalysisId *int64    `gorm:"index"`
	CreatedAt  time.Time `gorm:"autoCreateTime"`
}

func (Message) TableName() string {
	return "messages"
}
