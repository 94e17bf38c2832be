package model

import (
	"time"

	"github.com/google/uuid"
)

type Analysis struct {
	Id        int64      `gorm:"primaryKey;autoIncrement"`
	OwnerId   string     `gorm:"type:varchar(64);not null;index"`
	ThreadId  *uuid.UUID `gorm:"type:uuid;index"`
	Plan      string     `gorm:"type:text"`
	Metrics   string     `gorm:"type:text"`
	Comment   string     `gorm:"type:text"`
	Result    string     `gorm:"type:text"`
	CreatedAt time.Time  `gorm:"autoCreateTime"`
}

func (Analysis) TableName() string {
	return "analyses"
}
