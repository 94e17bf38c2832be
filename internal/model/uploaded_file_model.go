package model

import (
	"time"

	"github.com/google/uuid"
)

type UploadedFile struct {
	Id           int64      `gorm:"primaryKey;autoIncrement"`
	OwnerId      string     `gorm:"type:varchar(64);not null;index"`
	SessionId    string     `gorm:"type:varchar(64);not null;index"`
	ThreadId     *uuid.UUID `gorm:"type:uuid;index"`
	MessageId    *uuid.UUID `gorm:"type:uuid;index"`
	StorageKey   string     `gorm:"type:text;not null"`
	OriginalName string     `gorm:"type:text;not null"`
	FileType     string     `gorm:"type:varchar(16);not null"`
	Status       string     `gorm:"type:varchar(16);not null"`
	CreatedAt    time.Time  `gorm:"autoCreateTime"`
}

func (UploadedFile) TableName() string {
	return "uploaded_files"
}
