package entity

import (
	"time"

	"github.com/google/uuid"
)

type UploadedFile struct {
	Id           int64
	OwnerId      string
	SessionId    string
	ThreadId     *uuid.UUID
	MessageId    *uuid.UUID
	StorageKey   string
	OriginalName string
	FileType     string
	Status       string
	CreatedAt    time.Time
}
