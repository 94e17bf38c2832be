package entity

import (
	"time"

	"github.com/google/uuid"
)

type Thread struct {
	Id        uuid.UUID
	OwnerId   string
	Title     string
	CreatedAt time.Time
	UpdatedAt *time.Time

	// MsgCount is derived at query time, never stored.
	MsgCount int64
}
