package entity

import (
	"time"

	"github.com/google/uuid"
)

type Message struct {
	Id         uuid.UUID
	OwnerId    string
	ThreadId   uuid.UUID
	Role       string
	Content    string
	Relevant   bool
	AnalysisId *int64
	CreatedAt  time.Time
}
