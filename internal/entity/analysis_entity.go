package entity

import (
	"time"

	"github.com/google/uuid"
)

// Analysis is one persisted run of the cost-optimization capability. Immutable
// after creation; the id is assigned monotonically by the store.
type Analysis struct {
	Id        int64
	OwnerId   string
	ThreadId  *uuid.UUID
	Plan      string
	Metrics   string
	Comment   string
	Result    string
	CreatedAt time.Time
}
