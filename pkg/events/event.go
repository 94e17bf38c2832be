package events

import "time"

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the unique code for this event (e.g., "analysis.completed").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// BaseEvent is the generic implementation used both for publishing and for
// reconstructing events on the consuming side.
type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

// Domain event types.
const (
	TypeAnalysisCompleted = "analysis.completed"
	TypeThreadDeleted     = "thread.deleted"
)

// NewAnalysisCompleted is emitted after the pipeline persists a fresh
// analysis for a thread.
func NewAnalysisCompleted(ownerId, threadId string, analysisId int64) Event {
	return BaseEvent{
		Type: TypeAnalysisCompleted,
		Data: map[string]interface{}{
			"owner_id":    ownerId,
			"thread_id":   threadId,
			"analysis_id": analysisId,
		},
		OccurredAt: time.Now(),
	}
}

// NewThreadDeleted is emitted once a thread and its dependents are gone.
func NewThreadDeleted(ownerId, threadId string) Event {
	return BaseEvent{
		Type: TypeThreadDeleted,
		Data: map[string]interface{}{
			"owner_id":  ownerId,
			"thread_id": threadId,
		},
		OccurredAt: time.Now(),
	}
}
