package dto

import "github.com/google/uuid"

// GenerateThreadTitleMessage is the payload of the async title generation job.
type GenerateThreadTitleMessage struct {
	ThreadId uuid.UUID `json:"thread_id"`
	OwnerId  string    `json:"owner_id"`
	Prompt   string    `json:"prompt"`
}
