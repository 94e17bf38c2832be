package specification

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// OwnedBy scopes rows to one session owner. Every query against the chat
// tables carries it; an unowned row is invisible, never an error.
type OwnedBy struct {
	OwnerID string
}

func (s OwnedBy) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("owner_id = ?", s.OwnerID)
}

type ByThreadID struct {
	ThreadID uuid.UUID
}

func (s ByThreadID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("thread_id = ?", s.ThreadID)
}

// ByUploadSessionID scopes uploaded files to one client upload session.
type ByUploadSessionID struct {
	SessionID string
}

func (s ByUploadSessionID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("session_id = ?", s.SessionID)
}

// LatestFirst orders by creation time, ties broken by insertion order so the
// "latest analysis" anchor is stable under concurrent inserts.
type LatestFirst struct{}

func (s LatestFirst) Apply(db *gorm.DB) *gorm.DB {
	return db.Order("created_at DESC").Order("id DESC")
}

// OldestFirst orders a transcript for display. The id tie-break keeps a
// same-timestamp user/assistant pair from flipping between reads.
type OldestFirst struct{}

func (s OldestFirst) Apply(db *gorm.DB) *gorm.DB {
	return db.Order("created_at ASC").Order("id ASC")
}
