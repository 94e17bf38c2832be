package memory

import (
	"fmt"
	"time"

	"finops-copilot-be/internal/constant"

	"github.com/patrickmn/go-cache"
)

// TrackedUpload is the per-file state surfaced to the caller while an upload
// is in flight. One entry exists per (upload session, file role); a retry for
// the same role replaces the previous entry.
type TrackedUpload struct {
	SessionId    string `json:"session_id"`
	FileType     string `json:"file_type"`
	OriginalName string `json:"original_name"`
	Progress     int    `json:"progress"`
	Status       string `json:"status"`
	FileId       int64  `json:"file_id,omitempty"` // set on completion
}

// UploadTracker holds transient upload state. Upload sessions are client
// generated and regenerated after every send, so entries expire on their own
// and stale progress never leaks into the next turn.
type UploadTracker struct {
	cache *cache.Cache
}

func NewUploadTracker() *UploadTracker {
	// Entries live for an hour at most; expired items are purged every 10 minutes.
	c := cache.New(1*time.Hour, 10*time.Minute)
	return &UploadTracker{
		cache: c,
	}
}

func trackerKey(sessionId, fileType string) string {
	return fmt.Sprintf("%s/%s", sessionId, fileType)
}

// Begin registers a fresh upload in the uploading state with zero progress.
func (t *UploadTracker) Begin(sessionId, fileType, originalName string) {
	t.cache.Set(trackerKey(sessionId, fileType), &TrackedUpload{
		SessionId:    sessionId,
		FileType:     fileType,
		OriginalName: originalName,
		Progress:     0,
		Status:       constant.UploadStatusUploading,
	}, cache.DefaultExpiration)
}

// Progress records a transport-reported percentage. Updates are monotonic:
// a lower value than the current one is ignored. Terminal states are never
// regressed to uploading.
func (t *UploadTracker) Progress(sessionId, fileType string, percent int) {
	entry, found := t.get(sessionId, fileType)
	if !found || entry.Status != constant.UploadStatusUploading {
		return
	}
	if percent < entry.Progress {
		return
	}
	if percent > 100 {
		percent = 100
	}
	entry.Progress = percent
	t.cache.Set(trackerKey(sessionId, fileType), entry, cache.DefaultExpiration)
}

// Complete moves the entry to completed and pins the server-assigned file id.
func (t *UploadTracker) Complete(sessionId, fileType string, fileId int64) {
	entry, found := t.get(sessionId, fileType)
	if !found {
		return
	}
	entry.Status = constant.UploadStatusCompleted
	entry.Progress = 100
	entry.FileId = fileId
	t.cache.Set(trackerKey(sessionId, fileType), entry, cache.DefaultExpiration)
}

// Fail moves the entry to the error state and resets progress.
func (t *UploadTracker) Fail(sessionId, fileType string) {
	entry, found := t.get(sessionId, fileType)
	if !found {
		return
	}
	entry.Status = constant.UploadStatusError
	entry.Progress = 0
	t.cache.Set(trackerKey(sessionId, fileType), entry, cache.DefaultExpiration)
}

// Remove clears tracker state for one file role regardless of its status.
func (t *UploadTracker) Remove(sessionId, fileType string) {
	t.cache.Delete(trackerKey(sessionId, fileType))
}

// Get returns the tracked entry for one file role.
func (t *UploadTracker) Get(sessionId, fileType string) (*TrackedUpload, bool) {
	return t.get(sessionId, fileType)
}

// List returns all tracked entries for an upload session.
func (t *UploadTracker) List(sessionId string) []*TrackedUpload {
	var entries []*TrackedUpload
	for _, fileType := range []string{constant.FileTypePlan, constant.FileTypeMetrics} {
		if entry, found := t.get(sessionId, fileType); found {
			entries = append(entries, entry)
		}
	}
	return entries
}

func (t *UploadTracker) get(sessionId, fileType string) (*TrackedUpload, bool) {
	if x, found := t.cache.Get(trackerKey(sessionId, fileType)); found {
		return x.(*TrackedUpload), true
	}
	return nil, false
}
