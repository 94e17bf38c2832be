package memory

import (
	"testing"

	"finops-copilot-be/internal/constant"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUploadTrackerLifecycle(t *testing.T) {
	tracker := NewUploadTracker()

	tracker.Begin("sess-1", constant.FileTypePlan, "plan.csv")

	entry, found := tracker.Get("sess-1", constant.FileTypePlan)
	require.True(t, found)
	assert.Equal(t, constant.UploadStatusUploading, entry.Status)
	assert.Equal(t, 0, entry.Progress)

	tracker.Progress("sess-1", constant.FileTypePlan, 40)
	tracker.Complete("sess-1", constant.FileTypePlan, 7)

	entry, found = tracker.Get("sess-1", constant.FileTypePlan)
	require.True(t, found)
	assert.Equal(t, constant.UploadStatusCompleted, entry.Status)
	assert.Equal(t, 100, entry.Progress)
	assert.Equal(t, int64(7), entry.FileId)
}

func TestUploadTrackerProgressIsMonotonic(t *testing.T) {
	tracker := NewUploadTracker()
	tracker.Begin("sess-1", constant.FileTypeMetrics, "metrics.csv")

	tracker.Progress("sess-1", constant.FileTypeMetrics, 60)
	tracker.Progress("sess-1", constant.FileTypeMetrics, 30)

	entry, found := tracker.Get("sess-1", constant.FileTypeMetrics)
	require.True(t, found)
	assert.Equal(t, 60, entry.Progress)

	tracker.Progress("sess-1", constant.FileTypeMetrics, 250)
	entry, _ = tracker.Get("sess-1", constant.FileTypeMetrics)
	assert.Equal(t, 100, entry.Progress)
}

func TestUploadTrackerFailResetsProgress(t *testing.T) {
	tracker := NewUploadTracker()
	tracker.Begin("sess-1", constant.FileTypePlan, "plan.csv")
	tracker.Progress("sess-1", constant.FileTypePlan, 80)

	tracker.Fail("sess-1", constant.FileTypePlan)

	entry, found := tracker.Get("sess-1", constant.FileTypePlan)
	require.True(t, found)
	assert.Equal(t, constant.UploadStatusError, entry.Status)
	assert.Equal(t, 0, entry.Progress)

	// Progress reports arriving after failure are ignored.
	tracker.Progress("sess-1", constant.FileTypePlan, 90)
	entry, _ = tracker.Get("sess-1", constant.FileTypePlan)
	assert.Equal(t, 0, entry.Progress)
}

func TestUploadTrackerRetryReplacesEntry(t *testing.T) {
	tracker := NewUploadTracker()
	tracker.Begin("sess-1", constant.FileTypePlan, "old.csv")
	tracker.Fail("sess-1", constant.FileTypePlan)

	tracker.Begin("sess-1", constant.FileTypePlan, "new.csv")

	entry, found := tracker.Get("sess-1", constant.FileTypePlan)
	require.True(t, found)
	assert.Equal(t, "new.csv", entry.OriginalName)
	assert.Equal(t, constant.UploadStatusUploading, entry.Status)
	assert.Equal(t, 0, entry.Progress)
}

func TestUploadTrackerListAndRemove(t *testing.T) {
	tracker := NewUploadTracker()
	tracker.Begin("sess-1", constant.FileTypePlan, "plan.csv")
	tracker.Begin("sess-1", constant.FileTypeMetrics, "metrics.csv")
	tracker.Begin("sess-2", constant.FileTypePlan, "other.csv")

	entries := tracker.List("sess-1")
	assert.Len(t, entries, 2)

	tracker.Remove("sess-1", constant.FileTypePlan)
	entries = tracker.List("sess-1")
	require.Len(t, entries, 1)
	assert.Equal(t, constant.FileTypeMetrics, entries[0].FileType)

	// Other sessions are untouched.
	assert.Len(t, tracker.List("sess-2"), 1)
}
