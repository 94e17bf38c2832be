package integration

import (
	"bytes"
	"context"
	"log"
	"os"
	"testing"
	"time"

	"finops-copilot-be/internal/entity"
	"finops-copilot-be/internal/repository/specification"
	"finops-copilot-be/internal/repository/unitofwork"
	"finops-copilot-be/pkg/database"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newUowFactory(t *testing.T) unitofwork.RepositoryFactory {
	// Load .env from root
	err := godotenv.Load("../../.env")
	if err != nil {
		log.Println("No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		t.Skip("Skipping integration test: DB_CONNECTION_STRING not set")
	}

	gormDB, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		t.Fatalf("Failed to connect to DB: %v", err)
	}

	return unitofwork.NewRepositoryFactory(gormDB)
}

func TestThreadStoreRoundTrip(t *testing.T) {
	uowFactory := newUowFactory(t)
	ctx := context.Background()

	ownerId := "it-owner-" + uuid.NewString()

	uow := uowFactory.NewUnitOfWork(ctx)
	assert.NotNil(t, uow.ThreadRepository())
	assert.NotNil(t, uow.MessageRepository())
	assert.NotNil(t, uow.AnalysisRepository())
	assert.NotNil(t, uow.UploadedFileRepository())

	// Seed one thread with an analysis and a user/assistant turn.
	thread := &entity.Thread{
		Id:      uuid.New(),
		OwnerId: ownerId,
		Title:   "Integration Thread",
	}

	require.NoError(t, uow.Begin(ctx))
	require.NoError(t, uow.ThreadRepository().Create(ctx, thread))

	analysis := &entity.Analysis{
		OwnerId:  ownerId,
		ThreadId: &thread.Id,
		Plan:     "plan-body",
		Metrics:  "metrics-body",
		Comment:  "why is my bill so high",
		Result:   "rightsizing suggestions",
	}
	require.NoError(t, uow.AnalysisRepository().Create(ctx, analysis))
	require.NotZero(t, analysis.Id, "store must backfill the analysis id")

	for _, m := range []*entity.Message{
		{Id: uuid.New(), OwnerId: ownerId, ThreadId: thread.Id, Role: "user", Content: "why is my bill so high", Relevant: true, AnalysisId: &analysis.Id},
		{Id: uuid.New(), OwnerId: ownerId, ThreadId: thread.Id, Role: "assistant", Content: "rightsizing suggestions", Relevant: true, AnalysisId: &analysis.Id},
	} {
		require.NoError(t, uow.MessageRepository().Create(ctx, m))
	}
	require.NoError(t, uow.Commit())

	t.Run("Latest Analysis Anchor", func(t *testing.T) {
		found, err := uow.AnalysisRepository().FindOne(ctx,
			specification.OwnedBy{OwnerID: ownerId},
			specification.ByThreadID{ThreadID: thread.Id},
			specification.LatestFirst{},
		)
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, analysis.Id, found.Id)
		assert.Equal(t, "why is my bill so high", found.Comment)
	})

	t.Run("List Threads With Counts", func(t *testing.T) {
		threads, err := uow.ThreadRepository().FindAllWithCounts(ctx,
			specification.OwnedBy{OwnerID: ownerId},
			specification.LatestFirst{},
		)
		require.NoError(t, err)
		require.Len(t, threads, 1)
		assert.Equal(t, "Integration Thread", threads[0].Title)
		assert.EqualValues(t, 2, threads[0].MsgCount)
	})

	t.Run("Owner Scoping Hides Foreign Rows", func(t *testing.T) {
		found, err := uow.ThreadRepository().FindOne(ctx,
			specification.OwnedBy{OwnerID: "someone-else"},
			specification.ByID{ID: thread.Id},
		)
		require.NoError(t, err)
		assert.Nil(t, found)
	})

	t.Run("Transcript Order Is Stable", func(t *testing.T) {
		// Two messages sharing one timestamp must come back in id order,
		// not whichever order the planner picks that day.
		ts := time.Now().Truncate(time.Microsecond)
		first := &entity.Message{Id: uuid.New(), OwnerId: ownerId, ThreadId: thread.Id, Role: "user", Content: "same-instant question", Relevant: true, CreatedAt: ts}
		second := &entity.Message{Id: uuid.New(), OwnerId: ownerId, ThreadId: thread.Id, Role: "assistant", Content: "same-instant answer", Relevant: true, CreatedAt: ts}

		uow3 := uowFactory.NewUnitOfWork(ctx)
		require.NoError(t, uow3.Begin(ctx))
		require.NoError(t, uow3.MessageRepository().Create(ctx, first))
		require.NoError(t, uow3.MessageRepository().Create(ctx, second))
		require.NoError(t, uow3.Commit())

		transcript, err := uow.MessageRepository().FindAll(ctx,
			specification.OwnedBy{OwnerID: ownerId},
			specification.ByThreadID{ThreadID: thread.Id},
			specification.OldestFirst{},
		)
		require.NoError(t, err)
		require.Len(t, transcript, 4)

		// Postgres orders uuid columns bytewise; the tie pair lands last.
		lo, hi := first.Id, second.Id
		if bytes.Compare(hi[:], lo[:]) < 0 {
			lo, hi = hi, lo
		}
		assert.Equal(t, lo, transcript[2].Id)
		assert.Equal(t, hi, transcript[3].Id)

		again, err := uow.MessageRepository().FindAll(ctx,
			specification.OwnedBy{OwnerID: ownerId},
			specification.ByThreadID{ThreadID: thread.Id},
			specification.OldestFirst{},
		)
		require.NoError(t, err)
		require.Len(t, again, 4)
		for i := range transcript {
			assert.Equal(t, transcript[i].Id, again[i].Id)
		}
	})

	t.Run("Delete Cascade Leaves No Orphans", func(t *testing.T) {
		uow2 := uowFactory.NewUnitOfWork(ctx)
		require.NoError(t, uow2.Begin(ctx))
		require.NoError(t, uow2.MessageRepository().DeleteByThreadId(ctx, thread.Id))
		require.NoError(t, uow2.AnalysisRepository().DeleteByThreadId(ctx, thread.Id))
		require.NoError(t, uow2.UploadedFileRepository().DeleteByThreadId(ctx, thread.Id))
		require.NoError(t, uow2.ThreadRepository().Delete(ctx, ownerId, thread.Id))
		require.NoError(t, uow2.Commit())

		msgCount, err := uow.MessageRepository().Count(ctx, specification.ByThreadID{ThreadID: thread.Id})
		require.NoError(t, err)
		assert.Zero(t, msgCount)

		anCount, err := uow.AnalysisRepository().Count(ctx, specification.ByThreadID{ThreadID: thread.Id})
		require.NoError(t, err)
		assert.Zero(t, anCount)

		gone, err := uow.ThreadRepository().FindOne(ctx,
			specification.OwnedBy{OwnerID: ownerId},
			specification.ByID{ID: thread.Id},
		)
		require.NoError(t, err)
		assert.Nil(t, gone)
	})
}

func TestUploadedFileLifecycle(t *testing.T) {
	uowFactory := newUowFactory(t)
	ctx := context.Background()

	ownerId := "it-owner-" + uuid.NewString()
	sessionId := "it-session-" + uuid.NewString()

	uow := uowFactory.NewUnitOfWork(ctx)
	require.NoError(t, uow.Begin(ctx))

	file := &entity.UploadedFile{
		OwnerId:      ownerId,
		SessionId:    sessionId,
		StorageKey:   uuid.NewString() + ".csv",
		OriginalName: "billing.csv",
		FileType:     "plan",
		Status:       "completed",
	}
	require.NoError(t, uow.UploadedFileRepository().Create(ctx, file))
	require.NotZero(t, file.Id)
	require.NoError(t, uow.Commit())

	t.Run("FindByIds Scopes To Owner", func(t *testing.T) {
		files, err := uow.UploadedFileRepository().FindByIds(ctx, ownerId, []int64{file.Id})
		require.NoError(t, err)
		require.Len(t, files, 1)
		assert.Equal(t, "billing.csv", files[0].OriginalName)

		foreign, err := uow.UploadedFileRepository().FindByIds(ctx, "someone-else", []int64{file.Id})
		require.NoError(t, err)
		assert.Empty(t, foreign)
	})

	t.Run("Delete Row", func(t *testing.T) {
		uow2 := uowFactory.NewUnitOfWork(ctx)
		require.NoError(t, uow2.Begin(ctx))
		require.NoError(t, uow2.UploadedFileRepository().Delete(ctx, ownerId, file.Id))
		require.NoError(t, uow2.Commit())

		gone, err := uow.UploadedFileRepository().FindOne(ctx,
			specification.OwnedBy{OwnerID: ownerId},
			specification.ByNumericID{ID: file.Id},
		)
		require.NoError(t, err)
		assert.Nil(t, gone)
	})
}
