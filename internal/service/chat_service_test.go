package service

import (
	"context"
	"io"
	"log"
	"sync"
	"testing"
	"time"

	"finops-copilot-be/internal/constant"
	"finops-copilot-be/internal/dto"
	"finops-copilot-be/internal/entity"
	"finops-copilot-be/internal/repository/contract"
	"finops-copilot-be/internal/repository/specification"
	"finops-copilot-be/internal/repository/unitofwork"
	"finops-copilot-be/pkg/ai/analyzer"
	"finops-copilot-be/pkg/ai/continuity"
	"finops-copilot-be/pkg/ai/gate"
	"finops-copilot-be/pkg/llm"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingProvider is a canned LLM that records how often it was asked.
type countingProvider struct {
	mu     sync.Mutex
	calls  int
	answer string
}

func (p *countingProvider) Chat(ctx context.Context, messages []llm.Message, opts ...llm.Option) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	return p.answer, nil
}

func (p *countingProvider) Generate(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	return p.Chat(ctx, []llm.Message{{Role: "user", Content: prompt}})
}

func (p *countingProvider) callCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

// memDB backs the fake repositories with plain slices.
type memDB struct {
	mu       sync.Mutex
	threads  []*entity.Thread
	messages []*entity.Message
	analyses []*entity.Analysis
	files    []*entity.UploadedFile
}

func threadMatches(t *entity.Thread, specs []specification.Specification) bool {
	for _, s := range specs {
		switch v := s.(type) {
		case specification.OwnedBy:
			if t.OwnerId != v.OwnerID {
				return false
			}
		case specification.ByID:
			if t.Id != v.ID {
				return false
			}
		}
	}
	return true
}

func messageMatches(m *entity.Message, specs []specification.Specification) bool {
	for _, s := range specs {
		switch v := s.(type) {
		case specification.OwnedBy:
			if m.OwnerId != v.OwnerID {
				return false
			}
		case specification.ByThreadID:
			if m.ThreadId != v.ThreadID {
				return false
			}
		}
	}
	return true
}

func analysisMatches(a *entity.Analysis, specs []specification.Specification) bool {
	for _, s := range specs {
		switch v := s.(type) {
		case specification.OwnedBy:
			if a.OwnerId != v.OwnerID {
				return false
			}
		case specification.ByThreadID:
			if a.ThreadId == nil || *a.ThreadId != v.ThreadID {
				return false
			}
		}
	}
	return true
}

type memThreadRepo struct{ db *memDB }

func (r *memThreadRepo) Create(_ context.Context, t *entity.Thread) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	cp := *t
	r.db.threads = append(r.db.threads, &cp)
	return nil
}

func (r *memThreadRepo) Update(_ context.Context, t *entity.Thread) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for i, existing := range r.db.threads {
		if existing.Id == t.Id {
			cp := *t
			r.db.threads[i] = &cp
		}
	}
	return nil
}

func (r *memThreadRepo) Delete(_ context.Context, ownerId string, id uuid.UUID) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	kept := r.db.threads[:0]
	for _, t := range r.db.threads {
		if t.OwnerId != ownerId || t.Id != id {
			kept = append(kept, t)
		}
	}
	r.db.threads = kept
	return nil
}

func (r *memThreadRepo) FindOne(_ context.Context, specs ...specification.Specification) (*entity.Thread, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	// Newest last in insertion order; scan backwards for the latest match.
	for i := len(r.db.threads) - 1; i >= 0; i-- {
		if threadMatches(r.db.threads[i], specs) {
			cp := *r.db.threads[i]
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memThreadRepo) FindAllWithCounts(_ context.Context, specs ...specification.Specification) ([]*entity.Thread, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var out []*entity.Thread
	for _, t := range r.db.threads {
		if threadMatches(t, specs) {
			cp := *t
			for _, m := range r.db.messages {
				if m.ThreadId == t.Id {
					cp.MsgCount++
				}
			}
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *memThreadRepo) Count(_ context.Context, specs ...specification.Specification) (int64, error) {
	all, _ := r.FindAllWithCounts(context.Background(), specs...)
	return int64(len(all)), nil
}

type memMessageRepo struct{ db *memDB }

func (r *memMessageRepo) Create(_ context.Context, m *entity.Message) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if m.Id == uuid.Nil {
		m.Id = uuid.New()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now()
	}
	cp := *m
	r.db.messages = append(r.db.messages, &cp)
	return nil
}

func (r *memMessageRepo) FindAll(_ context.Context, specs ...specification.Specification) ([]*entity.Message, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var out []*entity.Message
	for _, m := range r.db.messages {
		if messageMatches(m, specs) {
			cp := *m
			out = append(out, &cp)
		}
	}
	for _, s := range specs {
		if _, ok := s.(specification.LatestFirst); ok {
			for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
				out[i], out[j] = out[j], out[i]
			}
		}
	}
	for _, s := range specs {
		if p, ok := s.(specification.Pagination); ok && p.Limit > 0 && len(out) > p.Limit {
			out = out[:p.Limit]
		}
	}
	return out, nil
}

func (r *memMessageRepo) DeleteByThreadId(_ context.Context, threadId uuid.UUID) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	kept := r.db.messages[:0]
	for _, m := range r.db.messages {
		if m.ThreadId != threadId {
			kept = append(kept, m)
		}
	}
	r.db.messages = kept
	return nil
}

func (r *memMessageRepo) Count(_ context.Context, specs ...specification.Specification) (int64, error) {
	all, _ := r.FindAll(context.Background(), specs...)
	return int64(len(all)), nil
}

type memAnalysisRepo struct{ db *memDB }

func (r *memAnalysisRepo) Create(_ context.Context, a *entity.Analysis) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var maxId int64
	for _, existing := range r.db.analyses {
		if existing.Id > maxId {
			maxId = existing.Id
		}
	}
	a.Id = maxId + 1
	cp := *a
	r.db.analyses = append(r.db.analyses, &cp)
	return nil
}

func (r *memAnalysisRepo) FindOne(_ context.Context, specs ...specification.Specification) (*entity.Analysis, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for i := len(r.db.analyses) - 1; i >= 0; i-- {
		if analysisMatches(r.db.analyses[i], specs) {
			cp := *r.db.analyses[i]
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memAnalysisRepo) DeleteByThreadId(_ context.Context, threadId uuid.UUID) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	kept := r.db.analyses[:0]
	for _, a := range r.db.analyses {
		if a.ThreadId == nil || *a.ThreadId != threadId {
			kept = append(kept, a)
		}
	}
	r.db.analyses = kept
	return nil
}

func (r *memAnalysisRepo) Count(_ context.Context, specs ...specification.Specification) (int64, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var n int64
	for _, a := range r.db.analyses {
		if analysisMatches(a, specs) {
			n++
		}
	}
	return n, nil
}

type memFileRepo struct{ db *memDB }

func (r *memFileRepo) Create(_ context.Context, f *entity.UploadedFile) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	f.Id = int64(len(r.db.files) + 1)
	cp := *f
	r.db.files = append(r.db.files, &cp)
	return nil
}

func (r *memFileRepo) Update(_ context.Context, f *entity.UploadedFile) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for i, existing := range r.db.files {
		if existing.Id == f.Id {
			cp := *f
			r.db.files[i] = &cp
		}
	}
	return nil
}

func (r *memFileRepo) Delete(_ context.Context, ownerId string, id int64) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	kept := r.db.files[:0]
	for _, f := range r.db.files {
		if f.OwnerId != ownerId || f.Id != id {
			kept = append(kept, f)
		}
	}
	r.db.files = kept
	return nil
}

func (r *memFileRepo) DeleteByThreadId(_ context.Context, threadId uuid.UUID) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	kept := r.db.files[:0]
	for _, f := range r.db.files {
		if f.ThreadId == nil || *f.ThreadId != threadId {
			kept = append(kept, f)
		}
	}
	r.db.files = kept
	return nil
}

func (r *memFileRepo) FindOne(_ context.Context, specs ...specification.Specification) (*entity.UploadedFile, error) {
	all, err := r.FindAll(context.Background(), specs...)
	if err != nil || len(all) == 0 {
		return nil, err
	}
	return all[len(all)-1], nil
}

func (r *memFileRepo) FindAll(_ context.Context, specs ...specification.Specification) ([]*entity.UploadedFile, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var out []*entity.UploadedFile
	for _, f := range r.db.files {
		ok := true
		for _, s := range specs {
			switch v := s.(type) {
			case specification.OwnedBy:
				if f.OwnerId != v.OwnerID {
					ok = false
				}
			case specification.ByThreadID:
				if f.ThreadId == nil || *f.ThreadId != v.ThreadID {
					ok = false
				}
			case specification.ByNumericID:
				if f.Id != v.ID {
					ok = false
				}
			}
		}
		if ok {
			cp := *f
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *memFileRepo) FindByIds(_ context.Context, ownerId string, ids []int64) ([]*entity.UploadedFile, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	wanted := make(map[int64]bool, len(ids))
	for _, id := range ids {
		wanted[id] = true
	}
	var out []*entity.UploadedFile
	for _, f := range r.db.files {
		if f.OwnerId == ownerId && wanted[f.Id] {
			cp := *f
			out = append(out, &cp)
		}
	}
	return out, nil
}

type memUow struct{ db *memDB }

func (u *memUow) Begin(context.Context) error { return nil }
func (u *memUow) Commit() error               { return nil }
func (u *memUow) Rollback() error             { return nil }

func (u *memUow) ThreadRepository() contract.ThreadRepository             { return &memThreadRepo{u.db} }
func (u *memUow) MessageRepository() contract.MessageRepository           { return &memMessageRepo{u.db} }
func (u *memUow) AnalysisRepository() contract.AnalysisRepository         { return &memAnalysisRepo{u.db} }
func (u *memUow) UploadedFileRepository() contract.UploadedFileRepository { return &memFileRepo{u.db} }

type memFactory struct{ db *memDB }

func (f *memFactory) NewUnitOfWork(context.Context) unitofwork.UnitOfWork {
	return &memUow{f.db}
}

type nopBlobs struct{}

func (nopBlobs) Save(originalName string, data []byte) (string, error) { return "blob-key", nil }
func (nopBlobs) Read(key string) ([]byte, error)                       { return nil, nil }
func (nopBlobs) Delete(key string) error                               { return nil }
func (nopBlobs) DownloadURL(key string) string                         { return "/uploads/" + key }

type nopLogger struct{}

func (nopLogger) Debug(module, message string, details map[string]interface{}) {}
func (nopLogger) Info(module, message string, details map[string]interface{})  {}
func (nopLogger) Warn(module, message string, details map[string]interface{})  {}
func (nopLogger) Error(module, message string, details map[string]interface{}) {}
func (nopLogger) Sync() error                                                  { return nil }

func newTestChatService(db *memDB, classifier *countingProvider) IChatService {
	aiLog := log.New(io.Discard, "", 0)
	relevanceGate := gate.NewRelevanceGate(classifier, aiLog)
	costAnalyzer := analyzer.NewCostAnalyzer(&countingProvider{answer: "rightsizing report"}, "", 0.2, 0, aiLog)
	engine := continuity.NewEngine(relevanceGate, costAnalyzer, aiLog)
	return NewChatService(
		&memFactory{db: db},
		engine,
		costAnalyzer,
		&countingProvider{answer: "summary"},
		nopBlobs{},
		nil,
		nil,
		"thread_title_generate",
		nopLogger{},
	)
}

func TestSendChatEmptyTurnWithoutThread(t *testing.T) {
	db := &memDB{}
	classifier := &countingProvider{answer: "NO"}
	svc := newTestChatService(db, classifier)

	res, err := svc.SendChat(context.Background(), "owner-1", &dto.SendChatRequest{Message: "   "})
	require.NoError(t, err)

	assert.Equal(t, constant.ReplyEmptyTurn, res.Reply)
	assert.Empty(t, res.ThreadId)
	assert.Empty(t, db.threads, "an empty first contact must not materialize a thread")
	assert.Empty(t, db.messages)
}

func TestSendChatEmptyTurnContinuesExistingThread(t *testing.T) {
	db := &memDB{}
	threadId := uuid.New()
	db.threads = append(db.threads, &entity.Thread{
		Id: threadId, OwnerId: "owner-1", Title: "EC2 spend", CreatedAt: time.Now(),
	})
	db.analyses = append(db.analyses, &entity.Analysis{
		Id: 7, OwnerId: "owner-1", ThreadId: &threadId, Result: "prior report",
	})

	classifier := &countingProvider{answer: "NO"}
	svc := newTestChatService(db, classifier)

	res, err := svc.SendChat(context.Background(), "owner-1", &dto.SendChatRequest{Message: ""})
	require.NoError(t, err)

	// The empty turn still runs the decision matrix: score 0 with a prior
	// analysis records the decline against it.
	assert.Equal(t, constant.ReplyUnrelatedContinuation, res.Reply)
	assert.Equal(t, threadId.String(), res.ThreadId)

	require.Len(t, db.messages, 1)
	decline := db.messages[0]
	assert.Equal(t, constant.MessageRoleAssistant, decline.Role)
	assert.False(t, decline.Relevant)
	require.NotNil(t, decline.AnalysisId)
	assert.EqualValues(t, 7, *decline.AnalysisId)

	// Blank gate inputs are skipped, so the classifier never ran.
	assert.Equal(t, 0, classifier.callCount())
}

func TestSendChatEmptyTurnOnThreadWithoutAnalysis(t *testing.T) {
	db := &memDB{}
	threadId := uuid.New()
	db.threads = append(db.threads, &entity.Thread{
		Id: threadId, OwnerId: "owner-1", Title: constant.DefaultThreadTitle, CreatedAt: time.Now(),
	})

	classifier := &countingProvider{answer: "NO"}
	svc := newTestChatService(db, classifier)

	res, err := svc.SendChat(context.Background(), "owner-1", &dto.SendChatRequest{})
	require.NoError(t, err)

	assert.Equal(t, constant.ReplyOffTopicFirstContact, res.Reply)
	assert.Equal(t, threadId.String(), res.ThreadId)
	assert.Empty(t, db.messages, "off-topic contact without prior analysis persists nothing")
	assert.Empty(t, db.analyses)
}

func TestSendChatRelevantMessageProducesAnalysis(t *testing.T) {
	db := &memDB{}
	classifier := &countingProvider{answer: "YES"}
	svc := newTestChatService(db, classifier)

	res, err := svc.SendChat(context.Background(), "owner-1", &dto.SendChatRequest{
		Message: "Why is my EC2 bill so high?",
	})
	require.NoError(t, err)

	assert.Equal(t, "rightsizing report", res.Reply)
	require.Len(t, db.threads, 1)
	assert.Equal(t, db.threads[0].Id.String(), res.ThreadId)

	require.Len(t, db.analyses, 1)
	assert.Equal(t, "Why is my EC2 bill so high?", db.analyses[0].Comment)

	require.Len(t, db.messages, 2)
	assert.Equal(t, constant.MessageRoleUser, db.messages[0].Role)
	assert.Equal(t, constant.MessageRoleAssistant, db.messages[1].Role)
	for _, m := range db.messages {
		assert.True(t, m.Relevant)
		require.NotNil(t, m.AnalysisId)
		assert.Equal(t, db.analyses[0].Id, *m.AnalysisId)
	}
}
