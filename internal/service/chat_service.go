package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"finops-copilot-be/internal/constant"
	"finops-copilot-be/internal/dto"
	"finops-copilot-be/internal/entity"
	"finops-copilot-be/internal/pkg/logger"
	"finops-copilot-be/internal/repository/specification"
	"finops-copilot-be/internal/repository/unitofwork"
	"finops-copilot-be/pkg/ai/analyzer"
	"finops-copilot-be/pkg/ai/continuity"
	"finops-copilot-be/pkg/events"
	"finops-copilot-be/pkg/llm"
	pktNats "finops-copilot-be/pkg/nats"
	"finops-copilot-be/pkg/storage"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
)

// IChatService defines the chat orchestration interface
type IChatService interface {
	NewThread(ctx context.Context, ownerId string) (*dto.NewThreadResponse, error)
	SendChat(ctx context.Context, ownerId string, request *dto.SendChatRequest) (*dto.SendChatResponse, error)
	GetHistory(ctx context.Context, ownerId string, threadId *string) (*dto.MessagesResponse, error)
	GetThreadMessages(ctx context.Context, ownerId string, threadId uuid.UUID) (*dto.MessagesResponse, error)
	ListThreads(ctx context.Context, ownerId string) (*dto.ListThreadsResponse, error)
	DeleteThread(ctx context.Context, ownerId string, threadId uuid.UUID) error
	Summarize(ctx context.Context, ownerId string, threadId uuid.UUID) (*dto.SummarizeResponse, error)
	AnalyzeCosts(ctx context.Context, request *dto.AnalyzeCostsRequest) (*dto.AnalyzeCostsResponse, error)
}

type chatService struct {
	uowFactory unitofwork.RepositoryFactory
	engine     *continuity.Engine
	analyzer   *analyzer.CostAnalyzer
	generator  llm.LLMProvider
	blobs      storage.BlobStore
	publisher  *pktNats.Publisher
	pubSub     *gochannel.GoChannel
	titleTopic string
	logger     logger.ILogger
}

func NewChatService(
	uowFactory unitofwork.RepositoryFactory,
	engine *continuity.Engine,
	costAnalyzer *analyzer.CostAnalyzer,
	generator llm.LLMProvider,
	blobs storage.BlobStore,
	publisher *pktNats.Publisher,
	pubSub *gochannel.GoChannel,
	titleTopic string,
	log logger.ILogger,
) IChatService {
	return &chatService{
		uowFactory: uowFactory,
		engine:     engine,
		analyzer:   costAnalyzer,
		generator:  generator,
		blobs:      blobs,
		publisher:  publisher,
		pubSub:     pubSub,
		titleTopic: titleTopic,
		logger:     log,
	}
}

// uowThreadStore adapts the active unit of work to the continuity engine.
type uowThreadStore struct {
	uow unitofwork.UnitOfWork
}

func (s *uowThreadStore) LatestAnalysis(ctx context.Context, ownerId string, threadId uuid.UUID) (*entity.Analysis, error) {
	return s.uow.AnalysisRepository().FindOne(ctx,
		specification.OwnedBy{OwnerID: ownerId},
		specification.ByThreadID{ThreadID: threadId},
		specification.LatestFirst{},
	)
}

func (s *uowThreadStore) RecentMessages(ctx context.Context, ownerId string, threadId uuid.UUID, limit int) ([]*entity.Message, error) {
	return s.uow.MessageRepository().FindAll(ctx,
		specification.OwnedBy{OwnerID: ownerId},
		specification.ByThreadID{ThreadID: threadId},
		specification.LatestFirst{},
		specification.Pagination{Limit: limit},
	)
}

func (s *uowThreadStore) SaveAnalysis(ctx context.Context, analysis *entity.Analysis) error {
	return s.uow.AnalysisRepository().Create(ctx, analysis)
}

func (s *uowThreadStore) SaveMessage(ctx context.Context, message *entity.Message) error {
	return s.uow.MessageRepository().Create(ctx, message)
}

// NewThread creates an empty thread with the placeholder title.
func (cs *chatService) NewThread(ctx context.Context, ownerId string) (*dto.NewThreadResponse, error) {
	uow := cs.uowFactory.NewUnitOfWork(ctx)

	thread := entity.Thread{
		Id:        uuid.New(),
		OwnerId:   ownerId,
		Title:     constant.DefaultThreadTitle,
		CreatedAt: time.Now(),
	}

	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	if err := uow.ThreadRepository().Create(ctx, &thread); err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, err
	}

	return &dto.NewThreadResponse{ThreadId: thread.Id.String(), Success: true}, nil
}

// SendChat runs one conversational turn through the continuity engine.
func (cs *chatService) SendChat(ctx context.Context, ownerId string, request *dto.SendChatRequest) (*dto.SendChatResponse, error) {
	uow := cs.uowFactory.NewUnitOfWork(ctx)

	messageText := strings.TrimSpace(request.Message)

	// Resolve referenced uploads and derive the plan/metrics inputs from
	// their stored contents.
	var (
		files   []*entity.UploadedFile
		plan    string
		metrics string
	)
	if len(request.FileIds) > 0 {
		var err error
		files, err = uow.UploadedFileRepository().FindByIds(ctx, ownerId, request.FileIds)
		if err != nil {
			return nil, err
		}
		for _, f := range files {
			data, err := cs.blobs.Read(f.StorageKey)
			if err != nil {
				cs.logger.Warn("ChatService", "Failed to read uploaded file, skipping", map[string]interface{}{
					"file_id": f.Id, "error": err.Error(),
				})
				continue
			}
			switch f.FileType {
			case constant.FileTypePlan:
				plan = string(data)
			case constant.FileTypeMetrics:
				metrics = string(data)
			}
		}
	}

	thread, err := cs.resolveThread(ctx, uow, ownerId, request.ThreadId)
	if err != nil {
		return nil, err
	}

	// A contentless turn only short-circuits when there is no thread to
	// continue; on an existing thread it still runs the decision matrix.
	if thread == nil && messageText == "" && len(files) == 0 {
		return &dto.SendChatResponse{Reply: constant.ReplyEmptyTurn}, nil
	}

	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	if thread == nil {
		thread = &entity.Thread{
			Id:        uuid.New(),
			OwnerId:   ownerId,
			Title:     constant.DefaultThreadTitle,
			CreatedAt: time.Now(),
		}
		if err := uow.ThreadRepository().Create(ctx, thread); err != nil {
			return nil, err
		}
	}

	store := &uowThreadStore{uow: uow}
	result, err := cs.engine.Respond(ctx, store, ownerId, thread.Id, plan, metrics, messageText)
	if err != nil {
		return nil, err
	}

	// Attach referenced uploads to the thread and, when one was persisted,
	// the user message of this turn.
	for _, f := range files {
		f.ThreadId = &thread.Id
		f.MessageId = result.UserMessageId
		if err := uow.UploadedFileRepository().Update(ctx, f); err != nil {
			return nil, err
		}
	}

	if err := uow.Commit(); err != nil {
		return nil, err
	}

	cs.afterTurn(ctx, ownerId, thread, messageText, result)

	return &dto.SendChatResponse{Reply: result.Reply, ThreadId: thread.Id.String()}, nil
}

// afterTurn fires the post-commit side effects. Both are best-effort; a
// failed publish never fails the user's turn.
func (cs *chatService) afterTurn(ctx context.Context, ownerId string, thread *entity.Thread, messageText string, result *continuity.Result) {
	if result.AnalysisId != nil && cs.publisher != nil {
		event := events.NewAnalysisCompleted(ownerId, thread.Id.String(), *result.AnalysisId)
		if err := cs.publisher.Publish(ctx, event); err != nil {
			cs.logger.Warn("ChatService", "Failed to publish analysis event", map[string]interface{}{"error": err.Error()})
		}
	}

	if result.Relevant && thread.Title == constant.DefaultThreadTitle && cs.pubSub != nil {
		prompt := messageText
		if prompt == "" {
			prompt = constant.PlaceholderUserContent
		}
		payload, err := json.Marshal(dto.GenerateThreadTitleMessage{
			ThreadId: thread.Id,
			OwnerId:  ownerId,
			Prompt:   prompt,
		})
		if err != nil {
			return
		}
		if err := cs.pubSub.Publish(cs.titleTopic, message.NewMessage(watermill.NewUUID(), payload)); err != nil {
			cs.logger.Warn("ChatService", "Failed to enqueue title generation", map[string]interface{}{"error": err.Error()})
		}
	}
}

// resolveThread picks the caller-supplied thread, falling back to the owner's
// latest. A guessed or foreign thread id matches nothing and falls through.
func (cs *chatService) resolveThread(ctx context.Context, uow unitofwork.UnitOfWork, ownerId string, threadId *string) (*entity.Thread, error) {
	if threadId != nil && *threadId != "" {
		id, err := uuid.Parse(*threadId)
		if err != nil {
			return nil, fmt.Errorf("invalid thread id: %w", err)
		}
		thread, err := uow.ThreadRepository().FindOne(ctx,
			specification.ByID{ID: id},
			specification.OwnedBy{OwnerID: ownerId},
		)
		if err != nil {
			return nil, err
		}
		if thread != nil {
			return thread, nil
		}
	}

	return uow.ThreadRepository().FindOne(ctx,
		specification.OwnedBy{OwnerID: ownerId},
		specification.LatestFirst{},
	)
}

// GetHistory returns the message view of the given thread, defaulting to the
// owner's latest thread.
func (cs *chatService) GetHistory(ctx context.Context, ownerId string, threadId *string) (*dto.MessagesResponse, error) {
	uow := cs.uowFactory.NewUnitOfWork(ctx)

	thread, err := cs.resolveThread(ctx, uow, ownerId, threadId)
	if err != nil {
		return nil, err
	}
	if thread == nil {
		return &dto.MessagesResponse{Messages: []dto.MessageDTO{}}, nil
	}

	return cs.buildMessages(ctx, uow, ownerId, thread.Id)
}

// GetThreadMessages returns the message view of one specific thread.
func (cs *chatService) GetThreadMessages(ctx context.Context, ownerId string, threadId uuid.UUID) (*dto.MessagesResponse, error) {
	uow := cs.uowFactory.NewUnitOfWork(ctx)
	return cs.buildMessages(ctx, uow, ownerId, threadId)
}

func (cs *chatService) buildMessages(ctx context.Context, uow unitofwork.UnitOfWork, ownerId string, threadId uuid.UUID) (*dto.MessagesResponse, error) {
	messages, err := uow.MessageRepository().FindAll(ctx,
		specification.OwnedBy{OwnerID: ownerId},
		specification.ByThreadID{ThreadID: threadId},
		specification.OldestFirst{},
	)
	if err != nil {
		return nil, err
	}

	files, err := uow.UploadedFileRepository().FindAll(ctx,
		specification.OwnedBy{OwnerID: ownerId},
		specification.ByThreadID{ThreadID: threadId},
	)
	if err != nil {
		return nil, err
	}

	filesByMsgId := make(map[uuid.UUID][]dto.MessageFileDTO)
	for _, f := range files {
		if f.MessageId == nil {
			continue
		}
		filesByMsgId[*f.MessageId] = append(filesByMsgId[*f.MessageId], dto.MessageFileDTO{
			Id:          f.Id,
			Name:        f.OriginalName,
			FileType:    f.FileType,
			DownloadUrl: cs.blobs.DownloadURL(f.StorageKey),
		})
	}

	resp := make([]dto.MessageDTO, 0, len(messages))
	for _, m := range messages {
		msgFiles := filesByMsgId[m.Id]
		if msgFiles == nil {
			msgFiles = []dto.MessageFileDTO{}
		}
		resp = append(resp, dto.MessageDTO{
			MessageId: m.Id.String(),
			Role:      m.Role,
			Text:      m.Content,
			Timestamp: m.CreatedAt,
			Files:     msgFiles,
		})
	}

	return &dto.MessagesResponse{Messages: resp}, nil
}

// ListThreads returns the owner's threads, newest first, with message counts.
func (cs *chatService) ListThreads(ctx context.Context, ownerId string) (*dto.ListThreadsResponse, error) {
	uow := cs.uowFactory.NewUnitOfWork(ctx)

	threads, err := uow.ThreadRepository().FindAllWithCounts(ctx,
		specification.OwnedBy{OwnerID: ownerId},
		specification.LatestFirst{},
	)
	if err != nil {
		return nil, err
	}

	resp := make([]dto.ThreadDTO, 0, len(threads))
	for _, t := range threads {
		resp = append(resp, dto.ThreadDTO{
			ThreadId:  t.Id.String(),
			Title:     t.Title,
			CreatedAt: t.CreatedAt,
			MsgCount:  t.MsgCount,
		})
	}

	return &dto.ListThreadsResponse{Threads: resp}, nil
}

// DeleteThread removes a thread and everything hanging off it. Dependents go
// first so an interrupted delete never leaves orphans behind.
func (cs *chatService) DeleteThread(ctx context.Context, ownerId string, threadId uuid.UUID) error {
	uow := cs.uowFactory.NewUnitOfWork(ctx)

	files, err := uow.UploadedFileRepository().FindAll(ctx,
		specification.OwnedBy{OwnerID: ownerId},
		specification.ByThreadID{ThreadID: threadId},
	)
	if err != nil {
		return err
	}

	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	if err := uow.MessageRepository().DeleteByThreadId(ctx, threadId); err != nil {
		return err
	}
	if err := uow.AnalysisRepository().DeleteByThreadId(ctx, threadId); err != nil {
		return err
	}
	if err := uow.UploadedFileRepository().DeleteByThreadId(ctx, threadId); err != nil {
		return err
	}
	if err := uow.ThreadRepository().Delete(ctx, ownerId, threadId); err != nil {
		return err
	}

	if err := uow.Commit(); err != nil {
		return err
	}

	// Blob cleanup is best-effort once the rows are gone.
	for _, f := range files {
		if err := cs.blobs.Delete(f.StorageKey); err != nil {
			cs.logger.Warn("ChatService", "Failed to delete blob", map[string]interface{}{
				"storage_key": f.StorageKey, "error": err.Error(),
			})
		}
	}

	if cs.publisher != nil {
		if err := cs.publisher.Publish(ctx, events.NewThreadDeleted(ownerId, threadId.String())); err != nil {
			cs.logger.Warn("ChatService", "Failed to publish thread deleted event", map[string]interface{}{"error": err.Error()})
		}
	}

	return nil
}

// Summarize condenses the full thread transcript into bullet points.
func (cs *chatService) Summarize(ctx context.Context, ownerId string, threadId uuid.UUID) (*dto.SummarizeResponse, error) {
	uow := cs.uowFactory.NewUnitOfWork(ctx)

	messages, err := uow.MessageRepository().FindAll(ctx,
		specification.OwnedBy{OwnerID: ownerId},
		specification.ByThreadID{ThreadID: threadId},
		specification.OldestFirst{},
	)
	if err != nil {
		return nil, err
	}

	full := fullThreadText(messages)

	summary, err := cs.generator.Chat(ctx, []llm.Message{
		{Role: "system", Content: constant.SummarySystemPrompt},
		{Role: "user", Content: constant.SummaryQuestionPrefix + full},
	},
		llm.WithTemperature(0.4),
		llm.WithMaxTokens(600),
	)
	if err != nil {
		return nil, err
	}

	return &dto.SummarizeResponse{Summary: summary}, nil
}

// AnalyzeCosts is the direct, thread-less analysis endpoint.
func (cs *chatService) AnalyzeCosts(ctx context.Context, request *dto.AnalyzeCostsRequest) (*dto.AnalyzeCostsResponse, error) {
	result, err := cs.analyzer.AnalyzeCosts(ctx, request.Plan, request.Metrics, request.Comment)
	if err != nil {
		return nil, err
	}
	return &dto.AnalyzeCostsResponse{Suggestion: result}, nil
}

// fullThreadText flattens a transcript to "role: content" lines. An empty
// thread yields a sentinel the summarizer can still work with.
func fullThreadText(messages []*entity.Message) string {
	if len(messages) == 0 {
		return "No messages."
	}
	lines := make([]string, 0, len(messages))
	for _, m := range messages {
		lines = append(lines, fmt.Sprintf("%s: %s", m.Role, m.Content))
	}
	return strings.Join(lines, "\n")
}
