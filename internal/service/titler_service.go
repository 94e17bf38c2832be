package service

import (
	"context"
	"encoding/json"
	"log"
	"strings"

	"finops-copilot-be/internal/constant"
	"finops-copilot-be/internal/dto"
	"finops-copilot-be/internal/repository/specification"
	"finops-copilot-be/internal/repository/unitofwork"
	"finops-copilot-be/pkg/llm"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

// ITitlerService consumes title-generation jobs queued after a thread's
// first relevant exchange and replaces the placeholder title.
type ITitlerService interface {
	Consume(ctx context.Context) error
}

type titlerService struct {
	pubSub     *gochannel.GoChannel
	topicName  string
	uowFactory unitofwork.RepositoryFactory
	generator  llm.LLMProvider
}

func NewTitlerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	uowFactory unitofwork.RepositoryFactory,
	generator llm.LLMProvider,
) ITitlerService {
	return &titlerService{
		pubSub:     pubSub,
		topicName:  topicName,
		uowFactory: uowFactory,
		generator:  generator,
	}
}

func (ts *titlerService) Consume(ctx context.Context) error {
	messages, err := ts.pubSub.Subscribe(ctx, ts.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			ts.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (ts *titlerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.GenerateThreadTitleMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		log.Printf("[ERROR] Failed to unmarshal title job: %v", err)
		msg.Ack() // Ack invalid messages to prevent infinite retry
		return
	}

	uow := ts.uowFactory.NewUnitOfWork(ctx)

	thread, err := uow.ThreadRepository().FindOne(ctx,
		specification.ByID{ID: payload.ThreadId},
		specification.OwnedBy{OwnerID: payload.OwnerId},
	)
	if err != nil {
		log.Printf("[ERROR] Failed to fetch thread %s: %v", payload.ThreadId, err)
		msg.Nack()
		return
	}
	if thread == nil {
		// Thread deleted before the job ran.
		msg.Ack()
		return
	}
	if thread.Title != constant.DefaultThreadTitle {
		// Someone already titled it.
		msg.Ack()
		return
	}

	title, err := ts.generator.Chat(ctx, []llm.Message{
		{Role: "system", Content: constant.TitlerSystemPrompt},
		{Role: "user", Content: payload.Prompt},
	},
		llm.WithTemperature(0.3),
		llm.WithMaxTokens(20),
	)
	if err != nil {
		log.Printf("[ERROR] Title generation failed for thread %s: %v", payload.ThreadId, err)
		msg.Nack()
		return
	}

	title = sanitizeTitle(title)
	if title == "" {
		msg.Ack()
		return
	}

	if err := uow.Begin(ctx); err != nil {
		log.Printf("[ERROR] Failed to begin transaction: %v", err)
		msg.Nack()
		return
	}
	defer uow.Rollback()

	thread.Title = title
	if err := uow.ThreadRepository().Update(ctx, thread); err != nil {
		log.Printf("[ERROR] Failed to update thread title: %v", err)
		msg.Nack()
		return
	}

	if err := uow.Commit(); err != nil {
		log.Printf("[ERROR] Failed to commit title update: %v", err)
		msg.Nack()
		return
	}

	msg.Ack()
}

// sanitizeTitle strips quotes and whitespace the model tends to wrap titles in.
func sanitizeTitle(title string) string {
	title = strings.TrimSpace(title)
	title = strings.Trim(title, `"'`)
	if idx := strings.IndexByte(title, '\n'); idx >= 0 {
		title = title[:idx]
	}
	const maxTitleLen = 80
	if len(title) > maxTitleLen {
		title = title[:maxTitleLen]
	}
	return strings.TrimSpace(title)
}
