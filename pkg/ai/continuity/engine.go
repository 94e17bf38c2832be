package continuity

import (
	"context"
	"fmt"
	"log"
	"strings"

	"finops-copilot-be/internal/constant"
	"finops-copilot-be/internal/entity"
	"finops-copilot-be/pkg/ai/gate"

	"github.com/google/uuid"
)

// ThreadStore is the slice of persistence the engine needs for one turn.
// Implemented by the chat service on top of the active unit of work.
type ThreadStore interface {
	// LatestAnalysis returns the newest analysis of the thread, nil if none.
	LatestAnalysis(ctx context.Context, ownerId string, threadId uuid.UUID) (*entity.Analysis, error)

	// RecentMessages returns up to limit messages, newest first.
	RecentMessages(ctx context.Context, ownerId string, threadId uuid.UUID, limit int) ([]*entity.Message, error)

	// SaveAnalysis persists the analysis and backfills its id.
	SaveAnalysis(ctx context.Context, analysis *entity.Analysis) error

	SaveMessage(ctx context.Context, message *entity.Message) error
}

// Analyzer produces the optimization report for a relevant turn.
type Analyzer interface {
	AnalyzeCosts(ctx context.Context, plan, metrics, comment string) (string, error)
}

// Result is the outcome of one chat turn.
type Result struct {
	Reply         string
	Relevant      bool
	AnalysisId    *int64     // set when a fresh analysis was produced
	UserMessageId *uuid.UUID // set when the user's turn was persisted
}

// Engine decides per turn whether to run a fresh analysis, continue the
// previous one, or decline, based on relevance and the thread's prior state.
type Engine struct {
	gate     *gate.RelevanceGate
	analyzer Analyzer
	logger   *log.Logger
}

func NewEngine(gate *gate.RelevanceGate, analyzer Analyzer, logger *log.Logger) *Engine {
	return &Engine{
		gate:     gate,
		analyzer: analyzer,
		logger:   logger,
	}
}

// Respond executes one chat turn against the given thread.
//
// The decision matrix:
//
//	relevant, no prior analysis  -> fresh analysis
//	relevant, prior analysis     -> continuation analysis with recent context
//	irrelevant, no prior         -> decline, nothing persisted
//	irrelevant, prior analysis   -> decline, assistant message recorded
func (e *Engine) Respond(
	ctx context.Context,
	store ThreadStore,
	ownerId string,
	threadId uuid.UUID,
	plan, metrics, message string,
) (*Result, error) {

	latest, err := store.LatestAnalysis(ctx, ownerId, threadId)
	if err != nil {
		return nil, fmt.Errorf("fetch latest analysis: %w", err)
	}

	relevance, err := e.gate.Score(ctx, plan, metrics, message)
	if err != nil {
		return nil, fmt.Errorf("relevance check: %w", err)
	}

	if !relevance.Any() && latest == nil {
		e.logger.Printf("[CONTINUITY] off-topic first contact on thread %s", threadId)
		return &Result{
			Reply:    constant.ReplyOffTopicFirstContact,
			Relevant: false,
		}, nil
	}

	userText := message
	if userText == "" {
		userText = constant.PlaceholderUserContent
	}

	if relevance.Any() {
		return e.analyze(ctx, store, ownerId, threadId, latest, plan, metrics, message, userText)
	}

	// Irrelevant turn inside an existing analysis context: record the
	// decline so the conversation history shows it, keep the prior
	// analysis linked.
	e.logger.Printf("[CONTINUITY] unrelated continuation on thread %s", threadId)
	reply := constant.ReplyUnrelatedContinuation

	assistantMsg := &entity.Message{
		OwnerId:  ownerId,
		ThreadId: threadId,
		Role:     constant.MessageRoleAssistant,
		Content:  reply,
		Relevant: false,
	}
	if latest != nil {
		assistantMsg.AnalysisId = &latest.Id
	}
	if err := store.SaveMessage(ctx, assistantMsg); err != nil {
		return nil, fmt.Errorf("save decline message: %w", err)
	}

	return &Result{Reply: reply, Relevant: false}, nil
}

func (e *Engine) analyze(
	ctx context.Context,
	store ThreadStore,
	ownerId string,
	threadId uuid.UUID,
	latest *entity.Analysis,
	plan, metrics, message, userText string,
) (*Result, error) {

	// Prior context is only folded in when continuing an analysis.
	var priorContext string
	if latest != nil {
		recent, err := store.RecentMessages(ctx, ownerId, threadId, constant.ContextWindowSize)
		if err != nil {
			return nil, fmt.Errorf("fetch recent messages: %w", err)
		}
		priorContext = formatContext(recent)
	}

	directive := constant.ContinueFreshDirective
	if latest != nil {
		directive = constant.ContinueExistingDirective
	}
	prompt := fmt.Sprintf("%s\n\n%s\n\nNew input:\n%s", directive, priorContext, userText)

	result, err := e.analyzer.AnalyzeCosts(ctx, plan, metrics, prompt)
	if err != nil {
		return nil, fmt.Errorf("run analysis: %w", err)
	}

	analysis := &entity.Analysis{
		OwnerId:  ownerId,
		ThreadId: &threadId,
		Plan:     plan,
		Metrics:  metrics,
		Comment:  message,
		Result:   result,
	}
	if err := store.SaveAnalysis(ctx, analysis); err != nil {
		return nil, fmt.Errorf("save analysis: %w", err)
	}

	userMsg := &entity.Message{
		OwnerId:    ownerId,
		ThreadId:   threadId,
		Role:       constant.MessageRoleUser,
		Content:    userText,
		Relevant:   true,
		AnalysisId: &analysis.Id,
	}
	if err := store.SaveMessage(ctx, userMsg); err != nil {
		return nil, fmt.Errorf("save user message: %w", err)
	}

	assistantMsg := &entity.Message{
		OwnerId:    ownerId,
		ThreadId:   threadId,
		Role:       constant.MessageRoleAssistant,
		Content:    result,
		Relevant:   true,
		AnalysisId: &analysis.Id,
	}
	if err := store.SaveMessage(ctx, assistantMsg); err != nil {
		return nil, fmt.Errorf("save assistant message: %w", err)
	}

	e.logger.Printf("[CONTINUITY] analysis %d saved on thread %s", analysis.Id, threadId)

	return &Result{
		Reply:         result,
		Relevant:      true,
		AnalysisId:    &analysis.Id,
		UserMessageId: &userMsg.Id,
	}, nil
}

// formatContext renders recent messages oldest-first as "role: content" lines.
// Input arrives newest-first from the store.
func formatContext(recent []*entity.Message) string {
	lines := make([]string, 0, len(recent))
	for i := len(recent) - 1; i >= 0; i-- {
		lines = append(lines, fmt.Sprintf("%s: %s", recent[i].Role, recent[i].Content))
	}
	return strings.Join(lines, "\n")
}
