package gate

import (
	"context"
	"log"
	"strings"
	"sync"

	"finops-copilot-be/internal/constant"
	"finops-copilot-be/pkg/llm"
)

// Relevance holds the classifier verdict for each input of a chat turn.
type Relevance struct {
	Plan    bool
	Metrics bool
	Message bool
}

// Any reports whether at least one input passed the gate.
func (r Relevance) Any() bool {
	return r.Plan || r.Metrics || r.Message
}

// RelevanceGate decides whether free-form input belongs to the cloud cost
// domain before any expensive analysis runs.
type RelevanceGate struct {
	classifier llm.LLMProvider
	logger     *log.Logger
}

// NewRelevanceGate creates a gate backed by the given classifier model.
func NewRelevanceGate(classifier llm.LLMProvider, logger *log.Logger) *RelevanceGate {
	return &RelevanceGate{
		classifier: classifier,
		logger:     logger,
	}
}

// IsRelevant classifies a single piece of text. Blank input never reaches the
// model and is always irrelevant.
func (g *RelevanceGate) IsRelevant(ctx context.Context, text string) (bool, error) {
	if strings.TrimSpace(text) == "" {
		return false, nil
	}

	answer, err := g.classifier.Chat(ctx, []llm.Message{
		{Role: "system", Content: constant.RelevanceSystemPrompt},
		{Role: "user", Content: constant.RelevanceQuestionPrefix + text},
	},
		llm.WithTemperature(0.2),
		llm.WithMaxTokens(10),
	)
	if err != nil {
		return false, err
	}

	// The model is told to answer YES or NO but occasionally pads the
	// answer; only the leading letter counts.
	normalized := strings.ToUpper(strings.TrimSpace(answer))
	return strings.HasPrefix(normalized, "Y"), nil
}

// Score classifies the three inputs of a chat turn concurrently.
func (g *RelevanceGate) Score(ctx context.Context, plan, metrics, message string) (Relevance, error) {
	var (
		wg     sync.WaitGroup
		result Relevance
		errs   [3]error
	)

	wg.Add(3)
	go func() {
		defer wg.Done()
		result.Plan, errs[0] = g.IsRelevant(ctx, plan)
	}()
	go func() {
		defer wg.Done()
		result.Metrics, errs[1] = g.IsRelevant(ctx, metrics)
	}()
	go func() {
		defer wg.Done()
		result.Message, errs[2] = g.IsRelevant(ctx, message)
	}()
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			g.logger.Printf("[GATE] classifier error: %v", err)
			return Relevance{}, err
		}
	}

	return result, nil
}
