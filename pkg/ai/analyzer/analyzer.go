package analyzer

import (
	"context"
	"log"
	"strings"

	"finops-copilot-be/internal/constant"
	"finops-copilot-be/pkg/llm"
)

// CostAnalyzer turns a billing plan, usage metrics and an analyst comment
// into an optimization report via the generation model.
type CostAnalyzer struct {
	provider     llm.LLMProvider
	systemPrompt string
	temperature  float64
	maxTokens    int
	logger       *log.Logger
}

// NewCostAnalyzer creates an analyzer. An empty systemPrompt falls back to
// the built-in FinOps instruction.
func NewCostAnalyzer(provider llm.LLMProvider, systemPrompt string, temperature float64, maxTokens int, logger *log.Logger) *CostAnalyzer {
	if systemPrompt == "" {
		systemPrompt = constant.AnalysisSystemPrompt
	}
	return &CostAnalyzer{
		provider:     provider,
		systemPrompt: systemPrompt,
		temperature:  temperature,
		maxTokens:    maxTokens,
		logger:       logger,
	}
}

// AnalyzeCosts runs one analysis pass. Empty sections are omitted from the
// prompt so the model is not fed blank headings.
func (a *CostAnalyzer) AnalyzeCosts(ctx context.Context, plan, metrics, comment string) (string, error) {
	var b strings.Builder
	if comment != "" {
		b.WriteString(comment)
	}
	if strings.TrimSpace(plan) != "" {
		b.WriteString("\n\n[Billing Plan]\n")
		b.WriteString(plan)
	}
	if strings.TrimSpace(metrics) != "" {
		b.WriteString("\n\n[Usage Metrics]\n")
		b.WriteString(metrics)
	}

	a.logger.Printf("[ANALYZER] Running cost analysis (plan=%d bytes, metrics=%d bytes)", len(plan), len(metrics))

	opts := []llm.Option{llm.WithTemperature(a.temperature)}
	if a.maxTokens > 0 {
		opts = append(opts, llm.WithMaxTokens(a.maxTokens))
	}

	result, err := a.provider.Chat(ctx, []llm.Message{
		{Role: "system", Content: a.systemPrompt},
		{Role: "user", Content: b.String()},
	}, opts...)
	if err != nil {
		a.logger.Printf("[ANALYZER] LLM error: %v", err)
		return "", err
	}

	return result, nil
}
