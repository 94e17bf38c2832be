package gate

import (
	"context"
	"errors"
	"io"
	"log"
	"strings"
	"sync"
	"testing"

	"finops-copilot-be/pkg/llm"
)

// fakeClassifier returns canned answers and counts how often it is called.
type fakeClassifier struct {
	mu      sync.Mutex
	calls   int
	answers map[string]string // keyed by substring of the user prompt
	err     error
}

func (f *fakeClassifier) Chat(ctx context.Context, history []llm.Message, opts ...llm.Option) (string, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()

	if f.err != nil {
		return "", f.err
	}

	prompt := history[len(history)-1].Content
	for key, answer := range f.answers {
		if strings.Contains(prompt, key) {
			return answer, nil
		}
	}
	return "NO", nil
}

func (f *fakeClassifier) Generate(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	return f.Chat(ctx, []llm.Message{{Role: "user", Content: prompt}}, opts...)
}

func (f *fakeClassifier) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func discardLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func TestIsRelevantBlankInputSkipsModel(t *testing.T) {
	fake := &fakeClassifier{}
	g := NewRelevanceGate(fake, discardLogger())

	for _, input := range []string{"", "   ", "\n\t"} {
		relevant, err := g.IsRelevant(context.Background(), input)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if relevant {
			t.Errorf("blank input %q classified as relevant", input)
		}
	}

	if fake.callCount() != 0 {
		t.Errorf("expected 0 classifier calls for blank input, got %d", fake.callCount())
	}
}

func TestIsRelevantAnswerParsing(t *testing.T) {
	tests := []struct {
		name   string
		answer string
		want   bool
	}{
		{"upper yes", "YES", true},
		{"lower yes", "yes", true},
		{"padded yes", "  Yes, definitely.", true},
		{"bare y", "y", true},
		{"no", "NO", false},
		{"prose no", "Not at all", false},
		{"empty answer", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeClassifier{answers: map[string]string{"ec2 spend": tt.answer}}
			g := NewRelevanceGate(fake, discardLogger())

			got, err := g.IsRelevant(context.Background(), "ec2 spend is up")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("answer %q: got %v, want %v", tt.answer, got, tt.want)
			}
		})
	}
}

func TestScoreClassifiesEachInput(t *testing.T) {
	fake := &fakeClassifier{answers: map[string]string{
		"monthly aws bill": "YES",
		"cpu utilization":  "YES",
	}}
	g := NewRelevanceGate(fake, discardLogger())

	result, err := g.Score(context.Background(), "monthly aws bill csv", "cpu utilization csv", "lol nice weather")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !result.Plan || !result.Metrics {
		t.Errorf("expected plan and metrics relevant, got %+v", result)
	}
	if result.Message {
		t.Errorf("off-topic message classified as relevant")
	}
	if !result.Any() {
		t.Errorf("Any() should be true when any input is relevant")
	}
	if fake.callCount() != 3 {
		t.Errorf("expected 3 classifier calls, got %d", fake.callCount())
	}
}

func TestScoreSkipsBlankInputs(t *testing.T) {
	fake := &fakeClassifier{answers: map[string]string{"rightsizing": "YES"}}
	g := NewRelevanceGate(fake, discardLogger())

	result, err := g.Score(context.Background(), "", "", "what about rightsizing?")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Plan || result.Metrics {
		t.Errorf("blank inputs classified as relevant: %+v", result)
	}
	if !result.Message {
		t.Errorf("expected message to be relevant")
	}
	if fake.callCount() != 1 {
		t.Errorf("expected 1 classifier call, got %d", fake.callCount())
	}
}

func TestScorePropagatesClassifierError(t *testing.T) {
	fake := &fakeClassifier{err: errors.New("model unavailable")}
	g := NewRelevanceGate(fake, discardLogger())

	_, err := g.Score(context.Background(), "plan", "metrics", "message")
	if err == nil {
		t.Fatal("expected error from failing classifier")
	}
}
