package planner

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strings"
	"sync"

	"github.com/p-n-ai/pai-study/internal/ai"
)

// DefaultOptions are the option labels used by the placeholder quiz.
var DefaultOptions = []string{"A", "B", "C", "D"}

// QuizGenerator produces one quiz question for a topic.
type QuizGenerator interface {
	Generate(ctx context.Context, topic string) (QuizItem, error)
}

// RandomQuizGenerator produces a placeholder question whose answer is one of
// DefaultOptions picked uniformly at random.
type RandomQuizGenerator struct {
	mu  sync.Mutex
	rnd *rand.Rand // nil uses the global generator
}

// NewRandomQuizGenerator creates a placeholder quiz generator. A nil source
// uses the runtime's global random generator.
func NewRandomQuizGenerator(src rand.Source) *RandomQuizGenerator {
	g := &RandomQuizGenerator{}
	if src != nil {
		g.rnd = rand.New(src)
	}
	return g
}

func (g *RandomQuizGenerator) Generate(_ context.Context, topic string) (QuizItem, error) {
	return QuizItem{
		Question: "Sample question on " + topic,
		Options:  append([]string(nil), DefaultOptions...),
		Answer:   DefaultOptions[g.intN(len(DefaultOptions))],
	}, nil
}

func (g *RandomQuizGenerator) intN(n int) int {
	if g.rnd == nil {
		return rand.IntN(n)
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.rnd.IntN(n)
}

// Completer is the LLM call used by AIQuizGenerator. *ai.Router satisfies it.
type Completer interface {
	Complete(ctx context.Context, req ai.CompletionRequest) (ai.CompletionResponse, error)
}

const quizSystemPrompt = `You write multiple-choice practice questions for students.
Reply with a single JSON object and nothing else, in this form:
{"question": "...", "options": ["...", "...", "...", "..."], "answer": "..."}
There must be exactly four options and the answer must be copied exactly from the options.`

// AIQuizGenerator asks an LLM for a question and falls back to another
// generator when the call fails or the reply is unusable.
type AIQuizGenerator struct {
	llm      Completer
	fallback QuizGenerator
}

// NewAIQuizGenerator creates an LLM-backed quiz generator. A nil fallback
// uses a RandomQuizGenerator.
func NewAIQuizGenerator(llm Completer, fallback QuizGenerator) *AIQuizGenerator {
	if fallback == nil {
		fallback = NewRandomQuizGenerator(nil)
	}
	return &AIQuizGenerator{llm: llm, fallback: fallback}
}

func (g *AIQuizGenerator) Generate(ctx context.Context, topic string) (QuizItem, error) {
	resp, err := g.llm.Complete(ctx, ai.CompletionRequest{
		Messages: []ai.Message{
			{Role: "system", Content: quizSystemPrompt},
			{Role: "user", Content: "Topic: " + topic},
		},
		Task:        ai.TaskQuiz,
		MaxTokens:   512,
		Temperature: 0.7,
		JSON:        true,
	})
	if err != nil {
		slog.Warn("AI quiz generation failed, using placeholder", "topic", topic, "error", err)
		return g.fallback.Generate(ctx, topic)
	}

	item, err := parseQuizItem(resp.Content)
	if err != nil {
		slog.Warn("AI quiz reply rejected, using placeholder", "topic", topic, "error", err)
		return g.fallback.Generate(ctx, topic)
	}
	return item, nil
}

// parseQuizItem decodes and checks an LLM reply. Code fences around the JSON
// are tolerated.
func parseQuizItem(content string) (QuizItem, error) {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")

	var item QuizItem
	if err := json.Unmarshal([]byte(strings.TrimSpace(content)), &item); err != nil {
		return QuizItem{}, fmt.Errorf("decode quiz item: %w", err)
	}

	item.Question = strings.TrimSpace(item.Question)
	if item.Question == "" {
		return QuizItem{}, fmt.Errorf("quiz item has no question")
	}
	if len(item.Options) != len(DefaultOptions) {
		return QuizItem{}, fmt.Errorf("quiz item has %d options, want %d", len(item.Options), len(DefaultOptions))
	}
	for _, opt := range item.Options {
		if opt == item.Answer {
			return item, nil
		}
	}
	return QuizItem{}, fmt.Errorf("quiz answer %q is not one of the options", item.Answer)
}
