// Package echo provides a development client that returns a canned quiz
// without making external API calls. It implements the domain.CompletionClient
// interface with deterministic content, so the service can run locally
// without provider credentials. The canned output is wrapped in a markdown
// fence on purpose: it exercises the same JSON-recovery path real provider
// output goes through.
package echo

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/davidbz/quizforge/internal/domain"
	"github.com/davidbz/quizforge/internal/observability"
)

const (
	providerName = "echo"
	finishReason = "stop"
)

// Client implements the domain.CompletionClient interface for local development.
type Client struct {
	name string
}

// NewClient creates a new echo client. No configuration is required as this
// client operates entirely in-memory.
func NewClient() *Client {
	return &Client{
		name: providerName,
	}
}

// Name returns the client identifier.
func (c *Client) Name() string {
	return c.name
}

// Complete returns a deterministic well-formed quiz for the topic found in
// the last user message, with synthetic token accounting derived from the
// request size.
func (c *Client) Complete(ctx context.Context, req *domain.CompletionRequest) (*domain.CompletionResult, error) {
	if req == nil {
		return nil, domain.NewError(domain.ErrorCodeValidation, "request cannot be nil")
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	logger := observability.FromContext(ctx)
	logger.Debug("echo client serving canned quiz")

	topic := lastUserContent(req.Messages)
	content := "```json\n" + cannedQuiz(topic) + "\n```"

	promptTokens := countTokens(req.Messages)
	completionTokens := len(strings.Fields(content))

	return &domain.CompletionResult{
		Content:      content,
		TokensUsed:   promptTokens + completionTokens,
		Model:        req.Model,
		FinishReason: finishReason,
		Metadata: domain.CompletionMetadata{
			ID:               fmt.Sprintf("echo-%d", promptTokens+completionTokens),
			Created:          0,
			PromptTokens:     promptTokens,
			CompletionTokens: completionTokens,
		},
	}, nil
}

// lastUserContent finds the topic embedded in the most recent user message.
func lastUserContent(messages []domain.Message) string {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == domain.RoleUser {
			return messages[i].Content
		}
	}
	return "general knowledge"
}

// countTokens approximates token usage by word count.
func countTokens(messages []domain.Message) int {
	total := 0
	for _, msg := range messages {
		total += len(strings.Fields(msg.Content))
	}
	return total
}

// cannedQuiz renders a five-question quiz that satisfies the quiz content
// contract regardless of topic. The payload is built through json.Marshal so
// any topic text, including multibyte runes and control characters, is
// escaped as valid JSON.
func cannedQuiz(topic string) string {
	summary := topic
	if runes := []rune(summary); len(runes) > 60 {
		summary = string(runes[:60])
	}

	questions := make([]domain.QuizQuestion, 0, domain.MinQuestions)
	for i := 1; i <= domain.MinQuestions; i++ {
		questions = append(questions, domain.QuizQuestion{
			Content:     fmt.Sprintf("Echo question %d about: %s", i, summary),
			Explanation: "The first option is always correct in echo mode.",
			Options: []domain.QuizOption{
				{Text: "Correct answer", IsCorrect: true},
				{Text: "Wrong answer A", IsCorrect: false},
				{Text: "Wrong answer B", IsCorrect: false},
				{Text: "Wrong answer C", IsCorrect: false},
			},
		})
	}

	content := domain.QuizContent{
		Title:       "Echo Quiz",
		Description: "A canned quiz served by the echo client for local development.",
		Questions:   questions,
	}

	data, err := json.MarshalIndent(content, "", "  ")
	if err != nil {
		// QuizContent contains only marshalable fields.
		panic(fmt.Sprintf("failed to encode canned quiz: %v", err))
	}
	return string(data)
}
