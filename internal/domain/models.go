package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// Message roles accepted by the completion provider.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Request parameter bounds enforced before any network I/O.
const (
	MinTemperature     = 0.0
	MaxTemperature     = 2.0
	MinTopP            = 0.0
	MaxTopP            = 1.0
	MinPenalty         = -2.0
	MaxPenalty         = 2.0
	MaxPromptLength    = 1000
	MaxTitleLength     = 200
	MaxDescriptionLen  = 500
	MinQuestions       = 5
	MaxQuestions       = 10
	OptionsPerQuestion = 4
	CorrectPerQuestion = 1
)

// Message represents a chat message.
type Message struct {
	Role    string `json:"role"` // user, assistant, system
	Content string `json:"content"`
}

// ResponseFormat asks the provider for structured output.
type ResponseFormat struct {
	Type string `json:"type"` // json_object or json_schema
}

// CompletionRequest represents a single request to the completion provider.
type CompletionRequest struct {
	Model            string          `json:"model"`
	Messages         []Message       `json:"messages"`
	Temperature      float64         `json:"temperature,omitempty"`
	MaxTokens        int             `json:"max_tokens,omitempty"`
	TopP             *float64        `json:"top_p,omitempty"`
	FrequencyPenalty *float64        `json:"frequency_penalty,omitempty"`
	PresencePenalty  *float64        `json:"presence_penalty,omitempty"`
	ResponseFormat   *ResponseFormat `json:"response_format,omitempty"`
}

// Validate checks all request fields before transmission. It collects every
// violation rather than stopping at the first one.
func (r *CompletionRequest) Validate() error {
	var violations []string

	if r.Model == "" {
		violations = append(violations, "model: must not be empty")
	}

	if len(r.Messages) == 0 {
		violations = append(violations, "messages: must not be empty")
	}
	for i, msg := range r.Messages {
		switch msg.Role {
		case RoleSystem, RoleUser, RoleAssistant:
		default:
			violations = append(violations, fmt.Sprintf("messages[%d].role: unknown role %q", i, msg.Role))
		}
		if msg.Content == "" {
			violations = append(violations, fmt.Sprintf("messages[%d].content: must not be empty", i))
		}
	}

	if r.Temperature < MinTemperature || r.Temperature > MaxTemperature {
		violations = append(violations, fmt.Sprintf("temperature: must be within [%g, %g]", MinTemperature, MaxTemperature))
	}
	if r.MaxTokens < 1 {
		violations = append(violations, "max_tokens: must be at least 1")
	}
	if r.TopP != nil && (*r.TopP < MinTopP || *r.TopP > MaxTopP) {
		violations = append(violations, fmt.Sprintf("top_p: must be within [%g, %g]", MinTopP, MaxTopP))
	}
	if r.FrequencyPenalty != nil && (*r.FrequencyPenalty < MinPenalty || *r.FrequencyPenalty > MaxPenalty) {
		violations = append(violations, fmt.Sprintf("frequency_penalty: must be within [%g, %g]", MinPenalty, MaxPenalty))
	}
	if r.PresencePenalty != nil && (*r.PresencePenalty < MinPenalty || *r.PresencePenalty > MaxPenalty) {
		violations = append(violations, fmt.Sprintf("presence_penalty: must be within [%g, %g]", MinPenalty, MaxPenalty))
	}

	if len(violations) > 0 {
		return NewError(ErrorCodeValidation, "invalid completion request").
			WithDetail("violations", violations)
	}
	return nil
}

// CompletionMetadata carries provider envelope fields that are useful for
// diagnostics but not for correctness.
type CompletionMetadata struct {
	ID               string `json:"id"`
	Created          int64  `json:"created"`
	PromptTokens     int    `json:"prompt_tokens,omitempty"`
	CompletionTokens int    `json:"completion_tokens,omitempty"`
}

// CompletionResult is the decoded provider response. TokensUsed is
// authoritative for quota and cost logging even when Content later fails
// validation.
type CompletionResult struct {
	Content      string             `json:"content"`
	TokensUsed   int                `json:"tokens_used"`
	Model        string             `json:"model"`
	FinishReason string             `json:"finish_reason"`
	Metadata     CompletionMetadata `json:"metadata"`
}

// QuizOption is a single answer choice.
type QuizOption struct {
	Text      string `json:"text"`
	IsCorrect bool   `json:"is_correct"`
}

// QuizQuestion is one generated question with exactly four options, exactly
// one of which is correct.
type QuizQuestion struct {
	Content     string       `json:"content"`
	Explanation string       `json:"explanation,omitempty"`
	Options     []QuizOption `json:"options"`
}

// QuizContent is the validated, trusted shape handed to callers. Anything of
// this type has passed ValidateQuizContent.
type QuizContent struct {
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Questions   []QuizQuestion `json:"questions"`
}

// UserQuota is a computed view over usage-log rows, derived on each check.
type UserQuota struct {
	Used            int  `json:"used"`
	Limit           int  `json:"limit"`
	Remaining       int  `json:"remaining"`
	HasReachedLimit bool `json:"has_reached_limit"`
}

// NewUserQuota derives the quota view from a usage count and the configured limit.
func NewUserQuota(used, limit int) *UserQuota {
	remaining := limit - used
	if remaining < 0 {
		remaining = 0
	}
	return &UserQuota{
		Used:            used,
		Limit:           limit,
		Remaining:       remaining,
		HasReachedLimit: used >= limit,
	}
}

// UsageLogEntry is one append-only row per token-consuming generation attempt,
// successful or not. Counting attempts rather than saved quizzes prevents
// unlimited free generation via discard-and-retry.
type UsageLogEntry struct {
	UserID      string    `json:"user_id"`
	ModelUsed   string    `json:"model_used"`
	TokensUsed  int       `json:"tokens_used"`
	Cost        float64   `json:"cost,omitempty"`
	RequestedAt time.Time `json:"requested_at"`
}

// GenerationResult bundles validated quiz content with the parameters used to
// produce it, for downstream persistence by the quiz-creation path.
type GenerationResult struct {
	Content     *QuizContent `json:"content"`
	Model       string       `json:"model"`
	Prompt      string       `json:"prompt"`
	Temperature float64      `json:"temperature"`
	TokensUsed  int          `json:"tokens_used"`
}

// RawJSON is a parsed-but-unvalidated JSON payload recovered from model output.
type RawJSON = json.RawMessage
