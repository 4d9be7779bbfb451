package domain

import (
	"context"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/davidbz/quizforge/internal/observability"
)

// GenerationConfig is the process-wide default sampling configuration applied
// to every generation request.
type GenerationConfig struct {
	Model        string
	Temperature  float64
	MaxTokens    int
	UsageLogging bool
}

// GeneratorService orchestrates the end-to-end generation flow: quota gate,
// prompt construction, completion call, JSON recovery, schema validation and
// usage logging.
type GeneratorService struct {
	client         CompletionClient
	quota          *QuotaService
	store          UsageLogStore
	costCalculator CostCalculator
	cfg            GenerationConfig
}

// NewGeneratorService creates a new generator service (DI constructor).
func NewGeneratorService(
	client CompletionClient,
	quota *QuotaService,
	store UsageLogStore,
	costCalculator CostCalculator,
	cfg GenerationConfig,
) (*GeneratorService, error) {
	if client == nil {
		return nil, errors.New("completion client cannot be nil")
	}
	if quota == nil {
		return nil, errors.New("quota service cannot be nil")
	}
	if store == nil {
		return nil, errors.New("usage log store cannot be nil")
	}

	return &GeneratorService{
		client:         client,
		quota:          quota,
		store:          store,
		costCalculator: costCalculator,
		cfg:            cfg,
	}, nil
}

// Generate turns a free-text prompt into a validated quiz for the given user.
// Usage is logged for every attempt that consumed tokens, whether or not the
// generated content survived validation; the log write happens before any
// failure surfaces so quota accounting cannot be bypassed.
func (s *GeneratorService) Generate(ctx context.Context, userID, prompt string) (*GenerationResult, error) {
	if userID == "" {
		return nil, NewError(ErrorCodeValidation, "user ID cannot be empty")
	}
	// Length limits count characters, not bytes, so multibyte prompts are not
	// penalized.
	promptLen := utf8.RuneCountInString(prompt)
	if promptLen == 0 || promptLen > MaxPromptLength {
		return nil, NewError(ErrorCodeValidation,
			fmt.Sprintf("prompt must be between 1 and %d characters", MaxPromptLength)).
			WithDetail("prompt_length", promptLen)
	}

	logger := observability.FromContext(ctx)

	// Quota gate. No tokens are consumed at this stage.
	allowed, quota, err := s.quota.CanGenerate(ctx, userID)
	if err != nil {
		// A usage-store outage is our infrastructure failing, not the provider.
		return nil, WrapError(ErrorCodeInternal, "quota check failed", err)
	}
	if !allowed {
		logger.Info("generation blocked by quota",
			observability.Int("used", quota.Used),
			observability.Int("limit", quota.Limit))
		return nil, NewError(ErrorCodeQuotaExceeded, "generation quota exhausted").
			WithDetail("quota", quota)
	}

	// No response_format here: not every model honors structured output, and
	// the extraction layer has to cope with prose and fences regardless. The
	// prompt instructions plus ExtractJSON carry the format contract.
	built := BuildPrompt(prompt)
	req := &CompletionRequest{
		Model:       s.cfg.Model,
		Messages:    built.Messages(),
		Temperature: s.cfg.Temperature,
		MaxTokens:   s.cfg.MaxTokens,
	}

	result, err := s.client.Complete(ctx, req)
	if err != nil {
		// No result means no confirmed token consumption, so nothing to log.
		return nil, normalize(err)
	}

	// Token consumption is a fact about the provider call, not about the
	// validation outcome below. Log it before anything else can fail.
	s.logUsage(ctx, userID, result)

	raw, err := ExtractJSON(result.Content)
	if err != nil {
		logger.Warn("failed to recover JSON from model output",
			observability.Error(err),
			observability.Int("tokens_used", result.TokensUsed))
		return nil, normalize(err)
	}

	content, err := ValidateQuizContent(raw)
	if err != nil {
		logger.Warn("generated content failed validation",
			observability.Error(err),
			observability.Int("tokens_used", result.TokensUsed))
		return nil, normalize(err)
	}

	logger.Info("quiz generated",
		observability.Int("questions", len(content.Questions)),
		observability.Int("tokens_used", result.TokensUsed))

	return &GenerationResult{
		Content:     content,
		Model:       result.Model,
		Prompt:      prompt,
		Temperature: s.cfg.Temperature,
		TokensUsed:  result.TokensUsed,
	}, nil
}

// logUsage writes exactly one usage-log entry for a token-consuming attempt.
// Cost tracking is independent of request success and is never rolled back;
// a store failure is logged but does not fail the generation.
func (s *GeneratorService) logUsage(ctx context.Context, userID string, result *CompletionResult) {
	if !s.cfg.UsageLogging || result.TokensUsed <= 0 {
		return
	}

	entry := &UsageLogEntry{
		UserID:      userID,
		ModelUsed:   result.Model,
		TokensUsed:  result.TokensUsed,
		Cost:        0,
		RequestedAt: time.Now().UTC(),
	}

	if s.costCalculator != nil {
		cost, _ := s.costCalculator.Calculate(ctx, result.Model, result.Metadata)
		entry.Cost = cost
	}

	if err := s.store.Append(ctx, entry); err != nil {
		observability.FromContext(ctx).Error("failed to write usage log entry",
			observability.Error(err),
			observability.Int("tokens_used", entry.TokensUsed))
		return
	}

	observability.FromContext(ctx).Debug("usage recorded",
		observability.Int("tokens_used", entry.TokensUsed),
		observability.Float64("cost", entry.Cost))
}

// normalize guarantees every failure crossing the orchestrator boundary is a
// typed error; nothing lower-level leaks to the caller.
func normalize(err error) error {
	if _, ok := AsError(err); ok {
		return err
	}
	return WrapError(ErrorCodeAPI, "generation failed", err)
}
