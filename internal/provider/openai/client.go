// Package openai implements the domain.CompletionClient interface over the
// OpenAI chat completions HTTP API. It owns request validation, timeout
// handling and the mapping of transport, HTTP and envelope failures onto the
// domain error taxonomy. It deliberately performs no retries: retry policy is
// a caller concern, and a retry hidden inside a "successful" call would
// duplicate token consumption.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/davidbz/quizforge/internal/domain"
	"github.com/davidbz/quizforge/internal/observability"
)

const providerName = "openai"

const defaultTimeoutSeconds = 60

// Client talks to the OpenAI chat completions endpoint.
type Client struct {
	apiKey     string
	baseURL    string
	timeout    time.Duration
	httpClient *http.Client
}

// NewClient creates a new OpenAI completion client. A missing API key is a
// configuration error surfaced at startup, not per request.
func NewClient(config Config) (*Client, error) {
	if config.APIKey == "" {
		return nil, domain.NewError(domain.ErrorCodeConfig, "OpenAI API key is required")
	}

	timeout := time.Duration(config.Timeout) * time.Second
	if timeout <= 0 {
		timeout = defaultTimeoutSeconds * time.Second
	}

	return &Client{
		apiKey:  config.APIKey,
		baseURL: config.BaseURL,
		timeout: timeout,
		// The deadline is applied per call via context so the error can carry
		// the configured value; the transport itself has no extra timeout.
		httpClient: &http.Client{},
	}, nil
}

// Name returns the client identifier.
func (c *Client) Name() string {
	return providerName
}

// envelope is the provider response structure, decoded once at this boundary.
type envelope struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Created int64  `json:"created"`
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Usage *struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}

// errorEnvelope is the structured error body OpenAI returns on non-2xx responses.
type errorEnvelope struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    string `json:"code"`
	} `json:"error"`
}

// Complete sends a single completion request. Invalid requests fail before
// any network I/O.
func (c *Client) Complete(ctx context.Context, req *domain.CompletionRequest) (*domain.CompletionResult, error) {
	if req == nil {
		return nil, domain.NewError(domain.ErrorCodeValidation, "request cannot be nil")
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	logger := observability.FromContext(ctx)
	logger.Debug("calling OpenAI API", observability.String("model", req.Model))

	body, err := json.Marshal(req)
	if err != nil {
		return nil, domain.WrapError(domain.ErrorCodeValidation, "failed to encode request", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		c.baseURL+"/chat/completions",
		bytes.NewReader(body),
	)
	if err != nil {
		return nil, domain.WrapError(domain.ErrorCodeNetwork, "failed to create request", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, c.mapTransportError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, c.mapHTTPError(resp)
	}

	result, err := c.parseEnvelope(resp.Body, req)
	if err != nil {
		return nil, err
	}

	logger.Debug("OpenAI API call succeeded",
		observability.Int("tokens_used", result.TokensUsed),
		observability.String("finish_reason", result.FinishReason))

	return result, nil
}

// mapTransportError classifies failures that occurred before a response was
// received: deadline expiry becomes a timeout carrying the configured value,
// everything else is a network failure wrapping the cause for diagnostics.
func (c *Client) mapTransportError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return domain.WrapError(domain.ErrorCodeTimeout,
			fmt.Sprintf("request exceeded the configured timeout of %s", c.timeout), err).
			WithDetail("timeout", c.timeout.String())
	}
	if errors.Is(err, context.Canceled) {
		return domain.WrapError(domain.ErrorCodeNetwork, "request was cancelled", err)
	}
	return domain.WrapError(domain.ErrorCodeNetwork, "request failed before a response was received", err)
}

// mapHTTPError maps a non-2xx response onto the error taxonomy, preferring
// the provider's structured error message over the raw status text.
func (c *Client) mapHTTPError(resp *http.Response) error {
	message := resp.Status
	if body, readErr := io.ReadAll(resp.Body); readErr == nil {
		var parsed errorEnvelope
		if json.Unmarshal(body, &parsed) == nil && parsed.Error.Message != "" {
			message = parsed.Error.Message
		}
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return domain.NewError(domain.ErrorCodeRateLimit, message).
			WithDetail("status_code", resp.StatusCode)

	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return domain.NewError(domain.ErrorCodeAPI, message).
			WithDetail("status_code", resp.StatusCode).
			WithDetail("kind", domain.APIKindAuth)

	case resp.StatusCode >= http.StatusInternalServerError:
		return domain.NewError(domain.ErrorCodeAPI, message).
			WithDetail("status_code", resp.StatusCode).
			WithDetail("kind", domain.APIKindServer)

	default:
		return domain.NewError(domain.ErrorCodeAPI, message).
			WithDetail("status_code", resp.StatusCode)
	}
}

// parseEnvelope decodes the provider envelope into a CompletionResult. A
// missing usage block is tolerated (tokens default to 0); a missing message
// body is not.
func (c *Client) parseEnvelope(body io.Reader, req *domain.CompletionRequest) (*domain.CompletionResult, error) {
	var env envelope
	if err := json.NewDecoder(body).Decode(&env); err != nil {
		return nil, domain.WrapError(domain.ErrorCodeInvalidResponse, "failed to decode provider envelope", err)
	}

	if len(env.Choices) == 0 {
		return nil, domain.NewError(domain.ErrorCodeInvalidResponse, "provider envelope contains no choices")
	}

	content := env.Choices[0].Message.Content
	if content == "" {
		return nil, domain.NewError(domain.ErrorCodeInvalidResponse, "provider envelope contains no message content")
	}

	// When structured output was requested, the message body must decode as
	// JSON on its own; anything else is a parse failure with the raw body
	// (truncated) attached for diagnostics.
	if req.ResponseFormat != nil && !json.Valid([]byte(content)) {
		return nil, domain.NewError(domain.ErrorCodeParse, "structured output is not valid JSON").
			WithDetail("content", truncate(content, maxErrorContentLength))
	}

	result := &domain.CompletionResult{
		Content:      content,
		TokensUsed:   0,
		Model:        env.Model,
		FinishReason: env.Choices[0].FinishReason,
		Metadata: domain.CompletionMetadata{
			ID:               env.ID,
			Created:          env.Created,
			PromptTokens:     0,
			CompletionTokens: 0,
		},
	}

	// Usage accounting is best-effort telemetry, never correctness-critical.
	if env.Usage != nil {
		result.TokensUsed = env.Usage.TotalTokens
		result.Metadata.PromptTokens = env.Usage.PromptTokens
		result.Metadata.CompletionTokens = env.Usage.CompletionTokens
	}

	return result, nil
}

const maxErrorContentLength = 500

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
