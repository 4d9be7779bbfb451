package httpserver //nolint:testpackage // Handler fields are wired directly

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/davidbz/quizforge/internal/domain"
)

type stubStore struct {
	entries []*domain.UsageLogEntry
}

func (s *stubStore) Append(_ context.Context, entry *domain.UsageLogEntry) error {
	s.entries = append(s.entries, entry)
	return nil
}

func (s *stubStore) CountByUser(_ context.Context, userID string) (int, error) {
	count := 0
	for _, entry := range s.entries {
		if entry.UserID == userID {
			count++
		}
	}
	return count, nil
}

type stubClient struct {
	completeFunc func(ctx context.Context, req *domain.CompletionRequest) (*domain.CompletionResult, error)
}

func (c *stubClient) Complete(ctx context.Context, req *domain.CompletionRequest) (*domain.CompletionResult, error) {
	return c.completeFunc(ctx, req)
}

func (c *stubClient) Name() string { return "stub" }

const fencedQuiz = "```json\n" + `{
  "title": "Go Basics",
  "description": "Fundamentals of the Go language.",
  "questions": [
    {"content": "Q1", "options": [{"text": "a", "is_correct": true}, {"text": "b", "is_correct": false}, {"text": "c", "is_correct": false}, {"text": "d", "is_correct": false}]},
    {"content": "Q2", "options": [{"text": "a", "is_correct": true}, {"text": "b", "is_correct": false}, {"text": "c", "is_correct": false}, {"text": "d", "is_correct": false}]},
    {"content": "Q3", "options": [{"text": "a", "is_correct": true}, {"text": "b", "is_correct": false}, {"text": "c", "is_correct": false}, {"text": "d", "is_correct": false}]},
    {"content": "Q4", "options": [{"text": "a", "is_correct": true}, {"text": "b", "is_correct": false}, {"text": "c", "is_correct": false}, {"text": "d", "is_correct": false}]},
    {"content": "Q5", "options": [{"text": "a", "is_correct": true}, {"text": "b", "is_correct": false}, {"text": "c", "is_correct": false}, {"text": "d", "is_correct": false}]}
  ]
}` + "\n```"

func newTestHandler(t *testing.T, client domain.CompletionClient, store domain.UsageLogStore, limit int) *Handler {
	t.Helper()

	quota, err := domain.NewQuotaService(store, limit)
	require.NoError(t, err)

	generator, err := domain.NewGeneratorService(client, quota, store, nil, domain.GenerationConfig{
		Model:        "gpt-4-turbo",
		Temperature:  0.7,
		MaxTokens:    2048,
		UsageLogging: true,
	})
	require.NoError(t, err)

	return NewHandler(generator, quota)
}

func successClient() *stubClient {
	return &stubClient{
		completeFunc: func(_ context.Context, req *domain.CompletionRequest) (*domain.CompletionResult, error) {
			return &domain.CompletionResult{
				Content:      fencedQuiz,
				TokensUsed:   300,
				Model:        req.Model,
				FinishReason: "stop",
			}, nil
		},
	}
}

func generateRequestBody(t *testing.T, prompt string) *bytes.Reader {
	t.Helper()
	body, err := json.Marshal(map[string]string{"prompt": prompt})
	require.NoError(t, err)
	return bytes.NewReader(body)
}

func TestHandleGenerate(t *testing.T) {
	t.Run("should return the generated quiz", func(t *testing.T) {
		handler := newTestHandler(t, successClient(), &stubStore{}, 2)

		req := httptest.NewRequest(http.MethodPost, "/v1/quizzes/generate", generateRequestBody(t, "Go basics"))
		req.Header.Set("X-User-Id", "user-1")
		rec := httptest.NewRecorder()

		handler.HandleGenerate(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, "application/json", rec.Header().Get("Content-Type"))

		var result domain.GenerationResult
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&result))
		require.Equal(t, "Go Basics", result.Content.Title)
		require.Len(t, result.Content.Questions, 5)
		require.Equal(t, 300, result.TokensUsed)
	})

	t.Run("should reject requests without a user header", func(t *testing.T) {
		handler := newTestHandler(t, successClient(), &stubStore{}, 2)

		req := httptest.NewRequest(http.MethodPost, "/v1/quizzes/generate", generateRequestBody(t, "Go basics"))
		rec := httptest.NewRecorder()

		handler.HandleGenerate(rec, req)

		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("should reject non-POST methods", func(t *testing.T) {
		handler := newTestHandler(t, successClient(), &stubStore{}, 2)

		req := httptest.NewRequest(http.MethodGet, "/v1/quizzes/generate", nil)
		req.Header.Set("X-User-Id", "user-1")
		rec := httptest.NewRecorder()

		handler.HandleGenerate(rec, req)

		require.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	})

	t.Run("should reject a malformed body", func(t *testing.T) {
		handler := newTestHandler(t, successClient(), &stubStore{}, 2)

		req := httptest.NewRequest(http.MethodPost, "/v1/quizzes/generate", strings.NewReader("{not json"))
		req.Header.Set("X-User-Id", "user-1")
		rec := httptest.NewRecorder()

		handler.HandleGenerate(rec, req)

		require.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("should return 400 with the stable message on validation failure", func(t *testing.T) {
		handler := newTestHandler(t, successClient(), &stubStore{}, 2)

		req := httptest.NewRequest(http.MethodPost, "/v1/quizzes/generate", generateRequestBody(t, ""))
		req.Header.Set("X-User-Id", "user-1")
		rec := httptest.NewRecorder()

		handler.HandleGenerate(rec, req)

		require.Equal(t, http.StatusBadRequest, rec.Code)

		var resp struct {
			Error struct {
				Code    string `json:"code"`
				Message string `json:"message"`
			} `json:"error"`
		}
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		require.Equal(t, "VALIDATION_ERROR", resp.Error.Code)
		require.NotEmpty(t, resp.Error.Message)
	})

	t.Run("should return 429 with the quota snapshot when the limit is reached", func(t *testing.T) {
		store := &stubStore{entries: []*domain.UsageLogEntry{
			{UserID: "user-1"}, {UserID: "user-1"},
		}}
		handler := newTestHandler(t, successClient(), store, 2)

		req := httptest.NewRequest(http.MethodPost, "/v1/quizzes/generate", generateRequestBody(t, "Go basics"))
		req.Header.Set("X-User-Id", "user-1")
		rec := httptest.NewRecorder()

		handler.HandleGenerate(rec, req)

		require.Equal(t, http.StatusTooManyRequests, rec.Code)

		var resp struct {
			Error struct {
				Code  string            `json:"code"`
				Quota *domain.UserQuota `json:"quota"`
			} `json:"error"`
		}
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		require.Equal(t, "QUOTA_EXCEEDED", resp.Error.Code)
		require.NotNil(t, resp.Error.Quota)
		require.Equal(t, 2, resp.Error.Quota.Used)
		require.Equal(t, 0, resp.Error.Quota.Remaining)
	})

	t.Run("should map upstream failures onto HTTP statuses", func(t *testing.T) {
		cases := []struct {
			name       string
			err        error
			wantStatus int
			wantCode   string
		}{
			{
				name:       "rate limit",
				err:        domain.NewError(domain.ErrorCodeRateLimit, "429 from provider"),
				wantStatus: http.StatusTooManyRequests,
				wantCode:   "RATE_LIMIT_ERROR",
			},
			{
				name:       "timeout",
				err:        domain.NewError(domain.ErrorCodeTimeout, "deadline exceeded"),
				wantStatus: http.StatusGatewayTimeout,
				wantCode:   "TIMEOUT_ERROR",
			},
			{
				name:       "network",
				err:        domain.NewError(domain.ErrorCodeNetwork, "connection refused"),
				wantStatus: http.StatusBadGateway,
				wantCode:   "NETWORK_ERROR",
			},
			{
				name:       "api",
				err:        domain.NewError(domain.ErrorCodeAPI, "500 from provider"),
				wantStatus: http.StatusBadGateway,
				wantCode:   "API_ERROR",
			},
			{
				name:       "internal",
				err:        domain.NewError(domain.ErrorCodeInternal, "usage store unreachable"),
				wantStatus: http.StatusInternalServerError,
				wantCode:   "INTERNAL_ERROR",
			},
		}

		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				client := &stubClient{
					completeFunc: func(_ context.Context, _ *domain.CompletionRequest) (*domain.CompletionResult, error) {
						return nil, tc.err
					},
				}
				handler := newTestHandler(t, client, &stubStore{}, 2)

				req := httptest.NewRequest(http.MethodPost, "/v1/quizzes/generate", generateRequestBody(t, "Go basics"))
				req.Header.Set("X-User-Id", "user-1")
				rec := httptest.NewRecorder()

				handler.HandleGenerate(rec, req)

				require.Equal(t, tc.wantStatus, rec.Code)

				var resp struct {
					Error struct {
						Code string `json:"code"`
					} `json:"error"`
				}
				require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
				require.Equal(t, tc.wantCode, resp.Error.Code)
			})
		}
	})

	t.Run("should not leak internal messages in error bodies", func(t *testing.T) {
		client := &stubClient{
			completeFunc: func(_ context.Context, _ *domain.CompletionRequest) (*domain.CompletionResult, error) {
				return nil, domain.NewError(domain.ErrorCodeAPI, "api key sk-secret rejected upstream")
			},
		}
		handler := newTestHandler(t, client, &stubStore{}, 2)

		req := httptest.NewRequest(http.MethodPost, "/v1/quizzes/generate", generateRequestBody(t, "Go basics"))
		req.Header.Set("X-User-Id", "user-1")
		rec := httptest.NewRecorder()

		handler.HandleGenerate(rec, req)

		require.Equal(t, http.StatusBadGateway, rec.Code)
		require.NotContains(t, rec.Body.String(), "sk-secret")
	})
}

func TestHandleQuota(t *testing.T) {
	t.Run("should return the quota snapshot", func(t *testing.T) {
		store := &stubStore{entries: []*domain.UsageLogEntry{{UserID: "user-1"}}}
		handler := newTestHandler(t, successClient(), store, 2)

		req := httptest.NewRequest(http.MethodGet, "/v1/quota", nil)
		req.Header.Set("X-User-Id", "user-1")
		rec := httptest.NewRecorder()

		handler.HandleQuota(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)

		var quota domain.UserQuota
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&quota))
		require.Equal(t, 1, quota.Used)
		require.Equal(t, 2, quota.Limit)
		require.Equal(t, 1, quota.Remaining)
		require.False(t, quota.HasReachedLimit)
	})

	t.Run("should reject requests without a user header", func(t *testing.T) {
		handler := newTestHandler(t, successClient(), &stubStore{}, 2)

		req := httptest.NewRequest(http.MethodGet, "/v1/quota", nil)
		rec := httptest.NewRecorder()

		handler.HandleQuota(rec, req)

		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("should reject non-GET methods", func(t *testing.T) {
		handler := newTestHandler(t, successClient(), &stubStore{}, 2)

		req := httptest.NewRequest(http.MethodPost, "/v1/quota", nil)
		req.Header.Set("X-User-Id", "user-1")
		rec := httptest.NewRecorder()

		handler.HandleQuota(rec, req)

		require.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	})
}

func TestHandleHealth(t *testing.T) {
	t.Run("should report healthy", func(t *testing.T) {
		handler := newTestHandler(t, successClient(), &stubStore{}, 2)

		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		rec := httptest.NewRecorder()

		handler.HandleHealth(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)

		var body map[string]string
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
		require.Equal(t, "healthy", body["status"])
	})
}
