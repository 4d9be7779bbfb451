package httpserver

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/davidbz/quizforge/internal/domain"
	"github.com/davidbz/quizforge/internal/observability"
)

// userIDHeader carries the caller identity, supplied by the external auth
// layer in front of this service. An empty header is rejected; this service
// does not authenticate.
const userIDHeader = "X-User-Id"

// Handler handles HTTP requests.
type Handler struct {
	generator *domain.GeneratorService
	quota     *domain.QuotaService
}

// NewHandler creates a new HTTP handler (DI constructor).
func NewHandler(generator *domain.GeneratorService, quota *domain.QuotaService) *Handler {
	return &Handler{
		generator: generator,
		quota:     quota,
	}
}

type generateRequest struct {
	Prompt string `json:"prompt"`
}

type errorBody struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Quota   *domain.UserQuota `json:"quota,omitempty"`
}

type errorResponse struct {
	Error errorBody `json:"error"`
}

// HandleGenerate processes quiz generation requests.
func (h *Handler) HandleGenerate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	// Early validation.
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	userID := r.Header.Get(userIDHeader)
	if userID == "" {
		http.Error(w, "user identity not supplied in "+userIDHeader+" header", http.StatusUnauthorized)
		return
	}

	// Inject user ID into context for downstream logging.
	ctx = observability.WithUserID(ctx, userID)

	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	logger := observability.FromContext(ctx)
	logger.Info("generation request received",
		observability.Int("prompt_length", len(req.Prompt)))

	result, err := h.generator.Generate(ctx, userID, req.Prompt)
	if err != nil {
		logger.Error("generation failed", observability.Error(err))
		h.writeError(w, err)
		return
	}

	logger.Info("generation succeeded",
		observability.Int("questions", len(result.Content.Questions)),
		observability.Int("tokens_used", result.TokensUsed))

	h.writeJSON(ctx, w, http.StatusOK, result)
}

// HandleQuota returns the caller's current quota snapshot.
func (h *Handler) HandleQuota(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	userID := r.Header.Get(userIDHeader)
	if userID == "" {
		http.Error(w, "user identity not supplied in "+userIDHeader+" header", http.StatusUnauthorized)
		return
	}

	ctx = observability.WithUserID(ctx, userID)

	quota, err := h.quota.GetQuota(ctx, userID)
	if err != nil {
		observability.FromContext(ctx).Error("quota lookup failed", observability.Error(err))
		http.Error(w, "failed to read quota", http.StatusInternalServerError)
		return
	}

	h.writeJSON(ctx, w, http.StatusOK, quota)
}

// HandleHealth handles health check requests.
func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(map[string]string{
		"status": "healthy",
	}); err != nil {
		// Already written status, can't change it, just log.
		return
	}
}

// writeError maps a typed error onto an HTTP status and the stable
// user-facing message for its code. Internal messages and causes stay in the
// logs.
func (h *Handler) writeError(w http.ResponseWriter, err error) {
	typed, ok := domain.AsError(err)
	if !ok {
		typed = domain.WrapError(domain.ErrorCodeAPI, "unexpected failure", err)
	}

	body := errorBody{
		Code:    string(typed.Code),
		Message: typed.UserMessage(),
		Quota:   nil,
	}

	// Quota failures surface the snapshot so callers can display remaining/limit.
	if typed.Code == domain.ErrorCodeQuotaExceeded {
		if quota, quotaOk := typed.Details["quota"].(*domain.UserQuota); quotaOk {
			body.Quota = quota
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusForCode(typed.Code))
	_ = json.NewEncoder(w).Encode(errorResponse{Error: body})
}

// statusForCode maps error codes onto HTTP statuses.
func statusForCode(code domain.ErrorCode) int {
	switch code {
	case domain.ErrorCodeValidation:
		return http.StatusBadRequest
	case domain.ErrorCodeQuotaExceeded, domain.ErrorCodeRateLimit:
		return http.StatusTooManyRequests
	case domain.ErrorCodeTimeout:
		return http.StatusGatewayTimeout
	case domain.ErrorCodeNetwork, domain.ErrorCodeAPI,
		domain.ErrorCodeInvalidResponse, domain.ErrorCodeParse:
		return http.StatusBadGateway
	case domain.ErrorCodeConfig, domain.ErrorCodeInternal:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) writeJSON(ctx context.Context, w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		observability.FromContext(ctx).Error("failed to encode response", observability.Error(err))
	}
}
