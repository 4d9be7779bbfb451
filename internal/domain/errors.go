package domain

import (
	"errors"
	"fmt"
)

// ErrorCode is a stable machine-readable failure category. Codes are part of
// the external contract; messages are not.
type ErrorCode string

const (
	// ErrorCodeConfig indicates invalid or missing configuration (fatal at startup).
	ErrorCodeConfig ErrorCode = "CONFIG_ERROR"
	// ErrorCodeValidation indicates a malformed request or malformed generated content.
	ErrorCodeValidation ErrorCode = "VALIDATION_ERROR"
	// ErrorCodeNetwork indicates a transport-level failure before a response was received.
	ErrorCodeNetwork ErrorCode = "NETWORK_ERROR"
	// ErrorCodeTimeout indicates the configured request deadline was exceeded.
	ErrorCodeTimeout ErrorCode = "TIMEOUT_ERROR"
	// ErrorCodeRateLimit indicates the provider rejected the request with a 429.
	ErrorCodeRateLimit ErrorCode = "RATE_LIMIT_ERROR"
	// ErrorCodeAPI indicates any other non-2xx provider response.
	ErrorCodeAPI ErrorCode = "API_ERROR"
	// ErrorCodeInvalidResponse indicates the provider envelope was missing required fields.
	ErrorCodeInvalidResponse ErrorCode = "INVALID_RESPONSE"
	// ErrorCodeParse indicates the generated content could not be decoded as JSON.
	ErrorCodeParse ErrorCode = "PARSE_ERROR"
	// ErrorCodeQuotaExceeded indicates the user has exhausted their generation quota.
	ErrorCodeQuotaExceeded ErrorCode = "QUOTA_EXCEEDED"
	// ErrorCodeInternal indicates a failure in this service's own infrastructure,
	// such as the usage-log store. Never attributed to the AI provider.
	ErrorCodeInternal ErrorCode = "INTERNAL_ERROR"
)

// APIErrorKind tags an API_ERROR with the class of provider failure.
const (
	// APIKindAuth marks 401/403 responses (credential problem on our side).
	APIKindAuth = "auth"
	// APIKindServer marks 5xx responses (provider-side failure, retryable).
	APIKindServer = "server"
)

// Error is the typed error all pipeline failures normalize to before crossing
// the orchestrator boundary.
type Error struct {
	Code    ErrorCode
	Message string
	Details map[string]any
	Cause   error
}

// NewError creates a typed error with the given code and message.
func NewError(code ErrorCode, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Details: nil,
		Cause:   nil,
	}
}

// WrapError creates a typed error wrapping an underlying cause.
func WrapError(code ErrorCode, message string, cause error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Details: nil,
		Cause:   cause,
	}
}

// WithDetail attaches a key/value pair to the error's details and returns the
// error for chaining.
func (e *Error) WithDetail(key string, value any) *Error {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is compares errors by code so call sites can match with errors.Is.
func (e *Error) Is(target error) bool {
	var other *Error
	if errors.As(target, &other) {
		return e.Code == other.Code
	}
	return false
}

// Retryable reports whether the caller may reasonably retry the request.
// API errors are retryable only when the provider itself failed (5xx).
func (e *Error) Retryable() bool {
	switch e.Code {
	case ErrorCodeNetwork, ErrorCodeTimeout, ErrorCodeRateLimit,
		ErrorCodeInvalidResponse, ErrorCodeParse:
		return true
	case ErrorCodeAPI:
		kind, _ := e.Details["kind"].(string)
		return kind == APIKindServer
	case ErrorCodeConfig, ErrorCodeValidation, ErrorCodeQuotaExceeded, ErrorCodeInternal:
		return false
	default:
		return false
	}
}

// CodeOf extracts the error code from any error, returning an empty code for
// errors outside the taxonomy.
func CodeOf(err error) ErrorCode {
	var typed *Error
	if errors.As(err, &typed) {
		return typed.Code
	}
	return ""
}

// AsError extracts the typed error from an error chain.
func AsError(err error) (*Error, bool) {
	var typed *Error
	ok := errors.As(err, &typed)
	return typed, ok
}

// userMessages maps each code to one stable, non-technical message shown to
// end users. Internal messages and details never leak past the HTTP boundary.
//
//nolint:gochecknoglobals // Static lookup table
var userMessages = map[ErrorCode]string{
	ErrorCodeConfig:          "The service is misconfigured, please contact support",
	ErrorCodeValidation:      "The request could not be processed, please adjust your input and try again",
	ErrorCodeNetwork:         "Could not reach the AI service, please try again",
	ErrorCodeTimeout:         "The request took too long, please try again",
	ErrorCodeRateLimit:       "Too many requests, please wait and try again",
	ErrorCodeAPI:             "The AI service returned an error, please try again later",
	ErrorCodeInvalidResponse: "The AI service returned an unusable answer, please try again",
	ErrorCodeParse:           "The AI service returned an unusable answer, please try again",
	ErrorCodeQuotaExceeded:   "You have reached your quiz generation limit",
	ErrorCodeInternal:        "The service had an internal problem, please try again later",
}

// UserMessage returns the stable end-user message for the error's code.
func (e *Error) UserMessage() string {
	if msg, ok := userMessages[e.Code]; ok {
		return msg
	}
	return "Something went wrong, please try again"
}
