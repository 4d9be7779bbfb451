package domain

import (
	"encoding/json"
	"regexp"
	"strings"
)

// Completion providers are not guaranteed to honor "JSON only" instructions
// and commonly wrap output in prose or markdown fences. ExtractJSON recovers
// a JSON payload with an ordered chain of heuristics; each strategy is tried
// only if the previous one fails.
//
//nolint:gochecknoglobals // Compiled once at init
var (
	objectPattern = regexp.MustCompile(`(?s)\{.*\}`)
	arrayPattern  = regexp.MustCompile(`(?s)\[.*\]`)
)

// ExtractJSON recovers a JSON value from raw model output. Strategies, in
// order: strip a markdown code fence and parse; scan for the outermost
// {...} span; scan for the outermost [...] span. Fails with PARSE_ERROR
// carrying the original parse failure once all strategies are exhausted.
func ExtractJSON(text string) (RawJSON, error) {
	stripped := stripCodeFence(text)

	raw, firstErr := parseJSON(stripped)
	if firstErr == nil {
		return raw, nil
	}

	if span := objectPattern.FindString(text); span != "" {
		if raw, err := parseJSON(span); err == nil {
			return raw, nil
		}
	}

	if span := arrayPattern.FindString(text); span != "" {
		if raw, err := parseJSON(span); err == nil {
			return raw, nil
		}
	}

	return nil, WrapError(ErrorCodeParse, "no JSON value could be recovered from model output", firstErr).
		WithDetail("content", truncate(text, maxErrorContentLength))
}

// stripCodeFence removes a surrounding ```json ... ``` or ``` ... ``` fence
// if present and trims whitespace.
func stripCodeFence(text string) string {
	trimmed := strings.TrimSpace(text)

	switch {
	case strings.HasPrefix(trimmed, "```json"):
		trimmed = strings.TrimPrefix(trimmed, "```json")
	case strings.HasPrefix(trimmed, "```"):
		trimmed = strings.TrimPrefix(trimmed, "```")
	default:
		return trimmed
	}

	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	return strings.TrimSpace(trimmed)
}

// parseJSON validates that text is a standalone JSON value.
func parseJSON(text string) (RawJSON, error) {
	var value any
	if err := json.Unmarshal([]byte(text), &value); err != nil {
		return nil, err
	}
	return RawJSON(text), nil
}

const maxErrorContentLength = 500

// truncate bounds diagnostic payloads attached to errors.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
