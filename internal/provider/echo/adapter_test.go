package echo_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/davidbz/quizforge/internal/domain"
	"github.com/davidbz/quizforge/internal/provider/echo"
)

func TestNewClient(t *testing.T) {
	client := echo.NewClient()

	require.NotNil(t, client)
	require.Equal(t, "echo", client.Name())
}

func TestComplete_Success(t *testing.T) {
	client := echo.NewClient()
	ctx := context.Background()

	req := &domain.CompletionRequest{
		Model: "echo4",
		Messages: []domain.Message{
			{Role: "user", Content: "JavaScript closures"},
		},
		Temperature: 0.7,
		MaxTokens:   2048,
	}

	resp, err := client.Complete(ctx, req)

	require.NoError(t, err)
	require.NotNil(t, resp)
	require.Equal(t, "echo4", resp.Model)
	require.Equal(t, "stop", resp.FinishReason)
	require.Positive(t, resp.TokensUsed)
	require.NotEmpty(t, resp.Metadata.ID)
}

func TestComplete_ContentSurvivesPipeline(t *testing.T) {
	client := echo.NewClient()
	ctx := context.Background()

	req := &domain.CompletionRequest{
		Model: "echo4",
		Messages: []domain.Message{
			{Role: "user", Content: "Go concurrency"},
		},
		Temperature: 0.7,
		MaxTokens:   2048,
	}

	resp, err := client.Complete(ctx, req)
	require.NoError(t, err)

	// The canned output is fenced JSON and must survive extraction and
	// validation end to end.
	raw, err := domain.ExtractJSON(resp.Content)
	require.NoError(t, err)

	content, err := domain.ValidateQuizContent(raw)
	require.NoError(t, err)
	require.Len(t, content.Questions, 5)
	for _, q := range content.Questions {
		require.Len(t, q.Options, 4)
	}
}

func TestComplete_MultibyteTopicSurvivesPipeline(t *testing.T) {
	client := echo.NewClient()
	ctx := context.Background()

	// Byte 60 of this topic falls inside a multibyte rune; the summary cut
	// must land on a rune boundary or the emitted JSON is unparseable.
	topic := strings.Repeat("a", 59) + "日本の歴史"

	req := &domain.CompletionRequest{
		Model: "echo4",
		Messages: []domain.Message{
			{Role: "user", Content: topic},
		},
		Temperature: 0.7,
		MaxTokens:   2048,
	}

	resp, err := client.Complete(ctx, req)
	require.NoError(t, err)

	raw, err := domain.ExtractJSON(resp.Content)
	require.NoError(t, err)

	content, err := domain.ValidateQuizContent(raw)
	require.NoError(t, err)
	require.Contains(t, content.Questions[0].Content, "日")
}

func TestComplete_ControlCharacterTopic(t *testing.T) {
	client := echo.NewClient()
	ctx := context.Background()

	req := &domain.CompletionRequest{
		Model: "echo4",
		Messages: []domain.Message{
			{Role: "user", Content: "tabs\tand\nnewlines"},
		},
		Temperature: 0.7,
		MaxTokens:   2048,
	}

	resp, err := client.Complete(ctx, req)
	require.NoError(t, err)

	raw, err := domain.ExtractJSON(resp.Content)
	require.NoError(t, err)

	_, err = domain.ValidateQuizContent(raw)
	require.NoError(t, err)
}

func TestComplete_NilRequest(t *testing.T) {
	client := echo.NewClient()
	ctx := context.Background()

	resp, err := client.Complete(ctx, nil)

	require.Error(t, err)
	require.Nil(t, resp)
	require.Contains(t, err.Error(), "request cannot be nil")
}

func TestComplete_InvalidRequest(t *testing.T) {
	client := echo.NewClient()
	ctx := context.Background()

	req := &domain.CompletionRequest{
		Model:       "echo4",
		Messages:    nil,
		Temperature: 0.7,
		MaxTokens:   2048,
	}

	resp, err := client.Complete(ctx, req)

	require.Error(t, err)
	require.Nil(t, resp)
	require.Equal(t, domain.ErrorCodeValidation, domain.CodeOf(err))
}
