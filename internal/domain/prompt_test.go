package domain_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/davidbz/quizforge/internal/domain"
)

func TestBuildPrompt(t *testing.T) {
	t.Run("should be deterministic for the same topic", func(t *testing.T) {
		first := domain.BuildPrompt("JavaScript closures")
		second := domain.BuildPrompt("JavaScript closures")

		require.Equal(t, first, second)
	})

	t.Run("should embed the topic in the user message", func(t *testing.T) {
		prompt := domain.BuildPrompt("Go concurrency patterns")

		require.Contains(t, prompt.User, "Go concurrency patterns")
	})

	t.Run("should fix role and mandate JSON-only output in the system message", func(t *testing.T) {
		prompt := domain.BuildPrompt("anything")

		require.Contains(t, prompt.System, "professional educational content creator")
		require.Contains(t, prompt.System, "JSON")
	})

	t.Run("should spell out question and option counts", func(t *testing.T) {
		prompt := domain.BuildPrompt("anything")

		require.Contains(t, prompt.User, "Between 5 and 10 questions")
		require.Contains(t, prompt.User, "exactly 4 answer options")
		require.Contains(t, prompt.User, `"is_correct": true`)
	})

	t.Run("should produce system then user messages", func(t *testing.T) {
		prompt := domain.BuildPrompt("history of Rome")
		messages := prompt.Messages()

		require.Len(t, messages, 2)
		require.Equal(t, domain.RoleSystem, messages[0].Role)
		require.Equal(t, prompt.System, messages[0].Content)
		require.Equal(t, domain.RoleUser, messages[1].Role)
		require.Equal(t, prompt.User, messages[1].Content)
	})
}
