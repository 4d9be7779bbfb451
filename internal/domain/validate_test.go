package domain_test

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/davidbz/quizforge/internal/domain"
)

// buildQuiz renders quiz JSON with the given number of questions, four
// options each, first option correct.
func buildQuiz(t *testing.T, questions int) []byte {
	t.Helper()

	quiz := map[string]any{
		"title":       "Test Quiz",
		"description": "A quiz used in validation tests.",
		"questions":   buildQuestions(questions),
	}

	data, err := json.Marshal(quiz)
	require.NoError(t, err)
	return data
}

func buildQuestions(n int) []map[string]any {
	questions := make([]map[string]any, 0, n)
	for i := 0; i < n; i++ {
		questions = append(questions, map[string]any{
			"content":     fmt.Sprintf("Question %d", i+1),
			"explanation": "Because.",
			"options": []map[string]any{
				{"text": "Right", "is_correct": true},
				{"text": "Wrong A", "is_correct": false},
				{"text": "Wrong B", "is_correct": false},
				{"text": "Wrong C", "is_correct": false},
			},
		})
	}
	return questions
}

func violationsOf(t *testing.T, err error) []string {
	t.Helper()

	typed, ok := domain.AsError(err)
	require.True(t, ok)
	violations, ok := typed.Details["violations"].([]string)
	require.True(t, ok)
	return violations
}

func TestValidateQuizContent(t *testing.T) {
	t.Run("should accept well-formed content", func(t *testing.T) {
		content, err := domain.ValidateQuizContent(buildQuiz(t, 6))

		require.NoError(t, err)
		require.NotNil(t, content)
		require.Equal(t, "Test Quiz", content.Title)
		require.Len(t, content.Questions, 6)
		for _, question := range content.Questions {
			require.Len(t, question.Options, 4)

			correct := 0
			for _, option := range question.Options {
				if option.IsCorrect {
					correct++
				}
			}
			require.Equal(t, 1, correct)
		}
	})

	t.Run("should accept boundary question counts", func(t *testing.T) {
		for _, n := range []int{5, 10} {
			_, err := domain.ValidateQuizContent(buildQuiz(t, n))
			require.NoError(t, err, "questions=%d", n)
		}
	})

	t.Run("should reject too few or too many questions", func(t *testing.T) {
		for _, n := range []int{0, 4, 11} {
			_, err := domain.ValidateQuizContent(buildQuiz(t, n))
			require.Error(t, err, "questions=%d", n)
			require.Equal(t, domain.ErrorCodeValidation, domain.CodeOf(err))
		}
	})

	t.Run("should report question index for multiple correct options", func(t *testing.T) {
		var quiz map[string]any
		require.NoError(t, json.Unmarshal(buildQuiz(t, 6), &quiz))

		questions := quiz["questions"].([]any)
		options := questions[2].(map[string]any)["options"].([]any)
		options[1].(map[string]any)["is_correct"] = true

		data, err := json.Marshal(quiz)
		require.NoError(t, err)

		content, err := domain.ValidateQuizContent(data)
		require.Nil(t, content)
		require.Error(t, err)
		require.Equal(t, domain.ErrorCodeValidation, domain.CodeOf(err))

		violations := violationsOf(t, err)
		require.Len(t, violations, 1)
		require.Contains(t, violations[0], "questions[2]")
		require.Contains(t, violations[0], "exactly one correct option")
	})

	t.Run("should collect all violations instead of failing on the first", func(t *testing.T) {
		quiz := map[string]any{
			"title":       "",
			"description": strings.Repeat("d", 501),
			"questions": []map[string]any{
				{
					"content": "",
					"options": []map[string]any{
						{"text": "A", "is_correct": false},
						{"text": "B", "is_correct": false},
					},
				},
			},
		}
		data, err := json.Marshal(quiz)
		require.NoError(t, err)

		_, err = domain.ValidateQuizContent(data)
		require.Error(t, err)

		violations := violationsOf(t, err)
		require.GreaterOrEqual(t, len(violations), 5)

		joined := strings.Join(violations, "; ")
		require.Contains(t, joined, "title")
		require.Contains(t, joined, "description")
		require.Contains(t, joined, "questions: must contain between 5 and 10")
		require.Contains(t, joined, "questions[0].content")
		require.Contains(t, joined, "exactly 4 options")
		require.Contains(t, joined, "exactly one correct option")
	})

	t.Run("should reject overlong title", func(t *testing.T) {
		var quiz map[string]any
		require.NoError(t, json.Unmarshal(buildQuiz(t, 5), &quiz))
		quiz["title"] = strings.Repeat("t", 201)

		data, err := json.Marshal(quiz)
		require.NoError(t, err)

		_, err = domain.ValidateQuizContent(data)
		require.Error(t, err)
		require.Contains(t, strings.Join(violationsOf(t, err), ";"), "title: must be at most 200")
	})

	t.Run("should count title and description limits in characters, not bytes", func(t *testing.T) {
		var quiz map[string]any
		require.NoError(t, json.Unmarshal(buildQuiz(t, 5), &quiz))

		// 150 characters, 450 bytes.
		quiz["title"] = strings.Repeat("日", 150)
		quiz["description"] = strings.Repeat("本", 500)

		data, err := json.Marshal(quiz)
		require.NoError(t, err)

		_, err = domain.ValidateQuizContent(data)
		require.NoError(t, err)
	})

	t.Run("should reject content of the wrong shape", func(t *testing.T) {
		_, err := domain.ValidateQuizContent([]byte(`{"title": 42}`))

		require.Error(t, err)
		require.Equal(t, domain.ErrorCodeValidation, domain.CodeOf(err))
	})
}
