package domain

import (
	"encoding/json"
	"fmt"
	"unicode/utf8"
)

// ValidateQuizContent schema-checks a recovered JSON value against the quiz
// content contract and returns the trusted QuizContent shape. All violated
// field paths are collected into the error's details rather than failing on
// the first one, so operators can diagnose provider drift from a single log
// line.
func ValidateQuizContent(raw RawJSON) (*QuizContent, error) {
	var content QuizContent
	if err := json.Unmarshal(raw, &content); err != nil {
		return nil, WrapError(ErrorCodeValidation, "generated content does not match the quiz shape", err)
	}

	var violations []string

	// Limits count characters, not bytes, so CJK and other multibyte titles
	// are not rejected early.
	if content.Title == "" {
		violations = append(violations, "title: must not be empty")
	} else if n := utf8.RuneCountInString(content.Title); n > MaxTitleLength {
		violations = append(violations, fmt.Sprintf("title: must be at most %d characters, got %d", MaxTitleLength, n))
	}

	if content.Description == "" {
		violations = append(violations, "description: must not be empty")
	} else if n := utf8.RuneCountInString(content.Description); n > MaxDescriptionLen {
		violations = append(violations, fmt.Sprintf("description: must be at most %d characters, got %d", MaxDescriptionLen, n))
	}

	if n := len(content.Questions); n < MinQuestions || n > MaxQuestions {
		violations = append(violations, fmt.Sprintf("questions: must contain between %d and %d questions, got %d", MinQuestions, MaxQuestions, n))
	}

	for i, question := range content.Questions {
		if question.Content == "" {
			violations = append(violations, fmt.Sprintf("questions[%d].content: must not be empty", i))
		}

		if n := len(question.Options); n != OptionsPerQuestion {
			violations = append(violations, fmt.Sprintf("questions[%d].options: must contain exactly %d options, got %d", i, OptionsPerQuestion, n))
		}

		correct := 0
		for _, option := range question.Options {
			if option.IsCorrect {
				correct++
			}
		}
		if correct != CorrectPerQuestion {
			violations = append(violations, fmt.Sprintf("questions[%d].options: exactly one correct option required, got %d", i, correct))
		}
	}

	if len(violations) > 0 {
		return nil, NewError(ErrorCodeValidation, "generated content failed quiz validation").
			WithDetail("violations", violations)
	}

	return &content, nil
}
