package domain

import (
	"fmt"
	"strings"
)

// Prompt is the system/user message pair sent to the completion provider.
type Prompt struct {
	System string
	User   string
}

// systemPrompt fixes the model's role and mandates JSON-only output. The
// instruction text is a versioned contract with ValidateQuizContent: any
// change to question or option counts here must be mirrored there.
const systemPrompt = `You are a professional educational content creator. ` +
	`You design accurate, engaging multiple-choice quizzes on any topic. ` +
	`You always respond with a single valid JSON object and nothing else: ` +
	`no prose, no markdown fences, no commentary.`

// BuildPrompt produces the deterministic system and user messages for a quiz
// generation request on the given topic.
func BuildPrompt(topic string) Prompt {
	var b strings.Builder

	fmt.Fprintf(&b, "Create a multiple-choice quiz about the following topic: %s\n\n", topic)

	b.WriteString("Requirements:\n")
	fmt.Fprintf(&b, "- A short quiz title (at most %d characters)\n", MaxTitleLength)
	b.WriteString("- A 1-2 sentence description of the quiz\n")
	fmt.Fprintf(&b, "- Between %d and %d questions, ordered from easiest to hardest\n", MinQuestions, MaxQuestions)
	fmt.Fprintf(&b, "- Each question has exactly %d answer options\n", OptionsPerQuestion)
	b.WriteString("- Exactly one option per question has \"is_correct\": true\n")
	b.WriteString("- Optionally include a brief explanation for each question\n\n")

	b.WriteString("Respond with a single JSON object in exactly this layout:\n")
	b.WriteString(`{
  "title": "...",
  "description": "...",
  "questions": [
    {
      "content": "...",
      "explanation": "...",
      "options": [
        {"text": "...", "is_correct": true},
        {"text": "...", "is_correct": false},
        {"text": "...", "is_correct": false},
        {"text": "...", "is_correct": false}
      ]
    }
  ]
}`)
	b.WriteString("\n\nDo not wrap the JSON in markdown code fences or add any text around it.")

	return Prompt{
		System: systemPrompt,
		User:   b.String(),
	}
}

// Messages returns the prompt as an ordered message list for a completion request.
func (p Prompt) Messages() []Message {
	return []Message{
		{Role: RoleSystem, Content: p.System},
		{Role: RoleUser, Content: p.User},
	}
}
