// Package prompt renders conversation history into provider-ready text
// and manages the system prompt.
package prompt

import (
	"strings"

	"github.com/harun/askd/pkg/history"
)

// ContextHeader precedes the rendered history when a session has prior
// turns.
const ContextHeader = "previous conversation:\n"

// DefaultSystemPrompt is used when no system prompt file is configured.
const DefaultSystemPrompt = "You are a helpful assistant providing concise and accurate answers. Maintain context from the conversation history"

// Build renders prior turns and the new question into a single prompt
// string. With no prior turns the question is returned unchanged;
// otherwise each turn is rendered as a Human/AI line pair in stored
// order, preceded by ContextHeader and followed by the new question.
// Pure function: deterministic, no truncation, no escaping.
func Build(turns []history.Turn, question string) string {
	if len(turns) == 0 {
		return question
	}

	var b strings.Builder
	b.WriteString(ContextHeader)
	for _, turn := range turns {
		b.WriteString("Human: ")
		b.WriteString(turn.Question)
		b.WriteString("\nAI: ")
		b.WriteString(turn.Answer)
		b.WriteString("\n")
	}
	b.WriteString("Human: ")
	b.WriteString(question)

	return b.String()
}
