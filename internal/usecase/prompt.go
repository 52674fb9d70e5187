// File: internal/usecase/prompt.go
package usecase

import (
	"fmt"
	"strings"

	"ghostwriter/internal/domain"
	"ghostwriter/internal/domain/model"
)

// MaxContextMessages bounds how many trailing recent messages reach the prompt.
const MaxContextMessages = 3

// BuildPrompt renders the generation prompt for message in tone.
// An unknown tone keeps its name but gets the default tone's description.
// The output is a pure function of its inputs.
func BuildPrompt(message, tone string, recent []string) (string, error) {
	if strings.TrimSpace(message) == "" {
		return "", &domain.PromptBuildError{Reason: "empty message"}
	}
	desc, _ := model.DescribeTone(tone)
	if len(recent) > MaxContextMessages {
		recent = recent[len(recent)-MaxContextMessages:]
	}

	var b strings.Builder
	b.WriteString("You are an expert at helping people write messages that match their communication style.\n\n")
	fmt.Fprintf(&b, "Original message to reply to:\n\"%s\"\n\n", message)
	fmt.Fprintf(&b, "Desired tone: %s\n%s\n\n", tone, desc)
	if len(recent) > 0 {
		b.WriteString("Recent messages for context:\n")
		b.WriteString(strings.Join(recent, "\n"))
		b.WriteString("\n\n")
	}
	fmt.Fprintf(&b, "Generate exactly %d different reply suggestions. Each should be:\n", model.SuggestionCount)
	b.WriteString("- 1-2 sentences\n")
	b.WriteString("- Natural and conversational\n")
	b.WriteString("- Matching the specified tone\n")
	b.WriteString("- Appropriate for the context\n\n")
	b.WriteString("Format each suggestion on a new line starting with \"Suggestion X:\"\n\n")
	for i := 1; i <= model.SuggestionCount; i++ {
		fmt.Fprintf(&b, "Suggestion %d: [reply]", i)
		if i < model.SuggestionCount {
			b.WriteByte('\n')
		}
	}
	return b.String(), nil
}
