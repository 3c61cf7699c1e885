package llm

import (
	"context"
	"strings"
)

const researchSystem = `You are a research assistant. Given a user message, reply with a short list of relevant facts, figures, and context that would help answer it well. Reply with the notes only, no preamble.`

// NewResearchHook returns a pre-submission enrichment function: it asks the
// model for background notes on the user text and appends them as context for
// the main stream. The returned function matches chat.ResearchHook.
func NewResearchHook(client Client, modelName string, maxTokens int) func(ctx context.Context, userText string) (string, error) {
	return func(ctx context.Context, userText string) (string, error) {
		notes, err := client.Complete(ctx, &CompletionRequest{
			Model:     modelName,
			System:    researchSystem,
			Messages:  []ChatMessage{{Role: "user", Content: userText}},
			MaxTokens: maxTokens,
		})
		if err != nil {
			return "", err
		}
		notes = strings.TrimSpace(notes)
		if notes == "" {
			return userText, nil
		}
		return userText + "\n\nBackground notes:\n" + notes, nil
	}
}
