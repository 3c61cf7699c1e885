// Package store defines the persistence collaborator for conversations and
// pinned items, with an in-memory implementation for development and tests
// and a NATS JetStream implementation for durable deployments.
package store

import (
	"context"

	"github.com/capitalize-ai/extension-chat/internal/model"
)

// Store is the persistence collaborator. All methods take and return plain
// data; no transaction semantics are assumed beyond per-call atomicity.
// Deletes report existence as a boolean rather than an error.
type Store interface {
	ListConversations(ctx context.Context) ([]model.ConversationSummary, error)
	GetMessages(ctx context.Context, conversationID string) ([]model.Turn, error)
	AppendUserMessage(ctx context.Context, conversationID, text string) error
	AppendAssistantMessage(ctx context.Context, conversationID string, content model.StructuredResponse) error
	DeleteConversation(ctx context.Context, conversationID string) (bool, error)

	CreatePinnedItem(ctx context.Context, extension string, props map[string]any) (*model.PinnedItem, error)
	ListPinnedItems(ctx context.Context) ([]model.PinnedItem, error)
	DeletePinnedItem(ctx context.Context, id string) (bool, error)
}

const previewLength = 30

// preview derives the list-view preview from the first user message.
func preview(turns []model.Turn) string {
	for _, turn := range turns {
		if turn.Role != model.RoleUser {
			continue
		}
		if len(turn.Text) > previewLength {
			return turn.Text[:previewLength] + "..."
		}
		return turn.Text
	}
	return ""
}
