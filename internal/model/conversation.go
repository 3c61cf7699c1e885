package model

import "time"

// Conversation identifies a persisted ordered list of turns. IDs are opaque,
// caller-chosen strings; a conversation is created implicitly by its first
// message.
type Conversation struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ConversationSummary is the list-view projection of a conversation.
type ConversationSummary struct {
	ID           string    `json:"id"`
	MessageCount int       `json:"message_count"`
	Preview      string    `json:"preview"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// GenerateRequest is the transport request for one assistant turn: the
// conversation it belongs to, the triggering user text, and the history the
// model should see (optimistic user turn included).
type GenerateRequest struct {
	ConversationID string `json:"conversation_id"`
	Content        string `json:"content"`
	History        []Turn `json:"history,omitempty"`
}
