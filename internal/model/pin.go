package model

import "time"

// PinnedItem is a user-curated snapshot of one extension invocation,
// addressable independent of any conversation.
type PinnedItem struct {
	ID        string         `json:"id"`
	Extension string         `json:"extension"`
	Props     map[string]any `json:"props"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}
