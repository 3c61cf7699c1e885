package middleware

import (
	"errors"
	"unicode/utf8"

	"github.com/google/uuid"
)

// ValidateMessageContent validates message content.
func ValidateMessageContent(content string) error {
	if len(content) == 0 {
		return errors.New("content cannot be empty")
	}
	if len(content) > 100000 { // ~100KB limit
		return errors.New("content exceeds maximum length")
	}
	if !utf8.ValidString(content) {
		return errors.New("content must be valid UTF-8")
	}
	return nil
}

// ValidateConversationID validates a conversation ID. IDs are opaque tokens;
// the client may mint them, so only shape is checked.
func ValidateConversationID(id string) error {
	if len(id) == 0 {
		return errors.New("conversation ID cannot be empty")
	}
	if len(id) > 64 {
		return errors.New("conversation ID exceeds maximum length")
	}
	if !utf8.ValidString(id) {
		return errors.New("conversation ID must be valid UTF-8")
	}
	return nil
}

// ValidatePinID validates a pinned item ID.
func ValidatePinID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return errors.New("invalid pinned item ID format")
	}
	return nil
}

// ValidateExtensionName validates an extension tag used for pinning.
func ValidateExtensionName(name string) error {
	if len(name) == 0 {
		return errors.New("extension name cannot be empty")
	}
	if len(name) > 64 {
		return errors.New("extension name exceeds maximum length")
	}
	return nil
}
