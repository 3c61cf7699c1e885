// Package model defines the data structures of the structured-response
// protocol: turns, response elements, conversations and pinned items.
package model

import (
	"encoding/json"
	"fmt"
)

// Role represents the sender of a turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Element is one entry of a structured response: either a prose fragment or a
// tagged extension payload. The zero value is an empty, not-yet-known element
// as produced by very early streaming snapshots.
type Element struct {
	text      string
	extension string
	payload   map[string]any
	tagged    bool
}

// Text creates a prose element.
func Text(s string) Element {
	return Element{text: s}
}

// Tagged creates an extension element carrying a payload.
func Tagged(extension string, payload map[string]any) Element {
	return Element{extension: extension, payload: payload, tagged: true}
}

// IsText reports whether the element is a prose fragment.
func (e Element) IsText() bool { return !e.tagged }

// TextContent returns the prose content for text elements.
func (e Element) TextContent() string { return e.text }

// Extension returns the extension tag for tagged elements. Mid-stream it may
// be empty or truncated; render dispatch degrades accordingly.
func (e Element) Extension() string { return e.extension }

// Payload returns the (possibly partial) extension payload.
func (e Element) Payload() map[string]any { return e.payload }

// MarshalJSON encodes text elements as bare strings and tagged elements as
// {"extension": name, "response": payload}.
func (e Element) MarshalJSON() ([]byte, error) {
	if !e.tagged {
		return json.Marshal(e.text)
	}
	return json.Marshal(struct {
		Extension string         `json:"extension"`
		Response  map[string]any `json:"response,omitempty"`
	}{Extension: e.extension, Response: e.payload})
}

// UnmarshalJSON decodes the string-or-object union. Objects with missing
// fields are tolerated because streaming snapshots may be structurally
// incomplete.
func (e *Element) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*e = Element{text: s}
		return nil
	}

	var obj struct {
		Extension string         `json:"extension"`
		Response  map[string]any `json:"response"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("response element is neither string nor object: %w", err)
	}
	*e = Element{extension: obj.Extension, payload: obj.Response, tagged: true}
	return nil
}

// StructuredResponse is the content of an assistant turn: an ordered sequence
// of prose fragments and tagged extension payloads.
type StructuredResponse struct {
	Response []Element `json:"response"`
}

// Clone copies the element slice so a published snapshot is never mutated by
// later snapshots.
func (r StructuredResponse) Clone() StructuredResponse {
	elements := make([]Element, len(r.Response))
	copy(elements, r.Response)
	return StructuredResponse{Response: elements}
}

// Turn is a single message in a conversation. User turns carry plain text;
// assistant turns carry a structured response.
type Turn struct {
	Role       Role
	Text       string
	Structured *StructuredResponse
}

// UserTurn creates a user turn.
func UserTurn(text string) Turn {
	return Turn{Role: RoleUser, Text: text}
}

// AssistantTurn creates an assistant turn.
func AssistantTurn(content StructuredResponse) Turn {
	return Turn{Role: RoleAssistant, Structured: &content}
}

// MarshalJSON encodes {"role": ..., "content": ...} with the content shape
// depending on the role.
func (t Turn) MarshalJSON() ([]byte, error) {
	if t.Role == RoleAssistant {
		return json.Marshal(struct {
			Role    Role                `json:"role"`
			Content *StructuredResponse `json:"content"`
		}{Role: t.Role, Content: t.Structured})
	}
	return json.Marshal(struct {
		Role    Role   `json:"role"`
		Content string `json:"content"`
	}{Role: t.Role, Content: t.Text})
}

// UnmarshalJSON decodes a turn, accepting assistant content either as an
// object or as a serialized JSON string, which is how persisted stores record
// it.
func (t *Turn) UnmarshalJSON(data []byte) error {
	var head struct {
		Role    Role            `json:"role"`
		Content json.RawMessage `json:"content"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return err
	}

	switch head.Role {
	case RoleAssistant:
		var content StructuredResponse
		if err := json.Unmarshal(head.Content, &content); err == nil {
			*t = Turn{Role: RoleAssistant, Structured: &content}
			return nil
		}
		var serialized string
		if err := json.Unmarshal(head.Content, &serialized); err != nil {
			return fmt.Errorf("assistant content is neither object nor string")
		}
		if err := json.Unmarshal([]byte(serialized), &content); err != nil {
			return fmt.Errorf("decode serialized assistant content: %w", err)
		}
		*t = Turn{Role: RoleAssistant, Structured: &content}
		return nil
	case RoleUser:
		var text string
		if err := json.Unmarshal(head.Content, &text); err != nil {
			return fmt.Errorf("decode user content: %w", err)
		}
		*t = Turn{Role: RoleUser, Text: text}
		return nil
	default:
		return fmt.Errorf("unknown role %q", head.Role)
	}
}
