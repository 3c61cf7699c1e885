// Package extension defines the response capability contract: a named,
// schema-described payload paired with a render function, collected into an
// ordered registry that drives both prompt construction and runtime dispatch.
package extension

// Kind classifies an extension's behavior.
type Kind string

const (
	// KindPresentation marks extensions that are pure output.
	KindPresentation Kind = "presentation"
	// KindTool marks extensions that may emit interactions back into the
	// conversation.
	KindTool Kind = "tool"
)

// InteractFunc receives interactions emitted by a rendered tool extension.
type InteractFunc func(kind string, args []any)

// Props is the partial payload handed to a render function. During streaming
// any subset of fields may be populated, so lookups never assume presence.
type Props map[string]any

// String returns the string at key, or "" when absent or mistyped.
func (p Props) String(key string) string {
	if v, ok := p[key].(string); ok {
		return v
	}
	return ""
}

// StringSlice returns the string array at key, skipping non-string entries.
func (p Props) StringSlice(key string) []string {
	raw, ok := p[key].([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// Number returns the number at key and whether it was present.
func (p Props) Number(key string) (float64, bool) {
	v, ok := p[key].(float64)
	return v, ok
}

// Objects returns the object array at key, skipping non-object entries.
func (p Props) Objects(key string) []Props {
	raw, ok := p[key].([]any)
	if !ok {
		return nil
	}
	out := make([]Props, 0, len(raw))
	for _, item := range raw {
		if obj, ok := item.(map[string]any); ok {
			out = append(out, Props(obj))
		}
	}
	return out
}

// Descriptor declares one response capability.
//
// Render must tolerate a partial payload: it is invoked on every intermediate
// streaming snapshot, not just the final one. The interact callback may be nil
// for presentation extensions and for contexts (pinned items) where
// interactions cannot re-enter a conversation.
type Descriptor struct {
	// Name is the stable wire tag and lookup key. Unique per registry.
	Name string

	// Kind distinguishes pure-output extensions from interactive ones.
	Kind Kind

	// Prompt is the natural-language usage hint surfaced to the model. It is
	// never consumed by code logic.
	Prompt string

	// Schema describes the payload shape, used for the turn-level union
	// schema and final-snapshot validation.
	Schema *Schema

	// Render maps a partial payload to a view description.
	Render func(props Props, interact InteractFunc) Node
}
