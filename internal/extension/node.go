package extension

// NodeKind identifies the rendering behavior of a view node.
type NodeKind string

const (
	// NodeMarkdown renders formatted text.
	NodeMarkdown NodeKind = "markdown"
	// NodeWidget is a named container produced by an extension.
	NodeWidget NodeKind = "widget"
	// NodeField is a labeled value inside a widget.
	NodeField NodeKind = "field"
	// NodePlaceholder is the degrade-visibly output for unknown extensions.
	NodePlaceholder NodeKind = "placeholder"
	// NodeError is the per-element fallback when a render function fails.
	NodeError NodeKind = "error"
)

// Action is an interactive affordance attached to a node. Triggering it feeds
// (Kind, Args) into the interaction router.
type Action struct {
	Label string `json:"label"`
	Kind  string `json:"kind"`
	Args  []any  `json:"args,omitempty"`
}

// Node is a UI-agnostic view description. Rendering the same inputs always
// yields equal trees, so hosts may diff or re-render freely.
type Node struct {
	Kind     NodeKind `json:"kind"`
	Name     string   `json:"name,omitempty"`
	Text     string   `json:"text,omitempty"`
	Children []Node   `json:"children,omitempty"`
	Actions  []Action `json:"actions,omitempty"`
}

// Markdown creates a formatted text node.
func Markdown(text string) Node {
	return Node{Kind: NodeMarkdown, Text: text}
}

// Widget creates a named container node.
func Widget(name string, children ...Node) Node {
	return Node{Kind: NodeWidget, Name: name, Children: children}
}

// Field creates a labeled value node.
func Field(name, text string) Node {
	return Node{Kind: NodeField, Name: name, Text: text}
}

// Placeholder creates a visible stand-in node.
func Placeholder(text string) Node {
	return Node{Kind: NodePlaceholder, Text: text}
}

// ErrorNode creates a per-element failure node.
func ErrorNode(text string) Node {
	return Node{Kind: NodeError, Text: text}
}

// WithActions attaches actions to a node.
func (n Node) WithActions(actions ...Action) Node {
	n.Actions = actions
	return n
}
