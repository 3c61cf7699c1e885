package builtin

import "github.com/capitalize-ai/extension-chat/internal/extension"

// Options renders a set of choice buttons; picking one emits a "select"
// interaction carrying the chosen option.
func Options() extension.Descriptor {
	return extension.Descriptor{
		Name: "options",
		Kind: extension.KindTool,
		Prompt: "use when you want to give the user a list of options to choose " +
			"from. use this when you are giving the user a choice. or are in a " +
			"situation where you can't continue without the user's choice. make " +
			"sure to include a text paragraph above the options to explain the " +
			"options and why you are giving them to the user.",
		Schema: extension.Object(map[string]*extension.Schema{
			"options": extension.Array(extension.String().WithMaxLength(150)).WithMaxItems(10),
		}, "options"),
		Render: renderOptions,
	}
}

func renderOptions(props extension.Props, interact extension.InteractFunc) extension.Node {
	children := make([]extension.Node, 0, 10)
	for _, option := range props.StringSlice("options") {
		node := extension.Field("option", option)
		if interact != nil {
			node = node.WithActions(extension.Action{
				Label: option,
				Kind:  "select",
				Args:  []any{option},
			})
		}
		children = append(children, node)
	}
	return extension.Widget("options", children...)
}
