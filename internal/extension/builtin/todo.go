package builtin

import "github.com/capitalize-ai/extension-chat/internal/extension"

// Todo renders a named checklist.
func Todo() extension.Descriptor {
	return extension.Descriptor{
		Name:   "todo",
		Kind:   extension.KindPresentation,
		Prompt: "use when you want to create a todo list",
		Schema: extension.Object(map[string]*extension.Schema{
			"name": extension.String().Describe(
				`The name of the todo list formatted as "Lemon cake recipe", "Tomorrow's tasks", "Car repair checklist", etc.`),
			"items": extension.Array(extension.String()),
		}, "name", "items"),
		Render: renderTodo,
	}
}

func renderTodo(props extension.Props, _ extension.InteractFunc) extension.Node {
	children := []extension.Node{
		extension.Field("name", props.String("name")),
	}
	for _, item := range props.StringSlice("items") {
		children = append(children, extension.Field("item", item))
	}
	return extension.Widget("todo", children...)
}
