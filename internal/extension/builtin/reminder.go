package builtin

import "github.com/capitalize-ai/extension-chat/internal/extension"

// Reminder renders a scheduled item with a date and optional time.
func Reminder() extension.Descriptor {
	return extension.Descriptor{
		Name:   "reminder",
		Kind:   extension.KindPresentation,
		Prompt: "use when you want to create a reminder or schedule something.",
		Schema: extension.Object(map[string]*extension.Schema{
			"title":       extension.String().Describe("The title of the reminder"),
			"description": extension.String().Describe("Optional description of the reminder"),
			"date": extension.String().
				WithPattern(`^\d{4}-\d{2}-\d{2}$`).
				Describe("The date for the reminder in YYYY-MM-DD format"),
			"time": extension.String().
				WithPattern(`^\d{2}:\d{2}$`).
				Describe("Optional time for the reminder in HH:MM format"),
		}, "title", "date"),
		Render: renderReminder,
	}
}

func renderReminder(props extension.Props, _ extension.InteractFunc) extension.Node {
	children := []extension.Node{
		extension.Field("title", props.String("title")),
	}
	if desc := props.String("description"); desc != "" {
		children = append(children, extension.Field("description", desc))
	}
	children = append(children, extension.Field("date", props.String("date")))
	if t := props.String("time"); t != "" {
		children = append(children, extension.Field("time", t))
	}
	return extension.Widget("reminder", children...)
}
