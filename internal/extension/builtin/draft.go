package builtin

import "github.com/capitalize-ai/extension-chat/internal/extension"

// Draft renders a titled writing piece kept apart from the conversation prose.
func Draft() extension.Descriptor {
	return extension.Descriptor{
		Name: "draft",
		Kind: extension.KindPresentation,
		Prompt: "use when you want to draft a story, document, blog post, etc. " +
			"this feature is not for avoiding writing long text responses. only use " +
			"it for creative works or writing that should be isolated from the rest " +
			"of the conversation.",
		Schema: extension.Object(map[string]*extension.Schema{
			"title": extension.String(),
			"body":  extension.String(),
		}, "title", "body"),
		Render: renderDraft,
	}
}

func renderDraft(props extension.Props, _ extension.InteractFunc) extension.Node {
	return extension.Widget("draft",
		extension.Field("title", props.String("title")),
		extension.Markdown(props.String("body")),
	)
}
