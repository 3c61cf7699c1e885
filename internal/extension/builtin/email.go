package builtin

import (
	"strings"

	"github.com/capitalize-ai/extension-chat/internal/extension"
)

// Email renders a draft email with subject, recipient lists and body.
func Email() extension.Descriptor {
	return extension.Descriptor{
		Name: "email",
		Kind: extension.KindPresentation,
		Prompt: "use when you want to draft an email. if you don't have some of " +
			"the information just fill it out with a placeholder.",
		Schema: extension.Object(map[string]*extension.Schema{
			"subject":    extension.String(),
			"recipients": extension.Array(extension.String().WithFormat("email")),
			"cc":         extension.Array(extension.String().WithFormat("email")),
			"bcc":        extension.Array(extension.String().WithFormat("email")),
			"body":       extension.String(),
		}, "subject", "body"),
		Render: renderEmail,
	}
}

func renderEmail(props extension.Props, _ extension.InteractFunc) extension.Node {
	children := []extension.Node{
		extension.Field("subject", props.String("subject")),
	}
	if to := props.StringSlice("recipients"); len(to) > 0 {
		children = append(children, extension.Field("to", strings.Join(to, ", ")))
	}
	if cc := props.StringSlice("cc"); len(cc) > 0 {
		children = append(children, extension.Field("cc", strings.Join(cc, ", ")))
	}
	if bcc := props.StringSlice("bcc"); len(bcc) > 0 {
		children = append(children, extension.Field("bcc", strings.Join(bcc, ", ")))
	}
	children = append(children, extension.Field("body", props.String("body")))
	return extension.Widget("email", children...)
}
