// Package prompt derives the model-facing artifacts from the extension
// registry: the system prompt and the turn-level response schema. Both are
// built once at startup since the registry is static per deployment.
package prompt

import (
	"fmt"
	"strings"

	"github.com/capitalize-ai/extension-chat/internal/extension"
)

const preamble = `You are a helpful assistant that can help with a variety of tasks including research, tasks, and more.

To be further helpful you may use the following special response patterns:
%s

Be conversational and friendly, do not return just the JSON for response patterns unless requested.
Use standard markdown formatting for your responses.
Your goal is to avoid long text-wall like responses and use more engaging tools instead but this doesn't mean your responses should be dry and without talking in between.
Do not be hesitant and answer the user's questions even if vague or incomplete.
Make sure to respond according to the context of the conversation.`

// CapabilityLines renders "name: usageHint" per descriptor, one per line, in
// registry order.
func CapabilityLines(reg *extension.Registry) string {
	var b strings.Builder
	for i, d := range reg.All() {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(d.Name)
		b.WriteString(": ")
		b.WriteString(d.Prompt)
	}
	return b.String()
}

// BuildSystemPrompt assembles the full system prompt: preamble, capability
// list, and the response schema the model must produce. Embedding the schema
// keeps providers without native schema enforcement on the wire format.
func BuildSystemPrompt(reg *extension.Registry) (string, error) {
	schema := ResponseSchema(reg)
	schemaJSON, err := schema.JSON()
	if err != nil {
		return "", fmt.Errorf("marshal response schema: %w", err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, preamble, CapabilityLines(reg))
	b.WriteString("\n\nRespond with a single JSON object matching this schema exactly:\n")
	b.Write(schemaJSON)
	return b.String(), nil
}

// ResponseSchema constructs the discriminated union describing a valid
// assistant turn: an ordered list where each element is either free text or
// {extension: <name>, response: <that extension's schema>}.
func ResponseSchema(reg *extension.Registry) *extension.Schema {
	alternatives := make([]*extension.Schema, 0, reg.Len()+1)
	alternatives = append(alternatives, extension.String().Describe("A message to the user"))
	for _, d := range reg.All() {
		alternatives = append(alternatives, extension.Object(map[string]*extension.Schema{
			"extension": {Type: "string", Const: d.Name},
			"response":  d.Schema,
		}, "extension", "response"))
	}

	return extension.Object(map[string]*extension.Schema{
		"response": extension.Array(extension.OneOfSchemas(alternatives...)),
	}, "response")
}
