package llm

import (
	"context"
	"encoding/json"

	"github.com/capitalize-ai/extension-chat/internal/model"
	"github.com/capitalize-ai/extension-chat/internal/stream"
)

// Transport adapts a model client to the conversation store's transport
// contract: it turns a generate request into a chunk stream of snapshot
// documents, carrying the deployment's system prompt and model choice.
type Transport struct {
	client    Client
	system    string
	model     string
	maxTokens int
}

// NewTransport creates a transport bound to a system prompt and model.
func NewTransport(client Client, system, modelName string, maxTokens int) *Transport {
	return &Transport{client: client, system: system, model: modelName, maxTokens: maxTokens}
}

// Open starts one object stream for the request. History turns are flattened
// to role/content pairs; assistant turns are re-serialized so the model sees
// the same wire shape it produced.
func (t *Transport) Open(ctx context.Context, req model.GenerateRequest) (stream.ChunkReader, error) {
	messages := make([]ChatMessage, 0, len(req.History))
	for _, turn := range req.History {
		messages = append(messages, ChatMessage{
			Role:    string(turn.Role),
			Content: turnContent(turn),
		})
	}

	return t.client.StreamObject(ctx, &ObjectRequest{
		Model:     t.model,
		System:    t.system,
		Messages:  messages,
		MaxTokens: t.maxTokens,
	})
}

func turnContent(turn model.Turn) string {
	if turn.Role == model.RoleUser || turn.Structured == nil {
		return turn.Text
	}
	data, err := json.Marshal(turn.Structured)
	if err != nil {
		return ""
	}
	return string(data)
}
