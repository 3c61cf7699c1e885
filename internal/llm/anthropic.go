package llm

import (
	"context"
	"errors"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/capitalize-ai/extension-chat/internal/stream"
)

const defaultAnthropicModel = "claude-3-5-sonnet-20241022"

// AnthropicClient is the Anthropic model client.
type AnthropicClient struct {
	client *anthropic.Client
}

// NewAnthropicClient creates a new Anthropic client.
func NewAnthropicClient(apiKey string) (*AnthropicClient, error) {
	if apiKey == "" {
		return nil, errors.New("Anthropic API key is required")
	}
	return &AnthropicClient{
		client: anthropic.NewClient(option.WithAPIKey(apiKey)),
	}, nil
}

// Name returns the provider name.
func (c *AnthropicClient) Name() string {
	return "anthropic"
}

// StreamObject streams text deltas from the Messages API and republishes them
// as complete JSON snapshot documents.
func (c *AnthropicClient) StreamObject(ctx context.Context, req *ObjectRequest) (stream.ChunkReader, error) {
	params, err := c.buildParams(req.Model, req.System, req.Messages, req.MaxTokens)
	if err != nil {
		return nil, err
	}

	streamCtx, cancel := context.WithCancel(ctx)
	events := c.client.Messages.NewStreaming(streamCtx, params)
	snapshots := newSnapshotStream(cancel)

	go func() {
		for events.Next() {
			event := events.Current()
			if event.Type != anthropic.MessageStreamEventTypeContentBlockDelta {
				continue
			}
			delta, ok := event.Delta.(anthropic.ContentBlockDeltaEventDelta)
			if !ok || delta.Type != "text_delta" {
				continue
			}
			if err := snapshots.write(delta.Text); err != nil {
				snapshots.finish(nil)
				return
			}
		}
		snapshots.finish(events.Err())
	}()

	return snapshots, nil
}

// Complete sends a non-streaming completion request.
func (c *AnthropicClient) Complete(ctx context.Context, req *CompletionRequest) (string, error) {
	params, err := c.buildParams(req.Model, req.System, req.Messages, req.MaxTokens)
	if err != nil {
		return "", err
	}

	resp, err := c.client.Messages.New(ctx, params)
	if err != nil {
		return "", err
	}

	var content string
	for _, block := range resp.Content {
		if block.Type == anthropic.ContentBlockTypeText {
			content += block.Text
		}
	}
	return content, nil
}

func (c *AnthropicClient) buildParams(model, system string, messages []ChatMessage, maxTokens int) (anthropic.MessageNewParams, error) {
	if model == "" {
		model = defaultAnthropicModel
	}
	if maxTokens == 0 {
		maxTokens = 4096
	}

	params := make([]anthropic.MessageParam, len(messages))
	for i, msg := range messages {
		params[i] = anthropic.MessageParam{
			Role: anthropic.F(anthropic.MessageParamRole(msg.Role)),
			Content: anthropic.F([]anthropic.ContentBlockParamUnion{
				anthropic.TextBlockParam{
					Type: anthropic.F(anthropic.TextBlockParamTypeText),
					Text: anthropic.F(msg.Content),
				},
			}),
		}
	}

	req := anthropic.MessageNewParams{
		Model:     anthropic.F(model),
		MaxTokens: anthropic.F(int64(maxTokens)),
		Messages:  anthropic.F(params),
	}
	if system != "" {
		req.System = anthropic.F([]anthropic.TextBlockParam{
			{
				Type: anthropic.F(anthropic.TextBlockParamTypeText),
				Text: anthropic.F(system),
			},
		})
	}
	return req, nil
}
