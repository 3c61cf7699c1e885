package llm

import (
	"context"
	"errors"
	"io"

	"github.com/sashabaranov/go-openai"

	"github.com/capitalize-ai/extension-chat/internal/stream"
)

const defaultOpenAIModel = "gpt-4o"

// OpenAIClient is the OpenAI model client.
type OpenAIClient struct {
	client *openai.Client
}

// NewOpenAIClient creates a new OpenAI client.
func NewOpenAIClient(apiKey string) (*OpenAIClient, error) {
	if apiKey == "" {
		return nil, errors.New("OpenAI API key is required")
	}
	return &OpenAIClient{client: openai.NewClient(apiKey)}, nil
}

// Name returns the provider name.
func (c *OpenAIClient) Name() string {
	return "openai"
}

// StreamObject streams chat completion deltas in JSON mode and republishes
// them as complete JSON snapshot documents.
func (c *OpenAIClient) StreamObject(ctx context.Context, req *ObjectRequest) (stream.ChunkReader, error) {
	streamCtx, cancel := context.WithCancel(ctx)

	completions, err := c.client.CreateChatCompletionStream(streamCtx, openai.ChatCompletionRequest{
		Model:     orDefault(req.Model, defaultOpenAIModel),
		Messages:  c.buildMessages(req.System, req.Messages),
		MaxTokens: orDefaultInt(req.MaxTokens, 4096),
		Stream:    true,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		cancel()
		return nil, err
	}

	snapshots := newSnapshotStream(cancel)

	go func() {
		defer completions.Close()
		for {
			resp, err := completions.Recv()
			if errors.Is(err, io.EOF) {
				snapshots.finish(nil)
				return
			}
			if err != nil {
				snapshots.finish(err)
				return
			}
			if len(resp.Choices) == 0 {
				continue
			}
			delta := resp.Choices[0].Delta.Content
			if delta == "" {
				continue
			}
			if err := snapshots.write(delta); err != nil {
				snapshots.finish(nil)
				return
			}
		}
	}()

	return snapshots, nil
}

// Complete sends a non-streaming completion request.
func (c *OpenAIClient) Complete(ctx context.Context, req *CompletionRequest) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     orDefault(req.Model, defaultOpenAIModel),
		Messages:  c.buildMessages(req.System, req.Messages),
		MaxTokens: orDefaultInt(req.MaxTokens, 4096),
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("empty completion response")
	}
	return resp.Choices[0].Message.Content, nil
}

func (c *OpenAIClient) buildMessages(system string, messages []ChatMessage) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, 0, len(messages)+1)
	if system != "" {
		out = append(out, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: system,
		})
	}
	for _, msg := range messages {
		out = append(out, openai.ChatCompletionMessage{
			Role:    msg.Role,
			Content: msg.Content,
		})
	}
	return out
}

func orDefault(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

func orDefaultInt(v, fallback int) int {
	if v == 0 {
		return fallback
	}
	return v
}
