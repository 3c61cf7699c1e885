// Package llm provides model clients that stream structured-response
// snapshots: each provider streams text deltas and the package synthesizes
// complete JSON snapshot documents from the growing prefix.
package llm

import (
	"context"

	"github.com/capitalize-ai/extension-chat/internal/stream"
)

// ChatMessage represents a chat message for the model.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ObjectRequest asks for one streamed structured response.
type ObjectRequest struct {
	Model     string
	System    string
	Messages  []ChatMessage
	MaxTokens int
}

// CompletionRequest is a plain one-shot completion, used by the research
// pre-pass.
type CompletionRequest struct {
	Model     string
	System    string
	Messages  []ChatMessage
	MaxTokens int
}

// Client is the interface for model providers.
type Client interface {
	// StreamObject opens a stream whose chunks are complete JSON documents
	// representing the growing response object.
	StreamObject(ctx context.Context, req *ObjectRequest) (stream.ChunkReader, error)

	// Complete sends a non-streaming completion request.
	Complete(ctx context.Context, req *CompletionRequest) (string, error)

	// Name returns the provider name.
	Name() string
}

// Provider is the type of model provider.
type Provider string

const (
	ProviderAnthropic Provider = "anthropic"
	ProviderOpenAI    Provider = "openai"
)

// NewClient creates a model client for the given provider.
func NewClient(provider Provider, apiKey string) (Client, error) {
	switch provider {
	case ProviderOpenAI:
		return NewOpenAIClient(apiKey)
	default:
		return NewAnthropicClient(apiKey)
	}
}
