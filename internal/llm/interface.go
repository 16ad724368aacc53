package llm

import "context"

// CompletionClient defines the interface for the completion engine.
type CompletionClient interface {
	// CreateChatCompletionStream sends a streaming chat completion request.
	// The callback is called for each chunk received.
	CreateChatCompletionStream(ctx context.Context, req *ChatCompletionRequest, callback StreamCallback) error
}

// Ensure Client implements CompletionClient interface.
var _ CompletionClient = (*Client)(nil)
