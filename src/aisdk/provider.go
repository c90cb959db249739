package aisdk

import (
	"context"
)

// Provider is a client for an OpenAI-compatible chat completion endpoint.
type Provider interface {
	CreateChatCompletion(ctx context.Context, req *ChatCompletionRequest) (*ChatCompletionResponse, error)
	CreateChatCompletionStream(ctx context.Context, req *ChatCompletionRequest) (FragmentStream, error)
}
