// Package aisdk holds the chat completion wire types and the streaming
// response parser shared by the provider client and the agent engine.
package aisdk

// Message represents a single message in a conversation.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
	// Name is required for tool responses to identify the function
	Name string `json:"name,omitempty"`
	// ToolCallID is required for tool responses to reference the original call
	ToolCallID string `json:"tool_call_id,omitempty"`
	// ToolCalls contains function calls requested by the assistant.
	ToolCalls []ToolCall `json:"tool_calls,omitempty"`
}

// ToolCall represents a function call request from the model (OpenAI format).
type ToolCall struct {
	ID       string       `json:"id,omitempty"`
	Type     string       `json:"type,omitempty"` // Always "function" for now
	Function FunctionCall `json:"function"`
	// Index addresses the logical call a streamed fragment belongs to.
	Index *int `json:"index,omitempty"`
}

// FunctionCall carries the function name and the JSON-encoded argument text.
// In streaming responses Arguments arrives in pieces that concatenate into
// the full document.
type FunctionCall struct {
	Name      string `json:"name,omitempty"`
	Arguments string `json:"arguments,omitempty"`
}

// ChatCompletionRequest represents a request to the chat completions endpoint.
type ChatCompletionRequest struct {
	Model       string      `json:"model"`
	Messages    []*Message  `json:"messages"`
	Temperature *float64    `json:"temperature,omitempty"`
	MaxTokens   *int        `json:"max_tokens,omitempty"`
	Stream      bool        `json:"stream,omitempty"`
	Tools       []*ChatTool `json:"tools,omitempty"`
	ToolChoice  string      `json:"tool_choice,omitempty"` // "auto", "none", or specific tool
}

// ChatCompletionResponse represents a response from the chat completions endpoint.
type ChatCompletionResponse struct {
	ID      string   `json:"id"`
	Object  string   `json:"object"`
	Created int64    `json:"created"`
	Model   string   `json:"model"`
	Choices []Choice `json:"choices"`
	Usage   Usage    `json:"usage"`
}

// Choice represents a single completion choice.
type Choice struct {
	Index        int      `json:"index"`
	Message      Message  `json:"message"`
	FinishReason string   `json:"finish_reason"`
	Delta        *Message `json:"delta,omitempty"` // For streaming
}

// Usage represents token usage information.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// StreamChunk represents a single chunk in a streaming response.
type StreamChunk struct {
	ID      string   `json:"id"`
	Object  string   `json:"object"`
	Created int64    `json:"created"`
	Model   string   `json:"model"`
	Choices []Choice `json:"choices"`
}

// Error represents an API error response.
type Error struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Code    string `json:"code,omitempty"`
	Param   string `json:"param,omitempty"`
}

// ErrorResponse wraps an error from the API.
type ErrorResponse struct {
	Error Error `json:"error"`
}

// FragmentStream delivers the raw data payloads of a streaming response.
// Read returns the next payload, or io.EOF once the provider signals the
// end of the stream. Framing is the transport's concern; decoding the
// payloads belongs to StreamParser.
type FragmentStream interface {
	Read() ([]byte, error)
	Close() error
}
