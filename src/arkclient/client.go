// Package arkclient talks to the Volcano Ark chat completion API, an
// OpenAI-compatible endpoint. It performs no retries; retry policy
// belongs to callers.
package arkclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/yoyofushi/feedbot/src/aisdk"
)

// DefaultBaseURL is the Ark OpenAI-compatible endpoint.
const DefaultBaseURL = "https://ark.cn-beijing.volces.com/api/v3"

var _ aisdk.Provider = (*Client)(nil)

// Client is the Ark API client.
type Client struct {
	config     Config
	httpClient *http.Client
	logger     *slog.Logger
	baseURL    string
	apiKey     string
}

// NewClient creates a new Ark API client.
func NewClient(config Config) *Client {
	if config.BaseURL == "" {
		config.BaseURL = DefaultBaseURL
	}

	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "ark_client")

	// No client-level timeout: deadlines arrive on the request context
	// and must cover streaming body reads.
	httpClient := &http.Client{}

	return &Client{
		config:     config,
		httpClient: httpClient,
		logger:     logger,
		baseURL:    config.BaseURL,
		apiKey:     config.APIKey,
	}
}

// CreateChatCompletion sends a non-streaming chat completion request.
func (c *Client) CreateChatCompletion(ctx context.Context, req *aisdk.ChatCompletionRequest) (*aisdk.ChatCompletionResponse, error) {
	if c.apiKey == "" {
		return nil, ErrNoAPIKey
	}

	logger := c.logger.With("method", "CreateChatCompletion", "model", req.Model)
	logger.Debug("sending chat completion request")

	req.Stream = false

	body, err := json.Marshal(req)
	if err != nil {
		logger.Error("failed to marshal request", "error", err)
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := c.newRequest(ctx, http.MethodPost, "/chat/completions", body)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		logger.Error("request failed", "error", err)
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		logger.Error("received error response", "status_code", resp.StatusCode)
		return nil, c.handleError(resp)
	}

	var result aisdk.ChatCompletionResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		logger.Error("failed to decode response", "error", err)
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if len(result.Choices) == 0 {
		return nil, ErrEmptyResponse
	}

	logger.Info("chat completion successful", "usage_total", result.Usage.TotalTokens)
	return &result, nil
}

// CreateChatCompletionStream sends a streaming chat completion request
// and returns the raw fragment stream. Feed the payloads to an
// aisdk.StreamParser for decoding.
func (c *Client) CreateChatCompletionStream(ctx context.Context, req *aisdk.ChatCompletionRequest) (aisdk.FragmentStream, error) {
	if c.apiKey == "" {
		return nil, ErrNoAPIKey
	}

	logger := c.logger.With("method", "CreateChatCompletionStream", "model", req.Model)
	logger.Debug("sending streaming chat completion request")

	req.Stream = true

	body, err := json.Marshal(req)
	if err != nil {
		logger.Error("failed to marshal request", "error", err)
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := c.newRequest(ctx, http.MethodPost, "/chat/completions", body)
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Accept", "text/event-stream")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		logger.Error("request failed", "error", err)
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		logger.Error("received error response", "status_code", resp.StatusCode)
		defer resp.Body.Close()
		return nil, c.handleError(resp)
	}

	return newSSEStream(resp.Body), nil
}

// newRequest creates a new HTTP request with the appropriate headers.
func (c *Client) newRequest(ctx context.Context, method, path string, body []byte) (*http.Request, error) {
	url := c.baseURL + path

	req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	return req, nil
}

// handleError processes error responses from the API.
func (c *Client) handleError(resp *http.Response) error {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read error response: %w", err)
	}

	var errResp aisdk.ErrorResponse
	if err := json.Unmarshal(body, &errResp); err != nil {
		// Return a basic API error if we can't parse the response
		return &APIError{
			StatusCode: resp.StatusCode,
			Message:    string(body),
			RequestID:  resp.Header.Get("X-Request-ID"),
		}
	}

	return &APIError{
		StatusCode: resp.StatusCode,
		Type:       errResp.Error.Type,
		Message:    errResp.Error.Message,
		Code:       errResp.Error.Code,
		Param:      errResp.Error.Param,
		RequestID:  resp.Header.Get("X-Request-ID"),
	}
}
