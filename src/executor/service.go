package executor

import (
	"context"
	"log/slog"
	"time"

	"github.com/yoyofushi/feedbot/src/agent"
	"github.com/yoyofushi/feedbot/src/aisdk"
	"github.com/yoyofushi/feedbot/src/convstore"
)

// DefaultRequestTimeout bounds one provider call, not the whole turn.
const DefaultRequestTimeout = 60 * time.Second

const (
	defaultTemperature = 0.7
	defaultMaxTokens   = 2048
)

// ToolboxBuilder assembles the per-turn tool registry for a subject
// baby and acting caregiver.
type ToolboxBuilder interface {
	BuildToolbox(ctx context.Context, babyID, userID int64) (*agent.Toolbox, error)
}

// ToolboxBuilderFunc adapts a function to the ToolboxBuilder interface.
type ToolboxBuilderFunc func(ctx context.Context, babyID, userID int64) (*agent.Toolbox, error)

func (f ToolboxBuilderFunc) BuildToolbox(ctx context.Context, babyID, userID int64) (*agent.Toolbox, error) {
	return f(ctx, babyID, userID)
}

// ContextRenderer produces the context block injected into both prompt
// tiers.
type ContextRenderer interface {
	RenderContext(ctx context.Context, babyID int64) (string, error)
}

// ContextRendererFunc adapts a function to the ContextRenderer interface.
type ContextRendererFunc func(ctx context.Context, babyID int64) (string, error)

func (f ContextRendererFunc) RenderContext(ctx context.Context, babyID int64) (string, error) {
	return f(ctx, babyID)
}

// PromptSet renders the two system prompts from a context block.
type PromptSet struct {
	System  func(contextBlock string) string
	Advisor func(contextBlock string) string
}

// Models names the two model tiers.
type Models struct {
	// Fast handles tool-calling turns.
	Fast string
	// Advanced answers escalated questions. Empty falls back to Fast.
	Advanced string
}

// Service runs conversation turns with all necessary dependencies
type Service struct {
	provider       aisdk.Provider
	conversations  *convstore.Store
	toolbox        ToolboxBuilder
	contextSource  ContextRenderer
	prompts        PromptSet
	models         Models
	requestTimeout time.Duration
	logger         *slog.Logger
}

// ServiceConfig holds configuration for creating a new Service
type ServiceConfig struct {
	Provider       aisdk.Provider
	Conversations  *convstore.Store
	Toolbox        ToolboxBuilder
	Context        ContextRenderer
	Prompts        PromptSet
	Models         Models
	RequestTimeout time.Duration
	Logger         *slog.Logger
}

// NewService creates a new turn service
func NewService(config ServiceConfig) (*Service, error) {
	if config.Provider == nil {
		return nil, ErrProviderRequired
	}
	if config.Conversations == nil {
		return nil, ErrStoreRequired
	}
	if config.Toolbox == nil {
		return nil, ErrToolboxRequired
	}
	if config.Context == nil {
		return nil, ErrContextRequired
	}
	if config.Models.Fast == "" {
		return nil, ErrFastModelRequired
	}
	if config.Models.Advanced == "" {
		config.Models.Advanced = config.Models.Fast
	}
	if config.Prompts.System == nil {
		config.Prompts.System = func(contextBlock string) string { return contextBlock }
	}
	if config.Prompts.Advisor == nil {
		config.Prompts.Advisor = config.Prompts.System
	}
	if config.RequestTimeout <= 0 {
		config.RequestTimeout = DefaultRequestTimeout
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}

	return &Service{
		provider:       config.Provider,
		conversations:  config.Conversations,
		toolbox:        config.Toolbox,
		contextSource:  config.Context,
		prompts:        config.Prompts,
		models:         config.Models,
		requestTimeout: config.RequestTimeout,
		logger:         config.Logger.With("component", "executor"),
	}, nil
}

// Messages returns the remembered transcript of a conversation, oldest
// first. Unknown or expired conversations yield nil.
func (s *Service) Messages(conversationID string) []aisdk.Message {
	conv := s.conversations.Get(conversationID)
	if conv == nil {
		return nil
	}
	return conv.Messages
}

func (s *Service) newChatRequest(model string, messages []*aisdk.Message) *aisdk.ChatCompletionRequest {
	temperature := float64(defaultTemperature)
	maxTokens := defaultMaxTokens
	return &aisdk.ChatCompletionRequest{
		Model:       model,
		Messages:    messages,
		Temperature: &temperature,
		MaxTokens:   &maxTokens,
		Stream:      true,
	}
}
