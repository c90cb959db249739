package feedagent

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/yoyofushi/feedbot/src/agent"
	"github.com/yoyofushi/feedbot/src/aisdk"
	"github.com/yoyofushi/feedbot/src/feedagent/tools/tool_allergy"
	"github.com/yoyofushi/feedbot/src/feedagent/tools/tool_answer"
	"github.com/yoyofushi/feedbot/src/feedagent/tools/tool_clarify"
	"github.com/yoyofushi/feedbot/src/feedagent/tools/tool_mealrecord"
	"github.com/yoyofushi/feedbot/src/feedagent/tools/tool_specialstatus"
	"github.com/yoyofushi/feedbot/src/storage"
)

// BuildToolbox assembles the tool registry for one baby and caregiver.
// Registration order is the order tools appear in provider requests.
func BuildToolbox(store DomainStore, baby *storage.Baby, userID int64, logger *slog.Logger) (*agent.Toolbox, error) {
	toolbox := agent.NewToolbox(logger)

	specialStatus, err := tool_specialstatus.Tool(tool_specialstatus.Deps{Store: store, Baby: baby, UserID: userID})
	if err != nil {
		return nil, fmt.Errorf("failed to build %s: %w", tool_specialstatus.Name, err)
	}
	mealRecord, err := tool_mealrecord.Tool(tool_mealrecord.Deps{Store: store, Baby: baby, UserID: userID})
	if err != nil {
		return nil, fmt.Errorf("failed to build %s: %w", tool_mealrecord.Name, err)
	}
	allergy, err := tool_allergy.Tool(tool_allergy.Deps{Store: store, Baby: baby, UserID: userID})
	if err != nil {
		return nil, fmt.Errorf("failed to build %s: %w", tool_allergy.Name, err)
	}
	clarify, err := tool_clarify.Tool()
	if err != nil {
		return nil, fmt.Errorf("failed to build %s: %w", tool_clarify.Name, err)
	}
	answer, err := tool_answer.Tool()
	if err != nil {
		return nil, fmt.Errorf("failed to build %s: %w", tool_answer.Name, err)
	}

	for _, tool := range []agent.Tool{specialStatus, mealRecord, allergy, clarify, answer} {
		if err := toolbox.RegisterTool(tool); err != nil {
			return nil, err
		}
	}
	return toolbox, nil
}

// Toolset builds per-turn toolboxes, resolving the subject baby first.
type Toolset struct {
	store  DomainStore
	logger *slog.Logger
}

// NewToolset creates a toolbox builder over the given store.
func NewToolset(store DomainStore, logger *slog.Logger) *Toolset {
	if logger == nil {
		logger = slog.Default()
	}
	return &Toolset{store: store, logger: logger}
}

// BuildToolbox resolves the baby and assembles its tool registry.
func (t *Toolset) BuildToolbox(ctx context.Context, babyID, userID int64) (*agent.Toolbox, error) {
	baby, err := t.store.GetBabyByID(ctx, babyID)
	if err != nil {
		return nil, fmt.Errorf("failed to load baby %d: %w", babyID, err)
	}
	if baby == nil {
		return nil, fmt.Errorf("baby %d not found", babyID)
	}
	return BuildToolbox(t.store, baby, userID, t.logger)
}

// ToolDefinitions renders the tool definitions without binding them to
// a subject, for listings and discovery endpoints.
func ToolDefinitions(logger *slog.Logger) ([]*aisdk.ChatTool, error) {
	toolbox, err := BuildToolbox(nil, &storage.Baby{}, 0, logger)
	if err != nil {
		return nil, err
	}
	return toolbox.ChatTools(), nil
}
