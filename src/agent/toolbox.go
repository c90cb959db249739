package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/yoyofushi/feedbot/src/aisdk"
)

// Toolbox handles tool/function calling functionality. Dispatch is an
// explicit name to implementation mapping; registration order is kept
// so request composition lists tools deterministically.
type Toolbox struct {
	tools  map[string]Tool
	order  []string
	logger *slog.Logger
}

// NewToolbox creates a new tool manager.
func NewToolbox(logger *slog.Logger) *Toolbox {
	if logger == nil {
		logger = slog.Default()
	}
	return &Toolbox{
		tools:  make(map[string]Tool),
		logger: logger.With("component", "toolbox"),
	}
}

// RegisterTool registers a tool.
func (tb *Toolbox) RegisterTool(tool Tool) error {
	name := tool.GetName()
	if name == "" {
		return fmt.Errorf("tool name cannot be empty")
	}

	// Check for duplicate tool names
	if _, exists := tb.tools[name]; exists {
		return fmt.Errorf("tool %s is already registered", name)
	}

	tb.tools[name] = tool
	tb.order = append(tb.order, name)
	return nil
}

// Tools returns the registered tools in registration order.
func (tb *Toolbox) Tools() []Tool {
	out := make([]Tool, 0, len(tb.order))
	for _, name := range tb.order {
		out = append(out, tb.tools[name])
	}
	return out
}

// ChatTools renders the registered tools in the format chat completion
// requests expect, in registration order.
func (tb *Toolbox) ChatTools() []*aisdk.ChatTool {
	out := make([]*aisdk.ChatTool, 0, len(tb.order))
	for _, name := range tb.order {
		tool := tb.tools[name]
		out = append(out, &aisdk.ChatTool{
			Type: tool.GetType(),
			Function: aisdk.ChatToolFunction{
				Name:        tool.GetName(),
				Description: tool.GetDescription(),
				Parameters:  tool.GetParameters(),
			},
		})
	}
	return out
}

// GetTool returns a specific tool by name.
func (tb *Toolbox) GetTool(name string) (Tool, bool) {
	tool, exists := tb.tools[name]
	return tool, exists
}

// HasTool checks if a tool is available.
func (tb *Toolbox) HasTool(name string) bool {
	_, exists := tb.tools[name]
	return exists
}

// ExecuteTool dispatches a call by tool name. Unknown names and handler
// panics come back as error outcomes; dispatch never propagates a
// failure to the caller.
func (tb *Toolbox) ExecuteTool(ctx context.Context, name string, args json.RawMessage) (outcome *ToolOutcome) {
	tool, exists := tb.tools[name]
	if !exists {
		return ErrorOutcome(fmt.Sprintf("未知工具: %s", name))
	}

	defer func() {
		if r := recover(); r != nil {
			tb.logger.Error("tool handler panicked", "tool", name, "panic", r)
			outcome = ErrorOutcome(fmt.Sprint(r))
		}
	}()

	outcome = tool.Execute(ctx, args)
	if outcome == nil {
		outcome = ErrorOutcome("操作失败，请稍后重试")
	}
	return outcome
}
