package executor

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// ConsoleSinkConfig configures console rendering.
type ConsoleSinkConfig struct {
	// ShowToolResults prints a one-line preview of tool payloads.
	ShowToolResults bool
	// MaxResultPreview caps the preview length.
	MaxResultPreview int
}

// ConsoleSink renders turn events for an interactive terminal session.
// Text deltas print as they arrive so replies appear to stream.
type ConsoleSink struct {
	out    io.Writer
	config ConsoleSinkConfig

	toolStyle  lipgloss.Style
	okStyle    lipgloss.Style
	failStyle  lipgloss.Style
	errorStyle lipgloss.Style
	mutedStyle lipgloss.Style
}

// NewConsoleSink creates a console event sink writing to out.
func NewConsoleSink(out io.Writer, config ConsoleSinkConfig) *ConsoleSink {
	if config.MaxResultPreview <= 0 {
		config.MaxResultPreview = 200
	}

	return &ConsoleSink{
		out:        out,
		config:     config,
		toolStyle:  lipgloss.NewStyle().Foreground(lipgloss.Color("#5fafff")).Bold(true),
		okStyle:    lipgloss.NewStyle().Foreground(lipgloss.Color("#00ff00")),
		failStyle:  lipgloss.NewStyle().Foreground(lipgloss.Color("#ff5f5f")),
		errorStyle: lipgloss.NewStyle().Foreground(lipgloss.Color("#ff5f5f")).Bold(true),
		mutedStyle: lipgloss.NewStyle().Foreground(lipgloss.Color("#808080")),
	}
}

// Send renders one event.
func (s *ConsoleSink) Send(_ context.Context, event *TurnEvent) error {
	switch event.Type {
	case EventText:
		fmt.Fprint(s.out, event.Content)

	case EventToolCalling:
		fmt.Fprintf(s.out, "\n%s\n", s.toolStyle.Render("🔧 "+event.Tool))

	case EventToolResult:
		verdict := s.okStyle.Render("✓")
		if event.Success != nil && !*event.Success {
			verdict = s.failStyle.Render("✗")
		}
		fmt.Fprintf(s.out, "%s %s\n", verdict, s.mutedStyle.Render(event.Tool))
		if s.config.ShowToolResults && len(event.Result) > 0 {
			fmt.Fprintf(s.out, "  %s\n", s.mutedStyle.Render(s.resultPreview(event.Result)))
		}

	case EventError:
		fmt.Fprintf(s.out, "\n%s\n", s.errorStyle.Render("错误: "+event.Content))

	case EventDone:
		fmt.Fprintln(s.out)
	}

	return nil
}

// Close cleans up resources.
func (s *ConsoleSink) Close() error {
	return nil
}

func (s *ConsoleSink) resultPreview(result map[string]any) string {
	raw, err := json.Marshal(result)
	if err != nil {
		return fmt.Sprintf("%v", result)
	}
	preview := strings.ReplaceAll(string(raw), "\n", " ")
	if len(preview) > s.config.MaxResultPreview {
		preview = preview[:s.config.MaxResultPreview] + "..."
	}
	return preview
}
