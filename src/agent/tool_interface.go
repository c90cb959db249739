package agent

import (
	"context"
	"encoding/json"

	jsonschema "github.com/swaggest/jsonschema-go"
)

// Tool is the interface that all tools must implement
type Tool interface {
	// GetType returns the tool type (always "function" for now)
	GetType() string

	// GetName returns the tool's name
	GetName() string

	// GetDescription returns the tool's description
	GetDescription() string

	// GetParameters returns the JSON schema for the tool's parameters
	GetParameters() *jsonschema.Schema

	// Execute runs the tool against the raw JSON arguments. Failures are
	// reported through the outcome, never by panicking.
	Execute(ctx context.Context, args json.RawMessage) *ToolOutcome
}
