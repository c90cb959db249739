package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/swaggest/jsonschema-go"
)

// GenericToolHandler is a type-safe handler function
type GenericToolHandler[TInput any] func(ctx context.Context, input TInput) *ToolOutcome

// GenericTool adapts a typed handler to the Tool interface. The
// parameter schema is reflected from the input struct; description,
// enum, required and default struct tags flow into the definition the
// model sees.
type GenericTool[TInput any] struct {
	Type        string
	Name        string
	Description string
	InputType   reflect.Type
	Schema      *jsonschema.Schema
	Handler     GenericToolHandler[TInput]
}

// GetType returns the tool type (always "function" for now)
func (gt *GenericTool[TInput]) GetType() string {
	return gt.Type
}

// GetName returns the tool's name
func (gt *GenericTool[TInput]) GetName() string {
	return gt.Name
}

// GetDescription returns the tool's description
func (gt *GenericTool[TInput]) GetDescription() string {
	return gt.Description
}

// GetParameters returns the JSON schema for the tool's parameters
func (gt *GenericTool[TInput]) GetParameters() *jsonschema.Schema {
	return gt.Schema
}

// Execute decodes the arguments and runs the handler. Arguments that do
// not decode degrade to the zero-value input, so handlers surface their
// own missing-field guidance instead of a decode error.
func (gt *GenericTool[TInput]) Execute(ctx context.Context, args json.RawMessage) *ToolOutcome {
	var input TInput
	if len(args) > 0 {
		if err := json.Unmarshal(args, &input); err != nil {
			var zero TInput
			input = zero
		}
	}
	return gt.Handler(ctx, input)
}

// NewGenericTool creates a tool from a name, a description and a typed
// handler, reflecting the input struct into a JSON schema.
func NewGenericTool[TInput any](name, description string, handler GenericToolHandler[TInput]) (*GenericTool[TInput], error) {
	var input TInput
	inputType := reflect.TypeOf(input)

	// Ensure input type is a struct
	if inputType.Kind() == reflect.Ptr {
		if inputType.Elem().Kind() != reflect.Struct {
			return nil, fmt.Errorf("tool input type must be a struct, got %s", inputType.Elem().Kind())
		}
	} else if inputType.Kind() != reflect.Struct {
		return nil, fmt.Errorf("tool input type must be a struct, got %s", inputType.Kind())
	}

	// Generate JSON Schema from the input type
	reflector := jsonschema.Reflector{}
	schema, err := reflector.Reflect(input)
	if err != nil {
		return nil, fmt.Errorf("failed to generate schema: %w", err)
	}

	return &GenericTool[TInput]{
		Type:        "function",
		Name:        name,
		Description: description,
		InputType:   inputType,
		Schema:      &schema,
		Handler:     handler,
	}, nil
}

// Ensure GenericTool implements the Tool interface
var _ Tool = (*GenericTool[struct{}])(nil)
