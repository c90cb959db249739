package executor

import "context"

// EventEmitter stamps events with their conversation and hides
// nil-sink checks from the orchestration loop.
type EventEmitter struct {
	sink           EventSink
	conversationID string
}

// NewEventEmitter creates a new event emitter
func NewEventEmitter(sink EventSink, conversationID string) *EventEmitter {
	return &EventEmitter{
		sink:           sink,
		conversationID: conversationID,
	}
}

// EmitText emits a text delta event
func (e *EventEmitter) EmitText(ctx context.Context, content string) error {
	if e.sink == nil {
		return nil
	}
	return e.sink.Send(ctx, NewTextEvent(content))
}

// EmitToolCalling emits a tool announcement event
func (e *EventEmitter) EmitToolCalling(ctx context.Context, tool string) error {
	if e.sink == nil {
		return nil
	}
	return e.sink.Send(ctx, NewToolCallingEvent(tool))
}

// EmitToolResult emits a tool result event
func (e *EventEmitter) EmitToolResult(ctx context.Context, tool string, success bool, result map[string]any) error {
	if e.sink == nil {
		return nil
	}
	return e.sink.Send(ctx, NewToolResultEvent(tool, success, result))
}

// EmitError emits an error event
func (e *EventEmitter) EmitError(ctx context.Context, content string) error {
	if e.sink == nil {
		return nil
	}
	return e.sink.Send(ctx, NewErrorEvent(content))
}

// EmitDone emits the terminal event of a turn
func (e *EventEmitter) EmitDone(ctx context.Context) error {
	if e.sink == nil {
		return nil
	}
	return e.sink.Send(ctx, NewDoneEvent(e.conversationID))
}
