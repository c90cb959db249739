package executor

import (
	"context"
	"sync"
)

// TurnEventType represents the type of turn event
type TurnEventType string

const (
	// EventText is an incremental piece of assistant text.
	EventText TurnEventType = "text"
	// EventToolCalling announces a tool invocation about to run.
	EventToolCalling TurnEventType = "tool_calling"
	// EventToolResult reports a finished tool invocation.
	EventToolResult TurnEventType = "tool_result"
	// EventError reports a failure that ended the turn.
	EventError TurnEventType = "error"
	// EventDone marks the end of a turn.
	EventDone TurnEventType = "done"
)

// TurnEvent is one wire-visible occurrence of a running turn. The same
// shape serves the SSE endpoint and the interactive console.
type TurnEvent struct {
	Type TurnEventType `json:"type"`
	// Content carries text deltas and error descriptions.
	Content string `json:"content,omitempty"`
	// Tool names the tool on tool_calling and tool_result events.
	Tool string `json:"tool,omitempty"`
	// Success is the tool verdict on tool_result events. A pointer so
	// failed results still serialize success:false.
	Success *bool `json:"success,omitempty"`
	// Result is the tool payload on tool_result events.
	Result map[string]any `json:"result,omitempty"`
	// ConversationID rides the done event so callers learn ids the
	// server generated for them.
	ConversationID string `json:"conversation_id,omitempty"`
}

// NewTextEvent creates a text delta event.
func NewTextEvent(content string) *TurnEvent {
	return &TurnEvent{Type: EventText, Content: content}
}

// NewToolCallingEvent creates a tool announcement event.
func NewToolCallingEvent(tool string) *TurnEvent {
	return &TurnEvent{Type: EventToolCalling, Tool: tool}
}

// NewToolResultEvent creates a tool result event.
func NewToolResultEvent(tool string, success bool, result map[string]any) *TurnEvent {
	return &TurnEvent{Type: EventToolResult, Tool: tool, Success: &success, Result: result}
}

// NewErrorEvent creates an error event.
func NewErrorEvent(content string) *TurnEvent {
	return &TurnEvent{Type: EventError, Content: content}
}

// NewDoneEvent creates the terminal event of a turn.
func NewDoneEvent(conversationID string) *TurnEvent {
	return &TurnEvent{Type: EventDone, ConversationID: conversationID}
}

// EventSink is the interface for delivering turn events
type EventSink interface {
	// Send delivers one event. It may block until the consumer is
	// ready; the context bounds the wait.
	Send(ctx context.Context, event *TurnEvent) error

	// Close releases the sink. Senders must not Send afterwards.
	Close() error
}

// ChannelEventSink implements EventSink over a buffered channel. One
// producer Sends then Closes; consumers range over Events until the
// channel is closed.
type ChannelEventSink struct {
	events chan *TurnEvent
	done   chan struct{}
	once   sync.Once
}

// NewChannelEventSink creates a new channel-based event sink
func NewChannelEventSink(bufferSize int) *ChannelEventSink {
	if bufferSize <= 0 {
		bufferSize = 16
	}
	return &ChannelEventSink{
		events: make(chan *TurnEvent, bufferSize),
		done:   make(chan struct{}),
	}
}

// Send delivers the event, waiting for buffer space until the context
// ends or the sink closes.
func (s *ChannelEventSink) Send(ctx context.Context, event *TurnEvent) error {
	select {
	case <-s.done:
		return ErrSinkClosed
	default:
	}
	select {
	case s.events <- event:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Events is the consumer side of the sink.
func (s *ChannelEventSink) Events() <-chan *TurnEvent {
	return s.events
}

// Close closes the event channel so consumer range loops terminate.
func (s *ChannelEventSink) Close() error {
	s.once.Do(func() {
		close(s.done)
		close(s.events)
	})
	return nil
}
