package aisdk

import (
	"encoding/json"
)

// StreamEventType identifies the variant carried by a StreamEvent.
type StreamEventType int

const (
	// EventTextDelta is an incremental piece of assistant text.
	EventTextDelta StreamEventType = iota
	// EventToolInvocation is a fully reassembled tool call.
	EventToolInvocation
	// EventTurnFinished carries the provider's finish reason.
	EventTurnFinished
	// EventProviderError reports a provider or transport failure.
	EventProviderError
	// EventStreamClosed marks the end of the fragment stream.
	EventStreamClosed
)

// StreamEvent is one parsed occurrence of a streaming chat completion.
type StreamEvent struct {
	Type StreamEventType
	// Text carries the delta for EventTextDelta.
	Text string
	// ToolCall carries the completed invocation for EventToolInvocation.
	ToolCall *ToolCall
	// Reason carries the finish reason for EventTurnFinished.
	Reason string
	// Message carries the failure description for EventProviderError.
	Message string
}

// toolCallAccumulator collects the pieces of one streamed tool call.
type toolCallAccumulator struct {
	id        string
	name      string
	arguments []byte
}

func (a *toolCallAccumulator) toToolCall() *ToolCall {
	return &ToolCall{
		ID:   a.id,
		Type: "function",
		Function: FunctionCall{
			Name:      a.name,
			Arguments: string(a.arguments),
		},
	}
}

// StreamParser reassembles streaming chat completion fragments into
// StreamEvents. Tool call arguments arrive as string pieces spread over
// many fragments, addressed by a positional index; the parser buffers
// them per index and surfaces the completed invocation once the provider
// reports a tool_calls finish. Text deltas pass through immediately and
// are never buffered.
//
// A parser handles exactly one stream and is not safe for concurrent
// use. After CloseStream or Fail it ignores further input.
type StreamParser struct {
	calls      map[int]*toolCallAccumulator
	terminated bool
}

// NewStreamParser returns a parser ready for the first fragment.
func NewStreamParser() *StreamParser {
	return &StreamParser{
		calls: make(map[int]*toolCallAccumulator),
	}
}

// Feed decodes one data payload and returns the events it produced.
// Payloads that do not decode as a completion chunk are skipped without
// touching accumulator state. On a finish reason of "tool_calls" the
// completed invocation for index 0, if any, is emitted immediately
// before the finish event; at most one invocation is surfaced per
// stream.
func (p *StreamParser) Feed(raw []byte) []StreamEvent {
	if p.terminated {
		return nil
	}

	var chunk StreamChunk
	if err := json.Unmarshal(raw, &chunk); err != nil {
		return nil
	}
	if len(chunk.Choices) == 0 {
		return nil
	}

	choice := chunk.Choices[0]
	var events []StreamEvent

	if delta := choice.Delta; delta != nil {
		switch {
		case delta.ToolCalls != nil:
			for _, tc := range delta.ToolCalls {
				p.accumulate(tc)
			}
		case delta.Content != "":
			events = append(events, StreamEvent{Type: EventTextDelta, Text: delta.Content})
		}
	}

	if reason := choice.FinishReason; reason != "" {
		if reason == "tool_calls" {
			if acc, ok := p.calls[0]; ok {
				events = append(events, StreamEvent{Type: EventToolInvocation, ToolCall: acc.toToolCall()})
			}
		}
		events = append(events, StreamEvent{Type: EventTurnFinished, Reason: reason})
	}

	return events
}

// accumulate merges one fragment into the per-index state. Identifier
// and name overwrite when present, argument pieces append in arrival
// order so the final text is byte-exact.
func (p *StreamParser) accumulate(tc ToolCall) {
	index := 0
	if tc.Index != nil {
		index = *tc.Index
	}

	acc, ok := p.calls[index]
	if !ok {
		acc = &toolCallAccumulator{}
		p.calls[index] = acc
	}

	if tc.ID != "" {
		acc.id = tc.ID
	}
	if tc.Function.Name != "" {
		acc.name = tc.Function.Name
	}
	if tc.Function.Arguments != "" {
		acc.arguments = append(acc.arguments, tc.Function.Arguments...)
	}
}

// CloseStream records the end-of-stream marker. The first terminal call
// returns the closing event; the parser then ignores further input.
func (p *StreamParser) CloseStream() []StreamEvent {
	if p.terminated {
		return nil
	}
	p.terminated = true
	return []StreamEvent{{Type: EventStreamClosed}}
}

// Fail records a provider failure. The first terminal call returns the
// error event; the parser then ignores further input.
func (p *StreamParser) Fail(message string) []StreamEvent {
	if p.terminated {
		return nil
	}
	p.terminated = true
	return []StreamEvent{{Type: EventProviderError, Message: message}}
}
