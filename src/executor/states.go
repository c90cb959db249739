package executor

// TurnState represents where a turn is in its lifecycle
type TurnState int

const (
	// StateIdle means the turn has not contacted the provider yet.
	StateIdle TurnState = iota
	// StateAwaitingStream means fast-tier fragments are being consumed.
	StateAwaitingStream
	// StateProcessingToolCall means a reassembled invocation is executing.
	StateProcessingToolCall
	// StateEscalating means the advanced tier is answering.
	StateEscalating
	// StateTerminated means the turn has emitted its final event.
	StateTerminated
)

func (s TurnState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAwaitingStream:
		return "awaiting_stream"
	case StateProcessingToolCall:
		return "processing_tool_call"
	case StateEscalating:
		return "escalating"
	case StateTerminated:
		return "terminated"
	default:
		return "unknown"
	}
}
