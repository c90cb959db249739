package executor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/yoyofushi/feedbot/src/agent"
	"github.com/yoyofushi/feedbot/src/aisdk"
	"github.com/yoyofushi/feedbot/src/convstore"
)

// TurnRequest describes one user turn.
type TurnRequest struct {
	// ConversationID scopes the transcript. Callers mint ids; blank is
	// rejected here.
	ConversationID string

	// BabyID is the subject of the turn.
	BabyID int64

	// UserID is the acting caregiver, recorded on tool writes.
	UserID int64

	// Message is the user's input.
	Message string
}

// RunTurn executes one conversation turn, delivering progress to sink.
// Provider failures and tool errors end the turn in-band as error
// events with a nil return; the error return covers invalid requests, a
// canceled context and a dead sink. The caller owns sink.Close.
func (s *Service) RunTurn(ctx context.Context, req *TurnRequest, sink EventSink) error {
	if req == nil || req.ConversationID == "" {
		return ErrConversationIDRequired
	}
	if req.BabyID <= 0 {
		return ErrBabyIDRequired
	}
	if strings.TrimSpace(req.Message) == "" {
		return ErrMessageRequired
	}

	emitter := NewEventEmitter(sink, req.ConversationID)
	logger := s.logger.With("conversation_id", req.ConversationID, "baby_id", req.BabyID)
	state := StateIdle

	toolbox, err := s.toolbox.BuildToolbox(ctx, req.BabyID, req.UserID)
	if err != nil {
		logger.Warn("toolbox build failed", "error", err)
		return s.failTurn(ctx, logger, emitter, &state, "宝宝不存在")
	}

	contextBlock, err := s.contextSource.RenderContext(ctx, req.BabyID)
	if err != nil {
		logger.Warn("context render failed", "error", err)
		return s.failTurn(ctx, logger, emitter, &state, "宝宝不存在")
	}

	conv := s.conversations.Get(req.ConversationID)
	if conv == nil {
		conv = &convstore.Conversation{ID: req.ConversationID, BabyID: req.BabyID}
		s.conversations.Put(req.ConversationID, conv)
	}
	history := conv.Messages

	// The user turn is remembered before the provider call so it
	// survives a failed stream.
	userMsg := aisdk.Message{Role: "user", Content: req.Message}
	s.conversations.AppendMessages(req.ConversationID, userMsg)

	messages := make([]*aisdk.Message, 0, len(history)+2)
	messages = append(messages, &aisdk.Message{Role: "system", Content: s.prompts.System(contextBlock)})
	for i := range history {
		messages = append(messages, &history[i])
	}
	messages = append(messages, &userMsg)

	request := s.newChatRequest(s.models.Fast, messages)
	request.Tools = toolbox.ChatTools()
	request.ToolChoice = "auto"

	s.transition(logger, &state, StateAwaitingStream)
	result, err := s.streamOnce(ctx, request, emitter)
	if err != nil {
		return err
	}
	if result.failure != "" {
		return s.failTurn(ctx, logger, emitter, &state, result.failure)
	}
	logger.Debug("stream complete", "finish_reason", result.reason, "tool_call", result.invocation != nil)

	fullContent := result.text

	if result.invocation != nil {
		s.transition(logger, &state, StateProcessingToolCall)
		outcome, err := s.dispatchTool(ctx, toolbox, result.invocation, emitter)
		if err != nil {
			return err
		}

		if outcome.Kind == agent.KindAnswer {
			s.transition(logger, &state, StateEscalating)
			return s.escalate(ctx, req, contextBlock, emitter, &state, logger)
		}

		// The streamed preamble is replaced; only the resolution text
		// goes into the transcript.
		replacement := resolveToolText(outcome)
		if err := emitter.EmitText(ctx, replacement); err != nil {
			return err
		}
		fullContent = replacement
	}

	return s.finishTurn(ctx, req.ConversationID, fullContent, emitter, &state, logger)
}

// dispatchTool announces, executes and reports one tool invocation.
func (s *Service) dispatchTool(ctx context.Context, toolbox *agent.Toolbox, call *aisdk.ToolCall, emitter *EventEmitter) (*agent.ToolOutcome, error) {
	name := call.Function.Name
	if err := emitter.EmitToolCalling(ctx, name); err != nil {
		return nil, err
	}
	outcome := toolbox.ExecuteTool(ctx, name, json.RawMessage(call.Function.Arguments))
	if err := emitter.EmitToolResult(ctx, name, outcome.Succeeded, outcome.Payload()); err != nil {
		return nil, err
	}
	return outcome, nil
}

// escalate answers the original question on the advanced tier. The
// fresh request carries the advisor prompt and the user message only;
// no transcript, no tools.
func (s *Service) escalate(ctx context.Context, req *TurnRequest, contextBlock string, emitter *EventEmitter, state *TurnState, logger *slog.Logger) error {
	request := s.newChatRequest(s.models.Advanced, []*aisdk.Message{
		{Role: "system", Content: s.prompts.Advisor(contextBlock)},
		{Role: "user", Content: req.Message},
	})

	result, err := s.streamOnce(ctx, request, emitter)
	if err != nil {
		return err
	}
	if result.failure != "" {
		return s.failTurn(ctx, logger, emitter, state, result.failure)
	}
	return s.finishTurn(ctx, req.ConversationID, result.text, emitter, state, logger)
}

// finishTurn persists the assistant text when present and closes the
// turn with a done event.
func (s *Service) finishTurn(ctx context.Context, conversationID, text string, emitter *EventEmitter, state *TurnState, logger *slog.Logger) error {
	if text != "" {
		s.conversations.AppendMessages(conversationID, aisdk.Message{Role: "assistant", Content: text})
	}
	s.transition(logger, state, StateTerminated)
	return emitter.EmitDone(ctx)
}

// failTurn ends the turn with an error event. No done event follows and
// nothing is persisted; the remembered user turn stays.
func (s *Service) failTurn(ctx context.Context, logger *slog.Logger, emitter *EventEmitter, state *TurnState, content string) error {
	logger.Info("turn failed", "reason", content)
	s.transition(logger, state, StateTerminated)
	return emitter.EmitError(ctx, content)
}

func (s *Service) transition(logger *slog.Logger, state *TurnState, next TurnState) {
	logger.Debug("turn state change", "from", state.String(), "to", next.String())
	*state = next
}

// streamResult is what one provider stream produced.
type streamResult struct {
	text       string
	invocation *aisdk.ToolCall
	reason     string
	// failure carries the user-facing text of a provider failure; empty
	// means the stream completed.
	failure string
}

// streamOnce runs one provider call, forwarding text deltas as events
// and reassembling at most one tool invocation. Provider failures come
// back in streamResult.failure; the error return is reserved for a dead
// caller context or sink.
func (s *Service) streamOnce(ctx context.Context, request *aisdk.ChatCompletionRequest, emitter *EventEmitter) (*streamResult, error) {
	callCtx := ctx
	if s.requestTimeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, s.requestTimeout)
		defer cancel()
	}

	result := &streamResult{}

	stream, err := s.provider.CreateChatCompletionStream(callCtx, request)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if callCtx.Err() != nil {
			err = callCtx.Err()
		}
		result.failure = providerErrorText(err)
		return result, nil
	}
	defer stream.Close()

	parser := aisdk.NewStreamParser()
	var text strings.Builder

	for {
		payload, readErr := stream.Read()

		var events []aisdk.StreamEvent
		switch {
		case readErr == nil:
			events = parser.Feed(payload)
		case errors.Is(readErr, io.EOF):
			events = parser.CloseStream()
		default:
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			if callCtx.Err() != nil {
				readErr = callCtx.Err()
			}
			events = parser.Fail(providerErrorText(readErr))
		}

		for _, event := range events {
			switch event.Type {
			case aisdk.EventTextDelta:
				text.WriteString(event.Text)
				if err := emitter.EmitText(ctx, event.Text); err != nil {
					return nil, err
				}
			case aisdk.EventToolInvocation:
				result.invocation = event.ToolCall
			case aisdk.EventTurnFinished:
				result.reason = event.Reason
			case aisdk.EventProviderError:
				result.failure = event.Message
				return result, nil
			case aisdk.EventStreamClosed:
				result.text = text.String()
				return result, nil
			}
		}
	}
}

// resolveToolText maps a tool outcome to the assistant text of the
// turn.
func resolveToolText(outcome *agent.ToolOutcome) string {
	switch outcome.Kind {
	case agent.KindClarification:
		return outcome.Question
	case agent.KindError:
		msg := outcome.Err
		if msg == "" {
			msg = "操作失败，请稍后重试"
		}
		return "抱歉，" + msg
	default:
		msg := outcome.Message
		if msg == "" {
			msg = "操作完成"
		}
		if outcome.Note != "" {
			msg += "\n\n💡 " + outcome.Note
		}
		return msg
	}
}

// providerErrorText maps transport failures to user-facing text.
func providerErrorText(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "请求超时，请稍后重试"
	}
	return fmt.Sprintf("服务暂时不可用: %v", err)
}
