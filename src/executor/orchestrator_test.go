package executor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	jsonschema "github.com/swaggest/jsonschema-go"

	"github.com/yoyofushi/feedbot/src/agent"
	"github.com/yoyofushi/feedbot/src/aisdk"
	"github.com/yoyofushi/feedbot/src/convstore"
)

// scriptedStream replays canned payload frames, then ends with EOF or
// the scripted error.
type scriptedStream struct {
	frames [][]byte
	err    error
	pos    int
	closed bool
}

func (s *scriptedStream) Read() ([]byte, error) {
	if s.pos < len(s.frames) {
		frame := s.frames[s.pos]
		s.pos++
		return frame, nil
	}
	if s.err != nil {
		return nil, s.err
	}
	return nil, io.EOF
}

func (s *scriptedStream) Close() error {
	s.closed = true
	return nil
}

// scriptedProvider hands out one scripted stream per call and records
// every request it saw.
type scriptedProvider struct {
	streams  []*scriptedStream
	errs     []error
	requests []*aisdk.ChatCompletionRequest
}

func (p *scriptedProvider) CreateChatCompletion(_ context.Context, _ *aisdk.ChatCompletionRequest) (*aisdk.ChatCompletionResponse, error) {
	return nil, errors.New("not scripted")
}

func (p *scriptedProvider) CreateChatCompletionStream(_ context.Context, req *aisdk.ChatCompletionRequest) (aisdk.FragmentStream, error) {
	call := len(p.requests)
	p.requests = append(p.requests, req)
	if call < len(p.errs) && p.errs[call] != nil {
		return nil, p.errs[call]
	}
	if call < len(p.streams) {
		return p.streams[call], nil
	}
	return nil, errors.New("no scripted stream for call")
}

type recordingSink struct {
	events []*TurnEvent
	closed bool
}

func (s *recordingSink) Send(_ context.Context, event *TurnEvent) error {
	s.events = append(s.events, event)
	return nil
}

func (s *recordingSink) Close() error {
	s.closed = true
	return nil
}

func (s *recordingSink) types() []TurnEventType {
	out := make([]TurnEventType, 0, len(s.events))
	for _, e := range s.events {
		out = append(out, e.Type)
	}
	return out
}

func (s *recordingSink) lastText() string {
	for i := len(s.events) - 1; i >= 0; i-- {
		if s.events[i].Type == EventText {
			return s.events[i].Content
		}
	}
	return ""
}

// stubTool is a canned agent.Tool for wiring the dispatch path.
type stubTool struct {
	name    string
	outcome *agent.ToolOutcome
	called  json.RawMessage
}

func (t *stubTool) GetType() string                   { return "function" }
func (t *stubTool) GetName() string                   { return t.name }
func (t *stubTool) GetDescription() string            { return "scripted tool" }
func (t *stubTool) GetParameters() *jsonschema.Schema { return &jsonschema.Schema{} }

func (t *stubTool) Execute(_ context.Context, args json.RawMessage) *agent.ToolOutcome {
	t.called = args
	return t.outcome
}

func textFrame(content string) []byte {
	return []byte(fmt.Sprintf(`{"choices":[{"delta":{"content":%s}}]}`, strconv.Quote(content)))
}

func toolFrame(index int, id, name, args string) []byte {
	return []byte(fmt.Sprintf(
		`{"choices":[{"delta":{"tool_calls":[{"index":%d,"id":%s,"type":"function","function":{"name":%s,"arguments":%s}}]}}]}`,
		index, strconv.Quote(id), strconv.Quote(name), strconv.Quote(args)))
}

func finishFrame(reason string) []byte {
	return []byte(fmt.Sprintf(`{"choices":[{"delta":{},"finish_reason":%s}]}`, strconv.Quote(reason)))
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fixture struct {
	provider *scriptedProvider
	store    *convstore.Store
	service  *Service
}

func newFixture(t *testing.T, provider *scriptedProvider, tools ...agent.Tool) *fixture {
	t.Helper()

	builder := ToolboxBuilderFunc(func(_ context.Context, babyID, _ int64) (*agent.Toolbox, error) {
		if babyID == 404 {
			return nil, errors.New("baby 404 not found")
		}
		toolbox := agent.NewToolbox(discardLogger())
		for _, tool := range tools {
			if err := toolbox.RegisterTool(tool); err != nil {
				return nil, err
			}
		}
		return toolbox, nil
	})

	store := convstore.New(convstore.Config{})
	service, err := NewService(ServiceConfig{
		Provider:      provider,
		Conversations: store,
		Toolbox:       builder,
		Context: ContextRendererFunc(func(_ context.Context, _ int64) (string, error) {
			return "CTX", nil
		}),
		Prompts: PromptSet{
			System:  func(contextBlock string) string { return "SYS\n" + contextBlock },
			Advisor: func(contextBlock string) string { return "ADV\n" + contextBlock },
		},
		Models: Models{Fast: "fast-model", Advanced: "advanced-model"},
		Logger: discardLogger(),
	})
	require.NoError(t, err)

	return &fixture{provider: provider, store: store, service: service}
}

func (f *fixture) run(t *testing.T, conversationID, message string) *recordingSink {
	t.Helper()
	sink := &recordingSink{}
	err := f.service.RunTurn(context.Background(), &TurnRequest{
		ConversationID: conversationID,
		BabyID:         1,
		UserID:         9,
		Message:        message,
	}, sink)
	require.NoError(t, err)
	return sink
}

func TestRunTurnStreamsPlainText(t *testing.T) {
	provider := &scriptedProvider{streams: []*scriptedStream{
		{frames: [][]byte{textFrame("你好"), textFrame("！"), finishFrame("stop")}},
	}}
	tool := &stubTool{name: "create_meal_record", outcome: agent.SuccessOutcome("create_meal_record", "ok")}
	f := newFixture(t, provider, tool)

	sink := f.run(t, "conv_1", "你好呀")

	assert.Equal(t, []TurnEventType{EventText, EventText, EventDone}, sink.types())
	assert.Equal(t, "你好", sink.events[0].Content)
	assert.Equal(t, "conv_1", sink.events[2].ConversationID)

	msgs := f.service.Messages("conv_1")
	require.Len(t, msgs, 2)
	assert.Equal(t, "user", msgs[0].Role)
	assert.Equal(t, "你好呀", msgs[0].Content)
	assert.Equal(t, "assistant", msgs[1].Role)
	assert.Equal(t, "你好！", msgs[1].Content)

	require.Len(t, f.provider.requests, 1)
	req := f.provider.requests[0]
	assert.Equal(t, "fast-model", req.Model)
	assert.True(t, req.Stream)
	assert.Equal(t, "auto", req.ToolChoice)
	require.Len(t, req.Tools, 1)
	assert.Equal(t, "create_meal_record", req.Tools[0].Function.Name)
	require.NotNil(t, req.Temperature)
	assert.InDelta(t, 0.7, *req.Temperature, 1e-9)
	require.NotNil(t, req.MaxTokens)
	assert.Equal(t, 2048, *req.MaxTokens)
	assert.Equal(t, "system", req.Messages[0].Role)
	assert.Equal(t, "SYS\nCTX", req.Messages[0].Content)
	assert.Equal(t, "user", req.Messages[len(req.Messages)-1].Role)
}

func TestRunTurnClarificationReplacesPreamble(t *testing.T) {
	clarify := &stubTool{
		name:    "ask_clarification",
		outcome: agent.ClarificationOutcome("ask_clarification", "想记录哪一餐呢？", "meal_type"),
	}
	provider := &scriptedProvider{streams: []*scriptedStream{
		{frames: [][]byte{
			textFrame("让我确认一下"),
			toolFrame(0, "call_1", "ask_clarification", `{"question":"想记录哪`),
			toolFrame(0, "", "", `一餐呢？","missing_info":"meal_type"}`),
			finishFrame("tool_calls"),
		}},
	}}
	f := newFixture(t, provider, clarify)

	sink := f.run(t, "conv_2", "宝宝吃了南瓜")

	assert.Equal(t, []TurnEventType{EventText, EventToolCalling, EventToolResult, EventText, EventDone}, sink.types())
	assert.Equal(t, "ask_clarification", sink.events[1].Tool)

	result := sink.events[2]
	require.NotNil(t, result.Success)
	assert.True(t, *result.Success)
	assert.Equal(t, "clarification", result.Result["type"])

	// Fragmented arguments arrive reassembled.
	assert.JSONEq(t, `{"question":"想记录哪一餐呢？","missing_info":"meal_type"}`, string(clarify.called))

	// The transcript keeps only the resolution text, not the preamble.
	assert.Equal(t, "想记录哪一餐呢？", sink.lastText())
	msgs := f.service.Messages("conv_2")
	require.Len(t, msgs, 2)
	assert.Equal(t, "想记录哪一餐呢？", msgs[1].Content)
}

func TestRunTurnMutationAppendsNote(t *testing.T) {
	outcome := agent.SuccessOutcome("create_special_status", "已记录小花的打疫苗状态")
	outcome.Note = "2周内将暂停添加新食材，确保宝宝安全"
	status := &stubTool{name: "create_special_status", outcome: outcome}

	provider := &scriptedProvider{streams: []*scriptedStream{
		{frames: [][]byte{
			toolFrame(0, "call_1", "create_special_status", `{"status_type":"vaccine"}`),
			finishFrame("tool_calls"),
		}},
	}}
	f := newFixture(t, provider, status)

	sink := f.run(t, "conv_3", "宝宝今天打疫苗了")

	expected := "已记录小花的打疫苗状态\n\n💡 2周内将暂停添加新食材，确保宝宝安全"
	assert.Equal(t, expected, sink.lastText())
	msgs := f.service.Messages("conv_3")
	require.Len(t, msgs, 2)
	assert.Equal(t, expected, msgs[1].Content)
}

func TestRunTurnToolFailure(t *testing.T) {
	failing := &stubTool{name: "create_special_status", outcome: agent.ErrorOutcome("缺少状态类型")}
	provider := &scriptedProvider{streams: []*scriptedStream{
		{frames: [][]byte{
			toolFrame(0, "call_1", "create_special_status", `{}`),
			finishFrame("tool_calls"),
		}},
	}}
	f := newFixture(t, provider, failing)

	sink := f.run(t, "conv_4", "记录一下")

	assert.Equal(t, []TurnEventType{EventToolCalling, EventToolResult, EventText, EventDone}, sink.types())
	result := sink.events[1]
	require.Equal(t, EventToolResult, result.Type)
	require.NotNil(t, result.Success)
	assert.False(t, *result.Success)
	assert.Equal(t, "缺少状态类型", result.Result["error"])

	assert.Equal(t, "抱歉，缺少状态类型", sink.lastText())
	msgs := f.service.Messages("conv_4")
	require.Len(t, msgs, 2)
	assert.Equal(t, "抱歉，缺少状态类型", msgs[1].Content)
}

func TestRunTurnEscalatesToAdvancedModel(t *testing.T) {
	answer := &stubTool{
		name:    "answer_question",
		outcome: agent.AnswerOutcome("answer_question", "health", true),
	}
	provider := &scriptedProvider{streams: []*scriptedStream{
		{frames: [][]byte{
			toolFrame(0, "call_1", "answer_question", `{"question_type":"health"}`),
			finishFrame("tool_calls"),
		}},
		{frames: [][]byte{textFrame("建议多喝水"), textFrame("，注意观察。"), finishFrame("stop")}},
	}}
	f := newFixture(t, provider, answer)

	sink := f.run(t, "conv_5", "宝宝发烧怎么办")

	assert.Equal(t, []TurnEventType{EventToolCalling, EventToolResult, EventText, EventText, EventDone}, sink.types())

	require.Len(t, f.provider.requests, 2)
	second := f.provider.requests[1]
	assert.Equal(t, "advanced-model", second.Model)
	assert.Empty(t, second.Tools)
	assert.Empty(t, second.ToolChoice)
	require.Len(t, second.Messages, 2)
	assert.Equal(t, "ADV\nCTX", second.Messages[0].Content)
	assert.Equal(t, "宝宝发烧怎么办", second.Messages[1].Content)

	msgs := f.service.Messages("conv_5")
	require.Len(t, msgs, 2)
	assert.Equal(t, "建议多喝水，注意观察。", msgs[1].Content)
}

func TestRunTurnProviderFailureKeepsUserTurn(t *testing.T) {
	provider := &scriptedProvider{streams: []*scriptedStream{
		{frames: [][]byte{textFrame("正在")}, err: errors.New("connection reset")},
	}}
	f := newFixture(t, provider)

	sink := f.run(t, "conv_6", "宝宝吃了什么")

	assert.Equal(t, []TurnEventType{EventText, EventError}, sink.types())
	assert.Equal(t, "服务暂时不可用: connection reset", sink.events[1].Content)

	// The user turn stays so a retry sees it; no assistant text is kept.
	msgs := f.service.Messages("conv_6")
	require.Len(t, msgs, 1)
	assert.Equal(t, "user", msgs[0].Role)
}

func TestRunTurnTimeout(t *testing.T) {
	provider := &scriptedProvider{errs: []error{context.DeadlineExceeded}}
	f := newFixture(t, provider)

	sink := f.run(t, "conv_7", "宝宝吃了什么")

	require.Equal(t, []TurnEventType{EventError}, sink.types())
	assert.Equal(t, "请求超时，请稍后重试", sink.events[0].Content)
}

func TestRunTurnToolCallsFinishWithoutInvocation(t *testing.T) {
	provider := &scriptedProvider{streams: []*scriptedStream{
		{frames: [][]byte{finishFrame("tool_calls")}},
	}}
	f := newFixture(t, provider)

	sink := f.run(t, "conv_8", "记录一下")

	// No fragments ever arrived: a clean end with nothing to persist.
	assert.Equal(t, []TurnEventType{EventDone}, sink.types())
	msgs := f.service.Messages("conv_8")
	require.Len(t, msgs, 1)
	assert.Equal(t, "user", msgs[0].Role)
}

func TestRunTurnHistoryCarriesForward(t *testing.T) {
	provider := &scriptedProvider{streams: []*scriptedStream{
		{frames: [][]byte{textFrame("第一回"), finishFrame("stop")}},
		{frames: [][]byte{textFrame("第二回"), finishFrame("stop")}},
	}}
	f := newFixture(t, provider)

	f.run(t, "conv_9", "早上吃了米粉")
	f.run(t, "conv_9", "中午呢")

	require.Len(t, f.provider.requests, 2)
	second := f.provider.requests[1]
	require.Len(t, second.Messages, 4)
	assert.Equal(t, "system", second.Messages[0].Role)
	assert.Equal(t, "早上吃了米粉", second.Messages[1].Content)
	assert.Equal(t, "assistant", second.Messages[2].Role)
	assert.Equal(t, "第一回", second.Messages[2].Content)
	assert.Equal(t, "中午呢", second.Messages[3].Content)
}

func TestRunTurnValidation(t *testing.T) {
	f := newFixture(t, &scriptedProvider{})
	sink := &recordingSink{}
	ctx := context.Background()

	err := f.service.RunTurn(ctx, nil, sink)
	assert.ErrorIs(t, err, ErrConversationIDRequired)

	err = f.service.RunTurn(ctx, &TurnRequest{BabyID: 1, Message: "hi"}, sink)
	assert.ErrorIs(t, err, ErrConversationIDRequired)

	err = f.service.RunTurn(ctx, &TurnRequest{ConversationID: "c", Message: "hi"}, sink)
	assert.ErrorIs(t, err, ErrBabyIDRequired)

	err = f.service.RunTurn(ctx, &TurnRequest{ConversationID: "c", BabyID: 1, Message: "   "}, sink)
	assert.ErrorIs(t, err, ErrMessageRequired)

	assert.Empty(t, sink.events)
}

func TestRunTurnUnknownBaby(t *testing.T) {
	f := newFixture(t, &scriptedProvider{})
	sink := &recordingSink{}

	err := f.service.RunTurn(context.Background(), &TurnRequest{
		ConversationID: "conv_10",
		BabyID:         404,
		UserID:         9,
		Message:        "宝宝吃了什么",
	}, sink)
	require.NoError(t, err)

	require.Equal(t, []TurnEventType{EventError}, sink.types())
	assert.Equal(t, "宝宝不存在", sink.events[0].Content)
}
