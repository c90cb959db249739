package aisdk

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func textChunk(content string) []byte {
	return fmt.Appendf(nil, `{"id":"c1","object":"chat.completion.chunk","choices":[{"index":0,"delta":{"content":%q}}]}`, content)
}

func toolChunk(index int, id, name, arguments string) []byte {
	return fmt.Appendf(nil, `{"id":"c1","object":"chat.completion.chunk","choices":[{"index":0,"delta":{"tool_calls":[{"index":%d,"id":%q,"type":"function","function":{"name":%q,"arguments":%q}}]}}]}`, index, id, name, arguments)
}

func finishChunk(reason string) []byte {
	return fmt.Appendf(nil, `{"id":"c1","object":"chat.completion.chunk","choices":[{"index":0,"delta":{},"finish_reason":%q}]}`, reason)
}

func TestStreamParserTextPassthrough(t *testing.T) {
	p := NewStreamParser()

	deltas := []string{"宝宝", "今天", "吃了", "米粉"}
	var got string
	for _, d := range deltas {
		events := p.Feed(textChunk(d))
		require.Len(t, events, 1)
		assert.Equal(t, EventTextDelta, events[0].Type)
		got += events[0].Text
	}

	assert.Equal(t, "宝宝今天吃了米粉", got)
}

func TestStreamParserToolCallReassembly(t *testing.T) {
	p := NewStreamParser()

	// Arguments split over several fragments; id and name arrive on the
	// first fragment only.
	fragments := [][]byte{
		toolChunk(0, "call_1", "report_allergy", ""),
		toolChunk(0, "", "", `{"food_name"`),
		toolChunk(0, "", "", `:"鸡蛋","sympt`),
		toolChunk(0, "", "", `oms":"红疹"}`),
	}
	for _, f := range fragments {
		assert.Empty(t, p.Feed(f))
	}

	events := p.Feed(finishChunk("tool_calls"))
	require.Len(t, events, 2)

	require.Equal(t, EventToolInvocation, events[0].Type)
	call := events[0].ToolCall
	require.NotNil(t, call)
	assert.Equal(t, "call_1", call.ID)
	assert.Equal(t, "report_allergy", call.Function.Name)
	assert.Equal(t, `{"food_name":"鸡蛋","symptoms":"红疹"}`, call.Function.Arguments)

	assert.Equal(t, EventTurnFinished, events[1].Type)
	assert.Equal(t, "tool_calls", events[1].Reason)
}

func TestStreamParserMalformedFragmentsSkipped(t *testing.T) {
	p := NewStreamParser()

	require.Empty(t, p.Feed([]byte("not json at all")))

	events := p.Feed(textChunk("你好"))
	require.Len(t, events, 1)
	assert.Equal(t, "你好", events[0].Text)

	// Garbage between argument pieces must not disturb accumulation.
	p.Feed(toolChunk(0, "call_9", "create_meal_record", `{"meal_`))
	require.Empty(t, p.Feed([]byte(`{"choices": [`)))
	p.Feed(toolChunk(0, "", "", `type":"lunch"}`))

	events = p.Feed(finishChunk("tool_calls"))
	require.Len(t, events, 2)
	assert.Equal(t, `{"meal_type":"lunch"}`, events[0].ToolCall.Function.Arguments)
}

func TestStreamParserChunkWithoutChoices(t *testing.T) {
	p := NewStreamParser()

	assert.Empty(t, p.Feed([]byte(`{"id":"c1","object":"chat.completion.chunk","choices":[]}`)))
	assert.Empty(t, p.Feed([]byte(`{"id":"c1","object":"chat.completion.chunk"}`)))
}

func TestStreamParserFinishWithoutToolFragments(t *testing.T) {
	p := NewStreamParser()

	// A tool_calls finish with an empty accumulator is an ordinary end
	// of turn, not an invocation.
	events := p.Feed(finishChunk("tool_calls"))
	require.Len(t, events, 1)
	assert.Equal(t, EventTurnFinished, events[0].Type)
	assert.Equal(t, "tool_calls", events[0].Reason)
}

func TestStreamParserStopFinishKeepsAccumulatorPrivate(t *testing.T) {
	p := NewStreamParser()

	p.Feed(toolChunk(0, "call_1", "ask_clarification", `{"question":"哪一餐？"}`))

	// A non tool_calls finish never surfaces the accumulated call.
	events := p.Feed(finishChunk("stop"))
	require.Len(t, events, 1)
	assert.Equal(t, EventTurnFinished, events[0].Type)
	assert.Equal(t, "stop", events[0].Reason)
}

func TestStreamParserSurfacesIndexZeroOnly(t *testing.T) {
	p := NewStreamParser()

	p.Feed(toolChunk(0, "call_a", "create_meal_record", `{"meal_type":"lunch","food_names":["米粉"]}`))
	p.Feed(toolChunk(1, "call_b", "report_allergy", `{"food_name":"鸡蛋"}`))

	events := p.Feed(finishChunk("tool_calls"))
	require.Len(t, events, 2)
	assert.Equal(t, "call_a", events[0].ToolCall.ID)
	assert.Equal(t, "create_meal_record", events[0].ToolCall.Function.Name)
}

func TestStreamParserMissingIndexDefaultsToZero(t *testing.T) {
	p := NewStreamParser()

	// Some providers omit the index on single-call streams.
	p.Feed([]byte(`{"choices":[{"index":0,"delta":{"tool_calls":[{"id":"call_x","type":"function","function":{"name":"answer_question","arguments":"{}"}}]}}]}`))

	events := p.Feed(finishChunk("tool_calls"))
	require.Len(t, events, 2)
	assert.Equal(t, "call_x", events[0].ToolCall.ID)
}

func TestStreamParserCloseStream(t *testing.T) {
	p := NewStreamParser()

	events := p.CloseStream()
	require.Len(t, events, 1)
	assert.Equal(t, EventStreamClosed, events[0].Type)

	// Terminated parsers ignore everything.
	assert.Empty(t, p.CloseStream())
	assert.Empty(t, p.Fail("late"))
	assert.Empty(t, p.Feed(textChunk("ignored")))
}

func TestStreamParserFail(t *testing.T) {
	p := NewStreamParser()

	p.Feed(textChunk("部分"))

	events := p.Fail("请求超时，请稍后重试")
	require.Len(t, events, 1)
	assert.Equal(t, EventProviderError, events[0].Type)
	assert.Equal(t, "请求超时，请稍后重试", events[0].Message)

	assert.Empty(t, p.Feed(textChunk("ignored")))
	assert.Empty(t, p.Fail("again"))
	assert.Empty(t, p.CloseStream())
}

func TestStreamParserInterleavedTextAndTool(t *testing.T) {
	p := NewStreamParser()

	events := p.Feed(textChunk("好的，"))
	require.Len(t, events, 1)

	p.Feed(toolChunk(0, "call_7", "create_special_status", `{"status_type":"vaccine"}`))

	events = p.Feed(textChunk("正在记录"))
	require.Len(t, events, 1)
	assert.Equal(t, "正在记录", events[0].Text)

	events = p.Feed(finishChunk("tool_calls"))
	require.Len(t, events, 2)
	assert.Equal(t, EventToolInvocation, events[0].Type)
	assert.Equal(t, "create_special_status", events[0].ToolCall.Function.Name)
}
