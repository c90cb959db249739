package executor

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yoyofushi/feedbot/src/agent"
	"github.com/yoyofushi/feedbot/src/convstore"
)

func TestNewServiceValidation(t *testing.T) {
	provider := &scriptedProvider{}
	store := convstore.New(convstore.Config{})
	builder := ToolboxBuilderFunc(func(_ context.Context, _, _ int64) (*agent.Toolbox, error) {
		return agent.NewToolbox(discardLogger()), nil
	})
	renderer := ContextRendererFunc(func(_ context.Context, _ int64) (string, error) {
		return "", nil
	})

	_, err := NewService(ServiceConfig{})
	assert.ErrorIs(t, err, ErrProviderRequired)

	_, err = NewService(ServiceConfig{Provider: provider})
	assert.ErrorIs(t, err, ErrStoreRequired)

	_, err = NewService(ServiceConfig{Provider: provider, Conversations: store})
	assert.ErrorIs(t, err, ErrToolboxRequired)

	_, err = NewService(ServiceConfig{Provider: provider, Conversations: store, Toolbox: builder})
	assert.ErrorIs(t, err, ErrContextRequired)

	_, err = NewService(ServiceConfig{Provider: provider, Conversations: store, Toolbox: builder, Context: renderer})
	assert.ErrorIs(t, err, ErrFastModelRequired)
}

func TestNewServiceDefaults(t *testing.T) {
	provider := &scriptedProvider{}
	service, err := NewService(ServiceConfig{
		Provider:      provider,
		Conversations: convstore.New(convstore.Config{}),
		Toolbox: ToolboxBuilderFunc(func(_ context.Context, _, _ int64) (*agent.Toolbox, error) {
			return agent.NewToolbox(discardLogger()), nil
		}),
		Context: ContextRendererFunc(func(_ context.Context, _ int64) (string, error) {
			return "", nil
		}),
		Models: Models{Fast: "fast-model"},
		Logger: discardLogger(),
	})
	require.NoError(t, err)

	assert.Equal(t, "fast-model", service.models.Advanced)
	assert.Equal(t, DefaultRequestTimeout, service.requestTimeout)
}

func TestMessagesUnknownConversation(t *testing.T) {
	f := newFixture(t, &scriptedProvider{})
	assert.Nil(t, f.service.Messages("missing"))
}

func TestConsoleSinkRendersEvents(t *testing.T) {
	var buf bytes.Buffer
	sink := NewConsoleSink(&buf, ConsoleSinkConfig{ShowToolResults: true})
	ctx := context.Background()

	require.NoError(t, sink.Send(ctx, NewTextEvent("你好")))
	require.NoError(t, sink.Send(ctx, NewToolCallingEvent("create_meal_record")))
	require.NoError(t, sink.Send(ctx, NewToolResultEvent("create_meal_record", false, map[string]any{"error": "缺少餐次信息"})))
	require.NoError(t, sink.Send(ctx, NewErrorEvent("服务暂时不可用")))
	require.NoError(t, sink.Send(ctx, NewDoneEvent("conv_1")))
	require.NoError(t, sink.Close())

	out := buf.String()
	assert.Contains(t, out, "你好")
	assert.Contains(t, out, "create_meal_record")
	assert.Contains(t, out, "缺少餐次信息")
	assert.Contains(t, out, "错误")
}
