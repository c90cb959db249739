package tool_answer

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yoyofushi/feedbot/src/agent"
)

func TestAnswerQuestion(t *testing.T) {
	tool, err := Tool()
	require.NoError(t, err)

	outcome := tool.Execute(context.Background(), json.RawMessage(`{"question_type":"health","use_advanced_model":false}`))

	require.Equal(t, agent.KindAnswer, outcome.Kind)
	assert.True(t, outcome.Succeeded)
	assert.Equal(t, "health", outcome.QuestionType)
	assert.False(t, outcome.UseAdvancedModel)
}

func TestAnswerQuestionDefaultsToAdvanced(t *testing.T) {
	tool, err := Tool()
	require.NoError(t, err)

	// An omitted flag means escalate, not stay on the fast tier.
	outcome := tool.Execute(context.Background(), json.RawMessage(`{"question_type":"development"}`))

	require.Equal(t, agent.KindAnswer, outcome.Kind)
	assert.True(t, outcome.UseAdvancedModel)

	payload := outcome.Payload()
	assert.Equal(t, "answer", payload["type"])
	assert.Equal(t, "development", payload["question_type"])
	assert.Equal(t, true, payload["use_advanced_model"])
}

func TestAnswerQuestionEmptyType(t *testing.T) {
	tool, err := Tool()
	require.NoError(t, err)

	outcome := tool.Execute(context.Background(), json.RawMessage(`{}`))

	require.Equal(t, agent.KindAnswer, outcome.Kind)
	assert.Equal(t, "other", outcome.QuestionType)
	assert.True(t, outcome.UseAdvancedModel)
}
