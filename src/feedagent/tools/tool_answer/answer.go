package tool_answer

import (
	"context"

	"github.com/yoyofushi/feedbot/src/agent"
)

// Tool name constant
const Name = "answer_question"

const answerQuestionPrompt = `回答用户关于宝宝喂养、健康、早教等综合问题。当用户的问题不属于记录类操作时使用此工具。`

// AnswerQuestionInput represents the arguments of one call. The
// advanced-model flag is a pointer so an omitted value defaults to
// true rather than false.
type AnswerQuestionInput struct {
	QuestionType     string `json:"question_type" required:"true" enum:"feeding,health,development,sleep,other" description:"问题类型: feeding=喂养, health=健康, development=发育/早教, sleep=睡眠, other=其他"`
	UseAdvancedModel *bool  `json:"use_advanced_model,omitempty" default:"true" description:"是否使用高级模型回答。对于复杂的健康、早教问题建议使用。"`
}

// makeAnswerQuestionHandler creates the typed handler for the tool
func makeAnswerQuestionHandler() agent.GenericToolHandler[AnswerQuestionInput] {
	return func(ctx context.Context, input AnswerQuestionInput) *agent.ToolOutcome {
		questionType := input.QuestionType
		if questionType == "" {
			questionType = "other"
		}
		useAdvanced := true
		if input.UseAdvancedModel != nil {
			useAdvanced = *input.UseAdvancedModel
		}
		return agent.AnswerOutcome(Name, questionType, useAdvanced)
	}
}

// Tool returns the answer_question tool definition
func Tool() (agent.Tool, error) {
	return agent.NewGenericTool(Name, answerQuestionPrompt, makeAnswerQuestionHandler())
}
