package tool_clarify

import (
	"context"

	"github.com/yoyofushi/feedbot/src/agent"
)

// Tool name constant
const Name = "ask_clarification"

const askClarificationPrompt = `当用户输入信息不完整时，向用户询问补充信息。例如：缺少日期、餐次、具体食材等。`

// AskClarificationInput represents the arguments of one call
type AskClarificationInput struct {
	Question    string `json:"question" required:"true" description:"要询问用户的问题，使用友好亲切的语气"`
	MissingInfo string `json:"missing_info" required:"true" enum:"date,meal_type,food_name,symptoms,other" description:"缺少的信息类型"`
}

// makeAskClarificationHandler creates the typed handler for the tool
func makeAskClarificationHandler() agent.GenericToolHandler[AskClarificationInput] {
	return func(ctx context.Context, input AskClarificationInput) *agent.ToolOutcome {
		question := input.Question
		if question == "" {
			question = "请提供更多信息"
		}
		missingInfo := input.MissingInfo
		if missingInfo == "" {
			missingInfo = "other"
		}
		return agent.ClarificationOutcome(Name, question, missingInfo)
	}
}

// Tool returns the ask_clarification tool definition
func Tool() (agent.Tool, error) {
	return agent.NewGenericTool(Name, askClarificationPrompt, makeAskClarificationHandler())
}
