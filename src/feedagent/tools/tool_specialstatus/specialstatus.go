package tool_specialstatus

import (
	"context"
	"fmt"

	"github.com/yoyofushi/feedbot/src/agent"
	"github.com/yoyofushi/feedbot/src/storage"
)

// Tool name constant
const Name = "create_special_status"

const createSpecialStatusPrompt = `记录宝宝的特殊状态，如生病、打疫苗等。创建后2周内不会添加新食材。`

// Store is the slice of domain access this tool needs.
type Store interface {
	GetActiveSpecialStatus(ctx context.Context, babyID int64) (*storage.SpecialStatus, error)
	CreateSpecialStatus(ctx context.Context, change storage.SpecialStatusChange) (*storage.SpecialStatus, error)
}

// Deps binds the tool to its subject baby and the acting caregiver.
type Deps struct {
	Store  Store
	Baby   *storage.Baby
	UserID int64
}

// CreateSpecialStatusInput represents the arguments of one call
type CreateSpecialStatusInput struct {
	StatusType   string `json:"status_type" required:"true" enum:"sick,vaccine,other" description:"状态类型: sick=生病, vaccine=打疫苗, other=其他"`
	Description  string `json:"description,omitempty" description:"状态描述，如具体症状、疫苗名称等"`
	StartDate    string `json:"start_date,omitempty" description:"开始日期，格式YYYY-MM-DD。如果用户没有明确说明，应该询问用户确认。"`
	DurationDays int    `json:"duration_days,omitempty" default:"14" description:"持续天数，默认14天"`
}

// makeCreateSpecialStatusHandler creates the typed handler for the tool
func makeCreateSpecialStatusHandler(deps Deps) agent.GenericToolHandler[CreateSpecialStatusInput] {
	return func(ctx context.Context, input CreateSpecialStatusInput) *agent.ToolOutcome {
		if input.StatusType == "" {
			return agent.ErrorOutcome("缺少状态类型")
		}

		// The start date is accepted for confirmation flows but a new
		// status always begins today; only the format is checked.
		if input.StartDate != "" {
			if _, err := storage.ParseDate(input.StartDate); err != nil {
				return agent.ErrorOutcome("日期格式错误，请使用YYYY-MM-DD格式")
			}
		}

		existing, err := deps.Store.GetActiveSpecialStatus(ctx, deps.Baby.ID)
		if err != nil {
			return agent.ErrorOutcome("创建失败，请稍后重试")
		}
		if existing != nil {
			return agent.ErrorOutcome(fmt.Sprintf(
				"已存在特殊状态: %s，将在%d天后结束。如需记录新状态，请先结束当前状态。",
				existing.StatusTypeName(), existing.DaysRemaining()))
		}

		status, err := deps.Store.CreateSpecialStatus(ctx, storage.SpecialStatusChange{
			BabyID:       deps.Baby.ID,
			StatusType:   input.StatusType,
			Description:  input.Description,
			DurationDays: input.DurationDays,
			CreatedBy:    deps.UserID,
		})
		if err != nil || status == nil {
			return agent.ErrorOutcome("创建失败，请稍后重试")
		}

		outcome := agent.SuccessOutcome(Name, fmt.Sprintf("已记录%s的%s状态", deps.Baby.Name, status.StatusTypeName()))
		outcome.Note = "2周内将暂停添加新食材，确保宝宝安全"
		outcome.Data = map[string]any{
			"id":               status.ID,
			"status_type":      status.StatusType,
			"status_type_name": status.StatusTypeName(),
			"start_date":       status.StartDate.String(),
			"end_date":         status.EndDate.String(),
			"days_remaining":   status.DaysRemaining(),
			"description":      status.Description,
			"is_active":        status.IsActive,
		}
		return outcome
	}
}

// Tool returns the create_special_status tool definition
func Tool(deps Deps) (agent.Tool, error) {
	return agent.NewGenericTool(Name, createSpecialStatusPrompt, makeCreateSpecialStatusHandler(deps))
}
