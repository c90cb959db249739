package tool_allergy

import (
	"context"
	"fmt"

	"github.com/yoyofushi/feedbot/src/agent"
	"github.com/yoyofushi/feedbot/src/storage"
)

// Tool name constant
const Name = "report_allergy"

const reportAllergyPrompt = `记录宝宝对某种食材的过敏反应。记录后该食材将不会出现在未来的辅食计划中。`

// Store is the slice of domain access this tool needs.
type Store interface {
	GetFoodByName(ctx context.Context, name string) (*storage.Food, error)
	CreateOrUpdateBabyFoodStatus(ctx context.Context, change storage.FoodStatusChange) (*storage.BabyFoodStatus, error)
}

// Deps binds the tool to its subject baby and the acting caregiver.
type Deps struct {
	Store  Store
	Baby   *storage.Baby
	UserID int64
}

// ReportAllergyInput represents the arguments of one call. The
// occurrence date is accepted so the model can express it, but the
// record tracks symptoms only.
type ReportAllergyInput struct {
	FoodName       string `json:"food_name" required:"true" description:"引起过敏的食材名称"`
	Symptoms       string `json:"symptoms,omitempty" description:"过敏症状，如皮疹、腹泻、呕吐等"`
	OccurrenceDate string `json:"occurrence_date,omitempty" description:"过敏发生日期，格式YYYY-MM-DD"`
}

// makeReportAllergyHandler creates the typed handler for the tool
func makeReportAllergyHandler(deps Deps) agent.GenericToolHandler[ReportAllergyInput] {
	return func(ctx context.Context, input ReportAllergyInput) *agent.ToolOutcome {
		if input.FoodName == "" {
			return agent.ErrorOutcome("缺少食材名称")
		}

		// Resolve the name before writing anything: an unknown food
		// must leave the records untouched.
		food, err := deps.Store.GetFoodByName(ctx, input.FoodName)
		if err != nil {
			return agent.ErrorOutcome("记录失败，请稍后重试")
		}
		if food == nil {
			return agent.ErrorOutcome(fmt.Sprintf(
				"未在食材库中找到: %s。请确认食材名称是否正确。", input.FoodName))
		}

		status, err := deps.Store.CreateOrUpdateBabyFoodStatus(ctx, storage.FoodStatusChange{
			BabyID:          deps.Baby.ID,
			FoodID:          food.ID,
			Status:          storage.FoodStatusAllergic,
			UpdatedBy:       deps.UserID,
			AllergySymptoms: input.Symptoms,
		})
		if err != nil || status == nil {
			return agent.ErrorOutcome("记录失败，请稍后重试")
		}

		outcome := agent.SuccessOutcome(Name, fmt.Sprintf("已记录%s对%s过敏", deps.Baby.Name, food.Name))
		outcome.Note = fmt.Sprintf("%s已被标记为过敏食材，将不会出现在未来的辅食计划中", food.Name)
		outcome.Data = map[string]any{
			"food":     food.Name,
			"symptoms": input.Symptoms,
		}
		return outcome
	}
}

// Tool returns the report_allergy tool definition
func Tool(deps Deps) (agent.Tool, error) {
	return agent.NewGenericTool(Name, reportAllergyPrompt, makeReportAllergyHandler(deps))
}
