package tool_mealrecord

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/yoyofushi/feedbot/src/agent"
	"github.com/yoyofushi/feedbot/src/storage"
)

// Tool name constant
const Name = "create_meal_record"

const createMealRecordPrompt = `记录宝宝吃了什么。用于记录已经发生的进食情况。`

// Store is the slice of domain access this tool needs.
type Store interface {
	GetFoodByName(ctx context.Context, name string) (*storage.Food, error)
	CreateOrUpdateMealPlan(ctx context.Context, plan *storage.MealPlan) error
	CompleteMealPlan(ctx context.Context, planID int64) error
}

// Deps binds the tool to its subject baby and the acting caregiver.
// Now defaults to time.Now and exists so tests can pin the day.
type Deps struct {
	Store  Store
	Baby   *storage.Baby
	UserID int64
	Now    func() time.Time
}

// CreateMealRecordInput represents the arguments of one call
type CreateMealRecordInput struct {
	MealDate  string   `json:"meal_date,omitempty" description:"进食日期，格式YYYY-MM-DD。如果用户没有明确说明，应该询问用户确认。"`
	MealType  string   `json:"meal_type" required:"true" enum:"breakfast,lunch,dinner,snack" description:"餐次: breakfast=早餐, lunch=午餐, dinner=晚餐, snack=加餐"`
	FoodNames []string `json:"food_names" required:"true" description:"食材名称列表"`
	Notes     string   `json:"notes,omitempty" description:"备注，如宝宝的反应、进食量等"`
}

// makeCreateMealRecordHandler creates the typed handler for the tool
func makeCreateMealRecordHandler(deps Deps) agent.GenericToolHandler[CreateMealRecordInput] {
	return func(ctx context.Context, input CreateMealRecordInput) *agent.ToolOutcome {
		if input.MealType == "" {
			return agent.ErrorOutcome("缺少餐次信息")
		}
		if len(input.FoodNames) == 0 {
			return agent.ErrorOutcome("缺少食材信息")
		}

		mealDate := storage.NewDate(deps.Now())
		if input.MealDate != "" {
			parsed, err := storage.ParseDate(input.MealDate)
			if err != nil {
				return agent.ErrorOutcome("日期格式错误，请使用YYYY-MM-DD格式")
			}
			mealDate = parsed
		}

		var (
			foodIDs    storage.FoodIDList
			foundFoods []string
			notFound   []string
		)
		for _, name := range input.FoodNames {
			food, err := deps.Store.GetFoodByName(ctx, name)
			if err != nil {
				return agent.ErrorOutcome("保存失败，请稍后重试")
			}
			if food != nil {
				foodIDs = append(foodIDs, food.ID)
				foundFoods = append(foundFoods, food.Name)
			} else {
				notFound = append(notFound, name)
			}
		}

		if len(foodIDs) == 0 {
			return agent.ErrorOutcome(fmt.Sprintf(
				"未在食材库中找到: %s。请确认食材名称是否正确。", strings.Join(input.FoodNames, ", ")))
		}

		plan := &storage.MealPlan{
			BabyID:        deps.Baby.ID,
			PlanDate:      mealDate,
			MealType:      input.MealType,
			FoodIDs:       foodIDs,
			IsAIGenerated: false,
			Notes:         input.Notes,
			CreatedBy:     deps.UserID,
		}
		if err := deps.Store.CreateOrUpdateMealPlan(ctx, plan); err != nil {
			return agent.ErrorOutcome("保存失败，请稍后重试")
		}

		// Completion is best effort; the record itself is already saved.
		_ = deps.Store.CompleteMealPlan(ctx, plan.ID)

		outcome := agent.SuccessOutcome(Name, fmt.Sprintf(
			"已记录%s %s: %s", mealDate, plan.MealTypeName(), strings.Join(foundFoods, ", ")))
		outcome.Data = map[string]any{
			"date":      mealDate.String(),
			"meal_type": input.MealType,
			"foods":     foundFoods,
		}
		if len(notFound) > 0 {
			outcome.Warning = fmt.Sprintf("以下食材未在食材库中找到: %s", strings.Join(notFound, ", "))
		}
		return outcome
	}
}

// Tool returns the create_meal_record tool definition
func Tool(deps Deps) (agent.Tool, error) {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return agent.NewGenericTool(Name, createMealRecordPrompt, makeCreateMealRecordHandler(deps))
}
