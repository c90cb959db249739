package feedagent

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/yoyofushi/feedbot/src/storage"
)

// ContextCollector gathers a baby's current situation and renders it
// as the prompt block both model tiers receive. Context is collected
// fresh on every turn so recent tool writes show up immediately.
type ContextCollector struct {
	store  DomainStore
	logger *slog.Logger
	now    func() time.Time
}

// NewContextCollector creates a collector over the given store.
func NewContextCollector(store DomainStore, logger *slog.Logger) *ContextCollector {
	if logger == nil {
		logger = slog.Default()
	}
	return &ContextCollector{
		store:  store,
		logger: logger.With("component", "context"),
		now:    time.Now,
	}
}

// RenderContext builds the context block for one baby. A missing
// profile is an error; failures in individual sections degrade to
// their empty fallbacks so one bad read does not sink the turn.
func (c *ContextCollector) RenderContext(ctx context.Context, babyID int64) (string, error) {
	baby, err := c.store.GetBabyByID(ctx, babyID)
	if err != nil {
		return "", fmt.Errorf("failed to load baby %d: %w", babyID, err)
	}
	if baby == nil {
		return "", fmt.Errorf("baby %d not found", babyID)
	}

	now := c.now()
	today := storage.NewDate(now)

	var b strings.Builder
	fmt.Fprintf(&b, "## 宝宝信息\n- 姓名: %s\n- 月龄: %d个月\n- 性别: %s\n- 出生日期: %s\n\n",
		baby.Name, baby.AgeMonthsAt(now), baby.GenderName(), baby.Birthday)
	fmt.Fprintf(&b, "## 当前时间\n%s %s\n", today, now.Format("15:04"))

	c.writeFoodSummary(ctx, &b, babyID)
	c.writeRecentEvents(ctx, &b, babyID, now)
	c.writeRecentMeals(ctx, &b, babyID, today)
	c.writeFutureMeals(ctx, &b, babyID, today)

	return b.String(), nil
}

func (c *ContextCollector) writeFoodSummary(ctx context.Context, b *strings.Builder, babyID int64) {
	statuses, err := c.store.ListBabyFoodStatuses(ctx, babyID, "")
	if err != nil {
		c.logger.Warn("failed to load food statuses", "baby_id", babyID, "error", err)
	}

	ids := make([]int64, 0, len(statuses))
	for _, s := range statuses {
		ids = append(ids, s.FoodID)
	}
	names := c.foodNames(ctx, ids)

	var safeFoods, allergicFoods []string
	for _, s := range statuses {
		name, ok := names[s.FoodID]
		if !ok {
			continue
		}
		switch s.Status {
		case storage.FoodStatusSafe:
			safeFoods = append(safeFoods, name)
		case storage.FoodStatusAllergic:
			allergicFoods = append(allergicFoods, name)
		}
	}

	fmt.Fprintf(b, "\n## 食材状态\n- 已安全添加: %d种", len(safeFoods))
	if len(safeFoods) > 0 {
		display := safeFoods
		suffix := ""
		if len(display) > 10 {
			display = display[:10]
			suffix = "..."
		}
		fmt.Fprintf(b, " (%s%s)", strings.Join(display, ", "), suffix)
	} else {
		b.WriteString(" (暂无)")
	}

	fmt.Fprintf(b, "\n- 过敏食材: %d种", len(allergicFoods))
	if len(allergicFoods) > 0 {
		fmt.Fprintf(b, " (%s)", strings.Join(allergicFoods, ", "))
	} else {
		b.WriteString(" (暂无)")
	}
	b.WriteString("\n")
}

func (c *ContextCollector) writeRecentEvents(ctx context.Context, b *strings.Builder, babyID int64, now time.Time) {
	var lines []string

	status, err := c.store.GetActiveSpecialStatus(ctx, babyID)
	if err != nil {
		c.logger.Warn("failed to load special status", "baby_id", babyID, "error", err)
	}
	if status != nil {
		lines = append(lines, fmt.Sprintf("- 【特殊状态】%s: %s ~ %s, 剩余%d天",
			status.StatusTypeName(), status.StartDate, status.EndDate, status.DaysRemainingAt(now)))
	}

	testing, err := c.store.GetTestingFood(ctx, babyID)
	if err != nil {
		c.logger.Warn("failed to load testing food", "baby_id", babyID, "error", err)
	}
	if testing != nil {
		names := c.foodNames(ctx, []int64{testing.FoodID})
		lines = append(lines, fmt.Sprintf("- 【排敏中】%s: 剩余%d天",
			lookupName(names, testing.FoodID), testing.TestingDaysRemainingAt(now)))
	}

	allergic, err := c.store.ListBabyFoodStatuses(ctx, babyID, storage.FoodStatusAllergic)
	if err != nil {
		c.logger.Warn("failed to load allergy records", "baby_id", babyID, "error", err)
	}
	if len(allergic) > 3 {
		allergic = allergic[len(allergic)-3:]
	}
	if len(allergic) > 0 {
		ids := make([]int64, 0, len(allergic))
		for _, s := range allergic {
			ids = append(ids, s.FoodID)
		}
		names := c.foodNames(ctx, ids)
		for _, s := range allergic {
			symptoms := s.AllergySymptoms
			if symptoms == "" {
				symptoms = "无症状记录"
			}
			lines = append(lines, fmt.Sprintf("- 【过敏记录】%s: %s (%s)",
				lookupName(names, s.FoodID), symptoms, storage.NewDate(s.UpdatedAt)))
		}
	}

	b.WriteString("\n## 近期事件\n")
	if len(lines) == 0 {
		b.WriteString("暂无特殊事件\n")
		return
	}
	for _, line := range lines {
		b.WriteString(line)
		b.WriteString("\n")
	}
}

func (c *ContextCollector) writeRecentMeals(ctx context.Context, b *strings.Builder, babyID int64, today storage.Date) {
	b.WriteString("\n## 过去7天食谱\n")
	plans, err := c.store.ListMealPlansByDateRange(ctx, babyID, today.AddDays(-7), today.AddDays(-1))
	if err != nil {
		c.logger.Warn("failed to load recent meals", "baby_id", babyID, "error", err)
	}
	if len(plans) == 0 {
		b.WriteString("暂无记录\n")
		return
	}

	names := c.foodNames(ctx, planFoodIDs(plans))
	for _, p := range plans {
		status := "未完成"
		if p.IsCompleted {
			status = "已完成"
		}
		fmt.Fprintf(b, "- %s %s: %s [%s]\n", p.PlanDate, p.MealTypeName(), joinFoodNames(p.FoodIDs, names), status)
	}
}

func (c *ContextCollector) writeFutureMeals(ctx context.Context, b *strings.Builder, babyID int64, today storage.Date) {
	b.WriteString("\n## 未来7天计划\n")
	plans, err := c.store.ListMealPlansByDateRange(ctx, babyID, today, today.AddDays(7))
	if err != nil {
		c.logger.Warn("failed to load planned meals", "baby_id", babyID, "error", err)
	}
	if len(plans) == 0 {
		b.WriteString("暂无计划\n")
		return
	}

	names := c.foodNames(ctx, planFoodIDs(plans))
	for _, p := range plans {
		newMark := ""
		if p.NewFoodID != nil {
			if name, ok := names[*p.NewFoodID]; ok {
				newMark = fmt.Sprintf(" 【新食材: %s】", name)
			}
		}
		fmt.Fprintf(b, "- %s %s: %s%s\n", p.PlanDate, p.MealTypeName(), joinFoodNames(p.FoodIDs, names), newMark)
	}
}

// foodNames resolves food ids to names in one batch read.
func (c *ContextCollector) foodNames(ctx context.Context, ids []int64) map[int64]string {
	names := make(map[int64]string, len(ids))
	if len(ids) == 0 {
		return names
	}
	foods, err := c.store.GetFoodsByIDs(ctx, ids)
	if err != nil {
		c.logger.Warn("failed to resolve food names", "error", err)
		return names
	}
	for _, f := range foods {
		names[f.ID] = f.Name
	}
	return names
}

func planFoodIDs(plans []storage.MealPlan) []int64 {
	var ids []int64
	for _, p := range plans {
		ids = append(ids, p.FoodIDs...)
		if p.NewFoodID != nil {
			ids = append(ids, *p.NewFoodID)
		}
	}
	return ids
}

func joinFoodNames(ids storage.FoodIDList, names map[int64]string) string {
	resolved := make([]string, 0, len(ids))
	for _, id := range ids {
		if name, ok := names[id]; ok {
			resolved = append(resolved, name)
		}
	}
	if len(resolved) == 0 {
		return "无"
	}
	return strings.Join(resolved, ", ")
}

func lookupName(names map[int64]string, id int64) string {
	if name, ok := names[id]; ok {
		return name
	}
	return "未知"
}
