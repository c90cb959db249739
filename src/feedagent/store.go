package feedagent

import (
	"context"

	"github.com/yoyofushi/feedbot/src/storage"
)

// DomainStore is the domain access the agent needs: profile and catalog
// lookups for context collection, plus the writes performed by tools.
// *storage.Store satisfies it.
type DomainStore interface {
	GetBabyByID(ctx context.Context, id int64) (*storage.Baby, error)
	GetFoodByName(ctx context.Context, name string) (*storage.Food, error)
	GetFoodsByIDs(ctx context.Context, ids []int64) ([]storage.Food, error)
	ListBabyFoodStatuses(ctx context.Context, babyID int64, status string) ([]storage.BabyFoodStatus, error)
	GetTestingFood(ctx context.Context, babyID int64) (*storage.BabyFoodStatus, error)
	CreateOrUpdateBabyFoodStatus(ctx context.Context, change storage.FoodStatusChange) (*storage.BabyFoodStatus, error)
	ListMealPlansByDateRange(ctx context.Context, babyID int64, start, end storage.Date) ([]storage.MealPlan, error)
	CreateOrUpdateMealPlan(ctx context.Context, plan *storage.MealPlan) error
	CompleteMealPlan(ctx context.Context, planID int64) error
	GetActiveSpecialStatus(ctx context.Context, babyID int64) (*storage.SpecialStatus, error)
	CreateSpecialStatus(ctx context.Context, change storage.SpecialStatusChange) (*storage.SpecialStatus, error)
}

var _ DomainStore = (*storage.Store)(nil)
