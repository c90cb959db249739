package storage

import (
	"context"
	"database/sql"
	"time"
)

// Store binds the package level queries to one database handle and a
// clock, giving the agent a single point of domain access.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// NewStore wraps an open database.
func NewStore(db *DB) *Store {
	return &Store{db: db.DB(), now: time.Now}
}

func (s *Store) GetBabyByID(ctx context.Context, id int64) (*Baby, error) {
	return GetBabyByID(ctx, s.db, id)
}

func (s *Store) CreateBaby(ctx context.Context, baby *Baby) error {
	return CreateBaby(ctx, s.db, baby)
}

func (s *Store) GetFoodByID(ctx context.Context, id int64) (*Food, error) {
	return GetFoodByID(ctx, s.db, id)
}

func (s *Store) CreateFood(ctx context.Context, food *Food) error {
	return CreateFood(ctx, s.db, food)
}

func (s *Store) GetFoodByName(ctx context.Context, name string) (*Food, error) {
	return GetFoodByName(ctx, s.db, name)
}

func (s *Store) GetFoodsByIDs(ctx context.Context, ids []int64) ([]Food, error) {
	return GetFoodsByIDs(ctx, s.db, ids)
}

func (s *Store) ListFoods(ctx context.Context, category string) ([]Food, error) {
	return ListFoods(ctx, s.db, category)
}

func (s *Store) ListBabyFoodStatuses(ctx context.Context, babyID int64, status string) ([]BabyFoodStatus, error) {
	return ListBabyFoodStatuses(ctx, s.db, babyID, status)
}

func (s *Store) GetTestingFood(ctx context.Context, babyID int64) (*BabyFoodStatus, error) {
	return GetTestingFood(ctx, s.db, babyID, NewDate(s.now()))
}

func (s *Store) CreateOrUpdateBabyFoodStatus(ctx context.Context, change FoodStatusChange) (*BabyFoodStatus, error) {
	return CreateOrUpdateBabyFoodStatus(ctx, s.db, change, s.now())
}

func (s *Store) GetMealPlan(ctx context.Context, babyID int64, planDate Date, mealType string) (*MealPlan, error) {
	return GetMealPlan(ctx, s.db, babyID, planDate, mealType)
}

func (s *Store) ListMealPlansByDateRange(ctx context.Context, babyID int64, start, end Date) ([]MealPlan, error) {
	return ListMealPlansByDateRange(ctx, s.db, babyID, start, end)
}

func (s *Store) CreateOrUpdateMealPlan(ctx context.Context, plan *MealPlan) error {
	return CreateOrUpdateMealPlan(ctx, s.db, plan, s.now())
}

func (s *Store) CompleteMealPlan(ctx context.Context, planID int64) error {
	return CompleteMealPlan(ctx, s.db, planID, s.now())
}

func (s *Store) GetActiveSpecialStatus(ctx context.Context, babyID int64) (*SpecialStatus, error) {
	return GetActiveSpecialStatus(ctx, s.db, babyID, NewDate(s.now()))
}

func (s *Store) CreateSpecialStatus(ctx context.Context, change SpecialStatusChange) (*SpecialStatus, error) {
	return CreateSpecialStatus(ctx, s.db, change, s.now())
}

func (s *Store) EndSpecialStatus(ctx context.Context, statusID int64) error {
	return EndSpecialStatus(ctx, s.db, statusID, s.now())
}
