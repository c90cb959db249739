package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/georgysavva/scany/v2/sqlscan"
)

// GetBabyByID retrieves a baby profile by its ID
func GetBabyByID(ctx context.Context, db sqlscan.Querier, id int64) (*Baby, error) {
	query := `SELECT id, name, birthday, gender, allergy_notes, food_preferences, created_by, created_at, updated_at FROM babies WHERE id = ?`
	var b Baby
	err := sqlscan.Get(ctx, db, &b, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Not found
		}
		return nil, err
	}
	return &b, nil
}

// CreateBaby creates a new baby profile and fills in its ID
func CreateBaby(ctx context.Context, db Execer, baby *Baby) error {
	if baby.CreatedAt.IsZero() {
		baby.CreatedAt = time.Now()
	}
	if baby.UpdatedAt.IsZero() {
		baby.UpdatedAt = baby.CreatedAt
	}

	query := `INSERT INTO babies (name, birthday, gender, allergy_notes, food_preferences, created_by, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := db.ExecContext(ctx, query, baby.Name, baby.Birthday, baby.Gender, baby.AllergyNotes, baby.FoodPreferences, baby.CreatedBy, baby.CreatedAt, baby.UpdatedAt)
	if err != nil {
		return err
	}
	baby.ID, err = res.LastInsertId()
	return err
}

// GetFoodByID retrieves a catalog food by its ID
func GetFoodByID(ctx context.Context, db sqlscan.Querier, id int64) (*Food, error) {
	query := `SELECT id, name, category, min_month, allergy_risk, is_active, sort_order FROM foods WHERE id = ?`
	var f Food
	err := sqlscan.Get(ctx, db, &f, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Not found
		}
		return nil, err
	}
	return &f, nil
}

// GetFoodByName retrieves an active catalog food by its exact name
func GetFoodByName(ctx context.Context, db sqlscan.Querier, name string) (*Food, error) {
	query := `SELECT id, name, category, min_month, allergy_risk, is_active, sort_order FROM foods WHERE name = ? AND is_active = 1`
	var f Food
	err := sqlscan.Get(ctx, db, &f, query, name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Not found
		}
		return nil, err
	}
	return &f, nil
}

// GetFoodsByIDs retrieves the catalog foods with the given IDs. Missing
// IDs are silently skipped.
func GetFoodsByIDs(ctx context.Context, db sqlscan.Querier, ids []int64) ([]Food, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	query := fmt.Sprintf(`SELECT id, name, category, min_month, allergy_risk, is_active, sort_order FROM foods WHERE id IN (%s)`, placeholders)
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	var foods []Food
	if err := sqlscan.Select(ctx, db, &foods, query, args...); err != nil {
		return nil, err
	}
	return foods, nil
}

// ListFoods retrieves active catalog foods, optionally filtered by
// category, ordered by sort order
func ListFoods(ctx context.Context, db sqlscan.Querier, category string) ([]Food, error) {
	query := `SELECT id, name, category, min_month, allergy_risk, is_active, sort_order FROM foods WHERE is_active = 1`
	args := []interface{}{}
	if category != "" {
		query += ` AND category = ?`
		args = append(args, category)
	}
	query += ` ORDER BY sort_order, id`

	var foods []Food
	if err := sqlscan.Select(ctx, db, &foods, query, args...); err != nil {
		return nil, err
	}
	return foods, nil
}

// CreateFood adds a food to the catalog and fills in its ID
func CreateFood(ctx context.Context, db Execer, food *Food) error {
	query := `INSERT INTO foods (name, category, min_month, allergy_risk, is_active, sort_order) VALUES (?, ?, ?, ?, ?, ?)`
	res, err := db.ExecContext(ctx, query, food.Name, food.Category, food.MinMonth, food.AllergyRisk, food.IsActive, food.SortOrder)
	if err != nil {
		return err
	}
	food.ID, err = res.LastInsertId()
	return err
}

// GetBabyFoodStatus retrieves the status row for one baby and food pair
func GetBabyFoodStatus(ctx context.Context, db sqlscan.Querier, babyID, foodID int64) (*BabyFoodStatus, error) {
	query := `SELECT id, baby_id, food_id, status, testing_start_date, testing_end_date, allergy_count, allergy_symptoms, notes, updated_by, created_at, updated_at FROM baby_food_status WHERE baby_id = ? AND food_id = ?`
	var s BabyFoodStatus
	err := sqlscan.Get(ctx, db, &s, query, babyID, foodID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Not found
		}
		return nil, err
	}
	return &s, nil
}

// ListBabyFoodStatuses retrieves all food status rows for a baby,
// optionally filtered by status
func ListBabyFoodStatuses(ctx context.Context, db sqlscan.Querier, babyID int64, status string) ([]BabyFoodStatus, error) {
	query := `SELECT id, baby_id, food_id, status, testing_start_date, testing_end_date, allergy_count, allergy_symptoms, notes, updated_by, created_at, updated_at FROM baby_food_status WHERE baby_id = ?`
	args := []interface{}{babyID}
	if status != "" {
		query += ` AND status = ?`
		args = append(args, status)
	}
	query += ` ORDER BY updated_at`

	var statuses []BabyFoodStatus
	if err := sqlscan.Select(ctx, db, &statuses, query, args...); err != nil {
		return nil, err
	}
	return statuses, nil
}

// GetTestingFood retrieves the food currently under observation for a
// baby, if any
func GetTestingFood(ctx context.Context, db sqlscan.Querier, babyID int64, today Date) (*BabyFoodStatus, error) {
	query := `SELECT id, baby_id, food_id, status, testing_start_date, testing_end_date, allergy_count, allergy_symptoms, notes, updated_by, created_at, updated_at FROM baby_food_status WHERE baby_id = ? AND status = ? AND testing_end_date >= ? ORDER BY testing_end_date DESC LIMIT 1`
	var s BabyFoodStatus
	err := sqlscan.Get(ctx, db, &s, query, babyID, FoodStatusTesting, today)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Not found
		}
		return nil, err
	}
	return &s, nil
}

// FoodStatusChange describes an upsert of one baby/food status row.
// Optional fields left empty keep their stored values on update.
type FoodStatusChange struct {
	BabyID           int64
	FoodID           int64
	Status           string
	UpdatedBy        int64
	TestingStartDate *Date
	TestingEndDate   *Date
	AllergySymptoms  string
	Notes            string
}

// CreateOrUpdateBabyFoodStatus upserts the status row for a baby/food
// pair. Every transition into the allergic status bumps the allergy
// count.
func CreateOrUpdateBabyFoodStatus(ctx context.Context, db ExecQuerier, change FoodStatusChange, now time.Time) (*BabyFoodStatus, error) {
	existing, err := GetBabyFoodStatus(ctx, db, change.BabyID, change.FoodID)
	if err != nil {
		return nil, err
	}

	if existing == nil {
		status := &BabyFoodStatus{
			BabyID:           change.BabyID,
			FoodID:           change.FoodID,
			Status:           change.Status,
			TestingStartDate: change.TestingStartDate,
			TestingEndDate:   change.TestingEndDate,
			AllergySymptoms:  change.AllergySymptoms,
			Notes:            change.Notes,
			UpdatedBy:        change.UpdatedBy,
			CreatedAt:        now,
			UpdatedAt:        now,
		}
		if change.Status == FoodStatusAllergic {
			status.AllergyCount = 1
		}

		query := `INSERT INTO baby_food_status (baby_id, food_id, status, testing_start_date, testing_end_date, allergy_count, allergy_symptoms, notes, updated_by, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
		res, err := db.ExecContext(ctx, query, status.BabyID, status.FoodID, status.Status, status.TestingStartDate, status.TestingEndDate, status.AllergyCount, status.AllergySymptoms, status.Notes, status.UpdatedBy, status.CreatedAt, status.UpdatedAt)
		if err != nil {
			return nil, err
		}
		if status.ID, err = res.LastInsertId(); err != nil {
			return nil, err
		}
		return status, nil
	}

	merged := *existing
	merged.Status = change.Status
	merged.UpdatedBy = change.UpdatedBy
	if change.TestingStartDate != nil {
		merged.TestingStartDate = change.TestingStartDate
	}
	if change.TestingEndDate != nil {
		merged.TestingEndDate = change.TestingEndDate
	}
	if change.AllergySymptoms != "" {
		merged.AllergySymptoms = change.AllergySymptoms
	}
	if change.Notes != "" {
		merged.Notes = change.Notes
	}
	if change.Status == FoodStatusAllergic {
		merged.AllergyCount++
	}
	merged.UpdatedAt = now

	query := `UPDATE baby_food_status SET status = ?, testing_start_date = ?, testing_end_date = ?, allergy_count = ?, allergy_symptoms = ?, notes = ?, updated_by = ?, updated_at = ? WHERE id = ?`
	if _, err := db.ExecContext(ctx, query, merged.Status, merged.TestingStartDate, merged.TestingEndDate, merged.AllergyCount, merged.AllergySymptoms, merged.Notes, merged.UpdatedBy, merged.UpdatedAt, merged.ID); err != nil {
		return nil, err
	}
	return &merged, nil
}

// GetMealPlan retrieves one meal slot of one day for a baby
func GetMealPlan(ctx context.Context, db sqlscan.Querier, babyID int64, planDate Date, mealType string) (*MealPlan, error) {
	query := `SELECT id, baby_id, plan_date, meal_type, food_ids, new_food_id, is_ai_generated, notes, is_completed, completed_at, created_by, created_at, updated_at FROM meal_plans WHERE baby_id = ? AND plan_date = ? AND meal_type = ?`
	var p MealPlan
	err := sqlscan.Get(ctx, db, &p, query, babyID, planDate, mealType)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Not found
		}
		return nil, err
	}
	return &p, nil
}

// ListMealPlansByDateRange retrieves all meals for a baby between start
// and end inclusive, ordered by day and slot
func ListMealPlansByDateRange(ctx context.Context, db sqlscan.Querier, babyID int64, start, end Date) ([]MealPlan, error) {
	query := `SELECT id, baby_id, plan_date, meal_type, food_ids, new_food_id, is_ai_generated, notes, is_completed, completed_at, created_by, created_at, updated_at FROM meal_plans WHERE baby_id = ? AND plan_date >= ? AND plan_date <= ? ORDER BY plan_date, meal_type`
	var plans []MealPlan
	if err := sqlscan.Select(ctx, db, &plans, query, babyID, start, end); err != nil {
		return nil, err
	}
	return plans, nil
}

// CreateOrUpdateMealPlan upserts the meal identified by the plan's
// baby, day and slot. Completion state survives updates.
func CreateOrUpdateMealPlan(ctx context.Context, db ExecQuerier, plan *MealPlan, now time.Time) error {
	existing, err := GetMealPlan(ctx, db, plan.BabyID, plan.PlanDate, plan.MealType)
	if err != nil {
		return err
	}

	if existing == nil {
		plan.CreatedAt = now
		plan.UpdatedAt = now
		query := `INSERT INTO meal_plans (baby_id, plan_date, meal_type, food_ids, new_food_id, is_ai_generated, notes, is_completed, completed_at, created_by, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
		res, err := db.ExecContext(ctx, query, plan.BabyID, plan.PlanDate, plan.MealType, plan.FoodIDs, plan.NewFoodID, plan.IsAIGenerated, plan.Notes, plan.IsCompleted, plan.CompletedAt, plan.CreatedBy, plan.CreatedAt, plan.UpdatedAt)
		if err != nil {
			return err
		}
		plan.ID, err = res.LastInsertId()
		return err
	}

	plan.ID = existing.ID
	plan.IsCompleted = existing.IsCompleted
	plan.CompletedAt = existing.CompletedAt
	plan.CreatedBy = existing.CreatedBy
	plan.CreatedAt = existing.CreatedAt
	plan.UpdatedAt = now

	query := `UPDATE meal_plans SET food_ids = ?, new_food_id = ?, is_ai_generated = ?, notes = ?, updated_at = ? WHERE id = ?`
	_, err = db.ExecContext(ctx, query, plan.FoodIDs, plan.NewFoodID, plan.IsAIGenerated, plan.Notes, plan.UpdatedAt, plan.ID)
	return err
}

// CompleteMealPlan marks a meal as eaten
func CompleteMealPlan(ctx context.Context, db Execer, planID int64, now time.Time) error {
	query := `UPDATE meal_plans SET is_completed = 1, completed_at = ?, updated_at = ? WHERE id = ?`
	res, err := db.ExecContext(ctx, query, now, now, planID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("meal plan %d not found", planID)
	}
	return nil
}

// GetActiveSpecialStatus retrieves the special status currently in
// effect for a baby, if any
func GetActiveSpecialStatus(ctx context.Context, db sqlscan.Querier, babyID int64, today Date) (*SpecialStatus, error) {
	query := `SELECT id, baby_id, status_type, start_date, end_date, description, is_active, created_by, created_at, updated_at FROM special_status WHERE baby_id = ? AND is_active = 1 AND end_date >= ? ORDER BY id DESC LIMIT 1`
	var s SpecialStatus
	err := sqlscan.Get(ctx, db, &s, query, babyID, today)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Not found
		}
		return nil, err
	}
	return &s, nil
}

// SpecialStatusChange describes the creation of a special status.
type SpecialStatusChange struct {
	BabyID       int64
	StatusType   string
	Description  string
	DurationDays int
	CreatedBy    int64
}

// CreateSpecialStatus records a new special status starting today and
// deactivates any previous ones. A baby carries at most one active
// status at a time.
func CreateSpecialStatus(ctx context.Context, db Execer, change SpecialStatusChange, now time.Time) (*SpecialStatus, error) {
	if change.DurationDays <= 0 {
		change.DurationDays = DefaultSpecialStatusDays
	}

	deactivate := `UPDATE special_status SET is_active = 0, updated_at = ? WHERE baby_id = ? AND is_active = 1`
	if _, err := db.ExecContext(ctx, deactivate, now, change.BabyID); err != nil {
		return nil, err
	}

	today := NewDate(now)
	status := &SpecialStatus{
		BabyID:      change.BabyID,
		StatusType:  change.StatusType,
		StartDate:   today,
		EndDate:     today.AddDays(change.DurationDays),
		Description: change.Description,
		IsActive:    true,
		CreatedBy:   change.CreatedBy,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	query := `INSERT INTO special_status (baby_id, status_type, start_date, end_date, description, is_active, created_by, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := db.ExecContext(ctx, query, status.BabyID, status.StatusType, status.StartDate, status.EndDate, status.Description, status.IsActive, status.CreatedBy, status.CreatedAt, status.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if status.ID, err = res.LastInsertId(); err != nil {
		return nil, err
	}
	return status, nil
}

// EndSpecialStatus deactivates a special status ahead of its end date
func EndSpecialStatus(ctx context.Context, db Execer, statusID int64, now time.Time) error {
	query := `UPDATE special_status SET is_active = 0, end_date = ?, updated_at = ? WHERE id = ?`
	res, err := db.ExecContext(ctx, query, NewDate(now), now, statusID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("special status %d not found", statusID)
	}
	return nil
}
