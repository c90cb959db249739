package storage

import "time"

// Gender codes stored on a baby profile.
const (
	GenderUnknown = 0
	GenderBoy     = 1
	GenderGirl    = 2
)

// Baby is one tracked infant profile.
type Baby struct {
	ID              int64     `json:"id" db:"id"`
	Name            string    `json:"name" db:"name"`
	Birthday        Date      `json:"birthday" db:"birthday"`
	Gender          int       `json:"gender" db:"gender"`
	AllergyNotes    string    `json:"allergy_notes" db:"allergy_notes"`
	FoodPreferences string    `json:"food_preferences" db:"food_preferences"`
	CreatedBy       int64     `json:"created_by" db:"created_by"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time `json:"updated_at" db:"updated_at"`
}

// AgeMonthsAt returns the age in whole months on the given day.
func (b *Baby) AgeMonthsAt(t time.Time) int {
	months := (t.Year()-b.Birthday.Year())*12 + int(t.Month()) - int(b.Birthday.Month())
	if t.Day() < b.Birthday.Day() {
		months--
	}
	if months < 0 {
		return 0
	}
	return months
}

// AgeMonths returns the age in whole months today.
func (b *Baby) AgeMonths() int {
	return b.AgeMonthsAt(time.Now())
}

// GenderName returns the caregiver-facing gender label.
func (b *Baby) GenderName() string {
	switch b.Gender {
	case GenderBoy:
		return "男宝"
	case GenderGirl:
		return "女宝"
	default:
		return "宝宝"
	}
}

// CategoryNames maps food categories to their Chinese labels.
var CategoryNames = map[string]string{
	"staple":    "主食",
	"vegetable": "蔬菜",
	"fruit":     "水果",
	"meat":      "肉类",
	"dairy":     "蛋奶",
	"seafood":   "海鲜",
}

// Food is one entry of the ingredient catalog.
type Food struct {
	ID          int64  `json:"id" db:"id"`
	Name        string `json:"name" db:"name"`
	Category    string `json:"category" db:"category"`
	MinMonth    int    `json:"min_month" db:"min_month"`
	AllergyRisk int    `json:"allergy_risk" db:"allergy_risk"`
	IsActive    bool   `json:"is_active" db:"is_active"`
	SortOrder   int    `json:"sort_order" db:"sort_order"`
}

// CategoryName returns the Chinese label for the food's category.
func (f *Food) CategoryName() string {
	if name, ok := CategoryNames[f.Category]; ok {
		return name
	}
	return f.Category
}

// Per-baby food statuses.
const (
	FoodStatusSafe     = "safe"
	FoodStatusTesting  = "testing"
	FoodStatusAllergic = "allergic"
)

// BabyFoodStatus records how one baby tolerates one food.
type BabyFoodStatus struct {
	ID               int64     `json:"id" db:"id"`
	BabyID           int64     `json:"baby_id" db:"baby_id"`
	FoodID           int64     `json:"food_id" db:"food_id"`
	Status           string    `json:"status" db:"status"`
	TestingStartDate *Date     `json:"testing_start_date,omitempty" db:"testing_start_date"`
	TestingEndDate   *Date     `json:"testing_end_date,omitempty" db:"testing_end_date"`
	AllergyCount     int       `json:"allergy_count" db:"allergy_count"`
	AllergySymptoms  string    `json:"allergy_symptoms" db:"allergy_symptoms"`
	Notes            string    `json:"notes" db:"notes"`
	UpdatedBy        int64     `json:"updated_by" db:"updated_by"`
	CreatedAt        time.Time `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time `json:"updated_at" db:"updated_at"`
}

// TestingDaysRemainingAt returns how many observation days are left on
// the given day, or 0 when the food is not under observation.
func (s *BabyFoodStatus) TestingDaysRemainingAt(t time.Time) int {
	if s.Status != FoodStatusTesting || s.TestingEndDate == nil {
		return 0
	}
	remaining := s.TestingEndDate.Sub(NewDate(t))
	if remaining < 0 {
		return 0
	}
	return remaining
}

// MealTypeNames maps meal slots to their Chinese labels.
var MealTypeNames = map[string]string{
	"breakfast": "早餐",
	"lunch":     "午餐",
	"dinner":    "晚餐",
	"snack":     "加餐",
}

// MealPlan is one meal of one day, either planned ahead or recorded
// after the fact.
type MealPlan struct {
	ID            int64      `json:"id" db:"id"`
	BabyID        int64      `json:"baby_id" db:"baby_id"`
	PlanDate      Date       `json:"plan_date" db:"plan_date"`
	MealType      string     `json:"meal_type" db:"meal_type"`
	FoodIDs       FoodIDList `json:"food_ids" db:"food_ids"`
	NewFoodID     *int64     `json:"new_food_id,omitempty" db:"new_food_id"`
	IsAIGenerated bool       `json:"is_ai_generated" db:"is_ai_generated"`
	Notes         string     `json:"notes" db:"notes"`
	IsCompleted   bool       `json:"is_completed" db:"is_completed"`
	CompletedAt   *time.Time `json:"completed_at,omitempty" db:"completed_at"`
	CreatedBy     int64      `json:"created_by" db:"created_by"`
	CreatedAt     time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at" db:"updated_at"`
}

// MealTypeName returns the Chinese label for the plan's meal slot.
func (p *MealPlan) MealTypeName() string {
	if name, ok := MealTypeNames[p.MealType]; ok {
		return name
	}
	return p.MealType
}

// Special status types.
const (
	StatusTypeSick    = "sick"
	StatusTypeVaccine = "vaccine"
	StatusTypeOther   = "other"
)

// StatusTypeNames maps special status types to their Chinese labels.
var StatusTypeNames = map[string]string{
	StatusTypeSick:    "生病",
	StatusTypeVaccine: "打疫苗",
	StatusTypeOther:   "其他",
}

// DefaultSpecialStatusDays is how long a special status lasts when the
// caller gives no duration.
const DefaultSpecialStatusDays = 14

// SpecialStatus marks a period during which no new foods should be
// introduced, such as sickness or a recent vaccination.
type SpecialStatus struct {
	ID          int64     `json:"id" db:"id"`
	BabyID      int64     `json:"baby_id" db:"baby_id"`
	StatusType  string    `json:"status_type" db:"status_type"`
	StartDate   Date      `json:"start_date" db:"start_date"`
	EndDate     Date      `json:"end_date" db:"end_date"`
	Description string    `json:"description" db:"description"`
	IsActive    bool      `json:"is_active" db:"is_active"`
	CreatedBy   int64     `json:"created_by" db:"created_by"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// StatusTypeName returns the Chinese label for the status type.
func (s *SpecialStatus) StatusTypeName() string {
	if name, ok := StatusTypeNames[s.StatusType]; ok {
		return name
	}
	return s.StatusType
}

// DaysRemainingAt returns how many days are left until the status ends
// on the given day, never negative.
func (s *SpecialStatus) DaysRemainingAt(t time.Time) int {
	remaining := s.EndDate.Sub(NewDate(t))
	if remaining < 0 {
		return 0
	}
	return remaining
}

// DaysRemaining returns how many days are left until the status ends.
func (s *SpecialStatus) DaysRemaining() int {
	return s.DaysRemainingAt(time.Now())
}
