package model

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Meal plan durations
const (
	DurationDay   = "day"
	DurationWeek  = "week"
	DurationMonth = "month"
)

// Meal types for plan items
const (
	MealBreakfast = "breakfast"
	MealLunch     = "lunch"
	MealDinner    = "dinner"
	MealSnack     = "snack"
)

// MealPlanItem places one recipe on a date. The embedded recipe may be
// lightweight (empty ingredients/instructions) until the background detail
// fill patches it.
type MealPlanItem struct {
	Date     string `json:"date"`
	MealType string `json:"meal_type"`
	Recipe   Recipe `json:"recipe"`
}

// MealPlanItemList is a JSONB-backed list of plan items
type MealPlanItemList []MealPlanItem

func (l MealPlanItemList) Value() (driver.Value, error) {
	if len(l) == 0 {
		return "[]", nil
	}
	return json.Marshal(l)
}

func (l *MealPlanItemList) Scan(value interface{}) error {
	if value == nil {
		*l = MealPlanItemList{}
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return nil
	}

	return json.Unmarshal(bytes, l)
}

// MealPlan is a user's plan document: an ordered list of dated items
type MealPlan struct {
	ID        uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID        `gorm:"type:uuid;not null;index" json:"user_id"`
	Name      string           `gorm:"size:255;not null" json:"name"`
	Duration  string           `gorm:"size:10;not null" json:"duration"`
	StartDate time.Time        `json:"start_date"`
	EndDate   time.Time        `json:"end_date"`
	Items     MealPlanItemList `gorm:"type:jsonb;not null;default:'[]'" json:"items"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}
