package model

import (
	"time"

	"github.com/google/uuid"
)

// Kitchen equipment tokens the client offers during onboarding
const (
	EquipmentOven       = "oven"
	EquipmentStove      = "stove"
	EquipmentMicrowave  = "microwave"
	EquipmentAirFryer   = "air_fryer"
	EquipmentBlender    = "blender"
	EquipmentSlowCooker = "slow_cooker"
	EquipmentGrill      = "grill"
)

// UserPreferences is the per-user settings document created when onboarding
// completes. Allergies are safety-critical: every prompt sent to the
// completion service renders them as hard constraints.
type UserPreferences struct {
	UserID              uuid.UUID        `gorm:"type:uuid;primaryKey" json:"user_id"`
	DietaryRestrictions JSONBStringArray `gorm:"type:jsonb;not null;default:'[]'" json:"dietary_restrictions"`
	Allergies           JSONBStringArray `gorm:"type:jsonb;not null;default:'[]'" json:"allergies"`
	NumPeople           int              `gorm:"not null;default:1" json:"num_people"`
	HasKids             bool             `json:"has_kids"`
	HasPartner          bool             `json:"has_partner"`
	KidsAges            JSONBStringArray `gorm:"type:jsonb;not null;default:'[]'" json:"kids_ages"`
	Equipment           JSONBStringArray `gorm:"type:jsonb;not null;default:'[]'" json:"equipment"`
	HealthGoals         JSONBStringArray `gorm:"type:jsonb;not null;default:'[]'" json:"health_goals"`
	Theme               string           `gorm:"size:20" json:"theme"`
	OnboardingCompleted bool             `json:"onboarding_completed"`
	CreatedAt           time.Time        `json:"created_at"`
	UpdatedAt           time.Time        `json:"updated_at"`
}
