package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	pgvector "github.com/pgvector/pgvector-go"
)

// SavedRecipe is the join document between a user and a recipe they saved.
// One row per (user, recipe) pair, keyed by "{userID}_{recipeID}", so that
// existence checks and per-user listings are simple equality lookups.
type SavedRecipe struct {
	ID        string          `gorm:"primaryKey;size:128" json:"id"`
	UserID    uuid.UUID       `gorm:"type:uuid;not null;index" json:"user_id"`
	Recipe    Recipe          `gorm:"type:jsonb;not null" json:"recipe"`
	Embedding pgvector.Vector `gorm:"type:vector(3)" json:"-"`
	SavedAt   time.Time       `json:"saved_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// SavedRecipeKey builds the composite document key for a (user, recipe) pair
func SavedRecipeKey(userID uuid.UUID, recipeID string) string {
	return fmt.Sprintf("%s_%s", userID, recipeID)
}
