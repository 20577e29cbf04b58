package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/souschef-app/backend/internal/model"
)

// SavedRecipeService is the persistence adapter for the saved-recipes
// collection: one document per (user, recipe) pair. Every write is
// attributed to the authenticated caller, and a caller can only touch their
// own documents.
type SavedRecipeService struct {
	db *gorm.DB
}

// NewSavedRecipeService creates a new SavedRecipeService instance
func NewSavedRecipeService(db *gorm.DB) *SavedRecipeService {
	return &SavedRecipeService{db: db}
}

// SaveRecipe saves or updates a recipe for userID. The original SavedAt
// survives updates (read-before-write); UpdatedAt always refreshes.
func (s *SavedRecipeService) SaveRecipe(ctx context.Context, callerID, userID uuid.UUID, recipe model.Recipe) (*model.SavedRecipe, error) {
	if callerID != userID {
		return nil, fmt.Errorf("%w: cannot save recipes for another user", ErrPermissionDenied)
	}
	if recipe.ID == "" {
		recipe.ID = uuid.New().String()
	}

	now := time.Now()
	saved := model.SavedRecipe{
		ID:        model.SavedRecipeKey(userID, recipe.ID),
		UserID:    userID,
		Recipe:    recipe,
		Embedding: GenerateEmbedding(recipe.Name + " " + recipe.Description),
		SavedAt:   now,
		UpdatedAt: now,
	}

	var existing model.SavedRecipe
	err := s.db.WithContext(ctx).First(&existing, "id = ?", saved.ID).Error
	switch {
	case err == nil:
		saved.SavedAt = existing.SavedAt
	case errors.Is(err, gorm.ErrRecordNotFound):
		// first save, keep the fresh timestamps
	default:
		return nil, classifyDBError(err)
	}

	if err := s.db.WithContext(ctx).Save(&saved).Error; err != nil {
		return nil, classifyDBError(err)
	}
	return &saved, nil
}

// RemoveRecipe deletes the (user, recipe) document. Removing a key that
// does not exist is not an error at this layer.
func (s *SavedRecipeService) RemoveRecipe(ctx context.Context, callerID, userID uuid.UUID, recipeID string) error {
	if callerID != userID {
		return fmt.Errorf("%w: cannot remove recipes for another user", ErrPermissionDenied)
	}

	key := model.SavedRecipeKey(userID, recipeID)
	if err := s.db.WithContext(ctx).Delete(&model.SavedRecipe{}, "id = ?", key).Error; err != nil {
		return classifyDBError(err)
	}
	return nil
}

// ListSavedRecipes returns a user's saved recipes, most recently saved
// first. The store's native ordering is not trusted; the sort happens here.
func (s *SavedRecipeService) ListSavedRecipes(ctx context.Context, userID uuid.UUID) ([]model.SavedRecipe, error) {
	var saved []model.SavedRecipe
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).Find(&saved).Error; err != nil {
		return nil, classifyDBError(err)
	}

	sort.Slice(saved, func(i, j int) bool {
		return saved[i].SavedAt.After(saved[j].SavedAt)
	})
	return saved, nil
}

// IsRecipeSaved is a point lookup by composite key
func (s *SavedRecipeService) IsRecipeSaved(ctx context.Context, userID uuid.UUID, recipeID string) (bool, error) {
	key := model.SavedRecipeKey(userID, recipeID)
	var count int64
	if err := s.db.WithContext(ctx).Model(&model.SavedRecipe{}).Where("id = ?", key).Count(&count).Error; err != nil {
		return false, classifyDBError(err)
	}
	return count > 0, nil
}

// SimilarSavedRecipes orders the user's other saved recipes by embedding
// distance from the given one. Falls back to the recency ordering on
// databases without pgvector.
func (s *SavedRecipeService) SimilarSavedRecipes(ctx context.Context, userID uuid.UUID, recipeID string, limit int) ([]model.SavedRecipe, error) {
	key := model.SavedRecipeKey(userID, recipeID)

	var anchor model.SavedRecipe
	if err := s.db.WithContext(ctx).First(&anchor, "id = ?", key).Error; err != nil {
		return nil, classifyDBError(err)
	}

	if limit <= 0 {
		limit = 5
	}

	var saved []model.SavedRecipe
	query := s.db.WithContext(ctx).Where("user_id = ? AND id <> ?", userID, key).Limit(limit)
	if s.db.Dialector.Name() == "postgres" {
		query = query.Clauses(clause.OrderBy{
			Expression: clause.Expr{SQL: "embedding <-> ?", Vars: []interface{}{anchor.Embedding}},
		})
	} else {
		query = query.Order("saved_at DESC")
	}

	if err := query.Find(&saved).Error; err != nil {
		return nil, classifyDBError(err)
	}
	return saved, nil
}
