package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/souschef-app/backend/internal/model"
)

// MealPlanService is the persistence adapter for meal-plan documents, plus
// the best-effort background fill of lightweight item recipes.
type MealPlanService struct {
	db  *gorm.DB
	llm *LLMService
}

// NewMealPlanService creates a new MealPlanService instance
func NewMealPlanService(db *gorm.DB, llm *LLMService) *MealPlanService {
	return &MealPlanService{db: db, llm: llm}
}

// SaveMealPlan creates or updates a plan owned by the caller, preserving
// CreatedAt across updates. When the saved plan contains lightweight
// recipes, a background fill is kicked off; its failure never surfaces.
func (s *MealPlanService) SaveMealPlan(ctx context.Context, callerID uuid.UUID, plan model.MealPlan) (*model.MealPlan, error) {
	if callerID != plan.UserID {
		return nil, fmt.Errorf("%w: cannot save meal plans for another user", ErrPermissionDenied)
	}
	if plan.ID == uuid.Nil {
		plan.ID = uuid.New()
	}

	now := time.Now()
	plan.CreatedAt = now
	plan.UpdatedAt = now

	var existing model.MealPlan
	err := s.db.WithContext(ctx).First(&existing, "id = ?", plan.ID).Error
	switch {
	case err == nil:
		if existing.UserID != callerID {
			return nil, fmt.Errorf("%w: meal plan belongs to another user", ErrPermissionDenied)
		}
		plan.CreatedAt = existing.CreatedAt
	case errors.Is(err, gorm.ErrRecordNotFound):
	default:
		return nil, classifyDBError(err)
	}

	if err := s.db.WithContext(ctx).Save(&plan).Error; err != nil {
		return nil, classifyDBError(err)
	}

	if s.hasLightweightItems(&plan) {
		go s.completeDetails(plan.ID, callerID)
	}

	return &plan, nil
}

// GetMealPlan fetches a plan and verifies ownership
func (s *MealPlanService) GetMealPlan(ctx context.Context, callerID, planID uuid.UUID) (*model.MealPlan, error) {
	var plan model.MealPlan
	if err := s.db.WithContext(ctx).First(&plan, "id = ?", planID).Error; err != nil {
		return nil, classifyDBError(err)
	}
	if plan.UserID != callerID {
		return nil, fmt.Errorf("%w: meal plan belongs to another user", ErrPermissionDenied)
	}
	return &plan, nil
}

// ListMealPlans returns the caller's plans, newest first
func (s *MealPlanService) ListMealPlans(ctx context.Context, callerID uuid.UUID) ([]model.MealPlan, error) {
	var plans []model.MealPlan
	if err := s.db.WithContext(ctx).Where("user_id = ?", callerID).Order("created_at DESC").Find(&plans).Error; err != nil {
		return nil, classifyDBError(err)
	}
	return plans, nil
}

// DeleteMealPlan removes a plan. Deleting a plan that no longer exists is
// not an error.
func (s *MealPlanService) DeleteMealPlan(ctx context.Context, callerID, planID uuid.UUID) error {
	var plan model.MealPlan
	err := s.db.WithContext(ctx).First(&plan, "id = ?", planID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return classifyDBError(err)
	}
	if plan.UserID != callerID {
		return fmt.Errorf("%w: meal plan belongs to another user", ErrPermissionDenied)
	}

	if err := s.db.WithContext(ctx).Delete(&model.MealPlan{}, "id = ?", planID).Error; err != nil {
		return classifyDBError(err)
	}
	return nil
}

// UpdateItem replaces a single plan item, e.g. after the user swaps a meal
func (s *MealPlanService) UpdateItem(ctx context.Context, callerID, planID uuid.UUID, index int, item model.MealPlanItem) (*model.MealPlan, error) {
	plan, err := s.GetMealPlan(ctx, callerID, planID)
	if err != nil {
		return nil, err
	}

	if index < 0 || index >= len(plan.Items) {
		return nil, fmt.Errorf("item index %d out of range", index)
	}

	plan.Items[index] = item
	plan.UpdatedAt = time.Now()

	if err := s.db.WithContext(ctx).Save(plan).Error; err != nil {
		return nil, classifyDBError(err)
	}
	return plan, nil
}

func (s *MealPlanService) hasLightweightItems(plan *model.MealPlan) bool {
	for i := range plan.Items {
		if !plan.Items[i].Recipe.IsComplete() {
			return true
		}
	}
	return false
}

// completeDetails fills in lightweight item recipes in the background and
// patches the persisted document. The user has already moved on, so every
// failure is logged and swallowed. Last write wins against concurrent item
// edits.
func (s *MealPlanService) completeDetails(planID, userID uuid.UUID) {
	if s.llm == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	var plan model.MealPlan
	if err := s.db.WithContext(ctx).First(&plan, "id = ?", planID).Error; err != nil {
		log.Printf("[MealPlanService] detail fill: plan %s gone: %v", planID, err)
		return
	}

	var prefs model.UserPreferences
	var prefsPtr *model.UserPreferences
	if err := s.db.WithContext(ctx).First(&prefs, "user_id = ?", userID).Error; err == nil {
		prefsPtr = &prefs
	}

	patched := false
	for i := range plan.Items {
		if plan.Items[i].Recipe.IsComplete() {
			continue
		}

		full, err := s.llm.FillRecipeDetail(ctx, &plan.Items[i].Recipe, prefsPtr)
		if err != nil {
			log.Printf("[MealPlanService] detail fill failed for %q: %v", plan.Items[i].Recipe.Name, err)
			continue
		}
		plan.Items[i].Recipe = *full
		patched = true
	}

	if !patched {
		return
	}

	plan.UpdatedAt = time.Now()
	if err := s.db.WithContext(ctx).Save(&plan).Error; err != nil {
		log.Printf("[MealPlanService] detail fill: failed to patch plan %s: %v", planID, err)
	}
}
