package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/souschef-app/backend/internal/model"
)

// PreferencesService is the persistence adapter for the per-user
// preferences document
type PreferencesService struct {
	db *gorm.DB
}

// NewPreferencesService creates a new PreferencesService instance
func NewPreferencesService(db *gorm.DB) *PreferencesService {
	return &PreferencesService{db: db}
}

// GetPreferences returns the user's preferences document, or ErrNotFound if
// onboarding never completed
func (s *PreferencesService) GetPreferences(ctx context.Context, userID uuid.UUID) (*model.UserPreferences, error) {
	var prefs model.UserPreferences
	if err := s.db.WithContext(ctx).First(&prefs, "user_id = ?", userID).Error; err != nil {
		return nil, classifyDBError(err)
	}
	return &prefs, nil
}

// UpsertPreferences creates or updates the preferences document for the
// authenticated caller, preserving the original creation timestamp.
func (s *PreferencesService) UpsertPreferences(ctx context.Context, callerID uuid.UUID, prefs model.UserPreferences) (*model.UserPreferences, error) {
	if callerID != prefs.UserID {
		return nil, fmt.Errorf("%w: cannot update preferences for another user", ErrPermissionDenied)
	}
	if prefs.NumPeople <= 0 {
		prefs.NumPeople = 1
	}

	now := time.Now()
	prefs.CreatedAt = now
	prefs.UpdatedAt = now

	var existing model.UserPreferences
	err := s.db.WithContext(ctx).First(&existing, "user_id = ?", prefs.UserID).Error
	switch {
	case err == nil:
		prefs.CreatedAt = existing.CreatedAt
	case errors.Is(err, gorm.ErrRecordNotFound):
		// onboarding just completed
	default:
		return nil, classifyDBError(err)
	}

	if err := s.db.WithContext(ctx).Save(&prefs).Error; err != nil {
		return nil, classifyDBError(err)
	}
	return &prefs, nil
}
