package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/souschef-app/backend/internal/middleware"
	"github.com/souschef-app/backend/internal/model"
	"github.com/souschef-app/backend/internal/service"
)

// PreferencesHandler handles the per-user preferences document
type PreferencesHandler struct {
	prefs *service.PreferencesService
}

// NewPreferencesHandler creates a new PreferencesHandler instance
func NewPreferencesHandler(prefs *service.PreferencesService) *PreferencesHandler {
	return &PreferencesHandler{prefs: prefs}
}

// RegisterRoutes registers the preferences routes
func (h *PreferencesHandler) RegisterRoutes(router *gin.RouterGroup, auth gin.HandlerFunc) {
	router.GET("/preferences", auth, h.Get)
	router.PUT("/preferences", auth, h.Put)
}

// Get returns the caller's preferences; 404 until onboarding completes
func (h *PreferencesHandler) Get(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	prefs, err := h.prefs.GetPreferences(c.Request.Context(), userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"preferences": prefs})
}

// Put creates or replaces the caller's preferences document
func (h *PreferencesHandler) Put(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var prefs model.UserPreferences
	if err := c.ShouldBindJSON(&prefs); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	prefs.UserID = userID

	updated, err := h.prefs.UpsertPreferences(c.Request.Context(), userID, prefs)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"preferences": updated})
}
