package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/souschef-app/backend/internal/middleware"
	"github.com/souschef-app/backend/internal/model"
	"github.com/souschef-app/backend/internal/service"
)

// ChatHandler handles conversational recipe generation and search
type ChatHandler struct {
	llm   *service.LLMService
	prefs *service.PreferencesService
}

// NewChatHandler creates a new ChatHandler instance
func NewChatHandler(llm *service.LLMService, prefs *service.PreferencesService) *ChatHandler {
	return &ChatHandler{llm: llm, prefs: prefs}
}

// RegisterRoutes registers the chat routes
func (h *ChatHandler) RegisterRoutes(router *gin.RouterGroup, auth gin.HandlerFunc, chatLimit, searchLimit gin.HandlerFunc) {
	router.POST("/chat", auth, chatLimit, h.Chat)
	router.POST("/search", auth, searchLimit, h.Search)
}

// resolvePrefs prefers preferences supplied in the request body and falls
// back to the store; a user who skipped onboarding simply gets a prompt
// without a preferences section
func (h *ChatHandler) resolvePrefs(c *gin.Context, override *model.UserPreferences) *model.UserPreferences {
	if override != nil {
		return override
	}
	userID, ok := middleware.UserID(c)
	if !ok {
		return nil
	}
	prefs, err := h.prefs.GetPreferences(c.Request.Context(), userID)
	if err != nil {
		if !errors.Is(err, service.ErrNotFound) {
			respondServiceError(c, err)
			c.Abort()
		}
		return nil
	}
	return prefs
}

// Chat handles one conversational turn
func (h *ChatHandler) Chat(c *gin.Context) {
	var req struct {
		Messages             []service.ChatMessage  `json:"messages" binding:"required"`
		CurrentRecipe        *model.Recipe          `json:"current_recipe"`
		AvailableIngredients []string               `json:"available_ingredients"`
		RemovedIngredients   []string               `json:"removed_ingredients"`
		Preferences          *model.UserPreferences `json:"user_preferences"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID, _ := middleware.UserID(c)

	prefs := h.resolvePrefs(c, req.Preferences)
	if c.IsAborted() {
		return
	}

	result := h.llm.Chat(c.Request.Context(), userID.String(), req.Messages, req.CurrentRecipe, req.AvailableIngredients, req.RemovedIngredients, prefs)
	c.JSON(http.StatusOK, result)
}

// Search handles a one-shot recipe search query
func (h *ChatHandler) Search(c *gin.Context) {
	var req struct {
		Query                string                 `json:"query" binding:"required"`
		AvailableIngredients []string               `json:"available_ingredients"`
		Preferences          *model.UserPreferences `json:"user_preferences"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID, _ := middleware.UserID(c)

	prefs := h.resolvePrefs(c, req.Preferences)
	if c.IsAborted() {
		return
	}

	result := h.llm.Search(c.Request.Context(), userID.String(), req.Query, req.AvailableIngredients, prefs)
	c.JSON(http.StatusOK, result)
}
