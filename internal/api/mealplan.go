package api

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/souschef-app/backend/internal/middleware"
	"github.com/souschef-app/backend/internal/model"
	"github.com/souschef-app/backend/internal/service"
)

// MealPlanHandler handles meal-plan documents and recipe detail completion
type MealPlanHandler struct {
	plans *service.MealPlanService
	llm   *service.LLMService
	prefs *service.PreferencesService
}

// NewMealPlanHandler creates a new MealPlanHandler instance
func NewMealPlanHandler(plans *service.MealPlanService, llm *service.LLMService, prefs *service.PreferencesService) *MealPlanHandler {
	return &MealPlanHandler{plans: plans, llm: llm, prefs: prefs}
}

// RegisterRoutes registers the meal-plan routes
func (h *MealPlanHandler) RegisterRoutes(router *gin.RouterGroup, auth gin.HandlerFunc) {
	plans := router.Group("/meal-plans", auth)
	{
		plans.POST("/detail", h.Detail)
		plans.POST("/generate", h.Generate)
		plans.GET("", h.List)
		plans.GET("/:id", h.Get)
		plans.PUT("/:id", h.Put)
		plans.DELETE("/:id", h.Delete)
		plans.PUT("/:id/items/:index", h.PutItem)
	}
}

// Detail completes a lightweight recipe into a full one
func (h *MealPlanHandler) Detail(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req struct {
		Recipe      model.Recipe           `json:"recipe" binding:"required"`
		Preferences *model.UserPreferences `json:"user_preferences"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	prefs := req.Preferences
	if prefs == nil {
		var err error
		prefs, err = h.prefs.GetPreferences(c.Request.Context(), userID)
		if err != nil && !errors.Is(err, service.ErrNotFound) {
			respondServiceError(c, err)
			return
		}
	}

	full, err := h.llm.FillRecipeDetail(c.Request.Context(), &req.Recipe, prefs)
	if err != nil {
		log.Printf("[MealPlanHandler] detail completion failed: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "failed to complete recipe details"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"recipe": full})
}

// Generate is a stub until automatic plan generation ships
func (h *MealPlanHandler) Generate(c *gin.Context) {
	c.JSON(http.StatusServiceUnavailable, gin.H{"error": "meal plan generation is coming soon"})
}

// List returns the caller's meal plans, newest first
func (h *MealPlanHandler) List(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	plans, err := h.plans.ListMealPlans(c.Request.Context(), userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"meal_plans": plans})
}

// Get returns one meal plan
func (h *MealPlanHandler) Get(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	planID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid meal plan id"})
		return
	}

	plan, err := h.plans.GetMealPlan(c.Request.Context(), userID, planID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"meal_plan": plan})
}

// Put creates or replaces a meal plan
func (h *MealPlanHandler) Put(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	planID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid meal plan id"})
		return
	}

	var plan model.MealPlan
	if err := c.ShouldBindJSON(&plan); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	plan.ID = planID
	plan.UserID = userID

	saved, err := h.plans.SaveMealPlan(c.Request.Context(), userID, plan)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"meal_plan": saved})
}

// Delete removes a meal plan. Idempotent.
func (h *MealPlanHandler) Delete(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	planID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid meal plan id"})
		return
	}

	if err := h.plans.DeleteMealPlan(c.Request.Context(), userID, planID); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

// PutItem replaces a single plan item, e.g. after the user swaps a meal
func (h *MealPlanHandler) PutItem(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	planID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid meal plan id"})
		return
	}

	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid item index"})
		return
	}

	var item model.MealPlanItem
	if err := c.ShouldBindJSON(&item); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	plan, err := h.plans.UpdateItem(c.Request.Context(), userID, planID, index, item)
	if err != nil {
		if errors.Is(err, service.ErrPermissionDenied) || errors.Is(err, service.ErrNotFound) || errors.Is(err, service.ErrUnavailable) {
			respondServiceError(c, err)
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"meal_plan": plan})
}
