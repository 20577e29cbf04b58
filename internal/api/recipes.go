package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/souschef-app/backend/internal/middleware"
	"github.com/souschef-app/backend/internal/model"
	"github.com/souschef-app/backend/internal/service"
)

// SavedRecipeHandler handles the saved-recipes collection
type SavedRecipeHandler struct {
	recipes *service.SavedRecipeService
}

// NewSavedRecipeHandler creates a new SavedRecipeHandler instance
func NewSavedRecipeHandler(recipes *service.SavedRecipeService) *SavedRecipeHandler {
	return &SavedRecipeHandler{recipes: recipes}
}

// RegisterRoutes registers the saved-recipe routes
func (h *SavedRecipeHandler) RegisterRoutes(router *gin.RouterGroup, auth gin.HandlerFunc) {
	recipes := router.Group("/recipes", auth)
	{
		recipes.GET("", h.List)
		recipes.POST("/:id/save", h.Save)
		recipes.DELETE("/:id/save", h.Remove)
		recipes.GET("/:id/saved", h.Exists)
		recipes.GET("/:id/similar", h.Similar)
	}
}

// Save persists the recipe in the request body under the caller's collection
func (h *SavedRecipeHandler) Save(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var recipe model.Recipe
	if err := c.ShouldBindJSON(&recipe); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	recipe.ID = c.Param("id")

	saved, err := h.recipes.SaveRecipe(c.Request.Context(), userID, userID, recipe)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"saved_recipe": saved})
}

// Remove deletes a recipe from the caller's collection. Idempotent.
func (h *SavedRecipeHandler) Remove(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	if err := h.recipes.RemoveRecipe(c.Request.Context(), userID, userID, c.Param("id")); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"removed": true})
}

// List returns the caller's saved recipes, most recent first
func (h *SavedRecipeHandler) List(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	saved, err := h.recipes.ListSavedRecipes(c.Request.Context(), userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"saved_recipes": saved})
}

// Exists reports whether a recipe is in the caller's collection
func (h *SavedRecipeHandler) Exists(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	exists, err := h.recipes.IsRecipeSaved(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"exists": exists})
}

// Similar returns the caller's saved recipes closest to the given one
func (h *SavedRecipeHandler) Similar(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "5"))

	similar, err := h.recipes.SimilarSavedRecipes(c.Request.Context(), userID, c.Param("id"), limit)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"recipes": similar})
}
