package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/souschef-app/backend/internal/cooking"
	"github.com/souschef-app/backend/internal/model"
)

// CookingHandler exposes the guided cooking session state machine. Sessions
// are in-memory and scoped to the server process.
type CookingHandler struct {
	sessions *cooking.Manager
}

// NewCookingHandler creates a new CookingHandler instance
func NewCookingHandler(sessions *cooking.Manager) *CookingHandler {
	return &CookingHandler{sessions: sessions}
}

// RegisterRoutes registers the cooking session routes
func (h *CookingHandler) RegisterRoutes(router *gin.RouterGroup, auth gin.HandlerFunc) {
	sessions := router.Group("/cooking/sessions", auth)
	{
		sessions.POST("", h.Create)
		sessions.GET("/:id", h.Get)
		sessions.DELETE("/:id", h.Delete)
		sessions.POST("/:id/advance", h.Advance)
		sessions.POST("/:id/retreat", h.Retreat)
		sessions.POST("/:id/jump", h.Jump)
		sessions.POST("/:id/recipe", h.ReplaceRecipe)
		sessions.POST("/:id/ingredients/check", h.CheckIngredient)
		sessions.POST("/:id/ingredients/remove", h.RemoveIngredient)
		sessions.POST("/:id/ingredients/restore", h.RestoreIngredient)
		sessions.POST("/:id/scale", h.Scale)
		sessions.POST("/:id/timer/start", h.StartTimer)
		sessions.POST("/:id/timer/pause", h.PauseTimer)
		sessions.POST("/:id/timer/resume", h.ResumeTimer)
		sessions.POST("/:id/timer/reset", h.ResetTimer)
		sessions.POST("/:id/timer/dismiss", h.DismissTimer)
	}
}

// sessionResponse is the state the client renders after every event
func sessionResponse(s *cooking.Session) gin.H {
	snap := s.Snapshot()
	return gin.H{
		"session":            snap,
		"scaled_ingredients": s.ScaledIngredients(),
	}
}

// withSession runs fn against the named session and returns its view, or 404
func (h *CookingHandler) withSession(c *gin.Context, fn func(*cooking.Session)) {
	var resp gin.H
	err := h.sessions.With(c.Param("id"), func(s *cooking.Session) {
		if fn != nil {
			fn(s)
		}
		resp = sessionResponse(s)
	})
	if err != nil {
		if errors.Is(err, cooking.ErrSessionNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "cooking session not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Create starts a session for the recipe in the request body
func (h *CookingHandler) Create(c *gin.Context) {
	var req struct {
		Recipe model.Recipe `json:"recipe" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	s := h.sessions.Create(req.Recipe)

	var resp gin.H
	_ = h.sessions.With(s.ID, func(s *cooking.Session) {
		resp = sessionResponse(s)
	})
	c.JSON(http.StatusCreated, resp)
}

// Get returns the current session state
func (h *CookingHandler) Get(c *gin.Context) {
	h.withSession(c, nil)
}

// Delete ends a session. Idempotent.
func (h *CookingHandler) Delete(c *gin.Context) {
	h.sessions.Delete(c.Param("id"))
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

// Advance completes the current step and moves to the next one
func (h *CookingHandler) Advance(c *gin.Context) {
	h.withSession(c, func(s *cooking.Session) { s.Advance() })
}

// Retreat moves back one step
func (h *CookingHandler) Retreat(c *gin.Context) {
	h.withSession(c, func(s *cooking.Session) { s.Retreat() })
}

// Jump navigates directly to a step
func (h *CookingHandler) Jump(c *gin.Context) {
	var req struct {
		Step int `json:"step"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.withSession(c, func(s *cooking.Session) { s.Jump(req.Step) })
}

// ReplaceRecipe swaps in an updated recipe and resets session progress
func (h *CookingHandler) ReplaceRecipe(c *gin.Context) {
	var req struct {
		Recipe model.Recipe `json:"recipe" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.withSession(c, func(s *cooking.Session) { s.ReplaceRecipe(req.Recipe) })
}

// CheckIngredient toggles an ingredient's checked state
func (h *CookingHandler) CheckIngredient(c *gin.Context) {
	var req struct {
		Index *int `json:"index" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.withSession(c, func(s *cooking.Session) { s.ToggleIngredient(*req.Index) })
}

// RemoveIngredient marks an ingredient unavailable and returns the
// substitute question to feed into the chat flow
func (h *CookingHandler) RemoveIngredient(c *gin.Context) {
	var req struct {
		Index *int `json:"index" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var resp gin.H
	err := h.sessions.With(c.Param("id"), func(s *cooking.Session) {
		message, ok := s.RemoveIngredient(*req.Index)
		resp = sessionResponse(s)
		if ok {
			resp["substitute_query"] = message
		}
	})
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "cooking session not found"})
		return
	}
	c.JSON(http.StatusOK, resp)
}

// RestoreIngredient undoes a removal
func (h *CookingHandler) RestoreIngredient(c *gin.Context) {
	var req struct {
		Index *int `json:"index" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.withSession(c, func(s *cooking.Session) { s.RestoreIngredient(*req.Index) })
}

// Scale adjusts the serving multiplier by a half-step delta
func (h *CookingHandler) Scale(c *gin.Context) {
	var req struct {
		Delta float64 `json:"delta" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.withSession(c, func(s *cooking.Session) { s.AdjustServings(req.Delta) })
}

// StartTimer starts a countdown. With explicit seconds the timer starts
// immediately; without, the current step's text is scanned and a duration
// range comes back as selectable options instead.
func (h *CookingHandler) StartTimer(c *gin.Context) {
	var req struct {
		Seconds int `json:"seconds"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var resp gin.H
	err := h.sessions.With(c.Param("id"), func(s *cooking.Session) {
		if req.Seconds > 0 {
			s.StartTimer(req.Seconds)
			resp = sessionResponse(s)
			return
		}

		options, started := s.StartTimerFromStep()
		resp = sessionResponse(s)
		resp["started"] = started
		if options != nil {
			resp["minute_options"] = options
		} else if !started {
			resp["minute_options"] = cooking.ManualPresets
		}
	})
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "cooking session not found"})
		return
	}
	c.JSON(http.StatusOK, resp)
}

// PauseTimer pauses the countdown
func (h *CookingHandler) PauseTimer(c *gin.Context) {
	h.withSession(c, func(s *cooking.Session) { s.PauseTimer() })
}

// ResumeTimer resumes a paused countdown
func (h *CookingHandler) ResumeTimer(c *gin.Context) {
	h.withSession(c, func(s *cooking.Session) { s.ResumeTimer() })
}

// ResetTimer restores the countdown to its full duration
func (h *CookingHandler) ResetTimer(c *gin.Context) {
	h.withSession(c, func(s *cooking.Session) { s.ResetTimer() })
}

// DismissTimer removes the timer
func (h *CookingHandler) DismissTimer(c *gin.Context) {
	h.withSession(c, func(s *cooking.Session) { s.DismissTimer() })
}
