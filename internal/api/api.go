package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/souschef-app/backend/internal/cooking"
	"github.com/souschef-app/backend/internal/middleware"
	"github.com/souschef-app/backend/internal/service"
)

// SetupAPI wires services and handlers onto /api/v1 and returns the cooking
// session manager so the caller can close it on shutdown. Both redisClient
// and images may be nil: drafts, rate limits and recipe images degrade to
// no-ops.
func SetupAPI(router *gin.Engine, db *gorm.DB, redisClient *redis.Client, images *service.ImageService, jwtSecret string) *cooking.Manager {
	identityService := service.NewIdentityService(jwtSecret)
	llmService := service.NewLLMService(redisClient, images)
	prefsService := service.NewPreferencesService(db)
	recipeService := service.NewSavedRecipeService(db)
	planService := service.NewMealPlanService(db, llmService)
	sessions := cooking.NewManager()

	auth := middleware.AuthMiddleware(identityService)
	chatLimit := middleware.NewChatRateLimiter(redisClient).RateLimitMiddleware()
	searchLimit := middleware.NewSearchRateLimiter(redisClient).RateLimitMiddleware()

	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		})

		NewChatHandler(llmService, prefsService).RegisterRoutes(v1, auth, chatLimit, searchLimit)
		NewSavedRecipeHandler(recipeService).RegisterRoutes(v1, auth)
		NewPreferencesHandler(prefsService).RegisterRoutes(v1, auth)
		NewMealPlanHandler(planService, llmService, prefsService).RegisterRoutes(v1, auth)
		NewCookingHandler(sessions).RegisterRoutes(v1, auth)
	}

	return sessions
}
