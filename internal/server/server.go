package server

import (
	"context"
	"log"
	"net/http"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/souschef-app/backend/config"
	"github.com/souschef-app/backend/internal/api"
	"github.com/souschef-app/backend/internal/cooking"
	"github.com/souschef-app/backend/internal/middleware"
	"github.com/souschef-app/backend/internal/service"
)

// Server represents the HTTP server
type Server struct {
	router   *gin.Engine
	http     *http.Server
	sessions *cooking.Manager
}

// New creates a new server instance with all routes registered
func New(cfg *config.Config, db *gorm.DB, redisClient *redis.Client, images *service.ImageService) *Server {
	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(requestid.New())
	router.Use(gin.Logger())
	router.Use(middleware.Recovery())
	router.Use(middleware.CORS(cfg.AllowedOrigins))

	sessions := api.SetupAPI(router, db, redisClient, images, cfg.JWTSecret)

	return &Server{
		router: router,
		http: &http.Server{
			Addr:    cfg.ServerHost + ":" + cfg.ServerPort,
			Handler: router,
		},
		sessions: sessions,
	}
}

// Start runs the server until it is shut down
func (s *Server) Start() error {
	log.Printf("Listening on %s", s.http.Addr)
	if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully stops the HTTP server and the cooking session ticker
func (s *Server) Shutdown(ctx context.Context) error {
	s.sessions.Close()
	return s.http.Shutdown(ctx)
}
