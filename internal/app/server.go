// File: internal/app/server.go
package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"nexus_mapping_backend/internal/common"
	"nexus_mapping_backend/internal/config"
	"nexus_mapping_backend/internal/jobs"
	"nexus_mapping_backend/internal/middleware"
	"nexus_mapping_backend/internal/point"
	"nexus_mapping_backend/internal/session"
	"nexus_mapping_backend/internal/shared"
	"nexus_mapping_backend/internal/user"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Server struct holds the dependencies for the HTTP server.
type Server struct {
	httpServer *http.Server
	router     *gin.Engine
	cfg        *config.Config
	logger     *zap.Logger

	// Handlers
	pointHandler   *point.Handler
	userHandler    *user.Handler
	sessionHandler *session.Handler

	// Jobs
	reseedJob *jobs.ReseedJob
}

// NewServer creates a new instance of our application server.
func NewServer(
	cfg *config.Config,
	logger *zap.Logger,
	pointHandler *point.Handler,
	userHandler *user.Handler,
	sessionHandler *session.Handler,
	reseedJob *jobs.ReseedJob,
	verifier shared.TokenVerifier,
	userService shared.Service,
	rateStore middleware.CounterStore,
	db *gorm.DB,
) (*Server, error) {
	if err := db.AutoMigrate(&user.User{}, &point.MapPoint{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database schema: %w", err)
	}

	gin.SetMode(cfg.GinMode)
	router := gin.New()

	// --- Global Middleware ---
	router.Use(middleware.ZapLogger(logger, cfg))
	router.Use(middleware.ErrorHandler(logger))
	router.Use(gin.Recovery())

	// CORS Middleware
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{"*"}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization", common.AdminSecretHeader, middleware.RequestIDHeader}
	corsConfig.ExposeHeaders = []string{"Content-Length", middleware.RequestIDHeader}
	router.Use(cors.New(corsConfig))

	// Create middleware instances
	authMW := middleware.AuthMiddleware(verifier, userService, logger.Named("AuthMiddleware"))
	adminRoleMW := middleware.RoleAuthMiddleware(common.RoleAdmin)
	secretMW := middleware.AdminSecretMiddleware(cfg, logger.Named("AdminSecretMiddleware"))
	rateMW := middleware.RateLimitMiddleware(rateStore, cfg, time.Now, logger.Named("RateLimitMiddleware"))

	// --- Setup Routes ---
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "UP", "message": "NexusMapping API is healthy!"})
	})

	// The rate limit fronts the whole /api surface, before authentication.
	api := router.Group("/api", rateMW)

	pointHandler.RegisterRoutes(api, authMW, adminRoleMW, secretMW)
	userHandler.RegisterRoutes(api, authMW)

	// Session issuing for the admin front end lives outside /api.
	sessionHandler.RegisterRoutes(router)

	addr := fmt.Sprintf("%s:%s", cfg.ServerHost, cfg.ServerPort)
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	return &Server{
		httpServer:     httpServer,
		router:         router,
		cfg:            cfg,
		logger:         logger,
		pointHandler:   pointHandler,
		userHandler:    userHandler,
		sessionHandler: sessionHandler,
		reseedJob:      reseedJob,
	}, nil
}

func (s *Server) Start() error {
	if s.reseedJob != nil {
		if err := s.reseedJob.SetupAndStart(); err != nil {
			s.logger.Error("Failed to setup and start reseed job", zap.Error(err))
		}
	} else {
		s.logger.Info("Reseed job is not configured, skipping start.")
	}

	s.logger.Info("HTTP Server starting",
		zap.String("address", s.httpServer.Addr),
		zap.String("gin_mode", s.cfg.GinMode),
	)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		s.logger.Error("Failed to start HTTP server", zap.Error(err))
		return err
	}
	s.logger.Info("HTTP Server stopped gracefully or an error occurred")
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Attempting graceful server shutdown...")
	if s.reseedJob != nil {
		s.reseedJob.Stop()
	}
	return s.httpServer.Shutdown(ctx)
}
