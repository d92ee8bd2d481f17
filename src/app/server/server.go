// Package server provides HTTP server initialization and lifecycle management.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"cookoff/src/app/http/handler"
	"cookoff/src/app/middleware"
	"cookoff/src/core/ports"
	"cookoff/src/core/usecase"
	"cookoff/src/infra/config"
)

// Server wraps the HTTP server and its dependencies.
type Server struct {
	cfg    *config.Config
	log    *slog.Logger
	repo   ports.ContestRepository
	router *gin.Engine
	http   *http.Server

	// Handlers
	healthHandler *handler.HealthHandler
	playerHandler *handler.PlayerHandler
	roundHandler  *handler.RoundHandler
	dishHandler   *handler.DishHandler
	ratingHandler *handler.RatingHandler
	adminHandler  *handler.AdminHandler
}

// New creates a new Server with all dependencies wired up.
func New(cfg *config.Config, log *slog.Logger, repo ports.ContestRepository) *Server {
	// Set Gin mode based on log level
	if cfg.Log.Level == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	// Create router without default middleware
	router := gin.New()

	// Create services
	quorum := cfg.Contest.FinalizeQuorum
	healthService := usecase.NewHealthService(repo, log)
	completionService := usecase.NewCompletionService(repo, quorum, log)
	scoringService := usecase.NewScoringService(repo, log)
	roundService := usecase.NewRoundService(repo, completionService, scoringService, quorum, log)
	submissionService := usecase.NewSubmissionService(repo, roundService, log)
	playerService := usecase.NewPlayerService(repo, log)
	adminService := usecase.NewAdminService(repo, scoringService, log)

	// Create handlers
	healthHandler := handler.NewHealthHandler(healthService)
	playerHandler := handler.NewPlayerHandler(playerService)
	roundHandler := handler.NewRoundHandler(roundService, completionService, submissionService)
	dishHandler := handler.NewDishHandler(submissionService)
	ratingHandler := handler.NewRatingHandler(submissionService)
	adminHandler := handler.NewAdminHandler(adminService)

	s := &Server{
		cfg:           cfg,
		log:           log,
		repo:          repo,
		router:        router,
		healthHandler: healthHandler,
		playerHandler: playerHandler,
		roundHandler:  roundHandler,
		dishHandler:   dishHandler,
		ratingHandler: ratingHandler,
		adminHandler:  adminHandler,
	}

	s.setupMiddleware()
	s.setupRoutes()
	s.setupHTTPServer()

	return s
}

// setupMiddleware configures global middleware.
func (s *Server) setupMiddleware() {
	// Order matters: Recovery should be first to catch all panics
	s.router.Use(middleware.Recovery(s.log))
	s.router.Use(middleware.RequestID())
	s.router.Use(middleware.CORS())
	s.router.Use(middleware.Logging(s.log))
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	// Health check endpoints (no auth required)
	s.router.GET("/health", s.healthHandler.Health)
	s.router.GET("/health/detailed", s.healthHandler.DetailedHealth)

	// API v1 routes
	v1 := s.router.Group("/v1")
	{
		// Registration and public reads
		v1.POST("/players", s.playerHandler.Register)
		v1.GET("/players/:player_id/stats", s.playerHandler.Stats)
		v1.GET("/leaderboard", s.playerHandler.Leaderboard)

		v1.GET("/rounds", s.roundHandler.List)
		v1.GET("/rounds/open", s.roundHandler.Open)
		v1.GET("/rounds/:round_id", s.roundHandler.Get)
		v1.GET("/rounds/:round_id/progress", s.roundHandler.Progress)
		v1.GET("/rounds/:round_id/dishes", s.dishHandler.List)
		v1.GET("/rounds/:round_id/finalize-votes", s.roundHandler.FinalizationStatus)

		// Player-identified writes
		auth := v1.Group("")
		auth.Use(middleware.PlayerAuth(s.repo))
		{
			auth.GET("/players/me", s.playerHandler.Me)
			auth.POST("/rounds/:round_id/dishes", s.dishHandler.Submit)
			auth.POST("/dishes/:dish_id/ratings", s.ratingHandler.Submit)
			auth.POST("/rounds/:round_id/finalize-votes", s.roundHandler.VoteToFinalize)
		}

		// Administrative endpoints
		admin := v1.Group("/admin")
		admin.Use(middleware.AdminAuth(s.cfg.Contest.AdminPassword))
		{
			admin.POST("/rounds", s.roundHandler.Create)
			admin.POST("/rounds/:round_id/open", s.roundHandler.OpenVoting)
			admin.POST("/stats/recompute", s.adminHandler.RecomputeStats)
			admin.POST("/stats/reset", s.adminHandler.ResetStats)
			admin.POST("/contest/reset", s.adminHandler.ResetContest)
		}
	}

	// Handle 404
	s.router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"error": gin.H{
				"code":       "NOT_FOUND",
				"message":    "The requested resource was not found",
				"request_id": middleware.GetRequestID(c),
			},
		})
	})
}

// setupHTTPServer configures the underlying HTTP server.
func (s *Server) setupHTTPServer() {
	s.http = &http.Server{
		Addr:         s.cfg.Server.Addr(),
		Handler:      s.router,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
	}
}

// Run starts the HTTP server and blocks until shutdown.
// It handles graceful shutdown on SIGINT/SIGTERM.
func (s *Server) Run() error {
	// Channel to receive shutdown signals
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	// Channel to receive server errors
	errCh := make(chan error, 1)

	// Start server in goroutine
	go func() {
		s.log.Info("starting HTTP server",
			"addr", s.cfg.Server.Addr(),
		)
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("server error: %w", err)
		}
	}()

	// Wait for shutdown signal or error
	select {
	case sig := <-quit:
		s.log.Info("received shutdown signal", "signal", sig.String())
	case err := <-errCh:
		return err
	}

	// Graceful shutdown
	return s.Shutdown()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown() error {
	s.log.Info("shutting down server", "timeout", s.cfg.Server.ShutdownTimeout)

	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := s.http.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	s.log.Info("server stopped gracefully")
	return nil
}

// Router returns the Gin router for testing.
func (s *Server) Router() *gin.Engine {
	return s.router
}

// WaitForReady waits until the server is ready to accept connections.
// Useful for integration tests.
func (s *Server) WaitForReady(timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		resp, err := http.Get(fmt.Sprintf("http://%s/health", s.cfg.Server.Addr()))
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return nil
			}
		}
		time.Sleep(10 * time.Millisecond)
	}
	return fmt.Errorf("server not ready after %v", timeout)
}
