package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/anirank/anirank/internal/api/handlers"
	"github.com/anirank/anirank/internal/api/middleware"
	"github.com/anirank/anirank/internal/catalog"
	"github.com/anirank/anirank/internal/config"
	"github.com/anirank/anirank/internal/controllers"
	"github.com/anirank/anirank/internal/identity"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

// Server represents the HTTP server
type Server struct {
	server       *http.Server
	gateway      *catalog.Gateway
	tierListCtrl *controllers.TierListController
	feedbackCtrl *controllers.FeedbackController
	sessions     identity.Provider
	logger       *logrus.Logger
}

// NewServer creates a new HTTP server
func NewServer(
	cfg *config.Config,
	gateway *catalog.Gateway,
	tierListCtrl *controllers.TierListController,
	feedbackCtrl *controllers.FeedbackController,
	sessions identity.Provider,
	logger *logrus.Logger,
) *Server {
	s := &Server{
		gateway:      gateway,
		tierListCtrl: tierListCtrl,
		feedbackCtrl: feedbackCtrl,
		sessions:     sessions,
		logger:       logger,
	}

	mux := http.NewServeMux()
	s.setupRoutes(mux)

	limiter := middleware.NewKeyedLimiter(cfg.APIRateRPS, cfg.APIRateBurst)
	handler := middleware.RateLimit(middleware.Logging(mux, logger), limiter, logger)

	s.server = &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes(mux *http.ServeMux) {
	healthHandler := handlers.NewHealthHandler(s.logger)
	mux.HandleFunc("GET /health", healthHandler.ServeHTTP)
	mux.Handle("GET /metrics", promhttp.Handler())

	animeHandler := handlers.NewAnimeHandler(s.gateway, s.feedbackCtrl, s.logger)
	mux.HandleFunc("GET /api/anime/top", animeHandler.Top)
	mux.HandleFunc("GET /api/anime/seasonal", animeHandler.Seasonal)
	mux.HandleFunc("GET /api/anime/search", animeHandler.Search)
	mux.HandleFunc("GET /api/anime/{id}", animeHandler.ByID)
	mux.HandleFunc("GET /api/anime/{id}/episodes", animeHandler.Episodes)

	feedbackHandler := handlers.NewFeedbackHandler(s.feedbackCtrl, s.sessions, s.logger)
	mux.HandleFunc("POST /api/feedback/anime", feedbackHandler.SubmitAnime)
	mux.HandleFunc("POST /api/feedback/episode", feedbackHandler.SubmitEpisode)
	mux.HandleFunc("GET /api/feedback/recent", feedbackHandler.Recent)
	mux.HandleFunc("GET /api/feedback/summary", feedbackHandler.Summary)

	tierListHandler := handlers.NewTierListHandler(s.tierListCtrl, s.gateway, s.sessions, s.logger)
	mux.HandleFunc("GET /api/tierlists", tierListHandler.List)
	mux.HandleFunc("POST /api/tierlists", tierListHandler.Create)
	mux.HandleFunc("GET /api/tierlists/{id}", tierListHandler.Get)
	mux.HandleFunc("PUT /api/tierlists/{id}", tierListHandler.Update)
	mux.HandleFunc("DELETE /api/tierlists/{id}", tierListHandler.Delete)
	mux.HandleFunc("POST /api/tierlists/{id}/share", tierListHandler.Share)
	mux.HandleFunc("POST /api/tierlists/{id}/duplicate", tierListHandler.Duplicate)
	mux.HandleFunc("GET /api/tierlists/{id}/export", tierListHandler.Export)
	mux.HandleFunc("GET /api/shared/{shareID}", tierListHandler.Shared)
}

// Start starts the HTTP server
func (s *Server) Start(ctx context.Context) error {
	s.logger.WithField("port", s.server.Addr).Info("Starting HTTP server")

	errChan := make(chan error, 1)
	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	select {
	case err := <-errChan:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		return s.Shutdown(context.Background())
	}
}

// Shutdown gracefully shuts down the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return s.server.Shutdown(shutdownCtx)
}
