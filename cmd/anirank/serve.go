package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/anirank/anirank/internal/api"
	"github.com/anirank/anirank/internal/catalog"
	"github.com/anirank/anirank/internal/config"
	"github.com/anirank/anirank/internal/controllers"
	"github.com/anirank/anirank/internal/identity"
	"github.com/anirank/anirank/internal/models"
	"github.com/anirank/anirank/internal/scheduler"
	"github.com/anirank/anirank/internal/services/anilist"
	"github.com/anirank/anirank/internal/services/jikan"
	"github.com/anirank/anirank/internal/utils"
	"github.com/spf13/cobra"
)

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the API server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe()
		},
	}
}

func runServe() error {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// 2. Setup logger
	logger := utils.NewLogger(cfg.LogLevel)
	logger.Info("Starting anirank")
	logger.WithField("config_dir", filepath.Dir(cfg.DatabaseFile)).Info("Configuration loaded")

	// 3. Initialize database
	db, err := models.NewDatabase(cfg.DatabaseFile)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()
	logger.Info("Database initialized")

	// 4. Load comment blocklist
	blocklist, err := utils.LoadBlocklist(cfg.BlocklistFile)
	if err != nil {
		logger.WithError(err).Warn("Failed to load blocklist, continuing without it")
		blocklist = &utils.Blocklist{}
	} else {
		logger.Info("Blocklist loaded")
	}

	// 5. Initialize session store
	sessions, err := identity.NewFileSessionStore(cfg.SessionsFile)
	if err != nil {
		return fmt.Errorf("failed to initialize session store: %w", err)
	}
	logger.Info("Session store initialized")

	// 6. Initialize catalog sources
	jikanClient, err := jikan.NewClient(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize Jikan client: %w", err)
	}
	logger.Info("Jikan client initialized")

	anilistClient, err := anilist.NewClient(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize AniList client: %w", err)
	}
	logger.Info("AniList client initialized")

	gateway := catalog.NewGateway(jikanClient, anilistClient, logger)

	// 7. Initialize controllers
	tierListCtrl := controllers.NewTierListController(db, logger)
	feedbackCtrl := controllers.NewFeedbackController(db, gateway, blocklist, logger)
	logger.Info("Controllers initialized")

	// 8. Initialize scheduler
	sched := scheduler.NewScheduler(gateway, db, logger)
	if err := sched.Start(); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}
	defer sched.Stop()

	// 9. Initialize HTTP server
	server := api.NewServer(cfg, gateway, tierListCtrl, feedbackCtrl, sessions, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	serverErrChan := make(chan error, 1)
	go func() {
		if err := server.Start(ctx); err != nil {
			serverErrChan <- err
		}
	}()

	// 10. Wait for shutdown signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	logger.Info("anirank is running")

	select {
	case err := <-serverErrChan:
		return fmt.Errorf("server error: %w", err)
	case sig := <-sigChan:
		logger.WithField("signal", sig).Info("Received shutdown signal")
		cancel()
		if err := server.Shutdown(context.Background()); err != nil {
			logger.WithError(err).Error("Error during server shutdown")
		}
	}

	logger.Info("anirank stopped")
	return nil
}
