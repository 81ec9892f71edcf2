package main

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"guild-economy-api/internal/config"
	"guild-economy-api/internal/handler"
	"guild-economy-api/internal/middleware"
	"guild-economy-api/internal/repository"
	"guild-economy-api/internal/router"
	"guild-economy-api/internal/service"
	"guild-economy-api/pkg/logger"
)

func main() {
	// Load configuration
	cfg := config.MustLoad()

	log := logger.New(logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})
	log.WithFields(logrus.Fields{
		"version":     cfg.App.Version,
		"environment": cfg.App.Environment,
		"store":       cfg.Store.Type,
	}).Infof("Starting %s...", cfg.App.Name)

	// Initialize guild repository based on config
	repo, err := repository.Open(cfg.Store, log)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}

	eco, err := service.NewEconomy(repo, service.NewOptions(cfg, log))
	if err != nil {
		_ = repo.Close()
		log.Fatalf("Failed to initialize economy: %v", err)
	}
	defer eco.Close()

	// Repair documents written by older versions before serving traffic
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	if _, err := eco.Normalize(ctx); err != nil {
		log.Warnf("Startup normalization failed: %v", err)
	}
	cancel()

	var maintenance handler.MaintenanceRunner
	scheduler, err := startMaintenance(eco, cfg.Maintenance, log)
	if err != nil {
		log.Fatalf("Failed to start maintenance: %v", err)
	}
	if scheduler != nil {
		defer scheduler.Stop()
		maintenance = scheduler
	}

	if len(cfg.Server.APIKeys) == 0 {
		log.Warn("API_KEYS is empty; economy routes are unauthenticated")
	}

	// Create router
	r := router.New(router.Config{
		Handler:        handler.New(eco, cfg.App.Name, cfg.App.Version),
		EconomyHandler: handler.NewEconomyHandler(eco, log),
		AdminHandler:   handler.NewAdminHandler(eco.Store, maintenance, cfg.Store.Type),
		AuthMiddleware: middleware.NewAuthMiddleware(middleware.AuthConfig{APIKeys: cfg.Server.APIKeys}),
		RateLimiter:    middleware.NewRateLimiter(cfg.Server.RateLimit, cfg.Server.RateBurst),
		Logger:         log,
	})

	// Create HTTP server
	srv := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server in goroutine
	go func() {
		log.Infof("Server listening on %s", cfg.Server.Address())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel = context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Errorf("Server shutdown error: %v", err)
	}

	log.Info("Server stopped")
}

type maintainedStore interface {
	service.Normalizer
	io.Closer
}

// startMaintenance starts the normalization job when enabled. On failure the
// store is closed, since the caller exits without running deferred calls.
func startMaintenance(store maintainedStore, cfg config.MaintenanceConfig, log logrus.FieldLogger) (*service.MaintenanceScheduler, error) {
	if !cfg.Enabled {
		return nil, nil
	}
	scheduler := service.NewMaintenanceScheduler(store, cfg.Schedule, log)
	if err := scheduler.Start(); err != nil {
		_ = store.Close()
		return nil, err
	}
	return scheduler, nil
}
