// Package main is the entry point for the short-link redirect and
// click-analytics service.
package main

import (
	"ShortLinks-Backend/internal/config"
	"ShortLinks-Backend/internal/database"
	httpHandler "ShortLinks-Backend/internal/handler/http"
	"ShortLinks-Backend/internal/recorder"
	"ShortLinks-Backend/internal/repository/postgres"
	"ShortLinks-Backend/internal/resolver"
	"ShortLinks-Backend/internal/service"
	"ShortLinks-Backend/pkg/logger"
	"ShortLinks-Backend/pkg/useragent"
	"context"
	lg "log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
)

func main() {
	cfg := config.MustLoad()
	log := logger.New(cfg.Env)
	defer func() {
		if err := log.Sync(); err != nil {
			lg.Printf("ERROR: failed to sync zap logger: %v\n", err)
		}
	}()

	log.Info("starting shortlinks service", zap.String("env", cfg.Env))

	// Initialize database connection
	db, err := database.NewConnection(&cfg.Database, log)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := database.Close(db, log); err != nil {
			log.Error("failed to close database connection", zap.Error(err))
		}
	}()

	// Run database migrations if enabled
	if cfg.Database.AutoMigrate {
		if err := database.AutoMigrate(db, log); err != nil {
			log.Fatal("failed to run database migrations", zap.Error(err))
		}
	} else {
		log.Info("skipping database migrations (auto_migrate: false)")
	}

	// Seed demo links if enabled
	if cfg.Database.SeedData {
		if err := database.SeedData(db, log); err != nil {
			log.Fatal("failed to seed database", zap.Error(err))
		}
	}

	// Initialize User-Agent parser; clicks fall back to keyword
	// classification when the regexes file is missing.
	var uaParser *useragent.Parser
	if uaParser, err = useragent.NewParser(cfg.Recorder.UserAgentRegexes, log); err != nil {
		log.Warn("failed to initialize User-Agent parser, using keyword fallback", zap.Error(err))
		uaParser = nil
	}

	// Initialize storage and services
	storage := postgres.New(db, log)
	registry := service.NewRegistry(storage, &cfg.Redirect)
	res := resolver.New(storage, cfg.Redirect.SiteRoot, log)

	// Start the click recorder worker pool
	clickRecorder := recorder.New(storage, uaParser, log, recorder.Config{
		Workers:         cfg.Recorder.Workers,
		BufferSize:      cfg.Recorder.BufferSize,
		OpTimeout:       cfg.Recorder.OpTimeout,
		ShutdownTimeout: cfg.Recorder.ShutdownTimeout,
	})
	if err := clickRecorder.Start(); err != nil {
		log.Fatal("failed to start click recorder", zap.Error(err))
	}

	// Create HTTP server
	httpAPIServer := httpHandler.NewServer(storage, registry, res, clickRecorder, clickRecorder, log)

	srv := &http.Server{
		Addr:         cfg.HTTPServer.Address,
		Handler:      httpAPIServer.SetupRoutes(),
		ReadTimeout:  cfg.HTTPServer.ReadTimeout,
		WriteTimeout: cfg.HTTPServer.WriteTimeout,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}

	log.Info("starting HTTP server", zap.String("address", cfg.HTTPServer.Address))

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server failed", zap.Error(err))
		}
	}()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down shortlinks service...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.HTTPServer.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("failed to shutdown HTTP server", zap.Error(err))
	} else {
		log.Info("HTTP server stopped")
	}

	// Drain queued clicks after the HTTP server stops accepting requests
	if err := clickRecorder.Stop(); err != nil {
		log.Error("failed to stop click recorder", zap.Error(err))
	}
}
