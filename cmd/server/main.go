package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/melodexapp/melodex/internal/catalog"
	"github.com/melodexapp/melodex/internal/config"
	"github.com/melodexapp/melodex/internal/handlers"
	"github.com/melodexapp/melodex/internal/ingest"
	"github.com/melodexapp/melodex/internal/logger"
	"github.com/melodexapp/melodex/internal/ranking"
	"github.com/melodexapp/melodex/internal/scheduler"
	"github.com/melodexapp/melodex/internal/store"
)

func main() {
	cfg := config.Load()

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	// Initialize Logger
	appLogger := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
	})

	// Initialize DB
	db, err := store.NewSQLiteDB(cfg.DBPath)
	if err != nil {
		appLogger.Error("Failed to init DB", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// Initialize catalog fetcher
	fetcher := catalog.NewFetcher(catalog.Config{
		DataAPIURL:   cfg.DataAPIURL,
		DataAPIKey:   cfg.DataAPIKey,
		InnertubeURL: cfg.InnertubeURL,
		CallerKey:    cfg.CallerKey,
	}, db, appLogger)

	// Initialize ingestion pipeline
	pipeline := ingest.NewPipeline(db, fetcher, ingest.NewGuard(), appLogger)

	// Initialize ranking engine
	engine := ranking.NewEngine(db, appLogger)

	// Initialize scheduler
	if cfg.CronEnabled {
		sched := scheduler.New(engine, pipeline, db, appLogger)
		if err := sched.Start(); err != nil {
			appLogger.Error("Failed to start scheduler", "error", err)
			os.Exit(1)
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			sched.Stop(ctx)
		}()
	}

	// Initialize Router
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Routes
	h := handlers.NewHandler(engine, pipeline, appLogger)
	h.RegisterRoutes(r)

	// Start Server
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		log.Printf("Server listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server shutdown error: %v", err)
	}
	log.Println("Server stopped")
}
