// Command server runs the looksee HTTP API: session-scoped dataset
// profiling backed by an in-memory DuckDB instance.
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"looksee/internal/api"
	"looksee/internal/catalog"
	"looksee/internal/config"
	"looksee/internal/domain"
	"looksee/internal/engine"
	"looksee/internal/logging"
	"looksee/internal/service/publish"
)

func main() {
	configPath := flag.String("config", config.DefaultPath, "path to the looksee configuration file")
	flag.Parse()

	// Configuration is the only thing allowed to fail hard.
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("configuration error: %v", err)
	}

	logger, closeLog, err := logging.Setup(cfg)
	if err != nil {
		log.Fatalf("logging setup: %v", err)
	}
	defer closeLog() //nolint:errcheck

	db, err := engine.Open()
	if err != nil {
		log.Fatalf("open engine: %v", err)
	}
	defer db.Close() //nolint:errcheck

	var datasets []domain.Dataset
	if cfg.Settings.DatasetCatalog != "" {
		datasets, err = catalog.Load(cfg.Settings.DatasetCatalog)
		if err != nil {
			logger.Warn("demo-dataset catalog unavailable", "error", err)
		}
	}

	sessions := api.NewSessionManager(db, cfg, logger.With("component", "sessions"))
	handler := api.NewHandler(sessions, datasets, logger.With("component", "api"))
	router := api.NewRouter(handler, cfg)

	// Optional scheduled re-publication of the configured report document.
	if cfg.Publish.Schedule != "" && cfg.Publish.Document != "" {
		pub := publish.New(nil, logger.With("component", "publish"))
		c := cron.New()
		_, err := c.AddFunc(cfg.Publish.Schedule, func() {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
			defer cancel()
			// Failures are logged inside the service, never retried here.
			_ = pub.RenderAndPublish(ctx, cfg.Publish.Document, cfg.Publish.ServerURL)
		})
		if err != nil {
			logger.Warn("invalid publish schedule", "schedule", cfg.Publish.Schedule, "error", err)
		} else {
			c.Start()
			defer c.Stop()
			logger.Info("publish schedule active", "schedule", cfg.Publish.Schedule, "document", cfg.Publish.Document)
		}
	}

	srv := &http.Server{
		Addr:              cfg.Settings.ListenAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("looksee API listening", "addr", cfg.Settings.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("shutdown", "error", err)
	}
}
