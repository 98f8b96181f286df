package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"bilancio/internal/amqp"
	"bilancio/internal/config"
	applog "bilancio/internal/log"
	"bilancio/internal/services"
	"bilancio/internal/storage"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logCfg := applog.DefaultConfig()
	logCfg.Component = applog.ComponentWorker
	logger := applog.New(logCfg)
	applog.SetDefault(logger)

	logger.Info("Starting catchup-worker")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to initialize SQLite repository", "error", err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer repo.Close()

	var publisher services.EventPublisher
	if cfg.AMQPURL != "" {
		amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("Failed to initialize AMQP client, continuing without messaging", "error", err)
		} else {
			defer amqpClient.Close()
			logger.Info("AMQP client initialized - transaction events will be published")
			publisher = amqpClient
		}
	} else {
		logger.Info("AMQP disabled - transaction events will not be published")
	}

	processor := services.NewCatchUpProcessor(repo, repo, publisher)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("Catch-up processor configured",
		"interval", cfg.CatchUpInterval,
		"sqlite_db", cfg.SQLiteDBPath)

	ticker := time.NewTicker(cfg.CatchUpInterval)
	defer ticker.Stop()

	// Run an initial pass on startup so a long-stopped worker catches
	// up immediately instead of waiting for the first tick.
	if count, err := processor.Run(ctx, time.Now()); err != nil {
		logger.Error("Initial catch-up failed", "error", err)
	} else {
		logger.Info("Initial catch-up complete", "materialized", count)
	}

	for {
		select {
		case <-ctx.Done():
			logger.Info("Shutdown signal received")
			logger.Info("Catchup-worker shutdown complete")
			return
		case now := <-ticker.C:
			count, err := processor.Run(ctx, now)
			if err != nil {
				logger.Error("Periodic catch-up failed", "error", err)
				continue
			}
			logger.Info("Periodic catch-up complete",
				"materialized", count,
				"next_check", now.Add(cfg.CatchUpInterval).Format("15:04:05"))
		}
	}
}
