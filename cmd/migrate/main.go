package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/bossbruno/quick-bundles-notifications/internal/config"
	"github.com/bossbruno/quick-bundles-notifications/internal/migrate"
	"github.com/bossbruno/quick-bundles-notifications/internal/repository"
	"github.com/bossbruno/quick-bundles-notifications/pkg/logger"
)

// One-shot backfill: create a transaction record for every legacy chat
// that has none and stamp the chat with the new order id.
func main() {
	cfg, err := config.LoadMigrate()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	logr := logger.New(cfg.LogLevel, "quick_bundles_migrate")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := repository.Connect(cfg.DatabaseURL)
	if err != nil {
		logr.Error("failed to connect database", slog.Any("error", err))
		os.Exit(1)
	}

	result, err := migrate.Run(ctx, repository.NewOrderStore(db), logr)
	if err != nil {
		logr.Error("migration failed",
			slog.Int("migrated", result.Migrated),
			slog.Int("skipped", result.Skipped),
			slog.Any("error", err))
		os.Exit(1)
	}

	logr.Info("migration script completed",
		slog.Int("migrated", result.Migrated),
		slog.Int("skipped", result.Skipped))
}
