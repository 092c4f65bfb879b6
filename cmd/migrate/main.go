package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	mongoMigration "parkbook/internal/migrations/mongo"
	"parkbook/pkg/config"
)

const (
	JobName = "park-migrate"

	migrationTimeout = 2 * time.Minute
)

func main() {
	cfg := config.Load(JobName)
	cfg.SetMongo()
	defer cfg.GracefulShutdown()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, migrationTimeout)
	defer cancel()

	started := time.Now()
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	if err := mongoMigration.RunMigration(ctx, db, cfg.Log); err != nil {
		cfg.Log.Error("Park schema migration failed", "database", cfg.MongoDatabaseName, "error", err)
		cfg.GracefulShutdown()
		os.Exit(1)
	}

	cfg.Log.Info("Park schema is up to date",
		"database", cfg.MongoDatabaseName,
		"collections", len(mongoMigration.Collections()),
		"took", time.Since(started).Round(time.Millisecond),
	)
}
