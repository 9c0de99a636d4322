// Command tilp-migrate creates the clinic tables, applies column migrations
// and inserts the seed rows, then exits.
package main

import (
	"context"
	"os"
	"time"

	"tilp-connect/common/database"
	"tilp-connect/common/logger"
	"tilp-connect/internal/config"
	"tilp-connect/internal/repository"

	"go.uber.org/zap"
)

func main() {
	os.Exit(run())
}

// run keeps every deferred cleanup inside a function that returns, so the
// logger is flushed and the pool closed before the process exits.
func run() int {
	cfg := config.Load()

	log, err := logger.NewLogger(cfg.Log.Level, cfg.Log.Format, "tilp-migrate")
	if err != nil {
		log, _ = zap.NewProduction()
	}
	defer log.Sync()

	db, err := database.NewPostgresDB(&cfg.Database)
	if err != nil {
		log.Error("Database connection failed", zap.String("host", cfg.Database.Host), zap.Error(err))
		return 1
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	seed := repository.SeedOptions{Admin: cfg.Seed.Admin, Demo: cfg.Seed.Demo}
	if err := repository.InitSchema(ctx, db, seed); err != nil {
		log.Error("Schema init failed", zap.Error(err))
		return 1
	}
	log.Info("Schema ready",
		zap.String("database", cfg.Database.Database),
		zap.Bool("seed_admin", seed.Admin),
		zap.Bool("seed_demo", seed.Demo),
	)
	return 0
}
