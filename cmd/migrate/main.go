package main

import (
	"context"
	"log"
	"time"

	"github.com/noah-isme/study-planner-api/migrations"
	"github.com/noah-isme/study-planner-api/pkg/config"
	"github.com/noah-isme/study-planner-api/pkg/database"
	"github.com/noah-isme/study-planner-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("database unavailable", "error", err)
	}
	defer db.Close()

	applied, err := migrations.Apply(ctx, db, logr)
	if err != nil {
		logr.Sugar().Fatalw("migration failed", "error", err, "applied", applied)
	}
	logr.Sugar().Infow("migrations complete", "applied", len(applied))
}
