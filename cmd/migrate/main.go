package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	catalogmigrations "github.com/ghuser/catalog/migrations/catalog"
	"github.com/ghuser/catalog/pkg/config"
	"github.com/ghuser/catalog/pkg/migrator"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if err := migrator.RunMigrations(ctx, cfg.DatabaseURL, catalogmigrations.FS); err != nil {
		slog.Error("failed to run catalog migrations", "error", err)
		os.Exit(1)
	}
	slog.Info("catalog migrations applied")
}
