// Command migrate applies the taskrush schema to the configured Postgres database.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"taskrush/internal/backend/postgres"
	"taskrush/internal/config"
)

func main() {
	configDir := flag.String("config", "", "config directory")
	dryRun := flag.Bool("print", false, "print the schema instead of applying it")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	if *dryRun {
		fmt.Print(postgres.Schema())
		return
	}

	cfg, err := config.New(*configDir)
	if err == nil {
		err = cfg.Load()
	}
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if !cfg.Settings.Database.Configured() {
		logger.Error("no database configured", "config", cfg.SettingsPath())
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, cfg.Settings.Database.DSN())
	if err != nil {
		logger.Error("unable to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := postgres.Migrate(ctx, pool); err != nil {
		logger.Error("migration failed", "error", err)
		os.Exit(1)
	}
	logger.Info("migration completed successfully")
}
