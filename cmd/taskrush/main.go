// Package main is the entry point for the taskrush CLI.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"taskrush/internal/backend/googletasks"
	"taskrush/internal/backend/postgres"
	"taskrush/internal/cli"
	"taskrush/internal/commands"
	"taskrush/internal/config"
	"taskrush/internal/service"
)

func main() {
	// Create context that cancels on interrupt
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()

	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, newService)

	code := dispatcher.Run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	cancel()
	os.Exit(code)
}

// newService builds the backend named in the config.
func newService(ctx context.Context, cfg *config.Config) (service.Service, error) {
	switch cfg.Settings.Backend {
	case config.BackendGoogleTasks:
		if !cfg.HasOAuthClient() {
			return nil, fmt.Errorf("oauth_client.json not found in %s: %w", cfg.Dir, service.ErrNotAuthenticated)
		}
		if !cfg.HasToken() {
			return nil, service.ErrNotAuthenticated
		}
		return googletasks.New(ctx, cfg)
	default:
		if !cfg.Settings.Database.Configured() {
			return nil, fmt.Errorf("database not configured (set DATABASE_URL or database in %s)", cfg.SettingsPath())
		}
		return postgres.Open(ctx, cfg.Settings.Database.DSN(), cfg.SessionPath())
	}
}
