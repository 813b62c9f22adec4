package main

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/josh-kwaku/cryptogate/internal/app"
	"github.com/josh-kwaku/cryptogate/internal/config"
	"github.com/josh-kwaku/cryptogate/internal/logging"
	"github.com/josh-kwaku/cryptogate/internal/metrics"
	"github.com/josh-kwaku/cryptogate/internal/repository"
)

func openDB(ctx context.Context, cfg *config.Config) (*sql.DB, error) {
	return repository.NewPostgresDB(ctx, cfg.DatabaseURL, repository.PoolConfig{
		MaxOpenConns:     4,
		MaxIdleConns:     1,
		ConnMaxLifetimeS: cfg.DBConnMaxLifetimeS,
		ConnMaxIdleTimeS: cfg.DBConnMaxIdleTimeS,
		PingAttempts:     3,
	})
}

// withApp loads config, connects and builds the application for one command.
func withApp(ctx context.Context, fn func(*app.App) error) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := logging.Init("gatewayctl", cfg.LogLevel, "development")

	db, err := openDB(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	a, err := app.New(ctx, cfg, db, metrics.Noop{}, logger.With("component", "monitor"))
	if err != nil {
		return fmt.Errorf("build app: %w", err)
	}
	return fn(a)
}
