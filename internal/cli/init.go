// Package cli holds the startup steps shared by cmd/chitieu and
// cmd/chitieu-worker.
package cli

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"chitieu/internal/config"
	applog "chitieu/internal/log"
	"chitieu/internal/storage"
)

// LoadConfig reads .env (when present) and the process environment, then
// builds the logger for component and installs it as the slog default.
// The logger is returned even when validate rejects the config.
func LoadConfig(component string, validate func(*config.Config) error) (*config.Config, *applog.Logger, error) {
	// Missing .env is normal outside local development
	_ = godotenv.Load()

	cfg := config.Load()
	logger := SetupLogger(cfg, component)

	if err := validate(cfg); err != nil {
		return nil, logger, fmt.Errorf("validate configuration: %w", err)
	}
	return cfg, logger, nil
}

// SetupLogger builds a logger honoring LOG_FORMAT and the configured level.
func SetupLogger(cfg *config.Config, component string) *applog.Logger {
	logCfg := applog.ConfigFromEnv()
	logCfg.Level = applog.ParseLevel(cfg.LogLevel)
	logCfg.Component = component
	logger := applog.New(logCfg)
	applog.SetDefault(logger)
	return logger
}

// InitSQLite opens the repository and checks the connection.
func InitSQLite(ctx context.Context, logger *applog.Logger, dbPath string) (*storage.SQLiteRepository, error) {
	repo, err := storage.NewSQLiteRepository(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite repository %s: %w", dbPath, err)
	}
	if err := repo.Ping(ctx); err != nil {
		repo.Close()
		return nil, fmt.Errorf("ping sqlite repository %s: %w", dbPath, err)
	}
	logger.Info("SQLite repository ready", "path", dbPath)
	return repo, nil
}

// ShutdownContext is cancelled on SIGINT or SIGTERM.
func ShutdownContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}
