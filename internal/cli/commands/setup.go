package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/dailyflow/dailyflow/internal/cli/config"
	"github.com/dailyflow/dailyflow/internal/cli/output"
	"github.com/dailyflow/dailyflow/internal/state"
	"github.com/spf13/cobra"
)

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Store    *state.SQLiteStore
	Renderer *output.Renderer
}

// NewCommandContext creates a CommandContext with an open state store and renderer.
// Returns the context and a cleanup function that must be called (typically via defer).
func NewCommandContext(cmd *cobra.Command) (*CommandContext, func(), error) {
	cmdCtx := NewCommandContextWithoutStore(cmd)

	store, err := openStore(cmd.Context(), cmdCtx.Cfg, cmdCtx.Logger)
	if err != nil {
		return nil, nil, err
	}
	cmdCtx.Store = store

	cleanup := func() {
		_ = store.Close()
	}
	return cmdCtx, cleanup, nil
}

// NewCommandContextWithoutStore creates a CommandContext without a state store.
// Useful for commands that don't need database access.
func NewCommandContextWithoutStore(cmd *cobra.Command) *CommandContext {
	cfg := getConfig()
	logger := config.GetLogger(cmd.Context())
	mode := output.Mode(cfg.OutputFormat)
	r := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), mode)

	return &CommandContext{
		Cfg:      cfg,
		Logger:   logger,
		Renderer: r,
	}
}

// Helper functions shared across commands

// getConfig returns the current configuration.
// It uses config.GetCurrentConfig() if available, otherwise falls back to environment variables.
func getConfig() *config.Config {
	if cfg := config.GetCurrentConfig(); cfg != nil {
		return cfg
	}

	// Fallback: read from environment with defaults
	return &config.Config{
		StatePath:    getEnvOrDefault("DAILYFLOW_STATE_PATH", config.DefaultStateFile),
		DataDir:      getEnvOrDefault("DAILYFLOW_DATA_DIR", config.DefaultDataDir),
		AutoMigrate:  os.Getenv("DAILYFLOW_AUTO_MIGRATE") != "false",
		LogLevel:     getEnvOrDefault("DAILYFLOW_LOG_LEVEL", config.DefaultLogLevel),
		LogFormat:    getEnvOrDefault("DAILYFLOW_LOG_FORMAT", config.DefaultLogFormat),
		Verbose:      os.Getenv("DAILYFLOW_VERBOSE") == "true",
		OutputFormat: os.Getenv("DAILYFLOW_OUTPUT"),
		Ingest: config.IngestConfig{
			Mode:          getEnvOrDefault("DAILYFLOW_INGEST_MODE", config.DefaultMode),
			BadAction:     getEnvOrDefault("DAILYFLOW_INGEST_BAD_ACTION", config.DefaultBadAction),
			QuarantineDir: os.Getenv("DAILYFLOW_INGEST_QUARANTINE_DIR"),
		},
	}
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

// openStore opens the state database, creating its directory and applying
// migrations when auto_migrate is set.
func openStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*state.SQLiteStore, error) {
	// Ensure state directory exists
	stateDir := filepath.Dir(cfg.StatePath)
	if stateDir != "." && stateDir != "" {
		if err := os.MkdirAll(stateDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create state directory: %w", err)
		}
	}

	store := state.NewSQLiteStore(logger)
	if err := store.Open(cfg.StatePath); err != nil {
		return nil, fmt.Errorf("failed to open state database: %w", err)
	}

	if cfg.AutoMigrate {
		if err := store.Migrate(ctx); err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("failed to migrate state database: %w", err)
		}
	}
	return store, nil
}
