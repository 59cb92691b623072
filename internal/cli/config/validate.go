package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dailyflow/dailyflow/internal/cli/output"
	"github.com/dailyflow/dailyflow/internal/ingest/cleaning"
)

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	var errs []error

	if c.StatePath == "" {
		errs = append(errs, fmt.Errorf("state_path is required"))
	}
	if _, err := cleaning.ParseMode(c.Ingest.Mode); err != nil {
		errs = append(errs, fmt.Errorf("ingest.mode: %w", err))
	}
	if _, err := cleaning.ParseBadAction(c.Ingest.BadAction); err != nil {
		errs = append(errs, fmt.Errorf("ingest.bad_action: %w", err))
	}
	if _, err := c.SlogLevel(); err != nil {
		errs = append(errs, err)
	}
	switch strings.ToLower(c.LogFormat) {
	case "", "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log_format: unknown format %q (expected text or json)", c.LogFormat))
	}
	if _, err := output.ParseMode(c.OutputFormat); err != nil {
		errs = append(errs, fmt.Errorf("output: %w", err))
	}

	return errors.Join(errs...)
}

// SlogLevel parses LogLevel. An empty level means info.
func (c *Config) SlogLevel() (slog.Level, error) {
	if c.LogLevel == "" {
		return slog.LevelInfo, nil
	}
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo, fmt.Errorf("log_level: unknown level %q (expected debug, info, warn or error)", c.LogLevel)
	}
	return lvl, nil
}
