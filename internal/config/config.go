// Package config loads recalc settings from the environment.
package config

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/caarlos0/env/v11"
)

// Config holds process-wide settings. CLI flags override these values.
type Config struct {
	// JournalDSN is the SQLite DSN journal entries are appended to.
	JournalDSN string `env:"RECALC_JOURNAL_DSN" envDefault:":memory:"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `env:"RECALC_LOG_LEVEL" envDefault:"info"`

	// HistoryLimit bounds retained snapshots; 0 means unlimited.
	HistoryLimit int `env:"RECALC_HISTORY_LIMIT" envDefault:"0"`

	// Format is the CLI output format, text or json.
	Format string `env:"RECALC_FORMAT" envDefault:"text"`
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Load parses Config from the environment and validates it.
func Load() (Config, error) {
	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	if c.JournalDSN == "" {
		return fmt.Errorf("RECALC_JOURNAL_DSN must not be empty")
	}
	if c.HistoryLimit < 0 {
		return fmt.Errorf("RECALC_HISTORY_LIMIT must be non-negative, got %d", c.HistoryLimit)
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	switch c.Format {
	case "text", "json":
	default:
		return fmt.Errorf("RECALC_FORMAT must be text or json, got %q", c.Format)
	}
	return nil
}

// Level parses LogLevel.
func (c Config) Level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(c.LogLevel))); err != nil {
		return slog.LevelInfo, fmt.Errorf("RECALC_LOG_LEVEL: %w", err)
	}
	return level, nil
}

// NewLogger returns a text logger on w at the configured level, or at debug
// when verbose is set.
func (c Config) NewLogger(w io.Writer, verbose bool) *slog.Logger {
	level, err := c.Level()
	if err != nil {
		level = slog.LevelInfo
	}
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
