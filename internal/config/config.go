// Package config resolves runtime settings from the environment and an
// optional .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/discernus/discernus-sub017/internal/logging"
	"github.com/discernus/discernus-sub017/internal/utils"
)

const (
	// DefaultConcurrency bounds batch extraction when DISCERNUS_CONCURRENCY is unset.
	DefaultConcurrency = 4
	// DefaultEnvFile is read by Load when present.
	DefaultEnvFile = ".env"
)

// Config holds the resolved settings.
type Config struct {
	LogLevel    slog.Level
	LogFormat   logging.Format
	MarkersFile string
	AuditDB     string
	Concurrency int
	PreviewSize int
}

// Default returns the settings used when no variable is set.
func Default() Config {
	return Config{
		LogLevel:    slog.LevelInfo,
		LogFormat:   logging.FormatCompact,
		Concurrency: DefaultConcurrency,
		PreviewSize: utils.DefaultPreviewSize,
	}
}

// Load reads .env from the working directory when it exists, without
// overriding variables already set, then resolves the process environment.
func Load() (Config, error) {
	if err := godotenv.Load(DefaultEnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load %s: %w", DefaultEnvFile, err)
	}
	return FromEnv(os.Getenv)
}

// FromEnv resolves settings through getenv.
func FromEnv(getenv func(string) string) (Config, error) {
	cfg := Default()

	level := getenv("DISCERNUS_LOG_LEVEL")
	if level == "" {
		level = getenv("LOG_LEVEL")
	}
	parsed, err := logging.ParseLevel(level)
	if err != nil {
		return Config{}, fmt.Errorf("log level: %w", err)
	}
	cfg.LogLevel = parsed
	cfg.LogFormat = logging.FormatFromEnv(getenv)

	cfg.MarkersFile = strings.TrimSpace(getenv("DISCERNUS_MARKERS_FILE"))
	cfg.AuditDB = strings.TrimSpace(getenv("DISCERNUS_AUDIT_DB"))

	if cfg.Concurrency, err = positiveInt(getenv, "DISCERNUS_CONCURRENCY", cfg.Concurrency); err != nil {
		return Config{}, err
	}
	if cfg.PreviewSize, err = positiveInt(getenv, "DISCERNUS_PREVIEW_SIZE", cfg.PreviewSize); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func positiveInt(getenv func(string) string, key string, fallback int) (int, error) {
	value := strings.TrimSpace(getenv(key))
	if value == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	if n <= 0 {
		return 0, fmt.Errorf("%s must be positive, got %d", key, n)
	}
	return n, nil
}
