package logging

import (
	"fmt"
	"log/slog"
	"strings"
)

// Format is the log output format.
type Format string

const (
	// FormatCompact renders "2006-01-02 15:04:05  INFO message → {"key":"value"}".
	FormatCompact Format = "compact"
	// FormatJSON renders one JSON object per record.
	FormatJSON Format = "json"
)

// ParseFormat maps a format name to a Format. "text" is an alias of
// compact; unknown names fall back to compact.
func ParseFormat(s string) Format {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json":
		return FormatJSON
	default:
		return FormatCompact
	}
}

// ParseLevel parses DEBUG, INFO, WARN, WARNING or ERROR, case-insensitively.
func ParseLevel(level string) (slog.Level, error) {
	switch strings.ToUpper(strings.TrimSpace(level)) {
	case "DEBUG":
		return slog.LevelDebug, nil
	case "", "INFO":
		return slog.LevelInfo, nil
	case "WARN", "WARNING":
		return slog.LevelWarn, nil
	case "ERROR":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", level)
	}
}

// LevelString returns the upper-case name of level.
func LevelString(level slog.Level) string {
	switch {
	case level < slog.LevelInfo:
		return "DEBUG"
	case level < slog.LevelWarn:
		return "INFO"
	case level < slog.LevelError:
		return "WARN"
	default:
		return "ERROR"
	}
}
