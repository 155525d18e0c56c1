package logging

import (
	"io"
	"log/slog"
	"os"
)

// Option configures New.
type Option func(*options)

type options struct {
	format Format
	level  slog.Level
	output io.Writer
}

// WithFormat sets the output format.
func WithFormat(format Format) Option {
	return func(o *options) { o.format = format }
}

// WithLevel sets the minimum level.
func WithLevel(level slog.Level) Option {
	return func(o *options) { o.level = level }
}

// WithOutput sets the destination. The default is os.Stderr so that
// command output on stdout stays machine-readable.
func WithOutput(w io.Writer) Option {
	return func(o *options) { o.output = w }
}

// New builds a logger. Defaults come from the environment, see
// [LevelFromEnv] and [FormatFromEnv].
func New(opts ...Option) *slog.Logger {
	o := &options{
		format: FormatFromEnv(os.Getenv),
		level:  LevelFromEnv(os.Getenv),
		output: os.Stderr,
	}
	for _, opt := range opts {
		opt(o)
	}
	return slog.New(NewHandler(o.output, o.format, o.level))
}

// LevelFromEnv reads DISCERNUS_LOG_LEVEL, then LOG_LEVEL. Unknown values
// yield INFO.
func LevelFromEnv(getenv func(string) string) slog.Level {
	value := getenv("DISCERNUS_LOG_LEVEL")
	if value == "" {
		value = getenv("LOG_LEVEL")
	}
	level, _ := ParseLevel(value)
	return level
}

// FormatFromEnv reads DISCERNUS_LOG_FORMAT, then LOG_FORMAT.
func FormatFromEnv(getenv func(string) string) Format {
	value := getenv("DISCERNUS_LOG_FORMAT")
	if value == "" {
		value = getenv("LOG_FORMAT")
	}
	return ParseFormat(value)
}
