package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input   string
		want    slog.Level
		wantErr bool
	}{
		{"DEBUG", slog.LevelDebug, false},
		{"debug", slog.LevelDebug, false},
		{"", slog.LevelInfo, false},
		{" info ", slog.LevelInfo, false},
		{"WARNING", slog.LevelWarn, false},
		{"warn", slog.LevelWarn, false},
		{"Error", slog.LevelError, false},
		{"verbose", slog.LevelInfo, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseLevel(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseLevel(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestLevelString(t *testing.T) {
	tests := map[slog.Level]string{
		slog.LevelDebug: "DEBUG",
		slog.LevelInfo:  "INFO",
		slog.LevelWarn:  "WARN",
		slog.LevelError: "ERROR",
		slog.Level(12):  "ERROR",
	}
	for level, want := range tests {
		if got := LevelString(level); got != want {
			t.Errorf("LevelString(%v) = %q, want %q", level, got, want)
		}
	}
}

func TestFromEnv(t *testing.T) {
	env := func(values map[string]string) func(string) string {
		return func(key string) string { return values[key] }
	}

	if got := LevelFromEnv(env(map[string]string{"LOG_LEVEL": "debug"})); got != slog.LevelDebug {
		t.Errorf("LevelFromEnv(LOG_LEVEL) = %v, want DEBUG", got)
	}
	if got := LevelFromEnv(env(map[string]string{"DISCERNUS_LOG_LEVEL": "error", "LOG_LEVEL": "debug"})); got != slog.LevelError {
		t.Errorf("LevelFromEnv() = %v, want DISCERNUS_LOG_LEVEL to win", got)
	}
	if got := LevelFromEnv(env(nil)); got != slog.LevelInfo {
		t.Errorf("LevelFromEnv(empty) = %v, want INFO", got)
	}
	if got := FormatFromEnv(env(map[string]string{"LOG_FORMAT": "JSON"})); got != FormatJSON {
		t.Errorf("FormatFromEnv() = %q, want json", got)
	}
	if got := FormatFromEnv(env(nil)); got != FormatCompact {
		t.Errorf("FormatFromEnv(empty) = %q, want compact", got)
	}
}

func TestNew_Compact(t *testing.T) {
	var buf bytes.Buffer
	logger := New(WithOutput(&buf), WithFormat(FormatCompact), WithLevel(slog.LevelInfo))

	logger.Debug("hidden")
	logger.With("source", "a.txt").WithGroup("attempt").Warn("extraction failed", "kind", "LenientParseFailure")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("debug record written at INFO level: %q", out)
	}
	if !strings.Contains(out, " WARN extraction failed → ") {
		t.Errorf("compact line = %q", out)
	}
	if !strings.Contains(out, `"attempt.kind":"LenientParseFailure"`) || !strings.Contains(out, `"source":"a.txt"`) {
		t.Errorf("compact attributes = %q", out)
	}
}

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger := New(WithOutput(&buf), WithFormat(FormatJSON), WithLevel(slog.LevelDebug))

	logger.Debug("extracted", "style", "bare_json", "lenient", true)

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("output is not JSON: %v (%q)", err, buf.String())
	}
	if record["level"] != "DEBUG" || record["msg"] != "extracted" || record["style"] != "bare_json" || record["lenient"] != true {
		t.Errorf("record = %v", record)
	}
}
