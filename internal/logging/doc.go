// Package logging builds the slog loggers used by the command-line tools.
//
// Two formats are available: [FormatCompact], one line per record with the
// attributes JSON-encoded after an arrow, and [FormatJSON], one JSON object
// per record for log aggregation. Level and format come from options or
// from DISCERNUS_LOG_LEVEL / DISCERNUS_LOG_FORMAT (falling back to
// LOG_LEVEL / LOG_FORMAT).
package logging
