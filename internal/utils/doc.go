// Package utils holds small helpers shared across the module: JSON
// stringification for logs, bounded previews and truncation of large
// payloads, and an elapsed-time timer.
package utils
