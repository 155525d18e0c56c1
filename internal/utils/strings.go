package utils

import (
	"encoding/json"
	"fmt"
	"unicode/utf8"
)

const (
	// DefaultMaxStringLength is the default maximum length for truncated strings
	DefaultMaxStringLength = 500

	// DefaultPreviewSize is the number of characters kept on each side of a preview.
	DefaultPreviewSize = 200

	previewGap = " … "
)

// JSONToString serialises object to JSON. When indent is true the output is
// pretty-printed with two-space indentation. A marshalling failure yields a
// JSON-formatted error string, so the result is always safe to log.
func JSONToString(object any, indent ...bool) string {
	var encoded []byte
	var err error
	if len(indent) > 0 && indent[0] {
		encoded, err = json.MarshalIndent(object, "", "  ")
	} else {
		encoded, err = json.Marshal(object)
	}
	if err != nil {
		return "{\"error\": \"failed to marshal to JSON: " + err.Error() + "\"}"
	}
	return string(encoded)
}

// TruncateString shortens s to at most maxLen bytes, appending a suffix with
// the original length. A non-positive maxLen falls back to
// [DefaultMaxStringLength]. The cut never splits a UTF-8 sequence.
func TruncateString(s string, maxLen int) string {
	if maxLen <= 0 {
		maxLen = DefaultMaxStringLength
	}
	if len(s) <= maxLen {
		return s
	}
	cut := maxLen
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return fmt.Sprintf("%s... (truncated, total: %d chars)", s[:cut], len(s))
}

// Preview returns s unchanged when it holds at most 2*n runes. Longer
// strings keep the first and last n runes joined by an ellipsis, which is
// enough to see both how a payload starts and where it was cut off.
// A non-positive n falls back to [DefaultPreviewSize].
func Preview(s string, n int) string {
	if n <= 0 {
		n = DefaultPreviewSize
	}
	if utf8.RuneCountInString(s) <= 2*n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n]) + previewGap + string(runes[len(runes)-n:])
}
