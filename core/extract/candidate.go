package extract

import (
	"strings"
)

const fence = "```"

type fencedBlock struct {
	lang   string
	body   string
	closed bool
}

// fencedBlocks splits s into markdown fenced blocks. The language tag is the
// run of tag characters right after the opening fence; the body starts after
// the rest of that line. A final fence without a closer (typically a response
// cut off by the token limit) yields an unclosed block. See [closingFence] for
// which fences close a block.
func fencedBlocks(s string) []fencedBlock {
	var blocks []fencedBlock
	for {
		open := strings.Index(s, fence)
		if open < 0 {
			return blocks
		}
		rest := s[open+len(fence):]

		n := 0
		for n < len(rest) && isTagByte(rest[n]) {
			n++
		}
		lang := rest[:n]
		rest = strings.TrimLeft(rest[n:], " \t")
		rest = strings.TrimPrefix(rest, "\r")
		rest = strings.TrimPrefix(rest, "\n")

		end := closingFence(rest)
		if end < 0 {
			return append(blocks, fencedBlock{lang: lang, body: strings.TrimSpace(rest)})
		}
		blocks = append(blocks, fencedBlock{lang: lang, body: strings.TrimSpace(rest[:end]), closed: true})
		s = rest[end+len(fence):]
	}
}

// closingFence returns the index of the first fence in s that starts a line
// or ends one, ignoring surrounding spaces and tabs. A fence quoted inside a
// JSON string is neither, since JSON strings cannot span lines.
func closingFence(s string) int {
	for from := 0; ; {
		i := strings.Index(s[from:], fence)
		if i < 0 {
			return -1
		}
		i += from
		if atLineStart(s, i) || atLineEnd(s, i+len(fence)) {
			return i
		}
		from = i + len(fence)
	}
}

func atLineStart(s string, i int) bool {
	line := s[:i]
	if j := strings.LastIndexByte(line, '\n'); j >= 0 {
		line = line[j+1:]
	}
	return strings.Trim(line, " \t") == ""
}

func atLineEnd(s string, i int) bool {
	rest := strings.TrimLeft(s[i:], " \t\r")
	return rest == "" || rest[0] == '\n'
}

func isTagByte(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z' || b >= '0' && b <= '9' ||
		b == '_' || b == '-' || b == '+' || b == '.'
}

func isJSONTag(lang string) bool {
	return lang == "" || strings.HasPrefix(strings.ToLower(lang), "json")
}

// fencedCandidate picks the first block whose body opens like a JSON
// document, falling back to the first block tagged json or left untagged.
func fencedCandidate(raw string) (string, bool) {
	blocks := fencedBlocks(raw)
	for _, b := range blocks {
		if opensDocument(b.body) {
			return b.body, true
		}
	}
	for _, b := range blocks {
		if isJSONTag(b.lang) && b.body != "" {
			return b.body, true
		}
	}
	return "", false
}

// stripFence removes one fence layer from text that is entirely fenced,
// as models sometimes fence the payload inside the sentinel markers too.
func stripFence(s string) string {
	if !strings.HasPrefix(s, fence) {
		return s
	}
	if blocks := fencedBlocks(s); len(blocks) > 0 {
		return blocks[0].body
	}
	return s
}

// bareCandidate treats the whole trimmed response as the candidate. Prose
// around a JSON object is dropped by taking the first balanced top-level
// object; with no balanced object, everything from the first '{' is used so
// the repair pass can close a truncated one. Text opening with a bracketed
// word such as "[Note]" is prose, not an array.
func bareCandidate(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" || opensDocument(s) {
		return s
	}
	if obj := firstObject(s); obj != "" {
		return obj
	}
	if i := strings.IndexByte(s, '{'); i >= 0 {
		return s[i:]
	}
	return s
}

// opensArray reports whether the first element after '[' starts like a
// JSON value (or a single-quoted string the repair pass understands).
func opensArray(s string) bool {
	rest := strings.TrimLeft(s[1:], " \t\r\n")
	if rest == "" {
		return true
	}
	switch c := rest[0]; {
	case strings.IndexByte(`{["'-]`, c) >= 0, c >= '0' && c <= '9':
		return true
	}
	for _, lit := range []string{"true", "false", "null"} {
		if strings.HasPrefix(rest, lit) {
			return true
		}
	}
	return false
}

func opensDocument(s string) bool {
	return strings.HasPrefix(s, "{") || strings.HasPrefix(s, "[") && opensArray(s)
}

// firstObject returns the first complete top-level {...} in s, skipping
// braces inside string literals. Byte iteration is safe because the
// delimiters are ASCII and never occur inside a UTF-8 multi-byte sequence.
func firstObject(s string) string {
	depth, start := 0, -1
	inString, escaped := false, false

	for i := 0; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}

		switch c {
		case '"':
			// Quotes only delimit strings once an object has opened; stray
			// quotes in the surrounding prose are ignored.
			if depth > 0 {
				inString = true
			}
		case '{':
			if depth == 0 {
				start = i
			}
			depth++
		case '}':
			if depth > 0 {
				depth--
				if depth == 0 {
					return s[start : i+1]
				}
			}
		}
	}
	return ""
}
