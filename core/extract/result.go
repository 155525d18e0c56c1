package extract

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Style names the delimiter convention that supplied the JSON candidate.
type Style string

const (
	StyleExplicitMarkers Style = "explicit_markers"
	StyleFencedCodeBlock Style = "fenced_code_block"
	StyleBareJSON        Style = "bare_json"
	StyleNone            Style = "none"
)

// ErrorKind classifies a failed extraction step.
type ErrorKind string

const (
	// NoMarkerFound means a delimiter convention did not occur in the text.
	NoMarkerFound ErrorKind = "NoMarkerFound"
	// UnterminatedMarker means a start sentinel had no matching end sentinel.
	UnterminatedMarker ErrorKind = "UnterminatedMarker"
	// StrictParseFailure means the candidate is not standard JSON.
	StrictParseFailure ErrorKind = "StrictParseFailure"
	// LenientParseFailure means the candidate could not be parsed even after
	// repair. It is the only fatal kind.
	LenientParseFailure ErrorKind = "LenientParseFailure"
)

// Fatal reports whether an attempt of this kind fails the whole extraction.
func (k ErrorKind) Fatal() bool {
	return k == LenientParseFailure
}

// Attempt records one failed step of the extraction ladder.
type Attempt struct {
	Kind     ErrorKind `json:"kind"`
	Strategy Style     `json:"strategy"`
	Message  string    `json:"message"`
	// Offset is the byte offset reported by the JSON parser, when known.
	Offset  int64  `json:"offset,omitempty"`
	Preview string `json:"preview,omitempty"`
	Fatal   bool   `json:"fatal"`
}

func (a Attempt) String() string {
	if a.Offset > 0 {
		return fmt.Sprintf("%s (%s): %s at offset %d", a.Kind, a.Strategy, a.Message, a.Offset)
	}
	return fmt.Sprintf("%s (%s): %s", a.Kind, a.Strategy, a.Message)
}

// Result is the outcome of a single extraction. It is built fresh for every
// call and is never modified by the package afterwards.
type Result struct {
	MatchedStyle Style `json:"matched_marker_style"`
	// RawJSON is the candidate substring exactly as it was isolated.
	RawJSON string `json:"raw_json_text"`
	// RepairedJSON is the text produced by the lenient repair pass, set only
	// when that pass produced the value.
	RepairedJSON string `json:"repaired_json_text,omitempty"`
	// Value holds the decoded JSON: map[string]any, []any, string, float64,
	// bool, or nil for a JSON null. Check Present to tell null from absent.
	Value   any       `json:"-"`
	Present bool      `json:"-"`
	Lenient bool      `json:"lenient"`
	Errors  []Attempt `json:"errors"`
}

// OK reports whether a value was parsed.
func (r Result) OK() bool {
	return r.Present
}

// Failed reports whether the extraction ended without a value.
func (r Result) Failed() bool {
	return !r.Present
}

// HasKind reports whether any attempt of the given kind was recorded.
func (r Result) HasKind(kind ErrorKind) bool {
	for _, a := range r.Errors {
		if a.Kind == kind {
			return true
		}
	}
	return false
}

// Count returns the number of attempts of the given kind.
func (r Result) Count(kind ErrorKind) int {
	n := 0
	for _, a := range r.Errors {
		if a.Kind == kind {
			n++
		}
	}
	return n
}

// Err returns nil for a successful extraction and an *ExtractionError
// otherwise.
func (r Result) Err() error {
	if r.Present {
		return nil
	}
	return &ExtractionError{Style: r.MatchedStyle, Attempts: r.Errors}
}

// MarshalJSON emits parsed_value only when a value is present, so that a
// parsed JSON null and a failed extraction stay distinguishable.
func (r Result) MarshalJSON() ([]byte, error) {
	type plain Result
	out := struct {
		plain
		Value *json.RawMessage `json:"parsed_value,omitempty"`
	}{plain: plain(r)}

	if out.Errors == nil {
		out.Errors = []Attempt{}
	}
	if r.Present {
		encoded, err := json.Marshal(r.Value)
		if err != nil {
			return nil, fmt.Errorf("encode parsed value: %w", err)
		}
		raw := json.RawMessage(encoded)
		out.Value = &raw
	}
	return json.Marshal(out)
}

// ErrExtractionFailed is matched by every *ExtractionError via errors.Is.
var ErrExtractionFailed = errors.New("no JSON payload could be extracted")

// ExtractionError carries the attempts of a failed extraction.
type ExtractionError struct {
	Style    Style
	Attempts []Attempt
}

func (e *ExtractionError) Error() string {
	var b strings.Builder
	b.WriteString("extract: ")
	b.WriteString(ErrExtractionFailed.Error())
	for _, a := range e.Attempts {
		if a.Fatal {
			b.WriteString(": ")
			b.WriteString(a.String())
			break
		}
	}
	return b.String()
}

func (e *ExtractionError) Is(target error) bool {
	return target == ErrExtractionFailed
}
