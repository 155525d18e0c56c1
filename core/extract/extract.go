package extract

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/kaptinlin/jsonrepair"

	"github.com/discernus/discernus-sub017/internal/utils"
)

// Extractor isolates and parses JSON payloads from raw model output. It is
// immutable once built and safe for concurrent use.
type Extractor struct {
	markers     []Markers
	patterns    []*regexp.Regexp
	previewSize int
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithMarkers sets the sentinel conventions searched by the explicit marker
// strategy. Conventions with an empty name are ignored; if none remain,
// [DefaultMarkers] is used.
func WithMarkers(markers ...Markers) Option {
	return func(e *Extractor) {
		e.markers = e.markers[:0]
		for _, m := range markers {
			if strings.TrimSpace(m.Name) != "" {
				e.markers = append(e.markers, m)
			}
		}
	}
}

// WithPreviewSize sets how many characters of a failed candidate's head and
// tail are kept in attempt previews. Non-positive values use the default.
func WithPreviewSize(n int) Option {
	return func(e *Extractor) {
		e.previewSize = n
	}
}

// New builds an Extractor. Without options it searches for
// [DefaultMarkers] and keeps 200-character previews.
func New(opts ...Option) *Extractor {
	e := &Extractor{
		markers:     []Markers{DefaultMarkers},
		previewSize: utils.DefaultPreviewSize,
	}
	for _, opt := range opts {
		opt(e)
	}
	if len(e.markers) == 0 {
		e.markers = []Markers{DefaultMarkers}
	}
	if e.previewSize <= 0 {
		e.previewSize = utils.DefaultPreviewSize
	}
	e.patterns = make([]*regexp.Regexp, len(e.markers))
	for i, m := range e.markers {
		e.patterns[i] = m.pattern()
	}
	return e
}

// Markers returns a copy of the conventions this extractor searches for.
func (e *Extractor) Markers() []Markers {
	return append([]Markers(nil), e.markers...)
}

var defaultExtractor = New()

// Extract runs the default extractor over raw.
func Extract(raw string) Result {
	return defaultExtractor.Extract(raw)
}

// Extract locates the JSON payload in raw and parses it. It never panics and
// never returns a partial Result: on failure, Value is absent and Errors
// lists every rung of the ladder that was tried.
func (e *Extractor) Extract(raw string) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			res.Value, res.Present = nil, false
			if res.MatchedStyle == "" {
				res.MatchedStyle = StyleNone
			}
			res.Errors = append(res.Errors, Attempt{
				Kind:     LenientParseFailure,
				Strategy: res.MatchedStyle,
				Message:  fmt.Sprintf("internal error: %v", r),
				Preview:  utils.Preview(res.RawJSON, e.previewSize),
				Fatal:    true,
			})
		}
	}()

	res.Errors = []Attempt{}
	res.MatchedStyle, res.RawJSON = e.locate(raw, &res.Errors)
	e.parse(&res)
	return res
}

// locate runs the candidate strategies in order and returns the first
// candidate found.
func (e *Extractor) locate(raw string, attempts *[]Attempt) (Style, string) {
	content, found, sawStart := markedBlock(raw, e.patterns)
	switch {
	case found:
		return StyleExplicitMarkers, stripFence(strings.TrimSpace(content))
	case sawStart:
		*attempts = append(*attempts, Attempt{
			Kind:     UnterminatedMarker,
			Strategy: StyleExplicitMarkers,
			Message:  "unterminated marker block",
			Preview:  utils.Preview(raw, e.previewSize),
		})
	default:
		*attempts = append(*attempts, Attempt{
			Kind:     NoMarkerFound,
			Strategy: StyleExplicitMarkers,
			Message:  "no sentinel marker for " + e.describeMarkers(),
		})
	}

	if block, ok := fencedCandidate(raw); ok {
		return StyleFencedCodeBlock, block
	}
	*attempts = append(*attempts, Attempt{
		Kind:     NoMarkerFound,
		Strategy: StyleFencedCodeBlock,
		Message:  "no JSON fenced code block",
	})

	// The response was framed with a start sentinel that never closed; the
	// bare text would include the sentinel itself.
	if sawStart {
		return StyleNone, ""
	}
	if candidate := bareCandidate(raw); candidate != "" {
		return StyleBareJSON, candidate
	}
	return StyleNone, ""
}

// parse fills Value from RawJSON, strictly first and then leniently.
func (e *Extractor) parse(res *Result) {
	candidate := res.RawJSON
	preview := utils.Preview(candidate, e.previewSize)

	if candidate == "" {
		res.Errors = append(res.Errors,
			Attempt{Kind: StrictParseFailure, Strategy: res.MatchedStyle, Message: "empty candidate"},
			Attempt{Kind: LenientParseFailure, Strategy: res.MatchedStyle, Message: "empty candidate", Fatal: true},
		)
		return
	}

	value, err := decodeStrict(candidate)
	if err == nil {
		res.Value, res.Present = value, true
		return
	}
	res.Errors = append(res.Errors, Attempt{
		Kind:     StrictParseFailure,
		Strategy: res.MatchedStyle,
		Message:  err.Error(),
		Offset:   syntaxOffset(err),
		Preview:  preview,
	})

	value, repaired, err := decodeLenient(candidate)
	if err != nil {
		res.Errors = append(res.Errors, Attempt{
			Kind:     LenientParseFailure,
			Strategy: res.MatchedStyle,
			Message:  err.Error(),
			Offset:   syntaxOffset(err),
			Preview:  preview,
			Fatal:    true,
		})
		return
	}
	res.Value, res.Present = value, true
	res.Lenient = true
	res.RepairedJSON = repaired
}

// trailingDataError reports content after the first complete JSON value.
type trailingDataError struct {
	offset int64
}

func (e *trailingDataError) Error() string {
	return "invalid character after top-level value"
}

// decodeStrict parses exactly one standard JSON value.
func decodeStrict(s string) (any, error) {
	dec := json.NewDecoder(strings.NewReader(s))
	var v any
	if err := dec.Decode(&v); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.ErrUnexpectedEOF
		}
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, &trailingDataError{offset: dec.InputOffset()}
	}
	return v, nil
}

// decodeLenient repairs near-miss JSON and parses the result. Only object
// and array documents are repaired, since the repair would otherwise turn
// arbitrary prose into a JSON string.
func decodeLenient(s string) (any, string, error) {
	if !opensDocument(s) {
		return nil, "", errors.New("candidate does not open a JSON object or array")
	}
	repaired, err := jsonrepair.JSONRepair(s)
	if err != nil {
		return nil, "", fmt.Errorf("repair failed: %w", err)
	}
	v, err := decodeStrict(repaired)
	if err != nil {
		return nil, "", fmt.Errorf("repaired text is still invalid: %w", err)
	}
	return v, repaired, nil
}

func syntaxOffset(err error) int64 {
	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		return syntaxErr.Offset
	}
	var trailing *trailingDataError
	if errors.As(err, &trailing) {
		return trailing.offset
	}
	return 0
}

func (e *Extractor) describeMarkers() string {
	names := make([]string, len(e.markers))
	for i, m := range e.markers {
		names[i] = m.String()
	}
	return strings.Join(names, ", ")
}
