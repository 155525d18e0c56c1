package analysis

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"sort"

	"github.com/discernus/discernus-sub017/core/extract"
	"github.com/discernus/discernus-sub017/core/parse"
)

var (
	// ErrNoScores is returned by Validate when no dimension was scored.
	ErrNoScores = errors.New("analysis has no scores")
	// ErrOutOfRange is returned by Validate for values outside [0, 1].
	ErrOutOfRange = errors.New("value out of range [0, 1]")
)

// Score is the assessment of a single dimension.
type Score struct {
	Raw        float64  `json:"raw_score"`
	Salience   *float64 `json:"salience,omitempty"`
	Confidence *float64 `json:"confidence,omitempty"`
}

// UnmarshalJSON accepts a bare number or an object. "score" and "value"
// are read as aliases of "raw_score".
func (s *Score) UnmarshalJSON(data []byte) error {
	var raw float64
	if err := json.Unmarshal(data, &raw); err == nil {
		*s = Score{Raw: raw}
		return nil
	}

	var obj struct {
		Raw        *float64 `json:"raw_score"`
		Score      *float64 `json:"score"`
		Value      *float64 `json:"value"`
		Salience   *float64 `json:"salience"`
		Confidence *float64 `json:"confidence"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("score must be a number or an object: %w", err)
	}

	var picked *float64
	for _, candidate := range []*float64{obj.Raw, obj.Score, obj.Value} {
		if candidate != nil {
			picked = candidate
			break
		}
	}
	if picked == nil {
		return errors.New("score object has no raw_score")
	}
	*s = Score{Raw: *picked, Salience: obj.Salience, Confidence: obj.Confidence}
	return nil
}

// Evidence is a quotation supporting a dimension score.
type Evidence struct {
	Dimension  string   `json:"dimension"`
	Quote      string   `json:"quote_text"`
	Confidence *float64 `json:"confidence,omitempty"`
}

// Analysis is one scored document.
type Analysis struct {
	Scores   map[string]Score `json:"scores"`
	Evidence []Evidence       `json:"evidence,omitempty"`
	Metadata map[string]any   `json:"metadata,omitempty"`
}

// UnmarshalJSON reads scores from "scores" or, failing that, from the v6
// "dimensional_scores" key.
func (a *Analysis) UnmarshalJSON(data []byte) error {
	var doc struct {
		Scores            map[string]Score `json:"scores"`
		DimensionalScores map[string]Score `json:"dimensional_scores"`
		Evidence          []Evidence       `json:"evidence"`
		Metadata          map[string]any   `json:"metadata"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}

	scores := doc.Scores
	if len(scores) == 0 {
		scores = doc.DimensionalScores
	}
	*a = Analysis{Scores: scores, Evidence: doc.Evidence, Metadata: doc.Metadata}
	return nil
}

// Dimensions returns the scored dimension names in sorted order.
func (a *Analysis) Dimensions() []string {
	names := make([]string, 0, len(a.Scores))
	for name := range a.Scores {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Validate checks that at least one dimension is scored and that every
// score, salience and confidence lies in [0, 1]. All violations are joined
// into the returned error.
func (a *Analysis) Validate() error {
	if len(a.Scores) == 0 {
		return ErrNoScores
	}

	var errs []error
	check := func(what string, v *float64) {
		if v != nil && (*v < 0 || *v > 1) {
			errs = append(errs, fmt.Errorf("%s = %v: %w", what, *v, ErrOutOfRange))
		}
	}
	for _, name := range a.Dimensions() {
		score := a.Scores[name]
		check(name+".raw_score", &score.Raw)
		check(name+".salience", score.Salience)
		check(name+".confidence", score.Confidence)
	}
	for i, ev := range a.Evidence {
		check(fmt.Sprintf("evidence[%d].confidence", i), ev.Confidence)
	}
	return errors.Join(errs...)
}

// EvidenceFor returns the evidence entries for one dimension.
func (a *Analysis) EvidenceFor(dimension string) []Evidence {
	var out []Evidence
	for _, ev := range a.Evidence {
		if ev.Dimension == dimension {
			out = append(out, ev)
		}
	}
	return slices.Clip(out)
}

// Decode maps a successful extraction onto the scores schema.
func Decode(res extract.Result) (*Analysis, error) {
	a, err := parse.ParseResultAs[Analysis](res)
	if err != nil {
		return nil, fmt.Errorf("decode analysis: %w", err)
	}
	return &a, nil
}

// Parse extracts raw with ex and decodes the analysis. The extraction
// result is returned even when decoding fails.
func Parse(ex *extract.Extractor, raw string) (*Analysis, extract.Result, error) {
	res := ex.Extract(raw)
	a, err := Decode(res)
	return a, res, err
}
