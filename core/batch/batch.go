// Package batch runs extraction over many responses concurrently.
package batch

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/discernus/discernus-sub017/core/extract"
	"github.com/discernus/discernus-sub017/internal/utils"
)

// DefaultLimit bounds the number of concurrent extractions when Run is given
// a non-positive limit.
const DefaultLimit = 4

// Input is one raw model response, identified by ID (a file name, a
// document key, ...).
type Input struct {
	ID   string
	Text string
}

// Outcome pairs an input ID with its extraction result.
type Outcome struct {
	ID       string         `json:"id"`
	Result   extract.Result `json:"result"`
	Duration time.Duration  `json:"duration_ns"`
}

// Run extracts every input with ex, at most limit at a time. Outcomes are
// returned in input order. If ctx is cancelled, inputs not yet started are
// skipped and ctx.Err() is returned together with the outcomes gathered so
// far; skipped entries keep only their ID.
func Run(ctx context.Context, ex *extract.Extractor, inputs []Input, limit int) ([]Outcome, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	outcomes := make([]Outcome, len(inputs))
	for i, in := range inputs {
		outcomes[i].ID = in.ID
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, in := range inputs {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			timer := utils.NewTimer()
			res := ex.Extract(in.Text)
			outcomes[i] = Outcome{ID: in.ID, Result: res, Duration: timer.Stop()}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return outcomes, err
	}
	return outcomes, ctx.Err()
}

// Summary aggregates a batch.
type Summary struct {
	Total     int                   `json:"total"`
	Succeeded int                   `json:"succeeded"`
	Failed    int                   `json:"failed"`
	Lenient   int                   `json:"lenient"`
	ByStyle   map[extract.Style]int `json:"by_style"`
	Elapsed   time.Duration         `json:"elapsed_ns"`
}

// Summarize counts successes, failures, lenient recoveries and the style
// that supplied each candidate.
func Summarize(outcomes []Outcome) Summary {
	s := Summary{Total: len(outcomes), ByStyle: make(map[extract.Style]int)}
	for _, o := range outcomes {
		if o.Result.OK() {
			s.Succeeded++
		} else {
			s.Failed++
		}
		if o.Result.Lenient {
			s.Lenient++
		}
		style := o.Result.MatchedStyle
		if style == "" {
			style = extract.StyleNone
		}
		s.ByStyle[style]++
		s.Elapsed += o.Duration
	}
	return s
}
