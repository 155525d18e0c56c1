package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/discernus/discernus-sub017/core/analysis"
	"github.com/discernus/discernus-sub017/core/batch"
	"github.com/discernus/discernus-sub017/core/extract"
	"github.com/discernus/discernus-sub017/internal/audit"
	"github.com/discernus/discernus-sub017/internal/utils"
)

const (
	stdinName = "-"
	// logValueLimit caps free-text log attributes, in bytes.
	logValueLimit = utils.DefaultMaxStringLength
)

type extractOptions struct {
	pretty      bool
	scores      bool
	concurrency int
}

// report is the line printed for each input.
type report struct {
	Source        string             `json:"source"`
	Result        extract.Result     `json:"result"`
	Analysis      *analysis.Analysis `json:"analysis,omitempty"`
	AnalysisError string             `json:"analysis_error,omitempty"`
	AuditID       string             `json:"audit_id,omitempty"`
}

func (a *app) extractCmd() *cobra.Command {
	var opts extractOptions

	cmd := &cobra.Command{
		Use:   "extract [files...]",
		Short: "Extract the JSON payload from each response",
		Long: `Reads each file (or stdin when no file or "-" is given), extracts its
JSON payload and prints one JSON result per input. The command exits with
status 1 if any input yields no payload.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runExtract(cmd.Context(), args, opts)
		},
	}

	flags := cmd.Flags()
	flags.BoolVar(&opts.pretty, "pretty", false, "indent the JSON output")
	flags.BoolVar(&opts.scores, "scores", false, "decode and validate the analysis scores schema")
	flags.IntVar(&opts.concurrency, "concurrency", 0, "parallel extractions (default $DISCERNUS_CONCURRENCY or 4)")
	return cmd
}

func (a *app) runExtract(ctx context.Context, args []string, opts extractOptions) error {
	inputs, err := a.readInputs(args)
	if err != nil {
		return err
	}

	reg, err := a.registry()
	if err != nil {
		return err
	}
	ex := reg.Extractor(extract.WithPreviewSize(a.cfg.PreviewSize))

	limit := opts.concurrency
	if limit <= 0 {
		limit = a.cfg.Concurrency
	}

	var store *audit.Store
	if a.auditDB != "" {
		if store, err = audit.Open(ctx, a.auditDB); err != nil {
			return err
		}
		defer store.Close()
	}

	a.logger.Debug("extracting", "inputs", len(inputs), "concurrency", limit, "markers", len(reg.Markers()))
	outcomes, err := batch.Run(ctx, ex, inputs, limit)
	if err != nil {
		return fmt.Errorf("extraction interrupted: %w", err)
	}

	failed := false
	for _, o := range outcomes {
		r := report{Source: o.ID, Result: o.Result}
		if o.Result.Failed() {
			failed = true
			a.logFailure(o)
		} else if opts.scores {
			if err := a.decodeScores(o, &r); err != nil {
				failed = true
				r.AnalysisError = err.Error()
				a.logger.Warn("analysis rejected", "source", o.ID, "error", err)
			}
		}

		if store != nil {
			id, err := store.Record(ctx, o.ID, o.Result)
			if err != nil {
				return err
			}
			r.AuditID = id
		}
		if _, err := fmt.Fprintln(a.stdout, utils.JSONToString(r, opts.pretty)); err != nil {
			return err
		}
	}

	summary := batch.Summarize(outcomes)
	a.logger.Info("batch complete",
		"total", summary.Total,
		"succeeded", summary.Succeeded,
		"failed", summary.Failed,
		"lenient", summary.Lenient,
		"elapsed", summary.Elapsed.String(),
	)
	if failed {
		return errFailed
	}
	return nil
}

func (a *app) decodeScores(o batch.Outcome, r *report) error {
	an, err := analysis.Decode(o.Result)
	if err != nil {
		return err
	}
	if err := an.Validate(); err != nil {
		return err
	}
	r.Analysis = an
	return nil
}

// logFailure logs a failed extraction. Messages and the candidate text are
// capped so one runaway response cannot flood the log.
func (a *app) logFailure(o batch.Outcome) {
	a.logger.Warn("extraction failed",
		"source", o.ID,
		"style", string(o.Result.MatchedStyle),
		"attempts", len(o.Result.Errors),
		"raw_json", utils.TruncateString(o.Result.RawJSON, logValueLimit),
	)
	for _, at := range o.Result.Errors {
		a.logger.Debug("extraction attempt",
			"source", o.ID,
			"kind", string(at.Kind),
			"strategy", string(at.Strategy),
			"message", utils.TruncateString(at.Message, logValueLimit),
			"offset", at.Offset,
			"preview", at.Preview,
		)
	}
}

func (a *app) readInputs(args []string) ([]batch.Input, error) {
	if len(args) == 0 {
		args = []string{stdinName}
	}

	inputs := make([]batch.Input, 0, len(args))
	stdinRead := false
	for _, name := range args {
		var (
			data []byte
			err  error
		)
		if name == stdinName {
			if stdinRead {
				return nil, fmt.Errorf("stdin given more than once")
			}
			stdinRead = true
			data, err = io.ReadAll(a.stdin)
		} else {
			data, err = os.ReadFile(name)
		}
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
		inputs = append(inputs, batch.Input{ID: name, Text: string(data)})
	}
	return inputs, nil
}
