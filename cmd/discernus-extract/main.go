// Command discernus-extract pulls JSON payloads out of raw LLM responses.
//
//	discernus-extract extract response.txt other.txt --pretty
//	cat response.txt | discernus-extract extract --scores
//	discernus-extract audit stats --audit-db runs/audit.db
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/discernus/discernus-sub017/internal/config"
	"github.com/discernus/discernus-sub017/internal/logging"
)

// errFailed marks a run where at least one input yielded no payload. The
// per-input details are already on stdout and in the log.
var errFailed = errors.New("one or more extractions failed")

type app struct {
	cfg    config.Config
	logger *slog.Logger

	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	markersFile string
	markers     []string
	auditDB     string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := newRootCmd(os.Stdin, os.Stdout, os.Stderr)
	if err := root.ExecuteContext(ctx); err != nil {
		if !errors.Is(err, errFailed) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(1)
	}
}

func newRootCmd(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	a := &app{stdin: stdin, stdout: stdout, stderr: stderr}

	root := &cobra.Command{
		Use:   "discernus-extract",
		Short: "Extract JSON payloads from LLM responses",
		Long: `discernus-extract isolates the JSON document in a model response and parses it.

Candidates are searched for in order: sentinel markers such as
<<<ANALYSIS_JSON>>> ... <<<END_ANALYSIS_JSON>>>, then fenced code blocks,
then the bare text. Each candidate is parsed strictly and, failing that,
after automatic repair.

Settings are read from the environment and from .env when present:
DISCERNUS_LOG_LEVEL, DISCERNUS_LOG_FORMAT, DISCERNUS_MARKERS_FILE,
DISCERNUS_AUDIT_DB, DISCERNUS_CONCURRENCY and DISCERNUS_PREVIEW_SIZE.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			a.cfg = cfg
			a.logger = logging.New(
				logging.WithOutput(a.stderr),
				logging.WithLevel(cfg.LogLevel),
				logging.WithFormat(cfg.LogFormat),
			)
			if a.markersFile == "" {
				a.markersFile = cfg.MarkersFile
			}
			if a.auditDB == "" {
				a.auditDB = cfg.AuditDB
			}
			return nil
		},
	}
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)

	flags := root.PersistentFlags()
	flags.StringVar(&a.markersFile, "markers-file", "", "YAML marker registry (default $DISCERNUS_MARKERS_FILE)")
	flags.StringArrayVar(&a.markers, "marker", nil, "marker convention NAME[:VERSION], repeatable")
	flags.StringVar(&a.auditDB, "audit-db", "", "sqlite audit log path (default $DISCERNUS_AUDIT_DB)")

	root.AddCommand(a.extractCmd(), a.auditCmd(), a.markersCmd())
	return root
}
