package cli

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/refract-engine/refract/internal/ir"
	"github.com/refract-engine/refract/internal/store"
)

// TraceOptions holds flags for the trace command.
type TraceOptions struct {
	*RootOptions
	Database string
}

// traceSummary is the trace command's JSON payload.
type traceSummary struct {
	Run     runRow         `json:"run"`
	Firings []firingDetail `json:"firings"`
	Facts   []factDetail   `json:"facts"`
}

type runRow struct {
	ID       string `json:"id"`
	Strategy string `json:"strategy"`
	State    string `json:"state"`
	Cycles   int    `json:"cycles"`
}

type firingDetail struct {
	Seq      int64             `json:"seq"`
	Rule     string            `json:"rule"`
	Bindings map[string]string `json:"bindings"`
	Fact     []string          `json:"fact"`
	New      bool              `json:"new"`
	Supports [][]string        `json:"supports,omitempty"`
}

type factDetail struct {
	Fact    []string `json:"fact"`
	Initial bool     `json:"initial"`
}

// NewTraceCommand creates the trace command.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TraceOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "trace <run-id>",
		Short: "Read a recorded run back from the journal",
		Long: `Print a journaled run: the run row, every firing in order with its
bindings and provenance supports, and the final fact set.

Example:
  refract trace 0190c3e1-... --db runs.db`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return traceRun(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite journal (required)")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func traceRun(opts *TraceOptions, runID string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	st, err := store.Open(opts.Database)
	if err != nil {
		wrapped := WrapExitError(ExitCommandError, "failed to open journal", err)
		_ = formatter.Error(ErrCodeNotFound, wrapped.Error(), nil)
		return wrapped
	}
	defer st.Close()

	ctx := cmd.Context()

	run, err := st.ReadRun(ctx, runID)
	if err != nil {
		code := ExitCommandError
		if errors.Is(err, sql.ErrNoRows) {
			code = ExitFailure
		}
		wrapped := WrapExitError(code, fmt.Sprintf("run %s not found in journal", runID), err)
		_ = formatter.Error(ErrCodeNotFound, wrapped.Error(), nil)
		return wrapped
	}

	firings, err := st.ReadFirings(ctx, runID)
	if err != nil {
		wrapped := WrapExitError(ExitCommandError, "failed to read firings", err)
		_ = formatter.Error(ErrCodeRun, wrapped.Error(), nil)
		return wrapped
	}

	facts, err := st.ReadFacts(ctx, runID)
	if err != nil {
		wrapped := WrapExitError(ExitCommandError, "failed to read facts", err)
		_ = formatter.Error(ErrCodeRun, wrapped.Error(), nil)
		return wrapped
	}

	summary := traceSummary{
		Run: runRow{ID: run.ID, Strategy: run.Strategy, State: run.State, Cycles: run.Cycles},
	}
	for _, f := range firings {
		detail := firingDetail{
			Seq:      f.Seq,
			Rule:     f.Rule,
			Bindings: map[string]string(f.Bindings),
			Fact:     []string(f.Fact),
			New:      f.NewFact,
		}
		for _, support := range f.Supports {
			detail.Supports = append(detail.Supports, []string(support))
		}
		summary.Firings = append(summary.Firings, detail)
	}
	for _, f := range facts {
		summary.Facts = append(summary.Facts, factDetail{Fact: []string(f.Fact), Initial: f.Initial})
	}

	if opts.Format == "json" {
		return formatter.Success(summary)
	}
	return formatter.Success(renderTrace(summary))
}

func renderTrace(s traceSummary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "run %s strategy=%s state=%s cycles=%d\n",
		s.Run.ID, s.Run.Strategy, s.Run.State, s.Run.Cycles)
	fmt.Fprintf(&b, "firings (%d):\n", len(s.Firings))
	for _, f := range s.Firings {
		fmt.Fprintf(&b, "  [%d] %s %s => %s\n", f.Seq, f.Rule, ir.Bindings(f.Bindings), ir.Fact(f.Fact))
		for _, support := range f.Supports {
			fmt.Fprintf(&b, "        <- %s\n", ir.Fact(support))
		}
	}
	fmt.Fprintf(&b, "facts (%d):\n", len(s.Facts))
	for _, f := range s.Facts {
		marker := ""
		if f.Initial {
			marker = " [initial]"
		}
		fmt.Fprintf(&b, "  %s%s\n", ir.Fact(f.Fact), marker)
	}
	return strings.TrimRight(b.String(), "\n")
}
