package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/refract-engine/refract/internal/engine"
	"github.com/refract-engine/refract/internal/ir"
	"github.com/refract-engine/refract/internal/store"
	"github.com/refract-engine/refract/internal/testutil"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Facts     string
	Strategy  string
	MaxCycles int
	Database  string
	RunID     string
}

// firingSummary is one firing in JSON output.
type firingSummary struct {
	Seq      int64             `json:"seq"`
	Rule     string            `json:"rule"`
	Bindings map[string]string `json:"bindings"`
	Fact     []string          `json:"fact"`
	New      bool              `json:"new"`
}

// runSummary is the run command's JSON payload.
type runSummary struct {
	RunID    string          `json:"run_id"`
	Strategy string          `json:"strategy"`
	State    string          `json:"state"`
	Cycles   int             `json:"cycles"`
	Firings  []firingSummary `json:"firings"`
	Derived  [][]string      `json:"derived"`
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run <rules.cue>",
		Short: "Run a rule set over working memory to saturation",
		Long: `Compile a CUE rule set, assert the initial facts, and drive the
forward-chaining loop until no eligible instantiation remains.

Example:
  refract run policy.cue --facts memory.yaml
  refract run policy.cue --facts memory.yaml --strategy specificity --db runs.db`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRules(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Facts, "facts", "", "path to working-memory YAML file (required)")
	_ = cmd.MarkFlagRequired("facts")
	cmd.Flags().StringVar(&opts.Strategy, "strategy", "priority", "conflict resolution (priority|specificity|order)")
	cmd.Flags().IntVar(&opts.MaxCycles, "max-cycles", 0, "override the run cycle guard (0 = default)")
	cmd.Flags().StringVar(&opts.Database, "db", "", "record the run to a SQLite journal at this path")
	cmd.Flags().StringVar(&opts.RunID, "run-id", "", "fixed run ID (default: generated UUIDv7)")

	return cmd
}

func runRules(opts *RunOptions, rulesPath string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	eng, result, err := executeRun(cmd.Context(), opts, rulesPath, formatter)
	if err != nil {
		return err
	}

	if opts.Database != "" {
		if err := recordRun(cmd.Context(), opts.Database, result, eng); err != nil {
			return WrapExitError(ExitCommandError, "failed to record run", err)
		}
		formatter.VerboseLog("run %s recorded to %s", result.RunID, opts.Database)
	}

	summary := summarize(result)
	if opts.Format == "json" {
		return formatter.Success(summary)
	}
	return formatter.Success(renderSummary(summary))
}

// executeRun compiles, validates, and runs. Shared by run and explain.
func executeRun(ctx context.Context, opts *RunOptions, rulesPath string, formatter *OutputFormatter) (*engine.Engine, *engine.Result, error) {
	rules, err := loadRules(rulesPath)
	if err != nil {
		var vf *ValidationFailure
		if errors.As(err, &vf) {
			reportValidationFailure(formatter, vf)
			return nil, nil, WrapExitError(ExitFailure, "rule set failed validation", err)
		}
		_ = formatter.Error(ErrCodeCompile, err.Error(), nil)
		return nil, nil, err
	}

	facts, err := loadFacts(opts.Facts)
	if err != nil {
		_ = formatter.Error(ErrCodeInput, err.Error(), nil)
		return nil, nil, err
	}

	strategy, err := engine.ParseStrategy(opts.Strategy)
	if err != nil {
		wrapped := WrapExitError(ExitCommandError, "invalid strategy", err)
		_ = formatter.Error(ErrCodeInput, wrapped.Error(), nil)
		return nil, nil, wrapped
	}

	engOpts := []engine.Option{engine.WithStrategy(strategy)}
	if opts.MaxCycles > 0 {
		engOpts = append(engOpts, engine.WithMaxCycles(opts.MaxCycles))
	}
	if opts.RunID != "" {
		engOpts = append(engOpts, engine.WithRunIDGenerator(testutil.NewConstantRunGenerator(opts.RunID)))
	}

	eng, err := engine.New(rules, engOpts...)
	if err != nil {
		wrapped := WrapExitError(ExitCommandError, "failed to build engine", err)
		_ = formatter.Error(ErrCodeInput, wrapped.Error(), nil)
		return nil, nil, wrapped
	}
	if err := eng.Assert(facts...); err != nil {
		wrapped := WrapExitError(ExitCommandError, "failed to assert facts", err)
		_ = formatter.Error(ErrCodeInput, wrapped.Error(), nil)
		return nil, nil, wrapped
	}

	if ctx == nil {
		ctx = context.Background()
	}
	result, err := eng.Run(ctx)
	if err != nil {
		slog.Error("run failed", "error", err)
		wrapped := WrapExitError(ExitFailure, "engine run failed", err)
		_ = formatter.Error(ErrCodeRun, wrapped.Error(), nil)
		return nil, nil, wrapped
	}

	return eng, result, nil
}

// recordRun journals a completed run: the run row, the initial facts,
// and every firing with provenance.
func recordRun(ctx context.Context, path string, result *engine.Result, eng *engine.Engine) error {
	st, err := store.Open(path)
	if err != nil {
		return err
	}
	defer st.Close()

	if ctx == nil {
		ctx = context.Background()
	}

	var initial []ir.Fact
	for _, fact := range eng.Memory().Facts() {
		if _, derived := eng.Memory().Provenance(fact); !derived {
			initial = append(initial, fact)
		}
	}

	firings := make([]store.FiringRecord, 0, len(result.Firings))
	for _, f := range result.Firings {
		firings = append(firings, store.FiringRecord{
			RunID:    result.RunID,
			Seq:      f.Seq,
			Rule:     f.Rule,
			Bindings: f.Bindings,
			Fact:     f.Fact,
			NewFact:  f.New,
			Supports: f.Supports,
		})
	}

	return st.RecordRun(ctx, store.RunRecord{
		ID:       result.RunID,
		Strategy: string(result.Strategy),
		State:    string(result.State),
		Cycles:   result.Cycles,
	}, initial, firings)
}

func summarize(result *engine.Result) runSummary {
	summary := runSummary{
		RunID:    result.RunID,
		Strategy: string(result.Strategy),
		State:    string(result.State),
		Cycles:   result.Cycles,
		Firings:  []firingSummary{},
		Derived:  [][]string{},
	}
	for _, f := range result.Firings {
		summary.Firings = append(summary.Firings, firingSummary{
			Seq:      f.Seq,
			Rule:     f.Rule,
			Bindings: map[string]string(f.Bindings),
			Fact:     []string(f.Fact),
			New:      f.New,
		})
	}
	for _, fact := range result.Derived {
		summary.Derived = append(summary.Derived, []string(fact))
	}
	return summary
}

func renderSummary(s runSummary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "run %s %s after %d cycle(s), %d firing(s), %d derived fact(s)\n",
		s.RunID, s.State, s.Cycles, len(s.Firings), len(s.Derived))
	for _, f := range s.Firings {
		fmt.Fprintf(&b, "  [%d] %s %s => %s\n",
			f.Seq, f.Rule, ir.Bindings(f.Bindings), ir.Fact(f.Fact))
	}
	if len(s.Derived) > 0 {
		b.WriteString("derived:\n")
		for _, fact := range s.Derived {
			fmt.Fprintf(&b, "  %s\n", ir.Fact(fact))
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

// reportValidationFailure prints every validation defect.
func reportValidationFailure(formatter *OutputFormatter, vf *ValidationFailure) {
	if formatter.Format == "json" {
		_ = formatter.Error(ErrCodeValidation, vf.Error(), vf.Errors)
		return
	}
	fmt.Fprintf(formatter.Writer, "%s\n", vf.Error())
	for _, e := range vf.Errors {
		fmt.Fprintf(formatter.Writer, "  %s\n", e.Error())
	}
}
