package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/refract-engine/refract/internal/explain"
	"github.com/refract-engine/refract/internal/ir"
)

// ExplainOptions holds flags for the explain command.
type ExplainOptions struct {
	*RunOptions
}

// NewExplainCommand creates the explain command.
func NewExplainCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ExplainOptions{RunOptions: &RunOptions{RootOptions: rootOpts}}

	cmd := &cobra.Command{
		Use:   "explain <rules.cue> <term>...",
		Short: "Show why a fact holds after running a rule set",
		Long: `Run a rule set to saturation, then print the derivation tree of the
fact named by the trailing terms: which rule derived it, under which
bindings, from which supporting facts, down to the initial assertions.

Example:
  refract explain policy.cue flag-violation Alice CS501 --facts memory.yaml`,
		Args:          cobra.MinimumNArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return explainFact(opts, args[0], args[1:], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Facts, "facts", "", "path to working-memory YAML file (required)")
	_ = cmd.MarkFlagRequired("facts")
	cmd.Flags().StringVar(&opts.Strategy, "strategy", "priority", "conflict resolution (priority|specificity|order)")
	cmd.Flags().IntVar(&opts.MaxCycles, "max-cycles", 0, "override the run cycle guard (0 = default)")
	cmd.Flags().StringVar(&opts.RunID, "run-id", "", "fixed run ID (default: generated UUIDv7)")

	return cmd
}

func explainFact(opts *ExplainOptions, rulesPath string, terms []string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	eng, result, err := executeRun(cmd.Context(), opts.RunOptions, rulesPath, formatter)
	if err != nil {
		return err
	}
	formatter.VerboseLog("run %s %s after %d cycle(s)", result.RunID, result.State, result.Cycles)

	fact := ir.NewFact(terms...)
	tree, err := explain.Build(eng.Memory(), fact)
	if err != nil {
		wrapped := WrapExitError(ExitFailure, "nothing to explain", err)
		_ = formatter.Error(ErrCodeNotFound, wrapped.Error(), nil)
		return wrapped
	}

	if opts.Format == "json" {
		return formatter.Success(tree)
	}
	return formatter.Success(strings.TrimRight(explain.Render(tree), "\n"))
}
