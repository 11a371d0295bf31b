package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/refract-engine/refract/internal/compiler"
)

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <rules.cue>",
		Short: "Compile and validate a rule set without running it",
		Long: `Compile a CUE rule set and check it against the structural schema.
Every defect is reported, not just the first.

Exit codes:
  0 - rule set is valid
  1 - rule set failed validation
  2 - rule set could not be read or compiled`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return validateRuleSet(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

// validateSummary is the validate command's JSON payload.
type validateSummary struct {
	Rules int    `json:"rules"`
	Path  string `json:"path"`
}

func validateRuleSet(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	src, err := os.ReadFile(path)
	if err != nil {
		wrapped := WrapExitError(ExitCommandError, fmt.Sprintf("cannot read rules file %s", path), err)
		_ = formatter.Error(ErrCodeNotFound, wrapped.Error(), nil)
		return wrapped
	}

	rules, err := compiler.CompileBytes(path, src)
	if err != nil {
		wrapped := WrapExitError(ExitCommandError, "rule set failed to compile", err)
		_ = formatter.Error(ErrCodeCompile, wrapped.Error(), nil)
		return wrapped
	}

	if errs := compiler.Validate(rules); len(errs) > 0 {
		vf := &ValidationFailure{Errors: errs}
		reportValidationFailure(formatter, vf)
		return WrapExitError(ExitFailure, "rule set failed validation", vf)
	}

	if opts.Format == "json" {
		return formatter.Success(validateSummary{Rules: len(rules), Path: path})
	}
	return formatter.Success(fmt.Sprintf("✓ rule set valid (%d rule(s))", len(rules)))
}
