package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/apigraph/internal/compiler"
	"github.com/roach88/apigraph/internal/converter"
)

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid    bool                       `json:"valid"`
	Errors   []compiler.ValidationError `json:"errors,omitempty"`
	Warnings []converter.Warning        `json:"warnings,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &BuildOptions{}

	cmd := &cobra.Command{
		Use:   "validate <definition-dir>",
		Short: "Check a definition without writing IR",
		Long: `Load and compile an API definition and check the result.

Reports load, resolution and structural errors the same way ir does,
then checks both the unfiltered and the projected document for dangling
references, duplicate routes and inconsistent service analytics.

Exit codes:
  0 - Definition is valid
  1 - Compiled, but the document is inconsistent
  2 - Command error (missing directory, definition does not compile)`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd.Context(), rootOpts, *opts, args[0], cmd)
		},
	}

	addBuildFlags(cmd, opts)

	return cmd
}

func runValidate(ctx context.Context, rootOpts *RootOptions, opts BuildOptions, dir string, cmd *cobra.Command) error {
	formatter := newFormatter(rootOpts, cmd)

	res, err := compileDir(ctx, rootOpts, opts, dir, cmd)
	if err != nil {
		return reportCompileError(formatter, dir, err)
	}
	formatter.VerboseLog("Compiled %s: %d type(s), %d error(s), %d service(s)",
		dir, len(res.Unfiltered.Types), len(res.Unfiltered.Errors), len(res.Unfiltered.Services))

	errs := compiler.Validate(res.Unfiltered)
	if res.Filtered != nil {
		formatter.VerboseLog("Checking projection for %s", res.Graph.Filter())
		errs = append(errs, compiler.Validate(res.IR)...)
	}

	result := ValidationResult{
		Valid:    len(errs) == 0,
		Errors:   errs,
		Warnings: res.Warnings,
	}
	if len(errs) > 0 {
		return outputValidationErrors(formatter, result)
	}
	return outputValidateSuccess(formatter, result)
}

// outputValidateSuccess outputs successful validation results.
func outputValidateSuccess(formatter *OutputFormatter, result ValidationResult) error {
	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	for _, w := range result.Warnings {
		fmt.Fprintf(formatter.Writer, "warning: %s\n", w)
	}
	fmt.Fprintln(formatter.Writer, "✓ Definition valid")
	return nil
}

// outputValidationErrors outputs multiple validation errors.
func outputValidationErrors(formatter *OutputFormatter, result ValidationResult) error {
	errs := result.Errors
	if formatter.Format == "json" {
		response := CLIResponse{
			Status: "error",
			Data:   result,
			Error: &CLIError{
				Code:    errs[0].Code,
				Message: errs[0].Message,
			},
		}
		if err := formatter.Encode(response); err != nil {
			return err
		}

		// Validation failures = exit code 1 (test/validation failure)
		return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs)))
	}

	// Text format
	fmt.Fprintln(formatter.Writer, "✗ Validation failed")
	fmt.Fprintln(formatter.Writer)

	for _, err := range errs {
		fmt.Fprintf(formatter.Writer, "%s\n", err.Field)
		fmt.Fprintf(formatter.Writer, "  %s: %s\n\n", err.Code, err.Message)
	}

	// Validation failures = exit code 1 (test/validation failure)
	return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs)))
}
