package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/apigraph/internal/casing"
	"github.com/roach88/apigraph/internal/compiler"
	"github.com/roach88/apigraph/internal/converter"
	"github.com/roach88/apigraph/internal/graph"
	"github.com/roach88/apigraph/internal/ir"
	"github.com/roach88/apigraph/internal/store"
	"github.com/roach88/apigraph/internal/workspace"
)

// BuildOptions are the compile flags shared by ir and validate.
type BuildOptions struct {
	Audiences   []string
	Language    string
	Concurrency int
}

func addBuildFlags(cmd *cobra.Command, opts *BuildOptions) {
	cmd.Flags().StringArrayVarP(&opts.Audiences, "audience", "a", nil, "project for an audience (repeatable)")
	cmd.Flags().StringVar(&opts.Language, "language", "", "escape reserved words of a language (go|java|python|typescript)")
	cmd.Flags().IntVar(&opts.Concurrency, "concurrency", 0, "files converted at once (0 = GOMAXPROCS)")
}

// IROptions holds flags for the ir command.
type IROptions struct {
	*RootOptions
	BuildOptions
	Output string // output file path
	Store  string // SQLite database recording the build
}

// IRResult describes one compiled or re-projected document.
type IRResult struct {
	APIName     string                         `json:"api_name"`
	Audiences   []string                       `json:"audiences"`
	Fingerprint string                         `json:"fingerprint"`
	Types       int                            `json:"types"`
	Errors      int                            `json:"errors"`
	Services    int                            `json:"services"`
	Endpoints   int                            `json:"endpoints"`
	Warnings    []converter.Warning            `json:"warnings,omitempty"`
	BuildID     string                         `json:"build_id,omitempty"`
	RunID       string                         `json:"run_id,omitempty"`
	Output      string                         `json:"output,omitempty"`
	IR          *ir.IntermediateRepresentation `json:"ir,omitempty"`
}

// NewIRCommand creates the ir command.
func NewIRCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &IROptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "ir <definition-dir>",
		Short: "Compile a definition to IR",
		Long: `Compile an API definition directory to its intermediate representation.

With --audience the document is projected: only endpoints for those
audiences (or for every audience) and the declarations they reach are
kept. With --store the unfiltered build and this run are recorded so
the build can be projected again with the filter command.

Examples:
  apigraph ir ./fern/definition
  apigraph ir ./fern/definition --audience public -o ir.json
  apigraph ir ./fern/definition --store builds.db --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors - we handle our own error output
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIR(cmd.Context(), opts, args[0], cmd)
		},
	}

	addBuildFlags(cmd, &opts.BuildOptions)
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output file path")
	cmd.Flags().StringVar(&opts.Store, "store", "", "record the build in this SQLite database")

	return cmd
}

func runIR(ctx context.Context, opts *IROptions, dir string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	res, err := compileDir(ctx, opts.RootOptions, opts.BuildOptions, dir, cmd)
	if err != nil {
		return reportCompileError(formatter, dir, err)
	}
	result := newIRResult(res, opts.Audiences)

	if opts.Store != "" {
		st, err := store.Open(opts.Store)
		if err != nil {
			return formatter.FailCode(ErrCodeStore, "opening store", err)
		}
		defer st.Close()

		id, inserted, err := st.WriteBuild(ctx, res.Unfiltered, res.Graph.Snapshot())
		if err != nil {
			return formatter.FailCode(ErrCodeStore, "storing build", err)
		}
		if !inserted {
			formatter.VerboseLog("Build %s already stored", id)
		}
		run, err := recordRun(ctx, st, id, res, opts.Audiences)
		if err != nil {
			return formatter.FailCode(ErrCodeStore, "storing run", err)
		}
		result.BuildID, result.RunID = id, run.ID
	}

	return finishIR(formatter, result, res.IR, opts.Output)
}

// dirNotFound is returned by compileDir when dir is not a directory.
type dirNotFound string

func (d dirNotFound) Error() string { return fmt.Sprintf("definition directory not found: %s", string(d)) }

// compileDir loads and compiles the definition in dir.
func compileDir(ctx context.Context, root *RootOptions, opts BuildOptions, dir string, cmd *cobra.Command) (*compiler.Result, error) {
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		return nil, dirNotFound(dir)
	}
	ws, err := workspace.Load(dir)
	if err != nil {
		return nil, err
	}
	return compiler.GenerateIR(ctx, ws, compiler.Options{
		Audiences:   opts.Audiences,
		Language:    casing.Language(opts.Language),
		Concurrency: opts.Concurrency,
		Logger:      newLogger(root, cmd.ErrOrStderr()),
	})
}

// reportCompileError reports a compileDir failure.
func reportCompileError(formatter *OutputFormatter, dir string, err error) error {
	if nf, ok := err.(dirNotFound); ok {
		return formatter.FailCode(ErrCodeNotFound, nf.Error(), nil)
	}
	return formatter.Fail("compiling "+dir, err)
}

func newIRResult(res *compiler.Result, audiences []string) *IRResult {
	doc := res.IR
	result := &IRResult{
		APIName:     doc.APIName.OriginalName,
		Audiences:   append([]string{}, graph.ForAudiences(audiences...).Audiences()...),
		Fingerprint: res.Fingerprint,
		Types:       len(doc.Types),
		Errors:      len(doc.Errors),
		Services:    len(doc.Services),
		Warnings:    res.Warnings,
	}
	for _, s := range doc.Services {
		result.Endpoints += len(s.Endpoints)
	}
	return result
}

func recordRun(ctx context.Context, st *store.Store, buildID string, res *compiler.Result, audiences []string) (store.Run, error) {
	return st.WriteRun(ctx, store.Run{
		BuildID:     buildID,
		Audiences:   audiences,
		Fingerprint: res.Fingerprint,
		Warnings:    len(res.Warnings),
	})
}

// finishIR writes doc to output when set and reports result. Without an
// output file the JSON envelope carries the document itself.
func finishIR(formatter *OutputFormatter, result *IRResult, doc *ir.IntermediateRepresentation, output string) error {
	if output != "" {
		if err := writeIRToFile(doc, output); err != nil {
			return formatter.FailCode(ErrCodeWriteFailed, "writing output file", err)
		}
		result.Output = output
	} else if formatter.Format == "json" {
		result.IR = doc
	}

	if formatter.Format == "json" {
		return formatter.Encode(CLIResponse{Status: "ok", Data: result})
	}

	w := formatter.Writer
	audiences := "all audiences"
	if len(result.Audiences) > 0 {
		audiences = strings.Join(result.Audiences, ", ")
	}
	fmt.Fprintf(w, "✓ Built %s for %s\n", result.APIName, audiences)
	fmt.Fprintf(w, "  %d type(s), %d error(s), %d service(s), %d endpoint(s)\n",
		result.Types, result.Errors, result.Services, result.Endpoints)
	fmt.Fprintf(w, "  fingerprint %s\n", result.Fingerprint)
	for _, warning := range result.Warnings {
		fmt.Fprintf(w, "  warning: %s\n", warning)
	}
	if result.BuildID != "" {
		fmt.Fprintf(w, "Stored build %s (run %s)\n", result.BuildID, result.RunID)
	}
	if output != "" {
		fmt.Fprintf(w, "Wrote IR to %s\n", output)
	}
	return nil
}

// writeIRToFile writes doc as indented JSON.
func writeIRToFile(doc *ir.IntermediateRepresentation, filename string) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling IR: %w", err)
	}
	if err := os.WriteFile(filename, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("writing file: %w", err)
	}
	return nil
}
