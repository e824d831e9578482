package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/roach88/apigraph/internal/compiler"
	"github.com/roach88/apigraph/internal/graph"
	"github.com/roach88/apigraph/internal/store"
)

// FilterOptions holds flags for the filter command.
type FilterOptions struct {
	*RootOptions
	Store     string   // SQLite database holding the build
	API       string   // use the latest build of this API instead of an id
	Audiences []string // audiences to project for
	Output    string   // output file path
}

// NewFilterCommand creates the filter command.
func NewFilterCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &FilterOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "filter [build-id]",
		Short: "Project a stored build for audiences",
		Long: `Project a build recorded by "ir --store" for a set of audiences.

The stored unfiltered document and reference graph are reused, so the
definition is not read again. The projection is recorded as a new run
of the build.

Examples:
  apigraph filter 3f9a... --store builds.db --audience public
  apigraph filter --api movies --store builds.db --audience internal -o ir.json`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			id := ""
			if len(args) == 1 {
				id = args[0]
			}
			return runFilter(cmd.Context(), opts, id, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Store, "store", "", "SQLite database holding the build (required)")
	cmd.Flags().StringVar(&opts.API, "api", "", "use the latest build of this API")
	cmd.Flags().StringArrayVarP(&opts.Audiences, "audience", "a", nil, "project for an audience (repeatable)")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output file path")
	_ = cmd.MarkFlagRequired("store")

	return cmd
}

func runFilter(ctx context.Context, opts *FilterOptions, id string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	switch {
	case id == "" && opts.API == "":
		return formatter.FailCode(ErrCodeGeneric, "a build id or --api is required", nil)
	case id != "" && opts.API != "":
		return formatter.FailCode(ErrCodeGeneric, "a build id and --api are mutually exclusive", nil)
	}
	for _, a := range opts.Audiences {
		if a == "" {
			return formatter.FailCode(ErrCodeInvalidOptions, "audiences must not be empty", nil)
		}
	}

	st, err := openExistingStore(formatter, opts.Store)
	if err != nil {
		return err
	}
	defer st.Close()

	var b *store.Build
	if opts.API != "" {
		b, err = st.LatestBuild(ctx, opts.API)
	} else {
		b, err = st.ReadBuild(ctx, id)
	}
	if err != nil {
		return formatter.Fail("loading build", err)
	}
	formatter.VerboseLog("Loaded build %s of %s (seq %d)", b.ID, b.APIName, b.Seq)

	res, err := compiler.Refilter(b.IR, b.Graph, graph.ForAudiences(opts.Audiences...))
	if err != nil {
		return formatter.Fail("projecting build "+b.ID, err)
	}

	result := newIRResult(res, opts.Audiences)
	run, err := recordRun(ctx, st, b.ID, res, opts.Audiences)
	if err != nil {
		return formatter.FailCode(ErrCodeStore, "storing run", err)
	}
	result.BuildID, result.RunID = b.ID, run.ID

	return finishIR(formatter, result, res.IR, opts.Output)
}
