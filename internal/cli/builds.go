package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/apigraph/internal/store"
)

// BuildsOptions holds flags for the builds command.
type BuildsOptions struct {
	*RootOptions
	Store string // SQLite database to list
}

// BuildRecord is a stored build and its runs.
type BuildRecord struct {
	store.BuildSummary
	Runs []store.Run `json:"runs"`
}

// BuildsResult holds every stored build.
type BuildsResult struct {
	Builds []BuildRecord `json:"builds"`
}

// NewBuildsCommand creates the builds command.
func NewBuildsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &BuildsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "builds",
		Short: "List stored builds and their runs",
		Long: `List the builds recorded in a store, oldest first, with every run
(audiences, fingerprint and warning count) recorded for each.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBuilds(cmd.Context(), opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Store, "store", "", "SQLite database to list (required)")
	_ = cmd.MarkFlagRequired("store")

	return cmd
}

func runBuilds(ctx context.Context, opts *BuildsOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	st, err := openExistingStore(formatter, opts.Store)
	if err != nil {
		return err
	}
	defer st.Close()

	summaries, err := st.ListBuilds(ctx)
	if err != nil {
		return formatter.FailCode(ErrCodeStore, "listing builds", err)
	}
	result := BuildsResult{Builds: make([]BuildRecord, 0, len(summaries))}
	for _, s := range summaries {
		runs, err := st.ReadRuns(ctx, s.ID)
		if err != nil {
			return formatter.FailCode(ErrCodeStore, "listing runs of "+s.ID, err)
		}
		result.Builds = append(result.Builds, BuildRecord{BuildSummary: s, Runs: runs})
	}

	if formatter.Format == "json" {
		return formatter.Encode(CLIResponse{Status: "ok", Data: result})
	}

	w := formatter.Writer
	if len(result.Builds) == 0 {
		fmt.Fprintln(w, "No builds stored.")
		return nil
	}
	for _, b := range result.Builds {
		fmt.Fprintf(w, "%d  %s  %s\n", b.Seq, b.APIName, b.ID)
		for _, r := range b.Runs {
			audiences := "all"
			if len(r.Audiences) > 0 {
				audiences = strings.Join(r.Audiences, ",")
			}
			fmt.Fprintf(w, "    run %s  audiences=%s  warnings=%d  %s\n", r.ID, audiences, r.Warnings, r.Fingerprint)
		}
	}
	return nil
}

// openExistingStore opens a store that must already exist on disk.
// Reading commands never create an empty database.
func openExistingStore(formatter *OutputFormatter, path string) (*store.Store, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, formatter.FailCode(ErrCodeNotFound, fmt.Sprintf("database not found: %s", path), nil)
	}
	st, err := store.Open(path)
	if err != nil {
		return nil, formatter.FailCode(ErrCodeStore, "opening store", err)
	}
	return st, nil
}
