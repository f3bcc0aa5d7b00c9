package cli

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/blabel/internal/store"
)

// RunsOptions holds flags for the runs command.
type RunsOptions struct {
	*RootOptions
	Database string
	Batch    string
	Limit    int
}

// NewRunsCommand creates the runs command.
func NewRunsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List recorded runs",
		Long: `List the run records of a batch database, ordered by batch and then by
position within the batch.

Examples:
  blabel runs --db runs.db
  blabel runs --db runs.db --batch 0192f1d2-... --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return listRuns(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	cmd.Flags().StringVar(&opts.Batch, "batch", "", "only list runs of this batch")
	cmd.Flags().IntVarP(&opts.Limit, "limit", "n", 0, "maximum number of runs (0 for all)")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func listRuns(opts *RunsOptions, cmd *cobra.Command) error {
	f := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	st, err := store.Open(opts.Database)
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeStore, "failed to open database", err)
	}
	defer st.Close()

	ctx, cancel := commandContext(cmd)
	defer cancel()

	runs, err := st.ListRuns(ctx, opts.Batch, opts.Limit)
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeStore, "failed to list runs", err)
	}

	if opts.Format == "json" {
		list := make([]any, len(runs))
		for i, run := range runs {
			list[i] = runSummary(run)
		}
		return f.Success(map[string]any{"runs": list})
	}

	if len(runs) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No runs found.")
		return nil
	}
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "BATCH\tSEQ\tSTATUS\tMODE\tDOCUMENT\tBLANKS\tTRIPLES\tDURATION")
	for _, run := range runs {
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%s\t%d\t%d\t%s\n",
			run.BatchID, run.Seq, run.Status, run.Mode, run.Document,
			run.BlankNodes, run.OutputTriples, run.Duration.Round(time.Millisecond))
	}
	return tw.Flush()
}
