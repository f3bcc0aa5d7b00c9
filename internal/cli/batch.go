package cli

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/blabel/internal/batch"
	"github.com/roach88/blabel/internal/store"
)

// BatchOptions holds flags for the batch command.
type BatchOptions struct {
	*RootOptions
	pipelineFlags
	Database  string
	Workers   int
	Timeout   time.Duration
	LeanOnly  bool
	OutputDir string
	GzipOut   bool
}

// NewBatchCommand creates the batch command.
func NewBatchCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &BatchOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "batch <file>...",
		Short: "Label or lean many documents concurrently",
		Long: `Process many N-Triples documents concurrently, each under its own
timeout. With --db every document gets a run record, and every hash
collision is stored with the graph that caused it.

A failing document does not stop the batch. The command exits with 1 if any
document failed.

Exit codes:
  0 - All documents processed
  1 - One or more documents failed
  2 - Command error (invalid flags, database unavailable, etc.)

Examples:
  blabel batch --db runs.db data/*.nt
  blabel batch --lean-only --workers 8 --timeout 10s data/*.nt
  blabel batch --output-dir out --gzip-in --gzip-out data/*.nt.gz`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBatch(opts, args, cmd)
		},
	}

	opts.pipelineFlags.register(cmd, true)
	cmd.Flags().StringVar(&opts.Database, "db", "", "SQLite database for run records")
	cmd.Flags().IntVarP(&opts.Workers, "workers", "w", 4, "documents processed at once")
	cmd.Flags().DurationVar(&opts.Timeout, "timeout", time.Minute, "time limit per document (0 disables)")
	cmd.Flags().BoolVar(&opts.LeanOnly, "lean-only", false, "lean documents without labelling them")
	cmd.Flags().StringVar(&opts.OutputDir, "output-dir", "", "write each output graph to this directory")
	cmd.Flags().BoolVar(&opts.GzipOut, "gzip-out", false, "gzip output files")

	return cmd
}

func runBatch(opts *BatchOptions, files []string, cmd *cobra.Command) error {
	f := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
	logger := opts.logger()

	cfg, err := opts.load(cmd, opts.Config)
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeConfig, "invalid configuration", err)
	}
	flags := cmd.Flags()
	if flags.Changed("db") {
		cfg.Batch.DB = opts.Database
	}
	if flags.Changed("workers") {
		cfg.Batch.Workers = opts.Workers
	}
	timeout, err := cfg.BatchTimeout()
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeConfig, "invalid configuration", err)
	}
	if flags.Changed("timeout") {
		timeout = opts.Timeout
	}
	if cfg.Batch.Workers < 1 {
		return f.Fail(ExitCommandError, ErrCodeConfig, fmt.Sprintf("workers must be at least 1, got %d", cfg.Batch.Workers), nil)
	}

	mode := store.ModeLabel
	if opts.LeanOnly {
		mode = store.ModeLean
	}
	p, err := batch.FromConfig(cfg, mode, logger)
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeConfig, "invalid configuration", err)
	}

	runnerOpts := []batch.Option{
		batch.WithWorkers(cfg.Batch.Workers),
		batch.WithTimeout(timeout),
		batch.WithLogger(logger),
	}
	if cfg.Batch.DB != "" {
		st, err := store.Open(cfg.Batch.DB)
		if err != nil {
			return f.Fail(ExitCommandError, ErrCodeStore, "failed to open database", err)
		}
		defer func() {
			if cerr := st.Close(); cerr != nil {
				logger.Error("error closing database", "error", cerr)
			}
		}()
		runnerOpts = append(runnerOpts, batch.WithRecorder(st))
	}

	docs := make([]batch.Document, len(files))
	for i, file := range files {
		docs[i] = batch.FileDocument(file, opts.GzipIn)
	}

	ctx, cancel := commandContext(cmd)
	defer cancel()

	batchID, results, err := batch.NewRunner(p, runnerOpts...).Run(ctx, docs)
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeStore, "batch aborted", err)
	}

	if opts.OutputDir != "" {
		for _, res := range results {
			if res.Output == nil {
				continue
			}
			path := outputPath(opts.OutputDir, res.Run.Document, opts.GzipOut)
			if err := writeOutput(cmd, path, opts.GzipOut, res.Output.Graph); err != nil {
				return f.Fail(ExitCommandError, ErrCodeOutput, "failed to write output", err)
			}
		}
	}

	failed := 0
	runs := make([]any, len(results))
	for i, res := range results {
		if res.Run.Status != store.StatusOK {
			failed++
		}
		runs[i] = runSummary(res.Run)
	}

	if opts.Format == "json" {
		if err := f.Success(map[string]any{"batch_id": batchID, "runs": runs, "failed": failed}); err != nil {
			return err
		}
	} else {
		w := cmd.OutOrStdout()
		for _, res := range results {
			fmt.Fprintf(w, "%-9s %s (%s)\n", res.Run.Status, res.Run.Document, res.Run.Duration.Round(time.Millisecond))
			if res.Run.Error != "" {
				fmt.Fprintf(w, "          %s\n", res.Run.Error)
			}
		}
		fmt.Fprintf(w, "\nBatch %s: %d documents, %d failed\n", batchID, len(results), failed)
	}

	if failed > 0 {
		e := NewExitError(ExitFailure, fmt.Sprintf("%d of %d documents failed", failed, len(results)))
		e.Reported = true
		return e
	}
	return nil
}

// outputPath names the output file for an input document.
func outputPath(dir, document string, gz bool) string {
	base := filepath.Base(document)
	base = strings.TrimSuffix(base, ".gz")
	base = strings.TrimSuffix(base, filepath.Ext(base))
	name := base + ".nt"
	if gz {
		name += ".gz"
	}
	return filepath.Join(dir, name)
}

// runSummary renders a run record for JSON output.
func runSummary(run store.Run) map[string]any {
	m := map[string]any{
		"id":                run.ID,
		"batch_id":          run.BatchID,
		"seq":               run.Seq,
		"document":          run.Document,
		"mode":              run.Mode,
		"status":            run.Status,
		"input_triples":     run.InputTriples,
		"output_triples":    run.OutputTriples,
		"blank_nodes":       run.BlankNodes,
		"partitions":        run.Partitions,
		"colour_iterations": run.ColourIterations,
		"leaves":            run.Leaves,
		"lean_depth":        run.LeanDepth,
		"lean_joins":        run.LeanJoins,
		"duration_ms":       run.Duration.Milliseconds(),
	}
	if run.GraphHash != "" {
		m["graph_hash"] = run.GraphHash
	}
	if run.Error != "" {
		m["error"] = run.Error
	}
	return m
}
