package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/roach88/blabel/internal/batch"
	"github.com/roach88/blabel/internal/colour"
	"github.com/roach88/blabel/internal/ntriples"
	"github.com/roach88/blabel/internal/store"
)

// ProcessOptions holds flags for the label and lean commands.
type ProcessOptions struct {
	*RootOptions
	pipelineFlags
	Output  string
	GzipOut bool
}

// NewLabelCommand creates the label command.
func NewLabelCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ProcessOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "label [file]",
		Short: "Canonically label the blank nodes of a graph",
		Long: `Read an N-Triples (or N-Quads) graph and write it with canonical blank
node labels. Isomorphic inputs produce identical outputs. Graphs without
blank nodes are passed through sorted and deduplicated.

Labels are written as IRIs (skolemized) unless --blank is given. Reads
stdin when no file or "-" is given.

Examples:
  blabel label data.nt
  blabel label --lean --blank --prefix b data.nt
  blabel label --hash sha256 --gzip-in --gzip-out -o out.nt.gz data.nt.gz
  cat data.nt | blabel label --format json`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProcess(opts, store.ModeLabel, inputArg(args), cmd)
		},
	}

	opts.pipelineFlags.register(cmd, true)
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().BoolVar(&opts.GzipOut, "gzip-out", false, "gzip the output")

	return cmd
}

func inputArg(args []string) string {
	if len(args) == 0 {
		return "-"
	}
	return args[0]
}

// commandContext returns the command's context, cancelled on SIGINT or
// SIGTERM.
func commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

func runProcess(opts *ProcessOptions, mode, input string, cmd *cobra.Command) error {
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
	p, err := batch.FromConfig(cfg, mode, logger)
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeConfig, "invalid configuration", err)
	}

	triples, err := readInput(cmd, input, opts.GzipIn)
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeInput, "failed to read input", err)
	}
	logger.Debug("read input", "file", input, "triples", len(triples))

	ctx, cancel := commandContext(cmd)
	defer cancel()

	out, err := p.Process(ctx, triples)
	if err != nil {
		if colour.IsHashCollision(err) {
			return f.Fail(ExitFailure, ErrCodeCollision, "hash collision", err)
		}
		return f.Fail(ExitFailure, ErrCodeProcess, "failed to process graph", err)
	}

	stats := processStats(out)
	logger.Info(mode+" complete", statsAttrs(stats)...)

	if opts.Format == "json" && opts.Output == "" {
		stats["graph"] = ntriples.Format(out.Graph)
	} else if err := writeOutput(cmd, opts.Output, opts.GzipOut, out.Graph); err != nil {
		return f.Fail(ExitCommandError, ErrCodeOutput, "failed to write output", err)
	}

	if out.Lean != nil {
		for _, k := range out.Lean.CoreMap.Keys() {
			f.VerboseLog("%s -> %s", k, out.Lean.CoreMap[k])
		}
	}

	if opts.Format == "json" {
		if out.Lean != nil {
			stats["core_map"] = coreMap(out)
		}
		return f.Success(stats)
	}
	return nil
}

// processStats collects the statistics of one processed graph.
func processStats(out *batch.Output) map[string]any {
	stats := map[string]any{"triples": len(out.Graph)}
	if out.Label != nil {
		stats["blank_nodes"] = out.Label.BlankNodes
		stats["partitions"] = out.Label.Partitions
		stats["colour_iterations"] = out.Label.ColourIterations
		stats["leaves"] = out.Label.Leaves
		if out.Label.GraphHash != "" {
			stats["graph_hash"] = out.Label.GraphHash.Hex()
		}
	}
	if out.Lean != nil {
		stats["lean_depth"] = out.Lean.Depth
		stats["lean_joins"] = out.Lean.Joins
		stats["lean_solutions"] = out.Lean.Solutions
	}
	return stats
}

func statsAttrs(stats map[string]any) []any {
	attrs := make([]any, 0, 2*len(stats))
	for _, k := range sortedKeys(stats) {
		attrs = append(attrs, k, stats[k])
	}
	return attrs
}

func coreMap(out *batch.Output) map[string]string {
	m := make(map[string]string, len(out.Lean.CoreMap))
	for k, v := range out.Lean.CoreMap {
		m[k.String()] = v.String()
	}
	return m
}
