package cli

import (
	"github.com/spf13/cobra"

	"github.com/roach88/blabel/internal/store"
)

// NewLeanCommand creates the lean command.
func NewLeanCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ProcessOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "lean [file]",
		Short: "Remove redundant blank nodes from a graph",
		Long: `Read an N-Triples (or N-Quads) graph and write its lean form: the
smallest subgraph the whole graph maps into by renaming blank nodes.
Surviving blank nodes keep their input labels.

With --verbose the core map (each input blank node and the term it was
collapsed onto) is written to stderr. With --format json it is part of the
response.

Examples:
  blabel lean data.nt
  blabel lean --strategy bfs -o lean.nt data.nt
  blabel lean --seed 42 --format json data.nt`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProcess(opts, store.ModeLean, inputArg(args), cmd)
		},
	}

	opts.pipelineFlags.register(cmd, false)
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().BoolVar(&opts.GzipOut, "gzip-out", false, "gzip the output")

	return cmd
}
