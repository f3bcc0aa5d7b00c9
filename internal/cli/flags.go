package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/blabel/internal/config"
	"github.com/roach88/blabel/internal/digest"
	"github.com/roach88/blabel/internal/ntriples"
	"github.com/roach88/blabel/internal/rdf"
)

// pipelineFlags are the processing flags shared by label, lean and batch.
// A flag overrides the configuration file only when it is set.
type pipelineFlags struct {
	Hash          string
	Lean          bool
	Strategy      string
	Seed          int64
	NoPrune       bool
	Blank         bool
	Prefix        string
	NoDistinguish bool
	NoUnique      bool
	GzipIn        bool
}

func (f *pipelineFlags) register(cmd *cobra.Command, labelling bool) {
	fs := cmd.Flags()
	fs.StringVar(&f.Strategy, "strategy", "dfs", "lean search strategy (dfs|bfs)")
	fs.Int64Var(&f.Seed, "seed", 0, "shuffle lean search candidates with this seed")
	fs.BoolVar(&f.NoPrune, "no-prune", false, "disable automorphism pruning")
	fs.BoolVar(&f.GzipIn, "gzip-in", false, "input is gzipped")
	if !labelling {
		return
	}
	fs.StringVar(&f.Hash, "hash", digest.Default, fmt.Sprintf("hash function (%s)", strings.Join(digest.Names(), "|")))
	fs.BoolVarP(&f.Lean, "lean", "l", false, "lean the graph before labelling")
	fs.BoolVarP(&f.Blank, "blank", "b", false, "write labels as blank nodes rather than IRIs")
	fs.StringVarP(&f.Prefix, "prefix", "p", "", "prefix prepended to every label")
	fs.BoolVar(&f.NoDistinguish, "no-distinguish", false, "collapse isomorphic blank node partitions")
	fs.BoolVar(&f.NoUnique, "no-unique", false, "label each partition independently of the rest of the graph")
}

// load reads the configuration file and applies the flags that were set.
func (f *pipelineFlags) load(cmd *cobra.Command, path string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	fs := cmd.Flags()
	if fs.Changed("hash") {
		cfg.Hash = f.Hash
	}
	if fs.Changed("lean") {
		cfg.Lean.Enabled = f.Lean
	}
	if fs.Changed("strategy") {
		cfg.Lean.Strategy = f.Strategy
	}
	if fs.Changed("seed") {
		cfg.Lean.Randomise = true
		cfg.Lean.Seed = f.Seed
	}
	if fs.Changed("no-prune") {
		cfg.Prune = !f.NoPrune
		cfg.Lean.Prune = !f.NoPrune
	}
	if fs.Changed("blank") {
		cfg.Output.Blank = f.Blank
	}
	if fs.Changed("prefix") {
		cfg.Output.Prefix = f.Prefix
	}
	if fs.Changed("no-distinguish") {
		cfg.DistinguishIsomorphicPartitions = !f.NoDistinguish
	}
	if fs.Changed("no-unique") {
		cfg.UniquePerGraph = !f.NoUnique
	}

	// Flag values bypass the schema, so check them the same way.
	if _, err := cfg.LabelOptions(); err != nil {
		return nil, err
	}
	if _, err := cfg.LeanOptions(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// readInput reads one graph from path, or from stdin for "" or "-".
func readInput(cmd *cobra.Command, path string, gz bool) ([]rdf.Triple, error) {
	if path != "" && path != "-" {
		return ntriples.ReadFile(path, gz)
	}
	r, err := ntriples.NewReader(cmd.InOrStdin(), gz)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return ntriples.Parse(r)
}

// writeOutput writes triples to path, or to the command's stdout for "".
func writeOutput(cmd *cobra.Command, path string, gz bool, triples []rdf.Triple) (err error) {
	var dst io.Writer = cmd.OutOrStdout()
	if path != "" {
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		defer func() {
			if cerr := f.Close(); err == nil {
				err = cerr
			}
		}()
		dst = f
	}

	w := ntriples.NewWriter(dst, gz)
	if err := ntriples.Write(w, triples); err != nil {
		w.Close()
		return err
	}
	return w.Close()
}
