package batch

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/roach88/blabel/internal/config"
	"github.com/roach88/blabel/internal/label"
	"github.com/roach88/blabel/internal/lean"
	"github.com/roach88/blabel/internal/rdf"
	"github.com/roach88/blabel/internal/store"
)

// Pipeline processes one graph: optionally leaning it, then labelling it
// unless the mode is lean-only.
type Pipeline struct {
	// Mode is store.ModeLabel or store.ModeLean.
	Mode string

	// LeanFirst leans the graph before labelling. It is implied by
	// store.ModeLean.
	LeanFirst bool

	Labeller *label.Labeller
	Leaner   *lean.Leaner

	// Blank writes labels as blank nodes rather than IRIs. Prefix is
	// prepended to every label.
	Blank  bool
	Prefix string

	// Options describes the effective settings for run records.
	Options map[string]string
}

// Output is the result of processing one graph.
type Output struct {
	Graph []rdf.Triple
	Label *label.Result
	Lean  *lean.Result
}

// Process runs the pipeline over triples.
func (p *Pipeline) Process(ctx context.Context, triples []rdf.Triple) (*Output, error) {
	out := &Output{Graph: rdf.SortedSet(triples)}

	if p.Mode == store.ModeLean || p.LeanFirst {
		res, err := p.Leaner.Lean(ctx, out.Graph)
		if err != nil {
			return nil, fmt.Errorf("failed to lean graph: %w", err)
		}
		out.Lean = res
		out.Graph = res.Triples
	}
	if p.Mode == store.ModeLean {
		return out, nil
	}

	res, err := p.Labeller.Label(ctx, out.Graph)
	if err != nil {
		return nil, fmt.Errorf("failed to label graph: %w", err)
	}
	out.Label = res
	out.Graph = res.Graph
	if !p.Blank || p.Prefix != "" {
		out.Graph = label.Rewrite(out.Graph, p.Prefix, p.Blank)
	}
	return out, nil
}

// fill copies the statistics of out into run.
func (o *Output) fill(run *store.Run) {
	run.OutputTriples = len(o.Graph)
	if o.Label != nil {
		run.GraphHash = o.Label.GraphHash.Hex()
		run.BlankNodes = o.Label.BlankNodes
		run.Partitions = o.Label.Partitions
		run.ColourIterations = o.Label.ColourIterations
		run.Leaves = o.Label.Leaves
	}
	if o.Lean != nil {
		run.LeanDepth = o.Lean.Depth
		run.LeanJoins = o.Lean.Joins
	}
}

// FromConfig builds a pipeline for mode from cfg.
func FromConfig(cfg *config.Config, mode string, logger *slog.Logger) (*Pipeline, error) {
	labelOpts, err := cfg.LabelOptions()
	if err != nil {
		return nil, err
	}
	leanOpts, err := cfg.LeanOptions()
	if err != nil {
		return nil, err
	}
	if mode != store.ModeLabel && mode != store.ModeLean {
		return nil, fmt.Errorf("unknown mode %q", mode)
	}

	return &Pipeline{
		Mode:      mode,
		LeanFirst: cfg.Lean.Enabled,
		Labeller:  label.New(append(labelOpts, label.WithLogger(logger))...),
		Leaner:    lean.New(append(leanOpts, lean.WithLogger(logger))...),
		Blank:     cfg.Output.Blank,
		Prefix:    cfg.Output.Prefix,
		Options:   runOptions(cfg, mode),
	}, nil
}

// runOptions records the settings that affect a run's output.
func runOptions(cfg *config.Config, mode string) map[string]string {
	opts := map[string]string{
		"lean":          strconv.FormatBool(cfg.Lean.Enabled || mode == store.ModeLean),
		"lean_strategy": cfg.Lean.Strategy,
	}
	if mode == store.ModeLabel {
		opts["hash"] = cfg.Hash
		opts["distinguish"] = strconv.FormatBool(cfg.DistinguishIsomorphicPartitions)
		opts["unique"] = strconv.FormatBool(cfg.UniquePerGraph)
		opts["prune"] = strconv.FormatBool(cfg.Prune)
		opts["blank"] = strconv.FormatBool(cfg.Output.Blank)
		opts["prefix"] = cfg.Output.Prefix
	}
	if cfg.Lean.Randomise {
		opts["seed"] = strconv.FormatInt(cfg.Lean.Seed, 10)
	}
	return opts
}
