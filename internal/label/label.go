// Package label computes canonical labellings of whole graphs.
//
// The graph is split into connected blank node components, each component is
// coloured independently, and the results are merged. Isomorphic components
// can be kept apart, and the labels can be made unique to the whole graph, by
// muxing further digests into the blank node colours.
package label

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/emirpasic/gods/maps/treemap"

	"github.com/roach88/blabel/internal/colour"
	"github.com/roach88/blabel/internal/digest"
	"github.com/roach88/blabel/internal/hashgraph"
	"github.com/roach88/blabel/internal/rdf"
)

// Default option values.
const (
	DefaultDistinguishIsomorphicPartitions = true
	DefaultUniquePerGraph                  = true
	DefaultPrune                           = true
)

// Option configures a Labeller.
type Option func(*Labeller)

// WithHashFunction sets the digest function. The default is MD5.
func WithHashFunction(fn digest.Function) Option {
	return func(l *Labeller) {
		l.fn = fn
	}
}

// WithDistinguishIsomorphicPartitions controls whether isomorphic components
// receive distinct labels. When false, such components collapse onto one
// labelled copy.
func WithDistinguishIsomorphicPartitions(dip bool) Option {
	return func(l *Labeller) {
		l.distinguish = dip
	}
}

// WithUniquePerGraph controls whether labels depend on the whole graph rather
// than only on each blank node's component.
func WithUniquePerGraph(upg bool) Option {
	return func(l *Labeller) {
		l.uniquePerGraph = upg
	}
}

// WithPrune enables or disables automorphism pruning in the colouring search.
func WithPrune(prune bool) Option {
	return func(l *Labeller) {
		l.prune = prune
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Labeller) {
		l.logger = logger
	}
}

// Labeller produces canonical labellings. A Labeller holds no state between
// calls and may be shared.
type Labeller struct {
	fn             digest.Function
	distinguish    bool
	uniquePerGraph bool
	prune          bool
	logger         *slog.Logger
}

// New creates a Labeller with the given options applied over the defaults.
func New(opts ...Option) *Labeller {
	l := &Labeller{
		fn:             digest.MustLookup(digest.Default),
		distinguish:    DefaultDistinguishIsomorphicPartitions,
		uniquePerGraph: DefaultUniquePerGraph,
		prune:          DefaultPrune,
		logger:         slog.Default(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Result is the outcome of a labelling run.
type Result struct {
	// Graph is the sorted canonical graph. Blank nodes are named SK00<hex>.
	Graph []rdf.Triple

	// HashGraph carries the final digest of every blank node. It is nil on
	// the no-blank-node fast path.
	HashGraph *hashgraph.Graph

	// GraphHash is the graph-level digest muxed into every label. It is only
	// set when labels are unique per graph.
	GraphHash digest.Digest

	BlankNodes       int
	Partitions       int
	ColourIterations int
	Leaves           int
}

// Label computes the canonical labelling of triples. Duplicate triples are
// ignored.
func (l *Labeller) Label(ctx context.Context, triples []rdf.Triple) (*Result, error) {
	data := rdf.SortedSet(triples)
	if !rdf.HasBlankNodes(data) {
		l.logger.Debug("no blank nodes, passing graph through", "triples", len(data))
		return &Result{Graph: data}, nil
	}

	hg := hashgraph.New(l.fn)
	for _, t := range data {
		hg.Add(t)
	}

	parts := hg.Partition()
	seen := treemap.NewWith(func(a, b interface{}) int {
		return rdf.CompareGraphs(a.([]rdf.Triple), b.([]rdf.Triple))
	})

	res := &Result{Partitions: len(parts)}
	var hashes []digest.Digest
	var merged []rdf.Triple
	uniqueBlanks := 0

	for i, part := range parts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		c := colour.New(part, colour.WithPrune(l.prune), colour.WithLogger(l.logger))
		if err := c.Execute(ctx); err != nil {
			return nil, fmt.Errorf("failed to colour partition %d: %w", i, err)
		}
		cr, err := c.CanonicalIndex(0)
		if err != nil {
			return nil, fmt.Errorf("failed to label partition %d: %w", i, err)
		}

		count := 0
		if v, ok := seen.Get(cr.Graph); ok {
			count = v.(int)
		}
		seen.Put(cr.Graph, count+1)

		switch {
		case count == 0:
			hashes = append(hashes, cr.Hash)
			uniqueBlanks += cr.HashGraph.BlankCount()
		case l.distinguish:
			l.logger.Debug("distinguishing isomorphic partition", "partition", i, "occurrence", count+1)
			cr, err = c.CanonicalIndex(int32(count + 1))
			if err != nil {
				return nil, fmt.Errorf("failed to label partition %d: %w", i, err)
			}
			hashes = append(hashes, cr.Hash)
			uniqueBlanks += cr.HashGraph.BlankCount()
		}

		res.ColourIterations += c.Iterations()
		res.Leaves += c.Leaves()
		merged = append(merged, cr.Graph...)
		hg.Update(cr.HashGraph.BlankDigests())
	}

	if l.uniquePerGraph {
		hashes = append(hashes, hg.GroundHash())
		res.GraphHash = digest.CombineUnordered(hashes...)
		hg.Mux(res.GraphHash)
		res.Graph = hg.Label()
	} else {
		for _, t := range data {
			if t.IsGround() {
				merged = append(merged, t)
			}
		}
		res.Graph = rdf.SortedSet(merged)
	}

	if distinct := hg.DistinctBlankDigests(); distinct != uniqueBlanks {
		return nil, colour.NewCountCollisionError(uniqueBlanks, distinct)
	}

	res.HashGraph = hg
	res.BlankNodes = hg.BlankCount()
	l.logger.Debug("labelled graph",
		"blank_nodes", res.BlankNodes,
		"partitions", res.Partitions,
		"colour_iterations", res.ColourIterations,
		"leaves", res.Leaves,
	)
	return res, nil
}
