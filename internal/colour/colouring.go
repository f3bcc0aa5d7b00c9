// Package colour computes canonical colourings of blank nodes.
//
// Colour refinement repeatedly rehashes every blank node from its neighbourhood
// until the number of colours stops growing. When some blank nodes remain
// indistinguishable the search individualizes each member of the first
// non-trivial group in turn and refines again, collecting every complete
// colouring as a leaf. The smallest leaf graph is canonical. Automorphisms
// found between leaves prune sibling branches that would lead to the same
// leaves.
package colour

import (
	"context"
	"errors"
	"log/slog"

	"github.com/emirpasic/gods/maps/treemap"

	"github.com/roach88/blabel/internal/digest"
	"github.com/roach88/blabel/internal/hashgraph"
	"github.com/roach88/blabel/internal/partition"
	"github.com/roach88/blabel/internal/rdf"
)

// ErrNotExecuted is returned by Canonical before a successful Execute.
var ErrNotExecuted = errors.New("colouring has not been executed")

// Option configures a Colouring.
type Option func(*Colouring)

// WithPrune enables or disables automorphism pruning. Pruning is on by
// default; disabling it only makes sense when testing.
func WithPrune(prune bool) Option {
	return func(c *Colouring) {
		c.search.prune = prune
	}
}

// WithLogger sets the logger for per-round and per-branch detail.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Colouring) {
		c.search.logger = logger
	}
}

// Colouring runs the refinement search over one hash graph.
type Colouring struct {
	root     *state
	search   *search
	executed bool
}

// Result is a canonical labelling of one graph.
type Result struct {
	// Graph is the sorted labelled graph.
	Graph []rdf.Triple

	// HashGraph carries the final blank node digests.
	HashGraph *hashgraph.Graph

	// Hash identifies the graph together with the mux it was labelled with.
	Hash digest.Digest
}

// state is one node of the search tree.
type state struct {
	g          *hashgraph.Graph
	path       []rdf.Node
	refinement *partition.Refinement
	classes    int
}

// search holds what all branches of one colouring share.
type search struct {
	prune      bool
	logger     *slog.Logger
	leaves     *treemap.Map
	explored   int
	iterations []int
}

// New prepares a colouring of g. The graph's blank digests are modified by
// Execute.
func New(g *hashgraph.Graph, opts ...Option) *Colouring {
	c := &Colouring{
		root: &state{g: g},
		search: &search{
			prune:  true,
			logger: slog.Default(),
			leaves: treemap.NewWith(compareLeafGraphs),
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func compareLeafGraphs(a, b interface{}) int {
	return rdf.CompareGraphs(a.([]rdf.Triple), b.([]rdf.Triple))
}

// Execute refines the graph and, if needed, searches for every canonical leaf.
func (c *Colouring) Execute(ctx context.Context) error {
	if err := c.search.execute(ctx, c.root); err != nil {
		return err
	}
	c.executed = true
	return nil
}

// Canonical returns the labelling of the smallest leaf with every blank
// digest combined with hash(graph) and mux.
func (c *Colouring) Canonical(mux digest.Digest) (*Result, error) {
	if !c.executed || c.search.leaves.Empty() {
		return nil, ErrNotExecuted
	}
	_, v := c.search.leaves.Min()
	leaf := v.([]*state)[0]

	comb := digest.CombineOrdered(leaf.g.GraphHash(), mux)
	g := leaf.g.Branch()
	g.Mux(comb)
	return &Result{Graph: g.Label(), HashGraph: g, Hash: comb}, nil
}

// CanonicalIndex is Canonical with the mux HashInt(i).
func (c *Colouring) CanonicalIndex(i int32) (*Result, error) {
	return c.Canonical(digest.HashInt(c.root.g.Function(), i))
}

// Iterations returns the colouring rounds run, summed over all branches.
func (c *Colouring) Iterations() int {
	total := 0
	for _, r := range c.search.iterations {
		total += r
	}
	return total
}

// Leaves returns the number of distinct leaf graphs found.
func (c *Colouring) Leaves() int {
	return c.search.leaves.Size()
}

// Explored returns the number of leaves visited, counting repeats.
func (c *Colouring) Explored() int {
	return c.search.explored
}

func (s *search) addLeaf(st *state) {
	graph := st.g.Label()
	var states []*state
	if v, ok := s.leaves.Get(graph); ok {
		states = v.([]*state)
	}
	s.leaves.Put(graph, append(states, st))
	s.explored++
}
