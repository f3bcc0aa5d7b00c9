// Package lean computes the core of an RDF graph: the smallest subgraph
// that the whole graph maps into by renaming blank nodes.
//
// Leaning runs in phases. Blank nodes whose incident edges are covered by
// another node are removed first. Blank nodes whose ground edges no other
// node covers are then fixed to themselves. What remains is a query over
// the unfixed blank nodes, which a Strategy evaluates against the data
// looking for a homomorphism onto fewer blank nodes. Each reduction is
// applied and the result leaned again until no reduction exists.
package lean

import (
	"context"
	"log/slog"
	"math/rand/v2"

	"github.com/roach88/blabel/internal/rdf"
)

// Option configures a Leaner.
type Option func(*Leaner)

// WithStrategy sets the homomorphism search strategy. The default is a
// pruning depth-first search.
func WithStrategy(s Strategy) Option {
	return func(l *Leaner) {
		l.strategy = s
	}
}

// WithRandomise shuffles candidate bindings with a generator seeded by seed.
func WithRandomise(seed uint64) Option {
	return func(l *Leaner) {
		l.randomise = true
		l.seed = seed
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Leaner) {
		l.logger = logger
	}
}

// Leaner removes redundant blank nodes from graphs. A Leaner may be shared.
type Leaner struct {
	strategy  Strategy
	randomise bool
	seed      uint64
	logger    *slog.Logger
}

// New creates a Leaner with the given options applied over the defaults.
func New(opts ...Option) *Leaner {
	l := &Leaner{
		strategy: NewDFS(true),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Result is the outcome of leaning a graph.
type Result struct {
	// Triples is the sorted lean graph.
	Triples []rdf.Triple

	// CoreMap maps every blank node of the input to the term it was
	// collapsed onto. Blank nodes that survive map to themselves.
	CoreMap Binding

	// Depth counts the homomorphism searches that ran, including the last
	// one that found no reduction.
	Depth int

	Joins     int64
	Solutions int64
}

// Lean computes the lean form of triples. Duplicate triples are ignored.
func (l *Leaner) Lean(ctx context.Context, triples []rdf.Triple) (*Result, error) {
	data := rdf.SortedSet(triples)
	if !rdf.HasBlankNodes(data) {
		l.logger.Debug("no blank nodes, graph is lean", "triples", len(data))
		return &Result{Triples: data, CoreMap: Binding{}}, nil
	}
	var rng *rand.Rand
	if l.randomise {
		rng = rand.New(rand.NewPCG(l.seed, l.seed^0x9e3779b97f4a7c15))
	}

	res, err := l.lean(ctx, data, rng)
	if err != nil {
		return nil, err
	}
	for _, b := range rdf.BlankNodes(data) {
		if _, ok := res.CoreMap[b]; !ok {
			return nil, NewIncompleteCoreError(b)
		}
	}
	l.logger.Debug("leaned graph",
		"strategy", l.strategy.Name(),
		"input", len(data),
		"output", len(res.Triples),
		"depth", res.Depth,
		"joins", res.Joins)
	return res, nil
}

func (l *Leaner) lean(ctx context.Context, data []rdf.Triple, rng *rand.Rand) (*Result, error) {
	// Remove blank nodes covered by a neighbour until nothing changes.
	input := data
	nonLean := make(Binding)
	var blanks []rdf.Node
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		ix := indexAllEdges(input)
		if len(ix.blanks) == 0 {
			return l.finish(&Result{Triples: input, CoreMap: make(Binding)}, nonLean)
		}
		before := len(nonLean)
		var err error
		input, blanks, nonLean, err = filterTrivial(ctx, input, ix, nonLean)
		if err != nil {
			return nil, err
		}
		if len(nonLean) == before {
			break
		}
	}

	// Fix blank nodes whose ground edges nothing else covers.
	fixed := make(map[rdf.Node]bool)
	var cands map[rdf.Node]nodeSet
	for {
		before := len(fixed)
		cands = findGroundCandidates(blanks, fixed, indexGroundEdges(input, fixed))
		if len(fixed) == before {
			break
		}
	}

	core := make(Binding, len(blanks))
	for b := range fixed {
		core[b] = b
	}
	if len(fixed) == len(blanks) {
		return l.finish(&Result{Triples: input, CoreMap: core}, nonLean)
	}

	ix, query, vars := buildIndex(input, fixed, cands, rng)
	if len(query) == 0 {
		l.logger.Warn("unfixed blank nodes without a query, keeping them", "blanks", len(blanks)-len(fixed))
		for _, b := range blanks {
			core[b] = b
		}
		return l.finish(&Result{Triples: input, CoreMap: core}, nonLean)
	}
	query = orderPatterns(query, ix)
	l.logger.Debug("searching for reducing homomorphism",
		"query", len(query),
		"variables", len(vars),
		"fixed", len(fixed))

	homo, stats, err := l.strategy.FindReducingBinding(ctx, ix, query, core)
	if err != nil {
		return nil, err
	}

	var res *Result
	if homo == nil {
		for _, b := range blanks {
			core[b] = b
		}
		res = &Result{Triples: input, CoreMap: core, Depth: 1}
	} else {
		for _, b := range blanks {
			if _, ok := homo[b]; !ok {
				homo[b] = b
			}
		}
		sub, err := l.lean(ctx, Apply(input, homo), rng)
		if err != nil {
			return nil, err
		}
		cm := retract(compose(homo, sub.CoreMap))
		res = &Result{
			Triples:   Apply(input, cm),
			CoreMap:   cm,
			Depth:     sub.Depth + 1,
			Joins:     sub.Joins,
			Solutions: sub.Solutions,
		}
	}
	res.Joins += stats.Joins
	res.Solutions += stats.Solutions
	return l.finish(res, nonLean)
}

// finish folds the blank nodes removed before the search into the core map.
// Each removed node follows its chain of removals and is then sent through
// the search's map once.
func (l *Leaner) finish(res *Result, nonLean Binding) (*Result, error) {
	if len(nonLean) == 0 {
		return res, nil
	}
	closed, err := closure(nonLean)
	if err != nil {
		return nil, err
	}
	for k, v := range closed {
		if h, ok := res.CoreMap[v]; ok {
			v = h
		}
		res.CoreMap[k] = v
	}
	return res, nil
}
