// Package hashgraph stores a graph together with a digest per node.
//
// Constants hash to the digest of their N-Triples text and never change.
// Blank nodes start at the blank hash (the digest of the empty string) and are
// recoloured by the colouring engine. A Graph can be branched cheaply: the
// triples and constant digests live in a shared arena and only the blank
// digests are copied.
package hashgraph

import (
	"maps"
	"slices"

	"github.com/roach88/blabel/internal/digest"
	"github.com/roach88/blabel/internal/partition"
	"github.com/roach88/blabel/internal/rdf"
)

// LabelMarker prefixes every canonical blank node label.
const LabelMarker = "SK00"

// arena is shared by a graph and all of its branches.
type arena struct {
	fn        digest.Function
	blankHash digest.Digest
	triples   []rdf.Triple
	static    map[rdf.Node]digest.Digest
}

// Graph is a triple list with per-node digests.
type Graph struct {
	shared  *arena
	dynamic map[rdf.Node]digest.Digest
}

// New creates an empty graph hashed with fn.
func New(fn digest.Function) *Graph {
	return &Graph{
		shared: &arena{
			fn:        fn,
			blankHash: digest.HashString(fn, ""),
			static:    make(map[rdf.Node]digest.Digest),
		},
		dynamic: make(map[rdf.Node]digest.Digest),
	}
}

// Add appends a triple without checking for duplicates.
func (g *Graph) Add(t rdf.Triple) {
	g.shared.triples = append(g.shared.triples, t)
	g.ensure(t.S)
	g.ensure(t.P)
	g.ensure(t.O)
}

// AddTuple appends the first three nodes of a tuple. Shorter tuples are
// rejected with an *rdf.ArityError.
func (g *Graph) AddTuple(nodes ...rdf.Node) error {
	t, err := rdf.NewTriple(nodes...)
	if err != nil {
		return err
	}
	g.Add(t)
	return nil
}

func (g *Graph) ensure(n rdf.Node) {
	if n.IsBlank() {
		if _, ok := g.dynamic[n]; !ok {
			g.dynamic[n] = g.shared.blankHash
		}
		return
	}
	if _, ok := g.shared.static[n]; !ok {
		g.shared.static[n] = digest.HashString(g.shared.fn, n.String())
	}
}

// Branch returns a graph sharing g's triples and constant digests with a
// private copy of the blank digests. Triples must not be added to either
// graph afterwards.
func (g *Graph) Branch() *Graph {
	return &Graph{shared: g.shared, dynamic: maps.Clone(g.dynamic)}
}

// Function returns the hash function of the graph.
func (g *Graph) Function() digest.Function {
	return g.shared.fn
}

// BlankHash returns the initial digest of every blank node.
func (g *Graph) BlankHash() digest.Digest {
	return g.shared.blankHash
}

// Hash returns the current digest of n.
func (g *Graph) Hash(n rdf.Node) digest.Digest {
	if n.IsBlank() {
		return g.dynamic[n]
	}
	return g.shared.static[n]
}

// SetHash replaces the digest of blank node n.
func (g *Graph) SetHash(n rdf.Node, d digest.Digest) {
	g.dynamic[n] = d
}

// Triples returns the triples in insertion order. The slice is shared and
// must not be modified.
func (g *Graph) Triples() []rdf.Triple {
	return g.shared.triples
}

// BlankNodes returns the blank nodes of the graph in node order.
func (g *Graph) BlankNodes() []rdf.Node {
	return slices.SortedFunc(maps.Keys(g.dynamic), rdf.Compare)
}

// BlankCount returns the number of blank nodes.
func (g *Graph) BlankCount() int {
	return len(g.dynamic)
}

// BlankDigests returns a copy of the blank node digests.
func (g *Graph) BlankDigests() map[rdf.Node]digest.Digest {
	return maps.Clone(g.dynamic)
}

// DistinctBlankDigests counts the distinct digests among blank nodes.
func (g *Graph) DistinctBlankDigests() int {
	seen := make(map[digest.Digest]struct{}, len(g.dynamic))
	for _, d := range g.dynamic {
		seen[d] = struct{}{}
	}
	return len(seen)
}

// Update overwrites the digests of the given blank nodes.
func (g *Graph) Update(digests map[rdf.Node]digest.Digest) {
	maps.Copy(g.dynamic, digests)
}

// GraphHash is the unordered combination of every triple's ordered digest,
// seeded with the blank hash.
func (g *Graph) GraphHash() digest.Digest {
	return g.fold(func(rdf.Triple) bool { return true })
}

// GroundHash is GraphHash restricted to triples without a blank subject or
// object.
func (g *Graph) GroundHash() digest.Digest {
	return g.fold(func(t rdf.Triple) bool { return !t.HasBlank() })
}

func (g *Graph) fold(keep func(rdf.Triple) bool) digest.Digest {
	acc := g.shared.blankHash
	for _, t := range g.shared.triples {
		if !keep(t) {
			continue
		}
		td := digest.CombineOrdered(g.Hash(t.S), g.Hash(t.P), g.Hash(t.O))
		acc = digest.CombineUnordered(td, acc)
	}
	return acc
}

// Mux combines extra into the digest of every blank node.
func (g *Graph) Mux(extra digest.Digest) {
	for n, d := range g.dynamic {
		g.dynamic[n] = digest.CombineOrdered(d, extra)
	}
}

// Partition splits the graph into one graph per connected component of blank
// nodes. Two blank nodes are connected when one is the subject and the other
// the object of a triple. Ground triples are dropped. Components are returned
// in order of their smallest blank node and keep the current blank digests.
func (g *Graph) Partition() []*Graph {
	uf := partition.NewUnionFind(rdf.Compare)
	for _, t := range g.shared.triples {
		if t.S.IsBlank() && t.O.IsBlank() && t.S != t.O {
			uf.AddPair(t.S, t.O)
		}
	}

	byPivot := make(map[rdf.Node]*Graph)
	for _, t := range g.shared.triples {
		var b rdf.Node
		switch {
		case t.S.IsBlank():
			b = t.S
		case t.O.IsBlank():
			b = t.O
		default:
			continue
		}
		pivot := b
		if class := uf.Class(b); class != nil {
			pivot = class[0]
		}
		part, ok := byPivot[pivot]
		if !ok {
			part = New(g.shared.fn)
			byPivot[pivot] = part
		}
		part.Add(t)
	}

	pivots := slices.SortedFunc(maps.Keys(byPivot), rdf.Compare)
	parts := make([]*Graph, len(pivots))
	for i, p := range pivots {
		part := byPivot[p]
		for n := range part.dynamic {
			part.dynamic[n] = g.dynamic[n]
		}
		parts[i] = part
	}
	return parts
}

// Label rewrites every blank node to a blank node named by its digest and
// returns the sorted, deduplicated result.
func (g *Graph) Label() []rdf.Triple {
	out := make([]rdf.Triple, len(g.shared.triples))
	for i, t := range g.shared.triples {
		out[i] = rdf.Triple{S: g.labelled(t.S), P: g.labelled(t.P), O: g.labelled(t.O)}
	}
	return rdf.SortedSet(out)
}

func (g *Graph) labelled(n rdf.Node) rdf.Node {
	if !n.IsBlank() {
		return n
	}
	return rdf.Blank(LabelMarker + g.dynamic[n].Hex())
}
