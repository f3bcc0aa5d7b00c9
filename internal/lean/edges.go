package lean

import (
	"context"
	"slices"

	"github.com/roach88/blabel/internal/partition"
	"github.com/roach88/blabel/internal/rdf"
)

// kindWildcard is a node kind that no term of a graph has.
const kindWildcard rdf.Kind = 0xff

// wildcard stands in for an unfixed blank neighbour when matching edges
// against ground structure.
var wildcard = rdf.Node{Kind: kindWildcard}

// edge is one incident (predicate, neighbour, direction) of a node.
type edge struct {
	pred rdf.Node
	val  rdf.Node
	out  bool
}

func compareEdges(a, b edge) int {
	if a.out != b.out {
		if a.out {
			return 1
		}
		return -1
	}
	if c := rdf.Compare(a.val, b.val); c != 0 {
		return c
	}
	return rdf.Compare(a.pred, b.pred)
}

// edgeIndex maps nodes to their sorted edge sets and edges to the sorted
// nodes that have them.
type edgeIndex struct {
	nodeEdges map[rdf.Node][]edge
	edgeNodes map[edge][]rdf.Node
	blanks    []rdf.Node
}

type edgeIndexBuilder struct {
	nodeEdges map[rdf.Node]map[edge]struct{}
	edgeNodes map[edge]map[rdf.Node]struct{}
	blanks    map[rdf.Node]struct{}
}

func newEdgeIndexBuilder() *edgeIndexBuilder {
	return &edgeIndexBuilder{
		nodeEdges: make(map[rdf.Node]map[edge]struct{}),
		edgeNodes: make(map[edge]map[rdf.Node]struct{}),
		blanks:    make(map[rdf.Node]struct{}),
	}
}

func (b *edgeIndexBuilder) add(n rdf.Node, e edge) {
	es, ok := b.nodeEdges[n]
	if !ok {
		es = make(map[edge]struct{})
		b.nodeEdges[n] = es
	}
	es[e] = struct{}{}

	ns, ok := b.edgeNodes[e]
	if !ok {
		ns = make(map[rdf.Node]struct{})
		b.edgeNodes[e] = ns
	}
	ns[n] = struct{}{}
}

func (b *edgeIndexBuilder) build() *edgeIndex {
	ix := &edgeIndex{
		nodeEdges: make(map[rdf.Node][]edge, len(b.nodeEdges)),
		edgeNodes: make(map[edge][]rdf.Node, len(b.edgeNodes)),
	}
	for n, es := range b.nodeEdges {
		sorted := make([]edge, 0, len(es))
		for e := range es {
			sorted = append(sorted, e)
		}
		slices.SortFunc(sorted, compareEdges)
		ix.nodeEdges[n] = sorted
	}
	for e, ns := range b.edgeNodes {
		ix.edgeNodes[e] = sortedNodes(ns)
	}
	ix.blanks = sortedNodes(b.blanks)
	return ix
}

// indexAllEdges indexes every node's full neighbourhood.
func indexAllEdges(data []rdf.Triple) *edgeIndex {
	b := newEdgeIndexBuilder()
	for _, t := range data {
		b.add(t.O, edge{pred: t.P, val: t.S, out: false})
		b.add(t.S, edge{pred: t.P, val: t.O, out: true})
		if t.S.IsBlank() {
			b.blanks[t.S] = struct{}{}
		}
		if t.O.IsBlank() {
			b.blanks[t.O] = struct{}{}
		}
	}
	return b.build()
}

// indexGroundEdges indexes each node's edges towards ground or fixed
// neighbours, plus one wildcard edge per predicate and direction.
func indexGroundEdges(data []rdf.Triple, fixed map[rdf.Node]bool) *edgeIndex {
	b := newEdgeIndexBuilder()
	free := func(n rdf.Node) bool { return n.IsBlank() && !fixed[n] }
	for _, t := range data {
		if !free(t.S) {
			b.add(t.O, edge{pred: t.P, val: t.S, out: false})
		}
		b.add(t.O, edge{pred: t.P, val: wildcard, out: false})
		if !free(t.O) {
			b.add(t.S, edge{pred: t.P, val: t.O, out: true})
		}
		b.add(t.S, edge{pred: t.P, val: wildcard, out: true})
	}
	return b.build()
}

// minNodes returns the smallest set of nodes sharing one of edges, stopping
// early once a set of size one is seen.
func (ix *edgeIndex) minNodes(edges []edge) []rdf.Node {
	var smallest []rdf.Node
	for _, e := range edges {
		ns := ix.edgeNodes[e]
		if smallest == nil || len(ns) < len(smallest) {
			smallest = ns
			if len(smallest) == 1 {
				break
			}
		}
	}
	return smallest
}

// diff compares two sorted edge sets and reports whether a has an edge b
// lacks and whether b has an edge a lacks.
func diff(a, b []edge) (aExtra, bExtra bool) {
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch c := compareEdges(a[i], b[j]); {
		case c == 0:
			i++
			j++
		case c < 0:
			aExtra = true
			i++
		default:
			bExtra = true
			j++
		}
		if aExtra && bExtra {
			return
		}
	}
	return aExtra || i < len(a), bExtra || j < len(b)
}

// filterTrivial finds blank nodes whose edges are covered by another node
// and maps them there. Mappings are added to nonLean and closed. It returns
// the data without any triple touching a mapped blank node, and the blank
// nodes that remain.
func filterTrivial(ctx context.Context, data []rdf.Triple, ix *edgeIndex, nonLean Binding) ([]rdf.Triple, []rdf.Node, Binding, error) {
	mapped := make(Binding)
	equal := partition.NewUnionFind(rdf.Compare)

	for _, b := range ix.blanks {
		if err := ctx.Err(); err != nil {
			return nil, nil, nil, err
		}
		if equal.Class(b) != nil {
			continue
		}
		edges := ix.nodeEdges[b]
		covering := ix.minNodes(edges)
		if len(covering) == 1 {
			continue
		}
		for _, n := range covering {
			if n == b {
				continue
			}
			extra, missing := diff(edges, ix.nodeEdges[n])
			if extra {
				continue
			}
			if missing || n.IsConstant() {
				mapped[b] = n
				break
			}
			equal.AddPair(b, n)
		}
	}

	for _, class := range equal.Classes() {
		target := class[0]
		if m, ok := mapped[class[0]]; ok {
			target = m
		}
		for _, rest := range class[1:] {
			mapped[rest] = target
		}
	}

	for k, v := range mapped {
		nonLean[k] = v
	}
	closed, err := closure(nonLean)
	if err != nil {
		return nil, nil, nil, err
	}

	filtered := make([]rdf.Triple, 0, len(data))
	for _, t := range data {
		if _, ok := closed[t.S]; ok {
			continue
		}
		if _, ok := closed[t.O]; ok {
			continue
		}
		filtered = append(filtered, t)
	}
	remaining := make([]rdf.Node, 0, len(ix.blanks))
	for _, b := range ix.blanks {
		if _, ok := closed[b]; !ok {
			remaining = append(remaining, b)
		}
	}
	return filtered, remaining, closed, nil
}

// nodeSet is an unordered set of nodes.
type nodeSet map[rdf.Node]struct{}

func (s nodeSet) has(n rdf.Node) bool {
	_, ok := s[n]
	return ok
}

func sortedNodes[V any](m map[rdf.Node]V) []rdf.Node {
	out := make([]rdf.Node, 0, len(m))
	for n := range m {
		out = append(out, n)
	}
	slices.SortFunc(out, rdf.Compare)
	return out
}

// findGroundCandidates collects, for each unfixed blank node, the nodes
// whose ground edges cover its own. A blank node with no such node other
// than itself becomes fixed.
func findGroundCandidates(blanks []rdf.Node, fixed map[rdf.Node]bool, ix *edgeIndex) map[rdf.Node]nodeSet {
	cands := make(map[rdf.Node]nodeSet)
	for _, b := range blanks {
		if fixed[b] {
			continue
		}
		edges, ok := ix.nodeEdges[b]
		if !ok {
			continue
		}
		cs := make(nodeSet)
		if covering := ix.minNodes(edges); len(covering) != 1 {
			for _, n := range covering {
				if n == b {
					continue
				}
				if extra, _ := diff(edges, ix.nodeEdges[n]); !extra {
					cs[n] = struct{}{}
				}
			}
		}
		if len(cs) == 0 {
			fixed[b] = true
		}
		cs[b] = struct{}{}
		cands[b] = cs
	}
	return cands
}
