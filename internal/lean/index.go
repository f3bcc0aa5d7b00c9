package lean

import (
	"math/rand/v2"

	"github.com/roach88/blabel/internal/rdf"
)

// Index answers triple-pattern lookups over the data being leaned. Blank
// nodes that are not fixed act as query variables and may only bind to
// their ground candidates.
type Index struct {
	pos      map[rdf.Node]map[rdf.Node]nodeSet
	pso      map[rdf.Node]map[rdf.Node]nodeSet
	predCard map[rdf.Node]int

	candidates map[rdf.Node]nodeSet
	rng        *rand.Rand
}

// buildIndex indexes data and extracts the query: every triple whose
// subject and object are both unfixed blank nodes.
func buildIndex(data []rdf.Triple, fixed map[rdf.Node]bool, candidates map[rdf.Node]nodeSet, rng *rand.Rand) (*Index, []rdf.Triple, []rdf.Node) {
	ix := &Index{
		pos:        make(map[rdf.Node]map[rdf.Node]nodeSet),
		pso:        make(map[rdf.Node]map[rdf.Node]nodeSet),
		predCard:   make(map[rdf.Node]int),
		candidates: candidates,
		rng:        rng,
	}
	free := func(n rdf.Node) bool { return n.IsBlank() && !fixed[n] }

	var query []rdf.Triple
	vars := make(nodeSet)
	for _, t := range data {
		if free(t.S) && free(t.O) {
			query = append(query, t)
			vars[t.S] = struct{}{}
			vars[t.O] = struct{}{}
		}
		put(ix.pos, t.P, t.O, t.S)
		put(ix.pso, t.P, t.S, t.O)
		ix.predCard[t.P]++
	}
	return ix, query, sortedNodes(vars)
}

func put(m map[rdf.Node]map[rdf.Node]nodeSet, a, b, c rdf.Node) {
	inner, ok := m[a]
	if !ok {
		inner = make(map[rdf.Node]nodeSet)
		m[a] = inner
	}
	vals, ok := inner[b]
	if !ok {
		vals = make(nodeSet)
		inner[b] = vals
	}
	vals[c] = struct{}{}
}

// compatible reports whether variable v may bind to n.
func (ix *Index) compatible(v, n rdf.Node) bool {
	if v == n {
		return true
	}
	cs, ok := ix.candidates[v]
	if !ok {
		return true
	}
	return cs.has(n)
}

// subjects returns how many distinct subjects carry predicate p.
func (ix *Index) subjects(p rdf.Node) int {
	return len(ix.pso[p])
}
