package lean

import (
	"slices"

	"github.com/emirpasic/gods/sets/treeset"

	"github.com/roach88/blabel/internal/rdf"
)

// varEstimate tracks the smallest selectivity seen for a query variable.
type varEstimate struct {
	v    rdf.Node
	card int
}

func compareVarEstimates(a, b interface{}) int {
	x, y := a.(*varEstimate), b.(*varEstimate)
	if x.card != y.card {
		return x.card - y.card
	}
	return rdf.Compare(x.v, y.v)
}

// patternEstimate is a query pattern with its ascending cardinalities.
type patternEstimate struct {
	t     rdf.Triple
	cards [3]int
}

func comparePatternEstimates(a, b interface{}) int {
	x, y := a.(*patternEstimate), b.(*patternEstimate)
	for i := range x.cards {
		if x.cards[i] != y.cards[i] {
			return x.cards[i] - y.cards[i]
		}
	}
	return rdf.CompareTriples(x.t, y.t)
}

// orderPatterns sorts the query so that each pattern after the first
// shares a variable with an earlier one where possible, starting from the
// most selective pattern and expanding through the most selective
// variable.
func orderPatterns(query []rdf.Triple, ix *Index) []rdf.Triple {
	estimates := make(map[rdf.Node]*varEstimate)
	byVar := make(map[rdf.Node]*treeset.Set)

	estimate := func(v, p rdf.Node) int {
		card := ix.subjects(p)
		if cs, ok := ix.candidates[v]; ok && len(cs) < card {
			card = len(cs)
		}
		e, ok := estimates[v]
		if !ok {
			e = &varEstimate{v: v, card: card}
			estimates[v] = e
		} else if card < e.card {
			e.card = card
		}
		return e.card
	}

	patterns := make([]*patternEstimate, 0, len(query))
	for _, t := range query {
		pe := &patternEstimate{t: t}
		pe.cards = [3]int{estimate(t.S, t.P), ix.predCard[t.P], estimate(t.O, t.P)}
		slices.Sort(pe.cards[:])
		patterns = append(patterns, pe)
		for _, v := range []rdf.Node{t.S, t.O} {
			set, ok := byVar[v]
			if !ok {
				set = treeset.NewWith(comparePatternEstimates)
				byVar[v] = set
			}
			set.Add(pe)
		}
	}
	slices.SortFunc(patterns, func(a, b *patternEstimate) int { return comparePatternEstimates(a, b) })

	queue := treeset.NewWith(compareVarEstimates)
	done := make(map[rdf.Triple]bool, len(query))
	queued := make(map[rdf.Node]bool)
	ordered := make([]rdf.Triple, 0, len(query))

	take := func(pe *patternEstimate) {
		done[pe.t] = true
		ordered = append(ordered, pe.t)
		for _, v := range []rdf.Node{pe.t.S, pe.t.O} {
			if !queued[v] {
				queued[v] = true
				queue.Add(estimates[v])
			}
		}
	}

	next := 0
	for len(ordered) < len(patterns) {
		if queue.Empty() {
			for ; next < len(patterns); next++ {
				if !done[patterns[next].t] {
					take(patterns[next])
					next++
					break
				}
			}
			continue
		}
		it := queue.Iterator()
		it.First()
		ve := it.Value().(*varEstimate)
		queue.Remove(ve)
		for _, item := range byVar[ve.v].Values() {
			if pe := item.(*patternEstimate); !done[pe.t] {
				take(pe)
			}
		}
	}
	return ordered
}
