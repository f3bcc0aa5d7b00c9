package lean

import (
	"slices"

	"github.com/roach88/blabel/internal/rdf"
)

// bindings holds candidate values for the variables of one pattern. A nil rows
// slice means the pattern cannot match; a single empty row means it
// matches without binding anything new.
type bindings struct {
	vars []rdf.Node
	rows [][]rdf.Node
}

func (b bindings) failed() bool { return b.rows == nil }

// bindCount ranks a candidate value. Ground values come first, then values
// already used by more variables, then values other than the variable
// itself.
type bindCount struct {
	node  rdf.Node
	count int
	self  bool
}

func newBindCount(n rdf.Node, timesBound map[rdf.Node]int, v rdf.Node) bindCount {
	return bindCount{node: n, count: timesBound[n], self: n == v}
}

func compareBindCounts(a, b bindCount) int {
	if a.node.IsBlank() != b.node.IsBlank() {
		if a.node.IsBlank() {
			return 1
		}
		return -1
	}
	if a.count != b.count {
		return b.count - a.count
	}
	if a.self != b.self {
		if a.self {
			return 1
		}
		return -1
	}
	return rdf.Compare(a.node, b.node)
}

// bindPair ranks a subject/object candidate pair by its worse member, then
// its better member.
type bindPair struct {
	s, o    bindCount
	sBigger bool
}

func newBindPair(s, o bindCount) bindPair {
	if s == o {
		s.count++
		o.count++
		return bindPair{s: s, o: o}
	}
	return bindPair{s: s, o: o, sBigger: compareBindCounts(s, o) > 0}
}

func (p bindPair) max() bindCount {
	if p.sBigger {
		return p.s
	}
	return p.o
}

func (p bindPair) min() bindCount {
	if p.sBigger {
		return p.o
	}
	return p.s
}

func compareBindPairs(a, b bindPair) int {
	if c := compareBindCounts(a.max(), b.max()); c != 0 {
		return c
	}
	if c := compareBindCounts(a.min(), b.min()); c != 0 {
		return c
	}
	switch {
	case a.sBigger == b.sBigger:
		return 0
	case a.sBigger:
		return 1
	default:
		return -1
	}
}

// bindings returns the candidate values for the unbound variables of
// pattern given partial, most promising first.
func (ix *Index) bindings(pattern rdf.Triple, partial Binding, timesBound map[rdf.Node]int) bindings {
	s, sBound := resolve(pattern.S, partial)
	o, oBound := resolve(pattern.O, partial)
	p := pattern.P

	var out bindings
	switch {
	case !sBound && !oBound:
		same := pattern.S == pattern.O
		if same {
			out.vars = []rdf.Node{pattern.S}
		} else {
			out.vars = []rdf.Node{pattern.S, pattern.O}
		}
		var pairs []bindPair
		for ov, subs := range ix.pos[p] {
			if !ix.compatible(pattern.O, ov) {
				continue
			}
			oc := newBindCount(ov, timesBound, pattern.O)
			for sv := range subs {
				if !ix.compatible(pattern.S, sv) {
					continue
				}
				if same && sv != ov {
					continue
				}
				pairs = append(pairs, newBindPair(newBindCount(sv, timesBound, pattern.S), oc))
			}
		}
		if len(pairs) == 0 {
			return out
		}
		slices.SortFunc(pairs, compareBindPairs)
		out.rows = make([][]rdf.Node, len(pairs))
		for i, pr := range pairs {
			if same {
				out.rows[i] = []rdf.Node{pr.s.node}
			} else {
				out.rows[i] = []rdf.Node{pr.s.node, pr.o.node}
			}
		}

	case sBound && oBound:
		if !ix.pso[p][s].has(o) {
			return out
		}
		out.rows = [][]rdf.Node{{}}
		return out

	default:
		v := pattern.O
		vals := ix.pso[p][s]
		if !sBound {
			v = pattern.S
			vals = ix.pos[p][o]
		}
		out.vars = []rdf.Node{v}
		var counts []bindCount
		for n := range vals {
			if ix.compatible(v, n) {
				counts = append(counts, newBindCount(n, timesBound, v))
			}
		}
		if len(counts) == 0 {
			return out
		}
		slices.SortFunc(counts, compareBindCounts)
		out.rows = make([][]rdf.Node, len(counts))
		for i, c := range counts {
			out.rows[i] = []rdf.Node{c.node}
		}
	}

	if ix.rng != nil {
		ix.rng.Shuffle(len(out.rows), func(i, j int) { out.rows[i], out.rows[j] = out.rows[j], out.rows[i] })
	}
	return out
}

// resolve returns the term n currently stands for and whether it is bound.
// Constants are always bound.
func resolve(n rdf.Node, partial Binding) (rdf.Node, bool) {
	if !n.IsBlank() {
		return n, true
	}
	v, ok := partial[n]
	return v, ok
}
