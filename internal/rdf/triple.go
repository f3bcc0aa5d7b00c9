package rdf

import (
	"slices"
)

// Triple is a subject-predicate-object statement.
type Triple struct {
	S, P, O Node
}

// NewTriple builds a triple from a tuple of nodes.
//
// Tuples shorter than three nodes are rejected with an *ArityError. Longer
// tuples (for example N-Quads with a graph label) keep their first three
// nodes.
func NewTriple(nodes ...Node) (Triple, error) {
	if len(nodes) < 3 {
		return Triple{}, NewArityError(len(nodes), nodes)
	}
	return Triple{S: nodes[0], P: nodes[1], O: nodes[2]}, nil
}

// At returns the node at position i (0 subject, 1 predicate, 2 object).
func (t Triple) At(i int) Node {
	switch i {
	case 0:
		return t.S
	case 1:
		return t.P
	default:
		return t.O
	}
}

// HasBlank reports whether the subject or object is a blank node.
func (t Triple) HasBlank() bool {
	return t.S.IsBlank() || t.O.IsBlank()
}

// IsGround reports whether no position of the triple holds a blank node.
func (t Triple) IsGround() bool {
	return !t.S.IsBlank() && !t.P.IsBlank() && !t.O.IsBlank()
}

// String returns the N-Triples statement for t, including the final " .".
func (t Triple) String() string {
	return t.S.String() + " " + t.P.String() + " " + t.O.String() + " ."
}

// CompareTriples orders triples lexicographically by subject, predicate, object.
func CompareTriples(a, b Triple) int {
	if c := Compare(a.S, b.S); c != 0 {
		return c
	}
	if c := Compare(a.P, b.P); c != 0 {
		return c
	}
	return Compare(a.O, b.O)
}

// SortedSet returns a sorted copy of triples with duplicates removed.
func SortedSet(triples []Triple) []Triple {
	out := slices.Clone(triples)
	slices.SortFunc(out, CompareTriples)
	return slices.CompactFunc(out, func(a, b Triple) bool { return a == b })
}

// CompareGraphs orders sorted triple sets by size first, then triple by triple.
func CompareGraphs(a, b []Triple) int {
	if len(a) != len(b) {
		if len(a) < len(b) {
			return -1
		}
		return 1
	}
	for i := range a {
		if c := CompareTriples(a[i], b[i]); c != 0 {
			return c
		}
	}
	return 0
}

// HasBlankNodes reports whether any triple mentions a blank node in subject
// or object position.
func HasBlankNodes(triples []Triple) bool {
	for _, t := range triples {
		if t.HasBlank() {
			return true
		}
	}
	return false
}

// BlankNodes returns the sorted, distinct blank nodes in subject or object
// position.
func BlankNodes(triples []Triple) []Node {
	seen := make(map[Node]struct{})
	var out []Node
	for _, t := range triples {
		for _, n := range [2]Node{t.S, t.O} {
			if !n.IsBlank() {
				continue
			}
			if _, ok := seen[n]; ok {
				continue
			}
			seen[n] = struct{}{}
			out = append(out, n)
		}
	}
	slices.SortFunc(out, Compare)
	return out
}
