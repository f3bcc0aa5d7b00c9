package label

import (
	"github.com/roach88/blabel/internal/rdf"
)

// Rewrite prepends prefix to every blank node label in subject or object
// position. With asBlank the result stays a blank node; otherwise it becomes
// an IRI, which skolemizes the graph. The output is sorted and deduplicated.
//
// The prefix must keep the label valid for the chosen node kind.
func Rewrite(graph []rdf.Triple, prefix string, asBlank bool) []rdf.Triple {
	relabel := func(n rdf.Node) rdf.Node {
		if !n.IsBlank() {
			return n
		}
		if asBlank {
			return rdf.Blank(prefix + n.Value)
		}
		return rdf.IRI(prefix + n.Value)
	}

	out := make([]rdf.Triple, len(graph))
	for i, t := range graph {
		out[i] = rdf.Triple{S: relabel(t.S), P: t.P, O: relabel(t.O)}
	}
	return rdf.SortedSet(out)
}
