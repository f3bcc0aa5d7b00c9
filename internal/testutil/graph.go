package testutil

import (
	"fmt"
	"math/rand/v2"
	"testing"

	"github.com/roach88/blabel/internal/ntriples"
	"github.com/roach88/blabel/internal/rdf"
)

// MustParse parses N-Triples text or fails the test.
func MustParse(t testing.TB, src string) []rdf.Triple {
	t.Helper()
	triples, err := ntriples.ParseString(src)
	if err != nil {
		t.Fatalf("failed to parse test graph: %v", err)
	}
	return triples
}

// RenameBlanks returns a copy of triples with every blank node label passed
// through rename. rename must be injective for the result to be isomorphic.
func RenameBlanks(triples []rdf.Triple, rename func(string) string) []rdf.Triple {
	out := make([]rdf.Triple, len(triples))
	relabel := func(n rdf.Node) rdf.Node {
		if n.IsBlank() {
			return rdf.Blank(rename(n.Value))
		}
		return n
	}
	for i, t := range triples {
		out[i] = rdf.Triple{S: relabel(t.S), P: relabel(t.P), O: relabel(t.O)}
	}
	return out
}

// Shuffle returns a copy of triples in a seeded random order.
func Shuffle(triples []rdf.Triple, seed uint64) []rdf.Triple {
	out := make([]rdf.Triple, len(triples))
	copy(out, triples)
	r := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	r.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	return out
}

// Cycle builds a directed cycle of n blank nodes named prefix0..prefix(n-1).
func Cycle(prefix string, n int, pred rdf.Node) []rdf.Triple {
	out := make([]rdf.Triple, n)
	for i := 0; i < n; i++ {
		out[i] = rdf.Triple{
			S: rdf.Blank(fmt.Sprintf("%s%d", prefix, i)),
			P: pred,
			O: rdf.Blank(fmt.Sprintf("%s%d", prefix, (i+1)%n)),
		}
	}
	return out
}

// Grid builds a w x h grid of blank nodes with right and down edges.
func Grid(w, h int, right, down rdf.Node) []rdf.Triple {
	id := func(x, y int) rdf.Node { return rdf.Blank(fmt.Sprintf("g%d_%d", x, y)) }
	var out []rdf.Triple
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if x+1 < w {
				out = append(out, rdf.Triple{S: id(x, y), P: right, O: id(x+1, y)})
			}
			if y+1 < h {
				out = append(out, rdf.Triple{S: id(x, y), P: down, O: id(x, y+1)})
			}
		}
	}
	return out
}
