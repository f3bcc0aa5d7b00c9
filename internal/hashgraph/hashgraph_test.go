package hashgraph

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/blabel/internal/digest"
	"github.com/roach88/blabel/internal/rdf"
)

var (
	p = rdf.IRI("http://example.org/p")
	q = rdf.IRI("http://example.org/q")
	u = rdf.IRI("http://example.org/u")
	v = rdf.IRI("http://example.org/v")
)

func newGraph(t *testing.T, triples ...rdf.Triple) *Graph {
	t.Helper()
	g := New(digest.MustLookup(digest.MD5))
	for _, tr := range triples {
		g.Add(tr)
	}
	return g
}

func TestAddTuple(t *testing.T) {
	g := New(digest.MustLookup(digest.MD5))

	err := g.AddTuple(rdf.Blank("a"), p)
	require.Error(t, err)
	assert.True(t, rdf.IsArityError(err))

	require.NoError(t, g.AddTuple(rdf.Blank("a"), p, u, rdf.IRI("graph")))
	assert.Equal(t, []rdf.Triple{{S: rdf.Blank("a"), P: p, O: u}}, g.Triples())
	assert.Equal(t, g.BlankHash(), g.Hash(rdf.Blank("a")))
	assert.Equal(t, digest.HashString(g.Function(), "<http://example.org/u>"), g.Hash(u))
	assert.Equal(t, 1, g.BlankCount())
}

func TestBranch_CopiesOnlyBlankDigests(t *testing.T) {
	a := rdf.Blank("a")
	g := newGraph(t, rdf.Triple{S: a, P: p, O: u})

	b := g.Branch()
	b.SetHash(a, g.Hash(u))

	assert.Equal(t, g.BlankHash(), g.Hash(a), "parent must be unaffected")
	assert.Equal(t, g.Hash(u), b.Hash(a))
	assert.Equal(t, g.Triples(), b.Triples())
}

func TestGraphHash_OrderIndependent(t *testing.T) {
	t1 := rdf.Triple{S: rdf.Blank("a"), P: p, O: u}
	t2 := rdf.Triple{S: u, P: q, O: v}

	g1 := newGraph(t, t1, t2)
	g2 := newGraph(t, t2, t1)

	assert.Equal(t, g1.GraphHash(), g2.GraphHash())
	assert.NotEqual(t, g1.GraphHash(), g1.GroundHash())

	ground := newGraph(t, t2)
	assert.Equal(t, ground.GraphHash(), g1.GroundHash())
}

func TestMux(t *testing.T) {
	a := rdf.Blank("a")
	g := newGraph(t, rdf.Triple{S: a, P: p, O: u})
	before := g.Hash(a)
	extra := digest.HashInt(g.Function(), 3)

	g.Mux(extra)
	assert.Equal(t, digest.CombineOrdered(before, extra), g.Hash(a))
	assert.Equal(t, digest.HashString(g.Function(), u.String()), g.Hash(u), "constants are never muxed")
}

func TestPartition_ByConnectedBlankNodes(t *testing.T) {
	a, b, c, x, y := rdf.Blank("a"), rdf.Blank("b"), rdf.Blank("c"), rdf.Blank("x"), rdf.Blank("y")
	g := newGraph(t,
		rdf.Triple{S: y, P: p, O: x},
		rdf.Triple{S: a, P: p, O: b},
		rdf.Triple{S: c, P: q, O: u},
		rdf.Triple{S: b, P: q, O: v},
		rdf.Triple{S: u, P: p, O: v},
		rdf.Triple{S: c, P: p, O: c},
	)

	parts := g.Partition()
	require.Len(t, parts, 3)

	assert.Equal(t, []rdf.Node{a, b}, parts[0].BlankNodes())
	assert.Len(t, parts[0].Triples(), 2)
	assert.Equal(t, []rdf.Node{c}, parts[1].BlankNodes())
	assert.Len(t, parts[1].Triples(), 2)
	assert.Equal(t, []rdf.Node{x, y}, parts[2].BlankNodes())

	for _, part := range parts {
		for _, tr := range part.Triples() {
			assert.True(t, tr.HasBlank(), "ground triples are dropped")
		}
	}
}

func TestLabel(t *testing.T) {
	a := rdf.Blank("a")
	g := newGraph(t, rdf.Triple{S: a, P: p, O: u}, rdf.Triple{S: u, P: q, O: v})

	labelled := g.Label()
	require.Len(t, labelled, 2)
	assert.Equal(t, rdf.Triple{S: u, P: q, O: v}, labelled[0])
	assert.True(t, strings.HasPrefix(labelled[1].S.Value, LabelMarker))
	assert.Equal(t, LabelMarker+g.BlankHash().Hex(), labelled[1].S.Value)
	assert.Equal(t, 1, g.DistinctBlankDigests())
}
