package label

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/blabel/internal/digest"
	"github.com/roach88/blabel/internal/hashgraph"
	"github.com/roach88/blabel/internal/rdf"
	"github.com/roach88/blabel/internal/testutil"
)

const twoTriangles = `
_:a <http://example.org/p> _:b .
_:b <http://example.org/p> _:c .
_:c <http://example.org/p> _:a .
_:x <http://example.org/p> _:y .
_:y <http://example.org/p> _:z .
_:z <http://example.org/p> _:x .
<http://example.org/u> <http://example.org/p> <http://example.org/v> .
`

func labelGraph(t *testing.T, triples []rdf.Triple, opts ...Option) *Result {
	t.Helper()
	res, err := New(opts...).Label(context.Background(), triples)
	require.NoError(t, err)
	return res
}

func blankLabels(graph []rdf.Triple) map[string]bool {
	labels := make(map[string]bool)
	for _, t := range graph {
		for _, n := range []rdf.Node{t.S, t.O} {
			if n.IsBlank() {
				labels[n.Value] = true
			}
		}
	}
	return labels
}

// ============================================================================
// Scenarios
// ============================================================================

func TestLabel_TwoTriangles(t *testing.T) {
	in := testutil.MustParse(t, twoTriangles)
	res := labelGraph(t, in)

	labels := blankLabels(res.Graph)
	assert.Len(t, labels, 6, "isomorphic partitions are kept apart")
	for l := range labels {
		assert.True(t, strings.HasPrefix(l, hashgraph.LabelMarker))
	}
	assert.Len(t, res.Graph, 7)
	assert.Contains(t, res.Graph, in[6], "ground triple is unchanged")

	assert.Equal(t, 6, res.BlankNodes)
	assert.Equal(t, 2, res.Partitions)
	assert.NotEmpty(t, res.GraphHash)

	again := labelGraph(t, in)
	assert.Equal(t, res.Graph, again.Graph, "labelling is deterministic")
}

func TestLabel_TwoTrianglesCollapseWithoutDistinguishing(t *testing.T) {
	in := testutil.MustParse(t, twoTriangles)
	res := labelGraph(t, in, WithDistinguishIsomorphicPartitions(false))

	assert.Len(t, blankLabels(res.Graph), 3, "isomorphic partitions share labels")
	assert.Len(t, res.Graph, 4)
}

func TestLabel_NoBlankNodesPassThrough(t *testing.T) {
	in := testutil.MustParse(t, `
<http://example.org/b> <http://example.org/p> "x" .
<http://example.org/a> <http://example.org/p> <http://example.org/c> .
<http://example.org/a> <http://example.org/p> <http://example.org/c> .
`)
	res := labelGraph(t, in)

	assert.Equal(t, rdf.SortedSet(in), res.Graph)
	assert.Zero(t, res.Partitions)
	assert.Zero(t, res.ColourIterations)
	assert.Nil(t, res.HashGraph)
}

func TestLabel_LongCycleTerminates(t *testing.T) {
	in := testutil.Cycle("n", 12, rdf.IRI("http://example.org/next"))
	res := labelGraph(t, in)

	assert.Len(t, blankLabels(res.Graph), 12)
	assert.Equal(t, 1, res.Partitions)
}

// ============================================================================
// Properties
// ============================================================================

func TestLabel_IsomorphismInvariance(t *testing.T) {
	graphs := map[string][]rdf.Triple{
		"triangles": testutil.MustParse(t, twoTriangles),
		"grid":      testutil.Grid(3, 3, rdf.IRI("http://example.org/r"), rdf.IRI("http://example.org/d")),
		"cycle":     testutil.Cycle("c", 6, rdf.IRI("http://example.org/p")),
		"mixed": testutil.MustParse(t, `
_:a <http://example.org/knows> _:b .
_:b <http://example.org/knows> _:a .
_:a <http://example.org/name> "A" .
_:c <http://example.org/name> "A" .
_:c <http://example.org/age> "3" .
`),
	}
	for name, g := range graphs {
		t.Run(name, func(t *testing.T) {
			want := labelGraph(t, g).Graph

			renamed := testutil.RenameBlanks(g, func(id string) string {
				return "renamed_" + strings.ToUpper(id)
			})
			for seed := uint64(1); seed <= 3; seed++ {
				got := labelGraph(t, testutil.Shuffle(renamed, seed)).Graph
				assert.Equal(t, want, got, "seed %d", seed)
			}
		})
	}
}

func TestLabel_Idempotent(t *testing.T) {
	in := testutil.MustParse(t, twoTriangles)
	once := labelGraph(t, in).Graph
	twice := labelGraph(t, once).Graph
	assert.Equal(t, once, twice)
}

func TestLabel_PartitionIndependence(t *testing.T) {
	left := testutil.Cycle("l", 3, rdf.IRI("http://example.org/p"))
	right := testutil.Cycle("r", 4, rdf.IRI("http://example.org/q"))
	opts := []Option{WithUniquePerGraph(false), WithDistinguishIsomorphicPartitions(false)}

	whole := labelGraph(t, append(append([]rdf.Triple{}, left...), right...), opts...).Graph
	parts := append(labelGraph(t, left, opts...).Graph, labelGraph(t, right, opts...).Graph...)

	assert.Equal(t, rdf.SortedSet(parts), whole)
}

func TestLabel_PruneDoesNotChangeOutput(t *testing.T) {
	in := testutil.Grid(3, 3, rdf.IRI("http://example.org/r"), rdf.IRI("http://example.org/r"))
	pruned := labelGraph(t, in)
	unpruned := labelGraph(t, in, WithPrune(false))
	assert.Equal(t, pruned.Graph, unpruned.Graph)
	assert.LessOrEqual(t, pruned.Leaves, unpruned.Leaves)
}

func TestLabel_HashFunctions(t *testing.T) {
	in := testutil.MustParse(t, twoTriangles)
	for _, name := range digest.Names() {
		t.Run(name, func(t *testing.T) {
			fn := digest.MustLookup(name)
			res := labelGraph(t, in, WithHashFunction(fn))
			labels := blankLabels(res.Graph)
			assert.Len(t, labels, 6)
			for l := range labels {
				assert.Len(t, l, len(hashgraph.LabelMarker)+fn.Bits()/4)
			}
		})
	}
}

func TestLabel_UniquePerGraph(t *testing.T) {
	chain := testutil.MustParse(t, "_:a <http://example.org/p> _:b .\n_:b <http://example.org/p> _:c .\n")
	withGround := append(testutil.MustParse(t, "<http://example.org/q> <http://example.org/p> <http://example.org/w> .\n"), chain...)

	// Per-partition labels: the chain labels are shared between both graphs.
	perPart := []Option{WithUniquePerGraph(false)}
	assert.Subset(t, labelGraph(t, withGround, perPart...).Graph, labelGraph(t, chain, perPart...).Graph)

	// Per-graph labels: the ground triple changes every blank node label.
	a := blankLabels(labelGraph(t, chain).Graph)
	b := blankLabels(labelGraph(t, withGround).Graph)
	for l := range a {
		assert.False(t, b[l], "label %s should not be shared", l)
	}
}

func TestLabel_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New().Label(ctx, testutil.MustParse(t, twoTriangles))
	assert.ErrorIs(t, err, context.Canceled)
}

// ============================================================================
// Rewrite
// ============================================================================

func TestRewrite(t *testing.T) {
	in := []rdf.Triple{
		{S: rdf.Blank("SK00ab"), P: rdf.IRI("p"), O: rdf.IRI("o")},
		{S: rdf.IRI("s"), P: rdf.IRI("p"), O: rdf.Blank("SK00cd")},
	}

	iris := Rewrite(in, "http://example.org/.well-known/genid/", false)
	assert.Contains(t, iris, rdf.Triple{S: rdf.IRI("http://example.org/.well-known/genid/SK00ab"), P: rdf.IRI("p"), O: rdf.IRI("o")})
	assert.False(t, rdf.HasBlankNodes(iris))

	blanks := Rewrite(in, "x", true)
	assert.Contains(t, blanks, rdf.Triple{S: rdf.IRI("s"), P: rdf.IRI("p"), O: rdf.Blank("xSK00cd")})
}
