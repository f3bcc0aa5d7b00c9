package lean

import (
	"context"
	"fmt"
	"math/rand/v2"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/blabel/internal/rdf"
	"github.com/roach88/blabel/internal/testutil"
)

const coveredChain = `
_:a <http://example.org/p> _:b .
_:c <http://example.org/p> _:d .
_:b <http://example.org/q> <http://example.org/z> .
_:d <http://example.org/q> <http://example.org/z> .
_:d <http://example.org/r> <http://example.org/w> .
`

func strategies() map[string]Strategy {
	return map[string]Strategy{
		"dfs":         NewDFS(true),
		"dfs-noprune": NewDFS(false),
		"bfs":         NewBFS(),
	}
}

func leanGraph(t *testing.T, src string, opts ...Option) *Result {
	t.Helper()
	res, err := New(opts...).Lean(context.Background(), testutil.MustParse(t, src))
	require.NoError(t, err)
	return res
}

func assertGraph(t *testing.T, want string, got []rdf.Triple) {
	t.Helper()
	expected := rdf.SortedSet(testutil.MustParse(t, want))
	if diff := cmp.Diff(expected, got); diff != "" {
		t.Errorf("lean graph mismatch (-want +got):\n%s", diff)
	}
}

// assertSoundCore checks that the core map covers every input blank node,
// produces the lean graph and fixes every blank node that survives.
func assertSoundCore(t *testing.T, g []rdf.Triple, res *Result) {
	t.Helper()
	for _, b := range rdf.BlankNodes(g) {
		assert.Contains(t, res.CoreMap, b)
	}
	if diff := cmp.Diff(res.Triples, Apply(g, res.CoreMap)); diff != "" {
		t.Errorf("applying the core map does not give the lean graph (-lean +applied):\n%s", diff)
	}
	for _, b := range rdf.BlankNodes(res.Triples) {
		assert.Equal(t, b, res.CoreMap[b], "surviving blank node %s is not fixed", b)
	}
}

// ============================================================================
// Scenarios
// ============================================================================

func TestLean_CoveredChain(t *testing.T) {
	for name, s := range strategies() {
		t.Run(name, func(t *testing.T) {
			res := leanGraph(t, coveredChain, WithStrategy(s))

			assertGraph(t, `
_:c <http://example.org/p> _:d .
_:d <http://example.org/q> <http://example.org/z> .
_:d <http://example.org/r> <http://example.org/w> .
`, res.Triples)

			want := Binding{
				rdf.Blank("a"): rdf.Blank("c"),
				rdf.Blank("b"): rdf.Blank("d"),
				rdf.Blank("c"): rdf.Blank("c"),
				rdf.Blank("d"): rdf.Blank("d"),
			}
			if diff := cmp.Diff(want, res.CoreMap); diff != "" {
				t.Errorf("core map mismatch (-want +got):\n%s", diff)
			}
			assert.Equal(t, 1, res.Depth, "the reduced graph is fixed without searching")
			assert.Positive(t, res.Joins)
		})
	}
}

func TestLean_TwoCycleIsLean(t *testing.T) {
	src := "_:a <http://example.org/p> _:b .\n_:b <http://example.org/p> _:a .\n"
	for name, s := range strategies() {
		t.Run(name, func(t *testing.T) {
			res := leanGraph(t, src, WithStrategy(s))
			assertGraph(t, src, res.Triples)
			assert.True(t, res.CoreMap.IsIdentity())
			assert.Len(t, res.CoreMap, 2)
			assert.Equal(t, 1, res.Depth)
		})
	}
}

func TestLean_BlankCoveredByGround(t *testing.T) {
	res := leanGraph(t, `
<http://example.org/x> <http://example.org/p> _:a .
<http://example.org/x> <http://example.org/p> <http://example.org/y> .
`)
	assertGraph(t, "<http://example.org/x> <http://example.org/p> <http://example.org/y> .\n", res.Triples)
	assert.Equal(t, Binding{rdf.Blank("a"): rdf.IRI("http://example.org/y")}, res.CoreMap)
	assert.Zero(t, res.Depth, "no search is needed")
}

func TestLean_EqualTwinsCollapse(t *testing.T) {
	res := leanGraph(t, `
_:a <http://example.org/p> <http://example.org/o> .
_:b <http://example.org/p> <http://example.org/o> .
`)
	assertGraph(t, "_:a <http://example.org/p> <http://example.org/o> .\n", res.Triples)
	assert.Equal(t, Binding{rdf.Blank("a"): rdf.Blank("a"), rdf.Blank("b"): rdf.Blank("a")}, res.CoreMap)
}

func TestLean_StarNeedsSearch(t *testing.T) {
	src := `
_:x <http://example.org/p> _:a .
_:x <http://example.org/p> _:b .
_:y <http://example.org/p> _:c .
`
	for name, s := range strategies() {
		t.Run(name, func(t *testing.T) {
			res := leanGraph(t, src, WithStrategy(s))
			require.Len(t, res.Triples, 1)
			assert.Len(t, rdf.BlankNodes(res.Triples), 2)
			assert.Len(t, res.CoreMap, 5)
		})
	}
}

func TestLean_NoBlankNodes(t *testing.T) {
	src := "<http://example.org/s> <http://example.org/p> \"o\" .\n"
	res := leanGraph(t, src)
	assertGraph(t, src, res.Triples)
	assert.Empty(t, res.CoreMap)
	assert.Zero(t, res.Depth)
	assert.Zero(t, res.Joins)
}

func TestLean_EmptyBlankLabel(t *testing.T) {
	p, o := rdf.IRI("http://example.org/p"), rdf.IRI("http://example.org/o")
	g := []rdf.Triple{
		{S: rdf.Blank(""), P: p, O: o},
		{S: rdf.Blank("a"), P: p, O: o},
		{S: rdf.IRI("http://example.org/s"), P: p, O: rdf.Blank("")},
	}
	res, err := New().Lean(context.Background(), g)
	require.NoError(t, err)
	assertSoundCore(t, g, res)
	assert.NotEqual(t, rdf.Blank(""), wildcard)
}

// Search bindings may swap or rotate the surviving blank nodes; the core
// map must still fix them and send removed nodes to the right image.
func TestLean_PermutingBindings(t *testing.T) {
	graphs := map[string]string{
		"swap": `
_:b0 <http://example.org/q> _:b2 .
_:b1 <http://example.org/q> _:b3 .
_:b3 <http://example.org/q> _:b1 .
`,
		"swapWithCovered": `
_:b0 <http://example.org/q> _:b2 .
_:b1 <http://example.org/q> _:b3 .
_:b3 <http://example.org/q> _:b1 .
_:b4 <http://example.org/q> _:b2 .
`,
	}
	for gname, src := range graphs {
		g := testutil.MustParse(t, src)
		for sname, s := range strategies() {
			t.Run(gname+"/"+sname, func(t *testing.T) {
				res, err := New(WithStrategy(s)).Lean(context.Background(), g)
				require.NoError(t, err)
				assertSoundCore(t, g, res)
				assert.Len(t, res.Triples, 2)
			})
		}
	}
}

func TestLean_RotatedCycles(t *testing.T) {
	q := rdf.IRI("http://example.org/q")
	for seed := uint64(1); seed <= 60; seed++ {
		r := rand.New(rand.NewPCG(seed, 7))
		var g []rdf.Triple
		for i := 0; i < 3; i++ {
			g = append(g, testutil.Cycle(fmt.Sprintf("c%d_", i), 3, q)...)
		}
		pendants := 1 + r.IntN(3)
		for k := 0; k < pendants; k++ {
			g = append(g, rdf.Triple{
				S: rdf.Blank(fmt.Sprintf("p%d", k)),
				P: q,
				O: rdf.Blank(fmt.Sprintf("c%d_%d", r.IntN(3), r.IntN(3))),
			})
		}
		names := make(map[string]string)
		perm := r.Perm(len(g) * 2)
		g = testutil.RenameBlanks(g, func(id string) string {
			if n, ok := names[id]; ok {
				return n
			}
			n := fmt.Sprintf("n%d", perm[len(names)])
			names[id] = n
			return n
		})
		g = testutil.Shuffle(g, seed)

		for _, opts := range [][]Option{nil, {WithRandomise(seed)}} {
			res, err := New(opts...).Lean(context.Background(), g)
			require.NoError(t, err, "seed %d", seed)
			assertSoundCore(t, g, res)
			assert.Len(t, res.Triples, 3, "seed %d", seed)
		}
	}
}

func TestLean_RandomGraphsAreSound(t *testing.T) {
	preds := []rdf.Node{rdf.IRI("http://example.org/p"), rdf.IRI("http://example.org/q")}
	subjects := []rdf.Node{
		rdf.Blank("b0"), rdf.Blank("b1"), rdf.Blank("b2"), rdf.Blank("b3"), rdf.Blank("b4"),
		rdf.IRI("http://example.org/c"),
	}
	objects := append([]rdf.Node{rdf.Literal("v")}, subjects...)

	for seed := uint64(1); seed <= 300; seed++ {
		r := rand.New(rand.NewPCG(seed, 11))
		g := make([]rdf.Triple, 1+r.IntN(7))
		for i := range g {
			g[i] = rdf.Triple{
				S: subjects[r.IntN(len(subjects))],
				P: preds[r.IntN(len(preds))],
				O: objects[r.IntN(len(objects))],
			}
		}
		for sname, s := range strategies() {
			res, err := New(WithStrategy(s)).Lean(context.Background(), g)
			require.NoError(t, err, "seed %d strategy %s", seed, sname)
			assertSoundCore(t, g, res)
		}
	}
}

// ============================================================================
// Properties
// ============================================================================

func propertyGraphs(t *testing.T) map[string][]rdf.Triple {
	return map[string][]rdf.Triple{
		"covered":  testutil.MustParse(t, coveredChain),
		"cycle":    testutil.Cycle("c", 5, rdf.IRI("http://example.org/p")),
		"grid":     testutil.Grid(3, 3, rdf.IRI("http://example.org/r"), rdf.IRI("http://example.org/d")),
		"sameGrid": testutil.Grid(2, 3, rdf.IRI("http://example.org/r"), rdf.IRI("http://example.org/r")),
		"mixed": testutil.MustParse(t, `
_:a <http://example.org/knows> _:b .
_:b <http://example.org/knows> _:a .
_:c <http://example.org/knows> _:c .
_:d <http://example.org/knows> _:e .
_:e <http://example.org/name> "E" .
_:f <http://example.org/name> "E" .
`),
	}
}

func TestLean_CoreMapIsSound(t *testing.T) {
	for gname, g := range propertyGraphs(t) {
		for sname, s := range strategies() {
			t.Run(gname+"/"+sname, func(t *testing.T) {
				res, err := New(WithStrategy(s)).Lean(context.Background(), g)
				require.NoError(t, err)
				assertSoundCore(t, g, res)
				assert.LessOrEqual(t, len(res.Triples), len(rdf.SortedSet(g)))
			})
		}
	}
}

func TestLean_Idempotent(t *testing.T) {
	for name, g := range propertyGraphs(t) {
		t.Run(name, func(t *testing.T) {
			once, err := New().Lean(context.Background(), g)
			require.NoError(t, err)
			twice, err := New().Lean(context.Background(), once.Triples)
			require.NoError(t, err)

			assert.Equal(t, once.Triples, twice.Triples)
			assert.True(t, twice.CoreMap.IsIdentity())
		})
	}
}

func TestLean_StrategiesAgreeOnSize(t *testing.T) {
	for name, g := range propertyGraphs(t) {
		t.Run(name, func(t *testing.T) {
			sizes := make(map[int]bool)
			for _, s := range strategies() {
				res, err := New(WithStrategy(s)).Lean(context.Background(), g)
				require.NoError(t, err)
				sizes[len(res.Triples)] = true
			}
			assert.Len(t, sizes, 1, "cores are unique up to isomorphism")
		})
	}
}

func TestLean_RandomisedIsSound(t *testing.T) {
	g := testutil.MustParse(t, coveredChain)
	for seed := uint64(1); seed <= 4; seed++ {
		res, err := New(WithRandomise(seed)).Lean(context.Background(), g)
		require.NoError(t, err)
		assert.Len(t, res.Triples, 3, "seed %d", seed)
		assert.Equal(t, res.Triples, Apply(g, res.CoreMap), "seed %d", seed)
	}
}

func TestLean_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New().Lean(ctx, testutil.MustParse(t, coveredChain))
	assert.ErrorIs(t, err, context.Canceled)
}

// ============================================================================
// Parts
// ============================================================================

func TestParseStrategy(t *testing.T) {
	s, err := ParseStrategy("DFS", true)
	require.NoError(t, err)
	assert.Equal(t, StrategyDFS, s.Name())

	s, err = ParseStrategy("bfs", false)
	require.NoError(t, err)
	assert.Equal(t, StrategyBFS, s.Name())

	s, err = ParseStrategy("", false)
	require.NoError(t, err)
	assert.Equal(t, StrategyDFS, s.Name())

	_, err = ParseStrategy("random", false)
	assert.ErrorContains(t, err, "unknown lean strategy")
}

func TestClosure(t *testing.T) {
	a, b, c := rdf.Blank("a"), rdf.Blank("b"), rdf.Blank("c")
	y := rdf.IRI("http://example.org/y")

	closed, err := closure(Binding{a: b, b: c, c: y})
	require.NoError(t, err)
	assert.Equal(t, Binding{a: y, b: y, c: y}, closed)

	_, err = closure(Binding{a: b, b: c, c: a})
	require.Error(t, err)
	assert.True(t, IsInvariant(err))
}

func TestRetract(t *testing.T) {
	a, b, c := rdf.Blank("a"), rdf.Blank("b"), rdf.Blank("c")
	b0, b1, b2, b3 := rdf.Blank("b0"), rdf.Blank("b1"), rdf.Blank("b2"), rdf.Blank("b3")

	tests := []struct {
		name string
		in   Binding
		want Binding
	}{
		{"swap", Binding{b0: b3, b2: b1, b1: b3, b3: b1}, Binding{b0: b1, b2: b3, b1: b1, b3: b3}},
		{"rotation", Binding{a: b, b: c, c: a}, Binding{a: a, b: b, c: c}},
		{"chain", Binding{a: b, b: c, c: c}, Binding{a: c, b: c, c: c}},
		{"ground", Binding{a: rdf.IRI("y"), b: b}, Binding{a: rdf.IRI("y"), b: b}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, retract(tt.in))
		})
	}
}

func TestCompose(t *testing.T) {
	a, b, c := rdf.Blank("a"), rdf.Blank("b"), rdf.Blank("c")
	got := compose(Binding{a: b, c: c}, Binding{b: c})
	assert.Equal(t, Binding{a: c, c: c}, got)
}

func TestDiff(t *testing.T) {
	p := rdf.IRI("p")
	e1 := edge{pred: p, val: rdf.IRI("x"), out: false}
	e2 := edge{pred: p, val: rdf.IRI("y"), out: true}
	e3 := edge{pred: p, val: rdf.IRI("z"), out: true}

	extra, missing := diff([]edge{e1}, []edge{e1, e2})
	assert.False(t, extra)
	assert.True(t, missing)

	extra, missing = diff([]edge{e1, e2}, []edge{e1, e2})
	assert.False(t, extra)
	assert.False(t, missing)

	extra, missing = diff([]edge{e1, e3}, []edge{e1, e2})
	assert.True(t, extra)
	assert.True(t, missing)
}

func TestBindCountOrder(t *testing.T) {
	v := rdf.Blank("v")
	ground := bindCount{node: rdf.IRI("g")}
	busy := bindCount{node: rdf.Blank("z"), count: 2}
	self := bindCount{node: v, self: true}
	other := bindCount{node: rdf.Blank("a")}

	assert.Negative(t, compareBindCounts(ground, busy), "ground values first")
	assert.Negative(t, compareBindCounts(busy, other), "reused values next")
	assert.Negative(t, compareBindCounts(other, self), "self last")
}

func TestOrderPatternsKeepsJoinsConnected(t *testing.T) {
	data := testutil.MustParse(t, `
_:a <http://example.org/p> _:b .
_:b <http://example.org/p> _:c .
_:x <http://example.org/q> _:y .
_:c <http://example.org/p> _:d .
`)
	ix, query, vars := buildIndex(data, map[rdf.Node]bool{}, map[rdf.Node]nodeSet{}, nil)
	require.Len(t, query, 4)
	assert.Len(t, vars, 6)

	ordered := orderPatterns(query, ix)
	require.Len(t, ordered, 4)
	assert.ElementsMatch(t, query, ordered)

	// Every p-pattern after the first shares a variable with an earlier one.
	seen := map[rdf.Node]bool{}
	firstP := true
	for _, tr := range ordered {
		if tr.P == rdf.IRI("http://example.org/p") {
			if !firstP {
				assert.True(t, seen[tr.S] || seen[tr.O], "pattern %s is disconnected", tr)
			}
			firstP = false
		}
		seen[tr.S], seen[tr.O] = true, true
	}
}
