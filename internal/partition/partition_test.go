package partition

import (
	"cmp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/blabel/internal/digest"
	"github.com/roach88/blabel/internal/rdf"
)

// ============================================================================
// UnionFind
// ============================================================================

func TestUnionFind_AddPair(t *testing.T) {
	uf := NewUnionFind(cmp.Compare[int])

	assert.True(t, uf.AddPair(3, 1))
	assert.True(t, uf.AddPair(2, 5))
	assert.Equal(t, 2, uf.Count())

	assert.True(t, uf.AddPair(1, 5), "merging two classes")
	assert.Equal(t, 1, uf.Count())
	assert.Equal(t, []int{1, 2, 3, 5}, uf.Class(2))

	assert.False(t, uf.AddPair(3, 2), "already in one class")
	assert.False(t, uf.AddPair(7, 7), "self pair on an untracked element")
	assert.Nil(t, uf.Class(7), "singletons have no class")
	assert.Equal(t, 4, uf.Len())
}

func TestUnionFind_SameAndClasses(t *testing.T) {
	uf := NewUnionFind(cmp.Compare[string])
	uf.AddPair("d", "c")
	uf.AddPair("a", "b")

	assert.True(t, uf.Same("a", "b"))
	assert.True(t, uf.Same("z", "z"))
	assert.False(t, uf.Same("a", "c"))
	assert.Equal(t, [][]string{{"a", "b"}, {"c", "d"}}, uf.Classes())
}

// ============================================================================
// Orbits
// ============================================================================

func TestOrbits_AddAndCompose(t *testing.T) {
	a, b, c, d := rdf.Blank("a"), rdf.Blank("b"), rdf.Blank("c"), rdf.Blank("d")
	o := NewOrbits()

	assert.False(t, o.AddAndCompose(map[rdf.Node]rdf.Node{a: a, b: b}), "identity adds nothing")
	assert.True(t, o.AddAndCompose(map[rdf.Node]rdf.Node{a: b, b: a, c: c}))
	assert.True(t, o.AddAndCompose(map[rdf.Node]rdf.Node{b: c, c: b}))

	assert.Equal(t, []rdf.Node{a, b, c}, o.Orbit(b))
	assert.Nil(t, o.Orbit(d))
	assert.True(t, o.MapsToAny(c, []rdf.Node{d, a}))
	assert.False(t, o.MapsToAny(c, []rdf.Node{c, d}), "a node does not prune itself")
	assert.Equal(t, 1, o.Count())
}

// ============================================================================
// Refinement
// ============================================================================

func colours(pairs ...any) map[rdf.Node]digest.Digest {
	m := make(map[rdf.Node]digest.Digest)
	for i := 0; i < len(pairs); i += 2 {
		m[pairs[i].(rdf.Node)] = digest.FromBytes([]byte{pairs[i+1].(byte)})
	}
	return m
}

func TestRefinement_SplitsBySizeThenColour(t *testing.T) {
	a, b, c, d := rdf.Blank("a"), rdf.Blank("b"), rdf.Blank("c"), rdf.Blank("d")
	r := NewRefinement([]rdf.Node{d, c, b, a})
	require.Equal(t, 1, r.Len())

	// b and d share a colour; a and c are unique with a > c by colour.
	changed := r.Refine(colours(a, byte(9), b, byte(1), c, byte(5), d, byte(1)))
	require.True(t, changed)
	assert.Equal(t, [][]rdf.Node{{c}, {a}, {b, d}}, r.Groups())
	assert.False(t, r.Complete())
	assert.Equal(t, 2, r.IndexOf(d))

	assert.False(t, r.Refine(colours(a, byte(9), b, byte(1), c, byte(5), d, byte(1))), "stable colouring")

	assert.True(t, r.Refine(colours(a, byte(9), b, byte(3), c, byte(5), d, byte(2))))
	assert.Equal(t, [][]rdf.Node{{c}, {a}, {d}, {b}}, r.Groups(), "split happens in place")
	assert.True(t, r.Complete())
}

func TestGetMapping(t *testing.T) {
	a, b := rdf.Blank("a"), rdf.Blank("b")

	r1 := NewRefinement([]rdf.Node{a, b})
	r1.Refine(colours(a, byte(1), b, byte(2)))
	r2 := NewRefinement([]rdf.Node{a, b})
	r2.Refine(colours(a, byte(2), b, byte(1)))

	m, err := GetMapping(r1, r2)
	require.NoError(t, err)
	assert.Equal(t, map[rdf.Node]rdf.Node{a: b, b: a}, m)

	_, err = GetMapping(r1, NewRefinement([]rdf.Node{a, b}))
	assert.Error(t, err)
}
