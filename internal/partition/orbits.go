package partition

import (
	"github.com/roach88/blabel/internal/rdf"
)

// Orbits records the non-trivial orbits of the automorphisms discovered so
// far. Composing an automorphism merges each moved node with its image.
type Orbits struct {
	uf *UnionFind[rdf.Node]
}

// NewOrbits creates an empty orbit tracker.
func NewOrbits() *Orbits {
	return &Orbits{uf: NewUnionFind(rdf.Compare)}
}

// AddAndCompose folds auto into the known orbits and reports whether any
// orbit grew.
func (o *Orbits) AddAndCompose(auto map[rdf.Node]rdf.Node) bool {
	changed := false
	for k, v := range auto {
		if k != v {
			changed = o.uf.AddPair(k, v) || changed
		}
	}
	return changed
}

// Orbit returns the sorted non-trivial orbit of n, or nil.
func (o *Orbits) Orbit(n rdf.Node) []rdf.Node {
	return o.uf.Class(n)
}

// MapsToAny reports whether some node of visited other than n shares n's
// orbit.
func (o *Orbits) MapsToAny(n rdf.Node, visited []rdf.Node) bool {
	if o.uf.Class(n) == nil {
		return false
	}
	for _, v := range visited {
		if v != n && o.uf.Same(n, v) {
			return true
		}
	}
	return false
}

// Count returns the number of non-trivial orbits.
func (o *Orbits) Count() int {
	return o.uf.Count()
}
