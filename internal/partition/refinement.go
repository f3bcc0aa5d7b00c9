package partition

import (
	"fmt"
	"slices"

	"github.com/roach88/blabel/internal/digest"
	"github.com/roach88/blabel/internal/rdf"
)

// Refinement is an ordered partition of blank nodes that only ever splits.
//
// The group order is what makes leaves of the search tree comparable: two
// complete refinements of isomorphic colourings line nodes up position by
// position.
type Refinement struct {
	groups [][]rdf.Node
}

// NewRefinement puts every node in a single group.
func NewRefinement(nodes []rdf.Node) *Refinement {
	all := slices.Clone(nodes)
	slices.SortFunc(all, rdf.Compare)
	all = slices.Compact(all)
	return &Refinement{groups: [][]rdf.Node{all}}
}

// Groups returns the current groups in order. The result must not be modified.
func (r *Refinement) Groups() [][]rdf.Node {
	return r.groups
}

// Len returns the number of groups.
func (r *Refinement) Len() int {
	return len(r.groups)
}

// Complete reports whether every group is a singleton.
func (r *Refinement) Complete() bool {
	for _, g := range r.groups {
		if len(g) > 1 {
			return false
		}
	}
	return true
}

// IndexOf returns the position of the group holding n, or -1.
func (r *Refinement) IndexOf(n rdf.Node) int {
	for i, g := range r.groups {
		if _, found := slices.BinarySearchFunc(g, n, rdf.Compare); found {
			return i
		}
	}
	return -1
}

// Refine splits each group whose members no longer share a colour.
//
// The pieces of a split group replace it in place, ordered by size and then
// by the colour of their first member. Refine reports whether any group was
// split.
func (r *Refinement) Refine(colours map[rdf.Node]digest.Digest) bool {
	changed := false
	next := make([][]rdf.Node, 0, len(r.groups))
	for _, g := range r.groups {
		byColour := make(map[digest.Digest][]rdf.Node)
		for _, n := range g {
			c := colours[n]
			byColour[c] = append(byColour[c], n)
		}
		if len(byColour) == 1 {
			next = append(next, g)
			continue
		}
		changed = true
		splits := make([][]rdf.Node, 0, len(byColour))
		for _, s := range byColour {
			splits = append(splits, s)
		}
		slices.SortFunc(splits, func(a, b []rdf.Node) int {
			if len(a) != len(b) {
				return len(a) - len(b)
			}
			return digest.Compare(colours[a[0]], colours[b[0]])
		})
		next = append(next, splits...)
	}
	r.groups = next
	return changed
}

// GetMapping returns the positional bijection between two complete
// refinements.
func GetMapping(r1, r2 *Refinement) (map[rdf.Node]rdf.Node, error) {
	if len(r1.groups) != len(r2.groups) {
		return nil, fmt.Errorf("refinements differ in length (%d != %d)", len(r1.groups), len(r2.groups))
	}
	m := make(map[rdf.Node]rdf.Node, len(r1.groups))
	for i := range r1.groups {
		g1, g2 := r1.groups[i], r2.groups[i]
		if len(g1) != 1 || len(g2) != 1 {
			return nil, fmt.Errorf("refinement group %d is not a singleton", i)
		}
		m[g1[0]] = g2[0]
	}
	return m, nil
}
