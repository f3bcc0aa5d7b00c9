package partition

import (
	"slices"
)

// UnionFind is a disjoint-set structure over comparable elements.
//
// Only elements that have been paired are tracked. An element never passed to
// AddPair is an implicit singleton. Each class is kept sorted by the compare
// function, so Class returns members in a deterministic order.
type UnionFind[E comparable] struct {
	cmp     func(a, b E) int
	classes map[E]*class[E]
	count   int
}

type class[E comparable] struct {
	members []E
}

// NewUnionFind creates an empty UnionFind ordering members with cmp.
func NewUnionFind[E comparable](cmp func(a, b E) int) *UnionFind[E] {
	return &UnionFind[E]{
		cmp:     cmp,
		classes: make(map[E]*class[E]),
	}
}

// AddPair merges the classes of a and b. It reports whether anything changed.
func (u *UnionFind[E]) AddPair(a, b E) bool {
	ca, okA := u.classes[a]
	cb, okB := u.classes[b]

	switch {
	case !okA && !okB:
		if a == b {
			return false
		}
		c := &class[E]{members: []E{a, b}}
		slices.SortFunc(c.members, u.cmp)
		u.classes[a] = c
		u.classes[b] = c
		u.count++
	case !okA:
		u.insert(cb, a)
	case !okB:
		u.insert(ca, b)
	case ca != cb:
		small, big := ca, cb
		if len(ca.members) > len(cb.members) {
			small, big = cb, ca
		}
		for _, m := range small.members {
			u.insert(big, m)
		}
		u.count--
	default:
		return false
	}
	return true
}

func (u *UnionFind[E]) insert(c *class[E], e E) {
	i, found := slices.BinarySearchFunc(c.members, e, u.cmp)
	if !found {
		c.members = slices.Insert(c.members, i, e)
	}
	u.classes[e] = c
}

// Class returns the sorted members of e's class, or nil when e is a
// singleton. The returned slice must not be modified.
func (u *UnionFind[E]) Class(e E) []E {
	c, ok := u.classes[e]
	if !ok {
		return nil
	}
	return c.members
}

// Same reports whether a and b are in the same class.
func (u *UnionFind[E]) Same(a, b E) bool {
	if a == b {
		return true
	}
	ca, ok := u.classes[a]
	return ok && ca == u.classes[b]
}

// Count returns the number of non-singleton classes.
func (u *UnionFind[E]) Count() int {
	return u.count
}

// Len returns the number of elements in non-singleton classes.
func (u *UnionFind[E]) Len() int {
	return len(u.classes)
}

// Classes returns every non-singleton class, ordered by first member.
func (u *UnionFind[E]) Classes() [][]E {
	seen := make(map[*class[E]]bool, u.count)
	out := make([][]E, 0, u.count)
	for _, c := range u.classes {
		if seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, c.members)
	}
	slices.SortFunc(out, func(a, b []E) int { return u.cmp(a[0], b[0]) })
	return out
}
