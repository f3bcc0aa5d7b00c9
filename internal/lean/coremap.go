package lean

import (
	"maps"
	"slices"

	"github.com/roach88/blabel/internal/rdf"
)

// Binding maps blank nodes (query variables) to the terms they stand for.
type Binding map[rdf.Node]rdf.Node

// Clone returns a copy of b.
func (b Binding) Clone() Binding {
	return maps.Clone(b)
}

// Keys returns the bound variables in node order.
func (b Binding) Keys() []rdf.Node {
	return slices.SortedFunc(maps.Keys(b), rdf.Compare)
}

// IsIdentity reports whether every variable is bound to itself.
func (b Binding) IsIdentity() bool {
	for k, v := range b {
		if k != v {
			return false
		}
	}
	return true
}

// blankValues counts the distinct blank nodes among the values of b.
func (b Binding) blankValues() int {
	return len(b.blankImage())
}

// reduces reports whether b maps its variables onto fewer blank nodes than
// it binds.
func (b Binding) reduces() bool {
	return b.blankValues() < len(b)
}

// Apply rewrites the subject and object of every triple through b and
// returns the sorted, deduplicated result.
func Apply(data []rdf.Triple, b Binding) []rdf.Triple {
	if b.IsIdentity() {
		return rdf.SortedSet(data)
	}
	lookup := func(n rdf.Node) rdf.Node {
		if v, ok := b[n]; ok && n.IsBlank() {
			return v
		}
		return n
	}
	out := make([]rdf.Triple, len(data))
	for i, t := range data {
		out[i] = rdf.Triple{S: lookup(t.S), P: t.P, O: lookup(t.O)}
	}
	return rdf.SortedSet(out)
}

// closure follows chains a -> b -> c until every value is a fixpoint. It is
// only meant for the acyclic maps built by removing covered blank nodes; a
// search binding is a simultaneous substitution and must go through retract.
func closure(m Binding) (Binding, error) {
	for iters := 0; ; {
		changed := false
		next := make(Binding, len(m))
		for k, v := range m {
			if v.IsBlank() {
				if mv, ok := m[v]; ok && mv != v {
					next[k] = mv
					changed = true
					continue
				}
			}
			next[k] = v
		}
		m = next
		if !changed {
			return m, nil
		}
		iters++
		if iters > len(m) {
			return nil, NewClosureError(len(m))
		}
	}
}

// compose maps each variable of homo through sub, keeping homo's value when
// sub leaves it alone.
func compose(homo, sub Binding) Binding {
	out := make(Binding, len(homo))
	for k, v := range homo {
		if f, ok := sub[v]; ok {
			out[k] = f
		} else {
			out[k] = v
		}
	}
	return out
}

// retract turns h, a map of a graph onto a subgraph of itself, into an
// equivalent map that fixes every blank node of its image. h must bind every
// blank node it produces.
func retract(h Binding) Binding {
	g, img, steps := h, h.blankImage(), 1
	for steps <= len(h) {
		next := compose(g, h)
		nimg := next.blankImage()
		if len(nimg) == len(img) {
			break
		}
		g, img = next, nimg
		steps++
	}

	// h permutes img now; undo it steps times.
	inv := make(Binding, len(img))
	for v := range img {
		if w, ok := h[v]; ok {
			inv[w] = v
		}
	}
	out := make(Binding, len(g))
	for k, v := range g {
		for i := 0; i < steps; i++ {
			if w, ok := inv[v]; ok {
				v = w
			}
		}
		out[k] = v
	}
	return out
}

// blankImage returns the blank nodes among the values of b.
func (b Binding) blankImage() nodeSet {
	img := make(nodeSet, len(b))
	for _, v := range b {
		if v.IsBlank() {
			img[v] = struct{}{}
		}
	}
	return img
}
