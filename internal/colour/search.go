package colour

import (
	"context"
	"slices"
	"strconv"
	"strings"

	"github.com/roach88/blabel/internal/digest"
	"github.com/roach88/blabel/internal/partition"
	"github.com/roach88/blabel/internal/rdf"
)

func (s *search) execute(ctx context.Context, st *state) error {
	if err := s.refine(ctx, st); err != nil {
		return err
	}
	if st.classes == st.g.BlankCount() {
		return nil
	}
	return s.traverse(ctx, st)
}

// traverse individualizes each member of the first non-trivial group.
func (s *search) traverse(ctx context.Context, st *state) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.logger.Debug("testing branch", "path", st.path)

	for _, group := range st.refinement.Groups() {
		if len(group) < 2 {
			continue
		}

		var visited []rdf.Node
		var orbits *partition.Orbits
		for _, n := range group {
			if len(visited) > 0 && s.prune {
				if orbits == nil {
					orbits = partition.NewOrbits()
				}
				skip, err := s.pruneSibling(st, n, visited, orbits)
				if err != nil {
					return err
				}
				if skip {
					s.logger.Debug("skipping branch, found rooted automorphism", "path", st.path, "node", n)
					continue
				}
			}

			child := st.g.Branch()
			child.SetHash(n, digest.CombineOrdered(child.Hash(n), child.BlankHash()))

			path := append(slices.Clone(st.path), n)
			if err := s.execute(ctx, &state{g: child, path: path}); err != nil {
				return err
			}
			visited = append(visited, n)
		}
		return nil
	}
	return nil
}

// pruneSibling reports whether next is mapped onto an already visited sibling
// by an automorphism that fixes the current path.
//
// Automorphisms are read off the leaves lazily: two leaf states with the same
// leaf graph whose refinements place the path nodes at the same positions
// are related by an automorphism fixing the path.
func (s *search) pruneSibling(st *state, next rdf.Node, visited []rdf.Node, orbits *partition.Orbits) (bool, error) {
	if orbits.MapsToAny(next, visited) {
		return true, nil
	}

	it := s.leaves.Iterator()
	for it.Next() {
		rooted := make(map[string]*state)
		for _, leaf := range it.Value().([]*state) {
			key := pathSignature(leaf.refinement, st.path)
			prev, ok := rooted[key]
			if !ok {
				rooted[key] = leaf
				continue
			}
			auto, err := partition.GetMapping(prev.refinement, leaf.refinement)
			if err != nil {
				return false, err
			}
			orbits.AddAndCompose(auto)
			if orbits.MapsToAny(next, visited) {
				return true, nil
			}
		}
	}
	return false, nil
}

// pathSignature lists the refinement group index of every path node.
func pathSignature(r *partition.Refinement, path []rdf.Node) string {
	var b strings.Builder
	for i, n := range path {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.Itoa(r.IndexOf(n)))
	}
	return b.String()
}
