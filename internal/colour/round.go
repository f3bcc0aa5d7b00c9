package colour

import (
	"context"
	"slices"

	"github.com/roach88/blabel/internal/digest"
	"github.com/roach88/blabel/internal/partition"
	"github.com/roach88/blabel/internal/rdf"
)

// CollisionRecoveryAttempts bounds how often a round retries after two colour
// classes merge.
const CollisionRecoveryAttempts = 5

// refine runs colour refinement on st to a fixpoint. A complete colouring is
// recorded as a leaf.
func (s *search) refine(ctx context.Context, st *state) error {
	g := st.g
	fn := g.Function()
	plus := digest.HashUnencodedChars(fn, "+")
	minus := digest.HashUnencodedChars(fn, "-")

	blanks := g.BlankNodes()
	st.refinement = partition.NewRefinement(blanks)
	st.classes = countClasses(g.BlankDigests())

	round := 0
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		round++

		edges := make(map[rdf.Node][]digest.Digest, len(blanks))
		for _, t := range g.Triples() {
			hs, hp, ho := g.Hash(t.S), g.Hash(t.P), g.Hash(t.O)
			if t.S.IsBlank() {
				edges[t.S] = append(edges[t.S], digest.CombineOrdered(ho, hp, plus))
			}
			if t.O.IsBlank() {
				edges[t.O] = append(edges[t.O], digest.CombineOrdered(hs, hp, minus))
			}
		}

		next := make(map[rdf.Node]digest.Digest, len(blanks))
		for _, n := range blanks {
			hs := append(edges[n], g.Hash(n))
			slices.SortFunc(hs, digest.Compare)
			next[n] = digest.CombineOrdered(hs...)
		}

		if err := s.recoverCollisions(st, round, next); err != nil {
			return err
		}

		classes := countClasses(next)
		complete := classes == len(blanks)
		done := classes == st.classes || complete

		st.classes = classes
		g.Update(next)

		if done {
			st.refinement.Refine(g.BlankDigests())
		}
		if complete {
			s.addLeaf(st)
			s.logger.Debug("branch is a leaf", "path", st.path, "round", round)
		}
		if done {
			break
		}
	}
	s.iterations = append(s.iterations, round)
	return nil
}

// recoverCollisions separates blank nodes that collapsed into one colour
// although their previous colours differed. Each attempt mixes the previous
// colour and its rank among the affected previous colours into the new one.
func (s *search) recoverCollisions(st *state, round int, next map[rdf.Node]digest.Digest) error {
	g := st.g
	fn := g.Function()
	old := make(map[digest.Digest]struct{})

	for attempt := 0; ; attempt++ {
		broken := brokenClasses(next, g.Hash)
		if len(broken) == 0 {
			return nil
		}
		if attempt == CollisionRecoveryAttempts {
			return NewRoundCollisionError(round, st.path, len(broken))
		}
		s.logger.Debug("hash collision, recovering", "round", round, "attempt", attempt, "classes", len(broken))

		// Ranks span the old colours of every attempt so far, not just the first.
		for _, class := range broken {
			for _, n := range class {
				old[g.Hash(n)] = struct{}{}
			}
		}
		ranked := make([]digest.Digest, 0, len(old))
		for d := range old {
			ranked = append(ranked, d)
		}
		slices.SortFunc(ranked, digest.Compare)
		rank := make(map[digest.Digest]int32, len(ranked))
		for j, d := range ranked {
			rank[d] = int32((j + 1) * (attempt + 1) * digest.Prime)
		}

		for _, class := range broken {
			for _, n := range class {
				prev := g.Hash(n)
				next[n] = digest.CombineOrdered(next[n], prev, digest.HashInt(fn, rank[prev]))
			}
		}
	}
}

// brokenClasses returns the new colour classes whose members had different
// previous colours.
func brokenClasses(next map[rdf.Node]digest.Digest, prev func(rdf.Node) digest.Digest) [][]rdf.Node {
	byColour := make(map[digest.Digest][]rdf.Node)
	for n, d := range next {
		byColour[d] = append(byColour[d], n)
	}
	var broken [][]rdf.Node
	for _, members := range byColour {
		if len(members) < 2 {
			continue
		}
		first := prev(members[0])
		for _, m := range members[1:] {
			if prev(m) != first {
				slices.SortFunc(members, rdf.Compare)
				broken = append(broken, members)
				break
			}
		}
	}
	slices.SortFunc(broken, func(a, b []rdf.Node) int { return rdf.Compare(a[0], b[0]) })
	return broken
}

func countClasses(colours map[rdf.Node]digest.Digest) int {
	seen := make(map[digest.Digest]struct{}, len(colours))
	for _, d := range colours {
		seen[d] = struct{}{}
	}
	return len(seen)
}
