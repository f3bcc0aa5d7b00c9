package lean

import (
	"context"
	"strconv"
	"strings"

	"github.com/roach88/blabel/internal/partition"
	"github.com/roach88/blabel/internal/rdf"
)

// DFS joins the query one pattern at a time, depth first, and stops at the
// first binding that reduces the number of blank nodes.
//
// With pruning enabled it records the non-reducing full bindings it finds.
// These are automorphisms of the query, and a candidate value in the same
// orbit as one already tried is skipped.
type DFS struct {
	prune bool
}

// NewDFS creates a depth-first strategy.
func NewDFS(prune bool) *DFS {
	return &DFS{prune: prune}
}

// Name implements Strategy.
func (d *DFS) Name() string { return StrategyDFS }

// FindReducingBinding implements Strategy.
func (d *DFS) FindReducingBinding(ctx context.Context, ix *Index, query []rdf.Triple, initial Binding) (Binding, Stats, error) {
	r := &dfsRun{ix: ix, prune: d.prune}
	partial := initial.Clone()
	timesBound := make(map[rdf.Node]int, len(partial))
	for _, v := range partial {
		timesBound[v]++
	}
	sol, err := r.join(ctx, query, partial, timesBound)
	if err != nil {
		return nil, r.stats, err
	}
	if sol != nil {
		r.stats.Solutions = 1
	}
	return sol, r.stats, nil
}

type dfsRun struct {
	ix    *Index
	prune bool
	stats Stats

	// mask fixes the variable order of recorded automorphisms; autos[0] is
	// the identity.
	mask  []rdf.Node
	autos [][]rdf.Node
}

func (r *dfsRun) join(ctx context.Context, todo []rdf.Triple, partial Binding, timesBound map[rdf.Node]int) (Binding, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.stats.Joins++

	current, rest := todo[0], todo[1:]
	bs := r.ix.bindings(current, partial, timesBound)
	if bs.failed() {
		return nil, nil
	}

	single := r.prune && len(bs.vars) == 1
	var (
		orbits     *partition.Orbits
		visited    []rdf.Node
		indexes    map[rdf.Node]int
		signatures map[string][]rdf.Node
		checked    int
	)
	if single {
		orbits = partition.NewOrbits()
		indexes = make(map[rdf.Node]int, len(partial))
		for i, k := range partial.Keys() {
			indexes[k] = i
		}
		signatures = make(map[string][]rdf.Node)
	}

	for _, row := range bs.rows {
		if single {
			v := row[0]
			_, isVar := partial[v]
			if len(visited) > 0 && len(r.autos) > 1 && !isVar {
				skip := orbits.MapsToAny(v, visited)
				for i := checked; i < len(r.autos) && !skip; i++ {
					sig := signature(r.autos[i], indexes)
					prev, ok := signatures[sig]
					if !ok {
						signatures[sig] = r.autos[i]
						continue
					}
					orbits.AddAndCompose(mapping(prev, r.autos[i]))
					skip = orbits.MapsToAny(v, visited)
				}
				checked = len(r.autos) - 1
				visited = append(visited, v)
				if skip {
					continue
				}
			} else if !isVar {
				visited = append(visited, v)
			}
		}

		for i, v := range bs.vars {
			partial[v] = row[i]
			timesBound[row[i]]++
		}

		if len(rest) > 0 {
			sol, err := r.join(ctx, rest, partial, timesBound)
			if err != nil || sol != nil {
				return sol, err
			}
		} else if partial.reduces() {
			return partial.Clone(), nil
		} else if r.prune {
			r.record(partial)
		}

		for i, v := range bs.vars {
			delete(partial, v)
			timesBound[row[i]]--
		}
	}
	return nil, nil
}

// record stores a full, non-reducing binding as an automorphism.
func (r *dfsRun) record(partial Binding) {
	if r.autos == nil {
		r.mask = partial.Keys()
		r.autos = [][]rdf.Node{r.mask}
	}
	auto := make([]rdf.Node, len(r.mask))
	trivial := true
	for i, k := range r.mask {
		auto[i] = partial[k]
		if auto[i] != k {
			trivial = false
		}
	}
	if !trivial {
		r.autos = append(r.autos, auto)
	}
}

// signature locates, for each bound variable, the mask position of the
// automorphism entry whose value is that variable. Two automorphisms with
// the same signature differ by an automorphism fixing the current partial
// binding's shape.
func signature(auto []rdf.Node, indexes map[rdf.Node]int) string {
	sig := make([]int, len(indexes))
	for i := range sig {
		sig[i] = -1
	}
	for j, b := range auto {
		if i, ok := indexes[b]; ok {
			sig[i] = j
		}
	}
	var sb strings.Builder
	for i, s := range sig {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(strconv.Itoa(s))
	}
	return sb.String()
}

func mapping(from, to []rdf.Node) map[rdf.Node]rdf.Node {
	m := make(map[rdf.Node]rdf.Node, len(from))
	for i := range from {
		m[from[i]] = to[i]
	}
	return m
}
