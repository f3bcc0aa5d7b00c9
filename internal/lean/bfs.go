package lean

import (
	"context"

	"github.com/roach88/blabel/internal/rdf"
)

// BFS joins the query level by level, keeping every partial solution, and
// picks the reducing solution with the fewest distinct blank nodes.
type BFS struct{}

// NewBFS creates a breadth-first strategy.
func NewBFS() *BFS { return &BFS{} }

// Name implements Strategy.
func (b *BFS) Name() string { return StrategyBFS }

// FindReducingBinding implements Strategy.
func (b *BFS) FindReducingBinding(ctx context.Context, ix *Index, query []rdf.Triple, initial Binding) (Binding, Stats, error) {
	var stats Stats
	solutions := []Binding{initial.Clone()}
	for _, pattern := range query {
		if err := ctx.Err(); err != nil {
			return nil, stats, err
		}
		var next []Binding
		for _, partial := range solutions {
			stats.Joins++
			bs := ix.bindings(pattern, partial, nil)
			if bs.failed() {
				continue
			}
			for _, row := range bs.rows {
				ext := partial
				if len(bs.vars) > 0 {
					ext = partial.Clone()
					for i, v := range bs.vars {
						ext[v] = row[i]
					}
				}
				next = append(next, ext)
			}
		}
		if len(next) == 0 {
			return nil, stats, nil
		}
		solutions = next
	}
	stats.Solutions = int64(len(solutions))

	var best Binding
	bestBlanks := 0
	for _, sol := range solutions {
		n := sol.blankValues()
		if n >= len(sol) {
			continue
		}
		if best == nil || n < bestBlanks {
			best, bestBlanks = sol, n
		}
	}
	return best, stats, nil
}
