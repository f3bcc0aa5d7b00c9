package lean

import (
	"context"
	"fmt"
	"strings"

	"github.com/roach88/blabel/internal/rdf"
)

// Strategy searches for a homomorphism from the query into the data that
// maps the query's blank nodes onto fewer blank nodes.
type Strategy interface {
	// Name identifies the strategy in configuration and run records.
	Name() string

	// FindReducingBinding extends initial to a binding of every query
	// variable that satisfies all of query. It returns nil when no such
	// binding reduces the number of blank nodes.
	FindReducingBinding(ctx context.Context, ix *Index, query []rdf.Triple, initial Binding) (Binding, Stats, error)
}

// Stats counts the work done by one search.
type Stats struct {
	Joins     int64
	Solutions int64
}

// Strategy names.
const (
	StrategyDFS = "dfs"
	StrategyBFS = "bfs"
)

// ParseStrategy returns the strategy with the given name. prune only
// affects the depth-first strategy.
func ParseStrategy(name string, prune bool) (Strategy, error) {
	switch strings.ToLower(name) {
	case StrategyDFS, "":
		return NewDFS(prune), nil
	case StrategyBFS:
		return NewBFS(), nil
	default:
		return nil, fmt.Errorf("unknown lean strategy %q (want %s or %s)", name, StrategyDFS, StrategyBFS)
	}
}
