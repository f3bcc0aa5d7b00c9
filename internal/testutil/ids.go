package testutil

import (
	"fmt"
	"sync"
)

// SequentialIDGenerator hands out predictable run IDs.
//
// IDs are prefix-0001, prefix-0002 and so on, which keeps stored runs and
// golden output stable across test runs. It satisfies batch.IDGenerator.
//
// Thread-safety: all methods are safe for concurrent use.
type SequentialIDGenerator struct {
	mu     sync.Mutex
	prefix string
	n      int
}

// NewSequentialIDGenerator creates a generator. An empty prefix becomes
// "test-run".
func NewSequentialIDGenerator(prefix string) *SequentialIDGenerator {
	if prefix == "" {
		prefix = "test-run"
	}
	return &SequentialIDGenerator{prefix: prefix}
}

// NewID returns the next ID. It never fails.
func (g *SequentialIDGenerator) NewID() (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("%s-%04d", g.prefix, g.n), nil
}
