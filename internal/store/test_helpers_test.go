package store

import (
	"path/filepath"
	"testing"
	"time"
)

// createTestStore creates a new store in a temporary directory.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestRun creates a run with minimal required fields.
func createTestRun(id, batchID string, seq int64) Run {
	return Run{
		ID:        id,
		BatchID:   batchID,
		Seq:       seq,
		Document:  "doc.nt",
		Mode:      ModeLabel,
		Status:    StatusOK,
		Options:   map[string]string{"hash": "md5"},
		StartedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		Duration:  15 * time.Millisecond,
	}
}
