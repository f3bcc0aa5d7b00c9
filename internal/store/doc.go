// Package store provides SQLite-backed storage for blabel run records.
//
// The store is an append-only log with:
//   - Runs: one record per labelled or leaned document
//   - Collisions: the graph and details of every hash collision, keyed by run
//
// # Ordering
//
// Listings order by batch_id, then seq, then id COLLATE BINARY. Timestamps
// are stored but never used for ordering.
//
// # Identity
//
// Options are stored as RFC 8785 canonical JSON together with their
// domain-separated SHA-256 hash (see internal/canonjson), so runs with the
// same settings can be grouped.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
