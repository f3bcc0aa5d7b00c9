package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

const runColumns = `id, batch_id, seq, document, mode, status, options, options_hash, graph_hash,
	input_triples, output_triples, blank_nodes, partitions, colour_iterations, leaves,
	lean_depth, lean_joins, error, started_at, duration_ns`

// ReadRun retrieves a single run by ID.
// Returns sql.ErrNoRows if not found.
func (s *Store) ReadRun(ctx context.Context, id string) (Run, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?`, id)
	return scanRun(row)
}

// ListRuns returns runs ordered by batch_id, seq and id. An empty batchID
// lists every batch. A limit of zero or less means no limit.
//
// Returns an empty slice (not nil) if nothing matches.
func (s *Store) ListRuns(ctx context.Context, batchID string, limit int) ([]Run, error) {
	query := `SELECT ` + runColumns + ` FROM runs`
	var args []any
	if batchID != "" {
		query += ` WHERE batch_id = ?`
		args = append(args, batchID)
	}
	query += ` ORDER BY batch_id COLLATE BINARY ASC, seq ASC, id COLLATE BINARY ASC`
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// ReadCollision retrieves the collision recorded for a run.
// Returns sql.ErrNoRows if not found.
func (s *Store) ReadCollision(ctx context.Context, runID string) (Collision, error) {
	var c Collision
	err := s.db.QueryRowContext(ctx, `
		SELECT run_id, round, path, expected, actual, message, graph
		FROM collisions
		WHERE run_id = ?
	`, runID).Scan(&c.RunID, &c.Round, &c.Path, &c.Expected, &c.Actual, &c.Message, &c.Graph)
	if err != nil {
		return Collision{}, err
	}
	return c, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (Run, error) {
	var (
		run        Run
		optsJSON   string
		startedAt  int64
		durationNS int64
	)
	err := row.Scan(
		&run.ID,
		&run.BatchID,
		&run.Seq,
		&run.Document,
		&run.Mode,
		&run.Status,
		&optsJSON,
		&run.OptionsHash,
		&run.GraphHash,
		&run.InputTriples,
		&run.OutputTriples,
		&run.BlankNodes,
		&run.Partitions,
		&run.ColourIterations,
		&run.Leaves,
		&run.LeanDepth,
		&run.LeanJoins,
		&run.Error,
		&startedAt,
		&durationNS,
	)
	if err == sql.ErrNoRows {
		return Run{}, err
	}
	if err != nil {
		return Run{}, fmt.Errorf("scan run: %w", err)
	}

	run.Options, err = unmarshalOptions(optsJSON)
	if err != nil {
		return Run{}, err
	}
	run.StartedAt = time.Unix(0, startedAt).UTC()
	run.Duration = time.Duration(durationNS)
	return run, nil
}
