package store

import (
	"context"
	"fmt"
)

// WriteRun inserts a run record. Uses ON CONFLICT(id) DO NOTHING, so
// writing the same run twice is a no-op. The options hash is computed from
// the options.
func (s *Store) WriteRun(ctx context.Context, run Run) error {
	optsJSON, optsHash, err := marshalOptions(run.Options)
	if err != nil {
		return fmt.Errorf("write run: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO runs
		(id, batch_id, seq, document, mode, status, options, options_hash, graph_hash,
		 input_triples, output_triples, blank_nodes, partitions, colour_iterations, leaves,
		 lean_depth, lean_joins, error, started_at, duration_ns)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		run.ID,
		run.BatchID,
		run.Seq,
		run.Document,
		run.Mode,
		run.Status,
		optsJSON,
		optsHash,
		run.GraphHash,
		run.InputTriples,
		run.OutputTriples,
		run.BlankNodes,
		run.Partitions,
		run.ColourIterations,
		run.Leaves,
		run.LeanDepth,
		run.LeanJoins,
		run.Error,
		run.StartedAt.UnixNano(),
		run.Duration.Nanoseconds(),
	)
	if err != nil {
		return fmt.Errorf("write run: %w", err)
	}
	return nil
}

// WriteCollision records a collision for an existing run. A second
// collision for the same run is ignored.
func (s *Store) WriteCollision(ctx context.Context, c Collision) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO collisions (run_id, round, path, expected, actual, message, graph)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT DO NOTHING
	`, c.RunID, c.Round, c.Path, c.Expected, c.Actual, c.Message, c.Graph)
	if err != nil {
		return fmt.Errorf("write collision: %w", err)
	}
	return nil
}
