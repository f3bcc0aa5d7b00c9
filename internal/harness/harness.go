package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/roach88/blabel/internal/batch"
	"github.com/roach88/blabel/internal/rdf"
	"github.com/roach88/blabel/internal/store"
	"github.com/roach88/blabel/internal/testutil"
)

// epoch is the start of the step clock used by every scenario.
var epoch = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

// Harness holds the per-scenario execution environment.
type Harness struct {
	store    *store.Store
	pipeline *batch.Pipeline
	runner   *batch.Runner
	logger   *slog.Logger
}

// Run executes a scenario and returns the result.
//
// Each scenario runs in a fresh in-memory database. The input is processed
// as a single-document batch, the run record is read back from the store,
// and the assertions are evaluated against it.
func Run(ctx context.Context, scenario *Scenario) (*Result, error) {
	cfg, err := scenario.config()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	input, err := scenario.input()
	if err != nil {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}

	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	p, err := batch.FromConfig(cfg, scenario.mode(), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to build pipeline: %w", err)
	}
	timeout, err := cfg.BatchTimeout()
	if err != nil {
		return nil, err
	}

	h := &Harness{
		store:    st,
		pipeline: p,
		logger:   logger,
		runner: batch.NewRunner(p,
			batch.WithWorkers(1),
			batch.WithTimeout(timeout),
			batch.WithRecorder(st),
			batch.WithClock(testutil.NewStepClock(epoch, time.Millisecond)),
			batch.WithIDGenerator(testutil.NewSequentialIDGenerator(scenario.Name)),
			batch.WithLogger(logger),
		),
	}
	return h.execute(ctx, scenario, input)
}

func (h *Harness) execute(ctx context.Context, scenario *Scenario, input []rdf.Triple) (*Result, error) {
	batchID, results, err := h.runner.Run(ctx, []batch.Document{{Name: scenario.Name, Triples: input}})
	if err != nil {
		return nil, fmt.Errorf("failed to run scenario: %w", err)
	}

	runs, err := h.store.ListRuns(ctx, batchID, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to read run: %w", err)
	}
	if len(runs) != 1 {
		return nil, fmt.Errorf("expected 1 stored run, found %d", len(runs))
	}

	result := NewResult()
	result.Run = runs[0]
	if out := results[0].Output; out != nil {
		result.Output = out.Graph
	}
	h.logger.Debug("scenario executed", "scenario", scenario.Name, "status", result.Run.Status)

	actx := &AssertionContext{
		Ctx:      ctx,
		Pipeline: h.pipeline,
		Input:    input,
	}
	for _, msg := range EvaluateAssertions(result, scenario.Assertions, actx) {
		result.AddError(msg)
	}
	return result, nil
}
