package batch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/roach88/blabel/internal/canonjson"
	"github.com/roach88/blabel/internal/colour"
	"github.com/roach88/blabel/internal/ntriples"
	"github.com/roach88/blabel/internal/rdf"
	"github.com/roach88/blabel/internal/store"
)

// Clock supplies wall-clock time for run records.
type Clock interface {
	Now() time.Time
}

// IDGenerator supplies run and batch IDs.
type IDGenerator interface {
	NewID() (string, error)
}

// Recorder persists run records. *store.Store satisfies it.
type Recorder interface {
	WriteRun(ctx context.Context, run store.Run) error
	WriteCollision(ctx context.Context, c store.Collision) error
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

type uuidGenerator struct{}

func (uuidGenerator) NewID() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// Document is one input graph. Triples is used when set; otherwise Read
// loads the graph inside the worker.
type Document struct {
	Name    string
	Triples []rdf.Triple
	Read    func() ([]rdf.Triple, error)
}

// FileDocument returns a document read from path on demand.
func FileDocument(path string, gz bool) Document {
	return Document{
		Name: path,
		Read: func() ([]rdf.Triple, error) { return ntriples.ReadFile(path, gz) },
	}
}

func (d Document) load() ([]rdf.Triple, error) {
	if d.Triples != nil || d.Read == nil {
		return d.Triples, nil
	}
	return d.Read()
}

// Result pairs a run record with the processed output. Output is nil unless
// the run succeeded.
type Result struct {
	Run    store.Run
	Output *Output
}

// Option configures a Runner.
type Option func(*Runner)

// WithWorkers bounds the number of documents processed at once.
func WithWorkers(n int) Option {
	return func(r *Runner) {
		if n > 0 {
			r.workers = n
		}
	}
}

// WithTimeout bounds the time spent on each document. Zero disables it.
func WithTimeout(d time.Duration) Option {
	return func(r *Runner) {
		r.timeout = d
	}
}

// WithRecorder persists every run.
func WithRecorder(rec Recorder) Option {
	return func(r *Runner) {
		r.recorder = rec
	}
}

// WithClock replaces the wall clock.
func WithClock(c Clock) Option {
	return func(r *Runner) {
		r.clock = c
	}
}

// WithIDGenerator replaces the UUIDv7 generator.
func WithIDGenerator(g IDGenerator) Option {
	return func(r *Runner) {
		r.ids = g
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		r.logger = logger
	}
}

// Runner processes many documents through one pipeline.
//
// A failing document never stops the batch: its error is recorded in its
// run and the remaining documents carry on. Only recorder failures and
// cancellation of the parent context abort the batch.
type Runner struct {
	pipeline *Pipeline
	workers  int
	timeout  time.Duration
	recorder Recorder
	clock    Clock
	ids      IDGenerator
	logger   *slog.Logger
}

// NewRunner creates a Runner for p.
func NewRunner(p *Pipeline, opts ...Option) *Runner {
	r := &Runner{
		pipeline: p,
		workers:  4,
		clock:    systemClock{},
		ids:      uuidGenerator{},
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run processes docs and returns one result per document, in input order.
func (r *Runner) Run(ctx context.Context, docs []Document) (string, []Result, error) {
	batchID, err := r.ids.NewID()
	if err != nil {
		return "", nil, fmt.Errorf("failed to generate batch ID: %w", err)
	}

	results := make([]Result, len(docs))
	var failed atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)
	for i, doc := range docs {
		g.Go(func() error {
			res, err := r.runOne(gctx, batchID, int64(i), doc)
			if err != nil {
				return err
			}
			if res.Run.Status != store.StatusOK {
				failed.Add(1)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return batchID, nil, err
	}

	r.logger.Info("batch complete",
		"batch", batchID,
		"documents", len(docs),
		"failed", failed.Load())
	return batchID, results, nil
}

func (r *Runner) runOne(ctx context.Context, batchID string, seq int64, doc Document) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	id, err := r.ids.NewID()
	if err != nil {
		return Result{}, fmt.Errorf("failed to generate run ID: %w", err)
	}

	run := store.Run{
		ID:       id,
		BatchID:  batchID,
		Seq:      seq,
		Document: doc.Name,
		Mode:     r.pipeline.Mode,
		Options:  r.pipeline.Options,
	}

	dctx := ctx
	if r.timeout > 0 {
		var cancel context.CancelFunc
		dctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	run.StartedAt = r.clock.Now()
	triples, err := doc.load()
	var out *Output
	if err == nil {
		run.InputTriples = len(triples)
		out, err = r.pipeline.Process(dctx, triples)
	}
	run.Duration = r.clock.Now().Sub(run.StartedAt)

	// A cancelled batch is not a per-document failure.
	if err != nil && ctx.Err() != nil {
		return Result{}, ctx.Err()
	}

	var collision *colour.HashCollisionError
	switch {
	case err == nil:
		run.Status = store.StatusOK
		out.fill(&run)
		if run.GraphHash == "" {
			run.GraphHash = canonjson.HashWithDomain(canonjson.DomainGraph, []byte(ntriples.Format(out.Graph)))
		}
	case errors.As(err, &collision):
		run.Status = store.StatusCollision
		run.Error = err.Error()
	case errors.Is(err, context.DeadlineExceeded):
		run.Status = store.StatusTimeout
		run.Error = err.Error()
	default:
		run.Status = store.StatusError
		run.Error = err.Error()
	}

	logger := r.logger.With("run", run.ID, "document", run.Document, "status", run.Status)
	if err != nil {
		logger.Warn("document failed", "error", err)
	} else {
		logger.Debug("document processed", "duration", run.Duration)
	}

	if r.recorder != nil {
		if werr := r.recorder.WriteRun(ctx, run); werr != nil {
			return Result{}, fmt.Errorf("failed to record run %s: %w", run.ID, werr)
		}
		if collision != nil {
			c := store.Collision{
				RunID:    run.ID,
				Round:    collision.Round,
				Path:     formatPath(collision.Path),
				Expected: collision.Expected,
				Actual:   collision.Actual,
				Message:  collision.Message,
				Graph:    ntriples.Format(triples),
			}
			if werr := r.recorder.WriteCollision(ctx, c); werr != nil {
				return Result{}, fmt.Errorf("failed to record collision for run %s: %w", run.ID, werr)
			}
		}
	}

	if err != nil {
		return Result{Run: run}, nil
	}
	return Result{Run: run, Output: out}, nil
}

func formatPath(path []rdf.Node) string {
	parts := make([]string, len(path))
	for i, n := range path {
		parts[i] = n.String()
	}
	return strings.Join(parts, " ")
}
