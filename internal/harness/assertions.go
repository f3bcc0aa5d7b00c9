package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"

	"github.com/roach88/blabel/internal/batch"
	"github.com/roach88/blabel/internal/label"
	"github.com/roach88/blabel/internal/ntriples"
	"github.com/roach88/blabel/internal/rdf"
	"github.com/roach88/blabel/internal/store"
	"github.com/roach88/blabel/internal/testutil"
)

// AssertionError is returned when an assertion fails.
type AssertionError struct {
	Type     string
	Expected string
	Actual   string
	Output   []rdf.Triple
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)
	if len(e.Output) > 0 {
		fmt.Fprintf(&buf, "\nOutput graph:\n")
		for _, t := range e.Output {
			fmt.Fprintf(&buf, "  %s\n", t)
		}
	}
	return buf.String()
}

// AssertionContext provides what assertions need beyond the result.
type AssertionContext struct {
	Ctx      context.Context
	Pipeline *batch.Pipeline
	Input    []rdf.Triple
}

func assertTripleCount(output []rdf.Triple, a Assertion) error {
	if len(output) == a.Count {
		return nil
	}
	return &AssertionError{
		Type:     AssertTripleCount,
		Expected: fmt.Sprintf("%d triples", a.Count),
		Actual:   fmt.Sprintf("%d triples", len(output)),
		Output:   output,
	}
}

func assertBlankCount(output []rdf.Triple, a Assertion) error {
	n := len(rdf.BlankNodes(output))
	if n == a.Count {
		return nil
	}
	return &AssertionError{
		Type:     AssertBlankCount,
		Expected: fmt.Sprintf("%d blank nodes", a.Count),
		Actual:   fmt.Sprintf("%d blank nodes", n),
		Output:   output,
	}
}

func assertContains(output []rdf.Triple, a Assertion) error {
	want, _, err := ntriples.ParseLine(a.Triple)
	if err != nil {
		return err
	}
	if _, found := slices.BinarySearchFunc(output, want, rdf.CompareTriples); found {
		return nil
	}
	return &AssertionError{
		Type:     AssertContains,
		Expected: want.String(),
		Actual:   "not found in output",
		Output:   output,
	}
}

// canonical labels g with the default settings, which makes isomorphic
// graphs equal.
func canonical(ctx context.Context, g []rdf.Triple) ([]rdf.Triple, error) {
	l := label.New(label.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	res, err := l.Label(ctx, g)
	if err != nil {
		return nil, err
	}
	return res.Graph, nil
}

func assertIsomorphic(ctx context.Context, output []rdf.Triple, a Assertion) error {
	want, err := ntriples.ParseString(a.Graph)
	if err != nil {
		return err
	}
	cw, err := canonical(ctx, want)
	if err != nil {
		return fmt.Errorf("failed to label expected graph: %w", err)
	}
	co, err := canonical(ctx, output)
	if err != nil {
		return fmt.Errorf("failed to label output graph: %w", err)
	}
	if slices.Equal(cw, co) {
		return nil
	}
	return &AssertionError{
		Type:     AssertIsomorphic,
		Expected: fmt.Sprintf("a graph isomorphic to %d expected triples", len(want)),
		Actual:   "not isomorphic",
		Output:   output,
	}
}

// assertRenamingInvariant reprocesses a renamed and shuffled copy of the
// input. Labelled outputs must be identical; lean outputs keep input
// labels, so they only need to be isomorphic.
func assertRenamingInvariant(actx *AssertionContext, output []rdf.Triple, a Assertion) error {
	renamed := testutil.RenameBlanks(actx.Input, func(s string) string { return "renamed" + s })
	out, err := actx.Pipeline.Process(actx.Ctx, testutil.Shuffle(renamed, a.Seed))
	if err != nil {
		return fmt.Errorf("failed to process renamed input: %w", err)
	}

	same := slices.Equal(out.Graph, output)
	if actx.Pipeline.Mode == store.ModeLean {
		co, err := canonical(actx.Ctx, output)
		if err != nil {
			return err
		}
		cr, err := canonical(actx.Ctx, out.Graph)
		if err != nil {
			return err
		}
		same = slices.Equal(co, cr)
	}
	if same {
		return nil
	}
	return &AssertionError{
		Type:     AssertRenamingInvariant,
		Expected: "the same output for a renamed input",
		Actual:   ntriples.Format(out.Graph),
		Output:   output,
	}
}

// runFields exposes the run record fields that run assertions may check.
func runFields(run store.Run) map[string]interface{} {
	return map[string]interface{}{
		"status":            run.Status,
		"mode":              run.Mode,
		"document":          run.Document,
		"error":             run.Error,
		"graph_hash":        run.GraphHash,
		"input_triples":     int64(run.InputTriples),
		"output_triples":    int64(run.OutputTriples),
		"blank_nodes":       int64(run.BlankNodes),
		"partitions":        int64(run.Partitions),
		"colour_iterations": int64(run.ColourIterations),
		"leaves":            int64(run.Leaves),
		"lean_depth":        int64(run.LeanDepth),
		"lean_joins":        run.LeanJoins,
	}
}

func assertRun(run store.Run, a Assertion) error {
	actual := runFields(run)
	var mismatches []string
	for _, k := range sortedKeys(a.Expect) {
		got, ok := actual[k]
		if !ok {
			mismatches = append(mismatches, fmt.Sprintf("%s: unknown field", k))
			continue
		}
		if !runValuesEqual(a.Expect[k], got) {
			mismatches = append(mismatches, fmt.Sprintf("%s: expected %v, got %v", k, a.Expect[k], got))
		}
	}
	if len(mismatches) == 0 {
		return nil
	}
	return &AssertionError{
		Type:     AssertRun,
		Expected: fmt.Sprintf("%v", a.Expect),
		Actual:   strings.Join(mismatches, "; "),
	}
}

// runValuesEqual compares a YAML-decoded expected value with a run field.
func runValuesEqual(expected, actual interface{}) bool {
	switch exp := expected.(type) {
	case string:
		s, ok := actual.(string)
		return ok && s == exp
	case int:
		n, ok := actual.(int64)
		return ok && n == int64(exp)
	case int64:
		n, ok := actual.(int64)
		return ok && n == exp
	default:
		return false
	}
}

func sortedKeys(m map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// EvaluateAssertions evaluates all assertions against the result.
// Returns a slice of error messages for failed assertions.
func EvaluateAssertions(result *Result, assertions []Assertion, actx *AssertionContext) []string {
	var errors []string
	ctx := context.Background()
	if actx != nil && actx.Ctx != nil {
		ctx = actx.Ctx
	}

	for i, assertion := range assertions {
		var err error

		switch assertion.Type {
		case AssertTripleCount:
			err = assertTripleCount(result.Output, assertion)
		case AssertBlankCount:
			err = assertBlankCount(result.Output, assertion)
		case AssertContains:
			err = assertContains(result.Output, assertion)
		case AssertIsomorphic:
			err = assertIsomorphic(ctx, result.Output, assertion)
		case AssertRenamingInvariant:
			if actx == nil || actx.Pipeline == nil {
				err = fmt.Errorf("assertion[%d]: renaming_invariant requires a pipeline", i)
			} else {
				err = assertRenamingInvariant(actx, result.Output, assertion)
			}
		case AssertRun:
			err = assertRun(result.Run, assertion)
		default:
			err = fmt.Errorf("assertion[%d]: unknown assertion type %q", i, assertion.Type)
		}

		if err != nil {
			errors = append(errors, err.Error())
		}
	}

	return errors
}
