package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/blabel/internal/canonjson"
	"github.com/roach88/blabel/internal/ntriples"
)

// Snapshot renders a result for golden comparison: a canonical JSON header
// with the run summary, then the output graph as N-Triples.
//
// Digests and timings are left out so that snapshots do not change when
// the hash function or the machine does.
func Snapshot(name string, result *Result) ([]byte, error) {
	header, err := canonjson.Marshal(map[string]any{
		"scenario_name":  name,
		"mode":           result.Run.Mode,
		"status":         result.Run.Status,
		"input_triples":  result.Run.InputTriples,
		"output_triples": result.Run.OutputTriples,
	})
	if err != nil {
		return nil, err
	}
	out := append(header, '\n')
	return append(out, ntriples.Format(result.Output)...), nil
}

// RunWithGolden executes a scenario and compares its snapshot against
// testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(t.Context(), scenario)
	if err != nil {
		return nil, err
	}
	if err := AssertGolden(t, scenario.Name, result); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares an existing result against its golden file without
// re-running the scenario.
func AssertGolden(t *testing.T, name string, result *Result) error {
	t.Helper()

	snapshot, err := Snapshot(name, result)
	if err != nil {
		return err
	}
	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, snapshot)
	return nil
}

// CheckGolden compares a result's snapshot with dir/{name}.golden outside of
// tests. With update the file is rewritten instead.
func CheckGolden(dir, name string, result *Result, update bool) error {
	snapshot, err := Snapshot(name, result)
	if err != nil {
		return err
	}
	path := filepath.Join(dir, name+".golden")
	if update {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
		return os.WriteFile(path, snapshot, 0644)
	}

	want, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read golden file: %w", err)
	}
	if !bytes.Equal(want, snapshot) {
		return fmt.Errorf("output does not match %s:\n--- want\n%s--- got\n%s", path, want, snapshot)
	}
	return nil
}
