package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/roach88/blabel/internal/harness"
)

// TestOptions holds flags for the test command.
type TestOptions struct {
	*RootOptions
	Update    bool   // regenerate golden files
	Filter    string // scenario filter (glob pattern)
	GoldenDir string
}

// NewTestCommand creates the test command.
func NewTestCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TestOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "test <scenarios-dir>",
		Short: "Run conformance scenarios",
		Long: `Run YAML conformance scenarios. Each scenario processes one graph and
checks assertions on the output and the run record. Scenarios marked golden
are also compared with a golden snapshot.

Exit codes:
  0 - All scenarios passed
  1 - One or more scenarios failed
  2 - Command error (invalid paths, etc.)

Examples:
  blabel test ./scenarios
  blabel test ./scenarios --filter "lean_*"
  blabel test ./scenarios --update
  blabel test ./scenarios --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTests(opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Update, "update", false, "regenerate golden files")
	cmd.Flags().StringVar(&opts.Filter, "filter", "", "filter scenarios by glob pattern")
	cmd.Flags().StringVar(&opts.GoldenDir, "golden-dir", "", "golden file directory (default <scenarios-dir>/../golden)")

	return cmd
}

func runTests(opts *TestOptions, dir string, cmd *cobra.Command) error {
	f := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return f.Fail(ExitCommandError, ErrCodeInput, fmt.Sprintf("scenarios directory not found: %s", dir), nil)
	}
	goldenDir := opts.GoldenDir
	if goldenDir == "" {
		goldenDir = filepath.Join(dir, "..", "golden")
	}

	files, err := harness.FindScenarios(dir, opts.Filter)
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeInput, "failed to find scenarios", err)
	}

	ctx, cancel := commandContext(cmd)
	defer cancel()

	passed, failed := 0, 0
	scenarios := make([]any, 0, len(files))
	for _, file := range files {
		name, errs := runScenario(ctx, file, goldenDir, opts.Update)
		if len(errs) == 0 {
			passed++
		} else {
			failed++
		}

		entry := map[string]any{"name": name, "pass": len(errs) == 0}
		if len(errs) > 0 {
			entry["errors"] = errs
		}
		scenarios = append(scenarios, entry)

		if opts.Format != "json" {
			if len(errs) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "PASS %s\n", name)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "FAIL %s\n", name)
				for _, e := range errs {
					fmt.Fprintf(cmd.OutOrStdout(), "  %s\n", e)
				}
			}
		}
	}

	if opts.Format == "json" {
		if err := f.Success(map[string]any{
			"scenarios": scenarios,
			"passed":    passed,
			"failed":    failed,
			"total":     len(files),
		}); err != nil {
			return err
		}
	} else if len(files) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No scenarios found.")
	} else {
		fmt.Fprintf(cmd.OutOrStdout(), "\n%d passed, %d failed, %d total\n", passed, failed, len(files))
	}

	if failed > 0 {
		e := NewExitError(ExitFailure, fmt.Sprintf("%d scenario(s) failed", failed))
		e.Reported = true
		return e
	}
	return nil
}

// runScenario loads and runs one scenario file. Load and execution errors
// count as failures of that scenario.
func runScenario(ctx context.Context, file, goldenDir string, update bool) (string, []string) {
	name := filepath.Base(file)
	scenario, err := harness.LoadScenario(file)
	if err != nil {
		return name, []string{err.Error()}
	}

	result, err := harness.Run(ctx, scenario)
	if err != nil {
		return scenario.Name, []string{err.Error()}
	}
	errs := result.Errors
	if scenario.Golden {
		if err := harness.CheckGolden(goldenDir, scenario.Name, result, update); err != nil {
			errs = append(errs, err.Error())
		}
	}
	return scenario.Name, errs
}
