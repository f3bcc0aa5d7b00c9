package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/roach88/blabel/internal/config"
	"github.com/roach88/blabel/internal/ntriples"
	"github.com/roach88/blabel/internal/rdf"
	"github.com/roach88/blabel/internal/store"
)

// Scenario defines a conformance test scenario: one input graph, the
// settings to process it with, and assertions on the outcome.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Mode is "label" (the default) or "lean".
	Mode string `yaml:"mode,omitempty"`

	// Config holds configuration overrides in the configuration file
	// schema. Omitted fields take their defaults.
	Config yaml.Node `yaml:"config,omitempty"`

	// Input is the input graph as N-Triples.
	Input string `yaml:"input,omitempty"`

	// InputFile is an N-Triples file, relative to the scenario file. It is
	// used when Input is empty.
	InputFile string `yaml:"input_file,omitempty"`

	// Golden compares the output with testdata/golden/<name>.golden.
	Golden bool `yaml:"golden,omitempty"`

	// Assertions validate the output graph and the run record.
	Assertions []Assertion `yaml:"assertions"`
}

// Assertion validates the output graph or the run record.
type Assertion struct {
	// Type is one of the Assert* constants.
	Type string `yaml:"type"`

	// Count is the expected size (triple_count, blank_count).
	Count int `yaml:"count,omitempty"`

	// Triple is one N-Triples statement without blank nodes (contains).
	Triple string `yaml:"triple,omitempty"`

	// Graph is an N-Triples graph (isomorphic).
	Graph string `yaml:"graph,omitempty"`

	// Seed drives the renaming and shuffling (renaming_invariant).
	Seed uint64 `yaml:"seed,omitempty"`

	// Expect maps run record fields to expected values (run). Subset match.
	Expect map[string]interface{} `yaml:"expect,omitempty"`
}

// Assertion type constants.
const (
	AssertTripleCount       = "triple_count"
	AssertBlankCount        = "blank_count"
	AssertContains          = "contains"
	AssertIsomorphic        = "isomorphic"
	AssertRenamingInvariant = "renaming_invariant"
	AssertRun               = "run"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	// Strict decoding catches typos like "assertion:" vs "assertions:".
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if scenario.InputFile != "" && !filepath.IsAbs(scenario.InputFile) {
		scenario.InputFile = filepath.Join(filepath.Dir(path), scenario.InputFile)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// FindScenarios returns the YAML files in dir whose base name matches the
// glob filter, sorted by name. An empty filter matches everything.
func FindScenarios(dir, filter string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !(strings.HasSuffix(name, ".yaml") || strings.HasSuffix(name, ".yml")) {
			continue
		}
		if filter != "" {
			ok, err := filepath.Match(filter, strings.TrimSuffix(strings.TrimSuffix(name, ".yaml"), ".yml"))
			if err != nil {
				return nil, fmt.Errorf("invalid filter %q: %w", filter, err)
			}
			if !ok {
				continue
			}
		}
		files = append(files, filepath.Join(dir, name))
	}
	return files, nil
}

// mode returns the effective processing mode.
func (s *Scenario) mode() string {
	if s.Mode == "" {
		return store.ModeLabel
	}
	return s.Mode
}

// config decodes the configuration overrides.
func (s *Scenario) config() (*config.Config, error) {
	if s.Config.Kind == 0 {
		return config.Default(), nil
	}
	data, err := yaml.Marshal(&s.Config)
	if err != nil {
		return nil, fmt.Errorf("failed to re-encode config: %w", err)
	}
	return config.ParseYAML(s.Name+".config", data)
}

// input parses the input graph.
func (s *Scenario) input() ([]rdf.Triple, error) {
	if s.Input != "" {
		return ntriples.ParseString(s.Input)
	}
	return ntriples.ReadFile(s.InputFile, strings.HasSuffix(s.InputFile, ".gz"))
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if m := s.mode(); m != store.ModeLabel && m != store.ModeLean {
		return fmt.Errorf("mode must be %q or %q, got %q", store.ModeLabel, store.ModeLean, s.Mode)
	}
	if s.Input == "" && s.InputFile == "" {
		return fmt.Errorf("input or input_file is required")
	}
	if s.Input != "" && s.InputFile != "" {
		return fmt.Errorf("input and input_file are mutually exclusive")
	}
	if s.InputFile != "" {
		if _, err := os.Stat(s.InputFile); os.IsNotExist(err) {
			return fmt.Errorf("input file not found: %s", s.InputFile)
		}
	}
	if len(s.Assertions) == 0 && !s.Golden {
		return fmt.Errorf("assertions list is required unless golden is set")
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertTripleCount, AssertBlankCount:
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for %s", index, a.Type)
		}
	case AssertContains:
		t, ok, err := ntriples.ParseLine(a.Triple)
		if err != nil {
			return fmt.Errorf("assertions[%d]: %w", index, err)
		}
		if !ok {
			return fmt.Errorf("assertions[%d]: triple is required for contains", index)
		}
		if t.S.IsBlank() || t.O.IsBlank() {
			return fmt.Errorf("assertions[%d]: contains needs a triple without blank nodes", index)
		}
	case AssertIsomorphic:
		if _, err := ntriples.ParseString(a.Graph); err != nil {
			return fmt.Errorf("assertions[%d]: invalid graph: %w", index, err)
		}
	case AssertRenamingInvariant:
	case AssertRun:
		if len(a.Expect) == 0 {
			return fmt.Errorf("assertions[%d]: expect is required for run", index)
		}
		for k := range a.Expect {
			if _, ok := runFields(store.Run{})[k]; !ok {
				return fmt.Errorf("assertions[%d]: unknown run field %q", index, k)
			}
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}
