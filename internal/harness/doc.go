// Package harness runs blabel conformance scenarios.
//
// # Scenario Format
//
// Scenarios are YAML files:
//
//	name: covered_chain
//	description: "A blank chain covered by a longer one collapses onto it"
//	mode: lean
//	config:
//	  lean:
//	    strategy: bfs
//	input: |
//	  _:a <http://example.org/p> _:b .
//	  _:c <http://example.org/p> _:d .
//	golden: true
//	assertions:
//	  - type: triple_count
//	    count: 1
//	  - type: run
//	    expect: { status: ok, lean_depth: 1 }
//
// The input is either inline N-Triples or an input_file path relative to
// the scenario. The config block uses the same schema as configuration
// files and is validated the same way.
//
// # Assertion Types
//
//   - triple_count: the output has exactly count triples
//   - blank_count: the output has exactly count distinct blank nodes
//   - contains: the output contains the given ground triple
//   - isomorphic: the output is isomorphic to the given graph
//   - renaming_invariant: renaming and shuffling the input gives the same output
//   - run: the stored run record has the expected field values
//
// # Deterministic Testing
//
// Every scenario runs against a fresh in-memory SQLite store with a step
// clock and sequential run IDs, so run records are reproducible.
package harness
