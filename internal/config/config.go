// Package config loads blabel configuration from CUE or YAML files and
// validates it against an embedded CUE schema.
package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"gopkg.in/yaml.v3"

	"github.com/roach88/blabel/internal/digest"
	"github.com/roach88/blabel/internal/label"
	"github.com/roach88/blabel/internal/lean"
)

//go:embed schema.cue
var schemaSource string

// Config is the full configuration surface.
type Config struct {
	Hash                            string `json:"hash"`
	DistinguishIsomorphicPartitions bool   `json:"distinguish_isomorphic_partitions"`
	UniquePerGraph                  bool   `json:"unique_per_graph"`
	Prune                           bool   `json:"prune"`

	Lean   Lean   `json:"lean"`
	Output Output `json:"output"`
	Batch  Batch  `json:"batch"`
}

// Lean configures the leaning pass.
type Lean struct {
	Enabled   bool   `json:"enabled"`
	Strategy  string `json:"strategy"`
	Prune     bool   `json:"prune"`
	Randomise bool   `json:"randomise"`
	Seed      int64  `json:"seed"`
}

// Output configures how labelled graphs are written.
type Output struct {
	Blank  bool   `json:"blank"`
	Prefix string `json:"prefix"`
}

// Batch configures the batch runner.
type Batch struct {
	Workers int    `json:"workers"`
	Timeout string `json:"timeout"`
	DB      string `json:"db"`
}

// Default returns the schema defaults.
func Default() *Config {
	cfg, err := decode(func(ctx *cue.Context) cue.Value {
		return ctx.CompileString("{}")
	})
	if err != nil {
		panic(fmt.Sprintf("config schema defaults do not decode: %v", err))
	}
	return cfg
}

// Load reads a configuration file. Files ending in .yaml or .yml are read
// as YAML; anything else is compiled as CUE. An empty path returns the
// defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &Error{Path: path, Message: fmt.Sprintf("failed to read config: %v", err)}
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return ParseYAML(path, data)
	default:
		return ParseCUE(path, data)
	}
}

// ParseCUE validates CUE source against the schema.
func ParseCUE(name string, src []byte) (*Config, error) {
	return decodeNamed(name, func(ctx *cue.Context) cue.Value {
		return ctx.CompileBytes(src, cue.Filename(name))
	})
}

// ParseYAML validates YAML source against the schema.
func ParseYAML(name string, src []byte) (*Config, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(src, &raw); err != nil {
		return nil, &Error{Path: name, Message: fmt.Sprintf("invalid YAML: %v", err)}
	}
	if raw == nil {
		raw = map[string]any{}
	}
	return decodeNamed(name, func(ctx *cue.Context) cue.Value {
		return ctx.Encode(raw)
	})
}

func decodeNamed(name string, build func(*cue.Context) cue.Value) (*Config, error) {
	cfg, err := decode(build)
	if err != nil {
		return nil, formatCUEError(name, err)
	}
	return cfg, nil
}

func decode(build func(*cue.Context) cue.Value) (*Config, error) {
	ctx := cuecontext.New()
	schema := ctx.CompileString(schemaSource, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return nil, err
	}
	def := schema.LookupPath(cue.ParsePath("#Config"))

	data := build(ctx)
	if err := data.Err(); err != nil {
		return nil, err
	}
	v := def.Unify(data)
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Decode(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// BatchTimeout parses the per-document timeout.
func (c *Config) BatchTimeout() (time.Duration, error) {
	d, err := time.ParseDuration(c.Batch.Timeout)
	if err != nil {
		return 0, fmt.Errorf("invalid batch timeout %q: %w", c.Batch.Timeout, err)
	}
	return d, nil
}

// LabelOptions converts the labelling settings to label options.
func (c *Config) LabelOptions() ([]label.Option, error) {
	fn, err := digest.Lookup(c.Hash)
	if err != nil {
		return nil, err
	}
	return []label.Option{
		label.WithHashFunction(fn),
		label.WithDistinguishIsomorphicPartitions(c.DistinguishIsomorphicPartitions),
		label.WithUniquePerGraph(c.UniquePerGraph),
		label.WithPrune(c.Prune),
	}, nil
}

// LeanOptions converts the leaning settings to lean options.
func (c *Config) LeanOptions() ([]lean.Option, error) {
	strategy, err := lean.ParseStrategy(c.Lean.Strategy, c.Lean.Prune)
	if err != nil {
		return nil, err
	}
	opts := []lean.Option{lean.WithStrategy(strategy)}
	if c.Lean.Randomise {
		opts = append(opts, lean.WithRandomise(uint64(c.Lean.Seed)))
	}
	return opts, nil
}
