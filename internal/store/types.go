package store

import "time"

// Run modes.
const (
	ModeLabel = "label"
	ModeLean  = "lean"
)

// Run statuses.
const (
	StatusOK        = "ok"
	StatusError     = "error"
	StatusTimeout   = "timeout"
	StatusCollision = "collision"
)

// Run records the outcome of processing one document.
type Run struct {
	ID       string
	BatchID  string
	Seq      int64
	Document string
	Mode     string
	Status   string

	// Options are the effective settings. OptionsHash is derived from them
	// on write.
	Options     map[string]string
	OptionsHash string

	GraphHash        string
	InputTriples     int
	OutputTriples    int
	BlankNodes       int
	Partitions       int
	ColourIterations int
	Leaves           int
	LeanDepth        int
	LeanJoins        int64

	Error     string
	StartedAt time.Time
	Duration  time.Duration
}

// Collision captures a hash collision and the graph that caused it.
type Collision struct {
	RunID    string
	Round    int
	Path     string
	Expected int
	Actual   int
	Message  string

	// Graph is the offending document as N-Triples.
	Graph string
}
