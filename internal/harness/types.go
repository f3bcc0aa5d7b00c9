package harness

import (
	"github.com/roach88/blabel/internal/rdf"
	"github.com/roach88/blabel/internal/store"
)

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true if every assertion held.
	Pass bool `json:"pass"`

	// Output is the sorted output graph. It is empty when the run failed.
	Output []rdf.Triple `json:"output"`

	// Run is the run record read back from the store.
	Run store.Run `json:"run"`

	// Errors contains assertion failure messages.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Errors: []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
