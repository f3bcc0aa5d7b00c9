package lean

import (
	"errors"
	"fmt"

	"github.com/roach88/blabel/internal/rdf"
)

// InvariantError reports a leaning result that violates one of the
// guarantees callers rely on. It indicates a bug, never bad input.
type InvariantError struct {
	// Code identifies the violated invariant.
	Code InvariantCode

	// Message is a human-readable description.
	Message string

	// Node is the offending blank node, when there is one.
	Node rdf.Node
}

// InvariantCode categorizes invariant violations.
type InvariantCode string

const (
	// ErrCodeClosureDiverged indicates a core map whose transitive closure
	// did not settle, which means it contains a cycle.
	ErrCodeClosureDiverged InvariantCode = "CLOSURE_DIVERGED"

	// ErrCodeIncompleteCore indicates an input blank node missing from the
	// core map.
	ErrCodeIncompleteCore InvariantCode = "INCOMPLETE_CORE"
)

// Error implements the error interface.
func (e *InvariantError) Error() string {
	if !e.Node.IsZero() {
		return fmt.Sprintf("%s: %s (node=%s)", e.Code, e.Message, e.Node)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewClosureError creates an InvariantError for a map that did not close
// within size iterations.
func NewClosureError(size int) *InvariantError {
	return &InvariantError{
		Code:    ErrCodeClosureDiverged,
		Message: fmt.Sprintf("transitive closure did not converge within %d iterations", size),
	}
}

// NewIncompleteCoreError creates an InvariantError for a blank node the core
// map does not cover.
func NewIncompleteCoreError(n rdf.Node) *InvariantError {
	return &InvariantError{
		Code:    ErrCodeIncompleteCore,
		Message: "core map does not cover every input blank node",
		Node:    n,
	}
}

// IsInvariant returns true if err is or wraps an *InvariantError.
func IsInvariant(err error) bool {
	var ie *InvariantError
	return errors.As(err, &ie)
}
