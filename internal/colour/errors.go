package colour

import (
	"errors"
	"fmt"
	"strings"

	"github.com/roach88/blabel/internal/rdf"
)

// HashCollisionError reports that distinct blank nodes could not be kept
// apart by their digests. It is fatal for the labelling run.
type HashCollisionError struct {
	// Round is the colouring round that failed, or 0 for a final count check.
	Round int

	// Path is the individualization path of the failing branch.
	Path []rdf.Node

	// Expected and Actual are the blank node and distinct digest counts of a
	// failed final check.
	Expected int
	Actual   int

	// Message is a human-readable description.
	Message string
}

// Error implements the error interface.
func (e *HashCollisionError) Error() string {
	if e.Round > 0 {
		parts := make([]string, len(e.Path))
		for i, n := range e.Path {
			parts[i] = n.String()
		}
		return fmt.Sprintf("hash collision: %s (round=%d, path=[%s])", e.Message, e.Round, strings.Join(parts, " "))
	}
	return fmt.Sprintf("hash collision: %s (expected=%d, actual=%d)", e.Message, e.Expected, e.Actual)
}

// NewRoundCollisionError creates a HashCollisionError for a colouring round
// whose collisions survived every recovery attempt.
func NewRoundCollisionError(round int, path []rdf.Node, broken int) *HashCollisionError {
	return &HashCollisionError{
		Round:   round,
		Path:    path,
		Message: fmt.Sprintf("unrecoverable collision across %d colour classes", broken),
	}
}

// NewCountCollisionError creates a HashCollisionError for a labelled graph
// whose distinct blank digests do not match the expected blank node count.
func NewCountCollisionError(expected, actual int) *HashCollisionError {
	return &HashCollisionError{
		Expected: expected,
		Actual:   actual,
		Message:  "labelled graph has fewer distinct blank node digests than blank nodes",
	}
}

// IsHashCollision returns true if err is or wraps a *HashCollisionError.
func IsHashCollision(err error) bool {
	var he *HashCollisionError
	return errors.As(err, &he)
}
