package rdf

import (
	"errors"
	"fmt"
	"strings"
)

// ArityError reports a tuple that is too short to be a triple.
type ArityError struct {
	// Arity is the number of nodes the tuple carried.
	Arity int

	// Tuple is the rejected tuple in N-Triples-like form.
	Tuple string

	// Line is the 1-based input line, or 0 when unknown.
	Line int
}

func (e *ArityError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: expected a triple, got tuple of length %d: %s", e.Line, e.Arity, e.Tuple)
	}
	return fmt.Sprintf("expected a triple, got tuple of length %d: %s", e.Arity, e.Tuple)
}

// NewArityError creates an ArityError for the given tuple.
func NewArityError(arity int, nodes []Node) *ArityError {
	parts := make([]string, len(nodes))
	for i, n := range nodes {
		parts[i] = n.String()
	}
	return &ArityError{Arity: arity, Tuple: strings.Join(parts, " ")}
}

// IsArityError returns true if err is or wraps an *ArityError.
func IsArityError(err error) bool {
	var ae *ArityError
	return errors.As(err, &ae)
}
