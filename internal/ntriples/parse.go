// Package ntriples reads and writes line-based RDF: N-Triples, and N-Quads
// with the graph label dropped.
package ntriples

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	"github.com/roach88/blabel/internal/rdf"
)

var statementLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Literal", Pattern: `"(?:[^"\\]|\\.)*"(?:@[a-zA-Z]+(?:-[a-zA-Z0-9]+)*|\^\^<[^<>"{}|^` + "`" + `\\\s]*>)?`},
	{Name: "IRI", Pattern: `<[^<>"{}|^` + "`" + `\\\s]*>`},
	{Name: "Blank", Pattern: `_:[A-Za-z0-9_](?:[A-Za-z0-9_.\-]*[A-Za-z0-9_\-])?`},
	{Name: "Dot", Pattern: `\.`},
	{Name: "comment", Pattern: `#[^\n]*`},
	{Name: "whitespace", Pattern: `[ \t\r]+`},
})

type statement struct {
	Terms []*term `parser:"@@+ Dot"`
}

type term struct {
	IRI     *string `parser:"  @IRI"`
	Blank   *string `parser:"| @Blank"`
	Literal *string `parser:"| @Literal"`
}

func (t *term) node() rdf.Node {
	switch {
	case t.IRI != nil:
		return rdf.IRI(strings.TrimSuffix(strings.TrimPrefix(*t.IRI, "<"), ">"))
	case t.Blank != nil:
		return rdf.Blank(strings.TrimPrefix(*t.Blank, "_:"))
	default:
		return rdf.RawLiteral(*t.Literal)
	}
}

var statementParser = participle.MustBuild[statement](
	participle.Lexer(statementLexer),
)

// maxLineBytes bounds a single statement line.
const maxLineBytes = 16 << 20

// ParseLine parses one statement. It returns ok=false for blank and
// comment-only lines.
func ParseLine(line string) (rdf.Triple, bool, error) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" || strings.HasPrefix(trimmed, "#") {
		return rdf.Triple{}, false, nil
	}
	stmt, err := statementParser.ParseString("", trimmed)
	if err != nil {
		return rdf.Triple{}, false, fmt.Errorf("failed to parse statement: %w", err)
	}
	nodes := make([]rdf.Node, len(stmt.Terms))
	for i, t := range stmt.Terms {
		nodes[i] = t.node()
	}
	triple, err := rdf.NewTriple(nodes...)
	if err != nil {
		return rdf.Triple{}, false, err
	}
	return triple, true, nil
}

// Parse reads every statement from r. Errors carry the 1-based line number;
// a statement of fewer than three terms yields an *rdf.ArityError.
func Parse(r io.Reader) ([]rdf.Triple, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxLineBytes)

	var triples []rdf.Triple
	line := 0
	for scanner.Scan() {
		line++
		t, ok, err := ParseLine(scanner.Text())
		if err != nil {
			var ae *rdf.ArityError
			if errors.As(err, &ae) {
				ae.Line = line
				return nil, ae
			}
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if ok {
			triples = append(triples, t)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}
	return triples, nil
}

// ParseString is Parse over a string.
func ParseString(s string) ([]rdf.Triple, error) {
	return Parse(strings.NewReader(s))
}
