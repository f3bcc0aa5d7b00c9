package rdf

import (
	"strings"
)

// Kind distinguishes the three node types of an RDF graph.
type Kind uint8

const (
	// KindIRI is an IRI constant, written <...>.
	KindIRI Kind = iota
	// KindLiteral is a literal constant, including any language tag or datatype.
	KindLiteral
	// KindBlank is an existential blank node, written _:id.
	KindBlank
)

func (k Kind) String() string {
	switch k {
	case KindIRI:
		return "iri"
	case KindLiteral:
		return "literal"
	case KindBlank:
		return "blank"
	default:
		return "unknown"
	}
}

// Node is a term of an RDF graph.
//
// Value holds the IRI without angle brackets, the blank node label without
// the "_:" prefix, or the complete N-Triples form of a literal (quotes,
// escapes and any @lang or ^^<datatype> suffix included). Literals keep their
// serialized form so that two literals are equal exactly when their N-Triples
// text is equal.
//
// Node is comparable and is used directly as a map key.
type Node struct {
	Kind  Kind
	Value string
}

// IRI returns an IRI constant.
func IRI(iri string) Node {
	return Node{Kind: KindIRI, Value: iri}
}

// Blank returns a blank node with the given local label.
func Blank(id string) Node {
	return Node{Kind: KindBlank, Value: id}
}

// Literal returns a plain literal for the given lexical form.
func Literal(lexical string) Node {
	return Node{Kind: KindLiteral, Value: quote(lexical)}
}

// LangLiteral returns a language-tagged literal.
func LangLiteral(lexical, lang string) Node {
	return Node{Kind: KindLiteral, Value: quote(lexical) + "@" + lang}
}

// TypedLiteral returns a literal with an explicit datatype IRI.
func TypedLiteral(lexical, datatype string) Node {
	return Node{Kind: KindLiteral, Value: quote(lexical) + "^^<" + datatype + ">"}
}

// RawLiteral wraps an already serialized literal token such as "a"@en.
func RawLiteral(token string) Node {
	return Node{Kind: KindLiteral, Value: token}
}

// IsBlank reports whether n is a blank node.
func (n Node) IsBlank() bool { return n.Kind == KindBlank }

// IsConstant reports whether n is an IRI or a literal.
func (n Node) IsConstant() bool { return n.Kind != KindBlank }

// IsZero reports whether n is the zero Node.
func (n Node) IsZero() bool { return n == Node{} }

// String returns the N-Triples form of the node.
func (n Node) String() string {
	switch n.Kind {
	case KindIRI:
		return "<" + n.Value + ">"
	case KindBlank:
		return "_:" + n.Value
	default:
		return n.Value
	}
}

// Compare orders nodes by kind (IRI < literal < blank) and then by value.
func Compare(a, b Node) int {
	if a.Kind != b.Kind {
		if a.Kind < b.Kind {
			return -1
		}
		return 1
	}
	return strings.Compare(a.Value, b.Value)
}

var literalEscaper = strings.NewReplacer(
	`\`, `\\`,
	`"`, `\"`,
	"\n", `\n`,
	"\r", `\r`,
	"\t", `\t`,
)

func quote(lexical string) string {
	return `"` + literalEscaper.Replace(lexical) + `"`
}
