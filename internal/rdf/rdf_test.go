package rdf

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNode_String(t *testing.T) {
	tests := []struct {
		name string
		node Node
		want string
	}{
		{"iri", IRI("http://example.org/a"), "<http://example.org/a>"},
		{"blank", Blank("b0"), "_:b0"},
		{"plain literal", Literal("hello"), `"hello"`},
		{"escaped literal", Literal("say \"hi\"\n"), `"say \"hi\"\n"`},
		{"lang literal", LangLiteral("chat", "fr"), `"chat"@fr`},
		{"typed literal", TypedLiteral("1", "http://www.w3.org/2001/XMLSchema#int"), `"1"^^<http://www.w3.org/2001/XMLSchema#int>`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.node.String())
		})
	}
}

func TestCompare_OrdersKindsThenValues(t *testing.T) {
	iri := IRI("z")
	lit := Literal("a")
	blank := Blank("a")

	assert.Negative(t, Compare(iri, lit), "IRIs sort before literals")
	assert.Negative(t, Compare(lit, blank), "literals sort before blank nodes")
	assert.Negative(t, Compare(Blank("a"), Blank("b")))
	assert.Zero(t, Compare(Blank("a"), Blank("a")))
	assert.Positive(t, Compare(IRI("b"), IRI("a")))
}

func TestNewTriple_RejectsShortTuples(t *testing.T) {
	_, err := NewTriple(IRI("s"), IRI("p"))
	require.Error(t, err)
	assert.True(t, IsArityError(err))

	var ae *ArityError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, 2, ae.Arity)
	assert.Contains(t, ae.Error(), "<s> <p>")
}

func TestNewTriple_TruncatesQuads(t *testing.T) {
	tr, err := NewTriple(Blank("a"), IRI("p"), Blank("b"), IRI("g"))
	require.NoError(t, err)
	assert.Equal(t, Triple{S: Blank("a"), P: IRI("p"), O: Blank("b")}, tr)
}

func TestSortedSet_SortsAndDeduplicates(t *testing.T) {
	a := Triple{Blank("b"), IRI("p"), Blank("c")}
	b := Triple{IRI("u"), IRI("p"), IRI("v")}
	c := Triple{Blank("a"), IRI("p"), Blank("b")}

	got := SortedSet([]Triple{a, b, c, a})
	assert.Equal(t, []Triple{b, c, a}, got)
}

func TestCompareGraphs_SizeFirst(t *testing.T) {
	small := []Triple{{Blank("z"), IRI("p"), Blank("z")}}
	big := []Triple{{IRI("a"), IRI("p"), IRI("b")}, {IRI("a"), IRI("p"), IRI("c")}}

	assert.Negative(t, CompareGraphs(small, big))
	assert.Positive(t, CompareGraphs(big, small))
	assert.Zero(t, CompareGraphs(big, SortedSet(big)))
}

func TestBlankNodes(t *testing.T) {
	triples := []Triple{
		{Blank("y"), IRI("p"), Blank("x")},
		{IRI("u"), IRI("p"), Blank("y")},
		{IRI("u"), IRI("p"), IRI("v")},
	}
	assert.Equal(t, []Node{Blank("x"), Blank("y")}, BlankNodes(triples))
	assert.True(t, HasBlankNodes(triples))
	assert.False(t, HasBlankNodes(triples[2:]))
	assert.True(t, triples[2].IsGround())
}
