// Package rdf defines the node and triple model shared by the labelling and
// leaning engines.
//
// Nodes are small comparable values ordered first by kind (IRI, literal,
// blank) and then by their textual value. Triples order lexicographically by
// component. Both orders are total, so every sorted view of a graph is
// deterministic across runs.
package rdf
