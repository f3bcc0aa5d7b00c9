// Package partition holds the set structures used to prune canonical
// labelling and leaning searches: a union-find, an orbit tracker built on it,
// and the ordered refinement of blank nodes.
package partition
