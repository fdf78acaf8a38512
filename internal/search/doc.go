// Package search runs single-source shortest-path searches over a graph.Store.
//
// A Searcher owns all scratch state of one search: the distance heap, the
// open list of discovered nodes and the closed set of finalized nodes. It is
// reset at the start of every Run and reused across runs, so steady-state
// searches allocate only the Discovered records of the nodes they reach.
//
// Searcher is NOT thread-safe. It is intended to be owned by a single
// goroutine during a search. Read-only graph stores may be shared freely.
package search
