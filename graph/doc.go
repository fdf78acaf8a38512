// Package graph holds the immutable road network a route search runs on.
//
// A Store maps node identities to nodes. Each node carries a float32
// coordinate and its outgoing edges as parallel target/weight slices.
// Stores are built once, by Decode/Load from the binary graph format or by
// NewStore from memory, and are read-only afterwards. They are safe for
// concurrent use without synchronization.
//
// # File format
//
// All integers are int32, all reals float64, big-endian by default:
//
//	nodeCount
//	repeat nodeCount:
//	    nodeId lat lon edgeCount
//	    repeat edgeCount:
//	        targetId weight
//
// Reals are narrowed to float32 on load. Negative ids are sign-extended into
// the 64-bit identity space. The stream may be wrapped in a zstd or LZ4
// frame; Decode detects either by its magic number.
//
// Edge targets that do not resolve to a node are kept and skipped by the
// search. Negative or NaN weights are rejected.
package graph
