package graph

// NodeID identifies a node. Ids are stable, unique and not assumed dense.
type NodeID = uint64

// Coordinate is a WGS84 position in degrees.
type Coordinate struct {
	Lat float32 `json:"lat"`
	Lon float32 `json:"lon"`
}

// Node is a graph vertex with its outgoing edges.
// Targets and Weights are parallel and have equal length.
type Node struct {
	ID      NodeID
	Coord   Coordinate
	Targets []NodeID
	Weights []float32
}

// EdgeCount returns the number of outgoing edges.
func (n *Node) EdgeCount() int {
	return len(n.Targets)
}
