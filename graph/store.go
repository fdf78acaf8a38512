package graph

import (
	"fmt"
	"math"
	"math/rand/v2"
	"runtime"
	"slices"

	"github.com/hupe1980/navigo/geo"
	"golang.org/x/sync/errgroup"
)

const (
	// MinRouteEdges is the number of outgoing edges a node needs to be
	// picked by RandomRouteNode.
	MinRouteEdges = 2

	// DefaultRandomAttempts bounds rejection sampling in RandomRouteNode
	// before it falls back to a scan.
	DefaultRandomAttempts = 1024

	parallelScanThreshold = 1 << 16
)

// Store is an immutable in-memory road graph.
type Store struct {
	nodes map[NodeID]*Node
	ids   []NodeID
	edges int
}

// NewStore builds a store from nodes. Later nodes replace earlier ones with
// the same id; the id order keeps the first occurrence.
// Returns ErrNegativeWeight if any weight is negative or NaN.
func NewStore(nodes []Node) (*Store, error) {
	b := newBuilder(len(nodes))
	for i := range nodes {
		n := nodes[i]
		if len(n.Targets) != len(n.Weights) {
			return nil, fmt.Errorf("graph: node %d has %d targets but %d weights", n.ID, len(n.Targets), len(n.Weights))
		}
		if j := invalidWeight(n.Weights); j >= 0 {
			return nil, fmt.Errorf("node %d edge %d weight %v: %w", n.ID, j, n.Weights[j], ErrNegativeWeight)
		}
		b.add(&n)
	}
	return b.build(), nil
}

func invalidWeight(ws []float32) int {
	for i, w := range ws {
		if w < 0 || w != w {
			return i
		}
	}
	return -1
}

type builder struct {
	s *Store
}

func newBuilder(hint int) *builder {
	return &builder{s: &Store{
		nodes: make(map[NodeID]*Node, hint),
		ids:   make([]NodeID, 0, hint),
	}}
}

func (b *builder) add(n *Node) {
	if old, ok := b.s.nodes[n.ID]; ok {
		b.s.edges -= old.EdgeCount()
	} else {
		b.s.ids = append(b.s.ids, n.ID)
	}
	b.s.nodes[n.ID] = n
	b.s.edges += n.EdgeCount()
}

func (b *builder) build() *Store {
	return b.s
}

// Node returns the node with the given id.
func (s *Store) Node(id NodeID) (*Node, bool) {
	n, ok := s.nodes[id]
	return n, ok
}

// Contains reports whether id resolves to a node.
func (s *Store) Contains(id NodeID) bool {
	_, ok := s.nodes[id]
	return ok
}

// IDs returns a copy of all node ids in load order.
func (s *Store) IDs() []NodeID {
	return slices.Clone(s.ids)
}

// Len returns the number of nodes.
func (s *Store) Len() int {
	return len(s.ids)
}

// EdgeCount returns the total number of edges.
func (s *Store) EdgeCount() int {
	return s.edges
}

// CoordinateOf returns the coordinate of id.
func (s *Store) CoordinateOf(id NodeID) (Coordinate, bool) {
	n, ok := s.nodes[id]
	if !ok {
		return Coordinate{}, false
	}
	return n.Coord, true
}

// NearestNode returns the node minimizing dist to (lat, lon). Ties go to the
// node that comes first in load order. If dist is nil, geo.Haversine is used.
// Returns false only for an empty store.
func (s *Store) NearestNode(lat, lon float32, dist geo.DistanceFunc) (NodeID, bool) {
	if len(s.ids) == 0 {
		return 0, false
	}
	if dist == nil {
		dist = geo.Haversine
	}

	if len(s.ids) < parallelScanThreshold {
		i, _ := s.nearestIn(0, len(s.ids), lat, lon, dist)
		return s.ids[i], true
	}

	chunks := runtime.GOMAXPROCS(0)
	size := (len(s.ids) + chunks - 1) / chunks
	type best struct {
		idx int
		d   float32
	}
	results := make([]best, chunks)

	var g errgroup.Group
	for c := range chunks {
		lo := c * size
		hi := min(lo+size, len(s.ids))
		results[c] = best{idx: -1}
		if lo >= hi {
			continue
		}
		g.Go(func() error {
			i, d := s.nearestIn(lo, hi, lat, lon, dist)
			results[c] = best{idx: i, d: d}
			return nil
		})
	}
	_ = g.Wait()

	// Reduce in chunk order so the earliest node wins ties.
	win := best{idx: -1}
	for _, r := range results {
		if r.idx < 0 {
			continue
		}
		if win.idx < 0 || r.d < win.d {
			win = r
		}
	}
	return s.ids[win.idx], true
}

func (s *Store) nearestIn(lo, hi int, lat, lon float32, dist geo.DistanceFunc) (int, float32) {
	bestIdx := lo
	bestD := float32(math.Inf(1))
	for i := lo; i < hi; i++ {
		c := s.nodes[s.ids[i]].Coord
		if d := dist(lat, lon, c.Lat, c.Lon); d < bestD {
			bestIdx, bestD = i, d
		}
	}
	return bestIdx, bestD
}

// RandomRouteNode samples a node with at least MinRouteEdges outgoing edges.
// It tries up to maxAttempts uniform samples from rng, then scans from a
// random offset, so it terminates on every graph. maxAttempts <= 0 selects
// DefaultRandomAttempts. Returns ErrNoEligibleNode if no node qualifies.
func (s *Store) RandomRouteNode(rng *rand.Rand, maxAttempts int) (NodeID, error) {
	if len(s.ids) == 0 {
		return 0, ErrNoEligibleNode
	}
	if maxAttempts <= 0 {
		maxAttempts = DefaultRandomAttempts
	}

	for range maxAttempts {
		id := s.ids[rng.IntN(len(s.ids))]
		if s.nodes[id].EdgeCount() >= MinRouteEdges {
			return id, nil
		}
	}

	off := rng.IntN(len(s.ids))
	for i := range s.ids {
		id := s.ids[(off+i)%len(s.ids)]
		if s.nodes[id].EdgeCount() >= MinRouteEdges {
			return id, nil
		}
	}
	return 0, ErrNoEligibleNode
}
