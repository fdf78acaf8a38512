package search

import (
	"context"
	"fmt"
	"math/rand/v2"
	"slices"
	"time"

	"github.com/hupe1980/navigo/graph"
	"github.com/hupe1980/navigo/internal/heap"
)

// ctxCheckInterval is the number of heap pops between context checks.
const ctxCheckInterval = 1024

// Observer receives progress events from a running search.
// Calls happen on the search goroutine and must not block.
type Observer interface {
	// Candidate is called with every node taken off the heap.
	Candidate(id graph.NodeID)
	// Preview is called with the coordinate of sampled finalized nodes.
	Preview(c graph.Coordinate)
}

// Request describes one search.
type Request struct {
	Start  graph.NodeID
	Target graph.NodeID

	// Observer is optional.
	Observer Observer

	// PreviewProbability is the chance that a finalized node is reported
	// through Observer.Preview. Zero disables sampling.
	PreviewProbability float64

	// PreviewSeed seeds the sampling generator. Equal seeds give equal traces.
	PreviewSeed uint64
}

// Stats are diagnostics of one search.
type Stats struct {
	Pops         int
	Relaxations  int
	DecreaseKeys int
	MaxHeapSize  int
	Duration     time.Duration
}

// Result is the outcome of a search. Found is false when the target is not
// reachable; that is a valid result, not an error.
type Result struct {
	Found bool
	// Target is the target's state when Found. Its Pred chain leads to the start.
	Target *Discovered
	// Distance is the accumulated distance at the target.
	Distance float32
	Stats    Stats
}

// Path returns the node ids of the route in start to target order,
// or nil if no path was found.
func (r Result) Path() []graph.NodeID {
	if !r.Found {
		return nil
	}
	var path []graph.NodeID
	for d := r.Target; d != nil; d = d.Pred {
		path = append(path, d.ID)
	}
	slices.Reverse(path)
	return path
}

// Searcher is a reusable execution context for route searches.
type Searcher struct {
	Heap   *heap.NodeDistHeap
	Open   *OpenList
	Closed *ClosedSet

	pcg *rand.PCG
	rng *rand.Rand
}

// NewSearcher creates a searcher whose heap holds heapCapacity entries.
func NewSearcher(heapCapacity int) *Searcher {
	pcg := rand.NewPCG(0, 0)
	return &Searcher{
		Heap:   heap.New(heapCapacity),
		Open:   NewOpenList(),
		Closed: NewClosedSet(),
		pcg:    pcg,
		rng:    rand.New(pcg),
	}
}

// Reset clears the searcher state for reuse without freeing memory.
func (s *Searcher) Reset() {
	s.Heap.Reset()
	s.Open.Reset()
	s.Closed.Reset()
}

// Run executes Dijkstra's algorithm from req.Start until req.Target is
// finalized or the heap runs empty.
//
// Returns graph.ErrNodeNotFound if start or target do not resolve and
// heap.ErrCapacityExceeded if the frontier outgrows the heap. ctx is checked
// every 1024 pops; a done context aborts the search with ctx.Err().
func (s *Searcher) Run(ctx context.Context, g *graph.Store, req Request) (Result, error) {
	if !g.Contains(req.Start) {
		return Result{}, fmt.Errorf("start %d: %w", req.Start, graph.ErrNodeNotFound)
	}
	if !g.Contains(req.Target) {
		return Result{}, fmt.Errorf("target %d: %w", req.Target, graph.ErrNodeNotFound)
	}

	began := time.Now()
	s.Reset()
	defer func() {
		s.Open.Reset()
		s.Closed.Reset()
	}()
	s.pcg.Seed(req.PreviewSeed, 0)
	previewThreshold := float32(1 - req.PreviewProbability)
	sample := req.Observer != nil && req.PreviewProbability > 0

	var st Stats
	result := func(found *Discovered) Result {
		st.MaxHeapSize = s.Heap.MaxSize()
		st.Duration = time.Since(began)
		r := Result{Stats: st}
		if found != nil {
			r.Found = true
			r.Target = found
			r.Distance = found.Dist
		}
		return r
	}

	if err := s.Heap.Insert(req.Start, 0); err != nil {
		return result(nil), fmt.Errorf("insert start %d: %w", req.Start, err)
	}
	s.Open.Put(&Discovered{ID: req.Start})

	for !s.Heap.IsEmpty() {
		if st.Pops%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return result(nil), err
			}
		}

		id, _, err := s.Heap.ExtractMin()
		if err != nil {
			return result(nil), err
		}
		st.Pops++
		if req.Observer != nil {
			req.Observer.Candidate(id)
		}

		cur, _ := s.Open.Remove(id)
		s.Closed.Add(id)

		if id == req.Target {
			return result(cur), nil
		}

		node, ok := g.Node(id)
		if !ok {
			continue
		}

		if sample && s.rng.Float32() > previewThreshold {
			req.Observer.Preview(node.Coord)
		}

		for i, t := range node.Targets {
			if s.Closed.Contains(t) || !g.Contains(t) {
				continue
			}
			st.Relaxations++

			dist := cur.Dist + node.Weights[i]
			if next, ok := s.Open.Get(t); ok {
				if s.Heap.DecreaseIfSmaller(t, dist) {
					next.Pred = cur
					next.Dist = dist
					st.DecreaseKeys++
				}
				continue
			}

			if err := s.Heap.Insert(t, dist); err != nil {
				return result(nil), fmt.Errorf("insert node %d: %w", t, err)
			}
			s.Open.Put(&Discovered{ID: t, Pred: cur, Dist: dist})
		}
	}

	return result(nil), nil
}
