package search

import (
	"context"
	"math"
	"math/rand/v2"
	"testing"

	"github.com/hupe1980/navigo/graph"
	"github.com/hupe1980/navigo/internal/heap"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type edge struct {
	from, to graph.NodeID
	w        float32
}

func buildGraph(t *testing.T, ids []graph.NodeID, edges []edge) *graph.Store {
	t.Helper()
	nodes := make(map[graph.NodeID]*graph.Node, len(ids))
	order := make([]graph.NodeID, 0, len(ids))
	for _, id := range ids {
		nodes[id] = &graph.Node{ID: id, Coord: graph.Coordinate{Lat: float32(id), Lon: float32(id)}}
		order = append(order, id)
	}
	for _, e := range edges {
		n := nodes[e.from]
		n.Targets = append(n.Targets, e.to)
		n.Weights = append(n.Weights, e.w)
	}
	list := make([]graph.Node, 0, len(order))
	for _, id := range order {
		list = append(list, *nodes[id])
	}
	s, err := graph.NewStore(list)
	require.NoError(t, err)
	return s
}

// fiveNodes has a cheap detour 1-2-3-5 (6) next to the direct 1-5 (10)
// and the longer 1-4-5 (9).
func fiveNodes(t *testing.T) *graph.Store {
	return buildGraph(t, []graph.NodeID{1, 2, 3, 4, 5}, []edge{
		{1, 2, 2}, {2, 3, 1}, {3, 5, 3},
		{1, 5, 10},
		{1, 4, 4}, {4, 5, 5},
		{2, 4, 1},
		{5, 1, 1},
	})
}

// bruteShortest enumerates all simple paths.
func bruteShortest(g *graph.Store, from, to graph.NodeID) (float32, bool) {
	best := float32(math.Inf(1))
	found := false
	seen := map[graph.NodeID]bool{}
	var walk func(id graph.NodeID, d float32)
	walk = func(id graph.NodeID, d float32) {
		if id == to {
			if d < best {
				best = d
			}
			found = true
			return
		}
		seen[id] = true
		defer delete(seen, id)
		n, ok := g.Node(id)
		if !ok {
			return
		}
		for i, t := range n.Targets {
			if !seen[t] && g.Contains(t) {
				walk(t, d+n.Weights[i])
			}
		}
	}
	walk(from, 0)
	return best, found
}

func TestSearcher_FiveNodes(t *testing.T) {
	g := fiveNodes(t)
	s := NewSearcher(16)

	res, err := s.Run(context.Background(), g, Request{Start: 1, Target: 5})
	require.NoError(t, err)
	require.True(t, res.Found)

	want, ok := bruteShortest(g, 1, 5)
	require.True(t, ok)
	assert.Equal(t, want, res.Distance)
	assert.Equal(t, float32(6), res.Distance)
	assert.Equal(t, []graph.NodeID{1, 2, 3, 5}, res.Path())
}

func TestSearcher_AllPairsMatchBruteForce(t *testing.T) {
	g := fiveNodes(t)
	s := NewSearcher(16)

	for _, from := range g.IDs() {
		for _, to := range g.IDs() {
			res, err := s.Run(context.Background(), g, Request{Start: from, Target: to})
			require.NoError(t, err)

			want, ok := bruteShortest(g, from, to)
			require.Equal(t, ok, res.Found, "%d->%d", from, to)
			if ok {
				assert.Equal(t, want, res.Distance, "%d->%d", from, to)
				path := res.Path()
				assert.Equal(t, from, path[0])
				assert.Equal(t, to, path[len(path)-1])
			}
		}
	}
}

func TestSearcher_StartIsTarget(t *testing.T) {
	res, err := NewSearcher(4).Run(context.Background(), fiveNodes(t), Request{Start: 3, Target: 3})
	require.NoError(t, err)
	require.True(t, res.Found)
	assert.Equal(t, float32(0), res.Distance)
	assert.Equal(t, []graph.NodeID{3}, res.Path())
}

func TestSearcher_NoPath(t *testing.T) {
	g := buildGraph(t, []graph.NodeID{1, 2, 3}, []edge{{1, 2, 1}, {3, 1, 1}})

	res, err := NewSearcher(8).Run(context.Background(), g, Request{Start: 1, Target: 3})
	require.NoError(t, err)
	assert.False(t, res.Found)
	assert.Nil(t, res.Path())
	assert.Equal(t, 2, res.Stats.Pops)
}

func TestSearcher_DanglingEdgesSkipped(t *testing.T) {
	g := buildGraph(t, []graph.NodeID{1, 2}, []edge{{1, 99, 0}, {1, 2, 1}, {2, 98, 1}})

	res, err := NewSearcher(2).Run(context.Background(), g, Request{Start: 1, Target: 2})
	require.NoError(t, err)
	require.True(t, res.Found)
	assert.Equal(t, []graph.NodeID{1, 2}, res.Path())
	assert.Equal(t, 1, res.Stats.MaxHeapSize)
}

func TestSearcher_UnknownEndpoints(t *testing.T) {
	g := fiveNodes(t)
	s := NewSearcher(8)

	_, err := s.Run(context.Background(), g, Request{Start: 42, Target: 1})
	assert.ErrorIs(t, err, graph.ErrNodeNotFound)

	_, err = s.Run(context.Background(), g, Request{Start: 1, Target: 42})
	assert.ErrorIs(t, err, graph.ErrNodeNotFound)
}

func TestSearcher_CapacityExceeded(t *testing.T) {
	// Star: the start fans out to 10 leaves, which all enter the heap at once.
	ids := []graph.NodeID{0}
	var edges []edge
	for i := graph.NodeID(1); i <= 10; i++ {
		ids = append(ids, i)
		edges = append(edges, edge{0, i, float32(i)})
	}
	g := buildGraph(t, ids, edges)

	_, err := NewSearcher(5).Run(context.Background(), g, Request{Start: 0, Target: 10})
	assert.ErrorIs(t, err, heap.ErrCapacityExceeded)

	res, err := NewSearcher(10).Run(context.Background(), g, Request{Start: 0, Target: 10})
	require.NoError(t, err)
	assert.True(t, res.Found)
	assert.Equal(t, 10, res.Stats.MaxHeapSize)
}

func TestSearcher_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewSearcher(8).Run(ctx, fiveNodes(t), Request{Start: 1, Target: 5})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSearcher_ReuseIsIdempotent(t *testing.T) {
	g := randomGraph(t, rand.New(rand.NewPCG(11, 11)), 300, 4)
	s := NewSearcher(1000)

	first, err := s.Run(context.Background(), g, Request{Start: 0, Target: 299})
	require.NoError(t, err)
	second, err := s.Run(context.Background(), g, Request{Start: 0, Target: 299})
	require.NoError(t, err)

	assert.Equal(t, first.Found, second.Found)
	assert.Equal(t, first.Distance, second.Distance)
	assert.Equal(t, first.Path(), second.Path())
	assert.Equal(t, 0, s.Open.Len(), "scratch state is released after a run")
	assert.Equal(t, 0, s.Closed.Len())
}

type recorder struct {
	candidates []graph.NodeID
	previews   []graph.Coordinate
}

func (r *recorder) Candidate(id graph.NodeID)   { r.candidates = append(r.candidates, id) }
func (r *recorder) Preview(c graph.Coordinate) { r.previews = append(r.previews, c) }

// gridGraph is a side x side grid with edges in both directions.
func gridGraph(t *testing.T, side int) *graph.Store {
	t.Helper()
	var ids []graph.NodeID
	var edges []edge
	at := func(r, c int) graph.NodeID { return graph.NodeID(r*side + c) }
	for r := range side {
		for c := range side {
			ids = append(ids, at(r, c))
			w := float32(1 + (r*7+c*3)%5)
			if c+1 < side {
				edges = append(edges, edge{at(r, c), at(r, c+1), w}, edge{at(r, c+1), at(r, c), w})
			}
			if r+1 < side {
				edges = append(edges, edge{at(r, c), at(r+1, c), w}, edge{at(r+1, c), at(r, c), w})
			}
		}
	}
	return buildGraph(t, ids, edges)
}

func TestSearcher_Observer(t *testing.T) {
	g := gridGraph(t, 15)

	run := func(p float64, seed uint64) (*recorder, Result) {
		rec := &recorder{}
		res, err := NewSearcher(1000).Run(context.Background(), g, Request{
			Start: 0, Target: 224, Observer: rec, PreviewProbability: p, PreviewSeed: seed,
		})
		require.NoError(t, err)
		return rec, res
	}

	t.Run("CandidatesFinalizedInDistanceOrder", func(t *testing.T) {
		rec, _ := run(0, 0)
		require.NotEmpty(t, rec.candidates)
		assert.Equal(t, graph.NodeID(0), rec.candidates[0])
		assert.Empty(t, rec.previews)

		s := NewSearcher(1000)
		var prev float32
		for _, id := range rec.candidates {
			res, err := s.Run(context.Background(), g, Request{Start: 0, Target: id})
			require.NoError(t, err)
			assert.GreaterOrEqual(t, res.Distance, prev)
			prev = res.Distance
		}
	})

	t.Run("PreviewEveryNode", func(t *testing.T) {
		rec, res := run(1, 0)
		require.True(t, res.Found)
		// Every finalized node but the target is sampled.
		assert.Len(t, rec.previews, len(rec.candidates)-1)
	})

	t.Run("PreviewReproducible", func(t *testing.T) {
		a, _ := run(0.3, 123)
		b, _ := run(0.3, 123)
		assert.Equal(t, a.previews, b.previews)
		assert.NotEmpty(t, a.previews)
	})
}

func TestSearcher_RandomGraphsMatchBellmanFord(t *testing.T) {
	rng := rand.New(rand.NewPCG(99, 1))
	s := NewSearcher(5000)

	for range 20 {
		n := 50 + rng.IntN(100)
		g := randomGraph(t, rng, n, 3)
		from := graph.NodeID(rng.IntN(n))
		dist := bellmanFord(g, from)

		for range 10 {
			to := graph.NodeID(rng.IntN(n))
			res, err := s.Run(context.Background(), g, Request{Start: from, Target: to})
			require.NoError(t, err)

			want, reachable := dist[to]
			require.Equal(t, reachable, res.Found)
			if reachable {
				assert.Equal(t, want, res.Distance)
				assert.Equal(t, want, pathLength(t, g, res.Path()))
			}
		}
	}
}

func randomGraph(t *testing.T, rng *rand.Rand, n, degree int) *graph.Store {
	t.Helper()
	ids := make([]graph.NodeID, n)
	for i := range ids {
		ids[i] = graph.NodeID(i)
	}
	var edges []edge
	for i := range n {
		for range rng.IntN(degree + 1) {
			// Integer weights keep float32 sums exact.
			edges = append(edges, edge{graph.NodeID(i), graph.NodeID(rng.IntN(n)), float32(rng.IntN(20))})
		}
	}
	return buildGraph(t, ids, edges)
}

func bellmanFord(g *graph.Store, from graph.NodeID) map[graph.NodeID]float32 {
	dist := map[graph.NodeID]float32{from: 0}
	for range g.Len() {
		changed := false
		for _, id := range g.IDs() {
			d, ok := dist[id]
			if !ok {
				continue
			}
			n, _ := g.Node(id)
			for i, t := range n.Targets {
				nd := d + n.Weights[i]
				if cur, ok := dist[t]; !ok || nd < cur {
					dist[t] = nd
					changed = true
				}
			}
		}
		if !changed {
			break
		}
	}
	return dist
}

func pathLength(t *testing.T, g *graph.Store, path []graph.NodeID) float32 {
	t.Helper()
	var total float32
	for i := 0; i+1 < len(path); i++ {
		n, ok := g.Node(path[i])
		require.True(t, ok)
		best := float32(math.Inf(1))
		for j, tgt := range n.Targets {
			if tgt == path[i+1] && n.Weights[j] < best {
				best = n.Weights[j]
			}
		}
		require.False(t, math.IsInf(float64(best), 1), "missing edge %d->%d", path[i], path[i+1])
		total += best
	}
	return total
}
