package navigo

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"runtime/debug"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/hupe1980/navigo/graph"
	"github.com/hupe1980/navigo/internal/heap"
	"github.com/hupe1980/navigo/internal/search"
	"github.com/hupe1980/navigo/resource"
)

// State is the lifecycle state of a Navigator.
type State int32

const (
	// StateNotReady means no graph is available (closed navigator).
	StateNotReady State = iota
	// StateStandby means the navigator is idle and accepts a search.
	StateStandby
	// StateRouting means a search is running.
	StateRouting
)

func (s State) String() string {
	switch s {
	case StateNotReady:
		return "NotReady"
	case StateStandby:
		return "Standby"
	case StateRouting:
		return "Routing"
	default:
		return fmt.Sprintf("State(%d)", int32(s))
	}
}

// SearchStats are diagnostics of the last search.
type SearchStats struct {
	Pops         int `json:"pops"`
	Relaxations  int `json:"relaxations"`
	DecreaseKeys int `json:"decrease_keys"`
	MaxHeapSize  int `json:"max_heap_size"`
}

// Snapshot is an immutable view of the session. A new snapshot is
// published on every state transition; callers must not modify it.
type Snapshot struct {
	State State
	// Seq numbers accepted searches, starting at 1. Zero before the first search.
	Seq    uint64
	Start  graph.NodeID
	Target graph.NodeID

	// Found reports whether the last search reached its target.
	Found bool
	// Route is the last found route in start to target order.
	Route      []graph.Coordinate
	RouteNodes []graph.NodeID
	// RouteTime is the accumulated edge weight of the route.
	RouteTime float32

	Stats SearchStats
	// Err is set when the last search failed (capacity, panic).
	Err error

	StartedAt time.Time
	Duration  time.Duration

	done chan struct{}
}

// Elapsed returns the time since the search started while routing and the
// total search duration afterwards.
func (s *Snapshot) Elapsed() time.Duration {
	if s.State == StateRouting {
		return time.Since(s.StartedAt)
	}
	return s.Duration
}

// Navigator owns a loaded graph and runs route searches on it.
// All methods are safe for concurrent use.
type Navigator struct {
	opts  options
	graph *graph.Store
	rc    *resource.Controller

	snap   atomic.Pointer[Snapshot]
	start  atomic.Pointer[graph.NodeID]
	target atomic.Pointer[graph.NodeID]
	redraw atomic.Bool

	best    atomic.Uint64
	hasBest atomic.Bool

	previewMu sync.Mutex
	preview   []graph.Coordinate

	rngMu sync.Mutex
	rng   *rand.Rand

	searcher  *search.Searcher
	heapBytes int64
	probePool sync.Pool
	starting  atomic.Bool

	// Test hooks.
	searchHook        func() // on the search goroutine, before the search
	beforeRoutingHook func() // after admission, before Routing is published
	afterRoutingHook  func() // right after Routing is published
}

// Open loads the graph from src and returns a navigator in StateStandby.
// Load failures are returned as is; graph.ErrLoad matches malformed files.
func Open(ctx context.Context, src Source, optFns ...Option) (*Navigator, error) {
	o := applyOptions(optFns)
	if src.load == nil {
		return nil, fmt.Errorf("%w: empty source", ErrInvalidRequest)
	}

	began := time.Now()
	g, err := src.load(ctx, []graph.Option{
		graph.WithByteOrder(o.byteOrder),
		graph.WithIOLimiter(o.rc),
		graph.WithDecodeLogger(o.logger.Logger),
	})
	if err == nil && g == nil {
		err = fmt.Errorf("%w: nil graph", ErrInvalidRequest)
	}
	if err != nil {
		o.metricsCollector.RecordLoad(0, 0, time.Since(began), err)
		o.logger.LogLoad(ctx, src.String(), 0, 0, err)
		return nil, err
	}
	o.metricsCollector.RecordLoad(g.Len(), g.EdgeCount(), time.Since(began), nil)
	o.logger.LogLoad(ctx, src.String(), g.Len(), g.EdgeCount(), nil)

	heapBytes := heap.BytesFor(o.heapCapacity)
	if err := o.rc.AcquireMemory(heapBytes); err != nil {
		return nil, fmt.Errorf("%w: session heap: %v", ErrBackpressure, err)
	}

	n := &Navigator{
		opts:      o,
		graph:     g,
		rc:        o.rc,
		rng:       rand.New(rand.NewPCG(o.randomSeed, 0)),
		searcher:  search.NewSearcher(o.heapCapacity),
		heapBytes: heapBytes,
	}
	n.probePool.New = func() any {
		return search.NewSearcher(o.heapCapacity)
	}

	if ep := o.defaultEndpoints; ep != nil {
		if id, ok := g.NearestNode(ep.startLat, ep.startLon, o.distance); ok {
			n.start.Store(&id)
		}
		if id, ok := g.NearestNode(ep.targetLat, ep.targetLon, o.distance); ok {
			n.target.Store(&id)
		}
	}

	n.snap.Store(&Snapshot{State: StateStandby})
	n.redraw.Store(true)
	return n, nil
}

// Graph returns the loaded graph.
func (n *Navigator) Graph() *graph.Store { return n.graph }

// State returns the current state.
func (n *Navigator) State() State { return n.snap.Load().State }

// Snapshot returns the current snapshot.
func (n *Navigator) Snapshot() *Snapshot { return n.snap.Load() }

// SetStart selects the start node for the next search.
func (n *Navigator) SetStart(id graph.NodeID) error {
	return n.setEndpoint(&n.start, id)
}

// SetTarget selects the target node for the next search.
func (n *Navigator) SetTarget(id graph.NodeID) error {
	return n.setEndpoint(&n.target, id)
}

func (n *Navigator) setEndpoint(p *atomic.Pointer[graph.NodeID], id graph.NodeID) error {
	if !n.graph.Contains(id) {
		return fmt.Errorf("%w: node %d: %w", ErrInvalidRequest, id, graph.ErrNodeNotFound)
	}
	p.Store(&id)
	n.redraw.Store(true)
	return nil
}

// Start returns the selected start node.
func (n *Navigator) Start() (graph.NodeID, bool) { return loadID(&n.start) }

// Target returns the selected target node.
func (n *Navigator) Target() (graph.NodeID, bool) { return loadID(&n.target) }

func loadID(p *atomic.Pointer[graph.NodeID]) (graph.NodeID, bool) {
	if id := p.Load(); id != nil {
		return *id, true
	}
	return 0, false
}

// StartCoordinate returns the coordinate of the selected start node.
func (n *Navigator) StartCoordinate() (graph.Coordinate, bool) {
	id, ok := n.Start()
	if !ok {
		return graph.Coordinate{}, false
	}
	return n.graph.CoordinateOf(id)
}

// TargetCoordinate returns the coordinate of the selected target node.
func (n *Navigator) TargetCoordinate() (graph.Coordinate, bool) {
	id, ok := n.Target()
	if !ok {
		return graph.Coordinate{}, false
	}
	return n.graph.CoordinateOf(id)
}

// StartSearch starts a search between the selected endpoints and returns
// immediately. It returns false, and logs the reason, if the request is
// rejected; see TryStartSearch.
func (n *Navigator) StartSearch() bool {
	return n.TryStartSearch() == nil
}

// TryStartSearch is StartSearch with the rejection reason: ErrNotReady,
// ErrBusy or ErrEndpointsUnset. All match ErrInvalidRequest. Rejections
// leave the route and the endpoints unchanged.
func (n *Navigator) TryStartSearch() error {
	ctx := context.Background()

	// One admission at a time; the snapshot CAS below can then only lose
	// against Close.
	if !n.starting.CompareAndSwap(false, true) {
		n.opts.logger.LogRejected(ctx, ErrBusy)
		return ErrBusy
	}
	defer n.starting.Store(false)

	cur := n.snap.Load()
	err := rejectReason(cur)
	start, okStart := n.Start()
	target, okTarget := n.Target()
	if err == nil && (!okStart || !okTarget) {
		err = ErrEndpointsUnset
	}
	if err != nil {
		n.opts.logger.LogRejected(ctx, err)
		return err
	}

	if n.beforeRoutingHook != nil {
		n.beforeRoutingHook()
	}

	// Cleared before Routing is visible, so a poller never pairs the new
	// state with the previous search's progress.
	n.hasBest.Store(false)
	n.previewMu.Lock()
	n.preview = nil
	n.previewMu.Unlock()

	next := &Snapshot{
		State:     StateRouting,
		Seq:       cur.Seq + 1,
		Start:     start,
		Target:    target,
		StartedAt: time.Now(),
		done:      make(chan struct{}),
	}
	if !n.snap.CompareAndSwap(cur, next) {
		err := rejectReason(n.snap.Load())
		if err == nil {
			err = ErrBusy
		}
		n.opts.logger.LogRejected(ctx, err)
		return err
	}
	n.redraw.Store(true)

	if n.afterRoutingHook != nil {
		n.afterRoutingHook()
	}

	n.opts.logger.LogSearchStart(ctx, next.Seq, start, target)
	go n.run(next)
	return nil
}

// rejectReason returns why no search can start from snap, or nil.
func rejectReason(snap *Snapshot) error {
	switch snap.State {
	case StateNotReady:
		return ErrNotReady
	case StateRouting:
		return ErrBusy
	default:
		return nil
	}
}

func (n *Navigator) run(routing *Snapshot) {
	defer close(routing.done)

	res, err := n.runSearch(routing)

	final := &Snapshot{
		State:     StateStandby,
		Seq:       routing.Seq,
		Start:     routing.Start,
		Target:    routing.Target,
		Found:     res.Found,
		Err:       err,
		StartedAt: routing.StartedAt,
		Duration:  time.Since(routing.StartedAt),
		Stats: SearchStats{
			Pops:         res.Stats.Pops,
			Relaxations:  res.Stats.Relaxations,
			DecreaseKeys: res.Stats.DecreaseKeys,
			MaxHeapSize:  res.Stats.MaxHeapSize,
		},
	}
	if res.Found {
		final.RouteNodes = res.Path()
		final.Route = make([]graph.Coordinate, 0, len(final.RouteNodes))
		for _, id := range final.RouteNodes {
			c, _ := n.graph.CoordinateOf(id)
			final.Route = append(final.Route, c)
		}
		final.RouteTime = res.Distance
	}

	// Route, time and state become visible together.
	n.snap.Store(final)
	n.redraw.Store(true)

	n.opts.metricsCollector.RecordSearch(final.Found, final.Stats.Pops, final.Duration, err)
	n.opts.logger.LogSearch(context.Background(), final)
}

func (n *Navigator) runSearch(routing *Snapshot) (res search.Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			res = search.Result{}
			err = &PanicError{Value: r, Stack: debug.Stack()}
		}
	}()

	if n.searchHook != nil {
		n.searchHook()
	}

	return n.searcher.Run(context.Background(), n.graph, search.Request{
		Start:              routing.Start,
		Target:             routing.Target,
		Observer:           sessionObserver{n},
		PreviewProbability: n.opts.previewProbability,
		PreviewSeed:        n.opts.previewSeed,
	})
}

type sessionObserver struct{ n *Navigator }

func (o sessionObserver) Candidate(id graph.NodeID) {
	o.n.best.Store(id)
	o.n.hasBest.Store(true)
}

func (o sessionObserver) Preview(c graph.Coordinate) {
	o.n.previewMu.Lock()
	defer o.n.previewMu.Unlock()
	o.n.preview = append(o.n.preview, c)
}

// Wait blocks until no search is running or ctx is done.
func (n *Navigator) Wait(ctx context.Context) error {
	snap := n.snap.Load()
	if snap.State != StateRouting {
		return nil
	}
	select {
	case <-snap.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// BestCandidateCoordinate returns the coordinate of the node most recently
// finalized by the current or last search. It may lag by one step.
func (n *Navigator) BestCandidateCoordinate() (graph.Coordinate, bool) {
	if !n.hasBest.Load() {
		return graph.Coordinate{}, false
	}
	return n.graph.CoordinateOf(n.best.Load())
}

// PreviewCoordinates returns a copy of the sampled search frontier.
func (n *Navigator) PreviewCoordinates() []graph.Coordinate {
	n.previewMu.Lock()
	defer n.previewMu.Unlock()
	return slices.Clone(n.preview)
}

// CalculatedRoute returns a copy of the last found route, start first.
// It is empty while no route has been found.
func (n *Navigator) CalculatedRoute() []graph.Coordinate {
	return slices.Clone(n.snap.Load().Route)
}

// RouteTimeSeconds returns the accumulated weight of the last found route,
// or 0 if there is none.
func (n *Navigator) RouteTimeSeconds() float32 {
	return n.snap.Load().RouteTime
}

// Elapsed returns the running time of the current search, or the duration
// of the last one.
func (n *Navigator) Elapsed() time.Duration {
	return n.snap.Load().Elapsed()
}

// NeedsRedraw reports whether the session changed since ClearRedrawFlag.
func (n *Navigator) NeedsRedraw() bool { return n.redraw.Load() }

// ClearRedrawFlag acknowledges all changes so far.
func (n *Navigator) ClearRedrawFlag() { n.redraw.Store(false) }

// ConsumeRedraw returns the redraw flag and clears it in one step.
func (n *Navigator) ConsumeRedraw() bool { return n.redraw.Swap(false) }

// NearestNode returns the node closest to (lat, lon).
func (n *Navigator) NearestNode(lat, lon float32) (graph.NodeID, bool) {
	return n.graph.NearestNode(lat, lon, n.opts.distance)
}

// CoordinateOf returns the coordinate of id.
func (n *Navigator) CoordinateOf(id graph.NodeID) (graph.Coordinate, bool) {
	return n.graph.CoordinateOf(id)
}

// RandomEligibleNode returns a random node with at least two outgoing edges.
// The sequence is reproducible for a given WithRandomSeed.
func (n *Navigator) RandomEligibleNode() (graph.NodeID, error) {
	n.rngMu.Lock()
	defer n.rngMu.Unlock()
	return n.graph.RandomRouteNode(n.rng, graph.DefaultRandomAttempts)
}

// Distance returns the configured distance between two coordinates.
func (n *Navigator) Distance(a, b graph.Coordinate) float32 {
	return n.opts.distance(a.Lat, a.Lon, b.Lat, b.Lon)
}

// Close waits for a running search and moves the navigator to StateNotReady.
// Returns ErrClosed if already closed.
func (n *Navigator) Close() error {
	for {
		cur := n.snap.Load()
		switch cur.State {
		case StateNotReady:
			return ErrClosed
		case StateRouting:
			<-cur.done
			continue
		}

		closed := *cur
		closed.State = StateNotReady
		closed.done = nil
		if n.snap.CompareAndSwap(cur, &closed) {
			break
		}
	}

	n.rc.ReleaseMemory(n.heapBytes)
	n.redraw.Store(true)
	return nil
}

// isContextErr reports whether err comes from a done context.
func isContextErr(err error) bool {
	return errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled)
}
