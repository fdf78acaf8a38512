package navigo

import (
	"context"
	"fmt"
	"time"

	"github.com/hupe1980/navigo/graph"
	"github.com/hupe1980/navigo/internal/search"
)

// Reachability is the outcome of a probe.
type Reachability int

const (
	// Unreachable means the search exhausted the graph without reaching the target.
	Unreachable Reachability = iota
	// Reachable means a path exists.
	Reachable
	// Unknown means the probe ran out of time before deciding.
	Unknown
)

func (r Reachability) String() string {
	switch r {
	case Unreachable:
		return "unreachable"
	case Reachable:
		return "reachable"
	case Unknown:
		return "unknown"
	default:
		return fmt.Sprintf("Reachability(%d)", int(r))
	}
}

// Probe decides whether to is reachable from from within timeout.
// It runs on the caller's goroutine with its own search state and never
// touches the session, so it may run while a session search is routing.
//
// A timeout or a done ctx yields Unknown with a nil error. A non-positive
// timeout means no deadline beyond ctx. Errors are returned for unknown
// node ids (ErrInvalidRequest), a closed navigator (ErrNotReady), a memory
// limit (ErrBackpressure) and an exhausted heap (ErrCapacityExceeded).
func (n *Navigator) Probe(ctx context.Context, from, to graph.NodeID, timeout time.Duration) (Reachability, error) {
	began := time.Now()
	r, pops, err := n.probe(ctx, from, to, timeout)
	n.opts.metricsCollector.RecordProbe(r, time.Since(began), err)
	n.opts.logger.LogProbe(ctx, from, to, r, pops, err)
	return r, err
}

func (n *Navigator) probe(ctx context.Context, from, to graph.NodeID, timeout time.Duration) (Reachability, int, error) {
	if n.State() == StateNotReady {
		return Unknown, 0, ErrNotReady
	}
	for _, id := range [...]graph.NodeID{from, to} {
		if !n.graph.Contains(id) {
			return Unknown, 0, fmt.Errorf("%w: node %d: %w", ErrInvalidRequest, id, graph.ErrNodeNotFound)
		}
	}

	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	if err := n.rc.AcquireProbe(ctx); err != nil {
		if isContextErr(err) {
			return Unknown, 0, nil
		}
		return Unknown, 0, err
	}
	defer n.rc.ReleaseProbe()

	if err := n.rc.AcquireMemory(n.heapBytes); err != nil {
		return Unknown, 0, fmt.Errorf("%w: probe heap: %v", ErrBackpressure, err)
	}
	defer n.rc.ReleaseMemory(n.heapBytes)

	s := n.probePool.Get().(*search.Searcher)
	defer n.probePool.Put(s)

	res, err := s.Run(ctx, n.graph, search.Request{Start: from, Target: to})
	pops := res.Stats.Pops
	switch {
	case err != nil && isContextErr(err):
		return Unknown, pops, nil
	case err != nil:
		return Unknown, pops, err
	case res.Found:
		return Reachable, pops, nil
	default:
		return Unreachable, pops, nil
	}
}

// PathExists reports whether a path from from to to was found within
// timeout. Unknown and failed probes report false.
func (n *Navigator) PathExists(ctx context.Context, from, to graph.NodeID, timeout time.Duration) bool {
	r, _ := n.Probe(ctx, from, to, timeout)
	return r == Reachable
}
