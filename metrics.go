package navigo

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like Prometheus.
//
// Example Prometheus integration:
//
//	type PrometheusCollector struct {
//	    searchCounter   prometheus.Counter
//	    searchHistogram prometheus.Histogram
//	}
//
//	func (p *PrometheusCollector) RecordSearch(found bool, pops int, d time.Duration, err error) {
//	    p.searchCounter.Inc()
//	    p.searchHistogram.Observe(d.Seconds())
//	}
type MetricsCollector interface {
	// RecordLoad is called once after the graph load.
	RecordLoad(nodes, edges int, duration time.Duration, err error)

	// RecordSearch is called after each session search.
	// found is false for "no path" and for failed searches.
	RecordSearch(found bool, pops int, duration time.Duration, err error)

	// RecordProbe is called after each reachability probe.
	RecordProbe(result Reachability, duration time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordLoad(int, int, time.Duration, error)      {}
func (NoopMetricsCollector) RecordSearch(bool, int, time.Duration, error)   {}
func (NoopMetricsCollector) RecordProbe(Reachability, time.Duration, error) {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	LoadNodes        atomic.Int64
	LoadEdges        atomic.Int64
	LoadNanos        atomic.Int64
	LoadErrors       atomic.Int64
	SearchCount      atomic.Int64
	SearchFound      atomic.Int64
	SearchErrors     atomic.Int64
	SearchPops       atomic.Int64
	SearchTotalNanos atomic.Int64
	ProbeCount       atomic.Int64
	ProbeReachable   atomic.Int64
	ProbeUnknown     atomic.Int64
	ProbeErrors      atomic.Int64
}

// RecordLoad implements MetricsCollector.
func (b *BasicMetricsCollector) RecordLoad(nodes, edges int, duration time.Duration, err error) {
	if err != nil {
		b.LoadErrors.Add(1)
		return
	}
	b.LoadNodes.Store(int64(nodes))
	b.LoadEdges.Store(int64(edges))
	b.LoadNanos.Store(duration.Nanoseconds())
}

// RecordSearch implements MetricsCollector.
func (b *BasicMetricsCollector) RecordSearch(found bool, pops int, duration time.Duration, err error) {
	b.SearchCount.Add(1)
	b.SearchPops.Add(int64(pops))
	b.SearchTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.SearchErrors.Add(1)
	}
	if found {
		b.SearchFound.Add(1)
	}
}

// RecordProbe implements MetricsCollector.
func (b *BasicMetricsCollector) RecordProbe(result Reachability, _ time.Duration, err error) {
	b.ProbeCount.Add(1)
	switch result {
	case Reachable:
		b.ProbeReachable.Add(1)
	case Unknown:
		b.ProbeUnknown.Add(1)
	}
	if err != nil {
		b.ProbeErrors.Add(1)
	}
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		LoadNodes:      b.LoadNodes.Load(),
		LoadEdges:      b.LoadEdges.Load(),
		LoadNanos:      b.LoadNanos.Load(),
		LoadErrors:     b.LoadErrors.Load(),
		SearchCount:    b.SearchCount.Load(),
		SearchFound:    b.SearchFound.Load(),
		SearchErrors:   b.SearchErrors.Load(),
		SearchAvgNanos: b.getAvgSearchNanos(),
		SearchAvgPops:  b.getAvgSearchPops(),
		ProbeCount:     b.ProbeCount.Load(),
		ProbeReachable: b.ProbeReachable.Load(),
		ProbeUnknown:   b.ProbeUnknown.Load(),
		ProbeErrors:    b.ProbeErrors.Load(),
	}
}

func (b *BasicMetricsCollector) getAvgSearchNanos() int64 {
	count := b.SearchCount.Load()
	if count == 0 {
		return 0
	}
	return b.SearchTotalNanos.Load() / count
}

func (b *BasicMetricsCollector) getAvgSearchPops() int64 {
	count := b.SearchCount.Load()
	if count == 0 {
		return 0
	}
	return b.SearchPops.Load() / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	LoadNodes      int64
	LoadEdges      int64
	LoadNanos      int64
	LoadErrors     int64
	SearchCount    int64
	SearchFound    int64
	SearchErrors   int64
	SearchAvgNanos int64
	SearchAvgPops  int64
	ProbeCount     int64
	ProbeReachable int64
	ProbeUnknown   int64
	ProbeErrors    int64
}
