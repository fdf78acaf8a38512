package navigo

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/hupe1980/navigo/graph"
)

// Logger wraps slog.Logger with navigo-specific helpers.
// This provides structured logging with consistent field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses default text handler to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
// level sets the minimum log level (e.g., slog.LevelDebug, slog.LevelInfo).
func NewJSONLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

// NoopLogger creates a Logger that discards all log output.
func NoopLogger() *Logger {
	return NewLogger(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{
		Level: slog.Level(1000), // Unreachable level
	}))
}

// LogLoad logs a graph load.
func (l *Logger) LogLoad(ctx context.Context, source string, nodes, edges int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "graph load failed",
			"source", source,
			"error", err,
		)
		return
	}
	l.InfoContext(ctx, "graph loaded",
		"source", source,
		"nodes", nodes,
		"edges", edges,
	)
}

// LogSearchStart logs an accepted search.
func (l *Logger) LogSearchStart(ctx context.Context, seq uint64, start, target graph.NodeID) {
	l.InfoContext(ctx, "search started",
		"seq", seq,
		"start", start,
		"target", target,
	)
}

// LogSearch logs the outcome of a session search.
func (l *Logger) LogSearch(ctx context.Context, snap *Snapshot) {
	if snap.Err != nil {
		l.ErrorContext(ctx, "search failed",
			"seq", snap.Seq,
			"start", snap.Start,
			"target", snap.Target,
			"max_heap_size", snap.Stats.MaxHeapSize,
			"duration", snap.Duration,
			"error", snap.Err,
		)
		return
	}
	if !snap.Found {
		l.InfoContext(ctx, "search finished without path",
			"seq", snap.Seq,
			"start", snap.Start,
			"target", snap.Target,
			"pops", snap.Stats.Pops,
			"max_heap_size", snap.Stats.MaxHeapSize,
			"duration", snap.Duration,
		)
		return
	}
	l.InfoContext(ctx, "search completed",
		"seq", snap.Seq,
		"start", snap.Start,
		"target", snap.Target,
		"route_nodes", len(snap.Route),
		"route_time", FormatDuration(snap.RouteTime),
		"pops", snap.Stats.Pops,
		"max_heap_size", snap.Stats.MaxHeapSize,
		"duration", snap.Duration,
	)
}

// LogRejected logs a rejected search request.
func (l *Logger) LogRejected(ctx context.Context, err error) {
	l.WarnContext(ctx, "search rejected",
		"error", err,
	)
}

// LogProbe logs a reachability probe.
func (l *Logger) LogProbe(ctx context.Context, from, to graph.NodeID, r Reachability, pops int, err error) {
	if err != nil {
		l.WarnContext(ctx, "probe failed",
			"start", from,
			"target", to,
			"error", err,
		)
		return
	}
	l.DebugContext(ctx, "probe completed",
		"start", from,
		"target", to,
		"result", r.String(),
		"pops", pops,
	)
}
