package navigo

import (
	"encoding/binary"
	"log/slog"

	"github.com/hupe1980/navigo/geo"
	"github.com/hupe1980/navigo/resource"
)

const (
	// DefaultHeapCapacity is the default number of heap entries per search.
	DefaultHeapCapacity = 1_000_000

	// DefaultPreviewProbability samples one finalized node in a thousand.
	DefaultPreviewProbability = 0.001

	// DefaultPreviewSeed seeds the preview sampler on every search.
	DefaultPreviewSeed = 123

	// DefaultMaxConcurrentProbes bounds parallel reachability probes.
	DefaultMaxConcurrentProbes = 4
)

type endpoints struct {
	startLat, startLon   float32
	targetLat, targetLon float32
}

type options struct {
	logger             *Logger
	metricsCollector   MetricsCollector
	heapCapacity       int
	previewProbability float64
	previewSeed        uint64
	randomSeed         uint64
	distance           geo.DistanceFunc
	byteOrder          binary.ByteOrder
	rc                 *resource.Controller
	memoryLimit        int64
	maxProbes          int64
	defaultEndpoints   *endpoints
}

// Option configures Open.
type Option func(*options)

// WithLogger configures structured logging.
// Pass nil to disable logging.
//
// Example with JSON logging:
//
//	logger := navigo.NewJSONLogger(slog.LevelInfo)
//	nav, _ := navigo.Open(ctx, navigo.Local(path), navigo.WithLogger(logger))
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

// WithMetricsCollector configures a metrics collector.
//
//	metrics := &navigo.BasicMetricsCollector{}
//	nav, _ := navigo.Open(ctx, src, navigo.WithMetricsCollector(metrics))
//	fmt.Println(metrics.GetStats().SearchCount)
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		o.metricsCollector = mc
	}
}

// WithHeapCapacity sets the maximum search frontier. A search whose frontier
// grows beyond it fails with ErrCapacityExceeded. Non-positive values are ignored.
func WithHeapCapacity(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.heapCapacity = n
		}
	}
}

// WithPreviewProbability sets the chance that a finalized node is added to
// the preview trace. It is clamped to [0, 1]; 0 disables the trace.
func WithPreviewProbability(p float64) Option {
	return func(o *options) {
		o.previewProbability = min(max(p, 0), 1)
	}
}

// WithPreviewSeed sets the seed the preview sampler is reset to on every search.
func WithPreviewSeed(seed uint64) Option {
	return func(o *options) {
		o.previewSeed = seed
	}
}

// WithRandomSeed seeds the generator behind RandomEligibleNode.
func WithRandomSeed(seed uint64) Option {
	return func(o *options) {
		o.randomSeed = seed
	}
}

// WithDistanceFunc sets the distance used by NearestNode.
// The default is geo.Haversine.
func WithDistanceFunc(fn geo.DistanceFunc) Option {
	return func(o *options) {
		if fn != nil {
			o.distance = fn
		}
	}
}

// WithByteOrder sets the byte order of the graph file. The default is big-endian.
func WithByteOrder(order binary.ByteOrder) Option {
	return func(o *options) {
		if order != nil {
			o.byteOrder = order
		}
	}
}

// WithResourceController shares a resource controller across navigators.
// It overrides WithMemoryLimit and WithMaxConcurrentProbes.
func WithResourceController(rc *resource.Controller) Option {
	return func(o *options) {
		o.rc = rc
	}
}

// WithMemoryLimit caps the memory accounted to search heaps.
// Probes that would exceed it fail with ErrBackpressure.
func WithMemoryLimit(bytes int64) Option {
	return func(o *options) {
		o.memoryLimit = bytes
	}
}

// WithMaxConcurrentProbes bounds the number of probes running at once.
func WithMaxConcurrentProbes(n int64) Option {
	return func(o *options) {
		if n > 0 {
			o.maxProbes = n
		}
	}
}

// WithDefaultEndpoints preselects start and target as the nodes nearest to
// the given coordinates once the graph is loaded.
func WithDefaultEndpoints(startLat, startLon, targetLat, targetLon float32) Option {
	return func(o *options) {
		o.defaultEndpoints = &endpoints{startLat, startLon, targetLat, targetLon}
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		logger:             NoopLogger(),
		metricsCollector:   NoopMetricsCollector{},
		heapCapacity:       DefaultHeapCapacity,
		previewProbability: DefaultPreviewProbability,
		previewSeed:        DefaultPreviewSeed,
		distance:           geo.Haversine,
		byteOrder:          binary.BigEndian,
		maxProbes:          DefaultMaxConcurrentProbes,
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	if o.logger == nil {
		o.logger = NoopLogger()
	}
	if o.metricsCollector == nil {
		o.metricsCollector = NoopMetricsCollector{}
	}
	if o.rc == nil {
		o.rc = resource.NewController(resource.Config{
			MemoryLimitBytes:    o.memoryLimit,
			MaxConcurrentProbes: o.maxProbes,
		})
	}
	return o
}
