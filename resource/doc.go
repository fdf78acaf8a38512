// Package resource governs the memory, concurrency, and IO budget of routing work.
//
// A Controller tracks three resources:
//
//   - Memory: heap arrays and open/closed scratch owned by searches (fail-fast)
//   - Probes: concurrent reachability probes running beside the session search
//   - IO: token-bucket limit on bytes read while decoding graph files
//
// Memory accounting is non-blocking. AcquireMemory returns
// ErrMemoryLimitExceeded immediately and the caller decides whether to fail
// or degrade:
//
//	rc := resource.NewController(resource.Config{
//	    MemoryLimitBytes: 256 << 20,
//	    MaxConcurrentProbes: 4,
//	})
//
//	if err := rc.AcquireMemory(h.Bytes()); err != nil {
//	    return err
//	}
//	defer rc.ReleaseMemory(h.Bytes())
//
// Probe slots block until one is free or ctx is done. IO limiting wraps a
// reader:
//
//	r = resource.NewRateLimitedReader(ctx, r, rc)
//
// All methods are safe for concurrent use, and a nil *Controller is valid:
// every method becomes a no-op that always succeeds.
package resource
