// Package observability provides hooks for metrics, tracing, and logging.
//
// Instrumentation is optional: every hook category has a no-op default, and
// consumers swap in their own implementation at startup. The engine, the
// exporters, the Graphviz renderer, the artifact caches and the HTTP service
// call these hooks; nothing in the library depends on a metrics backend.
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetEngineHooks(&myEngineHooks{})
//	    observability.SetCacheHooks(&myCacheHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Export().OnExportStart(ctx, "svg", len(snap.Nodes))
//	// ... export ...
//	observability.Export().OnExportComplete(ctx, "svg", len(out), time.Since(start), err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Engine Hooks
// =============================================================================

// EngineHooks receives events from the diagram engine.
//
// Engine operations are synchronous and take no context, so these hooks
// don't either.
type EngineHooks interface {
	// OnMutation records an applied node or edge mutation.
	// op is a history command kind such as "create-node".
	OnMutation(op, id string)

	// OnHistory records an undo or redo. err is non-nil when the command
	// could not be replayed and was discarded.
	OnHistory(action, op string, err error)
}

// =============================================================================
// Export Hooks
// =============================================================================

// ExportHooks receives events from exporters, importers and the Graphviz
// renderer.
type ExportHooks interface {
	OnExportStart(ctx context.Context, format string, nodeCount int)
	OnExportComplete(ctx context.Context, format string, size int, duration time.Duration, err error)

	// OnImport records a finished import. dropped counts rejected rows.
	OnImport(ctx context.Context, format string, nodeCount, dropped int, err error)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from cache operations.
type CacheHooks interface {
	// OnCacheHit records a cache hit.
	OnCacheHit(ctx context.Context, keyType string)

	// OnCacheMiss records a cache miss.
	OnCacheMiss(ctx context.Context, keyType string)

	// OnCacheSet records a cache write.
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// =============================================================================
// HTTP Hooks
// =============================================================================

// HTTPHooks receives events from the HTTP service.
type HTTPHooks interface {
	// OnRequest records an incoming request.
	OnRequest(ctx context.Context, method, path string)

	// OnResponse records the response status written for a request.
	OnResponse(ctx context.Context, method, path string, statusCode int, duration time.Duration)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopEngineHooks is a no-op implementation of EngineHooks.
type NoopEngineHooks struct{}

func (NoopEngineHooks) OnMutation(string, string)       {}
func (NoopEngineHooks) OnHistory(string, string, error) {}

// NoopExportHooks is a no-op implementation of ExportHooks.
type NoopExportHooks struct{}

func (NoopExportHooks) OnExportStart(context.Context, string, int)                          {}
func (NoopExportHooks) OnExportComplete(context.Context, string, int, time.Duration, error) {}
func (NoopExportHooks) OnImport(context.Context, string, int, int, error)                   {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopHTTPHooks is a no-op implementation of HTTPHooks.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string)                      {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, int, time.Duration) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

// slot holds one registered hook implementation.
type slot[T any] struct {
	mu   sync.RWMutex
	h    T
	noop T
}

func newSlot[T any](noop T) *slot[T] { return &slot[T]{h: noop, noop: noop} }

func (s *slot[T]) get() T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.h
}

func (s *slot[T]) set(h T, ok bool) {
	if !ok {
		return
	}
	s.mu.Lock()
	s.h = h
	s.mu.Unlock()
}

func (s *slot[T]) reset() { s.set(s.noop, true) }

var (
	engineSlot = newSlot[EngineHooks](NoopEngineHooks{})
	exportSlot = newSlot[ExportHooks](NoopExportHooks{})
	cacheSlot  = newSlot[CacheHooks](NoopCacheHooks{})
	httpSlot   = newSlot[HTTPHooks](NoopHTTPHooks{})
)

// SetEngineHooks registers engine hooks. Call it before creating engines;
// a nil h is ignored.
func SetEngineHooks(h EngineHooks) { engineSlot.set(h, h != nil) }

// SetExportHooks registers export hooks. A nil h is ignored.
func SetExportHooks(h ExportHooks) { exportSlot.set(h, h != nil) }

// SetCacheHooks registers cache hooks. A nil h is ignored.
func SetCacheHooks(h CacheHooks) { cacheSlot.set(h, h != nil) }

// SetHTTPHooks registers HTTP hooks. A nil h is ignored.
func SetHTTPHooks(h HTTPHooks) { httpSlot.set(h, h != nil) }

// Engine returns the registered engine hooks.
func Engine() EngineHooks { return engineSlot.get() }

// Export returns the registered export hooks.
func Export() ExportHooks { return exportSlot.get() }

// Cache returns the registered cache hooks.
func Cache() CacheHooks { return cacheSlot.get() }

// HTTP returns the registered HTTP hooks.
func HTTP() HTTPHooks { return httpSlot.get() }

// Reset restores every hook category to its no-op default.
func Reset() {
	engineSlot.reset()
	exportSlot.reset()
	cacheSlot.reset()
	httpSlot.reset()
}
