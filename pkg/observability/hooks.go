// Package observability provides hooks for metrics and tracing.
//
// This package enables optional instrumentation without adding hard
// dependencies on specific observability backends. Consumers register
// hooks at startup to receive events about assembly stages and cache
// operations.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// This avoids import cycles (hooks are registered by main, not by
// libraries) and keeps the engine free of observability frameworks.
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetAssemblyHooks(&myAssemblyHooks{})
//	    observability.SetCacheHooks(&myCacheHooks{})
//	    // ... run application
//	}
package observability

import (
	"context"
	"sync"
	"time"
)

// AssemblyHooks receives events from the assembly pipeline.
type AssemblyHooks interface {
	// Validate events
	OnValidateStart(ctx context.Context, nodeCount, edgeCount int)
	OnValidateComplete(ctx context.Context, warnings int, duration time.Duration, err error)

	// Layout events
	OnLayoutStart(ctx context.Context, nodeCount int)
	OnLayoutComplete(ctx context.Context, duration time.Duration, err error)

	// Render and package events
	OnRenderStart(ctx context.Context, flowName string)
	OnRenderComplete(ctx context.Context, flowName string, duration time.Duration, err error)
	OnPackageComplete(ctx context.Context, flowName string, archiveBytes int, duration time.Duration, err error)
}

// CacheHooks receives events from cache operations.
type CacheHooks interface {
	// OnCacheHit records a cache hit.
	OnCacheHit(ctx context.Context, keyType string)

	// OnCacheMiss records a cache miss.
	OnCacheMiss(ctx context.Context, keyType string)

	// OnCacheSet records a cache write.
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// NoopAssemblyHooks is a no-op implementation of AssemblyHooks.
type NoopAssemblyHooks struct{}

func (NoopAssemblyHooks) OnValidateStart(context.Context, int, int)                        {}
func (NoopAssemblyHooks) OnValidateComplete(context.Context, int, time.Duration, error)    {}
func (NoopAssemblyHooks) OnLayoutStart(context.Context, int)                               {}
func (NoopAssemblyHooks) OnLayoutComplete(context.Context, time.Duration, error)           {}
func (NoopAssemblyHooks) OnRenderStart(context.Context, string)                            {}
func (NoopAssemblyHooks) OnRenderComplete(context.Context, string, time.Duration, error)   {}
func (NoopAssemblyHooks) OnPackageComplete(context.Context, string, int, time.Duration, error) {
}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

var (
	assemblyHooks AssemblyHooks = NoopAssemblyHooks{}
	cacheHooks    CacheHooks    = NoopCacheHooks{}
	hooksMu       sync.RWMutex
)

// SetAssemblyHooks registers custom assembly hooks.
// This should be called once at application startup before any runs.
func SetAssemblyHooks(h AssemblyHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		assemblyHooks = h
	}
}

// SetCacheHooks registers custom cache hooks.
// This should be called once at application startup before any cache operations.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// Assembly returns the registered assembly hooks.
func Assembly() AssemblyHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return assemblyHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	assemblyHooks = NoopAssemblyHooks{}
	cacheHooks = NoopCacheHooks{}
}
