// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard dependencies
// on specific observability backends. Consumers pass hook implementations into
// the components they construct (retry policies, cache tiers, HTTP clients) to
// receive events about retries, cache operations, and API calls.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Components accept a hook implementation at construction time
//
// Hooks are deliberately passed explicitly rather than registered on a global
// bus: a consumer that wants rate-limit notifications subscribes by handing
// its implementation to the retry policy it builds, so event routing is
// visible at the construction site.
//
// # Usage
//
//	policy := httputil.NewPolicy(httputil.DefaultPolicyConfig(), &myRetryHooks{})
//	tier, err := cache.NewTier(cfg, store, &myCacheHooks{})
package observability

import (
	"context"
	"time"
)

// =============================================================================
// Retry Hooks
// =============================================================================

// RetryHooks receives lifecycle events from the backoff retry wrapper.
// These events drive UI-level rate-limit notices; they are never used for
// control flow.
type RetryHooks interface {
	// OnRetry records a rate-limit-triggered retry: the attempt number,
	// the computed backoff delay, and the remaining attempt budget.
	OnRetry(ctx context.Context, attempt int, delay time.Duration, remaining int)

	// OnRecovered records an eventual success after one or more retries.
	OnRecovered(ctx context.Context, attempts int)

	// OnExhausted records a permanent failure after the retry budget ran out.
	OnExhausted(ctx context.Context, attempts int, err error)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from cache tier operations.
type CacheHooks interface {
	// OnCacheHit records a cache hit in the named tier.
	OnCacheHit(ctx context.Context, tier string)

	// OnCacheMiss records a cache miss in the named tier.
	OnCacheMiss(ctx context.Context, tier string)

	// OnCacheSet records a cache write.
	OnCacheSet(ctx context.Context, tier string, size int)

	// OnCacheEvict records entries removed by LRU eviction.
	OnCacheEvict(ctx context.Context, tier string, count int)
}

// =============================================================================
// HTTP Hooks
// =============================================================================

// HTTPHooks receives events from HTTP client operations.
type HTTPHooks interface {
	// OnRequest records an outgoing HTTP request.
	OnRequest(ctx context.Context, method, host, path string)

	// OnResponse records an HTTP response.
	OnResponse(ctx context.Context, method, host, path string, statusCode int, duration time.Duration)

	// OnError records an HTTP error (network failure, timeout).
	OnError(ctx context.Context, method, host, path string, err error)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopRetryHooks is a no-op implementation of RetryHooks.
type NoopRetryHooks struct{}

func (NoopRetryHooks) OnRetry(context.Context, int, time.Duration, int) {}
func (NoopRetryHooks) OnRecovered(context.Context, int)                 {}
func (NoopRetryHooks) OnExhausted(context.Context, int, error)          {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)        {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)       {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int)   {}
func (NoopCacheHooks) OnCacheEvict(context.Context, string, int) {}

// NoopHTTPHooks is a no-op implementation of HTTPHooks.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string, string)                      {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, string, int, time.Duration) {}
func (NoopHTTPHooks) OnError(context.Context, string, string, string, error)                 {}
