// Package pkg provides the core libraries for the ghwiki caching client.
//
// # Overview
//
// ghwiki fronts GitHub-backed wiki repositories with a multi-tier cache so
// repeated reads avoid the API rate limit. The pkg directory is organized
// into focused layers:
//
//  1. [cache] - Tiered caching (memory LRU + durable stores, key builders)
//  2. [github] - The REST API client with error mapping
//  3. [httputil] - Retry policy with exponential backoff and jitter
//  4. [dedup] - In-flight request de-duplication
//  5. [wiki] - The cache-aware service tying it all together
//  6. [errors], [config], [observability], [buildinfo] - Supporting concerns
//
// # Architecture
//
// The typical data flow through a read:
//
//	wiki.Service operation
//	         ↓
//	cache tier lookup (hit → return)
//	         ↓ miss
//	dedup group (coalesce concurrent misses)
//	         ↓
//	github.Client → httputil retry policy → GitHub REST API
//	         ↓
//	cache tier store (durable tiers snapshot to the configured backend)
//
// Writes flow the other way: they go straight to the API, SHA-conditioned
// to detect concurrent edits, then update or invalidate the affected
// tiers.
package pkg
