// Package cache implements the tiered cache that sits between the wiki
// services and the GitHub API.
//
// # Overview
//
// A [Tier] is a named partition of the cache with its own time-to-live,
// size bound, and durability policy. Each resource class (user profiles,
// permissions, page content, pull request lists, ...) gets its own tier so
// tuning one class never disturbs another.
//
//   - [Tier]: TTL expiry, LRU eviction, optional durable snapshots
//   - [Store]: the durable key-value backends a persistent tier writes to
//   - [IdentityIndex]: user-ID index that supersedes stale username keys
//
// # Tiers
//
// Entries are stored as JSON with their write timestamp. A read past the
// TTL is a miss and eagerly evicts the stale entry. Bounded tiers track
// last-access order; when a new key would exceed the bound, the
// least-recently-used fifth of the tier is evicted in bulk so eviction
// cost is amortized rather than paid on every insert.
//
// # Durability
//
// Persistent tiers snapshot their full contents to a [Store] after every
// mutation and reload the snapshot at construction, pruning entries that
// expired while the process was down. Backends:
//
//   - [FileStore]: XDG cache directory, for CLI use
//   - [MemoryStore]: process-local, for session-scoped tiers and tests
//   - [RedisStore]: shared store for multi-instance server deployments
//   - [MongoStore]: document store alternative for server deployments
//   - [NullStore]: discards everything, for disabling durability
//
// Server-side callers must build one set of tiers per session or tenant;
// tiers holding authenticated data are never shared across users.
package cache
