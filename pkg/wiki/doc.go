// Package wiki implements the cache-aware service layer of the wiki.
//
// A [Service] owns one cache tier per resource class (page content, user
// profiles, permissions, pull requests, avatars, donator flags, shared
// builds) and wraps every remote fetch in the same discipline: check the
// tier, coalesce concurrent misses for the same key, fetch through the
// retrying GitHub client, store, return. Writes invalidate the affected
// keys immediately instead of waiting out TTLs.
//
// Tier lifetimes are per resource class and deliberate: profiles live a
// day, permissions ten minutes, the avatar registry one minute, and shared
// builds forever. See newTiers for the full table.
//
// A Service caches data visible to one authenticated principal. Never share
// a Service across tenants; internal/server keeps one per session.
package wiki
