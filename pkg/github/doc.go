// Package github is a minimal GitHub REST API client for wiki storage.
//
// The client covers the endpoints the wiki needs: repository contents
// (reads and revision-conditioned writes), user profiles, collaborator
// permissions, and pull request listings. It deliberately does not wrap the
// whole API surface.
//
// Two concerns are handled here so upper layers never see them:
//
//   - Retries. Every call executes under a [httputil.Policy]. Reads retry
//     automatically on transient failures; writes retry only when the
//     caller supplies an idempotency key.
//   - Error mapping. HTTP statuses are translated into the project error
//     taxonomy: 404 becomes a not-found code, a stale revision token
//     becomes a [errors.ConflictError], and an exhausted quota (429, or 403
//     with zero remaining) becomes a [errors.RateLimitedError].
package github
