// Package httputil provides the retry layer wrapped around every outbound
// GitHub API call.
//
// # Overview
//
//   - [Policy]: Automatic retry with exponential backoff and jitter
//   - [StatusError]: HTTP status carried through the error chain
//   - [RetryableError]: Marker wrapper for transient network failures
//
// # Retry
//
// [Policy.Do] wraps a remote call with automatic retry for transient
// failures:
//
//   - Network errors (timeouts, connection resets)
//   - 5xx server errors
//   - 429 rate-limit responses, and 403 responses with exhausted quota
//
// It uses exponential backoff with +/-25% jitter to avoid thundering herd:
//
//	policy, _ := httputil.NewPolicy(httputil.DefaultConfig(), hooks)
//	err := policy.Do(ctx, func(ctx context.Context) error {
//	    return client.fetch(ctx, url, &out)
//	})
//
// Non-retryable failures (not-found, conflicts, permission errors) are
// returned unchanged on the first attempt.
//
// # Idempotency
//
// [Policy.Do] may execute its function more than once, so it is reserved
// for idempotent operations. Writes without an idempotency key go through
// [Policy.DoOnce], which never retries; a retried create could otherwise
// duplicate a resource.
//
// # Configuration
//
// Default settings are suitable for most use cases:
//
//   - Max retries: 3
//   - Initial delay: 2 seconds, doubling each retry
//   - Max delay: 60 seconds
//
// Rate-limit retries are reported through [observability.RetryHooks] so the
// UI can show a transient "retrying..." notice without blocking.
package httputil
