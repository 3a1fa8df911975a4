// Package dedup coalesces concurrent identical in-flight requests into one
// underlying call.
//
// Several parts of the UI can ask for the same remote resource at nearly
// the same moment (a page view rendering the same profile in two
// components, for example). Issuing each request separately wastes rate
// limit; this package guarantees at most one in-flight producer per key,
// with every concurrent caller sharing the single result or the single
// failure.
//
// The implementation builds on golang.org/x/sync/singleflight, which
// performs the check-and-insert under one lock so two near-simultaneous
// callers can never both observe "absent" and both run the producer. The
// in-flight entry is removed when the producer settles, success or failure,
// so a failed fetch never poisons later calls.
package dedup

import (
	"context"

	"golang.org/x/sync/singleflight"
)

// Group de-duplicates in-flight calls by key.
// The zero value is ready to use. A Group is safe for concurrent use.
type Group struct {
	sf singleflight.Group
}

// Do executes producer for key, unless an execution for the same key is
// already in flight, in which case it waits for and returns that
// execution's result. shared reports whether the result was delivered to
// more than one caller.
//
// All callers observe the same value or the same error. The producer
// receives ctx from the caller that actually triggered the execution;
// callers that merely join a flight are not individually cancellable, they
// simply discard the result if they lose interest.
func (g *Group) Do(ctx context.Context, key string, producer func(ctx context.Context) (any, error)) (any, bool, error) {
	v, err, shared := g.sf.Do(key, func() (any, error) {
		return producer(ctx)
	})
	return v, shared, err
}

// Forget removes any in-flight record for key, so the next Do call will
// run its producer rather than joining an older flight. Used by
// invalidation paths that must not serve a result computed before the
// invalidating write.
func (g *Group) Forget(key string) {
	g.sf.Forget(key)
}
