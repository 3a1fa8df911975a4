package cache

import "sync"

// IdentityIndex maps stable user IDs to their current login.
//
// Several tiers are keyed by username (permissions, profiles, pull request
// pages). A username change would otherwise orphan those entries: lookups
// under the new name would miss while stale data under the old name waits
// out its TTL. The index detects the rename so old-login keys can be
// superseded immediately.
type IdentityIndex struct {
	mu      sync.Mutex
	byID    map[int64]string
	byLogin map[string]int64
}

// NewIdentityIndex creates an empty index.
func NewIdentityIndex() *IdentityIndex {
	return &IdentityIndex{
		byID:    make(map[int64]string),
		byLogin: make(map[string]int64),
	}
}

// Observe records that id currently maps to login.
// If the id was previously known under a different login, that previous
// login is returned with renamed=true; the caller must treat cache entries
// keyed by it as superseded and invalidate them.
func (x *IdentityIndex) Observe(id int64, login string) (previous string, renamed bool) {
	x.mu.Lock()
	defer x.mu.Unlock()

	prev, known := x.byID[id]
	if known && prev != login {
		delete(x.byLogin, prev)
		previous, renamed = prev, true
	}
	x.byID[id] = login
	x.byLogin[login] = id
	return previous, renamed
}

// Login returns the current login for id.
func (x *IdentityIndex) Login(id int64) (string, bool) {
	x.mu.Lock()
	defer x.mu.Unlock()
	login, ok := x.byID[id]
	return login, ok
}

// ID returns the user ID recorded for login.
// A login that has been superseded by a rename is no longer present.
func (x *IdentityIndex) ID(login string) (int64, bool) {
	x.mu.Lock()
	defer x.mu.Unlock()
	id, ok := x.byLogin[login]
	return id, ok
}
