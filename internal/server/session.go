package server

import (
	"context"
	"sync"
	"time"

	"github.com/BenDol/GithubWiki-sub000/pkg/wiki"
)

// sessionMap holds one wiki.Service per bearer token. Sessions idle past
// the timeout are evicted, caches and all, during lookups; there is no
// background janitor to leak.
type sessionMap struct {
	factory ServiceFactory
	idle    time.Duration

	mu      sync.Mutex
	entries map[string]*sessionEntry

	// now is indirected for eviction tests.
	now func() time.Time
}

type sessionEntry struct {
	svc      *wiki.Service
	lastSeen time.Time
}

func newSessionMap(factory ServiceFactory, idle time.Duration) *sessionMap {
	return &sessionMap{
		factory: factory,
		idle:    idle,
		entries: make(map[string]*sessionEntry),
		now:     time.Now,
	}
}

// get returns the session service for token, creating it on first use.
// Every lookup also sweeps idle sessions.
func (m *sessionMap) get(ctx context.Context, token string) (*wiki.Service, error) {
	m.mu.Lock()
	m.sweepLocked()

	if e, ok := m.entries[token]; ok {
		e.lastSeen = m.now()
		m.mu.Unlock()
		return e.svc, nil
	}
	m.mu.Unlock()

	// Build outside the lock; service construction may load snapshots.
	svc, err := m.factory(ctx, token)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if e, ok := m.entries[token]; ok {
		// Another request created the session concurrently; keep theirs.
		_ = svc.Close()
		e.lastSeen = m.now()
		return e.svc, nil
	}
	m.entries[token] = &sessionEntry{svc: svc, lastSeen: m.now()}
	return svc, nil
}

func (m *sessionMap) sweepLocked() {
	cutoff := m.now().Add(-m.idle)
	for token, e := range m.entries {
		if e.lastSeen.Before(cutoff) {
			_ = e.svc.Close()
			delete(m.entries, token)
		}
	}
}

func (m *sessionMap) len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

func (m *sessionMap) closeAll() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	var firstErr error
	for token, e := range m.entries {
		if err := e.svc.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		delete(m.entries, token)
	}
	return firstErr
}
