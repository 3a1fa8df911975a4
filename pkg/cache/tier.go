package cache

import (
	"container/list"
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/BenDol/GithubWiki-sub000/pkg/errors"
	"github.com/BenDol/GithubWiki-sub000/pkg/observability"
)

// Config describes one cache tier. TTL and bounds are per resource class
// and deliberate tuning choices; see the tier table in pkg/wiki.
type Config struct {
	// Name identifies the tier in hooks and durable snapshots.
	Name string

	// TTL is the entry time-to-live. Must be > 0 unless Immutable is set.
	TTL time.Duration

	// MaxEntries bounds the tier; 0 means unbounded.
	// When a new key would exceed the bound, the least-recently-used
	// fifth of the tier is evicted in bulk.
	MaxEntries int

	// Persistent tiers snapshot their contents to a Store after every
	// mutation and reload the snapshot at construction.
	Persistent bool

	// Immutable marks a tier whose entries never expire (content that
	// cannot change once written, like shared builds). Requires TTL == 0.
	Immutable bool
}

// Validate checks the tier configuration for programmer errors.
func (c Config) Validate() error {
	if c.Name == "" {
		return errors.New(errors.ErrCodeInvalidConfig, "tier name cannot be empty")
	}
	if c.Immutable {
		if c.TTL != 0 {
			return errors.New(errors.ErrCodeInvalidConfig, "tier %s: immutable tiers take no TTL, got %v", c.Name, c.TTL)
		}
	} else if c.TTL <= 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "tier %s: TTL must be > 0, got %v", c.Name, c.TTL)
	}
	if c.MaxEntries < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "tier %s: MaxEntries must be >= 0, got %d", c.Name, c.MaxEntries)
	}
	return nil
}

// entry is one cached value with its write timestamp.
type entry struct {
	Key       string          `json:"key"`
	Data      json.RawMessage `json:"data"`
	WrittenAt time.Time       `json:"written_at"`
}

// snapshot is the durable form of a tier: entries in most- to
// least-recently-used order, so access order survives a reload.
type snapshot struct {
	Entries []entry `json:"entries"`
}

// Tier is a named cache partition with TTL expiry, LRU eviction, and
// optional durable snapshots. Safe for concurrent use.
type Tier struct {
	cfg   Config
	store Store
	hooks observability.CacheHooks

	mu      sync.Mutex
	order   *list.List // front = most recently used; holds *entry
	entries map[string]*list.Element

	// persistMu serializes durable writes. It is held across snapshot,
	// marshal, and store write so overlapping mutations cannot land their
	// snapshots out of order and leave the durable copy stale.
	persistMu sync.Mutex

	// now is indirected for TTL tests.
	now func() time.Time
}

// NewTier creates a tier from cfg. Persistent tiers require a store; the
// durable snapshot is loaded eagerly and entries that expired while the
// process was down are pruned before the tier is returned.
// Pass nil hooks to disable cache event notifications.
func NewTier(ctx context.Context, cfg Config, store Store, hooks observability.CacheHooks) (*Tier, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Persistent && store == nil {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "tier %s: persistent tier requires a store", cfg.Name)
	}
	if hooks == nil {
		hooks = observability.NoopCacheHooks{}
	}
	t := &Tier{
		cfg:     cfg,
		store:   store,
		hooks:   hooks,
		order:   list.New(),
		entries: make(map[string]*list.Element),
		now:     time.Now,
	}
	if cfg.Persistent {
		if err := t.load(ctx); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// Name returns the tier name.
func (t *Tier) Name() string { return t.cfg.Name }

// Len returns the number of resident entries.
func (t *Tier) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.entries)
}

// Get retrieves the value for key and unmarshals it into v.
// Returns false on a miss, or when the entry exceeded the tier TTL; a
// stale entry is eagerly evicted as a side effect. A hit refreshes the
// entry's last-access position for LRU purposes.
func (t *Tier) Get(ctx context.Context, key string, v any) (bool, error) {
	t.mu.Lock()
	el, ok := t.entries[key]
	if !ok {
		t.mu.Unlock()
		t.hooks.OnCacheMiss(ctx, t.cfg.Name)
		return false, nil
	}
	e := el.Value.(*entry)
	if t.expired(e) {
		t.removeLocked(el)
		t.mu.Unlock()
		if t.cfg.Persistent {
			if err := t.persist(ctx); err != nil {
				return false, err
			}
		}
		t.hooks.OnCacheMiss(ctx, t.cfg.Name)
		return false, nil
	}
	t.order.MoveToFront(el)
	data := e.Data
	t.mu.Unlock()

	if err := json.Unmarshal(data, v); err != nil {
		return false, err
	}
	t.hooks.OnCacheHit(ctx, t.cfg.Name)
	return true, nil
}

// Set stores a value under key, marshaled as JSON.
// If the tier is at capacity and key is new, the least-recently-used ~20%
// of entries are evicted first. Persistent tiers write their full snapshot
// to the durable store synchronously after the update.
func (t *Tier) Set(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}

	t.mu.Lock()
	if el, ok := t.entries[key]; ok {
		e := el.Value.(*entry)
		e.Data = data
		e.WrittenAt = t.now()
		t.order.MoveToFront(el)
	} else {
		if evicted := t.evictForSpaceLocked(); evicted > 0 {
			t.hooks.OnCacheEvict(ctx, t.cfg.Name, evicted)
		}
		e := &entry{Key: key, Data: data, WrittenAt: t.now()}
		t.entries[key] = t.order.PushFront(e)
	}
	t.mu.Unlock()

	t.hooks.OnCacheSet(ctx, t.cfg.Name, len(data))
	if t.cfg.Persistent {
		return t.persist(ctx)
	}
	return nil
}

// Delete removes the entry for key, if present.
func (t *Tier) Delete(ctx context.Context, key string) error {
	t.mu.Lock()
	el, ok := t.entries[key]
	if ok {
		t.removeLocked(el)
	}
	t.mu.Unlock()

	if ok && t.cfg.Persistent {
		return t.persist(ctx)
	}
	return nil
}

// InvalidatePrefix removes every entry whose key starts with prefix.
// Used after writes that change the underlying resource, so stale data is
// dropped immediately instead of waiting out the TTL.
func (t *Tier) InvalidatePrefix(ctx context.Context, prefix string) error {
	t.mu.Lock()
	var removed bool
	for key, el := range t.entries {
		if strings.HasPrefix(key, prefix) {
			t.removeLocked(el)
			removed = true
		}
	}
	t.mu.Unlock()

	if removed && t.cfg.Persistent {
		return t.persist(ctx)
	}
	return nil
}

// InvalidateFunc removes every entry whose key satisfies match. Used when
// the affected keys cannot be named by a single prefix, like superseding all
// entries keyed by an old login after a username change.
func (t *Tier) InvalidateFunc(ctx context.Context, match func(key string) bool) error {
	t.mu.Lock()
	var removed bool
	for key, el := range t.entries {
		if match(key) {
			t.removeLocked(el)
			removed = true
		}
	}
	t.mu.Unlock()

	if removed && t.cfg.Persistent {
		return t.persist(ctx)
	}
	return nil
}

// Clear drops all entries in the tier and its durable snapshot.
func (t *Tier) Clear(ctx context.Context) error {
	t.mu.Lock()
	t.order.Init()
	t.entries = make(map[string]*list.Element)
	t.mu.Unlock()

	if t.cfg.Persistent {
		t.persistMu.Lock()
		defer t.persistMu.Unlock()
		return t.store.Delete(ctx, t.storeKey())
	}
	return nil
}

// expired reports whether e exceeded the tier TTL. Immutable tiers never
// expire.
func (t *Tier) expired(e *entry) bool {
	if t.cfg.Immutable {
		return false
	}
	return t.now().Sub(e.WrittenAt) >= t.cfg.TTL
}

// evictForSpaceLocked makes room for one new key when the tier is at its
// bound, evicting the least-recently-used ~20% in one pass to amortize
// eviction cost. Returns the number of evicted entries.
func (t *Tier) evictForSpaceLocked() int {
	if t.cfg.MaxEntries == 0 || len(t.entries) < t.cfg.MaxEntries {
		return 0
	}
	target := t.cfg.MaxEntries / 5
	if target < 1 {
		target = 1
	}
	evicted := 0
	for evicted < target {
		back := t.order.Back()
		if back == nil {
			break
		}
		t.removeLocked(back)
		evicted++
	}
	return evicted
}

func (t *Tier) removeLocked(el *list.Element) {
	e := t.order.Remove(el).(*entry)
	delete(t.entries, e.Key)
}

// storeKey is the durable-store key holding this tier's snapshot.
func (t *Tier) storeKey() string {
	return "tier/" + t.cfg.Name
}

// persist writes the full tier snapshot to the durable store.
// Snapshots are rewritten whole on every mutation; tiers are bounded to a
// few hundred entries, so the simple scheme stays within storage quotas.
// The snapshot taken last is also the snapshot written last.
func (t *Tier) persist(ctx context.Context) error {
	t.persistMu.Lock()
	defer t.persistMu.Unlock()

	t.mu.Lock()
	snap := snapshot{Entries: make([]entry, 0, len(t.entries))}
	for el := t.order.Front(); el != nil; el = el.Next() {
		snap.Entries = append(snap.Entries, *el.Value.(*entry))
	}
	t.mu.Unlock()

	data, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	return t.store.Set(ctx, t.storeKey(), data)
}

// load restores the tier from its durable snapshot and prunes entries that
// expired while the process was down. A corrupt snapshot is discarded and
// treated as empty rather than failing construction.
func (t *Tier) load(ctx context.Context) error {
	data, ok, err := t.store.Get(ctx, t.storeKey())
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}

	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return t.store.Delete(ctx, t.storeKey())
	}

	t.mu.Lock()
	pruned := false
	for i := range snap.Entries {
		e := snap.Entries[i]
		if t.expired(&e) {
			pruned = true
			continue
		}
		// Snapshot order is MRU first; PushBack preserves it.
		t.entries[e.Key] = t.order.PushBack(&e)
	}
	t.mu.Unlock()

	if pruned {
		return t.persist(ctx)
	}
	return nil
}
