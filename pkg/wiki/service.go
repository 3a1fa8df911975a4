package wiki

import (
	"context"
	"time"

	"github.com/BenDol/GithubWiki-sub000/pkg/cache"
	"github.com/BenDol/GithubWiki-sub000/pkg/dedup"
	"github.com/BenDol/GithubWiki-sub000/pkg/errors"
	"github.com/BenDol/GithubWiki-sub000/pkg/github"
	"github.com/BenDol/GithubWiki-sub000/pkg/observability"
)

// Remote is the GitHub surface the service consumes. *github.Client
// satisfies it; tests substitute a fake.
type Remote interface {
	GetFile(ctx context.Context, owner, repo, path, ref string) (*github.FileContent, error)
	PutFile(ctx context.Context, owner, repo, path string, opts github.PutFileOptions) (*github.FileContent, error)
	DeleteFile(ctx context.Context, owner, repo, path string, opts github.DeleteFileOptions) error
	GetUser(ctx context.Context, login string) (*github.User, error)
	GetRepo(ctx context.Context, owner, repo string) (*github.Repo, error)
	ListCollaborators(ctx context.Context, owner, repo string) ([]github.User, error)
	GetPermission(ctx context.Context, owner, repo, login string) (string, *github.User, error)
	ListPulls(ctx context.Context, owner, repo string, page, perPage int) ([]github.PullRequest, error)
}

// Options configures a Service.
type Options struct {
	// DataOwner and DataRepo name the central data repository holding
	// avatars, donator flags, and shared builds.
	DataOwner string
	DataRepo  string

	// Store backs the durable tiers. Nil selects an in-memory store,
	// which disables cross-run persistence but keeps tier semantics.
	Store cache.Store

	// Hooks receives cache events. Nil disables them.
	Hooks observability.CacheHooks
}

// Service is the cache-aware wiki API. Construct with New; a Service is
// safe for concurrent use but must not be shared across authenticated
// principals.
type Service struct {
	remote   Remote
	store    cache.Store
	dedup    *dedup.Group
	identity *cache.IdentityIndex

	dataOwner string
	dataRepo  string

	content        *cache.Tier
	profiles       *cache.Tier
	collaborators  *cache.Tier
	repoMeta       *cache.Tier
	permissions    *cache.Tier
	pulls          *cache.Tier
	forks          *cache.Tier
	avatars        *cache.Tier
	avatarRegistry *cache.Tier
	donators       *cache.Tier
	buildIndex     *cache.Tier
	builds         *cache.Tier
}

// New builds a Service with all cache tiers initialized. Durable tiers load
// their snapshots from opts.Store before New returns.
func New(ctx context.Context, remote Remote, opts Options) (*Service, error) {
	if remote == nil {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "remote client is required")
	}
	store := opts.Store
	if store == nil {
		store = cache.NewMemoryStore()
	}

	s := &Service{
		remote:    remote,
		store:     store,
		dedup:     new(dedup.Group),
		identity:  cache.NewIdentityIndex(),
		dataOwner: opts.DataOwner,
		dataRepo:  opts.DataRepo,
	}
	if err := s.newTiers(ctx, store, opts.Hooks); err != nil {
		return nil, err
	}
	return s, nil
}

// newTiers builds the per-resource-class tier table. Lifetimes balance
// freshness against API quota: identity data changes rarely (a day),
// permissions must track role changes (ten minutes), the avatar registry
// backs a picker UI (a minute), and builds are immutable once shared.
func (s *Service) newTiers(ctx context.Context, store cache.Store, hooks observability.CacheHooks) error {
	durable := func(name string, ttl time.Duration, maxEntries int) cache.Config {
		return cache.Config{Name: name, TTL: ttl, MaxEntries: maxEntries, Persistent: true}
	}
	session := func(name string, ttl time.Duration) cache.Config {
		return cache.Config{Name: name, TTL: ttl}
	}
	immutable := func(name string) cache.Config {
		return cache.Config{Name: name, Immutable: true}
	}

	table := []struct {
		dst **cache.Tier
		cfg cache.Config
	}{
		{dst: &s.content, cfg: durable("content", 24*time.Hour, 500)},
		{dst: &s.profiles, cfg: durable("user-profile", 24*time.Hour, 200)},
		{dst: &s.collaborators, cfg: durable("collaborators", 24*time.Hour, 50)},
		{dst: &s.repoMeta, cfg: durable("repo-meta", 6*time.Hour, 10)},
		{dst: &s.avatars, cfg: durable("avatar-data", 24*time.Hour, 0)},
		{dst: &s.avatarRegistry, cfg: durable("avatar-registry", time.Minute, 0)},
		{dst: &s.permissions, cfg: session("permission", 10*time.Minute)},
		{dst: &s.pulls, cfg: session("pulls", 10*time.Minute)},
		{dst: &s.forks, cfg: session("fork-status", 30*time.Minute)},
		{dst: &s.donators, cfg: immutable("donator")},
		{dst: &s.buildIndex, cfg: immutable("build-index")},
		{dst: &s.builds, cfg: immutable("builds")},
	}

	for _, row := range table {
		st := store
		if !row.cfg.Persistent {
			st = nil
		}
		tier, err := cache.NewTier(ctx, row.cfg, st, hooks)
		if err != nil {
			return err
		}
		*row.dst = tier
	}
	return nil
}

// Close releases the durable store.
func (s *Service) Close() error {
	return s.store.Close()
}

// Stats reports resident entry counts per tier.
func (s *Service) Stats() map[string]int {
	stats := make(map[string]int)
	for _, t := range s.tiers() {
		stats[t.Name()] = t.Len()
	}
	return stats
}

// ClearCache drops every tier, durable snapshots included.
func (s *Service) ClearCache(ctx context.Context) error {
	for _, t := range s.tiers() {
		if err := t.Clear(ctx); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) tiers() []*cache.Tier {
	return []*cache.Tier{
		s.content, s.profiles, s.collaborators, s.repoMeta, s.permissions,
		s.pulls, s.forks, s.avatars, s.avatarRegistry, s.donators,
		s.buildIndex, s.builds,
	}
}

// cached implements the tier read path: hit returns immediately; a miss is
// coalesced per key, fetched once, stored, and shared with every concurrent
// caller. out must be a pointer; it receives the cached or fetched value.
func (s *Service) cached(ctx context.Context, tier *cache.Tier, key string, out any, fetch func(ctx context.Context) (any, error)) error {
	if ok, err := tier.Get(ctx, key, out); err != nil {
		return err
	} else if ok {
		return nil
	}

	_, _, err := s.dedup.Do(ctx, tier.Name()+":"+key, func(ctx context.Context) (any, error) {
		v, err := fetch(ctx)
		if err != nil {
			return nil, err
		}
		if err := tier.Set(ctx, key, v); err != nil {
			return nil, err
		}
		return v, nil
	})
	if err != nil {
		return err
	}

	// Read back through the tier so every caller, coalesced or not, gets
	// an independent copy of the value.
	if ok, err := tier.Get(ctx, key, out); err != nil {
		return err
	} else if !ok {
		// The entry was invalidated between the producer's Set and our
		// read. Fetch directly rather than looping.
		v, err := fetch(ctx)
		if err != nil {
			return err
		}
		return decodeInto(v, out)
	}
	return nil
}

// supersedeLogin invalidates everything keyed by a login that no longer
// names the same account. Called when the identity index observes a rename.
func (s *Service) supersedeLogin(ctx context.Context, oldLogin string) {
	_ = s.profiles.Delete(ctx, cache.ProfileKey(oldLogin))
	_ = s.avatars.Delete(ctx, cache.AvatarKey(oldLogin))
	_ = s.donators.Delete(ctx, cache.DonatorKey(oldLogin))
	_ = s.permissions.InvalidateFunc(ctx, func(key string) bool {
		return hasSuffixSegment(key, oldLogin)
	})
	_ = s.pulls.InvalidateFunc(ctx, func(key string) bool {
		return containsSegment(key, "pulls/"+oldLogin+"/")
	})
	_ = s.forks.InvalidateFunc(ctx, func(key string) bool {
		return hasSuffixSegment(key, oldLogin)
	})
}

// observeIdentity feeds a user record into the identity index and
// supersedes old-login cache entries when a rename is detected.
func (s *Service) observeIdentity(ctx context.Context, user *github.User) {
	if user == nil || user.ID == 0 {
		return
	}
	if previous, renamed := s.identity.Observe(user.ID, user.Login); renamed {
		s.supersedeLogin(ctx, previous)
	}
}
