package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/BenDol/GithubWiki-sub000/pkg/cache"
	"github.com/BenDol/GithubWiki-sub000/pkg/config"
	"github.com/BenDol/GithubWiki-sub000/pkg/github"
	"github.com/BenDol/GithubWiki-sub000/pkg/httputil"
	"github.com/BenDol/GithubWiki-sub000/pkg/wiki"
)

// =============================================================================
// Config Loading
// =============================================================================

// loadConfig reads the config file from --config, falling back to the XDG
// default location. A missing file yields the built-in defaults.
func (c *CLI) loadConfig() (config.Config, error) {
	path := c.configPath
	if path == "" {
		path = defaultConfigPath()
	}
	return config.Load(path)
}

// =============================================================================
// Service Factory
// =============================================================================

// session bundles everything a command needs to talk to the wiki: the
// config it was built from, the raw API client, and the cache-aware
// service on top. Close releases the store connection.
type session struct {
	cfg    config.Config
	client *github.Client
	svc    *wiki.Service
}

func (s *session) Close() {
	if err := s.svc.Close(); err != nil {
		log.Default().Debug("closing service", "err", err)
	}
}

// newSession builds a wiki service from the loaded configuration. The
// data-repository coordinates come from github.owner/github.repo; commands
// that operate on a different wiki repository pass coordinates explicitly.
func (c *CLI) newSession(ctx context.Context) (*session, error) {
	cfg, err := c.loadConfig()
	if err != nil {
		return nil, err
	}
	return c.newSessionWithToken(ctx, cfg, cfg.GitHub.Token)
}

// newSessionWithToken builds a session for an explicit token. The server
// uses this to give each authenticated principal its own cache partition.
func (c *CLI) newSessionWithToken(ctx context.Context, cfg config.Config, token string) (*session, error) {
	client, err := c.newClient(cfg, token)
	if err != nil {
		return nil, err
	}

	store, err := newStore(ctx, cfg.Cache)
	if err != nil {
		return nil, fmt.Errorf("initialize cache store: %w", err)
	}

	svc, err := wiki.New(ctx, client, wiki.Options{
		DataOwner: cfg.GitHub.Owner,
		DataRepo:  cfg.GitHub.Repo,
		Store:     store,
		Hooks:     &logCacheHooks{logger: c.Logger},
	})
	if err != nil {
		return nil, err
	}

	return &session{cfg: cfg, client: client, svc: svc}, nil
}

// newClient builds the retrying API client from the retry settings.
func (c *CLI) newClient(cfg config.Config, token string) (*github.Client, error) {
	initial, max := cfg.Retry.Durations()
	retryCfg := httputil.DefaultConfig()
	retryCfg.MaxRetries = cfg.Retry.MaxRetries
	retryCfg.InitialDelay = initial
	retryCfg.MaxDelay = max
	retryCfg.Multiplier = cfg.Retry.Multiplier

	policy, err := httputil.NewPolicy(retryCfg, &rateLimitNotifier{logger: c.Logger})
	if err != nil {
		return nil, fmt.Errorf("build retry policy: %w", err)
	}

	return github.NewClient(github.Config{
		BaseURL: cfg.GitHub.BaseURL,
		Token:   token,
	}, policy, &logHTTPHooks{logger: c.Logger}), nil
}

// newStore selects the durable cache backend.
func newStore(ctx context.Context, cfg config.CacheConfig) (cache.Store, error) {
	switch cfg.Backend {
	case "memory":
		return cache.NewMemoryStore(), nil
	case "none":
		return cache.NewNullStore(), nil
	case "redis":
		return cache.NewRedisStore(ctx, cache.RedisConfig{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			Prefix:   cfg.Redis.Prefix,
		})
	case "mongo":
		return cache.NewMongoStore(ctx, cache.MongoConfig{
			URI:        cfg.Mongo.URI,
			Database:   cfg.Mongo.Database,
			Collection: cfg.Mongo.Collection,
		})
	default:
		dir := cfg.Dir
		if dir == "" {
			d, err := cache.DefaultDir()
			if err != nil {
				return nil, err
			}
			dir = d
		}
		return cache.NewFileStore(dir)
	}
}

// =============================================================================
// Observability Hooks
// =============================================================================

// rateLimitNotifier surfaces rate-limit waits to the user so long pauses
// are not mistaken for a hang.
type rateLimitNotifier struct {
	logger *log.Logger
}

func (n *rateLimitNotifier) OnRetry(_ context.Context, attempt int, delay time.Duration, remaining int) {
	printWarning("Rate limited by GitHub; retrying in %s (%s left)",
		delay.Round(time.Second), formatCount(remaining, "attempt"))
	n.logger.Debug("retry scheduled", "attempt", attempt, "delay", delay)
}

func (n *rateLimitNotifier) OnRecovered(_ context.Context, attempts int) {
	n.logger.Debug("request recovered", "attempts", attempts)
}

func (n *rateLimitNotifier) OnExhausted(_ context.Context, attempts int, err error) {
	n.logger.Debug("retries exhausted", "attempts", attempts, "err", err)
}

// logCacheHooks reports tier activity at debug level.
type logCacheHooks struct {
	logger *log.Logger
}

func (h *logCacheHooks) OnCacheHit(_ context.Context, tier string) {
	h.logger.Debug("cache hit", "tier", tier)
}

func (h *logCacheHooks) OnCacheMiss(_ context.Context, tier string) {
	h.logger.Debug("cache miss", "tier", tier)
}

func (h *logCacheHooks) OnCacheSet(_ context.Context, tier string, size int) {
	h.logger.Debug("cache set", "tier", tier, "bytes", size)
}

func (h *logCacheHooks) OnCacheEvict(_ context.Context, tier string, count int) {
	h.logger.Debug("cache evict", "tier", tier, "count", count)
}

// logHTTPHooks reports API round trips at debug level.
type logHTTPHooks struct {
	logger *log.Logger
}

func (h *logHTTPHooks) OnRequest(_ context.Context, method, host, path string) {
	h.logger.Debug("api request", "method", method, "path", path)
}

func (h *logHTTPHooks) OnResponse(_ context.Context, method, host, path string, status int, d time.Duration) {
	h.logger.Debug("api response", "method", method, "path", path, "status", status, "took", d.Round(time.Millisecond))
}

func (h *logHTTPHooks) OnError(_ context.Context, method, host, path string, err error) {
	h.logger.Debug("api error", "method", method, "path", path, "err", err)
}
