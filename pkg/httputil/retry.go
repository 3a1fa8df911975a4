package httputil

import (
	"context"
	stderrors "errors"
	"fmt"
	"math/rand"
	"net"
	"strings"
	"time"

	"github.com/BenDol/GithubWiki-sub000/pkg/errors"
	"github.com/BenDol/GithubWiki-sub000/pkg/observability"
)

// StatusError carries an HTTP status code through the error chain so the
// retry policy can classify it. Message preserves the server's response body
// (or a summary of it) unchanged.
type StatusError struct {
	StatusCode int
	Message    string
}

// Error implements the error interface.
func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("status %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("status %d", e.StatusCode)
}

// RetryableError wraps an error to indicate it should trigger a retry.
// Wrap transient failures (network timeouts, connection resets) with this
// type when no status code is available.
type RetryableError struct{ Err error }

func (e *RetryableError) Error() string { return e.Err.Error() }
func (e *RetryableError) Unwrap() error { return e.Err }

// Config holds retry policy settings. The zero value is not usable; start
// from [DefaultConfig] and override fields as needed.
type Config struct {
	// MaxRetries is the number of retries after the initial attempt.
	MaxRetries int

	// InitialDelay is the backoff before the first retry.
	InitialDelay time.Duration

	// MaxDelay caps the computed backoff, jitter included.
	MaxDelay time.Duration

	// Multiplier scales the delay after each failed attempt.
	Multiplier float64

	// RetryableStatuses are the HTTP status codes that trigger a retry.
	RetryableStatuses []int
}

// DefaultConfig returns the standard retry settings: 3 retries, 2 second
// initial delay doubling up to 60 seconds, retrying rate-limit and server
// error statuses.
func DefaultConfig() Config {
	return Config{
		MaxRetries:        3,
		InitialDelay:      2 * time.Second,
		MaxDelay:          60 * time.Second,
		Multiplier:        2,
		RetryableStatuses: []int{403, 429, 500, 502, 503, 504},
	}
}

// Validate checks the configuration for programmer errors.
// Misconfiguration fails fast here rather than degrading silently at call sites.
func (c Config) Validate() error {
	if c.MaxRetries < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "MaxRetries must be >= 0, got %d", c.MaxRetries)
	}
	if c.InitialDelay <= 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "InitialDelay must be > 0, got %v", c.InitialDelay)
	}
	if c.MaxDelay < c.InitialDelay {
		return errors.New(errors.ErrCodeInvalidConfig, "MaxDelay %v is below InitialDelay %v", c.MaxDelay, c.InitialDelay)
	}
	if c.Multiplier < 1 {
		return errors.New(errors.ErrCodeInvalidConfig, "Multiplier must be >= 1, got %g", c.Multiplier)
	}
	return nil
}

// Policy executes remote calls with exponential backoff and jitter.
//
// Only retryable failures are retried: a status code listed in the config,
// a rate-limit error, or a network-level failure. Everything else is
// returned to the caller unchanged on the first attempt. Retry activity is
// reported through the [observability.RetryHooks] passed at construction,
// so consumers subscribe to rate-limit notices deliberately instead of
// listening on a global channel.
//
// A Policy never retries a call it cannot prove is safe to repeat: use
// [Policy.Do] for idempotent operations and [Policy.DoOnce] for writes
// without an idempotency key.
type Policy struct {
	cfg   Config
	hooks observability.RetryHooks

	// sleep and jitter are indirected for tests.
	sleep  func(ctx context.Context, d time.Duration) error
	jitter func() float64
}

// NewPolicy creates a retry policy with the given configuration and hooks.
// Pass nil hooks to disable retry notifications.
func NewPolicy(cfg Config, hooks observability.RetryHooks) (*Policy, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if hooks == nil {
		hooks = observability.NoopRetryHooks{}
	}
	return &Policy{
		cfg:    cfg,
		hooks:  hooks,
		sleep:  ctxSleep,
		jitter: rand.Float64,
	}, nil
}

// Do executes fn, retrying retryable failures up to the configured budget.
// The call must be idempotent: Do may execute it more than once.
// Returns the final error unchanged if retries are exhausted or the failure
// is not retryable, or ctx.Err() if the context is cancelled while waiting.
func (p *Policy) Do(ctx context.Context, fn func(context.Context) error) error {
	var lastErr error

	for attempt := 0; ; attempt++ {
		err := fn(ctx)
		if err == nil {
			if attempt > 0 {
				p.hooks.OnRecovered(ctx, attempt)
			}
			return nil
		}
		lastErr = err

		if !p.isRetryable(err) {
			return err
		}
		if attempt >= p.cfg.MaxRetries {
			p.hooks.OnExhausted(ctx, attempt, err)
			return lastErr
		}

		delay := p.backoff(attempt)
		if isRateLimit(err) {
			// Rate limits get the richer notification path; 5xx and
			// network errors retry silently.
			p.hooks.OnRetry(ctx, attempt+1, delay, p.cfg.MaxRetries-attempt)
		}
		if err := p.sleep(ctx, delay); err != nil {
			return err
		}
	}
}

// DoOnce executes fn exactly once with no retry.
// Use this for non-idempotent operations (creates, unconditioned writes)
// where a retried call could duplicate a resource.
func (p *Policy) DoOnce(ctx context.Context, fn func(context.Context) error) error {
	return fn(ctx)
}

// backoff computes the delay before retry number attempt (0-based), applying
// the multiplier, a +/-25% jitter, and the MaxDelay cap.
func (p *Policy) backoff(attempt int) time.Duration {
	d := float64(p.cfg.InitialDelay)
	for i := 0; i < attempt; i++ {
		d *= p.cfg.Multiplier
	}
	// Jitter in [0.75, 1.25) to spread out synchronized retries.
	d *= 0.75 + 0.5*p.jitter()
	if capped := float64(p.cfg.MaxDelay); d > capped {
		d = capped
	}
	return time.Duration(d)
}

func (p *Policy) isRetryable(err error) bool {
	var se *StatusError
	if stderrors.As(err, &se) {
		for _, code := range p.cfg.RetryableStatuses {
			if se.StatusCode == code {
				return true
			}
		}
		return false
	}
	if isRateLimit(err) {
		return true
	}
	var re *RetryableError
	if stderrors.As(err, &re) {
		return true
	}
	return isNetworkError(err)
}

// isRateLimit reports whether err is a rate-limit condition: a 429, or a
// 403 whose remaining-quota indicator was exhausted. The client maps both
// to *errors.RateLimitedError, so classification is a type check here.
func isRateLimit(err error) bool {
	var rl *errors.RateLimitedError
	return stderrors.As(err, &rl)
}

// isNetworkError reports whether err indicates a network-level failure
// (timeout, connection reset) rather than an application error.
func isNetworkError(err error) bool {
	var ne net.Error
	if stderrors.As(err, &ne) && ne.Timeout() {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "connection reset") ||
		strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "timeout") ||
		strings.Contains(msg, "EOF")
}

// ctxSleep waits for d or until ctx is cancelled, whichever comes first.
func ctxSleep(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}
