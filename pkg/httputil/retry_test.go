package httputil

import (
	"context"
	stderrors "errors"
	"fmt"
	"testing"
	"time"

	"github.com/BenDol/GithubWiki-sub000/pkg/errors"
)

// testPolicy returns a policy whose sleeps are recorded instead of waited.
func testPolicy(t *testing.T, cfg Config) (*Policy, *[]time.Duration) {
	t.Helper()
	p, err := NewPolicy(cfg, nil)
	if err != nil {
		t.Fatalf("NewPolicy() failed: %v", err)
	}
	var delays []time.Duration
	p.sleep = func(ctx context.Context, d time.Duration) error {
		delays = append(delays, d)
		return nil
	}
	p.jitter = func() float64 { return 0.5 } // midpoint: no jitter
	return p, &delays
}

func TestPolicy_RetryThenSucceed(t *testing.T) {
	cfg := DefaultConfig()
	p, delays := testPolicy(t, cfg)

	calls := 0
	err := p.Do(context.Background(), func(ctx context.Context) error {
		calls++
		if calls <= cfg.MaxRetries {
			return &StatusError{StatusCode: 503}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Do() failed: %v", err)
	}
	if calls != cfg.MaxRetries+1 {
		t.Errorf("got %d calls, want %d", calls, cfg.MaxRetries+1)
	}
	if len(*delays) != cfg.MaxRetries {
		t.Fatalf("got %d delays, want %d", len(*delays), cfg.MaxRetries)
	}
	for i := 1; i < len(*delays); i++ {
		if (*delays)[i] < (*delays)[i-1] {
			t.Errorf("delay %d (%v) shorter than delay %d (%v)", i, (*delays)[i], i-1, (*delays)[i-1])
		}
	}
}

func TestPolicy_ExhaustedPropagatesOriginalError(t *testing.T) {
	cfg := DefaultConfig()
	p, delays := testPolicy(t, cfg)

	want := &StatusError{StatusCode: 502, Message: "bad gateway"}
	calls := 0
	err := p.Do(context.Background(), func(ctx context.Context) error {
		calls++
		return want
	})

	var got *StatusError
	if !stderrors.As(err, &got) || got.StatusCode != 502 || got.Message != "bad gateway" {
		t.Errorf("got error %v, want original 502 preserved", err)
	}
	if calls != cfg.MaxRetries+1 {
		t.Errorf("got %d calls, want %d (initial + %d retries)", calls, cfg.MaxRetries+1, cfg.MaxRetries)
	}
	if len(*delays) != cfg.MaxRetries {
		t.Errorf("got %d delays, want %d", len(*delays), cfg.MaxRetries)
	}
}

func TestPolicy_NonRetryableFailsImmediately(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"notFound", &StatusError{StatusCode: 404}},
		{"unprocessable", &StatusError{StatusCode: 422}},
		{"plainError", fmt.Errorf("no such resource")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, delays := testPolicy(t, DefaultConfig())
			calls := 0
			err := p.Do(context.Background(), func(ctx context.Context) error {
				calls++
				return tt.err
			})
			if !stderrors.Is(err, tt.err) {
				t.Errorf("got error %v, want %v", err, tt.err)
			}
			if calls != 1 {
				t.Errorf("got %d calls, want 1", calls)
			}
			if len(*delays) != 0 {
				t.Errorf("got %d delays, want 0", len(*delays))
			}
		})
	}
}

func TestPolicy_RateLimitRetries(t *testing.T) {
	p, delays := testPolicy(t, DefaultConfig())

	calls := 0
	err := p.Do(context.Background(), func(ctx context.Context) error {
		calls++
		if calls == 1 {
			return &errors.RateLimitedError{RetryAfter: 1, Remaining: 0}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Do() failed: %v", err)
	}
	if calls != 2 {
		t.Errorf("got %d calls, want 2", calls)
	}
	if len(*delays) != 1 {
		t.Errorf("got %d delays, want 1", len(*delays))
	}
}

func TestPolicy_BackoffGrowthAndCap(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxRetries = 6
	p, _ := testPolicy(t, cfg)

	// Midpoint jitter: the raw schedule is 2s, 4s, 8s, 16s, 32s, 64s(capped).
	want := []time.Duration{
		2 * time.Second, 4 * time.Second, 8 * time.Second,
		16 * time.Second, 32 * time.Second, 60 * time.Second,
	}
	for i, w := range want {
		if got := p.backoff(i); got != w {
			t.Errorf("backoff(%d) = %v, want %v", i, got, w)
		}
	}
}

func TestPolicy_JitterBounds(t *testing.T) {
	cfg := DefaultConfig()
	p, err := NewPolicy(cfg, nil)
	if err != nil {
		t.Fatal(err)
	}

	lo := time.Duration(float64(cfg.InitialDelay) * 0.75)
	hi := time.Duration(float64(cfg.InitialDelay) * 1.25)
	for i := 0; i < 100; i++ {
		d := p.backoff(0)
		if d < lo || d > hi {
			t.Fatalf("backoff(0) = %v, want within [%v, %v]", d, lo, hi)
		}
	}
}

func TestPolicy_ContextCancelledDuringWait(t *testing.T) {
	p, err := NewPolicy(DefaultConfig(), nil)
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	got := p.Do(ctx, func(ctx context.Context) error {
		return &StatusError{StatusCode: 503}
	})
	if !stderrors.Is(got, context.Canceled) {
		t.Errorf("got error %v, want context.Canceled", got)
	}
}

func TestPolicy_DoOnceNeverRetries(t *testing.T) {
	p, delays := testPolicy(t, DefaultConfig())

	calls := 0
	err := p.DoOnce(context.Background(), func(ctx context.Context) error {
		calls++
		return &StatusError{StatusCode: 503}
	})
	if err == nil {
		t.Fatal("DoOnce() should return the failure")
	}
	if calls != 1 {
		t.Errorf("got %d calls, want 1", calls)
	}
	if len(*delays) != 0 {
		t.Errorf("got %d delays, want 0", len(*delays))
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		wantOK bool
	}{
		{"defaults", func(c *Config) {}, true},
		{"negativeRetries", func(c *Config) { c.MaxRetries = -1 }, false},
		{"zeroInitialDelay", func(c *Config) { c.InitialDelay = 0 }, false},
		{"maxBelowInitial", func(c *Config) { c.MaxDelay = time.Second }, false},
		{"multiplierBelowOne", func(c *Config) { c.Multiplier = 0.5 }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err == nil) != tt.wantOK {
				t.Errorf("Validate() = %v, want ok=%v", err, tt.wantOK)
			}
			if err != nil && !errors.Is(err, errors.ErrCodeInvalidConfig) {
				t.Errorf("got code %s, want INVALID_CONFIG", errors.GetCode(err))
			}
		})
	}
}

func TestPolicy_Hooks(t *testing.T) {
	hooks := &recordingHooks{}
	p, err := NewPolicy(DefaultConfig(), hooks)
	if err != nil {
		t.Fatal(err)
	}
	p.sleep = func(ctx context.Context, d time.Duration) error { return nil }

	calls := 0
	_ = p.Do(context.Background(), func(ctx context.Context) error {
		calls++
		if calls == 1 {
			return &errors.RateLimitedError{Remaining: 0}
		}
		return nil
	})

	if hooks.retries != 1 {
		t.Errorf("got %d OnRetry events, want 1", hooks.retries)
	}
	if hooks.recovered != 1 {
		t.Errorf("got %d OnRecovered events, want 1", hooks.recovered)
	}

	// Silent path: 5xx retries produce no rate-limit notice.
	hooks.retries = 0
	calls = 0
	_ = p.Do(context.Background(), func(ctx context.Context) error {
		calls++
		if calls == 1 {
			return &StatusError{StatusCode: 500}
		}
		return nil
	})
	if hooks.retries != 0 {
		t.Errorf("5xx retry emitted %d OnRetry events, want 0", hooks.retries)
	}
}

type recordingHooks struct {
	retries   int
	recovered int
	exhausted int
}

func (h *recordingHooks) OnRetry(_ context.Context, attempt int, delay time.Duration, remaining int) {
	h.retries++
}
func (h *recordingHooks) OnRecovered(_ context.Context, attempts int)      { h.recovered++ }
func (h *recordingHooks) OnExhausted(_ context.Context, _ int, err error)  { h.exhausted++ }
