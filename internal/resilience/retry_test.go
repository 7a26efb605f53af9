package resilience

import (
	"context"
	"errors"
	"testing"
	"time"
)

func fastRetry(attempts int) RetryConfig {
	return RetryConfig{
		MaxAttempts:    attempts,
		InitialBackoff: time.Millisecond,
		MaxBackoff:     5 * time.Millisecond,
		Multiplier:     2.0,
	}
}

func TestDo_SucceedsFirstTry(t *testing.T) {
	calls := 0
	err := Do(context.Background(), fastRetry(3), func(ctx context.Context) error {
		calls++
		return nil
	})
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestDo_RetriesTransientThenSucceeds(t *testing.T) {
	calls := 0
	err := Do(context.Background(), fastRetry(4), func(ctx context.Context) error {
		calls++
		if calls < 3 {
			return NewTransientError(errors.New("boom"), 503)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestDo_StopsOnPermanentError(t *testing.T) {
	permanent := errors.New("bad request")
	calls := 0
	err := Do(context.Background(), fastRetry(4), func(ctx context.Context) error {
		calls++
		return permanent
	})
	if !errors.Is(err, permanent) {
		t.Fatalf("Do = %v, want permanent error", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestDo_ExhaustsAttempts(t *testing.T) {
	calls := 0
	err := Do(context.Background(), fastRetry(3), func(ctx context.Context) error {
		calls++
		return NewTransientError(errors.New("still down"), 502)
	})
	if err == nil {
		t.Fatal("Do = nil, want error after exhausting attempts")
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestDo_ContextCancelStopsRetries(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := Do(ctx, fastRetry(5), func(ctx context.Context) error {
		calls++
		cancel()
		return NewTransientError(errors.New("boom"), 500)
	})
	if err == nil {
		t.Fatal("Do = nil, want error")
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestDoVal_PreservesValue(t *testing.T) {
	calls := 0
	got, err := DoVal(context.Background(), fastRetry(3), func(ctx context.Context) (string, error) {
		calls++
		if calls == 1 {
			return "", NewTransientError(errors.New("flake"), 429)
		}
		return "payload", nil
	})
	if err != nil {
		t.Fatalf("DoVal: %v", err)
	}
	if got != "payload" {
		t.Errorf("DoVal = %q", got)
	}
}

func TestDo_OnRetryCallback(t *testing.T) {
	var attempts []int
	cfg := fastRetry(3)
	cfg.OnRetry = func(attempt int, err error) {
		attempts = append(attempts, attempt)
	}
	_ = Do(context.Background(), cfg, func(ctx context.Context) error {
		return NewTransientError(errors.New("boom"), 500)
	})
	if len(attempts) != 2 || attempts[0] != 1 || attempts[1] != 2 {
		t.Errorf("OnRetry attempts = %v, want [1 2]", attempts)
	}
}

func TestComputeBackoff_HonorsRetryAfter(t *testing.T) {
	cfg := applyDefaults(RetryConfig{
		InitialBackoff: time.Second,
		MaxBackoff:     10 * time.Second,
	})
	err := &TransientError{Err: errors.New("rate limited"), StatusCode: 429, RetryAfter: 4 * time.Second}
	if got := computeBackoff(0, cfg, err); got != 4*time.Second {
		t.Errorf("backoff = %v, want the server's 4s", got)
	}
}

func TestComputeBackoff_RetryAfterCappedAtMax(t *testing.T) {
	cfg := applyDefaults(RetryConfig{
		InitialBackoff: time.Second,
		MaxBackoff:     10 * time.Second,
	})
	err := &TransientError{Err: errors.New("rate limited"), StatusCode: 429, RetryAfter: 5 * time.Minute}
	if got := computeBackoff(0, cfg, err); got != 10*time.Second {
		t.Errorf("backoff = %v, want capped 10s", got)
	}
}

func TestComputeBackoff_ScheduleGrowsAndCaps(t *testing.T) {
	cfg := applyDefaults(RetryConfig{
		InitialBackoff: time.Second,
		MaxBackoff:     10 * time.Second,
		Multiplier:     2.0,
		JitterFraction: -1, // normalized to 0 by applyDefaults
	})
	plain := errors.New("boom")
	if got := computeBackoff(0, cfg, plain); got != time.Second {
		t.Errorf("attempt 0 backoff = %v, want 1s", got)
	}
	if got := computeBackoff(2, cfg, plain); got != 4*time.Second {
		t.Errorf("attempt 2 backoff = %v, want 4s", got)
	}
	if got := computeBackoff(6, cfg, plain); got != 10*time.Second {
		t.Errorf("attempt 6 backoff = %v, want capped 10s", got)
	}
}

func TestFromRetryConfig(t *testing.T) {
	cfg := FromRetryConfig(6, 1500, 20000)
	if cfg.MaxAttempts != 6 {
		t.Errorf("MaxAttempts = %d", cfg.MaxAttempts)
	}
	if cfg.InitialBackoff != 1500*time.Millisecond {
		t.Errorf("InitialBackoff = %v", cfg.InitialBackoff)
	}
	if cfg.MaxBackoff != 20*time.Second {
		t.Errorf("MaxBackoff = %v", cfg.MaxBackoff)
	}

	defaults := FromRetryConfig(0, 0, 0)
	if defaults.MaxAttempts != 4 || defaults.InitialBackoff != 2*time.Second {
		t.Errorf("defaults = %+v", defaults)
	}
}
