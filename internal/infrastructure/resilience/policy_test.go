package resilience

import (
	"testing"
	"time"
)

func TestNormalizeFillsUnsetFields(t *testing.T) {
	got := Config{}.normalize()
	want := DefaultConfig()
	want.BreakerEnabled = false

	if got != want {
		t.Fatalf("normalize() = %+v, want %+v", got, want)
	}
}

func TestNormalizeKeepsMaxBackoffAboveInitial(t *testing.T) {
	got := Config{
		RetryInitialBackoff: time.Second,
		RetryMaxBackoff:     10 * time.Millisecond,
	}.normalize()

	if got.RetryMaxBackoff != time.Second {
		t.Fatalf("expected max backoff raised to 1s, got %s", got.RetryMaxBackoff)
	}
}

func TestNormalizeRejectsOutOfRangeRatio(t *testing.T) {
	got := Config{BreakerFailureRatio: 1.5, RetryMultiplier: 0.5}.normalize()

	if got.BreakerFailureRatio != DefaultConfig().BreakerFailureRatio {
		t.Fatalf("expected default failure ratio, got %v", got.BreakerFailureRatio)
	}
	if got.RetryMultiplier != DefaultConfig().RetryMultiplier {
		t.Fatalf("expected default multiplier, got %v", got.RetryMultiplier)
	}
}

func TestSingleAttemptKeepsBreaker(t *testing.T) {
	cfg := DefaultConfig().SingleAttempt()
	if cfg.RetryMaxAttempts != 1 {
		t.Fatalf("expected one attempt, got %d", cfg.RetryMaxAttempts)
	}
	if !cfg.BreakerEnabled || cfg.BreakerMinRequests != DefaultConfig().BreakerMinRequests {
		t.Fatalf("expected breaker settings to be kept, got %+v", cfg)
	}
}
