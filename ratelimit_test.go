package localeflow

import (
	"context"
	"testing"
	"time"
)

func TestRateLimiter_AllowsBurst(t *testing.T) {
	limiter := NewRateLimiter(RateLimitConfig{RequestsPerMinute: 60, BurstSize: 3})

	for i := 0; i < 3; i++ {
		if !limiter.TryAcquire() {
			t.Fatalf("acquire %d should succeed within the burst", i)
		}
	}
	if limiter.TryAcquire() {
		t.Error("acquire past the burst should fail")
	}
}

func TestRateLimiter_Refills(t *testing.T) {
	// 6000 rpm = 100 tokens/sec, so a short sleep refills.
	limiter := NewRateLimiter(RateLimitConfig{RequestsPerMinute: 6000, BurstSize: 1})

	if !limiter.TryAcquire() {
		t.Fatal("first acquire should succeed")
	}
	time.Sleep(50 * time.Millisecond)
	if !limiter.TryAcquire() {
		t.Error("acquire after refill should succeed")
	}
}

func TestRateLimiter_WaitCancelled(t *testing.T) {
	limiter := NewRateLimiter(RateLimitConfig{RequestsPerMinute: 1, BurstSize: 1})
	limiter.TryAcquire() // drain

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if err := limiter.Wait(ctx); err == nil {
		t.Error("expected Wait to fail on context timeout")
	}
}

func TestRateLimitedProvider_SharedBudget(t *testing.T) {
	p := newTestProvider()
	limited := NewRateLimitedProvider(p, RateLimitConfig{RequestsPerMinute: 60, BurstSize: 2})

	ctx := context.Background()
	if _, err := limited.Translate(ctx, TranslateRequest{Texts: []string{"Hello"}, TargetLocale: "sv"}); err != nil {
		t.Fatalf("Translate failed: %v", err)
	}
	if _, err := limited.Review(ctx, ReviewRequest{TargetLocale: "sv"}); err != nil {
		t.Fatalf("Review failed: %v", err)
	}

	// Both calls drew from the same bucket.
	if available := limited.Limiter().Available(); available >= 1 {
		t.Errorf("expected bucket drained below 1, got %.2f", available)
	}
}

func TestRateLimitedProvider_CancelledContext(t *testing.T) {
	p := newTestProvider()
	limited := NewRateLimitedProvider(p, RateLimitConfig{RequestsPerMinute: 1, BurstSize: 1})
	limited.Limiter().TryAcquire() // drain

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := limited.Translate(ctx, TranslateRequest{Texts: []string{"x"}}); err == nil {
		t.Error("expected error when the context is cancelled")
	}
	if p.callCount != 0 {
		t.Error("provider should not be reached when the limiter blocks")
	}
}
