package http

import (
	"testing"
	"time"
)

func TestRateLimiterAllowsWithinBurst(t *testing.T) {
	t.Parallel()

	rl := NewRateLimiter(1, 2, time.Minute)
	if rl == nil {
		t.Fatalf("expected limiter, got nil")
	}

	now := time.Now()
	rl.now = func() time.Time { return now }

	if !rl.Allow("10.0.0.1") {
		t.Fatalf("expected first request to pass")
	}
	if !rl.Allow("10.0.0.1") {
		t.Fatalf("expected second request within burst to pass")
	}
	if rl.Allow("10.0.0.1") {
		t.Fatalf("expected third request to be limited")
	}
}

func TestRateLimiterTracksKeysSeparately(t *testing.T) {
	t.Parallel()

	rl := NewRateLimiter(1, 1, time.Minute)

	now := time.Now()
	rl.now = func() time.Time { return now }

	if !rl.Allow("10.0.0.1") {
		t.Fatalf("expected first key to pass")
	}
	if !rl.Allow("10.0.0.2") {
		t.Fatalf("expected second key to pass independently")
	}
	if rl.Allow("10.0.0.1") {
		t.Fatalf("expected first key to be limited")
	}
}

func TestRateLimiterRefillsOverTime(t *testing.T) {
	t.Parallel()

	rl := NewRateLimiter(1, 1, time.Minute)

	now := time.Now()
	rl.now = func() time.Time { return now }

	if !rl.Allow("client") {
		t.Fatalf("expected first request to pass")
	}
	if rl.Allow("client") {
		t.Fatalf("expected immediate second request to be limited")
	}

	now = now.Add(2 * time.Second)
	if !rl.Allow("client") {
		t.Fatalf("expected request after refill window to pass")
	}
}

func TestRateLimiterInvalidSettings(t *testing.T) {
	t.Parallel()

	if rl := NewRateLimiter(0, 5, time.Minute); rl != nil {
		t.Fatalf("expected nil limiter for zero rps")
	}
	if rl := NewRateLimiter(5, 0, time.Minute); rl != nil {
		t.Fatalf("expected nil limiter for zero burst")
	}

	var rl *RateLimiter
	if !rl.Allow("anyone") {
		t.Fatalf("expected nil limiter to allow everything")
	}
}
