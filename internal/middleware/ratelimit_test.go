package middleware

import (
	"testing"
	"time"
)

func TestRateLimiterAllowsUnderLimit(t *testing.T) {
	rl := NewRateLimiter(3, time.Minute)

	for i := 0; i < 3; i++ {
		if !rl.Allow("anon-1") {
			t.Fatalf("Expected request %d to be allowed", i+1)
		}
	}
	if rl.Allow("anon-1") {
		t.Error("Expected request over the limit to be rejected")
	}
}

func TestRateLimiterKeysAreIndependent(t *testing.T) {
	rl := NewRateLimiter(1, time.Minute)

	if !rl.Allow("anon-1") {
		t.Fatal("Expected first user's request to be allowed")
	}
	if !rl.Allow("anon-2") {
		t.Error("Expected second user's request to be allowed")
	}
}

func TestRateLimiterWindowSlides(t *testing.T) {
	rl := NewRateLimiter(1, 50*time.Millisecond)

	if !rl.Allow("anon-1") {
		t.Fatal("Expected first request to be allowed")
	}
	if rl.Allow("anon-1") {
		t.Fatal("Expected second request inside the window to be rejected")
	}

	time.Sleep(60 * time.Millisecond)

	if !rl.Allow("anon-1") {
		t.Error("Expected request after the window to be allowed")
	}
}
