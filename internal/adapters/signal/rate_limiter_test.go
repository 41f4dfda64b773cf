package signal

import (
	"testing"
	"time"
)

func TestRateLimiterWindow(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	rl := NewRateLimiter(2, time.Second)
	rl.now = func() time.Time { return now }

	if !rl.Allow("a") || !rl.Allow("a") {
		t.Fatal("first two should pass")
	}
	if rl.Allow("a") {
		t.Fatal("third within the window should be blocked")
	}
	if !rl.Allow("b") {
		t.Fatal("limits are per connection")
	}

	now = now.Add(1100 * time.Millisecond)
	if !rl.Allow("a") {
		t.Fatal("window should have slid")
	}
}

func TestRateLimiterForget(t *testing.T) {
	rl := NewRateLimiter(1, time.Minute)
	rl.Allow("a")
	rl.Allow("b")

	rl.Forget("a")

	if rl.Len() != 1 {
		t.Fatalf("expected one tracked connection, got %d", rl.Len())
	}
	if !rl.Allow("a") {
		t.Fatal("forgotten connection starts fresh")
	}
}
