package ratelimit

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

func TestNewLimiter(t *testing.T) {
	// nil client is fine for construction; Allow and Reset need Redis
	limiter := NewLimiter(nil, "test:")

	if limiter == nil {
		t.Fatal("NewLimiter returned nil")
	}
	if limiter.keyPrefix != "test:" {
		t.Errorf("keyPrefix = %q, want 'test:'", limiter.keyPrefix)
	}
}

func TestRateLimitResult(t *testing.T) {
	result := &RateLimitResult{
		Allowed:   false,
		Remaining: 0,
		ResetAt:   time.Now().Add(time.Minute),
		Limit:     30,
	}

	if result.Allowed {
		t.Error("expected Allowed to be false")
	}
	if result.Limit != 30 {
		t.Errorf("Limit = %d, want 30", result.Limit)
	}
}

// integrationClient connects to the Redis instance named by
// RATELIMIT_TEST_REDIS, skipping the test when none is configured.
func integrationClient(t *testing.T) *redis.Client {
	t.Helper()

	addr := os.Getenv("RATELIMIT_TEST_REDIS")
	if addr == "" {
		t.Skip("RATELIMIT_TEST_REDIS not set, skipping Redis integration test")
	}

	client := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { client.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Fatalf("failed to ping Redis at %s: %v", addr, err)
	}
	return client
}

func TestLimiter_AllowAndReset(t *testing.T) {
	client := integrationClient(t)
	limiter := NewLimiter(client, "test:")
	ctx := context.Background()

	key := fmt.Sprintf("allow-reset-%d", time.Now().UnixNano())
	if err := limiter.Reset(ctx, key); err != nil {
		t.Fatalf("Reset() error = %v", err)
	}

	for i := 0; i < 2; i++ {
		result, err := limiter.Allow(ctx, key, 2, time.Minute)
		if err != nil {
			t.Fatalf("Allow() request %d error = %v", i, err)
		}
		if !result.Allowed {
			t.Errorf("request %d should be allowed", i)
		}
	}

	result, err := limiter.Allow(ctx, key, 2, time.Minute)
	if err != nil {
		t.Fatalf("Allow() over limit error = %v", err)
	}
	if result.Allowed {
		t.Error("request over the limit should be denied")
	}

	// Reset clears both the window and the member counter, so the
	// next window starts from a clean slate.
	if err := limiter.Reset(ctx, key); err != nil {
		t.Fatalf("Reset() error = %v", err)
	}

	result, err = limiter.Allow(ctx, key, 2, time.Minute)
	if err != nil {
		t.Fatalf("Allow() after reset error = %v", err)
	}
	if !result.Allowed {
		t.Error("request after reset should be allowed")
	}
	if result.Remaining != 1 {
		t.Errorf("Remaining after reset = %d, want 1", result.Remaining)
	}
}
