package ratelimit

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
)

// setupTestRedis creates an in-memory Redis server for testing
func setupTestRedis(t *testing.T) (*redis.Client, func()) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
		DB:   0,
	})

	_, err = redisClient.Ping(context.Background()).Result()
	if err != nil {
		t.Fatalf("Failed to connect to test Redis: %v", err)
	}

	cleanup := func() {
		redisClient.Close()
		mr.Close()
	}

	return redisClient, cleanup
}

func TestTokenBucket_Allow(t *testing.T) {
	redisClient, cleanup := setupTestRedis(t)
	defer cleanup()

	// 5 login attempts allowed per window
	bucket := NewTokenBucket(redisClient, 5, 5)

	ctx := context.Background()
	subject := "203.0.113.9"
	action := "login"

	for i := 0; i < 5; i++ {
		allowed, err := bucket.Allow(ctx, subject, action)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if !allowed {
			t.Fatalf("Expected attempt %d to be allowed", i+1)
		}
	}

	allowed, err := bucket.Allow(ctx, subject, action)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if allowed {
		t.Fatal("Expected attempt to be denied after limit reached")
	}

	remaining, err := bucket.GetRemaining(ctx, subject, action)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if remaining != 0 {
		t.Fatalf("Expected 0 remaining tokens, got %d", remaining)
	}
}

func TestTokenBucket_SubjectsIndependent(t *testing.T) {
	redisClient, cleanup := setupTestRedis(t)
	defer cleanup()

	bucket := NewTokenBucket(redisClient, 1, 1)

	ctx := context.Background()

	allowed, err := bucket.Allow(ctx, "198.51.100.1", "login")
	if err != nil || !allowed {
		t.Fatalf("Expected first subject to be allowed, got allowed=%v err=%v", allowed, err)
	}

	allowed, err = bucket.Allow(ctx, "198.51.100.2", "login")
	if err != nil || !allowed {
		t.Fatalf("Expected second subject to be allowed, got allowed=%v err=%v", allowed, err)
	}

	allowed, err = bucket.Allow(ctx, "198.51.100.1", "login")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if allowed {
		t.Fatal("Expected exhausted subject to be denied")
	}
}

func TestTokenBucket_GetRemaining(t *testing.T) {
	redisClient, cleanup := setupTestRedis(t)
	defer cleanup()

	bucket := NewTokenBucket(redisClient, 10, 10)

	ctx := context.Background()
	subject := "203.0.113.10"
	action := "login"

	remaining, err := bucket.GetRemaining(ctx, subject, action)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if remaining != 10 {
		t.Fatalf("Expected 10 remaining tokens, got %d", remaining)
	}

	for i := 0; i < 3; i++ {
		bucket.Allow(ctx, subject, action)
	}

	remaining, err = bucket.GetRemaining(ctx, subject, action)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if remaining != 7 {
		t.Fatalf("Expected 7 remaining tokens, got %d", remaining)
	}
}

func TestTokenBucket_Reset(t *testing.T) {
	redisClient, cleanup := setupTestRedis(t)
	defer cleanup()

	bucket := NewTokenBucket(redisClient, 5, 5)

	ctx := context.Background()
	subject := "203.0.113.11"
	action := "login"

	for i := 0; i < 5; i++ {
		bucket.Allow(ctx, subject, action)
	}

	err := bucket.Reset(ctx, subject, action)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	remaining, err := bucket.GetRemaining(ctx, subject, action)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if remaining != 5 {
		t.Fatalf("Expected 5 remaining tokens after reset, got %d", remaining)
	}
}
