package cache

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stormarchive/timeline-service/internal/storage"
	"github.com/stormarchive/timeline-service/internal/types"
)

// stubStorage overrides only ListEvents; the embedded interface panics
// if the cache reaches for anything else.
type stubStorage struct {
	storage.Storage
	events []types.Event
	calls  int
}

func (s *stubStorage) ListEvents() ([]types.Event, error) {
	s.calls++
	return s.events, nil
}

func setupCache(t *testing.T) (*TimelineCache, *stubStorage, *redis.Client) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	store := &stubStorage{events: []types.Event{
		{ID: "1", EventDate: "1859-09-01", Title: "The Carrington Event"},
	}}
	return NewTimelineCache(store, client), store, client
}

func TestTimelineCachesAfterFirstLoad(t *testing.T) {
	cache, store, _ := setupCache(t)
	ctx := context.Background()

	events, err := cache.Timeline(ctx)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(events) != 1 || events[0].DisplayDate != "September 1, 1859" {
		t.Fatalf("Expected long display date filled in, got %+v", events)
	}

	if _, err := cache.Timeline(ctx); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if store.calls != 1 {
		t.Fatalf("Expected second read served from cache, storage hit %d times", store.calls)
	}
}

func TestInvalidateForcesReload(t *testing.T) {
	cache, store, _ := setupCache(t)
	ctx := context.Background()

	cache.Timeline(ctx)
	cache.Invalidate(ctx)

	store.events = append(store.events, types.Event{
		ID: "2", EventDate: "1921-05-13", Title: "The New York Railroad Storm",
	})

	events, err := cache.Timeline(ctx)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if store.calls != 2 {
		t.Fatalf("Expected storage reloaded after invalidate, hit %d times", store.calls)
	}
	if len(events) != 2 {
		t.Fatalf("Expected fresh data after invalidate, got %d events", len(events))
	}
}
