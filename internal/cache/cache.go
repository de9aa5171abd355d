package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/stormarchive/timeline-service/internal/dates"
	"github.com/stormarchive/timeline-service/internal/storage"
	"github.com/stormarchive/timeline-service/internal/types"
)

// TimelineCache caches the public timeline feed in Redis. The site is
// read-heavy and the event set changes only through the admin panel, so
// a single cached document with invalidate-on-write keeps reads cheap.
type TimelineCache struct {
	storage storage.Storage
	redis   *redis.Client
}

func NewTimelineCache(storage storage.Storage, redisClient *redis.Client) *TimelineCache {
	return &TimelineCache{
		storage: storage,
		redis:   redisClient,
	}
}

const (
	timelineKey = "timeline:events"

	timelineCacheDuration = 10 * time.Minute
)

// Timeline returns all events with their long display dates filled in,
// from cache when possible.
func (c *TimelineCache) Timeline(ctx context.Context) ([]types.Event, error) {
	cached, err := c.redis.Get(ctx, timelineKey).Result()
	if err == nil {
		var events []types.Event
		if err := json.Unmarshal([]byte(cached), &events); err == nil {
			return events, nil
		}
	}

	events, err := c.storage.ListEvents()
	if err != nil {
		return nil, err
	}

	for i := range events {
		events[i].DisplayDate = dates.LongForm(events[i].EventDate)
	}

	data, _ := json.Marshal(events)
	c.redis.Set(ctx, timelineKey, data, timelineCacheDuration)

	return events, nil
}

// Invalidate clears the cached timeline. Called after every event or
// media mutation.
func (c *TimelineCache) Invalidate(ctx context.Context) {
	c.redis.Del(ctx, timelineKey)
}
