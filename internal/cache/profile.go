package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"network/internal/model"
)

const (
	// ProfileCachePrefix is the key prefix for cached profile payloads
	ProfileCachePrefix = "profile:user:"

	// ProfileCacheTTL bounds how stale a cached profile can get even if an
	// invalidation is missed
	ProfileCacheTTL = 5 * time.Minute
)

// ProfileCache caches the viewer-independent part of a user's profile
// (display fields plus the denormalized counters). Writers that change a
// counter invalidate the affected users after commit; the per-viewer follow
// flag is never cached.
type ProfileCache interface {
	// Get returns the cached profile and whether it was found.
	Get(ctx context.Context, userID int64) (*model.Profile, bool, error)

	// Set stores the profile with the cache TTL.
	Set(ctx context.Context, userID int64, profile *model.Profile) error

	// Invalidate drops the cached profiles for the given users.
	Invalidate(ctx context.Context, userIDs ...int64) error
}

// RedisProfileCache implements ProfileCache on a shared Redis client.
type RedisProfileCache struct {
	client *redis.Client
}

func NewProfileCache(client *redis.Client) ProfileCache {
	return &RedisProfileCache{client: client}
}

func profileKey(userID int64) string {
	return fmt.Sprintf("%s%d", ProfileCachePrefix, userID)
}

func (c *RedisProfileCache) Get(ctx context.Context, userID int64) (*model.Profile, bool, error) {
	data, err := c.client.Get(ctx, profileKey(userID)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get profile: %w", err)
	}

	var profile model.Profile
	if err := json.Unmarshal(data, &profile); err != nil {
		// A corrupt entry is treated as a miss; the caller rebuilds it.
		log.Printf("[ProfileCache] Corrupt entry for user=%d: %v", userID, err)
		return nil, false, nil
	}
	return &profile, true, nil
}

func (c *RedisProfileCache) Set(ctx context.Context, userID int64, profile *model.Profile) error {
	data, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("marshal profile: %w", err)
	}
	if err := c.client.Set(ctx, profileKey(userID), data, ProfileCacheTTL).Err(); err != nil {
		return fmt.Errorf("set profile: %w", err)
	}
	return nil
}

func (c *RedisProfileCache) Invalidate(ctx context.Context, userIDs ...int64) error {
	if len(userIDs) == 0 {
		return nil
	}
	keys := make([]string, len(userIDs))
	for i, id := range userIDs {
		keys[i] = profileKey(id)
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("invalidate profiles: %w", err)
	}
	return nil
}
