package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/burnsbros/taskdeck/internal/domain"
	"github.com/google/uuid"
)

const (
	limitsCachePrefix = "wslimits:"
	limitsCacheTTL    = 1 * time.Minute
)

// LimitsCache caches per-user workspace limit summaries so the limits
// endpoint does not hit Postgres on every navigation.
type LimitsCache struct {
	client *Client
}

// NewLimitsCache creates a new workspace limits cache
func NewLimitsCache(client *Client) *LimitsCache {
	return &LimitsCache{client: client}
}

// Get retrieves cached limits for a user
func (c *LimitsCache) Get(ctx context.Context, userID uuid.UUID) (*domain.WorkspaceLimits, error) {
	key := fmt.Sprintf("%s%s", limitsCachePrefix, userID.String())

	data, err := c.client.rdb.Get(ctx, key).Bytes()
	if err != nil {
		return nil, nil // Cache miss
	}

	var limits domain.WorkspaceLimits
	if err := json.Unmarshal(data, &limits); err != nil {
		return nil, fmt.Errorf("failed to unmarshal limits: %w", err)
	}

	return &limits, nil
}

// Set caches limits for a user
func (c *LimitsCache) Set(ctx context.Context, userID uuid.UUID, limits *domain.WorkspaceLimits) error {
	key := fmt.Sprintf("%s%s", limitsCachePrefix, userID.String())

	data, err := json.Marshal(limits)
	if err != nil {
		return fmt.Errorf("failed to marshal limits: %w", err)
	}

	return c.client.rdb.Set(ctx, key, data, limitsCacheTTL).Err()
}

// Invalidate removes cached limits for a user
func (c *LimitsCache) Invalidate(ctx context.Context, userID uuid.UUID) error {
	key := fmt.Sprintf("%s%s", limitsCachePrefix, userID.String())
	return c.client.rdb.Del(ctx, key).Err()
}

// FlushAll removes all cached limit entries
func (c *LimitsCache) FlushAll(ctx context.Context) (int64, error) {
	pattern := limitsCachePrefix + "*"
	var cursor uint64
	var deleted int64

	for {
		keys, nextCursor, err := c.client.rdb.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			return deleted, fmt.Errorf("failed to scan keys: %w", err)
		}

		if len(keys) > 0 {
			count, err := c.client.rdb.Del(ctx, keys...).Result()
			if err != nil {
				return deleted, fmt.Errorf("failed to delete keys: %w", err)
			}
			deleted += count
		}

		cursor = nextCursor
		if cursor == 0 {
			break
		}
	}

	return deleted, nil
}
