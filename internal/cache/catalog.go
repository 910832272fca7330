// Package cache provides a Redis read cache for the catalog hot lists
// (top-rated and banner). Entries are written on read misses and dropped
// whenever the catalog or its ratings change.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Shorabul/Homigo-Server/internal/domain"
)

const (
	topRatedKey = "catalog:top-rated"
	bannerKey   = "catalog:banner"
)

// CatalogCache caches catalog hot lists in Redis.
type CatalogCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCatalogCache creates a new Redis-backed catalog cache.
func NewCatalogCache(client *redis.Client, ttl time.Duration) *CatalogCache {
	return &CatalogCache{
		client: client,
		ttl:    ttl,
	}
}

// GetTopRated retrieves the cached top-rated list. A cache miss returns
// (nil, nil).
func (c *CatalogCache) GetTopRated(ctx context.Context) ([]domain.Service, error) {
	data, err := c.client.Get(ctx, topRatedKey).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("redis get top-rated: %w", err)
	}

	var services []domain.Service
	if err := json.Unmarshal(data, &services); err != nil {
		return nil, fmt.Errorf("unmarshal top-rated: %w", err)
	}

	return services, nil
}

// SetTopRated stores the top-rated list with the configured TTL.
func (c *CatalogCache) SetTopRated(ctx context.Context, services []domain.Service) error {
	data, err := json.Marshal(services)
	if err != nil {
		return fmt.Errorf("marshal top-rated: %w", err)
	}

	if err := c.client.Set(ctx, topRatedKey, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set top-rated: %w", err)
	}

	return nil
}

// GetBanner retrieves the cached banner list. A cache miss returns (nil, nil).
func (c *CatalogCache) GetBanner(ctx context.Context) ([]domain.BannerItem, error) {
	data, err := c.client.Get(ctx, bannerKey).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("redis get banner: %w", err)
	}

	var items []domain.BannerItem
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("unmarshal banner: %w", err)
	}

	return items, nil
}

// SetBanner stores the banner list with the configured TTL.
func (c *CatalogCache) SetBanner(ctx context.Context, items []domain.BannerItem) error {
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("marshal banner: %w", err)
	}

	if err := c.client.Set(ctx, bannerKey, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set banner: %w", err)
	}

	return nil
}

// Invalidate drops all cached catalog lists.
func (c *CatalogCache) Invalidate(ctx context.Context) error {
	if err := c.client.Del(ctx, topRatedKey, bannerKey).Err(); err != nil {
		return fmt.Errorf("redis del catalog keys: %w", err)
	}

	return nil
}
