// internal/service/screen/cache.go
package screen

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"adscreen-service/internal/domain/screen"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

const (
	locationCachePrefix = "screen_locations:"
	locationCacheTTL    = 5 * time.Minute
)

// LocationCache holds public list results keyed by their filters.
type LocationCache interface {
	Get(ctx context.Context, key string) ([]screen.Location, bool, error)
	Set(ctx context.Context, key string, locations []screen.Location) error
	Invalidate(ctx context.Context) error
}

type RedisLocationCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisLocationCache(client *redis.Client) *RedisLocationCache {
	return &RedisLocationCache{client: client, ttl: locationCacheTTL}
}

func (c *RedisLocationCache) Get(ctx context.Context, key string) ([]screen.Location, bool, error) {
	data, err := c.client.Get(ctx, locationCachePrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read location cache: %w", err)
	}

	var locations []screen.Location
	if err := json.Unmarshal(data, &locations); err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal location cache: %w", err)
	}
	return locations, true, nil
}

func (c *RedisLocationCache) Set(ctx context.Context, key string, locations []screen.Location) error {
	data, err := json.Marshal(locations)
	if err != nil {
		return fmt.Errorf("failed to marshal location cache: %w", err)
	}
	return c.client.Set(ctx, locationCachePrefix+key, data, c.ttl).Err()
}

// Invalidate drops every cached list.
func (c *RedisLocationCache) Invalidate(ctx context.Context) error {
	iter := c.client.Scan(ctx, 0, locationCachePrefix+"*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("failed to scan location cache: %w", err)
	}
	if len(keys) == 0 {
		return nil
	}
	return c.client.Del(ctx, keys...).Err()
}

// cacheKey is stable for equal filters. Geo filters are applied after the
// cached query and are not part of the key.
func cacheKey(f *screen.LocationFilters) string {
	return fmt.Sprintf("city=%s|min=%s|max=%s|rating=%s|type=%s|all=%t",
		strings.ToLower(f.City),
		decimalKey(f.MinPrice),
		decimalKey(f.MaxPrice),
		decimalKey(f.MinRating),
		f.ScreenType,
		f.IncludeInactive,
	)
}

func decimalKey(d *decimal.Decimal) string {
	if d == nil {
		return ""
	}
	return d.String()
}
