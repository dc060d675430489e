package listing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/kunal1274/fms-dev-sub000/internal/gateway"
	"github.com/kunal1274/fms-dev-sub000/internal/platform/httpx"
	"github.com/kunal1274/fms-dev-sub000/internal/records"
)

const (
	cacheVersionPrefix = "records:version"
	bumpChannel        = "records.bump"
)

// Cache stores backend payloads in Redis under per-kind versioned keys.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCache instantiates the cache helper. A nil client disables caching.
func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{client: client, ttl: ttl}
}

// Version returns the current cache version of kind, initialising when missing.
func (c *Cache) Version(ctx context.Context, kind records.Kind) (int64, error) {
	if c == nil || c.client == nil {
		return 0, nil
	}
	key := versionKey(kind)
	ver, err := c.client.Get(ctx, key).Int64()
	if errors.Is(err, redis.Nil) {
		if err := c.client.SetNX(ctx, key, 1, 0).Err(); err != nil {
			return 0, err
		}
		return c.client.Get(ctx, key).Int64()
	}
	if err != nil {
		return 0, err
	}
	if ver <= 0 {
		ver = 1
		if err := c.client.Set(ctx, key, ver, 0).Err(); err != nil {
			return 0, err
		}
	}
	return ver, nil
}

// BuildKey composes a cache key for kind with its current version.
func (c *Cache) BuildKey(ctx context.Context, kind records.Kind, parts ...string) (string, error) {
	joined := strings.Join(append([]string{"records", string(kind)}, parts...), ":")
	if c == nil || c.client == nil {
		return joined, nil
	}
	ver, err := c.Version(ctx, kind)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s:%d", joined, ver), nil
}

// FetchJSON decodes the payload cached under key into dest. On a miss the loader
// result is stored for the cache TTL. Redis failures degrade to a direct load; only
// loader errors are returned.
func (c *Cache) FetchJSON(ctx context.Context, key string, dest any, loader func(context.Context) (any, error)) error {
	if loader == nil {
		return errors.New("cache: loader required")
	}
	if c != nil && c.client != nil {
		payload, err := c.client.Get(ctx, key).Bytes()
		switch {
		case err == nil:
			if httpx.UnmarshalJSON(payload, dest) == nil {
				return nil
			}
		case !errors.Is(err, redis.Nil):
			return roundTrip(ctx, loader, dest, nil)
		}
	}
	return roundTrip(ctx, loader, dest, func(raw []byte) {
		if c == nil || c.client == nil {
			return
		}
		_ = c.client.Set(ctx, key, raw, c.ttl).Err()
	})
}

// roundTrip runs loader and decodes its JSON form into dest so cached and uncached
// reads produce identical values.
func roundTrip(ctx context.Context, loader func(context.Context) (any, error), dest any, store func([]byte)) error {
	value, err := loader(ctx)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	if store != nil {
		store(raw)
	}
	return httpx.UnmarshalJSON(raw, dest)
}

// Bump invalidates every cached payload of kind and publishes the new version.
func (c *Cache) Bump(ctx context.Context, kind records.Kind) error {
	if c == nil || c.client == nil {
		return nil
	}
	ver, err := c.client.Incr(ctx, versionKey(kind)).Result()
	if err != nil {
		return err
	}
	return c.client.Publish(ctx, bumpChannel, string(kind)+":"+strconv.FormatInt(ver, 10)).Err()
}

func versionKey(kind records.Kind) string {
	return cacheVersionPrefix + ":" + string(kind)
}

func keyList(rng *gateway.DateRange) string {
	return "list:" + rangeToken(rng)
}

func keyMetrics(rng *gateway.DateRange) string {
	return "metrics:" + rangeToken(rng)
}

func rangeToken(rng *gateway.DateRange) string {
	values := rng.Values()
	from, to := values.Get("from"), values.Get("to")
	if from == "" && to == "" {
		return "all"
	}
	return from + "_" + to
}
