package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var _ Cache = (*RedisCache)(nil)

// RedisCache is a Redis-backed Cache. Values are JSON snapshots written with
// SET ... EX, so expiry is enforced by Redis itself.
type RedisCache struct {
	redis  redis.UniversalClient
	prefix string
}

// NewRedisCache creates a cache on the given client. An empty prefix stores
// entries under the bare user id.
func NewRedisCache(client redis.UniversalClient, prefix string) *RedisCache {
	return &RedisCache{
		redis:  client,
		prefix: prefix,
	}
}

// NewRedisClient parses a redis:// URL and verifies the connection
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}

	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second

	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return client, nil
}

func (c *RedisCache) key(userID string) string {
	return c.prefix + userID
}

// Put stores the snapshot, replacing any previous session of the user
func (c *RedisCache) Put(ctx context.Context, userID string, snap *Snapshot, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	data, err := Encode(snap)
	if err != nil {
		return err
	}

	if err := c.redis.Set(ctx, c.key(userID), data, ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrCacheUnavailable, err)
	}

	return nil
}

// Get returns the live session of the user
func (c *RedisCache) Get(ctx context.Context, userID string) (*Snapshot, error) {
	data, err := c.redis.Get(ctx, c.key(userID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrCacheUnavailable, err)
	}

	return Decode(data)
}

// Delete removes the session of the user. Deleting an absent key is not an error.
func (c *RedisCache) Delete(ctx context.Context, userID string) error {
	if err := c.redis.Del(ctx, c.key(userID)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrCacheUnavailable, err)
	}
	return nil
}

// Ping checks the Redis connection
func (c *RedisCache) Ping(ctx context.Context) error {
	if err := c.redis.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrCacheUnavailable, err)
	}
	return nil
}
