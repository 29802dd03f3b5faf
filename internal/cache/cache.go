// Package cache is a key-prefixed Redis cache.
//
// Every key is stored under Prefix. Every mutating call refreshes the
// key's TTL in the same MULTI/EXEC transaction, so a key lives TTL past
// its last write. Reads never extend a TTL.
package cache

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// Defaults.
const (
	DefaultPrefix = "RAWE_"
	DefaultTTL    = 72 * time.Hour
)

// ErrMiss is returned when a key (or hash field) does not exist.
var ErrMiss = errors.New("cache: miss")

// Options configures New.
type Options struct {
	Addr     string
	Password string
	DB       int
	Prefix   string        // empty means DefaultPrefix
	TTL      time.Duration // zero means DefaultTTL

	DialTimeout time.Duration
	MaxRetries  int
}

// Cache wraps a Redis client.
type Cache struct {
	rdb    redis.UniversalClient
	prefix string
	ttl    time.Duration
}

// New connects lazily to the Redis server at opts.Addr.
func New(opts Options) *Cache {
	rdb := redis.NewClient(&redis.Options{
		Addr:        opts.Addr,
		Password:    opts.Password,
		DB:          opts.DB,
		DialTimeout: opts.DialTimeout,
		MaxRetries:  opts.MaxRetries,
	})
	return NewWithClient(rdb, opts.Prefix, opts.TTL)
}

// NewWithClient wraps an existing client.
func NewWithClient(rdb redis.UniversalClient, prefix string, ttl time.Duration) *Cache {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{rdb: rdb, prefix: strings.TrimSpace(prefix), ttl: ttl}
}

// Key returns the stored key of name.
func (c *Cache) Key(name string) string {
	return c.prefix + strings.TrimSpace(name)
}

// TTL returns the expiry applied on every write.
func (c *Cache) TTL() time.Duration { return c.ttl }

// Ping checks connectivity.
func (c *Cache) Ping(ctx context.Context) error {
	if err := c.rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("cache ping: %w", err)
	}
	return nil
}

// Close closes the client.
func (c *Cache) Close() error {
	return c.rdb.Close()
}

// Get returns the string value of name.
func (c *Cache) Get(ctx context.Context, name string) (string, error) {
	v, err := c.rdb.Get(ctx, c.Key(name)).Result()
	return v, c.readErr("get", name, err)
}

// Set stores value under name.
func (c *Cache) Set(ctx context.Context, name string, value any) error {
	if err := c.rdb.Set(ctx, c.Key(name), value, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache set %s: %w", name, err)
	}
	return nil
}

// Del removes names and returns how many existed.
func (c *Cache) Del(ctx context.Context, names ...string) (int64, error) {
	keys := make([]string, len(names))
	for i, name := range names {
		keys[i] = c.Key(name)
	}
	n, err := c.rdb.Del(ctx, keys...).Result()
	if err != nil {
		return 0, fmt.Errorf("cache del: %w", err)
	}
	return n, nil
}

// HSet sets hash fields, given as field, value pairs or a map.
func (c *Cache) HSet(ctx context.Context, name string, values ...any) error {
	return c.write(ctx, "hset", name, func(p redis.Pipeliner, key string) {
		p.HSet(ctx, key, values...)
	})
}

// HGet returns one hash field.
func (c *Cache) HGet(ctx context.Context, name, field string) (string, error) {
	v, err := c.rdb.HGet(ctx, c.Key(name), field).Result()
	return v, c.readErr("hget", name, err)
}

// HGetAll returns every field of a hash. A missing hash is a miss.
func (c *Cache) HGetAll(ctx context.Context, name string) (map[string]string, error) {
	m, err := c.rdb.HGetAll(ctx, c.Key(name)).Result()
	if err != nil {
		return nil, c.readErr("hgetall", name, err)
	}
	if len(m) == 0 {
		return nil, ErrMiss
	}
	return m, nil
}

// LPush prepends values to a list.
func (c *Cache) LPush(ctx context.Context, name string, values ...any) error {
	return c.write(ctx, "lpush", name, func(p redis.Pipeliner, key string) {
		p.LPush(ctx, key, values...)
	})
}

// LRange returns list elements start..stop, inclusive.
func (c *Cache) LRange(ctx context.Context, name string, start, stop int64) ([]string, error) {
	v, err := c.rdb.LRange(ctx, c.Key(name), start, stop).Result()
	return v, c.readErr("lrange", name, err)
}

// SAdd adds members to a set.
func (c *Cache) SAdd(ctx context.Context, name string, members ...any) error {
	return c.write(ctx, "sadd", name, func(p redis.Pipeliner, key string) {
		p.SAdd(ctx, key, members...)
	})
}

// SMembers returns every member of a set.
func (c *Cache) SMembers(ctx context.Context, name string) ([]string, error) {
	v, err := c.rdb.SMembers(ctx, c.Key(name)).Result()
	return v, c.readErr("smembers", name, err)
}

// ZAdd adds scored members to a sorted set.
func (c *Cache) ZAdd(ctx context.Context, name string, members ...redis.Z) error {
	return c.write(ctx, "zadd", name, func(p redis.Pipeliner, key string) {
		p.ZAdd(ctx, key, members...)
	})
}

// ZRange returns sorted set members by rank, start..stop inclusive.
func (c *Cache) ZRange(ctx context.Context, name string, start, stop int64) ([]string, error) {
	v, err := c.rdb.ZRange(ctx, c.Key(name), start, stop).Result()
	return v, c.readErr("zrange", name, err)
}

// write runs fn and a TTL refresh in one transaction.
func (c *Cache) write(ctx context.Context, op, name string, fn func(p redis.Pipeliner, key string)) error {
	key := c.Key(name)
	_, err := c.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		fn(p, key)
		p.Expire(ctx, key, c.ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("cache %s %s: %w", op, name, err)
	}
	return nil
}

func (c *Cache) readErr(op, name string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, redis.Nil):
		return ErrMiss
	default:
		return fmt.Errorf("cache %s %s: %w", op, name, err)
	}
}
