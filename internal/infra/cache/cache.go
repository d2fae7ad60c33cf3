package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// Prefix namespaces every key this package writes.
const Prefix = "gallery:"

// Cache is a JSON read-through cache for public gallery reads.
type Cache interface {
	// Get decodes the cached value into dst; hit is false on a miss.
	Get(ctx context.Context, key string, dst any) (hit bool, err error)
	Set(ctx context.Context, key string, v any) error
	// Invalidate drops every cached gallery entry.
	Invalidate(ctx context.Context) error
}

type RedisOptions struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

type Redis struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedis connects and pings.
func NewRedis(ctx context.Context, opts RedisOptions) (*Redis, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	if _, err := rdb.Ping(ctx).Result(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping %s: %w", opts.Addr, err)
	}
	return &Redis{rdb: rdb, ttl: opts.TTL}, nil
}

func (r *Redis) Get(ctx context.Context, key string, dst any) (bool, error) {
	raw, err := r.rdb.Get(ctx, Prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return false, fmt.Errorf("decode cached %s: %w", key, err)
	}
	return true, nil
}

func (r *Redis) Set(ctx context.Context, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return r.rdb.Set(ctx, Prefix+key, raw, r.ttl).Err()
}

func (r *Redis) Invalidate(ctx context.Context) error {
	iter := r.rdb.Scan(ctx, 0, Prefix+"*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return r.rdb.Del(ctx, keys...).Err()
}

func (r *Redis) Close() error { return r.rdb.Close() }

// Nop is used when redis is not configured; every read misses.
type Nop struct{}

func (Nop) Get(context.Context, string, any) (bool, error) { return false, nil }
func (Nop) Set(context.Context, string, any) error         { return nil }
func (Nop) Invalidate(context.Context) error               { return nil }

// Key joins parts into a cache key.
func Key(parts ...string) string {
	return strings.Join(parts, ":")
}
