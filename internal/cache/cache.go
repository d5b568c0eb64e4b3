// Package cache provides a Redis-backed JSON cache for read-mostly views.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// Config holds Redis connection settings
type Config struct {
	Addr     string
	Password string
	DB       int
}

// NewClient connects to Redis and verifies the connection with a ping
func NewClient(ctx context.Context, cfg Config) (*goredis.Client, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return rdb, nil
}

// ViewCache is a generic JSON cache bound to a view type T. A ttl of 0
// stores views without expiry.
//
// Every key has a version counter next to it. Invalidate bumps the counter,
// and SetIfVersion only writes when the counter still holds the value read
// before the view was loaded, so a slow reader cannot put back a view that
// an invalidation already retired. Counters never expire.
type ViewCache[T any] struct {
	client goredis.UniversalClient
	prefix string
	ttl    time.Duration
}

// NewViewCache creates a ViewCache whose keys are namespaced by prefix
func NewViewCache[T any](client goredis.UniversalClient, prefix string, ttl time.Duration) *ViewCache[T] {
	return &ViewCache[T]{client: client, prefix: prefix, ttl: ttl}
}

func (c *ViewCache[T]) viewKey(key string) string    { return c.prefix + key }
func (c *ViewCache[T]) versionKey(key string) string { return c.prefix + "v:" + key }

// Get retrieves and unmarshals a value. Returns (nil, false) on any miss,
// transport error or decode error.
func (c *ViewCache[T]) Get(ctx context.Context, key string) (*T, bool) {
	data, err := c.client.Get(ctx, c.viewKey(key)).Bytes()
	if err != nil {
		if err != goredis.Nil {
			slog.Warn("cache read failed", slog.String("key", c.viewKey(key)), slog.String("error", err.Error()))
		}
		return nil, false
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		slog.Warn("cache decode failed", slog.String("key", c.viewKey(key)), slog.String("error", err.Error()))
		return nil, false
	}
	return &v, true
}

// Version returns the current version of key. ok is false when the counter
// cannot be read, in which case the caller must not cache.
func (c *ViewCache[T]) Version(ctx context.Context, key string) (version int64, ok bool) {
	version, err := readVersion(ctx, c.client, c.versionKey(key))
	if err != nil {
		slog.Warn("cache version read failed", slog.String("key", c.versionKey(key)), slog.String("error", err.Error()))
		return 0, false
	}
	return version, true
}

// SetIfVersion stores value under key unless key was invalidated after
// version was read. It reports whether the value was written.
func (c *ViewCache[T]) SetIfVersion(ctx context.Context, key string, value *T, version int64) bool {
	data, err := json.Marshal(value)
	if err != nil {
		slog.Warn("cache encode failed", slog.String("key", c.viewKey(key)), slog.String("error", err.Error()))
		return false
	}

	written := false
	err = c.client.Watch(ctx, func(tx *goredis.Tx) error {
		current, err := readVersion(ctx, tx, c.versionKey(key))
		if err != nil {
			return err
		}
		if current != version {
			return nil
		}
		_, err = tx.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
			pipe.Set(ctx, c.viewKey(key), data, c.ttl)
			return nil
		})
		if err == nil {
			written = true
		}
		return err
	}, c.versionKey(key))

	switch {
	case err == goredis.TxFailedErr:
		return false
	case err != nil:
		slog.Warn("cache write failed", slog.String("key", c.viewKey(key)), slog.String("error", err.Error()))
		return false
	}
	return written
}

// Invalidate retires the cached view of key and any load still in flight
func (c *ViewCache[T]) Invalidate(ctx context.Context, key string) {
	_, err := c.client.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		pipe.Incr(ctx, c.versionKey(key))
		pipe.Del(ctx, c.viewKey(key))
		return nil
	})
	if err != nil {
		slog.Warn("cache invalidate failed", slog.String("key", c.viewKey(key)), slog.String("error", err.Error()))
	}
}

// getter is satisfied by clients and by *goredis.Tx inside Watch
type getter interface {
	Get(ctx context.Context, key string) *goredis.StringCmd
}

func readVersion(ctx context.Context, client getter, key string) (int64, error) {
	version, err := client.Get(ctx, key).Int64()
	if err == goredis.Nil {
		return 0, nil
	}
	return version, err
}
