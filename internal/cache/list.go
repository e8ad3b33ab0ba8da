// Package cache holds backend list responses so table pages do not hit the
// CMS on every render. Entries for a resource are dropped as soon as the
// console changes that resource.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// ListCache stores list responses per resource, bearer token and query
// string. An entry is only ever served to a caller presenting the same token
// the backend accepted when the entry was filled.
type ListCache interface {
	Get(ctx context.Context, resource, token, query string) ([]byte, bool, error)
	Set(ctx context.Context, resource, token, query string, data []byte) error
	Invalidate(ctx context.Context, resource string) error
}

// RedisCache keeps one hash per resource, one field per token and query
// string, so a single DEL invalidates every page of a resource for everyone.
type RedisCache struct {
	client *goredis.Client
	prefix string
	ttl    time.Duration
}

func NewRedisCache(client *goredis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{
		client: client,
		prefix: "console:list:",
		ttl:    ttl,
	}
}

func (r *RedisCache) key(resource string) string {
	return r.prefix + resource
}

func (r *RedisCache) Get(ctx context.Context, resource, token, query string) ([]byte, bool, error) {
	if token == "" {
		return nil, false, nil
	}

	val, err := r.client.HGet(ctx, r.key(resource), field(token, query)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("cache: get %s: %w", resource, err)
	}
	return val, true, nil
}

func (r *RedisCache) Set(ctx context.Context, resource, token, query string, data []byte) error {
	if token == "" {
		return nil
	}
	key := r.key(resource)

	pipe := r.client.TxPipeline()
	pipe.HSet(ctx, key, field(token, query), data)
	pipe.Expire(ctx, key, r.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("cache: set %s: %w", resource, err)
	}
	return nil
}

func (r *RedisCache) Invalidate(ctx context.Context, resource string) error {
	if err := r.client.Del(ctx, r.key(resource)).Err(); err != nil {
		return fmt.Errorf("cache: invalidate %s: %w", resource, err)
	}
	return nil
}

// field scopes an entry to the token that filled it. Only a digest of the
// token is stored.
func field(token, query string) string {
	sum := sha256.Sum256([]byte(token))
	if query == "" {
		query = "_"
	}
	return hex.EncodeToString(sum[:]) + "|" + query
}

// Noop is used when Redis is not configured.
type Noop struct{}

func (Noop) Get(context.Context, string, string, string) ([]byte, bool, error) {
	return nil, false, nil
}
func (Noop) Set(context.Context, string, string, string, []byte) error { return nil }
func (Noop) Invalidate(context.Context, string) error                  { return nil }
