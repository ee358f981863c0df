package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// TTL constants
const (
	TTLPublicList = 2 * time.Minute
	TTLPublicItem = 2 * time.Minute
	TTLHomepage   = 5 * time.Minute
)

// PrefixPublic namespaces every public response key
const PrefixPublic = "ventures:public:"

// ErrMiss is returned when the key is absent or the cache is disabled
var ErrMiss = errors.New("cache miss")

// Service caches public read responses per content type.
// A nil Redis client turns every call into a miss or a no-op.
type Service interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error

	ListKey(contentType string, params ...any) string
	ItemKey(contentType, idOrSlug string) string

	// InvalidateType drops every cached list and item of the content type
	InvalidateType(ctx context.Context, contentType string) error

	IsAvailable() bool
	Ping(ctx context.Context) error
}

type redisCache struct {
	client *redis.Client
}

// NewService creates a cache backed by client; client may be nil
func NewService(client *redis.Client) Service {
	return &redisCache{client: client}
}

func (c *redisCache) IsAvailable() bool {
	return c.client != nil
}

func (c *redisCache) Ping(ctx context.Context) error {
	if c.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	return c.client.Ping(ctx).Err()
}

func (c *redisCache) Get(ctx context.Context, key string, dest interface{}) error {
	if c.client == nil {
		return ErrMiss
	}

	data, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return ErrMiss
	}
	if err != nil {
		return err
	}

	return json.Unmarshal(data, dest)
}

func (c *redisCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if c.client == nil {
		return nil
	}

	data, err := json.Marshal(value)
	if err != nil {
		return err
	}

	return c.client.Set(ctx, key, data, ttl).Err()
}

func (c *redisCache) ListKey(contentType string, params ...any) string {
	key := PrefixPublic + contentType + ":list"
	for _, p := range params {
		key += fmt.Sprintf(":%v", p)
	}
	return key
}

func (c *redisCache) ItemKey(contentType, idOrSlug string) string {
	return PrefixPublic + contentType + ":item:" + idOrSlug
}

func (c *redisCache) InvalidateType(ctx context.Context, contentType string) error {
	if c.client == nil {
		return nil
	}
	return c.deleteByPattern(ctx, PrefixPublic+contentType+":*")
}

func (c *redisCache) deleteByPattern(ctx context.Context, pattern string) error {
	iter := c.client.Scan(ctx, 0, pattern, 100).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}
