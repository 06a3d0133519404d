package webhook

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// ReplayCache remembers deliveries that were fully handled so provider
// retries short-circuit. It is a hint: reconciliation is idempotent without it.
type ReplayCache interface {
	Seen(ctx context.Context, key string) (bool, error)
	Remember(ctx context.Context, key string, ttl time.Duration) error
}

// DeliveryKey identifies a delivery by the digest of its raw body.
func DeliveryKey(body []byte) string {
	sum := sha256.Sum256(body)
	return hex.EncodeToString(sum[:])
}

// RedisReplayCache stores delivery keys with a TTL.
type RedisReplayCache struct {
	rdb    *redis.Client
	prefix string
}

type RedisReplayOption func(*RedisReplayCache)

func WithKeyPrefix(prefix string) RedisReplayOption {
	return func(c *RedisReplayCache) {
		c.prefix = strings.Trim(prefix, ":")
	}
}

func NewRedisReplayCache(rdb *redis.Client, opts ...RedisReplayOption) *RedisReplayCache {
	c := &RedisReplayCache{rdb: rdb, prefix: "poolpay:webhook"}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *RedisReplayCache) key(k string) string {
	return c.prefix + ":" + k
}

func (c *RedisReplayCache) Seen(ctx context.Context, key string) (bool, error) {
	n, err := c.rdb.Exists(ctx, c.key(key)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (c *RedisReplayCache) Remember(ctx context.Context, key string, ttl time.Duration) error {
	return c.rdb.Set(ctx, c.key(key), "1", ttl).Err()
}

// MemoryReplayCache is the single-process variant used without Redis.
type MemoryReplayCache struct {
	mu      sync.Mutex
	entries map[string]time.Time
	now     func() time.Time
}

func NewMemoryReplayCache() *MemoryReplayCache {
	return &MemoryReplayCache{
		entries: make(map[string]time.Time),
		now:     time.Now,
	}
}

func (c *MemoryReplayCache) Seen(_ context.Context, key string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	exp, ok := c.entries[key]
	if !ok {
		return false, nil
	}
	if !c.now().Before(exp) {
		delete(c.entries, key)
		return false, nil
	}
	return true, nil
}

func (c *MemoryReplayCache) Remember(_ context.Context, key string, ttl time.Duration) error {
	if ttl <= 0 {
		return errors.New("replay ttl must be positive")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	for k, exp := range c.entries {
		if !now.Before(exp) {
			delete(c.entries, k)
		}
	}
	c.entries[key] = now.Add(ttl)
	return nil
}
