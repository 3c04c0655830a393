package cache

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// Store is the minimal key-value contract the service needs. Implementations
// must provide per-key atomicity and server-side TTL expiry; nothing more.
type Store interface {
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	// Get returns (value, true) when the key exists and has not expired.
	Get(ctx context.Context, key string) (string, bool, error)
	// GetDel atomically reads and removes a key. At most one concurrent
	// caller observes the value.
	GetDel(ctx context.Context, key string) (string, bool, error)
	Delete(ctx context.Context, key string) error
	DeleteByPrefix(ctx context.Context, prefix string) error
	Close() error
}

// Cache wraps a Store with best-effort semantics: an unreachable or failing
// store must never fail the calling business operation. Failures are logged
// and the caller sees a miss. The system degrades to "re-authenticate more
// often" instead of hard errors.
type Cache struct {
	store Store
}

func New(store Store) *Cache {
	return &Cache{store: store}
}

func (c *Cache) Set(ctx context.Context, key, value string, ttl time.Duration) {
	if err := c.store.Set(ctx, key, value, ttl); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("cache: set failed")
	}
}

func (c *Cache) Get(ctx context.Context, key string) (string, bool) {
	val, ok, err := c.store.Get(ctx, key)
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("cache: get failed")
		return "", false
	}
	return val, ok
}

func (c *Cache) Delete(ctx context.Context, key string) {
	if err := c.store.Delete(ctx, key); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("cache: delete failed")
	}
}

func (c *Cache) DeleteByPrefix(ctx context.Context, prefix string) {
	if err := c.store.DeleteByPrefix(ctx, prefix); err != nil {
		log.Warn().Err(err).Str("prefix", prefix).Msg("cache: delete by prefix failed")
	}
}

// GetDelete reads a key and deletes it atomically. Used for single-use
// tokens: the second redemption of the same token always misses.
func (c *Cache) GetDelete(ctx context.Context, key string) (string, bool) {
	val, ok, err := c.store.GetDel(ctx, key)
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("cache: getdel failed")
		return "", false
	}
	return val, ok
}

func (c *Cache) Close() error {
	return c.store.Close()
}
