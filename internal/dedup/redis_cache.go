package dedup

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	infraredis "github.com/jonesrussell/faqhub/infrastructure/redis"
	"github.com/jonesrussell/faqhub/internal/domain"
)

// RedisCache stores fingerprint to article mappings in Redis.
type RedisCache struct {
	client *redis.Client
	key    func(parts ...string) string
	ttl    time.Duration
}

// NewRedisCache creates a RedisCache whose keys are built by cfg.Key. A zero
// ttl keeps entries forever.
func NewRedisCache(client *redis.Client, cfg infraredis.Config, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, key: cfg.Key, ttl: ttl}
}

func (c *RedisCache) fingerprintKey(fingerprint string) string {
	return c.key("hash", fingerprint)
}

// Get returns the cached reference or domain.ErrNotFound.
func (c *RedisCache) Get(ctx context.Context, fingerprint string) (*ArticleRef, error) {
	val, err := c.client.Get(ctx, c.fingerprintKey(fingerprint)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get fingerprint: %w", err)
	}

	idStr, rawURL, found := strings.Cut(val, "|")
	if !found {
		return nil, fmt.Errorf("malformed fingerprint entry %q", val)
	}

	id, parseErr := strconv.ParseInt(idStr, 10, 64)
	if parseErr != nil {
		return nil, fmt.Errorf("parse article id: %w", parseErr)
	}

	return &ArticleRef{ID: id, URL: rawURL}, nil
}

// Set records that fingerprint belongs to ref. An existing entry is kept so the
// first article to produce a fingerprint stays its owner.
func (c *RedisCache) Set(ctx context.Context, fingerprint string, ref ArticleRef) error {
	val := strconv.FormatInt(ref.ID, 10) + "|" + ref.URL
	if err := c.client.SetNX(ctx, c.fingerprintKey(fingerprint), val, c.ttl).Err(); err != nil {
		return fmt.Errorf("set fingerprint: %w", err)
	}
	return nil
}

// Forget deletes the entry for fingerprint. A missing entry is not an error.
func (c *RedisCache) Forget(ctx context.Context, fingerprint string) error {
	if err := c.client.Del(ctx, c.fingerprintKey(fingerprint)).Err(); err != nil {
		return fmt.Errorf("delete fingerprint: %w", err)
	}
	return nil
}
