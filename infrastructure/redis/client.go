// Package redis builds go-redis clients from configuration.
package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// Config holds Redis connection configuration.
type Config struct {
	Address     string        `env:"REDIS_ADDRESS"  yaml:"address"`
	Password    string        `env:"REDIS_PASSWORD" yaml:"password"`
	DB          int           `env:"REDIS_DB"       yaml:"db"`
	PoolSize    int           `yaml:"pool_size"`
	DialTimeout time.Duration `yaml:"dial_timeout"`
	// KeyPrefix namespaces every key written through Key.
	KeyPrefix string `yaml:"key_prefix"`
}

// ErrEmptyAddress is returned when Redis address is not configured.
var ErrEmptyAddress = errors.New("redis address is required")

const (
	connectionTimeout  = 5 * time.Second
	defaultDialTimeout = 5 * time.Second
	keySeparator       = ":"
)

// Key joins parts under the configured prefix.
func (c Config) Key(parts ...string) string {
	if c.KeyPrefix == "" {
		return strings.Join(parts, keySeparator)
	}
	return c.KeyPrefix + keySeparator + strings.Join(parts, keySeparator)
}

// NewClient creates a client and verifies it with a ping.
func NewClient(ctx context.Context, cfg Config) (*redis.Client, error) {
	if cfg.Address == "" {
		return nil, ErrEmptyAddress
	}

	dialTimeout := cfg.DialTimeout
	if dialTimeout <= 0 {
		dialTimeout = defaultDialTimeout
	}

	client := redis.NewClient(&redis.Options{
		Addr:        cfg.Address,
		Password:    cfg.Password,
		DB:          cfg.DB,
		PoolSize:    cfg.PoolSize,
		DialTimeout: dialTimeout,
	})

	pingCtx, cancel := context.WithTimeout(ctx, connectionTimeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return client, nil
}
