// Package cache keeps catalog query results in Dragonfly or Redis.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/p-n-ai/pai-study/internal/platform/config"
)

// DefaultTTL applies when the configuration leaves the entry lifetime unset.
const DefaultTTL = 5 * time.Minute

// Cache is a connection to the query cache server.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// ParseURL validates a cache connection URL.
func ParseURL(url string) (*redis.Options, error) {
	if url == "" {
		return nil, fmt.Errorf("cache URL is empty")
	}
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid cache URL: %w", err)
	}
	return opts, nil
}

// New connects to the cache server named by cfg.URL. Entries written through
// the returned cache live for cfg.TTL.
func New(ctx context.Context, cfg config.CacheConfig) (*Cache, error) {
	opts, err := ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}
	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 2 * time.Second
	opts.WriteTimeout = 2 * time.Second

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect to query cache at %s: %w", opts.Addr, err)
	}

	return &Cache{client: client, ttl: entryTTL(cfg.TTL)}, nil
}

func entryTTL(ttl time.Duration) time.Duration {
	if ttl <= 0 {
		return DefaultTTL
	}
	return ttl
}

// Query returns the query cache for namespace. Namespaces invalidate
// independently of each other.
func (c *Cache) Query(namespace string) *QueryCache {
	return &QueryCache{client: c.client, namespace: namespace, ttl: c.ttl}
}

// Close releases the connection pool.
func (c *Cache) Close() error {
	return c.client.Close()
}

// HealthCheck pings the cache server.
func (c *Cache) HealthCheck(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}
