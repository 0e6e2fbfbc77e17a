package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// QueryCache stores JSON-encoded query results under a namespace.
// Invalidate bumps the namespace generation so every older entry becomes
// unreachable and ages out through its TTL.
type QueryCache struct {
	client    *redis.Client
	namespace string
	ttl       time.Duration
}

// Get loads the value stored under key into dst and reports whether it was
// found. The returned slot names the entry at the generation Get observed;
// a result computed after a miss must be stored with Set(slot) so that an
// invalidation racing the computation leaves it unreachable.
func (q *QueryCache) Get(ctx context.Context, key string, dst any) (slot string, hit bool, err error) {
	gen, err := q.client.Get(ctx, q.generationKey()).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		return "", false, fmt.Errorf("read cache generation: %w", err)
	}
	slot = EntryKey(q.namespace, gen, key)

	data, err := q.client.Get(ctx, slot).Bytes()
	if errors.Is(err, redis.Nil) {
		return slot, false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("cache get %s: %w", key, err)
	}

	if err := json.Unmarshal(data, dst); err != nil {
		return slot, false, fmt.Errorf("decode cached %s: %w", key, err)
	}
	return slot, true, nil
}

// Set stores v in slot, as returned by Get, for the configured TTL.
func (q *QueryCache) Set(ctx context.Context, slot string, v any) error {
	if slot == "" {
		return fmt.Errorf("cache set: empty slot")
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", slot, err)
	}
	if err := q.client.Set(ctx, slot, data, q.ttl).Err(); err != nil {
		return fmt.Errorf("cache set %s: %w", slot, err)
	}
	return nil
}

// Invalidate drops every entry in the namespace.
func (q *QueryCache) Invalidate(ctx context.Context) error {
	if err := q.client.Incr(ctx, q.generationKey()).Err(); err != nil {
		return fmt.Errorf("bump cache generation: %w", err)
	}
	return nil
}

func (q *QueryCache) generationKey() string {
	return q.namespace + ":gen"
}

// EntryKey builds the storage key for key at generation gen.
func EntryKey(namespace string, gen int64, key string) string {
	return fmt.Sprintf("%s:v%d:%s", namespace, gen, key)
}
