// Package rediscache decorates a document store with a Redis read-through
// cache for single-document reads. Queries pass through uncached; their
// result sets change on every write and invalidating them is not worth the
// complexity for this workload.
package rediscache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/finance-tracker/client/internal/application/adapter"
)

const defaultTTL = 5 * time.Minute

// Cache implements adapter.DocumentStore, delegating to an underlying store.
// Redis failures degrade to the underlying store; the cache never turns a
// healthy persistence provider into a failing one.
type Cache struct {
	next   adapter.DocumentStore
	client *redis.Client
	ttl    time.Duration
}

// New creates a caching decorator around next.
func New(next adapter.DocumentStore, client *redis.Client, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &Cache{
		next:   next,
		client: client,
		ttl:    ttl,
	}
}

// GetDocument returns the cached document when present, otherwise reads
// through to the underlying store and caches the result.
func (c *Cache) GetDocument(ctx context.Context, collection, id string) (adapter.Document, error) {
	key := cacheKey(collection, id)

	data, err := c.client.Get(ctx, key).Bytes()
	if err == nil {
		var doc adapter.Document
		if err := json.Unmarshal(data, &doc); err == nil {
			return doc, nil
		}
		// Corrupt cache entry; fall through to the store.
		c.client.Del(ctx, key)
	} else if !errors.Is(err, redis.Nil) {
		slog.Warn("Redis read failed, bypassing cache", "key", key, "error", err)
	}

	doc, err := c.next.GetDocument(ctx, collection, id)
	if err != nil || doc == nil {
		return doc, err
	}

	if data, err := json.Marshal(doc); err == nil {
		if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
			slog.Warn("Redis write failed, document not cached", "key", key, "error", err)
		}
	}
	return doc, nil
}

// SetDocument writes through to the underlying store, then refreshes the cache.
func (c *Cache) SetDocument(ctx context.Context, collection, id string, doc adapter.Document) error {
	if err := c.next.SetDocument(ctx, collection, id, doc); err != nil {
		return err
	}

	key := cacheKey(collection, id)
	data, err := json.Marshal(doc)
	if err != nil {
		c.client.Del(ctx, key)
		return nil
	}
	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		slog.Warn("Redis write failed, invalidating key", "key", key, "error", err)
		c.client.Del(ctx, key)
	}
	return nil
}

// QueryByField passes through to the underlying store.
func (c *Cache) QueryByField(ctx context.Context, collection, field string, value any) ([]adapter.Document, error) {
	return c.next.QueryByField(ctx, collection, field, value)
}

func cacheKey(collection, id string) string {
	return "doc:" + collection + ":" + id
}
