package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"
)

// QueryCache is a read-through cache in front of slow reads. Store failures
// never fail a read; they are logged and the read goes to the source.
type QueryCache struct {
	store Store
}

// NewQueryCache wraps store. A nil store disables caching.
func NewQueryCache(store Store) *QueryCache {
	return &QueryCache{store: store}
}

// Fetch returns the cached value for key if it is younger than staleTime,
// otherwise calls fn and caches its result. A zero staleTime always refetches.
func Fetch[T any](ctx context.Context, q *QueryCache, key string, staleTime time.Duration, fn func(context.Context) (T, error)) (T, error) {
	if q == nil || q.store == nil || staleTime <= 0 {
		return fn(ctx)
	}

	if data, err := q.store.Get(ctx, key); err == nil {
		var v T
		if err := json.Unmarshal(data, &v); err == nil {
			return v, nil
		}
		log.Printf("[WARN] Cache entry %s is corrupt, refetching", key)
	} else if !errors.Is(err, ErrCacheMiss) {
		log.Printf("[WARN] Cache read %s failed: %v", key, err)
	}

	v, err := fn(ctx)
	if err != nil {
		return v, err
	}
	if data, err := json.Marshal(v); err != nil {
		log.Printf("[WARN] Cache encode %s failed: %v", key, err)
	} else if err := q.store.Set(ctx, key, data, staleTime); err != nil {
		log.Printf("[WARN] Cache write %s failed: %v", key, err)
	}
	return v, nil
}

// Invalidate drops keys so the next Fetch goes to the source.
func (q *QueryCache) Invalidate(ctx context.Context, keys ...string) {
	if q == nil || q.store == nil {
		return
	}
	if err := q.store.Delete(ctx, keys...); err != nil {
		log.Printf("[WARN] Cache invalidate %v failed: %v", keys, err)
	}
}

// Close releases the underlying store.
func (q *QueryCache) Close() error {
	if q == nil || q.store == nil {
		return nil
	}
	return q.store.Close()
}
