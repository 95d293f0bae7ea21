// Sportline - Sports News Platform Backend
// Copyright 2026 Sportline Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/sportlinehq/sportline

// Package cache implements the named-key response cache. Entries are
// serialized payloads cached under caller-chosen names ("articles:list:p1")
// in two layers: an in-process memo for the hot path and the key-value
// store for persistence across restarts. Write handlers invalidate by key
// or by substring pattern after mutating the underlying data.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/goccy/go-json"

	"github.com/sportlinehq/sportline/internal/kv"
	"github.com/sportlinehq/sportline/internal/logging"
	"github.com/sportlinehq/sportline/internal/metrics"
)

const entryKeyPrefix = "cache:"

// entry is one cached payload. Key keeps the original cache name so
// pattern invalidation can match it after the storage key is hashed.
type entry struct {
	Key       string          `json:"key"`
	Payload   json.RawMessage `json:"payload"`
	StoredAt  int64           `json:"stored_at"`
	ExpiresAt int64           `json:"expires_at"`
}

func (e *entry) expired(now time.Time) bool {
	return now.Unix() >= e.ExpiresAt
}

// Cache is the two-layer response cache.
type Cache struct {
	store kv.Store
	now   func() time.Time

	mu   sync.RWMutex
	memo map[string]*entry
}

// New creates a Cache persisting to store.
func New(store kv.Store) *Cache {
	return &Cache{
		store: store,
		now:   time.Now,
		memo:  make(map[string]*entry),
	}
}

// SetNow overrides the clock, for tests.
func (c *Cache) SetNow(now func() time.Time) {
	c.now = now
}

func entryKey(key string) string {
	sum := sha256.Sum256([]byte(key))
	return entryKeyPrefix + hex.EncodeToString(sum[:16])
}

// Do returns the cached payload for key, producing and caching it on a
// miss. The returned bytes are the serialized payload; hit reports whether
// any cache layer served it. A ttl of zero or less bypasses the cache.
//
// Cache storage failures degrade to a produce-every-time cache, never to a
// request failure.
func (c *Cache) Do(ctx context.Context, key string, ttl time.Duration, produce func(context.Context) (interface{}, error)) ([]byte, bool, error) {
	if ttl <= 0 {
		payload, err := c.produce(ctx, produce)
		return payload, false, err
	}

	now := c.now()
	storageKey := entryKey(key)

	c.mu.RLock()
	memoEntry, ok := c.memo[storageKey]
	c.mu.RUnlock()
	if ok && !memoEntry.expired(now) {
		metrics.CacheHits.WithLabelValues("memory").Inc()
		return memoEntry.Payload, true, nil
	}

	if stored := c.loadStored(ctx, storageKey, now); stored != nil {
		c.mu.Lock()
		c.memo[storageKey] = stored
		c.mu.Unlock()
		metrics.CacheHits.WithLabelValues("kv").Inc()
		return stored.Payload, true, nil
	}

	metrics.CacheMisses.Inc()
	payload, err := c.produce(ctx, produce)
	if err != nil {
		return nil, false, err
	}

	fresh := &entry{
		Key:       key,
		Payload:   payload,
		StoredAt:  now.Unix(),
		ExpiresAt: now.Add(ttl).Unix(),
	}
	c.mu.Lock()
	c.memo[storageKey] = fresh
	c.mu.Unlock()

	if raw, err := json.Marshal(fresh); err == nil {
		if err := c.store.Set(ctx, storageKey, raw); err != nil {
			logger := logging.Ctx(ctx)
			logger.Warn().Err(err).Str("cache_key", key).Msg("Cache store failed")
		}
	}
	return payload, false, nil
}

func (c *Cache) produce(ctx context.Context, produce func(context.Context) (interface{}, error)) ([]byte, error) {
	value, err := produce(ctx)
	if err != nil {
		return nil, err
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("encode cache payload: %w", err)
	}
	return payload, nil
}

func (c *Cache) loadStored(ctx context.Context, storageKey string, now time.Time) *entry {
	raw, err := c.store.Get(ctx, storageKey)
	if errors.Is(err, kv.ErrNotFound) {
		return nil
	}
	if err != nil {
		logger := logging.Ctx(ctx)
		logger.Warn().Err(err).Msg("Cache load failed")
		return nil
	}

	var stored entry
	if err := json.Unmarshal(raw, &stored); err != nil || stored.expired(now) {
		return nil
	}
	return &stored
}

// ClearKey drops one entry from both layers.
func (c *Cache) ClearKey(ctx context.Context, key string) error {
	storageKey := entryKey(key)
	c.mu.Lock()
	delete(c.memo, storageKey)
	c.mu.Unlock()
	if err := c.store.Delete(ctx, storageKey); err != nil {
		return fmt.Errorf("clear cache key %q: %w", key, err)
	}
	return nil
}

// ClearPattern drops every entry whose original key contains any of the
// given substrings. Mutating an article clears "articles:" wholesale
// rather than tracking which pages it appeared on.
func (c *Cache) ClearPattern(ctx context.Context, patterns ...string) error {
	matches := func(key string) bool {
		for _, pattern := range patterns {
			if pattern != "" && strings.Contains(key, pattern) {
				return true
			}
		}
		return false
	}

	c.mu.Lock()
	for storageKey, stored := range c.memo {
		if matches(stored.Key) {
			delete(c.memo, storageKey)
		}
	}
	c.mu.Unlock()

	keys, err := c.store.Keys(ctx, entryKeyPrefix)
	if err != nil {
		return fmt.Errorf("scan cache entries: %w", err)
	}
	for _, storageKey := range keys {
		raw, err := c.store.Get(ctx, storageKey)
		if errors.Is(err, kv.ErrNotFound) {
			continue
		}
		if err != nil {
			return fmt.Errorf("load cache entry: %w", err)
		}
		var stored entry
		if err := json.Unmarshal(raw, &stored); err != nil || matches(stored.Key) {
			if err := c.store.Delete(ctx, storageKey); err != nil {
				return fmt.Errorf("delete cache entry: %w", err)
			}
		}
	}
	return nil
}

// Clear wipes both layers.
func (c *Cache) Clear(ctx context.Context) error {
	c.mu.Lock()
	c.memo = make(map[string]*entry)
	c.mu.Unlock()

	keys, err := c.store.Keys(ctx, entryKeyPrefix)
	if err != nil {
		return fmt.Errorf("scan cache entries: %w", err)
	}
	for _, storageKey := range keys {
		if err := c.store.Delete(ctx, storageKey); err != nil {
			return fmt.Errorf("delete cache entry: %w", err)
		}
	}
	return nil
}

// GC drops expired memo entries. Run periodically out-of-band; expired
// kv entries fall out lazily on read.
func (c *Cache) GC() int {
	now := c.now()
	c.mu.Lock()
	defer c.mu.Unlock()
	removed := 0
	for storageKey, stored := range c.memo {
		if stored.expired(now) {
			delete(c.memo, storageKey)
			removed++
		}
	}
	return removed
}

// MemoLen reports the memo layer size, for diagnostics.
func (c *Cache) MemoLen() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.memo)
}
