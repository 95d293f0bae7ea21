// Sportline - Sports News Platform Backend
// Copyright 2026 Sportline Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/sportlinehq/sportline

// Package ratelimit implements a persisted sliding-window rate limiter.
// Each identifier (normally a client IP, optionally scoped per endpoint)
// owns a record of request timestamps inside the current window; records
// live in the key-value store so limits survive restarts.
package ratelimit

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/goccy/go-json"

	"github.com/sportlinehq/sportline/internal/kv"
	"github.com/sportlinehq/sportline/internal/logging"
)

const recordKeyPrefix = "ratelimit:"

// sweepIdleAfter is how long a record may sit untouched before the
// maintenance sweep drops it.
const sweepIdleAfter = time.Hour

// Result is the outcome of one rate-limit check.
type Result struct {
	Allowed   bool
	Limit     int
	Remaining int
	// Reset is when the oldest counted request leaves the window.
	Reset time.Time
	// RetryAfter is how long a rejected caller must wait. Zero when allowed.
	RetryAfter time.Duration
}

// record is the persisted shape of one identifier's window.
type record struct {
	Timestamps []int64 `json:"timestamps"` // unix seconds, ascending
	UpdatedAt  int64   `json:"updated_at"`
}

// Limiter checks and records requests against per-identifier windows.
type Limiter struct {
	store kv.Store
	now   func() time.Time

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewLimiter creates a Limiter persisting to store.
func NewLimiter(store kv.Store) *Limiter {
	return &Limiter{
		store: store,
		now:   time.Now,
		locks: make(map[string]*sync.Mutex),
	}
}

// SetNow overrides the clock, for tests.
func (l *Limiter) SetNow(now func() time.Time) {
	l.now = now
}

// recordKey derives the storage key for an identifier. Identifiers are
// hashed so arbitrary client-supplied strings never become raw store keys.
func recordKey(identifier string) string {
	sum := sha256.Sum256([]byte(identifier))
	return recordKeyPrefix + hex.EncodeToString(sum[:16])
}

// lockFor returns the per-identifier mutex, creating it on first use. The
// read-modify-write cycle on a record must not interleave across requests
// from the same identifier.
func (l *Limiter) lockFor(key string) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()
	lock, ok := l.locks[key]
	if !ok {
		lock = &sync.Mutex{}
		l.locks[key] = lock
	}
	return lock
}

// Check counts one request for identifier against a window of limit
// requests per window duration. When the request fits, it is recorded and
// the result reports the remaining allowance. When the window is full,
// nothing is recorded and RetryAfter says when the oldest request ages out.
//
// On a store failure the request is allowed: the limiter protects the
// backend from abuse and must not turn a storage hiccup into an outage.
func (l *Limiter) Check(ctx context.Context, identifier string, limit int, window time.Duration) Result {
	if limit <= 0 || window <= 0 {
		return Result{Allowed: true, Limit: limit, Remaining: limit}
	}

	key := recordKey(identifier)
	lock := l.lockFor(key)
	lock.Lock()
	defer lock.Unlock()

	now := l.now()
	rec, err := l.load(ctx, key)
	if err != nil {
		logger := logging.Ctx(ctx)
		logger.Error().Err(err).Msg("Rate limit record load failed; allowing request")
		return Result{Allowed: true, Limit: limit, Remaining: limit - 1, Reset: now.Add(window)}
	}

	cutoff := now.Add(-window).Unix()
	live := rec.Timestamps[:0]
	for _, ts := range rec.Timestamps {
		if ts > cutoff {
			live = append(live, ts)
		}
	}
	rec.Timestamps = live

	if len(rec.Timestamps) >= limit {
		oldest := time.Unix(rec.Timestamps[0], 0)
		reset := oldest.Add(window)
		retry := reset.Sub(now)
		if retry < time.Second {
			retry = time.Second
		}
		// Persist the pruned window so stale entries do not accumulate.
		l.save(ctx, key, rec, now)
		return Result{
			Allowed:    false,
			Limit:      limit,
			Remaining:  0,
			Reset:      reset,
			RetryAfter: retry,
		}
	}

	rec.Timestamps = append(rec.Timestamps, now.Unix())
	l.save(ctx, key, rec, now)

	reset := now.Add(window)
	if len(rec.Timestamps) > 0 {
		reset = time.Unix(rec.Timestamps[0], 0).Add(window)
	}
	return Result{
		Allowed:   true,
		Limit:     limit,
		Remaining: limit - len(rec.Timestamps),
		Reset:     reset,
	}
}

func (l *Limiter) load(ctx context.Context, key string) (*record, error) {
	raw, err := l.store.Get(ctx, key)
	if errors.Is(err, kv.ErrNotFound) {
		return &record{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load rate limit record: %w", err)
	}

	var rec record
	if err := json.Unmarshal(raw, &rec); err != nil {
		// A corrupt record resets the window rather than poisoning checks.
		return &record{}, nil
	}
	return &rec, nil
}

func (l *Limiter) save(ctx context.Context, key string, rec *record, now time.Time) {
	rec.UpdatedAt = now.Unix()
	raw, err := json.Marshal(rec)
	if err != nil {
		logger := logging.Ctx(ctx)
		logger.Error().Err(err).Msg("Rate limit record encode failed")
		return
	}
	if err := l.store.Set(ctx, key, raw); err != nil {
		logger := logging.Ctx(ctx)
		logger.Error().Err(err).Msg("Rate limit record store failed")
	}
}

// Sweep removes records idle for longer than an hour and forgets their
// locks. Run periodically out-of-band; request latency never pays for it.
func (l *Limiter) Sweep(ctx context.Context) (int, error) {
	keys, err := l.store.Keys(ctx, recordKeyPrefix)
	if err != nil {
		return 0, fmt.Errorf("scan rate limit records: %w", err)
	}

	cutoff := l.now().Add(-sweepIdleAfter).Unix()
	removed := 0
	for _, key := range keys {
		lock := l.lockFor(key)
		lock.Lock()

		raw, err := l.store.Get(ctx, key)
		if errors.Is(err, kv.ErrNotFound) {
			lock.Unlock()
			continue
		}
		if err != nil {
			lock.Unlock()
			return removed, fmt.Errorf("load rate limit record %q: %w", key, err)
		}

		var rec record
		stale := json.Unmarshal(raw, &rec) != nil || rec.UpdatedAt <= cutoff
		if stale {
			if err := l.store.Delete(ctx, key); err != nil {
				lock.Unlock()
				return removed, fmt.Errorf("delete rate limit record %q: %w", key, err)
			}
			removed++
		}
		lock.Unlock()

		if stale {
			l.mu.Lock()
			delete(l.locks, key)
			l.mu.Unlock()
		}
	}
	return removed, nil
}
