// Sportline - Sports News Platform Backend
// Copyright 2026 Sportline Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/sportlinehq/sportline

package server

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sportlinehq/sportline/internal/auth"
	"github.com/sportlinehq/sportline/internal/cache"
	"github.com/sportlinehq/sportline/internal/kv"
	"github.com/sportlinehq/sportline/internal/ratelimit"
)

func TestMaintenanceServiceSweeps(t *testing.T) {
	t.Parallel()

	kvStore := kv.NewMemoryStore()
	limiter := ratelimit.NewLimiter(kvStore)
	sessions := auth.NewKVSessionStore(kvStore)
	responseCache := cache.New(kvStore)

	ctx := context.Background()
	past := time.Now().Add(-3 * time.Hour)

	limiter.SetNow(func() time.Time { return past })
	limiter.Check(ctx, "stale-ip", 10, time.Minute)
	limiter.SetNow(time.Now)

	dead, err := auth.NewSession("u1", time.Hour, past)
	if err != nil {
		t.Fatal(err)
	}
	if err := sessions.Put(ctx, dead); err != nil {
		t.Fatal(err)
	}

	responseCache.SetNow(func() time.Time { return past })
	if _, _, err := responseCache.Do(ctx, "k", time.Minute, func(context.Context) (interface{}, error) {
		return "v", nil
	}); err != nil {
		t.Fatal(err)
	}
	responseCache.SetNow(time.Now)

	svc := NewMaintenanceService(time.Millisecond, limiter, sessions, responseCache)
	runCtx, cancel := context.WithTimeout(ctx, 200*time.Millisecond)
	defer cancel()
	if err := svc.Serve(runCtx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Serve = %v, want deadline exceeded", err)
	}

	keys, err := kvStore.Keys(ctx, "ratelimit:")
	if err != nil {
		t.Fatal(err)
	}
	if len(keys) != 0 {
		t.Errorf("rate limit records after sweep = %d, want 0", len(keys))
	}

	if _, err := sessions.Get(ctx, dead.Token); !errors.Is(err, auth.ErrSessionNotFound) {
		t.Errorf("expired session survived the sweep: %v", err)
	}

	if responseCache.MemoLen() != 0 {
		t.Errorf("cache memo after sweep = %d, want 0", responseCache.MemoLen())
	}
}

func TestHTTPServiceServesAndShutsDown(t *testing.T) {
	t.Parallel()

	// Port 0 picks a free port; the service only needs to come up and then
	// drain when the context is canceled.
	svc := NewHTTPService("127.0.0.1:0", nil, time.Second, time.Second, time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Serve(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Serve = %v, want context.Canceled", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}
