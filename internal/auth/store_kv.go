// Sportline - Sports News Platform Backend
// Copyright 2026 Sportline Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/sportlinehq/sportline

package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"

	"github.com/sportlinehq/sportline/internal/kv"
)

const sessionKeyPrefix = "session:"

// KVSessionStore persists sessions in the key-value store so they survive
// restarts. Values are JSON-encoded Session records.
type KVSessionStore struct {
	store kv.Store
}

// NewKVSessionStore wraps store. The caller retains ownership of store.
func NewKVSessionStore(store kv.Store) *KVSessionStore {
	return &KVSessionStore{store: store}
}

func sessionKey(token string) string {
	return sessionKeyPrefix + token
}

// Get returns the session for token, or ErrSessionNotFound.
func (s *KVSessionStore) Get(ctx context.Context, token string) (*Session, error) {
	raw, err := s.store.Get(ctx, sessionKey(token))
	if errors.Is(err, kv.ErrNotFound) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}

	var session Session
	if err := json.Unmarshal(raw, &session); err != nil {
		// A corrupt record is unusable; treat it as absent.
		return nil, ErrSessionNotFound
	}
	return &session, nil
}

// Put stores session under its token.
func (s *KVSessionStore) Put(ctx context.Context, session *Session) error {
	raw, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := s.store.Set(ctx, sessionKey(session.Token), raw); err != nil {
		return fmt.Errorf("store session: %w", err)
	}
	return nil
}

// Delete removes token. Removing an absent token is not an error.
func (s *KVSessionStore) Delete(ctx context.Context, token string) error {
	if err := s.store.Delete(ctx, sessionKey(token)); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// DeleteExpired scans all sessions and removes those past expiry.
func (s *KVSessionStore) DeleteExpired(ctx context.Context, now time.Time) (int, error) {
	keys, err := s.store.Keys(ctx, sessionKeyPrefix)
	if err != nil {
		return 0, fmt.Errorf("scan sessions: %w", err)
	}

	removed := 0
	for _, key := range keys {
		raw, err := s.store.Get(ctx, key)
		if errors.Is(err, kv.ErrNotFound) {
			continue
		}
		if err != nil {
			return removed, fmt.Errorf("load session %q: %w", key, err)
		}

		var session Session
		if err := json.Unmarshal(raw, &session); err != nil || session.Expired(now) {
			if err := s.store.Delete(ctx, key); err != nil {
				return removed, fmt.Errorf("delete session %q: %w", key, err)
			}
			removed++
		}
	}
	return removed, nil
}
