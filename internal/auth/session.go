// Sportline - Sports News Platform Backend
// Copyright 2026 Sportline Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/sportlinehq/sportline

// Package auth implements bearer-token session authentication and role
// checks for the API. Sessions are opaque random tokens persisted in a
// session store; the token is the only credential the client holds after
// login.
package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"
)

// ErrSessionNotFound is returned when a token has no live session.
var ErrSessionNotFound = errors.New("auth: session not found")

// Session binds an opaque token to a user until ExpiresAt.
type Session struct {
	Token     string    `json:"token"`
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired reports whether the session has passed its expiry.
func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// SessionStore persists sessions keyed by token.
type SessionStore interface {
	Get(ctx context.Context, token string) (*Session, error)
	Put(ctx context.Context, session *Session) error
	Delete(ctx context.Context, token string) error
	// DeleteExpired removes every session past expiry and returns the count.
	DeleteExpired(ctx context.Context, now time.Time) (int, error)
}

// NewToken returns a fresh session token: 32 random bytes, hex encoded.
func NewToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate session token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// NewSession creates a session for userID valid for ttl from now.
func NewSession(userID string, ttl time.Duration, now time.Time) (*Session, error) {
	token, err := NewToken()
	if err != nil {
		return nil, err
	}
	return &Session{
		Token:     token,
		UserID:    userID,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}, nil
}
