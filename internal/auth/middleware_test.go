// Sportline - Sports News Platform Backend
// Copyright 2026 Sportline Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/sportlinehq/sportline

package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/sportlinehq/sportline/internal/kv"
	"github.com/sportlinehq/sportline/internal/store"
)

func openSession(t *testing.T, a *Authenticator, sessions SessionStore, userID string) *Session {
	t.Helper()
	session, err := NewSession(userID, time.Hour, time.Now())
	if err != nil {
		t.Fatal(err)
	}
	if err := sessions.Put(context.Background(), session); err != nil {
		t.Fatal(err)
	}
	return session
}

func decodeErrorEnvelope(t *testing.T, body string) (message string) {
	t.Helper()
	var envelope struct {
		Error   bool   `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal([]byte(body), &envelope); err != nil {
		t.Fatalf("decode envelope %q: %v", body, err)
	}
	if !envelope.Error {
		t.Errorf("envelope %q missing \"error\": true", body)
	}
	return envelope.Message
}

func TestRequireRejectsAnonymous(t *testing.T) {
	t.Parallel()

	a, _, _ := newTestAuth(t)
	handler := a.Require()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler must not run")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
	if msg := decodeErrorEnvelope(t, rec.Body.String()); msg != MsgLoginRequired {
		t.Errorf("message = %q, want %q", msg, MsgLoginRequired)
	}
}

func TestRequireRejectsDeadSessionWithExactMessage(t *testing.T) {
	t.Parallel()

	a, _, _ := newTestAuth(t)
	handler := a.Require()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler must not run")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, requestWithToken("deadbeef"))

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Session không hợp lệ hoặc đã hết hạn") {
		t.Errorf("body = %q, want the exact invalid-session message", rec.Body.String())
	}
}

func TestRequireAttachesUser(t *testing.T) {
	t.Parallel()

	a, sessions, st := newTestAuth(t)
	user := seedUser(t, st, store.RoleUser, true)
	session := openSession(t, a, sessions, user.ID)

	var got *store.User
	handler := a.Require()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = UserFromContext(r.Context())
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, requestWithToken(session.Token))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if got == nil || got.ID != user.ID {
		t.Errorf("context user = %+v, want %q", got, user.ID)
	}
}

func TestRequireRoleForbidsLowerRole(t *testing.T) {
	t.Parallel()

	a, sessions, st := newTestAuth(t)
	user := seedUser(t, st, store.RoleUser, true)
	session := openSession(t, a, sessions, user.ID)

	handler := a.RequireRole(store.RoleEditor)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler must not run")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, requestWithToken(session.Token))

	if rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", rec.Code)
	}
	if msg := decodeErrorEnvelope(t, rec.Body.String()); msg != MsgForbidden {
		t.Errorf("message = %q, want %q", msg, MsgForbidden)
	}
}

func TestOptionalPassesAnonymous(t *testing.T) {
	t.Parallel()

	a, _, _ := newTestAuth(t)
	handler := a.Optional()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if UserFromContext(r.Context()) != nil {
			t.Error("anonymous request must carry no user")
		}
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want anonymous pass-through", rec.Code)
	}
}

func TestOptionalIgnoresInvalidToken(t *testing.T) {
	t.Parallel()

	a, _, _ := newTestAuth(t)
	ran := false
	handler := a.Optional()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ran = true
		if UserFromContext(r.Context()) != nil {
			t.Error("invalid token must not attach a user")
		}
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, requestWithToken("bogus"))
	if !ran {
		t.Error("invalid token must not block an optional-auth request")
	}
}

func TestKVSessionStoreRoundTrip(t *testing.T) {
	t.Parallel()

	sessions := NewKVSessionStore(kv.NewMemoryStore())
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	session, err := NewSession("u1", time.Hour, now)
	if err != nil {
		t.Fatal(err)
	}
	if err := sessions.Put(ctx, session); err != nil {
		t.Fatal(err)
	}

	got, err := sessions.Get(ctx, session.Token)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.UserID != "u1" || !got.ExpiresAt.Equal(session.ExpiresAt) {
		t.Errorf("got %+v, want round-tripped session", got)
	}

	dead, err := NewSession("u2", time.Hour, now.Add(-3*time.Hour))
	if err != nil {
		t.Fatal(err)
	}
	if err := sessions.Put(ctx, dead); err != nil {
		t.Fatal(err)
	}

	removed, err := sessions.DeleteExpired(ctx, now)
	if err != nil {
		t.Fatalf("DeleteExpired: %v", err)
	}
	if removed != 1 {
		t.Errorf("removed = %d, want 1", removed)
	}

	if err := sessions.Delete(ctx, session.Token); err != nil {
		t.Fatal(err)
	}
	if _, err := sessions.Get(ctx, session.Token); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Get after delete = %v, want ErrSessionNotFound", err)
	}
}
