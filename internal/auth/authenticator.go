// Sportline - Sports News Platform Backend
// Copyright 2026 Sportline Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/sportlinehq/sportline

package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sportlinehq/sportline/internal/logging"
	"github.com/sportlinehq/sportline/internal/store"
)

// Client-facing authentication messages. The mobile client renders these
// verbatim, so the exact wording is part of the API contract.
const (
	MsgLoginRequired   = "Bạn cần đăng nhập để thực hiện chức năng này"
	MsgSessionInvalid  = "Session không hợp lệ hoặc đã hết hạn"
	MsgAccountDisabled = "Tài khoản đã bị vô hiệu hóa"
	MsgForbidden       = "Bạn không có quyền thực hiện chức năng này"
)

// AuthError is an authentication or authorization failure with the HTTP
// status and client message to return.
type AuthError struct {
	Status  int
	Message string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("auth: %d %s", e.Status, e.Message)
}

var (
	errMissingToken    = &AuthError{Status: http.StatusUnauthorized, Message: MsgLoginRequired}
	errInvalidSession  = &AuthError{Status: http.StatusUnauthorized, Message: MsgSessionInvalid}
	errAccountDisabled = &AuthError{Status: http.StatusForbidden, Message: MsgAccountDisabled}
	errForbidden       = &AuthError{Status: http.StatusForbidden, Message: MsgForbidden}
)

// roleRank orders roles by privilege. Unknown roles rank below every known
// role; unknown requirements rank above every known role, so a typo in a
// route's role requirement denies access instead of granting it.
func roleRank(role string) int {
	switch role {
	case store.RoleUser:
		return 1
	case store.RoleEditor:
		return 2
	case store.RoleAdmin:
		return 3
	default:
		return 0
	}
}

func requiredRank(role string) int {
	if rank := roleRank(role); rank > 0 {
		return rank
	}
	return 99
}

// RoleSatisfies reports whether a user holding role meets the requirement.
func RoleSatisfies(role, required string) bool {
	return roleRank(role) >= requiredRank(required)
}

// Authenticator resolves bearer tokens to active users.
type Authenticator struct {
	sessions SessionStore
	users    store.Users
	now      func() time.Time
}

// NewAuthenticator creates an Authenticator over the given stores.
func NewAuthenticator(sessions SessionStore, users store.Users) *Authenticator {
	return &Authenticator{sessions: sessions, users: users, now: time.Now}
}

// SetNow overrides the clock, for tests.
func (a *Authenticator) SetNow(now func() time.Time) {
	a.now = now
}

// ExtractBearer pulls the token out of an Authorization header. The scheme
// is matched case-insensitively and surrounding whitespace is tolerated;
// an empty string means no usable token was presented.
func ExtractBearer(header string) string {
	header = strings.TrimSpace(header)
	if header == "" {
		return ""
	}
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// Authenticate resolves the request's bearer token to an active user.
// Failures return *AuthError carrying the status and client message:
// missing token and dead sessions are 401, a disabled account is 403.
// An expired session found during lookup is deleted on the spot.
func (a *Authenticator) Authenticate(ctx context.Context, r *http.Request) (*store.User, error) {
	token := ExtractBearer(r.Header.Get("Authorization"))
	if token == "" {
		return nil, errMissingToken
	}

	session, err := a.sessions.Get(ctx, token)
	if errors.Is(err, ErrSessionNotFound) {
		return nil, errInvalidSession
	}
	if err != nil {
		return nil, fmt.Errorf("resolve session: %w", err)
	}

	if session.Expired(a.now()) {
		if err := a.sessions.Delete(ctx, token); err != nil {
			logger := logging.Ctx(ctx)
			logger.Warn().Err(err).Msg("Failed to delete expired session")
		}
		return nil, errInvalidSession
	}

	user, err := a.users.GetByID(ctx, session.UserID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, errInvalidSession
	}
	if err != nil {
		return nil, fmt.Errorf("resolve session user: %w", err)
	}

	if !user.Active {
		return nil, errAccountDisabled
	}
	return user, nil
}

// Login verifies credentials and opens a session. verify is the password
// check (bcrypt comparison lives with the handler so the authenticator
// stays hash-agnostic).
func (a *Authenticator) Login(ctx context.Context, username string, verify func(*store.User) bool, ttl time.Duration) (*store.User, *Session, error) {
	user, err := a.users.GetByUsername(ctx, username)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil, errInvalidCredentials
	}
	if err != nil {
		return nil, nil, fmt.Errorf("lookup user: %w", err)
	}
	if !verify(user) {
		return nil, nil, errInvalidCredentials
	}
	if !user.Active {
		return nil, nil, errAccountDisabled
	}

	session, err := NewSession(user.ID, ttl, a.now())
	if err != nil {
		return nil, nil, err
	}
	if err := a.sessions.Put(ctx, session); err != nil {
		return nil, nil, fmt.Errorf("store session: %w", err)
	}
	return user, session, nil
}

// MsgInvalidCredentials is returned on a bad username or password.
const MsgInvalidCredentials = "Tên đăng nhập hoặc mật khẩu không đúng"

var errInvalidCredentials = &AuthError{Status: http.StatusUnauthorized, Message: MsgInvalidCredentials}

// Logout deletes the request's session, if one was presented.
func (a *Authenticator) Logout(ctx context.Context, r *http.Request) error {
	token := ExtractBearer(r.Header.Get("Authorization"))
	if token == "" {
		return nil
	}
	return a.sessions.Delete(ctx, token)
}
