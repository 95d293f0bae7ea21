// Sportline - Sports News Platform Backend
// Copyright 2026 Sportline Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/sportlinehq/sportline

package auth

import (
	"context"
	"errors"
	"net/http"

	"github.com/goccy/go-json"

	"github.com/sportlinehq/sportline/internal/logging"
	"github.com/sportlinehq/sportline/internal/router"
	"github.com/sportlinehq/sportline/internal/store"
)

type userContextKey struct{}

// ContextWithUser stores the authenticated user in ctx.
func ContextWithUser(ctx context.Context, user *store.User) context.Context {
	return context.WithValue(ctx, userContextKey{}, user)
}

// UserFromContext returns the authenticated user, or nil for anonymous
// requests.
func UserFromContext(ctx context.Context) *store.User {
	user, _ := ctx.Value(userContextKey{}).(*store.User)
	return user
}

// writeAuthError emits the standard error envelope for an auth failure.
func writeAuthError(w http.ResponseWriter, authErr *AuthError) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(authErr.Status)
	//nolint:errcheck // nothing useful to do if the client went away
	json.NewEncoder(w).Encode(map[string]interface{}{
		"error":   true,
		"message": authErr.Message,
	})
}

func handleAuthFailure(w http.ResponseWriter, r *http.Request, err error) {
	var authErr *AuthError
	if errors.As(err, &authErr) {
		writeAuthError(w, authErr)
		return
	}
	logger := logging.Ctx(r.Context())
	logger.Error().Err(err).Msg("Authentication backend failure")
	writeAuthError(w, errInvalidSession)
}

// Require is a middleware that rejects requests without a live session.
// The authenticated user is placed in the request context.
func (a *Authenticator) Require() router.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, err := a.Authenticate(r.Context(), r)
			if err != nil {
				handleAuthFailure(w, r, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(ContextWithUser(r.Context(), user)))
		})
	}
}

// RequireRole is Require plus a minimum-role check. A valid session held
// by a user below the required role is a 403.
func (a *Authenticator) RequireRole(required string) router.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, err := a.Authenticate(r.Context(), r)
			if err != nil {
				handleAuthFailure(w, r, err)
				return
			}
			if !RoleSatisfies(user.Role, required) {
				logger := logging.Ctx(r.Context())
				logger.Warn().
					Str("user_id", user.ID).
					Str("role", user.Role).
					Str("required", required).
					Msg("Role check failed")
				writeAuthError(w, errForbidden)
				return
			}
			next.ServeHTTP(w, r.WithContext(ContextWithUser(r.Context(), user)))
		})
	}
}

// Optional attaches the user when a valid session is presented and passes
// the request through anonymously otherwise. Used by public endpoints
// that personalize their payload (liked/saved flags) for signed-in users.
func (a *Authenticator) Optional() router.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if ExtractBearer(r.Header.Get("Authorization")) != "" {
				if user, err := a.Authenticate(r.Context(), r); err == nil {
					r = r.WithContext(ContextWithUser(r.Context(), user))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}
