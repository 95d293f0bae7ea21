// Sportline - Sports News Platform Backend
// Copyright 2026 Sportline Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/sportlinehq/sportline

package middleware

import (
	"net/http"

	"github.com/go-chi/cors"
)

// CORS builds the cross-origin policy for the mobile and web clients. All
// origins are allowed; the API authenticates with bearer tokens, not
// cookies, so there is no credentialed-origin concern. Preflight OPTIONS
// requests are answered 200 here and never reach the router.
func CORS(next http.Handler) http.Handler {
	policy := cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{
			http.MethodGet, http.MethodPost, http.MethodPut,
			http.MethodDelete, http.MethodOptions,
		},
		AllowedHeaders: []string{
			"Accept", "Authorization", "Content-Type",
			"If-None-Match", "X-Request-ID",
		},
		ExposedHeaders: []string{
			"ETag", "X-Request-ID", "X-RateLimit-Limit",
			"X-RateLimit-Remaining", "X-RateLimit-Reset", "Retry-After",
		},
		MaxAge: 300,
	})

	inner := policy(next)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions {
			// Preflights short-circuit with 200, not the default 204, for
			// clients that treat anything but 200 as a failure.
			policy(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusOK)
			})).ServeHTTP(w, r)
			return
		}
		inner.ServeHTTP(w, r)
	})
}
