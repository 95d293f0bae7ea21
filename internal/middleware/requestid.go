// Sportline - Sports News Platform Backend
// Copyright 2026 Sportline Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/sportlinehq/sportline

// Package middleware holds the HTTP middleware applied around route
// handlers: request identity, panic recovery, CORS, access logging and
// per-route metrics.
package middleware

import (
	"net/http"

	"github.com/sportlinehq/sportline/internal/logging"
)

// RequestID assigns every request an identifier, honoring one supplied by
// the client or an upstream proxy. The identifier rides the request
// context into every log line and is echoed back in X-Request-ID.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = logging.GenerateRequestID()
		}
		w.Header().Set("X-Request-ID", requestID)
		ctx := logging.ContextWithRequestID(r.Context(), requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
