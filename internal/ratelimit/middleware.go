// Sportline - Sports News Platform Backend
// Copyright 2026 Sportline Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/sportlinehq/sportline

package ratelimit

import (
	"net/http"
	"strconv"
	"time"

	"github.com/goccy/go-json"

	"github.com/sportlinehq/sportline/internal/logging"
	"github.com/sportlinehq/sportline/internal/metrics"
	"github.com/sportlinehq/sportline/internal/router"
)

// MsgTooManyRequests is the client-facing throttle message.
const MsgTooManyRequests = "Quá nhiều yêu cầu. Vui lòng thử lại sau."

// Middleware limits requests per client IP to limit per window. scope
// separates windows between endpoints: the global limiter and a stricter
// login limiter count independently for the same client.
func (l *Limiter) Middleware(scope string, limit int, window time.Duration) router.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identifier := scope + "|" + ClientIP(r)
			result := l.Check(r.Context(), identifier, limit, window)

			h := w.Header()
			h.Set("X-RateLimit-Limit", strconv.Itoa(result.Limit))
			h.Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
			h.Set("X-RateLimit-Reset", strconv.FormatInt(result.Reset.Unix(), 10))

			if !result.Allowed {
				retryAfter := int(result.RetryAfter.Round(time.Second).Seconds())
				if retryAfter < 1 {
					retryAfter = 1
				}
				h.Set("Retry-After", strconv.Itoa(retryAfter))
				h.Set("Content-Type", "application/json; charset=utf-8")

				metrics.RateLimitRejections.WithLabelValues(scope).Inc()
				logger := logging.Ctx(r.Context())
				logger.Warn().
					Str("scope", scope).
					Str("client_ip", ClientIP(r)).
					Int("retry_after", retryAfter).
					Msg("Request rate limited")

				w.WriteHeader(http.StatusTooManyRequests)
				//nolint:errcheck // nothing useful to do if the client went away
				json.NewEncoder(w).Encode(map[string]interface{}{
					"error":   true,
					"message": MsgTooManyRequests,
					"details": map[string]int{"retry_after": retryAfter},
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
