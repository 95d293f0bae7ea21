// Sportline - Sports News Platform Backend
// Copyright 2026 Sportline Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/sportlinehq/sportline

package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/goccy/go-json"

	"github.com/sportlinehq/sportline/internal/logging"
	"github.com/sportlinehq/sportline/internal/metrics"
)

// Error codes attached to panic responses. Handler panics carry
// CodeInternalError; panics escaping the dispatch pipeline itself carry
// CodeFatalError.
const (
	CodeInternalError = "INTERNAL_ERROR"
	CodeFatalError    = "FATAL_ERROR"
)

// msgInternalError mirrors the api package's generic failure message.
// Duplicated here so the recovery boundary has no handler dependencies.
const msgInternalError = "Đã xảy ra lỗi hệ thống"

// Recover converts a panic into a 500 with the generic error envelope and
// the given error code. The panic value and stack go to the log only.
func Recover(code string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}

				metrics.PanicsRecovered.Inc()
				logger := logging.Ctx(r.Context())
				logger.Error().
					Interface("panic", rec).
					Str("method", r.Method).
					Str("path", r.URL.Path).
					Bytes("stack", debug.Stack()).
					Msg("Recovered from handler panic")

				// Best effort: the handler may already have written.
				w.Header().Set("Content-Type", "application/json; charset=utf-8")
				w.WriteHeader(http.StatusInternalServerError)
				//nolint:errcheck // nothing useful to do if the client went away
				json.NewEncoder(w).Encode(map[string]interface{}{
					"error":      true,
					"message":    msgInternalError,
					"error_code": code,
				})
			}()
			next.ServeHTTP(w, r)
		})
	}
}
