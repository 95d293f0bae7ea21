// Sportline - Sports News Platform Backend
// Copyright 2026 Sportline Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/sportlinehq/sportline

// Package api holds the HTTP handlers and the response writer shared by
// all of them. Every response is one of two envelopes: successes carry
// {"success": true, ...} and failures carry {"error": true, "message": ...}
// with the message in the client's display language.
package api

import (
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"strconv"
	"time"

	"github.com/goccy/go-json"

	"github.com/sportlinehq/sportline/internal/logging"
	"github.com/sportlinehq/sportline/internal/metrics"
)

// MsgInternalError is the client-facing message for unexpected failures.
// Internal detail goes to the log, never to the client.
const MsgInternalError = "Đã xảy ra lỗi hệ thống"

// etagFor derives a strong validator from the serialized body. Payload
// serialization is deterministic, so equal payloads always produce equal
// tags.
func etagFor(body []byte) string {
	sum := sha256.Sum256(body)
	return `"` + hex.EncodeToString(sum[:]) + `"`
}

// etagMatches implements the If-None-Match comparison, tolerating a list
// of candidates and weak-validator prefixes.
func etagMatches(header, etag string) bool {
	if header == "" {
		return false
	}
	if header == "*" {
		return true
	}
	for _, candidate := range splitETags(header) {
		if len(candidate) > 2 && candidate[:2] == "W/" {
			candidate = candidate[2:]
		}
		if candidate == etag {
			return true
		}
	}
	return false
}

func splitETags(header string) []string {
	var out []string
	start := -1
	for i := 0; i < len(header); i++ {
		switch header[i] {
		case '"':
			if start < 0 {
				// Include a preceding weak prefix.
				start = i
				if i >= 2 && header[i-2] == 'W' && header[i-1] == '/' {
					start = i - 2
				}
			} else {
				out = append(out, header[start:i+1])
				start = -1
			}
		}
	}
	return out
}

// SendJSON writes body as the response with HTTP cache semantics.
//
// With cacheSeconds > 0 the response carries a strong ETag plus
// Cache-Control and Expires headers, and a request whose If-None-Match
// matches is answered 304 with no body. With cacheSeconds == 0 the
// response forbids caching and is never answered 304.
func SendJSON(w http.ResponseWriter, r *http.Request, status int, body interface{}, cacheSeconds int) {
	raw, err := json.Marshal(body)
	if err != nil {
		logger := logging.Ctx(r.Context())
		logger.Error().Err(err).Msg("Response encode failed")
		WriteError(w, r, http.StatusInternalServerError, MsgInternalError)
		return
	}

	h := w.Header()
	h.Set("Content-Type", "application/json; charset=utf-8")

	if cacheSeconds > 0 {
		etag := etagFor(raw)
		h.Set("ETag", etag)
		h.Set("Cache-Control", "public, max-age="+strconv.Itoa(cacheSeconds))
		h.Set("Expires", time.Now().Add(time.Duration(cacheSeconds)*time.Second).UTC().Format(http.TimeFormat))

		if status == http.StatusOK && etagMatches(r.Header.Get("If-None-Match"), etag) {
			metrics.NotModifiedTotal.Inc()
			w.WriteHeader(http.StatusNotModified)
			return
		}
	} else {
		h.Set("Cache-Control", "no-store, no-cache, must-revalidate")
		h.Set("Pragma", "no-cache")
	}

	h.Set("Content-Length", strconv.Itoa(len(raw)))
	w.WriteHeader(status)
	if r.Method != http.MethodHead {
		//nolint:errcheck // nothing useful to do if the client went away
		w.Write(raw)
	}
}

// WriteData sends {"success": true, "data": data}.
func WriteData(w http.ResponseWriter, r *http.Request, data interface{}, cacheSeconds int) {
	SendJSON(w, r, http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    data,
	}, cacheSeconds)
}

// WriteSuccess sends an arbitrary success envelope; extra is merged over
// the base {"success": true}.
func WriteSuccess(w http.ResponseWriter, r *http.Request, extra map[string]interface{}) {
	body := map[string]interface{}{"success": true}
	for k, v := range extra {
		body[k] = v
	}
	SendJSON(w, r, http.StatusOK, body, 0)
}

// WriteMessage sends {"success": true, "message": message}, uncached.
func WriteMessage(w http.ResponseWriter, r *http.Request, message string) {
	SendJSON(w, r, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": message,
	}, 0)
}

// WriteError sends the error envelope, always uncached.
func WriteError(w http.ResponseWriter, r *http.Request, status int, message string) {
	WriteErrorDetails(w, r, status, message, nil)
}

// WriteErrorDetails is WriteError with a details object for the client.
func WriteErrorDetails(w http.ResponseWriter, r *http.Request, status int, message string, details interface{}) {
	body := map[string]interface{}{
		"error":   true,
		"message": message,
	}
	if details != nil {
		body["details"] = details
	}

	raw, err := json.Marshal(body)
	if err != nil {
		logger := logging.Ctx(r.Context())
		logger.Error().Err(err).Msg("Error envelope encode failed")
		http.Error(w, MsgInternalError, http.StatusInternalServerError)
		return
	}

	h := w.Header()
	h.Set("Content-Type", "application/json; charset=utf-8")
	h.Set("Cache-Control", "no-store, no-cache, must-revalidate")
	w.WriteHeader(status)
	//nolint:errcheck // nothing useful to do if the client went away
	w.Write(raw)
}
