// Sportline - Sports News Platform Backend
// Copyright 2026 Sportline Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/sportlinehq/sportline

package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestSendJSONCacheableCarriesValidators(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/x", nil)
	SendJSON(rec, r, http.StatusOK, map[string]string{"a": "b"}, 60)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	etag := rec.Header().Get("ETag")
	if !strings.HasPrefix(etag, `"`) || !strings.HasSuffix(etag, `"`) {
		t.Errorf("ETag = %q, want a quoted strong validator", etag)
	}
	if got := rec.Header().Get("Cache-Control"); got != "public, max-age=60" {
		t.Errorf("Cache-Control = %q", got)
	}
	if rec.Header().Get("Expires") == "" {
		t.Error("Expires missing")
	}
}

func TestSendJSONEqualPayloadsEqualETags(t *testing.T) {
	t.Parallel()

	etagOf := func() string {
		rec := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/x", nil)
		SendJSON(rec, r, http.StatusOK, map[string]interface{}{
			"b": 2, "a": 1, "c": []string{"x", "y"},
		}, 60)
		return rec.Header().Get("ETag")
	}

	first, second := etagOf(), etagOf()
	if first == "" || first != second {
		t.Errorf("ETags differ for equal payloads: %q vs %q", first, second)
	}
}

func TestSendJSONNotModified(t *testing.T) {
	t.Parallel()

	body := map[string]string{"a": "b"}

	rec := httptest.NewRecorder()
	SendJSON(rec, httptest.NewRequest(http.MethodGet, "/x", nil), http.StatusOK, body, 60)
	etag := rec.Header().Get("ETag")

	r := httptest.NewRequest(http.MethodGet, "/x", nil)
	r.Header.Set("If-None-Match", etag)
	rec = httptest.NewRecorder()
	SendJSON(rec, r, http.StatusOK, body, 60)

	if rec.Code != http.StatusNotModified {
		t.Fatalf("status = %d, want 304", rec.Code)
	}
	if rec.Body.Len() != 0 {
		t.Errorf("304 carried a body: %q", rec.Body.String())
	}
	if rec.Header().Get("ETag") != etag {
		t.Error("304 must repeat the ETag")
	}
}

func TestSendJSONWeakAndListedValidatorsMatch(t *testing.T) {
	t.Parallel()

	body := map[string]string{"a": "b"}
	rec := httptest.NewRecorder()
	SendJSON(rec, httptest.NewRequest(http.MethodGet, "/x", nil), http.StatusOK, body, 60)
	etag := rec.Header().Get("ETag")

	for _, header := range []string{
		"W/" + etag,
		`"other", ` + etag,
		"*",
	} {
		r := httptest.NewRequest(http.MethodGet, "/x", nil)
		r.Header.Set("If-None-Match", header)
		rec = httptest.NewRecorder()
		SendJSON(rec, r, http.StatusOK, body, 60)
		if rec.Code != http.StatusNotModified {
			t.Errorf("If-None-Match %q: status = %d, want 304", header, rec.Code)
		}
	}
}

func TestSendJSONUncachedNever304(t *testing.T) {
	t.Parallel()

	body := map[string]string{"a": "b"}
	r := httptest.NewRequest(http.MethodGet, "/x", nil)
	// Even a matching validator must not produce a 304 on an uncached
	// response.
	r.Header.Set("If-None-Match", "*")
	rec := httptest.NewRecorder()
	SendJSON(rec, r, http.StatusOK, body, 0)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if rec.Header().Get("ETag") != "" {
		t.Error("uncached response must not carry an ETag")
	}
	if got := rec.Header().Get("Cache-Control"); got != "no-store, no-cache, must-revalidate" {
		t.Errorf("Cache-Control = %q", got)
	}
	if rec.Header().Get("Pragma") != "no-cache" {
		t.Error("Pragma missing on uncached response")
	}
}

func TestWriteErrorEnvelope(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	WriteError(rec, httptest.NewRequest(http.MethodGet, "/x", nil),
		http.StatusNotFound, MsgArticleNotFound)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, `"error":true`) {
		t.Errorf("body = %q, want error envelope", body)
	}
	if !strings.Contains(body, MsgArticleNotFound) {
		t.Errorf("body = %q, want the message", body)
	}
	if got := rec.Header().Get("Cache-Control"); !strings.Contains(got, "no-store") {
		t.Errorf("errors must be uncacheable, got Cache-Control = %q", got)
	}
}

func TestPagination(t *testing.T) {
	t.Parallel()

	cases := []struct {
		query      string
		wantLimit  int
		wantOffset int
	}{
		{"", 20, 0},
		{"?limit=5", 5, 0},
		{"?limit=5&offset=10", 5, 10},
		{"?limit=1000", 100, 0},
		{"?limit=-3&offset=-1", 20, 0},
		{"?limit=abc", 20, 0},
		{"?page=3", 20, 40},
		{"?limit=10&page=2", 10, 10},
	}
	for _, tc := range cases {
		r := httptest.NewRequest(http.MethodGet, "/articles"+tc.query, nil)
		limit, offset := Pagination(r)
		if limit != tc.wantLimit || offset != tc.wantOffset {
			t.Errorf("Pagination(%q) = (%d, %d), want (%d, %d)",
				tc.query, limit, offset, tc.wantLimit, tc.wantOffset)
		}
	}
}
