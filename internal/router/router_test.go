// Sportline - Sports News Platform Backend
// Copyright 2026 Sportline Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/sportlinehq/sportline

package router

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func okHandler(tag string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		//nolint:errcheck
		w.Write([]byte(tag))
	}
}

func TestRouterFirstMatchWins(t *testing.T) {
	t.Parallel()

	rt := New("")
	if err := rt.HandleFunc(http.MethodGet, "/articles/featured", okHandler("featured")); err != nil {
		t.Fatal(err)
	}
	if err := rt.HandleFunc(http.MethodGet, "/articles/:id", okHandler("by-id")); err != nil {
		t.Fatal(err)
	}

	rec := httptest.NewRecorder()
	rt.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/articles/featured", nil))
	if rec.Body.String() != "featured" {
		t.Errorf("body = %q, want the earlier registration to win", rec.Body.String())
	}

	rec = httptest.NewRecorder()
	rt.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/articles/42", nil))
	if rec.Body.String() != "by-id" {
		t.Errorf("body = %q, want by-id", rec.Body.String())
	}
}

func TestRouterMethodMismatchIs404(t *testing.T) {
	t.Parallel()

	rt := New("")
	if err := rt.HandleFunc(http.MethodGet, "/articles", okHandler("list")); err != nil {
		t.Fatal(err)
	}

	rec := httptest.NewRecorder()
	rt.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/articles", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404 (never 405)", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Không tìm thấy đường dẫn") {
		t.Errorf("body = %q, want the not-found envelope", rec.Body.String())
	}
}

func TestRouterParamsMergeQueryAndPath(t *testing.T) {
	t.Parallel()

	rt := New("")
	var got map[string]string
	err := rt.HandleFunc(http.MethodGet, "/articles/:id", func(w http.ResponseWriter, r *http.Request) {
		got = Params(r)
	})
	if err != nil {
		t.Fatal(err)
	}

	rec := httptest.NewRecorder()
	rt.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/articles/real?id=spoofed&page=2", nil))

	if got["id"] != "real" {
		t.Errorf("id = %q, want path parameter to shadow query", got["id"])
	}
	if got["page"] != "2" {
		t.Errorf("page = %q, want query parameter preserved", got["page"])
	}
}

func TestRouterBasePath(t *testing.T) {
	t.Parallel()

	rt := New("/api/v1")
	if err := rt.HandleFunc(http.MethodGet, "/health", okHandler("ok")); err != nil {
		t.Fatal(err)
	}

	rec := httptest.NewRecorder()
	rt.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))
	if rec.Body.String() != "ok" {
		t.Errorf("body = %q, want base-path-stripped match", rec.Body.String())
	}

	rec = httptest.NewRecorder()
	rt.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Body.String() != "ok" {
		t.Errorf("body = %q, want direct path to match too", rec.Body.String())
	}
}

func TestRouterMiddlewareOrder(t *testing.T) {
	t.Parallel()

	var order []string
	tag := func(name string) Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	rt := New("")
	rt.Use(tag("global1"), tag("global2"))
	err := rt.HandleFunc(http.MethodGet, "/x", func(w http.ResponseWriter, r *http.Request) {
		order = append(order, "handler")
	}, tag("route1"), tag("route2"))
	if err != nil {
		t.Fatal(err)
	}

	rt.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/x", nil))

	want := []string{"global1", "global2", "route1", "route2", "handler"}
	if len(order) != len(want) {
		t.Fatalf("order = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("order = %v, want %v", order, want)
		}
	}
}

func TestRouterMiddlewareShortCircuit(t *testing.T) {
	t.Parallel()

	deny := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTeapot)
		})
	}

	rt := New("")
	reached := false
	err := rt.HandleFunc(http.MethodGet, "/x", func(w http.ResponseWriter, r *http.Request) {
		reached = true
	}, deny)
	if err != nil {
		t.Fatal(err)
	}

	rec := httptest.NewRecorder()
	rt.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))
	if rec.Code != http.StatusTeapot {
		t.Errorf("status = %d, want middleware response", rec.Code)
	}
	if reached {
		t.Error("handler ran despite middleware short-circuit")
	}
}

func TestRouterRegistrationErrors(t *testing.T) {
	t.Parallel()

	rt := New("")
	if err := rt.HandleFunc("PATCH", "/x", okHandler("x")); err == nil {
		t.Error("expected unsupported method to fail registration")
	}
	if err := rt.Handle(http.MethodGet, "/x", nil); err == nil {
		t.Error("expected nil handler to fail registration")
	}
	if err := rt.HandleFunc(http.MethodGet, "no-slash", okHandler("x")); err == nil {
		t.Error("expected malformed template to fail registration")
	}
}

func TestRouterLowercaseMethodNormalized(t *testing.T) {
	t.Parallel()

	rt := New("")
	if err := rt.HandleFunc(http.MethodGet, "/x", okHandler("x")); err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Method = "get"
	rec := httptest.NewRecorder()
	rt.ServeHTTP(rec, req)
	if rec.Body.String() != "x" {
		t.Errorf("body = %q, want lowercase method to dispatch", rec.Body.String())
	}
}
