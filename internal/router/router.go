// Sportline - Sports News Platform Backend
// Copyright 2026 Sportline Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/sportlinehq/sportline

// Package router implements the ordered route table at the center of the
// API. Routes are matched in registration order and the first route whose
// method and compiled template both match wins; register the more specific
// or more frequently hit routes first. A request whose path matches a route
// registered under a different method is a 404, never a 405.
package router

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/goccy/go-json"

	"github.com/sportlinehq/sportline/internal/logging"
)

// Middleware wraps a handler. A middleware short-circuits the pipeline by
// writing a response and not calling the wrapped handler.
type Middleware func(http.Handler) http.Handler

// Route is one registered (method, template, handler, middleware) tuple.
// Immutable after registration.
type Route struct {
	Method   string
	Template string

	matcher     *Matcher
	handler     http.Handler
	middlewares []Middleware
}

// Router dispatches one incoming request to exactly one handler.
type Router struct {
	basePath string
	routes   []*Route
	global   []Middleware
	notFound http.Handler
}

var allowedMethods = map[string]bool{
	http.MethodGet:    true,
	http.MethodPost:   true,
	http.MethodPut:    true,
	http.MethodDelete: true,
}

// New creates a Router. basePath is the deployment sub-path stripped from
// every request path before matching ("" or "/" for root deployments).
func New(basePath string) *Router {
	rt := &Router{basePath: basePath}
	rt.notFound = http.HandlerFunc(rt.defaultNotFound)
	return rt
}

// Use appends a global middleware, run before every route's own
// middlewares in registration order.
func (rt *Router) Use(mw ...Middleware) {
	rt.global = append(rt.global, mw...)
}

// Handle registers a route. It fails at startup, not at request time, when
// the method is unsupported or the template is malformed.
func (rt *Router) Handle(method, template string, handler http.Handler, mw ...Middleware) error {
	method = strings.ToUpper(method)
	if !allowedMethods[method] {
		return fmt.Errorf("register %s %s: unsupported method", method, template)
	}
	if handler == nil {
		return fmt.Errorf("register %s %s: nil handler", method, template)
	}

	matcher, err := CompileTemplate(template)
	if err != nil {
		return fmt.Errorf("register %s %s: %w", method, template, err)
	}

	rt.routes = append(rt.routes, &Route{
		Method:      method,
		Template:    template,
		matcher:     matcher,
		handler:     handler,
		middlewares: mw,
	})
	return nil
}

// HandleFunc registers a route with a plain handler function.
func (rt *Router) HandleFunc(method, template string, handler http.HandlerFunc, mw ...Middleware) error {
	return rt.Handle(method, template, handler, mw...)
}

// SetNotFound replaces the handler invoked when no route matches.
func (rt *Router) SetNotFound(h http.Handler) {
	rt.notFound = h
}

// Routes returns the registered routes in registration order.
func (rt *Router) Routes() []*Route {
	return rt.routes
}

// ServeHTTP normalizes the method and path, selects the first matching
// route and runs its pipeline: global middlewares, then route middlewares,
// then the handler with path parameters merged over query parameters.
func (rt *Router) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	method := strings.ToUpper(r.Method)
	path := NormalizePath(r.URL.Path, rt.basePath)

	for _, route := range rt.routes {
		if route.Method != method {
			continue
		}
		params, ok := route.matcher.Match(path)
		if !ok {
			continue
		}

		ctx := context.WithValue(r.Context(), paramsContextKey{}, mergeParams(r, params))
		handler := route.handler
		for i := len(route.middlewares) - 1; i >= 0; i-- {
			handler = route.middlewares[i](handler)
		}
		for i := len(rt.global) - 1; i >= 0; i-- {
			handler = rt.global[i](handler)
		}
		handler.ServeHTTP(w, r.WithContext(ctx))
		return
	}

	logger := logging.Ctx(r.Context())
	logger.Debug().
		Str("method", method).
		Str("path", path).
		Msg("No route matched")
	rt.notFound.ServeHTTP(w, r.WithContext(
		context.WithValue(r.Context(), notFoundPathContextKey{}, path)))
}

// mergeParams merges captured path parameters over query parameters; path
// parameters take precedence on name collision.
func mergeParams(r *http.Request, pathParams map[string]string) map[string]string {
	merged := make(map[string]string, len(pathParams)+4)
	for name, values := range r.URL.Query() {
		if len(values) > 0 {
			merged[name] = values[0]
		}
	}
	for name, value := range pathParams {
		merged[name] = value
	}
	return merged
}

type paramsContextKey struct{}

type notFoundPathContextKey struct{}

// Params returns the merged path+query parameters for the current request.
// Returns an empty map outside a dispatched route.
func Params(r *http.Request) map[string]string {
	if params, ok := r.Context().Value(paramsContextKey{}).(map[string]string); ok {
		return params
	}
	return map[string]string{}
}

// Param returns one named parameter, or "" when absent.
func Param(r *http.Request, name string) string {
	return Params(r)[name]
}

// NotFoundPath returns the normalized path recorded when dispatch found no
// route. Custom not-found handlers use it for diagnostics.
func NotFoundPath(r *http.Request) string {
	if path, ok := r.Context().Value(notFoundPathContextKey{}).(string); ok {
		return path
	}
	return NormalizePath(r.URL.Path, "")
}

// defaultNotFound reports the requested method and normalized path.
func (rt *Router) defaultNotFound(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusNotFound)
	//nolint:errcheck // nothing useful to do if the client went away
	json.NewEncoder(w).Encode(map[string]interface{}{
		"error":   true,
		"message": "Không tìm thấy đường dẫn",
		"details": map[string]string{
			"method": strings.ToUpper(r.Method),
			"path":   NotFoundPath(r),
		},
	})
}
