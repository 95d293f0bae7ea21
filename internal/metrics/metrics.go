// Sportline - Sports News Platform Backend
// Copyright 2026 Sportline Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/sportlinehq/sportline

// Package metrics exposes the service's Prometheus collectors. Collectors
// are package-level and registered once via promauto; handlers and
// middleware record into them directly.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// RequestsTotal counts completed HTTP requests by route and status.
	RequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "sportline",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Completed HTTP requests.",
	}, []string{"method", "route", "status"})

	// RequestDuration observes request latency by route.
	RequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "sportline",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency.",
		Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
	}, []string{"method", "route"})

	// RateLimitRejections counts throttled requests by limiter scope.
	RateLimitRejections = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "sportline",
		Subsystem: "ratelimit",
		Name:      "rejections_total",
		Help:      "Requests rejected by the rate limiter.",
	}, []string{"scope"})

	// CacheHits counts response-cache hits by layer (memory or kv).
	CacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "sportline",
		Subsystem: "cache",
		Name:      "hits_total",
		Help:      "Response cache hits.",
	}, []string{"layer"})

	// CacheMisses counts response-cache misses.
	CacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "sportline",
		Subsystem: "cache",
		Name:      "misses_total",
		Help:      "Response cache misses.",
	})

	// NotModifiedTotal counts conditional requests answered with 304.
	NotModifiedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "sportline",
		Subsystem: "http",
		Name:      "not_modified_total",
		Help:      "Conditional requests answered with 304 Not Modified.",
	})

	// PanicsRecovered counts panics caught at the request boundary.
	PanicsRecovered = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "sportline",
		Subsystem: "http",
		Name:      "panics_recovered_total",
		Help:      "Handler panics recovered by the boundary middleware.",
	})
)

// Handler returns the Prometheus scrape endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
