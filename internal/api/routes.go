// Sportline - Sports News Platform Backend
// Copyright 2026 Sportline Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/sportlinehq/sportline

package api

import (
	"net/http"
	"time"

	"github.com/sportlinehq/sportline/internal/metrics"
	"github.com/sportlinehq/sportline/internal/middleware"
	"github.com/sportlinehq/sportline/internal/ratelimit"
	"github.com/sportlinehq/sportline/internal/router"
	"github.com/sportlinehq/sportline/internal/store"
)

// Limits carries the rate-limit windows applied at registration.
type Limits struct {
	Global       int
	GlobalWindow time.Duration
	Login        int
	LoginWindow  time.Duration
	Write        int
	WriteWindow  time.Duration
}

// Register installs every route on rt. Routes are matched in registration
// order; handlers get their template-scoped metrics and rate limits as
// route middleware.
func (h *Handlers) Register(rt *router.Router, limiter *ratelimit.Limiter, limits Limits) error {
	rt.Use(limiter.Middleware("global", limits.Global, limits.GlobalWindow))

	loginLimit := limiter.Middleware("login", limits.Login, limits.LoginWindow)
	writeLimit := limiter.Middleware("write", limits.Write, limits.WriteWindow)
	requireUser := h.auth.Require()
	requireEditor := h.auth.RequireRole(store.RoleEditor)
	optionalUser := h.auth.Optional()

	type route struct {
		method   string
		template string
		handler  http.Handler
		mw       []router.Middleware
	}
	routes := []route{
		{http.MethodGet, "/health", http.HandlerFunc(h.Health), nil},
		{http.MethodGet, "/metrics", metrics.Handler(), nil},

		{http.MethodPost, "/auth/login", http.HandlerFunc(h.Login), []router.Middleware{loginLimit}},
		{http.MethodPost, "/auth/logout", http.HandlerFunc(h.Logout), []router.Middleware{requireUser}},
		{http.MethodGet, "/profile", http.HandlerFunc(h.Profile), []router.Middleware{requireUser}},
		{http.MethodPut, "/profile", http.HandlerFunc(h.UpdateProfile), []router.Middleware{requireUser, writeLimit}},

		{http.MethodGet, "/articles", http.HandlerFunc(h.ListArticles), nil},
		{http.MethodPost, "/articles", http.HandlerFunc(h.CreateArticle), []router.Middleware{requireEditor, writeLimit}},
		{http.MethodGet, "/articles/:id", http.HandlerFunc(h.GetArticle), []router.Middleware{optionalUser}},
		{http.MethodPut, "/articles/:id", http.HandlerFunc(h.UpdateArticle), []router.Middleware{requireEditor, writeLimit}},
		{http.MethodDelete, "/articles/:id", http.HandlerFunc(h.DeleteArticle), []router.Middleware{requireEditor, writeLimit}},

		{http.MethodGet, "/articles/:id/comments", http.HandlerFunc(h.ListComments), nil},
		{http.MethodPost, "/articles/:id/comments", http.HandlerFunc(h.CreateComment), []router.Middleware{requireUser, writeLimit}},
		{http.MethodDelete, "/comments/:id", http.HandlerFunc(h.DeleteComment), []router.Middleware{requireUser, writeLimit}},

		{http.MethodPost, "/articles/:id/like", http.HandlerFunc(h.ToggleLike), []router.Middleware{requireUser, writeLimit}},
		{http.MethodPost, "/articles/:id/favorite", http.HandlerFunc(h.ToggleFavorite), []router.Middleware{requireUser, writeLimit}},
		{http.MethodGet, "/favorites", http.HandlerFunc(h.ListFavorites), []router.Middleware{requireUser}},

		{http.MethodGet, "/matches", http.HandlerFunc(h.ListMatches), nil},
		{http.MethodGet, "/matches/:id", http.HandlerFunc(h.GetMatch), nil},
		{http.MethodGet, "/teams", http.HandlerFunc(h.ListTeams), nil},
		{http.MethodGet, "/teams/:id", http.HandlerFunc(h.GetTeam), nil},
		{http.MethodGet, "/videos", http.HandlerFunc(h.ListVideos), nil},
	}

	for _, rte := range routes {
		mw := append([]router.Middleware{middleware.Metrics(rte.template)}, rte.mw...)
		if err := rt.Handle(rte.method, rte.template, rte.handler, mw...); err != nil {
			return err
		}
	}
	return nil
}
