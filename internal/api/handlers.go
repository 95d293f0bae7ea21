// Sportline - Sports News Platform Backend
// Copyright 2026 Sportline Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/sportlinehq/sportline

package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/goccy/go-json"

	"github.com/sportlinehq/sportline/internal/auth"
	"github.com/sportlinehq/sportline/internal/cache"
	"github.com/sportlinehq/sportline/internal/logging"
	"github.com/sportlinehq/sportline/internal/router"
	"github.com/sportlinehq/sportline/internal/store"
)

// Client-facing lookup failure messages.
const (
	MsgArticleNotFound = "Không tìm thấy bài viết"
	MsgMatchNotFound   = "Không tìm thấy trận đấu"
	MsgTeamNotFound    = "Không tìm thấy đội bóng"
	MsgCommentNotFound = "Không tìm thấy bình luận"
)

// Cache lifetimes per content family, in seconds. The same value feeds
// the named-key cache TTL and the client Cache-Control max-age.
const (
	cacheArticleList = 60
	cacheArticleItem = 120
	cacheMatchList   = 30
	cacheTeamList    = 3600
	cacheVideoList   = 300
)

// Handlers bundles the dependencies the HTTP handlers share.
type Handlers struct {
	store      store.Store
	auth       *auth.Authenticator
	cache      *cache.Cache
	sessionTTL time.Duration
	startedAt  time.Time
}

// NewHandlers wires the handler set.
func NewHandlers(st store.Store, authn *auth.Authenticator, ca *cache.Cache, sessionTTL time.Duration) *Handlers {
	return &Handlers{
		store:      st,
		auth:       authn,
		cache:      ca,
		sessionTTL: sessionTTL,
		startedAt:  time.Now(),
	}
}

// failInternal logs the cause and answers with the generic 500 envelope.
func failInternal(w http.ResponseWriter, r *http.Request, err error) {
	logger := logging.Ctx(r.Context())
	logger.Error().Err(err).Msg("Handler failure")
	WriteError(w, r, http.StatusInternalServerError, MsgInternalError)
}

// cachedData runs the named-key cache around produce and sends the result
// in the success envelope with matching client cache headers.
func (h *Handlers) cachedData(w http.ResponseWriter, r *http.Request, key string, seconds int, produce func(context.Context) (interface{}, error)) {
	payload, _, err := h.cache.Do(r.Context(), key, time.Duration(seconds)*time.Second, produce)
	if err != nil {
		failInternal(w, r, err)
		return
	}
	WriteData(w, r, json.RawMessage(payload), seconds)
}

// Health reports liveness. Never cached, never authenticated.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	SendJSON(w, r, http.StatusOK, map[string]interface{}{
		"success": true,
		"status":  "ok",
		"uptime":  int64(time.Since(h.startedAt).Seconds()),
	}, 0)
}

// ListArticles serves the article feed, optionally filtered by ?category=.
func (h *Handlers) ListArticles(w http.ResponseWriter, r *http.Request) {
	limit, offset := Pagination(r)
	category := router.Param(r, "category")
	key := fmt.Sprintf("articles:list:%s:%d:%d", category, limit, offset)

	h.cachedData(w, r, key, cacheArticleList, func(ctx context.Context) (interface{}, error) {
		articles, err := h.store.Articles().List(ctx, category, limit, offset)
		if err != nil {
			return nil, fmt.Errorf("list articles: %w", err)
		}
		if articles == nil {
			articles = []*store.Article{}
		}
		return articles, nil
	})
}

// articleView is an article plus its social counters and, for signed-in
// readers, their personal liked/saved state.
type articleView struct {
	*store.Article
	LikeCount int64 `json:"like_count"`
	Liked     *bool `json:"liked,omitempty"`
	Saved     *bool `json:"saved,omitempty"`
}

func (h *Handlers) articleView(ctx context.Context, article *store.Article, user *store.User) (*articleView, error) {
	likeCount, err := h.store.Likes().Count(ctx, article.ID)
	if err != nil {
		return nil, fmt.Errorf("count likes: %w", err)
	}
	view := &articleView{Article: article, LikeCount: likeCount}

	if user != nil {
		liked, err := h.store.Likes().Liked(ctx, user.ID, article.ID)
		if err != nil {
			return nil, fmt.Errorf("check like: %w", err)
		}
		saved, err := h.store.Favorites().Has(ctx, user.ID, article.ID)
		if err != nil {
			return nil, fmt.Errorf("check favorite: %w", err)
		}
		view.Liked = &liked
		view.Saved = &saved
	}
	return view, nil
}

// GetArticle serves one article and counts the view. Anonymous requests
// are served from the shared cache; signed-in requests are personalized
// and bypass it.
func (h *Handlers) GetArticle(w http.ResponseWriter, r *http.Request) {
	id := router.Param(r, "id")
	user := auth.UserFromContext(r.Context())

	article, err := h.store.Articles().Get(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		WriteError(w, r, http.StatusNotFound, MsgArticleNotFound)
		return
	}
	if err != nil {
		failInternal(w, r, err)
		return
	}

	if err := h.store.Articles().IncrementViews(r.Context(), id); err != nil {
		logger := logging.Ctx(r.Context())
		logger.Warn().Err(err).Str("article_id", id).Msg("View count update failed")
	}

	if user != nil {
		view, err := h.articleView(r.Context(), article, user)
		if err != nil {
			failInternal(w, r, err)
			return
		}
		WriteData(w, r, view, 0)
		return
	}

	key := "articles:item:" + id
	h.cachedData(w, r, key, cacheArticleItem, func(ctx context.Context) (interface{}, error) {
		return h.articleView(ctx, article, nil)
	})
}

// ListMatches serves fixtures, optionally filtered by ?status=.
func (h *Handlers) ListMatches(w http.ResponseWriter, r *http.Request) {
	limit, offset := Pagination(r)
	status := router.Param(r, "status")
	key := fmt.Sprintf("matches:list:%s:%d:%d", status, limit, offset)

	h.cachedData(w, r, key, cacheMatchList, func(ctx context.Context) (interface{}, error) {
		matches, err := h.store.Matches().List(ctx, status, limit, offset)
		if err != nil {
			return nil, fmt.Errorf("list matches: %w", err)
		}
		if matches == nil {
			matches = []*store.Match{}
		}
		return matches, nil
	})
}

// GetMatch serves one fixture.
func (h *Handlers) GetMatch(w http.ResponseWriter, r *http.Request) {
	id := router.Param(r, "id")
	match, err := h.store.Matches().Get(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		WriteError(w, r, http.StatusNotFound, MsgMatchNotFound)
		return
	}
	if err != nil {
		failInternal(w, r, err)
		return
	}
	WriteData(w, r, match, cacheMatchList)
}

// ListTeams serves the team directory.
func (h *Handlers) ListTeams(w http.ResponseWriter, r *http.Request) {
	h.cachedData(w, r, "teams:list", cacheTeamList, func(ctx context.Context) (interface{}, error) {
		teams, err := h.store.Teams().List(ctx)
		if err != nil {
			return nil, fmt.Errorf("list teams: %w", err)
		}
		if teams == nil {
			teams = []*store.Team{}
		}
		return teams, nil
	})
}

// GetTeam serves one team.
func (h *Handlers) GetTeam(w http.ResponseWriter, r *http.Request) {
	id := router.Param(r, "id")
	team, err := h.store.Teams().Get(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		WriteError(w, r, http.StatusNotFound, MsgTeamNotFound)
		return
	}
	if err != nil {
		failInternal(w, r, err)
		return
	}
	WriteData(w, r, team, cacheTeamList)
}

// ListVideos serves the video feed.
func (h *Handlers) ListVideos(w http.ResponseWriter, r *http.Request) {
	limit, offset := Pagination(r)
	key := fmt.Sprintf("videos:list:%d:%d", limit, offset)

	h.cachedData(w, r, key, cacheVideoList, func(ctx context.Context) (interface{}, error) {
		videos, err := h.store.Videos().List(ctx, limit, offset)
		if err != nil {
			return nil, fmt.Errorf("list videos: %w", err)
		}
		if videos == nil {
			videos = []*store.Video{}
		}
		return videos, nil
	})
}
