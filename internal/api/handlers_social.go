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

	"github.com/sportlinehq/sportline/internal/auth"
	"github.com/sportlinehq/sportline/internal/logging"
	"github.com/sportlinehq/sportline/internal/router"
	"github.com/sportlinehq/sportline/internal/store"
)

const cacheCommentList = 30

// ListComments serves an article's comments, newest first.
func (h *Handlers) ListComments(w http.ResponseWriter, r *http.Request) {
	articleID := router.Param(r, "id")
	limit, offset := Pagination(r)
	key := fmt.Sprintf("comments:article:%s:%d:%d", articleID, limit, offset)

	h.cachedData(w, r, key, cacheCommentList, func(ctx context.Context) (interface{}, error) {
		comments, err := h.store.Comments().ListByArticle(ctx, articleID, limit, offset)
		if err != nil {
			return nil, fmt.Errorf("list comments: %w", err)
		}
		if comments == nil {
			comments = []*store.Comment{}
		}
		return comments, nil
	})
}

type commentRequest struct {
	Content string `json:"content" validate:"required,min=1,max=2000"`
}

// CreateComment posts a comment on an article. Auth required.
func (h *Handlers) CreateComment(w http.ResponseWriter, r *http.Request) {
	articleID := router.Param(r, "id")
	var req commentRequest
	if err := DecodeValid(r, &req); err != nil {
		WriteError(w, r, http.StatusBadRequest, MsgInvalidBody)
		return
	}

	if _, err := h.store.Articles().Get(r.Context(), articleID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			WriteError(w, r, http.StatusNotFound, MsgArticleNotFound)
			return
		}
		failInternal(w, r, err)
		return
	}

	user := auth.UserFromContext(r.Context())
	comment := &store.Comment{
		ArticleID: articleID,
		UserID:    user.ID,
		Username:  user.Username,
		Content:   req.Content,
	}
	if err := h.store.Comments().Create(r.Context(), comment); err != nil {
		failInternal(w, r, err)
		return
	}

	h.invalidateComments(r, articleID)
	SendJSON(w, r, http.StatusCreated, map[string]interface{}{
		"success": true,
		"data":    comment,
	}, 0)
}

// DeleteComment removes a comment. The author may delete their own;
// admins may delete any.
func (h *Handlers) DeleteComment(w http.ResponseWriter, r *http.Request) {
	id := router.Param(r, "id")
	user := auth.UserFromContext(r.Context())

	comment, err := h.store.Comments().Get(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		WriteError(w, r, http.StatusNotFound, MsgCommentNotFound)
		return
	}
	if err != nil {
		failInternal(w, r, err)
		return
	}

	if comment.UserID != user.ID && !auth.RoleSatisfies(user.Role, store.RoleAdmin) {
		WriteError(w, r, http.StatusForbidden, auth.MsgForbidden)
		return
	}

	if err := h.store.Comments().Delete(r.Context(), id); err != nil {
		failInternal(w, r, err)
		return
	}
	h.invalidateComments(r, comment.ArticleID)
	WriteMessage(w, r, "Đã xóa bình luận")
}

func (h *Handlers) invalidateComments(r *http.Request, articleID string) {
	if err := h.cache.ClearPattern(r.Context(), "comments:article:"+articleID); err != nil {
		logger := logging.Ctx(r.Context())
		logger.Warn().Err(err).Msg("Comment cache invalidation failed")
	}
}

// ToggleLike flips the caller's like on an article and reports the new
// state with the updated count.
func (h *Handlers) ToggleLike(w http.ResponseWriter, r *http.Request) {
	articleID := router.Param(r, "id")
	user := auth.UserFromContext(r.Context())

	liked, err := h.store.Likes().Toggle(r.Context(), user.ID, articleID)
	if errors.Is(err, store.ErrNotFound) {
		WriteError(w, r, http.StatusNotFound, MsgArticleNotFound)
		return
	}
	if err != nil {
		failInternal(w, r, err)
		return
	}

	count, err := h.store.Likes().Count(r.Context(), articleID)
	if err != nil {
		failInternal(w, r, err)
		return
	}

	// The cached anonymous article view carries the like count.
	if err := h.cache.ClearKey(r.Context(), "articles:item:"+articleID); err != nil {
		logger := logging.Ctx(r.Context())
		logger.Warn().Err(err).Msg("Article cache invalidation failed")
	}

	WriteSuccess(w, r, map[string]interface{}{
		"liked":      liked,
		"like_count": count,
	})
}

// ToggleFavorite flips the caller's saved state for an article.
func (h *Handlers) ToggleFavorite(w http.ResponseWriter, r *http.Request) {
	articleID := router.Param(r, "id")
	user := auth.UserFromContext(r.Context())

	saved, err := h.store.Favorites().Toggle(r.Context(), user.ID, articleID)
	if errors.Is(err, store.ErrNotFound) {
		WriteError(w, r, http.StatusNotFound, MsgArticleNotFound)
		return
	}
	if err != nil {
		failInternal(w, r, err)
		return
	}

	WriteSuccess(w, r, map[string]interface{}{"saved": saved})
}

// ListFavorites returns the caller's saved articles. Personal data, never
// cached.
func (h *Handlers) ListFavorites(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())
	articles, err := h.store.Favorites().ListByUser(r.Context(), user.ID)
	if err != nil {
		failInternal(w, r, err)
		return
	}
	if articles == nil {
		articles = []*store.Article{}
	}
	WriteData(w, r, articles, 0)
}
