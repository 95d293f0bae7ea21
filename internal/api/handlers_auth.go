// Sportline - Sports News Platform Backend
// Copyright 2026 Sportline Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/sportlinehq/sportline

package api

import (
	"errors"
	"net/http"

	"golang.org/x/crypto/bcrypt"

	"github.com/sportlinehq/sportline/internal/auth"
	"github.com/sportlinehq/sportline/internal/logging"
	"github.com/sportlinehq/sportline/internal/router"
	"github.com/sportlinehq/sportline/internal/store"
)

type loginRequest struct {
	Username string `json:"username" validate:"required,min=3,max=64"`
	Password string `json:"password" validate:"required,min=6,max=128"`
}

// Login verifies credentials and opens a session. The response carries the
// bearer token the client presents on subsequent requests.
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := DecodeValid(r, &req); err != nil {
		WriteError(w, r, http.StatusBadRequest, MsgInvalidBody)
		return
	}

	user, session, err := h.auth.Login(r.Context(), req.Username, func(u *store.User) bool {
		return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)) == nil
	}, h.sessionTTL)

	var authErr *auth.AuthError
	if errors.As(err, &authErr) {
		WriteError(w, r, authErr.Status, authErr.Message)
		return
	}
	if err != nil {
		failInternal(w, r, err)
		return
	}

	logger := logging.Ctx(r.Context())
	logger.Info().Str("user_id", user.ID).Msg("User logged in")
	WriteSuccess(w, r, map[string]interface{}{
		"token":      session.Token,
		"expires_at": session.ExpiresAt,
		"user":       user,
	})
}

// Logout deletes the presented session. Idempotent: logging out without a
// live session still succeeds.
func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.auth.Logout(r.Context(), r); err != nil {
		failInternal(w, r, err)
		return
	}
	WriteMessage(w, r, "Đăng xuất thành công")
}

// Profile returns the authenticated user's account.
func (h *Handlers) Profile(w http.ResponseWriter, r *http.Request) {
	WriteData(w, r, auth.UserFromContext(r.Context()), 0)
}

type profileRequest struct {
	FullName    string `json:"full_name" validate:"required,max=128"`
	AvatarURL   string `json:"avatar_url" validate:"omitempty,url"`
	Email       string `json:"email" validate:"required,email"`
	NewPassword string `json:"new_password" validate:"omitempty,min=6,max=128"`
}

// UpdateProfile rewrites the caller's display fields and, when
// new_password is present, rotates the password hash.
func (h *Handlers) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req profileRequest
	if err := DecodeValid(r, &req); err != nil {
		WriteError(w, r, http.StatusBadRequest, MsgInvalidBody)
		return
	}

	user := auth.UserFromContext(r.Context())
	user.FullName = req.FullName
	user.AvatarURL = req.AvatarURL
	user.Email = req.Email
	if req.NewPassword != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
		if err != nil {
			failInternal(w, r, err)
			return
		}
		user.PasswordHash = string(hash)
	}

	if err := h.store.Users().Update(r.Context(), user); err != nil {
		failInternal(w, r, err)
		return
	}
	WriteData(w, r, user, 0)
}

type articleRequest struct {
	Title    string `json:"title" validate:"required,min=3,max=200"`
	Slug     string `json:"slug" validate:"required,min=3,max=200"`
	Summary  string `json:"summary" validate:"required,max=500"`
	Content  string `json:"content" validate:"required"`
	ImageURL string `json:"image_url" validate:"omitempty,url"`
	Category string `json:"category" validate:"required,max=64"`
}

// CreateArticle publishes a new article. Editor role required (enforced
// by route middleware); every article list goes stale, so the article
// cache family is cleared.
func (h *Handlers) CreateArticle(w http.ResponseWriter, r *http.Request) {
	var req articleRequest
	if err := DecodeValid(r, &req); err != nil {
		WriteError(w, r, http.StatusBadRequest, MsgInvalidBody)
		return
	}

	user := auth.UserFromContext(r.Context())
	article := &store.Article{
		Title:    req.Title,
		Slug:     req.Slug,
		Summary:  req.Summary,
		Content:  req.Content,
		ImageURL: req.ImageURL,
		Category: req.Category,
		AuthorID: user.ID,
	}
	if err := h.store.Articles().Create(r.Context(), article); err != nil {
		failInternal(w, r, err)
		return
	}

	h.invalidateArticles(r, article.ID)
	logger := logging.Ctx(r.Context())
	logger.Info().
		Str("article_id", article.ID).
		Str("author_id", user.ID).
		Msg("Article published")
	SendJSON(w, r, http.StatusCreated, map[string]interface{}{
		"success": true,
		"data":    article,
	}, 0)
}

// UpdateArticle rewrites an existing article.
func (h *Handlers) UpdateArticle(w http.ResponseWriter, r *http.Request) {
	id := router.Param(r, "id")
	var req articleRequest
	if err := DecodeValid(r, &req); err != nil {
		WriteError(w, r, http.StatusBadRequest, MsgInvalidBody)
		return
	}

	article, err := h.store.Articles().Get(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		WriteError(w, r, http.StatusNotFound, MsgArticleNotFound)
		return
	}
	if err != nil {
		failInternal(w, r, err)
		return
	}

	article.Title = req.Title
	article.Slug = req.Slug
	article.Summary = req.Summary
	article.Content = req.Content
	article.ImageURL = req.ImageURL
	article.Category = req.Category

	if err := h.store.Articles().Update(r.Context(), article); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			WriteError(w, r, http.StatusNotFound, MsgArticleNotFound)
			return
		}
		failInternal(w, r, err)
		return
	}

	h.invalidateArticles(r, id)
	WriteData(w, r, article, 0)
}

// DeleteArticle removes an article.
func (h *Handlers) DeleteArticle(w http.ResponseWriter, r *http.Request) {
	id := router.Param(r, "id")
	err := h.store.Articles().Delete(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		WriteError(w, r, http.StatusNotFound, MsgArticleNotFound)
		return
	}
	if err != nil {
		failInternal(w, r, err)
		return
	}

	h.invalidateArticles(r, id)
	logger := logging.Ctx(r.Context())
	logger.Info().Str("article_id", id).Msg("Article deleted")
	WriteMessage(w, r, "Đã xóa bài viết")
}

// invalidateArticles clears every cached article list plus the mutated
// article's own entry.
func (h *Handlers) invalidateArticles(r *http.Request, id string) {
	if err := h.cache.ClearPattern(r.Context(), "articles:list:", "articles:item:"+id); err != nil {
		logger := logging.Ctx(r.Context())
		logger.Warn().Err(err).Msg("Article cache invalidation failed")
	}
}
