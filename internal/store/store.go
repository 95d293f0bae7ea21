// Sportline - Sports News Platform Backend
// Copyright 2026 Sportline Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/sportlinehq/sportline

// Package store defines the repository interfaces over the relational
// store, plus an in-memory implementation for tests and development and a
// pgx-backed Postgres implementation for production. Queries are simple
// parameterized statements; schema ownership lives outside this service.
package store

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("store: not found")

// Users is the account repository.
type Users interface {
	GetByID(ctx context.Context, id string) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
	Create(ctx context.Context, user *User) error
	Update(ctx context.Context, user *User) error
}

// Articles is the article repository.
type Articles interface {
	List(ctx context.Context, category string, limit, offset int) ([]*Article, error)
	Get(ctx context.Context, id string) (*Article, error)
	Create(ctx context.Context, article *Article) error
	Update(ctx context.Context, article *Article) error
	Delete(ctx context.Context, id string) error
	IncrementViews(ctx context.Context, id string) error
}

// Matches is the fixture repository.
type Matches interface {
	List(ctx context.Context, status string, limit, offset int) ([]*Match, error)
	Get(ctx context.Context, id string) (*Match, error)
}

// Teams is the team repository.
type Teams interface {
	List(ctx context.Context) ([]*Team, error)
	Get(ctx context.Context, id string) (*Team, error)
}

// Videos is the video repository.
type Videos interface {
	List(ctx context.Context, limit, offset int) ([]*Video, error)
}

// Comments is the article-comment repository.
type Comments interface {
	ListByArticle(ctx context.Context, articleID string, limit, offset int) ([]*Comment, error)
	Get(ctx context.Context, id string) (*Comment, error)
	Create(ctx context.Context, comment *Comment) error
	Delete(ctx context.Context, id string) error
}

// Likes tracks per-user article likes.
type Likes interface {
	// Toggle flips the like state and reports the resulting state.
	Toggle(ctx context.Context, userID, articleID string) (liked bool, err error)
	Count(ctx context.Context, articleID string) (int64, error)
	Liked(ctx context.Context, userID, articleID string) (bool, error)
}

// Favorites tracks per-user saved articles.
type Favorites interface {
	Toggle(ctx context.Context, userID, articleID string) (saved bool, err error)
	ListByUser(ctx context.Context, userID string) ([]*Article, error)
	Has(ctx context.Context, userID, articleID string) (bool, error)
}

// Store aggregates the repositories behind one handle.
type Store interface {
	Users() Users
	Articles() Articles
	Matches() Matches
	Teams() Teams
	Videos() Videos
	Comments() Comments
	Likes() Likes
	Favorites() Favorites
	Close() error
}
