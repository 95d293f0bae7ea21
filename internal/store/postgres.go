// Sportline - Sports News Platform Backend
// Copyright 2026 Sportline Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/sportlinehq/sportline

package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore implements Store over a pgx connection pool.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore connects to dsn and verifies the connection.
func NewPostgresStore(ctx context.Context, dsn string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return &PostgresStore{pool: pool}, nil
}

func (p *PostgresStore) Users() Users         { return (*pgUsers)(p) }
func (p *PostgresStore) Articles() Articles   { return (*pgArticles)(p) }
func (p *PostgresStore) Matches() Matches     { return (*pgMatches)(p) }
func (p *PostgresStore) Teams() Teams         { return (*pgTeams)(p) }
func (p *PostgresStore) Videos() Videos       { return (*pgVideos)(p) }
func (p *PostgresStore) Comments() Comments   { return (*pgComments)(p) }
func (p *PostgresStore) Likes() Likes         { return (*pgLikes)(p) }
func (p *PostgresStore) Favorites() Favorites { return (*pgFavorites)(p) }

// Close releases the pool.
func (p *PostgresStore) Close() error {
	p.pool.Close()
	return nil
}

func notFoundOr(err error, op string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return fmt.Errorf("%s: %w", op, err)
}

type pgUsers PostgresStore

const userColumns = `id, username, email, password_hash, full_name,
	coalesce(avatar_url, ''), role, active, created_at`

func scanUser(row pgx.Row) (*User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash,
		&u.FullName, &u.AvatarURL, &u.Role, &u.Active, &u.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (p *pgUsers) GetByID(ctx context.Context, id string) (*User, error) {
	row := p.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	user, err := scanUser(row)
	if err != nil {
		return nil, notFoundOr(err, "get user")
	}
	return user, nil
}

func (p *pgUsers) GetByUsername(ctx context.Context, username string) (*User, error) {
	row := p.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE lower(username) = lower($1)`, username)
	user, err := scanUser(row)
	if err != nil {
		return nil, notFoundOr(err, "get user by username")
	}
	return user, nil
}

func (p *pgUsers) Create(ctx context.Context, user *User) error {
	row := p.pool.QueryRow(ctx,
		`INSERT INTO users (username, email, password_hash, full_name, avatar_url, role, active)
		 VALUES ($1, $2, $3, $4, nullif($5, ''), $6, $7)
		 RETURNING id, created_at`,
		user.Username, user.Email, user.PasswordHash, user.FullName,
		user.AvatarURL, user.Role, user.Active)
	if err := row.Scan(&user.ID, &user.CreatedAt); err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (p *pgUsers) Update(ctx context.Context, user *User) error {
	tag, err := p.pool.Exec(ctx,
		`UPDATE users SET email = $2, password_hash = $3, full_name = $4,
		        avatar_url = nullif($5, ''), role = $6, active = $7
		 WHERE id = $1`,
		user.ID, user.Email, user.PasswordHash, user.FullName,
		user.AvatarURL, user.Role, user.Active)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

type pgArticles PostgresStore

const articleColumns = `id, title, slug, summary, content,
	coalesce(image_url, ''), category, author_id, view_count, published_at, updated_at`

func scanArticle(row pgx.Row) (*Article, error) {
	var a Article
	err := row.Scan(&a.ID, &a.Title, &a.Slug, &a.Summary, &a.Content,
		&a.ImageURL, &a.Category, &a.AuthorID, &a.ViewCount,
		&a.PublishedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func collectArticles(rows pgx.Rows) ([]*Article, error) {
	defer rows.Close()
	var out []*Article
	for rows.Next() {
		article, err := scanArticle(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, article)
	}
	return out, rows.Err()
}

func (p *pgArticles) List(ctx context.Context, category string, limit, offset int) ([]*Article, error) {
	rows, err := p.pool.Query(ctx,
		`SELECT `+articleColumns+` FROM articles
		 WHERE $1 = '' OR category = $1
		 ORDER BY published_at DESC
		 LIMIT $2 OFFSET $3`,
		category, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list articles: %w", err)
	}
	articles, err := collectArticles(rows)
	if err != nil {
		return nil, fmt.Errorf("list articles: %w", err)
	}
	return articles, nil
}

func (p *pgArticles) Get(ctx context.Context, id string) (*Article, error) {
	row := p.pool.QueryRow(ctx,
		`SELECT `+articleColumns+` FROM articles WHERE id = $1`, id)
	article, err := scanArticle(row)
	if err != nil {
		return nil, notFoundOr(err, "get article")
	}
	return article, nil
}

func (p *pgArticles) Create(ctx context.Context, article *Article) error {
	row := p.pool.QueryRow(ctx,
		`INSERT INTO articles (title, slug, summary, content, image_url, category, author_id)
		 VALUES ($1, $2, $3, $4, nullif($5, ''), $6, $7)
		 RETURNING id, view_count, published_at, updated_at`,
		article.Title, article.Slug, article.Summary, article.Content,
		article.ImageURL, article.Category, article.AuthorID)
	err := row.Scan(&article.ID, &article.ViewCount, &article.PublishedAt, &article.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create article: %w", err)
	}
	return nil
}

func (p *pgArticles) Update(ctx context.Context, article *Article) error {
	row := p.pool.QueryRow(ctx,
		`UPDATE articles SET title = $2, slug = $3, summary = $4, content = $5,
		        image_url = nullif($6, ''), category = $7, updated_at = now()
		 WHERE id = $1
		 RETURNING updated_at`,
		article.ID, article.Title, article.Slug, article.Summary,
		article.Content, article.ImageURL, article.Category)
	if err := row.Scan(&article.UpdatedAt); err != nil {
		return notFoundOr(err, "update article")
	}
	return nil
}

func (p *pgArticles) Delete(ctx context.Context, id string) error {
	tag, err := p.pool.Exec(ctx, `DELETE FROM articles WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete article: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *pgArticles) IncrementViews(ctx context.Context, id string) error {
	tag, err := p.pool.Exec(ctx,
		`UPDATE articles SET view_count = view_count + 1 WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("increment views: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

type pgMatches PostgresStore

const matchColumns = `id, home_team_id, away_team_id, home_score, away_score,
	status, league, starts_at`

func scanMatch(row pgx.Row) (*Match, error) {
	var m Match
	err := row.Scan(&m.ID, &m.HomeTeamID, &m.AwayTeamID, &m.HomeScore,
		&m.AwayScore, &m.Status, &m.League, &m.StartsAt)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (p *pgMatches) List(ctx context.Context, status string, limit, offset int) ([]*Match, error) {
	rows, err := p.pool.Query(ctx,
		`SELECT `+matchColumns+` FROM matches
		 WHERE $1 = '' OR status = $1
		 ORDER BY starts_at
		 LIMIT $2 OFFSET $3`,
		status, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list matches: %w", err)
	}
	defer rows.Close()

	var out []*Match
	for rows.Next() {
		match, err := scanMatch(rows)
		if err != nil {
			return nil, fmt.Errorf("list matches: %w", err)
		}
		out = append(out, match)
	}
	return out, rows.Err()
}

func (p *pgMatches) Get(ctx context.Context, id string) (*Match, error) {
	row := p.pool.QueryRow(ctx,
		`SELECT `+matchColumns+` FROM matches WHERE id = $1`, id)
	match, err := scanMatch(row)
	if err != nil {
		return nil, notFoundOr(err, "get match")
	}
	return match, nil
}

type pgTeams PostgresStore

func (p *pgTeams) List(ctx context.Context) ([]*Team, error) {
	rows, err := p.pool.Query(ctx,
		`SELECT id, name, short_name, coalesce(logo_url, ''), league
		 FROM teams ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list teams: %w", err)
	}
	defer rows.Close()

	var out []*Team
	for rows.Next() {
		var t Team
		if err := rows.Scan(&t.ID, &t.Name, &t.Short, &t.LogoURL, &t.League); err != nil {
			return nil, fmt.Errorf("list teams: %w", err)
		}
		out = append(out, &t)
	}
	return out, rows.Err()
}

func (p *pgTeams) Get(ctx context.Context, id string) (*Team, error) {
	var t Team
	err := p.pool.QueryRow(ctx,
		`SELECT id, name, short_name, coalesce(logo_url, ''), league
		 FROM teams WHERE id = $1`, id).
		Scan(&t.ID, &t.Name, &t.Short, &t.LogoURL, &t.League)
	if err != nil {
		return nil, notFoundOr(err, "get team")
	}
	return &t, nil
}

type pgVideos PostgresStore

func (p *pgVideos) List(ctx context.Context, limit, offset int) ([]*Video, error) {
	rows, err := p.pool.Query(ctx,
		`SELECT id, title, url, coalesce(thumbnail_url, ''), duration_seconds, published_at
		 FROM videos ORDER BY published_at DESC LIMIT $1 OFFSET $2`,
		limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list videos: %w", err)
	}
	defer rows.Close()

	var out []*Video
	for rows.Next() {
		var v Video
		err := rows.Scan(&v.ID, &v.Title, &v.URL, &v.ThumbnailURL,
			&v.Duration, &v.PublishedAt)
		if err != nil {
			return nil, fmt.Errorf("list videos: %w", err)
		}
		out = append(out, &v)
	}
	return out, rows.Err()
}

type pgComments PostgresStore

func (p *pgComments) ListByArticle(ctx context.Context, articleID string, limit, offset int) ([]*Comment, error) {
	rows, err := p.pool.Query(ctx,
		`SELECT c.id, c.article_id, c.user_id, u.username, c.content, c.created_at
		 FROM comments c JOIN users u ON u.id = c.user_id
		 WHERE c.article_id = $1
		 ORDER BY c.created_at DESC
		 LIMIT $2 OFFSET $3`,
		articleID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	defer rows.Close()

	var out []*Comment
	for rows.Next() {
		var c Comment
		err := rows.Scan(&c.ID, &c.ArticleID, &c.UserID, &c.Username,
			&c.Content, &c.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("list comments: %w", err)
		}
		out = append(out, &c)
	}
	return out, rows.Err()
}

func (p *pgComments) Get(ctx context.Context, id string) (*Comment, error) {
	var c Comment
	err := p.pool.QueryRow(ctx,
		`SELECT c.id, c.article_id, c.user_id, u.username, c.content, c.created_at
		 FROM comments c JOIN users u ON u.id = c.user_id
		 WHERE c.id = $1`, id).
		Scan(&c.ID, &c.ArticleID, &c.UserID, &c.Username, &c.Content, &c.CreatedAt)
	if err != nil {
		return nil, notFoundOr(err, "get comment")
	}
	return &c, nil
}

func (p *pgComments) Create(ctx context.Context, comment *Comment) error {
	row := p.pool.QueryRow(ctx,
		`INSERT INTO comments (article_id, user_id, content)
		 VALUES ($1, $2, $3)
		 RETURNING id, created_at`,
		comment.ArticleID, comment.UserID, comment.Content)
	if err := row.Scan(&comment.ID, &comment.CreatedAt); err != nil {
		return fmt.Errorf("create comment: %w", err)
	}
	return nil
}

func (p *pgComments) Delete(ctx context.Context, id string) error {
	tag, err := p.pool.Exec(ctx, `DELETE FROM comments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete comment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

type pgLikes PostgresStore

func (p *pgLikes) Toggle(ctx context.Context, userID, articleID string) (bool, error) {
	tag, err := p.pool.Exec(ctx,
		`DELETE FROM article_likes WHERE user_id = $1 AND article_id = $2`,
		userID, articleID)
	if err != nil {
		return false, fmt.Errorf("toggle like: %w", err)
	}
	if tag.RowsAffected() > 0 {
		return false, nil
	}
	_, err = p.pool.Exec(ctx,
		`INSERT INTO article_likes (user_id, article_id) VALUES ($1, $2)`,
		userID, articleID)
	if err != nil {
		return false, fmt.Errorf("toggle like: %w", err)
	}
	return true, nil
}

func (p *pgLikes) Count(ctx context.Context, articleID string) (int64, error) {
	var n int64
	err := p.pool.QueryRow(ctx,
		`SELECT count(*) FROM article_likes WHERE article_id = $1`, articleID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count likes: %w", err)
	}
	return n, nil
}

func (p *pgLikes) Liked(ctx context.Context, userID, articleID string) (bool, error) {
	var liked bool
	err := p.pool.QueryRow(ctx,
		`SELECT exists(SELECT 1 FROM article_likes WHERE user_id = $1 AND article_id = $2)`,
		userID, articleID).Scan(&liked)
	if err != nil {
		return false, fmt.Errorf("check like: %w", err)
	}
	return liked, nil
}

type pgFavorites PostgresStore

func (p *pgFavorites) Toggle(ctx context.Context, userID, articleID string) (bool, error) {
	tag, err := p.pool.Exec(ctx,
		`DELETE FROM favorites WHERE user_id = $1 AND article_id = $2`,
		userID, articleID)
	if err != nil {
		return false, fmt.Errorf("toggle favorite: %w", err)
	}
	if tag.RowsAffected() > 0 {
		return false, nil
	}
	_, err = p.pool.Exec(ctx,
		`INSERT INTO favorites (user_id, article_id) VALUES ($1, $2)`,
		userID, articleID)
	if err != nil {
		return false, fmt.Errorf("toggle favorite: %w", err)
	}
	return true, nil
}

func (p *pgFavorites) ListByUser(ctx context.Context, userID string) ([]*Article, error) {
	rows, err := p.pool.Query(ctx,
		`SELECT `+articleColumns+` FROM articles
		 WHERE id IN (SELECT article_id FROM favorites WHERE user_id = $1)
		 ORDER BY published_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list favorites: %w", err)
	}
	articles, err := collectArticles(rows)
	if err != nil {
		return nil, fmt.Errorf("list favorites: %w", err)
	}
	return articles, nil
}

func (p *pgFavorites) Has(ctx context.Context, userID, articleID string) (bool, error) {
	var saved bool
	err := p.pool.QueryRow(ctx,
		`SELECT exists(SELECT 1 FROM favorites WHERE user_id = $1 AND article_id = $2)`,
		userID, articleID).Scan(&saved)
	if err != nil {
		return false, fmt.Errorf("check favorite: %w", err)
	}
	return saved, nil
}
