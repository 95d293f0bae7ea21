// Sportline - Sports News Platform Backend
// Copyright 2026 Sportline Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/sportlinehq/sportline

package store

import "time"

// User roles, ordered by privilege.
const (
	RoleUser   = "user"
	RoleEditor = "editor"
	RoleAdmin  = "admin"
)

// User is a registered account. PasswordHash is a bcrypt hash and never
// leaves the backend.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	FullName     string    `json:"full_name"`
	AvatarURL    string    `json:"avatar_url,omitempty"`
	Role         string    `json:"role"`
	Active       bool      `json:"active"`
	CreatedAt    time.Time `json:"created_at"`
}

// Article is a published news article.
type Article struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Slug        string    `json:"slug"`
	Summary     string    `json:"summary"`
	Content     string    `json:"content"`
	ImageURL    string    `json:"image_url,omitempty"`
	Category    string    `json:"category"`
	AuthorID    string    `json:"author_id"`
	ViewCount   int64     `json:"view_count"`
	PublishedAt time.Time `json:"published_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Match statuses.
const (
	MatchScheduled = "scheduled"
	MatchLive      = "live"
	MatchFinished  = "finished"
)

// Match is a fixture between two teams.
type Match struct {
	ID         string    `json:"id"`
	HomeTeamID string    `json:"home_team_id"`
	AwayTeamID string    `json:"away_team_id"`
	HomeScore  int       `json:"home_score"`
	AwayScore  int       `json:"away_score"`
	Status     string    `json:"status"`
	League     string    `json:"league"`
	StartsAt   time.Time `json:"starts_at"`
}

// Team is a sports club or national side.
type Team struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Short   string `json:"short_name"`
	LogoURL string `json:"logo_url,omitempty"`
	League  string `json:"league"`
}

// Video is a highlight or interview clip.
type Video struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	URL          string    `json:"url"`
	ThumbnailURL string    `json:"thumbnail_url,omitempty"`
	Duration     int       `json:"duration_seconds"`
	PublishedAt  time.Time `json:"published_at"`
}

// Comment is a user comment on an article.
type Comment struct {
	ID        string    `json:"id"`
	ArticleID string    `json:"article_id"`
	UserID    string    `json:"user_id"`
	Username  string    `json:"username"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}
