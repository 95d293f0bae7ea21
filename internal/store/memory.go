// Sportline - Sports News Platform Backend
// Copyright 2026 Sportline Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/sportlinehq/sportline

package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore is an in-memory Store used by tests and by development runs
// without a database. Safe for concurrent use.
type MemoryStore struct {
	mu        sync.RWMutex
	users     map[string]*User
	articles  map[string]*Article
	matches   map[string]*Match
	teams     map[string]*Team
	videos    map[string]*Video
	comments  map[string]*Comment
	likes     map[string]map[string]bool // articleID -> userID -> liked
	favorites map[string]map[string]bool // userID -> articleID -> saved
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:     make(map[string]*User),
		articles:  make(map[string]*Article),
		matches:   make(map[string]*Match),
		teams:     make(map[string]*Team),
		videos:    make(map[string]*Video),
		comments:  make(map[string]*Comment),
		likes:     make(map[string]map[string]bool),
		favorites: make(map[string]map[string]bool),
	}
}

func (m *MemoryStore) Users() Users         { return (*memoryUsers)(m) }
func (m *MemoryStore) Articles() Articles   { return (*memoryArticles)(m) }
func (m *MemoryStore) Matches() Matches     { return (*memoryMatches)(m) }
func (m *MemoryStore) Teams() Teams         { return (*memoryTeams)(m) }
func (m *MemoryStore) Videos() Videos       { return (*memoryVideos)(m) }
func (m *MemoryStore) Comments() Comments   { return (*memoryComments)(m) }
func (m *MemoryStore) Likes() Likes         { return (*memoryLikes)(m) }
func (m *MemoryStore) Favorites() Favorites { return (*memoryFavorites)(m) }

// Close is a no-op.
func (m *MemoryStore) Close() error { return nil }

func newID() string { return uuid.NewString() }

func paginate[T any](items []T, limit, offset int) []T {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(items) {
		return nil
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}

type memoryUsers MemoryStore

func (m *memoryUsers) GetByID(_ context.Context, id string) (*User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	user, ok := m.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *user
	return &cp, nil
}

func (m *memoryUsers) GetByUsername(_ context.Context, username string) (*User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, user := range m.users {
		if strings.EqualFold(user.Username, username) {
			cp := *user
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (m *memoryUsers) Create(_ context.Context, user *User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if user.ID == "" {
		user.ID = newID()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	cp := *user
	m.users[user.ID] = &cp
	return nil
}

func (m *memoryUsers) Update(_ context.Context, user *User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[user.ID]; !ok {
		return ErrNotFound
	}
	cp := *user
	m.users[user.ID] = &cp
	return nil
}

type memoryArticles MemoryStore

func (m *memoryArticles) List(_ context.Context, category string, limit, offset int) ([]*Article, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*Article, 0, len(m.articles))
	for _, article := range m.articles {
		if category != "" && article.Category != category {
			continue
		}
		cp := *article
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].PublishedAt.After(out[j].PublishedAt)
	})
	return paginate(out, limit, offset), nil
}

func (m *memoryArticles) Get(_ context.Context, id string) (*Article, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	article, ok := m.articles[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *article
	return &cp, nil
}

func (m *memoryArticles) Create(_ context.Context, article *Article) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if article.ID == "" {
		article.ID = newID()
	}
	now := time.Now().UTC()
	if article.PublishedAt.IsZero() {
		article.PublishedAt = now
	}
	article.UpdatedAt = now
	cp := *article
	m.articles[article.ID] = &cp
	return nil
}

func (m *memoryArticles) Update(_ context.Context, article *Article) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.articles[article.ID]; !ok {
		return ErrNotFound
	}
	article.UpdatedAt = time.Now().UTC()
	cp := *article
	m.articles[article.ID] = &cp
	return nil
}

func (m *memoryArticles) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.articles[id]; !ok {
		return ErrNotFound
	}
	delete(m.articles, id)
	return nil
}

func (m *memoryArticles) IncrementViews(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	article, ok := m.articles[id]
	if !ok {
		return ErrNotFound
	}
	article.ViewCount++
	return nil
}

type memoryMatches MemoryStore

func (m *memoryMatches) List(_ context.Context, status string, limit, offset int) ([]*Match, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*Match, 0, len(m.matches))
	for _, match := range m.matches {
		if status != "" && match.Status != status {
			continue
		}
		cp := *match
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].StartsAt.Before(out[j].StartsAt)
	})
	return paginate(out, limit, offset), nil
}

func (m *memoryMatches) Get(_ context.Context, id string) (*Match, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	match, ok := m.matches[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *match
	return &cp, nil
}

// AddMatch seeds a fixture, used by tests and development fixtures.
func (m *MemoryStore) AddMatch(match *Match) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if match.ID == "" {
		match.ID = newID()
	}
	cp := *match
	m.matches[match.ID] = &cp
}

// AddTeam seeds a team.
func (m *MemoryStore) AddTeam(team *Team) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if team.ID == "" {
		team.ID = newID()
	}
	cp := *team
	m.teams[team.ID] = &cp
}

// AddVideo seeds a video.
func (m *MemoryStore) AddVideo(video *Video) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if video.ID == "" {
		video.ID = newID()
	}
	cp := *video
	m.videos[video.ID] = &cp
}

type memoryTeams MemoryStore

func (m *memoryTeams) List(_ context.Context) ([]*Team, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*Team, 0, len(m.teams))
	for _, team := range m.teams {
		cp := *team
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *memoryTeams) Get(_ context.Context, id string) (*Team, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	team, ok := m.teams[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *team
	return &cp, nil
}

type memoryVideos MemoryStore

func (m *memoryVideos) List(_ context.Context, limit, offset int) ([]*Video, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*Video, 0, len(m.videos))
	for _, video := range m.videos {
		cp := *video
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].PublishedAt.After(out[j].PublishedAt)
	})
	return paginate(out, limit, offset), nil
}

type memoryComments MemoryStore

func (m *memoryComments) ListByArticle(_ context.Context, articleID string, limit, offset int) ([]*Comment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*Comment
	for _, comment := range m.comments {
		if comment.ArticleID != articleID {
			continue
		}
		cp := *comment
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return paginate(out, limit, offset), nil
}

func (m *memoryComments) Get(_ context.Context, id string) (*Comment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	comment, ok := m.comments[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *comment
	return &cp, nil
}

func (m *memoryComments) Create(_ context.Context, comment *Comment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if comment.ID == "" {
		comment.ID = newID()
	}
	if comment.CreatedAt.IsZero() {
		comment.CreatedAt = time.Now().UTC()
	}
	cp := *comment
	m.comments[comment.ID] = &cp
	return nil
}

func (m *memoryComments) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.comments[id]; !ok {
		return ErrNotFound
	}
	delete(m.comments, id)
	return nil
}

type memoryLikes MemoryStore

func (m *memoryLikes) Toggle(_ context.Context, userID, articleID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.articles[articleID]; !ok {
		return false, ErrNotFound
	}
	byUser := m.likes[articleID]
	if byUser == nil {
		byUser = make(map[string]bool)
		m.likes[articleID] = byUser
	}
	if byUser[userID] {
		delete(byUser, userID)
		return false, nil
	}
	byUser[userID] = true
	return true, nil
}

func (m *memoryLikes) Count(_ context.Context, articleID string) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return int64(len(m.likes[articleID])), nil
}

func (m *memoryLikes) Liked(_ context.Context, userID, articleID string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.likes[articleID][userID], nil
}

type memoryFavorites MemoryStore

func (m *memoryFavorites) Toggle(_ context.Context, userID, articleID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.articles[articleID]; !ok {
		return false, ErrNotFound
	}
	byArticle := m.favorites[userID]
	if byArticle == nil {
		byArticle = make(map[string]bool)
		m.favorites[userID] = byArticle
	}
	if byArticle[articleID] {
		delete(byArticle, articleID)
		return false, nil
	}
	byArticle[articleID] = true
	return true, nil
}

func (m *memoryFavorites) ListByUser(_ context.Context, userID string) ([]*Article, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*Article
	for articleID := range m.favorites[userID] {
		if article, ok := m.articles[articleID]; ok {
			cp := *article
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].PublishedAt.After(out[j].PublishedAt)
	})
	return out, nil
}

func (m *memoryFavorites) Has(_ context.Context, userID, articleID string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.favorites[userID][articleID], nil
}
