// Sportline - Sports News Platform Backend
// Copyright 2026 Sportline Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/sportlinehq/sportline

package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/crypto/bcrypt"

	"github.com/sportlinehq/sportline/internal/auth"
	"github.com/sportlinehq/sportline/internal/cache"
	"github.com/sportlinehq/sportline/internal/kv"
	"github.com/sportlinehq/sportline/internal/ratelimit"
	"github.com/sportlinehq/sportline/internal/router"
	"github.com/sportlinehq/sportline/internal/store"
)

type testAPI struct {
	rt    *router.Router
	store *store.MemoryStore
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()

	st := store.NewMemoryStore()
	sessions := auth.NewMemorySessionStore()
	authn := auth.NewAuthenticator(sessions, st.Users())
	limiter := ratelimit.NewLimiter(kv.NewMemoryStore())
	responseCache := cache.New(kv.NewMemoryStore())

	rt := router.New("")
	handlers := NewHandlers(st, authn, responseCache, time.Hour)
	err := handlers.Register(rt, limiter, Limits{
		Global:       1000,
		GlobalWindow: time.Minute,
		Login:        3,
		LoginWindow:  5 * time.Minute,
		Write:        100,
		WriteWindow:  time.Minute,
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	return &testAPI{rt: rt, store: st}
}

func (ta *testAPI) seedUser(t *testing.T, username, password, role string) *store.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}
	user := &store.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: string(hash),
		Role:         role,
		Active:       true,
	}
	if err := ta.store.Users().Create(context.Background(), user); err != nil {
		t.Fatal(err)
	}
	return user
}

func (ta *testAPI) do(method, path, token, body string) *httptest.ResponseRecorder {
	r := httptest.NewRequest(method, path, strings.NewReader(body))
	r.RemoteAddr = "192.0.2.10:4000"
	if body != "" {
		r.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		r.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	ta.rt.ServeHTTP(rec, r)
	return rec
}

func (ta *testAPI) login(t *testing.T, username, password string) string {
	t.Helper()
	rec := ta.do(http.MethodPost, "/auth/login", "",
		`{"username":"`+username+`","password":"`+password+`"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("login: status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Success bool   `json:"success"`
		Token   string `json:"token"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if !resp.Success || resp.Token == "" {
		t.Fatalf("login response = %s", rec.Body.String())
	}
	return resp.Token
}

func TestLoginAndProfileFlow(t *testing.T) {
	t.Parallel()

	ta := newTestAPI(t)
	ta.seedUser(t, "alice", "password123", store.RoleUser)

	rec := ta.do(http.MethodPost, "/auth/login", "",
		`{"username":"alice","password":"wrong-password"}`)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("bad password: status = %d, want 401", rec.Code)
	}

	token := ta.login(t, "alice", "password123")

	rec = ta.do(http.MethodGet, "/profile", token, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("profile: status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"username":"alice"`) {
		t.Errorf("profile body = %s", rec.Body.String())
	}
	if strings.Contains(rec.Body.String(), "password") {
		t.Errorf("profile must not leak the password hash: %s", rec.Body.String())
	}

	rec = ta.do(http.MethodGet, "/profile", "", "")
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("anonymous profile: status = %d, want 401", rec.Code)
	}

	rec = ta.do(http.MethodPost, "/auth/logout", token, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("logout: status = %d", rec.Code)
	}
	rec = ta.do(http.MethodGet, "/profile", token, "")
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("profile after logout: status = %d, want 401", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), auth.MsgSessionInvalid) {
		t.Errorf("body = %s, want the invalid-session message", rec.Body.String())
	}
}

func TestUpdateProfile(t *testing.T) {
	t.Parallel()

	ta := newTestAPI(t)
	ta.seedUser(t, "alice", "password123", store.RoleUser)
	token := ta.login(t, "alice", "password123")

	body := `{"full_name":"Alice Nguyen","email":"alice@sportline.vn","new_password":"password456"}`
	rec := ta.do(http.MethodPut, "/profile", token, body)
	if rec.Code != http.StatusOK {
		t.Fatalf("update: status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"full_name":"Alice Nguyen"`) {
		t.Errorf("body = %s", rec.Body.String())
	}

	// The rotated password takes effect on the next login.
	rec = ta.do(http.MethodPost, "/auth/login", "",
		`{"username":"alice","password":"password456"}`)
	if rec.Code != http.StatusOK {
		t.Errorf("login with new password: status = %d", rec.Code)
	}

	rec = ta.do(http.MethodPut, "/profile", token, `{"full_name":"x","email":"not-an-email"}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("invalid email: status = %d, want 400", rec.Code)
	}
}

func TestLoginRateLimited(t *testing.T) {
	t.Parallel()

	ta := newTestAPI(t)
	for i := 0; i < 3; i++ {
		rec := ta.do(http.MethodPost, "/auth/login", "",
			`{"username":"ghost","password":"whatever1"}`)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("attempt %d: status = %d, want 401", i+1, rec.Code)
		}
	}

	rec := ta.do(http.MethodPost, "/auth/login", "",
		`{"username":"ghost","password":"whatever1"}`)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("attempt 4: status = %d, want 429", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Error("429 must carry Retry-After")
	}
	if !strings.Contains(rec.Body.String(), ratelimit.MsgTooManyRequests) {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func TestArticleWriteRequiresEditor(t *testing.T) {
	t.Parallel()

	ta := newTestAPI(t)
	ta.seedUser(t, "bob", "password123", store.RoleUser)
	token := ta.login(t, "bob", "password123")

	body := `{"title":"Derby preview","slug":"derby-preview","summary":"s","content":"c","category":"football"}`
	rec := ta.do(http.MethodPost, "/articles", token, body)
	if rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403 for plain user", rec.Code)
	}

	rec = ta.do(http.MethodPost, "/articles", "", body)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401 for anonymous", rec.Code)
	}
}

func TestArticleLifecycleInvalidatesCache(t *testing.T) {
	t.Parallel()

	ta := newTestAPI(t)
	ta.seedUser(t, "ed", "password123", store.RoleEditor)
	token := ta.login(t, "ed", "password123")

	// Warm the list cache while it is empty.
	rec := ta.do(http.MethodGet, "/articles", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("list: status = %d", rec.Code)
	}

	body := `{"title":"Derby preview","slug":"derby-preview","summary":"s","content":"c","category":"football"}`
	rec = ta.do(http.MethodPost, "/articles", token, body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var created struct {
		Data store.Article `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatal(err)
	}
	id := created.Data.ID

	// The cached empty list must have been invalidated.
	rec = ta.do(http.MethodGet, "/articles", "", "")
	if !strings.Contains(rec.Body.String(), "Derby preview") {
		t.Errorf("list after create = %s, want the new article", rec.Body.String())
	}

	rec = ta.do(http.MethodGet, "/articles/"+id, "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("get: status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"like_count":0`) {
		t.Errorf("get body = %s, want like_count", rec.Body.String())
	}

	update := `{"title":"Derby recap","slug":"derby-recap","summary":"s","content":"c","category":"football"}`
	rec = ta.do(http.MethodPut, "/articles/"+id, token, update)
	if rec.Code != http.StatusOK {
		t.Fatalf("update: status = %d, body = %s", rec.Code, rec.Body.String())
	}

	rec = ta.do(http.MethodGet, "/articles", "", "")
	if !strings.Contains(rec.Body.String(), "Derby recap") {
		t.Errorf("list after update = %s, want the updated title", rec.Body.String())
	}

	rec = ta.do(http.MethodDelete, "/articles/"+id, token, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("delete: status = %d", rec.Code)
	}
	rec = ta.do(http.MethodGet, "/articles/"+id, "", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("get after delete: status = %d, want 404", rec.Code)
	}
}

func TestConditionalRequestReturns304(t *testing.T) {
	t.Parallel()

	ta := newTestAPI(t)
	ta.store.AddTeam(&store.Team{Name: "Hanoi FC", Short: "HAN", League: "V.League 1"})

	rec := ta.do(http.MethodGet, "/teams", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	etag := rec.Header().Get("ETag")
	if etag == "" {
		t.Fatal("cacheable list must carry an ETag")
	}

	r := httptest.NewRequest(http.MethodGet, "/teams", nil)
	r.RemoteAddr = "192.0.2.10:4000"
	r.Header.Set("If-None-Match", etag)
	rec = httptest.NewRecorder()
	ta.rt.ServeHTTP(rec, r)

	if rec.Code != http.StatusNotModified {
		t.Fatalf("status = %d, want 304", rec.Code)
	}
	if rec.Body.Len() != 0 {
		t.Errorf("304 carried a body: %s", rec.Body.String())
	}
}

func TestCommentsLikesAndFavorites(t *testing.T) {
	t.Parallel()

	ta := newTestAPI(t)
	ta.seedUser(t, "ed", "password123", store.RoleEditor)
	ta.seedUser(t, "fan", "password123", store.RoleUser)
	edToken := ta.login(t, "ed", "password123")
	fanToken := ta.login(t, "fan", "password123")

	body := `{"title":"Final","slug":"final","summary":"s","content":"c","category":"football"}`
	rec := ta.do(http.MethodPost, "/articles", edToken, body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: %d %s", rec.Code, rec.Body.String())
	}
	var created struct {
		Data store.Article `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatal(err)
	}
	id := created.Data.ID

	rec = ta.do(http.MethodPost, "/articles/"+id+"/comments", fanToken, `{"content":"Great match"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("comment: %d %s", rec.Code, rec.Body.String())
	}

	rec = ta.do(http.MethodGet, "/articles/"+id+"/comments", "", "")
	if !strings.Contains(rec.Body.String(), "Great match") {
		t.Errorf("comments = %s", rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"username":"fan"`) {
		t.Errorf("comments = %s, want the author's username", rec.Body.String())
	}

	rec = ta.do(http.MethodPost, "/articles/"+id+"/like", fanToken, "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"liked":true`) {
		t.Fatalf("like: %d %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"like_count":1`) {
		t.Errorf("like body = %s", rec.Body.String())
	}
	rec = ta.do(http.MethodPost, "/articles/"+id+"/like", fanToken, "")
	if !strings.Contains(rec.Body.String(), `"liked":false`) {
		t.Errorf("second toggle = %s, want unliked", rec.Body.String())
	}

	rec = ta.do(http.MethodPost, "/articles/"+id+"/favorite", fanToken, "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"saved":true`) {
		t.Fatalf("favorite: %d %s", rec.Code, rec.Body.String())
	}
	rec = ta.do(http.MethodGet, "/favorites", fanToken, "")
	if !strings.Contains(rec.Body.String(), `"title":"Final"`) {
		t.Errorf("favorites = %s", rec.Body.String())
	}

	// Anonymous social writes are rejected.
	rec = ta.do(http.MethodPost, "/articles/"+id+"/like", "", "")
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("anonymous like: status = %d, want 401", rec.Code)
	}
}

func TestPersonalizedArticleViewBypassesSharedCache(t *testing.T) {
	t.Parallel()

	ta := newTestAPI(t)
	ta.seedUser(t, "ed", "password123", store.RoleEditor)
	ta.seedUser(t, "fan", "password123", store.RoleUser)
	edToken := ta.login(t, "ed", "password123")
	fanToken := ta.login(t, "fan", "password123")

	body := `{"title":"Final","slug":"final","summary":"s","content":"c","category":"football"}`
	rec := ta.do(http.MethodPost, "/articles", edToken, body)
	var created struct {
		Data store.Article `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatal(err)
	}
	id := created.Data.ID

	if rec = ta.do(http.MethodPost, "/articles/"+id+"/like", fanToken, ""); rec.Code != http.StatusOK {
		t.Fatalf("like: %d", rec.Code)
	}

	// Warm the shared cache anonymously.
	anon := ta.do(http.MethodGet, "/articles/"+id, "", "")
	if strings.Contains(anon.Body.String(), `"liked"`) {
		t.Errorf("anonymous view = %s, must not carry personal flags", anon.Body.String())
	}

	personal := ta.do(http.MethodGet, "/articles/"+id, fanToken, "")
	if !strings.Contains(personal.Body.String(), `"liked":true`) {
		t.Errorf("personalized view = %s, want liked flag", personal.Body.String())
	}
	if personal.Header().Get("ETag") != "" {
		t.Error("personalized response must not be cacheable")
	}
}

func TestUnknownRouteEnvelope(t *testing.T) {
	t.Parallel()

	ta := newTestAPI(t)
	rec := ta.do(http.MethodGet, "/does-not-exist", "", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Không tìm thấy đường dẫn") {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func TestInvalidLoginBodyRejected(t *testing.T) {
	t.Parallel()

	ta := newTestAPI(t)
	// Three cases: the test login window allows three requests.
	for _, body := range []string{
		`not-json`,
		`{"username":"a"}`,
		`{"username":"alice","password":"short","extra":true}`,
	} {
		rec := ta.do(http.MethodPost, "/auth/login", "", body)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("body %q: status = %d, want 400", body, rec.Code)
		}
	}
}

func TestHealthAlwaysUncached(t *testing.T) {
	t.Parallel()

	ta := newTestAPI(t)
	rec := ta.do(http.MethodGet, "/health", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"status":"ok"`) {
		t.Errorf("body = %s", rec.Body.String())
	}
	if got := rec.Header().Get("Cache-Control"); !strings.Contains(got, "no-store") {
		t.Errorf("Cache-Control = %q, want uncacheable", got)
	}
}
