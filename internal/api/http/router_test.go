package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/campus-market/internal/api/http"
	"github.com/spec-kit/campus-market/internal/api/http/handlers"
	"github.com/spec-kit/campus-market/internal/auth"
	"github.com/spec-kit/campus-market/internal/config"
	"github.com/spec-kit/campus-market/internal/domain"
	"github.com/spec-kit/campus-market/internal/events"
	"github.com/spec-kit/campus-market/internal/observability"
	"github.com/spec-kit/campus-market/internal/repository"
	"github.com/spec-kit/campus-market/internal/service"
)

type memAccountRepo struct {
	mu       sync.Mutex
	accounts map[string]*domain.Account
}

func newMemAccountRepo() *memAccountRepo {
	return &memAccountRepo{accounts: make(map[string]*domain.Account)}
}

func (m *memAccountRepo) Create(_ context.Context, account *domain.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.accounts {
		if existing.Email == account.Email {
			return fmt.Errorf("duplicate email")
		}
	}
	account.UserID = uuid.NewString()
	account.IsVerified = false
	now := time.Now().UTC()
	account.CreatedAt = now
	account.UpdatedAt = now
	stored := *account
	m.accounts[account.UserID] = &stored
	return nil
}

func (m *memAccountRepo) GetByID(_ context.Context, userID string) (*domain.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	account, ok := m.accounts[userID]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *account
	return &copied, nil
}

func (m *memAccountRepo) GetByCredentials(_ context.Context, email, passwordHash string) (*domain.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, account := range m.accounts {
		if account.Email == email && account.PasswordHash == passwordHash {
			copied := *account
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (m *memAccountRepo) Update(_ context.Context, userID string, update domain.AccountUpdate) (*domain.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	account, ok := m.accounts[userID]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	if update.Username != nil {
		account.Username = *update.Username
	}
	if update.Email != nil {
		account.Email = *update.Email
	}
	if update.PasswordHash != nil {
		account.PasswordHash = *update.PasswordHash
	}
	if update.IsVerified != nil {
		account.IsVerified = *update.IsVerified
	}
	account.UpdatedAt = time.Now().UTC()
	copied := *account
	return &copied, nil
}

func (m *memAccountRepo) Delete(_ context.Context, userID string) (*domain.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	account, ok := m.accounts[userID]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	delete(m.accounts, userID)
	return account, nil
}

func (m *memAccountRepo) markVerified(userID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if account, ok := m.accounts[userID]; ok {
		account.IsVerified = true
	}
}

type memListingRepo struct {
	mu       sync.Mutex
	listings []domain.Listing
}

func newMemListingRepo() *memListingRepo {
	return &memListingRepo{}
}

func (m *memListingRepo) Create(_ context.Context, listing *domain.Listing) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	listing.PostID = uuid.NewString()
	m.listings = append(m.listings, *listing)
	return nil
}

func (m *memListingRepo) List(_ context.Context, filter repository.ListingFilter) ([]domain.Listing, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var matched []domain.Listing
	for _, listing := range m.listings {
		if filter.OwnerID != nil && listing.UserID != *filter.OwnerID {
			continue
		}
		if filter.Category != nil && listing.Category != *filter.Category {
			continue
		}
		matched = append(matched, listing)
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})
	if filter.Offset >= len(matched) {
		return nil, nil
	}
	matched = matched[filter.Offset:]
	if filter.Limit > 0 && filter.Limit < len(matched) {
		matched = matched[:filter.Limit]
	}
	return matched, nil
}

func (m *memListingRepo) Update(_ context.Context, postID string, update domain.ListingUpdate, updatedAt time.Time) (*domain.Listing, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.listings {
		if m.listings[i].PostID != postID {
			continue
		}
		if update.Title != nil {
			m.listings[i].Title = *update.Title
		}
		if update.Content != nil {
			m.listings[i].Content = *update.Content
		}
		if update.Category != nil {
			m.listings[i].Category = *update.Category
		}
		m.listings[i].UpdatedAt = updatedAt
		copied := m.listings[i]
		return &copied, nil
	}
	return nil, pgx.ErrNoRows
}

func (m *memListingRepo) Delete(_ context.Context, postID string) (*domain.Listing, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.listings {
		if m.listings[i].PostID != postID {
			continue
		}
		deleted := m.listings[i]
		m.listings = append(m.listings[:i], m.listings[i+1:]...)
		return &deleted, nil
	}
	return nil, pgx.ErrNoRows
}

type memVerifyRepo struct {
	mu     sync.Mutex
	tokens map[string]string
}

func newMemVerifyRepo() *memVerifyRepo {
	return &memVerifyRepo{tokens: make(map[string]string)}
}

func (m *memVerifyRepo) Store(_ context.Context, token, userID string, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokens[token] = userID
	return nil
}

func (m *memVerifyRepo) Consume(_ context.Context, token string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	userID, ok := m.tokens[token]
	if !ok {
		return "", repository.ErrTokenNotFound
	}
	delete(m.tokens, token)
	return userID, nil
}

type testEnv struct {
	app      *fiber.App
	accounts *memAccountRepo
	listings *memListingRepo
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	cfg := config.Config{
		Auth: config.AuthConfig{
			JWTSecret:            "test-secret",
			SessionTokenTTLHours: 168,
			VerificationTTLHours: 24,
		},
	}

	accountRepo := newMemAccountRepo()
	listingRepo := newMemListingRepo()
	dispatcher := events.NewInMemoryDispatcher()

	accountService := service.NewAccountService(cfg, service.AccountDependencies{
		AccountRepo:      accountRepo,
		VerificationRepo: newMemVerifyRepo(),
		Dispatcher:       dispatcher,
	})
	listingService := service.NewListingService(listingRepo, accountRepo, dispatcher)

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, zap.NewNop(), observability.NewMetrics(), 5*time.Second)
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:            nil,
		Accounts:          handlers.NewAccountsHandler(accountService),
		Listings:          handlers.NewListingsHandler(listingService),
		Session:           handlers.NewSessionHandler(),
		SessionMiddleware: auth.NewSessionMiddleware(accountService.TokenManager()),
	})

	return &testEnv{app: app, accounts: accountRepo, listings: listingRepo}
}

func (e *testEnv) do(t *testing.T, method, path string, body any, header map[string]string) (*http.Response, map[string]any) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range header {
		req.Header.Set(k, v)
	}

	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)

	decoded := map[string]any{}
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &decoded))
	}
	return resp, decoded
}

func errorCode(body map[string]any) string {
	errObj, _ := body["error"].(map[string]any)
	code, _ := errObj["code"].(string)
	return code
}

func (e *testEnv) register(t *testing.T, username, email string) map[string]any {
	t.Helper()
	resp, body := e.do(t, http.MethodPost, "/account", map[string]string{
		"username":      username,
		"email":         email,
		"password_hash": auth.Digest("hunter2"),
	}, nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	account, ok := body["account"].(map[string]any)
	require.True(t, ok)
	return account
}

func TestRegisterEndpoint(t *testing.T) {
	env := newTestEnv(t)

	account := env.register(t, "alice", "alice@sfu.ca")
	assert.NotEmpty(t, account["user_id"])
	assert.Equal(t, false, account["is_verified"])

	resp, body := env.do(t, http.MethodPost, "/account", map[string]string{
		"username": "bob",
	}, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION_FAILED", errorCode(body))
}

func TestLoginEndpoint(t *testing.T) {
	env := newTestEnv(t)
	account := env.register(t, "alice", "alice@sfu.ca")

	resp, body := env.do(t, http.MethodPost, "/account/login", map[string]string{
		"email":         "alice@sfu.ca",
		"password_hash": auth.Digest("hunter2"),
	}, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	logged, ok := body["account"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, account["user_id"], logged["user_id"])

	authBody, ok := body["auth"].(map[string]any)
	require.True(t, ok)
	assert.NotEmpty(t, authBody["token"])

	var sessionCookie *http.Cookie
	for _, cookie := range resp.Cookies() {
		if cookie.Name == auth.SessionCookieName {
			sessionCookie = cookie
		}
	}
	require.NotNil(t, sessionCookie)
	assert.Equal(t, authBody["token"], sessionCookie.Value)

	resp, body = env.do(t, http.MethodPost, "/account/login", map[string]string{
		"email":         "alice@sfu.ca",
		"password_hash": auth.Digest("wrong"),
	}, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "UNAUTHORIZED", errorCode(body))
}

func TestSessionEndpoint(t *testing.T) {
	env := newTestEnv(t)
	account := env.register(t, "alice", "alice@sfu.ca")

	resp, body := env.do(t, http.MethodPost, "/account/login", map[string]string{
		"email":         "alice@sfu.ca",
		"password_hash": auth.Digest("hunter2"),
	}, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	token := body["auth"].(map[string]any)["token"].(string)

	resp, body = env.do(t, http.MethodGet, "/session", nil, map[string]string{
		"Cookie": auth.SessionCookieName + "=" + token,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	session := body["session"].(map[string]any)
	assert.Equal(t, account["user_id"], session["user_id"])
	assert.Equal(t, "alice@sfu.ca", session["email"])

	// Bearer header works as a fallback transport.
	resp, _ = env.do(t, http.MethodGet, "/session", nil, map[string]string{
		"Authorization": "Bearer " + token,
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body = env.do(t, http.MethodGet, "/session", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "UNAUTHORIZED", errorCode(body))
}

func TestLogoutClearsCookie(t *testing.T) {
	env := newTestEnv(t)

	resp, _ := env.do(t, http.MethodPost, "/account/logout", nil, nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	var sessionCookie *http.Cookie
	for _, cookie := range resp.Cookies() {
		if cookie.Name == auth.SessionCookieName {
			sessionCookie = cookie
		}
	}
	require.NotNil(t, sessionCookie)
	assert.Empty(t, sessionCookie.Value)
	assert.True(t, sessionCookie.Expires.Before(time.Now()))
}

func TestAccountUpdateAndDeleteEndpoints(t *testing.T) {
	env := newTestEnv(t)
	account := env.register(t, "alice", "alice@sfu.ca")
	userID := account["user_id"].(string)

	resp, body := env.do(t, http.MethodPatch, "/account/"+userID, map[string]string{
		"username": "alice-renamed",
	}, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "alice-renamed", body["account"].(map[string]any)["username"])

	resp, body = env.do(t, http.MethodPatch, "/account/"+uuid.NewString(), map[string]string{
		"username": "ghost",
	}, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "NOT_FOUND", errorCode(body))

	resp, body = env.do(t, http.MethodDelete, "/account/"+userID, nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, userID, body["deleted"].(map[string]any)["user_id"])

	resp, _ = env.do(t, http.MethodDelete, "/account/"+userID, nil, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestCreatePostGating(t *testing.T) {
	env := newTestEnv(t)
	account := env.register(t, "alice", "alice@sfu.ca")
	userID := account["user_id"].(string)

	resp, body := env.do(t, http.MethodPost, "/posts", map[string]string{
		"user_id": userID,
		"title":   "bike",
		"content": "barely used",
	}, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "FORBIDDEN", errorCode(body))

	resp, body = env.do(t, http.MethodPost, "/posts", map[string]string{
		"user_id": uuid.NewString(),
		"title":   "bike",
		"content": "barely used",
	}, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "NOT_FOUND", errorCode(body))

	resp, body = env.do(t, http.MethodPost, "/posts", map[string]string{
		"user_id": userID,
	}, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION_FAILED", errorCode(body))

	env.accounts.markVerified(userID)
	resp, body = env.do(t, http.MethodPost, "/posts", map[string]string{
		"user_id":  userID,
		"title":    "bike",
		"content":  "barely used",
		"category": "electronics",
	}, nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	post := body["post"].(map[string]any)
	assert.NotEmpty(t, post["post_id"])
	assert.Equal(t, "electronics", post["category"])
}

func TestListPostsEndpoint(t *testing.T) {
	env := newTestEnv(t)
	account := env.register(t, "alice", "alice@sfu.ca")
	userID := account["user_id"].(string)
	env.accounts.markVerified(userID)

	for i := 0; i < 7; i++ {
		resp, _ := env.do(t, http.MethodPost, "/posts", map[string]string{
			"user_id": userID,
			"title":   fmt.Sprintf("item-%d", i),
			"content": "content",
		}, nil)
		require.Equal(t, http.StatusCreated, resp.StatusCode)
	}

	resp, body := env.do(t, http.MethodGet, "/posts?limit=5", nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, body["posts"].([]any), 5)

	resp, body = env.do(t, http.MethodGet, "/posts?limit=5&offset=5", nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, body["posts"].([]any), 2)

	resp, body = env.do(t, http.MethodGet, "/posts?user_id="+uuid.NewString(), nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, body["posts"].([]any), 0)

	resp, body = env.do(t, http.MethodGet, "/posts?limit=abc", nil, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION_FAILED", errorCode(body))
}

func TestUpdateAndDeletePostEndpoints(t *testing.T) {
	env := newTestEnv(t)
	account := env.register(t, "alice", "alice@sfu.ca")
	userID := account["user_id"].(string)
	env.accounts.markVerified(userID)

	resp, body := env.do(t, http.MethodPost, "/posts", map[string]string{
		"user_id": userID,
		"title":   "bike",
		"content": "barely used",
	}, nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	postID := body["post"].(map[string]any)["post_id"].(string)

	resp, body = env.do(t, http.MethodPatch, "/posts/"+postID, map[string]string{}, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION_FAILED", errorCode(body))

	resp, body = env.do(t, http.MethodPatch, "/posts/"+postID, map[string]string{
		"title": "mountain bike",
	}, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "mountain bike", body["post"].(map[string]any)["title"])

	resp, body = env.do(t, http.MethodPatch, "/posts/"+uuid.NewString(), map[string]string{
		"title": "ghost",
	}, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, body = env.do(t, http.MethodDelete, "/posts/"+postID, nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, postID, body["deleted"].(map[string]any)["post_id"])

	resp, _ = env.do(t, http.MethodDelete, "/posts/"+postID, nil, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
