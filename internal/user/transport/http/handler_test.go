package http

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"expensio/internal/api"
	"expensio/internal/expense"
	"expensio/internal/token"
	"expensio/internal/user"
	"expensio/internal/user/service"
	"expensio/pkg/middleware"
)

type stubUserRepo struct {
	users  map[int64]*user.User
	nextID int64
}

func (r *stubUserRepo) Create(_ context.Context, u *user.User) error {
	r.nextID++
	u.ID = r.nextID
	u.CreatedAt = time.Now()
	stored := *u
	r.users[u.ID] = &stored
	return nil
}

func (r *stubUserRepo) GetByEmail(_ context.Context, email string) (*user.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (r *stubUserRepo) GetByID(_ context.Context, id int64) (*user.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *u
	return &copied, nil
}

func (r *stubUserRepo) GetByRefreshToken(_ context.Context, tokenStr string) (*user.User, error) {
	if tokenStr == "" {
		return nil, sql.ErrNoRows
	}
	for _, u := range r.users {
		if u.RefreshToken == tokenStr {
			copied := *u
			return &copied, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (r *stubUserRepo) UpdateRefreshToken(_ context.Context, id int64, tokenStr string) error {
	if u, ok := r.users[id]; ok {
		u.RefreshToken = tokenStr
	}
	return nil
}

func (r *stubUserRepo) Delete(_ context.Context, id int64) error {
	delete(r.users, id)
	return nil
}

type stubExpenseStore struct {
	byUser map[int64][]expense.Expense
}

func (s *stubExpenseStore) ListByUser(_ context.Context, userID int64) ([]expense.Expense, error) {
	return s.byUser[userID], nil
}

func (s *stubExpenseStore) DeleteAllByUser(_ context.Context, userID int64) error {
	delete(s.byUser, userID)
	return nil
}

func setup() (*Handler, *stubUserRepo, *stubExpenseStore) {
	repo := &stubUserRepo{users: map[int64]*user.User{}}
	expenses := &stubExpenseStore{byUser: map[int64][]expense.Expense{}}
	tokens := token.NewService("access-secret", "refresh-secret", 15*time.Minute, 7*24*time.Hour)
	auth := service.NewAuthService(repo, expenses, tokens)
	return NewHandler(auth, 7*24*time.Hour, false), repo, expenses
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) api.Response {
	t.Helper()
	var resp api.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func refreshCookie(rec *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == refreshCookieName {
			return c
		}
	}
	return nil
}

func asAuthenticated(req *http.Request, userID int64) *http.Request {
	return req.WithContext(context.WithValue(req.Context(), middleware.UserIDKey, userID))
}

func TestRegisterReturnsTokensAndCookie(t *testing.T) {
	h, _, _ := setup()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register",
		strings.NewReader(`{"email":"a@b.com","password":"secret123"}`))
	rec := httptest.NewRecorder()
	h.Register(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	resp := decodeEnvelope(t, rec)
	assert.True(t, resp.Success)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	data := resp.Data.(map[string]interface{})
	assert.NotEmpty(t, data["accessToken"])
	assert.NotEmpty(t, data["refreshToken"])

	cookie := refreshCookie(rec)
	require.NotNil(t, cookie)
	assert.Equal(t, data["refreshToken"], cookie.Value)
	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, http.SameSiteLaxMode, cookie.SameSite)
	assert.Equal(t, int((7 * 24 * time.Hour).Seconds()), cookie.MaxAge)
	assert.False(t, cookie.Secure, "secure flag stays off outside production")
}

func TestRegisterMissingFields(t *testing.T) {
	h, _, _ := setup()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register",
		strings.NewReader(`{"email":"a@b.com"}`))
	rec := httptest.NewRecorder()
	h.Register(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var resp api.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.Equal(t, http.StatusBadRequest, resp.Status)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	h, _, _ := setup()

	body := `{"email":"a@b.com","password":"secret123"}`
	rec := httptest.NewRecorder()
	h.Register(rec, httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", strings.NewReader(body)))
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = httptest.NewRecorder()
	h.Register(rec, httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", strings.NewReader(body)))
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestLoginWrongPassword(t *testing.T) {
	h, _, _ := setup()

	rec := httptest.NewRecorder()
	h.Register(rec, httptest.NewRequest(http.MethodPost, "/api/v1/auth/register",
		strings.NewReader(`{"email":"a@b.com","password":"secret123"}`)))
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = httptest.NewRecorder()
	h.Login(rec, httptest.NewRequest(http.MethodPost, "/api/v1/auth/login",
		strings.NewReader(`{"email":"a@b.com","password":"wrongpass"}`)))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLogoutWithoutCookieIsIdempotent(t *testing.T) {
	h, _, _ := setup()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/logout", nil)
	rec := httptest.NewRecorder()
	h.Logout(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	resp := decodeEnvelope(t, rec)
	assert.True(t, resp.Success)
	assert.Equal(t, "Logged out (no token found)", resp.Message)

	cookie := refreshCookie(rec)
	require.NotNil(t, cookie)
	assert.Less(t, cookie.MaxAge, 0, "cookie must be cleared")
}

func TestLogoutRevokesToken(t *testing.T) {
	h, repo, _ := setup()

	rec := httptest.NewRecorder()
	h.Register(rec, httptest.NewRequest(http.MethodPost, "/api/v1/auth/register",
		strings.NewReader(`{"email":"a@b.com","password":"secret123"}`)))
	require.Equal(t, http.StatusCreated, rec.Code)
	refresh := refreshCookie(rec).Value

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/logout", nil)
	req.AddCookie(&http.Cookie{Name: refreshCookieName, Value: refresh})
	rec = httptest.NewRecorder()
	h.Logout(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, repo.users[1].RefreshToken)

	cookie := refreshCookie(rec)
	require.NotNil(t, cookie)
	assert.Less(t, cookie.MaxAge, 0)
}

func TestRefreshIssuesAccessToken(t *testing.T) {
	h, _, _ := setup()

	rec := httptest.NewRecorder()
	h.Register(rec, httptest.NewRequest(http.MethodPost, "/api/v1/auth/register",
		strings.NewReader(`{"email":"a@b.com","password":"secret123"}`)))
	require.Equal(t, http.StatusCreated, rec.Code)
	refresh := refreshCookie(rec).Value

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/refresh-token", nil)
	req.AddCookie(&http.Cookie{Name: refreshCookieName, Value: refresh})
	rec = httptest.NewRecorder()
	h.Refresh(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeEnvelope(t, rec)
	data := resp.Data.(map[string]interface{})
	assert.NotEmpty(t, data["accessToken"])
	_, hasRefresh := data["refreshToken"]
	assert.False(t, hasRefresh, "refresh flow returns only an access token")
}

func TestRefreshWithoutCookie(t *testing.T) {
	h, _, _ := setup()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/refresh-token", nil)
	rec := httptest.NewRecorder()
	h.Refresh(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestDeleteProfile(t *testing.T) {
	h, repo, expenses := setup()

	rec := httptest.NewRecorder()
	h.Register(rec, httptest.NewRequest(http.MethodPost, "/api/v1/auth/register",
		strings.NewReader(`{"email":"a@b.com","password":"secret123"}`)))
	require.Equal(t, http.StatusCreated, rec.Code)
	expenses.byUser[1] = []expense.Expense{{UserID: 1, Amount: 50, Category: "Food"}}

	req := asAuthenticated(httptest.NewRequest(http.MethodDelete, "/api/v1/auth/delete-profile", nil), 1)
	rec = httptest.NewRecorder()
	h.DeleteProfile(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, repo.users)
	assert.Empty(t, expenses.byUser[1])

	cookie := refreshCookie(rec)
	require.NotNil(t, cookie)
	assert.Less(t, cookie.MaxAge, 0)
}

func TestMeReturnsProfileWithExpenses(t *testing.T) {
	h, _, expenses := setup()

	rec := httptest.NewRecorder()
	h.Register(rec, httptest.NewRequest(http.MethodPost, "/api/v1/auth/register",
		strings.NewReader(`{"email":"a@b.com","password":"secret123"}`)))
	require.Equal(t, http.StatusCreated, rec.Code)
	expenses.byUser[1] = []expense.Expense{{UserID: 1, Amount: 50, Category: "Food"}}

	req := asAuthenticated(httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil), 1)
	rec = httptest.NewRecorder()
	h.Me(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeEnvelope(t, rec)
	data := resp.Data.(map[string]interface{})
	assert.Equal(t, "a@b.com", data["email"])
	assert.Len(t, data["expenses"], 1)
}
