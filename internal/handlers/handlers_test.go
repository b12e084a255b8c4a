package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"portfolio-backend/internal/auth"
	"portfolio-backend/internal/users"
	"portfolio-backend/internal/validation"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubUsers struct {
	err error
}

func (s stubUsers) Authenticate(ctx context.Context, email, password string) (users.User, error) {
	if s.err != nil {
		return users.User{}, s.err
	}
	if email != "admin@example.com" || password != "admin123" {
		return users.User{}, users.ErrInvalidCredentials
	}
	return users.User{ID: "u1", Email: email, Name: "Admin"}, nil
}

type stubStats struct {
	err error
}

func (s stubStats) PortfolioCounts(ctx context.Context) (int64, int64, error) {
	return 5, 3, s.err
}

func (s stubStats) SkillCount(ctx context.Context) (int64, error) {
	return 3, nil
}

func (s stubStats) UnreadMessages(ctx context.Context) (int64, error) {
	return 2, nil
}

func newTestServer(u Authenticator, st Stats) *Server {
	return &Server{
		Users:  u,
		Tokens: auth.NewManager("s3cret", time.Minute, time.Hour),
		Stats:  st,
		Val:    validation.New(),
		Log:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func newTestRouter(s *Server) http.Handler {
	r := chi.NewRouter()
	r.Post("/admin/login", s.AdminLogin)
	r.Post("/admin/refresh", s.AdminRefresh)
	r.Post("/admin/logout", s.AdminLogout)
	r.Get("/admin/stats", s.AdminStats)
	return r
}

func send(router http.Handler, method, path, body string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func cookieNamed(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func TestAdminLoginIssuesCookies(t *testing.T) {
	s := newTestServer(stubUsers{}, stubStats{})
	router := newTestRouter(s)

	rec := send(router, http.MethodPost, "/admin/login", `{"email":"admin@example.com","password":"admin123"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.NotContains(t, rec.Body.String(), "password")

	access := cookieNamed(rec, auth.AccessCookie)
	require.NotNil(t, access)
	claims, err := s.Tokens.ParseAccess(access.Value)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.Subject)

	refresh := cookieNamed(rec, auth.RefreshCookie)
	require.NotNil(t, refresh)

	rec = send(router, http.MethodPost, "/admin/refresh", "", refresh)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotNil(t, cookieNamed(rec, auth.AccessCookie))

	// An access token is not accepted as a refresh token.
	rec = send(router, http.MethodPost, "/admin/refresh", "", &http.Cookie{Name: auth.RefreshCookie, Value: access.Value})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAdminLoginFailures(t *testing.T) {
	router := newTestRouter(newTestServer(stubUsers{}, stubStats{}))

	rec := send(router, http.MethodPost, "/admin/login", `{"email":"admin@example.com","password":"wrong"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = send(router, http.MethodPost, "/admin/login", `{"email":"not-an-email","password":"x"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	router = newTestRouter(newTestServer(stubUsers{err: errors.New("mongo down")}, stubStats{}))
	rec = send(router, http.MethodPost, "/admin/login", `{"email":"admin@example.com","password":"admin123"}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	s := newTestServer(stubUsers{}, stubStats{})
	s.Tokens = nil
	rec = send(newTestRouter(s), http.MethodPost, "/admin/login", `{"email":"admin@example.com","password":"admin123"}`)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestAdminLogoutClearsCookies(t *testing.T) {
	router := newTestRouter(newTestServer(stubUsers{}, stubStats{}))
	rec := send(router, http.MethodPost, "/admin/logout", "")
	require.Equal(t, http.StatusOK, rec.Code)
	access := cookieNamed(rec, auth.AccessCookie)
	require.NotNil(t, access)
	assert.Equal(t, -1, access.MaxAge)
}

func TestAdminStats(t *testing.T) {
	router := newTestRouter(newTestServer(stubUsers{}, stubStats{}))
	rec := send(router, http.MethodGet, "/admin/stats", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp StatsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, StatsResponse{
		PortfolioTotal:     5,
		PortfolioPublished: 3,
		PortfolioDrafts:    2,
		Skills:             3,
		UnreadMessages:     2,
	}, resp)

	router = newTestRouter(newTestServer(stubUsers{}, stubStats{err: errors.New("boom")}))
	rec = send(router, http.MethodGet, "/admin/stats", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
