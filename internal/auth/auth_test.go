package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewManagerRequiresSecret(t *testing.T) {
	assert.Nil(t, NewManager("  ", time.Minute, time.Hour))
	assert.NotNil(t, NewManager("s3cret", time.Minute, time.Hour))
}

func TestTokenKinds(t *testing.T) {
	m := NewManager("s3cret", time.Minute, time.Hour)

	access, err := m.NewAccessToken("u1", "admin@example.com", RoleAdmin)
	require.NoError(t, err)
	refresh, err := m.NewRefreshToken("u1", "admin@example.com", RoleAdmin)
	require.NoError(t, err)

	claims, err := m.ParseAccess(access)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.Subject)
	assert.Equal(t, "admin@example.com", claims.Email)

	_, err = m.ParseAccess(refresh)
	assert.ErrorIs(t, err, ErrWrongKind)
	_, err = m.ParseRefresh(refresh)
	assert.NoError(t, err)

	other := NewManager("different", time.Minute, time.Hour)
	_, err = other.ParseAccess(access)
	assert.Error(t, err)

	viewer, err := m.NewAccessToken("u2", "", "viewer")
	require.NoError(t, err)
	_, err = m.ParseAccess(viewer)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestExpiredToken(t *testing.T) {
	m := NewManager("s3cret", -time.Minute, time.Hour)
	access, err := m.NewAccessToken("u1", "", RoleAdmin)
	require.NoError(t, err)
	_, err = m.ParseAccess(access)
	assert.Error(t, err)
}

func TestSessionCookies(t *testing.T) {
	m := NewManager("s3cret", time.Minute, time.Hour)
	access, err := m.NewAccessToken("u1", "", RoleAdmin)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	SetSessionCookies(rec, m, access, "refresh", true)
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 2)
	assert.Equal(t, AccessCookie, cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)
	assert.True(t, cookies[0].Secure)
	assert.Equal(t, "/api", cookies[1].Path)

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.AddCookie(cookies[0])
	claims, ok := SessionFromRequest(req, m)
	require.True(t, ok)
	assert.Equal(t, "u1", claims.Subject)

	_, ok = SessionFromRequest(httptest.NewRequest(http.MethodGet, "/admin", nil), m)
	assert.False(t, ok)
	_, ok = SessionFromRequest(req, nil)
	assert.False(t, ok)
}

func TestPasswords(t *testing.T) {
	hash, err := HashPassword("admin123")
	require.NoError(t, err)
	assert.NoError(t, ComparePassword(hash, "admin123"))
	assert.Error(t, ComparePassword(hash, "wrong"))

	_, err = HashPassword("")
	assert.ErrorIs(t, err, ErrEmptyPassword)

	assert.False(t, NeedsRehash(hash))
	assert.True(t, NeedsRehash("not-a-hash"))
	BurnCompare("anything")
}
