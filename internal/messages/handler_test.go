package messages

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"portfolio-backend/internal/middleware"
	"portfolio-backend/internal/validation"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(svc *Service) http.Handler {
	h := NewHandler(svc, validation.New(), discardLogger())
	limiter := middleware.NewRateLimiter(3, time.Minute)

	r := chi.NewRouter()
	r.With(middleware.RateLimit(limiter, "contact", discardLogger())).Post("/contact", h.Create)
	r.Get("/admin/messages", h.AdminList)
	r.Patch("/admin/messages/{id}", h.AdminUpdate)
	r.Delete("/admin/messages/{id}", h.AdminDelete)
	return r
}

func send(router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.RemoteAddr = "203.0.113.9:4000"
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

const contactBody = `{"name":"Anna","email":"anna@example.com","message":"Hallo"}`

func TestHandlerCreate(t *testing.T) {
	repo := newMemoryRepo()
	router := newTestRouter(NewService(repo, nil))

	rec := send(router, http.MethodPost, "/contact", contactBody)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp createResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Contains(t, repo.items, resp.ID)
}

func TestHandlerCreateHoneypot(t *testing.T) {
	repo := newMemoryRepo()
	router := newTestRouter(NewService(repo, nil))

	rec := send(router, http.MethodPost, "/contact",
		`{"name":"Bot","email":"bot@example.com","message":"buy","website":"x"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true,"id":"blocked"}`, rec.Body.String())
	assert.Empty(t, repo.items)
}

func TestHandlerCreateValidation(t *testing.T) {
	router := newTestRouter(NewService(newMemoryRepo(), nil))

	rec := send(router, http.MethodPost, "/contact", `{"name":"","email":"nope","message":""}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp struct {
		Details map[string]string `json:"details"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "required", resp.Details["name"])
	assert.Equal(t, "email", resp.Details["email"])
	assert.Equal(t, "required", resp.Details["message"])
}

func TestHandlerCreateRateLimited(t *testing.T) {
	router := newTestRouter(NewService(newMemoryRepo(), nil))

	for i := 0; i < 3; i++ {
		rec := send(router, http.MethodPost, "/contact", contactBody)
		require.Equal(t, http.StatusOK, rec.Code)
	}
	rec := send(router, http.MethodPost, "/contact", contactBody)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Contains(t, rec.Body.String(), "Te veel berichten")
}

func TestHandlerAdminFlow(t *testing.T) {
	svc := NewService(newMemoryRepo(), nil)
	router := newTestRouter(svc)

	rec := send(router, http.MethodPost, "/contact", contactBody)
	require.Equal(t, http.StatusOK, rec.Code)
	var created createResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	rec = send(router, http.MethodGet, "/admin/messages", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var list struct {
		Messages []Message `json:"messages"`
		Total    int64     `json:"total"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list.Messages, 1)
	assert.EqualValues(t, 1, list.Total)

	rec = send(router, http.MethodPatch, "/admin/messages/"+created.ID, `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = send(router, http.MethodPatch, "/admin/messages/"+created.ID, `{"read":true}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"read":true`)

	rec = send(router, http.MethodGet, "/admin/messages?unread=true", "")
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Empty(t, list.Messages)

	rec = send(router, http.MethodDelete, "/admin/messages/"+created.ID, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = send(router, http.MethodDelete, "/admin/messages/"+created.ID, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = send(router, http.MethodGet, "/admin/messages?limit=0", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
