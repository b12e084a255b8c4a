package portfolio

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"portfolio-backend/internal/validation"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(f fixture) http.Handler {
	h := NewHandler(f.svc, validation.New(), slog.New(slog.NewTextHandler(io.Discard, nil)))
	r := chi.NewRouter()
	r.Get("/portfolio", h.PublicList)
	r.Get("/portfolio/{slug}", h.PublicGetBySlug)
	r.Get("/portfolio/{slug}/content", h.PublicContent)
	r.Post("/admin/portfolio", h.AdminCreate)
	r.Put("/admin/portfolio/reorder", h.AdminReorder)
	r.Put("/admin/portfolio/{id}", h.AdminUpdate)
	r.Delete("/admin/portfolio/{id}", h.AdminDelete)
	r.Put("/admin/portfolio/{id}/publish", h.AdminPublish)
	return r
}

func send(router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

const createBody = `{
	"title": "Night Poster",
	"description": "Screen print",
	"thumbnail": "/api/uploads/poster.jpg",
	"type": "DESIGN",
	"published": true,
	"blocks": [{"type": "TEXT", "order": 0, "content": {"text": "<b>bold</b>"}}]
}`

func TestHandlerCreatePublishAndRender(t *testing.T) {
	f := newFixture()
	router := newTestRouter(f)

	rec := send(router, http.MethodPost, "/admin/portfolio", createBody)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = send(router, http.MethodPost, "/admin/portfolio", createBody)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = send(router, http.MethodGet, "/portfolio/night-poster", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var detail struct {
		Slug          string `json:"slug"`
		Presentations []struct {
			Kind string `json:"kind"`
		} `json:"presentations"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &detail))
	assert.Equal(t, "night-poster", detail.Slug)
	require.Len(t, detail.Presentations, 1)
	assert.Equal(t, "text", detail.Presentations[0].Kind)

	rec = send(router, http.MethodGet, "/portfolio/night-poster/content", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "&lt;b&gt;bold&lt;/b&gt;")

	rec = send(router, http.MethodGet, "/portfolio/unknown", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandlerCreateValidation(t *testing.T) {
	router := newTestRouter(newFixture())

	body := `{
		"title": "X",
		"description": "",
		"thumbnail": "javascript:alert(1)",
		"type": "PAINTING",
		"embeds": ["not a url"],
		"projectDate": "01-02-2024",
		"blocks": [{"type": "PHOTO", "content": {"url": "ftp://x"}}]
	}`
	rec := send(router, http.MethodPost, "/admin/portfolio", body)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp struct {
		Details map[string]string `json:"details"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "required", resp.Details["description"])
	assert.Equal(t, "mediaurl", resp.Details["thumbnail"])
	assert.Equal(t, "oneof", resp.Details["type"])
	assert.Equal(t, "url", resp.Details["embeds[0]"])
	assert.Equal(t, "date", resp.Details["projectDate"])
	assert.Equal(t, "mediaurl", resp.Details["blocks[0].content.url"])
}

func TestHandlerRejectsUnknownFields(t *testing.T) {
	router := newTestRouter(newFixture())
	rec := send(router, http.MethodPost, "/admin/portfolio", `{"title":"x","color":"red"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandlerReorderUnknownID(t *testing.T) {
	router := newTestRouter(newFixture())
	rec := send(router, http.MethodPut, "/admin/portfolio/reorder", `{"items":[{"id":"ghost","order":0}]}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = send(router, http.MethodPut, "/admin/portfolio/reorder", `{"items":[]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandlerPublishRequiresFlag(t *testing.T) {
	router := newTestRouter(newFixture())
	rec := send(router, http.MethodPut, "/admin/portfolio/abc/publish", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = send(router, http.MethodPut, "/admin/portfolio/abc/publish", `{"published":true}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
