package uploads

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"portfolio-backend/internal/blocks"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngBytes = append([]byte("\x89PNG\r\n\x1a\n"), bytes.Repeat([]byte{0}, 32)...)

func newTestStore(t *testing.T, maxBytes int64) *LocalStore {
	t.Helper()
	store, err := NewLocalStore(t.TempDir(), maxBytes)
	require.NoError(t, err)
	store.now = func() time.Time { return time.UnixMilli(1700000000000) }
	return store
}

func TestSanitize(t *testing.T) {
	cases := map[string]string{
		"My Photo (1).JPG":    "my-photo-1-.jpg",
		"../../etc/passwd":    "passwd",
		"--weird__name--.png": "weird-name-.png",
		"":                    "",
	}
	for in, want := range cases {
		assert.Equal(t, want, sanitize(in), in)
	}
}

func TestUploadImageStoresFile(t *testing.T) {
	store := newTestStore(t, 1<<20)

	url, err := store.UploadImage(context.Background(), "Hero Shot.png", "image/png", bytes.NewReader(pngBytes))
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(url, "/api/uploads/1700000000000-"))
	assert.True(t, strings.HasSuffix(url, "-hero-shot.png"))

	name := strings.TrimPrefix(url, PublicPrefix)
	parts := strings.SplitN(name, "-", 3)
	require.Len(t, parts, 3)
	assert.Len(t, parts[1], 8)

	stored, err := os.ReadFile(filepath.Join(store.Root(), name))
	require.NoError(t, err)
	assert.Equal(t, pngBytes, stored)
}

func TestUploadImageAddsSniffedExtension(t *testing.T) {
	store := newTestStore(t, 1<<20)
	url, err := store.UploadImage(context.Background(), "scan", "", bytes.NewReader(pngBytes))
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(url, "-scan.png"))
}

func TestUploadImageRejects(t *testing.T) {
	store := newTestStore(t, 16)
	ctx := context.Background()

	_, err := store.UploadImage(ctx, "a.png", "text/plain", bytes.NewReader(pngBytes))
	assert.ErrorIs(t, err, ErrNotImage)

	_, err = store.UploadImage(ctx, "a.png", "image/png", strings.NewReader("just some text"))
	assert.ErrorIs(t, err, ErrNotImage)

	_, err = store.UploadImage(ctx, "a.svg", "image/svg+xml", strings.NewReader(`<svg xmlns="http://www.w3.org/2000/svg"></svg>`))
	assert.ErrorIs(t, err, ErrNotImage)

	_, err = store.UploadImage(ctx, "big.png", "image/png", bytes.NewReader(pngBytes))
	assert.ErrorIs(t, err, ErrTooLarge)

	entries, err := os.ReadDir(store.Root())
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestResolve(t *testing.T) {
	store := newTestStore(t, 0)

	_, err := store.Resolve("../secret.txt")
	assert.ErrorIs(t, err, ErrBadPath)
	_, err = store.Resolve("a/../../secret.txt")
	assert.ErrorIs(t, err, ErrBadPath)
	_, err = store.Resolve("")
	assert.ErrorIs(t, err, ErrBadPath)

	path, err := store.Resolve("photo.png")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(store.Root(), "photo.png"), path)
}

func newTestRouter(store *LocalStore) http.Handler {
	h := NewHandler(store, 1<<20, slog.New(slog.NewTextHandler(io.Discard, nil)))
	r := chi.NewRouter()
	r.Post("/admin/upload", h.Upload)
	r.Post("/admin/upload/batch", h.UploadBatch)
	r.Get("/uploads/*", h.Serve)
	return r
}

type part struct {
	field, name, contentType string
	body                     []byte
}

func multipartBody(t *testing.T, parts ...part) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for _, p := range parts {
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition", `form-data; name="`+p.field+`"; filename="`+p.name+`"`)
		header.Set("Content-Type", p.contentType)
		w, err := mw.CreatePart(header)
		require.NoError(t, err)
		_, err = w.Write(p.body)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestHandlerUploadAndServe(t *testing.T) {
	store := newTestStore(t, 1<<20)
	router := newTestRouter(store)

	body, ct := multipartBody(t, part{"file", "cover.png", "image/png", pngBytes})
	req := httptest.NewRequest(http.MethodPost, "/admin/upload", body)
	req.Header.Set("Content-Type", ct)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp uploadResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, resp.URL, resp.Original)
	assert.Equal(t, resp.URL, resp.Thumbnail)
	assert.Equal(t, resp.URL, resp.Medium)

	servePath := strings.TrimPrefix(resp.URL, "/api")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, servePath, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.Equal(t, "public, max-age=31536000, immutable", rec.Header().Get("Cache-Control"))
	assert.Equal(t, pngBytes, rec.Body.Bytes())
}

func TestHandlerUploadRejectsNonImage(t *testing.T) {
	router := newTestRouter(newTestStore(t, 1<<20))

	body, ct := multipartBody(t, part{"file", "notes.txt", "text/plain", []byte("hello")})
	req := httptest.NewRequest(http.MethodPost, "/admin/upload", body)
	req.Header.Set("Content-Type", ct)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Only images are supported")

	req = httptest.NewRequest(http.MethodPost, "/admin/upload", strings.NewReader(""))
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandlerUploadBatchPartialFailure(t *testing.T) {
	router := newTestRouter(newTestStore(t, 1<<20))

	body, ct := multipartBody(t,
		part{"files", "one.png", "image/png", pngBytes},
		part{"files", "bad.txt", "text/plain", []byte("nope")},
		part{"files", "two.png", "image/png", pngBytes},
	)
	req := httptest.NewRequest(http.MethodPost, "/admin/upload/batch", body)
	req.Header.Set("Content-Type", ct)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var result blocks.UploadResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	require.Len(t, result.URLs, 2)
	assert.True(t, strings.HasSuffix(result.URLs[0], "-one.png"))
	assert.True(t, strings.HasSuffix(result.URLs[1], "-two.png"))
	assert.Equal(t, []string{"bad.txt"}, result.Failed)
}

func TestHandlerServeErrors(t *testing.T) {
	store := newTestStore(t, 0)
	router := newTestRouter(store)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/uploads/missing.png", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/uploads/../../etc/passwd", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	require.NoError(t, os.WriteFile(filepath.Join(store.Root(), "clip.bin"), []byte("x"), 0o644))
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/uploads/clip.bin", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/octet-stream", rec.Header().Get("Content-Type"))
}
