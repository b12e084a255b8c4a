package uploads

import (
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"portfolio-backend/internal/blocks"
	"portfolio-backend/internal/middleware"
	"portfolio-backend/internal/transport"
	"github.com/go-chi/chi/v5"
)

var contentTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
	".mp4":  "video/mp4",
}

const (
	multipartMemory = 8 << 20
	// batchLimit bounds a batch body to this many maximum-size files.
	batchLimit = 20
)

type Handler struct {
	store    *LocalStore
	maxBytes int64
	log      *slog.Logger
}

func NewHandler(store *LocalStore, maxBytes int64, log *slog.Logger) *Handler {
	return &Handler{store: store, maxBytes: maxBytes, log: log}
}

type uploadResponse struct {
	Success   bool   `json:"success"`
	URL       string `json:"url"`
	Original  string `json:"original"`
	Thumbnail string `json:"thumbnail"`
	Medium    string `json:"medium"`
}

func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)

	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes+multipartMemory)
	file, header, err := r.FormFile("file")
	if err != nil {
		if isTooLarge(err) {
			log.Warn("admin upload: too large")
			transport.WriteError(w, http.StatusRequestEntityTooLarge, "file too large", nil)
			return
		}
		log.Warn("admin upload: no file")
		transport.WriteError(w, http.StatusBadRequest, "No file uploaded", nil)
		return
	}
	defer file.Close()

	url, err := h.store.UploadImage(r.Context(), header.Filename, header.Header.Get("Content-Type"), file)
	if err != nil {
		h.writeUploadError(w, log, header.Filename, err)
		return
	}

	// Variants are not generated; every size points at the original.
	log.Info("admin upload: stored", slog.String("url", url))
	transport.WriteJSON(w, http.StatusOK, uploadResponse{
		Success:   true,
		URL:       url,
		Original:  url,
		Thumbnail: url,
		Medium:    url,
	})
}

// UploadBatch stores every image of the "files" field in order. Failures are
// reported per file and do not abort the rest.
func (h *Handler) UploadBatch(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)

	r.Body = http.MaxBytesReader(w, r.Body, batchLimit*h.maxBytes+multipartMemory)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		log.Warn("admin upload batch: invalid form")
		transport.WriteError(w, http.StatusBadRequest, "invalid multipart form", nil)
		return
	}
	defer r.MultipartForm.RemoveAll()

	headers := r.MultipartForm.File["files"]
	if len(headers) == 0 {
		log.Warn("admin upload batch: no files")
		transport.WriteError(w, http.StatusBadRequest, "No file uploaded", nil)
		return
	}

	files := make([]blocks.UploadFile, 0, len(headers))
	for _, fh := range headers {
		files = append(files, uploadFile(fh))
	}

	result := blocks.UploadImages(r.Context(), h.store, files, log)
	log.Info("admin upload batch: done", slog.Int("stored", len(result.URLs)), slog.Int("failed", len(result.Failed)))
	transport.WriteJSON(w, http.StatusOK, result)
}

func uploadFile(fh *multipart.FileHeader) blocks.UploadFile {
	return blocks.UploadFile{
		Name:        fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Open: func() (io.ReadCloser, error) {
			return fh.Open()
		},
	}
}

// Serve streams a stored file. Names are immutable, so responses may be
// cached forever.
func (h *Handler) Serve(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	name := chi.URLParam(r, "*")

	path, err := h.store.Resolve(name)
	if err != nil {
		log.Warn("uploads serve: invalid path", slog.String("path", name))
		transport.WriteError(w, http.StatusBadRequest, "Invalid path", nil)
		return
	}

	f, err := os.Open(path)
	if err != nil {
		transport.WriteError(w, http.StatusNotFound, "File not found", nil)
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil || info.IsDir() {
		transport.WriteError(w, http.StatusNotFound, "File not found", nil)
		return
	}

	contentType, ok := contentTypes[strings.ToLower(filepath.Ext(path))]
	if !ok {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	http.ServeContent(w, r, info.Name(), info.ModTime(), f)
}

func (h *Handler) writeUploadError(w http.ResponseWriter, log *slog.Logger, name string, err error) {
	switch {
	case errors.Is(err, ErrNotImage):
		log.Warn("admin upload: not an image", slog.String("file", name))
		transport.WriteError(w, http.StatusBadRequest, "Only images are supported", nil)
	case errors.Is(err, ErrTooLarge) || isTooLarge(err):
		log.Warn("admin upload: too large", slog.String("file", name))
		transport.WriteError(w, http.StatusRequestEntityTooLarge, "file too large", nil)
	default:
		log.Error("admin upload: storage error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "Upload failed", nil)
	}
}

func isTooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	return errors.As(err, &maxErr)
}

func (h *Handler) logWithRequest(r *http.Request) *slog.Logger {
	if r == nil {
		return h.log
	}
	if id := middleware.RequestIDFromContext(r.Context()); id != "" {
		return h.log.With(slog.String("request_id", id))
	}
	return h.log
}
