package portfolio

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"portfolio-backend/internal/blocks"
	"portfolio-backend/internal/httpx"
	"portfolio-backend/internal/middleware"
	"portfolio-backend/internal/transport"
	"portfolio-backend/internal/validation"
	"github.com/go-chi/chi/v5"
)

type Handler struct {
	service *Service
	val     *validation.Validator
	log     *slog.Logger
}

func NewHandler(service *Service, val *validation.Validator, log *slog.Logger) *Handler {
	return &Handler{
		service: service,
		val:     val,
		log:     log,
	}
}

func (h *Handler) PublicList(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	items, err := h.service.ListPublished(ctx)
	if err != nil {
		log.Error("portfolio public list: database error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "database error", nil)
		return
	}

	log.Info("portfolio public list: ok", slog.Int("count", len(items)))
	transport.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"items": items,
	})
}

func (h *Handler) PublicGetBySlug(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	slug, ok := h.slugParam(w, r, log, "portfolio public get")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	detail, err := h.service.GetPublishedBySlug(ctx, slug)
	if err != nil {
		h.writeServiceError(w, log, "portfolio public get", err)
		return
	}

	log.Info("portfolio public get: ok", slog.String("slug", slug), slog.Int("blocks", len(detail.Blocks)))
	transport.WriteJSON(w, http.StatusOK, detail)
}

// PublicContent serves the item's rendered blocks as an HTML fragment.
func (h *Handler) PublicContent(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	slug, ok := h.slugParam(w, r, log, "portfolio public content")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	detail, err := h.service.GetPublishedBySlug(ctx, slug)
	if err != nil {
		h.writeServiceError(w, log, "portfolio public content", err)
		return
	}

	var buf bytes.Buffer
	if err := blocks.RenderHTML(&buf, detail.Presentations); err != nil {
		log.Error("portfolio public content: render error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "render error", nil)
		return
	}

	log.Info("portfolio public content: ok", slog.String("slug", slug))
	transport.WriteHTML(w, http.StatusOK, buf.Bytes())
}

func (h *Handler) AdminList(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	query := r.URL.Query()
	limit, offset, err := httpx.ParseLimitOffset(query, 50, 200)
	if err != nil {
		log.Warn("admin portfolio list: invalid query", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}

	filter := AdminListFilter{
		Type: ItemType(strings.ToUpper(strings.TrimSpace(query.Get("type")))),
	}
	published, err := httpx.ParseOptionalBool(query, "published")
	if err != nil {
		log.Warn("admin portfolio list: invalid published filter")
		transport.WriteError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}
	filter.Published = published

	ctx, cancel := context.WithTimeout(r.Context(), 8*time.Second)
	defer cancel()

	items, total, err := h.service.ListAdmin(ctx, filter, limit, offset)
	if err != nil {
		log.Error("admin portfolio list: database error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "database error", nil)
		return
	}

	log.Info("admin portfolio list: ok", slog.Int("count", len(items)))
	transport.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"items":  items,
		"limit":  limit,
		"offset": offset,
		"total":  total,
	})
}

func (h *Handler) AdminGet(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	id := strings.TrimSpace(chi.URLParam(r, "id"))

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	detail, err := h.service.Get(ctx, id)
	if err != nil {
		h.writeServiceError(w, log, "admin portfolio get", err)
		return
	}

	log.Info("admin portfolio get: ok", slog.String("portfolio_item_id", id))
	transport.WriteJSON(w, http.StatusOK, detail)
}

func (h *Handler) AdminCreate(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)

	req, ok := h.decodeUpsert(w, r, log, "admin portfolio create")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	detail, err := h.service.Create(ctx, req)
	if err != nil {
		h.writeServiceError(w, log, "admin portfolio create", err)
		return
	}

	log.Info("admin portfolio create: ok", slog.String("portfolio_item_id", detail.ID), slog.String("slug", detail.Slug))
	transport.WriteJSON(w, http.StatusCreated, detail)
}

func (h *Handler) AdminUpdate(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	id := strings.TrimSpace(chi.URLParam(r, "id"))

	req, ok := h.decodeUpsert(w, r, log, "admin portfolio update")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	detail, err := h.service.Update(ctx, id, req)
	if err != nil {
		h.writeServiceError(w, log, "admin portfolio update", err)
		return
	}

	log.Info("admin portfolio update: ok", slog.String("portfolio_item_id", id), slog.String("slug", detail.Slug))
	transport.WriteJSON(w, http.StatusOK, detail)
}

func (h *Handler) AdminDelete(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	id := strings.TrimSpace(chi.URLParam(r, "id"))

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	if err := h.service.Delete(ctx, id); err != nil {
		h.writeServiceError(w, log, "admin portfolio delete", err)
		return
	}

	log.Info("admin portfolio delete: ok", slog.String("portfolio_item_id", id))
	transport.WriteOK(w)
}

func (h *Handler) AdminPublish(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	id := strings.TrimSpace(chi.URLParam(r, "id"))

	var req PublishRequest
	if err := httpx.DecodeJSON(r.Body, &req); err != nil {
		log.Warn("admin portfolio publish: invalid json")
		transport.WriteError(w, http.StatusBadRequest, "invalid json", nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		log.Warn("admin portfolio publish: validation error")
		transport.WriteError(w, http.StatusBadRequest, "validation error", httpx.ValidationDetails(h.val.ValidationErrors(err)))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	item, err := h.service.SetPublished(ctx, id, *req.Published)
	if err != nil {
		h.writeServiceError(w, log, "admin portfolio publish", err)
		return
	}

	log.Info("admin portfolio publish: ok", slog.String("portfolio_item_id", id), slog.Bool("published", item.Published))
	transport.WriteJSON(w, http.StatusOK, item)
}

func (h *Handler) AdminReorder(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)

	var req ReorderRequest
	if err := httpx.DecodeJSON(r.Body, &req); err != nil {
		log.Warn("admin portfolio reorder: invalid json")
		transport.WriteError(w, http.StatusBadRequest, "invalid json", nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		log.Warn("admin portfolio reorder: validation error")
		transport.WriteError(w, http.StatusBadRequest, "validation error", httpx.ValidationDetails(h.val.ValidationErrors(err)))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	if err := h.service.Reorder(ctx, req.Items); err != nil {
		h.writeServiceError(w, log, "admin portfolio reorder", err)
		return
	}

	log.Info("admin portfolio reorder: ok", slog.Int("count", len(req.Items)))
	transport.WriteOK(w)
}

func (h *Handler) AdminAddMedia(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	id := strings.TrimSpace(chi.URLParam(r, "id"))

	var req MediaRequest
	if err := httpx.DecodeJSON(r.Body, &req); err != nil {
		log.Warn("admin portfolio media add: invalid json")
		transport.WriteError(w, http.StatusBadRequest, "invalid json", nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		log.Warn("admin portfolio media add: validation error")
		transport.WriteError(w, http.StatusBadRequest, "validation error", httpx.ValidationDetails(h.val.ValidationErrors(err)))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	media, err := h.service.AddMedia(ctx, id, req)
	if err != nil {
		h.writeServiceError(w, log, "admin portfolio media add", err)
		return
	}

	log.Info("admin portfolio media add: ok", slog.String("portfolio_item_id", id), slog.String("media_id", media.ID))
	transport.WriteJSON(w, http.StatusCreated, media)
}

func (h *Handler) AdminDeleteMedia(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	id := strings.TrimSpace(chi.URLParam(r, "id"))
	mediaID := strings.TrimSpace(chi.URLParam(r, "mediaId"))

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := h.service.DeleteMedia(ctx, id, mediaID); err != nil {
		h.writeServiceError(w, log, "admin portfolio media delete", err)
		return
	}

	log.Info("admin portfolio media delete: ok", slog.String("portfolio_item_id", id), slog.String("media_id", mediaID))
	transport.WriteOK(w)
}

func (h *Handler) decodeUpsert(w http.ResponseWriter, r *http.Request, log *slog.Logger, area string) (UpsertRequest, bool) {
	var req UpsertRequest
	if err := httpx.DecodeJSON(r.Body, &req); err != nil {
		log.Warn(area + ": invalid json")
		transport.WriteError(w, http.StatusBadRequest, "invalid json", nil)
		return UpsertRequest{}, false
	}

	details := map[string]string{}
	if err := h.val.Struct(req); err != nil {
		for field, tag := range httpx.ValidationDetails(h.val.ValidationErrors(err)) {
			details[field] = tag
		}
	}
	for field, tag := range blocks.Validate(h.val, req.Blocks) {
		details[field] = tag
	}
	if len(details) > 0 {
		log.Warn(area+": validation error", slog.Int("fields", len(details)))
		transport.WriteError(w, http.StatusBadRequest, "validation error", details)
		return UpsertRequest{}, false
	}
	return req, true
}

func (h *Handler) slugParam(w http.ResponseWriter, r *http.Request, log *slog.Logger, area string) (string, bool) {
	slug := strings.TrimSpace(chi.URLParam(r, "slug"))
	if slug == "" {
		log.Warn(area + ": missing slug")
		transport.WriteError(w, http.StatusBadRequest, "missing slug", nil)
		return "", false
	}
	return slug, true
}

func (h *Handler) writeServiceError(w http.ResponseWriter, log *slog.Logger, area string, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		log.Warn(area + ": not found")
		transport.WriteError(w, http.StatusNotFound, "portfolio item not found", nil)
	case errors.Is(err, ErrMediaNotFound):
		log.Warn(area + ": media not found")
		transport.WriteError(w, http.StatusNotFound, "media not found", nil)
	case errors.Is(err, ErrSlugExists):
		log.Warn(area + ": slug exists")
		transport.WriteError(w, http.StatusConflict, "slug already exists", nil)
	case errors.Is(err, ErrInvalidSlug):
		log.Warn(area + ": invalid slug")
		transport.WriteError(w, http.StatusBadRequest, "validation error", map[string]string{"slug": "slug"})
	case errors.Is(err, ErrDuplicateID):
		log.Warn(area + ": duplicate id")
		transport.WriteError(w, http.StatusBadRequest, "duplicate id", nil)
	case errors.Is(err, blocks.ErrInvalidBlock):
		log.Warn(area+": invalid block", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusBadRequest, "invalid block", nil)
	default:
		log.Error(area+": database error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "database error", nil)
	}
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
