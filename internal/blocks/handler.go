package blocks

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

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

type typeInfo struct {
	Type    Type    `json:"type"`
	Label   string  `json:"label"`
	Icon    string  `json:"icon"`
	Default Content `json:"defaultContent"`
}

func (h *Handler) Types(w http.ResponseWriter, r *http.Request) {
	defs := Registry()
	out := make([]typeInfo, 0, len(defs))
	for _, def := range defs {
		out = append(out, typeInfo{
			Type:    def.Type,
			Label:   def.Label,
			Icon:    def.Icon,
			Default: def.Default(),
		})
	}
	transport.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"types": out,
	})
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	itemID := strings.TrimSpace(chi.URLParam(r, "id"))

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	list, err := h.service.List(ctx, itemID)
	if err != nil {
		h.writeServiceError(w, log, "admin blocks list", itemID, err)
		return
	}

	log.Info("admin blocks list: ok", slog.String("portfolio_item_id", itemID), slog.Int("count", len(list)))
	transport.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"blocks": list,
	})
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	itemID := strings.TrimSpace(chi.URLParam(r, "id"))

	var req CreateRequest
	if err := httpx.DecodeJSON(r.Body, &req); err != nil {
		log.Warn("admin blocks create: invalid json")
		transport.WriteError(w, http.StatusBadRequest, "invalid json", nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		log.Warn("admin blocks create: validation error")
		transport.WriteError(w, http.StatusBadRequest, "validation error", httpx.ValidationDetails(h.val.ValidationErrors(err)))
		return
	}
	if !req.Type.Valid() {
		log.Warn("admin blocks create: unknown type", slog.String("type", string(req.Type)))
		transport.WriteError(w, http.StatusBadRequest, "validation error", map[string]string{"type": "oneof"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	block, err := h.service.Create(ctx, itemID, req)
	if err != nil {
		h.writeServiceError(w, log, "admin blocks create", itemID, err)
		return
	}

	log.Info("admin blocks create: ok", slog.String("portfolio_item_id", itemID), slog.String("block_id", block.ID))
	transport.WriteJSON(w, http.StatusCreated, block)
}

func (h *Handler) Replace(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	itemID := strings.TrimSpace(chi.URLParam(r, "id"))

	var req ReplaceRequest
	if err := httpx.DecodeJSON(r.Body, &req); err != nil {
		log.Warn("admin blocks replace: invalid json")
		transport.WriteError(w, http.StatusBadRequest, "invalid json", nil)
		return
	}
	if details := Validate(h.val, req.Blocks); details != nil {
		log.Warn("admin blocks replace: validation error", slog.Int("fields", len(details)))
		transport.WriteError(w, http.StatusBadRequest, "validation error", details)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 8*time.Second)
	defer cancel()

	list, err := h.service.ReplaceAll(ctx, itemID, req.Blocks)
	if err != nil {
		h.writeServiceError(w, log, "admin blocks replace", itemID, err)
		return
	}

	log.Info("admin blocks replace: ok", slog.String("portfolio_item_id", itemID), slog.Int("count", len(list)))
	transport.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"blocks": list,
	})
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	itemID := strings.TrimSpace(chi.URLParam(r, "id"))
	blockID := strings.TrimSpace(r.URL.Query().Get("blockId"))
	if blockID == "" {
		log.Warn("admin blocks delete: missing blockId")
		transport.WriteError(w, http.StatusBadRequest, "blockId is required", nil)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := h.service.Delete(ctx, itemID, blockID); err != nil {
		h.writeServiceError(w, log, "admin blocks delete", itemID, err)
		return
	}

	log.Info("admin blocks delete: ok", slog.String("portfolio_item_id", itemID), slog.String("block_id", blockID))
	transport.WriteOK(w)
}

// Preview renders an unsaved block list. With ?format=html the HTML fragment
// is returned instead of the presentation list.
func (h *Handler) Preview(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)

	var req ReplaceRequest
	if err := httpx.DecodeJSON(r.Body, &req); err != nil {
		log.Warn("admin blocks preview: invalid json")
		transport.WriteError(w, http.StatusBadRequest, "invalid json", nil)
		return
	}

	presentations := Render(req.Blocks)
	if r.URL.Query().Get("format") == "html" {
		var buf bytes.Buffer
		if err := RenderHTML(&buf, presentations); err != nil {
			log.Error("admin blocks preview: render error", slog.String("error", err.Error()))
			transport.WriteError(w, http.StatusInternalServerError, "render error", nil)
			return
		}
		transport.WriteHTML(w, http.StatusOK, buf.Bytes())
		return
	}

	transport.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"presentations": presentations,
	})
}

func (h *Handler) writeServiceError(w http.ResponseWriter, log *slog.Logger, area, itemID string, err error) {
	switch {
	case errors.Is(err, ErrItemNotFound):
		log.Warn(area+": item not found", slog.String("portfolio_item_id", itemID))
		transport.WriteError(w, http.StatusNotFound, "portfolio item not found", nil)
	case errors.Is(err, ErrNotFound):
		log.Warn(area+": not found", slog.String("portfolio_item_id", itemID))
		transport.WriteError(w, http.StatusNotFound, "block not found", nil)
	case errors.Is(err, ErrInvalidBlock):
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
