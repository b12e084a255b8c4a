package skills

import (
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

// List serves both the public and the admin skill list.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	items, err := h.service.List(ctx)
	if err != nil {
		log.Error("skills list: database error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "database error", nil)
		return
	}

	log.Info("skills list: ok", slog.Int("count", len(items)))
	transport.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"skills": items,
	})
}

func (h *Handler) AdminCreate(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)

	var req UpsertRequest
	if !h.decode(w, r, log, "admin skills create", &req) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	skill, err := h.service.Create(ctx, req)
	if err != nil {
		log.Error("admin skills create: database error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "database error", nil)
		return
	}

	log.Info("admin skills create: ok", slog.String("skill_id", skill.ID))
	transport.WriteJSON(w, http.StatusCreated, skill)
}

func (h *Handler) AdminUpdate(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	id := strings.TrimSpace(chi.URLParam(r, "id"))

	var req UpsertRequest
	if !h.decode(w, r, log, "admin skills update", &req) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	skill, err := h.service.Update(ctx, id, req)
	if err != nil {
		h.writeServiceError(w, log, "admin skills update", id, err)
		return
	}

	log.Info("admin skills update: ok", slog.String("skill_id", id))
	transport.WriteJSON(w, http.StatusOK, skill)
}

func (h *Handler) AdminDelete(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	id := strings.TrimSpace(chi.URLParam(r, "id"))

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := h.service.Delete(ctx, id); err != nil {
		h.writeServiceError(w, log, "admin skills delete", id, err)
		return
	}

	log.Info("admin skills delete: ok", slog.String("skill_id", id))
	transport.WriteOK(w)
}

func (h *Handler) AdminReorder(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)

	var req ReorderRequest
	if !h.decode(w, r, log, "admin skills reorder", &req) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 8*time.Second)
	defer cancel()

	if err := h.service.Reorder(ctx, req.Skills); err != nil {
		h.writeServiceError(w, log, "admin skills reorder", "", err)
		return
	}

	log.Info("admin skills reorder: ok", slog.Int("count", len(req.Skills)))
	transport.WriteOK(w)
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, log *slog.Logger, area string, v interface{}) bool {
	if err := httpx.DecodeJSON(r.Body, v); err != nil {
		log.Warn(area + ": invalid json")
		transport.WriteError(w, http.StatusBadRequest, "invalid json", nil)
		return false
	}
	if err := h.val.Struct(v); err != nil {
		log.Warn(area + ": validation error")
		transport.WriteError(w, http.StatusBadRequest, "validation error", httpx.ValidationDetails(h.val.ValidationErrors(err)))
		return false
	}
	return true
}

func (h *Handler) writeServiceError(w http.ResponseWriter, log *slog.Logger, area, id string, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		log.Warn(area+": not found", slog.String("skill_id", id))
		transport.WriteError(w, http.StatusNotFound, "skill not found", nil)
	case errors.Is(err, ErrDuplicateID):
		log.Warn(area + ": duplicate id")
		transport.WriteError(w, http.StatusBadRequest, "duplicate id", nil)
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
