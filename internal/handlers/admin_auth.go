package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"portfolio-backend/internal/auth"
	"portfolio-backend/internal/httpx"
	"portfolio-backend/internal/transport"
	"portfolio-backend/internal/users"
)

type AdminSessionResponse struct {
	Status string      `json:"status"`
	User   *users.User `json:"user,omitempty"`
}

func (s *Server) AdminLogin(w http.ResponseWriter, r *http.Request) {
	log := s.logWithRequest(r)
	var req users.LoginRequest
	if err := httpx.DecodeJSON(r.Body, &req); err != nil {
		log.Warn("admin login: invalid json")
		transport.WriteError(w, http.StatusBadRequest, "invalid json", nil)
		return
	}
	if err := s.Val.Struct(req); err != nil {
		log.Warn("admin login: validation error")
		details := httpx.ValidationDetails(s.Val.ValidationErrors(err))
		transport.WriteError(w, http.StatusBadRequest, "validation error", details)
		return
	}

	if s.Tokens == nil || s.Users == nil {
		log.Warn("admin login: not configured")
		transport.WriteError(w, http.StatusServiceUnavailable, "admin auth not configured", nil)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	user, err := s.Users.Authenticate(ctx, req.Email, req.Password)
	if errors.Is(err, users.ErrInvalidCredentials) {
		log.Warn("admin login: invalid credentials", slog.String("email", req.Email))
		transport.WriteError(w, http.StatusUnauthorized, "invalid credentials", nil)
		return
	}
	if err != nil {
		log.Error("admin login: database error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "database error", nil)
		return
	}

	if !s.issueSession(w, log, user.ID, user.Email) {
		return
	}
	log.Info("admin login: ok", slog.String("user_id", user.ID))
	transport.WriteJSON(w, http.StatusOK, AdminSessionResponse{Status: "ok", User: &user})
}

func (s *Server) AdminRefresh(w http.ResponseWriter, r *http.Request) {
	log := s.logWithRequest(r)
	if s.Tokens == nil {
		log.Warn("admin refresh: not configured")
		transport.WriteError(w, http.StatusServiceUnavailable, "admin auth not configured", nil)
		return
	}

	refreshCookie, err := r.Cookie(auth.RefreshCookie)
	if err != nil || refreshCookie.Value == "" {
		log.Warn("admin refresh: missing refresh token")
		transport.WriteError(w, http.StatusUnauthorized, "missing refresh token", nil)
		return
	}

	claims, err := s.Tokens.ParseRefresh(refreshCookie.Value)
	if err != nil {
		log.Warn("admin refresh: invalid refresh token")
		transport.WriteError(w, http.StatusUnauthorized, "invalid refresh token", nil)
		return
	}

	if !s.issueSession(w, log, claims.Subject, claims.Email) {
		return
	}
	log.Info("admin refresh: ok", slog.String("user_id", claims.Subject))
	transport.WriteJSON(w, http.StatusOK, AdminSessionResponse{Status: "ok"})
}

func (s *Server) AdminLogout(w http.ResponseWriter, r *http.Request) {
	log := s.logWithRequest(r)
	auth.ClearSessionCookies(w, s.CookieSecure)
	log.Info("admin logout: ok")
	transport.WriteJSON(w, http.StatusOK, AdminSessionResponse{Status: "ok"})
}

func (s *Server) issueSession(w http.ResponseWriter, log *slog.Logger, subject, email string) bool {
	accessToken, err := s.Tokens.NewAccessToken(subject, email, auth.RoleAdmin)
	if err != nil {
		log.Error("admin session: token error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "token error", nil)
		return false
	}
	refreshToken, err := s.Tokens.NewRefreshToken(subject, email, auth.RoleAdmin)
	if err != nil {
		log.Error("admin session: token error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "token error", nil)
		return false
	}
	auth.SetSessionCookies(w, s.Tokens, accessToken, refreshToken, s.CookieSecure)
	return true
}
