package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"portfolio-backend/internal/auth"
	"portfolio-backend/internal/middleware"
	"portfolio-backend/internal/users"
	"portfolio-backend/internal/validation"
)

type Authenticator interface {
	Authenticate(ctx context.Context, email, password string) (users.User, error)
}

// Stats supplies the dashboard counters.
type Stats interface {
	PortfolioCounts(ctx context.Context) (total, published int64, err error)
	SkillCount(ctx context.Context) (int64, error)
	UnreadMessages(ctx context.Context) (int64, error)
}

type Server struct {
	Users        Authenticator
	Tokens       *auth.Manager
	Stats        Stats
	Val          *validation.Validator
	Log          *slog.Logger
	CookieSecure bool
}

func (s *Server) logWithRequest(r *http.Request) *slog.Logger {
	if r == nil {
		return s.Log
	}
	if id := middleware.RequestIDFromContext(r.Context()); id != "" {
		return s.Log.With(slog.String("request_id", id))
	}
	return s.Log
}
