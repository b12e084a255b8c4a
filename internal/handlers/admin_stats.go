package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"portfolio-backend/internal/transport"
)

type StatsResponse struct {
	PortfolioTotal     int64 `json:"portfolioTotal"`
	PortfolioPublished int64 `json:"portfolioPublished"`
	PortfolioDrafts    int64 `json:"portfolioDrafts"`
	Skills             int64 `json:"skills"`
	UnreadMessages     int64 `json:"unreadMessages"`
}

func (s *Server) AdminStats(w http.ResponseWriter, r *http.Request) {
	log := s.logWithRequest(r)

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	total, published, err := s.Stats.PortfolioCounts(ctx)
	if err != nil {
		log.Error("admin stats: database error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "database error", nil)
		return
	}
	skills, err := s.Stats.SkillCount(ctx)
	if err != nil {
		log.Error("admin stats: database error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "database error", nil)
		return
	}
	unread, err := s.Stats.UnreadMessages(ctx)
	if err != nil {
		log.Error("admin stats: database error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "database error", nil)
		return
	}

	log.Info("admin stats: ok")
	transport.WriteJSON(w, http.StatusOK, StatsResponse{
		PortfolioTotal:     total,
		PortfolioPublished: published,
		PortfolioDrafts:    total - published,
		Skills:             skills,
		UnreadMessages:     unread,
	})
}
