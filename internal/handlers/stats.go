package handlers

import (
	"context"

	"portfolio-backend/internal/messages"
	"portfolio-backend/internal/portfolio"
	"portfolio-backend/internal/skills"
)

// ServiceStats reads the dashboard counters from the domain services.
type ServiceStats struct {
	Portfolio *portfolio.Service
	Skills    *skills.Service
	Messages  *messages.Service
}

func (s ServiceStats) PortfolioCounts(ctx context.Context) (int64, int64, error) {
	return s.Portfolio.Counts(ctx)
}

func (s ServiceStats) SkillCount(ctx context.Context) (int64, error) {
	return s.Skills.Count(ctx)
}

func (s ServiceStats) UnreadMessages(ctx context.Context) (int64, error) {
	return s.Messages.CountUnread(ctx)
}
