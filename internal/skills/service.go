package skills

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"portfolio-backend/internal/cache"
	"portfolio-backend/internal/db"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

var (
	ErrNotFound    = errors.New("skill not found")
	ErrDuplicateID = errors.New("duplicate id in reorder")
)

const CacheKey = "skills:all"

type Service struct {
	repo     Repository
	tx       db.Transactor
	cache    cache.Cache
	cacheTTL time.Duration
	location *time.Location
	log      *slog.Logger
}

func NewService(repo Repository, tx db.Transactor, location *time.Location) *Service {
	if tx == nil {
		tx = db.Direct{}
	}
	if location == nil {
		location = time.UTC
	}
	return &Service{
		repo:     repo,
		tx:       tx,
		cache:    cache.NewNoop(),
		location: location,
		log:      slog.Default(),
	}
}

func (s *Service) WithCache(c cache.Cache, ttl time.Duration) *Service {
	if c != nil {
		s.cache = c
		s.cacheTTL = ttl
	}
	return s
}

func (s *Service) WithLogger(log *slog.Logger) *Service {
	if log != nil {
		s.log = log
	}
	return s
}

func (s *Service) Create(ctx context.Context, req UpsertRequest) (Skill, error) {
	order := 0
	if req.Order != nil {
		order = *req.Order
	} else {
		n, err := s.repo.Count(ctx)
		if err != nil {
			return Skill{}, err
		}
		order = int(n)
	}

	now := time.Now().In(s.location)
	skill := Skill{
		ID:          primitive.NewObjectID().Hex(),
		Title:       strings.TrimSpace(req.Title),
		Description: strings.TrimSpace(req.Description),
		Icon:        req.Icon,
		Color:       strings.ToUpper(req.Color),
		Order:       order,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Create(ctx, skill); err != nil {
		return Skill{}, err
	}
	s.invalidate(ctx)
	return skill, nil
}

func (s *Service) Update(ctx context.Context, id string, req UpsertRequest) (Skill, error) {
	set := bson.M{
		"title":       strings.TrimSpace(req.Title),
		"description": strings.TrimSpace(req.Description),
		"icon":        req.Icon,
		"color":       strings.ToUpper(req.Color),
		"updated_at":  time.Now().In(s.location),
	}
	if req.Order != nil {
		set["order"] = *req.Order
	}

	updated, err := s.repo.Update(ctx, strings.TrimSpace(id), set)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return Skill{}, ErrNotFound
		}
		return Skill{}, err
	}
	s.invalidate(ctx)
	return updated, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	deleted, err := s.repo.Delete(ctx, strings.TrimSpace(id))
	if err != nil {
		return err
	}
	if !deleted {
		return ErrNotFound
	}
	s.invalidate(ctx)
	return nil
}

// Reorder applies every entry or none of them.
func (s *Service) Reorder(ctx context.Context, entries []ReorderEntry) error {
	seen := make(map[string]bool, len(entries))
	for _, e := range entries {
		id := strings.TrimSpace(e.ID)
		if seen[id] {
			return fmt.Errorf("%w: %s", ErrDuplicateID, id)
		}
		seen[id] = true
	}

	now := time.Now().In(s.location)
	err := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		for _, e := range entries {
			ok, err := s.repo.SetOrder(ctx, strings.TrimSpace(e.ID), e.Order, now)
			if err != nil {
				return err
			}
			if !ok {
				return ErrNotFound
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

// List returns all skills in display order, from cache when possible.
func (s *Service) List(ctx context.Context) ([]Skill, error) {
	if raw, ok, err := s.cache.Get(ctx, CacheKey); err != nil {
		s.log.Warn("skills list: cache read failed", slog.String("error", err.Error()))
	} else if ok {
		var items []Skill
		if err := json.Unmarshal(raw, &items); err == nil {
			return items, nil
		}
	}

	items, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	if raw, err := json.Marshal(items); err == nil {
		if err := s.cache.Set(ctx, CacheKey, raw, s.cacheTTL); err != nil {
			s.log.Warn("skills list: cache write failed", slog.String("error", err.Error()))
		}
	}
	return items, nil
}

func (s *Service) Count(ctx context.Context) (int64, error) {
	return s.repo.Count(ctx)
}

// Seed inserts the skills that are not stored yet, matched by title.
func (s *Service) Seed(ctx context.Context, defaults []UpsertRequest) error {
	now := time.Now().In(s.location)
	for i, req := range defaults {
		order := i
		if req.Order != nil {
			order = *req.Order
		}
		skill := Skill{
			ID:          primitive.NewObjectID().Hex(),
			Title:       strings.TrimSpace(req.Title),
			Description: strings.TrimSpace(req.Description),
			Icon:        req.Icon,
			Color:       strings.ToUpper(req.Color),
			Order:       order,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := s.repo.UpsertByTitle(ctx, skill); err != nil {
			return err
		}
	}
	s.invalidate(ctx)
	return nil
}

func (s *Service) invalidate(ctx context.Context) {
	if err := s.cache.Delete(ctx, CacheKey); err != nil {
		s.log.Warn("skills cache: invalidate failed", slog.String("error", err.Error()))
	}
}

// Defaults are the skills a fresh install starts with.
func Defaults() []UpsertRequest {
	return []UpsertRequest{
		{
			Title:       "Photo Manipulation",
			Description: "Laat mij je foto's tot leven brengen met creatieve composities en perfecte retouches. Van simpele aanpassingen tot complexe manipulaties, ik maak het mogelijk!",
			Icon:        "Ps",
			Color:       "#31A8FF",
		},
		{
			Title:       "Motion Graphics",
			Description: "Van logo animaties tot complete video composities - ik breng beweging in je merk. Smooth animaties die je boodschap versterken en je publiek boeien.",
			Icon:        "Ae",
			Color:       "#9999FF",
		},
		{
			Title:       "Logo Design",
			Description: "Een logo is de identiteit van je merk. Ik ontwerp unieke, memorabele logo's die perfect aansluiten bij jouw visie en doelgroep. Van concept tot final design.",
			Icon:        "Ai",
			Color:       "#FF9A00",
		},
	}
}
