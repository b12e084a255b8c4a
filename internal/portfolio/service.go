package portfolio

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"portfolio-backend/internal/blocks"
	"portfolio-backend/internal/cache"
	"portfolio-backend/internal/db"
	"portfolio-backend/internal/utils"
	"portfolio-backend/internal/validation"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

var (
	ErrNotFound      = errors.New("portfolio item not found")
	ErrMediaNotFound = errors.New("media not found")
	ErrSlugExists    = errors.New("slug already exists")
	ErrInvalidSlug   = errors.New("invalid slug")
	ErrDuplicateID   = errors.New("duplicate id in reorder")
)

// PublishedCacheKey holds the serialized public item list.
const PublishedCacheKey = "portfolio:published"

// BlockStore is the part of the block service an item needs.
type BlockStore interface {
	Load(ctx context.Context, itemID string) ([]blocks.Block, error)
	ReplaceAll(ctx context.Context, itemID string, list []blocks.Block) ([]blocks.Block, error)
	DeleteAll(ctx context.Context, itemID string) error
}

type Service struct {
	repo     Repository
	media    MediaRepository
	blocks   BlockStore
	tx       db.Transactor
	cache    cache.Cache
	cacheTTL time.Duration
	location *time.Location
	log      *slog.Logger
}

func NewService(repo Repository, media MediaRepository, store BlockStore, tx db.Transactor, location *time.Location) *Service {
	if tx == nil {
		tx = db.Direct{}
	}
	if location == nil {
		location = time.UTC
	}
	return &Service{
		repo:     repo,
		media:    media,
		blocks:   store,
		tx:       tx,
		cache:    cache.NewNoop(),
		location: location,
		log:      slog.Default(),
	}
}

// WithCache stores the public list in c for ttl.
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

func (s *Service) Create(ctx context.Context, req UpsertRequest) (Detail, error) {
	slug, err := resolveSlug(req.Slug, req.Title)
	if err != nil {
		return Detail{}, err
	}
	projectDate, err := s.parseProjectDate(req.ProjectDate)
	if err != nil {
		return Detail{}, err
	}

	published := false
	if req.Published != nil {
		published = *req.Published
	}
	order := 0
	if req.Order != nil {
		order = *req.Order
	}

	now := time.Now().In(s.location)
	item := Item{
		ID:          primitive.NewObjectID().Hex(),
		Title:       strings.TrimSpace(req.Title),
		Description: strings.TrimSpace(req.Description),
		Thumbnail:   strings.TrimSpace(req.Thumbnail),
		Type:        req.Type,
		EmbedURL:    strings.TrimSpace(req.EmbedURL),
		Slug:        slug,
		Published:   published,
		Order:       order,
		ProjectDate: projectDate,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	detail := Detail{Item: item}
	err = s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.Create(ctx, item); err != nil {
			if mongo.IsDuplicateKeyError(err) {
				return ErrSlugExists
			}
			return err
		}
		media, err := s.syncEmbeds(ctx, item.ID, req.Embeds, now)
		if err != nil {
			return err
		}
		list, err := s.blocks.ReplaceAll(ctx, item.ID, req.Blocks)
		if err != nil {
			return err
		}
		detail.Media = media
		detail.Blocks = list
		return nil
	})
	if err != nil {
		return Detail{}, err
	}

	s.Invalidate(ctx)
	return detail, nil
}

// Update rewrites the item and its embeds. Blocks are replaced when the
// request carries a blocks list and left alone otherwise.
func (s *Service) Update(ctx context.Context, id string, req UpsertRequest) (Detail, error) {
	id = strings.TrimSpace(id)
	slug, err := resolveSlug(req.Slug, req.Title)
	if err != nil {
		return Detail{}, err
	}
	projectDate, err := s.parseProjectDate(req.ProjectDate)
	if err != nil {
		return Detail{}, err
	}

	now := time.Now().In(s.location)
	set := bson.M{
		"title":       strings.TrimSpace(req.Title),
		"description": strings.TrimSpace(req.Description),
		"thumbnail":   strings.TrimSpace(req.Thumbnail),
		"type":        req.Type,
		"embed_url":   strings.TrimSpace(req.EmbedURL),
		"slug":        slug,
		"updated_at":  now,
	}
	if req.Published != nil {
		set["published"] = *req.Published
	}
	if req.Order != nil {
		set["order"] = *req.Order
	}
	var unset []string
	if projectDate != nil {
		set["project_date"] = *projectDate
	} else {
		unset = append(unset, "project_date")
	}

	var detail Detail
	err = s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		updated, err := s.repo.Update(ctx, id, set, unset...)
		if err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				return ErrNotFound
			}
			if mongo.IsDuplicateKeyError(err) {
				return ErrSlugExists
			}
			return err
		}
		media, err := s.syncEmbeds(ctx, id, req.Embeds, now)
		if err != nil {
			return err
		}
		var list []blocks.Block
		if req.Blocks != nil {
			list, err = s.blocks.ReplaceAll(ctx, id, req.Blocks)
		} else {
			list, err = s.blocks.Load(ctx, id)
		}
		if err != nil {
			return err
		}
		detail = Detail{Item: updated, Media: media, Blocks: list}
		return nil
	})
	if err != nil {
		return Detail{}, err
	}

	s.Invalidate(ctx)
	return detail, nil
}

// Delete removes the item's blocks, then its media, then the item.
func (s *Service) Delete(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	err := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		if err := s.ensureItem(ctx, id); err != nil {
			return err
		}
		if err := s.blocks.DeleteAll(ctx, id); err != nil {
			return err
		}
		if _, err := s.media.DeleteByItem(ctx, id); err != nil {
			return err
		}
		deleted, err := s.repo.Delete(ctx, id)
		if err != nil {
			return err
		}
		if !deleted {
			return ErrNotFound
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.Invalidate(ctx)
	return nil
}

func (s *Service) SetPublished(ctx context.Context, id string, published bool) (Item, error) {
	updated, err := s.repo.Update(ctx, strings.TrimSpace(id), bson.M{
		"published":  published,
		"updated_at": time.Now().In(s.location),
	})
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return Item{}, ErrNotFound
		}
		return Item{}, err
	}
	s.Invalidate(ctx)
	return updated, nil
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

	s.Invalidate(ctx)
	return nil
}

func (s *Service) Get(ctx context.Context, id string) (Detail, error) {
	item, err := s.repo.Get(ctx, strings.TrimSpace(id))
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return Detail{}, ErrNotFound
		}
		return Detail{}, err
	}
	return s.detail(ctx, item, false)
}

func (s *Service) ListAdmin(ctx context.Context, filter AdminListFilter, limit, offset int64) ([]Item, int64, error) {
	items, err := s.repo.ListAdmin(ctx, filter, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.repo.CountAdmin(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// Counts returns the number of items and how many of them are published.
func (s *Service) Counts(ctx context.Context) (total, published int64, err error) {
	total, err = s.repo.CountAdmin(ctx, AdminListFilter{})
	if err != nil {
		return 0, 0, err
	}
	yes := true
	published, err = s.repo.CountAdmin(ctx, AdminListFilter{Published: &yes})
	if err != nil {
		return 0, 0, err
	}
	return total, published, nil
}

// ListPublished returns published items in display order, from cache when
// possible.
func (s *Service) ListPublished(ctx context.Context) ([]Item, error) {
	if raw, ok, err := s.cache.Get(ctx, PublishedCacheKey); err != nil {
		s.log.Warn("portfolio public list: cache read failed", slog.String("error", err.Error()))
	} else if ok {
		var items []Item
		if err := json.Unmarshal(raw, &items); err == nil {
			return items, nil
		}
		s.log.Warn("portfolio public list: cache entry unreadable")
	}

	items, err := s.repo.ListPublished(ctx)
	if err != nil {
		return nil, err
	}

	if raw, err := json.Marshal(items); err == nil {
		if err := s.cache.Set(ctx, PublishedCacheKey, raw, s.cacheTTL); err != nil {
			s.log.Warn("portfolio public list: cache write failed", slog.String("error", err.Error()))
		}
	}
	return items, nil
}

// GetPublishedBySlug returns a published item with its media, its blocks
// and their rendered presentations. Drafts are not reachable by slug.
func (s *Service) GetPublishedBySlug(ctx context.Context, slug string) (Detail, error) {
	item, err := s.repo.GetPublishedBySlug(ctx, strings.TrimSpace(slug))
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return Detail{}, ErrNotFound
		}
		return Detail{}, err
	}
	return s.detail(ctx, item, true)
}

func (s *Service) AddMedia(ctx context.Context, itemID string, req MediaRequest) (Media, error) {
	itemID = strings.TrimSpace(itemID)
	if err := s.ensureItem(ctx, itemID); err != nil {
		return Media{}, err
	}

	order := 0
	if req.Order != nil {
		order = *req.Order
	} else {
		existing, err := s.media.ListByItem(ctx, itemID)
		if err != nil {
			return Media{}, err
		}
		order = len(existing)
	}

	m := Media{
		ID:        primitive.NewObjectID().Hex(),
		ItemID:    itemID,
		Type:      req.Type,
		URL:       strings.TrimSpace(req.URL),
		Caption:   strings.TrimSpace(req.Caption),
		Order:     order,
		CreatedAt: time.Now().In(s.location),
	}
	if err := s.media.Insert(ctx, m); err != nil {
		return Media{}, err
	}
	return m, nil
}

func (s *Service) DeleteMedia(ctx context.Context, itemID, mediaID string) error {
	itemID = strings.TrimSpace(itemID)
	if err := s.ensureItem(ctx, itemID); err != nil {
		return err
	}
	deleted, err := s.media.Delete(ctx, itemID, strings.TrimSpace(mediaID))
	if err != nil {
		return err
	}
	if !deleted {
		return ErrMediaNotFound
	}
	return nil
}

// Invalidate drops the cached public list.
func (s *Service) Invalidate(ctx context.Context) {
	if err := s.cache.Delete(ctx, PublishedCacheKey); err != nil {
		s.log.Warn("portfolio cache: invalidate failed", slog.String("error", err.Error()))
	}
}

func (s *Service) detail(ctx context.Context, item Item, render bool) (Detail, error) {
	media, err := s.media.ListByItem(ctx, item.ID)
	if err != nil {
		return Detail{}, err
	}
	list, err := s.blocks.Load(ctx, item.ID)
	if err != nil {
		return Detail{}, err
	}
	d := Detail{Item: item, Media: media, Blocks: list}
	if render {
		d.Presentations = blocks.Render(list)
	}
	return d, nil
}

// syncEmbeds replaces the item's EMBED media with urls, in order.
func (s *Service) syncEmbeds(ctx context.Context, itemID string, urls []string, now time.Time) ([]Media, error) {
	if _, err := s.media.DeleteByItem(ctx, itemID, MediaEmbed); err != nil {
		return nil, err
	}
	embeds := make([]Media, 0, len(urls))
	for _, u := range urls {
		u = strings.TrimSpace(u)
		if u == "" {
			continue
		}
		embeds = append(embeds, Media{
			ID:        primitive.NewObjectID().Hex(),
			ItemID:    itemID,
			Type:      MediaEmbed,
			URL:       u,
			Order:     len(embeds),
			CreatedAt: now,
		})
	}
	if err := s.media.Insert(ctx, embeds...); err != nil {
		return nil, err
	}
	return s.media.ListByItem(ctx, itemID)
}

func (s *Service) ensureItem(ctx context.Context, id string) error {
	if id == "" {
		return ErrNotFound
	}
	ok, err := s.repo.Exists(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}
	return nil
}

func (s *Service) parseProjectDate(raw string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	t, err := time.ParseInLocation("2006-01-02", raw, s.location)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// resolveSlug derives the slug from the title when none is given and
// rejects slugs that do not match the slug pattern.
func resolveSlug(slug, title string) (string, error) {
	raw := strings.TrimSpace(slug)
	if raw == "" {
		raw = utils.Slugify(title)
	}
	raw = strings.ToLower(raw)
	if !validation.IsSlug(raw) {
		return "", ErrInvalidSlug
	}
	return raw, nil
}
