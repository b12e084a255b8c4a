package blocks

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"portfolio-backend/internal/db"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

var (
	ErrNotFound     = errors.New("block not found")
	ErrItemNotFound = errors.New("portfolio item not found")
	ErrInvalidBlock = errors.New("invalid block")
)

// ItemLookup reports whether a portfolio item exists.
type ItemLookup interface {
	Exists(ctx context.Context, id string) (bool, error)
}

type Service struct {
	repo     Repository
	items    ItemLookup
	tx       db.Transactor
	location *time.Location
	log      *slog.Logger
	onChange func(ctx context.Context, itemID string)
}

func NewService(repo Repository, items ItemLookup, tx db.Transactor, location *time.Location, log *slog.Logger) *Service {
	if tx == nil {
		tx = db.Direct{}
	}
	if location == nil {
		location = time.UTC
	}
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		repo:     repo,
		items:    items,
		tx:       tx,
		location: location,
		log:      log,
	}
}

// OnChange registers fn to run after an item's blocks were written.
func (s *Service) OnChange(fn func(ctx context.Context, itemID string)) {
	s.onChange = fn
}

func (s *Service) changed(ctx context.Context, itemID string) {
	if s.onChange != nil {
		s.onChange(ctx, itemID)
	}
}

type CreateRequest struct {
	Type    Type        `json:"type" validate:"required"`
	Content interface{} `json:"content"`
	Order   *int        `json:"order" validate:"omitempty,gte=0"`
}

type ReplaceRequest struct {
	Blocks []Block `json:"blocks"`
}

// List returns the item's blocks in ascending order.
func (s *Service) List(ctx context.Context, itemID string) ([]Block, error) {
	itemID = strings.TrimSpace(itemID)
	if err := s.ensureItem(ctx, itemID); err != nil {
		return nil, err
	}
	return s.Load(ctx, itemID)
}

// Load decodes the item's stored blocks without checking the item. Rows
// whose content no longer parses are logged and skipped.
func (s *Service) Load(ctx context.Context, itemID string) ([]Block, error) {
	records, err := s.repo.ListByItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	out := make([]Block, 0, len(records))
	for _, rec := range records {
		b, err := decodeRecord(rec)
		if err != nil {
			s.log.Warn("blocks load: skipped malformed block",
				slog.String("block_id", rec.ID),
				slog.String("portfolio_item_id", itemID),
				slog.String("error", err.Error()),
			)
			continue
		}
		out = append(out, b)
	}
	return out, nil
}

func (s *Service) Create(ctx context.Context, itemID string, req CreateRequest) (Block, error) {
	itemID = strings.TrimSpace(itemID)
	content, err := ParseContent(req.Type, req.Content)
	if errors.Is(err, ErrEmptyContent) {
		content, err = DefaultContent(req.Type), nil
	}
	if err != nil {
		return Block{}, fmt.Errorf("%w: %v", ErrInvalidBlock, err)
	}
	serialized, err := MarshalContent(content)
	if err != nil {
		return Block{}, fmt.Errorf("%w: %v", ErrInvalidBlock, err)
	}

	order := 0
	if req.Order != nil {
		order = *req.Order
	}

	if err := s.ensureItem(ctx, itemID); err != nil {
		return Block{}, err
	}

	now := time.Now().In(s.location)
	rec := Record{
		ID:        newID(),
		ItemID:    itemID,
		Type:      req.Type,
		Order:     order,
		Content:   serialized,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Insert(ctx, rec); err != nil {
		return Block{}, err
	}
	s.changed(ctx, itemID)
	return decodeRecord(rec)
}

// ReplaceAll makes list the item's complete block set in one transaction.
// Entries carrying the id of one of the item's blocks keep that id; any
// other entry is stored under a fresh id. Order is rewritten to the list
// index and stored blocks missing from list are deleted.
func (s *Service) ReplaceAll(ctx context.Context, itemID string, list []Block) ([]Block, error) {
	itemID = strings.TrimSpace(itemID)
	for i, b := range list {
		if !b.Type.Valid() || b.parseErr != nil || b.Content == nil || !b.Content.accepts(b.Type) {
			return nil, fmt.Errorf("%w: blocks[%d]", ErrInvalidBlock, i)
		}
	}

	err := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		if err := s.ensureItem(ctx, itemID); err != nil {
			return err
		}
		existing, err := s.repo.ListByItem(ctx, itemID)
		if err != nil {
			return err
		}
		owned := make(map[string]Record, len(existing))
		for _, rec := range existing {
			owned[rec.ID] = rec
		}

		now := time.Now().In(s.location)
		keep := make([]string, 0, len(list))
		claimed := make(map[string]bool, len(list))
		var inserts, replaces []Record
		for i, b := range list {
			serialized, err := MarshalContent(b.Content)
			if err != nil {
				return fmt.Errorf("%w: blocks[%d]: %v", ErrInvalidBlock, i, err)
			}
			rec := Record{
				ItemID:    itemID,
				Type:      b.Type,
				Order:     i,
				Content:   serialized,
				UpdatedAt: now,
			}
			id := strings.TrimSpace(b.ID)
			if prev, ok := owned[id]; ok && !claimed[id] {
				claimed[id] = true
				rec.ID = id
				rec.CreatedAt = prev.CreatedAt
				keep = append(keep, id)
				replaces = append(replaces, rec)
				continue
			}
			rec.ID = newID()
			rec.CreatedAt = now
			inserts = append(inserts, rec)
		}

		if _, err := s.repo.DeleteByItemExcept(ctx, itemID, keep); err != nil {
			return err
		}
		for _, rec := range replaces {
			if err := s.repo.Replace(ctx, rec); err != nil {
				return err
			}
		}
		return s.repo.Insert(ctx, inserts...)
	})
	if err != nil {
		return nil, err
	}

	s.changed(ctx, itemID)
	return s.Load(ctx, itemID)
}

func (s *Service) Delete(ctx context.Context, itemID, id string) error {
	itemID = strings.TrimSpace(itemID)
	if err := s.ensureItem(ctx, itemID); err != nil {
		return err
	}
	deleted, err := s.repo.Delete(ctx, itemID, strings.TrimSpace(id))
	if err != nil {
		return err
	}
	if !deleted {
		return ErrNotFound
	}
	s.changed(ctx, itemID)
	return nil
}

// DeleteAll removes every block of the item.
func (s *Service) DeleteAll(ctx context.Context, itemID string) error {
	_, err := s.repo.DeleteByItemExcept(ctx, strings.TrimSpace(itemID), nil)
	return err
}

func (s *Service) ensureItem(ctx context.Context, itemID string) error {
	if itemID == "" {
		return ErrItemNotFound
	}
	if s.items == nil {
		return nil
	}
	ok, err := s.items.Exists(ctx, itemID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrItemNotFound
		}
		return err
	}
	if !ok {
		return ErrItemNotFound
	}
	return nil
}

func decodeRecord(rec Record) (Block, error) {
	content, err := ParseContent(rec.Type, rec.Content)
	if err != nil {
		return Block{}, err
	}
	return Block{
		ID:        rec.ID,
		ItemID:    rec.ItemID,
		Type:      rec.Type,
		Order:     rec.Order,
		Content:   content,
		CreatedAt: rec.CreatedAt,
		UpdatedAt: rec.UpdatedAt,
	}, nil
}

func newID() string {
	return primitive.NewObjectID().Hex()
}
