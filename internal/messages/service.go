package messages

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

var (
	ErrNotFound = errors.New("message not found")
	// ErrBlocked marks a honeypot submission. Callers answer it as a success.
	ErrBlocked = errors.New("submission blocked")
)

// Notifier tells the site owner about a new message.
type Notifier interface {
	NotifyContact(ctx context.Context, msg Message) error
}

const notifyTimeout = 8 * time.Second

type Service struct {
	repo     Repository
	notifier Notifier
	location *time.Location
	log      *slog.Logger
	wg       sync.WaitGroup
}

func NewService(repo Repository, location *time.Location) *Service {
	if location == nil {
		location = time.UTC
	}
	return &Service{
		repo:     repo,
		location: location,
		log:      slog.Default(),
	}
}

func (s *Service) WithNotifier(n Notifier) *Service {
	s.notifier = n
	return s
}

func (s *Service) WithLogger(log *slog.Logger) *Service {
	if log != nil {
		s.log = log
	}
	return s
}

// Submit stores a contact message and notifies in the background. The
// notification outlives the request and its failure is only logged.
func (s *Service) Submit(ctx context.Context, req CreateRequest) (Message, error) {
	if strings.TrimSpace(req.Website) != "" {
		return Message{}, ErrBlocked
	}

	msg := Message{
		ID:        primitive.NewObjectID().Hex(),
		Name:      strings.TrimSpace(req.Name),
		Email:     strings.TrimSpace(req.Email),
		Message:   strings.TrimSpace(req.Message),
		CreatedAt: time.Now().In(s.location),
	}
	if err := s.repo.Create(ctx, msg); err != nil {
		return Message{}, err
	}

	if s.notifier != nil {
		s.wg.Add(1)
		go s.notify(msg)
	}
	return msg, nil
}

func (s *Service) notify(msg Message) {
	defer s.wg.Done()

	ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
	defer cancel()

	if err := s.notifier.NotifyContact(ctx, msg); err != nil {
		s.log.Error("contact notify: send failed", slog.String("message_id", msg.ID), slog.String("error", err.Error()))
		return
	}
	s.log.Info("contact notify: sent", slog.String("message_id", msg.ID))
}

// Wait blocks until pending notifications finish, for shutdown.
func (s *Service) Wait() {
	s.wg.Wait()
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]Message, int64, error) {
	items, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.repo.Count(ctx, filter.Unread)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (s *Service) CountUnread(ctx context.Context) (int64, error) {
	return s.repo.Count(ctx, true)
}

func (s *Service) SetRead(ctx context.Context, id string, read bool) (Message, error) {
	msg, err := s.repo.SetRead(ctx, id, read)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return Message{}, ErrNotFound
	}
	return msg, err
}

func (s *Service) Delete(ctx context.Context, id string) error {
	ok, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}
	return nil
}
