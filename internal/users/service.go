package users

import (
	"context"
	"errors"
	"strings"
	"time"

	"portfolio-backend/internal/auth"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

type Service struct {
	repo     Repository
	location *time.Location
}

func NewService(repo Repository, location *time.Location) *Service {
	if location == nil {
		location = time.UTC
	}
	return &Service{repo: repo, location: location}
}

// Authenticate returns ErrInvalidCredentials both for an unknown email and
// for a wrong password.
func (s *Service) Authenticate(ctx context.Context, email, password string) (User, error) {
	user, err := s.repo.FindByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, mongo.ErrNoDocuments) {
		auth.BurnCompare(password)
		return User{}, ErrInvalidCredentials
	}
	if err != nil {
		return User{}, err
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return User{}, ErrInvalidCredentials
	}
	return user, nil
}

// EnsureAdmin creates or refreshes the admin account with a new bcrypt hash.
func (s *Service) EnsureAdmin(ctx context.Context, email, name, password string) (User, error) {
	email = normalizeEmail(email)
	if email == "" {
		return User{}, errors.New("admin email is required")
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return User{}, err
	}
	if strings.TrimSpace(name) == "" {
		name = "Admin"
	}

	user := User{
		ID:           primitive.NewObjectID().Hex(),
		Email:        email,
		Name:         name,
		PasswordHash: hash,
	}
	touch(&user, time.Now().In(s.location))
	if err := s.repo.Upsert(ctx, user); err != nil {
		return User{}, err
	}
	return user, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
