package auth

import (
	"context"
	"errors"

	"github.com/gestion-users/gestion-users/internal/shared"
)

// Service wraps authentication business rules.
type Service struct {
	repo Repository
}

// NewService constructs a new Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Authenticate matches login and password exactly against stored records.
// Store failures are returned as is so callers can tell them apart from
// shared.ErrInvalidCredentials.
func (s *Service) Authenticate(ctx context.Context, login, password string) (*User, error) {
	user, err := s.repo.FindByCredentials(ctx, login, password)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.ErrInvalidCredentials
		}
		return nil, err
	}
	return user, nil
}
