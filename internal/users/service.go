package users

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// RepositoryPort defines data access methods for users.
type RepositoryPort interface {
	ListUsers(ctx context.Context, search string) ([]User, error)
	CreateUser(ctx context.Context, in Input) error
	UpdateUser(ctx context.Context, id int64, in Input) error
	DeleteUser(ctx context.Context, id int64) error
}

// Service handles user business logic.
type Service struct {
	repo     RepositoryPort
	validate *validator.Validate
}

// NewService builds Service instance.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo, validate: validator.New()}
}

// ListUsers returns all users, filtered by search when it is not empty.
func (s *Service) ListUsers(ctx context.Context, search string) ([]User, error) {
	return s.repo.ListUsers(ctx, search)
}

// CreateUser validates presence of every field and inserts the user.
func (s *Service) CreateUser(ctx context.Context, in Input) error {
	if err := s.Validate(in); err != nil {
		return err
	}
	return s.repo.CreateUser(ctx, in)
}

// UpdateUser validates presence of every field and overwrites user id.
func (s *Service) UpdateUser(ctx context.Context, id int64, in Input) error {
	if err := s.Validate(in); err != nil {
		return err
	}
	return s.repo.UpdateUser(ctx, id, in)
}

// DeleteUser removes user id.
func (s *Service) DeleteUser(ctx context.Context, id int64) error {
	return s.repo.DeleteUser(ctx, id)
}

// Validate reports ErrMissingFields, naming the empty fields.
func (s *Service) Validate(in Input) error {
	err := s.validate.Struct(in)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	fields := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		fields = append(fields, strings.ToLower(fe.Field()))
	}
	return fmt.Errorf("%w: %s", ErrMissingFields, strings.Join(fields, ", "))
}
