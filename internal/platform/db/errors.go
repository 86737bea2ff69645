package db

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/gestion-users/gestion-users/internal/shared"
)

const uniqueViolation = "23505"

// Classify maps driver failures onto the shared error kinds. The driver
// error stays in the chain for errors.As.
func Classify(err error) error {
	if err == nil || classified(err) {
		return err
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%w: %w", shared.ErrNotFound, err)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return fmt.Errorf("%w: %s: %w", shared.ErrConflict, pgErr.ConstraintName, err)
	}
	return fmt.Errorf("%w: %w", shared.ErrInfrastructure, err)
}

func classified(err error) bool {
	return errors.Is(err, shared.ErrNotFound) ||
		errors.Is(err, shared.ErrConflict) ||
		errors.Is(err, shared.ErrInfrastructure) ||
		errors.Is(err, shared.ErrValidation)
}
