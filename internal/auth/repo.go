package auth

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/gestion-users/gestion-users/internal/platform/db"
)

// Repository defines persistence operations for auth module.
type Repository interface {
	FindByCredentials(ctx context.Context, login, password string) (*User, error)
}

type queryRower interface {
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	db queryRower
}

// NewRepository constructs a PostgreSQL repository over a pool or transaction.
func NewRepository(conn queryRower) *PGRepository {
	return &PGRepository{db: conn}
}

const findByCredentials = `SELECT id, prenom, nom, login, role FROM utilisateur WHERE login = $1 AND password = $2 LIMIT 1`

// FindByCredentials fetches the first user whose login and password match
// exactly. A miss is reported as shared.ErrNotFound.
func (r *PGRepository) FindByCredentials(ctx context.Context, login, password string) (*User, error) {
	var user User
	err := r.db.QueryRow(ctx, findByCredentials, login, password).
		Scan(&user.ID, &user.Prenom, &user.Nom, &user.Login, &user.Role)
	if err != nil {
		return nil, db.Classify(err)
	}
	return &user, nil
}

var _ Repository = (*PGRepository)(nil)
