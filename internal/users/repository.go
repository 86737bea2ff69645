package users

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/gestion-users/gestion-users/internal/platform/db"
)

// DBTX is satisfied by *pgxpool.Pool and pgx.Tx.
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

const (
	selectUsers = `SELECT id, prenom, nom, login, password, role FROM utilisateur`
	searchUsers = selectUsers + ` WHERE prenom LIKE $1 OR nom LIKE $1 OR login LIKE $1`
	insertUser  = `INSERT INTO utilisateur (prenom, nom, login, password, role) VALUES ($1, $2, $3, $4, $5)`
	updateUser  = `UPDATE utilisateur SET prenom = $1, nom = $2, login = $3, password = $4, role = $5 WHERE id = $6`
	deleteUser  = `DELETE FROM utilisateur WHERE id = $1`
)

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	db DBTX
}

// NewRepository constructs a repository.
func NewRepository(db DBTX) *Repository {
	return &Repository{db: db}
}

// ListUsers returns every user, or those whose prenom, nom or login contains
// search. Wildcards inside search are passed through to LIKE unescaped.
func (r *Repository) ListUsers(ctx context.Context, search string) ([]User, error) {
	query := selectUsers
	var args []interface{}
	if search != "" {
		query = searchUsers
		args = append(args, "%"+search+"%")
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, db.Classify(err)
	}
	defer rows.Close()

	users := make([]User, 0)
	for rows.Next() {
		var user User
		if err := rows.Scan(&user.ID, &user.Prenom, &user.Nom, &user.Login, &user.Password, &user.Role); err != nil {
			return nil, db.Classify(err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, db.Classify(err)
	}
	return users, nil
}

// CreateUser inserts a new row.
func (r *Repository) CreateUser(ctx context.Context, in Input) error {
	_, err := r.db.Exec(ctx, insertUser, in.Prenom, in.Nom, in.Login, in.Password, in.Role)
	return db.Classify(err)
}

// UpdateUser overwrites all fields of row id. Zero affected rows is not an error.
func (r *Repository) UpdateUser(ctx context.Context, id int64, in Input) error {
	_, err := r.db.Exec(ctx, updateUser, in.Prenom, in.Nom, in.Login, in.Password, in.Role, id)
	return db.Classify(err)
}

// DeleteUser removes row id if present.
func (r *Repository) DeleteUser(ctx context.Context, id int64) error {
	_, err := r.db.Exec(ctx, deleteUser, id)
	return db.Classify(err)
}

var _ RepositoryPort = (*Repository)(nil)
