package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gestion-users/gestion-users/internal/shared"
)

type stubRow struct {
	values []interface{}
	err    error
}

func (r stubRow) Scan(dest ...interface{}) error {
	if r.err != nil {
		return r.err
	}
	for i, d := range dest {
		switch ptr := d.(type) {
		case *int64:
			*ptr = r.values[i].(int64)
		case *string:
			*ptr = r.values[i].(string)
		}
	}
	return nil
}

type stubQueryRower struct {
	row      stubRow
	lastSQL  string
	lastArgs []interface{}
}

func (q *stubQueryRower) QueryRow(_ context.Context, sql string, args ...interface{}) pgx.Row {
	q.lastSQL = sql
	q.lastArgs = args
	return q.row
}

func TestFindByCredentialsScansMatch(t *testing.T) {
	conn := &stubQueryRower{row: stubRow{values: []interface{}{int64(3), "Yann", "Le Goff", "yann", "admin"}}}

	user, err := NewRepository(conn).FindByCredentials(context.Background(), "yann", "secret1")
	require.NoError(t, err)

	assert.Equal(t, &User{ID: 3, Prenom: "Yann", Nom: "Le Goff", Login: "yann", Role: "admin"}, user)
	assert.Equal(t, findByCredentials, conn.lastSQL)
	assert.Contains(t, conn.lastSQL, "WHERE login = $1 AND password = $2 LIMIT 1")
	assert.Equal(t, []interface{}{"yann", "secret1"}, conn.lastArgs)
}

func TestFindByCredentialsNoRow(t *testing.T) {
	conn := &stubQueryRower{row: stubRow{err: pgx.ErrNoRows}}

	user, err := NewRepository(conn).FindByCredentials(context.Background(), "yann", "wrong")

	assert.Nil(t, user)
	assert.ErrorIs(t, err, shared.ErrNotFound)

	_, err = NewService(NewRepository(conn)).Authenticate(context.Background(), "yann", "wrong")
	assert.ErrorIs(t, err, shared.ErrInvalidCredentials)
}

func TestFindByCredentialsStoreFailure(t *testing.T) {
	conn := &stubQueryRower{row: stubRow{err: errors.New("connection refused")}}

	_, err := NewRepository(conn).FindByCredentials(context.Background(), "yann", "secret1")

	assert.ErrorIs(t, err, shared.ErrInfrastructure)
	assert.NotErrorIs(t, err, shared.ErrNotFound)
}
