// AngelaMos | 2026
// repository_test.go

package auth

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/commerce-api/internal/core"
)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return sqlx.NewDb(db, "sqlmock"), mock
}

func TestUpdatePasswordClearTokenConsumesOnce(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewRepository(db)

	mock.ExpectExec("UPDATE users").
		WithArgs("u1", "new-hash").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.UpdatePasswordClearToken(context.Background(), "u1", "new-hash")

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdatePasswordClearTokenAlreadyConsumed(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewRepository(db)

	// a concurrent consume already nulled the hash, so the guarded
	// UPDATE matches no row
	mock.ExpectExec("UPDATE users").
		WithArgs("u1", "new-hash").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdatePasswordClearToken(context.Background(), "u1", "new-hash")

	assert.ErrorIs(t, err, core.ErrTokenInvalid)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindByResetTokenHashMiss(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewRepository(db)

	mock.ExpectQuery("SELECT id, email, reset_token_expires").
		WithArgs("deadbeef").
		WillReturnRows(sqlmock.NewRows(
			[]string{"id", "email", "reset_token_expires"},
		))

	_, err := repo.FindByResetTokenHash(context.Background(), "deadbeef")

	assert.ErrorIs(t, err, core.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindByResetTokenHashHit(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewRepository(db)

	expires := time.Now().Add(time.Hour)
	mock.ExpectQuery("SELECT id, email, reset_token_expires").
		WithArgs("deadbeef").
		WillReturnRows(sqlmock.NewRows(
			[]string{"id", "email", "reset_token_expires"},
		).AddRow("u1", "a@b.com", expires))

	cred, err := repo.FindByResetTokenHash(context.Background(), "deadbeef")

	require.NoError(t, err)
	assert.Equal(t, "u1", cred.UserID)
	assert.Equal(t, "a@b.com", cred.Email)
	require.NotNil(t, cred.ExpiresAt)
	assert.WithinDuration(t, expires, *cred.ExpiresAt, time.Second)
}

func TestMarkEmailVerifiedIdempotencyConflict(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewRepository(db)

	mock.ExpectExec("UPDATE users").
		WithArgs("u1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.MarkEmailVerified(context.Background(), "u1")

	assert.ErrorIs(t, err, core.ErrConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}
