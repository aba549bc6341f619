// AngelaMos | 2026
// sync_test.go

package permission

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/commerce-api/internal/authz"
)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return sqlx.NewDb(db, "sqlmock"), mock
}

func permissionRows(perms ...Permission) *sqlmock.Rows {
	rows := sqlmock.NewRows([]string{
		"id", "user_id", "capability", "can_create", "can_read",
		"can_update", "can_delete", "description", "created_by",
		"created_at", "updated_at", "deleted_at",
	})
	for _, p := range perms {
		rows.AddRow(
			p.ID, p.UserID, p.Capability, p.CanCreate, p.CanRead,
			p.CanUpdate, p.CanDelete, p.Description, p.CreatedBy,
			p.CreatedAt, p.UpdatedAt, p.DeletedAt,
		)
	}
	return rows
}

func expectUpsert(
	mock sqlmock.Sqlmock,
	userID, capability string,
	flags Flags,
	description, actorID string,
) {
	mock.ExpectQuery("INSERT INTO permissions").
		WithArgs(
			sqlmock.AnyArg(), userID, capability,
			flags.Create, flags.Read, flags.Update, flags.Delete,
			description, actorID,
		).
		WillReturnRows(sqlmock.NewRows(
			[]string{"id", "created_at", "updated_at"},
		).AddRow("row-"+capability, time.Now(), time.Now()))
}

func TestSyncTxCustomRoleLeavesRowsUntouched(t *testing.T) {
	db, mock := newMockDB(t)

	now := time.Now()
	mock.ExpectQuery("SELECT id, user_id, capability").
		WithArgs("u1").
		WillReturnRows(permissionRows(Permission{
			ID:         "p1",
			UserID:     "u1",
			Capability: authz.CapCart,
			CanCreate:  true,
			CanRead:    true,
			CreatedAt:  now,
			UpdatedAt:  now,
		}))

	synced, err := SyncTx(context.Background(), db, "u1", "SUPPORT", "admin-1")

	require.NoError(t, err)
	require.Len(t, synced, 1)
	assert.Equal(t, authz.CapCart, synced[0].Capability)
	assert.True(t, synced[0].CanCreate)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSyncTxRewritesRowsInCatalogOrder(t *testing.T) {
	db, mock := newMockDB(t)

	// the user currently holds Cart, which DELIVERY_AGENT does not grant
	mock.ExpectQuery("SELECT id, user_id, capability").
		WithArgs("u1").
		WillReturnRows(permissionRows(Permission{
			ID:         "p1",
			UserID:     "u1",
			Capability: authz.CapCart,
			CanCreate:  true,
			CanRead:    true,
			CanUpdate:  true,
			CanDelete:  true,
		}))

	granted := "granted by role DELIVERY_AGENT"
	expectUpsert(mock, "u1", authz.CapShipping, Flags{Read: true}, granted, "admin-1")
	expectUpsert(mock, "u1", authz.CapOrder, Flags{Read: true, Update: true}, granted, "admin-1")
	expectUpsert(mock, "u1", authz.CapOrderItem, Flags{Read: true}, granted, "admin-1")
	expectUpsert(mock, "u1", authz.CapNotification, Flags{Read: true}, granted, "admin-1")

	// held-only capability is zeroed, not deleted
	expectUpsert(mock, "u1", authz.CapCart, Flags{},
		"revoked on role change to DELIVERY_AGENT", "admin-1")

	synced, err := SyncTx(
		context.Background(), db,
		"u1", authz.RoleDeliveryAgent, "admin-1",
	)

	require.NoError(t, err)
	require.Len(t, synced, 5)

	assert.Equal(t, authz.CapShipping, synced[0].Capability)
	assert.Equal(t, authz.CapOrder, synced[1].Capability)
	assert.Equal(t, authz.CapOrderItem, synced[2].Capability)
	assert.Equal(t, authz.CapNotification, synced[3].Capability)

	revoked := synced[4]
	assert.Equal(t, authz.CapCart, revoked.Capability)
	assert.False(t, revoked.CanCreate)
	assert.False(t, revoked.CanRead)
	assert.False(t, revoked.CanUpdate)
	assert.False(t, revoked.CanDelete)
	assert.Equal(t, "revoked on role change to DELIVERY_AGENT", revoked.Description)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSeedWritesMatrixRows(t *testing.T) {
	db, mock := newMockDB(t)

	granted := "granted by role DELIVERY_AGENT"
	expectUpsert(mock, "u1", authz.CapShipping, Flags{Read: true}, granted, "admin-1")
	expectUpsert(mock, "u1", authz.CapOrder, Flags{Read: true, Update: true}, granted, "admin-1")
	expectUpsert(mock, "u1", authz.CapOrderItem, Flags{Read: true}, granted, "admin-1")
	expectUpsert(mock, "u1", authz.CapNotification, Flags{Read: true}, granted, "admin-1")

	actor := "admin-1"
	err := Seed(context.Background(), db, "u1", authz.RoleDeliveryAgent, &actor)

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSeedCustomRoleSeedsNothing(t *testing.T) {
	db, mock := newMockDB(t)

	err := Seed(context.Background(), db, "u1", "SUPPORT", nil)

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
