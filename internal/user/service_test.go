// AngelaMos | 2026
// service_test.go

package user

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/commerce-api/internal/authz"
	"github.com/carterperez-dev/commerce-api/internal/core"
	"github.com/carterperez-dev/commerce-api/internal/notify"
	"github.com/carterperez-dev/commerce-api/internal/role"
	"github.com/carterperez-dev/commerce-api/internal/session"
)

type fakeUserRepo struct {
	users          map[string]*User
	updateEmailErr error
	updatedEmail   string
}

func newFakeUserRepo(users ...*User) *fakeUserRepo {
	f := &fakeUserRepo{users: make(map[string]*User)}
	for _, u := range users {
		f.users[u.ID] = u
	}
	return f
}

func (f *fakeUserRepo) Create(_ context.Context, u *User) error {
	f.users[u.ID] = u
	return nil
}

func (f *fakeUserRepo) GetByID(_ context.Context, id string) (*User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, fmt.Errorf("get user: %w", core.ErrNotFound)
	}
	copied := *u
	return &copied, nil
}

func (f *fakeUserRepo) GetByEmail(
	_ context.Context,
	email string,
) (*User, error) {
	for _, u := range f.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, fmt.Errorf("get user: %w", core.ErrNotFound)
}

func (f *fakeUserRepo) UpdateProfile(_ context.Context, u *User) error {
	f.users[u.ID] = u
	return nil
}

func (f *fakeUserRepo) UpdateEmail(
	_ context.Context,
	id, email string,
) error {
	if f.updateEmailErr != nil {
		return f.updateEmailErr
	}
	f.users[id].Email = email
	f.users[id].EmailVerified = false
	f.updatedEmail = email
	return nil
}

func (f *fakeUserRepo) UpdatePassword(_ context.Context, _, _ string) error {
	return nil
}

func (f *fakeUserRepo) UpdateRole(_ context.Context, id, roleID string) error {
	f.users[id].RoleID = roleID
	return nil
}

func (f *fakeUserRepo) SoftDelete(_ context.Context, id string) error {
	delete(f.users, id)
	return nil
}

func (f *fakeUserRepo) HardDelete(_ context.Context, id string) error {
	delete(f.users, id)
	return nil
}

func (f *fakeUserRepo) List(
	_ context.Context,
	_ ListUsersParams,
) ([]User, int, error) {
	out := make([]User, 0, len(f.users))
	for _, u := range f.users {
		out = append(out, *u)
	}
	return out, len(out), nil
}

func (f *fakeUserRepo) ExistsByEmail(
	_ context.Context,
	email string,
) (bool, error) {
	for _, u := range f.users {
		if u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

type fakeRoleRepo struct {
	byName map[string]*role.Role
}

func (f *fakeRoleRepo) Create(_ context.Context, _ *role.Role) error {
	return nil
}

func (f *fakeRoleRepo) GetByID(
	_ context.Context,
	_ string,
) (*role.Role, error) {
	return nil, core.ErrNotFound
}

func (f *fakeRoleRepo) GetByName(
	_ context.Context,
	name string,
) (*role.Role, error) {
	r, ok := f.byName[name]
	if !ok {
		return nil, fmt.Errorf("get role: %w", core.ErrNotFound)
	}
	return r, nil
}

func (f *fakeRoleRepo) List(_ context.Context) ([]role.Role, error) {
	return nil, nil
}

func (f *fakeRoleRepo) Update(_ context.Context, _ *role.Role) error {
	return nil
}

func (f *fakeRoleRepo) SoftDelete(_ context.Context, _ string) error {
	return nil
}

func (f *fakeRoleRepo) CountUsers(_ context.Context, _ string) (int, error) {
	return 0, nil
}

type fakeStore struct {
	data map[string]string
}

func newFakeStore() *fakeStore {
	return &fakeStore{data: make(map[string]string)}
}

func (s *fakeStore) Get(_ context.Context, key string) (string, error) {
	val, ok := s.data[key]
	if !ok {
		return "", fmt.Errorf("get %s: %w", key, core.ErrCacheMiss)
	}
	return val, nil
}

func (s *fakeStore) Set(
	_ context.Context,
	key, value string,
	_ time.Duration,
) error {
	s.data[key] = value
	return nil
}

func (s *fakeStore) Delete(_ context.Context, keys ...string) error {
	for _, k := range keys {
		delete(s.data, k)
	}
	return nil
}

func (s *fakeStore) Incr(
	_ context.Context,
	_ string,
	_ time.Duration,
) (int64, error) {
	return 0, nil
}

type emptySource struct{}

func (emptySource) LoadByID(
	_ context.Context,
	_ string,
) (*session.Actor, error) {
	return nil, core.ErrNotFound
}

func (emptySource) LoadByEmail(
	_ context.Context,
	_ string,
) (*session.Actor, error) {
	return nil, core.ErrNotFound
}

func (emptySource) LoadPermissions(
	_ context.Context,
	_ string,
) ([]session.Permission, error) {
	return nil, nil
}

type fakeMailer struct {
	sent    []notify.Message
	sendErr error
}

func (f *fakeMailer) Send(_ context.Context, msg notify.Message) error {
	if f.sendErr != nil {
		return f.sendErr
	}
	f.sent = append(f.sent, msg)
	return nil
}

func testUser() *User {
	return &User{
		ID:            "u1",
		Email:         "ada@example.com",
		FirstName:     "Ada",
		LastName:      "Lovelace",
		RoleID:        "role-customer",
		RoleName:      authz.RoleCustomer,
		EmailVerified: true,
		Activated:     true,
	}
}

func newTestService(
	db *sqlx.DB,
	repo Repository,
	roles role.Repository,
	store *fakeStore,
	mailer *fakeMailer,
) *Service {
	sessions := session.NewManager(store, emptySource{}, time.Minute, time.Minute)
	return NewService(db, repo, roles, sessions, mailer, "http://localhost:8080")
}

func TestUpdateEmailMigratesBothCacheKeys(t *testing.T) {
	repo := newFakeUserRepo(testUser())
	store := newFakeStore()
	mailer := &fakeMailer{}
	svc := newTestService(nil, repo, &fakeRoleRepo{}, store, mailer)

	// seed the stale email projection
	store.data[session.ActorEmailKey("ada@example.com")] = "{}"

	u, err := svc.UpdateEmail(context.Background(), "u1", "Countess@Example.com")

	require.NoError(t, err)
	assert.Equal(t, "countess@example.com", u.Email)
	assert.False(t, u.EmailVerified)

	assert.NotContains(t, store.data, session.ActorEmailKey("ada@example.com"))
	assert.Contains(t, store.data, session.ActorEmailKey("countess@example.com"))
	assert.Contains(t, store.data, session.ActorIDKey("u1"))

	require.Len(t, mailer.sent, 1)
	assert.Equal(t, "countess@example.com", mailer.sent[0].To)
}

func TestUpdateEmailDuplicate(t *testing.T) {
	repo := newFakeUserRepo(testUser())
	repo.updateEmailErr = fmt.Errorf("update email: %w", core.ErrDuplicateKey)
	svc := newTestService(nil, repo, &fakeRoleRepo{}, newFakeStore(), &fakeMailer{})

	_, err := svc.UpdateEmail(context.Background(), "u1", "taken@example.com")

	require.Error(t, err)
	appErr, ok := core.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, "DUPLICATE", appErr.Code)
}

func TestUpdateEmailTakenByOtherAccount(t *testing.T) {
	other := testUser()
	other.ID = "u2"
	other.Email = "taken@example.com"
	repo := newFakeUserRepo(testUser(), other)
	svc := newTestService(nil, repo, &fakeRoleRepo{}, newFakeStore(), &fakeMailer{})

	_, err := svc.UpdateEmail(context.Background(), "u1", "taken@example.com")

	require.Error(t, err)
	appErr, ok := core.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, "DUPLICATE", appErr.Code)
	// refused before the write was attempted
	assert.Empty(t, repo.updatedEmail)
}

func TestUpdateEmailNoopWhenUnchanged(t *testing.T) {
	repo := newFakeUserRepo(testUser())
	mailer := &fakeMailer{}
	svc := newTestService(nil, repo, &fakeRoleRepo{}, newFakeStore(), mailer)

	u, err := svc.UpdateEmail(context.Background(), "u1", "ADA@example.com")

	require.NoError(t, err)
	assert.True(t, u.EmailVerified)
	assert.Empty(t, mailer.sent)
	assert.Empty(t, repo.updatedEmail)
}

func TestDeleteUserGuards(t *testing.T) {
	admin := authz.Subject{ID: "admin-1", RoleName: authz.RoleAdmin}

	t.Run("self delete refused", func(t *testing.T) {
		svc := newTestService(nil, newFakeUserRepo(), &fakeRoleRepo{}, newFakeStore(), &fakeMailer{})

		err := svc.DeleteUser(context.Background(), admin, "admin-1")
		assert.ErrorIs(t, err, core.ErrForbidden)
	})

	t.Run("peer cannot delete protected role", func(t *testing.T) {
		target := testUser()
		target.RoleName = authz.RoleManager
		svc := newTestService(nil, newFakeUserRepo(target), &fakeRoleRepo{}, newFakeStore(), &fakeMailer{})

		manager := authz.Subject{ID: "m-2", RoleName: authz.RoleManager}
		err := svc.DeleteUser(context.Background(), manager, "u1")
		assert.ErrorIs(t, err, core.ErrForbidden)
	})

	t.Run("admin deletes customer and invalidates cache", func(t *testing.T) {
		store := newFakeStore()
		store.data[session.ActorIDKey("u1")] = "{}"
		store.data[session.ActorEmailKey("ada@example.com")] = "{}"
		svc := newTestService(nil, newFakeUserRepo(testUser()), &fakeRoleRepo{}, store, &fakeMailer{})

		err := svc.DeleteUser(context.Background(), admin, "u1")
		require.NoError(t, err)
		assert.NotContains(t, store.data, session.ActorIDKey("u1"))
		assert.NotContains(t, store.data, session.ActorEmailKey("ada@example.com"))
	})
}

func TestUpdateUserRoleCommitsRowsThenCache(t *testing.T) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })
	db := sqlx.NewDb(mockDB, "sqlmock")

	target := testUser()
	repo := newFakeUserRepo(target)
	roles := &fakeRoleRepo{byName: map[string]*role.Role{
		authz.RoleDeliveryAgent: {
			ID:   "role-agent",
			Name: authz.RoleDeliveryAgent,
		},
	}}
	store := newFakeStore()
	svc := newTestService(db, repo, roles, store, &fakeMailer{})

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE users").
		WithArgs("u1", "role-agent").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("SELECT id, user_id, capability").
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "user_id", "capability", "can_create", "can_read",
			"can_update", "can_delete", "description", "created_by",
			"created_at", "updated_at", "deleted_at",
		}))
	for _, capability := range []string{"Shipping", "Order", "OrderItem", "Notification"} {
		mock.ExpectQuery("INSERT INTO permissions").
			WillReturnRows(sqlmock.NewRows(
				[]string{"id", "created_at", "updated_at"},
			).AddRow("row-"+capability, time.Now(), time.Now()))
	}
	mock.ExpectCommit()

	caller := authz.Subject{ID: "admin-1", RoleName: authz.RoleAdmin}
	updated, err := svc.UpdateUserRole(
		context.Background(),
		caller,
		"u1",
		"delivery_agent",
	)

	require.NoError(t, err)
	assert.Equal(t, authz.RoleDeliveryAgent, updated.RoleName)
	assert.Equal(t, "role-agent", updated.RoleID)
	assert.NoError(t, mock.ExpectationsWereMet())

	// projections written only after the commit succeeded
	assert.Contains(t, store.data, session.ActorIDKey("u1"))
	assert.Contains(t, store.data, session.PermissionsKey("u1"))
}

func TestUpdateUserRoleProtectedTargetRefused(t *testing.T) {
	target := testUser()
	target.RoleName = authz.RoleAdmin
	svc := newTestService(nil, newFakeUserRepo(target), &fakeRoleRepo{}, newFakeStore(), &fakeMailer{})

	manager := authz.Subject{ID: "m-1", RoleName: authz.RoleManager}
	_, err := svc.UpdateUserRole(
		context.Background(),
		manager,
		"u1",
		authz.RoleCustomer,
	)

	assert.ErrorIs(t, err, core.ErrForbidden)
}

func TestUpdateUserRoleRollsBackOnSyncFailure(t *testing.T) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })
	db := sqlx.NewDb(mockDB, "sqlmock")

	repo := newFakeUserRepo(testUser())
	roles := &fakeRoleRepo{byName: map[string]*role.Role{
		authz.RoleDeliveryAgent: {
			ID:   "role-agent",
			Name: authz.RoleDeliveryAgent,
		},
	}}
	store := newFakeStore()
	svc := newTestService(db, repo, roles, store, &fakeMailer{})

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE users").
		WithArgs("u1", "role-agent").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("SELECT id, user_id, capability").
		WithArgs("u1").
		WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	caller := authz.Subject{ID: "admin-1", RoleName: authz.RoleAdmin}
	_, err = svc.UpdateUserRole(
		context.Background(),
		caller,
		"u1",
		authz.RoleDeliveryAgent,
	)

	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())

	// nothing reached the cache
	assert.NotContains(t, store.data, session.PermissionsKey("u1"))
}
