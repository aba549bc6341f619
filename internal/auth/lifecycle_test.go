// AngelaMos | 2026
// lifecycle_test.go

package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/commerce-api/internal/config"
	"github.com/carterperez-dev/commerce-api/internal/core"
	"github.com/carterperez-dev/commerce-api/internal/notify"
	"github.com/carterperez-dev/commerce-api/internal/session"
)

type fakeRepo struct {
	setTokenErr   error
	setUserID     string
	setHash       string
	setExpiresAt  time.Time
	findOut       *ResetCredential
	findErr       error
	cleared       []string
	updatePwdErr  error
	updatedUserID string
	updatedHash   string
	verifyErr     error
	activateErr   error
}

func (f *fakeRepo) SetResetToken(
	_ context.Context,
	userID, tokenHash string,
	expiresAt time.Time,
) error {
	if f.setTokenErr != nil {
		return f.setTokenErr
	}
	f.setUserID = userID
	f.setHash = tokenHash
	f.setExpiresAt = expiresAt
	return nil
}

func (f *fakeRepo) FindByResetTokenHash(
	_ context.Context,
	_ string,
) (*ResetCredential, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	return f.findOut, nil
}

func (f *fakeRepo) ClearResetToken(_ context.Context, userID string) error {
	f.cleared = append(f.cleared, userID)
	return nil
}

func (f *fakeRepo) UpdatePasswordClearToken(
	_ context.Context,
	userID, passwordHash string,
) error {
	if f.updatePwdErr != nil {
		return f.updatePwdErr
	}
	f.updatedUserID = userID
	f.updatedHash = passwordHash
	return nil
}

func (f *fakeRepo) MarkEmailVerified(_ context.Context, _ string) error {
	return f.verifyErr
}

func (f *fakeRepo) MarkActivated(_ context.Context, _ string) error {
	return f.activateErr
}

type fakeUsers struct {
	byID      map[string]*UserInfo
	byEmail   map[string]*UserInfo
	deleted   []string
	createOut *UserInfo
	createErr error
}

func (f *fakeUsers) GetByID(_ context.Context, id string) (*UserInfo, error) {
	if u, ok := f.byID[id]; ok {
		return u, nil
	}
	return nil, core.ErrNotFound
}

func (f *fakeUsers) GetByEmail(
	_ context.Context,
	email string,
) (*UserInfo, error) {
	if u, ok := f.byEmail[email]; ok {
		return u, nil
	}
	return nil, core.ErrNotFound
}

func (f *fakeUsers) CreateCustomer(
	_ context.Context,
	_ CreateCustomerParams,
) (*UserInfo, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	return f.createOut, nil
}

func (f *fakeUsers) HardDelete(_ context.Context, id string) error {
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeUsers) UpdatePassword(_ context.Context, _, _ string) error {
	return nil
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

func testSessions(store *fakeStore) *session.Manager {
	return session.NewManager(store, emptySource{}, time.Minute, time.Minute)
}

func newTestLifecycle(
	repo *fakeRepo,
	users *fakeUsers,
	store *fakeStore,
	mailer *fakeMailer,
) *Lifecycle {
	return NewLifecycle(
		repo,
		users,
		store,
		testSessions(store),
		mailer,
		config.ResetConfig{
			Cooldown: time.Minute,
			TokenTTL: time.Hour,
		},
		"http://localhost:8080",
	)
}

func TestIssuePasswordResetUnknownEmailSilent(t *testing.T) {
	repo := &fakeRepo{}
	users := &fakeUsers{byEmail: map[string]*UserInfo{}}
	mailer := &fakeMailer{}
	lc := newTestLifecycle(repo, users, newFakeStore(), mailer)

	err := lc.IssuePasswordReset(context.Background(), "ghost@b.com")

	require.NoError(t, err)
	require.Empty(t, mailer.sent)
	require.Empty(t, repo.setHash)
}

func TestIssuePasswordResetStoresHashAndMails(t *testing.T) {
	repo := &fakeRepo{}
	users := &fakeUsers{byEmail: map[string]*UserInfo{
		"a@b.com": {ID: "u1", Email: "a@b.com"},
	}}
	store := newFakeStore()
	mailer := &fakeMailer{}
	lc := newTestLifecycle(repo, users, store, mailer)

	err := lc.IssuePasswordReset(context.Background(), "a@b.com")

	require.NoError(t, err)
	require.Equal(t, "u1", repo.setUserID)
	require.Len(t, repo.setHash, 64) // sha-256 hex
	require.Len(t, mailer.sent, 1)
	// the mail carries the raw token, never the stored hash
	require.NotContains(t, mailer.sent[0].Text, repo.setHash)
	require.Contains(t, store.data, cooldownKey("a@b.com"))
}

func TestIssuePasswordResetCooldown(t *testing.T) {
	repo := &fakeRepo{}
	users := &fakeUsers{byEmail: map[string]*UserInfo{
		"a@b.com": {ID: "u1", Email: "a@b.com"},
	}}
	store := newFakeStore()
	store.data[cooldownKey("a@b.com")] = "1"
	mailer := &fakeMailer{}
	lc := newTestLifecycle(repo, users, store, mailer)

	err := lc.IssuePasswordReset(context.Background(), "a@b.com")

	require.ErrorIs(t, err, core.ErrConflict)
	require.Empty(t, mailer.sent)
}

func TestConsumePasswordResetUnknownToken(t *testing.T) {
	repo := &fakeRepo{findErr: core.ErrNotFound}
	lc := newTestLifecycle(repo, &fakeUsers{}, newFakeStore(), &fakeMailer{})

	err := lc.ConsumePasswordReset(context.Background(), "bogus", "newpass123")

	require.ErrorIs(t, err, core.ErrTokenInvalid)
}

func TestConsumePasswordResetExpiredTokenCleared(t *testing.T) {
	expired := time.Now().Add(-time.Minute)
	repo := &fakeRepo{findOut: &ResetCredential{
		UserID:    "u1",
		Email:     "a@b.com",
		ExpiresAt: &expired,
	}}
	lc := newTestLifecycle(repo, &fakeUsers{}, newFakeStore(), &fakeMailer{})

	err := lc.ConsumePasswordReset(context.Background(), "tok", "newpass123")

	require.ErrorIs(t, err, core.ErrTokenExpired)
	require.Equal(t, []string{"u1"}, repo.cleared)
	require.Empty(t, repo.updatedHash)
}

func TestConsumePasswordResetMissingExpiryTreatedAsExpired(t *testing.T) {
	repo := &fakeRepo{findOut: &ResetCredential{
		UserID: "u1",
		Email:  "a@b.com",
	}}
	lc := newTestLifecycle(repo, &fakeUsers{}, newFakeStore(), &fakeMailer{})

	err := lc.ConsumePasswordReset(context.Background(), "tok", "newpass123")

	require.ErrorIs(t, err, core.ErrTokenExpired)
}

func TestConsumePasswordResetHappyPath(t *testing.T) {
	expires := time.Now().Add(time.Hour)
	repo := &fakeRepo{findOut: &ResetCredential{
		UserID:    "u1",
		Email:     "a@b.com",
		ExpiresAt: &expires,
	}}
	users := &fakeUsers{byID: map[string]*UserInfo{
		"u1": {ID: "u1", Email: "a@b.com"},
	}}
	lc := newTestLifecycle(repo, users, newFakeStore(), &fakeMailer{})

	err := lc.ConsumePasswordReset(context.Background(), "tok", "newpass123")

	require.NoError(t, err)
	require.Equal(t, "u1", repo.updatedUserID)
	require.NotEmpty(t, repo.updatedHash)
	require.NotEqual(t, "newpass123", repo.updatedHash)
}

func TestConsumePasswordResetReplayLoses(t *testing.T) {
	expires := time.Now().Add(time.Hour)
	repo := &fakeRepo{
		findOut: &ResetCredential{
			UserID:    "u1",
			Email:     "a@b.com",
			ExpiresAt: &expires,
		},
		updatePwdErr: core.ErrTokenInvalid,
	}
	lc := newTestLifecycle(repo, &fakeUsers{}, newFakeStore(), &fakeMailer{})

	err := lc.ConsumePasswordReset(context.Background(), "tok", "newpass123")

	require.ErrorIs(t, err, core.ErrTokenInvalid)
}

func TestVerifyEmailAlreadyDone(t *testing.T) {
	repo := &fakeRepo{verifyErr: core.ErrConflict}
	users := &fakeUsers{byID: map[string]*UserInfo{
		"u1": {ID: "u1", Email: "a@b.com", EmailVerified: true},
	}}
	lc := newTestLifecycle(repo, users, newFakeStore(), &fakeMailer{})

	_, err := lc.VerifyEmail(context.Background(), "u1")

	require.ErrorIs(t, err, core.ErrConflict)
}

func TestActivateSetsBothFlags(t *testing.T) {
	repo := &fakeRepo{}
	users := &fakeUsers{byID: map[string]*UserInfo{
		"u1": {ID: "u1", Email: "a@b.com"},
	}}
	lc := newTestLifecycle(repo, users, newFakeStore(), &fakeMailer{})

	user, err := lc.Activate(context.Background(), "u1")

	require.NoError(t, err)
	require.True(t, user.Activated)
	require.True(t, user.EmailVerified)
}

func TestActivateUnknownUser(t *testing.T) {
	repo := &fakeRepo{}
	users := &fakeUsers{byID: map[string]*UserInfo{}}
	lc := newTestLifecycle(repo, users, newFakeStore(), &fakeMailer{})

	_, err := lc.Activate(context.Background(), "missing")

	require.ErrorIs(t, err, core.ErrNotFound)
}

func TestIssuePasswordResetMailFailure(t *testing.T) {
	repo := &fakeRepo{}
	users := &fakeUsers{byEmail: map[string]*UserInfo{
		"a@b.com": {ID: "u1", Email: "a@b.com"},
	}}
	mailer := &fakeMailer{sendErr: errors.New("smtp down")}
	lc := newTestLifecycle(repo, users, newFakeStore(), mailer)

	err := lc.IssuePasswordReset(context.Background(), "a@b.com")

	require.ErrorIs(t, err, core.ErrDependency)
}
