// AngelaMos | 2026
// service.go

package user

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/carterperez-dev/commerce-api/internal/auth"
	"github.com/carterperez-dev/commerce-api/internal/authz"
	"github.com/carterperez-dev/commerce-api/internal/core"
	"github.com/carterperez-dev/commerce-api/internal/notify"
	"github.com/carterperez-dev/commerce-api/internal/permission"
	"github.com/carterperez-dev/commerce-api/internal/role"
	"github.com/carterperez-dev/commerce-api/internal/session"
)

type Service struct {
	db       *sqlx.DB
	repo     Repository
	roles    role.Repository
	sessions *session.Manager
	mailer   notify.Sender
	baseURL  string
}

func NewService(
	db *sqlx.DB,
	repo Repository,
	roles role.Repository,
	sessions *session.Manager,
	mailer notify.Sender,
	baseURL string,
) *Service {
	return &Service{
		db:       db,
		repo:     repo,
		roles:    roles,
		sessions: sessions,
		mailer:   mailer,
		baseURL:  baseURL,
	}
}

// --- auth.UserProvider ---

func (s *Service) GetByID(
	ctx context.Context,
	id string,
) (*auth.UserInfo, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toUserInfo(u), nil
}

func (s *Service) GetByEmail(
	ctx context.Context,
	email string,
) (*auth.UserInfo, error) {
	u, err := s.repo.GetByEmail(ctx, strings.ToLower(email))
	if err != nil {
		return nil, err
	}
	return toUserInfo(u), nil
}

// CreateCustomer inserts the user row and seeds the CUSTOMER capability
// matrix in one transaction: no account ever exists without its
// permission rows.
func (s *Service) CreateCustomer(
	ctx context.Context,
	params auth.CreateCustomerParams,
) (*auth.UserInfo, error) {
	customerRole, err := s.roles.GetByName(ctx, authz.RoleCustomer)
	if err != nil {
		return nil, fmt.Errorf("resolve customer role: %w", err)
	}

	u := &User{
		ID:           uuid.New().String(),
		Email:        strings.ToLower(params.Email),
		PasswordHash: params.PasswordHash,
		FirstName:    params.FirstName,
		LastName:     params.LastName,
		Gender:       params.Gender,
		RoleID:       customerRole.ID,
		RoleName:     customerRole.Name,
	}

	err = core.InTx(ctx, s.db, func(tx *sqlx.Tx) error {
		if err := NewRepository(tx).Create(ctx, u); err != nil {
			return err
		}
		return permission.Seed(ctx, tx, u.ID, customerRole.Name, &u.ID)
	})
	if err != nil {
		return nil, err
	}

	return toUserInfo(u), nil
}

// HardDelete is the registration compensation: remove the permission
// rows and the user row so no half-registered account is left behind.
func (s *Service) HardDelete(ctx context.Context, id string) error {
	return core.InTx(ctx, s.db, func(tx *sqlx.Tx) error {
		if err := permission.NewRepository(tx).HardDeleteByUser(ctx, id); err != nil {
			return err
		}
		return NewRepository(tx).HardDelete(ctx, id)
	})
}

func (s *Service) UpdatePassword(
	ctx context.Context,
	userID, passwordHash string,
) error {
	return s.repo.UpdatePassword(ctx, userID, passwordHash)
}

// --- profile ---

func (s *Service) GetMe(ctx context.Context, userID string) (*User, error) {
	if userID == "" {
		return nil, fmt.Errorf("get me: %w", core.ErrUnauthorized)
	}
	return s.repo.GetByID(ctx, userID)
}

func (s *Service) UpdateMe(
	ctx context.Context,
	userID string,
	req UpdateProfileRequest,
) (*User, error) {
	u, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.FirstName != nil {
		u.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		u.LastName = *req.LastName
	}
	if req.Gender != nil {
		u.Gender = req.Gender
	}

	if err := s.repo.UpdateProfile(ctx, u); err != nil {
		return nil, err
	}

	s.sessions.Refresh(ctx, u.ToActor(), "")
	return u, nil
}

// UpdateEmail renames the unique address. The actor is addressable by
// two cache keys, so the stale email key is dropped and both fresh keys
// written in the same logical step, after the persistence write is
// acknowledged. Verification restarts for the new mailbox.
func (s *Service) UpdateEmail(
	ctx context.Context,
	userID, newEmail string,
) (*User, error) {
	newEmail = strings.ToLower(newEmail)

	u, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	previousEmail := u.Email
	if previousEmail == newEmail {
		return u, nil
	}

	taken, err := s.repo.ExistsByEmail(ctx, newEmail)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, core.DuplicateError("email")
	}

	// the unique constraint backstops races past the pre-check
	if err := s.repo.UpdateEmail(ctx, userID, newEmail); err != nil {
		if errors.Is(err, core.ErrDuplicateKey) {
			return nil, core.DuplicateError("email")
		}
		return nil, err
	}

	u.Email = newEmail
	u.EmailVerified = false
	s.sessions.Refresh(ctx, u.ToActor(), previousEmail)

	msg := notify.VerificationMessage(newEmail, s.baseURL, userID)
	if err := s.mailer.Send(ctx, msg); err != nil {
		slog.Warn("verification email failed after address change",
			"user_id", userID,
			"error", err,
		)
	}

	return u, nil
}

func (s *Service) DeleteMe(ctx context.Context, userID string) error {
	u, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	if err := s.repo.SoftDelete(ctx, userID); err != nil {
		return err
	}

	s.sessions.Invalidate(ctx, userID, u.Email)
	return nil
}

// --- admin ---

func (s *Service) ListUsers(
	ctx context.Context,
	params ListUsersParams,
) ([]User, int, error) {
	return s.repo.List(ctx, params)
}

func (s *Service) GetUser(ctx context.Context, id string) (*User, error) {
	return s.repo.GetByID(ctx, id)
}

// UpdateUserRole reassigns the target's role and rewrites its permission
// rows to the new role's matrix in one transaction. The cached actor and
// permission projections are overwritten only after the commit, so no
// reader observes the new role paired with stale permissions.
func (s *Service) UpdateUserRole(
	ctx context.Context,
	caller authz.Subject,
	targetID, roleName string,
) (*User, error) {
	target, err := s.repo.GetByID(ctx, targetID)
	if err != nil {
		return nil, err
	}

	guardTarget := authz.Subject{ID: target.ID, RoleName: target.RoleName}
	if err := authz.CheckRoleReassignment(caller, guardTarget); err != nil {
		return nil, err
	}

	newRole, err := s.roles.GetByName(ctx, strings.ToUpper(roleName))
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, core.NotFoundError("role")
		}
		return nil, err
	}

	previousEmail := target.Email

	var synced []permission.Permission
	err = core.InTx(ctx, s.db, func(tx *sqlx.Tx) error {
		if err := NewRepository(tx).UpdateRole(ctx, targetID, newRole.ID); err != nil {
			return err
		}

		var syncErr error
		synced, syncErr = permission.SyncTx(
			ctx,
			tx,
			targetID,
			newRole.Name,
			caller.ID,
		)
		return syncErr
	})
	if err != nil {
		return nil, err
	}

	target.RoleID = newRole.ID
	target.RoleName = newRole.Name

	s.sessions.Refresh(ctx, target.ToActor(), previousEmail)
	s.sessions.RefreshPermissions(
		ctx,
		targetID,
		permission.ToProjectionList(synced),
	)

	return target, nil
}

// DeleteUser soft-deletes the target. Protected-role actors cannot be
// removed by a peer of equal or lesser privilege.
func (s *Service) DeleteUser(
	ctx context.Context,
	caller authz.Subject,
	targetID string,
) error {
	if caller.ID == targetID {
		return core.ForbiddenError("use the profile endpoint to delete your own account")
	}

	target, err := s.repo.GetByID(ctx, targetID)
	if err != nil {
		return err
	}

	if authz.IsProtectedRole(target.RoleName) &&
		authz.Tier(caller.RoleName) <= authz.Tier(target.RoleName) {
		return core.ForbiddenError(
			"cannot delete an actor holding a protected role",
		)
	}

	if err := s.repo.SoftDelete(ctx, targetID); err != nil {
		return err
	}

	s.sessions.Invalidate(ctx, targetID, target.Email)
	return nil
}

// InvalidateSession drops every cached projection for the user. Used by
// the operator surface to force the next request through persistence.
func (s *Service) InvalidateSession(ctx context.Context, userID string) error {
	u, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	s.sessions.Invalidate(ctx, userID, u.Email)
	return nil
}

func toUserInfo(u *User) *auth.UserInfo {
	return &auth.UserInfo{
		ID:                u.ID,
		Email:             u.Email,
		FirstName:         u.FirstName,
		LastName:          u.LastName,
		PasswordHash:      u.PasswordHash,
		RoleID:            u.RoleID,
		RoleName:          u.RoleName,
		EmailVerified:     u.EmailVerified,
		Activated:         u.Activated,
		ResetTokenExpires: u.ResetTokenExpires,
	}
}

var _ auth.UserProvider = (*Service)(nil)
