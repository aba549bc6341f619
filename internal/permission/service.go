// AngelaMos | 2026
// service.go

package permission

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/carterperez-dev/commerce-api/internal/authz"
	"github.com/carterperez-dev/commerce-api/internal/core"
	"github.com/carterperez-dev/commerce-api/internal/session"
)

type Service struct {
	repo     Repository
	sessions *session.Manager
}

func NewService(repo Repository, sessions *session.Manager) *Service {
	return &Service{repo: repo, sessions: sessions}
}

// ListForUser returns the target's permission rows. Callers may always
// read their own; reading another actor's rows requires the Permission
// read capability.
func (s *Service) ListForUser(
	ctx context.Context,
	caller authz.Subject,
	targetID string,
) ([]Permission, error) {
	if caller.ID != targetID {
		if err := s.requireCapability(ctx, caller.ID, authz.ActionRead); err != nil {
			return nil, err
		}
	}

	perms, err := s.repo.ListByUser(ctx, targetID)
	if err != nil {
		return nil, err
	}

	return perms, nil
}

// Update upserts one capability grant on the target. The caller's own
// flags are checked first, then the relationship guard chain.
func (s *Service) Update(
	ctx context.Context,
	caller authz.Subject,
	targetID, capability string,
	req UpdatePermissionRequest,
) (*Permission, error) {
	if !authz.IsCapability(capability) {
		return nil, core.NewAppError(
			core.ErrInvalidInput,
			fmt.Sprintf("unknown capability %q", capability),
			400,
			"UNKNOWN_CAPABILITY",
		)
	}

	if err := s.requireCapability(ctx, caller.ID, authz.ActionUpdate); err != nil {
		return nil, err
	}

	target, err := s.guardMutation(ctx, caller, targetID)
	if err != nil {
		return nil, err
	}

	p := &Permission{
		ID:          uuid.New().String(),
		UserID:      targetID,
		Capability:  capability,
		CanCreate:   req.CanCreate,
		CanRead:     req.CanRead,
		CanUpdate:   req.CanUpdate,
		CanDelete:   req.CanDelete,
		Description: req.Description,
		CreatedBy:   &caller.ID,
	}

	if err := s.repo.Upsert(ctx, p); err != nil {
		return nil, err
	}

	s.refreshProjection(ctx, target.ID)
	return p, nil
}

// Delete soft-deletes one capability grant on the target.
func (s *Service) Delete(
	ctx context.Context,
	caller authz.Subject,
	targetID, capability string,
) error {
	if err := s.requireCapability(ctx, caller.ID, authz.ActionDelete); err != nil {
		return err
	}

	target, err := s.guardMutation(ctx, caller, targetID)
	if err != nil {
		return err
	}

	if err := s.repo.SoftDelete(ctx, targetID, capability); err != nil {
		return err
	}

	s.refreshProjection(ctx, target.ID)
	return nil
}

func (s *Service) requireCapability(
	ctx context.Context,
	callerID string,
	action authz.Action,
) error {
	perms, err := s.sessions.Permissions(ctx, callerID)
	if err != nil {
		return fmt.Errorf("load caller permissions: %w", err)
	}

	if !authz.HasCapability(perms, authz.CapPermission, action) {
		return core.ForbiddenError(
			"missing Permission capability for this action",
		)
	}

	return nil
}

func (s *Service) guardMutation(
	ctx context.Context,
	caller authz.Subject,
	targetID string,
) (*session.Actor, error) {
	target, err := s.sessions.ResolveByID(ctx, targetID)
	if err != nil {
		return nil, err
	}

	guardTarget := authz.Subject{ID: target.ID, RoleName: target.RoleName}
	if err := authz.CheckPermissionMutation(caller, guardTarget); err != nil {
		return nil, err
	}

	return target, nil
}

// refreshProjection overwrites the cached permission set from the rows
// just committed. The write has been acknowledged by the database at
// this point; a cache failure only shortens freshness to the TTL.
func (s *Service) refreshProjection(ctx context.Context, userID string) {
	perms, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		s.sessions.Invalidate(ctx, userID, "")
		return
	}

	s.sessions.RefreshPermissions(ctx, userID, ToProjectionList(perms))
}
