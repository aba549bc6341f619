// AngelaMos | 2026
// service.go

package role

import (
	"context"
	"fmt"
	"strings"

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

func (s *Service) List(
	ctx context.Context,
	caller authz.Subject,
) ([]Role, error) {
	if err := s.require(ctx, caller, authz.ActionRead); err != nil {
		return nil, err
	}
	return s.repo.List(ctx)
}

func (s *Service) Get(
	ctx context.Context,
	caller authz.Subject,
	id string,
) (*Role, error) {
	if err := s.require(ctx, caller, authz.ActionRead); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id)
}

func (s *Service) Create(
	ctx context.Context,
	caller authz.Subject,
	req CreateRoleRequest,
) (*Role, error) {
	if err := s.require(ctx, caller, authz.ActionCreate); err != nil {
		return nil, err
	}

	role := &Role{
		ID:          uuid.New().String(),
		Name:        strings.ToUpper(req.Name),
		Description: req.Description,
		CreatedBy:   &caller.ID,
	}

	if err := s.repo.Create(ctx, role); err != nil {
		return nil, err
	}

	return role, nil
}

func (s *Service) Update(
	ctx context.Context,
	caller authz.Subject,
	id string,
	req UpdateRoleRequest,
) (*Role, error) {
	if err := s.require(ctx, caller, authz.ActionUpdate); err != nil {
		return nil, err
	}

	role, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if role.IsProtected() {
		return nil, core.ForbiddenError("protected roles cannot be modified")
	}

	if req.Description != nil {
		role.Description = *req.Description
	}

	if err := s.repo.Update(ctx, role); err != nil {
		return nil, err
	}

	return role, nil
}

// Delete soft-deletes a custom role. Protected roles are rejected for
// every caller; roles with assigned actors cannot be removed either,
// since their users would be left pointing at a dead row.
func (s *Service) Delete(
	ctx context.Context,
	caller authz.Subject,
	id string,
) error {
	if err := s.require(ctx, caller, authz.ActionDelete); err != nil {
		return err
	}

	role, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if role.IsProtected() {
		return core.ForbiddenError("protected roles cannot be deleted")
	}

	count, err := s.repo.CountUsers(ctx, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return core.ConflictError(
			fmt.Sprintf("role still assigned to %d actors", count),
		)
	}

	return s.repo.SoftDelete(ctx, id)
}

// require gates every role operation on tier and the Role capability.
func (s *Service) require(
	ctx context.Context,
	caller authz.Subject,
	action authz.Action,
) error {
	if authz.Tier(caller.RoleName) < authz.Tier(authz.RoleManager) {
		return core.ForbiddenError("role management requires manager privileges")
	}

	perms, err := s.sessions.Permissions(ctx, caller.ID)
	if err != nil {
		return fmt.Errorf("load caller permissions: %w", err)
	}

	if !authz.HasCapability(perms, authz.CapRole, action) {
		return core.ForbiddenError("missing Role capability for this action")
	}

	return nil
}
