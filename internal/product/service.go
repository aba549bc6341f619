// AngelaMos | 2026
// service.go

package product

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/carterperez-dev/commerce-api/internal/authz"
	"github.com/carterperez-dev/commerce-api/internal/core"
	"github.com/carterperez-dev/commerce-api/internal/session"
)

// Service is the catalog slice that exercises the capability evaluator:
// reads are public, every mutation checks the caller's Product
// capability through the cached permission projection.
type Service struct {
	repo     Repository
	sessions *session.Manager
}

func NewService(repo Repository, sessions *session.Manager) *Service {
	return &Service{repo: repo, sessions: sessions}
}

func (s *Service) List(
	ctx context.Context,
	params ListProductsParams,
) ([]Product, int, error) {
	if params.Page < 1 {
		params.Page = 1
	}
	if params.PageSize < 1 || params.PageSize > 100 {
		params.PageSize = 20
	}
	return s.repo.List(ctx, params)
}

func (s *Service) GetBySlug(
	ctx context.Context,
	slug string,
) (*Product, error) {
	return s.repo.GetBySlug(ctx, slug)
}

func (s *Service) Create(
	ctx context.Context,
	callerID string,
	req CreateProductRequest,
) (*Product, error) {
	if err := s.require(ctx, callerID, authz.ActionCreate); err != nil {
		return nil, err
	}

	p := &Product{
		ID:          uuid.New().String(),
		Name:        req.Name,
		Slug:        req.Slug,
		Description: req.Description,
		PriceCents:  req.PriceCents,
		Stock:       req.Stock,
	}

	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}

	return p, nil
}

func (s *Service) Update(
	ctx context.Context,
	callerID, id string,
	req UpdateProductRequest,
) (*Product, error) {
	if err := s.require(ctx, callerID, authz.ActionUpdate); err != nil {
		return nil, err
	}

	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		p.Name = *req.Name
	}
	if req.Slug != nil {
		p.Slug = *req.Slug
	}
	if req.Description != nil {
		p.Description = *req.Description
	}
	if req.PriceCents != nil {
		p.PriceCents = *req.PriceCents
	}
	if req.Stock != nil {
		p.Stock = *req.Stock
	}

	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}

	return p, nil
}

func (s *Service) Delete(ctx context.Context, callerID, id string) error {
	if err := s.require(ctx, callerID, authz.ActionDelete); err != nil {
		return err
	}
	return s.repo.SoftDelete(ctx, id)
}

func (s *Service) require(
	ctx context.Context,
	callerID string,
	action authz.Action,
) error {
	perms, err := s.sessions.Permissions(ctx, callerID)
	if err != nil {
		return fmt.Errorf("load caller permissions: %w", err)
	}

	if !authz.HasCapability(perms, authz.CapProduct, action) {
		return core.ForbiddenError("missing Product capability for this action")
	}

	return nil
}
