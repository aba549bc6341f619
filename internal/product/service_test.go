// AngelaMos | 2026
// service_test.go

package product

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/commerce-api/internal/core"
	"github.com/carterperez-dev/commerce-api/internal/session"
)

type fakeRepo struct {
	products map[string]*Product
	deleted  []string
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{products: make(map[string]*Product)}
}

func (f *fakeRepo) Create(_ context.Context, p *Product) error {
	for _, existing := range f.products {
		if existing.Slug == p.Slug {
			return fmt.Errorf("create product: %w", core.ErrDuplicateKey)
		}
	}
	f.products[p.ID] = p
	return nil
}

func (f *fakeRepo) GetByID(_ context.Context, id string) (*Product, error) {
	p, ok := f.products[id]
	if !ok {
		return nil, fmt.Errorf("get product: %w", core.ErrNotFound)
	}
	copied := *p
	return &copied, nil
}

func (f *fakeRepo) GetBySlug(
	_ context.Context,
	slug string,
) (*Product, error) {
	for _, p := range f.products {
		if p.Slug == slug {
			copied := *p
			return &copied, nil
		}
	}
	return nil, fmt.Errorf("get product: %w", core.ErrNotFound)
}

func (f *fakeRepo) List(
	_ context.Context,
	_ ListProductsParams,
) ([]Product, int, error) {
	out := make([]Product, 0, len(f.products))
	for _, p := range f.products {
		out = append(out, *p)
	}
	return out, len(out), nil
}

func (f *fakeRepo) Update(_ context.Context, p *Product) error {
	if _, ok := f.products[p.ID]; !ok {
		return fmt.Errorf("update product: %w", core.ErrNotFound)
	}
	f.products[p.ID] = p
	return nil
}

func (f *fakeRepo) SoftDelete(_ context.Context, id string) error {
	if _, ok := f.products[id]; !ok {
		return fmt.Errorf("delete product: %w", core.ErrNotFound)
	}
	delete(f.products, id)
	f.deleted = append(f.deleted, id)
	return nil
}

type fakeStore struct{}

func (fakeStore) Get(_ context.Context, key string) (string, error) {
	return "", fmt.Errorf("get %s: %w", key, core.ErrCacheMiss)
}

func (fakeStore) Set(
	_ context.Context,
	_, _ string,
	_ time.Duration,
) error {
	return nil
}

func (fakeStore) Delete(_ context.Context, _ ...string) error { return nil }

func (fakeStore) Incr(
	_ context.Context,
	_ string,
	_ time.Duration,
) (int64, error) {
	return 0, nil
}

type permSource struct {
	perms map[string][]session.Permission
}

func (s *permSource) LoadByID(
	_ context.Context,
	_ string,
) (*session.Actor, error) {
	return nil, core.ErrNotFound
}

func (s *permSource) LoadByEmail(
	_ context.Context,
	_ string,
) (*session.Actor, error) {
	return nil, core.ErrNotFound
}

func (s *permSource) LoadPermissions(
	_ context.Context,
	userID string,
) ([]session.Permission, error) {
	return s.perms[userID], nil
}

func newTestService(perms map[string][]session.Permission) (*Service, *fakeRepo) {
	repo := newFakeRepo()
	sessions := session.NewManager(
		fakeStore{},
		&permSource{perms: perms},
		time.Minute,
		time.Minute,
	)
	return NewService(repo, sessions), repo
}

func managerPerms() map[string][]session.Permission {
	return map[string][]session.Permission{
		"manager-1": {{
			Capability: "Product",
			CanCreate:  true,
			CanRead:    true,
			CanUpdate:  true,
			CanDelete:  true,
		}},
		"customer-1": {{
			Capability: "Product",
			CanRead:    true,
		}},
	}
}

func TestCreateRequiresProductCapability(t *testing.T) {
	svc, repo := newTestService(managerPerms())
	ctx := context.Background()

	req := CreateProductRequest{
		Name:       "Mechanical Keyboard",
		Slug:       "mechanical-keyboard",
		PriceCents: 12900,
		Stock:      10,
	}

	_, err := svc.Create(ctx, "customer-1", req)
	assert.ErrorIs(t, err, core.ErrForbidden)
	assert.Empty(t, repo.products)

	p, err := svc.Create(ctx, "manager-1", req)
	require.NoError(t, err)
	assert.NotEmpty(t, p.ID)
	assert.Len(t, repo.products, 1)
}

func TestCreateUnknownCallerForbidden(t *testing.T) {
	svc, _ := newTestService(managerPerms())

	_, err := svc.Create(context.Background(), "ghost-1", CreateProductRequest{
		Name: "Thing",
		Slug: "thing",
	})

	assert.ErrorIs(t, err, core.ErrForbidden)
}

func TestUpdateAppliesPartialFields(t *testing.T) {
	svc, repo := newTestService(managerPerms())
	ctx := context.Background()

	created, err := svc.Create(ctx, "manager-1", CreateProductRequest{
		Name:       "Mechanical Keyboard",
		Slug:       "mechanical-keyboard",
		PriceCents: 12900,
		Stock:      10,
	})
	require.NoError(t, err)

	newPrice := int64(9900)
	updated, err := svc.Update(ctx, "manager-1", created.ID, UpdateProductRequest{
		PriceCents: &newPrice,
	})

	require.NoError(t, err)
	assert.Equal(t, int64(9900), updated.PriceCents)
	assert.Equal(t, "Mechanical Keyboard", updated.Name)
	assert.Equal(t, "mechanical-keyboard", repo.products[created.ID].Slug)
}

func TestDeleteForbiddenForReadOnlyCaller(t *testing.T) {
	svc, repo := newTestService(managerPerms())
	ctx := context.Background()

	created, err := svc.Create(ctx, "manager-1", CreateProductRequest{
		Name: "Thing",
		Slug: "thing",
	})
	require.NoError(t, err)

	err = svc.Delete(ctx, "customer-1", created.ID)
	assert.ErrorIs(t, err, core.ErrForbidden)
	assert.Empty(t, repo.deleted)

	err = svc.Delete(ctx, "manager-1", created.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{created.ID}, repo.deleted)
}

func TestListNormalizesPaging(t *testing.T) {
	svc, _ := newTestService(nil)

	_, total, err := svc.List(context.Background(), ListProductsParams{
		Page:     0,
		PageSize: 500,
	})

	require.NoError(t, err)
	assert.Zero(t, total)
}
