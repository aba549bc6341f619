// AngelaMos | 2026
// repository.go

package product

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/carterperez-dev/commerce-api/internal/core"
)

type Repository interface {
	Create(ctx context.Context, p *Product) error
	GetByID(ctx context.Context, id string) (*Product, error)
	GetBySlug(ctx context.Context, slug string) (*Product, error)
	List(ctx context.Context, params ListProductsParams) ([]Product, int, error)
	Update(ctx context.Context, p *Product) error
	SoftDelete(ctx context.Context, id string) error
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

const selectColumns = `
	id, name, slug, description, price_cents, stock,
	created_at, updated_at, deleted_at`

func (r *repository) Create(ctx context.Context, p *Product) error {
	query := `
		INSERT INTO products (id, name, slug, description, price_cents, stock)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at`

	err := r.db.GetContext(ctx, p, query,
		p.ID,
		p.Name,
		p.Slug,
		p.Description,
		p.PriceCents,
		p.Stock,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return fmt.Errorf("create product: %w", core.ErrDuplicateKey)
		}
		return fmt.Errorf("create product: %w", err)
	}

	return nil
}

func (r *repository) GetByID(
	ctx context.Context,
	id string,
) (*Product, error) {
	query := `
		SELECT ` + selectColumns + `
		FROM products
		WHERE id = $1 AND deleted_at IS NULL`

	var p Product
	err := r.db.GetContext(ctx, &p, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get product: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}

	return &p, nil
}

func (r *repository) GetBySlug(
	ctx context.Context,
	slug string,
) (*Product, error) {
	query := `
		SELECT ` + selectColumns + `
		FROM products
		WHERE slug = $1 AND deleted_at IS NULL`

	var p Product
	err := r.db.GetContext(ctx, &p, query, slug)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get product by slug: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get product by slug: %w", err)
	}

	return &p, nil
}

func (r *repository) List(
	ctx context.Context,
	params ListProductsParams,
) ([]Product, int, error) {
	where := "WHERE deleted_at IS NULL"
	args := []any{}

	if params.Search != "" {
		args = append(args, "%"+params.Search+"%")
		where += fmt.Sprintf(" AND (name ILIKE $%d OR slug ILIKE $%d)",
			len(args), len(args))
	}

	var total int
	countQuery := "SELECT COUNT(*) FROM products " + where
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count products: %w", err)
	}

	args = append(args, params.PageSize, (params.Page-1)*params.PageSize)
	query := fmt.Sprintf(`
		SELECT %s
		FROM products %s
		ORDER BY name
		LIMIT $%d OFFSET $%d`,
		selectColumns, where, len(args)-1, len(args))

	var products []Product
	if err := r.db.SelectContext(ctx, &products, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list products: %w", err)
	}

	return products, total, nil
}

func (r *repository) Update(ctx context.Context, p *Product) error {
	query := `
		UPDATE products
		SET name = $2, slug = $3, description = $4, price_cents = $5,
		    stock = $6, updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING updated_at`

	err := r.db.GetContext(ctx, &p.UpdatedAt, query,
		p.ID,
		p.Name,
		p.Slug,
		p.Description,
		p.PriceCents,
		p.Stock,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("update product: %w", core.ErrNotFound)
	}
	if err != nil {
		if isDuplicateKeyError(err) {
			return fmt.Errorf("update product: %w", core.ErrDuplicateKey)
		}
		return fmt.Errorf("update product: %w", err)
	}

	return nil
}

func (r *repository) SoftDelete(ctx context.Context, id string) error {
	query := `
		UPDATE products
		SET deleted_at = NOW(), updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("delete product: %w", core.ErrNotFound)
	}

	return nil
}

func isDuplicateKeyError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}
