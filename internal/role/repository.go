// AngelaMos | 2026
// repository.go

package role

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/carterperez-dev/commerce-api/internal/core"
)

type Repository interface {
	Create(ctx context.Context, role *Role) error
	GetByID(ctx context.Context, id string) (*Role, error)
	GetByName(ctx context.Context, name string) (*Role, error)
	List(ctx context.Context) ([]Role, error)
	Update(ctx context.Context, role *Role) error
	SoftDelete(ctx context.Context, id string) error
	CountUsers(ctx context.Context, roleID string) (int, error)
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, role *Role) error {
	query := `
		INSERT INTO roles (id, name, description, created_by)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at, updated_at`

	err := r.db.GetContext(ctx, role, query,
		role.ID,
		role.Name,
		role.Description,
		role.CreatedBy,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return fmt.Errorf("create role: %w", core.ErrDuplicateKey)
		}
		return fmt.Errorf("create role: %w", err)
	}

	return nil
}

func (r *repository) GetByID(ctx context.Context, id string) (*Role, error) {
	query := `
		SELECT id, name, description, created_by, created_at, updated_at,
		       deleted_at
		FROM roles
		WHERE id = $1 AND deleted_at IS NULL`

	var role Role
	err := r.db.GetContext(ctx, &role, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get role: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get role: %w", err)
	}

	return &role, nil
}

func (r *repository) GetByName(
	ctx context.Context,
	name string,
) (*Role, error) {
	query := `
		SELECT id, name, description, created_by, created_at, updated_at,
		       deleted_at
		FROM roles
		WHERE name = $1 AND deleted_at IS NULL`

	var role Role
	err := r.db.GetContext(ctx, &role, query, name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get role by name: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get role by name: %w", err)
	}

	return &role, nil
}

func (r *repository) List(ctx context.Context) ([]Role, error) {
	query := `
		SELECT id, name, description, created_by, created_at, updated_at,
		       deleted_at
		FROM roles
		WHERE deleted_at IS NULL
		ORDER BY name`

	var roles []Role
	if err := r.db.SelectContext(ctx, &roles, query); err != nil {
		return nil, fmt.Errorf("list roles: %w", err)
	}

	return roles, nil
}

func (r *repository) Update(ctx context.Context, role *Role) error {
	query := `
		UPDATE roles
		SET name = $2, description = $3, updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING updated_at`

	err := r.db.GetContext(ctx, &role.UpdatedAt, query,
		role.ID,
		role.Name,
		role.Description,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("update role: %w", core.ErrNotFound)
	}
	if err != nil {
		if isDuplicateKeyError(err) {
			return fmt.Errorf("update role: %w", core.ErrDuplicateKey)
		}
		return fmt.Errorf("update role: %w", err)
	}

	return nil
}

func (r *repository) SoftDelete(ctx context.Context, id string) error {
	query := `
		UPDATE roles
		SET deleted_at = NOW(), updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete role: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete role: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("delete role: %w", core.ErrNotFound)
	}

	return nil
}

func (r *repository) CountUsers(
	ctx context.Context,
	roleID string,
) (int, error) {
	query := `
		SELECT COUNT(*) FROM users
		WHERE role_id = $1 AND deleted_at IS NULL`

	var count int
	if err := r.db.GetContext(ctx, &count, query, roleID); err != nil {
		return 0, fmt.Errorf("count role users: %w", err)
	}

	return count, nil
}

func isDuplicateKeyError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}
