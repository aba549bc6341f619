// AngelaMos | 2026
// repository.go

package permission

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/carterperez-dev/commerce-api/internal/core"
)

type Repository interface {
	ListByUser(ctx context.Context, userID string) ([]Permission, error)
	GetByUserAndCapability(
		ctx context.Context,
		userID, capability string,
	) (*Permission, error)
	Upsert(ctx context.Context, p *Permission) error
	SoftDelete(ctx context.Context, userID, capability string) error
	HardDeleteByUser(ctx context.Context, userID string) error
}

type repository struct {
	db core.DBTX
}

// NewRepository builds a repository over a database handle or an open
// transaction; both satisfy core.DBTX.
func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

func (r *repository) ListByUser(
	ctx context.Context,
	userID string,
) ([]Permission, error) {
	query := `
		SELECT id, user_id, capability, can_create, can_read, can_update,
		       can_delete, description, created_by, created_at, updated_at,
		       deleted_at
		FROM permissions
		WHERE user_id = $1 AND deleted_at IS NULL
		ORDER BY capability`

	var perms []Permission
	if err := r.db.SelectContext(ctx, &perms, query, userID); err != nil {
		return nil, fmt.Errorf("list permissions: %w", err)
	}

	return perms, nil
}

func (r *repository) GetByUserAndCapability(
	ctx context.Context,
	userID, capability string,
) (*Permission, error) {
	query := `
		SELECT id, user_id, capability, can_create, can_read, can_update,
		       can_delete, description, created_by, created_at, updated_at,
		       deleted_at
		FROM permissions
		WHERE user_id = $1 AND capability = $2 AND deleted_at IS NULL`

	var p Permission
	err := r.db.GetContext(ctx, &p, query, userID, capability)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get permission: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get permission: %w", err)
	}

	return &p, nil
}

func (r *repository) Upsert(ctx context.Context, p *Permission) error {
	query := `
		INSERT INTO permissions (
			id, user_id, capability, can_create, can_read, can_update,
			can_delete, description, created_by
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9
		)
		ON CONFLICT (user_id, capability) WHERE deleted_at IS NULL
		DO UPDATE SET
			can_create = EXCLUDED.can_create,
			can_read = EXCLUDED.can_read,
			can_update = EXCLUDED.can_update,
			can_delete = EXCLUDED.can_delete,
			description = EXCLUDED.description,
			updated_at = NOW()
		RETURNING id, created_at, updated_at`

	err := r.db.GetContext(ctx, p, query,
		p.ID,
		p.UserID,
		p.Capability,
		p.CanCreate,
		p.CanRead,
		p.CanUpdate,
		p.CanDelete,
		p.Description,
		p.CreatedBy,
	)
	if err != nil {
		return fmt.Errorf("upsert permission: %w", err)
	}

	return nil
}

func (r *repository) SoftDelete(
	ctx context.Context,
	userID, capability string,
) error {
	query := `
		UPDATE permissions
		SET deleted_at = NOW(), updated_at = NOW()
		WHERE user_id = $1 AND capability = $2 AND deleted_at IS NULL`

	result, err := r.db.ExecContext(ctx, query, userID, capability)
	if err != nil {
		return fmt.Errorf("delete permission: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete permission: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("delete permission: %w", core.ErrNotFound)
	}

	return nil
}

// HardDeleteByUser removes every permission row for the user. Used only
// by the registration compensation path, where a half-created account
// must leave nothing behind.
func (r *repository) HardDeleteByUser(
	ctx context.Context,
	userID string,
) error {
	query := `DELETE FROM permissions WHERE user_id = $1`

	if _, err := r.db.ExecContext(ctx, query, userID); err != nil {
		return fmt.Errorf("hard delete permissions: %w", err)
	}

	return nil
}
