// AngelaMos | 2026
// repository.go

package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/carterperez-dev/commerce-api/internal/core"
)

// Repository owns the credential-lifecycle columns of the users table:
// the reset token pair and the verification/activation flags. The rest
// of the row belongs to the user package.
type Repository interface {
	SetResetToken(
		ctx context.Context,
		userID, tokenHash string,
		expiresAt time.Time,
	) error
	FindByResetTokenHash(
		ctx context.Context,
		tokenHash string,
	) (*ResetCredential, error)
	ClearResetToken(ctx context.Context, userID string) error
	UpdatePasswordClearToken(
		ctx context.Context,
		userID, passwordHash string,
	) error
	MarkEmailVerified(ctx context.Context, userID string) error
	MarkActivated(ctx context.Context, userID string) error
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

func (r *repository) SetResetToken(
	ctx context.Context,
	userID, tokenHash string,
	expiresAt time.Time,
) error {
	query := `
		UPDATE users
		SET reset_token_hash = $2, reset_token_expires = $3, updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL`

	result, err := r.db.ExecContext(ctx, query, userID, tokenHash, expiresAt)
	if err != nil {
		return fmt.Errorf("set reset token: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("set reset token: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("set reset token: %w", core.ErrNotFound)
	}

	return nil
}

func (r *repository) FindByResetTokenHash(
	ctx context.Context,
	tokenHash string,
) (*ResetCredential, error) {
	query := `
		SELECT id, email, reset_token_expires
		FROM users
		WHERE reset_token_hash = $1 AND deleted_at IS NULL`

	var cred ResetCredential
	err := r.db.GetContext(ctx, &cred, query, tokenHash)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("find reset token: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("find reset token: %w", err)
	}

	return &cred, nil
}

func (r *repository) ClearResetToken(
	ctx context.Context,
	userID string,
) error {
	query := `
		UPDATE users
		SET reset_token_hash = NULL, reset_token_expires = NULL,
		    updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL`

	if _, err := r.db.ExecContext(ctx, query, userID); err != nil {
		return fmt.Errorf("clear reset token: %w", err)
	}

	return nil
}

// UpdatePasswordClearToken persists the new credential and invalidates
// the token in one statement, so the token cannot be consumed twice.
func (r *repository) UpdatePasswordClearToken(
	ctx context.Context,
	userID, passwordHash string,
) error {
	query := `
		UPDATE users
		SET password_hash = $2, reset_token_hash = NULL,
		    reset_token_expires = NULL, updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL AND reset_token_hash IS NOT NULL`

	result, err := r.db.ExecContext(ctx, query, userID, passwordHash)
	if err != nil {
		return fmt.Errorf("consume reset token: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("consume reset token: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("consume reset token: %w", core.ErrTokenInvalid)
	}

	return nil
}

func (r *repository) MarkEmailVerified(
	ctx context.Context,
	userID string,
) error {
	query := `
		UPDATE users
		SET email_verified = true, updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL AND email_verified = false`

	result, err := r.db.ExecContext(ctx, query, userID)
	if err != nil {
		return fmt.Errorf("mark email verified: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("mark email verified: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("mark email verified: %w", core.ErrConflict)
	}

	return nil
}

func (r *repository) MarkActivated(ctx context.Context, userID string) error {
	query := `
		UPDATE users
		SET activated = true, email_verified = true, updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL AND activated = false`

	result, err := r.db.ExecContext(ctx, query, userID)
	if err != nil {
		return fmt.Errorf("mark activated: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("mark activated: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("mark activated: %w", core.ErrConflict)
	}

	return nil
}
