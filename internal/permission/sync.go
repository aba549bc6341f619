// AngelaMos | 2026
// sync.go

package permission

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/carterperez-dev/commerce-api/internal/authz"
	"github.com/carterperez-dev/commerce-api/internal/core"
)

// Sync rewrites the user's permission rows to match the new role's
// predefined matrix. It runs over the caller's open transaction so the
// role-field update and the rewrite commit together.
//
// For every capability in the union of current rows and matrix entries:
// a matrix entry is upserted with its exact flags; a capability held
// only in the current rows is zeroed (soft revoke, row retained) with
// the description noting the revocation. Custom roles have no matrix
// and leave existing rows untouched.
//
// The returned slice is the final permission set, for the caller to
// push into the cache after the transaction commits.
func SyncTx(
	ctx context.Context,
	tx core.DBTX,
	userID, roleName, actorID string,
) ([]Permission, error) {
	repo := NewRepository(tx)

	current, err := repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("sync permissions: %w", err)
	}

	matrix, ok := MatrixFor(roleName)
	if !ok {
		return current, nil
	}

	synced := make([]Permission, 0, len(matrix))

	// catalog order keeps the row writes deterministic
	for _, capability := range authz.Capabilities {
		flags, inMatrix := matrix[capability]
		if !inMatrix {
			continue
		}

		p := &Permission{
			ID:          uuid.New().String(),
			UserID:      userID,
			Capability:  capability,
			CanCreate:   flags.Create,
			CanRead:     flags.Read,
			CanUpdate:   flags.Update,
			CanDelete:   flags.Delete,
			Description: fmt.Sprintf("granted by role %s", roleName),
			CreatedBy:   &actorID,
		}
		if err := repo.Upsert(ctx, p); err != nil {
			return nil, fmt.Errorf("sync permissions: %w", err)
		}
		synced = append(synced, *p)
	}

	for i := range current {
		if _, inMatrix := matrix[current[i].Capability]; inMatrix {
			continue
		}

		revoked := &Permission{
			ID:         uuid.New().String(),
			UserID:     userID,
			Capability: current[i].Capability,
			Description: fmt.Sprintf(
				"revoked on role change to %s",
				roleName,
			),
			CreatedBy: &actorID,
		}
		if err := repo.Upsert(ctx, revoked); err != nil {
			return nil, fmt.Errorf("sync permissions: %w", err)
		}
		synced = append(synced, *revoked)
	}

	return synced, nil
}

// Seed inserts the matrix rows for a freshly registered user. Runs in
// the registration transaction; roles without a matrix seed nothing.
func Seed(
	ctx context.Context,
	tx core.DBTX,
	userID, roleName string,
	createdBy *string,
) error {
	matrix, ok := MatrixFor(roleName)
	if !ok {
		return nil
	}

	repo := NewRepository(tx)

	for _, capability := range authz.Capabilities {
		flags, inMatrix := matrix[capability]
		if !inMatrix {
			continue
		}

		p := &Permission{
			ID:          uuid.New().String(),
			UserID:      userID,
			Capability:  capability,
			CanCreate:   flags.Create,
			CanRead:     flags.Read,
			CanUpdate:   flags.Update,
			CanDelete:   flags.Delete,
			Description: fmt.Sprintf("granted by role %s", roleName),
			CreatedBy:   createdBy,
		}
		if err := repo.Upsert(ctx, p); err != nil {
			return fmt.Errorf("seed permissions: %w", err)
		}
	}

	return nil
}
