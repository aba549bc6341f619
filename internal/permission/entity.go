// AngelaMos | 2026
// entity.go

package permission

import (
	"time"

	"github.com/carterperez-dev/commerce-api/internal/session"
)

// Permission is one capability grant row. At most one non-deleted row
// exists per (user, capability); the partial unique index enforces it.
type Permission struct {
	ID          string     `db:"id"`
	UserID      string     `db:"user_id"`
	Capability  string     `db:"capability"`
	CanCreate   bool       `db:"can_create"`
	CanRead     bool       `db:"can_read"`
	CanUpdate   bool       `db:"can_update"`
	CanDelete   bool       `db:"can_delete"`
	Description string     `db:"description"`
	CreatedBy   *string    `db:"created_by"`
	CreatedAt   time.Time  `db:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at"`
	DeletedAt   *time.Time `db:"deleted_at"`
}

func (p *Permission) Flags() Flags {
	return Flags{
		Create: p.CanCreate,
		Read:   p.CanRead,
		Update: p.CanUpdate,
		Delete: p.CanDelete,
	}
}

func ToProjection(p *Permission) session.Permission {
	return session.Permission{
		Capability: p.Capability,
		CanCreate:  p.CanCreate,
		CanRead:    p.CanRead,
		CanUpdate:  p.CanUpdate,
		CanDelete:  p.CanDelete,
	}
}

func ToProjectionList(perms []Permission) []session.Permission {
	out := make([]session.Permission, 0, len(perms))
	for i := range perms {
		out = append(out, ToProjection(&perms[i]))
	}
	return out
}
