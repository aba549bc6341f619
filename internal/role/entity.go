// AngelaMos | 2026
// entity.go

package role

import (
	"time"

	"github.com/carterperez-dev/commerce-api/internal/authz"
)

type Role struct {
	ID          string     `db:"id"`
	Name        string     `db:"name"`
	Description string     `db:"description"`
	CreatedBy   *string    `db:"created_by"`
	CreatedAt   time.Time  `db:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at"`
	DeletedAt   *time.Time `db:"deleted_at"`
}

func (r *Role) IsProtected() bool {
	return authz.IsProtectedRole(r.Name)
}
