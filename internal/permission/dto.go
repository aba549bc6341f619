// AngelaMos | 2026
// dto.go

package permission

import (
	"time"
)

type UpdatePermissionRequest struct {
	CanCreate   bool   `json:"can_create"`
	CanRead     bool   `json:"can_read"`
	CanUpdate   bool   `json:"can_update"`
	CanDelete   bool   `json:"can_delete"`
	Description string `json:"description" validate:"max=255"`
}

type PermissionResponse struct {
	Capability  string    `json:"capability"`
	CanCreate   bool      `json:"can_create"`
	CanRead     bool      `json:"can_read"`
	CanUpdate   bool      `json:"can_update"`
	CanDelete   bool      `json:"can_delete"`
	Description string    `json:"description"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type PermissionListResponse struct {
	UserID      string               `json:"user_id"`
	Permissions []PermissionResponse `json:"permissions"`
}

func ToPermissionResponse(p *Permission) PermissionResponse {
	return PermissionResponse{
		Capability:  p.Capability,
		CanCreate:   p.CanCreate,
		CanRead:     p.CanRead,
		CanUpdate:   p.CanUpdate,
		CanDelete:   p.CanDelete,
		Description: p.Description,
		UpdatedAt:   p.UpdatedAt,
	}
}

func ToPermissionResponseList(perms []Permission) []PermissionResponse {
	out := make([]PermissionResponse, 0, len(perms))
	for i := range perms {
		out = append(out, ToPermissionResponse(&perms[i]))
	}
	return out
}
