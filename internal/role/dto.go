// AngelaMos | 2026
// dto.go

package role

import (
	"time"
)

type CreateRoleRequest struct {
	Name        string `json:"name"        validate:"required,min=2,max=50,uppercase"`
	Description string `json:"description" validate:"max=255"`
}

type UpdateRoleRequest struct {
	Description *string `json:"description,omitempty" validate:"omitempty,max=255"`
}

type RoleResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Protected   bool      `json:"protected"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type RoleListResponse struct {
	Roles []RoleResponse `json:"roles"`
}

func ToRoleResponse(r *Role) RoleResponse {
	return RoleResponse{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		Protected:   r.IsProtected(),
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

func ToRoleResponseList(roles []Role) []RoleResponse {
	out := make([]RoleResponse, 0, len(roles))
	for i := range roles {
		out = append(out, ToRoleResponse(&roles[i]))
	}
	return out
}
