// AngelaMos | 2026
// handler.go

package role

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/carterperez-dev/commerce-api/internal/authz"
	"github.com/carterperez-dev/commerce-api/internal/core"
	"github.com/carterperez-dev/commerce-api/internal/middleware"
)

type Handler struct {
	service   *Service
	validator *validator.Validate
}

func NewHandler(service *Service) *Handler {
	return &Handler{
		service:   service,
		validator: validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator func(http.Handler) http.Handler,
) {
	r.Route("/roles", func(r chi.Router) {
		r.Use(authenticator)

		r.Get("/", h.List)
		r.Post("/", h.Create)
		r.Get("/{roleID}", h.Get)
		r.Put("/{roleID}", h.Update)
		r.Delete("/{roleID}", h.Delete)
	})
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	roles, err := h.service.List(r.Context(), caller(r))
	if err != nil {
		h.writeError(w, err)
		return
	}

	core.OK(w, RoleListResponse{Roles: ToRoleResponseList(roles)})
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	role, err := h.service.Get(r.Context(), caller(r), chi.URLParam(r, "roleID"))
	if err != nil {
		h.writeError(w, err)
		return
	}

	core.OK(w, ToRoleResponse(role))
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.JSONError(w, core.ValidationError(err))
		return
	}

	role, err := h.service.Create(r.Context(), caller(r), req)
	if err != nil {
		h.writeError(w, err)
		return
	}

	core.Created(w, ToRoleResponse(role))
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var req UpdateRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.JSONError(w, core.ValidationError(err))
		return
	}

	role, err := h.service.Update(
		r.Context(),
		caller(r),
		chi.URLParam(r, "roleID"),
		req,
	)
	if err != nil {
		h.writeError(w, err)
		return
	}

	core.OK(w, ToRoleResponse(role))
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	err := h.service.Delete(r.Context(), caller(r), chi.URLParam(r, "roleID"))
	if err != nil {
		h.writeError(w, err)
		return
	}

	core.NoContent(w)
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case core.IsAppError(err):
		core.JSONError(w, err)
	case errors.Is(err, core.ErrNotFound):
		core.NotFound(w, "role")
	case errors.Is(err, core.ErrDuplicateKey):
		core.JSONError(w, core.DuplicateError("role name"))
	default:
		core.InternalServerError(w, err)
	}
}

func caller(r *http.Request) authz.Subject {
	return authz.Subject{
		ID:       middleware.GetUserID(r.Context()),
		RoleName: middleware.GetUserRole(r.Context()),
	}
}
