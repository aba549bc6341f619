// AngelaMos | 2026
// handler.go

package permission

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
	r.Route("/users/{userID}/permissions", func(r chi.Router) {
		r.Use(authenticator)

		r.Get("/", h.List)
		r.Put("/{capability}", h.Update)
		r.Delete("/{capability}", h.Delete)
	})
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	caller := callerSubject(r)
	targetID := chi.URLParam(r, "userID")

	perms, err := h.service.ListForUser(r.Context(), caller, targetID)
	if err != nil {
		h.writeError(w, err)
		return
	}

	core.OK(w, PermissionListResponse{
		UserID:      targetID,
		Permissions: ToPermissionResponseList(perms),
	})
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	caller := callerSubject(r)
	targetID := chi.URLParam(r, "userID")
	capability := chi.URLParam(r, "capability")

	var req UpdatePermissionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.JSONError(w, core.ValidationError(err))
		return
	}

	p, err := h.service.Update(r.Context(), caller, targetID, capability, req)
	if err != nil {
		h.writeError(w, err)
		return
	}

	core.OK(w, ToPermissionResponse(p))
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	caller := callerSubject(r)
	targetID := chi.URLParam(r, "userID")
	capability := chi.URLParam(r, "capability")

	err := h.service.Delete(r.Context(), caller, targetID, capability)
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
		core.NotFound(w, "user")
	case errors.Is(err, core.ErrForbidden):
		core.Forbidden(w, "")
	default:
		core.InternalServerError(w, err)
	}
}

func callerSubject(r *http.Request) authz.Subject {
	return authz.Subject{
		ID:       middleware.GetUserID(r.Context()),
		RoleName: middleware.GetUserRole(r.Context()),
	}
}
