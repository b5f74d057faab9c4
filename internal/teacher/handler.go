// handler.go

package teacher

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/grigoryblack/friendly-reminder/internal/core"
	"github.com/grigoryblack/friendly-reminder/internal/middleware"
	"github.com/grigoryblack/friendly-reminder/internal/user"
)

type Handler struct {
	service *Service
	users   *user.Service
}

func NewHandler(service *Service, users *user.Service) *Handler {
	return &Handler{
		service: service,
		users:   users,
	}
}

func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator func(http.Handler) http.Handler,
) {
	r.Group(func(r chi.Router) {
		r.Use(authenticator)
		r.Use(middleware.RequireRole(user.RoleTeacher, user.RoleAdmin))

		r.Get("/profile/teacher", h.GetProfile)
	})
}

func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	// Seed a freshly provisioned profile with the user's avatar, as the
	// account screen does.
	var avatarURL *string
	if u, err := h.users.GetByID(r.Context(), userID); err == nil {
		avatarURL = u.AvatarURL
	}

	teacher, err := h.service.GetOrCreateByUserID(r.Context(), userID, avatarURL)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, ToTeacherResponse(teacher))
}
