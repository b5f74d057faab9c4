// handler.go

package course

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/grigoryblack/friendly-reminder/internal/core"
	"github.com/grigoryblack/friendly-reminder/internal/middleware"
	"github.com/grigoryblack/friendly-reminder/internal/user"
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

// RegisterRoutes uses flat paths rather than a /courses subtree so the
// booking handler can mount the enroll routes beside these.
func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator func(http.Handler) http.Handler,
) {
	r.Get("/courses", h.List)
	r.Get("/courses/{courseID}", h.Get)

	r.Group(func(r chi.Router) {
		r.Use(authenticator)
		r.Use(middleware.RequireRole(user.RoleTeacher, user.RoleAdmin))

		r.Post("/courses", h.Create)
		r.Put("/courses/{courseID}", h.Update)
		r.Delete("/courses/{courseID}", h.Delete)
	})
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	params := ListCoursesParams{
		TeacherID:       r.URL.Query().Get("teacherId"),
		IncludeInactive: r.URL.Query().Get("includeInactive") == "true",
	}

	courses, err := h.service.List(r.Context(), params)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, ToCourseResponseList(courses))
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	courseID := chi.URLParam(r, "courseID")

	course, err := h.service.Get(r.Context(), courseID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.JSONError(w, core.NewAppError(
				core.ErrNotFound,
				"Course not found",
				http.StatusNotFound,
				"NOT_FOUND",
			))
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, ToCourseResponse(course))
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateCourseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	course, err := h.service.Create(
		r.Context(),
		middleware.GetUserID(r.Context()),
		middleware.GetUserRole(r.Context()),
		req,
	)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.Created(w, ToCourseResponse(course))
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	courseID := chi.URLParam(r, "courseID")

	var req UpdateCourseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	course, err := h.service.Update(
		r.Context(),
		middleware.GetUserID(r.Context()),
		middleware.GetUserRole(r.Context()),
		courseID,
		req,
	)
	if err != nil {
		switch {
		case errors.Is(err, core.ErrNotFound):
			core.JSONError(w, core.NewAppError(
				core.ErrNotFound,
				"Course not found",
				http.StatusNotFound,
				"NOT_FOUND",
			))
		case errors.Is(err, core.ErrForbidden):
			core.Forbidden(w, "You can only edit your own courses")
		default:
			core.InternalServerError(w, err)
		}
		return
	}

	core.OK(w, ToCourseResponse(course))
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	courseID := chi.URLParam(r, "courseID")

	result, err := h.service.Delete(
		r.Context(),
		middleware.GetUserID(r.Context()),
		middleware.GetUserRole(r.Context()),
		courseID,
	)
	if err != nil {
		switch {
		case errors.Is(err, core.ErrNotFound):
			core.JSONError(w, core.NewAppError(
				core.ErrNotFound,
				"Course not found",
				http.StatusNotFound,
				"NOT_FOUND",
			))
		case errors.Is(err, core.ErrForbidden):
			core.Forbidden(w, "You can only delete your own courses")
		default:
			core.InternalServerError(w, err)
		}
		return
	}

	if result.Deactivated {
		resp := ToCourseResponse(result.Course)
		core.OK(w, DeleteCourseResponse{
			Message: "Course deactivated due to existing bookings",
			Course:  &resp,
		})
		return
	}

	core.OK(w, DeleteCourseResponse{
		Message: "Course deleted successfully",
	})
}
