// handler.go

package booking

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

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

func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator func(http.Handler) http.Handler,
) {
	r.Group(func(r chi.Router) {
		r.Use(authenticator)

		r.Get("/bookings", h.List)
		r.Post("/bookings", h.Create)
		r.Get("/bookings/{bookingID}", h.Get)
		r.Delete("/bookings/{bookingID}", h.Cancel)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole(user.RoleTeacher, user.RoleAdmin))
			r.Get("/bookings/teacher", h.ListTeacher)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole(
				user.RoleStudent,
				user.RoleParent,
				user.RoleAdmin,
			))
			r.Post("/courses/{courseID}/enroll", h.Enroll)
			r.Delete("/courses/{courseID}/enroll", h.Unenroll)
		})
	})
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	status := r.URL.Query().Get("status")

	details, payments, err := h.service.ListForUser(r.Context(), userID, status)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, ToBookingResponseList(details, payments))
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var req CreateBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	scheduledAt, err := time.Parse(time.RFC3339, req.ScheduledAt)
	if err != nil {
		core.BadRequest(w, "Invalid date format")
		return
	}

	detail, err := h.service.Create(
		r.Context(),
		userID,
		req.CourseID,
		scheduledAt,
		req.Notes,
	)
	if err != nil {
		switch {
		case errors.Is(err, core.ErrNotFound),
			errors.Is(err, ErrCourseInactive):
			core.JSONError(w, core.NewAppError(
				core.ErrNotFound,
				"Course not found or inactive",
				http.StatusNotFound,
				"NOT_FOUND",
			))
		case errors.Is(err, ErrSlotFull):
			core.BadRequest(w, "Course is full for this time slot")
		case errors.Is(err, ErrDuplicate):
			core.BadRequest(
				w,
				"You already have a booking for this course at this time",
			)
		default:
			core.InternalServerError(w, err)
		}
		return
	}

	core.Created(w, ToBookingResponse(detail))
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	bookingID := chi.URLParam(r, "bookingID")

	detail, err := h.service.GetForActor(
		r.Context(),
		bookingID,
		middleware.GetUserID(r.Context()),
		middleware.GetUserRole(r.Context()),
	)
	if err != nil {
		switch {
		case errors.Is(err, core.ErrNotFound):
			core.NotFound(w, "booking")
		case errors.Is(err, core.ErrForbidden):
			core.Forbidden(w, "You do not have access to this booking")
		default:
			core.InternalServerError(w, err)
		}
		return
	}

	core.OK(w, ToBookingResponse(detail))
}

func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	bookingID := chi.URLParam(r, "bookingID")
	userID := middleware.GetUserID(r.Context())

	detail, err := h.service.CancelByID(r.Context(), bookingID, userID)
	if err != nil {
		switch {
		case errors.Is(err, core.ErrNotFound):
			core.NotFound(w, "booking")
		case errors.Is(err, core.ErrForbidden):
			core.Forbidden(w, "You do not have access to this booking")
		case errors.Is(err, ErrNotCancellable):
			core.BadRequest(w, "This booking cannot be cancelled")
		default:
			core.InternalServerError(w, err)
		}
		return
	}

	core.OK(w, CancelBookingResponse{
		Message: "Booking cancelled successfully",
		Booking: CancelledBookingRef{
			ID:     detail.ID,
			Status: detail.Status,
		},
	})
}

func (h *Handler) ListTeacher(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	details, err := h.service.ListForTeacher(r.Context(), userID)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	responses := make([]BookingResponse, 0, len(details))
	for i := range details {
		responses = append(responses, ToBookingResponse(&details[i]))
	}

	core.OK(w, responses)
}

func (h *Handler) Enroll(w http.ResponseWriter, r *http.Request) {
	courseID := chi.URLParam(r, "courseID")
	userID := middleware.GetUserID(r.Context())

	var req EnrollRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	scheduledAt, err := time.Parse(time.RFC3339, req.ScheduledAt)
	if err != nil || !scheduledAt.After(time.Now()) {
		core.BadRequest(
			w,
			"Invalid date format or date must be in the future",
		)
		return
	}

	detail, err := h.service.Create(
		r.Context(),
		userID,
		courseID,
		scheduledAt,
		req.Notes,
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
		case errors.Is(err, ErrCourseInactive):
			core.BadRequest(w, "Course is not active")
		case errors.Is(err, ErrSlotFull):
			core.BadRequest(w, "This time slot is fully booked")
		case errors.Is(err, ErrDuplicate):
			core.BadRequest(
				w,
				"You are already enrolled for this course at this time",
			)
		default:
			core.InternalServerError(w, err)
		}
		return
	}

	core.Created(w, ToBookingResponse(detail))
}

func (h *Handler) Unenroll(w http.ResponseWriter, r *http.Request) {
	courseID := chi.URLParam(r, "courseID")
	userID := middleware.GetUserID(r.Context())

	raw := r.URL.Query().Get("scheduledAt")
	if raw == "" {
		core.BadRequest(w, "scheduledAt parameter is required")
		return
	}

	scheduledAt, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		core.BadRequest(w, "Invalid date format")
		return
	}

	detail, err := h.service.CancelBySlot(
		r.Context(),
		userID,
		courseID,
		scheduledAt,
	)
	if err != nil {
		switch {
		case errors.Is(err, core.ErrNotFound):
			core.JSONError(w, core.NewAppError(
				core.ErrNotFound,
				"Booking not found",
				http.StatusNotFound,
				"NOT_FOUND",
			))
		case errors.Is(err, ErrCompleted):
			core.BadRequest(w, "Cannot cancel completed booking")
		default:
			core.InternalServerError(w, err)
		}
		return
	}

	core.OK(w, CancelBookingResponse{
		Message: "Booking cancelled successfully",
		Booking: ToBookingResponse(detail),
	})
}
