// handler.go

package auth

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/grigoryblack/friendly-reminder/internal/core"
	"github.com/grigoryblack/friendly-reminder/internal/middleware"
	"github.com/grigoryblack/friendly-reminder/internal/session"
	"github.com/grigoryblack/friendly-reminder/internal/user"
)

type Handler struct {
	service   *Service
	sessions  *session.Manager
	validator *validator.Validate
}

func NewHandler(service *Service, sessions *session.Manager) *Handler {
	return &Handler{
		service:   service,
		sessions:  sessions,
		validator: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// RegisterRoutes mounts the auth endpoints. resetLimiter guards the
// unauthenticated mail-sending route with a tighter rate limit than the
// global one.
func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator, resetLimiter func(http.Handler) http.Handler,
) {
	r.Post("/register", h.Register)
	r.Post("/login", h.Login)
	r.With(resetLimiter).Post("/forgot-password", h.ForgotPassword)
	r.Post("/reset-password", h.ResetPassword)

	r.Group(func(r chi.Router) {
		r.Use(authenticator)
		r.Post("/logout", h.Logout)
	})
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	u, err := h.service.Register(r.Context(), req)
	if err != nil {
		if errors.Is(err, core.ErrDuplicateKey) {
			core.JSONError(w, core.DuplicateError("email"))
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.Created(w, user.ToUserResponse(u))
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	u, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, core.ErrUnauthorized) {
			core.Unauthorized(w, "Invalid email or password")
			return
		}
		core.InternalServerError(w, err)
		return
	}

	_, err = h.sessions.Issue(r.Context(), w, u.ID, u.Role, u.Email, u.Name)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, LoginResponse{User: user.ToUserResponse(u)})
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Destroy(r.Context(), w, r); err != nil {
		core.InternalServerError(w, err)
		return
	}

	slog.Info("user logged out",
		"user_id", middleware.GetUserID(r.Context()),
		"email", middleware.GetUserEmail(r.Context()),
		"name", middleware.GetUserName(r.Context()),
	)

	core.OK(w, MessageResponse{Message: "Logged out successfully"})
}

func (h *Handler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req ForgotPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	if err := h.service.ForgotPassword(r.Context(), req.Email); err != nil {
		core.InternalServerError(w, err)
		return
	}

	// Identical response whether or not the account exists.
	core.OK(w, MessageResponse{
		Message: "If an account with that email exists, " +
			"we have sent a password reset link.",
	})
}

func (h *Handler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req ResetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	err := h.service.ResetPassword(r.Context(), req.Token, req.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidResetToken) {
			core.BadRequest(w, "Invalid or expired reset token")
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, MessageResponse{Message: "Password reset successfully"})
}
