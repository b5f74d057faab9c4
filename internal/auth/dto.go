// dto.go

package auth

import (
	"github.com/grigoryblack/friendly-reminder/internal/user"
)

type RegisterRequest struct {
	Email    string `json:"email"    validate:"required,email,max=255"`
	Name     string `json:"name"     validate:"required,min=1,max=100"`
	Password string `json:"password" validate:"required,min=6,max=128"`
	Role     string `json:"role"     validate:"required,oneof=STUDENT PARENT TEACHER"`
}

type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type ResetPasswordRequest struct {
	Token    string `json:"token"    validate:"required"`
	Password string `json:"password" validate:"required,min=6,max=128"`
}

type LoginResponse struct {
	User user.UserResponse `json:"user"`
}

type MessageResponse struct {
	Message string `json:"message"`
}
