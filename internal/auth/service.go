// service.go

package auth

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/grigoryblack/friendly-reminder/internal/core"
	"github.com/grigoryblack/friendly-reminder/internal/mail"
	"github.com/grigoryblack/friendly-reminder/internal/user"
)

const resetTokenTTL = time.Hour

var ErrInvalidResetToken = errors.New("invalid or expired reset token")

type Service struct {
	users   *user.Service
	mailer  mail.Service
	baseURL string
}

func NewService(
	users *user.Service,
	mailer mail.Service,
	baseURL string,
) *Service {
	return &Service{
		users:   users,
		mailer:  mailer,
		baseURL: baseURL,
	}
}

// Register creates a new account. An existing email is rejected, never
// overwritten.
func (s *Service) Register(
	ctx context.Context,
	req RegisterRequest,
) (*user.User, error) {
	exists, err := s.users.EmailExists(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("register: %w", core.ErrDuplicateKey)
	}

	hash, err := core.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}

	return s.users.Create(ctx, req.Email, req.Name, req.Role, &hash)
}

// Login verifies credentials. The argon2 comparison runs even for unknown
// emails so response timing does not reveal which accounts exist.
func (s *Service) Login(
	ctx context.Context,
	email, password string,
) (*user.User, error) {
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			//nolint:errcheck // burn the hash comparison regardless
			_, _ = core.VerifyPasswordTimingSafe(password, nil)
			return nil, fmt.Errorf("login: %w", core.ErrUnauthorized)
		}
		return nil, err
	}

	valid, err := core.VerifyPasswordTimingSafe(password, u.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	if !valid {
		return nil, fmt.Errorf("login: %w", core.ErrUnauthorized)
	}

	return u, nil
}

// ForgotPassword stores a hashed reset token and emails the raw one. Unknown
// emails are a silent no-op so the endpoint cannot be used for account
// enumeration.
func (s *Service) ForgotPassword(ctx context.Context, email string) error {
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil
		}
		return err
	}

	token, err := core.GenerateResetToken()
	if err != nil {
		return fmt.Errorf("forgot password: %w", err)
	}

	err = s.users.SetResetToken(
		ctx,
		u.ID,
		core.HashToken(token),
		time.Now().Add(resetTokenTTL),
	)
	if err != nil {
		return err
	}

	resetURL := fmt.Sprintf(
		"%s/reset-password?token=%s",
		s.baseURL,
		url.QueryEscape(token),
	)

	msg := mail.PasswordResetMessage(u.Name, u.Email, resetURL)
	if err := s.mailer.Send(ctx, msg); err != nil {
		return fmt.Errorf("send reset email: %w", err)
	}

	return nil
}

// ResetPassword consumes a reset token and sets the new password hash.
func (s *Service) ResetPassword(
	ctx context.Context,
	token, password string,
) error {
	u, err := s.users.GetByResetTokenHash(ctx, core.HashToken(token))
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return fmt.Errorf("reset password: %w", ErrInvalidResetToken)
		}
		return err
	}

	if u.ResetTokenExpiry == nil || time.Now().After(*u.ResetTokenExpiry) {
		return fmt.Errorf("reset password: %w", ErrInvalidResetToken)
	}

	hash, err := core.HashPassword(password)
	if err != nil {
		return fmt.Errorf("reset password: %w", err)
	}

	return s.users.UpdatePassword(ctx, u.ID, hash)
}
