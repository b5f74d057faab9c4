// service.go

package user

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) GetByID(ctx context.Context, id string) (*User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) GetByEmail(
	ctx context.Context,
	email string,
) (*User, error) {
	return s.repo.GetByEmail(ctx, strings.ToLower(email))
}

func (s *Service) Create(
	ctx context.Context,
	email, name, role string,
	passwordHash *string,
) (*User, error) {
	user := &User{
		ID:           uuid.New().String(),
		Email:        strings.ToLower(email),
		Name:         name,
		PasswordHash: passwordHash,
		Role:         role,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

func (s *Service) UpdateAvatar(
	ctx context.Context,
	userID, avatarURL string,
) (*User, error) {
	return s.repo.UpdateAvatar(ctx, userID, avatarURL)
}

func (s *Service) GetByResetTokenHash(
	ctx context.Context,
	tokenHash string,
) (*User, error) {
	return s.repo.GetByResetTokenHash(ctx, tokenHash)
}

func (s *Service) SetResetToken(
	ctx context.Context,
	userID, tokenHash string,
	expiry time.Time,
) error {
	return s.repo.SetResetToken(ctx, userID, tokenHash, expiry)
}

func (s *Service) UpdatePassword(
	ctx context.Context,
	userID, passwordHash string,
) error {
	return s.repo.UpdatePassword(ctx, userID, passwordHash)
}

func (s *Service) EmailExists(
	ctx context.Context,
	email string,
) (bool, error) {
	return s.repo.ExistsByEmail(ctx, strings.ToLower(email))
}
